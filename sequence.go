package tiled

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/qri-io/tiled-go/cache"
)

// SequenceReaderType is the backend identity SequenceReader cache keys
// start with.
const SequenceReaderType = "tiled.SequenceReader"

const (
	// DefaultMaxOutliers is the most files a sequence directory may hold
	// that don't look like sequence members.
	DefaultMaxOutliers = 10
	// DefaultMaxOutlierFraction is the largest share of a sequence
	// directory's files that may be outliers.
	DefaultMaxOutlierFraction = 0.2
	DefaultConcurrency        = 8
)

// DefaultExtensions are the file extensions of sequence members.
var DefaultExtensions = []string{".tif", ".tiff"}

// SequenceOptions configures sniffing and reading of file sequences. Start
// from DefaultSequenceOptions; zero thresholds are taken literally.
type SequenceOptions struct {
	// Extensions a member file name must end with. Multi-part extensions
	// such as ".tif.zst" are allowed. Matching is case sensitive.
	Extensions []string
	// Compression, when set, names the format every member is compressed
	// with, e.g. "zst" or "gzip".
	Compression        string
	MaxOutliers        int
	MaxOutlierFraction float64
	// Concurrency bounds how many frames a range read decodes at once.
	Concurrency int
	// StatFingerprint folds file sizes and modification times into the
	// content fingerprint, so files rewritten in place get fresh cache keys.
	// Without it sources are assumed immutable once opened.
	StatFingerprint bool

	// Decoder decodes a single frame. Defaults to DecodeTIFF.
	Decoder FrameDecoder
	// Cache memoizes decoded frames. Nil disables caching.
	Cache  *cache.Cache
	Logger log.Logger
}

// DefaultSequenceOptions returns the options used for TIFF sequences.
func DefaultSequenceOptions() SequenceOptions {
	return SequenceOptions{
		Extensions:         append([]string(nil), DefaultExtensions...),
		MaxOutliers:        DefaultMaxOutliers,
		MaxOutlierFraction: DefaultMaxOutlierFraction,
		Concurrency:        DefaultConcurrency,
	}
}

func (o SequenceOptions) withDefaults() SequenceOptions {
	if len(o.Extensions) == 0 {
		o.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Decoder == nil {
		o.Decoder = DecodeTIFF
	}
	if o.Logger == nil {
		o.Logger = log.NewNopLogger()
	}
	return o
}

// IsMember reports whether a file name looks like a sequence member: it
// ends with one of the configured extensions and the last three characters
// before the extension are digits, e.g. "scan042.tif". Every extension the
// name ends with is tried, so overlapping extensions such as ".zst" and
// ".tif.zst" may be configured together.
func (o SequenceOptions) IsMember(name string) bool {
	for _, ext := range o.Extensions {
		if len(name) > len(ext) && strings.HasSuffix(name, ext) && hasDigitSuffix(name[:len(name)-len(ext)], 3) {
			return true
		}
	}
	return false
}

// hasDigitSuffix reports whether the last n characters of s are digits. A
// string shorter than n is judged on all its characters.
func hasDigitSuffix(s string, n int) bool {
	if s == "" {
		return false
	}
	for i := 0; i < n && s != ""; i++ {
		r, size := utf8.DecodeLastRuneInString(s)
		if !unicode.IsDigit(r) {
			return false
		}
		s = s[:len(s)-size]
	}
	return true
}

// accept decides whether a directory with the given counts is a sequence.
func (o SequenceOptions) accept(outliers, matches int) bool {
	if matches == 0 {
		return false
	}
	if outliers > o.MaxOutliers {
		return false
	}
	if outliers == 0 {
		return true
	}
	return float64(outliers)/float64(outliers+matches) <= o.MaxOutlierFraction
}

// SequenceDetector returns a Detector recognizing directories of TIFF
// files that form one array.
func SequenceDetector(opts SequenceOptions) Detector {
	return func(ctx context.Context, path string) (Adapter, bool, error) {
		fi, err := os.Stat(path)
		if err != nil || !fi.IsDir() {
			return nil, false, nil
		}
		s, err := NewLocalStore(path)
		if err != nil {
			return nil, false, err
		}
		r, ok, err := SniffStore(ctx, s, opts)
		if !ok || err != nil {
			return nil, ok, err
		}
		return r, true, nil
	}
}

// SniffStore inspects the direct children of s. Directories and hidden
// files are skipped. The rest must be mostly sequence members for s to be
// accepted; members are then ordered by name.
func SniffStore(ctx context.Context, s Store, opts SequenceOptions) (*SequenceReader, bool, error) {
	opts = opts.withDefaults()
	entries, err := s.List()
	if err != nil {
		return nil, false, err
	}

	var matches []string
	outliers := 0
	for _, e := range entries {
		if !e.IsFile || strings.HasPrefix(e.Name, ".") {
			continue
		}
		if opts.IsMember(e.Name) {
			matches = append(matches, e.Name)
			continue
		}
		outliers++
	}

	if !opts.accept(outliers, len(matches)) {
		level.Debug(opts.Logger).Log("msg", "not a file sequence", "store", s.Locator(""), "matches", len(matches), "outliers", outliers)
		return nil, false, nil
	}

	sort.Strings(matches)
	r, err := NewSequenceReader(ctx, s, matches, opts)
	if err != nil {
		return nil, false, err
	}
	level.Debug(opts.Logger).Log("msg", "file sequence", "store", s.Locator(""), "frames", len(matches), "outliers", outliers, "fingerprint", r.fingerprint)
	return r, true, nil
}

// SequenceReader serves an ordered list of single-frame files as one array
// of shape (frames, height, width), chunked one frame per block.
type SequenceReader struct {
	store       Store
	files       []string
	attrs       Attributes
	fingerprint string
	key         cache.Key
	opts        SequenceOptions

	lk    sync.Mutex
	macro *MacroStructure
	micro Dtype
}

var _ Adapter = (*SequenceReader)(nil)

// NewSequenceReader serves files from s in the order given.
func NewSequenceReader(ctx context.Context, s Store, files []string, opts SequenceOptions) (*SequenceReader, error) {
	opts = opts.withDefaults()
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: a sequence needs at least one file", ErrInvalidStructure)
	}
	if err := ValidateCompression(opts.Compression); err != nil {
		return nil, err
	}
	attrs, err := LoadAttributes(s)
	if err != nil {
		return nil, err
	}
	fp, err := fingerprint(s, files, opts.StatFingerprint)
	if err != nil {
		return nil, err
	}
	return &SequenceReader{
		store:       s,
		files:       append([]string(nil), files...),
		attrs:       attrs,
		fingerprint: fp,
		key:         cache.NewKey(SequenceReaderType, fp),
		opts:        opts,
	}, nil
}

// fingerprint digests the ordered locators of files, and optionally their
// sizes and modification times.
func fingerprint(s Store, files []string, stat bool) (string, error) {
	var entries map[string]Entry
	if stat {
		list, err := s.List()
		if err != nil {
			return "", err
		}
		entries = make(map[string]Entry, len(list))
		for _, e := range list {
			entries[e.Name] = e
		}
	}

	h := blake3.New()
	for _, f := range files {
		h.Write([]byte(s.Locator(f)))
		h.Write([]byte{0})
		if stat {
			e, ok := entries[f]
			if !ok {
				return "", fmt.Errorf("%w: %s", ErrNotfound, s.Locator(f))
			}
			h.Write([]byte(strconv.FormatInt(e.Size, 10)))
			h.Write([]byte{0})
			h.Write([]byte(strconv.FormatInt(e.ModTime.UnixNano(), 10)))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Files returns the member file names in index order.
func (r *SequenceReader) Files() []string { return append([]string(nil), r.files...) }

// Fingerprint is the digest of the source set shared by every cache key the
// reader issues.
func (r *SequenceReader) Fingerprint() string { return r.fingerprint }

// FrameKey is the cache key frame i is stored under.
func (r *SequenceReader) FrameKey(i int) cache.Key { return r.key.WithInt(i) }

func (r *SequenceReader) Metadata() Attributes { return r.attrs.Copy() }

func (r *SequenceReader) Macrostructure(ctx context.Context) (*MacroStructure, error) {
	ms, _, err := r.structure(ctx)
	return ms, err
}

// Microstructure assumes every frame has the dtype of the first.
func (r *SequenceReader) Microstructure(ctx context.Context) (Dtype, error) {
	_, dt, err := r.structure(ctx)
	return dt, err
}

func (r *SequenceReader) structure(ctx context.Context) (*MacroStructure, Dtype, error) {
	r.lk.Lock()
	ms, dt := r.macro, r.micro
	r.lk.Unlock()
	if ms != nil {
		return ms, dt, nil
	}

	first, err := r.frame(ctx, 0)
	if err != nil {
		return nil, Dtype{}, err
	}
	if first.NDim() != 2 {
		return nil, Dtype{}, fmt.Errorf("%w: frame %s has %d dimensions, want 2", ErrInvalidStructure, r.store.Locator(r.files[0]), first.NDim())
	}

	n, h, w := len(r.files), first.Shape[0], first.Shape[1]
	ones := make([]int, n)
	for i := range ones {
		ones[i] = 1
	}
	ms, err = NewMacroStructure([]int{n, h, w}, [][]int{ones, wholeAxis(h), wholeAxis(w)})
	if err != nil {
		return nil, Dtype{}, err
	}

	r.lk.Lock()
	defer r.lk.Unlock()
	if r.macro == nil {
		r.macro, r.micro = ms, first.Dtype
	}
	return r.macro, r.micro, nil
}

// wholeAxis is a single chunk spanning an axis of length n.
func wholeAxis(n int) []int {
	if n == 0 {
		return []int{}
	}
	return []int{n}
}

// Read materializes the frames sel selects along axis 0, then applies
// sel.Rest to the remaining axes. Range stops are not clamped; asking for a
// frame that doesn't exist fails with ErrIndexOutOfBounds.
func (r *SequenceReader) Read(ctx context.Context, sel Selector) (*Array, error) {
	var (
		arr *Array
		err error
	)
	switch s := sel.Axis0.(type) {
	case nil:
		arr, err = r.frames(ctx, All().Sequence(len(r.files)))
		if err == nil && len(sel.Rest) > 0 {
			arr, err = arr.Select(append([]Selection{All()}, sel.Rest...)...)
		}
	case Index:
		arr, err = r.frame(ctx, int(s))
		if err == nil && len(sel.Rest) > 0 {
			arr, err = arr.Select(sel.Rest...)
		}
	case Range:
		arr, err = r.frames(ctx, s.Sequence(len(r.files)))
		if err == nil && len(sel.Rest) > 0 {
			arr, err = arr.Select(append([]Selection{All()}, sel.Rest...)...)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported axis 0 selection %T", ErrInvalidSelection, sel.Axis0)
	}
	return arr, err
}

// ReadBlock reads one frame as a (1, height, width) array. Sequences are
// only chunked along axis 0, so block[1] and block[2] must be 0.
func (r *SequenceReader) ReadBlock(ctx context.Context, block Block, sub Selector) (*Array, error) {
	if len(block) != 3 {
		return nil, &BlockIndexError{Block: block, Axis: -1, Reason: "sequences have 3 axes"}
	}
	for d := 1; d < 3; d++ {
		if block[d] != 0 {
			return nil, &BlockIndexError{Block: block, Axis: d, Reason: "sequences are only chunked along axis 0"}
		}
	}
	ms, err := r.Macrostructure(ctx)
	if err != nil {
		return nil, err
	}
	spans, err := BlockToSlice(block, ms)
	if err != nil {
		return nil, err
	}
	arr, err := r.Read(ctx, Over(spans[0].Range()))
	if err != nil {
		return nil, err
	}
	return sub.Apply(arr)
}

// frame returns decoded frame i through the cache. Negative i counts back
// from the last frame.
func (r *SequenceReader) frame(ctx context.Context, i int) (*Array, error) {
	ix, err := resolveIndex(i, len(r.files))
	if err != nil {
		return nil, err
	}
	return cache.GetOrComputeAs(ctx, r.opts.Cache, r.FrameKey(ix), func() (*Array, error) {
		return r.decodeFrame(ix)
	})
}

// frames decodes indices concurrently and stacks them in the order given.
func (r *SequenceReader) frames(ctx context.Context, indices []int) (*Array, error) {
	out := make([]*Array, len(indices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for k, i := range indices {
		k, i := k, i
		g.Go(func() error {
			a, err := r.frame(gctx, i)
			out[k] = a
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Stack(out)
}

func (r *SequenceReader) decodeFrame(i int) (*Array, error) {
	name := r.files[i]
	f, err := r.store.Get(name)
	if err != nil {
		return nil, err
	}
	rc, err := decompressor(r.opts.Compression, f)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", r.store.Locator(name), err)
	}
	defer rc.Close()

	arr, err := r.opts.Decoder(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", r.store.Locator(name), err)
	}
	level.Debug(r.opts.Logger).Log("msg", "decoded frame", "file", r.store.Locator(name), "index", i, "shape", fmt.Sprint(arr.Shape), "dtype", arr.Dtype)
	return arr, nil
}
