package tiled

import (
	"io"

	"github.com/qri-io/dataset/compression"
)

// ValidateCompression reports whether format names a supported frame
// compression. The empty string means frames are stored uncompressed.
func ValidateCompression(format string) error {
	if format == "" {
		return nil
	}
	_, err := compression.ParseFormat(format)
	return err
}

// decompressor wraps r in a reader that decompresses format. Closing the
// result closes r.
func decompressor(format string, r io.ReadCloser) (io.ReadCloser, error) {
	if format == "" {
		return r, nil
	}
	dr, err := compression.Decompressor(format, r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &stackedReadCloser{ReadCloser: dr, under: r}, nil
}

type stackedReadCloser struct {
	io.ReadCloser
	under io.Closer
}

func (s *stackedReadCloser) Close() error {
	err := s.ReadCloser.Close()
	if uerr := s.under.Close(); err == nil {
		err = uerr
	}
	return err
}
