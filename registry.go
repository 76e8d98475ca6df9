package tiled

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Detector inspects the location at path and, when it recognizes the
// format, returns an Adapter serving it. A location that isn't in the
// detector's format is reported with ok == false and a nil error; errors are
// only for failures reading a location the detector has claimed.
type Detector func(ctx context.Context, path string) (a Adapter, ok bool, err error)

type namedDetector struct {
	name   string
	detect Detector
}

// Registry holds detectors in the order they are tried.
type Registry struct {
	lk        sync.RWMutex
	detectors []namedDetector
	logger    log.Logger
}

// NewRegistry returns an empty registry. A nil logger discards logs.
func NewRegistry(logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Registry{logger: log.With(logger, "component", "registry")}
}

// Register appends a detector. Detectors registered earlier take precedence.
func (r *Registry) Register(name string, d Detector) {
	r.lk.Lock()
	defer r.lk.Unlock()
	r.detectors = append(r.detectors, namedDetector{name: name, detect: d})
}

// Names lists registered detectors in the order they are tried.
func (r *Registry) Names() []string {
	r.lk.RLock()
	defer r.lk.RUnlock()
	names := make([]string, len(r.detectors))
	for i, d := range r.detectors {
		names[i] = d.name
	}
	return names
}

// Sniff tries each detector in order and adopts the first match. When no
// detector matches it returns ok == false and a nil error.
func (r *Registry) Sniff(ctx context.Context, path string) (Adapter, bool, error) {
	r.lk.RLock()
	detectors := append([]namedDetector(nil), r.detectors...)
	r.lk.RUnlock()

	for _, d := range detectors {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		a, ok, err := d.detect(ctx, path)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", d.name, err)
		}
		if ok {
			level.Debug(r.logger).Log("msg", "matched", "path", path, "detector", d.name)
			return a, true, nil
		}
	}
	level.Debug(r.logger).Log("msg", "no detector matched", "path", path)
	return nil, false, nil
}
