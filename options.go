package hashkit

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures a structure at construction.
type Option func(*options)

type options struct {
	hash   HashFunc
	seeds  []uint64
	logger logrus.FieldLogger
}

// WithHash replaces the default XXH3 hash family.
func WithHash(h HashFunc) Option {
	return func(o *options) {
		if h != nil {
			o.hash = h
		}
	}
}

// WithSeeds sets explicit hash seeds. Filters need one seed per probe and
// sketches one per row; the ring uses only the first.
func WithSeeds(seeds ...uint64) Option {
	return func(o *options) {
		o.seeds = append([]uint64(nil), seeds...)
	}
}

// WithLogger sets the logger the ring reports membership changes to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{hash: XXH3}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = discardLogger()
	}
	return o
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// probeSeeds returns the explicit seeds when given, or n default seeds.
func (o options) probeSeeds(n int) ([]uint64, error) {
	if o.seeds == nil {
		return Seeds(n), nil
	}
	if len(o.seeds) != n {
		return nil, fmt.Errorf("%w: got %d seeds, need %d", ErrInvalidSeeds, len(o.seeds), n)
	}
	return o.seeds, nil
}
