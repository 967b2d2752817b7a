package farm

import (
	"time"

	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/defaults"
)

// Factory creates farms initialized from a default data context
type Factory struct {
	defaults *defaults.Context
	now      func() time.Time
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithClock overrides the clock used to stamp new farms
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		f.now = now
	}
}

// NewFactory creates a new farm factory
func NewFactory(ctx *defaults.Context, opts ...FactoryOption) *Factory {
	f := &Factory{defaults: ctx, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns an empty farm stamped with the current time and holding its
// own copy of the default tables
func (f *Factory) Create(name string) (*Farm, error) {
	snap, err := takeSnapshot(f.defaults, f.defaults.Version())
	if err != nil {
		return nil, err
	}

	now := f.now()
	farm := &Farm{
		ID:           uuid.New(),
		Name:         name,
		Version:      f.defaults.Version(),
		DateCreated:  now,
		DateModified: now,
		now:          f.now,
	}
	snap.applyTo(farm)
	return farm, nil
}

// Defaults returns the context the factory initializes farms from
func (f *Factory) Defaults() *defaults.Context {
	return f.defaults
}
