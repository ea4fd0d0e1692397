package settings

import (
	"time"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// Option configures a store.
type Option func(*options)

type options struct {
	seedTerms      string
	defaultMinutes int
	now            func() time.Time
	logger         ports.Logger
}

// WithSeedTerms pre-populates banned_terms of records created for unknown devices.
func WithSeedTerms(raw string) Option {
	return func(o *options) { o.seedTerms = raw }
}

// WithDefaultMinutes sets the daily budget of records created for unknown devices.
func WithDefaultMinutes(minutes int) Option {
	return func(o *options) { o.defaultMinutes = minutes }
}

// WithClock overrides the clock used for defaults and repairs.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger routes repair notices to logger.
func WithLogger(logger ports.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) fresh(deviceID string) domain.DeviceRecord {
	rec := domain.NewDeviceRecord(deviceID, o.now())
	rec.BannedTerms = o.seedTerms
	if o.defaultMinutes > 0 {
		rec.TimeLimitMinutes = o.defaultMinutes
	}
	return rec
}

func (o options) logRepair(deviceID string) {
	if o.logger == nil {
		return
	}
	o.logger.Warn("device record repaired on load", map[string]interface{}{"device": deviceID})
}
