package ttlmap

import (
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

const (
	defaultLifetime = time.Minute
	defaultName     = "ttlmap"
)

// Options configures the Store behavior during initialization
type Options struct {
	DefaultLifetime time.Duration      // Lifetime used by Put without explicit lifetime (0 = use default: 1 min)
	RenewOnRead     bool               // Reset the deadline of a key on every successful read
	Clock           func() time.Time   // Time source (nil = time.Now)
	Name            string             // Name used for log lines and metric names
	Registry        gometrics.Registry // Optional registry the sweep counters are registered in
}

// DefaultOptions returns the default Store options
func DefaultOptions() *Options {
	return &Options{
		DefaultLifetime: defaultLifetime,
		RenewOnRead:     false,
		Clock:           time.Now,
		Name:            defaultName,
	}
}

// withDefaults fills zero fields with their defaults
func (o *Options) withDefaults() *Options {
	opts := *o
	if opts.DefaultLifetime == 0 {
		opts.DefaultLifetime = defaultLifetime
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Name == "" {
		opts.Name = defaultName
	}
	return &opts
}

// --------------------------------------------------------------------------
// Sweep statistics
// --------------------------------------------------------------------------

// Stats is a snapshot of the sweep counters of a Store
type Stats struct {
	Expired    int64 `json:"expired"`    // entries removed because their deadline passed
	Tombstoned int64 `json:"tombstoned"` // superseded deadline records discarded
	Renewed    int64 `json:"renewed"`    // deadline resets (explicit or on read)
	Sweeps     int64 `json:"sweeps"`     // cleanup passes that ran
}

type counters struct {
	expired    gometrics.Counter
	tombstoned gometrics.Counter
	renewed    gometrics.Counter
	sweeps     gometrics.Counter
}

func newCounters(name string, r gometrics.Registry) counters {
	if r == nil {
		return counters{
			expired:    gometrics.NewCounter(),
			tombstoned: gometrics.NewCounter(),
			renewed:    gometrics.NewCounter(),
			sweeps:     gometrics.NewCounter(),
		}
	}
	return counters{
		expired:    gometrics.GetOrRegisterCounter(name+".expired", r),
		tombstoned: gometrics.GetOrRegisterCounter(name+".tombstoned", r),
		renewed:    gometrics.GetOrRegisterCounter(name+".renewed", r),
		sweeps:     gometrics.GetOrRegisterCounter(name+".sweeps", r),
	}
}

func (c counters) snapshot() Stats {
	return Stats{
		Expired:    c.expired.Count(),
		Tombstoned: c.tombstoned.Count(),
		Renewed:    c.renewed.Count(),
		Sweeps:     c.sweeps.Count(),
	}
}
