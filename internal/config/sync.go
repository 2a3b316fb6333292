package config

import "time"

// Sync configures the coordinator loop and the network monitor.
type Sync struct {
	// Debounce is how long the coordinator waits after a local mutation
	// before starting a cycle, so bursts collapse into one push.
	Debounce time.Duration `env:"SYNC_DEBOUNCE" envDefault:"1s"`

	// Interval is the periodic safety-net cycle, catching anything a
	// missed signal would otherwise strand.
	Interval time.Duration `env:"SYNC_INTERVAL" envDefault:"5m"`

	// OpTimeout bounds a single push or pull against the cloud store.
	OpTimeout time.Duration `env:"SYNC_OP_TIMEOUT" envDefault:"30s"`

	ProbeInterval time.Duration `env:"NET_PROBE_INTERVAL" envDefault:"15s"`
	ProbeTimeout  time.Duration `env:"NET_PROBE_TIMEOUT" envDefault:"5s"`
	ProbeURL      string        `env:"NET_PROBE_URL" envDefault:"https://clients3.google.com/generate_204"`
}
