package vstack

import (
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// DefaultSize is the default baseline stack size (8 MiB).
const DefaultSize = 8 << 20

// DefaultGrowthFactor is the minimum multiple by which the stack grows when
// it must extend. Doubling amortizes repeated small extensions.
const DefaultGrowthFactor = 2.0

// ByteSize is a byte count that decodes from TOML either as a plain integer
// or as a humanized string such as "64 MiB".
type ByteSize uint64

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := humanize.ParseBytes(string(text))
	if err != nil {
		return errors.Wrapf(err, "parsing byte size %q", text)
	}
	*b = ByteSize(n)
	return nil
}

// Config is the startup configuration for a Stack.
type Config struct {
	// Size is the baseline stack size, the footprint the stack returns to on
	// Reset. Rounded up to a whole number of pages.
	Size ByteSize `toml:"size"`

	// SizeMax is the most the stack may ever grow to. Zero means no virtual
	// headroom beyond Size: the stack is a fixed allocation that can never
	// grow, even on platforms that support reservation.
	SizeMax ByteSize `toml:"size_max"`

	// GrowthFactor is the minimum multiple applied to the current size when
	// the stack must grow. Values below 1 fall back to DefaultGrowthFactor.
	GrowthFactor float64 `toml:"growth_factor"`

	// Logger receives warning diagnostics (failed or explicit resizes).
	// Defaults to slog.Default().
	Logger *slog.Logger `toml:"-"`
}

// DefaultConfig returns the configuration used when fields are left zero:
// an 8 MiB baseline with no growth ceiling.
func DefaultConfig() Config {
	return Config{Size: DefaultSize, GrowthFactor: DefaultGrowthFactor}
}

// LoadConfig reads a TOML configuration file. Missing keys keep their
// defaults, so a partial file is fine.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "loading stack configuration from %s", path)
	}
	return cfg, nil
}
