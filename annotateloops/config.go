package annotateloops

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/nickng/loopannot/store"
	"github.com/pkg/errors"
)

var (
	ErrBadMode      = errors.New("unknown operation mode")
	ErrZeroInterval = errors.New("loop id interval must be positive")
)

// Mode is the operation mode of a Pass.
type Mode int

const (
	Write Mode = iota // Annotate loops with new identifiers.
	Read              // Report identifiers already attached.
)

// ParseMode returns the Mode named s ("write" or "read").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "write":
		return Write, nil
	case "read":
		return Read, nil
	}
	return Write, errors.Wrapf(ErrBadMode, "%q", s)
}

func (m Mode) String() string {
	switch m {
	case Write:
		return "write"
	case Read:
		return "read"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Config is the configuration of one run of a Pass.
type Config struct {
	Mode Mode

	LoopDepthThreshold uint     // Deepest loop nesting processed, 0 for no limit.
	LoopStartID        store.ID // First identifier.
	LoopIDInterval     store.ID // Stride between identifiers.

	StatsPath     string // Report destination, reporting is disabled if empty.
	WhitelistPath string // Function name patterns, filtering is disabled if empty.

	ReportLineNumbers bool // Include source line and file of loops in the report.
	ReportTopParent   bool // Include the outermost enclosing loop in the report.
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Mode:               Write,
		LoopDepthThreshold: 1,
		LoopStartID:        1,
		LoopIDInterval:     1,
	}
}

// Validate checks c for values the Pass cannot run with.
func (c Config) Validate() error {
	if c.Mode != Write && c.Mode != Read {
		return errors.Wrapf(ErrBadMode, "%s", c.Mode)
	}
	if c.LoopIDInterval == 0 {
		return ErrZeroInterval
	}
	return nil
}

// reporting returns true if a stats report is requested.
func (c Config) reporting() bool { return c.StatsPath != "" }

// whitelisting returns true if function names are filtered.
func (c Config) whitelisting() bool { return c.WhitelistPath != "" }

// fileConfig is the TOML representation of Config.
// Options left out of the file keep their current value.
type fileConfig struct {
	Mode               *Mode   `toml:"mode"`
	LoopDepthThreshold *int64  `toml:"loop-depth-threshold"`
	LoopStartID        *int64  `toml:"loop-start-id"`
	LoopIDInterval     *int64  `toml:"loop-id-interval"`
	StatsPath          *string `toml:"stats-output-path"`
	WhitelistPath      *string `toml:"whitelist-path"`
	ReportLineNumbers  *bool   `toml:"report-line-numbers"`
	ReportTopParent    *bool   `toml:"report-top-parent"`
}

// LoadConfig reads a TOML configuration file at path over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return cfg, errors.Wrapf(err, "cannot read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.Errorf("config %s: unknown option %q", path, undecoded[0].String())
	}
	if err := fc.apply(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, cfg.Validate()
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.Mode != nil {
		cfg.Mode = *fc.Mode
	}
	if fc.LoopDepthThreshold != nil {
		v, err := safecast.Conv[uint](*fc.LoopDepthThreshold)
		if err != nil {
			return errors.Wrap(err, "loop-depth-threshold")
		}
		cfg.LoopDepthThreshold = v
	}
	if fc.LoopStartID != nil {
		v, err := safecast.Conv[uint64](*fc.LoopStartID)
		if err != nil {
			return errors.Wrap(err, "loop-start-id")
		}
		cfg.LoopStartID = store.ID(v)
	}
	if fc.LoopIDInterval != nil {
		v, err := safecast.Conv[uint64](*fc.LoopIDInterval)
		if err != nil {
			return errors.Wrap(err, "loop-id-interval")
		}
		cfg.LoopIDInterval = store.ID(v)
	}
	if fc.StatsPath != nil {
		cfg.StatsPath = *fc.StatsPath
	}
	if fc.WhitelistPath != nil {
		cfg.WhitelistPath = *fc.WhitelistPath
	}
	if fc.ReportLineNumbers != nil {
		cfg.ReportLineNumbers = *fc.ReportLineNumbers
	}
	if fc.ReportTopParent != nil {
		cfg.ReportTopParent = *fc.ReportTopParent
	}
	return nil
}
