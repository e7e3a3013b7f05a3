package bst

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
)

// Config holds session settings read from a TOML file, such as:
//
//	wrap-width = 79
//	min-crossrefs = 2
//	inline = true
//	trace = false
//	citations = ["doe20", "roe21"]
//
//	[macros]
//	jan = "January"
type Config struct {
	WrapWidth    int               `toml:"wrap-width"`
	MinCrossrefs *int              `toml:"min-crossrefs"`
	Inline       *bool             `toml:"inline"`
	Trace        bool              `toml:"trace"`
	Citations    []string          `toml:"citations"`
	Macros       map[string]string `toml:"macros"`
}

// LoadConfig reads a TOML config file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("loading config %v: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("loading config %v: %w", path, err)
	}
	return &cfg, nil
}

// ParseConfig parses TOML config text.
func ParseConfig(data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func checkUndecoded(md toml.MetaData) error {
	if keys := md.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("unknown keys %v", keys)
	}
	return nil
}

// Options returns the session options cfg describes. Trace sends the trace
// log, and diagnostics, to the "bst" commonlog logger.
func (cfg *Config) Options() Option {
	var opts options
	if cfg.WrapWidth > 0 {
		opts = append(opts, WithWrapWidth(cfg.WrapWidth))
	}
	if cfg.MinCrossrefs != nil {
		opts = append(opts, WithMinCrossrefs(*cfg.MinCrossrefs))
	}
	if cfg.Inline != nil {
		opts = append(opts, WithInlining(*cfg.Inline))
	}
	if cfg.Trace {
		opts = append(opts, WithLogger(commonlog.GetLogger("bst")))
	}
	if len(cfg.Citations) > 0 {
		opts = append(opts, WithCitations(cfg.Citations...))
	}
	if len(cfg.Macros) > 0 {
		opts = append(opts, WithMacros(cfg.Macros))
	}
	return opts
}
