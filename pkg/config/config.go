// Package config holds the program configuration.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"cluehtml/pkg/images"
	"cluehtml/pkg/parse"
	"cluehtml/pkg/text"
)

//go:embed default.yaml
var DefaultConfig []byte

type (
	DocumentConfig struct {
		Width       int            `yaml:"width"`
		FontSize    int            `yaml:"font_size"`
		Charset     string         `yaml:"charset"`
		LineBreak   text.BreakMode `yaml:"line_break"`
		TextColor   string         `yaml:"text_color"`
		LinkColor   string         `yaml:"link_color"`
		Background  string         `yaml:"background"`
		CellPadding int            `yaml:"cell_padding"`
		CellSpacing int            `yaml:"cell_spacing"`
		Indent      int            `yaml:"indent"`
	}

	TokenizerConfig struct {
		MaxQueued int `yaml:"max_queued"`
	}

	Config struct {
		Version   int             `yaml:"version"`
		Document  DocumentConfig  `yaml:"document"`
		Fonts     text.FontConfig `yaml:"fonts"`
		Images    images.Options  `yaml:"images"`
		Tokenizer TokenizerConfig `yaml:"tokenizer"`
		Logging   LoggingConfig   `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// Only fields we defined are accepted, so yaml.Unmarshal cannot be used
	// directly.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration file at path and superimposes
// its values on the embedded defaults. An empty path gives the defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(DefaultConfig, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}
	if len(path) == 0 {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if cfg, err = unmarshalConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("bad configuration file: %w", err)
	}
	cfg.Fonts = cfg.Fonts.Resolve(filepath.Dir(path))
	return cfg, nil
}

func (cfg *Config) validate() (err error) {
	if cfg.Version != 1 {
		err = multierr.Append(err, fmt.Errorf("unsupported version %d", cfg.Version))
	}
	d := cfg.Document
	if d.FontSize < 1 || d.FontSize > 7 {
		err = multierr.Append(err, fmt.Errorf("font_size %d is not in 1..7", d.FontSize))
	}
	if d.Width <= 0 {
		err = multierr.Append(err, fmt.Errorf("width %d must be positive", d.Width))
	}
	if d.LineBreak != text.BreakSpace && d.LineBreak != text.BreakUAX14 {
		err = multierr.Append(err, fmt.Errorf("unknown line_break %q", d.LineBreak))
	}
	for name, v := range map[string]string{"text_color": d.TextColor, "link_color": d.LinkColor, "background": d.Background} {
		if _, ok := parse.ParseColor(v); !ok {
			err = multierr.Append(err, fmt.Errorf("%s: bad color %q", name, v))
		}
	}
	for name, l := range map[string]LoggerConfig{"console": cfg.Logging.ConsoleLogger, "file": cfg.Logging.FileLogger} {
		switch l.Level {
		case "none", "normal", "debug":
		default:
			err = multierr.Append(err, fmt.Errorf("logging.%s: unknown level %q", name, l.Level))
		}
	}
	if cfg.Logging.FileLogger.Level != "none" && cfg.Logging.FileLogger.Destination == "" {
		err = multierr.Append(err, errors.New("logging.file: destination is required"))
	}
	return err
}

// Options converts the document section to builder defaults. Colors that
// do not parse keep the built-in default.
func (d DocumentConfig) Options() parse.Options {
	o := parse.DefaultOptions()
	o.BaseSize = d.FontSize
	if c, ok := parse.ParseColor(d.TextColor); ok {
		o.TextColor = c
	}
	if c, ok := parse.ParseColor(d.LinkColor); ok {
		o.LinkColor = c
	}
	if c, ok := parse.ParseColor(d.Background); ok {
		o.Background = c
	}
	o.CellPadding = d.CellPadding
	o.CellSpacing = d.CellSpacing
	o.IndentSize = d.Indent
	return o
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
