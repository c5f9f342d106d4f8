package compare

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrdiff/pkg/align"
	"github.com/gardar/ocrdiff/pkg/chardiff"
	"github.com/gardar/ocrdiff/pkg/footnote"
	"github.com/gardar/ocrdiff/pkg/gdocai"
	"github.com/gardar/ocrdiff/pkg/layout"
	"github.com/gardar/ocrdiff/pkg/segment"
	"github.com/gardar/ocrdiff/pkg/source"
)

// Config holds every option of the comparison pipeline
type Config struct {
	Source    source.Kind      `yaml:"source"` // Document backend
	Lines     layout.Config    `yaml:"lines"`
	Footnotes FootnoteConfig   `yaml:"footnotes"`
	Genre     segment.Genre    `yaml:"genre"`
	Align     align.Options    `yaml:"align"`
	Diff      chardiff.Options `yaml:"diff"`
	DocAI     gdocai.Config    `yaml:"docai"`

	// Logger receives progress and skipped page warnings (nil = logrus standard logger)
	Logger logrus.FieldLogger `yaml:"-"`
}

// FootnoteConfig controls note removal
type FootnoteConfig struct {
	Enabled         bool `yaml:"enabled"`
	footnote.Config `yaml:",inline"`

	// DropLineNumbers removes marginal line numbers
	DropLineNumbers bool `yaml:"drop_line_numbers"`

	// Patterns are regular expressions; matching lines are dropped
	Patterns []string `yaml:"patterns"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Source: source.KindAuto,
		Lines:  layout.DefaultConfig(),
		Footnotes: FootnoteConfig{
			Enabled: true,
			Config:  footnote.DefaultConfig(),
		},
		Genre: segment.GenreAuto,
		Align: align.DefaultOptions(),
		Diff:  chardiff.DefaultOptions(),
		DocAI: gdocai.DefaultConfig(),
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Normalize(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize replaces the enumerated values with their canonical names,
// so aliases such as "poetry" or "char" and any letter case select the
// right behaviour, then validates the rest.
func (c *Config) Normalize() error {
	kind, err := source.ParseKind(string(c.Source))
	if err != nil {
		return err
	}
	genre, err := segment.ParseGenre(string(c.Genre))
	if err != nil {
		return err
	}
	strategy, err := align.ParseStrategy(string(c.Align.Strategy))
	if err != nil {
		return err
	}
	granularity, err := chardiff.ParseGranularity(string(c.Diff.Granularity))
	if err != nil {
		return err
	}
	c.Source, c.Genre, c.Align.Strategy, c.Diff.Granularity = kind, genre, strategy, granularity
	return c.Validate()
}

// Validate checks the enumerated values, the thresholds and the note patterns
func (c Config) Validate() error {
	if _, err := source.ParseKind(string(c.Source)); err != nil {
		return err
	}
	if _, err := segment.ParseGenre(string(c.Genre)); err != nil {
		return err
	}
	if err := c.Align.Validate(); err != nil {
		return err
	}
	if _, err := chardiff.ParseGranularity(string(c.Diff.Granularity)); err != nil {
		return err
	}
	if _, err := footnote.CompilePatterns(c.Footnotes.Patterns); err != nil {
		return err
	}
	if c.Footnotes.ThresholdMultiplier < 0 {
		return fmt.Errorf("footnote threshold multiplier %.2f is negative", c.Footnotes.ThresholdMultiplier)
	}
	return nil
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
