// Package config loads and validates FCBM project files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

const DefaultOutputName = "fcbm.tif"

type Config struct {
	Project    string           `yaml:"project"`
	Inputs     InputsConfig     `yaml:"inputs"`
	Output     OutputConfig     `yaml:"output"`
	Processing ProcessingConfig `yaml:"processing"`
	Report     ReportConfig     `yaml:"report"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// InputsConfig names the three HRP maps (start, midpoint, end).
type InputsConfig struct {
	Start string `yaml:"start" validate:"required"`
	Mid   string `yaml:"mid" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

type OutputConfig struct {
	Path   string `yaml:"path" validate:"required"`
	Driver string `yaml:"driver" validate:"oneof=gdal opencv memory"`
}

type ProcessingConfig struct {
	Classifier string `yaml:"classifier" validate:"oneof=tiled sequential"`
	Workers    int    `yaml:"workers" validate:"gte=0"`
	TileRows   int    `yaml:"tile_rows" validate:"gte=1"`
}

type ReportConfig struct {
	Format      string `yaml:"format" validate:"oneof=text json"`
	Ledger      string `yaml:"ledger"`
	MetricsFile string `yaml:"metrics_file"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error disabled"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Default returns a configuration with every optional field populated.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Path:   DefaultOutputName,
			Driver: "gdal",
		},
		Processing: ProcessingConfig{
			Classifier: "tiled",
			TileRows:   256,
		},
		Report: ReportConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML project file on top of the defaults. Relative input and
// output paths resolve against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML on top of the defaults without validating.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Output.Path == "" {
		c.Output.Path = d.Output.Path
	}
	if c.Output.Driver == "" {
		c.Output.Driver = d.Output.Driver
	}
	if c.Processing.Classifier == "" {
		c.Processing.Classifier = d.Processing.Classifier
	}
	if c.Processing.TileRows == 0 {
		c.Processing.TileRows = d.Processing.TileRows
	}
	if c.Report.Format == "" {
		c.Report.Format = d.Report.Format
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
}

func (c *Config) resolvePaths(base string) {
	if base == "" || base == "." {
		return
	}
	for _, p := range []*string{&c.Inputs.Start, &c.Inputs.Mid, &c.Inputs.End, &c.Output.Path, &c.Report.Ledger, &c.Report.MetricsFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration, reporting every failing field.
func (c *Config) Validate() error {
	c.applyDefaults()
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
