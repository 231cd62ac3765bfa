// Package config loads the analysis configuration from a YAML file and
// applies defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied after load.
const (
	DefaultOutputDir       = "./reports"
	DefaultWorkers         = 4
	DefaultTopContributors = 10
)

// Repository identifies one repository to analyze.
type Repository struct {
	Owner       string `yaml:"owner"`
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name,omitempty"`
}

// Slug returns the canonical owner/name identifier.
func (r Repository) Slug() string {
	return r.Owner + "/" + r.Name
}

// Label returns the display name, falling back to the slug.
func (r Repository) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Slug()
}

// Config is the application configuration.
type Config struct {
	Repositories    []Repository `yaml:"repositories"`
	AnalysisYear    int          `yaml:"analysis_year,omitempty"`
	OutputDir       string       `yaml:"output_dir,omitempty"`
	Workers         int          `yaml:"workers,omitempty"`
	TopContributors int          `yaml:"top_contributors,omitempty"`
}

// Load reads the configuration file at path. A missing file is not an
// error; it yields a default configuration so repositories can come from
// flags instead.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AnalysisYear == 0 {
		c.AnalysisYear = time.Now().UTC().Year()
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Workers < 1 {
		c.Workers = DefaultWorkers
	}
	if c.TopContributors == 0 {
		c.TopContributors = DefaultTopContributors
	}
}

func (c *Config) validate() error {
	for _, repo := range c.Repositories {
		if repo.Owner == "" || repo.Name == "" {
			return fmt.Errorf("repository entry %q is missing owner or name", repo.Label())
		}
	}
	return nil
}

// AnalysisWindow returns the [from, to) time range covered by the
// configured analysis year, in UTC.
func (c *Config) AnalysisWindow() (time.Time, time.Time) {
	from := time.Date(c.AnalysisYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}
