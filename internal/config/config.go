// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/thermogain/thermogain/internal/project"
	"github.com/thermogain/thermogain/pkg/datetime"
	"github.com/thermogain/thermogain/pkg/validation"
)

// Configuration holds all configuration for thermogain.
type Configuration struct {
	StartDate    string             `yaml:"startDate,omitempty"`
	Logging      LoggingConfig      `yaml:"logging,omitempty"`
	Output       OutputConfig       `yaml:"output,omitempty"`
	Engine       EngineConfig       `yaml:"engine,omitempty"`
	PriceHistory PriceHistoryConfig `yaml:"priceHistory,omitempty"`
	Database     DatabaseConfig     `yaml:"database,omitempty"`
	EnergyModels []ModelConfig      `yaml:"energyModels,omitempty"`
	Projects     []Project          `yaml:"projects,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, xlsx, pdf
	File   string `yaml:"file,omitempty"`
}

// PriceHistoryConfig locates the monthly price series used to refresh energy
// models. File takes precedence over URL.
type PriceHistoryConfig struct {
	File    string        `yaml:"file,omitempty"`
	URL     string        `yaml:"url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DatabaseConfig holds the PostgreSQL connection. An empty DSN keeps models
// and results in memory.
type DatabaseConfig struct {
	DSN     string `yaml:"dsn,omitempty"`
	Migrate bool   `yaml:"migrate,omitempty"`
}

// Project is one heat pump project to compute.
type Project struct {
	project.Snapshot `yaml:",inline" mapstructure:",squash"`
	Skip             bool              `yaml:"skip,omitempty"`
	Breakeven        []BreakevenConfig `yaml:"breakeven,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	v := viper.New()
	v.SetConfigType("yml")
	if err := v.ReadConfig(bytes.NewReader(body)); err != nil {
		return nil, fmt.Errorf("error parsing config, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.Engine.Normalize()
	for i := range configuration.Projects {
		for j := range configuration.Projects[i].Breakeven {
			configuration.Projects[i].Breakeven[j].Normalize()
		}
	}
	return &configuration, nil
}

// FixedTime returns the calculation date: the first day of StartDate when
// set, otherwise now.
func (c *Configuration) FixedTime(now time.Time) (time.Time, error) {
	if strings.TrimSpace(c.StartDate) == "" {
		return now, nil
	}
	t, err := datetime.ParsePeriod(c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	return t, nil
}

// ActiveProjects returns the projects not marked skip, with generated ids for
// the ones lacking one.
func (c *Configuration) ActiveProjects() []Project {
	var out []Project
	for i, p := range c.Projects {
		if p.Skip {
			continue
		}
		if p.ProjectID == "" {
			p.ProjectID = fmt.Sprintf("project-%d", i+1)
		}
		if p.Name == "" {
			p.Name = p.ProjectID
		}
		out = append(out, p)
	}
	return out
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors are returned separately.
func (c *Configuration) ValidateConfiguration() ([]string, error) {
	var warnings []string

	if err := c.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if _, err := c.FixedTime(time.Time{}); err != nil {
		return nil, err
	}
	for i := range c.EnergyModels {
		if _, err := c.EnergyModels[i].ToModel(); err != nil {
			return nil, fmt.Errorf("energyModels[%d]: %w", i, err)
		}
	}

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
	}

	if c.PriceHistory.File == "" && c.PriceHistory.URL == "" && len(c.EnergyModels) == 0 {
		warnings = append(warnings, "no price history or energy models configured; calculations need stored models")
	}
	if c.PriceHistory.File != "" && c.PriceHistory.URL != "" {
		warnings = append(warnings, "both priceHistory.file and priceHistory.url are set; the file is used")
	}

	active := 0
	seen := make(map[string]bool)
	for i, p := range c.Projects {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("projects[%d]", i)
		}
		if p.Skip {
			continue
		}
		active++
		if p.ProjectID != "" {
			if seen[p.ProjectID] {
				warnings = append(warnings, fmt.Sprintf("project %s: duplicate projectId %q", name, p.ProjectID))
			}
			seen[p.ProjectID] = true
		}
		projectWarnings, err := validation.ValidateSnapshot(p.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", name, err)
		}
		for _, w := range projectWarnings {
			warnings = append(warnings, fmt.Sprintf("project %s: %s", name, w))
		}
		for j := range p.Breakeven {
			if err := p.Breakeven[j].Validate(); err != nil {
				return nil, fmt.Errorf("project %s breakeven %d: %w", name, j, err)
			}
		}
	}
	if active == 0 {
		warnings = append(warnings, "no active projects configured")
	}

	return warnings, nil
}
