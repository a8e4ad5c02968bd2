// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/common/model"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/grafana/dashgen/pkg/catalog"
	"github.com/grafana/dashgen/pkg/dashboard"
)

const (
	DefaultOutputDir      = "json-dashboards"
	DefaultGrafanaTimeout = model.Duration(30 * time.Second)
)

// Config is the dashgen configuration file.
type Config struct {
	OutputDir   string            `yaml:"output_dir"`
	Dashboards  []string          `yaml:"dashboards"`
	DataSources DataSourcesConfig `yaml:"datasources"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Grafana     GrafanaConfig     `yaml:"grafana"`
}

type DataSourcesConfig struct {
	Metrics DataSourceConfig `yaml:"metrics"`
	Logs    DataSourceConfig `yaml:"logs"`
}

type DataSourceConfig struct {
	Type string `yaml:"type"`
	UID  string `yaml:"uid"`
}

func (c DataSourceConfig) validate() error {
	if c.Type == "" || c.UID == "" {
		return errors.New("type and uid are required")
	}
	return nil
}

type DefaultsConfig struct {
	Refresh string `yaml:"refresh"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`
}

// GrafanaConfig enables pushing dashboards to Grafana when Address is set.
type GrafanaConfig struct {
	Address string         `yaml:"address"`
	APIKey  string         `yaml:"api_key"`
	Timeout model.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads, defaults and validates the configuration file at path.
func Load(fs afero.Fs, path string) (*Config, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return cfg, nil
}

// Parse decodes a configuration document. Unknown fields are rejected.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "parsing config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}

	ds := catalog.DefaultDataSources()
	if c.DataSources.Metrics == (DataSourceConfig{}) {
		c.DataSources.Metrics = DataSourceConfig{Type: ds.Metrics.Type, UID: ds.Metrics.UID}
	}
	if c.DataSources.Logs == (DataSourceConfig{}) {
		c.DataSources.Logs = DataSourceConfig{Type: ds.Logs.Type, UID: ds.Logs.UID}
	}

	defaults := catalog.DefaultDefaults()
	if c.Defaults.Refresh == "" {
		c.Defaults.Refresh = defaults.Refresh
	}
	if c.Defaults.From == "" {
		c.Defaults.From = defaults.From
	}
	if c.Defaults.To == "" {
		c.Defaults.To = defaults.To
	}

	if c.Grafana.Timeout == 0 {
		c.Grafana.Timeout = DefaultGrafanaTimeout
	}
}

// Validate checks the settings that can be checked without building a dashboard.
func (c *Config) Validate() error {
	if _, err := catalog.Select(c.Dashboards); err != nil {
		return errors.Wrap(err, "dashboards")
	}
	if err := c.DataSources.Metrics.validate(); err != nil {
		return errors.Wrap(err, "datasources.metrics")
	}
	if err := c.DataSources.Logs.validate(); err != nil {
		return errors.Wrap(err, "datasources.logs")
	}
	if d, err := model.ParseDuration(c.Defaults.Refresh); err != nil || d <= 0 {
		return fmt.Errorf("defaults.refresh: %q is not a positive duration", c.Defaults.Refresh)
	}
	if c.Grafana.Address != "" {
		u, err := url.Parse(c.Grafana.Address)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("grafana.address: %q is not an absolute URL", c.Grafana.Address)
		}
	}
	return nil
}

func (c *Config) CatalogDataSources() catalog.DataSources {
	return catalog.DataSources{
		Metrics: dashboard.DataSourceRef{Type: c.DataSources.Metrics.Type, UID: c.DataSources.Metrics.UID},
		Logs:    dashboard.DataSourceRef{Type: c.DataSources.Logs.Type, UID: c.DataSources.Logs.UID},
	}
}

func (c *Config) CatalogDefaults() catalog.Defaults {
	return catalog.Defaults{Refresh: c.Defaults.Refresh, From: c.Defaults.From, To: c.Defaults.To}
}
