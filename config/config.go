package config

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/gateway/graphql"
	"github.com/barnslig/mediacccde-graphql/metric"
	"github.com/barnslig/mediacccde-graphql/pkg/cache"
	"github.com/barnslig/mediacccde-graphql/upstream"
)

// EnvPrefix prefixes every environment override, e.g. MEDIAGQL_SERVER_PATH.
const EnvPrefix = "MEDIAGQL"

// Config represents the complete application configuration
type Config struct {
	Server   graphql.Config  `json:"server" mapstructure:"server"`
	Upstream upstream.Config `json:"upstream" mapstructure:"upstream"`
	Cache    cache.Config    `json:"cache" mapstructure:"cache"`
	Metrics  metric.Config   `json:"metrics" mapstructure:"metrics"`
	Log      LogConfig       `json:"log" mapstructure:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate normalizes the log settings.
func (l *LogConfig) Validate() error {
	l.Level = strings.ToLower(l.Level)
	l.Format = strings.ToLower(l.Format)
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}

	if !slices.Contains(logLevels, l.Level) {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LogConfig", "Validate",
			fmt.Sprintf("invalid log level: %s", l.Level))
	}
	if !slices.Contains(logFormats, l.Format) {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "LogConfig", "Validate",
			fmt.Sprintf("invalid log format: %s", l.Format))
	}
	return nil
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Server:   graphql.DefaultConfig(),
		Upstream: upstream.DefaultConfig(),
		Cache:    cache.DefaultConfig(),
		Metrics:  metric.DefaultConfig(),
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// Validate checks every section and applies section defaults. Errors name
// the failing section.
func (c *Config) Validate() error {
	sections := []struct {
		name     string
		validate func() error
	}{
		{"server", c.Server.Validate},
		{"upstream", c.Upstream.Validate},
		{"cache", c.Cache.Validate},
		{"metrics", c.Metrics.Validate},
		{"log", c.Log.Validate},
	}

	for _, s := range sections {
		if err := s.validate(); err != nil {
			return errors.WrapInvalid(err, "Config", "Validate", s.name)
		}
	}
	return nil
}

// Map returns the configuration as a generic document keyed by the
// configuration file names.
func (c *Config) Map() (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.WrapFatal(err, "Config", "Map", "marshal config")
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapFatal(err, "Config", "Map", "unmarshal config")
	}
	return doc, nil
}

// YAML renders the configuration with the same keys a config file uses.
func (c *Config) YAML() ([]byte, error) {
	doc, err := c.Map()
	if err != nil {
		return nil, err
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.WrapFatal(err, "Config", "YAML", "marshal yaml")
	}
	return out, nil
}

// SaveToFile writes the configuration as YAML or JSON depending on the
// extension of path.
func (c *Config) SaveToFile(path string) error {
	kind, err := configType(path)
	if err != nil {
		return errors.WrapInvalid(err, "Config", "SaveToFile", "select format")
	}

	var data []byte
	if kind == "json" {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = c.YAML()
	}
	if err != nil {
		return err
	}

	if err := safeWriteFile(path, data); err != nil {
		return errors.WrapInvalid(err, "Config", "SaveToFile", "write config")
	}
	return nil
}

// Masked returns a copy of the config with secrets replaced by "***".
func (c *Config) Masked() *Config {
	clone := *c
	if clone.Cache.Redis.Password != "" {
		clone.Cache.Redis.Password = "***"
	}
	return &clone
}

// String returns a JSON representation of the config with secrets masked
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Masked(), "", "  ")
	return string(data)
}
