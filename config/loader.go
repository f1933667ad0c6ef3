package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/barnslig/mediacccde-graphql/errors"
)

// Loader handles configuration loading with layers and overrides.
// Precedence, lowest first: defaults, file layers in the order added,
// environment variables.
type Loader struct {
	layers     []string
	dotenv     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		validation: true,
		envPrefix:  EnvPrefix,
	}
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	if path != "" {
		l.layers = append(l.layers, path)
	}
}

// AddDotEnv adds a .env file to load into the process environment before
// the environment overrides are read. Missing files are ignored.
func (l *Loader) AddDotEnv(path string) {
	if path != "" {
		l.dotenv = append(l.dotenv, path)
	}
}

// EnableValidation enables or disables typed validation. Schema validation
// always runs.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// Load merges defaults, layers and environment into a Config.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}
	if err := validateEnvironment(l.envPrefix); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "Load", "check environment")
	}

	v := viper.New()
	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults, err := Default().Map()
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(defaults); err != nil {
		return nil, errors.WrapFatal(err, "Loader", "Load", "apply defaults")
	}

	for _, path := range l.layers {
		if err := l.mergeLayer(v, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
			"Loader", "Load", "decode config")
	}

	doc, err := cfg.Map()
	if err != nil {
		return nil, err
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (l *Loader) loadDotEnv() error {
	for _, path := range l.dotenv {
		err := godotenv.Load(path)
		if err == nil || stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		return errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("load %s", path))
	}
	return nil
}

func (l *Loader) mergeLayer(v *viper.Viper, path string) error {
	data, err := safeReadFile(path)
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
			"Loader", "Load", fmt.Sprintf("read %s", path))
	}

	kind, _ := configType(path)
	v.SetConfigType(kind)
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
			"Loader", "Load", fmt.Sprintf("parse %s", path))
	}
	return nil
}
