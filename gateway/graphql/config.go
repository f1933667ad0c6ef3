package graphql

import (
	"fmt"
	"time"

	"github.com/barnslig/mediacccde-graphql/errors"
)

// Config holds configuration for the GraphQL HTTP server
type Config struct {
	// BindAddress is the HTTP bind address (default: ":8080")
	BindAddress string `json:"bind_address" mapstructure:"bind_address"`

	// Path is the GraphQL endpoint path (default: "/graphql")
	Path string `json:"path" mapstructure:"path"`

	// EnablePlayground serves the GraphQL Playground UI on / (default: true)
	EnablePlayground bool `json:"enable_playground" mapstructure:"enable_playground"`

	// EnableCORS enables CORS headers (default: true)
	EnableCORS bool `json:"enable_cors" mapstructure:"enable_cors"`

	// CORSOrigins lists allowed CORS origins (default: ["*"])
	CORSOrigins []string `json:"cors_origins,omitempty" mapstructure:"cors_origins"`

	// TimeoutStr bounds the execution of a single request (default: "30s")
	TimeoutStr string `json:"timeout,omitempty" mapstructure:"timeout"`

	// MaxQueryDepth limits GraphQL query nesting depth (default: 10)
	MaxQueryDepth int `json:"max_query_depth,omitempty" mapstructure:"max_query_depth"`

	// timeout is the parsed duration (internal use)
	timeout time.Duration
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if c.BindAddress == "" {
		c.BindAddress = ":8080"
	}

	if c.Path == "" {
		c.Path = "/graphql"
	}
	if c.Path[0] != '/' {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"path must start with /")
	}
	if c.Path == "/" && c.EnablePlayground {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"path / collides with the playground")
	}

	if c.TimeoutStr == "" {
		c.timeout = 30 * time.Second
	} else {
		timeout, err := time.ParseDuration(c.TimeoutStr)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "Validate",
				fmt.Sprintf("invalid timeout format: %s", c.TimeoutStr))
		}
		if timeout < 100*time.Millisecond || timeout > 5*time.Minute {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"timeout must be between 100ms and 5m")
		}
		c.timeout = timeout
	}

	if c.MaxQueryDepth == 0 {
		c.MaxQueryDepth = 10
	}
	if c.MaxQueryDepth < 1 || c.MaxQueryDepth > 50 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_query_depth must be between 1 and 50")
	}

	if c.EnableCORS && len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}

	return nil
}

// Timeout returns the parsed timeout duration
func (c *Config) Timeout() time.Duration {
	return c.timeout
}

// DefaultConfig returns default GraphQL server configuration
func DefaultConfig() Config {
	return Config{
		BindAddress:      ":8080",
		Path:             "/graphql",
		EnablePlayground: true,
		EnableCORS:       true,
		CORSOrigins:      []string{"*"},
		TimeoutStr:       "30s",
		MaxQueryDepth:    10,
	}
}
