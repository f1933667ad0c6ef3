// Package config loads and validates the mediagql configuration.
//
// A configuration is assembled in layers. Built-in defaults come first,
// then the YAML or JSON files added to a Loader in order, then environment
// variables prefixed with MEDIAGQL_ (nested keys joined by underscores,
// e.g. MEDIAGQL_UPSTREAM_CACHE_TTL). A .env file can seed the environment
// before overrides are read.
//
// The merged document is checked against an embedded JSON Schema and then by
// the typed Validate methods of each section, which also fill in defaults
// and parse duration strings:
//
//	server    GraphQL HTTP server (gateway/graphql.Config)
//	upstream  endpoints, timeouts, cache TTL, rate limit, retry, breaker
//	cache     response cache backend (memory, redis, none)
//	metrics   Prometheus endpoint
//	log       slog level and format
//
// # Basic Usage
//
//	loader := config.NewLoader()
//	loader.AddDotEnv(".env")
//	loader.AddLayer("config.yaml")
//
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Validation errors are classified as invalid (see the errors package) and
// name the failing section.
package config
