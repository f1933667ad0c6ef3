// Package mediagql is a GraphQL gateway for the media.ccc.de public API.
//
// The gateway translates GraphQL queries into requests against three
// upstreams and shapes the answers into paginated connections:
//
//   - the media.ccc.de REST API (conferences, events, recordings)
//   - the CDN mirror status list
//   - the media.ccc.de news feed
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│        cmd/mediagql (cobra)         │  Flags, config loading,
//	│   serve · validate · version        │  signal handling
//	└─────────────────────────────────────┘
//	           ↓ builds
//	┌─────────────────────────────────────┐
//	│          gateway/graphql            │  Schema, resolvers,
//	│  (graphql-go schema + HTTP server)  │  playground, /health
//	└─────────────────────────────────────┘
//	           ↓ reads from
//	┌─────────────────────────────────────┐
//	│             upstream                │  Rate limit, retry,
//	│  (media, mirrors, news sources)     │  circuit breaker, cache
//	└─────────────────────────────────────┘
//	           ↓ decodes into
//	┌─────────────────────────────────────┐
//	│     media · connection · order      │  Entities, pages,
//	│             nodeid                  │  local ordering, ids
//	└─────────────────────────────────────┘
//
// Upstream payloads use snake_case keys; they are converted to camelCase once
// at the boundary (pkg/keycase) and decoded into typed entities (media).
// Lists the upstream cannot paginate are fetched in full, ordered locally and
// windowed (order, connection). Lists it can paginate are requested page by
// page, which requires the offset to be a multiple of the limit.
//
// # Packages
//
// Domain:
//   - media: Conference, Event, Recording, Mirror and News entities
//   - connection: offset/limit windows and page info
//   - order: enum and input-object ordering with missing-last semantics
//   - nodeid: "<kind>-<key>" global ids for the Node interface
//
// Serving:
//   - gateway/graphql: schema, resolvers, request handler, server lifecycle
//   - gateway/http: request ids, logging, CORS and error mapping middleware
//   - upstream: HTTP clients for the three data sources
//   - config: layered configuration (defaults, file, .env, environment)
//
// Infrastructure:
//   - errors: classified errors (invalid, transient, fatal)
//   - metric: Prometheus registry and core metrics
//   - health: component health aggregation
//   - pkg/cache: response cache (memory, redis, none)
//   - pkg/retry: exponential backoff
//   - pkg/worker: bounded fan-out for related-event lookups
//   - pkg/keycase: snake_case to camelCase record conversion
//
// # Running
//
//	mediagql serve --config config.yaml
//	mediagql validate --log-format text
//
// Every setting can be overridden from the environment, for example
// MEDIAGQL_SERVER_BIND_ADDRESS=:9000 or MEDIAGQL_CACHE_BACKEND=redis.
//
// # Testing
//
// Unit tests use testify and run without network access; upstream clients are
// exercised against httptest servers. The redis cache has an integration test
// using testcontainers, guarded by the integration build tag.
package mediagql
