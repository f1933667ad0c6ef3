// Package graphql serves the media.ccc.de GraphQL API over HTTP.
//
// The package is the composition root of the gateway. A Resolver reads from
// three data sources (media API, CDN mirror list, news feed), NewSchema
// exposes the resolver as a graphql-go schema, and a Gateway serves the
// schema together with the GraphQL Playground and a health endpoint.
//
// # Schema
//
// Every entity (Conference, Event, Recording, Mirror, News) implements the
// Node interface and carries a globalId of the form "<kind>-<key>", e.g.
// "conference-36c3". Query.node resolves any global id; malformed ids and
// upstream misses resolve to null.
//
// Lists are returned as connections:
//
//	{
//	  conferences(offset: 0, limit: 10, order: eventLastReleasedAt_DESC) {
//	    totalCount
//	    pageInfo { hasNextPage hasPreviousPage }
//	    nodes { globalId acronym title }
//	  }
//	}
//
// Conferences, mirrors, news and the events of a conference are fetched in
// full and ordered locally, either by an enum token (date_ASC, promoted) or by
// an orderBy input ({field: viewCount, direction: DESC}); orderBy wins when
// both are given. Query.events, Query.recordings and Query.eventsSearch are
// paginated by the upstream, so their offset must be a multiple of limit.
//
// # Errors
//
// Resolver errors carry a "code" extension:
//
//	BAD_USER_INPUT             invalid pagination or ordering, with "invalidArgs"
//	TIMEOUT                    request or upstream deadline exceeded
//	CANCELLED                  client went away
//	UPSTREAM_UNAVAILABLE       upstream down or circuit open, with "retryable"
//	UPSTREAM_INVALID_RESPONSE  upstream payload could not be decoded
//	INTERNAL_ERROR             anything else
//
// Requests nested deeper than Config.MaxQueryDepth are rejected with
// QUERY_TOO_DEEP before execution. Introspection fields do not count towards
// the depth.
//
// # Configuration
//
//	server:
//	  bind_address: ":8080"
//	  path: /graphql
//	  enable_playground: true
//	  enable_cors: true
//	  cors_origins: ["*"]
//	  timeout: 30s
//	  max_query_depth: 10
package graphql
