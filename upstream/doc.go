// Package upstream fetches data from the services behind the gateway.
//
// A Client talks to one source over HTTP. Each request is looked up in the
// response cache first; on a miss it waits for the rate limiter and runs
// through the retry policy, with every attempt guarded by a circuit
// breaker. Failures are classified:
//
//   - 404 is errors.ErrNotFound, which resolvers render as null
//   - 429, 5xx, timeouts and network errors are transient and retried
//   - other 4xx and malformed payloads are invalid and returned as is
//   - an open breaker fails fast with errors.ErrCircuitOpen
//
// The data sources built on a Client decode records into the media types:
// MediaAPI for conferences, events and recordings, MirrorAPI for the CDN
// mirror list and NewsAPI for the Atom feed.
package upstream
