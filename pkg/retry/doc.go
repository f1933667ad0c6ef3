// Package retry provides exponential backoff retry logic for transient failures.
//
// Upstream fetches use it to ride out short network hiccups and 5xx answers.
// Callers decide what is worth retrying through Config.ShouldRetry; errors
// wrapped with NonRetryable always fail immediately.
//
//	body, err := retry.DoWithResult(ctx, cfg, func() ([]byte, error) {
//	    return fetch(ctx, url)
//	})
//
// Delays grow by Multiplier from InitialDelay up to MaxDelay. With AddJitter
// up to 25% of random delay is added so concurrent callers spread out.
// Context cancellation stops both the attempts and the backoff sleep.
package retry
