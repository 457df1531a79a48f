// Package realtime provides a short-lived cache in front of the game-center
// detail pages.
//
// A Fetcher answers "give me the summary (or roster) behind this link" by
// serving a cached payload younger than the TTL, or by calling the source:
// paced per kind by a rate limiter, retried with exponential backoff, and
// deduplicated per key so concurrent callers share one fetch. When every
// attempt fails, the last good payload is returned marked stale. Fetch never
// returns an error; failures are described in the Outcome.
package realtime
