// Package analytics implements the pure aggregation core of the
// platform: normalizing raw per-entity counter documents, partitioning
// daily records by entity, status, or time bucket, summing counters,
// and deriving engagement rates, health scores, and benchmark
// comparisons.
//
// Every function here is a single-pass pure transformation over its
// arguments: no I/O, no shared mutable state, safe to call
// concurrently. Fetching records, caching results, and tenant scoping
// belong to the calling layer.
package analytics
