// Package cache provides an in-memory keyed cache with lazy TTL expiry.
//
// Key features:
//   - Generic entries (Cache[T]) so each call site keeps its payload type
//   - Failures are cached too (IsError), so a failing upstream call is not
//     retried more than once per TTL window
//   - The TTL is re-resolved from live settings on every Get, so changing the
//     configured cache time takes effect for existing entries without a Clear
//   - No background sweep; staleness is decided at read time
//
// The cache never evicts by size. Clear discards the whole mapping.
package cache
