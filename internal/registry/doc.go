// Package registry is the process-wide authoritative store of discovered
// extraction units.
//
// The registry owns unit metadata (operations, category, priority, enabled
// state, dependency declarations), discovery statistics, and the cached
// dependency graph. All mutation happens under one write lock shared with
// graph-cache invalidation and statistics, so readers never observe a
// half-updated unit. Extraction calls themselves never run under this lock.
package registry
