// Package resolvecache memoizes search resolutions (query text to TMDB id)
// in a small SQLite database so repeated syncs of the same title skip the
// search round trip. Entries expire after a TTL; the cache is disposable and
// safe to delete at any time.
package resolvecache
