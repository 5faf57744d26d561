// Package reconcile maps normalized record trees onto catalog pages. It owns
// the page state machine: a pending page ends Synced, Error, or
// Duplicate-Archived, and child season/episode pages are created or updated
// in place before the parent's own properties are written.
package reconcile
