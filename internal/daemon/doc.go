// Package daemon hosts the long-running process: single-instance file
// locking, the sync loop lifecycle, and the local HTTP API serving liveness
// and status.
package daemon
