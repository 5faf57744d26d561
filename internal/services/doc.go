// Package services holds the error taxonomy and context plumbing shared by
// the resolver, reconciliation engine, and sync loop.
package services
