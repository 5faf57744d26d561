// Package catalog is the client for the destination page store: a
// hierarchical database of show, season and episode pages addressed by a
// fixed property schema. It exposes property-filter queries with cursor
// pagination, page create/update/archive, and block-level annotation
// management used for error and duplicate notices.
package catalog
