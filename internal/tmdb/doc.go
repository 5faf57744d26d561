// Package tmdb provides the client for The Movie Database API used by the
// metadata resolver. Detail endpoints always embed credits and videos in the
// same request so a record resolves in one round trip per level.
package tmdb
