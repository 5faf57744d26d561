// Package resolve turns parsed title queries into normalized record trees.
// Search scoping, first-result selection, hierarchical season/episode fetches
// and incremental refresh all live here; TMDB access goes through the
// tmdb.Searcher interface so tests can substitute fakes.
package resolve
