// Package query parses the title-embedded query DSL that drives catalog
// synchronization: a free-text main query, an optional bracketed filter list,
// and the trailing pending delimiter.
//
//	Alien[type=movie, year=1979];
//
// Malformed filters are dropped with a diagnostic and never abort parsing;
// only an empty main query or an episode filter without a season filter is a
// terminal validation error.
package query
