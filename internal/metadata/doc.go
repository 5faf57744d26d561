// Package metadata defines the flat normalized record written to catalog
// pages and the pure normalization functions that produce one from raw TMDB
// payloads. There is one normalization function per media variant; the Type
// tag on the record tells consumers which variant they hold.
package metadata
