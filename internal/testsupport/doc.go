// Package testsupport holds shared test fixtures: an in-memory catalog store
// and small config helpers used across package tests.
package testsupport
