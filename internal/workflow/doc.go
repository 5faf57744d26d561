// Package workflow runs the sync loop: the polling triggers that pick up
// pending, unreleased and refresh-flagged pages, the scheduled full-catalog
// refresh, and the in-flight guard that keeps overlapping cycles from
// touching the same page twice.
package workflow
