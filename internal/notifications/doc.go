// Package notifications sends ntfy push notifications for page lifecycle
// events. An empty topic disables the service; callers never need to check.
package notifications
