// Package controllers contains the HTTP handlers for the Ora API: feed
// lifecycle, producer pushes, windowed reads with optional CEL filters,
// cleanup, stats, and SSE subscriptions.
package controllers
