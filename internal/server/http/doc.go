// Package httpserver exposes the Ora node over HTTP: feed create/push/read
// endpoints, Server-Sent Events subscriptions, health, and Prometheus
// metrics. Handlers live in the controllers subpackage; this package wires
// them into a single mux with CORS and graceful shutdown.
package httpserver
