// Package serverrun boots a single-node Ora server: it opens the runtime
// under the data directory, builds the process logger from ORA_LOG_LEVEL /
// ORA_LOG_FORMAT, serves the HTTP API, and shuts everything down cleanly on
// SIGINT/SIGTERM.
package serverrun
