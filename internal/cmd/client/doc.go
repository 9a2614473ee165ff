// Package client provides the `ora` command-line client.
//
// The CLI talks to the Ora HTTP API to perform common feed operations from
// a terminal. It is primarily intended for developers and operators.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it defaults
// to http://127.0.0.1:8080 and can be overridden with ORA_HTTP. The
// producer identity for pushes comes from --producer or ORA_PRODUCER.
//
// Usage
//
//	ora feed create --name prices
//
//	ora feed push --feed prices --data '{"eth":2000}' --producer oracle-1
//
//	ora feed data --feed prices --filter 'age_ms < 60000' --limit 10
//
//	ora feed cleanup --feed prices
//	ora feed stats --feed prices
//	ora feed list
//
//	# Stream committed entries as they land
//	ora feed subscribe --feed prices --after 0 --limit 5
package client
