// Package id generates 128-bit lexicographically sortable identifiers used to
// tag pushed feed entries in notifications and API responses. An ID embeds a
// millisecond timestamp and a per-process sequence, so IDs sort in push order
// even across clock regressions.
package id
