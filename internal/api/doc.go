// Package api defines transport-friendly representations of wishlist
// entries and daemon state shared by the IPC layer and the CLI. Converters
// in this package are the only place queue models are flattened for the
// wire, so field names stay stable across endpoints.
package api
