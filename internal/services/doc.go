// Package services holds cross-cutting helpers for the external service
// clients: a sentinel-based error taxonomy used to classify failures at the
// workflow item boundary, and context annotation helpers that thread item
// identifiers and sweep names into structured logs.
package services
