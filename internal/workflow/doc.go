// Package workflow drives wishlist items through the acquisition
// lifecycle. A search sweep matches pending items against the index and
// submits found releases for download; an import sweep watches the
// catalog for finished imports and files them onto the requested shelf.
// Both sweeps run on independent timers inside the Manager, and a manual
// trigger can start a search sweep early as long as one is not already in
// flight.
package workflow
