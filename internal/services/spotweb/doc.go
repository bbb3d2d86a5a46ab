// Package spotweb searches a Newznab-compatible index for book releases.
package spotweb
