// Package calibreweb integrates with a Calibre-Web instance: session login
// with CSRF handling, shelf management through the web forms, and book
// lookup through the OPDS catalog.
package calibreweb
