// Package queue persists the wishlist and its audit log in SQLite.
//
// Items move through pending, searching, found, importing, and finally
// shelved or failed. The store records every transition in a log table so
// the history of an item survives restarts.
package queue
