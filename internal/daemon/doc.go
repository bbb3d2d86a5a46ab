// Package daemon ties the wishlist store, workflow manager, and
// notification service into a single long-running process. It owns the
// instance lock that prevents two daemons from sharing one database and
// exposes the operations the IPC layer serves to the CLI.
package daemon
