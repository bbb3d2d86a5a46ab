// Package daemonrun wires configuration, logging, the wishlist store, the
// workflow manager, and the IPC server into a runnable daemon process. Both
// the binderyd binary and the CLI's foreground daemon command share this
// entry point.
package daemonrun
