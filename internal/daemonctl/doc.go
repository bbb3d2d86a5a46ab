// Package daemonctl orchestrates daemon process lifecycle from the CLI
// side: launching a detached daemon, waiting for its socket, requesting a
// graceful stop, and force-killing a wedged process as a last resort.
package daemonctl
