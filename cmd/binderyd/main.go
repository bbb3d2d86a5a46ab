package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bindery/internal/config"
	"bindery/internal/daemonrun"
)

func main() {
	var configPath string
	var socketPath string
	var logLevel string
	flag.StringVar(&configPath, "config", "", "configuration file path")
	flag.StringVar(&socketPath, "socket", "", "IPC socket path")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	opts := daemonrun.Options{LogLevel: logLevel, SocketPath: socketPath}
	if err := daemonrun.Run(context.Background(), cfg, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
