package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/meshbridge/bridge/cli"
	"github.com/spaghettifunk/meshbridge/bridge/core"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop long-running commands such as watch
	go func() {
		<-sigCh
		cancel()
	}()

	if err := cli.New(os.Stdout).Execute(ctx, os.Args[1:]); err != nil {
		core.LogError("%v", err)
		os.Exit(1)
	}
}
