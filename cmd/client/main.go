package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/cosmos/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cl, cleanup, err := injector.InitializeClient(injector.ConfigPath(*configPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating client:", err)
		os.Exit(1)
	}
	defer cleanup()
	defer func() {
		_ = cl.Close()
	}()

	if err = cl.Connect(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error connecting:", err)
		return
	}

	if err = cl.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Client stopped:", err)
	}
}
