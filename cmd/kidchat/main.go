package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/doeshing/kidchat/internal/infrastructure/cli"
)

func main() {
	// API keys may live in a .env file next to where kidchat runs.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(cli.Options{
		Verbose:    isVerbose(),
		In:         os.Stdin,
		Out:        os.Stdout,
		SpinnerOut: os.Stderr,
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("KIDCHAT_DEBUG"), "1") || strings.EqualFold(os.Getenv("KIDCHAT_DEBUG"), "true")
}
