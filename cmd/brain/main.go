// Command brain indexes a directory of documents and answers questions
// about them with a local or hosted language model.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/secondbrain-labs/brain/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, version, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
