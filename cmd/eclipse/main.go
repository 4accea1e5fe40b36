package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/cli"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/session"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tui"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cli.DefaultOptions()
	opts.Version = version
	err := cli.NewRootCommand(opts).ExecuteContext(ctx)
	stop()
	if err != nil {
		if session.IsReauthRequired(err) {
			fmt.Fprintln(os.Stderr, tui.Warn(err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, tui.Error("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}
