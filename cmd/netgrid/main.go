package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netgrid/internal/cli"
	ngerrors "github.com/matzehuels/netgrid/pkg/errors"
)

// Exit codes. A layout that cannot be routed is reported apart from bad input
// so scripts can tell a dense design from a broken one.
const (
	exitError      = 1
	exitUnroutable = 2
	exitInterrupt  = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return nil
	}

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupt
	case ngerrors.IsFatal(err):
		fmt.Fprintln(os.Stderr, "layout failed:", ngerrors.UserMessage(err))
		return exitUnroutable
	default:
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
}
