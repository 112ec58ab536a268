package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/internal/cli"
	"github.com/ulikoehler/slinktree/pkg/errors"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInvalidArgs = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	c := cli.New(stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SilenceErrors = true

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Config loading runs after the level is set so it can log at debug.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if loadConfig == nil {
			return nil
		}
		return loadConfig(cmd, args)
	}

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case stderrors.Is(err, context.Canceled):
		return exitInterrupted
	}

	if code := errors.GetCode(err); code != "" {
		fmt.Fprintf(stderr, "Error [%s]: %s\n", code, errors.UserMessage(err))
	} else {
		fmt.Fprintln(stderr, "Error:", err)
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidFormat:
		return exitInvalidArgs
	}
	return exitFailure
}
