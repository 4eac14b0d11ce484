package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/oneshot/internal/logging"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "oneshot",
		Short:   "Perform single HTTP exchanges from the terminal",
		Version: version,
		Long: `oneshot performs one HTTP exchange at a time and shows exactly what
happened: the request, the response headers and body, and on request a
full wire trace. Responses can be checked with JSON extractions and
JSON Schema, repeated sequentially for a latency summary, and journaled
to a local SQLite history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.PersistentFlags().String("log-level", logging.DefaultLevel, "Diagnostic log level (debug, info, warn, error)")
	root.PersistentFlags().StringP("output", "o", "text", "Output format (text, json, yaml)")

	root.AddCommand(
		newGetCmd(),
		newHeadCmd(),
		newPostCmd(),
		newPutCmd(),
		newDeleteCmd(),
		newRunCmd(),
		newHistoryCmd(),
	)
	return root
}

// Execute runs the root command, cancelling the active exchange on
// interrupt. The error, if any, has already been printed.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(RootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}
