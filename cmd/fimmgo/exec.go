package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newExecCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <command>...",
		Short: "Send a raw command to the engine and print the reply",
		Long: `Send a raw command to the engine in its own grammar and print the
reply payload. Multiple arguments are joined with newlines into one
batch.

Example:
  fimmgo exec 'app.numsubnodes()'
  fimmgo exec 'app.subnodes[1].nodename()'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(rootOpts, strings.Join(args, "\n"))
		},
	}
	return cmd
}

func runExec(opts *rootOptions, command string) error {
	sess, err := opts.newSession(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()

	reply, err := sess.Exec(command)
	if err != nil {
		return err
	}
	if raw := reply.Raw(); raw != "" {
		fmt.Fprintln(os.Stdout, raw)
	}
	return nil
}
