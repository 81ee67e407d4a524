package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var okStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#00FF00")).
	Bold(true)

func newPingCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the engine answers on its command port",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(rootOpts)
		},
	}
	return cmd
}

func runPing(opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	start := time.Now()
	sess, err := opts.newSession(context.Background())
	if err != nil {
		return fmt.Errorf("engine at %s: %w", cfg.Addr(), err)
	}
	defer sess.Close()
	connected := time.Since(start)

	start = time.Now()
	reply, err := sess.Exec("app.numsubnodes()")
	if err != nil {
		return err
	}
	count, err := reply.Int()
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, okStyle.Render("engine up")+fmt.Sprintf(
		" at %s: connect %s, round trip %s, %d nodes",
		cfg.Addr(), connected.Round(time.Millisecond), time.Since(start).Round(time.Millisecond), count))
	return nil
}
