package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/photonlink/fimmgo/pkg/logging"
	"github.com/photonlink/fimmgo/pkg/metrics"
	"github.com/photonlink/fimmgo/pkg/session"
)

// rootOptions holds global flags shared by all commands.
type rootOptions struct {
	ConfigPath string
	Host       string
	Port       int
	Verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fimmgo",
		Short: "Drive a mode-solving engine over its command port",
		Long: `fimmgo builds layered waveguide structures on a running engine,
solves for their eigenmodes and reads the results back.

The engine must already be listening on its command port; pass its
address with --host/--port or a config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Host, "host", "", "engine host (overrides config)")
	cmd.PersistentFlags().IntVar(&opts.Port, "port", 0, "engine port (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newSolveCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newExecCommand(opts))
	cmd.AddCommand(newPingCommand(opts))

	return cmd
}

// loadConfig resolves the session config from the config file and flag
// overrides.
func (o *rootOptions) loadConfig() (session.Config, error) {
	cfg := session.DefaultConfig()
	if o.ConfigPath != "" {
		var err error
		cfg, err = session.LoadConfig(o.ConfigPath)
		if err != nil {
			return session.Config{}, err
		}
	}
	if o.Host != "" {
		cfg.Host = o.Host
	}
	if o.Port != 0 {
		cfg.Port = o.Port
	}
	return cfg, cfg.Validate()
}

// newSession builds a connected session from the resolved config.
func (o *rootOptions) newSession(ctx context.Context) (*session.Session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	level := logging.InfoLevel
	if o.Verbose {
		level = logging.DebugLevel
	}
	sess, err := session.New(cfg, session.Options{
		Logger:  logging.NewJSONLogger(os.Stderr, level),
		Metrics: metrics.NewRegistry(),
	})
	if err != nil {
		return nil, err
	}
	if err := sess.Connect(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}
