package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/photonlink/fimmgo/pkg/modes"
	"github.com/photonlink/fimmgo/pkg/registry"
	"github.com/photonlink/fimmgo/pkg/structure"
)

// buildSession is the slice of the session the solve command needs,
// narrowed so tests can script it.
type buildSession interface {
	BuildWaveguide(wg *structure.Waveguide, name string) (*registry.BuiltNode, error)
	BuildDevice(dev *structure.Device, name string) (*registry.BuiltNode, error)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#888888"))

	fundamentalStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#00FF00"))
)

type solveOptions struct {
	*rootOptions
	Target     string
	Wavelength float64
	MaxModes   int
}

func newSolveCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &solveOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <structures.yaml>",
		Short: "Build a structure on the engine and solve its modes",
		Long: `Build the structures described in a YAML file on the engine and
solve the selected one for its eigenmodes.

The file names materials, waveguides assembled from them, and devices
assembled from the waveguides; its solve block selects the target and
the solver parameters. Flags override the solve block.

Example:
  fimmgo solve --host 10.0.0.5 ridge.yaml
  fimmgo solve --target cavity --max-modes 10 ridge.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "structure to solve (default from the file's solve block)")
	cmd.Flags().Float64Var(&opts.Wavelength, "wavelength", 0, "wavelength in um (default from the file)")
	cmd.Flags().IntVar(&opts.MaxModes, "max-modes", 0, "number of modes to solve for")

	return cmd
}

func runSolve(opts *solveOptions, path string) error {
	doc, lib, err := structure.LoadDocument(path)
	if err != nil {
		return err
	}

	solve := doc.Solve
	if opts.Target != "" {
		solve.Target = opts.Target
	}
	if opts.Wavelength != 0 {
		solve.Wavelength = opts.Wavelength
	}
	if opts.MaxModes != 0 {
		solve.MaxModes = opts.MaxModes
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := opts.newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	target, targetName, err := buildTarget(sess, lib, solve.Target)
	if err != nil {
		return err
	}

	ms, err := sess.ComputeModes(target, modes.SolveOptions{
		Wavelength: solve.Wavelength,
		MaxModes:   solve.MaxModes,
		MinTEFrac:  solve.MinTEFrac,
		MaxTEFrac:  solve.MaxTEFrac,
	})
	if err != nil {
		return err
	}

	printModes(os.Stdout, targetName, ms)
	return nil
}

// buildTarget builds the named structure on the engine and returns its
// identity for the solver plus the resolved name. An empty name picks
// the only structure in the file, devices first.
func buildTarget(sess buildSession, lib *structure.Library, name string) (any, string, error) {
	if name == "" {
		switch {
		case len(lib.Devices) == 1:
			for n := range lib.Devices {
				name = n
			}
		case len(lib.Devices) == 0 && len(lib.Waveguides) == 1:
			for n := range lib.Waveguides {
				name = n
			}
		default:
			return nil, "", fmt.Errorf("no solve target: name one with --target")
		}
	}
	if dev, ok := lib.Devices[name]; ok {
		if _, err := sess.BuildDevice(dev, name); err != nil {
			return nil, "", err
		}
		return dev, name, nil
	}
	if wg, ok := lib.Waveguides[name]; ok {
		if _, err := sess.BuildWaveguide(wg, name); err != nil {
			return nil, "", err
		}
		return wg, name, nil
	}
	return nil, "", fmt.Errorf("unknown solve target %q", name)
}

// printModes renders the mode table, fundamental mode highlighted.
func printModes(w *os.File, target string, ms []modes.Mode) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %d modes", target, len(ms))))
	if len(ms) == 0 {
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(
		"%4s  %12s  %12s  %8s  %8s  %12s",
		"mode", "re(neff)", "im(neff)", "TE%", "conf", "loss dB/cm")))
	for _, m := range ms {
		row := fmt.Sprintf(
			"%4d  %12.6f  %12.3e  %8.2f  %8.4f  %12.4g",
			m.Index, real(m.Neff), imag(m.Neff), m.TEFrac, m.Confinement, lossDBPerCM(m.Loss))
		if m.Index == 0 {
			row = fundamentalStyle.Render(row)
		}
		fmt.Fprintln(w, row)
	}
}

// lossDBPerCM converts a per-micron power loss to dB/cm.
func lossDBPerCM(perUM float64) float64 {
	return perUM * 1e4 * 10 / math.Ln10
}
