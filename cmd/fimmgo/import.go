package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/photonlink/fimmgo/pkg/project"
)

type importOptions struct {
	*rootOptions
	Name string
}

func newImportCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &importOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <project.prj>",
		Short: "Open a project file on the engine and list its nodes",
		Long: `Open an existing project file on the engine and list the nodes it
contains. The path must be reachable from the engine's host, not from
this machine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "node name for the project (default: file basename)")

	return cmd
}

func runImport(opts *importOptions, path string) error {
	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	sess, err := opts.newSession(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()

	node, err := sess.ImportProject(path, name)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, titleStyle.Render(fmt.Sprintf("%s (%s)", node.Name, node.Path)))
	for _, child := range project.List(sess.Registry(), node) {
		fmt.Fprintf(os.Stdout, "  %-30s %s\n", child.Name, child.Path)
	}
	return nil
}
