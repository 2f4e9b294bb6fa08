// Package cli implements guardctl, a command line tool evaluating tokens, routes and navigation guard decisions
// offline.
package cli

import (
	"github.com/kglearn/frontgate/internal/router"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	routesFile string
}

// table loads the route table from the --routes file or falls back to the built-in table
func (opts *rootOptions) table() (*router.Table, error) {
	if opts.routesFile == "" {
		return router.DefaultTable(), nil
	}
	return router.LoadTable(opts.routesFile)
}

// NewRootCmd creates the root command of guardctl
func NewRootCmd() *cobra.Command {
	opts := new(rootOptions)

	root := &cobra.Command{
		Use:          "guardctl",
		Short:        "Inspect tokens, routes and navigation guard decisions",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.routesFile, "routes", "", "YAML route table file (defaults to the built-in table)")

	root.AddCommand(
		newTokenCmd(),
		newResolveCmd(opts),
		newRoutesCmd(opts),
	)
	return root
}
