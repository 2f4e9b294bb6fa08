package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"text/tabwriter"
)

func newRoutesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return fmt.Errorf("load route table: %w", err)
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "PATH\tNAME\tVIEW\tMETA")
			for _, route := range table.Routes() {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", route.Path, route.Name, route.View, route.Meta)
			}
			return writer.Flush()
		},
	}
}
