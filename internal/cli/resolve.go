package cli

import (
	"context"
	"fmt"
	"github.com/kglearn/frontgate/internal/auth"
	"github.com/kglearn/frontgate/internal/router"
	"github.com/kglearn/frontgate/internal/storage"
	"github.com/kglearn/frontgate/internal/storage/memory"
	"github.com/spf13/cobra"
	"sort"
	"time"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var (
		rawToken string
		rawUser  string
		from     string
		at       string
	)

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Evaluate the navigation guard for a destination",
		Long:  "Evaluate the navigation guard for a destination against a store holding the given token and user record.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(at)
			if err != nil {
				return err
			}
			table, err := opts.table()
			if err != nil {
				return fmt.Errorf("load route table: %w", err)
			}

			to, err := table.Resolve(args[0])
			if err != nil {
				return err
			}
			origin, err := table.Resolve(from)
			if err != nil {
				return err
			}

			records := make(map[string]string)
			if rawToken != "" {
				records[storage.KeyToken] = rawToken
			}
			if rawUser != "" {
				records[storage.KeyUser] = rawUser
			}
			store := memory.NewWith(records)
			checker := auth.NewChecker(store)
			checker.Now = func() time.Time {
				return now
			}

			decision := router.NewGuard().Evaluate(context.Background(), checker, to, origin)

			out := cmd.OutOrStdout()
			if decision.Proceed() {
				fmt.Fprintf(out, "proceed %s\n", to.FullPath)
			} else {
				href, err := table.Href(decision.Redirect)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "redirect %s\n", href)
				fmt.Fprintf(out, "  Rule:    %s\n", decision.Rule)
			}
			if to.Name != "" {
				fmt.Fprintf(out, "  Route:   %s [%s]\n", to.Name, to.Meta)
			} else {
				fmt.Fprintln(out, "  Route:   none")
			}

			snapshot := store.Snapshot()
			keys := make([]string, 0, len(snapshot))
			for key := range snapshot {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			fmt.Fprintln(out, "  Store:")
			if len(keys) == 0 {
				fmt.Fprintln(out, "    (empty)")
			}
			for _, key := range keys {
				fmt.Fprintf(out, "    %s = %s\n", key, snapshot[key])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rawToken, "token", "", "Stored token")
	cmd.Flags().StringVar(&rawUser, "user", "", "Stored user record (JSON)")
	cmd.Flags().StringVar(&from, "from", "/", "Path the navigation starts from")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC 3339 time instead of now")
	return cmd
}
