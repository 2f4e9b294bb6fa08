package cli

import (
	"fmt"
	"github.com/kglearn/frontgate/internal/token"
	"github.com/spf13/cobra"
	"time"
)

func newTokenCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "token <token>",
		Short: "Check whether a token is expired",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(at)
			if err != nil {
				return err
			}
			raw := args[0]
			out := cmd.OutOrStdout()

			if token.Expired(raw, now) {
				fmt.Fprintln(out, "expired")
			} else {
				fmt.Fprintln(out, "not expired")
			}

			exp, ok, err := token.Expiry(raw)
			switch {
			case err != nil:
				fmt.Fprintf(out, "  Reason:  %v\n", err)
			case !ok:
				fmt.Fprintln(out, "  Expiry:  never")
			default:
				fmt.Fprintf(out, "  Expiry:  %s\n", exp.UTC().Format(time.RFC3339))
			}

			if claims, err := token.Claims(raw); err == nil {
				if subject, err := claims.GetSubject(); err == nil && subject != "" {
					fmt.Fprintf(out, "  Subject: %s\n", subject)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC 3339 time instead of now")
	return cmd
}

func parseNow(at string) (time.Time, error) {
	if at == "" {
		return time.Now(), nil
	}
	now, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --at: %w", err)
	}
	return now, nil
}
