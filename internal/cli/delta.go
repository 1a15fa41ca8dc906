package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

func newDeltaCmd(flags *rootFlags) *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "delta <product-cmpt>",
		Short: "Show or fix the differences between a component and its type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			name := args[0]
			r, err := s.service.Check(cmd.Context(), name)
			if errors.Is(err, types.ErrNotFound) {
				return userError(err)
			}
			if err != nil {
				return err
			}
			if !fix {
				if flags.jsonMode {
					return writeJSON(cmd, newReportView(r).Delta)
				}
				printDelta(cmd.OutOrStdout(), name, r.Delta)
				return nil
			}

			fixed := entryViews(r.Delta)
			after, err := s.service.Fix(cmd.Context(), name)
			if err != nil {
				return err
			}
			users, err := s.store.TemplateUsers(name)
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return writeJSON(cmd, map[string]any{
					"fixed":          fixed,
					"remaining":      newReportView(after).Delta,
					"template_users": users,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: fixed %d delta entries\n", name, len(fixed))
			if !after.Delta.IsEmpty() {
				printDelta(out, name, after.Delta)
			}
			if len(users) > 0 {
				fmt.Fprintf(out, "components using %s as template: %s\n", name, strings.Join(users, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "apply the delta and save the component")
	return cmd
}
