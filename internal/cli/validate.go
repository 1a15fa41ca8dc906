package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prodcfg/internal/check"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// errNotClean is returned when at least one checked component has delta
// entries or error messages.
var errNotClean = errors.New("product components do not conform")

func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [product-cmpt]",
		Short: "Validate one or all product components",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			var reports []*check.Report
			if len(args) == 1 {
				r, err := s.service.Check(cmd.Context(), args[0])
				if errors.Is(err, types.ErrNotFound) {
					return userError(err)
				}
				if err != nil {
					return err
				}
				reports = append(reports, r)
			} else if reports, err = s.service.CheckAll(cmd.Context()); err != nil {
				return err
			}

			clean := true
			for _, r := range reports {
				clean = clean && r.IsClean()
			}
			if flags.jsonMode {
				views := make([]reportView, 0, len(reports))
				for _, r := range reports {
					views = append(views, newReportView(r))
				}
				if err := writeJSON(cmd, views); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, r := range reports {
					printDelta(out, r.ProductCmpt, r.Delta)
					printMessages(out, r.Messages)
				}
				fmt.Fprintf(out, "%d product components checked\n", len(reports))
			}
			if !clean {
				return userError(errNotClean)
			}
			return nil
		},
	}
}
