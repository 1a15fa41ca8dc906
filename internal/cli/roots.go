package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prodcfg/pkg/element"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

func newRootsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "List the aggregate roots of the product structure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			names := []string{}
			for _, pc := range s.service.Roots(cmd.Context()) {
				names = append(names, pc.Name())
			}
			if flags.jsonMode {
				return writeJSON(cmd, names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <product-cmpt>",
		Short: "Print the stored element tree of a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			pc, ok := s.project.FindProductCmpt(args[0])
			if !ok {
				return userError(fmt.Errorf("product component %s: %w", args[0], types.ErrNotFound))
			}
			return writeJSON(cmd, element.EncodeProductCmpt(pc))
		},
	}
}
