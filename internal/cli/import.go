package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prodcfg/internal/schema"
)

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <model.yaml>",
		Short: "Import types and components from a YAML model",
		Long:  "Import replaces stored types and components with the same names. Model settings are ignored; set them in config.yaml.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := schema.LoadFile(args[0])
			if err != nil {
				return userError(err)
			}
			built, err := m.Build()
			if err != nil {
				return userError(err)
			}

			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			defer s.close()

			if m.Settings != nil {
				s.logger.Warn("model settings ignored", "file", args[0])
			}
			for _, t := range built.Types() {
				if err := s.store.SaveType(t); err != nil {
					return err
				}
			}
			cmpts := built.ProductCmpts()
			for _, pc := range cmpts {
				if err := s.store.SaveProductCmpt(pc); err != nil {
					return err
				}
			}

			if flags.jsonMode {
				return writeJSON(cmd, map[string]int{"types": len(built.Types()), "product_cmpts": len(cmpts)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d types, %d product components\n", len(built.Types()), len(cmpts))
			return nil
		},
	}
}
