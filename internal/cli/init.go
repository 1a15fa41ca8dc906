package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prodcfg/internal/sqlite"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long:  "Create the configuration and data directories, write config.yaml if missing, and initialize the store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, flags.logLevel)
			if err != nil {
				return err
			}
			configDir, cfg, dataDir, err := resolveDirs(flags)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			cfg.DataDir = dataDir
			wrote, err := writeConfigIfMissing(configDir, cfg)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if wrote {
				logger.Info("config written", "config_dir", configDir)
			}

			store := sqlite.NewBackend(logger)
			if err := store.Attach(types.Config{Backend: cfg.Backend, DataDir: dataDir}); err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}
			if err := store.Detach(); err != nil {
				return fmt.Errorf("finalize storage: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "prodcfg initialized\nconfig: %s\ndata:   %s\n", configDir, dataDir)
			return nil
		},
	}
}
