// Package cli implements the prodcfg command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUser marks errors caused by input rather than the environment.
var errUser = errors.New("user error")

// userError tags err so Execute exits with exitUserError.
func userError(err error) error {
	return fmt.Errorf("%w: %w", errUser, err)
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
	metrics   bool
}

// NewRootCmd creates the top-level "prodcfg" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "prodcfg",
		Short: "Check product component configurations against their types",
		Long: "prodcfg stores product component types and configured components, computes\n" +
			"deltas between components and their types and templates, validates values and\n" +
			"links, and repairs components.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: ./.prodcfg or the platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: ./.prodcfg-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&flags.metrics, "metrics", false, "write check and fix metrics to stderr in Prometheus text format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(flags),
		newImportCmd(flags),
		newDeltaCmd(flags),
		newValidateCmd(flags),
		newRootsCmd(flags),
		newShowCmd(flags),
	)
	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUser) {
			os.Exit(exitUserError)
		}
		os.Exit(exitSysError)
	}
	os.Exit(exitSuccess)
}

// newLogger builds the stderr text logger for cmd.
func newLogger(cmd *cobra.Command, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, userError(fmt.Errorf("invalid --log-level %q", level))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: l})), nil
}
