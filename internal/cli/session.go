package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prodcfg/internal/check"
	"github.com/mesh-intelligence/prodcfg/internal/paths"
	"github.com/mesh-intelligence/prodcfg/internal/sqlite"
	"github.com/mesh-intelligence/prodcfg/internal/telemetry"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// session is an attached store, its loaded project and a check service.
type session struct {
	cfg     Config
	store   *sqlite.Backend
	project *types.MemoryProject
	service *check.Service
	tracing *telemetry.Provider
	logger  *slog.Logger

	registry   *prometheus.Registry
	metricsOut io.Writer // nil unless --metrics
}

// resolveDirs returns the config directory, its config and the data
// directory.
func resolveDirs(flags *rootFlags) (string, Config, string, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return "", Config{}, "", fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return "", Config{}, "", err
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.DataDir)
	if err != nil {
		return "", Config{}, "", fmt.Errorf("resolve data dir: %w", err)
	}
	return configDir, cfg, dataDir, nil
}

// openSession attaches the store and loads the project. The caller must
// call close.
func openSession(cmd *cobra.Command, flags *rootFlags) (*session, error) {
	logger, err := newLogger(cmd, flags.logLevel)
	if err != nil {
		return nil, err
	}
	_, cfg, dataDir, err := resolveDirs(flags)
	if err != nil {
		return nil, err
	}

	store := sqlite.NewBackend(logger)
	if err := store.Attach(types.Config{Backend: cfg.Backend, DataDir: dataDir}); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	project, err := store.LoadProject()
	if err != nil {
		_ = store.Detach()
		return nil, fmt.Errorf("load project: %w", err)
	}
	project.SetSettings(cfg.Settings())

	tracingCfg := cfg.Tracing
	tracingCfg.Writer = cmd.ErrOrStderr()
	tracing, err := telemetry.NewProvider(tracingCfg)
	if err != nil {
		_ = store.Detach()
		return nil, userError(err)
	}

	s := &session{
		cfg:      cfg,
		store:    store,
		project:  project,
		tracing:  tracing,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	if flags.metrics {
		s.metricsOut = cmd.ErrOrStderr()
	}
	s.service = check.NewService(project, check.Options{
		Store:       store,
		Concurrency: cfg.Check.Concurrency,
		Tracer:      tracing.Tracer(),
		Metrics:     telemetry.NewMetrics(s.registry),
		Logger:      logger,
	})
	return s, nil
}

// close flushes tracing, writes the gathered metrics when requested and
// detaches the store.
func (s *session) close() error {
	if s.metricsOut != nil {
		if err := telemetry.WriteMetrics(s.metricsOut, s.registry); err != nil {
			s.logger.Warn("writing metrics failed", "error", err)
		}
	}
	if err := s.tracing.Shutdown(context.Background()); err != nil {
		s.logger.Warn("tracing shutdown failed", "error", err)
	}
	return s.store.Detach()
}
