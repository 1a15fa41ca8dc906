// Package check runs the delta engine and the validators over a whole
// project, and applies and persists fixes.
package check

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/prodcfg/internal/telemetry"
	"github.com/mesh-intelligence/prodcfg/pkg/aggregate"
	"github.com/mesh-intelligence/prodcfg/pkg/delta"
	"github.com/mesh-intelligence/prodcfg/pkg/linkcheck"
	"github.com/mesh-intelligence/prodcfg/pkg/template"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// DefaultConcurrency bounds CheckAll when Options.Concurrency is unset.
const DefaultConcurrency = 4

// Options configures a Service. Zero values select defaults: no store, a
// no-op tracer, private metrics and slog.Default.
type Options struct {
	Store       types.Store
	Concurrency int
	Tracer      trace.Tracer
	Metrics     *telemetry.Metrics
	Logger      *slog.Logger
}

// Report is the outcome of checking one component.
type Report struct {
	ProductCmpt string
	Delta       *delta.Delta
	Messages    types.MessageList
}

// IsClean reports whether the component conforms and has no error messages.
func (r *Report) IsClean() bool {
	return r.Delta.IsEmpty() && !r.Messages.ContainsErrors()
}

// Service checks the components of one project. Check and CheckAll only
// read; Fix mutates a single component and must not run concurrently with
// other calls.
type Service struct {
	project     *types.MemoryProject
	store       types.Store
	resolver    *template.Resolver
	engine      *delta.Engine
	links       *linkcheck.Validator
	tracer      trace.Tracer
	metrics     *telemetry.Metrics
	logger      *slog.Logger
	concurrency int
}

// NewService wires the engines for project. Every component is watched so
// cached template lookups drop when a fix changes it.
func NewService(project *types.MemoryProject, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(telemetry.ServiceName)
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics(nil)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	cache := template.NewCache(template.DefaultExpiration, template.DefaultCleanupInterval, logger)
	resolver := template.NewResolver(project, cache, logger)
	for _, pc := range project.ProductCmpts() {
		resolver.Watch(pc)
	}
	return &Service{
		project:     project,
		store:       opts.Store,
		resolver:    resolver,
		engine:      delta.NewEngine(project, resolver, logger),
		links:       linkcheck.NewValidator(project, resolver, logger),
		tracer:      tracer,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Resolver returns the template resolver shared by the engines.
func (s *Service) Resolver() *template.Resolver {
	return s.resolver
}

// Check computes the report for the component called name.
func (s *Service) Check(ctx context.Context, name string) (*Report, error) {
	pc, ok := s.project.FindProductCmpt(name)
	if !ok {
		return nil, fmt.Errorf("product component %s: %w", name, types.ErrNotFound)
	}
	return s.check(ctx, pc), nil
}

// CheckAll reports on every component, sorted by name. At most the
// configured number of components are checked at once.
func (s *Service) CheckAll(ctx context.Context) ([]*Report, error) {
	ctx, span := s.tracer.Start(ctx, "check.CheckAll")
	defer span.End()

	cmpts := s.project.ProductCmpts()
	span.SetAttributes(attribute.Int("product_cmpts", len(cmpts)))
	reports := make([]*Report, len(cmpts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, pc := range cmpts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = s.check(ctx, pc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	dirty := 0
	for _, r := range reports {
		if !r.IsClean() {
			dirty++
		}
	}
	span.SetAttributes(attribute.Int("dirty", dirty))
	s.logger.Info("project checked", "product_cmpts", len(reports), "dirty", dirty)
	return reports, nil
}

func (s *Service) check(ctx context.Context, pc *types.ProductCmpt) *Report {
	_, span := s.tracer.Start(ctx, "check.ProductCmpt",
		trace.WithAttributes(attribute.String("product_cmpt", pc.Name())))
	defer span.End()
	start := time.Now()

	r := &Report{ProductCmpt: pc.Name(), Delta: s.engine.Compute(pc)}
	r.Messages.AddAll(s.resolver.ValidateTemplate(pc))
	r.Messages.AddAll(s.validateValues(pc))
	r.Messages.AddAll(s.links.ValidateProductCmpt(pc))

	for _, e := range r.Delta.Entries() {
		s.metrics.DeltaEntries.WithLabelValues(e.Type().String()).Inc()
	}
	for _, m := range r.Messages {
		s.metrics.Messages.WithLabelValues(m.Severity.String()).Inc()
	}
	status := "clean"
	if !r.IsClean() {
		status = "dirty"
	}
	s.metrics.CheckDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("delta_entries", r.Delta.Len()),
		attribute.Int("messages", len(r.Messages)),
		attribute.String("status", status),
	)
	return r
}

// validateValues validates the effective content of every attribute value
// and configured value set that has a matching property. Values without
// one are the delta's concern.
func (s *Service) validateValues(pc *types.ProductCmpt) types.MessageList {
	var list types.MessageList
	t, ok := s.project.FindType(pc.TypeName())
	if !ok {
		return list
	}
	props, err := types.CollectProperties(s.project, t)
	if err != nil {
		return list
	}
	opts := s.project.Settings().ValidationOptions()
	for _, c := range pc.Containers() {
		for _, pv := range c.PropertyValues() {
			prop, ok := props.Get(pv.PropertyName())
			if !ok {
				continue
			}
			switch eff := s.resolver.Effective(pv, prop).(type) {
			case *types.AttributeValue:
				list.AddAll(eff.Validate(prop, opts))
			case *types.ConfiguredValueSet:
				list.AddAll(eff.Validate(prop))
			}
		}
	}
	return list
}

// Fix applies the delta of the component called name, persists it when a
// store is configured, and returns the report after the fix.
func (s *Service) Fix(ctx context.Context, name string) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "check.Fix", trace.WithAttributes(attribute.String("product_cmpt", name)))
	defer span.End()

	pc, ok := s.project.FindProductCmpt(name)
	if !ok {
		return nil, fmt.Errorf("product component %s: %w", name, types.ErrNotFound)
	}
	d := s.engine.Compute(pc)
	if err := d.Fix(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	for _, e := range d.Entries() {
		s.metrics.FixedEntries.WithLabelValues(e.Type().String()).Inc()
	}
	span.SetAttributes(attribute.Int("fixed", d.Len()))
	s.logger.Info("delta fixed", "product_cmpt", name, "entries", d.Len())

	if s.store != nil && !d.IsEmpty() {
		if err := s.store.SaveProductCmpt(pc); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("saving %s: %w", name, err)
		}
	}
	return s.check(ctx, pc), nil
}

// Roots returns the aggregate roots of the project.
func (s *Service) Roots(ctx context.Context) []*types.ProductCmpt {
	_, span := s.tracer.Start(ctx, "check.Roots")
	defer span.End()
	roots := aggregate.FindAggregateRoots(s.project)
	span.SetAttributes(attribute.Int("roots", len(roots)))
	return roots
}
