package emissions

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"carbon-scribe/farm-emissions/internal/emissions/calculation"
	"carbon-scribe/farm-emissions/internal/farm"
	"carbon-scribe/farm-emissions/pkg/metrics"
)

// Router resolves the calculator of a component type
type Router interface {
	Route(t farm.ComponentType) (calculation.Calculator, error)
	Calculators() []calculation.Metadata
}

// Config holds service configuration
type Config struct {
	MaxConcurrentFarms      int `json:"max_concurrent_farms"`
	MaxConcurrentComponents int `json:"max_concurrent_components"`
}

// DefaultConfig returns default service configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrentFarms:      4,
		MaxConcurrentComponents: 8,
	}
}

// Service calculates and replicates farms
type Service struct {
	router  Router
	logger  *zap.Logger
	metrics *metrics.Collector
	config  Config

	cropEconomicDataApplied atomic.Bool
}

// NewService creates a new farm results service. The collector may be nil.
func NewService(router Router, logger *zap.Logger, collector *metrics.Collector, config Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxConcurrentFarms <= 0 {
		config.MaxConcurrentFarms = DefaultConfig().MaxConcurrentFarms
	}
	if config.MaxConcurrentComponents <= 0 {
		config.MaxConcurrentComponents = DefaultConfig().MaxConcurrentComponents
	}
	return &Service{
		router:  router,
		logger:  logger,
		metrics: collector,
		config:  config,
	}
}

// CropEconomicDataApplied reports whether crop items get economic figures
func (s *Service) CropEconomicDataApplied() bool {
	return s.cropEconomicDataApplied.Load()
}

// SetCropEconomicDataApplied switches economic figures on crop items. Runs
// already in progress keep the value they started with.
func (s *Service) SetCropEconomicDataApplied(applied bool) {
	s.cropEconomicDataApplied.Store(applied)
}

// Calculators lists the registered calculators
func (s *Service) Calculators() []calculation.Metadata {
	return s.router.Calculators()
}

func (s *Service) options() calculation.Options {
	return calculation.Options{CropEconomicDataApplied: s.cropEconomicDataApplied.Load()}
}

// =====================================================
// Replication
// =====================================================

// ReplicateFarm returns an independent deep copy of a farm
func (s *Service) ReplicateFarm(f *farm.Farm) (*farm.Farm, error) {
	replica, err := farm.Replicate(f)
	if err != nil {
		fe := newFarmError(f, nil, err)
		fe.Kind = KindReplication
		s.recordFailure(fe)
		return nil, fe
	}
	if s.metrics != nil {
		s.metrics.RecordReplications(1)
	}
	s.logger.Debug("Replicated farm",
		zap.String("farm_id", f.ID.String()),
		zap.String("replica_id", replica.ID.String()),
		zap.Int("components", replica.Len()),
	)
	return replica, nil
}

// ReplicateFarms replicates every farm in order. Replication failures are
// fatal: nothing is returned when any farm cannot be copied.
func (s *Service) ReplicateFarms(farms []*farm.Farm) ([]*farm.Farm, error) {
	replicas := make([]*farm.Farm, 0, len(farms))
	for i, f := range farms {
		replica, err := s.ReplicateFarm(f)
		if err != nil {
			var fe *FarmError
			if errors.As(err, &fe) {
				fe.Index = i
			}
			return nil, err
		}
		replicas = append(replicas, replica)
	}
	return replicas, nil
}

// =====================================================
// Calculation
// =====================================================

// CalculateFarmEmissionResults calculates every component of a farm. Any
// component failure fails the farm; a partial result is never returned.
func (s *Service) CalculateFarmEmissionResults(ctx context.Context, f *farm.Farm) (*FarmEmissionResults, error) {
	return s.calculateFarm(ctx, f, s.options())
}

// CalculateFarmsEmissionResults calculates a batch of farms on a bounded
// pool. Results keep the input order. Farms that fail or are cancelled are
// left out of the results and reported in a *BatchError; the other farms are
// still returned alongside it.
func (s *Service) CalculateFarmsEmissionResults(ctx context.Context, farms []*farm.Farm) ([]*FarmEmissionResults, error) {
	opts := s.options()
	slots := make([]*FarmEmissionResults, len(farms))
	failures := make([]*FarmError, len(farms))

	if s.metrics != nil {
		s.metrics.RecordBatch(len(farms))
	}

	// Siblings keep running when one farm fails, so the group has no shared context
	var g errgroup.Group
	g.SetLimit(s.config.MaxConcurrentFarms)

	for i, f := range farms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = &FarmError{Kind: KindCancelled, Err: err}
				if f != nil {
					failures[i].FarmID = f.ID
					failures[i].FarmName = f.Name
				}
				s.recordFailure(failures[i])
				return nil
			}
			res, err := s.calculateFarm(ctx, f, opts)
			if err != nil {
				fe := newFarmError(f, nil, err)
				failures[i] = fe
				return nil
			}
			slots[i] = res
			return nil
		})
	}
	_ = g.Wait()

	results := make([]*FarmEmissionResults, 0, len(farms))
	var batchErr *BatchError
	for i := range farms {
		if failures[i] != nil {
			if batchErr == nil {
				batchErr = &BatchError{Total: len(farms)}
			}
			failures[i].Index = i
			batchErr.Failures = append(batchErr.Failures, failures[i])
			continue
		}
		results = append(results, slots[i])
	}

	if batchErr != nil {
		s.logger.Warn("Batch calculation completed with failures",
			zap.Int("farms", len(farms)),
			zap.Int("failed", len(batchErr.Failures)),
		)
		return results, batchErr
	}
	s.logger.Info("Batch calculation completed", zap.Int("farms", len(farms)))
	return results, nil
}

// CalculateFieldResults returns the crop view items of the farm's field
// components in farm order
func (s *Service) CalculateFieldResults(ctx context.Context, f *farm.Farm) ([]calculation.CropViewItem, error) {
	if f == nil {
		return nil, &FarmError{Kind: KindInvalidComponent, Err: errors.New("farm is nil")}
	}
	var fields []farm.Component
	for _, c := range f.Components() {
		if c.Type() == farm.ComponentTypeField {
			fields = append(fields, c)
		}
	}

	results, err := s.calculateComponents(ctx, f, fields, s.options())
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	items := []calculation.CropViewItem{}
	for _, r := range results {
		items = append(items, r.CropItems...)
	}
	return items, nil
}

func (s *Service) calculateFarm(ctx context.Context, f *farm.Farm, opts calculation.Options) (*FarmEmissionResults, error) {
	start := time.Now()
	if f == nil {
		err := &FarmError{Kind: KindInvalidComponent, Err: errors.New("farm is nil")}
		s.recordFailure(err)
		return nil, err
	}

	components := f.Components()
	results, err := s.calculateComponents(ctx, f, components, opts)
	if s.metrics != nil {
		s.metrics.RecordFarmCalculation(time.Since(start), err != nil)
	}
	if err != nil {
		s.recordFailure(err)
		s.logger.Error("Farm calculation failed",
			zap.String("farm_id", f.ID.String()),
			zap.String("kind", string(err.Kind)),
			zap.Error(err.Err),
		)
		return nil, err
	}

	out := newFarmEmissionResults(f, results, opts)
	s.logger.Debug("Calculated farm emission results",
		zap.String("farm_id", f.ID.String()),
		zap.Int("components", out.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// calculateComponents routes and validates every component in order, then
// calculates them in parallel into private slots. The slots come back in the
// order of components.
func (s *Service) calculateComponents(ctx context.Context, f *farm.Farm, components []farm.Component, opts calculation.Options) ([]*calculation.ComponentEmissionResult, *FarmError) {
	calcs := make([]calculation.Calculator, len(components))
	for i, c := range components {
		calc, err := s.router.Route(c.Type())
		if err != nil {
			return nil, newFarmError(f, c, err)
		}
		if err := calc.Validate(&calculation.Request{Farm: f, Component: c, Options: opts}); err != nil {
			return nil, newFarmError(f, c, err)
		}
		calcs[i] = calc
	}

	slots := make([]*calculation.ComponentEmissionResult, len(components))
	failures := make([]error, len(components))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrentComponents)
	for i, c := range components {
		g.Go(func() error {
			res, err := calcs[i].Calculate(gctx, &calculation.Request{Farm: f, Component: c, Options: opts})
			if err == nil && res == nil {
				err = errors.New("calculator returned no result")
			}
			if err != nil {
				failures[i] = err
				return err
			}
			slots[i] = res
			return nil
		})
	}
	if waitErr := g.Wait(); waitErr != nil {
		if err := ctx.Err(); err != nil {
			return nil, newFarmError(f, nil, err)
		}
		// report the first component in farm order that failed for a reason
		// other than its siblings being stopped
		for i, err := range failures {
			if err != nil && !errors.Is(err, context.Canceled) {
				return nil, newFarmError(f, components[i], err)
			}
		}
		return nil, newFarmError(f, nil, waitErr)
	}

	if s.metrics != nil {
		for _, r := range slots {
			s.metrics.RecordComponent(string(r.Family))
		}
	}
	return slots, nil
}

func (s *Service) recordFailure(err error) {
	if s.metrics == nil {
		return
	}
	var fe *FarmError
	if errors.As(err, &fe) {
		s.metrics.RecordFailure(string(fe.Kind))
	}
}
