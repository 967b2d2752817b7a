package scenarios

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-scribe/farm-emissions/internal/emissions"
	"carbon-scribe/farm-emissions/internal/farm"
)

// Calculator is the part of the emissions service scenarios depend on
type Calculator interface {
	ReplicateFarm(f *farm.Farm) (*farm.Farm, error)
	CalculateFarmEmissionResults(ctx context.Context, f *farm.Farm) (*emissions.FarmEmissionResults, error)
	CalculateFarmsEmissionResults(ctx context.Context, farms []*farm.Farm) ([]*emissions.FarmEmissionResults, error)
}

// Service stores farm scenarios and keeps their result summaries current
type Service struct {
	repo       Repository
	calculator Calculator
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new scenario service
func NewService(repo Repository, calculator Calculator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		calculator: calculator,
		logger:     logger,
		now:        time.Now,
	}
}

// CalculationOutcome pairs the full results of a scenario with their stored summary
type CalculationOutcome struct {
	Results *emissions.FarmEmissionResults
	Summary *ResultSummary
}

// RecalculationReport counts the scenarios handled by one recalculation pass
type RecalculationReport struct {
	Scanned    int `json:"scanned"`
	Calculated int `json:"calculated"`
	Failed     int `json:"failed"`
}

// CreateScenario stores a farm as a new scenario
func (s *Service) CreateScenario(ctx context.Context, f *farm.Farm) (*FarmScenario, error) {
	if f == nil {
		return nil, errors.New("farm is required")
	}
	scenario, err := NewFarmScenario(f, nil)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateScenario(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to store scenario: %w", err)
	}
	s.logger.Info("Created scenario",
		zap.String("scenario_id", scenario.ID.String()),
		zap.String("farm_id", f.ID.String()),
	)
	return scenario, nil
}

// GetScenario loads a scenario
func (s *Service) GetScenario(ctx context.Context, id uuid.UUID) (*FarmScenario, error) {
	return s.repo.GetScenario(ctx, id)
}

// ReplicateScenario stores a deep copy of a scenario's farm as a child scenario
func (s *Service) ReplicateScenario(ctx context.Context, id uuid.UUID) (*FarmScenario, error) {
	parent, err := s.repo.GetScenario(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := parent.Farm()
	if err != nil {
		return nil, err
	}
	replica, err := s.calculator.ReplicateFarm(f)
	if err != nil {
		return nil, err
	}
	child, err := NewFarmScenario(replica, &parent.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateScenario(ctx, child); err != nil {
		return nil, fmt.Errorf("failed to store replica: %w", err)
	}
	s.logger.Info("Replicated scenario",
		zap.String("scenario_id", parent.ID.String()),
		zap.String("replica_id", child.ID.String()),
	)
	return child, nil
}

// CalculateScenario calculates a scenario, stores its summary and clears its stale flag
func (s *Service) CalculateScenario(ctx context.Context, id uuid.UUID) (*CalculationOutcome, error) {
	scenario, err := s.repo.GetScenario(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := scenario.Farm()
	if err != nil {
		return nil, err
	}
	results, err := s.calculator.CalculateFarmEmissionResults(ctx, f)
	if err != nil {
		return nil, err
	}
	summary, err := s.storeSummary(ctx, scenario.ID, results)
	if err != nil {
		return nil, err
	}
	return &CalculationOutcome{Results: results, Summary: summary}, nil
}

// LatestSummary returns the most recent summary of a scenario
func (s *Service) LatestSummary(ctx context.Context, id uuid.UUID) (*ResultSummary, error) {
	return s.repo.LatestResultSummary(ctx, id)
}

// RecalculateStale calculates up to limit stale scenarios as one batch.
// Scenarios that fail stay stale and are retried on the next pass.
func (s *Service) RecalculateStale(ctx context.Context, limit int) (*RecalculationReport, error) {
	stale, err := s.repo.ListStaleScenarios(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale scenarios: %w", err)
	}
	report := &RecalculationReport{Scanned: len(stale)}
	if len(stale) == 0 {
		return report, nil
	}

	farms := make([]*farm.Farm, 0, len(stale))
	ids := make([]uuid.UUID, 0, len(stale))
	for _, scenario := range stale {
		f, err := scenario.Farm()
		if err != nil {
			report.Failed++
			s.logger.Error("Skipping undecodable scenario",
				zap.String("scenario_id", scenario.ID.String()),
				zap.Error(err),
			)
			continue
		}
		farms = append(farms, f)
		ids = append(ids, scenario.ID)
	}

	results, err := s.calculator.CalculateFarmsEmissionResults(ctx, farms)
	failed := make(map[int]bool)
	if err != nil {
		var batchErr *emissions.BatchError
		if !errors.As(err, &batchErr) {
			return report, err
		}
		for _, fe := range batchErr.Failures {
			failed[fe.Index] = true
			report.Failed++
			s.logger.Warn("Scenario calculation failed",
				zap.String("scenario_id", ids[fe.Index].String()),
				zap.String("kind", string(fe.Kind)),
				zap.Error(fe.Err),
			)
		}
	}

	next := 0
	for i, id := range ids {
		if failed[i] {
			continue
		}
		if _, err := s.storeSummary(ctx, id, results[next]); err != nil {
			return report, err
		}
		next++
		report.Calculated++
	}

	s.logger.Info("Recalculated stale scenarios",
		zap.Int("scanned", report.Scanned),
		zap.Int("calculated", report.Calculated),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) storeSummary(ctx context.Context, scenarioID uuid.UUID, results *emissions.FarmEmissionResults) (*ResultSummary, error) {
	summary, err := NewResultSummary(scenarioID, results, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveResultSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to store result summary: %w", err)
	}
	if err := s.repo.MarkStale(ctx, scenarioID, false); err != nil {
		return nil, fmt.Errorf("failed to update scenario: %w", err)
	}
	return summary, nil
}
