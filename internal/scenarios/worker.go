package scenarios

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// WorkerConfig configuration for the recalculation worker
type WorkerConfig struct {
	Schedule  string        `json:"schedule"`
	BatchSize int           `json:"batch_size"`
	Timeout   time.Duration `json:"timeout"`
}

// DefaultWorkerConfig returns default configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Schedule:  "*/5 * * * *",
		BatchSize: 50,
		Timeout:   2 * time.Minute,
	}
}

// RecalculationWorker recalculates stale scenarios on a cron schedule
type RecalculationWorker struct {
	service *Service
	logger  *zap.Logger
	config  WorkerConfig

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	passMu  sync.Mutex
}

// NewRecalculationWorker creates a new recalculation worker
func NewRecalculationWorker(service *Service, logger *zap.Logger, config WorkerConfig) *RecalculationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultWorkerConfig().BatchSize
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultWorkerConfig().Timeout
	}
	return &RecalculationWorker{
		service: service,
		logger:  logger,
		config:  config,
		cron:    cron.New(),
	}
}

// Start schedules recalculation passes until ctx is done or Stop is called
func (w *RecalculationWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("recalculation worker already running")
	}

	if _, err := w.cron.AddFunc(w.config.Schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid worker schedule %q: %w", w.config.Schedule, err)
	}
	w.cron.Start()
	w.running = true

	w.logger.Info("Starting recalculation worker",
		zap.String("schedule", w.config.Schedule),
		zap.Int("batch_size", w.config.BatchSize))

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// Stop stops the scheduler and waits for a running pass to finish
func (w *RecalculationWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.logger.Info("Stopping recalculation worker")
	<-w.cron.Stop().Done()
	w.running = false
}

// RunOnce runs a single recalculation pass. Overlapping passes are skipped.
func (w *RecalculationWorker) RunOnce(ctx context.Context) *RecalculationReport {
	if !w.passMu.TryLock() {
		w.logger.Debug("Previous recalculation pass still running")
		return nil
	}
	defer w.passMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	start := time.Now()
	report, err := w.service.RecalculateStale(ctx, w.config.BatchSize)
	if err != nil {
		w.logger.Error("Recalculation pass failed", zap.Error(err))
		return report
	}
	if report.Scanned > 0 {
		w.logger.Info("Recalculation pass completed",
			zap.Int("scanned", report.Scanned),
			zap.Int("calculated", report.Calculated),
			zap.Int("failed", report.Failed),
			zap.Duration("duration", time.Since(start)))
	}
	return report
}
