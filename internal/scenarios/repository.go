package scenarios

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a scenario or summary does not exist
var ErrNotFound = errors.New("not found")

// Repository stores scenarios and their result summaries
type Repository interface {
	CreateScenario(ctx context.Context, scenario *FarmScenario) error
	GetScenario(ctx context.Context, id uuid.UUID) (*FarmScenario, error)
	ListStaleScenarios(ctx context.Context, limit int) ([]*FarmScenario, error)
	MarkStale(ctx context.Context, id uuid.UUID, stale bool) error
	SaveResultSummary(ctx context.Context, summary *ResultSummary) error
	LatestResultSummary(ctx context.Context, scenarioID uuid.UUID) (*ResultSummary, error)
}

// OpenPostgres connects to Postgres through gorm
func OpenPostgres(dsn string) (*gorm.DB, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return db, nil
}

// GormRepository implements Repository on gorm
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a repository and migrates its tables
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&FarmScenario{}, &ResultSummary{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &GormRepository{db: db}, nil
}

// CreateScenario inserts a scenario
func (r *GormRepository) CreateScenario(ctx context.Context, scenario *FarmScenario) error {
	return r.db.WithContext(ctx).Create(scenario).Error
}

// GetScenario loads a scenario by ID
func (r *GormRepository) GetScenario(ctx context.Context, id uuid.UUID) (*FarmScenario, error) {
	var scenario FarmScenario
	err := r.db.WithContext(ctx).First(&scenario, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &scenario, nil
}

// ListStaleScenarios returns the oldest scenarios waiting for calculation
func (r *GormRepository) ListStaleScenarios(ctx context.Context, limit int) ([]*FarmScenario, error) {
	var scenarios []*FarmScenario
	err := r.db.WithContext(ctx).
		Where("is_stale = ?", true).
		Order("updated_at ASC").
		Limit(limit).
		Find(&scenarios).Error
	return scenarios, err
}

// MarkStale sets the stale flag of a scenario
func (r *GormRepository) MarkStale(ctx context.Context, id uuid.UUID, stale bool) error {
	res := r.db.WithContext(ctx).Model(&FarmScenario{}).Where("id = ?", id).Update("is_stale", stale)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveResultSummary inserts a result summary
func (r *GormRepository) SaveResultSummary(ctx context.Context, summary *ResultSummary) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

// LatestResultSummary returns the most recent summary of a scenario
func (r *GormRepository) LatestResultSummary(ctx context.Context, scenarioID uuid.UUID) (*ResultSummary, error) {
	var summary ResultSummary
	err := r.db.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		Order("computed_at DESC").
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("summary of scenario %s: %w", scenarioID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
