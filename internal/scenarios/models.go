package scenarios

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carbon-scribe/farm-emissions/internal/emissions"
	"carbon-scribe/farm-emissions/internal/farm"
)

// FarmScenario is a stored farm. Replicas point at the scenario they were copied from.
type FarmScenario struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FarmID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"farm_id"`
	Name             string         `gorm:"not null" json:"name"`
	CountryVersion   string         `gorm:"not null" json:"country_version"`
	ParentScenarioID *uuid.UUID     `gorm:"type:uuid;index" json:"parent_scenario_id,omitempty"`
	Document         datatypes.JSON `gorm:"type:jsonb;not null" json:"document"`
	IsStale          bool           `gorm:"not null;default:true;index" json:"is_stale"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook for UUID generation
func (s *FarmScenario) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewFarmScenario encodes a farm into a scenario waiting for calculation
func NewFarmScenario(f *farm.Farm, parent *uuid.UUID) (*FarmScenario, error) {
	doc, err := farm.MarshalFarm(f)
	if err != nil {
		return nil, err
	}
	return &FarmScenario{
		ID:               uuid.New(),
		FarmID:           f.ID,
		Name:             f.Name,
		CountryVersion:   string(f.Version),
		ParentScenarioID: parent,
		Document:         datatypes.JSON(doc),
		IsStale:          true,
	}, nil
}

// Farm decodes the stored farm
func (s *FarmScenario) Farm() (*farm.Farm, error) {
	f, err := farm.UnmarshalFarm(s.Document)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.ID, err)
	}
	return f, nil
}

// ResultSummary stores the totals of one calculation of a scenario
type ResultSummary struct {
	ID                            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ScenarioID                    uuid.UUID      `gorm:"type:uuid;not null;index" json:"scenario_id"`
	ComponentCount                int            `json:"component_count"`
	FieldYearCount                int            `json:"field_year_count"`
	EntericMethane                float64        `json:"enteric_methane"`
	ManureMethane                 float64        `json:"manure_methane"`
	NitrousOxide                  float64        `json:"nitrous_oxide"`
	EnergyCarbonDioxide           float64        `json:"energy_carbon_dioxide"`
	CarbonChange                  float64        `json:"carbon_change"`
	TotalCarbonDioxideEquivalents float64        `json:"total_co2e"`
	ByFamily                      datatypes.JSON `gorm:"type:jsonb" json:"by_family"`
	ComputedAt                    time.Time      `gorm:"not null" json:"computed_at"`
}

// BeforeCreate hook for UUID generation
func (r *ResultSummary) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewResultSummary condenses farm results into a stored summary
func NewResultSummary(scenarioID uuid.UUID, results *emissions.FarmEmissionResults, computedAt time.Time) (*ResultSummary, error) {
	totals := results.Totals()
	byFamily, err := json.Marshal(totals.ByFamily)
	if err != nil {
		return nil, fmt.Errorf("failed to encode family totals: %w", err)
	}
	return &ResultSummary{
		ID:                            uuid.New(),
		ScenarioID:                    scenarioID,
		ComponentCount:                results.Len(),
		FieldYearCount:                len(results.FieldResults()),
		EntericMethane:                totals.Farm.EntericMethane,
		ManureMethane:                 totals.Farm.ManureMethane,
		NitrousOxide:                  totals.Farm.DirectNitrousOxide + totals.Farm.IndirectNitrousOxide,
		EnergyCarbonDioxide:           totals.Farm.EnergyCarbonDioxide,
		CarbonChange:                  totals.Farm.CarbonChange,
		TotalCarbonDioxideEquivalents: totals.Farm.TotalCarbonDioxideEquivalents,
		ByFamily:                      datatypes.JSON(byFamily),
		ComputedAt:                    computedAt,
	}, nil
}
