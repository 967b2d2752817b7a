package farm

import (
	"fmt"

	"carbon-scribe/farm-emissions/internal/defaults"
)

// TillageType is the tillage practice applied to a crop
type TillageType string

const (
	TillageIntensive TillageType = "Intensive"
	TillageReduced   TillageType = "Reduced"
	TillageNoTill    TillageType = "NoTill"
)

// Valid reports whether the tillage practice is known
func (t TillageType) Valid() bool {
	switch t {
	case TillageIntensive, TillageReduced, TillageNoTill:
		return true
	}
	return false
}

// CropEconomics holds the economic inputs of a crop, used for presentation figures only
type CropEconomics struct {
	PricePerTonne  float64 `json:"price_per_tonne"`
	CostPerHectare float64 `json:"cost_per_hectare"`
}

// CropManagement describes how a crop is grown
type CropManagement struct {
	Crop                     defaults.CropType `json:"crop"`
	Yield                    float64           `json:"yield"` // kg/ha, wet weight
	NitrogenFertilizerRate   float64           `json:"nitrogen_fertilizer_rate"`
	PhosphorusFertilizerRate float64           `json:"phosphorus_fertilizer_rate"`
	FuelUse                  float64           `json:"fuel_use"` // L/ha
	Tillage                  TillageType       `json:"tillage"`
	ResidueRemoval           float64           `json:"residue_removal"` // fraction of straw removed
	Economics                CropEconomics     `json:"economics"`
}

func (m CropManagement) validate(c Component, path string) error {
	if m.Crop == "" {
		return invalid(c, path+".Crop", "is required")
	}
	if m.Yield < 0 {
		return invalid(c, path+".Yield", "must not be negative")
	}
	if m.NitrogenFertilizerRate < 0 || m.PhosphorusFertilizerRate < 0 || m.FuelUse < 0 {
		return invalid(c, path, "fertilizer and fuel rates must not be negative")
	}
	if !m.Tillage.Valid() {
		return invalid(c, path+".Tillage", fmt.Sprintf("unknown tillage type %q", m.Tillage))
	}
	if m.ResidueRemoval < 0 || m.ResidueRemoval > 1 {
		return invalid(c, path+".ResidueRemoval", "must be between 0 and 1")
	}
	return nil
}

// CropYear is the crop grown on a field in one year
type CropYear struct {
	Year int `json:"year"`
	CropManagement
}

// FieldComponent is a single field with a crop history
type FieldComponent struct {
	ComponentBase
	Area      float64    `json:"area"` // ha
	CropYears []CropYear `json:"crop_years"`
}

// NewFieldComponent creates an empty field of the given area
func NewFieldComponent(area float64) *FieldComponent {
	return &FieldComponent{
		ComponentBase: newComponentBase(ComponentTypeField),
		Area:          area,
	}
}

// Validate checks the field inputs
func (f *FieldComponent) Validate() error {
	if f.Area <= 0 {
		return invalid(f, "Area", "must be positive")
	}
	if len(f.CropYears) == 0 {
		return invalid(f, "CropYears", "at least one crop year is required")
	}
	seen := make(map[int]struct{}, len(f.CropYears))
	for i, cy := range f.CropYears {
		path := fmt.Sprintf("CropYears[%d]", i)
		if cy.Year <= 0 {
			return invalid(f, path+".Year", "is required")
		}
		if _, dup := seen[cy.Year]; dup {
			return invalid(f, path+".Year", fmt.Sprintf("year %d is defined twice", cy.Year))
		}
		seen[cy.Year] = struct{}{}
		if err := cy.validate(f, path); err != nil {
			return err
		}
	}
	return nil
}

func (f *FieldComponent) clone() Component {
	out := *f
	out.CropYears = append([]CropYear(nil), f.CropYears...)
	return &out
}

// RotationComponent repeats a crop sequence over several fields, each field
// starting the sequence at a different position
type RotationComponent struct {
	ComponentBase
	FieldArea  float64          `json:"field_area"` // ha per field
	FieldCount int              `json:"field_count"`
	StartYear  int              `json:"start_year"`
	EndYear    int              `json:"end_year"`
	Crops      []CropManagement `json:"crops"`
}

// Validate checks the rotation inputs
func (r *RotationComponent) Validate() error {
	if r.FieldArea <= 0 {
		return invalid(r, "FieldArea", "must be positive")
	}
	if r.FieldCount <= 0 {
		return invalid(r, "FieldCount", "must be positive")
	}
	if r.StartYear <= 0 || r.EndYear < r.StartYear {
		return invalid(r, "EndYear", "must not be before StartYear")
	}
	if len(r.Crops) == 0 {
		return invalid(r, "Crops", "at least one crop is required")
	}
	for i, crop := range r.Crops {
		if err := crop.validate(r, fmt.Sprintf("Crops[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// CropForYear returns the crop grown in a year on the field with the given index
func (r *RotationComponent) CropForYear(fieldIndex, year int) CropManagement {
	position := (year - r.StartYear + fieldIndex) % len(r.Crops)
	return r.Crops[position]
}

func (r *RotationComponent) clone() Component {
	out := *r
	out.Crops = append([]CropManagement(nil), r.Crops...)
	return &out
}

// TreeSpecies is a shelterbelt tree species
type TreeSpecies string

const (
	TreeHybridPoplar TreeSpecies = "HybridPoplar"
	TreeWhiteSpruce  TreeSpecies = "WhiteSpruce"
	TreeScotsPine    TreeSpecies = "ScotsPine"
	TreeGreenAsh     TreeSpecies = "GreenAsh"
	TreeCaragana     TreeSpecies = "Caragana"
	TreeWillow       TreeSpecies = "Willow"
)

// ShelterbeltRow is one planted row of trees
type ShelterbeltRow struct {
	Species     TreeSpecies `json:"species"`
	TreeCount   int         `json:"tree_count"`
	PlantedYear int         `json:"planted_year"`
	Length      float64     `json:"length"` // m
}

// ShelterbeltComponent is a set of tree rows assessed in a given year
type ShelterbeltComponent struct {
	ComponentBase
	AssessmentYear int              `json:"assessment_year"`
	Rows           []ShelterbeltRow `json:"rows"`
}

// Validate checks the shelterbelt inputs
func (s *ShelterbeltComponent) Validate() error {
	if s.AssessmentYear <= 0 {
		return invalid(s, "AssessmentYear", "is required")
	}
	if len(s.Rows) == 0 {
		return invalid(s, "Rows", "at least one row is required")
	}
	for i, row := range s.Rows {
		path := fmt.Sprintf("Rows[%d]", i)
		if row.Species == "" {
			return invalid(s, path+".Species", "is required")
		}
		if row.TreeCount <= 0 {
			return invalid(s, path+".TreeCount", "must be positive")
		}
		if row.PlantedYear <= 0 || row.PlantedYear > s.AssessmentYear {
			return invalid(s, path+".PlantedYear", "must not be after the assessment year")
		}
	}
	return nil
}

func (s *ShelterbeltComponent) clone() Component {
	out := *s
	out.Rows = append([]ShelterbeltRow(nil), s.Rows...)
	return &out
}
