package calculation

import (
	"context"
	"fmt"
	"math"

	"carbon-scribe/farm-emissions/internal/farm"
)

// FieldCalculator computes crop results for every year of a field
type FieldCalculator struct {
	crops *cropCalculator
}

// Metadata returns field calculator metadata
func (c *FieldCalculator) Metadata() Metadata {
	return Metadata{
		Family:           farm.FamilyLandManagement,
		Name:             "Field",
		Description:      "Crop residue, fertilizer nitrogen, fuel and soil carbon per field year",
		ComponentTypes:   []farm.ComponentType{farm.ComponentTypeField},
		RequiredDefaults: []string{"crop residue"},
	}
}

// Validate checks the field inputs
func (c *FieldCalculator) Validate(req *Request) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if _, ok := req.Component.(*farm.FieldComponent); !ok {
		return fmt.Errorf("field calculator cannot handle %T", req.Component)
	}
	return nil
}

// Calculate computes one crop view item per crop year, in year order of the field
func (c *FieldCalculator) Calculate(ctx context.Context, req *Request) (*ComponentEmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	field := req.Component.(*farm.FieldComponent)

	items := make([]CropViewItem, 0, len(field.CropYears))
	for _, cy := range field.CropYears {
		item, err := c.crops.calculate(req.Farm.Version, cropYearInput{
			componentID: field.ID(),
			fieldName:   field.Name(),
			year:        cy.Year,
			area:        field.Area,
			management:  cy.CropManagement,
		}, req.Options)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	result := newResult(field)
	addCropItems(result, items)
	result.Nutrients.Phosphorus = phosphorusApplied(field.Area, field.CropYears)
	return result.finish(), nil
}

func phosphorusApplied(area float64, years []farm.CropYear) float64 {
	var total float64
	for _, cy := range years {
		total += cy.PhosphorusFertilizerRate * area
	}
	return total
}

// RotationCalculator applies a crop rotation over its fields and years
type RotationCalculator struct {
	crops *cropCalculator
}

// Metadata returns rotation calculator metadata
func (c *RotationCalculator) Metadata() Metadata {
	return Metadata{
		Family:           farm.FamilyLandManagement,
		Name:             "Rotation",
		Description:      "Crop rotation expanded over its fields and year span",
		ComponentTypes:   []farm.ComponentType{farm.ComponentTypeRotation},
		RequiredDefaults: []string{"crop residue"},
	}
}

// Validate checks the rotation inputs
func (c *RotationCalculator) Validate(req *Request) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if _, ok := req.Component.(*farm.RotationComponent); !ok {
		return fmt.Errorf("rotation calculator cannot handle %T", req.Component)
	}
	return nil
}

// Calculate expands the rotation field by field, year by year
func (c *RotationCalculator) Calculate(ctx context.Context, req *Request) (*ComponentEmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rotation := req.Component.(*farm.RotationComponent)

	years := rotation.EndYear - rotation.StartYear + 1
	items := make([]CropViewItem, 0, rotation.FieldCount*years)
	var phosphorus float64
	for fieldIndex := 0; fieldIndex < rotation.FieldCount; fieldIndex++ {
		name := fmt.Sprintf("%s field %d", rotation.Name(), fieldIndex+1)
		for year := rotation.StartYear; year <= rotation.EndYear; year++ {
			management := rotation.CropForYear(fieldIndex, year)
			item, err := c.crops.calculate(req.Farm.Version, cropYearInput{
				componentID: rotation.ID(),
				fieldName:   name,
				year:        year,
				area:        rotation.FieldArea,
				management:  management,
			}, req.Options)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			phosphorus += management.PhosphorusFertilizerRate * rotation.FieldArea
		}
	}

	result := newResult(rotation)
	addCropItems(result, items)
	result.Nutrients.Phosphorus = phosphorus
	return result.finish(), nil
}

type growthCurve struct {
	maxCarbon float64 // kg C per mature tree
	rate      float64
}

var shelterbeltGrowth = map[farm.TreeSpecies]growthCurve{
	farm.TreeHybridPoplar: {maxCarbon: 600, rate: 0.08},
	farm.TreeWhiteSpruce:  {maxCarbon: 300, rate: 0.05},
	farm.TreeScotsPine:    {maxCarbon: 250, rate: 0.06},
	farm.TreeGreenAsh:     {maxCarbon: 200, rate: 0.06},
	farm.TreeCaragana:     {maxCarbon: 25, rate: 0.15},
	farm.TreeWillow:       {maxCarbon: 150, rate: 0.12},
}

// carbonAt returns the carbon stored in one tree of the given age
func (g growthCurve) carbonAt(age int) float64 {
	if age <= 0 {
		return 0
	}
	grown := 1 - math.Exp(-g.rate*float64(age))
	return g.maxCarbon * grown * grown
}

// ShelterbeltCalculator computes carbon sequestered by shelterbelt trees
type ShelterbeltCalculator struct{}

// Metadata returns shelterbelt calculator metadata
func (c *ShelterbeltCalculator) Metadata() Metadata {
	return Metadata{
		Family:         farm.FamilyLandManagement,
		Name:           "Shelterbelt",
		Description:    "Annual tree carbon sequestration from species growth curves",
		ComponentTypes: []farm.ComponentType{farm.ComponentTypeShelterbelt},
	}
}

// Validate checks the shelterbelt inputs and species
func (c *ShelterbeltCalculator) Validate(req *Request) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	belt, ok := req.Component.(*farm.ShelterbeltComponent)
	if !ok {
		return fmt.Errorf("shelterbelt calculator cannot handle %T", req.Component)
	}
	for i, row := range belt.Rows {
		if _, ok := shelterbeltGrowth[row.Species]; !ok {
			return &farm.InvalidComponentError{
				ComponentID:   belt.ID(),
				ComponentType: belt.Type(),
				Field:         fmt.Sprintf("Rows[%d].Species", i),
				Reason:        fmt.Sprintf("no growth curve for species %q", row.Species),
			}
		}
	}
	return nil
}

// Calculate sums the growth of every row during the assessment year
func (c *ShelterbeltCalculator) Calculate(ctx context.Context, req *Request) (*ComponentEmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	belt := req.Component.(*farm.ShelterbeltComponent)

	result := newResult(belt)
	for _, row := range belt.Rows {
		curve := shelterbeltGrowth[row.Species]
		age := belt.AssessmentYear - row.PlantedYear + 1
		growth := curve.carbonAt(age) - curve.carbonAt(age-1)
		result.CarbonChange += growth * float64(row.TreeCount)
	}
	return result.finish(), nil
}
