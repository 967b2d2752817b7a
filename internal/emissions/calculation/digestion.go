package calculation

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/farm"
)

const (
	// fraction of the methane potential realized in a digester
	digesterConversion = 0.8
	// carbon content of volatile solids
	volatileSolidsCarbon = 0.5
	// carbon in methane by mass
	methaneCarbon = 12.0 / 16.0
	// slack when comparing summed diverted fractions with 1
	diversionTolerance = 1e-9
)

// DigestionCalculator computes methane capture, leakage and displaced grid
// electricity of an anaerobic digester fed by the farm's livestock manure
type DigestionCalculator struct {
	livestock map[farm.Family]*LivestockCalculator
	other     *OtherAnimalsCalculator
}

// NewDigestionCalculator creates a digestion calculator that reads manure
// from the given livestock calculators
func NewDigestionCalculator(livestock map[farm.Family]*LivestockCalculator, other *OtherAnimalsCalculator) *DigestionCalculator {
	return &DigestionCalculator{livestock: livestock, other: other}
}

// Metadata returns digestion calculator metadata
func (c *DigestionCalculator) Metadata() Metadata {
	return Metadata{
		Family:           farm.FamilyInfrastructure,
		Name:             "Anaerobic digestion",
		Description:      "Biogas from diverted manure, methane leakage and displaced electricity",
		ComponentTypes:   typesOf(farm.FamilyInfrastructure),
		RequiredDefaults: []string{"diet", "manure composition", "bedding composition"},
	}
}

// Validate checks the digester and every manure source it references. A
// source may appear once per digester, and the digesters of a farm together
// may not take more than all of a source's manure.
func (c *DigestionCalculator) Validate(req *Request) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	digester, ok := req.Component.(*farm.AnaerobicDigestionComponent)
	if !ok {
		return fmt.Errorf("digestion calculator cannot handle %T", req.Component)
	}

	totals := diversionTotals(req.Farm)
	listed := make(map[uuid.UUID]bool, len(digester.ManureSources))
	for i, src := range digester.ManureSources {
		path := fmt.Sprintf("ManureSources[%d]", i)
		if listed[src.ComponentID] {
			return invalidDigester(digester, path+".ComponentID", fmt.Sprintf("source %s is listed more than once", src.ComponentID))
		}
		listed[src.ComponentID] = true
		if totals[src.ComponentID] > 1+diversionTolerance {
			return invalidDigester(digester, path+".FractionDiverted",
				fmt.Sprintf("digesters on the farm divert %.3f of source %s, more than all of its manure", totals[src.ComponentID], src.ComponentID))
		}

		animals, err := sourceAnimals(req.Farm, src)
		if err != nil {
			return invalidDigester(digester, path+".ComponentID", err.Error())
		}
		source, err := c.sourceCalculator(animals)
		if err != nil {
			return err
		}
		if err := source.Validate(&Request{Farm: req.Farm, Component: animals, Options: req.Options}); err != nil {
			return fmt.Errorf("manure source %s: %w", animals.ID(), err)
		}
	}
	return nil
}

// Calculate sums the diverted manure of every source in source order. The
// sources report only the manure they keep, so the diverted share is counted here once.
func (c *DigestionCalculator) Calculate(ctx context.Context, req *Request) (*ComponentEmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	digester, ok := req.Component.(*farm.AnaerobicDigestionComponent)
	if !ok {
		return nil, fmt.Errorf("digestion calculator cannot handle %T", req.Component)
	}

	var methane, nitrogen, phosphorus, potassium, carbon float64
	for _, src := range digester.ManureSources {
		animals, err := sourceAnimals(req.Farm, src)
		if err != nil {
			return nil, err
		}
		groups, err := c.groups(req.Farm, animals)
		if err != nil {
			return nil, err
		}
		capacity := methaneProducingCapacity[animals.Category()]
		for _, g := range groups {
			vs := g.VolatileSolids * src.FractionDiverted
			methane += vs * capacity * methaneDensity * digesterConversion
			// sealed digestion has no storage nitrogen losses
			nitrogen += (g.NitrogenExcreted + g.BeddingNitrogen) * src.FractionDiverted
			phosphorus += g.Nutrients.Phosphorus * src.FractionDiverted
			potassium += g.Nutrients.Potassium * src.FractionDiverted
			carbon += vs * volatileSolidsCarbon
		}
	}

	leaked := methane * digester.LeakageFraction
	captured := methane - leaked
	electricity := captured * methaneEnergyContent * digester.ElectricalEfficiency / megajoulesPerKilowattHour

	result := newResult(digester)
	result.ManureMethane = leaked
	result.EnergyCarbonDioxide = -electricity * electricityGridIntensity
	result.Nutrients = NutrientFlows{
		Nitrogen:   nitrogen,
		Phosphorus: phosphorus,
		Potassium:  potassium,
		Carbon:     carbon - methane*methaneCarbon,
	}
	return result.finish(), nil
}

type groupSource interface {
	Calculator
	groups(f *farm.Farm, animals *farm.AnimalComponent) ([]GroupEmissionResult, error)
}

func (c *DigestionCalculator) sourceCalculator(animals *farm.AnimalComponent) (groupSource, error) {
	family := animals.Type().Family()
	if family == farm.FamilyOtherAnimals {
		return c.other, nil
	}
	if calc, ok := c.livestock[family]; ok {
		return calc, nil
	}
	return nil, &RouteError{Missing: []farm.ComponentType{animals.Type()}}
}

func (c *DigestionCalculator) groups(f *farm.Farm, animals *farm.AnimalComponent) ([]GroupEmissionResult, error) {
	source, err := c.sourceCalculator(animals)
	if err != nil {
		return nil, err
	}
	return source.groups(f, animals)
}

func sourceAnimals(f *farm.Farm, src farm.ManureSource) (*farm.AnimalComponent, error) {
	component, ok := f.Component(src.ComponentID)
	if !ok {
		return nil, fmt.Errorf("manure source %s is not on farm %s", src.ComponentID, f.ID)
	}
	animals, ok := component.(*farm.AnimalComponent)
	if !ok {
		return nil, fmt.Errorf("manure source %s is a %s, not an animal component", src.ComponentID, component.Type())
	}
	return animals, nil
}

// diversionTotals sums the diverted fraction of every manure source across
// all digesters of the farm
func diversionTotals(f *farm.Farm) map[uuid.UUID]float64 {
	totals := make(map[uuid.UUID]float64)
	for _, c := range f.Components() {
		digester, ok := c.(*farm.AnaerobicDigestionComponent)
		if !ok {
			continue
		}
		for _, src := range digester.ManureSources {
			totals[src.ComponentID] += src.FractionDiverted
		}
	}
	return totals
}

// divertedFraction is the share of an animal component's manure that goes to
// digesters
func divertedFraction(f *farm.Farm, id uuid.UUID) float64 {
	return math.Min(diversionTotals(f)[id], 1)
}

// divert leaves on each group only the manure kept in storage
func divert(groups []GroupEmissionResult, fraction float64) {
	if fraction <= 0 {
		return
	}
	kept := 1 - fraction
	for i := range groups {
		g := &groups[i]
		g.FractionDiverted = fraction
		g.ManureMethane *= kept
		g.DirectNitrousOxide *= kept
		g.IndirectNitrousOxide *= kept
		g.Nutrients = NutrientFlows{
			Nitrogen:   g.Nutrients.Nitrogen * kept,
			Phosphorus: g.Nutrients.Phosphorus * kept,
			Potassium:  g.Nutrients.Potassium * kept,
			Carbon:     g.Nutrients.Carbon * kept,
		}
	}
}

func invalidDigester(d *farm.AnaerobicDigestionComponent, field, reason string) error {
	return &farm.InvalidComponentError{
		ComponentID:   d.ID(),
		ComponentType: d.Type(),
		Field:         field,
		Reason:        reason,
	}
}
