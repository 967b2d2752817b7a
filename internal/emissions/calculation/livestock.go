package calculation

import (
	"context"
	"fmt"
	"math"

	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/farm"
)

// intakeModel captures what differs between livestock families: how much
// an animal eats and how much nitrogen it keeps
type intakeModel interface {
	// dryMatterIntake returns kg DM/head/day
	dryMatterIntake(g farm.AnimalGroup) float64
	// nitrogenRetained returns kg N/head/day kept in gain, milk or wool
	nitrogenRetained(g farm.AnimalGroup) float64
}

// LivestockCalculator computes diet based (Tier 2) emissions of a livestock family
type LivestockCalculator struct {
	family      farm.Family
	name        string
	description string
	model       intakeModel
}

// Metadata returns livestock calculator metadata
func (c *LivestockCalculator) Metadata() Metadata {
	return Metadata{
		Family:           c.family,
		Name:             c.name,
		Description:      c.description,
		ComponentTypes:   typesOf(c.family),
		RequiredDefaults: []string{"diet", "manure composition", "bedding composition"},
	}
}

// Validate checks the component and that every default it needs resolves
func (c *LivestockCalculator) Validate(req *Request) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	animals, ok := req.Component.(*farm.AnimalComponent)
	if !ok || animals.Type().Family() != c.family {
		return fmt.Errorf("%s calculator cannot handle %s", c.name, req.Component.Type())
	}
	for _, g := range animals.Groups {
		if _, err := req.Farm.Diet(g.DietName); err != nil {
			return err
		}
		if _, err := req.Farm.ManureCompositionFor(animals.Category(), g.ManureHandling); err != nil {
			return err
		}
		if _, err := req.Farm.BeddingCompositionFor(animals.Category(), g.BeddingMaterial); err != nil {
			return err
		}
	}
	return nil
}

// Calculate computes every group in order and sums them
func (c *LivestockCalculator) Calculate(ctx context.Context, req *Request) (*ComponentEmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	animals, ok := req.Component.(*farm.AnimalComponent)
	if !ok {
		return nil, fmt.Errorf("cannot calculate %T as animals", req.Component)
	}

	groups, err := c.groups(req.Farm, animals)
	if err != nil {
		return nil, err
	}
	divert(groups, divertedFraction(req.Farm, animals.ID()))
	result := newResult(animals)
	addGroups(result, groups)
	return result.finish(), nil
}

func (c *LivestockCalculator) groups(f *farm.Farm, animals *farm.AnimalComponent) ([]GroupEmissionResult, error) {
	category := animals.Category()
	out := make([]GroupEmissionResult, 0, len(animals.Groups))
	for _, g := range animals.Groups {
		r, err := c.group(f, category, g)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *LivestockCalculator) group(f *farm.Farm, category defaults.AnimalCategory, g farm.AnimalGroup) (GroupEmissionResult, error) {
	diet, err := f.Diet(g.DietName)
	if err != nil {
		return GroupEmissionResult{}, err
	}
	manure, err := f.ManureCompositionFor(category, g.ManureHandling)
	if err != nil {
		return GroupEmissionResult{}, err
	}
	bedding, err := f.BeddingCompositionFor(category, g.BeddingMaterial)
	if err != nil {
		return GroupEmissionResult{}, err
	}

	animalDays := float64(g.NumberOfAnimals) * float64(g.Days)
	dmi := c.model.dryMatterIntake(g)
	grossEnergy := dmi * feedGrossEnergy

	r := newGroupResult(g)
	r.DryMatterIntake = dmi
	r.GrossEnergyIntake = grossEnergy
	r.EntericMethane = grossEnergy * diet.MethaneConversionFactor / 100 / methaneEnergyContent * animalDays

	// volatile solids from undigested and urinary energy
	volatileSolidsPerDay := (grossEnergy*(1-diet.DigestibleEnergy/100) + urinaryEnergyFraction*grossEnergy) *
		(1 - diet.Ash/100) / feedGrossEnergy
	r.VolatileSolids = volatileSolidsPerDay * animalDays
	r.ManureMethane = r.VolatileSolids * methaneProducingCapacity[category] * methaneDensity * methaneConversionFactors[g.ManureHandling]

	nitrogenIntake := dmi * diet.CrudeProtein / 100 / proteinToNitrogen
	r.NitrogenExcreted = math.Max(nitrogenIntake-c.model.nitrogenRetained(g), 0) * animalDays

	applyManure(&r, g, manure, bedding)
	return r, nil
}

func newGroupResult(g farm.AnimalGroup) GroupEmissionResult {
	return GroupEmissionResult{
		Name:            g.Name,
		GroupType:       g.GroupType,
		NumberOfAnimals: g.NumberOfAnimals,
		Days:            g.Days,
	}
}

// applyManure derives nitrous oxide and nutrient flows from the excreted
// nitrogen and volatile solids already set on the group result
func applyManure(r *GroupEmissionResult, g farm.AnimalGroup, manure defaults.ManureCompositionRecord, bedding defaults.BeddingCompositionRecord) {
	state := g.ManureHandling
	losses := nitrogenLossFractions[state]

	directNitrogen := r.NitrogenExcreted * directEmissionFactors[state]
	volatilized := r.NitrogenExcreted * losses[0]
	leached := r.NitrogenExcreted * losses[1]

	r.DirectNitrousOxide = directNitrogen * nitrogenToNitrousOxide
	r.IndirectNitrousOxide = (volatilized*volatilizationEmissionFactor + leached*leachingEmissionFactor) * nitrogenToNitrousOxide

	if manure.VolatileSolids > 0 {
		r.ManureMass = r.VolatileSolids / manure.VolatileSolids
	}
	beddingMass := g.BeddingRate * float64(g.NumberOfAnimals) * float64(g.Days)
	r.BeddingNitrogen = beddingMass * bedding.NitrogenFraction

	r.Nutrients = NutrientFlows{
		Nitrogen:   r.NitrogenExcreted - directNitrogen - volatilized - leached + r.BeddingNitrogen,
		Phosphorus: r.ManureMass*manure.PhosphorusFraction + beddingMass*bedding.PhosphorusFraction,
		Potassium:  r.ManureMass * manure.PotassiumFraction,
		Carbon:     r.ManureMass*manure.CarbonFraction + beddingMass*bedding.CarbonFraction,
	}
}

// addGroups folds group results into a component result in group order
func addGroups(result *ComponentEmissionResult, groups []GroupEmissionResult) {
	for _, g := range groups {
		result.EntericMethane += g.EntericMethane
		result.ManureMethane += g.ManureMethane
		result.DirectNitrousOxide += g.DirectNitrousOxide
		result.IndirectNitrousOxide += g.IndirectNitrousOxide
		result.Nutrients.add(g.Nutrients)
	}
	result.Groups = groups
}

// dailyGain returns kg live weight gained per head per day
func dailyGain(g farm.AnimalGroup) float64 {
	if g.Days <= 0 || g.EndWeight <= g.StartWeight {
		return 0
	}
	return (g.EndWeight - g.StartWeight) / float64(g.Days)
}

// metabolicIntake is the intake of cattle scaled to metabolic body weight
func metabolicIntake(g farm.AnimalGroup) float64 {
	return 0.1 * math.Pow(g.AverageWeight(), 0.75)
}
