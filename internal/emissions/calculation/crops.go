package calculation

import (
	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/farm"
)

// cropCalculator turns one crop year on an area into a crop view item
type cropCalculator struct {
	residues *defaults.CropResidueProvider
}

func newCropCalculator(residues *defaults.CropResidueProvider) *cropCalculator {
	return &cropCalculator{residues: residues}
}

type cropYearInput struct {
	componentID uuid.UUID
	fieldName   string
	year        int
	area        float64
	management  farm.CropManagement
}

func (c *cropCalculator) calculate(version defaults.CountryVersion, in cropYearInput, opts Options) (CropViewItem, error) {
	m := in.management
	residue, err := c.residues.CropResidue(version, m.Crop)
	if err != nil {
		return CropViewItem{}, err
	}

	item := CropViewItem{
		ComponentID: in.componentID,
		FieldName:   in.fieldName,
		Year:        in.year,
		Crop:        m.Crop,
		Area:        in.area,
		Yield:       m.Yield,
	}

	// carbon per hectare allocated by relative biomass
	dryYield := m.Yield * (1 - residue.MoistureContent/100)
	var plantCarbon float64
	if residue.RelativeBiomassProduct > 0 {
		plantCarbon = dryYield * residue.CarbonConcentration / residue.RelativeBiomassProduct
	}
	strawCarbon := plantCarbon * residue.RelativeBiomassStraw * (1 - m.ResidueRemoval)
	rootCarbon := plantCarbon * residue.RelativeBiomassRoot
	extrarootCarbon := plantCarbon * residue.RelativeBiomassExtraroot

	var residueNitrogen float64
	if residue.CarbonConcentration > 0 {
		residueNitrogen = strawCarbon/residue.CarbonConcentration*residue.NitrogenConcentrationStraw +
			rootCarbon/residue.CarbonConcentration*residue.NitrogenConcentrationRoot +
			extrarootCarbon/residue.CarbonConcentration*residue.NitrogenConcentrationExtraroot
	}

	item.ResidueCarbon = (strawCarbon + rootCarbon + extrarootCarbon) * in.area
	item.ResidueNitrogen = residueNitrogen * in.area
	// fixed nitrogen is reported only, biological fixation is not a direct N2O source
	if residue.FixesNitrogen {
		item.FixedNitrogen = dryYield*residue.NitrogenConcentrationProduct*in.area + item.ResidueNitrogen
	}

	fertilizerNitrogen := m.NitrogenFertilizerRate * in.area
	nitrogenInputs := fertilizerNitrogen + item.ResidueNitrogen

	item.DirectNitrousOxide = nitrogenInputs * fertilizerEmissionFactor * nitrogenToNitrousOxide
	volatilized := fertilizerNitrogen * fertilizerVolatilization * volatilizationEmissionFactor
	leached := nitrogenInputs * cropLeachingFraction * leachingEmissionFactor
	item.IndirectNitrousOxide = (volatilized + leached) * nitrogenToNitrousOxide

	item.EnergyCarbonDioxide = m.FuelUse*in.area*fuelCarbonDioxidePerLitre +
		fertilizerNitrogen*nitrogenFertilizerCarbonDioxide +
		m.PhosphorusFertilizerRate*in.area*phosphorusFertilizerCarbonDioxide

	humified := strawCarbon*aboveGroundHumification + (rootCarbon+extrarootCarbon)*belowGroundHumification
	item.SoilCarbonChange = (humified - tillageDecomposition[m.Tillage]) * in.area

	if opts.CropEconomicDataApplied {
		revenue := m.Yield / 1000 * m.Economics.PricePerTonne * in.area
		cost := m.Economics.CostPerHectare * in.area
		item.Economics = &CropEconomicsView{
			Revenue:   revenue,
			Cost:      cost,
			NetReturn: revenue - cost,
		}
	}
	return item, nil
}

// addCropItems folds crop items into a component result in item order
func addCropItems(result *ComponentEmissionResult, items []CropViewItem) {
	for _, item := range items {
		result.DirectNitrousOxide += item.DirectNitrousOxide
		result.IndirectNitrousOxide += item.IndirectNitrousOxide
		result.EnergyCarbonDioxide += item.EnergyCarbonDioxide
		result.CarbonChange += item.SoilCarbonChange
		result.Nutrients.Nitrogen += item.ResidueNitrogen
		result.Nutrients.Carbon += item.ResidueCarbon
	}
	result.CropItems = items
}
