package calculation

import (
	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/farm"
)

// NutrientFlows are the nutrient masses leaving a component in manure, digestate or residues (kg)
type NutrientFlows struct {
	Nitrogen   float64 `json:"nitrogen"`
	Phosphorus float64 `json:"phosphorus"`
	Potassium  float64 `json:"potassium"`
	Carbon     float64 `json:"carbon"`
}

func (n *NutrientFlows) add(o NutrientFlows) {
	n.Nitrogen += o.Nitrogen
	n.Phosphorus += o.Phosphorus
	n.Potassium += o.Potassium
	n.Carbon += o.Carbon
}

// GroupEmissionResult is the result of one animal group over its management period
type GroupEmissionResult struct {
	Name                 string          `json:"name"`
	GroupType            farm.AnimalType `json:"group_type"`
	NumberOfAnimals      int             `json:"number_of_animals"`
	Days                 int             `json:"days"`
	DryMatterIntake      float64         `json:"dry_matter_intake"`   // kg/head/day
	GrossEnergyIntake    float64         `json:"gross_energy_intake"` // MJ/head/day
	EntericMethane       float64         `json:"enteric_methane"`     // kg CH4
	ManureMethane        float64         `json:"manure_methane"`      // kg CH4
	DirectNitrousOxide   float64         `json:"direct_nitrous_oxide"`
	IndirectNitrousOxide float64         `json:"indirect_nitrous_oxide"`
	NitrogenExcreted     float64         `json:"nitrogen_excreted"` // kg N
	BeddingNitrogen      float64         `json:"bedding_nitrogen"`  // kg N
	FractionDiverted     float64         `json:"fraction_diverted"` // share of manure sent to digesters
	VolatileSolids       float64         `json:"volatile_solids"`   // kg
	ManureMass           float64         `json:"manure_mass"`       // kg wet
	Nutrients            NutrientFlows   `json:"nutrients"`
}

// CropEconomicsView holds the economic figures of a crop year
type CropEconomicsView struct {
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	NetReturn float64 `json:"net_return"`
}

// CropViewItem is the per field-year crop result
type CropViewItem struct {
	ComponentID          uuid.UUID          `json:"component_id"`
	FieldName            string             `json:"field_name"`
	Year                 int                `json:"year"`
	Crop                 defaults.CropType  `json:"crop"`
	Area                 float64            `json:"area"`  // ha
	Yield                float64            `json:"yield"` // kg/ha
	ResidueCarbon        float64            `json:"residue_carbon"`
	ResidueNitrogen      float64            `json:"residue_nitrogen"`
	FixedNitrogen        float64            `json:"fixed_nitrogen"` // kg N from biological fixation
	DirectNitrousOxide   float64            `json:"direct_nitrous_oxide"`
	IndirectNitrousOxide float64            `json:"indirect_nitrous_oxide"`
	EnergyCarbonDioxide  float64            `json:"energy_carbon_dioxide"`
	SoilCarbonChange     float64            `json:"soil_carbon_change"` // kg C, positive is a gain
	Economics            *CropEconomicsView `json:"economics,omitempty"`
}

// ComponentEmissionResult is the emission result of one component. Gas
// masses are kg of the gas; carbon change is kg C with gains positive.
type ComponentEmissionResult struct {
	ComponentID   uuid.UUID          `json:"component_id"`
	ComponentName string             `json:"component_name"`
	ComponentType farm.ComponentType `json:"component_type"`
	Family        farm.Family        `json:"family"`

	EntericMethane       float64 `json:"enteric_methane"`
	ManureMethane        float64 `json:"manure_methane"`
	DirectNitrousOxide   float64 `json:"direct_nitrous_oxide"`
	IndirectNitrousOxide float64 `json:"indirect_nitrous_oxide"`
	EnergyCarbonDioxide  float64 `json:"energy_carbon_dioxide"`
	CarbonChange         float64 `json:"carbon_change"`

	TotalCarbonDioxideEquivalents float64 `json:"total_co2e"`

	Nutrients NutrientFlows         `json:"nutrients"`
	Groups    []GroupEmissionResult `json:"groups,omitempty"`
	CropItems []CropViewItem        `json:"crop_items,omitempty"`
}

func newResult(c farm.Component) *ComponentEmissionResult {
	return &ComponentEmissionResult{
		ComponentID:   c.ID(),
		ComponentName: c.Name(),
		ComponentType: c.Type(),
		Family:        c.Type().Family(),
	}
}

// LandUseCarbonDioxide converts the carbon change to CO2, removals negative
func (r *ComponentEmissionResult) LandUseCarbonDioxide() float64 {
	return -r.CarbonChange * carbonToCarbonDioxide
}

// finish computes the CO2 equivalent total
func (r *ComponentEmissionResult) finish() *ComponentEmissionResult {
	r.TotalCarbonDioxideEquivalents = CarbonDioxideEquivalents(
		r.EntericMethane+r.ManureMethane,
		r.DirectNitrousOxide+r.IndirectNitrousOxide,
		r.EnergyCarbonDioxide+r.LandUseCarbonDioxide(),
	)
	return r
}

// Clone returns a deep copy of the result
func (r *ComponentEmissionResult) Clone() *ComponentEmissionResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Groups != nil {
		out.Groups = append([]GroupEmissionResult(nil), r.Groups...)
	}
	if r.CropItems != nil {
		out.CropItems = CloneCropItems(r.CropItems)
	}
	return &out
}

// CloneCropItems deep copies crop view items
func CloneCropItems(items []CropViewItem) []CropViewItem {
	out := make([]CropViewItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.Economics != nil {
			econ := *item.Economics
			out[i].Economics = &econ
		}
	}
	return out
}

// CarbonDioxideEquivalents weights methane and nitrous oxide by their 100 year warming potentials
func CarbonDioxideEquivalents(methane, nitrousOxide, carbonDioxide float64) float64 {
	return methane*methaneGlobalWarmingPotential + nitrousOxide*nitrousOxideGlobalWarmingPotential + carbonDioxide
}
