package emissions

import (
	"encoding/json"

	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/emissions/calculation"
	"carbon-scribe/farm-emissions/internal/farm"
)

// GasTotals sums the gases, carbon change and nutrient flows of several components
type GasTotals struct {
	EntericMethane                float64                   `json:"enteric_methane"`
	ManureMethane                 float64                   `json:"manure_methane"`
	DirectNitrousOxide            float64                   `json:"direct_nitrous_oxide"`
	IndirectNitrousOxide          float64                   `json:"indirect_nitrous_oxide"`
	EnergyCarbonDioxide           float64                   `json:"energy_carbon_dioxide"`
	CarbonChange                  float64                   `json:"carbon_change"`
	TotalCarbonDioxideEquivalents float64                   `json:"total_co2e"`
	Nutrients                     calculation.NutrientFlows `json:"nutrients"`
}

func (t *GasTotals) add(r *calculation.ComponentEmissionResult) {
	t.EntericMethane += r.EntericMethane
	t.ManureMethane += r.ManureMethane
	t.DirectNitrousOxide += r.DirectNitrousOxide
	t.IndirectNitrousOxide += r.IndirectNitrousOxide
	t.EnergyCarbonDioxide += r.EnergyCarbonDioxide
	t.CarbonChange += r.CarbonChange
	t.TotalCarbonDioxideEquivalents += r.TotalCarbonDioxideEquivalents
	t.Nutrients.Nitrogen += r.Nutrients.Nitrogen
	t.Nutrients.Phosphorus += r.Nutrients.Phosphorus
	t.Nutrients.Potassium += r.Nutrients.Potassium
	t.Nutrients.Carbon += r.Nutrients.Carbon
}

// FamilyTotals are the totals of one component family
type FamilyTotals struct {
	Family farm.Family `json:"family"`
	GasTotals
}

// Totals are the farm level totals. Families appear in the order of their
// first component on the farm.
type Totals struct {
	Farm     GasTotals      `json:"farm"`
	ByFamily []FamilyTotals `json:"by_family"`
}

// FarmEmissionResults is the outcome of one farm calculation. It holds one
// entry per component of the farm at calculation time and is never modified
// after construction; accessors return copies.
type FarmEmissionResults struct {
	farm                    *farm.Farm
	order                   []uuid.UUID
	components              map[uuid.UUID]*calculation.ComponentEmissionResult
	fields                  []calculation.CropViewItem
	totals                  Totals
	cropEconomicDataApplied bool
}

// newFarmEmissionResults folds component results, given in farm order, into
// the farm result
func newFarmEmissionResults(f *farm.Farm, results []*calculation.ComponentEmissionResult, opts calculation.Options) *FarmEmissionResults {
	out := &FarmEmissionResults{
		farm:                    f,
		order:                   make([]uuid.UUID, 0, len(results)),
		components:              make(map[uuid.UUID]*calculation.ComponentEmissionResult, len(results)),
		fields:                  []calculation.CropViewItem{},
		cropEconomicDataApplied: opts.CropEconomicDataApplied,
	}

	familyIndex := make(map[farm.Family]int)
	for _, r := range results {
		out.order = append(out.order, r.ComponentID)
		out.components[r.ComponentID] = r

		if r.ComponentType == farm.ComponentTypeField {
			out.fields = append(out.fields, calculation.CloneCropItems(r.CropItems)...)
		}

		out.totals.Farm.add(r)
		i, ok := familyIndex[r.Family]
		if !ok {
			i = len(out.totals.ByFamily)
			familyIndex[r.Family] = i
			out.totals.ByFamily = append(out.totals.ByFamily, FamilyTotals{Family: r.Family})
		}
		out.totals.ByFamily[i].add(r)
	}
	return out
}

// Farm returns the farm the results were calculated for
func (r *FarmEmissionResults) Farm() *farm.Farm {
	return r.farm
}

// FieldResults returns the crop view items of every field component in farm order
func (r *FarmEmissionResults) FieldResults() []calculation.CropViewItem {
	return calculation.CloneCropItems(r.fields)
}

// ComponentResult returns the result of a component
func (r *FarmEmissionResults) ComponentResult(id uuid.UUID) (*calculation.ComponentEmissionResult, bool) {
	res, ok := r.components[id]
	if !ok {
		return nil, false
	}
	return res.Clone(), true
}

// ComponentResults returns every component result in farm order
func (r *FarmEmissionResults) ComponentResults() []*calculation.ComponentEmissionResult {
	out := make([]*calculation.ComponentEmissionResult, len(r.order))
	for i, id := range r.order {
		out[i] = r.components[id].Clone()
	}
	return out
}

// ComponentIDs returns the IDs of the calculated components in farm order
func (r *FarmEmissionResults) ComponentIDs() []uuid.UUID {
	return append([]uuid.UUID(nil), r.order...)
}

// Len returns the number of component results
func (r *FarmEmissionResults) Len() int {
	return len(r.order)
}

// Totals returns the farm and per family totals
func (r *FarmEmissionResults) Totals() Totals {
	out := r.totals
	out.ByFamily = append([]FamilyTotals(nil), r.totals.ByFamily...)
	return out
}

// CropEconomicDataApplied reports whether crop items carry economic figures
func (r *FarmEmissionResults) CropEconomicDataApplied() bool {
	return r.cropEconomicDataApplied
}

type farmResultsView struct {
	FarmID                  uuid.UUID                              `json:"farm_id"`
	FarmName                string                                 `json:"farm_name"`
	CropEconomicDataApplied bool                                   `json:"crop_economic_data_applied"`
	Components              []*calculation.ComponentEmissionResult `json:"components"`
	FieldResults            []calculation.CropViewItem             `json:"field_results"`
	Totals                  Totals                                 `json:"totals"`
}

// MarshalJSON renders the results with components in farm order
func (r *FarmEmissionResults) MarshalJSON() ([]byte, error) {
	view := farmResultsView{
		CropEconomicDataApplied: r.cropEconomicDataApplied,
		Components:              r.ComponentResults(),
		FieldResults:            r.FieldResults(),
		Totals:                  r.Totals(),
	}
	if r.farm != nil {
		view.FarmID = r.farm.ID
		view.FarmName = r.farm.Name
	}
	return json.Marshal(view)
}
