package defaults

import (
	"errors"
	"fmt"
)

// CountryVersion selects which national default-data snapshot applies
type CountryVersion string

const (
	Canada  CountryVersion = "Canada"
	Ireland CountryVersion = "Ireland"
)

// AnimalCategory groups animal components for default-data lookups
type AnimalCategory string

const (
	CategoryBeef           AnimalCategory = "Beef"
	CategoryDairy          AnimalCategory = "Dairy"
	CategorySheep          AnimalCategory = "Sheep"
	CategorySwine          AnimalCategory = "Swine"
	CategoryOtherLivestock AnimalCategory = "OtherLivestock"
)

// ManureStateType is the manure handling system applied to a group
type ManureStateType string

const (
	ManurePasture                ManureStateType = "Pasture"
	ManureDailySpread            ManureStateType = "DailySpread"
	ManureSolidStorage           ManureStateType = "SolidStorage"
	ManureCompostedPassive       ManureStateType = "CompostedPassive"
	ManureCompostedIntensive     ManureStateType = "CompostedIntensive"
	ManureDeepBedding            ManureStateType = "DeepBedding"
	ManureLiquidWithNaturalCrust ManureStateType = "LiquidWithNaturalCrust"
	ManureLiquidNoCrust          ManureStateType = "LiquidNoCrust"
	ManureLiquidWithSolidCover   ManureStateType = "LiquidWithSolidCover"
	ManureAnaerobicDigester      ManureStateType = "AnaerobicDigester"
)

// IsLiquid reports whether the state is a liquid/slurry system
func (s ManureStateType) IsLiquid() bool {
	switch s {
	case ManureLiquidWithNaturalCrust, ManureLiquidNoCrust, ManureLiquidWithSolidCover, ManureAnaerobicDigester:
		return true
	}
	return false
}

// BeddingMaterialType is the bedding used in housing
type BeddingMaterialType string

const (
	BeddingNone                  BeddingMaterialType = "None"
	BeddingStraw                 BeddingMaterialType = "Straw"
	BeddingWoodChip              BeddingMaterialType = "WoodChip"
	BeddingSawdust               BeddingMaterialType = "Sawdust"
	BeddingSand                  BeddingMaterialType = "Sand"
	BeddingSeparatedManureSolids BeddingMaterialType = "SeparatedManureSolids"
)

// CropType identifies a crop grown on a field
type CropType string

const (
	CropBarley        CropType = "Barley"
	CropWheat         CropType = "Wheat"
	CropCanola        CropType = "Canola"
	CropOats          CropType = "Oats"
	CropPeas          CropType = "Peas"
	CropSoybeans      CropType = "Soybeans"
	CropCorn          CropType = "GrainCorn"
	CropTameGrass     CropType = "TameGrass"
	CropAlfalfa       CropType = "Alfalfa"
	CropSummerFallow  CropType = "SummerFallow"
	CropPerennialHay  CropType = "PerennialForages"
	CropSilageCorn    CropType = "SilageCorn"
	CropWinterWheat   CropType = "WinterWheat"
	CropFieldPotatoes CropType = "Potatoes"
)

// ManureTypeKey identifies a manure composition record within a version
type ManureTypeKey struct {
	Category AnimalCategory  `json:"category" yaml:"category"`
	State    ManureStateType `json:"state" yaml:"state"`
}

func (k ManureTypeKey) String() string {
	return fmt.Sprintf("%s/%s", k.Category, k.State)
}

// BeddingTypeKey identifies a bedding composition record within a version
type BeddingTypeKey struct {
	Category AnimalCategory      `json:"category" yaml:"category"`
	Material BeddingMaterialType `json:"material" yaml:"material"`
}

func (k BeddingTypeKey) String() string {
	return fmt.Sprintf("%s/%s", k.Category, k.Material)
}

// ManureCompositionRecord holds default manure composition fractions (wet weight basis)
type ManureCompositionRecord struct {
	Category              AnimalCategory  `json:"category" yaml:"category"`
	State                 ManureStateType `json:"state" yaml:"state"`
	MoistureContent       float64         `json:"moisture_content" yaml:"moisture_content"`
	NitrogenFraction      float64         `json:"nitrogen_fraction" yaml:"nitrogen_fraction"`
	CarbonFraction        float64         `json:"carbon_fraction" yaml:"carbon_fraction"`
	PhosphorusFraction    float64         `json:"phosphorus_fraction" yaml:"phosphorus_fraction"`
	PotassiumFraction     float64         `json:"potassium_fraction" yaml:"potassium_fraction"`
	CarbonToNitrogenRatio float64         `json:"carbon_to_nitrogen_ratio" yaml:"carbon_to_nitrogen_ratio"`
	VolatileSolids        float64         `json:"volatile_solids" yaml:"volatile_solids"`
}

// Key returns the lookup key of the record
func (r ManureCompositionRecord) Key() ManureTypeKey {
	return ManureTypeKey{Category: r.Category, State: r.State}
}

// BeddingCompositionRecord holds default bedding material composition
type BeddingCompositionRecord struct {
	Category              AnimalCategory      `json:"category" yaml:"category"`
	Material              BeddingMaterialType `json:"material" yaml:"material"`
	DryMatterFraction     float64             `json:"dry_matter_fraction" yaml:"dry_matter_fraction"`
	NitrogenFraction      float64             `json:"nitrogen_fraction" yaml:"nitrogen_fraction"`
	CarbonFraction        float64             `json:"carbon_fraction" yaml:"carbon_fraction"`
	PhosphorusFraction    float64             `json:"phosphorus_fraction" yaml:"phosphorus_fraction"`
	CarbonToNitrogenRatio float64             `json:"carbon_to_nitrogen_ratio" yaml:"carbon_to_nitrogen_ratio"`
	MoistureContent       float64             `json:"moisture_content" yaml:"moisture_content"`
}

// Key returns the lookup key of the record
func (r BeddingCompositionRecord) Key() BeddingTypeKey {
	return BeddingTypeKey{Category: r.Category, Material: r.Material}
}

// DietIngredient is one feed ingredient of a diet
type DietIngredient struct {
	Name       string  `json:"name" yaml:"name"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// DietFormulation is a diet nutrient profile (percentages on a dry matter basis)
type DietFormulation struct {
	Name                    string           `json:"name" yaml:"name"`
	Category                AnimalCategory   `json:"category" yaml:"category"`
	CrudeProtein            float64          `json:"crude_protein" yaml:"crude_protein"`
	TotalDigestibleNutrient float64          `json:"total_digestible_nutrient" yaml:"total_digestible_nutrient"`
	NeutralDetergentFiber   float64          `json:"neutral_detergent_fiber" yaml:"neutral_detergent_fiber"`
	Ash                     float64          `json:"ash" yaml:"ash"`
	Forage                  float64          `json:"forage" yaml:"forage"`
	DigestibleEnergy        float64          `json:"digestible_energy" yaml:"digestible_energy"`
	MethaneConversionFactor float64          `json:"methane_conversion_factor" yaml:"methane_conversion_factor"`
	Ingredients             []DietIngredient `json:"ingredients" yaml:"ingredients"`
}

// Clone returns a deep copy of the diet
func (d DietFormulation) Clone() DietFormulation {
	out := d
	if d.Ingredients != nil {
		out.Ingredients = make([]DietIngredient, len(d.Ingredients))
		copy(out.Ingredients, d.Ingredients)
	}
	return out
}

// CropResidueRecord holds the residue and nitrogen defaults for a crop
type CropResidueRecord struct {
	Crop                           CropType `json:"crop" yaml:"crop"`
	MoistureContent                float64  `json:"moisture_content" yaml:"moisture_content"`
	RelativeBiomassProduct         float64  `json:"relative_biomass_product" yaml:"relative_biomass_product"`
	RelativeBiomassStraw           float64  `json:"relative_biomass_straw" yaml:"relative_biomass_straw"`
	RelativeBiomassRoot            float64  `json:"relative_biomass_root" yaml:"relative_biomass_root"`
	RelativeBiomassExtraroot       float64  `json:"relative_biomass_extraroot" yaml:"relative_biomass_extraroot"`
	CarbonConcentration            float64  `json:"carbon_concentration" yaml:"carbon_concentration"`
	NitrogenConcentrationProduct   float64  `json:"nitrogen_concentration_product" yaml:"nitrogen_concentration_product"`
	NitrogenConcentrationStraw     float64  `json:"nitrogen_concentration_straw" yaml:"nitrogen_concentration_straw"`
	NitrogenConcentrationRoot      float64  `json:"nitrogen_concentration_root" yaml:"nitrogen_concentration_root"`
	NitrogenConcentrationExtraroot float64  `json:"nitrogen_concentration_extraroot" yaml:"nitrogen_concentration_extraroot"`
	BushelWeight                   float64  `json:"bushel_weight" yaml:"bushel_weight"`
	FixesNitrogen                  bool     `json:"fixes_nitrogen" yaml:"fixes_nitrogen"`
}

// ErrMissingDefault is wrapped by every failed default-data lookup
var ErrMissingDefault = errors.New("missing default data")

// MissingDefaultError identifies the table, version and key that failed to resolve
type MissingDefaultError struct {
	Table   string
	Version CountryVersion
	Key     string
}

func (e *MissingDefaultError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("%s: no %s entry for %q", ErrMissingDefault, e.Table, e.Key)
	}
	return fmt.Sprintf("%s: no %s entry for %q (version %s)", ErrMissingDefault, e.Table, e.Key, e.Version)
}

func (e *MissingDefaultError) Unwrap() error {
	return ErrMissingDefault
}
