package defaults

// VersionTables holds the country-specific tables of one version
type VersionTables struct {
	ManureComposition  []ManureCompositionRecord  `json:"manure_composition" yaml:"manure_composition"`
	BeddingComposition []BeddingCompositionRecord `json:"bedding_composition" yaml:"bedding_composition"`
	CropResidues       []CropResidueRecord        `json:"crop_residues" yaml:"crop_residues"`
}

// Tables is the raw source every provider is built from
type Tables struct {
	Diets    []DietFormulation                `json:"diets" yaml:"diets"`
	Versions map[CountryVersion]VersionTables `json:"versions" yaml:"versions"`
}

// Clone returns a deep copy of the tables
func (t Tables) Clone() Tables {
	out := Tables{
		Diets:    make([]DietFormulation, len(t.Diets)),
		Versions: make(map[CountryVersion]VersionTables, len(t.Versions)),
	}
	for i, d := range t.Diets {
		out.Diets[i] = d.Clone()
	}
	for v, vt := range t.Versions {
		out.Versions[v] = VersionTables{
			ManureComposition:  append([]ManureCompositionRecord(nil), vt.ManureComposition...),
			BeddingComposition: append([]BeddingCompositionRecord(nil), vt.BeddingComposition...),
			CropResidues:       append([]CropResidueRecord(nil), vt.CropResidues...),
		}
	}
	return out
}

// BuiltinTables returns the default tables shipped with the engine
func BuiltinTables() Tables {
	return Tables{
		Diets: builtinDiets(),
		Versions: map[CountryVersion]VersionTables{
			Canada: {
				ManureComposition:  manureComposition(1.0),
				BeddingComposition: beddingComposition(),
				CropResidues:       cropResidues(),
			},
			Ireland: {
				// Wetter climate: higher moisture in stored manure
				ManureComposition:  manureComposition(1.04),
				BeddingComposition: beddingComposition(),
				CropResidues:       cropResidues(),
			},
		},
	}
}

var manureStates = []ManureStateType{
	ManurePasture,
	ManureDailySpread,
	ManureSolidStorage,
	ManureCompostedPassive,
	ManureCompostedIntensive,
	ManureDeepBedding,
	ManureLiquidWithNaturalCrust,
	ManureLiquidNoCrust,
	ManureLiquidWithSolidCover,
	ManureAnaerobicDigester,
}

// ManureStates returns every supported manure handling state
func ManureStates() []ManureStateType {
	return append([]ManureStateType(nil), manureStates...)
}

var animalCategories = []AnimalCategory{
	CategoryBeef,
	CategoryDairy,
	CategorySheep,
	CategorySwine,
	CategoryOtherLivestock,
}

// manure composition on a wet weight basis (solid form, liquid form)
var manureBase = map[AnimalCategory][2]ManureCompositionRecord{
	CategoryBeef: {
		{MoistureContent: 60.08, NitrogenFraction: 0.0065, CarbonFraction: 0.1004, PhosphorusFraction: 0.0021, PotassiumFraction: 0.0067, CarbonToNitrogenRatio: 15.45, VolatileSolids: 0.2960},
		{MoistureContent: 92.00, NitrogenFraction: 0.0037, CarbonFraction: 0.0248, PhosphorusFraction: 0.0009, PotassiumFraction: 0.0030, CarbonToNitrogenRatio: 6.70, VolatileSolids: 0.0620},
	},
	CategoryDairy: {
		{MoistureContent: 75.46, NitrogenFraction: 0.0057, CarbonFraction: 0.0799, PhosphorusFraction: 0.0016, PotassiumFraction: 0.0051, CarbonToNitrogenRatio: 14.02, VolatileSolids: 0.2020},
		{MoistureContent: 91.90, NitrogenFraction: 0.0035, CarbonFraction: 0.0250, PhosphorusFraction: 0.0008, PotassiumFraction: 0.0032, CarbonToNitrogenRatio: 7.14, VolatileSolids: 0.0640},
	},
	CategorySheep: {
		{MoistureContent: 56.20, NitrogenFraction: 0.0078, CarbonFraction: 0.1280, PhosphorusFraction: 0.0029, PotassiumFraction: 0.0084, CarbonToNitrogenRatio: 16.41, VolatileSolids: 0.3300},
		{MoistureContent: 90.00, NitrogenFraction: 0.0042, CarbonFraction: 0.0300, PhosphorusFraction: 0.0011, PotassiumFraction: 0.0036, CarbonToNitrogenRatio: 7.14, VolatileSolids: 0.0750},
	},
	CategorySwine: {
		{MoistureContent: 70.30, NitrogenFraction: 0.0080, CarbonFraction: 0.1090, PhosphorusFraction: 0.0046, PotassiumFraction: 0.0053, CarbonToNitrogenRatio: 13.63, VolatileSolids: 0.2400},
		{MoistureContent: 96.93, NitrogenFraction: 0.0036, CarbonFraction: 0.0130, PhosphorusFraction: 0.0010, PotassiumFraction: 0.0020, CarbonToNitrogenRatio: 3.61, VolatileSolids: 0.0230},
	},
	CategoryOtherLivestock: {
		{MoistureContent: 65.00, NitrogenFraction: 0.0070, CarbonFraction: 0.1100, PhosphorusFraction: 0.0025, PotassiumFraction: 0.0070, CarbonToNitrogenRatio: 15.71, VolatileSolids: 0.2800},
		{MoistureContent: 92.00, NitrogenFraction: 0.0038, CarbonFraction: 0.0260, PhosphorusFraction: 0.0009, PotassiumFraction: 0.0031, CarbonToNitrogenRatio: 6.84, VolatileSolids: 0.0620},
	},
}

func manureComposition(moistureScale float64) []ManureCompositionRecord {
	records := make([]ManureCompositionRecord, 0, len(animalCategories)*len(manureStates))
	for _, category := range animalCategories {
		base := manureBase[category]
		for _, state := range manureStates {
			rec := base[0]
			if state.IsLiquid() {
				rec = base[1]
			}
			switch state {
			case ManureCompostedPassive, ManureCompostedIntensive:
				// composting concentrates nutrients and loses carbon
				rec.NitrogenFraction *= 1.15
				rec.CarbonFraction *= 0.80
				rec.VolatileSolids *= 0.75
			case ManureDeepBedding:
				rec.CarbonFraction *= 1.10
			}
			rec.MoistureContent *= moistureScale
			if rec.MoistureContent > 99 {
				rec.MoistureContent = 99
			}
			rec.Category = category
			rec.State = state
			records = append(records, rec)
		}
	}
	return records
}

var beddingMaterials = []BeddingMaterialType{
	BeddingNone,
	BeddingStraw,
	BeddingWoodChip,
	BeddingSawdust,
	BeddingSand,
	BeddingSeparatedManureSolids,
}

var beddingBase = map[BeddingMaterialType]BeddingCompositionRecord{
	BeddingNone:                  {},
	BeddingStraw:                 {DryMatterFraction: 0.904, NitrogenFraction: 0.0057, CarbonFraction: 0.4474, PhosphorusFraction: 0.000635, CarbonToNitrogenRatio: 90.5, MoistureContent: 9.57},
	BeddingWoodChip:              {DryMatterFraction: 0.872, NitrogenFraction: 0.00185, CarbonFraction: 0.5060, PhosphorusFraction: 0.000275, CarbonToNitrogenRatio: 329.5, MoistureContent: 12.82},
	BeddingSawdust:               {DryMatterFraction: 0.899, NitrogenFraction: 0.00098, CarbonFraction: 0.4970, PhosphorusFraction: 0.000120, CarbonToNitrogenRatio: 507.1, MoistureContent: 10.12},
	BeddingSand:                  {DryMatterFraction: 1.000},
	BeddingSeparatedManureSolids: {DryMatterFraction: 0.330, NitrogenFraction: 0.0330, CarbonFraction: 0.3950, PhosphorusFraction: 0.006500, CarbonToNitrogenRatio: 12.0, MoistureContent: 67.0},
}

func beddingComposition() []BeddingCompositionRecord {
	records := make([]BeddingCompositionRecord, 0, len(animalCategories)*len(beddingMaterials))
	for _, category := range animalCategories {
		for _, material := range beddingMaterials {
			rec := beddingBase[material]
			rec.Category = category
			rec.Material = material
			records = append(records, rec)
		}
	}
	return records
}

func builtinDiets() []DietFormulation {
	return []DietFormulation{
		{
			Name: "Medium Energy and Protein", Category: CategoryBeef,
			CrudeProtein: 12.57, TotalDigestibleNutrient: 64.25, NeutralDetergentFiber: 52.3, Ash: 7.6, Forage: 97, DigestibleEnergy: 63, MethaneConversionFactor: 6.5,
			Ingredients: []DietIngredient{{Name: "Grass hay", Percentage: 65}, {Name: "Alfalfa hay", Percentage: 32}, {Name: "Barley grain", Percentage: 3}},
		},
		{
			Name: "High Energy and Protein", Category: CategoryBeef,
			CrudeProtein: 15.0, TotalDigestibleNutrient: 68.0, NeutralDetergentFiber: 45.8, Ash: 7.9, Forage: 85, DigestibleEnergy: 68, MethaneConversionFactor: 6.0,
			Ingredients: []DietIngredient{{Name: "Alfalfa hay", Percentage: 60}, {Name: "Grass hay", Percentage: 25}, {Name: "Barley grain", Percentage: 15}},
		},
		{
			Name: "Barley Grain-Based", Category: CategoryBeef,
			CrudeProtein: 12.6, TotalDigestibleNutrient: 81.5, NeutralDetergentFiber: 21.6, Ash: 3.9, Forage: 10, DigestibleEnergy: 81, MethaneConversionFactor: 4.0,
			Ingredients: []DietIngredient{{Name: "Barley grain", Percentage: 80}, {Name: "Barley silage", Percentage: 10}, {Name: "Supplement", Percentage: 10}},
		},
		{
			Name: "Corn Grain-Based", Category: CategoryBeef,
			CrudeProtein: 12.4, TotalDigestibleNutrient: 84.1, NeutralDetergentFiber: 18.4, Ash: 3.1, Forage: 10, DigestibleEnergy: 84, MethaneConversionFactor: 3.0,
			Ingredients: []DietIngredient{{Name: "Corn grain", Percentage: 80}, {Name: "Corn silage", Percentage: 10}, {Name: "Supplement", Percentage: 10}},
		},
		{
			Name: "Legume Forage-Based", Category: CategoryDairy,
			CrudeProtein: 18.7, TotalDigestibleNutrient: 68.0, NeutralDetergentFiber: 34.6, Ash: 7.3, Forage: 60, DigestibleEnergy: 69, MethaneConversionFactor: 5.7,
			Ingredients: []DietIngredient{{Name: "Alfalfa silage", Percentage: 40}, {Name: "Corn silage", Percentage: 20}, {Name: "Concentrate", Percentage: 40}},
		},
		{
			Name: "Barley Silage-Based", Category: CategoryDairy,
			CrudeProtein: 17.5, TotalDigestibleNutrient: 70.0, NeutralDetergentFiber: 36.1, Ash: 7.0, Forage: 55, DigestibleEnergy: 70, MethaneConversionFactor: 6.0,
			Ingredients: []DietIngredient{{Name: "Barley silage", Percentage: 55}, {Name: "Concentrate", Percentage: 45}},
		},
		{
			Name: "Dry Cow Diet", Category: CategoryDairy,
			CrudeProtein: 13.0, TotalDigestibleNutrient: 60.0, NeutralDetergentFiber: 50.0, Ash: 8.0, Forage: 90, DigestibleEnergy: 60, MethaneConversionFactor: 6.5,
			Ingredients: []DietIngredient{{Name: "Grass hay", Percentage: 90}, {Name: "Concentrate", Percentage: 10}},
		},
		{
			Name: "Good-Quality Forage", Category: CategorySheep,
			CrudeProtein: 16.0, TotalDigestibleNutrient: 65.0, NeutralDetergentFiber: 42.0, Ash: 8.0, Forage: 90, DigestibleEnergy: 65, MethaneConversionFactor: 6.7,
			Ingredients: []DietIngredient{{Name: "Mixed hay", Percentage: 90}, {Name: "Oats", Percentage: 10}},
		},
		{
			Name: "Lamb Finishing", Category: CategorySheep,
			CrudeProtein: 15.0, TotalDigestibleNutrient: 75.0, NeutralDetergentFiber: 28.0, Ash: 6.0, Forage: 30, DigestibleEnergy: 75, MethaneConversionFactor: 4.5,
			Ingredients: []DietIngredient{{Name: "Barley grain", Percentage: 60}, {Name: "Alfalfa hay", Percentage: 30}, {Name: "Supplement", Percentage: 10}},
		},
		{
			Name: "Grower-Finisher", Category: CategorySwine,
			CrudeProtein: 16.5, TotalDigestibleNutrient: 82.0, NeutralDetergentFiber: 14.0, Ash: 5.0, Forage: 0, DigestibleEnergy: 80, MethaneConversionFactor: 0.6,
			Ingredients: []DietIngredient{{Name: "Wheat", Percentage: 60}, {Name: "Soybean meal", Percentage: 25}, {Name: "Barley", Percentage: 15}},
		},
		{
			Name: "Gestation", Category: CategorySwine,
			CrudeProtein: 13.5, TotalDigestibleNutrient: 75.0, NeutralDetergentFiber: 18.0, Ash: 6.0, Forage: 0, DigestibleEnergy: 75, MethaneConversionFactor: 0.8,
			Ingredients: []DietIngredient{{Name: "Barley", Percentage: 70}, {Name: "Soybean meal", Percentage: 12}, {Name: "Wheat bran", Percentage: 18}},
		},
		{
			Name: "Lactation", Category: CategorySwine,
			CrudeProtein: 18.0, TotalDigestibleNutrient: 80.0, NeutralDetergentFiber: 15.0, Ash: 6.0, Forage: 0, DigestibleEnergy: 79, MethaneConversionFactor: 0.6,
			Ingredients: []DietIngredient{{Name: "Wheat", Percentage: 55}, {Name: "Soybean meal", Percentage: 30}, {Name: "Canola oil", Percentage: 15}},
		},
		{
			Name: "Nursery", Category: CategorySwine,
			CrudeProtein: 20.0, TotalDigestibleNutrient: 84.0, NeutralDetergentFiber: 10.0, Ash: 5.5, Forage: 0, DigestibleEnergy: 83, MethaneConversionFactor: 0.3,
			Ingredients: []DietIngredient{{Name: "Wheat", Percentage: 45}, {Name: "Soybean meal", Percentage: 30}, {Name: "Whey", Percentage: 25}},
		},
	}
}

func cropResidues() []CropResidueRecord {
	return []CropResidueRecord{
		{Crop: CropBarley, MoistureContent: 12, RelativeBiomassProduct: 0.451, RelativeBiomassStraw: 0.340, RelativeBiomassRoot: 0.126, RelativeBiomassExtraroot: 0.083, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0218, NitrogenConcentrationStraw: 0.0068, NitrogenConcentrationRoot: 0.0100, NitrogenConcentrationExtraroot: 0.0100, BushelWeight: 21.77},
		{Crop: CropWheat, MoistureContent: 12, RelativeBiomassProduct: 0.244, RelativeBiomassStraw: 0.518, RelativeBiomassRoot: 0.147, RelativeBiomassExtraroot: 0.091, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0263, NitrogenConcentrationStraw: 0.0065, NitrogenConcentrationRoot: 0.0100, NitrogenConcentrationExtraroot: 0.0100, BushelWeight: 27.22},
		{Crop: CropWinterWheat, MoistureContent: 12, RelativeBiomassProduct: 0.253, RelativeBiomassStraw: 0.517, RelativeBiomassRoot: 0.142, RelativeBiomassExtraroot: 0.088, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0233, NitrogenConcentrationStraw: 0.0066, NitrogenConcentrationRoot: 0.0100, NitrogenConcentrationExtraroot: 0.0100, BushelWeight: 27.22},
		{Crop: CropOats, MoistureContent: 12, RelativeBiomassProduct: 0.243, RelativeBiomassStraw: 0.527, RelativeBiomassRoot: 0.142, RelativeBiomassExtraroot: 0.088, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0171, NitrogenConcentrationStraw: 0.0060, NitrogenConcentrationRoot: 0.0100, NitrogenConcentrationExtraroot: 0.0100, BushelWeight: 15.42},
		{Crop: CropCanola, MoistureContent: 9, RelativeBiomassProduct: 0.207, RelativeBiomassStraw: 0.587, RelativeBiomassRoot: 0.127, RelativeBiomassExtraroot: 0.079, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0360, NitrogenConcentrationStraw: 0.0080, NitrogenConcentrationRoot: 0.0100, NitrogenConcentrationExtraroot: 0.0100, BushelWeight: 22.68},
		{Crop: CropPeas, MoistureContent: 13, RelativeBiomassProduct: 0.347, RelativeBiomassStraw: 0.479, RelativeBiomassRoot: 0.107, RelativeBiomassExtraroot: 0.067, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0400, NitrogenConcentrationStraw: 0.0100, NitrogenConcentrationRoot: 0.0200, NitrogenConcentrationExtraroot: 0.0200, BushelWeight: 27.22, FixesNitrogen: true},
		{Crop: CropSoybeans, MoistureContent: 13, RelativeBiomassProduct: 0.304, RelativeBiomassStraw: 0.433, RelativeBiomassRoot: 0.162, RelativeBiomassExtraroot: 0.101, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0600, NitrogenConcentrationStraw: 0.0080, NitrogenConcentrationRoot: 0.0100, NitrogenConcentrationExtraroot: 0.0100, BushelWeight: 27.22, FixesNitrogen: true},
		{Crop: CropCorn, MoistureContent: 15.5, RelativeBiomassProduct: 0.433, RelativeBiomassStraw: 0.407, RelativeBiomassRoot: 0.097, RelativeBiomassExtraroot: 0.063, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0140, NitrogenConcentrationStraw: 0.0070, NitrogenConcentrationRoot: 0.0070, NitrogenConcentrationExtraroot: 0.0070, BushelWeight: 25.40},
		{Crop: CropSilageCorn, MoistureContent: 65, RelativeBiomassProduct: 0.770, RelativeBiomassStraw: 0.0, RelativeBiomassRoot: 0.140, RelativeBiomassExtraroot: 0.090, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0116, NitrogenConcentrationStraw: 0.0, NitrogenConcentrationRoot: 0.0070, NitrogenConcentrationExtraroot: 0.0070, BushelWeight: 25.40},
		{Crop: CropTameGrass, MoistureContent: 12, RelativeBiomassProduct: 0.280, RelativeBiomassStraw: 0.0, RelativeBiomassRoot: 0.450, RelativeBiomassExtraroot: 0.270, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0150, NitrogenConcentrationStraw: 0.0, NitrogenConcentrationRoot: 0.0100, NitrogenConcentrationExtraroot: 0.0100, BushelWeight: 1},
		{Crop: CropPerennialHay, MoistureContent: 12, RelativeBiomassProduct: 0.350, RelativeBiomassStraw: 0.0, RelativeBiomassRoot: 0.400, RelativeBiomassExtraroot: 0.250, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0180, NitrogenConcentrationStraw: 0.0, NitrogenConcentrationRoot: 0.0100, NitrogenConcentrationExtraroot: 0.0100, BushelWeight: 1},
		{Crop: CropAlfalfa, MoistureContent: 12, RelativeBiomassProduct: 0.400, RelativeBiomassStraw: 0.0, RelativeBiomassRoot: 0.370, RelativeBiomassExtraroot: 0.230, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0280, NitrogenConcentrationStraw: 0.0, NitrogenConcentrationRoot: 0.0200, NitrogenConcentrationExtraroot: 0.0200, BushelWeight: 1, FixesNitrogen: true},
		{Crop: CropFieldPotatoes, MoistureContent: 80, RelativeBiomassProduct: 0.750, RelativeBiomassStraw: 0.150, RelativeBiomassRoot: 0.060, RelativeBiomassExtraroot: 0.040, CarbonConcentration: 0.45, NitrogenConcentrationProduct: 0.0129, NitrogenConcentrationStraw: 0.0200, NitrogenConcentrationRoot: 0.0100, NitrogenConcentrationExtraroot: 0.0100, BushelWeight: 27.22},
		{Crop: CropSummerFallow, CarbonConcentration: 0.45, BushelWeight: 1},
	}
}
