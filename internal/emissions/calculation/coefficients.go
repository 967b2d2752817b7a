package calculation

import (
	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/farm"
)

const (
	methaneGlobalWarmingPotential      = 28.0
	nitrousOxideGlobalWarmingPotential = 265.0

	// molecular weight ratios
	nitrogenToNitrousOxide = 44.0 / 28.0
	carbonToCarbonDioxide  = 44.0 / 12.0

	// energy content of feed dry matter (MJ/kg) and of methane (MJ/kg)
	feedGrossEnergy      = 18.45
	methaneEnergyContent = 55.65

	// urinary energy as a fraction of gross energy
	urinaryEnergyFraction = 0.04

	// methane density (kg/m3)
	methaneDensity = 0.67

	proteinToNitrogen = 6.25

	// emission factors for nitrous oxide from volatilized and leached nitrogen
	volatilizationEmissionFactor = 0.01
	leachingEmissionFactor       = 0.0075

	fuelCarbonDioxidePerLitre         = 2.67
	nitrogenFertilizerCarbonDioxide   = 3.59 // kg CO2 per kg N manufactured
	phosphorusFertilizerCarbonDioxide = 0.5
	fertilizerEmissionFactor          = 0.01
	fertilizerVolatilization          = 0.1
	cropLeachingFraction              = 0.3

	// humification coefficients of residue carbon
	aboveGroundHumification = 0.125
	belowGroundHumification = 0.3

	// nitrogen in live weight gain and in milk (kg N/kg)
	nitrogenInGain = 0.0325
	nitrogenInMilk = 0.0051
	nitrogenInWool = 0.134

	electricityGridIntensity  = 0.13 // kg CO2/kWh
	megajoulesPerKilowattHour = 3.6
)

// manure methane conversion factors (fraction of B0 realized)
var methaneConversionFactors = map[defaults.ManureStateType]float64{
	defaults.ManurePasture:                0.0047,
	defaults.ManureDailySpread:            0.001,
	defaults.ManureSolidStorage:           0.02,
	defaults.ManureCompostedPassive:       0.005,
	defaults.ManureCompostedIntensive:     0.005,
	defaults.ManureDeepBedding:            0.21,
	defaults.ManureLiquidWithNaturalCrust: 0.13,
	defaults.ManureLiquidNoCrust:          0.26,
	defaults.ManureLiquidWithSolidCover:   0.12,
	defaults.ManureAnaerobicDigester:      0.01,
}

// direct nitrous oxide emission factors (kg N2O-N per kg N excreted)
var directEmissionFactors = map[defaults.ManureStateType]float64{
	defaults.ManurePasture:                0.006,
	defaults.ManureDailySpread:            0.0,
	defaults.ManureSolidStorage:           0.01,
	defaults.ManureCompostedPassive:       0.005,
	defaults.ManureCompostedIntensive:     0.1,
	defaults.ManureDeepBedding:            0.01,
	defaults.ManureLiquidWithNaturalCrust: 0.005,
	defaults.ManureLiquidNoCrust:          0.0,
	defaults.ManureLiquidWithSolidCover:   0.005,
	defaults.ManureAnaerobicDigester:      0.0006,
}

// fractions of excreted nitrogen volatilized and leached
var nitrogenLossFractions = map[defaults.ManureStateType][2]float64{
	defaults.ManurePasture:                {0.21, 0.24},
	defaults.ManureDailySpread:            {0.07, 0.0},
	defaults.ManureSolidStorage:           {0.25, 0.02},
	defaults.ManureCompostedPassive:       {0.25, 0.06},
	defaults.ManureCompostedIntensive:     {0.45, 0.06},
	defaults.ManureDeepBedding:            {0.25, 0.035},
	defaults.ManureLiquidWithNaturalCrust: {0.3, 0.0},
	defaults.ManureLiquidNoCrust:          {0.48, 0.0},
	defaults.ManureLiquidWithSolidCover:   {0.1, 0.0},
	defaults.ManureAnaerobicDigester:      {0.05, 0.0},
}

// maximum methane producing capacity of manure (m3 CH4/kg VS)
var methaneProducingCapacity = map[defaults.AnimalCategory]float64{
	defaults.CategoryBeef:           0.19,
	defaults.CategoryDairy:          0.24,
	defaults.CategorySheep:          0.19,
	defaults.CategorySwine:          0.48,
	defaults.CategoryOtherLivestock: 0.18,
}

// soil carbon lost to decomposition by tillage practice (kg C/ha/year)
var tillageDecomposition = map[farm.TillageType]float64{
	farm.TillageIntensive: 400,
	farm.TillageReduced:   250,
	farm.TillageNoTill:    150,
}
