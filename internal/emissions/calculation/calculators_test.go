package calculation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/farm"
)

type fixture struct {
	router *Router
	farm   *farm.Farm
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := newTestContext(t)
	router, err := NewDefaultRouter(ctx)
	require.NoError(t, err)
	f, err := farm.NewFactory(ctx).Create("calc")
	require.NoError(t, err)
	return &fixture{router: router, farm: f}
}

func (fx *fixture) add(t *testing.T, c farm.Component) farm.Component {
	t.Helper()
	require.NoError(t, fx.farm.AddComponent(c))
	return c
}

func (fx *fixture) addType(t *testing.T, ct farm.ComponentType) farm.Component {
	t.Helper()
	c, err := farm.NewComponent(ct)
	require.NoError(t, err)
	return fx.add(t, c)
}

func (fx *fixture) calculate(t *testing.T, c farm.Component, opts Options) (*ComponentEmissionResult, error) {
	t.Helper()
	calc, err := fx.router.Route(c.Type())
	require.NoError(t, err)
	req := &Request{Farm: fx.farm, Component: c, Options: opts}
	if err := calc.Validate(req); err != nil {
		return nil, err
	}
	return calc.Calculate(context.Background(), req)
}

func wheatField() *farm.FieldComponent {
	field := farm.NewFieldComponent(40)
	field.CropYears = []farm.CropYear{
		{Year: 2021, CropManagement: farm.CropManagement{Crop: defaults.CropWheat, Yield: 3200, NitrogenFertilizerRate: 90, PhosphorusFertilizerRate: 20, FuelUse: 55, Tillage: farm.TillageReduced, Economics: farm.CropEconomics{PricePerTonne: 300, CostPerHectare: 450}}},
		{Year: 2022, CropManagement: farm.CropManagement{Crop: defaults.CropPeas, Yield: 2500, FuelUse: 45, Tillage: farm.TillageNoTill, Economics: farm.CropEconomics{PricePerTonne: 350, CostPerHectare: 380}}},
		{Year: 2023, CropManagement: farm.CropManagement{Crop: defaults.CropSummerFallow, FuelUse: 20, Tillage: farm.TillageIntensive}},
	}
	return field
}

func TestFieldCalculator(t *testing.T) {
	fx := newFixture(t)
	field := fx.add(t, wheatField())

	result, err := fx.calculate(t, field, Options{})
	require.NoError(t, err)

	require.Len(t, result.CropItems, 3)
	for i, item := range result.CropItems {
		assert.Equal(t, field.ID(), item.ComponentID)
		assert.Equal(t, 2021+i, item.Year)
		assert.Nil(t, item.Economics)
	}
	wheat := result.CropItems[0]
	assert.Greater(t, wheat.ResidueCarbon, 0.0)
	assert.Greater(t, wheat.ResidueNitrogen, 0.0)
	assert.Greater(t, wheat.DirectNitrousOxide, 0.0)
	assert.Greater(t, wheat.EnergyCarbonDioxide, 55*40*fuelCarbonDioxidePerLitre)

	fallow := result.CropItems[2]
	assert.Zero(t, fallow.ResidueCarbon)
	assert.Equal(t, -400.0*40, fallow.SoilCarbonChange)

	assert.Equal(t, farm.FamilyLandManagement, result.Family)
	assert.Equal(t, 20.0*40, result.Nutrients.Phosphorus)
	assert.InDelta(t, wheat.DirectNitrousOxide+result.CropItems[1].DirectNitrousOxide+fallow.DirectNitrousOxide, result.DirectNitrousOxide, 1e-9)
	assert.Greater(t, result.TotalCarbonDioxideEquivalents, 0.0)
}

func TestFieldCalculatorReportsFixedNitrogen(t *testing.T) {
	fx := newFixture(t)
	field := fx.add(t, wheatField())

	result, err := fx.calculate(t, field, Options{})
	require.NoError(t, err)
	require.Len(t, result.CropItems, 3)

	wheat, peas, fallow := result.CropItems[0], result.CropItems[1], result.CropItems[2]
	assert.Zero(t, wheat.FixedNitrogen)
	assert.Zero(t, fallow.FixedNitrogen)

	// 2500 kg/ha at 13% moisture, 4% N in the grain, 40 ha
	assert.InDelta(t, 2500*0.87*0.04*40+peas.ResidueNitrogen, peas.FixedNitrogen, 1e-6)

	// fixation does not add to the direct emission inputs
	assert.InDelta(t, peas.ResidueNitrogen*fertilizerEmissionFactor*nitrogenToNitrousOxide, peas.DirectNitrousOxide, 1e-9)
}

func TestCropEconomicsArePresentationOnly(t *testing.T) {
	fx := newFixture(t)
	field := fx.add(t, wheatField())

	without, err := fx.calculate(t, field, Options{})
	require.NoError(t, err)
	with, err := fx.calculate(t, field, Options{CropEconomicDataApplied: true})
	require.NoError(t, err)

	require.NotNil(t, with.CropItems[0].Economics)
	assert.InDelta(t, 3.2*300*40, with.CropItems[0].Economics.Revenue, 1e-9)
	assert.InDelta(t, 450*40, with.CropItems[0].Economics.Cost, 1e-9)

	assert.Equal(t, without.TotalCarbonDioxideEquivalents, with.TotalCarbonDioxideEquivalents)
	for i := range with.CropItems {
		item := with.CropItems[i]
		item.Economics = nil
		assert.Equal(t, without.CropItems[i], item)
	}
}

func TestFieldCalculatorMissingCropResidue(t *testing.T) {
	fx := newFixture(t)
	field := wheatField()
	field.CropYears[0].Crop = "Quinoa"
	fx.add(t, field)

	_, err := fx.calculate(t, field, Options{})
	var missing *defaults.MissingDefaultError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "crop residue", missing.Table)
}

func TestRotationCalculator(t *testing.T) {
	fx := newFixture(t)
	rotation := fx.addType(t, farm.ComponentTypeRotation).(*farm.RotationComponent)
	rotation.FieldArea = 20
	rotation.FieldCount = 2
	rotation.StartYear = 2020
	rotation.EndYear = 2022
	rotation.Crops = []farm.CropManagement{
		{Crop: defaults.CropBarley, Yield: 3500, NitrogenFertilizerRate: 70, Tillage: farm.TillageReduced},
		{Crop: defaults.CropCanola, Yield: 2100, NitrogenFertilizerRate: 100, Tillage: farm.TillageReduced},
	}

	result, err := fx.calculate(t, rotation, Options{})
	require.NoError(t, err)
	require.Len(t, result.CropItems, 6)
	assert.Equal(t, defaults.CropBarley, result.CropItems[0].Crop)
	assert.Equal(t, defaults.CropCanola, result.CropItems[1].Crop)
	// second field starts one position later in the sequence
	assert.Equal(t, defaults.CropCanola, result.CropItems[3].Crop)
}

func TestShelterbeltCalculator(t *testing.T) {
	fx := newFixture(t)
	belt := fx.addType(t, farm.ComponentTypeShelterbelt).(*farm.ShelterbeltComponent)
	belt.AssessmentYear = 2024
	belt.Rows = []farm.ShelterbeltRow{
		{Species: farm.TreeHybridPoplar, TreeCount: 100, PlantedYear: 2010, Length: 300},
		{Species: farm.TreeCaragana, TreeCount: 400, PlantedYear: 2015, Length: 300},
	}

	result, err := fx.calculate(t, belt, Options{})
	require.NoError(t, err)
	assert.Greater(t, result.CarbonChange, 0.0)
	assert.Less(t, result.TotalCarbonDioxideEquivalents, 0.0)
	assert.InDelta(t, -result.CarbonChange*44/12, result.LandUseCarbonDioxide(), 1e-9)

	belt.Rows[0].Species = "Baobab"
	_, err = fx.calculate(t, belt, Options{})
	assert.ErrorIs(t, err, farm.ErrInvalidComponent)
}

func TestLivestockCalculators(t *testing.T) {
	for _, ct := range []farm.ComponentType{
		farm.ComponentTypeCowCalf, farm.ComponentTypeFinishing, farm.ComponentTypeDairy,
		farm.ComponentTypeSheep, farm.ComponentTypeSwineGrowers, farm.ComponentTypeFarrowToFinish,
		farm.ComponentTypeHorses, farm.ComponentTypeBison,
	} {
		t.Run(string(ct), func(t *testing.T) {
			fx := newFixture(t)
			c := fx.addType(t, ct)

			result, err := fx.calculate(t, c, Options{})
			require.NoError(t, err)

			animals := c.(*farm.AnimalComponent)
			require.Len(t, result.Groups, len(animals.Groups))
			assert.Greater(t, result.EntericMethane, 0.0)
			assert.Greater(t, result.ManureMethane, 0.0)
			assert.Greater(t, result.Nutrients.Nitrogen, 0.0)
			assert.Greater(t, result.Nutrients.Phosphorus, 0.0)
			assert.Greater(t, result.TotalCarbonDioxideEquivalents, 0.0)

			var enteric float64
			for _, g := range result.Groups {
				enteric += g.EntericMethane
			}
			assert.InDelta(t, enteric, result.EntericMethane, 1e-9)
		})
	}
}

func TestSwineEntericIsLowerThanBeef(t *testing.T) {
	fx := newFixture(t)
	swine := fx.addType(t, farm.ComponentTypeSwineGrowers).(*farm.AnimalComponent)
	beef := fx.addType(t, farm.ComponentTypeFinishing).(*farm.AnimalComponent)

	swineResult, err := fx.calculate(t, swine, Options{})
	require.NoError(t, err)
	beefResult, err := fx.calculate(t, beef, Options{})
	require.NoError(t, err)

	perHeadDay := func(r *ComponentEmissionResult) float64 {
		g := r.Groups[0]
		return g.EntericMethane / float64(g.NumberOfAnimals*g.Days)
	}
	assert.Less(t, perHeadDay(swineResult), perHeadDay(beefResult))
}

func TestDairyMilkRaisesIntake(t *testing.T) {
	fx := newFixture(t)
	dairy := fx.addType(t, farm.ComponentTypeDairy).(*farm.AnimalComponent)

	low, err := fx.calculate(t, dairy, Options{})
	require.NoError(t, err)
	dairy.Groups[0].MilkProduction = 40
	high, err := fx.calculate(t, dairy, Options{})
	require.NoError(t, err)

	assert.Greater(t, high.Groups[0].DryMatterIntake, low.Groups[0].DryMatterIntake)
	assert.Greater(t, high.EntericMethane, low.EntericMethane)
}

func TestLivestockMissingDietIsConfigurationError(t *testing.T) {
	fx := newFixture(t)
	beef := fx.addType(t, farm.ComponentTypeBackgrounding).(*farm.AnimalComponent)
	beef.Groups[0].DietName = "Unlisted Diet"

	_, err := fx.calculate(t, beef, Options{})
	assert.ErrorIs(t, err, defaults.ErrMissingDefault)
	assert.NotErrorIs(t, err, farm.ErrInvalidComponent)
}

func TestLivestockInvalidGroupIsInvalidComponent(t *testing.T) {
	fx := newFixture(t)
	sheep := fx.addType(t, farm.ComponentTypeSheep).(*farm.AnimalComponent)
	sheep.Groups[0].NumberOfAnimals = 0

	_, err := fx.calculate(t, sheep, Options{})
	assert.ErrorIs(t, err, farm.ErrInvalidComponent)
}

func TestDigestionCalculator(t *testing.T) {
	fx := newFixture(t)
	dairy := fx.addType(t, farm.ComponentTypeDairy)
	digester := fx.addType(t, farm.ComponentTypeAnaerobicDigestion).(*farm.AnaerobicDigestionComponent)
	digester.ManureSources = []farm.ManureSource{{ComponentID: dairy.ID(), FractionDiverted: 1}}

	result, err := fx.calculate(t, digester, Options{})
	require.NoError(t, err)
	assert.Greater(t, result.ManureMethane, 0.0)
	assert.Less(t, result.EnergyCarbonDioxide, 0.0)
	assert.Greater(t, result.Nutrients.Nitrogen, 0.0)

	// leakage scales the methane emitted
	digester.LeakageFraction = 0.06
	doubled, err := fx.calculate(t, digester, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 2*result.ManureMethane, doubled.ManureMethane, 1e-6)

	// a source that is not on the farm is invalid
	digester.ManureSources[0].ComponentID = digester.ID()
	_, err = fx.calculate(t, digester, Options{})
	assert.ErrorIs(t, err, farm.ErrInvalidComponent)
}

func TestDivertedManureIsCountedOnce(t *testing.T) {
	fx := newFixture(t)
	dairy := fx.addType(t, farm.ComponentTypeDairy)
	baseline, err := fx.calculate(t, dairy, Options{})
	require.NoError(t, err)
	require.Greater(t, baseline.ManureMethane, 0.0)

	digester := fx.addType(t, farm.ComponentTypeAnaerobicDigestion).(*farm.AnaerobicDigestionComponent)
	digester.ManureSources = []farm.ManureSource{{ComponentID: dairy.ID(), FractionDiverted: 0.4}}

	partial, err := fx.calculate(t, dairy, Options{})
	require.NoError(t, err)
	assert.InEpsilon(t, baseline.EntericMethane, partial.EntericMethane, 1e-9)
	assert.InEpsilon(t, 0.6*baseline.ManureMethane, partial.ManureMethane, 1e-9)
	assert.InEpsilon(t, 0.6*baseline.DirectNitrousOxide, partial.DirectNitrousOxide, 1e-9)
	assert.InEpsilon(t, 0.6*baseline.Nutrients.Nitrogen, partial.Nutrients.Nitrogen, 1e-9)
	assert.InEpsilon(t, 0.6*baseline.Nutrients.Phosphorus, partial.Nutrients.Phosphorus, 1e-9)
	for _, g := range partial.Groups {
		assert.Equal(t, 0.4, g.FractionDiverted)
	}

	digester.ManureSources[0].FractionDiverted = 1
	kept, err := fx.calculate(t, dairy, Options{})
	require.NoError(t, err)
	assert.InEpsilon(t, baseline.EntericMethane, kept.EntericMethane, 1e-9)
	assert.InDelta(t, 0, kept.ManureMethane, 1e-9)
	assert.InDelta(t, 0, kept.DirectNitrousOxide+kept.IndirectNitrousOxide, 1e-9)
	assert.InDelta(t, 0, kept.Nutrients.Nitrogen, 1e-9)
	assert.InDelta(t, 0, kept.Nutrients.Potassium, 1e-9)

	digested, err := fx.calculate(t, digester, Options{})
	require.NoError(t, err)
	var available, potassium float64
	for _, g := range baseline.Groups {
		available += g.NitrogenExcreted + g.BeddingNitrogen
		potassium += g.Nutrients.Potassium
	}
	assert.InEpsilon(t, available, kept.Nutrients.Nitrogen+digested.Nutrients.Nitrogen, 1e-9)
	assert.InEpsilon(t, potassium, kept.Nutrients.Potassium+digested.Nutrients.Potassium, 1e-9)
}

func TestDigestionCalculatorRejectsOverDiversion(t *testing.T) {
	fx := newFixture(t)
	dairy := fx.addType(t, farm.ComponentTypeDairy)
	field := fx.add(t, wheatField())
	first := fx.addType(t, farm.ComponentTypeAnaerobicDigestion).(*farm.AnaerobicDigestionComponent)
	second := fx.addType(t, farm.ComponentTypeAnaerobicDigestion).(*farm.AnaerobicDigestionComponent)
	first.ManureSources = []farm.ManureSource{{ComponentID: dairy.ID(), FractionDiverted: 0.5}}
	second.ManureSources = []farm.ManureSource{{ComponentID: dairy.ID(), FractionDiverted: 0.5}}

	_, err := fx.calculate(t, first, Options{})
	require.NoError(t, err)
	_, err = fx.calculate(t, second, Options{})
	require.NoError(t, err)

	t.Run("shared source above one", func(t *testing.T) {
		second.ManureSources[0].FractionDiverted = 0.6
		defer func() { second.ManureSources[0].FractionDiverted = 0.5 }()
		for _, d := range []*farm.AnaerobicDigestionComponent{first, second} {
			_, err := fx.calculate(t, d, Options{})
			var invalid *farm.InvalidComponentError
			require.ErrorAs(t, err, &invalid)
			assert.ErrorIs(t, err, farm.ErrInvalidComponent)
			assert.Equal(t, d.ID(), invalid.ComponentID)
			assert.Equal(t, "ManureSources[0].FractionDiverted", invalid.Field)
		}
	})

	t.Run("duplicate source", func(t *testing.T) {
		first.ManureSources = []farm.ManureSource{
			{ComponentID: dairy.ID(), FractionDiverted: 0.2},
			{ComponentID: dairy.ID(), FractionDiverted: 0.2},
		}
		second.ManureSources[0].FractionDiverted = 0.1
		_, err := fx.calculate(t, first, Options{})
		var invalid *farm.InvalidComponentError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "ManureSources[1].ComponentID", invalid.Field)
	})

	t.Run("source is not an animal component", func(t *testing.T) {
		first.ManureSources = []farm.ManureSource{{ComponentID: field.ID(), FractionDiverted: 0.3}}
		_, err := fx.calculate(t, first, Options{})
		assert.ErrorIs(t, err, farm.ErrInvalidComponent)
	})
}

func TestCalculationIsDeterministic(t *testing.T) {
	fx := newFixture(t)
	components := []farm.Component{
		fx.add(t, wheatField()),
		fx.addType(t, farm.ComponentTypeDairy),
		fx.addType(t, farm.ComponentTypeFarrowToFinish),
		fx.addType(t, farm.ComponentTypeLlamas),
	}

	for _, c := range components {
		first, err := fx.calculate(t, c, Options{CropEconomicDataApplied: true})
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := fx.calculate(t, c, Options{CropEconomicDataApplied: true})
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestCalculationDoesNotMutateInputs(t *testing.T) {
	fx := newFixture(t)
	field := fx.add(t, wheatField()).(*farm.FieldComponent)
	before := append([]farm.CropYear(nil), field.CropYears...)
	diets := fx.farm.Diets[0]

	_, err := fx.calculate(t, field, Options{CropEconomicDataApplied: true})
	require.NoError(t, err)
	assert.Equal(t, before, field.CropYears)
	assert.Equal(t, diets, fx.farm.Diets[0])
}

func TestCalculateHonoursCancellation(t *testing.T) {
	fx := newFixture(t)
	field := fx.add(t, wheatField())
	calc, err := fx.router.Route(field.Type())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = calc.Calculate(ctx, &Request{Farm: fx.farm, Component: field})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateRejectsForeignComponent(t *testing.T) {
	fx := newFixture(t)
	detached := wheatField()

	calc, err := fx.router.Route(farm.ComponentTypeField)
	require.NoError(t, err)
	assert.Error(t, calc.Validate(&Request{Farm: fx.farm, Component: detached}))
	assert.Error(t, calc.Validate(&Request{Component: detached}))
}
