package emissions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/emissions/calculation"
	"carbon-scribe/farm-emissions/internal/farm"
	"carbon-scribe/farm-emissions/pkg/metrics"
)

var fixedTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	service   *Service
	factory   *farm.Factory
	collector *metrics.Collector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, err := defaults.NewBuiltinContext(defaults.Canada)
	require.NoError(t, err)
	router, err := calculation.NewDefaultRouter(ctx)
	require.NoError(t, err)

	collector := metrics.NewCollector("test", prometheus.NewRegistry())
	return &testEnv{
		service:   NewService(router, zap.NewNop(), collector, DefaultConfig()),
		factory:   farm.NewFactory(ctx, farm.WithClock(func() time.Time { return fixedTime })),
		collector: collector,
	}
}

func (env *testEnv) newFarm(t *testing.T, name string) *farm.Farm {
	t.Helper()
	f, err := env.factory.Create(name)
	require.NoError(t, err)
	return f
}

func addComponent(t *testing.T, f *farm.Farm, ct farm.ComponentType) farm.Component {
	t.Helper()
	c, err := farm.NewComponent(ct)
	require.NoError(t, err)
	require.NoError(t, f.AddComponent(c))
	return c
}

func newField(t *testing.T, f *farm.Farm) *farm.FieldComponent {
	t.Helper()
	field := farm.NewFieldComponent(60)
	field.CropYears = []farm.CropYear{
		{Year: 2022, CropManagement: farm.CropManagement{Crop: defaults.CropWheat, Yield: 3100, NitrogenFertilizerRate: 85, FuelUse: 50, Tillage: farm.TillageReduced,
			Economics: farm.CropEconomics{PricePerTonne: 300, CostPerHectare: 420}}},
		{Year: 2023, CropManagement: farm.CropManagement{Crop: defaults.CropCanola, Yield: 2100, NitrogenFertilizerRate: 110, FuelUse: 45, Tillage: farm.TillageNoTill}},
		{Year: 2024, CropManagement: farm.CropManagement{Crop: defaults.CropPeas, Yield: 2600, FuelUse: 40, Tillage: farm.TillageNoTill}},
	}
	require.NoError(t, f.AddComponent(field))
	return field
}

// completeFarm holds one component of every catalogue type
func completeFarm(t *testing.T, env *testEnv) *farm.Farm {
	t.Helper()
	f := env.newFarm(t, "Complete")
	var dairy farm.Component
	for _, ct := range farm.AllComponentTypes() {
		switch ct {
		case farm.ComponentTypeField:
			newField(t, f)
		case farm.ComponentTypeRotation:
			rotation := addComponent(t, f, ct).(*farm.RotationComponent)
			rotation.FieldCount = 3
			rotation.FieldArea = 20
			rotation.StartYear = 2021
			rotation.EndYear = 2023
			rotation.Crops = []farm.CropManagement{
				{Crop: defaults.CropWheat, Yield: 3000, NitrogenFertilizerRate: 80, FuelUse: 50, Tillage: farm.TillageReduced},
				{Crop: defaults.CropBarley, Yield: 3400, NitrogenFertilizerRate: 70, FuelUse: 50, Tillage: farm.TillageReduced},
				{Crop: defaults.CropPeas, Yield: 2500, FuelUse: 40, Tillage: farm.TillageNoTill},
			}
		case farm.ComponentTypeShelterbelt:
			belt := addComponent(t, f, ct).(*farm.ShelterbeltComponent)
			belt.AssessmentYear = 2024
			belt.Rows = []farm.ShelterbeltRow{{Species: farm.TreeWhiteSpruce, TreeCount: 120, PlantedYear: 2005, Length: 300}}
		case farm.ComponentTypeAnaerobicDigestion:
			// added last, once its manure source exists
		case farm.ComponentTypeDairy:
			dairy = addComponent(t, f, ct)
		default:
			addComponent(t, f, ct)
		}
	}
	digester := addComponent(t, f, farm.ComponentTypeAnaerobicDigestion).(*farm.AnaerobicDigestionComponent)
	digester.ManureSources = []farm.ManureSource{{ComponentID: dairy.ID(), FractionDiverted: 0.7}}
	return f
}

func TestResultsCoverEveryComponent(t *testing.T) {
	env := newTestEnv(t)
	f := completeFarm(t, env)

	results, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
	require.NoError(t, err)

	components := f.Components()
	require.Equal(t, len(farm.AllComponentTypes()), len(components))
	assert.Equal(t, len(components), results.Len())
	for i, id := range results.ComponentIDs() {
		assert.Equal(t, components[i].ID(), id)
		r, ok := results.ComponentResult(id)
		require.True(t, ok)
		assert.Equal(t, components[i].Type(), r.ComponentType)
	}
	assert.Same(t, f, results.Farm())

	totals := results.Totals()
	var sum float64
	for _, r := range results.ComponentResults() {
		sum += r.TotalCarbonDioxideEquivalents
	}
	assert.InDelta(t, sum, totals.Farm.TotalCarbonDioxideEquivalents, 1e-6)

	var familySum float64
	for _, fam := range totals.ByFamily {
		familySum += fam.TotalCarbonDioxideEquivalents
	}
	assert.InDelta(t, sum, familySum, 1e-6)
	assert.Equal(t, farm.FamilyLandManagement, totals.ByFamily[0].Family)
}

func TestSwineGrowersScenario(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Swine")
	swine := addComponent(t, f, farm.ComponentTypeSwineGrowers)

	results, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 1, results.Len())
	_, ok := results.ComponentResult(swine.ID())
	assert.True(t, ok)
	assert.Empty(t, results.FieldResults())
}

func TestFieldAndDairyScenario(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Field and dairy")
	field := newField(t, f)
	addComponent(t, f, farm.ComponentTypeDairy)

	results, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 2, results.Len())
	items := results.FieldResults()
	require.Len(t, items, len(field.CropYears))
	for i, item := range items {
		assert.Equal(t, field.ID(), item.ComponentID)
		assert.Equal(t, field.CropYears[i].Year, item.Year)
	}
}

func TestResultsAreCopies(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Copies")
	field := newField(t, f)
	dairyID := addComponent(t, f, farm.ComponentTypeDairy).ID()

	results, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
	require.NoError(t, err)

	items := results.FieldResults()
	items[0].Yield = -1
	r, _ := results.ComponentResult(field.ID())
	r.TotalCarbonDioxideEquivalents = -1
	ids := results.ComponentIDs()
	ids[0] = dairyID

	assert.Equal(t, 3100.0, results.FieldResults()[0].Yield)
	assert.Equal(t, field.ID(), results.ComponentIDs()[0])
	again, _ := results.ComponentResult(field.ID())
	assert.NotEqual(t, -1.0, again.TotalCarbonDioxideEquivalents)
}

func TestCalculationIsDeterministic(t *testing.T) {
	env := newTestEnv(t)
	f := completeFarm(t, env)

	first, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
		require.NoError(t, err)
		assert.Equal(t, first.ComponentResults(), again.ComponentResults())
		assert.Equal(t, first.Totals(), again.Totals())
	}
}

func TestCropEconomicToggleIsPresentationOnly(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Economics")
	newField(t, f)

	without, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
	require.NoError(t, err)

	env.service.SetCropEconomicDataApplied(true)
	assert.True(t, env.service.CropEconomicDataApplied())
	with, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
	require.NoError(t, err)

	assert.False(t, without.CropEconomicDataApplied())
	assert.True(t, with.CropEconomicDataApplied())
	assert.Nil(t, without.FieldResults()[0].Economics)
	require.NotNil(t, with.FieldResults()[0].Economics)
	assert.Equal(t, without.Totals(), with.Totals())
}

func TestInvalidComponentFailsFarm(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Invalid")
	newField(t, f)
	dairy := addComponent(t, f, farm.ComponentTypeDairy).(*farm.AnimalComponent)
	dairy.Groups[0].NumberOfAnimals = 0

	results, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
	require.Error(t, err)
	assert.Nil(t, results)

	var fe *FarmError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindInvalidComponent, fe.Kind)
	assert.Equal(t, f.ID, fe.FarmID)
	assert.Equal(t, dairy.ID(), fe.ComponentID)
	assert.Equal(t, farm.ComponentTypeDairy, fe.ComponentType)
	assert.ErrorIs(t, err, farm.ErrInvalidComponent)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.collector.CalculationFailuresTotal.WithLabelValues(string(KindInvalidComponent))))
}

func TestMissingDefaultIsConfigurationError(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Missing diet")
	beef := addComponent(t, f, farm.ComponentTypeCowCalf).(*farm.AnimalComponent)
	beef.Groups[0].DietName = "Unlisted Diet"

	_, err := env.service.CalculateFarmEmissionResults(context.Background(), f)
	var fe *FarmError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindConfiguration, fe.Kind)
	assert.Equal(t, beef.ID(), fe.ComponentID)
	assert.ErrorIs(t, err, defaults.ErrMissingDefault)
}

func TestUnroutableTypeIsConfigurationError(t *testing.T) {
	calc := new(MockCalculator)
	calc.On("Metadata").Return(calculation.Metadata{Name: "fields only", ComponentTypes: []farm.ComponentType{farm.ComponentTypeField}})
	router, err := calculation.NewRouter(calc)
	require.NoError(t, err)

	env := newTestEnv(t)
	service := NewService(router, zap.NewNop(), nil, DefaultConfig())
	f := env.newFarm(t, "Unroutable")
	addComponent(t, f, farm.ComponentTypeGoats)

	_, err = service.CalculateFarmEmissionResults(context.Background(), f)
	var fe *FarmError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindConfiguration, fe.Kind)
	assert.Equal(t, farm.ComponentTypeGoats, fe.ComponentType)
	assert.ErrorIs(t, err, calculation.ErrUnroutable)
}

func TestCalculatorFailureNamesComponent(t *testing.T) {
	failing := new(MockCalculator)
	failing.On("Metadata").Return(calculation.Metadata{Name: "broken", ComponentTypes: []farm.ComponentType{farm.ComponentTypeHorses}})
	failing.On("Validate", mock.Anything).Return(nil)
	failing.On("Calculate", mock.Anything, mock.Anything).Return(nil, errors.New("numeric overflow"))

	router, err := calculation.NewRouter(failing)
	require.NoError(t, err)
	env := newTestEnv(t)
	service := NewService(router, zap.NewNop(), nil, DefaultConfig())
	f := env.newFarm(t, "Broken")
	horses := addComponent(t, f, farm.ComponentTypeHorses)

	_, err = service.CalculateFarmEmissionResults(context.Background(), f)
	var fe *FarmError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, horses.ID(), fe.ComponentID)
	assert.Contains(t, fe.Error(), "numeric overflow")
	failing.AssertExpectations(t)
}

func TestCalculationHonoursCancellation(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Cancelled")
	newField(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := env.service.CalculateFarmEmissionResults(ctx, f)
	assert.Nil(t, results)
	var fe *FarmError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindCancelled, fe.Kind)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchPreservesOrder(t *testing.T) {
	env := newTestEnv(t)
	var farms []*farm.Farm
	for i := 0; i < 12; i++ {
		f := env.newFarm(t, "Batch")
		switch i % 3 {
		case 0:
			newField(t, f)
		case 1:
			addComponent(t, f, farm.ComponentTypeDairy)
		default:
			addComponent(t, f, farm.ComponentTypeSwineGrowers)
			addComponent(t, f, farm.ComponentTypeSheep)
		}
		farms = append(farms, f)
	}

	results, err := env.service.CalculateFarmsEmissionResults(context.Background(), farms)
	require.NoError(t, err)
	require.Len(t, results, len(farms))
	for i, r := range results {
		assert.Same(t, farms[i], r.Farm())
		assert.Equal(t, farms[i].Len(), r.Len())
	}
}

func TestBatchIsolatesFailingFarms(t *testing.T) {
	env := newTestEnv(t)

	good := env.newFarm(t, "Good")
	newField(t, good)

	bad := env.newFarm(t, "Bad")
	dairy := addComponent(t, bad, farm.ComponentTypeDairy).(*farm.AnimalComponent)
	dairy.Groups[0].DietName = "Unlisted Diet"

	last := env.newFarm(t, "Last")
	addComponent(t, last, farm.ComponentTypeBison)

	results, err := env.service.CalculateFarmsEmissionResults(context.Background(), []*farm.Farm{good, bad, last})
	require.Error(t, err)

	require.Len(t, results, 2)
	assert.Same(t, good, results[0].Farm())
	assert.Same(t, last, results[1].Farm())

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, 3, batchErr.Total)
	require.Len(t, batchErr.Failures, 1)
	failure := batchErr.Failures[0]
	assert.Equal(t, 1, failure.Index)
	assert.Equal(t, bad.ID, failure.FarmID)
	assert.Equal(t, KindConfiguration, failure.Kind)
	assert.ErrorIs(t, err, defaults.ErrMissingDefault)
}

func TestBatchCancellationLeavesNoPhantoms(t *testing.T) {
	env := newTestEnv(t)
	farms := []*farm.Farm{env.newFarm(t, "A"), env.newFarm(t, "B")}
	addComponent(t, farms[0], farm.ComponentTypeDairy)
	addComponent(t, farms[1], farm.ComponentTypeDairy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := env.service.CalculateFarmsEmissionResults(ctx, farms)
	assert.Empty(t, results)

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	require.Len(t, batchErr.Failures, 2)
	for i, failure := range batchErr.Failures {
		assert.Equal(t, i, failure.Index)
		assert.Equal(t, KindCancelled, failure.Kind)
	}
}

func TestBatchReportsNilFarm(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Real")
	addComponent(t, f, farm.ComponentTypeGoats)

	results, err := env.service.CalculateFarmsEmissionResults(context.Background(), []*farm.Farm{nil, f})
	require.Len(t, results, 1)
	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, 0, batchErr.Failures[0].Index)
}

func TestReplicaResultsMatchOriginal(t *testing.T) {
	env := newTestEnv(t)
	original := completeFarm(t, env)

	replica, err := env.service.ReplicateFarm(original)
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, replica.ID)

	want, err := env.service.CalculateFarmEmissionResults(context.Background(), original)
	require.NoError(t, err)
	got, err := env.service.CalculateFarmEmissionResults(context.Background(), replica)
	require.NoError(t, err)

	assert.Equal(t, want.ComponentIDs(), got.ComponentIDs())
	assert.Equal(t, want.ComponentResults(), got.ComponentResults())
	assert.Equal(t, want.FieldResults(), got.FieldResults())
	assert.Equal(t, want.Totals(), got.Totals())
}

func TestReplicaIsIndependent(t *testing.T) {
	env := newTestEnv(t)
	original := env.newFarm(t, "Original")
	dairy := addComponent(t, original, farm.ComponentTypeDairy).(*farm.AnimalComponent)

	before, err := env.service.CalculateFarmEmissionResults(context.Background(), original)
	require.NoError(t, err)

	replicas, err := env.service.ReplicateFarms([]*farm.Farm{original, original})
	require.NoError(t, err)
	require.Len(t, replicas, 2)
	assert.NotEqual(t, replicas[0].ID, replicas[1].ID)

	c, ok := replicas[0].Component(dairy.ID())
	require.True(t, ok)
	c.(*farm.AnimalComponent).Groups[0].NumberOfAnimals *= 2

	after, err := env.service.CalculateFarmEmissionResults(context.Background(), original)
	require.NoError(t, err)
	assert.Equal(t, before.ComponentResults(), after.ComponentResults())

	changed, err := env.service.CalculateFarmEmissionResults(context.Background(), replicas[0])
	require.NoError(t, err)
	assert.Greater(t, changed.Totals().Farm.EntericMethane, before.Totals().Farm.EntericMethane)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.collector.ReplicationsTotal))
}

func TestReplicateFarmsFailsOnNil(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Only")

	replicas, err := env.service.ReplicateFarms([]*farm.Farm{f, nil})
	assert.Nil(t, replicas)
	var fe *FarmError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindReplication, fe.Kind)
	assert.Equal(t, 1, fe.Index)
}

func TestCalculateFieldResults(t *testing.T) {
	env := newTestEnv(t)
	f := env.newFarm(t, "Fields")
	first := newField(t, f)
	// an invalid animal component does not affect field results
	dairy := addComponent(t, f, farm.ComponentTypeDairy).(*farm.AnimalComponent)
	dairy.Groups[0].Days = 0
	second := newField(t, f)

	items, err := env.service.CalculateFieldResults(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, items, len(first.CropYears)+len(second.CropYears))
	assert.Equal(t, first.ID(), items[0].ComponentID)
	assert.Equal(t, second.ID(), items[len(items)-1].ComponentID)

	empty := env.newFarm(t, "No fields")
	items, err = env.service.CalculateFieldResults(context.Background(), empty)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewServiceAppliesDefaults(t *testing.T) {
	s := NewService(nil, nil, nil, Config{})
	assert.Equal(t, DefaultConfig(), s.config)
	assert.NotNil(t, s.logger)
}

// MockCalculator is a mock implementation of calculation.Calculator
type MockCalculator struct {
	mock.Mock
}

func (m *MockCalculator) Calculate(ctx context.Context, req *calculation.Request) (*calculation.ComponentEmissionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calculation.ComponentEmissionResult), args.Error(1)
}

func (m *MockCalculator) Validate(req *calculation.Request) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockCalculator) Metadata() calculation.Metadata {
	args := m.Called()
	return args.Get(0).(calculation.Metadata)
}
