package scenarios

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/emissions"
	"carbon-scribe/farm-emissions/internal/emissions/calculation"
	"carbon-scribe/farm-emissions/internal/farm"
)

var fixedTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateScenario(ctx context.Context, scenario *FarmScenario) error {
	args := m.Called(ctx, scenario)
	return args.Error(0)
}

func (m *MockRepository) GetScenario(ctx context.Context, id uuid.UUID) (*FarmScenario, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FarmScenario), args.Error(1)
}

func (m *MockRepository) ListStaleScenarios(ctx context.Context, limit int) ([]*FarmScenario, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*FarmScenario), args.Error(1)
}

func (m *MockRepository) MarkStale(ctx context.Context, id uuid.UUID, stale bool) error {
	args := m.Called(ctx, id, stale)
	return args.Error(0)
}

func (m *MockRepository) SaveResultSummary(ctx context.Context, summary *ResultSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockRepository) LatestResultSummary(ctx context.Context, scenarioID uuid.UUID) (*ResultSummary, error) {
	args := m.Called(ctx, scenarioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ResultSummary), args.Error(1)
}

type testEnv struct {
	repo    *MockRepository
	service *Service
	factory *farm.Factory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, err := defaults.NewBuiltinContext(defaults.Canada)
	require.NoError(t, err)
	router, err := calculation.NewDefaultRouter(ctx)
	require.NoError(t, err)

	repo := new(MockRepository)
	calc := emissions.NewService(router, zap.NewNop(), nil, emissions.DefaultConfig())
	svc := NewService(repo, calc, zap.NewNop())
	svc.now = func() time.Time { return fixedTime }
	return &testEnv{
		repo:    repo,
		service: svc,
		factory: farm.NewFactory(ctx, farm.WithClock(func() time.Time { return fixedTime })),
	}
}

func (env *testEnv) dairyFarm(t *testing.T, name string) (*farm.Farm, *farm.AnimalComponent) {
	t.Helper()
	f, err := env.factory.Create(name)
	require.NoError(t, err)
	c, err := farm.NewComponent(farm.ComponentTypeDairy)
	require.NoError(t, err)
	require.NoError(t, f.AddComponent(c))
	return f, c.(*farm.AnimalComponent)
}

func (env *testEnv) storedScenario(t *testing.T, f *farm.Farm) *FarmScenario {
	t.Helper()
	scenario, err := NewFarmScenario(f, nil)
	require.NoError(t, err)
	return scenario
}

func TestCreateScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f, dairy := env.dairyFarm(t, "Stored")

	env.repo.On("CreateScenario", ctx, mock.AnythingOfType("*scenarios.FarmScenario")).Return(nil)

	scenario, err := env.service.CreateScenario(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, f.ID, scenario.FarmID)
	assert.Equal(t, "Stored", scenario.Name)
	assert.Equal(t, string(defaults.Canada), scenario.CountryVersion)
	assert.True(t, scenario.IsStale)
	assert.Nil(t, scenario.ParentScenarioID)

	decoded, err := scenario.Farm()
	require.NoError(t, err)
	_, ok := decoded.Component(dairy.ID())
	assert.True(t, ok)
	env.repo.AssertExpectations(t)
}

func TestCreateScenarioStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f, _ := env.dairyFarm(t, "Stored")

	env.repo.On("CreateScenario", ctx, mock.Anything).Return(fmt.Errorf("connection refused"))

	_, err := env.service.CreateScenario(ctx, f)
	assert.ErrorContains(t, err, "connection refused")

	_, err = env.service.CreateScenario(ctx, nil)
	assert.Error(t, err)
}

func TestReplicateScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f, dairy := env.dairyFarm(t, "Parent")
	parent := env.storedScenario(t, f)

	var stored *FarmScenario
	env.repo.On("GetScenario", ctx, parent.ID).Return(parent, nil)
	env.repo.On("CreateScenario", ctx, mock.AnythingOfType("*scenarios.FarmScenario")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*FarmScenario) }).
		Return(nil)

	child, err := env.service.ReplicateScenario(ctx, parent.ID)
	require.NoError(t, err)
	require.Same(t, stored, child)
	require.NotNil(t, child.ParentScenarioID)
	assert.Equal(t, parent.ID, *child.ParentScenarioID)
	assert.NotEqual(t, parent.ID, child.ID)
	assert.NotEqual(t, parent.FarmID, child.FarmID)

	replica, err := child.Farm()
	require.NoError(t, err)
	_, ok := replica.Component(dairy.ID())
	assert.True(t, ok)
}

func TestCalculateScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f, _ := env.dairyFarm(t, "Calculated")
	scenario := env.storedScenario(t, f)

	env.repo.On("GetScenario", ctx, scenario.ID).Return(scenario, nil)
	env.repo.On("SaveResultSummary", ctx, mock.AnythingOfType("*scenarios.ResultSummary")).Return(nil)
	env.repo.On("MarkStale", ctx, scenario.ID, false).Return(nil)

	outcome, err := env.service.CalculateScenario(ctx, scenario.ID)
	require.NoError(t, err)

	totals := outcome.Results.Totals()
	assert.Equal(t, scenario.ID, outcome.Summary.ScenarioID)
	assert.Equal(t, 1, outcome.Summary.ComponentCount)
	assert.Equal(t, fixedTime, outcome.Summary.ComputedAt)
	assert.InDelta(t, totals.Farm.TotalCarbonDioxideEquivalents, outcome.Summary.TotalCarbonDioxideEquivalents, 1e-9)
	assert.Greater(t, outcome.Summary.EntericMethane, 0.0)
	assert.NotEmpty(t, outcome.Summary.ByFamily)
	env.repo.AssertExpectations(t)
}

func TestCalculateScenarioNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := uuid.New()

	env.repo.On("GetScenario", ctx, id).Return(nil, fmt.Errorf("scenario %s: %w", id, ErrNotFound))

	_, err := env.service.CalculateScenario(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	env.repo.AssertNotCalled(t, "SaveResultSummary", mock.Anything, mock.Anything)
}

func TestCalculateScenarioInvalidFarm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f, dairy := env.dairyFarm(t, "Invalid")
	dairy.Groups[0].NumberOfAnimals = 0
	scenario := env.storedScenario(t, f)

	env.repo.On("GetScenario", ctx, scenario.ID).Return(scenario, nil)

	_, err := env.service.CalculateScenario(ctx, scenario.ID)
	var fe *emissions.FarmError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, emissions.KindInvalidComponent, fe.Kind)
	env.repo.AssertNotCalled(t, "MarkStale", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecalculateStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	good, _ := env.dairyFarm(t, "Good")
	bad, dairy := env.dairyFarm(t, "Bad")
	dairy.Groups[0].NumberOfAnimals = 0
	goodScenario := env.storedScenario(t, good)
	badScenario := env.storedScenario(t, bad)
	broken := &FarmScenario{ID: uuid.New(), Document: datatypes.JSON(`{"components":`), IsStale: true}

	env.repo.On("ListStaleScenarios", ctx, 10).Return([]*FarmScenario{broken, badScenario, goodScenario}, nil)
	env.repo.On("SaveResultSummary", ctx, mock.MatchedBy(func(s *ResultSummary) bool {
		return s.ScenarioID == goodScenario.ID
	})).Return(nil).Once()
	env.repo.On("MarkStale", ctx, goodScenario.ID, false).Return(nil).Once()

	report, err := env.service.RecalculateStale(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, &RecalculationReport{Scanned: 3, Calculated: 1, Failed: 2}, report)
	env.repo.AssertExpectations(t)
	env.repo.AssertNotCalled(t, "MarkStale", ctx, badScenario.ID, false)
}

func TestRecalculateStaleEmpty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.repo.On("ListStaleScenarios", ctx, 5).Return([]*FarmScenario{}, nil)

	report, err := env.service.RecalculateStale(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scanned)
}
