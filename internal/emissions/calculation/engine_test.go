package calculation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/farm"
)

// MockCalculator is a mock implementation of Calculator
type MockCalculator struct {
	mock.Mock
}

func (m *MockCalculator) Calculate(ctx context.Context, req *Request) (*ComponentEmissionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ComponentEmissionResult), args.Error(1)
}

func (m *MockCalculator) Validate(req *Request) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockCalculator) Metadata() Metadata {
	args := m.Called()
	return args.Get(0).(Metadata)
}

func newTestContext(t *testing.T) *defaults.Context {
	t.Helper()
	ctx, err := defaults.NewBuiltinContext(defaults.Canada)
	require.NoError(t, err)
	return ctx
}

func TestNewDefaultRouterIsTotal(t *testing.T) {
	router, err := NewDefaultRouter(newTestContext(t))
	require.NoError(t, err)

	for _, ct := range farm.AllComponentTypes() {
		calc, err := router.Route(ct)
		require.NoError(t, err, ct)
		assert.Contains(t, calc.Metadata().ComponentTypes, ct)
		assert.Equal(t, ct.Family(), calc.Metadata().Family)
	}
	assert.Len(t, router.Calculators(), 9)
}

func TestNewRouterRejectsBadRegistrations(t *testing.T) {
	_, err := NewRouter(nil)
	assert.Error(t, err)

	first := new(MockCalculator)
	first.On("Metadata").Return(Metadata{Name: "first", ComponentTypes: []farm.ComponentType{farm.ComponentTypeField}})
	second := new(MockCalculator)
	second.On("Metadata").Return(Metadata{Name: "second", ComponentTypes: []farm.ComponentType{farm.ComponentTypeField}})

	_, err = NewRouter(first, second)
	assert.Error(t, err)

	empty := new(MockCalculator)
	empty.On("Metadata").Return(Metadata{Name: "empty"})
	_, err = NewRouter(empty)
	assert.Error(t, err)
}

func TestCheckTotalityListsMissingTypes(t *testing.T) {
	calc := new(MockCalculator)
	calc.On("Metadata").Return(Metadata{Name: "fields", ComponentTypes: []farm.ComponentType{farm.ComponentTypeField}})
	router, err := NewRouter(calc)
	require.NoError(t, err)

	err = router.CheckTotality(farm.AllComponentTypes())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnroutable)

	var routeErr *RouteError
	require.True(t, errors.As(err, &routeErr))
	assert.Len(t, routeErr.Missing, len(farm.AllComponentTypes())-1)
	assert.NotContains(t, routeErr.Missing, farm.ComponentTypeField)

	_, err = router.Route(farm.ComponentTypeDairy)
	assert.ErrorIs(t, err, ErrUnroutable)
	assert.NoError(t, router.CheckTotality([]farm.ComponentType{farm.ComponentTypeField}))
}

func TestCarbonDioxideEquivalents(t *testing.T) {
	assert.Equal(t, 28.0+265.0+1.0, CarbonDioxideEquivalents(1, 1, 1))
	assert.Equal(t, 0.0, CarbonDioxideEquivalents(0, 0, 0))
}

func TestResultCloneIsDeep(t *testing.T) {
	r := &ComponentEmissionResult{
		Groups:    []GroupEmissionResult{{Name: "a"}},
		CropItems: []CropViewItem{{Year: 2020, Economics: &CropEconomicsView{Revenue: 10}}},
	}
	c := r.Clone()
	c.Groups[0].Name = "b"
	c.CropItems[0].Economics.Revenue = 20

	assert.Equal(t, "a", r.Groups[0].Name)
	assert.Equal(t, 10.0, r.CropItems[0].Economics.Revenue)
	assert.Nil(t, (*ComponentEmissionResult)(nil).Clone())
}
