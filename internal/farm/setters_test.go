package farm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-scribe/farm-emissions/internal/defaults"
)

func newImporter(t *testing.T, units UnitSystem) *Importer {
	t.Helper()
	ctx, err := defaults.NewBuiltinContext(defaults.Canada)
	require.NoError(t, err)
	im, err := NewImporter(units, ctx)
	require.NoError(t, err)
	return im
}

func TestSetFieldMetric(t *testing.T) {
	im := newImporter(t, Metric)
	field := NewFieldComponent(1)

	values := [][2]string{
		{"Name", "North quarter"},
		{"Area", "64.5"},
		{"CropYears[0].Year", "2023"},
		{"CropYears[0].Crop", "Wheat"},
		{"CropYears[0].Yield", "3500"},
		{"CropYears[0].NitrogenFertilizerRate", "90"},
		{"CropYears[0].Tillage", "NoTill"},
		{"CropYears[0].PricePerTonne", "310"},
	}
	for _, kv := range values {
		require.NoError(t, im.SetField(field, kv[0], kv[1]), kv[0])
	}

	assert.Equal(t, "North quarter", field.Name())
	assert.Equal(t, 64.5, field.Area)
	require.Len(t, field.CropYears, 1)
	cy := field.CropYears[0]
	assert.Equal(t, 2023, cy.Year)
	assert.Equal(t, defaults.CropWheat, cy.Crop)
	assert.Equal(t, 3500.0, cy.Yield)
	assert.Equal(t, 90.0, cy.NitrogenFertilizerRate)
	assert.Equal(t, TillageNoTill, cy.Tillage)
	assert.Equal(t, 310.0, cy.Economics.PricePerTonne)
}

func TestSetFieldImperialConversion(t *testing.T) {
	im := newImporter(t, Imperial)
	field := NewFieldComponent(1)

	require.NoError(t, im.SetField(field, "Area", "100"))
	assert.InDelta(t, 40.4686, field.Area, 1e-4)

	require.NoError(t, im.SetField(field, "CropYears[0].Crop", "Wheat"))
	require.NoError(t, im.SetField(field, "CropYears[0].Yield", "50"))
	// 50 bu/ac * 27.22 kg/bu / 0.4047 ha/ac
	assert.InDelta(t, 3363.1, field.CropYears[0].Yield, 0.1)

	require.NoError(t, im.SetField(field, "CropYears[0].NitrogenFertilizerRate", "100"))
	assert.InDelta(t, 112.085, field.CropYears[0].NitrogenFertilizerRate, 1e-3)

	c, err := NewComponent(ComponentTypeFinishing)
	require.NoError(t, err)
	require.NoError(t, im.SetField(c, "Groups[0].StartWeight", "1000"))
	assert.InDelta(t, 453.592, c.(*AnimalComponent).Groups[0].StartWeight, 1e-3)
}

func TestSetFieldYieldNeedsCropInImperial(t *testing.T) {
	im := newImporter(t, Imperial)
	field := NewFieldComponent(1)

	err := im.SetField(field, "CropYears[0].Yield", "50")
	assert.Error(t, err)
}

func TestSetFieldAnimalGroups(t *testing.T) {
	im := newImporter(t, Metric)
	c, err := NewComponent(ComponentTypeSwineGrowers)
	require.NoError(t, err)
	swine := c.(*AnimalComponent)

	require.NoError(t, im.SetField(swine, "Groups[0].NumberOfAnimals", "2500"))
	require.NoError(t, im.SetField(swine, "Groups[1].ManureHandling", "LiquidNoCrust"))
	assert.Equal(t, 2500, swine.Groups[0].NumberOfAnimals)
	assert.Equal(t, defaults.ManureLiquidNoCrust, swine.Groups[1].ManureHandling)

	// one past the end appends
	require.NoError(t, im.SetField(swine, "Groups[2].GroupType", "SwineGrower"))
	assert.Len(t, swine.Groups, 3)

	assert.Error(t, im.SetField(swine, "Groups[9].Days", "10"))
	assert.Error(t, im.SetField(swine, "Groups[0].ManureHandling", "Lagoon"))
	assert.Error(t, im.SetField(swine, "Groups[0].Days", "many"))
}

func TestSetFieldUnknownPaths(t *testing.T) {
	im := newImporter(t, Metric)
	field := NewFieldComponent(1)

	assert.ErrorIs(t, im.SetField(field, "Colour", "red"), ErrUnknownField)
	assert.ErrorIs(t, im.SetField(field, "Rows[0].Species", "Willow"), ErrUnknownField)
	assert.ErrorIs(t, im.SetField(field, "CropYears[0].Colour", "red"), ErrUnknownField)

	dairy, err := NewComponent(ComponentTypeDairy)
	require.NoError(t, err)
	assert.ErrorIs(t, im.SetField(dairy, "Area", "5"), ErrUnknownField)
}

func TestSetFieldTouchesFarm(t *testing.T) {
	f := newTestFarm(t)
	field := NewFieldComponent(1)
	require.NoError(t, f.AddComponent(field))

	im := newImporter(t, Metric)
	require.NoError(t, im.SetField(field, "Area", "12"))
	assert.Equal(t, fixedTime, f.DateModified)
}

func TestSplitIndexed(t *testing.T) {
	list, index, property, ok := splitIndexed("Groups[12].DietName")
	require.True(t, ok)
	assert.Equal(t, "Groups", list)
	assert.Equal(t, 12, index)
	assert.Equal(t, "DietName", property)

	for _, path := range []string{"Area", "Groups.Name", "Groups[-1].Name", "[0].Name", "Groups[x].Name"} {
		_, _, _, ok := splitIndexed(path)
		assert.False(t, ok, path)
	}
}

func TestNewImporterRejectsUnknownUnits(t *testing.T) {
	ctx, err := defaults.NewBuiltinContext(defaults.Canada)
	require.NoError(t, err)
	_, err = NewImporter("Cubits", ctx)
	assert.Error(t, err)
}
