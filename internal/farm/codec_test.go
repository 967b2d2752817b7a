package farm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFarmCodecRoundTrip(t *testing.T) {
	original := populatedFarm(t)

	data, err := MarshalFarm(original)
	require.NoError(t, err)

	decoded, err := UnmarshalFarm(data)
	require.NoError(t, err)

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Version, decoded.Version)
	assert.True(t, original.DateCreated.Equal(decoded.DateCreated))
	assert.Equal(t, original.Diets, decoded.Diets)
	assert.Equal(t, original.ManureComposition, decoded.ManureComposition)
	require.Equal(t, original.Len(), decoded.Len())

	for i, c := range decoded.Components() {
		source := original.Components()[i]
		assert.Equal(t, source.ID(), c.ID())
		assert.Equal(t, source.Type(), c.Type())
		assert.Equal(t, source.Name(), c.Name())
		assert.Same(t, decoded, c.Farm())
		assert.NoError(t, c.Validate())
	}

	assert.Equal(t, original.Components()[0].(*FieldComponent).CropYears, decoded.Components()[0].(*FieldComponent).CropYears)
	assert.Equal(t, original.Components()[1].(*AnimalComponent).Groups, decoded.Components()[1].(*AnimalComponent).Groups)

	selected, ok := decoded.SelectedComponent()
	require.True(t, ok)
	assert.Equal(t, original.Components()[1].ID(), selected.ID())
}

func TestUnmarshalFarmRejectsBadInput(t *testing.T) {
	_, err := UnmarshalFarm([]byte(`{"components":[{"type":"Poultry","data":{}}]}`))
	assert.ErrorIs(t, err, ErrUnknownComponentType)

	_, err = UnmarshalFarm([]byte(`not json`))
	assert.Error(t, err)

	dup := `{"components":[
		{"type":"Field","id":"7d3b7f0e-8c1a-4d4b-9a51-8f3f0d6f2a11","data":{"area":1}},
		{"type":"Field","id":"7d3b7f0e-8c1a-4d4b-9a51-8f3f0d6f2a11","data":{"area":2}}]}`
	_, err = UnmarshalFarm([]byte(dup))
	assert.Error(t, err)
}

func TestUnmarshalFarmAssignsMissingIDs(t *testing.T) {
	f, err := UnmarshalFarm([]byte(`{"name":"imported","country_version":"Canada","components":[{"type":"Sheep","data":{"groups":[]}}]}`))
	require.NoError(t, err)

	require.Equal(t, 1, f.Len())
	c := f.Components()[0]
	assert.NotEqual(t, "", c.ID().String())
	assert.Equal(t, ComponentTypeSheep.Description(), c.Name())
	assert.Equal(t, FamilySheep, c.Type().Family())
}
