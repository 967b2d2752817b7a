package farm

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/defaults"
)

// ComponentType tags a component variant. It routes a component to its calculator.
type ComponentType string

const (
	// Land management
	ComponentTypeField       ComponentType = "Field"
	ComponentTypeRotation    ComponentType = "Rotation"
	ComponentTypeShelterbelt ComponentType = "Shelterbelt"

	// Beef production
	ComponentTypeCowCalf       ComponentType = "CowCalf"
	ComponentTypeBackgrounding ComponentType = "Backgrounding"
	ComponentTypeFinishing     ComponentType = "Finishing"

	// Dairy
	ComponentTypeDairy ComponentType = "Dairy"

	// Sheep
	ComponentTypeSheep        ComponentType = "Sheep"
	ComponentTypeSheepFeedlot ComponentType = "SheepFeedlot"
	ComponentTypeRams         ComponentType = "Rams"
	ComponentTypeEwesAndLambs ComponentType = "EwesAndLambs"

	// Other animals
	ComponentTypeGoats  ComponentType = "Goats"
	ComponentTypeDeer   ComponentType = "Deer"
	ComponentTypeHorses ComponentType = "Horses"
	ComponentTypeMules  ComponentType = "Mules"
	ComponentTypeBison  ComponentType = "Bison"
	ComponentTypeLlamas ComponentType = "Llamas"

	// Swine
	ComponentTypeSwineGrowers   ComponentType = "SwineGrowers"
	ComponentTypeFarrowToWean   ComponentType = "FarrowToWean"
	ComponentTypeIsoWean        ComponentType = "IsoWean"
	ComponentTypeFarrowToFinish ComponentType = "FarrowToFinish"

	// Infrastructure
	ComponentTypeAnaerobicDigestion ComponentType = "AnaerobicDigestion"
)

// Family groups component types that share a calculation domain
type Family string

const (
	FamilyLandManagement Family = "LandManagement"
	FamilyBeef           Family = "Beef"
	FamilyDairy          Family = "Dairy"
	FamilySheep          Family = "Sheep"
	FamilyOtherAnimals   Family = "OtherAnimals"
	FamilySwine          Family = "Swine"
	FamilyInfrastructure Family = "Infrastructure"
)

type componentTypeInfo struct {
	family      Family
	description string
}

// componentTypes is ordered the way the component catalogue presents them
var componentTypes = []ComponentType{
	ComponentTypeField,
	ComponentTypeRotation,
	ComponentTypeShelterbelt,
	ComponentTypeCowCalf,
	ComponentTypeBackgrounding,
	ComponentTypeFinishing,
	ComponentTypeDairy,
	ComponentTypeSheep,
	ComponentTypeSheepFeedlot,
	ComponentTypeRams,
	ComponentTypeEwesAndLambs,
	ComponentTypeGoats,
	ComponentTypeDeer,
	ComponentTypeHorses,
	ComponentTypeMules,
	ComponentTypeBison,
	ComponentTypeLlamas,
	ComponentTypeSwineGrowers,
	ComponentTypeFarrowToWean,
	ComponentTypeIsoWean,
	ComponentTypeFarrowToFinish,
	ComponentTypeAnaerobicDigestion,
}

var componentTypeInfos = map[ComponentType]componentTypeInfo{
	ComponentTypeField:              {FamilyLandManagement, "Single field with one crop per year"},
	ComponentTypeRotation:           {FamilyLandManagement, "Crop rotation applied across several fields"},
	ComponentTypeShelterbelt:        {FamilyLandManagement, "Rows of trees planted around fields or the farmyard"},
	ComponentTypeCowCalf:            {FamilyBeef, "Cow-calf operation"},
	ComponentTypeBackgrounding:      {FamilyBeef, "Backgrounding of weaned calves"},
	ComponentTypeFinishing:          {FamilyBeef, "Feedlot finishing"},
	ComponentTypeDairy:              {FamilyDairy, "Dairy herd"},
	ComponentTypeSheep:              {FamilySheep, "Sheep flock"},
	ComponentTypeSheepFeedlot:       {FamilySheep, "Sheep feedlot"},
	ComponentTypeRams:               {FamilySheep, "Rams"},
	ComponentTypeEwesAndLambs:       {FamilySheep, "Ewes and lambs"},
	ComponentTypeGoats:              {FamilyOtherAnimals, "Goats"},
	ComponentTypeDeer:               {FamilyOtherAnimals, "Deer"},
	ComponentTypeHorses:             {FamilyOtherAnimals, "Horses"},
	ComponentTypeMules:              {FamilyOtherAnimals, "Mules"},
	ComponentTypeBison:              {FamilyOtherAnimals, "Bison"},
	ComponentTypeLlamas:             {FamilyOtherAnimals, "Llamas and alpacas"},
	ComponentTypeSwineGrowers:       {FamilySwine, "Grower to finish swine"},
	ComponentTypeFarrowToWean:       {FamilySwine, "Farrow to wean swine"},
	ComponentTypeIsoWean:            {FamilySwine, "Isowean piglets"},
	ComponentTypeFarrowToFinish:     {FamilySwine, "Farrow to finish swine"},
	ComponentTypeAnaerobicDigestion: {FamilyInfrastructure, "Anaerobic digester processing farm manure"},
}

// AllComponentTypes returns every defined component type in catalogue order
func AllComponentTypes() []ComponentType {
	return append([]ComponentType(nil), componentTypes...)
}

// Valid reports whether the tag names a defined variant
func (t ComponentType) Valid() bool {
	_, ok := componentTypeInfos[t]
	return ok
}

// Family returns the family of the component type
func (t ComponentType) Family() Family {
	return componentTypeInfos[t].family
}

// Description returns a human readable description
func (t ComponentType) Description() string {
	return componentTypeInfos[t].description
}

// AnimalCategory maps an animal family to its default-data category
func (f Family) AnimalCategory() (defaults.AnimalCategory, bool) {
	switch f {
	case FamilyBeef:
		return defaults.CategoryBeef, true
	case FamilyDairy:
		return defaults.CategoryDairy, true
	case FamilySheep:
		return defaults.CategorySheep, true
	case FamilySwine:
		return defaults.CategorySwine, true
	case FamilyOtherAnimals:
		return defaults.CategoryOtherLivestock, true
	}
	return "", false
}

// Component is a farm sub-unit that has input data and produces an emission result
type Component interface {
	ID() uuid.UUID
	Type() ComponentType
	Name() string
	SetName(name string)
	// Farm returns the owning farm, nil when the component is detached
	Farm() *Farm
	// Validate checks that every input required by the component family is present
	Validate() error

	base() *ComponentBase
	clone() Component
}

// ComponentBase carries the fields shared by every variant
type ComponentBase struct {
	id            uuid.UUID
	componentType ComponentType
	name          string
	farm          *Farm
}

func newComponentBase(t ComponentType) ComponentBase {
	return ComponentBase{
		id:            uuid.New(),
		componentType: t,
		name:          t.Description(),
	}
}

func (b *ComponentBase) ID() uuid.UUID       { return b.id }
func (b *ComponentBase) Type() ComponentType { return b.componentType }
func (b *ComponentBase) Name() string        { return b.name }
func (b *ComponentBase) SetName(name string) { b.name = name }
func (b *ComponentBase) Farm() *Farm         { return b.farm }
func (b *ComponentBase) base() *ComponentBase {
	return b
}

// ErrInvalidComponent is wrapped by every component validation failure
var ErrInvalidComponent = errors.New("invalid component state")

// InvalidComponentError names the component and the input that is missing or wrong
type InvalidComponentError struct {
	ComponentID   uuid.UUID
	ComponentType ComponentType
	Field         string
	Reason        string
}

func (e *InvalidComponentError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s %s", ErrInvalidComponent, e.ComponentType, e.ComponentID, e.Field, e.Reason)
}

func (e *InvalidComponentError) Unwrap() error {
	return ErrInvalidComponent
}

func invalid(c Component, field, reason string) error {
	return &InvalidComponentError{
		ComponentID:   c.ID(),
		ComponentType: c.Type(),
		Field:         field,
		Reason:        reason,
	}
}
