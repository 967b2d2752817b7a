package farm

import (
	"errors"
	"fmt"

	"carbon-scribe/farm-emissions/internal/defaults"
)

// ErrUnknownComponentType is returned for a tag that names no component variant
var ErrUnknownComponentType = errors.New("unknown component type")

// CatalogueEntry describes a component type that can be added to a farm
type CatalogueEntry struct {
	Type        ComponentType `json:"type"`
	Family      Family        `json:"family"`
	Description string        `json:"description"`
}

// Catalogue lists every available component type in presentation order
func Catalogue() []CatalogueEntry {
	entries := make([]CatalogueEntry, 0, len(componentTypes))
	for _, t := range componentTypes {
		entries = append(entries, CatalogueEntry{
			Type:        t,
			Family:      t.Family(),
			Description: t.Description(),
		})
	}
	return entries
}

// NewComponent creates a fresh component of the given type. Animal components
// come with one default group per allowed group type.
func NewComponent(t ComponentType) (Component, error) {
	switch t.Family() {
	case FamilyLandManagement:
		switch t {
		case ComponentTypeField:
			return NewFieldComponent(1), nil
		case ComponentTypeRotation:
			return &RotationComponent{ComponentBase: newComponentBase(t), FieldArea: 1, FieldCount: 1}, nil
		case ComponentTypeShelterbelt:
			return &ShelterbeltComponent{ComponentBase: newComponentBase(t)}, nil
		}
	case FamilyBeef, FamilyDairy, FamilySheep, FamilySwine, FamilyOtherAnimals:
		c, err := NewAnimalComponent(t)
		if err != nil {
			return nil, err
		}
		for _, groupType := range allowedGroupTypes[t] {
			c.Groups = append(c.Groups, defaultGroup(groupType))
		}
		return c, nil
	case FamilyInfrastructure:
		return &AnaerobicDigestionComponent{
			ComponentBase:        newComponentBase(t),
			LeakageFraction:      0.03,
			ElectricalEfficiency: 0.35,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownComponentType, t)
}

type groupTemplate struct {
	head        int
	startWeight float64
	endWeight   float64
	days        int
	diet        string
	manure      defaults.ManureStateType
	bedding     defaults.BeddingMaterialType
	beddingRate float64
	milk        float64
	wool        float64
}

var groupTemplates = map[AnimalType]groupTemplate{
	AnimalBeefCow:           {100, 610, 610, 365, "Medium Energy and Protein", defaults.ManurePasture, defaults.BeddingStraw, 1.5, 0, 0},
	AnimalBeefBull:          {4, 900, 900, 365, "Medium Energy and Protein", defaults.ManurePasture, defaults.BeddingStraw, 1.5, 0, 0},
	AnimalBeefCalf:          {90, 39, 260, 180, "Medium Energy and Protein", defaults.ManurePasture, defaults.BeddingNone, 0, 0, 0},
	AnimalBeefStocker:       {100, 250, 380, 110, "High Energy and Protein", defaults.ManureSolidStorage, defaults.BeddingStraw, 1.5, 0, 0},
	AnimalBeefFinisher:      {100, 380, 610, 170, "Barley Grain-Based", defaults.ManureSolidStorage, defaults.BeddingStraw, 1.5, 0, 0},
	AnimalDairyLactatingCow: {100, 687, 687, 305, "Legume Forage-Based", defaults.ManureLiquidWithNaturalCrust, defaults.BeddingSand, 2.5, 30, 0},
	AnimalDairyDryCow:       {20, 687, 687, 60, "Dry Cow Diet", defaults.ManureSolidStorage, defaults.BeddingStraw, 2.0, 0, 0},
	AnimalDairyHeifer:       {40, 330, 565, 365, "Barley Silage-Based", defaults.ManureSolidStorage, defaults.BeddingStraw, 2.0, 0, 0},
	AnimalDairyCalf:         {30, 45, 127, 60, "Barley Silage-Based", defaults.ManureSolidStorage, defaults.BeddingStraw, 0.5, 0, 0},
	AnimalEwe:               {100, 75, 75, 365, "Good-Quality Forage", defaults.ManurePasture, defaults.BeddingStraw, 0.57, 0, 4},
	AnimalRam:               {4, 125, 125, 365, "Good-Quality Forage", defaults.ManurePasture, defaults.BeddingStraw, 0.57, 0, 4},
	AnimalLamb:              {150, 5, 40, 120, "Good-Quality Forage", defaults.ManurePasture, defaults.BeddingNone, 0, 0, 0},
	AnimalFeedlotLamb:       {100, 30, 50, 60, "Lamb Finishing", defaults.ManureSolidStorage, defaults.BeddingStraw, 0.57, 0, 0},
	AnimalSow:               {100, 198, 198, 365, "Gestation", defaults.ManureLiquidWithNaturalCrust, defaults.BeddingStraw, 0.3, 0, 0},
	AnimalBoar:              {4, 250, 250, 365, "Gestation", defaults.ManureLiquidWithNaturalCrust, defaults.BeddingStraw, 0.3, 0, 0},
	AnimalPiglet:            {1000, 1.4, 6, 21, "Lactation", defaults.ManureLiquidWithNaturalCrust, defaults.BeddingNone, 0, 0, 0},
	AnimalWeaner:            {1000, 6, 20, 42, "Nursery", defaults.ManureLiquidWithNaturalCrust, defaults.BeddingNone, 0, 0, 0},
	AnimalSwineGrower:       {1000, 20, 55, 55, "Grower-Finisher", defaults.ManureLiquidWithNaturalCrust, defaults.BeddingNone, 0, 0, 0},
	AnimalSwineFinisher:     {1000, 55, 114, 60, "Grower-Finisher", defaults.ManureLiquidWithNaturalCrust, defaults.BeddingNone, 0, 0, 0},
	AnimalGoat:              {50, 64, 64, 365, "", defaults.ManurePasture, defaults.BeddingStraw, 0.57, 0, 0},
	AnimalDeer:              {50, 120, 120, 365, "", defaults.ManurePasture, defaults.BeddingNone, 0, 0, 0},
	AnimalHorse:             {10, 450, 450, 365, "", defaults.ManureSolidStorage, defaults.BeddingWoodChip, 3.0, 0, 0},
	AnimalMule:              {10, 250, 250, 365, "", defaults.ManureSolidStorage, defaults.BeddingWoodChip, 3.0, 0, 0},
	AnimalBison:             {50, 500, 500, 365, "", defaults.ManurePasture, defaults.BeddingNone, 0, 0, 0},
	AnimalLlama:             {20, 113, 113, 365, "", defaults.ManurePasture, defaults.BeddingStraw, 0.57, 0, 0},
}

func defaultGroup(t AnimalType) AnimalGroup {
	tpl := groupTemplates[t]
	return AnimalGroup{
		Name:            string(t),
		GroupType:       t,
		NumberOfAnimals: tpl.head,
		StartWeight:     tpl.startWeight,
		EndWeight:       tpl.endWeight,
		Days:            tpl.days,
		DietName:        tpl.diet,
		ManureHandling:  tpl.manure,
		BeddingMaterial: tpl.bedding,
		BeddingRate:     tpl.beddingRate,
		MilkProduction:  tpl.milk,
		WoolProduction:  tpl.wool,
	}
}
