package farm

import (
	"fmt"

	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/defaults"
)

// AnimalType is the type of animals in a management group
type AnimalType string

const (
	AnimalBeefCow           AnimalType = "BeefCow"
	AnimalBeefBull          AnimalType = "BeefBull"
	AnimalBeefCalf          AnimalType = "BeefCalf"
	AnimalBeefStocker       AnimalType = "BeefStocker"
	AnimalBeefFinisher      AnimalType = "BeefFinisher"
	AnimalDairyLactatingCow AnimalType = "DairyLactatingCow"
	AnimalDairyDryCow       AnimalType = "DairyDryCow"
	AnimalDairyHeifer       AnimalType = "DairyHeifer"
	AnimalDairyCalf         AnimalType = "DairyCalf"
	AnimalEwe               AnimalType = "Ewe"
	AnimalRam               AnimalType = "Ram"
	AnimalLamb              AnimalType = "Lamb"
	AnimalFeedlotLamb       AnimalType = "FeedlotLamb"
	AnimalSow               AnimalType = "Sow"
	AnimalBoar              AnimalType = "Boar"
	AnimalPiglet            AnimalType = "Piglet"
	AnimalWeaner            AnimalType = "Weaner"
	AnimalSwineGrower       AnimalType = "SwineGrower"
	AnimalSwineFinisher     AnimalType = "SwineFinisher"
	AnimalGoat              AnimalType = "Goat"
	AnimalDeer              AnimalType = "Deer"
	AnimalHorse             AnimalType = "Horse"
	AnimalMule              AnimalType = "Mule"
	AnimalBison             AnimalType = "Bison"
	AnimalLlama             AnimalType = "Llama"
)

var allowedGroupTypes = map[ComponentType][]AnimalType{
	ComponentTypeCowCalf:        {AnimalBeefCow, AnimalBeefBull, AnimalBeefCalf},
	ComponentTypeBackgrounding:  {AnimalBeefStocker},
	ComponentTypeFinishing:      {AnimalBeefFinisher},
	ComponentTypeDairy:          {AnimalDairyLactatingCow, AnimalDairyDryCow, AnimalDairyHeifer, AnimalDairyCalf},
	ComponentTypeSheep:          {AnimalEwe, AnimalRam, AnimalLamb},
	ComponentTypeSheepFeedlot:   {AnimalFeedlotLamb},
	ComponentTypeRams:           {AnimalRam},
	ComponentTypeEwesAndLambs:   {AnimalEwe, AnimalLamb},
	ComponentTypeGoats:          {AnimalGoat},
	ComponentTypeDeer:           {AnimalDeer},
	ComponentTypeHorses:         {AnimalHorse},
	ComponentTypeMules:          {AnimalMule},
	ComponentTypeBison:          {AnimalBison},
	ComponentTypeLlamas:         {AnimalLlama},
	ComponentTypeSwineGrowers:   {AnimalSwineGrower, AnimalSwineFinisher},
	ComponentTypeFarrowToWean:   {AnimalSow, AnimalBoar, AnimalPiglet},
	ComponentTypeIsoWean:        {AnimalWeaner},
	ComponentTypeFarrowToFinish: {AnimalSow, AnimalBoar, AnimalPiglet, AnimalWeaner, AnimalSwineGrower, AnimalSwineFinisher},
}

// AnimalGroup is a management group of animals sharing diet and housing
type AnimalGroup struct {
	Name            string                       `json:"name"`
	GroupType       AnimalType                   `json:"group_type"`
	NumberOfAnimals int                          `json:"number_of_animals"`
	StartWeight     float64                      `json:"start_weight"` // kg
	EndWeight       float64                      `json:"end_weight"`   // kg
	Days            int                          `json:"days"`
	DietName        string                       `json:"diet_name"`
	ManureHandling  defaults.ManureStateType     `json:"manure_handling"`
	BeddingMaterial defaults.BeddingMaterialType `json:"bedding_material"`
	BeddingRate     float64                      `json:"bedding_rate"`    // kg DM/head/day
	MilkProduction  float64                      `json:"milk_production"` // kg/head/day
	WoolProduction  float64                      `json:"wool_production"` // kg/head/year
}

// AverageWeight is the mean of the start and end weights
func (g AnimalGroup) AverageWeight() float64 {
	return (g.StartWeight + g.EndWeight) / 2
}

// AnimalComponent is any livestock operation. The component type selects the
// family (beef, dairy, sheep, swine, other animals) and the group types allowed.
type AnimalComponent struct {
	ComponentBase
	Groups []AnimalGroup `json:"groups"`
}

// NewAnimalComponent creates an animal component without groups
func NewAnimalComponent(t ComponentType) (*AnimalComponent, error) {
	if _, ok := allowedGroupTypes[t]; !ok {
		return nil, fmt.Errorf("%w: %s is not an animal component", ErrUnknownComponentType, t)
	}
	return &AnimalComponent{ComponentBase: newComponentBase(t)}, nil
}

// Category returns the default-data category of the component
func (a *AnimalComponent) Category() defaults.AnimalCategory {
	category, _ := a.Type().Family().AnimalCategory()
	return category
}

// AllowedGroupTypes returns the group types this component may hold
func (a *AnimalComponent) AllowedGroupTypes() []AnimalType {
	return append([]AnimalType(nil), allowedGroupTypes[a.Type()]...)
}

// Validate checks every group of the component
func (a *AnimalComponent) Validate() error {
	allowed, ok := allowedGroupTypes[a.Type()]
	if !ok {
		return invalid(a, "Type", "is not an animal component type")
	}
	if len(a.Groups) == 0 {
		return invalid(a, "Groups", "at least one animal group is required")
	}
	requiresDiet := a.Type().Family() != FamilyOtherAnimals

	for i, g := range a.Groups {
		path := fmt.Sprintf("Groups[%d]", i)
		if !containsAnimalType(allowed, g.GroupType) {
			return invalid(a, path+".GroupType", fmt.Sprintf("%q is not allowed in a %s component", g.GroupType, a.Type()))
		}
		if g.NumberOfAnimals <= 0 {
			return invalid(a, path+".NumberOfAnimals", "must be positive")
		}
		if g.Days <= 0 {
			return invalid(a, path+".Days", "must be positive")
		}
		if g.StartWeight <= 0 || g.EndWeight <= 0 {
			return invalid(a, path+".StartWeight", "start and end weights must be positive")
		}
		if requiresDiet && g.DietName == "" {
			return invalid(a, path+".DietName", "is required")
		}
		if !validManureState(g.ManureHandling) {
			return invalid(a, path+".ManureHandling", fmt.Sprintf("unknown manure handling %q", g.ManureHandling))
		}
		if g.BeddingMaterial == "" {
			return invalid(a, path+".BeddingMaterial", "is required")
		}
		if g.BeddingRate < 0 {
			return invalid(a, path+".BeddingRate", "must not be negative")
		}
		if g.GroupType == AnimalDairyLactatingCow && g.MilkProduction <= 0 {
			return invalid(a, path+".MilkProduction", "is required for lactating cows")
		}
	}
	return nil
}

func (a *AnimalComponent) clone() Component {
	out := *a
	out.Groups = append([]AnimalGroup(nil), a.Groups...)
	return &out
}

func containsAnimalType(types []AnimalType, t AnimalType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func validManureState(s defaults.ManureStateType) bool {
	for _, state := range defaults.ManureStates() {
		if state == s {
			return true
		}
	}
	return false
}

// ManureSource diverts part of an animal component's manure into a digester
type ManureSource struct {
	ComponentID      uuid.UUID `json:"component_id"`
	FractionDiverted float64   `json:"fraction_diverted"`
}

// AnaerobicDigestionComponent is an on-farm digester fed with livestock manure
type AnaerobicDigestionComponent struct {
	ComponentBase
	StartYear            int            `json:"start_year"`
	ManureSources        []ManureSource `json:"manure_sources"`
	LeakageFraction      float64        `json:"leakage_fraction"`
	ElectricalEfficiency float64        `json:"electrical_efficiency"`
}

// Validate checks the digester inputs. When attached to a farm every manure
// source must name an animal component of that farm.
func (d *AnaerobicDigestionComponent) Validate() error {
	if len(d.ManureSources) == 0 {
		return invalid(d, "ManureSources", "at least one manure source is required")
	}
	if d.LeakageFraction < 0 || d.LeakageFraction > 1 {
		return invalid(d, "LeakageFraction", "must be between 0 and 1")
	}
	if d.ElectricalEfficiency <= 0 || d.ElectricalEfficiency > 1 {
		return invalid(d, "ElectricalEfficiency", "must be in (0, 1]")
	}
	for i, src := range d.ManureSources {
		path := fmt.Sprintf("ManureSources[%d]", i)
		if src.FractionDiverted <= 0 || src.FractionDiverted > 1 {
			return invalid(d, path+".FractionDiverted", "must be in (0, 1]")
		}
		if d.farm == nil {
			continue
		}
		source, ok := d.farm.Component(src.ComponentID)
		if !ok {
			return invalid(d, path+".ComponentID", fmt.Sprintf("component %s is not on the farm", src.ComponentID))
		}
		if _, ok := source.(*AnimalComponent); !ok {
			return invalid(d, path+".ComponentID", fmt.Sprintf("component %s is not an animal component", src.ComponentID))
		}
	}
	return nil
}

func (d *AnaerobicDigestionComponent) clone() Component {
	out := *d
	out.ManureSources = append([]ManureSource(nil), d.ManureSources...)
	return &out
}
