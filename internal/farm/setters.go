package farm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/defaults"
)

// UnitSystem is the unit system of imported values
type UnitSystem string

const (
	Metric   UnitSystem = "Metric"
	Imperial UnitSystem = "Imperial"
)

const (
	kilogramsPerPound = 0.45359237
	hectaresPerAcre   = 0.40468564224
	metresPerFoot     = 0.3048
	litresPerGallon   = 4.54609
	tonnesPerTon      = 0.90718474
)

// ErrUnknownField is returned when a setter path names no property of the component
var ErrUnknownField = errors.New("unknown field")

// Importer sets component properties by name from text values. Every
// settable property is listed in a per-variant table; values in imperial
// units are converted to metric on the way in.
type Importer struct {
	units         UnitSystem
	bushelWeights map[defaults.CropType]float64
}

// NewImporter creates an importer. Bushel weights for yield conversion come
// from the crop residue defaults of the context version.
func NewImporter(units UnitSystem, ctx *defaults.Context) (*Importer, error) {
	if units != Metric && units != Imperial {
		return nil, fmt.Errorf("unknown unit system %q", units)
	}
	residues, err := ctx.CropResidues().CropResidueDefaults(ctx.Version())
	if err != nil {
		return nil, err
	}
	weights := make(map[defaults.CropType]float64, len(residues))
	for crop, rec := range residues {
		weights[crop] = rec.BushelWeight
	}
	return &Importer{units: units, bushelWeights: weights}, nil
}

// SetField assigns value to the property at path. Paths name a property of
// the component ("Area") or of an element of one of its lists
// ("Groups[0].NumberOfAnimals"). Addressing the element one past the end of
// a list appends a new element.
func (im *Importer) SetField(c Component, path, value string) error {
	value = strings.TrimSpace(value)

	var err error
	if path == "Name" {
		c.SetName(value)
	} else {
		switch v := c.(type) {
		case *FieldComponent:
			err = im.setField(v, path, value)
		case *RotationComponent:
			err = im.setRotation(v, path, value)
		case *ShelterbeltComponent:
			err = im.setShelterbelt(v, path, value)
		case *AnimalComponent:
			err = im.setAnimal(v, path, value)
		case *AnaerobicDigestionComponent:
			err = im.setDigester(v, path, value)
		default:
			err = fmt.Errorf("%w: %T", ErrUnsupportedComponent, c)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to set %s on %s %s: %w", path, c.Type(), c.ID(), err)
	}
	if f := c.Farm(); f != nil {
		f.Touch()
	}
	return nil
}

type setter[T any] func(im *Importer, target *T, value string) error

func apply[T any](table map[string]setter[T], im *Importer, target *T, name, value string) error {
	set, ok := table[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return set(im, target, value)
}

var fieldSetters = map[string]setter[FieldComponent]{
	"Area": func(im *Importer, f *FieldComponent, v string) error {
		return im.setArea(&f.Area, v)
	},
}

var cropYearSetters = map[string]setter[CropYear]{
	"Year": func(_ *Importer, cy *CropYear, v string) error {
		return setInt(&cy.Year, v)
	},
}

var cropSetters = map[string]setter[CropManagement]{
	"Crop": func(_ *Importer, m *CropManagement, v string) error {
		m.Crop = defaults.CropType(v)
		return nil
	},
	"Yield": func(im *Importer, m *CropManagement, v string) error {
		return im.setYield(m, v)
	},
	"NitrogenFertilizerRate": func(im *Importer, m *CropManagement, v string) error {
		return im.setRate(&m.NitrogenFertilizerRate, v)
	},
	"PhosphorusFertilizerRate": func(im *Importer, m *CropManagement, v string) error {
		return im.setRate(&m.PhosphorusFertilizerRate, v)
	},
	"FuelUse": func(im *Importer, m *CropManagement, v string) error {
		return im.setConverted(&m.FuelUse, v, litresPerGallon/hectaresPerAcre)
	},
	"Tillage": func(_ *Importer, m *CropManagement, v string) error {
		t := TillageType(v)
		if !t.Valid() {
			return fmt.Errorf("unknown tillage type %q", v)
		}
		m.Tillage = t
		return nil
	},
	"ResidueRemoval": func(_ *Importer, m *CropManagement, v string) error {
		return setFloat(&m.ResidueRemoval, v)
	},
	"PricePerTonne": func(im *Importer, m *CropManagement, v string) error {
		return im.setConverted(&m.Economics.PricePerTonne, v, 1/tonnesPerTon)
	},
	"CostPerHectare": func(im *Importer, m *CropManagement, v string) error {
		return im.setConverted(&m.Economics.CostPerHectare, v, 1/hectaresPerAcre)
	},
}

var rotationSetters = map[string]setter[RotationComponent]{
	"FieldArea": func(im *Importer, r *RotationComponent, v string) error {
		return im.setArea(&r.FieldArea, v)
	},
	"FieldCount": func(_ *Importer, r *RotationComponent, v string) error {
		return setInt(&r.FieldCount, v)
	},
	"StartYear": func(_ *Importer, r *RotationComponent, v string) error {
		return setInt(&r.StartYear, v)
	},
	"EndYear": func(_ *Importer, r *RotationComponent, v string) error {
		return setInt(&r.EndYear, v)
	},
}

var shelterbeltSetters = map[string]setter[ShelterbeltComponent]{
	"AssessmentYear": func(_ *Importer, s *ShelterbeltComponent, v string) error {
		return setInt(&s.AssessmentYear, v)
	},
}

var shelterbeltRowSetters = map[string]setter[ShelterbeltRow]{
	"Species": func(_ *Importer, r *ShelterbeltRow, v string) error {
		r.Species = TreeSpecies(v)
		return nil
	},
	"TreeCount": func(_ *Importer, r *ShelterbeltRow, v string) error {
		return setInt(&r.TreeCount, v)
	},
	"PlantedYear": func(_ *Importer, r *ShelterbeltRow, v string) error {
		return setInt(&r.PlantedYear, v)
	},
	"Length": func(im *Importer, r *ShelterbeltRow, v string) error {
		return im.setConverted(&r.Length, v, metresPerFoot)
	},
}

var groupSetters = map[string]setter[AnimalGroup]{
	"Name": func(_ *Importer, g *AnimalGroup, v string) error {
		g.Name = v
		return nil
	},
	"GroupType": func(_ *Importer, g *AnimalGroup, v string) error {
		g.GroupType = AnimalType(v)
		return nil
	},
	"NumberOfAnimals": func(_ *Importer, g *AnimalGroup, v string) error {
		return setInt(&g.NumberOfAnimals, v)
	},
	"StartWeight": func(im *Importer, g *AnimalGroup, v string) error {
		return im.setMass(&g.StartWeight, v)
	},
	"EndWeight": func(im *Importer, g *AnimalGroup, v string) error {
		return im.setMass(&g.EndWeight, v)
	},
	"Days": func(_ *Importer, g *AnimalGroup, v string) error {
		return setInt(&g.Days, v)
	},
	"DietName": func(_ *Importer, g *AnimalGroup, v string) error {
		g.DietName = v
		return nil
	},
	"ManureHandling": func(_ *Importer, g *AnimalGroup, v string) error {
		state := defaults.ManureStateType(v)
		if !validManureState(state) {
			return fmt.Errorf("unknown manure handling %q", v)
		}
		g.ManureHandling = state
		return nil
	},
	"BeddingMaterial": func(_ *Importer, g *AnimalGroup, v string) error {
		g.BeddingMaterial = defaults.BeddingMaterialType(v)
		return nil
	},
	"BeddingRate": func(im *Importer, g *AnimalGroup, v string) error {
		return im.setMass(&g.BeddingRate, v)
	},
	"MilkProduction": func(im *Importer, g *AnimalGroup, v string) error {
		return im.setMass(&g.MilkProduction, v)
	},
	"WoolProduction": func(im *Importer, g *AnimalGroup, v string) error {
		return im.setMass(&g.WoolProduction, v)
	},
}

var digesterSetters = map[string]setter[AnaerobicDigestionComponent]{
	"StartYear": func(_ *Importer, d *AnaerobicDigestionComponent, v string) error {
		return setInt(&d.StartYear, v)
	},
	"LeakageFraction": func(_ *Importer, d *AnaerobicDigestionComponent, v string) error {
		return setFloat(&d.LeakageFraction, v)
	},
	"ElectricalEfficiency": func(_ *Importer, d *AnaerobicDigestionComponent, v string) error {
		return setFloat(&d.ElectricalEfficiency, v)
	},
}

var manureSourceSetters = map[string]setter[ManureSource]{
	"ComponentID": func(_ *Importer, s *ManureSource, v string) error {
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		s.ComponentID = id
		return nil
	},
	"FractionDiverted": func(_ *Importer, s *ManureSource, v string) error {
		return setFloat(&s.FractionDiverted, v)
	},
}

func (im *Importer) setField(f *FieldComponent, path, value string) error {
	list, index, property, ok := splitIndexed(path)
	if !ok {
		return apply(fieldSetters, im, f, path, value)
	}
	if list != "CropYears" {
		return fmt.Errorf("%w: %q", ErrUnknownField, list)
	}
	cy, err := element(&f.CropYears, index)
	if err != nil {
		return err
	}
	if _, ok := cropYearSetters[property]; ok {
		return apply(cropYearSetters, im, cy, property, value)
	}
	return apply(cropSetters, im, &cy.CropManagement, property, value)
}

func (im *Importer) setRotation(r *RotationComponent, path, value string) error {
	list, index, property, ok := splitIndexed(path)
	if !ok {
		return apply(rotationSetters, im, r, path, value)
	}
	if list != "Crops" {
		return fmt.Errorf("%w: %q", ErrUnknownField, list)
	}
	crop, err := element(&r.Crops, index)
	if err != nil {
		return err
	}
	return apply(cropSetters, im, crop, property, value)
}

func (im *Importer) setShelterbelt(s *ShelterbeltComponent, path, value string) error {
	list, index, property, ok := splitIndexed(path)
	if !ok {
		return apply(shelterbeltSetters, im, s, path, value)
	}
	if list != "Rows" {
		return fmt.Errorf("%w: %q", ErrUnknownField, list)
	}
	row, err := element(&s.Rows, index)
	if err != nil {
		return err
	}
	return apply(shelterbeltRowSetters, im, row, property, value)
}

func (im *Importer) setAnimal(a *AnimalComponent, path, value string) error {
	list, index, property, ok := splitIndexed(path)
	if !ok || list != "Groups" {
		return fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	group, err := element(&a.Groups, index)
	if err != nil {
		return err
	}
	return apply(groupSetters, im, group, property, value)
}

func (im *Importer) setDigester(d *AnaerobicDigestionComponent, path, value string) error {
	list, index, property, ok := splitIndexed(path)
	if !ok {
		return apply(digesterSetters, im, d, path, value)
	}
	if list != "ManureSources" {
		return fmt.Errorf("%w: %q", ErrUnknownField, list)
	}
	src, err := element(&d.ManureSources, index)
	if err != nil {
		return err
	}
	return apply(manureSourceSetters, im, src, property, value)
}

// splitIndexed splits "List[3].Property" into its parts
func splitIndexed(path string) (list string, index int, property string, ok bool) {
	head, property, found := strings.Cut(path, ".")
	if !found {
		return "", 0, "", false
	}
	open := strings.IndexByte(head, '[')
	if open <= 0 || !strings.HasSuffix(head, "]") {
		return "", 0, "", false
	}
	index, err := strconv.Atoi(head[open+1 : len(head)-1])
	if err != nil || index < 0 {
		return "", 0, "", false
	}
	return head[:open], index, property, true
}

func element[T any](items *[]T, index int) (*T, error) {
	switch {
	case index < len(*items):
		return &(*items)[index], nil
	case index == len(*items):
		var zero T
		*items = append(*items, zero)
		return &(*items)[index], nil
	}
	return nil, fmt.Errorf("index %d out of range (length %d)", index, len(*items))
}

func setInt(target *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer %q", value)
	}
	*target = n
	return nil
}

func setFloat(target *float64, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", value)
	}
	*target = f
	return nil
}

// setConverted stores value, multiplied by factor when the importer reads imperial units
func (im *Importer) setConverted(target *float64, value string, factor float64) error {
	var f float64
	if err := setFloat(&f, value); err != nil {
		return err
	}
	if im.units == Imperial {
		f *= factor
	}
	*target = f
	return nil
}

func (im *Importer) setMass(target *float64, value string) error {
	return im.setConverted(target, value, kilogramsPerPound)
}

func (im *Importer) setArea(target *float64, value string) error {
	return im.setConverted(target, value, hectaresPerAcre)
}

// setRate converts lb/ac to kg/ha
func (im *Importer) setRate(target *float64, value string) error {
	return im.setConverted(target, value, kilogramsPerPound/hectaresPerAcre)
}

// setYield converts bu/ac to kg/ha using the bushel weight of the crop
func (im *Importer) setYield(m *CropManagement, value string) error {
	if im.units != Imperial {
		return setFloat(&m.Yield, value)
	}
	weight, ok := im.bushelWeights[m.Crop]
	if !ok {
		return fmt.Errorf("no bushel weight for crop %q; set Crop before Yield", m.Crop)
	}
	return im.setConverted(&m.Yield, value, weight/hectaresPerAcre)
}
