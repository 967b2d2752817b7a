package farm

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/defaults"
)

var (
	// ErrComponentNotFound is returned when a component ID is not on the farm
	ErrComponentNotFound = errors.New("component not found")
	// ErrComponentAttached is returned when adding a component that already belongs to a farm
	ErrComponentAttached = errors.New("component already belongs to a farm")
)

// Farm is the aggregate root of the model. It owns an ordered sequence of
// components and a snapshot of the default tables taken when it was created.
// A farm is not safe for concurrent mutation; calculations only read it.
type Farm struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	Version      defaults.CountryVersion `json:"country_version"`
	DateCreated  time.Time               `json:"date_created"`
	DateModified time.Time               `json:"date_modified"`

	Diets              []defaults.DietFormulation          `json:"diets"`
	ManureComposition  []defaults.ManureCompositionRecord  `json:"manure_composition"`
	BeddingComposition []defaults.BeddingCompositionRecord `json:"bedding_composition"`

	components []Component
	selected   uuid.UUID
	now        func() time.Time
}

// AddComponent appends a component and points it at this farm
func (f *Farm) AddComponent(c Component) error {
	if c == nil {
		return fmt.Errorf("%w: nil component", ErrUnknownComponentType)
	}
	if !c.Type().Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownComponentType, c.Type())
	}
	if owner := c.Farm(); owner != nil {
		return fmt.Errorf("%w: %s", ErrComponentAttached, c.ID())
	}
	if _, exists := f.Component(c.ID()); exists {
		return fmt.Errorf("component %s is already on farm %s", c.ID(), f.ID)
	}
	c.base().farm = f
	f.components = append(f.components, c)
	f.Touch()
	return nil
}

// RemoveComponent detaches a component from the farm
func (f *Farm) RemoveComponent(id uuid.UUID) error {
	for i, c := range f.components {
		if c.ID() != id {
			continue
		}
		c.base().farm = nil
		f.components = append(f.components[:i:i], f.components[i+1:]...)
		if f.selected == id {
			f.selected = uuid.Nil
		}
		f.Touch()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrComponentNotFound, id)
}

// Component finds a component by ID
func (f *Farm) Component(id uuid.UUID) (Component, bool) {
	for _, c := range f.components {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Components returns the component sequence in farm order
func (f *Farm) Components() []Component {
	return append([]Component(nil), f.components...)
}

// Len returns the number of components on the farm
func (f *Farm) Len() int {
	return len(f.components)
}

// SelectComponent marks the component the user is working on
func (f *Farm) SelectComponent(id uuid.UUID) error {
	if _, ok := f.Component(id); !ok {
		return fmt.Errorf("%w: %s", ErrComponentNotFound, id)
	}
	f.selected = id
	return nil
}

// SelectedComponent returns the selected component, if any
func (f *Farm) SelectedComponent() (Component, bool) {
	if f.selected == uuid.Nil {
		return nil, false
	}
	return f.Component(f.selected)
}

// Touch stamps the modification time
func (f *Farm) Touch() {
	f.DateModified = f.clock()()
}

func (f *Farm) clock() func() time.Time {
	if f.now == nil {
		return time.Now
	}
	return f.now
}

// Diet returns the farm's copy of a diet
func (f *Farm) Diet(name string) (defaults.DietFormulation, error) {
	for _, d := range f.Diets {
		if d.Name == name {
			return d.Clone(), nil
		}
	}
	return defaults.DietFormulation{}, &defaults.MissingDefaultError{Table: "farm diet", Version: f.Version, Key: name}
}

// ManureCompositionFor returns the farm's manure composition for a category and handling state
func (f *Farm) ManureCompositionFor(category defaults.AnimalCategory, state defaults.ManureStateType) (defaults.ManureCompositionRecord, error) {
	key := defaults.ManureTypeKey{Category: category, State: state}
	for _, rec := range f.ManureComposition {
		if rec.Key() == key {
			return rec, nil
		}
	}
	return defaults.ManureCompositionRecord{}, &defaults.MissingDefaultError{Table: "farm manure composition", Version: f.Version, Key: key.String()}
}

// BeddingCompositionFor returns the farm's bedding composition for a category and material
func (f *Farm) BeddingCompositionFor(category defaults.AnimalCategory, material defaults.BeddingMaterialType) (defaults.BeddingCompositionRecord, error) {
	key := defaults.BeddingTypeKey{Category: category, Material: material}
	for _, rec := range f.BeddingComposition {
		if rec.Key() == key {
			return rec, nil
		}
	}
	return defaults.BeddingCompositionRecord{}, &defaults.MissingDefaultError{Table: "farm bedding composition", Version: f.Version, Key: key.String()}
}

// ReinitializeDefaults replaces the default snapshot with the current
// provider tables for the farm's version
func (f *Farm) ReinitializeDefaults(ctx *defaults.Context) error {
	snap, err := takeSnapshot(ctx, f.Version)
	if err != nil {
		return err
	}
	snap.applyTo(f)
	f.Touch()
	return nil
}

type snapshot struct {
	diets   []defaults.DietFormulation
	manure  []defaults.ManureCompositionRecord
	bedding []defaults.BeddingCompositionRecord
}

func takeSnapshot(ctx *defaults.Context, version defaults.CountryVersion) (snapshot, error) {
	manure, err := ctx.Manure().Records(version)
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to snapshot manure defaults: %w", err)
	}
	bedding, err := ctx.Bedding().Records(version)
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to snapshot bedding defaults: %w", err)
	}
	return snapshot{
		diets:   ctx.Diets().Diets(),
		manure:  manure,
		bedding: bedding,
	}, nil
}

func (s snapshot) applyTo(f *Farm) {
	f.Diets = s.diets
	f.ManureComposition = s.manure
	f.BeddingComposition = s.bedding
}

func copyDiets(diets []defaults.DietFormulation) []defaults.DietFormulation {
	if diets == nil {
		return nil
	}
	out := make([]defaults.DietFormulation, len(diets))
	for i, d := range diets {
		out[i] = d.Clone()
	}
	return out
}
