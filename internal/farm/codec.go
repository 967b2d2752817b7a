package farm

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/defaults"
)

type farmDocument struct {
	ID                 uuid.UUID                           `json:"id"`
	Name               string                              `json:"name"`
	Version            defaults.CountryVersion             `json:"country_version"`
	DateCreated        time.Time                           `json:"date_created"`
	DateModified       time.Time                           `json:"date_modified"`
	SelectedComponent  uuid.UUID                           `json:"selected_component,omitempty"`
	Components         []componentEnvelope                 `json:"components"`
	Diets              []defaults.DietFormulation          `json:"diets"`
	ManureComposition  []defaults.ManureCompositionRecord  `json:"manure_composition"`
	BeddingComposition []defaults.BeddingCompositionRecord `json:"bedding_composition"`
}

// componentEnvelope tags the variant payload with its component type
type componentEnvelope struct {
	Type ComponentType   `json:"type"`
	ID   uuid.UUID       `json:"id"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// MarshalFarm encodes a farm with its components and default snapshot
func MarshalFarm(f *Farm) ([]byte, error) {
	doc := farmDocument{
		ID:                 f.ID,
		Name:               f.Name,
		Version:            f.Version,
		DateCreated:        f.DateCreated,
		DateModified:       f.DateModified,
		SelectedComponent:  f.selected,
		Components:         make([]componentEnvelope, 0, len(f.components)),
		Diets:              f.Diets,
		ManureComposition:  f.ManureComposition,
		BeddingComposition: f.BeddingComposition,
	}
	for _, c := range f.components {
		data, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("failed to encode component %s: %w", c.ID(), err)
		}
		doc.Components = append(doc.Components, componentEnvelope{
			Type: c.Type(),
			ID:   c.ID(),
			Name: c.Name(),
			Data: data,
		})
	}
	return json.Marshal(doc)
}

// UnmarshalFarm decodes a farm written by MarshalFarm
func UnmarshalFarm(data []byte) (*Farm, error) {
	var doc farmDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode farm: %w", err)
	}

	f := &Farm{
		ID:                 doc.ID,
		Name:               doc.Name,
		Version:            doc.Version,
		DateCreated:        doc.DateCreated,
		DateModified:       doc.DateModified,
		Diets:              doc.Diets,
		ManureComposition:  doc.ManureComposition,
		BeddingComposition: doc.BeddingComposition,
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	seen := make(map[uuid.UUID]struct{}, len(doc.Components))
	for i, env := range doc.Components {
		c, err := blankComponent(env.Type)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, c); err != nil {
				return nil, fmt.Errorf("failed to decode %s component %d: %w", env.Type, i, err)
			}
		}
		base := c.base()
		base.id = env.ID
		if base.id == uuid.Nil {
			base.id = uuid.New()
		}
		if _, dup := seen[base.id]; dup {
			return nil, fmt.Errorf("component %s appears twice", base.id)
		}
		seen[base.id] = struct{}{}
		base.name = env.Name
		if base.name == "" {
			base.name = env.Type.Description()
		}
		base.farm = f
		f.components = append(f.components, c)
	}

	if doc.SelectedComponent != uuid.Nil {
		if _, ok := seen[doc.SelectedComponent]; ok {
			f.selected = doc.SelectedComponent
		}
	}
	return f, nil
}

// blankComponent returns an empty variant for a type tag
func blankComponent(t ComponentType) (Component, error) {
	switch t.Family() {
	case FamilyLandManagement:
		switch t {
		case ComponentTypeField:
			return &FieldComponent{ComponentBase: ComponentBase{componentType: t}}, nil
		case ComponentTypeRotation:
			return &RotationComponent{ComponentBase: ComponentBase{componentType: t}}, nil
		case ComponentTypeShelterbelt:
			return &ShelterbeltComponent{ComponentBase: ComponentBase{componentType: t}}, nil
		}
	case FamilyBeef, FamilyDairy, FamilySheep, FamilySwine, FamilyOtherAnimals:
		return &AnimalComponent{ComponentBase: ComponentBase{componentType: t}}, nil
	case FamilyInfrastructure:
		return &AnaerobicDigestionComponent{ComponentBase: ComponentBase{componentType: t}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownComponentType, t)
}
