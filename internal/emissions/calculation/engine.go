package calculation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"carbon-scribe/farm-emissions/internal/defaults"
	"carbon-scribe/farm-emissions/internal/farm"
)

// Calculator defines the interface for a component family calculation
type Calculator interface {
	// Calculate computes the emission result of one component. It must not
	// modify the farm or the component.
	Calculate(ctx context.Context, req *Request) (*ComponentEmissionResult, error)

	// Validate checks that the component carries the inputs the family needs
	Validate(req *Request) error

	// Metadata describes the calculator and the component types it serves
	Metadata() Metadata
}

// Request is the input of a single component calculation
type Request struct {
	Farm      *farm.Farm
	Component farm.Component
	Options   Options
}

// Options are per-run switches read once when a run starts
type Options struct {
	// CropEconomicDataApplied adds economic figures to crop view items.
	// It never changes an emission quantity.
	CropEconomicDataApplied bool
}

// Metadata contains information about a calculator
type Metadata struct {
	Family           farm.Family          `json:"family"`
	Name             string               `json:"name"`
	Description      string               `json:"description"`
	ComponentTypes   []farm.ComponentType `json:"component_types"`
	RequiredDefaults []string             `json:"required_defaults"`
}

// ErrUnroutable is wrapped when no calculator is registered for a component type
var ErrUnroutable = errors.New("no calculator registered for component type")

// RouteError lists the component types without a calculator
type RouteError struct {
	Missing []farm.ComponentType
}

func (e *RouteError) Error() string {
	names := make([]string, len(e.Missing))
	for i, t := range e.Missing {
		names[i] = string(t)
	}
	return fmt.Sprintf("%s: %s", ErrUnroutable, strings.Join(names, ", "))
}

func (e *RouteError) Unwrap() error {
	return ErrUnroutable
}

// Router maps every component type to the calculator of its family
type Router struct {
	calculators map[farm.ComponentType]Calculator
}

// NewRouter registers calculators under the component types their metadata
// lists. A nil calculator or a type claimed twice is rejected.
func NewRouter(calculators ...Calculator) (*Router, error) {
	r := &Router{calculators: make(map[farm.ComponentType]Calculator)}
	for i, calc := range calculators {
		if calc == nil {
			return nil, fmt.Errorf("calculator %d is nil", i)
		}
		meta := calc.Metadata()
		if len(meta.ComponentTypes) == 0 {
			return nil, fmt.Errorf("calculator %q serves no component types", meta.Name)
		}
		for _, t := range meta.ComponentTypes {
			if existing, dup := r.calculators[t]; dup {
				return nil, fmt.Errorf("component type %s registered by both %q and %q", t, existing.Metadata().Name, meta.Name)
			}
			r.calculators[t] = calc
		}
	}
	return r, nil
}

// Route returns the calculator for a component type
func (r *Router) Route(t farm.ComponentType) (Calculator, error) {
	calc, ok := r.calculators[t]
	if !ok {
		return nil, &RouteError{Missing: []farm.ComponentType{t}}
	}
	return calc, nil
}

// CheckTotality verifies that every given type has a calculator
func (r *Router) CheckTotality(types []farm.ComponentType) error {
	var missing []farm.ComponentType
	for _, t := range types {
		if _, ok := r.calculators[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return &RouteError{Missing: missing}
	}
	return nil
}

// Calculators returns the metadata of every registered calculator, sorted by name
func (r *Router) Calculators() []Metadata {
	seen := make(map[string]bool)
	var out []Metadata
	for _, calc := range r.calculators {
		meta := calc.Metadata()
		if seen[meta.Name] {
			continue
		}
		seen[meta.Name] = true
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NewDefaultRouter registers the built-in calculators and checks that every
// component type of the catalogue is routable
func NewDefaultRouter(ctx *defaults.Context) (*Router, error) {
	crops := newCropCalculator(ctx.CropResidues())
	livestock := map[farm.Family]*LivestockCalculator{
		farm.FamilyBeef:  NewBeefCalculator(),
		farm.FamilyDairy: NewDairyCalculator(),
		farm.FamilySheep: NewSheepCalculator(),
		farm.FamilySwine: NewSwineCalculator(),
	}
	other := NewOtherAnimalsCalculator()

	router, err := NewRouter(
		&FieldCalculator{crops: crops},
		&RotationCalculator{crops: crops},
		&ShelterbeltCalculator{},
		livestock[farm.FamilyBeef],
		livestock[farm.FamilyDairy],
		livestock[farm.FamilySheep],
		livestock[farm.FamilySwine],
		other,
		NewDigestionCalculator(livestock, other),
	)
	if err != nil {
		return nil, err
	}
	if err := router.CheckTotality(farm.AllComponentTypes()); err != nil {
		return nil, err
	}
	return router, nil
}

// typesOf returns the catalogue types of a family
func typesOf(family farm.Family) []farm.ComponentType {
	var out []farm.ComponentType
	for _, t := range farm.AllComponentTypes() {
		if t.Family() == family {
			out = append(out, t)
		}
	}
	return out
}

// validateRequest performs the checks shared by every calculator
func validateRequest(req *Request) error {
	if req == nil || req.Farm == nil {
		return errors.New("request has no farm")
	}
	if req.Component == nil {
		return errors.New("request has no component")
	}
	if req.Component.Farm() != req.Farm {
		return fmt.Errorf("component %s does not belong to farm %s", req.Component.ID(), req.Farm.ID)
	}
	return req.Component.Validate()
}
