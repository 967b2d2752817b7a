package farm

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnsupportedComponent is returned when a farm holds a component that cannot be copied
var ErrUnsupportedComponent = errors.New("unsupported component variant")

// Replicate returns an independent deep copy of a farm. Components are copied
// first, then pointed at the new farm. The replica gets a new farm ID while
// component IDs are kept so results of both farms can be compared.
func Replicate(f *Farm) (*Farm, error) {
	if f == nil {
		return nil, errors.New("cannot replicate a nil farm")
	}

	arena := make([]Component, len(f.components))
	for i, c := range f.components {
		if c == nil || !c.Type().Valid() {
			return nil, fmt.Errorf("%w: farm %s component %d", ErrUnsupportedComponent, f.ID, i)
		}
		arena[i] = c.clone()
		arena[i].base().farm = nil
	}

	replica := &Farm{
		ID:                 uuid.New(),
		Name:               f.Name,
		Version:            f.Version,
		DateCreated:        f.DateCreated,
		DateModified:       f.DateModified,
		Diets:              copyDiets(f.Diets),
		ManureComposition:  append(f.ManureComposition[:0:0], f.ManureComposition...),
		BeddingComposition: append(f.BeddingComposition[:0:0], f.BeddingComposition...),
		components:         arena,
		selected:           f.selected,
		now:                f.now,
	}
	for _, c := range arena {
		c.base().farm = replica
	}
	return replica, nil
}

// ReplicateAll replicates every farm in order. It stops at the first failure.
func ReplicateAll(farms []*Farm) ([]*Farm, error) {
	replicas := make([]*Farm, 0, len(farms))
	for i, f := range farms {
		r, err := Replicate(f)
		if err != nil {
			return nil, fmt.Errorf("failed to replicate farm at index %d: %w", i, err)
		}
		replicas = append(replicas, r)
	}
	return replicas, nil
}
