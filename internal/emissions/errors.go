package emissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"carbon-scribe/farm-emissions/internal/farm"
)

// ErrorKind classifies why a farm could not be calculated
type ErrorKind string

const (
	// KindConfiguration covers unroutable component types and missing default data
	KindConfiguration ErrorKind = "configuration"
	// KindInvalidComponent covers components missing required input
	KindInvalidComponent ErrorKind = "invalid-component"
	// KindReplication covers farms that could not be copied
	KindReplication ErrorKind = "replication"
	// KindCancelled covers runs stopped by their context
	KindCancelled ErrorKind = "cancelled"
)

// FarmError identifies the farm, and when known the component, that failed
type FarmError struct {
	// Index is the position of the farm in the batch it was submitted with
	Index         int
	FarmID        uuid.UUID
	FarmName      string
	ComponentID   uuid.UUID
	ComponentType farm.ComponentType
	Kind          ErrorKind
	Err           error
}

func (e *FarmError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s error in farm %s", e.Kind, e.FarmID)
	if e.FarmName != "" {
		fmt.Fprintf(&b, " (%s)", e.FarmName)
	}
	if e.ComponentID != uuid.Nil {
		fmt.Fprintf(&b, " component %s", e.ComponentID)
		if e.ComponentType != "" {
			fmt.Fprintf(&b, " (%s)", e.ComponentType)
		}
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *FarmError) Unwrap() error {
	return e.Err
}

// BatchError reports the farms of a batch that produced no results
type BatchError struct {
	Total    int
	Failures []*FarmError
}

func (e *BatchError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("1 of %d farms failed: %v", e.Total, e.Failures[0])
	}
	return fmt.Sprintf("%d of %d farms failed; first: %v", len(e.Failures), e.Total, e.Failures[0])
}

// Unwrap exposes every failure to errors.Is and errors.As
func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}

// classify maps an error returned by a calculator or the farm model to a kind
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, farm.ErrInvalidComponent):
		return KindInvalidComponent
	case errors.Is(err, farm.ErrUnsupportedComponent):
		return KindReplication
	default:
		// missing defaults, unroutable types and calculator mismatches
		return KindConfiguration
	}
}

func newFarmError(f *farm.Farm, c farm.Component, err error) *FarmError {
	var fe *FarmError
	if errors.As(err, &fe) {
		return fe
	}
	out := &FarmError{Kind: classify(err), Err: err}
	if f != nil {
		out.FarmID = f.ID
		out.FarmName = f.Name
	}
	if c != nil {
		out.ComponentID = c.ID()
		out.ComponentType = c.Type()
	}
	return out
}
