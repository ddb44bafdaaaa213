// Package host abstracts the application that supplies geometry and shows
// results. Analyses ask a Host for named point, line and mesh selections
// and hand back a Scene to draw; they never talk to a CAD program
// directly.
package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexiusacademia/gotno/internal/analysis"
	"github.com/alexiusacademia/gotno/internal/form"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/alexiusacademia/gotno/internal/shape"
)

// ErrNoSelection is returned when a host has nothing under the asked name
var ErrNoSelection = errors.New("nothing selected")

// SelectionError names the selection that could not be served
type SelectionError struct {
	Name string
	Err  error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selection %q: %v", e.Name, e.Err)
}

func (e *SelectionError) Unwrap() error { return e.Err }

// Scene is what an analysis gives back to the host
type Scene struct {
	Name      string
	Form      *form.Diagram // thrust network at the solved heights
	Shape     *shape.Shape
	Optimiser *optimiser.Optimiser
	Result    *analysis.Result
}

// Host is the capability set an interactive or file based front end offers.
// An empty selection may be returned as an empty slice or as ErrNoSelection.
type Host interface {
	SelectPoints(ctx context.Context, name string) ([]geom.Point, error)
	SelectLines(ctx context.Context, name string) ([]geom.Line, error)
	SelectMeshes(ctx context.Context, name string) ([]*geom.Mesh, error)
	Draw(ctx context.Context, scene Scene) error
}
