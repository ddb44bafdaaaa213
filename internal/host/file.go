package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alexiusacademia/gotno/internal/diagram"
	"github.com/alexiusacademia/gotno/internal/geom"
	"github.com/alexiusacademia/gotno/internal/report"
)

// FileHost serves selections from <Dir>/<name>.json and draws scenes into
// OutDir. A selection file holds either one item or an array of items.
type FileHost struct {
	Dir    string
	OutDir string // defaults to Dir
	Format string // report format, yaml (default) or json
}

// NewFileHost creates a file host reading from dir
func NewFileHost(dir string) *FileHost {
	return &FileHost{Dir: dir, OutDir: dir, Format: "yaml"}
}

// read decodes the selection file into out, accepting a single item
func (h *FileHost) read(ctx context.Context, name string, out any, single func([]byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(h.Dir, name+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return &SelectionError{Name: name, Err: ErrNoSelection}
	}
	if err != nil {
		return &SelectionError{Name: name, Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, out)
	} else {
		err = single(data)
	}
	if err != nil {
		return &SelectionError{Name: name, Err: err}
	}
	return nil
}

// SelectPoints reads the points stored under name
func (h *FileHost) SelectPoints(ctx context.Context, name string) ([]geom.Point, error) {
	var pts []geom.Point
	err := h.read(ctx, name, &pts, func(data []byte) error {
		var p geom.Point
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		pts = append(pts, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return nil, &SelectionError{Name: name, Err: ErrNoSelection}
	}
	return pts, nil
}

// SelectLines reads the lines stored under name
func (h *FileHost) SelectLines(ctx context.Context, name string) ([]geom.Line, error) {
	var lines []geom.Line
	err := h.read(ctx, name, &lines, func(data []byte) error {
		var l geom.Line
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &SelectionError{Name: name, Err: ErrNoSelection}
	}
	return lines, nil
}

// SelectMeshes reads the meshes stored under name and validates them
func (h *FileHost) SelectMeshes(ctx context.Context, name string) ([]*geom.Mesh, error) {
	var meshes []*geom.Mesh
	err := h.read(ctx, name, &meshes, func(data []byte) error {
		var m geom.Mesh
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		meshes = append(meshes, &m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(meshes) == 0 {
		return nil, &SelectionError{Name: name, Err: ErrNoSelection}
	}
	for i, m := range meshes {
		if err := m.Validate(); err != nil {
			return nil, &SelectionError{Name: name, Err: fmt.Errorf("mesh %d: %w", i, err)}
		}
	}
	return meshes, nil
}

// Draw writes the thrust network as JSON, its elevation and plan images
// and, when the scene carries its shape and optimiser, a report
func (h *FileHost) Draw(ctx context.Context, scene Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if scene.Form == nil || scene.Result == nil {
		return fmt.Errorf("scene %q has no result to draw", scene.Name)
	}
	out := h.OutDir
	if out == "" {
		out = h.Dir
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}
	base := filepath.Join(out, scene.Name)

	if err := scene.Form.SaveToFile(base + "_network.json"); err != nil {
		return err
	}
	data := diagram.NewNetworkData(scene.Name, scene.Form, scene.Result)
	if err := diagram.ExportElevation(data, base+"_elevation.png"); err != nil {
		return err
	}
	if err := diagram.ExportPlan(data, base+"_plan.png"); err != nil {
		return err
	}
	if scene.Optimiser == nil || scene.Shape == nil {
		return nil
	}
	format := h.Format
	if format == "" {
		format = "yaml"
	}
	r := report.New(scene.Name, scene.Form, scene.Shape, scene.Optimiser, scene.Result)
	return r.SaveToFile(base + "_report." + format)
}
