package form

import (
	"encoding/json"
	"os"
)

// LoadFromFile loads a form diagram from a JSON file
func LoadFromFile(filepath string) (*Diagram, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return FromData(data)
}

// FromData decodes and validates a JSON form diagram
func FromData(data []byte) (*Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveToFile writes the form diagram as JSON
func (d *Diagram) SaveToFile(filepath string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

// Copy returns a deep copy of the diagram
func (d *Diagram) Copy() *Diagram {
	out := &Diagram{
		Name:  d.Name,
		Nodes: append([]Node(nil), d.Nodes...),
		Edges: append([]Edge(nil), d.Edges...),
	}
	if d.Params != nil {
		out.Params = make(map[string]float64, len(d.Params))
		for k, v := range d.Params {
			out.Params[k] = v
		}
	}
	return out
}
