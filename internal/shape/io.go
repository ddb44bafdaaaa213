package shape

import (
	"encoding/json"
	"os"
)

// LoadFromFile loads a shape definition from a JSON file
func LoadFromFile(filepath string) (*Shape, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return FromData(data)
}

// FromData decodes and validates a JSON shape
func FromData(data []byte) (*Shape, error) {
	var s Shape
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Density <= 0 {
		s.Density = DefaultDensity
	}
	if err := s.Validate(nil); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveToFile writes the shape as JSON
func (s *Shape) SaveToFile(filepath string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}
