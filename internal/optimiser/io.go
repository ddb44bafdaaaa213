package optimiser

import (
	"encoding/json"
	"os"
)

// LoadFromFile loads an optimiser configuration from a JSON file
func LoadFromFile(filepath string) (*Optimiser, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return FromData(data)
}

// FromData decodes and validates a JSON optimiser. Missing settings take
// their defaults.
func FromData(data []byte) (*Optimiser, error) {
	o := &Optimiser{Solver: AugLagBFGS, Settings: DefaultSettings()}
	if err := json.Unmarshal(data, o); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// SaveToFile writes the optimiser as JSON
func (o *Optimiser) SaveToFile(filepath string) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}
