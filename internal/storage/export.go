package storage

import (
	"encoding/json"
	"io"
	"math"
)

// ExportJSON writes a run's metadata and trajectory as one JSON document.
// JSON has no NaN, so non-finite values are written as null.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := struct {
		RunMetadata
		Times  []float64    `json:"times"`
		States [][]*float64 `json:"states"`
	}{
		RunMetadata: *meta,
		Times:       times,
		States:      make([][]*float64, len(states)),
	}
	for i, st := range states {
		row := make([]*float64, len(st))
		for j := range st {
			if !math.IsNaN(st[j]) && !math.IsInf(st[j], 0) {
				row[j] = &st[j]
			}
		}
		data.States[i] = row
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
