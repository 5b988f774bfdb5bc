package models

import "fmt"

// SearchConfig holds per-query search parameters.
type SearchConfig struct {
	RequestID string  `json:"request_id,omitempty"`
	Num       uint32  `json:"num"`
	Epsilon   float32 `json:"epsilon"`
}

// SearchRequest is a nearest neighbor query.
type SearchRequest struct {
	Vector []float32     `json:"vector"`
	Config *SearchConfig `json:"config"`
}

// Validate ensures the request has a query vector and a config.
// Epsilon must not be negative.
func (r *SearchRequest) Validate() error {
	if len(r.Vector) == 0 {
		return fmt.Errorf("vector cannot be empty")
	}
	if r.Config == nil {
		return fmt.Errorf("config is required")
	}
	if r.Config.Epsilon < 0 {
		return fmt.Errorf("epsilon must not be negative")
	}
	return nil
}
