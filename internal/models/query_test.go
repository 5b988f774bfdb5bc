package models

import (
	"testing"
)

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *SearchRequest
		wantErr bool
	}{
		{"empty vector", &SearchRequest{Config: &SearchConfig{Num: 1}}, true},
		{"missing config", &SearchRequest{Vector: []float32{1}}, true},
		{"negative epsilon", &SearchRequest{Vector: []float32{1}, Config: &SearchConfig{Epsilon: -0.1}}, true},
		{"valid", &SearchRequest{Vector: []float32{1}, Config: &SearchConfig{Num: 10, Epsilon: 0.1}}, false},
		{"zero num is allowed", &SearchRequest{Vector: []float32{1}, Config: &SearchConfig{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInsertRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *InsertRequest
		wantErr bool
	}{
		{"missing object", &InsertRequest{}, true},
		{"missing id", &InsertRequest{Vector: &Object{Vector: []float32{1}}}, true},
		{"empty vector", &InsertRequest{Vector: &Object{ID: "a"}}, true},
		{"valid", &InsertRequest{Vector: &Object{ID: "a", Vector: []float32{1, 2}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
