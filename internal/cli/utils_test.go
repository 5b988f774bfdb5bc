package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/vecagent/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		RequestID: "req-1",
		Results: []*models.Distance{
			{ID: "doc-1", Distance: 0},
			{ID: "", Distance: 1.5},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RequestID != "req-1" || len(decoded.Results) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Found 2 results", "req-1", "doc-1", "<unresolved>", "1.500000"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	want := "doc-1\t0.000000\n<unresolved>\t1.500000\n"
	if buf.String() != want {
		t.Errorf("compact output = %q, want %q", buf.String(), want)
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "compact"} {
		if _, err := ParseOutputFormat(s); err != nil {
			t.Errorf("ParseOutputFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseVector(t *testing.T) {
	tests := []struct {
		in      string
		want    []float32
		wantErr bool
	}{
		{"1,0,-0.5", []float32{1, 0, -0.5}, false},
		{" 2 , 3 ", []float32{2, 3}, false},
		{"", nil, true},
		{"1,,2", nil, true},
		{"1,x", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseVector(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVector(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseVector(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseVector(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"", 5, ""},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		got := Truncate(tt.s, tt.maxLen)
		if got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestReadObjects(t *testing.T) {
	in := `{"id":"a","vector":[1,0]}

{"id":"b","vector":[0,1]}
`
	objs, err := ReadObjects(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 2 || objs[0].ID != "a" || objs[1].Vector[1] != 1 {
		t.Errorf("ReadObjects = %+v", objs)
	}
	if _, err := ReadObjects(strings.NewReader("{bad\n")); err == nil {
		t.Error("expected error for malformed line")
	}
}
