package io

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/soup/pkg/dag"
	"github.com/matzehuels/soup/pkg/deps"
	"github.com/matzehuels/soup/pkg/fsys"
	"github.com/matzehuels/soup/pkg/provider"
)

func sampleGraph() *dag.Graph {
	return &dag.Graph{
		Levels: []dag.Level{
			{{ID: 1, Name: "App", Children: []int{2, 3, 4}}},
			{{ID: 2, Name: "Json", Children: []int{5}}, {ID: 3, Name: "Log"}},
			{{ID: 5, Name: "Util"}},
		},
		Failed: []int{4},
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := sampleGraph()

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if diff := cmp.Diff(g, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(sampleGraph(), path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if diff := cmp.Diff(sampleGraph(), got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteJSONFormat(t *testing.T) {
	g := &dag.Graph{Levels: []dag.Level{
		{{ID: 1, Name: "App", Children: []int{2}}},
		{{ID: 2, Name: "Json"}},
	}}
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatal(err)
	}
	want := `{
  "nodes": [
    {
      "id": 1,
      "name": "App",
      "level": 0
    },
    {
      "id": 2,
      "name": "Json",
      "level": 1
    }
  ],
  "edges": [
    {
      "from": 1,
      "to": 2
    }
  ]
}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("format mismatch (-want +got):\n%s", diff)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "malformed",
			input: `{"nodes": [`,
		},
		{
			name:  "skipped level",
			input: `{"nodes": [{"id": 1, "level": 0}, {"id": 2, "level": 2}], "edges": []}`,
		},
		{
			name:  "unknown source",
			input: `{"nodes": [{"id": 1, "level": 0}], "edges": [{"from": 7, "to": 1}]}`,
		},
		{
			name:    "unknown child",
			input:   `{"nodes": [{"id": 1, "level": 0}], "edges": [{"from": 1, "to": 2}]}`,
			wantErr: dag.ErrUnknownChild,
		},
		{
			name:    "two roots",
			input:   `{"nodes": [{"id": 1, "level": 0}, {"id": 2, "level": 0}], "edges": []}`,
			wantErr: dag.ErrNoRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	fs := fsys.NewMemory("/home/user")
	fs.AddFile("/w/App/Recipe.sml", `Name: "App"
Language: "C++"
Dependencies: {
	Runtime: [ "../Json", "../Missing" ]
}
`)
	fs.AddFile("/w/Json/Recipe.sml", "Name: \"Json\"\nLanguage: \"C++\"\n")

	res, err := deps.NewBuilder(fs, deps.Options{}).Build(context.Background(), "/w/App/Recipe.sml")
	if err != nil {
		t.Fatal(err)
	}
	snap, err := provider.NewSnapshot("/w/App/Recipe.sml", res)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(snap, &buf); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	got, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}

	opts := cmp.Options{cmp.AllowUnexported(provider.Provider{}), cmpopts.EquateEmpty()}
	if diff := cmp.Diff(snap, got, opts); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSnapshotErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{`},
		{"no provider", `{"id": "x", "graph": {"levels": []}}`},
		{"no graph", `{"id": "x", "provider": {"root_package_graph_id": 1, "graphs": [{"id": 1, "root_package_id": 1}], "packages": [{"id": 1}]}}`},
		{"invalid graph", `{"graph": {"levels": [[{"id": 1}, {"id": 2}]]}, "provider": {"root_package_graph_id": 1, "graphs": [{"id": 1, "root_package_id": 1}], "packages": [{"id": 1}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSnapshot(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
