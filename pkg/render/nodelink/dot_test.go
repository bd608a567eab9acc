package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/soup/pkg/dag"
	"github.com/matzehuels/soup/pkg/deps"
	"github.com/matzehuels/soup/pkg/fsys"
	"github.com/matzehuels/soup/pkg/provider"
)

func sample() *dag.Graph {
	return &dag.Graph{
		Levels: []dag.Level{
			{{ID: 1, Name: "App", Children: []int{2, 3}}},
			{{ID: 2, Name: "Json"}},
		},
		Failed: []int{3},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		"{ rank=same; n1; }",
		"{ rank=same; n2; }",
		`n1 [label="App"];`,
		`n2 [label="Json"];`,
		`n3 [label="#3 (unresolved)", style="rounded,dashed", fontcolor=grey];`,
		"n1 -> n2;",
		"n1 -> n3 [style=dashed];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT should end with closing brace")
	}
}

func TestToDOTDetailed(t *testing.T) {
	fs := fsys.NewMemory("/home/user")
	fs.AddFile("/w/App/Recipe.sml", `Name: "App"
Language: "C++"
Version: "1.2"
Dependencies: { Build: [ "C#|Tool@1" ] }
`)
	fs.AddFile("/home/user/.soup/packages/C#/Tool/1/Recipe.sml", "Name: \"Tool\"\nLanguage: \"C#\"\n")
	res, err := deps.NewBuilder(fs, deps.Options{}).Build(context.Background(), "/w/App/Recipe.sml")
	if err != nil {
		t.Fatal(err)
	}
	p, err := provider.FromResolution(res)
	if err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(res.Graph, Options{Detailed: true, Provider: p})
	for _, want := range []string{
		`n1 [label="App\nC++\nv1.2"];`,
		`n2 [label="Tool\nC#", fillcolor=lightblue];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rewrites tag",
			in:   `<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.25"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.25" width="100" height="200"><g/></svg>`,
		},
		{
			name: "no viewBox",
			in:   `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "zero size",
			in:   `<svg viewBox="0 0 0 0"></svg>`,
			want: `<svg viewBox="0 0 0 0"></svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "App") {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}
