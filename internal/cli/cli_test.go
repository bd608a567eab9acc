package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/soup/internal/config"
	pkgio "github.com/matzehuels/soup/pkg/io"
	"github.com/matzehuels/soup/pkg/observability"
	"github.com/matzehuels/soup/pkg/provider"
	"github.com/matzehuels/soup/pkg/recipe"
)

const appRecipe = `# application manifest
Name: "App"
Language: "C++"
Version: "1.0.0"
Dependencies: {
	Runtime: [ "../Json", "../Missing" ]
}
`

// workspace writes App and Json manifests into a temp dir. App also refers
// to a Missing package that has no manifest.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "App", recipe.RecipeFileName), appRecipe)
	writeFile(t, filepath.Join(dir, "Json", recipe.RecipeFileName), "Name: \"Json\"\nLanguage: \"C++\"\n")
	return dir
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

// execute runs the root command with dir as both working and profile
// directory, so config files and the file cache stay inside the test.
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	c.workDir, c.profileDir = dir, dir
	root := c.RootCommand()

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGraphTable(t *testing.T) {
	dir := workspace(t)
	out, errOut, err := execute(t, dir, "graph", filepath.Join(dir, "App"))
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	for _, want := range []string{"App", "Json", "(unresolved)", "2 nodes", "1 edges", "2 levels", "fresh"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(errOut, filepath.Join(dir, "Missing")) {
		t.Errorf("expected a warning for the missing manifest, got:\n%s", errOut)
	}

	out, _, err = execute(t, dir, "graph", filepath.Join(dir, "App"))
	if err != nil {
		t.Fatalf("second graph: %v", err)
	}
	if !strings.Contains(out, "cached") {
		t.Errorf("second run should be served from the cache:\n%s", out)
	}
}

func TestGraphStrict(t *testing.T) {
	dir := workspace(t)
	_, _, err := execute(t, dir, "graph", filepath.Join(dir, "App"), "--strict", "--no-cache")
	if err == nil || !strings.Contains(err.Error(), "1 manifest(s) failed") {
		t.Fatalf("graph --strict error = %v", err)
	}
}

func TestGraphJSON(t *testing.T) {
	dir := workspace(t)
	out, _, err := execute(t, dir, "graph", filepath.Join(dir, "App", recipe.RecipeFileName), "--format", "json", "--no-cache")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	g, err := pkgio.ReadJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got := g.NodeCount(); got != 2 {
		t.Errorf("NodeCount() = %d, want 2", got)
	}
	if diff := cmp.Diff([]int{3}, g.Failed); diff != "" {
		t.Errorf("Failed mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphDOTToFile(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "app.dot")
	out, _, err := execute(t, dir, "graph", filepath.Join(dir, "App"), "--format", "dot", "-o", path, "--no-cache")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output should name the written file:\n%s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("dot output should start with digraph, got:\n%s", data)
	}
}

func TestGraphUnknownFormat(t *testing.T) {
	dir := workspace(t)
	if _, _, err := execute(t, dir, "graph", filepath.Join(dir, "App"), "--format", "png"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestGraphRootFailure(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := execute(t, dir, "graph", filepath.Join(dir, "Nope")); err == nil {
		t.Fatal("expected error for a missing root manifest")
	}
}

func TestGraphFlagsApply(t *testing.T) {
	dir := workspace(t)
	if _, _, err := execute(t, dir, "graph", filepath.Join(dir, "App"), "--workers", "0"); err == nil {
		t.Fatal("expected --workers 0 to fail validation")
	}
}

// cancelOnLevel cancels a context once the first level has been logged.
type cancelOnLevel struct {
	cancel context.CancelFunc
}

func (w cancelOnLevel) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("level resolved")) && bytes.Contains(p, []byte("level=0")) {
		w.cancel()
	}
	return len(p), nil
}

func TestGraphCancelledPrintsPartialGraph(t *testing.T) {
	dir := workspace(t)
	t.Cleanup(observability.Reset)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(&cancelOnLevel{cancel: cancel}, LogDebug)
	c.workDir, c.profileDir = dir, dir
	root := c.RootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"graph", filepath.Join(dir, "App"), "--no-cache"})

	err := root.ExecuteContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("graph error = %v, want context.Canceled", err)
	}
	if out := stdout.String(); !strings.Contains(out, "App") || strings.Contains(out, "Json") {
		t.Errorf("output should hold the root level only:\n%s", out)
	}
	if !strings.Contains(stderr.String(), "resolution stopped early") {
		t.Errorf("expected a truncation warning, got:\n%s", stderr.String())
	}
}

func TestResolveFlagUsage(t *testing.T) {
	cmd := New(io.Discard, LogInfo).graphCommand()
	usage := cmd.Flags().Lookup("allow-cycles").Usage
	if !strings.Contains(usage, "expand cyclic references") || !strings.Contains(usage, "--max-depth") {
		t.Errorf("allow-cycles usage = %q", usage)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := &config.Config{Workers: 2, MaxDepth: 3, MaxNodes: 4, AllowCycles: true, PackagesRoot: "/p"}
	c := New(io.Discard, LogInfo)
	got := c.pipelineOptions(cfg, "/w/Recipe.sml", true)
	if got.Workers != 2 || got.MaxDepth != 3 || got.MaxNodes != 4 || !got.AllowCycles || got.PackagesRoot != "/p" {
		t.Errorf("pipelineOptions() = %+v", got)
	}
	if got.RootPath != "/w/Recipe.sml" || !got.Refresh || got.TTL != cfg.CacheTTL() {
		t.Errorf("pipelineOptions() = %+v", got)
	}
}

func TestPackages(t *testing.T) {
	dir := workspace(t)
	out, _, err := execute(t, dir, "packages", filepath.Join(dir, "App"), "--no-cache")
	if err != nil {
		t.Fatalf("packages: %v", err)
	}
	for _, want := range []string{"App", "Json", "C++", "1.0.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, _, err = execute(t, dir, "packages", filepath.Join(dir, "App"), "--id", "1", "--json", "--no-cache")
	if err != nil {
		t.Fatalf("packages --id: %v", err)
	}
	var info provider.PackageInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if info.Name != "App" || info.Version != "1.0.0" || len(info.Dependencies[recipe.Runtime]) != 1 {
		t.Errorf("unexpected package: %+v", info)
	}

	if _, _, err := execute(t, dir, "packages", filepath.Join(dir, "App"), "--id", "99", "--no-cache"); err == nil {
		t.Error("expected error for unknown package id")
	}
}

func TestRecipeShow(t *testing.T) {
	dir := workspace(t)
	out, _, err := execute(t, dir, "recipe", "show", filepath.Join(dir, "App"))
	if err != nil {
		t.Fatalf("recipe show: %v", err)
	}
	for _, want := range []string{"App", "C++", "1.0.0", "Runtime", "../Json", "../Missing"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRecipeAdd(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		category string
		want     string
	}{
		{name: "runtime by default", args: []string{"../Util"}, category: recipe.Runtime, want: "../Util"},
		{name: "build", args: []string{"C#|Tool@0.4.1", "--category", "Build"}, category: recipe.Build, want: "C#|Tool@0.4.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := workspace(t)
			path := filepath.Join(dir, "App", recipe.RecipeFileName)
			args := append([]string{"recipe", "add"}, tt.args...)
			args = append(args, "--recipe", path)
			if _, _, err := execute(t, dir, args...); err != nil {
				t.Fatalf("recipe add: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(string(data), "# application manifest\n") {
				t.Errorf("leading comment was not preserved:\n%s", data)
			}
			rec, err := recipe.Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			refs, err := rec.NamedDependencies(tt.category)
			if err != nil {
				t.Fatal(err)
			}
			if got := refs[len(refs)-1].String(); got != tt.want {
				t.Errorf("last %s dependency = %q, want %q", tt.category, got, tt.want)
			}
		})
	}
}

func TestRecipeAddRejects(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "App", recipe.RecipeFileName)
	if _, _, err := execute(t, dir, "recipe", "add", "../Util", "--category", "Docs", "--recipe", path); err == nil {
		t.Error("expected error for unknown category")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != appRecipe {
		t.Errorf("rejected add should leave the file unchanged:\n%s", data)
	}
}

func TestRecipeFmtCheck(t *testing.T) {
	dir := workspace(t)
	out, _, err := execute(t, dir, "recipe", "fmt", "--check", filepath.Join(dir, "App"))
	if err != nil {
		t.Fatalf("recipe fmt --check: %v", err)
	}
	if !strings.Contains(out, "round-trips unchanged") {
		t.Errorf("unexpected output:\n%s", out)
	}

	writeFile(t, filepath.Join(dir, "Bad", recipe.RecipeFileName), "Name: \"Bad\"\nLanguage: [\n")
	if _, _, err := execute(t, dir, "recipe", "fmt", "--check", filepath.Join(dir, "Bad")); err == nil {
		t.Error("expected error for an unparsable recipe")
	}
}

func TestCachePathAndClear(t *testing.T) {
	dir := workspace(t)

	out, _, err := execute(t, dir, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	cacheDir := filepath.Join(dir, ".soup", "cache")
	if got := strings.TrimSpace(out); got != cacheDir {
		t.Errorf("cache path = %q, want %q", got, cacheDir)
	}

	if _, _, err := execute(t, dir, "graph", filepath.Join(dir, "App")); err != nil {
		t.Fatalf("graph: %v", err)
	}
	out, _, err = execute(t, dir, "cache", "clear", filepath.Join(dir, "App"))
	if err != nil {
		t.Fatalf("cache clear recipe: %v", err)
	}
	if !strings.Contains(out, "Removed cached snapshot") {
		t.Errorf("unexpected output:\n%s", out)
	}
	out, _, err = execute(t, dir, "graph", filepath.Join(dir, "App"))
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(out, "fresh") {
		t.Errorf("graph after invalidation should resolve afresh:\n%s", out)
	}

	out, _, err = execute(t, dir, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, cacheDir) {
		t.Errorf("clear should name the cache directory:\n%s", out)
	}
}

func TestCacheClearDisabled(t *testing.T) {
	dir := workspace(t)
	t.Setenv("SOUP_CACHE__BACKEND", "none")
	out, _, err := execute(t, dir, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "disabled") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConfigShow(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, "soup.toml"), "max_depth = 7\n")

	out, errOut, err := execute(t, dir, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "max_depth = 7") {
		t.Errorf("config file value missing:\n%s", out)
	}
	if !strings.Contains(errOut, filepath.Join(dir, "soup.toml")) {
		t.Errorf("stderr should name the config file:\n%s", errOut)
	}

	out, _, err = execute(t, dir, "config", "show", "--format", "yaml")
	if err != nil {
		t.Fatalf("config show yaml: %v", err)
	}
	if !strings.Contains(out, "max_depth: 7") {
		t.Errorf("yaml output missing max_depth:\n%s", out)
	}

	if _, _, err := execute(t, dir, "config", "show", "--format", "ini"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCompletion(t *testing.T) {
	out, _, err := execute(t, t.TempDir(), "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
}

func TestRecipePath(t *testing.T) {
	dir := workspace(t)
	app := filepath.Join(dir, "App")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "directory", args: []string{app}, want: filepath.Join(app, recipe.RecipeFileName)},
		{name: "file", args: []string{filepath.Join(app, recipe.RecipeFileName)}, want: filepath.Join(app, recipe.RecipeFileName)},
		{name: "missing path kept", args: []string{filepath.Join(dir, "x.sml")}, want: filepath.Join(dir, "x.sml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := recipePath(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("recipePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategoryOrder(t *testing.T) {
	deps := map[string][]provider.PackageChildInfo{
		"Runtime": nil,
		"Extra":   nil,
		"Build":   nil,
	}
	want := []string{"Build", "Test", "Runtime", "Extra"}
	if diff := cmp.Diff(want, categoryOrder(deps)); diff != "" {
		t.Errorf("categoryOrder mismatch (-want +got):\n%s", diff)
	}
}
