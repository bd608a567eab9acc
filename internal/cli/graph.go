package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/soup/pkg/io"
	"github.com/matzehuels/soup/pkg/pipeline"
	"github.com/matzehuels/soup/pkg/provider"
	"github.com/matzehuels/soup/pkg/render/nodelink"
)

// Output formats of the graph command.
const (
	formatTable    = "table"
	formatJSON     = "json"
	formatLevels   = "levels"
	formatSnapshot = "snapshot"
	formatDOT      = "dot"
	formatSVG      = "svg"
)

// resolveFlags are the run flags shared by commands that resolve a recipe.
type resolveFlags struct {
	refresh bool
	noCache bool
	strict  bool
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	addResolveFlags(cmd)
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached snapshots")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the snapshot cache")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "exit with an error when any manifest fails to load")
}

type graphOptions struct {
	resolveFlags
	format   string
	output   string
	detailed bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOptions

	cmd := &cobra.Command{
		Use:   "graph [recipe]",
		Short: "Resolve a recipe and print its dependency levels",
		Long: `Resolve a recipe and print its dependency levels.

The recipe argument is a Recipe.sml file or a directory containing one;
it defaults to the current directory. Manifests that fail to load are
reported as warnings and left out of the graph.`,
		Example: `  soup graph
  soup graph ./App --format dot -o app.dot
  soup graph App/Recipe.sml --format svg --detailed -o app.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: table, json, levels, snapshot, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include language and version in dot and svg labels")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, args []string, opts graphOptions) error {
	switch opts.format {
	case formatTable, formatJSON, formatLevels, formatSnapshot, formatDOT, formatSVG:
	default:
		return fmt.Errorf("unknown format %q (want table, json, levels, snapshot, dot or svg)", opts.format)
	}

	// A cancelled run still yields the levels resolved so far.
	res, resolveErr := c.resolve(cmd, args, opts.resolveFlags)
	if res == nil {
		return resolveErr
	}
	snap := res.Snapshot

	data, err := encodeGraph(cmd, snap, opts)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.output, data); err != nil {
		return err
	}
	if opts.format == formatTable && opts.output == "" {
		printStats(cmd.OutOrStdout(), res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.Depth, res.CacheHit)
	}
	if opts.output != "" {
		printSuccess(cmd.OutOrStdout(), "Wrote %s graph", opts.format)
		printFile(cmd.OutOrStdout(), opts.output)
	}

	if err := checkNotifications(cmd.ErrOrStderr(), snap, opts.strict); err != nil {
		return err
	}
	return resolveErr
}

// resolve loads the config and runs the pipeline for the recipe argument.
// On cancellation it may return a truncated result together with the error.
func (c *CLI) resolve(cmd *cobra.Command, args []string, flags resolveFlags) (*pipeline.Result, error) {
	cfg, _, err := c.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	root, err := recipePath(args)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	// The spinner would interleave with debug output.
	if c.Logger.GetLevel() > LogDebug {
		spin := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Resolving dependencies...")
		spin.Start()
		defer spin.Stop()
	}
	return runner.Resolve(ctx, c.pipelineOptions(cfg, root, flags.refresh))
}

func encodeGraph(cmd *cobra.Command, snap *provider.Snapshot, opts graphOptions) ([]byte, error) {
	var buf bytes.Buffer
	switch opts.format {
	case formatTable:
		fmt.Fprintln(&buf, levelsTable(snap).Render())
	case formatJSON:
		if err := pkgio.WriteJSON(snap.Graph, &buf); err != nil {
			return nil, err
		}
	case formatLevels:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap.Graph); err != nil {
			return nil, err
		}
	case formatSnapshot:
		if err := pkgio.WriteSnapshot(snap, &buf); err != nil {
			return nil, err
		}
	case formatDOT:
		buf.WriteString(nodelink.ToDOT(snap.Graph, nodelink.Options{Detailed: opts.detailed, Provider: snap.Provider}))
	case formatSVG:
		dot := nodelink.ToDOT(snap.Graph, nodelink.Options{Detailed: opts.detailed, Provider: snap.Provider})
		svg, err := nodelink.RenderSVG(cmd.Context(), dot)
		if err != nil {
			return nil, err
		}
		buf.Write(svg)
	}
	return buf.Bytes(), nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// checkNotifications prints one warning per failed manifest. With strict
// set, any failure is an error.
func checkNotifications(w io.Writer, snap *provider.Snapshot, strict bool) error {
	for _, n := range snap.Notifications {
		printWarning(w, "%s: %s", n.Path, n.Message)
	}
	if snap.Truncated {
		printWarning(w, "resolution stopped early; the graph is incomplete")
	}
	if strict && len(snap.Notifications) > 0 {
		return fmt.Errorf("%d manifest(s) failed to load", len(snap.Notifications))
	}
	return nil
}
