package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aarforge/aarforge/pkg/cache"
	"github.com/aarforge/aarforge/pkg/export"
	"github.com/aarforge/aarforge/pkg/observability"
)

const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"

	// renderTTL bounds how long cached render artifacts stay valid.
	renderTTL = 7 * 24 * time.Hour
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output      string // output file path (empty writes to stdout)
	format      string // output format: "json", "dot", "svg"
	detailed    bool   // include rule kinds in DOT/SVG labels
	noCache     bool   // disable render caching
	interactive bool   // browse the rule graph in a TUI instead of writing output
	save        bool   // persist a snapshot of the graph
}

// graphCommand creates the graph command for exporting the expanded rule graph.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: formatJSON}

	cmd := &cobra.Command{
		Use:   "graph [build file] [//target]",
		Short: "Export the expanded rule graph as JSON, DOT or SVG",
		Long: `Export the expanded rule graph as JSON, DOT or SVG.

The graph command runs the same expansion as 'enhance', then serializes the
complete rule graph. JSON carries the full node and edge list, DOT is the
Graphviz source, and SVG is a rendered diagram where generated rules appear
dashed.

An optional second argument restricts the graph to a single android_aar
target. SVG renders are cached locally for faster subsequent runs.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			only := ""
			if len(args) == 2 {
				only = args[1]
			}
			return c.runGraph(cmd.Context(), args[0], only, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: derived from the build file for svg, stdout otherwise)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json (default), dot, svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include rule kinds in DOT/SVG labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable render caching")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the rule graph interactively")
	cmd.Flags().BoolVar(&opts.save, "save", false, "persist a snapshot of the graph (requires "+mongoURIEnv+")")

	return cmd
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatJSON: true, formatDOT: true, formatSVG: true}

// validateFormat checks that the requested format is supported.
func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'json', 'dot', or 'svg')", f)
	}
	return nil
}

// runGraph expands the build file and writes the graph in the requested format.
func (c *CLI) runGraph(ctx context.Context, input, only string, opts *graphOpts) error {
	reg, _, err := c.loadAndEnhance(ctx, input, only)
	if err != nil {
		return err
	}
	g := export.FromRegistry(reg)

	if opts.save {
		store, err := c.openSnapshotStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		snap := export.NewSnapshot(input, g)
		if err := store.Save(ctx, snap); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		printSuccess("Saved snapshot %s", StyleHighlight.Render(snap.ID))
	}

	if opts.interactive {
		model := NewRuleListModel(g)
		_, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
		return err
	}

	data, cached, err := c.renderGraph(ctx, g, opts)
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" && opts.format == formatSVG {
		path = outputPath("", input, formatSVG)
	}
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Exported rule graph")
	printFile(path)
	printStats(len(g.Nodes), len(g.Edges), cached)
	return nil
}

// renderGraph serializes the graph in the requested format. SVG renders are
// looked up in the render cache first, keyed by the DOT source and options.
func (c *CLI) renderGraph(ctx context.Context, g export.Graph, opts *graphOpts) (data []byte, cached bool, err error) {
	observability.Enhancer().OnExportStart(ctx, opts.format)
	start := time.Now()
	defer func() {
		observability.Enhancer().OnExportComplete(ctx, opts.format, time.Since(start), err)
	}()

	switch opts.format {
	case formatJSON:
		data, err = g.Marshal()
		return data, false, err
	case formatDOT:
		return []byte(export.ToDOT(g, export.DOTOptions{Detailed: opts.detailed})), false, nil
	case formatSVG:
		dot := export.ToDOT(g, export.DOTOptions{Detailed: opts.detailed})
		store := newRenderCache(ctx, opts.noCache)
		defer store.Close()

		keyer := cache.NewDefaultKeyer()
		key := keyer.RenderKey(cache.Hash([]byte(dot)), cache.RenderKeyOpts{
			Format:   formatSVG,
			Detailed: opts.detailed,
		})
		if data, ok, err := store.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "render")
			c.Logger.Debugf("Render cache hit for %s", key)
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")

		spinner := newSpinnerWithContext(ctx, "Rendering SVG...")
		spinner.Start()
		data, err = export.RenderSVG(dot)
		spinner.Stop()
		if err != nil {
			return nil, false, err
		}
		if err := store.Set(ctx, key, data, renderTTL); err != nil {
			c.Logger.Debugf("Render cache store failed: %v", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "render", len(data))
		}
		return data, false, nil
	default:
		return nil, false, fmt.Errorf("unknown format: %s", opts.format)
	}
}

// outputPath derives the output file path from the output flag, the input
// file, and the format. An explicit output wins; otherwise the input's
// extension is replaced with the format.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
