package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aarforge/aarforge/pkg/android"
	"github.com/aarforge/aarforge/pkg/buildfile"
	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/export"
	"github.com/aarforge/aarforge/pkg/rules"
)

// enhanceCommand creates the enhance command.
func (c *CLI) enhanceCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "enhance [build file] [//target]",
		Short: "Expand android_aar rules in a build file",
		Long: `Expand android_aar rules in a build file.

The enhance command parses the build file, instantiates the declared source
rules, and runs graph enhancement for each android_aar declaration. Each
enhancement generates the manifest, asset-assembly, resource-merge,
composite-resource and (when requested) build-config and native-library
sub-rules, then registers them together with the final AAR rule.

An optional second argument restricts enhancement to a single android_aar
target. The command prints a rule-graph summary; use 'graph' to export or
render it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			only := ""
			if len(args) == 2 {
				only = args[1]
			}
			return c.runEnhance(cmd.Context(), args[0], only, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the expanded rule graph as JSON instead of a summary")

	return cmd
}

// runEnhance expands the build file and prints a per-AAR summary.
func (c *CLI) runEnhance(ctx context.Context, path, only string, asJSON bool) error {
	reg, enhs, err := c.loadAndEnhance(ctx, path, only)
	if err != nil {
		return err
	}

	g := export.FromRegistry(reg)
	if asJSON {
		data, err := g.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	for _, enh := range enhs {
		printSuccess("Enhanced %s", StyleHighlight.Render(enh.Aar.RuleTarget().String()))
		printDetail("%d generated rules", enh.Batch.Len())
	}
	printStats(len(g.Nodes), len(g.Edges), false)
	printNextStep("Render the rule graph", fmt.Sprintf("aarforge graph %s --format svg", path))
	return nil
}

// loadAndEnhance runs the full pipeline: parse the build file, instantiate
// source rules, and enhance the android_aar declarations (all of them, or
// just the one named by only). The returned registry holds the source rules
// plus every committed enhancement batch.
func (c *CLI) loadAndEnhance(ctx context.Context, path, only string) (*rules.Registry, []*android.Enhancement, error) {
	runID := uuid.NewString()
	c.Logger.Debugf("Enhancement run %s: %s", runID, path)
	prog := newProgress(c.Logger)

	f, err := buildfile.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	reg := rules.NewRegistry()
	if err := f.Instantiate(reg); err != nil {
		return nil, nil, err
	}
	c.Logger.Debugf("Instantiated %d source rules from %s", reg.Len(), path)

	reqs, err := f.AarRequests(reg)
	if err != nil {
		return nil, nil, err
	}
	if only != "" {
		reqs, err = filterRequests(reqs, only)
		if err != nil {
			return nil, nil, err
		}
	}

	desc := &android.AarDescription{Logger: c.Logger}
	enhs := make([]*android.Enhancement, 0, len(reqs))
	for _, req := range reqs {
		enh, err := desc.Enhance(ctx, req.Params, req.Args)
		if err != nil {
			return nil, nil, fmt.Errorf("enhance %s: %w", req.Params.Target, err)
		}
		if err := reg.Commit(enh.Batch); err != nil {
			return nil, nil, fmt.Errorf("commit %s: %w", req.Params.Target, err)
		}
		enhs = append(enhs, enh)
	}

	prog.done(fmt.Sprintf("Expanded %d android_aar rules into %d total rules", len(enhs), reg.Len()))
	return reg, enhs, nil
}

// filterRequests narrows the request list to the single named target.
func filterRequests(reqs []buildfile.AarRequest, only string) ([]buildfile.AarRequest, error) {
	for _, req := range reqs {
		if req.Params.Target.String() == only {
			return []buildfile.AarRequest{req}, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnknownTarget, "no android_aar rule named %s", only)
}
