package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aarforge/aarforge/pkg/export"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Persist and inspect rule-graph snapshots",
		Long: `Persist and inspect rule-graph snapshots.

Snapshots record the fully expanded rule graph of a build file at a point
in time. They are stored in MongoDB; set AARFORGE_MONGO_URI to the
connection string (e.g. mongodb://localhost:27017).`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())

	return cmd
}

// snapshotSaveCommand creates the "snapshot save" subcommand.
func (c *CLI) snapshotSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save [build file]",
		Short: "Expand a build file and persist the rule graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openSnapshotStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			reg, _, err := c.loadAndEnhance(ctx, args[0], "")
			if err != nil {
				return err
			}

			snap := export.NewSnapshot(args[0], export.FromRegistry(reg))
			if err := store.Save(ctx, snap); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}

			printSuccess("Saved snapshot %s", StyleHighlight.Render(snap.ID))
			printStats(len(snap.Graph.Nodes), len(snap.Graph.Edges), false)
			return nil
		},
	}
}

// snapshotListCommand creates the "snapshot list" subcommand.
func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List persisted snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openSnapshotStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			snaps, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			if len(snaps) == 0 {
				printInfo("No snapshots")
				return nil
			}
			for _, snap := range snaps {
				fmt.Printf("%s  %s  %s\n",
					StyleValue.Render(snap.ID),
					StyleDim.Render(snap.CreatedAt.Format("2006-01-02 15:04:05")),
					snap.BuildFile)
			}
			return nil
		},
	}
}

// snapshotShowCommand creates the "snapshot show" subcommand.
func (c *CLI) snapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print one snapshot's rule graph as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openSnapshotStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			snap, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := snap.Graph.Marshal()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

// openSnapshotStore connects to the MongoDB snapshot store. Persisted
// snapshots need a durable backend, so the in-memory store is not an option
// here.
func (c *CLI) openSnapshotStore(ctx context.Context) (export.SnapshotStore, error) {
	uri := os.Getenv(mongoURIEnv)
	if uri == "" {
		return nil, fmt.Errorf("snapshot persistence requires %s to be set", mongoURIEnv)
	}
	return export.NewMongoStore(ctx, uri)
}
