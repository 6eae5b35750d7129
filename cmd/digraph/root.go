package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syssam/digraph"
	"github.com/syssam/digraph/config"
	"github.com/syssam/digraph/dialect/sql/schema"
	"github.com/syssam/digraph/multigraph"
)

type cli struct {
	configPath string
	source     string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "digraph",
		Short:         "Manage the state graphs of registered source types",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv(config.EnvPrefix+"CONFIG"), "configuration file")
	root.PersistentFlags().StringVarP(&c.source, "source", "s", "", "source type of the graph")
	root.AddCommand(
		c.migrateCmd(),
		c.typesCmd(),
		c.addEdgeCmd(),
		c.removeEdgeCmd(),
		c.edgesCmd(),
		c.graphCmd(),
		c.deleteCmd(),
		c.watchCmd(),
	)
	return root
}

// run loads the configuration, opens the app for the duration of fn and
// closes it afterwards.
func (c *cli) run(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	var dryRun, externalKeys bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables of the configured graphs",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, a *app, _ []string) error {
			if a.drv == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "memory backend needs no migration")
				return nil
			}
			m, err := schema.NewMigrate(a.drv,
				schema.WithForeignKeys(a.cfg.Database.ForeignKeys),
				schema.WithExternalForeignKeys(externalKeys),
				schema.WithLogger(a.log),
			)
			if err != nil {
				return err
			}
			types := a.reg.Types()
			if res := schema.ValidateTypes(types); res.HasErrors() {
				return fmt.Errorf("invalid types:\n%s", res)
			}
			if !dryRun {
				return m.Create(cmd.Context(), types...)
			}
			stmts, err := m.Plan(cmd.Context(), types...)
			if err != nil {
				return err
			}
			for _, s := range stmts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", s)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statements instead of executing them")
	cmd.Flags().BoolVar(&externalKeys, "external-keys", false, "add foreign keys to the source and attribute tables")
	return cmd
}

func (c *cli) typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the record types of the configured graphs",
		Args:  cobra.NoArgs,
		RunE: c.run(func(cmd *cobra.Command, a *app, _ []string) error {
			for _, t := range a.reg.Types() {
				owner := "owned"
				if t.External {
					owner = "external"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.Name, t.Table, owner)
			}
			return nil
		}),
	}
}

func (c *cli) addEdgeCmd() *cobra.Command {
	var attr int64
	cmd := &cobra.Command{
		Use:   "add-edge <source-id> <next-state-id>",
		Short: "Attach a new edge to the graph node of a source record",
		Args:  cobra.ExactArgs(2),
		RunE: c.run(func(cmd *cobra.Command, a *app, args []string) error {
			g, err := a.graph(c.source)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := g.EnsureNode(ctx, ids[0]); err != nil {
				return err
			}
			e := g.NewEdge().SetNextState(digraph.Ref(ids[1]))
			if attr != 0 {
				e.SetAttr(digraph.Ref(attr))
			}
			if _, err := g.For(digraph.Ref(ids[0])).AddEdge(ctx, e); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&attr, "attr", 0, "attribute record id")
	return cmd
}

func (c *cli) removeEdgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-edge <source-id> <edge-id>",
		Short: "Detach an edge from the graph node of a source record",
		Args:  cobra.ExactArgs(2),
		RunE: c.run(func(cmd *cobra.Command, a *app, args []string) error {
			g, err := a.graph(c.source)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			e, err := g.Edge(cmd.Context(), ids[1])
			if err != nil {
				return err
			}
			return g.For(digraph.Ref(ids[0])).RemoveEdge(cmd.Context(), e)
		}),
	}
}

func (c *cli) edgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edges <source-id>",
		Short: "List the outgoing edges of a source record",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, a *app, args []string) error {
			g, err := a.graph(c.source)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			es, err := g.For(digraph.Ref(ids[0])).Edges(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range es {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		}),
	}
}

func (c *cli) graphCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "graph <source-id>",
		Short: "Print the graph reachable from a source record",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, a *app, args []string) error {
			g, err := a.graph(c.source)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			out, err := g.For(digraph.Ref(ids[0])).BuildGraph(cmd.Context())
			if err != nil {
				return err
			}
			switch format {
			case "dot":
				return multigraph.WriteDOT(cmd.OutOrStdout(), out, nil, func(attr int64) string {
					if attr == 0 {
						return ""
					}
					return strconv.FormatInt(attr, 10)
				})
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			default:
				return fmt.Errorf("unknown format %q (dot, json)", format)
			}
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or json")
	return cmd
}

// deleteCmd reports the deletion of a source or attribute record owned by
// another process, so that the graph records referencing it follow.
func (c *cli) deleteCmd() *cobra.Command {
	var attr bool
	cmd := &cobra.Command{
		Use:   "deleted <id>",
		Short: "Apply the deletion of a source record, or of an attribute with --attr",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, a *app, args []string) error {
			g, err := a.graph(c.source)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			typ := g.Types().Source.Name
			if attr {
				typ = g.Types().Attr.Name
			}
			return a.reg.Tx(cmd.Context(), func(ctx context.Context) error {
				return a.reg.Dispatcher().Deleted(ctx, typ, ids[0])
			})
		}),
	}
	cmd.Flags().BoolVar(&attr, "attr", false, "the id is an attribute record")
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Validate the configuration file on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.configPath == "" {
				return fmt.Errorf("watch requires --config")
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			log := cfg.Log.Logger(cmd.ErrOrStderr())
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info("watching configuration", "path", c.configPath)
			err = config.Watch(ctx, c.configPath, 0, func(cfg *config.Config, err error) {
				if err != nil {
					log.Error("configuration rejected", "error", err)
					return
				}
				log.Info("configuration reloaded", "types", len(cfg.Types), "dialect", cfg.Database.Dialect)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, s := range args {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", s)
		}
		ids[i] = id
	}
	return ids, nil
}
