package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"conti/internal/cli"
	"conti/internal/config"
	"conti/internal/log"
	"conti/internal/storage"
	"conti/internal/worker"
)

// env is the state shared by every subcommand once the root has run.
type env struct {
	dbPath string
	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "contictl",
		Short:         "Administer a conti database",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			e.cfg = config.Load()
			if e.dbPath != "" {
				e.cfg.SQLiteDBPath = e.dbPath
			}
			e.logger = cli.SetupLogger(e.cfg, log.ComponentCLI)
			return e.cfg.Validate()
		},
	}
	root.PersistentFlags().StringVar(&e.dbPath, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")

	root.AddCommand(newMigrateCmd(e), newMaintenanceCmd(e), newRecomputeCmd(e))
	return root
}

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage schema migrations",
	}

	var steps int
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps > 0 {
				if err := storage.MigrateSteps(e.cfg.SQLiteDBPath, steps); err != nil {
					return err
				}
			} else if err := storage.RunMigrations(e.cfg.SQLiteDBPath); err != nil {
				return err
			}
			return printVersion(cmd, e.cfg.SQLiteDBPath)
		},
	}
	up.Flags().IntVar(&steps, "steps", 0, "apply at most this many migrations (0 = all)")

	var downSteps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if downSteps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			if err := storage.MigrateSteps(e.cfg.SQLiteDBPath, -downSteps); err != nil {
				return err
			}
			return printVersion(cmd, e.cfg.SQLiteDBPath)
		},
	}
	down.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd, e.cfg.SQLiteDBPath)
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printVersion(cmd *cobra.Command, dbPath string) error {
	v, dirty, err := storage.MigrationVersion(dbPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
	return nil
}

func newMaintenanceCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Expire stale invitations and purge expired sessions once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), e, func(ctx context.Context, app *cli.App) error {
				m := worker.NewMaintenance(e.cfg.MaintenanceInterval,
					worker.ExpireInvitations(app.Services.Partners),
					worker.PurgeSessions(app.Services.Auth),
				)
				if err := m.RunOnce(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "maintenance complete")
				return nil
			})
		},
	}
}

func newRecomputeCmd(e *env) *cobra.Command {
	var cardID string
	cmd := &cobra.Command{
		Use:   "recompute-balances",
		Short: "Recompute credit card balances from charges and repayments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), e, func(ctx context.Context, app *cli.App) error {
				if cardID != "" {
					bal, err := app.Services.Cards.RecomputeBalance(ctx, cardID)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "card %s balance %s\n", cardID, bal)
					return nil
				}
				n, err := app.Services.Cards.RecomputeAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d cards\n", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&cardID, "card", "", "recompute a single card")
	return cmd
}

// withApp opens the database, wires the services and runs fn.
func withApp(ctx context.Context, e *env, fn func(ctx context.Context, app *cli.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := storage.NewSQLiteRepository(e.cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	app := cli.NewApp(e.cfg, store, nil)
	defer app.Close()
	return fn(ctx, app)
}
