package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrazmi/tasklists/app/tooling/commands"
	"github.com/jrazmi/tasklists/infrastructure/datastores"
	"github.com/jrazmi/tasklists/sdk/environment"
	"github.com/jrazmi/tasklists/sdk/logger"
	"github.com/spf13/cobra"
)

var build = "develop"
var appName = "TASKLISTS"

type task func(ctx context.Context, log *logger.Logger, ds *datastores.Datastore) error

func main() {
	if err := environment.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.NewFromEnv(appName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:          "tooling",
		Short:        "Database maintenance for the tasklists server",
		Version:      build,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(migrateCmd(log))
	rootCmd.AddCommand(initDBCmd(log))
	rootCmd.AddCommand(statusCmd(log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.ErrorContext(ctx, "tooling", "err", err)
		stop()
		os.Exit(1)
	}
}

func migrateCmd(log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations to the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatastore(cmd.Context(), log, func(ctx context.Context, log *logger.Logger, ds *datastores.Datastore) error {
				return commands.Migrate(ctx, log.Logger, ds)
			})
		},
	}
}

func initDBCmd(log *logger.Logger) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Drop all tables and recreate the schema",
		Long: `Drop the users, tasklists and tasks tables along with the migration
history, then apply every migration again. All data is lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("init-db deletes all data, pass --yes to confirm")
			}
			return withDatastore(cmd.Context(), log, func(ctx context.Context, log *logger.Logger, ds *datastores.Datastore) error {
				if err := commands.InitDB(ctx, log.Logger, ds); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Initialized the database.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm that all data may be deleted")

	return cmd
}

func statusCmd(log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List the migrations recorded in the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatastore(cmd.Context(), log, func(ctx context.Context, log *logger.Logger, ds *datastores.Datastore) error {
				return commands.Status(ctx, ds, cmd.OutOrStdout())
			})
		},
	}
}

func withDatastore(ctx context.Context, log *logger.Logger, fn task) error {
	ds, _, err := datastores.NewFromEnv(appName, log.Logger)
	if err != nil {
		return err
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection")
		ds.Close()
	}()
	log.InfoContext(ctx, "init", "service", ds.Driver)

	return fn(ctx, log, ds)
}
