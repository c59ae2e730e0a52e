package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/cruddals/dialect/sql/schema"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [model-file]",
		Short: "create the missing tables of a model file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if d, _ := cmd.Flags().GetString("dialect"); d != "" {
				cfg.Dialect = d
			}
			if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
				cfg.DSN = dsn
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			path, err := modelFile(cfg, args)
			if err != nil {
				return err
			}
			g, err := loadGraph(path)
			if err != nil {
				return err
			}
			drv, err := cfg.Open(logger)
			if err != nil {
				return err
			}
			defer drv.Close()
			fks, _ := cmd.Flags().GetBool("foreign-keys")
			started := time.Now()
			if err := schema.Create(cmd.Context(), drv, g, schema.WithLogger(logger), schema.WithForeignKeys(fks)); err != nil {
				return err
			}
			logger.Info("database schema is up-to-date", "models", len(g.Models), "took", time.Since(started))
			return nil
		},
	}
	cmd.Flags().String("dialect", "", "the database dialect: sqlite, postgres or mysql")
	cmd.Flags().String("dsn", "", "the database connection settings")
	cmd.Flags().Bool("foreign-keys", true, "create foreign-key constraints")
	return cmd
}
