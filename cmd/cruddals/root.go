package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/cruddals/compiler/load"
	"github.com/syssam/cruddals/config"
	"github.com/syssam/cruddals/schema"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cruddals",
		Short:        "compile model files into a CRUD, list and search API",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringP("config", "c", "", "path of the configuration file")
	cmd.PersistentFlags().Bool("verbose", false, "turn on debug logging")
	cmd.PersistentFlags().Bool("silent", false, "turn off all logging")
	cmd.AddCommand(newSDLCmd(), newMigrateCmd())
	return cmd
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	} else if silent, _ := cmd.Flags().GetBool("silent"); silent {
		level = slog.LevelError + 1
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// loadConfig returns the configuration named by --config, or an empty one.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// modelFile returns the model file given as argument, or the one of the
// configuration.
func modelFile(cfg *config.Config, args []string) (string, error) {
	switch {
	case len(args) > 0:
		return args[0], nil
	case cfg.Schema != "":
		return cfg.Schema, nil
	default:
		return "", errors.New("no model file given and none configured")
	}
}

func loadGraph(path string) (*schema.Graph, error) {
	s, err := load.Load(path)
	if err != nil {
		return nil, err
	}
	return s.Graph()
}
