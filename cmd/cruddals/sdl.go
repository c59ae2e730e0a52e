package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/cruddals/compiler/gen"
	"github.com/syssam/cruddals/config"
	"github.com/syssam/cruddals/contrib/graphql"
)

func newSDLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sdl [model-file]",
		Short: "print the API schema of a model file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path, err := modelFile(cfg, args)
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			gqlgen, _ := cmd.Flags().GetString("gqlgen")
			if gqlgen != "" && output == "" {
				return errors.New("--gqlgen requires --output")
			}
			write := func() error {
				s, err := render(path, cfg)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = io.WriteString(cmd.OutOrStdout(), s.SDL())
					return err
				}
				if err := os.WriteFile(output, []byte(s.SDL()), 0o644); err != nil {
					return err
				}
				if gqlgen != "" {
					return bind(gqlgen, output, s)
				}
				return nil
			}
			if err := write(); err != nil {
				return err
			}
			if watch, _ := cmd.Flags().GetBool("watch"); watch {
				return watchFile(cmd.Context(), logger, path, write)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "write the schema to a file instead of stdout")
	cmd.Flags().Bool("watch", false, "regenerate the schema when the model file changes")
	cmd.Flags().String("gqlgen", "", "register the schema file and its scalars in a gqlgen.yml")
	return cmd
}

// render builds and validates the schema of the model file.
func render(path string, cfg *config.Config) (*gen.Schema, error) {
	g, err := loadGraph(path)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.GenOptions()
	if err != nil {
		return nil, err
	}
	asm, err := gen.NewAssembler(g, opts...)
	if err != nil {
		return nil, err
	}
	s, err := asm.Build()
	if err != nil {
		return nil, err
	}
	if _, err := s.Validate(); err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}
	return s, nil
}

// bind registers the schema file written to output in the gqlgen
// configuration at path.
func bind(path, output string, s *gen.Schema) error {
	cfg, err := graphql.LoadGQLGenConfig(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(filepath.Dir(path), output)
	if err != nil {
		rel = output
	}
	cfg.Bind(filepath.ToSlash(rel), s.Doc)
	return graphql.SaveGQLGenConfig(path, cfg)
}

// watchFile calls fn each time the file at path is written, until ctx is
// done. The directory is watched, as editors often replace files on save.
// Failures of fn are logged and watching goes on.
func watchFile(ctx context.Context, logger *slog.Logger, path string, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("watching model file", "path", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := fn(); err != nil {
				logger.Error("regenerate schema", "path", path, "error", err)
				continue
			}
			logger.Info("schema regenerated", "path", path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch model file", "error", err)
		}
	}
}
