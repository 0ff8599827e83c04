package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/querybind/querybind/internal/config"
	"github.com/querybind/querybind/internal/driver/postgres"
	"github.com/querybind/querybind/internal/errs"
	"github.com/querybind/querybind/internal/migrate"
	"github.com/querybind/querybind/internal/prepare"
	"github.com/querybind/querybind/internal/query"
	"github.com/querybind/querybind/internal/queryfile"
	"github.com/querybind/querybind/internal/render"
)

// generate runs the harness end to end, per SPEC_FULL.md §4.K: open
// the driver, apply migrations, parse query files, prepare, render,
// and write output.
func generate(ctx context.Context, cfg *config.Config) error {
	drv, err := postgres.Open(cfg.DSN)
	if err != nil {
		return fmt.Errorf("querybind: connect: %w", err)
	}
	defer drv.Close()

	if err := migrate.Apply(ctx, drv, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("querybind: migrate: %w", err)
	}

	modules, err := loadQueryModules(cfg.QueriesDir)
	if err != nil {
		return fmt.Errorf("querybind: load queries: %w", err)
	}

	result, err := prepare.All(ctx, drv, modules)
	if err != nil {
		if pipelineErr, ok := err.(*errs.Error); ok {
			return fmt.Errorf("querybind: %s", pipelineErr.Render())
		}
		return fmt.Errorf("querybind: prepare: %w", err)
	}

	files := render.File(cfg.OutputPackage, result, render.Options{DeriveSer: cfg.DeriveSer, IsAsync: cfg.IsAsync})
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("querybind: output dir: %w", err)
	}
	for name, f := range files {
		path := filepath.Join(cfg.OutputDir, name+".go")
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("querybind: write %s: %w", path, err)
		}
		err = f.Render(out)
		closeErr := out.Close()
		if err != nil {
			return fmt.Errorf("querybind: render %s: %w", path, err)
		}
		if closeErr != nil {
			return fmt.Errorf("querybind: close %s: %w", path, closeErr)
		}
	}
	return nil
}

// loadQueryModules parses every *.sql file directly under dir into a
// query.Module (spec §4.H: one file per module).
func loadQueryModules(dir string) ([]query.Module, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var modules []query.Module
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		mod, err := queryfile.ParseFile(path, string(b))
		if err != nil {
			return nil, err
		}
		modules = append(modules, mod)
	}
	return modules, nil
}
