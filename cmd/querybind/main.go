// Command querybind is the harness that drives the core query
// preparation pipeline end to end against a live Postgres database,
// per SPEC_FULL.md §4.K.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/querybind/querybind/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "querybind.yaml", "path to the YAML config file")
		dsn        = flag.String("dsn", "", "override the config's Postgres DSN")
		watch      = flag.Bool("watch", false, "re-run on every query file change")
		isAsync    = flag.Bool("is-async", true, "generate context-accepting async query functions")
	)
	flag.Parse()

	var opts []config.Option
	if *dsn != "" {
		opts = append(opts, config.WithDSN(*dsn))
	}
	isAsyncSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "is-async" {
			isAsyncSet = true
		}
	})
	if isAsyncSet {
		opts = append(opts, config.WithIsAsync(*isAsync))
	}
	cfg, err := config.Load(*configPath, opts...)
	if err != nil {
		log.Fatalf("querybind: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := generate(ctx, cfg); err != nil {
		log.Fatalf("querybind: %v", err)
	}
	fmt.Fprintln(os.Stderr, "querybind: wrote", cfg.OutputDir)

	if !*watch {
		return
	}
	if err := watchAndRegenerate(ctx, cfg); err != nil && ctx.Err() == nil {
		log.Fatalf("querybind: watch: %v", err)
	}
}

// watchAndRegenerate re-runs generate on every query-file change until
// ctx is canceled. The watcher goroutine and ctx's own cancellation
// are coordinated by one errgroup so Ctrl-C drains both cleanly; the
// core pipeline itself stays single-threaded (spec §5) — each
// regeneration still runs start-to-finish before the next event is
// handled.
func watchAndRegenerate(ctx context.Context, cfg *config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.QueriesDir); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.QueriesDir, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				fmt.Fprintln(os.Stderr, "querybind: change detected, regenerating:", event.Name)
				if err := generate(gctx, cfg); err != nil {
					fmt.Fprintln(os.Stderr, "querybind:", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintln(os.Stderr, "querybind: watch error:", err)
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
