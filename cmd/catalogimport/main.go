// Command catalogimport validates or imports a product CSV from the shell.
//
// Usage:
//
//	catalogimport -file products.csv                  # dry run against the database
//	catalogimport -file products.csv -commit          # import
//	catalogimport -file products.csv -offline -categories "Electronics,Toys"
//
// The report is printed to stdout as JSON and logs go to stderr. The exit
// status is 1 when the batch is invalid or any row failed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// errBatchFailed marks a run that completed but rejected or failed rows.
var errBatchFailed = errors.New("import finished with errors")

type options struct {
	file           string
	commit         bool
	updateExisting bool
	offline        bool
	categories     string
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "CSV file to import (required)")
	flag.BoolVar(&opts.commit, "commit", false, "write products instead of only validating")
	flag.BoolVar(&opts.updateExisting, "update-existing", true, "overwrite products whose SKU already exists")
	flag.BoolVar(&opts.offline, "offline", false, "validate against an in-memory catalog instead of the database")
	flag.StringVar(&opts.categories, "categories", "", "comma-separated category names for -offline")
	flag.Parse()

	if opts.file == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		if !errors.Is(err, errBatchFailed) {
			slog.Error("catalogimport failed", "error", err)
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	_ = godotenv.Load()

	cfg, store, closeStore, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	// stdout carries the JSON report.
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.file, err)
	}
	defer f.Close()

	rows, err := core.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.file, err)
	}

	service := core.NewService(store, cfg.Import)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if !opts.commit {
		report, err := service.Validate(ctx, rows)
		if err != nil {
			return err
		}
		if err := enc.Encode(report); err != nil {
			return err
		}
		if !report.Valid {
			return errBatchFailed
		}
		return nil
	}

	report, err := service.Commit(ctx, rows, opts.updateExisting)
	if encErr := enc.Encode(report); encErr != nil && err == nil {
		err = encErr
	}
	if err != nil {
		return err
	}
	if report.Result == nil || report.Result.Failed > 0 {
		return errBatchFailed
	}
	return nil
}

// openStore returns the database store, or a memory store seeded with
// -categories when -offline is set. Offline runs need no DATABASE_URL.
func openStore(ctx context.Context, opts options) (*config.Config, core.Store, func(), error) {
	if opts.offline {
		cfg := config.Defaults()
		store := core.NewMemoryStore()
		for _, name := range strings.Split(opts.categories, ",") {
			if name = strings.TrimSpace(name); name != "" {
				store.AddCategory(name)
			}
		}
		return cfg, store, func() {}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return cfg, core.NewPostgresStore(pool), pool.Close, nil
}
