/*
main.go - leavetrack entry point

PURPOSE:
  Opens the leave database, loads the bootstrap script and starts one of
  the two front ends over the same leave service.

COMMANDS:
  leavetrack [flags]         Interactive menu on stdin/stdout (default)
  leavetrack serve [flags]   JSON HTTP API

COMMAND-LINE FLAGS:
  -config      Config file (yaml, json or toml)
  -db          SQLite database path (default: leave.db)
               Use ":memory:" for an in-memory database
  -seed        Bootstrap SQL script, loaded at startup if present
               (default: sample_data.sql, "" disables)
  -export-dir  Directory for <emp_id>_leaves.csv (default: .)
  -quota       Annual leave quota in days (default: 20)
  -log-level   debug, info, warn or error
  -addr        (serve) listen address (default: 127.0.0.1:8080)

ENVIRONMENT:
  Every setting can also be given as LEAVETRACK_<NAME>, e.g.
  LEAVETRACK_DATABASE_PATH. Flags win over the environment, which wins over
  the config file.

EXIT CODES:
  0 on normal termination, 1 on startup failure.

SEE ALSO:
  - config/config.go: Settings and defaults
  - shell/shell.go:   Interactive menu
  - api/server.go:    HTTP router
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/config"
	"github.com/warp/leave-tracker/leave"
	"github.com/warp/leave-tracker/shell"
	"github.com/warp/leave-tracker/store/sqlite"
	"go.uber.org/zap"
)

const (
	cmdShell = "shell"
	cmdServe = "serve"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses args, wires the application and blocks until the chosen front
// end returns.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	command := cmdShell
	if len(args) > 0 && args[0] == cmdServe {
		command = cmdServe
		args = args[1:]
	}

	flags := flag.NewFlagSet("leavetrack "+command, flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "config file (yaml, json or toml)")
	dbPath := flags.String("db", config.DefaultDatabasePath, "SQLite database path")
	seedPath := flags.String("seed", config.DefaultSeedPath, `bootstrap SQL script ("" disables)`)
	exportDir := flags.String("export-dir", ".", "directory for exported CSV files")
	quota := flags.String("quota", fmt.Sprint(leave.DefaultAnnualQuota), "annual leave quota in days")
	logLevel := flags.String("log-level", "", "debug, info, warn or error")
	var addr *string
	if command == cmdServe {
		addr = flags.String("addr", config.DefaultHTTPAddr, "HTTP listen address")
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", flags.Arg(0))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Only flags given explicitly override the file and the environment.
	var flagErr error
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.Database.Path = *dbPath
		case "seed":
			cfg.Database.SeedPath = *seedPath
		case "export-dir":
			cfg.Leave.ExportDir = *exportDir
		case "quota":
			q, err := decimal.NewFromString(*quota)
			if err != nil {
				flagErr = fmt.Errorf("invalid -quota %q: %w", *quota, err)
				return
			}
			cfg.Leave.AnnualQuota = q
		case "log-level":
			cfg.Log.Level = *logLevel
		case "addr":
			cfg.HTTP.Addr = *addr
		}
	})
	if flagErr != nil {
		return flagErr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Log.Level
	if level == "" {
		level = defaultLogLevel(command)
	}
	logger, err := newLogger(level, cfg.Log.Format, stderr)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()
	logger.Named("store.sqlite").Info("database ready", zap.String("path", cfg.Database.Path))

	loadSeed(ctx, store, cfg.Database.SeedPath, logger.Named("store.sqlite"))

	svc := leave.NewService(store, cfg.Service(), logger)

	switch command {
	case cmdServe:
		return serve(ctx, cfg, svc, logger)
	default:
		err := shell.New(svc, stdin, stdout, shell.WithLogger(logger)).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// defaultLogLevel keeps the interactive menu free of log lines.
func defaultLogLevel(command string) string {
	if command == cmdShell {
		return "error"
	}
	return "info"
}

// loadSeed runs the bootstrap script if it exists. Neither a missing nor a
// failing script stops startup: re-running the sample data against an
// existing database is expected to collide.
func loadSeed(ctx context.Context, store *sqlite.Store, path string, logger *zap.Logger) {
	if path == "" {
		return
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("seed script not found, skipping", zap.String("path", path))
		return
	}
	if err != nil {
		logger.Warn("seed script unreadable, skipping", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	if err := store.LoadScript(ctx, f); err != nil {
		logger.Warn("seed script failed, continuing with existing data", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("seed script loaded", zap.String("path", path))
}
