// Command canine serves the dog behavior analysis web app and runs one-off
// analyses and schema migrations.
//
//	canine [-listen :8080] [-db canine.db] [-config file] [-env .env]
//	canine analyze [-db canine.db] [-out dir] [-landmarks a,b,...] export.jsonl...
//	canine migrate [-db canine.db] up|down|status|version|force
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/canine.report/internal/analysis"
	"github.com/banshee-data/canine.report/internal/api"
	"github.com/banshee-data/canine.report/internal/config"
	"github.com/banshee-data/canine.report/internal/db"
	"github.com/banshee-data/canine.report/internal/version"
)

const defaultDBFile = "canine.db"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "analyze":
			return runAnalyze(ctx, args[1:], stdout)
		case "migrate":
			return runMigrate(args[1:], stdout)
		}
	}
	return runServe(ctx, args, stdout)
}

// loadSettings reads the optional .env and config files.
func loadSettings(envFile, configPath string) (*config.AnalysisConfig, config.Secrets, error) {
	if envFile != "" {
		if err := config.LoadEnv(envFile); err != nil {
			return nil, config.Secrets{}, err
		}
	}
	cfg := config.EmptyAnalysisConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadAnalysisConfig(configPath); err != nil {
			return nil, config.Secrets{}, err
		}
	}
	return cfg, config.SecretsFromEnv(), nil
}

func runServe(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("canine", flag.ContinueOnError)
	listen := fs.String("listen", ":8080", "Listen address")
	dbPath := fs.String("db", defaultDBFile, "SQLite database path")
	configPath := fs.String("config", "", "Analysis config file (.json, .yaml or .yml)")
	envFile := fs.String("env", ".env", "File with collaborator API keys")
	uploads := fs.String("uploads", "static/uploads", "Directory for uploaded videos")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.Current())
		return nil
	}
	if *listen == "" {
		return errors.New("listen address is required")
	}

	cfg, secrets, err := loadSettings(*envFile, *configPath)
	if err != nil {
		return err
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	analyzer := analysis.New(cfg, analysis.NewCollaborators(cfg, secrets, nil, store))
	mux := api.NewServer(analyzer, store, *uploads).ServeMux()

	server := &http.Server{
		Addr:              *listen,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", version.Current(), *listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Printf("Graceful shutdown complete")
	return nil
}

func runMigrate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBFile, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return db.RunMigrateCommand(fs.Args(), *dbPath, stdout)
}
