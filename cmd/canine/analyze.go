package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/banshee-data/canine.report/internal/analysis"
	"github.com/banshee-data/canine.report/internal/db"
	"github.com/banshee-data/canine.report/internal/keypoints"
	"github.com/banshee-data/canine.report/internal/pose"
)

// runAnalyze analyses pose exports given on the command line and prints
// the results as JSON. Exports are analysed concurrently.
func runAnalyze(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	dbPath := fs.String("db", "", "SQLite database to record sessions in (empty: do not record)")
	configPath := fs.String("config", "", "Analysis config file (.json, .yaml or .yml)")
	envFile := fs.String("env", ".env", "File with collaborator API keys")
	outDir := fs.String("out", "", "Output directory (overrides output_dir)")
	landmarkList := fs.String("landmarks", "", "Comma-separated landmark order of the exports (default: model order)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("analyze: at least one pose export is required")
	}

	cfg, secrets, err := loadSettings(*envFile, *configPath)
	if err != nil {
		return err
	}
	if *outDir != "" {
		cfg.OutputDir = outDir
	}
	landmarks, err := keypoints.ParseList(*landmarkList)
	if err != nil {
		return err
	}

	var store analysis.Store
	if *dbPath != "" {
		d, err := db.NewDB(*dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer d.Close()
		store = d
	}

	jobs := make([]analysis.Job, 0, fs.NArg())
	for _, path := range fs.Args() {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open pose export: %w", err)
		}
		defer f.Close()
		jobs = append(jobs, analysis.Job{
			VideoFilename: filepath.Base(path),
			Source:        pose.NewJSONLSource(f, landmarks),
		})
	}

	analyzer := analysis.New(cfg, analysis.NewCollaborators(cfg, secrets, nil, store))
	results, err := analyzer.AnalyzeBatch(ctx, jobs)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
