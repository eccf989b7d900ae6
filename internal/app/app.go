package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lcalzada-xor/steermap/internal/adapters/capture"
	"github.com/lcalzada-xor/steermap/internal/adapters/dissector"
	"github.com/lcalzada-xor/steermap/internal/adapters/fingerprint"
	"github.com/lcalzada-xor/steermap/internal/adapters/llm"
	"github.com/lcalzada-xor/steermap/internal/adapters/storage"
	"github.com/lcalzada-xor/steermap/internal/config"
	"github.com/lcalzada-xor/steermap/internal/core/domain"
	"github.com/lcalzada-xor/steermap/internal/core/services/analyzer"
	"github.com/lcalzada-xor/steermap/internal/telemetry"
)

// Application wires the engine together: adapters, services and the persisted
// analysis tree. It is the facade every entrypoint goes through.
type Application struct {
	Config   *config.Config
	Analyzer *analyzer.Analyzer
	Pool     *analyzer.Pool
	Store    *storage.JSONStore
	Registry *storage.Registry

	log      *slog.Logger
	shutdown func(context.Context) error
}

// New bootstraps the application from configuration.
func New(cfg *config.Config, log *slog.Logger) (*Application, error) {
	if log == nil {
		log = slog.Default()
	}
	app := &Application{Config: cfg, log: log}

	telemetry.InitMetrics()
	// The stdout exporter is only useful when debugging; it would otherwise
	// drown the CLI output.
	if cfg.Debug {
		shutdown, err := telemetry.InitTracer()
		if err != nil {
			log.Warn("tracing disabled", "error", err)
		} else {
			app.shutdown = shutdown
		}
	}

	if err := app.initStorage(); err != nil {
		return nil, err
	}

	tshark := dissector.NewTShark(cfg.Dissector.Binary, cfg.Dissector.Timeout)
	validator := capture.NewValidator()
	classifier := fingerprint.NewClassifier()

	opts := []analyzer.Option{}
	if cfg.LLM.APIKey != "" {
		narrator, err := llm.NewNarrator(cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			log.Warn("narrative generation disabled", "error", err)
		} else {
			opts = append(opts, analyzer.WithNarrator(narrator, cfg.LLM.Timeout))
		}
	}

	app.Analyzer = analyzer.New(tshark, validator, classifier, cfg.Analysis, log, opts...)
	app.Pool = analyzer.NewPool(app.Analyzer, app.Store, cfg.Analysis.Workers, log)
	app.Registry = storage.NewRegistry(app.Store)
	return app, nil
}

func (app *Application) initStorage() error {
	if err := os.MkdirAll(app.Config.DataDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating data dir %s: %v", domain.ErrPersistence, app.Config.DataDir, err)
	}

	var index *storage.Index
	if app.Config.IndexPath != "" {
		if err := os.MkdirAll(filepath.Dir(app.Config.IndexPath), 0o755); err != nil {
			return fmt.Errorf("%w: creating index dir: %v", domain.ErrPersistence, err)
		}
		idx, err := storage.OpenIndex(app.Config.IndexPath)
		if err != nil {
			app.log.Warn("artifact index disabled", "error", err)
		} else {
			index = idx
		}
	}

	app.Store = storage.NewJSONStore(app.Config.DataDir, index, app.log)
	return nil
}

// Analyze runs one capture through the engine and persists the artifact.
// Returns the analysis and the JSON path.
func (app *Application) Analyze(ctx context.Context, capturePath string, hints domain.UserHints) (*domain.BandSteeringAnalysis, string, error) {
	analysis, err := app.Analyzer.Analyze(ctx, capturePath, hints)
	if err != nil {
		return nil, "", err
	}
	path, err := app.Store.Save(analysis, capturePath)
	if err != nil {
		return analysis, "", err
	}
	return analysis, path, nil
}

// AnalyzeBatch runs several captures through the worker pool.
func (app *Application) AnalyzeBatch(ctx context.Context, tasks []analyzer.Task) []analyzer.Outcome {
	return app.Pool.Run(ctx, tasks)
}

// Close flushes telemetry.
func (app *Application) Close(ctx context.Context) error {
	if app.shutdown != nil {
		return app.shutdown(ctx)
	}
	return nil
}
