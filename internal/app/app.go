package app

import (
	"context"
	"time"

	"github.com/Brownie44l1/plantdx-api/internal/config"
	"github.com/Brownie44l1/plantdx-api/internal/disease"
	"github.com/Brownie44l1/plantdx-api/internal/logger"
	"github.com/Brownie44l1/plantdx-api/internal/model"
)

// App holds the long-lived components shared by the server and the CLI.
type App struct {
	Loader  *model.Loader
	Service *disease.Service
	log     logger.Logger
}

// New wires the model loader and disease service from cfg. Nothing is loaded yet.
func New(cfg *config.Config, log logger.Logger) *App {
	loader := model.NewLoader(
		model.WithCandidates(cfg.Model.Candidates...),
		model.WithDirect(cfg.Model.Direct...),
		model.WithThreshold(float32(cfg.Model.ConfidenceThreshold)),
		model.WithFetcher(model.NewFetcher(cfg.Model.FetchTimeout)),
		model.WithOpener(model.NewOpener(model.RuntimeOptions{
			OnnxLibraryPath: cfg.Model.OnnxLibraryPath,
			Threads:         cfg.Model.Threads,
		})),
		model.WithSeed(cfg.Model.FallbackSeed),
		model.WithLogger(log),
	)

	catalog, err := disease.BuiltinCatalog(cfg.Service.Language)
	if err != nil {
		log.Warnf(context.Background(), "Using default disease catalog: %v", err)
		catalog = disease.DefaultCatalog()
	}

	opts := []disease.ServiceOption{
		disease.WithCatalog(catalog),
		disease.WithSimulator(disease.NewSimulator(cfg.Service.Seed)),
		disease.WithServiceLogger(log),
	}
	if cfg.Service.Simulate {
		opts = append(opts, disease.ForceSimulation())
	}

	return &App{
		Loader:  loader,
		Service: disease.NewService(loader, opts...),
		log:     log,
	}
}

// Preload initializes the model now instead of on the first diagnosis.
func (a *App) Preload(ctx context.Context) {
	start := time.Now()
	ready := a.Service.InitModel(ctx)
	a.log.Infof(ctx, "Model initialization finished in %s: mode=%s source=%s ready=%v",
		time.Since(start).Round(time.Millisecond), a.Service.Mode(), a.Loader.Source().Kind, ready)
}

func (a *App) Close() {
	if err := a.Loader.Close(); err != nil {
		a.log.Warnf(context.Background(), "Failed to close model: %v", err)
	}
	model.ReleaseONNX()
}
