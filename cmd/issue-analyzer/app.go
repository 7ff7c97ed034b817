package main

import (
	"context"
	"fmt"
	"io"

	"issue-analyzer/config"
	"issue-analyzer/internal/classifier"
	"issue-analyzer/internal/db"
	"issue-analyzer/internal/duplicates"
	"issue-analyzer/internal/logger"
	"issue-analyzer/internal/models"
	"issue-analyzer/internal/repositories"
	"issue-analyzer/internal/risk"
	"issue-analyzer/internal/services"
	"issue-analyzer/internal/sources"
)

// Commands annotated with annotationStore: storeNone run without a store.
const (
	annotationStore = "store"
	storeNone       = "none"
)

// application holds the wired components shared by every command. store is
// nil for commands that never touch persisted data.
type application struct {
	cfg     config.Config
	log     *logger.Logger
	store   repositories.Store
	service *services.AnalysisService
}

func newApplication(ctx context.Context, cfg config.Config, log *logger.Logger, withStore bool) (*application, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var store repositories.Store
	if withStore {
		var err error
		if store, err = newStore(ctx, cfg.Store); err != nil {
			return nil, err
		}
	}

	clf, err := classifier.NewDefault()
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("train classifier: %w", err)
	}
	model := clf.Model()
	log.Debug("classifier trained", "samples", model.TotalSamples(), "vocabulary", model.VocabularySize())

	detector := duplicates.NewDetector(
		duplicates.WithThreshold(cfg.Analysis.DuplicateThreshold),
		duplicates.WithWeighting(duplicates.Weighting(cfg.Analysis.Weighting)),
	)

	service := services.NewAnalysisService(
		store,
		newSource(cfg.Source, log),
		clf,
		risk.NewScorer(),
		detector,
		services.AnalysisOptions{
			Concurrency:     cfg.Analysis.Concurrency,
			RunTimeout:      cfg.Analysis.RunTimeout,
			ExtractKeywords: cfg.Analysis.ExtractKeywords,
			KeywordLimit:    cfg.Analysis.KeywordLimit,
		},
		log,
	)

	return &application{cfg: cfg, log: log, store: store, service: service}, nil
}

func newStore(ctx context.Context, cfg config.StoreConfig) (repositories.Store, error) {
	switch cfg.Backend {
	case config.StoreBackendRedis:
		client, err := db.Connect(ctx, cfg.RedisClientConfig())
		if err != nil {
			return nil, err
		}
		return repositories.NewRedisStore(client.GetClient()), nil
	default:
		return repositories.NewMemoryStore(), nil
	}
}

func newSource(cfg config.SourceConfig, log *logger.Logger) sources.IssueSource {
	if cfg.Kind == config.SourceKindFile {
		return sources.NewFileSource(cfg.IssuesFile)
	}
	return sources.NewGitHubSource(sources.GitHubOptions{
		BaseURL:           cfg.GitHubAPIURL,
		Token:             cfg.GitHubToken,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Timeout:           cfg.Timeout,
	}, log)
}

// repository returns the stored record for id, or a fresh one built from the
// slug when the store has none yet.
func (a *application) repository(ctx context.Context, id string) (models.Repository, error) {
	repo, err := a.store.FindRepository(ctx, id)
	if err == nil {
		return *repo, nil
	}
	if repositories.IsNotFound(err) {
		return models.NewRepository(id), nil
	}
	return models.Repository{}, err
}

// syncRepository fetches the repository's issues into the store.
func (a *application) syncRepository(ctx context.Context, id string) (int, error) {
	repo, err := a.repository(ctx, id)
	if err != nil {
		return 0, err
	}
	return a.service.SyncRepository(ctx, repo)
}

// warnEphemeralStore tells the user that nothing outlives this process when
// the memory backend is configured.
func (a *application) warnEphemeralStore(w io.Writer, what string) {
	if a.cfg.Store.Backend != config.StoreBackendMemory {
		return
	}
	fmt.Fprintf(w, "%s store backend is memory: %s is not kept between invocations (set STORE_BACKEND=redis)\n",
		yellow("Warning:"), what)
}

func (a *application) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("closing store failed", "error", err)
		}
	}
	a.log.Sync()
}
