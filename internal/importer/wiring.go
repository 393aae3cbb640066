package importer

import (
	"log/slog"

	"marquee/internal/assets"
	"marquee/internal/config"
	"marquee/internal/enrichment"
	"marquee/internal/notifications"
	"marquee/internal/people"
	"marquee/internal/services/llm"
	"marquee/internal/store"
	"marquee/internal/tmdb"
)

// NewImporter constructs an Importer using the configured catalog, generative
// service, asset directory and notifier.
func NewImporter(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Importer, error) {
	catalog, err := NewCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}
	assetImporter := NewAssetImporter(cfg, st, logger)
	return NewImporterWithDependencies(cfg, st, logger, Dependencies{
		Catalog:  catalog,
		Resolver: NewResolver(cfg, st, assetImporter, logger),
		Assets:   assetImporter,
		Notifier: notifications.NewService(cfg),
	}), nil
}

// NewCatalog builds the rate limited catalog client.
func NewCatalog(cfg *config.Config, logger *slog.Logger) (*tmdb.Client, error) {
	fetcher := tmdb.NewFetcher(
		tmdb.WithRateLimit(cfg.TMDB.RequestsPerSecond),
		tmdb.WithFetchLogger(logger),
	)
	return tmdb.New(tmdb.Options{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Language:     cfg.TMDB.Language,
		Timeout:      cfg.CatalogTimeout(),
		MaxRetries:   cfg.TMDB.MaxRetries,
	}, fetcher)
}

// NewAssetImporter builds the image importer writing under the asset directory.
func NewAssetImporter(cfg *config.Config, st *store.Store, logger *slog.Logger) *assets.Importer {
	return assets.NewImporter(cfg.Paths.AssetDir, cfg.AssetTimeout(), cfg.Assets.MaxBytes, st, assets.WithLogger(logger))
}

// NewGenerator builds the generative text client used for enrichment.
func NewGenerator(cfg *config.Config) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		Attempts:       cfg.LLM.RetryAttempts,
	})
}

// NewResolver builds the person resolver backed by the enrichment pipeline.
// assetImporter may be nil.
func NewResolver(cfg *config.Config, st *store.Store, assetImporter people.AssetImporter, logger *slog.Logger) *people.Resolver {
	pipeline := enrichment.NewPipeline(NewGenerator(cfg), logger)
	return people.NewResolver(st, pipeline, assetImporter, logger)
}
