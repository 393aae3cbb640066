package preflight

import (
	"context"
	"strings"

	"marquee/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Pinger is satisfied by the catalog store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunAll executes the readiness checks for the given config. The store check
// is skipped when store is nil and the generative service check when no API
// key is configured.
func RunAll(ctx context.Context, cfg *config.Config, store Pinger) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Asset directory", cfg.Paths.AssetDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if store != nil {
		results = append(results, CheckStore(ctx, cfg.DatabasePath(), store))
	}
	results = append(results, CheckCatalog(ctx, cfg.TMDB.BaseURL, cfg.TMDB.APIKey))
	if strings.TrimSpace(cfg.LLM.APIKey) != "" {
		results = append(results, CheckLLM(ctx, "Generative service", cfg.LLM))
	} else {
		results = append(results, Result{Name: "Generative service", Detail: "API key missing; people cannot be enriched"})
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
