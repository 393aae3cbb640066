package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"marquee/internal/config"
	"marquee/internal/enrichment"
	"marquee/internal/logging"
	"marquee/internal/notifications"
	"marquee/internal/people"
	"marquee/internal/services"
	"marquee/internal/store"
	"marquee/internal/textutil"
	"marquee/internal/tmdb"
)

// PersonResolver maps a credited person to an internal person id.
type PersonResolver interface {
	Resolve(ctx context.Context, hint enrichment.PersonHint, missing people.MissingReporter) (string, bool)
}

// AssetImporter imports a remote image, returning nil on failure.
type AssetImporter interface {
	ImportAsset(ctx context.Context, remoteURL string) *store.AssetRef
}

// Result summarizes one ImportFilm call.
type Result struct {
	FilmID           string   `json:"film_id"`
	Title            string   `json:"title"`
	MissingPersonIDs []string `json:"missing_person_ids"`
	AlreadyExists    bool     `json:"already_exists"`
	Credits          int      `json:"credits"`
}

// Importer ingests films from the catalog and cross-links their credits.
type Importer struct {
	cfg      *config.Config
	store    *store.Store
	catalog  tmdb.Catalog
	resolver PersonResolver
	assets   AssetImporter
	linker   *Linker
	notifier notifications.Service
	logger   *slog.Logger
}

// Dependencies are the collaborators of an Importer.
type Dependencies struct {
	Catalog  tmdb.Catalog
	Resolver PersonResolver
	Assets   AssetImporter
	Notifier notifications.Service
}

// NewImporterWithDependencies allows injecting collaborators (used in tests).
func NewImporterWithDependencies(cfg *config.Config, st *store.Store, logger *slog.Logger, deps Dependencies) *Importer {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	return &Importer{
		cfg:      cfg,
		store:    st,
		catalog:  deps.Catalog,
		resolver: deps.Resolver,
		assets:   deps.Assets,
		linker:   NewLinker(st),
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "importer"),
	}
}

// Linker returns the back-reference writer used by the importer.
func (i *Importer) Linker() *Linker {
	return i.linker
}

// ImportFilm imports the film with the given catalog id. A film that is
// already cataloged returns immediately with AlreadyExists set and without
// any network traffic. Only an unreachable catalog or a failed film write is
// returned as an error; people that cannot be resolved are listed in
// MissingPersonIDs and their credits are omitted.
func (i *Importer) ImportFilm(ctx context.Context, externalID string) (*Result, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, services.Wrap(services.ErrValidation, "importer", "import", "film external id required", nil)
	}
	ctx = services.WithFilmExternalID(ctx, externalID)
	logger := logging.WithContext(ctx, i.logger)

	existing, err := i.store.FindFilmByExternalID(ctx, externalID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "importer", "existence check", "find film", err)
	}
	if existing != nil {
		logger.Info("film already imported",
			logging.String(logging.FieldFilmID, existing.ID),
			logging.String("title", existing.Title),
		)
		return &Result{
			FilmID:           existing.ID,
			Title:            existing.Title,
			MissingPersonIDs: []string{},
			AlreadyExists:    true,
			Credits:          len(existing.Credits),
		}, nil
	}

	started := time.Now()
	result, err := i.importNew(ctx, externalID, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "film import failed", "film_import_failed",
			logging.Error(err),
			logging.Bool("fatal", services.IsFatal(err)),
			logging.String(logging.FieldErrorHint, "rerun the import; completed work is kept"),
		)
		if notifyErr := i.notifier.NotifyImportFailed(ctx, externalID, err); notifyErr != nil {
			logger.Debug("import failure notification failed", logging.Error(notifyErr))
		}
		return nil, err
	}
	logger.Info("film imported",
		logging.String(logging.FieldFilmID, result.FilmID),
		logging.String("title", result.Title),
		logging.Int("credits", result.Credits),
		logging.Int("missing", len(result.MissingPersonIDs)),
		logging.Duration("duration", time.Since(started)),
	)
	return result, nil
}

func (i *Importer) importNew(ctx context.Context, externalID string, logger *slog.Logger) (*Result, error) {
	details, err := i.catalog.MovieDetails(ctx, externalID)
	if err != nil {
		return nil, asCatalogError("movie details", err)
	}
	credits, err := i.catalog.MovieCredits(ctx, externalID)
	if err != nil {
		return nil, asCatalogError("movie credits", err)
	}
	title := strings.TrimSpace(details.Title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "importer", "import", "catalog returned film without title", nil)
	}

	film := &store.Film{
		ExternalID:     externalID,
		Title:          title,
		Slug:           textutil.SlugWithSuffix(title, externalID),
		Synopsis:       strings.TrimSpace(details.Overview),
		ReleaseDate:    strings.TrimSpace(details.ReleaseDate),
		RuntimeMinutes: details.Runtime,
		Rating:         store.Rating{Average: details.VoteAverage, Count: details.VoteCount},
		IMDBID:         strings.TrimSpace(details.IMDBID),
		Genres:         details.GenreNames(),
	}
	if trailer, ok := details.Trailer(i.cfg.Import.TrailerSite); ok {
		film.TrailerURL = trailer.URL()
	} else {
		logger.Debug("no trailer found", logging.String("site", i.cfg.Import.TrailerSite))
	}
	film.Poster, film.Backdrop = i.importArtwork(ctx, details)

	missing := NewMissingSet()
	candidates := selectCandidates(credits, i.cfg.Import.CastLimit, i.cfg.Import.CrewJobs, i.catalog.ImageURL)
	film.Credits, err = i.resolveCredits(ctx, candidates, missing)
	if err != nil {
		return nil, err
	}
	i.recordGaps(ctx, externalID, candidates, missing, logger)

	if err := i.store.CreateFilm(ctx, film); err != nil {
		if errors.Is(err, store.ErrFilmExists) {
			return i.concurrentImport(ctx, externalID, missing, logger)
		}
		return nil, services.Wrap(services.ErrPersistence, "importer", "create film", "write film document", err)
	}
	stored, err := i.store.FindFilmByExternalID(ctx, externalID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "importer", "create film", "re-fetch film", err)
	}
	if stored == nil {
		return nil, services.Wrap(services.ErrPersistence, "importer", "create film", "film missing after write", nil)
	}

	for _, credit := range stored.Credits {
		if _, err := i.linker.link(ctx, credit.PersonID, stored, credit.Role, credit.Department); err != nil {
			logging.WarnWithContext(logger, "back-reference write failed", "back_reference_failed",
				logging.String(logging.FieldPersonID, credit.PersonID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "person does not list this film yet"),
				logging.String(logging.FieldErrorHint, "run marquee repair"),
			)
		}
	}

	result := &Result{
		FilmID:           stored.ID,
		Title:            stored.Title,
		MissingPersonIDs: missing.IDs(),
		Credits:          len(stored.Credits),
	}
	i.notifyCompleted(ctx, result, logger)
	return result, nil
}

// importArtwork imports poster and backdrop concurrently. Either may be nil.
func (i *Importer) importArtwork(ctx context.Context, details *tmdb.MovieDetails) (poster, backdrop *store.AssetRef) {
	if i.assets == nil {
		return nil, nil
	}
	var g errgroup.Group
	if url := i.catalog.ImageURL(details.PosterPath); url != "" {
		g.Go(func() error {
			poster = i.assets.ImportAsset(ctx, url)
			return nil
		})
	}
	if url := i.catalog.ImageURL(details.BackdropPath); url != "" {
		g.Go(func() error {
			backdrop = i.assets.ImportAsset(ctx, url)
			return nil
		})
	}
	_ = g.Wait()
	return poster, backdrop
}

// resolveCredits resolves candidates with bounded parallelism and returns the
// credits of those that resolved, in candidate order. Cancellation abandons
// the remaining work; people already created are kept.
func (i *Importer) resolveCredits(ctx context.Context, candidates []candidate, missing *MissingSet) ([]store.Credit, error) {
	resolved := make([]string, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, i.cfg.Import.ResolveConcurrency))
	for idx, c := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if id, ok := i.resolver.Resolve(gctx, c.hint, missing); ok {
				resolved[idx] = id
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, services.Wrap(services.ErrTimeout, "importer", "resolve credits", "credit resolution abandoned", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTimeout, "importer", "resolve credits", "credit resolution abandoned", err)
	}

	credits := make([]store.Credit, 0, len(candidates))
	for idx, c := range candidates {
		if resolved[idx] == "" {
			continue
		}
		credits = append(credits, store.Credit{
			Key:              c.key(),
			PersonID:         resolved[idx],
			PersonExternalID: c.hint.ExternalID,
			Name:             c.hint.Name,
			Role:             c.role,
			Department:       c.department,
		})
	}
	return credits, nil
}

func (i *Importer) recordGaps(ctx context.Context, filmExternalID string, candidates []candidate, missing *MissingSet, logger *slog.Logger) {
	if missing.Len() == 0 {
		return
	}
	for _, c := range candidates {
		if !missing.Contains(c.hint.ExternalID) {
			continue
		}
		if err := i.store.RecordGap(ctx, store.Gap{
			FilmExternalID:   filmExternalID,
			PersonExternalID: c.hint.ExternalID,
			Name:             c.hint.Name,
			Department:       c.department,
			Role:             c.role,
		}); err != nil {
			logging.WarnWithContext(logger, "gap not recorded", "gap_record_failed",
				logging.String(logging.FieldPersonExternalID, c.hint.ExternalID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "gap only visible in this result"),
			)
		}
	}
}

// concurrentImport handles losing the film creation race to another import
// of the same external id.
func (i *Importer) concurrentImport(ctx context.Context, externalID string, missing *MissingSet, logger *slog.Logger) (*Result, error) {
	winner, err := i.store.FindFilmByExternalID(ctx, externalID)
	if err != nil || winner == nil {
		return nil, services.Wrap(services.ErrPersistence, "importer", "create film", "film conflict without stored film", err)
	}
	logger.Info("film created concurrently elsewhere; using stored record",
		logging.Args(logging.DecisionAttrs("film_create", "reuse", "external id conflict")...)...,
	)
	return &Result{
		FilmID:           winner.ID,
		Title:            winner.Title,
		MissingPersonIDs: missing.IDs(),
		AlreadyExists:    true,
		Credits:          len(winner.Credits),
	}, nil
}

func (i *Importer) notifyCompleted(ctx context.Context, result *Result, logger *slog.Logger) {
	if err := i.notifier.NotifyImportCompleted(ctx, result.Title, result.Credits, len(result.MissingPersonIDs)); err != nil {
		logger.Debug("import notification failed", logging.Error(err))
	}
	if len(result.MissingPersonIDs) == 0 {
		return
	}
	if err := i.notifier.NotifyMissingPeople(ctx, result.Title, result.MissingPersonIDs); err != nil {
		logger.Debug("missing people notification failed", logging.Error(err))
	}
}

func asCatalogError(op string, err error) error {
	if errors.Is(err, services.ErrCatalogUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "importer", op, "catalog fetch interrupted", err)
	}
	return services.Wrap(services.ErrCatalogUnavailable, "importer", op, "catalog fetch failed", err)
}

// String renders a one-line summary of the result.
func (r *Result) String() string {
	if r == nil {
		return ""
	}
	if r.AlreadyExists {
		return fmt.Sprintf("%s already imported (%s)", r.Title, r.FilmID)
	}
	return fmt.Sprintf("%s imported as %s with %d credits, %d missing", r.Title, r.FilmID, r.Credits, len(r.MissingPersonIDs))
}
