package people

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"marquee/internal/enrichment"
	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/store"
	"marquee/internal/textutil"
)

// Enricher synthesizes person attributes.
type Enricher interface {
	Enrich(ctx context.Context, hint enrichment.PersonHint, existing *store.Person) (store.PersonAttributes, error)
}

// AssetImporter imports a remote image, returning nil on failure.
type AssetImporter interface {
	ImportAsset(ctx context.Context, remoteURL string) *store.AssetRef
}

// PersonStore is the persistence the resolver needs.
type PersonStore interface {
	FindPersonByExternalID(ctx context.Context, externalID string) (*store.Person, error)
	GetPerson(ctx context.Context, id string) (*store.Person, error)
	CreatePerson(ctx context.Context, person *store.Person) (*store.Person, bool, error)
	PatchPerson(ctx context.Context, id string, attrs store.PersonAttributes, profile *store.AssetRef) error
}

// MissingReporter accumulates external ids that could not be resolved.
type MissingReporter interface {
	Add(externalID string)
}

// Resolver maps catalog person ids to internal person ids, creating people
// on first sight.
type Resolver struct {
	store    PersonStore
	enricher Enricher
	assets   AssetImporter
	logger   *slog.Logger
	group    singleflight.Group
}

// NewResolver constructs a Resolver. assets may be nil, in which case people
// are stored without a profile image.
func NewResolver(st PersonStore, enricher Enricher, assets AssetImporter, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:    st,
		enricher: enricher,
		assets:   assets,
		logger:   logging.NewComponentLogger(logger, "people"),
	}
}

// Resolve returns the internal id for hint.ExternalID. An existing person is
// returned without enrichment. Otherwise the person is enriched and created;
// concurrent resolutions of the same external id share one enrichment. On
// any failure the external id is reported to missing and ok is false.
func (r *Resolver) Resolve(ctx context.Context, hint enrichment.PersonHint, missing MissingReporter) (id string, ok bool) {
	externalID := strings.TrimSpace(hint.ExternalID)
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldPersonExternalID, externalID),
	)
	if externalID == "" {
		logging.WarnWithContext(logger, "credit without person id skipped", "person_resolution_skipped",
			logging.String("name", hint.Name),
			logging.String(logging.FieldImpact, "credit omitted"),
		)
		return "", false
	}
	hint.ExternalID = externalID

	leader := false
	value, err, shared := r.group.Do(externalID, func() (any, error) {
		leader = true
		return r.resolve(ctx, hint, logger)
	})
	if err != nil && !leader && ctx.Err() == nil && isCancellation(err) {
		// The shared call ran under another caller's context, which ended.
		logger.Debug("shared person resolution cancelled by its owner; resolving again")
		value, err = r.resolve(ctx, hint, logger)
	}
	if err != nil {
		if missing != nil {
			missing.Add(externalID)
		}
		logging.WarnWithContext(logger, "person resolution failed", "person_resolution_failed",
			logging.String("name", hint.Name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "credit omitted and reported as missing"),
			logging.String(logging.FieldErrorHint, "retry later with marquee attach"),
		)
		return "", false
	}
	if shared {
		logger.Debug("person resolution shared with concurrent caller")
	}
	return value.(string), true
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (r *Resolver) resolve(ctx context.Context, hint enrichment.PersonHint, logger *slog.Logger) (string, error) {
	existing, err := r.store.FindPersonByExternalID(ctx, hint.ExternalID)
	if err != nil {
		return "", services.Wrap(services.ErrPersistence, "people", "lookup", "find person", err)
	}
	if existing != nil {
		logger.Debug("person already cataloged", logging.String(logging.FieldPersonID, existing.ID))
		return existing.ID, nil
	}
	if r.enricher == nil {
		return "", services.Wrap(services.ErrConfiguration, "people", "enrich", "enricher not configured", nil)
	}

	attrs, err := r.enricher.Enrich(ctx, hint, nil)
	if err != nil {
		return "", fmt.Errorf("enrich %s: %w", hint.Name, err)
	}
	var profile *store.AssetRef
	if r.assets != nil && hint.ProfileURL != "" {
		profile = r.assets.ImportAsset(ctx, hint.ProfileURL)
	}

	person := &store.Person{
		ExternalID:       hint.ExternalID,
		Name:             strings.TrimSpace(hint.Name),
		Slug:             textutil.SlugWithSuffix(hint.Name, hint.ExternalID),
		PersonAttributes: attrs,
		ProfileImage:     profile,
		Popularity:       hint.Popularity,
	}
	stored, created, err := r.store.CreatePerson(ctx, person)
	if err != nil {
		return "", services.Wrap(services.ErrPersistence, "people", "create", "store person", err)
	}
	if created {
		logger.Info("person created",
			logging.String(logging.FieldPersonID, stored.ID),
			logging.String("name", stored.Name),
			logging.Bool("profile_image", stored.ProfileImage != nil),
		)
	} else {
		logger.Info("person created concurrently elsewhere; using stored record",
			logging.Args(logging.DecisionAttrs("person_create", "reuse", "external id conflict")...)...,
		)
	}
	return stored.ID, nil
}

// ErrPersonNotFound is returned by Refresh for unknown ids.
var ErrPersonNotFound = errors.New("person not found")

// Refresh re-enriches an existing person and patches the stored attributes.
// The biography is only generated and written when the stored one is empty.
// Credits are left untouched.
func (r *Resolver) Refresh(ctx context.Context, personID string) (*store.Person, error) {
	existing, err := r.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "people", "refresh", "load person", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", ErrPersonNotFound, personID)
	}
	if r.enricher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "people", "refresh", "enricher not configured", nil)
	}
	hint := enrichment.PersonHint{
		ExternalID: existing.ExternalID,
		Name:       existing.Name,
		Popularity: existing.Popularity,
	}
	attrs, err := r.enricher.Enrich(ctx, hint, existing)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", existing.Name, err)
	}
	if strings.TrimSpace(existing.Biography) != "" {
		attrs.Biography = ""
	}
	if err := r.store.PatchPerson(ctx, existing.ID, attrs, nil); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "people", "refresh", "patch person", err)
	}
	refreshed, err := r.store.GetPerson(ctx, existing.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "people", "refresh", "reload person", err)
	}
	r.logger.Info("person refreshed",
		logging.String(logging.FieldPersonID, refreshed.ID),
		logging.Bool("biography_backfilled", existing.Biography == "" && refreshed.Biography != ""),
	)
	return refreshed, nil
}
