package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/notifications"
	"marquee/internal/services"
	"marquee/internal/store"
)

// ErrRepairInProgress is returned when another repair holds the lock.
var ErrRepairInProgress = errors.New("repair already running")

// RepairReport summarizes a reconciliation pass.
type RepairReport struct {
	FilmsScanned   int           `json:"films_scanned"`
	CreditsChecked int           `json:"credits_checked"`
	LinksAdded     int           `json:"links_added"`
	Failures       int           `json:"failures"`
	Duration       time.Duration `json:"duration"`
}

// Reconciler rewrites missing person back-references for every film credit.
// Because the linker is idempotent the pass can be repeated safely, for
// example after a crash between a film write and its back-reference writes.
type Reconciler struct {
	store    *store.Store
	linker   *Linker
	lockPath string
	notifier notifications.Service
	logger   *slog.Logger
}

// NewReconciler constructs a Reconciler guarded by the configured lock file.
func NewReconciler(cfg *config.Config, st *store.Store, notifier notifications.Service, logger *slog.Logger) *Reconciler {
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	return &Reconciler{
		store:    st,
		linker:   NewLinker(st),
		lockPath: cfg.RepairLockPath(),
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "repair"),
	}
}

// Run scans every film. Individual link failures are counted and logged;
// only a failure to list films, a held lock, or cancellation stop the pass.
func (r *Reconciler) Run(ctx context.Context) (*RepairReport, error) {
	lock := flock.New(r.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire repair lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrRepairInProgress, r.lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release repair lock", logging.Error(err))
		}
	}()

	started := time.Now()
	films, err := r.store.ListFilms(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "repair", "list films", "load films", err)
	}

	report := &RepairReport{}
	for _, film := range films {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.FilmsScanned++
		for _, credit := range film.Credits {
			report.CreditsChecked++
			added, err := r.linker.link(ctx, credit.PersonID, film, credit.Role, credit.Department)
			if err != nil {
				report.Failures++
				logging.WarnWithContext(r.logger, "back-reference repair failed", "back_reference_repair_failed",
					logging.String(logging.FieldFilmID, film.ID),
					logging.String(logging.FieldPersonID, credit.PersonID),
					logging.Error(err),
					logging.String(logging.FieldImpact, "person still lacks this film"),
				)
				continue
			}
			if added {
				report.LinksAdded++
				r.logger.Info("back-reference restored",
					logging.String(logging.FieldFilmID, film.ID),
					logging.String(logging.FieldPersonID, credit.PersonID),
				)
			}
		}
	}
	report.Duration = time.Since(started)

	r.logger.Info("repair complete",
		logging.Int("films", report.FilmsScanned),
		logging.Int("credits", report.CreditsChecked),
		logging.Int("links_added", report.LinksAdded),
		logging.Int("failures", report.Failures),
		logging.Duration("duration", report.Duration),
	)
	if err := r.notifier.NotifyRepairCompleted(ctx, report.FilmsScanned, report.LinksAdded, report.Duration); err != nil {
		r.logger.Debug("repair notification failed", logging.Error(err))
	}
	return report, nil
}
