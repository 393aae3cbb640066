package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marquee/internal/enrichment"
	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/store"
)

// ErrPersonUnresolved is returned by AttachCredit when the person could not
// be resolved.
var ErrPersonUnresolved = errors.New("person could not be resolved")

// AttachRequest names a credit to add to a cataloged film. With no
// department, every gap recorded for the pair is attached; a department
// selects one credit. Name and role default to the matching gap.
type AttachRequest struct {
	FilmExternalID   string
	PersonExternalID string
	Name             string
	Department       string
	Role             string
}

// AttachedCredit reports one credit handled by AttachCredit.
type AttachedCredit struct {
	Department string `json:"department"`
	Role       string `json:"role,omitempty"`
	Added      bool   `json:"added"`
	GapCleared bool   `json:"gap_cleared"`
}

// AttachResult reports what AttachCredit changed. CreditAdded and GapCleared
// are true when any credit was added or any gap cleared.
type AttachResult struct {
	FilmID      string           `json:"film_id"`
	PersonID    string           `json:"person_id"`
	CreditAdded bool             `json:"credit_added"`
	Linked      bool             `json:"linked"`
	GapCleared  bool             `json:"gap_cleared"`
	Credits     []AttachedCredit `json:"credits"`
}

type attachTarget struct {
	name       string
	department string
	role       string
}

// AttachCredit adds credits to a film that is already cataloged. It is the
// remediation path for people reported missing during the original import:
// the person is resolved (and created if needed), each credit is appended
// unless the film already has one for the same person and department, the
// back-reference is written and the matching gaps are cleared. Repeating the
// call changes nothing.
func (i *Importer) AttachCredit(ctx context.Context, req AttachRequest) (*AttachResult, error) {
	req.FilmExternalID = strings.TrimSpace(req.FilmExternalID)
	req.PersonExternalID = strings.TrimSpace(req.PersonExternalID)
	if req.FilmExternalID == "" || req.PersonExternalID == "" {
		return nil, services.Wrap(services.ErrValidation, "importer", "attach", "film and person external ids required", nil)
	}
	ctx = services.WithFilmExternalID(ctx, req.FilmExternalID)
	logger := logging.WithContext(ctx, i.logger).With(
		logging.String(logging.FieldPersonExternalID, req.PersonExternalID),
	)

	film, err := i.store.FindFilmByExternalID(ctx, req.FilmExternalID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "importer", "attach", "find film", err)
	}
	if film == nil {
		return nil, fmt.Errorf("%w: external id %s", ErrFilmNotFound, req.FilmExternalID)
	}
	targets, err := i.attachTargets(ctx, req)
	if err != nil {
		return nil, err
	}

	first := targets[0]
	missing := NewMissingSet()
	personID, ok := i.resolver.Resolve(ctx, enrichment.PersonHint{
		ExternalID: req.PersonExternalID,
		Name:       first.name,
		Department: first.department,
		Role:       first.role,
	}, missing)
	if !ok {
		for _, target := range targets {
			if err := i.store.RecordGap(ctx, store.Gap{
				FilmExternalID:   req.FilmExternalID,
				PersonExternalID: req.PersonExternalID,
				Name:             target.name,
				Department:       target.department,
				Role:             target.role,
			}); err != nil {
				logger.Debug("gap not recorded", logging.Error(err))
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrPersonUnresolved, req.PersonExternalID)
	}

	result := &AttachResult{FilmID: film.ID, PersonID: personID}
	for _, target := range targets {
		attached := AttachedCredit{Department: target.department, Role: target.role}
		attached.Added, err = i.store.AppendFilmCredit(ctx, film.ID, store.Credit{
			Key:              creditKey(req.PersonExternalID, target.department),
			PersonID:         personID,
			PersonExternalID: req.PersonExternalID,
			Name:             target.name,
			Role:             target.role,
			Department:       target.department,
		})
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "importer", "attach", "append film credit", err)
		}
		linked, err := i.linker.link(ctx, personID, film, target.role, target.department)
		if err != nil {
			return nil, err
		}
		attached.GapCleared, err = i.store.ClearGap(ctx, req.FilmExternalID, req.PersonExternalID, target.department)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "importer", "attach", "clear gap", err)
		}
		result.CreditAdded = result.CreditAdded || attached.Added
		result.Linked = result.Linked || linked
		result.GapCleared = result.GapCleared || attached.GapCleared
		result.Credits = append(result.Credits, attached)
	}

	logger.Info("credit attached",
		logging.String(logging.FieldFilmID, film.ID),
		logging.String(logging.FieldPersonID, personID),
		logging.Int("credits", len(result.Credits)),
		logging.Bool("credit_added", result.CreditAdded),
		logging.Bool("linked", result.Linked),
		logging.Bool("gap_cleared", result.GapCleared),
	)
	return result, nil
}

// attachTargets expands a request into the credits to attach, filling blanks
// from the gaps recorded for the pair.
func (i *Importer) attachTargets(ctx context.Context, req AttachRequest) ([]attachTarget, error) {
	name := strings.TrimSpace(req.Name)
	department := strings.TrimSpace(req.Department)
	role := strings.TrimSpace(req.Role)

	all, err := i.store.ListGaps(ctx, req.FilmExternalID)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "importer", "attach", "list gaps", err)
	}
	var gaps []store.Gap
	for _, gap := range all {
		if gap.PersonExternalID == req.PersonExternalID {
			gaps = append(gaps, gap)
		}
	}

	if department != "" {
		target := attachTarget{name: name, department: department, role: role}
		for _, gap := range gaps {
			if target.name == "" {
				target.name = gap.Name
			}
			if strings.EqualFold(gap.Department, department) {
				target.department = gap.Department
				if target.role == "" {
					target.role = gap.Role
				}
			}
		}
		return []attachTarget{target}, nil
	}

	if len(gaps) == 0 {
		return nil, services.Wrap(services.ErrValidation, "importer", "attach", "department required when no gap is recorded", nil)
	}
	targets := make([]attachTarget, 0, len(gaps))
	for _, gap := range gaps {
		target := attachTarget{name: name, department: gap.Department, role: gap.Role}
		if target.name == "" {
			target.name = gap.Name
		}
		if role != "" && len(gaps) == 1 {
			target.role = role
		}
		targets = append(targets, target)
	}
	return targets, nil
}
