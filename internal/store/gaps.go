package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// RecordGap persists an unresolved credit. Gaps are keyed like credits, so a
// person missing in two departments of one film has two rows. Recording the
// same (film, person, department) again refreshes the row.
func (s *Store) RecordGap(ctx context.Context, gap Gap) error {
	if strings.TrimSpace(gap.FilmExternalID) == "" || strings.TrimSpace(gap.PersonExternalID) == "" {
		return errors.New("record gap: film and person external ids required")
	}
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO import_gaps (film_external_id, person_external_id, name, department, role, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(film_external_id, person_external_id, department) DO UPDATE SET
            name = excluded.name,
            role = excluded.role,
            recorded_at = excluded.recorded_at`,
		gap.FilmExternalID,
		gap.PersonExternalID,
		gap.Name,
		gap.Department,
		gap.Role,
		nowString(),
	); err != nil {
		return fmt.Errorf("record gap: %w", err)
	}
	return nil
}

// ListGaps returns recorded gaps, optionally filtered to one film.
func (s *Store) ListGaps(ctx context.Context, filmExternalID string) ([]Gap, error) {
	query := "SELECT film_external_id, person_external_id, name, department, role, recorded_at FROM import_gaps"
	var args []any
	if filmExternalID = strings.TrimSpace(filmExternalID); filmExternalID != "" {
		query += " WHERE film_external_id = ?"
		args = append(args, filmExternalID)
	}
	query += " ORDER BY film_external_id, person_external_id, department"

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list gaps: %w", err)
	}
	defer rows.Close()

	var gaps []Gap
	for rows.Next() {
		var (
			gap      Gap
			recorded sql.NullString
		)
		if err := rows.Scan(&gap.FilmExternalID, &gap.PersonExternalID, &gap.Name, &gap.Department, &gap.Role, &recorded); err != nil {
			return nil, fmt.Errorf("scan gap: %w", err)
		}
		if ts, err := parseTimeString(recorded.String); err == nil {
			gap.RecordedAt = ts
		}
		gaps = append(gaps, gap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gaps: %w", err)
	}
	return gaps, nil
}

// ClearGap removes the gap recorded for one credit. It reports whether a row
// was deleted.
func (s *Store) ClearGap(ctx context.Context, filmExternalID, personExternalID, department string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		"DELETE FROM import_gaps WHERE film_external_id = ? AND person_external_id = ? AND department = ?",
		filmExternalID,
		personExternalID,
		department,
	)
	if err != nil {
		return false, fmt.Errorf("clear gap: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear gap rows affected: %w", err)
	}
	return affected > 0, nil
}
