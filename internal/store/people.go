package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const personColumns = "id, external_id, name, slug, country, date_of_birth, deceased, date_of_death, gender, ethnicity, eye_color, hair_color, height, body_type, professions_json, seo_keywords_json, intro, biography, profile_image_json, popularity, credits_json, created_at, updated_at"

func scanPerson(scanner rowScanner) (*Person, error) {
	var (
		person      Person
		deceased    int64
		professions sql.NullString
		keywords    sql.NullString
		profile     sql.NullString
		credits     sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	attrs := &person.PersonAttributes
	if err := scanner.Scan(
		&person.ID,
		&person.ExternalID,
		&person.Name,
		&person.Slug,
		&attrs.Country,
		&attrs.DateOfBirth,
		&deceased,
		&attrs.DateOfDeath,
		&attrs.Gender,
		&attrs.Ethnicity,
		&attrs.EyeColor,
		&attrs.HairColor,
		&attrs.Height,
		&attrs.BodyType,
		&professions,
		&keywords,
		&attrs.Intro,
		&attrs.Biography,
		&profile,
		&person.Popularity,
		&credits,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	attrs.Deceased = deceased != 0

	var err error
	if attrs.Professions, err = decodeList[string](professions); err != nil {
		return nil, fmt.Errorf("person %s professions: %w", person.ID, err)
	}
	if attrs.SEOKeywords, err = decodeList[string](keywords); err != nil {
		return nil, fmt.Errorf("person %s seo keywords: %w", person.ID, err)
	}
	if person.ProfileImage, err = decodeRef(profile); err != nil {
		return nil, fmt.Errorf("person %s profile image: %w", person.ID, err)
	}
	if person.Credits, err = decodeList[PersonCredit](credits); err != nil {
		return nil, fmt.Errorf("person %s credits: %w", person.ID, err)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		person.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		person.UpdatedAt = updated
	}
	return &person, nil
}

// FindPersonByExternalID returns the person with the catalog id, or nil.
func (s *Store) FindPersonByExternalID(ctx context.Context, externalID string) (*Person, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+personColumns+" FROM people WHERE external_id = ?",
		strings.TrimSpace(externalID),
	)
	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find person by external id: %w", err)
	}
	return person, nil
}

// GetPerson returns the person with the internal id, or nil.
func (s *Store) GetPerson(ctx context.Context, id string) (*Person, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+personColumns+" FROM people WHERE id = ?", id)
	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return person, nil
}

// CreatePerson inserts person unless a person with the same external id
// already exists, then returns the stored row. created is false when another
// writer got there first; the caller receives that writer's document.
func (s *Store) CreatePerson(ctx context.Context, person *Person) (stored *Person, created bool, err error) {
	if person == nil {
		return nil, false, errors.New("create person: nil person")
	}
	externalID := strings.TrimSpace(person.ExternalID)
	if externalID == "" {
		return nil, false, errors.New("create person: external id required")
	}
	if strings.TrimSpace(person.Name) == "" {
		return nil, false, errors.New("create person: name required")
	}
	attrs := person.PersonAttributes
	if attrs.Gender == "" {
		attrs.Gender = GenderNotSpecified
	}
	professions, err := encodeList(attrs.Professions)
	if err != nil {
		return nil, false, fmt.Errorf("encode professions: %w", err)
	}
	keywords, err := encodeList(attrs.SEOKeywords)
	if err != nil {
		return nil, false, fmt.Errorf("encode seo keywords: %w", err)
	}
	credits, err := encodeList(person.Credits)
	if err != nil {
		return nil, false, fmt.Errorf("encode credits: %w", err)
	}
	profile, err := nullableRef(person.ProfileImage)
	if err != nil {
		return nil, false, err
	}
	now := nowString()

	res, err := s.execWithRetry(ctx,
		`INSERT INTO people (
            id, external_id, name, slug, country, date_of_birth, deceased, date_of_death,
            gender, ethnicity, eye_color, hair_color, height, body_type, professions_json,
            seo_keywords_json, intro, biography, profile_image_json, popularity, credits_json,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(external_id) DO NOTHING`,
		newID(),
		externalID,
		person.Name,
		person.Slug,
		attrs.Country,
		attrs.DateOfBirth,
		boolToInt(attrs.Deceased),
		attrs.DateOfDeath,
		attrs.Gender,
		attrs.Ethnicity,
		attrs.EyeColor,
		attrs.HairColor,
		attrs.Height,
		attrs.BodyType,
		professions,
		keywords,
		attrs.Intro,
		attrs.Biography,
		profile,
		person.Popularity,
		credits,
		now,
		now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert person rows affected: %w", err)
	}

	stored, err = s.FindPersonByExternalID(ctx, externalID)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, fmt.Errorf("person %s missing after insert", externalID)
	}
	return stored, affected > 0, nil
}

// PatchPerson refreshes the enrichable attributes of a person. Empty values
// leave the stored value untouched, the deceased flag is never cleared, and
// the biography is written only while the stored biography is empty. A
// profile image is set only when none is stored.
func (s *Store) PatchPerson(ctx context.Context, id string, attrs PersonAttributes, profile *AssetRef) error {
	professions := ""
	if len(attrs.Professions) > 0 {
		encoded, err := encodeList(attrs.Professions)
		if err != nil {
			return fmt.Errorf("encode professions: %w", err)
		}
		professions = encoded
	}
	keywords := ""
	if len(attrs.SEOKeywords) > 0 {
		encoded, err := encodeList(attrs.SEOKeywords)
		if err != nil {
			return fmt.Errorf("encode seo keywords: %w", err)
		}
		keywords = encoded
	}
	profileValue, err := nullableRef(profile)
	if err != nil {
		return err
	}
	gender := attrs.Gender
	if gender == GenderNotSpecified {
		gender = ""
	}

	res, err := s.execWithRetry(ctx,
		`UPDATE people SET
            country = COALESCE(NULLIF(?, ''), country),
            date_of_birth = COALESCE(NULLIF(?, ''), date_of_birth),
            deceased = MAX(deceased, ?),
            date_of_death = COALESCE(NULLIF(?, ''), date_of_death),
            gender = COALESCE(NULLIF(?, ''), gender),
            ethnicity = COALESCE(NULLIF(?, ''), ethnicity),
            eye_color = COALESCE(NULLIF(?, ''), eye_color),
            hair_color = COALESCE(NULLIF(?, ''), hair_color),
            height = COALESCE(NULLIF(?, ''), height),
            body_type = COALESCE(NULLIF(?, ''), body_type),
            professions_json = COALESCE(NULLIF(?, ''), professions_json),
            seo_keywords_json = COALESCE(NULLIF(?, ''), seo_keywords_json),
            intro = COALESCE(NULLIF(?, ''), intro),
            biography = CASE WHEN biography = '' THEN ? ELSE biography END,
            profile_image_json = COALESCE(profile_image_json, ?),
            updated_at = ?
          WHERE id = ?`,
		attrs.Country,
		attrs.DateOfBirth,
		boolToInt(attrs.Deceased),
		attrs.DateOfDeath,
		gender,
		attrs.Ethnicity,
		attrs.EyeColor,
		attrs.HairColor,
		attrs.Height,
		attrs.BodyType,
		professions,
		keywords,
		attrs.Intro,
		attrs.Biography,
		profileValue,
		nowString(),
		id,
	)
	if err != nil {
		return fmt.Errorf("patch person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("patch person rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("patch person %s: not found", id)
	}
	return nil
}

// AppendPersonCredit appends a film back-reference to the person unless one
// for the same film id already exists. It reports whether an entry was added.
// The check and the append happen in one statement so concurrent callers
// cannot both append. An unknown person id returns ErrPersonNotFound.
func (s *Store) AppendPersonCredit(ctx context.Context, personID string, credit PersonCredit) (bool, error) {
	if strings.TrimSpace(credit.FilmID) == "" {
		return false, errors.New("append person credit: film id required")
	}
	encoded, err := encodeJSON(credit)
	if err != nil {
		return false, fmt.Errorf("encode person credit: %w", err)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE people
            SET credits_json = json_insert(credits_json, '$[#]', json(?)), updated_at = ?
          WHERE id = ?
            AND NOT EXISTS (
                SELECT 1 FROM json_each(people.credits_json)
                 WHERE json_extract(value, '$.film_id') = ?
            )`,
		encoded,
		nowString(),
		personID,
		credit.FilmID,
	)
	if err != nil {
		return false, fmt.Errorf("append person credit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append person credit rows affected: %w", err)
	}
	if affected > 0 {
		return true, nil
	}
	var exists int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM people WHERE id = ?", personID).Scan(&exists); err != nil {
		return false, fmt.Errorf("append person credit lookup: %w", err)
	}
	if exists == 0 {
		return false, fmt.Errorf("%w: %s", ErrPersonNotFound, personID)
	}
	return false, nil
}
