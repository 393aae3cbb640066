package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type rowScanner interface{ Scan(dest ...any) error }

func newID() string {
	return uuid.NewString()
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func encodeJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func encodeList[T any](values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	return encodeJSON(values)
}

func nullableRef(ref *AssetRef) (any, error) {
	if ref == nil {
		return nil, nil
	}
	encoded, err := encodeJSON(ref)
	if err != nil {
		return nil, fmt.Errorf("encode asset ref: %w", err)
	}
	return encoded, nil
}

func decodeRef(raw sql.NullString) (*AssetRef, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var ref AssetRef
	if err := json.Unmarshal([]byte(raw.String), &ref); err != nil {
		return nil, fmt.Errorf("decode asset ref: %w", err)
	}
	return &ref, nil
}

func decodeList[T any](raw sql.NullString) ([]T, error) {
	out := []T{}
	if !raw.Valid || raw.String == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}
