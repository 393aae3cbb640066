package services

import "context"

type contextKey string

const (
	filmExternalIDKey contextKey = "film_external_id"
	requestIDKey      contextKey = "request_id"
)

// WithFilmExternalID annotates context with the catalog id of the film being imported.
func WithFilmExternalID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, filmExternalIDKey, id)
}

// FilmExternalIDFromContext extracts the catalog film id if present.
func FilmExternalIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(filmExternalIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
