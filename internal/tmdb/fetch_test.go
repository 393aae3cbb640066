package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/services"
	"marquee/internal/tmdb"
)

func TestFetchJSONRetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":550}`))
	}))
	t.Cleanup(server.Close)

	var out struct {
		ID int64 `json:"id"`
	}
	err := tmdb.NewFetcher().FetchJSON(context.Background(), server.URL, time.Second, 2, &out)
	if err != nil {
		t.Fatalf("FetchJSON returned error: %v", err)
	}
	if out.ID != 550 {
		t.Fatalf("unexpected payload %+v", out)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestFetchJSONExhaustionIsCatalogUnavailable(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	var out map[string]any
	err := tmdb.NewFetcher().FetchJSON(context.Background(), server.URL, time.Second, 2, &out)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, services.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatalf("expected exhaustion to be fatal: %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 1+2 attempts, got %d", hits.Load())
	}
}

func TestFetchJSONPerAttemptTimeout(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-release:
			}
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	var out struct {
		OK bool `json:"ok"`
	}
	start := time.Now()
	err := tmdb.NewFetcher().FetchJSON(context.Background(), server.URL, 50*time.Millisecond, 1, &out)
	if err != nil {
		t.Fatalf("FetchJSON returned error: %v", err)
	}
	if !out.OK {
		t.Fatal("expected second attempt payload")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout not enforced, took %s", elapsed)
	}
}

func TestFetchJSONRetriesUndecodableBody(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = w.Write([]byte(`<html>`))
			return
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	t.Cleanup(server.Close)

	var out struct {
		ID int64 `json:"id"`
	}
	if err := tmdb.NewFetcher().FetchJSON(context.Background(), server.URL, time.Second, 1, &out); err != nil {
		t.Fatalf("FetchJSON returned error: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits.Load())
	}
}

func TestFetchJSONStopsOnCancellation(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out map[string]any
	err := tmdb.NewFetcher().FetchJSON(ctx, server.URL, time.Second, 5, &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no attempts after cancellation, got %d", hits.Load())
	}
}
