package tmdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marquee/internal/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New(tmdb.Options{BaseURL: "https://example.com"}, nil); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *tmdb.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := tmdb.New(tmdb.Options{
		APIKey:       "key",
		BaseURL:      server.URL,
		ImageBaseURL: "https://image.example/t/p/original/",
		Language:     "en-US",
		Timeout:      time.Second,
		MaxRetries:   1,
	}, tmdb.NewFetcher())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestMovieDetailsAppendsVideos(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("append_to_response") != "videos" || query.Get("api_key") != "key" || query.Get("language") != "en-US" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{
			"id": 550,
			"title": "Fight Club",
			"runtime": 139,
			"imdb_id": "tt0137523",
			"genres": [{"id": 18, "name": "Drama"}],
			"videos": {"results": [
				{"key": "teaser", "site": "YouTube", "type": "Teaser"},
				{"key": "vimeo1", "site": "Vimeo", "type": "Trailer"},
				{"key": "SUXWAEX2jlg", "site": "YouTube", "type": "Trailer"}
			]}
		}`))
	})

	details, err := client.MovieDetails(context.Background(), "550")
	if err != nil {
		t.Fatalf("MovieDetails returned error: %v", err)
	}
	if details.Title != "Fight Club" || details.Runtime != 139 {
		t.Fatalf("unexpected details %+v", details)
	}
	trailer, ok := details.Trailer("YouTube")
	if !ok || trailer.Key != "SUXWAEX2jlg" {
		t.Fatalf("unexpected trailer %+v ok=%v", trailer, ok)
	}
	if got := trailer.URL(); got != "https://www.youtube.com/watch?v=SUXWAEX2jlg" {
		t.Fatalf("unexpected trailer url %q", got)
	}
	if names := details.GenreNames(); len(names) != 1 || names[0] != "Drama" {
		t.Fatalf("unexpected genres %v", names)
	}
}

func TestTrailerAbsentIsNotAnError(t *testing.T) {
	details := &tmdb.MovieDetails{}
	if _, ok := details.Trailer("YouTube"); ok {
		t.Fatal("expected no trailer")
	}
}

func TestMovieCredits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550/credits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"id": 550,
			"cast": [{"id": 287, "name": "Brad Pitt", "character": "Tyler Durden", "credit_id": "c1", "gender": 2}],
			"crew": [{"id": 7467, "name": "David Fincher", "job": "Director", "department": "Directing", "credit_id": "c2"}]
		}`))
	})

	credits, err := client.MovieCredits(context.Background(), "550")
	if err != nil {
		t.Fatalf("MovieCredits returned error: %v", err)
	}
	if len(credits.Cast) != 1 || credits.Cast[0].Character != "Tyler Durden" {
		t.Fatalf("unexpected cast %+v", credits.Cast)
	}
	if len(credits.Crew) != 1 || credits.Crew[0].Job != "Director" {
		t.Fatalf("unexpected crew %+v", credits.Crew)
	}
}

func TestMovieDetailsRejectsEmptyID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	if _, err := client.MovieDetails(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestImageURL(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	if got := client.ImageURL("/poster.jpg"); got != "https://image.example/t/p/original/poster.jpg" {
		t.Fatalf("unexpected image url %q", got)
	}
	if got := client.ImageURL(""); got != "" {
		t.Fatalf("expected empty url, got %q", got)
	}
}
