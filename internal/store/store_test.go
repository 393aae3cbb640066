package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"marquee/internal/store"
	"marquee/internal/testsupport"
)

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	_ = reopened.Close()
}

func TestCreateFilmAndLookup(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	film := &store.Film{
		ExternalID:     "550",
		Title:          "Fight Club",
		Slug:           "fight-club",
		RuntimeMinutes: 139,
		Rating:         store.Rating{Average: 8.4, Count: 26280},
		Genres:         []string{"Drama"},
		Poster:         &store.AssetRef{AssetID: "a1", URL: "/assets/a1.jpg", ContentType: "image/jpeg"},
		Credits: []store.Credit{
			{Key: "c1", PersonID: "p1", PersonExternalID: "287", Role: "Tyler Durden", Department: "Acting"},
		},
	}
	if err := st.CreateFilm(ctx, film); err != nil {
		t.Fatalf("CreateFilm failed: %v", err)
	}

	found, err := st.FindFilmByExternalID(ctx, "550")
	if err != nil {
		t.Fatalf("FindFilmByExternalID failed: %v", err)
	}
	if found == nil || found.ID == "" {
		t.Fatalf("expected stored film with id, got %#v", found)
	}
	if found.Title != "Fight Club" || found.Rating.Count != 26280 || found.RuntimeMinutes != 139 {
		t.Fatalf("unexpected film %#v", found)
	}
	if found.Poster == nil || found.Poster.AssetID != "a1" {
		t.Fatalf("expected poster ref, got %#v", found.Poster)
	}
	if found.Backdrop != nil {
		t.Fatalf("expected nil backdrop, got %#v", found.Backdrop)
	}
	if len(found.Credits) != 1 || found.Credits[0].Role != "Tyler Durden" {
		t.Fatalf("unexpected credits %#v", found.Credits)
	}

	byID, err := st.GetFilm(ctx, found.ID)
	if err != nil || byID == nil || byID.ExternalID != "550" {
		t.Fatalf("GetFilm returned %#v, %v", byID, err)
	}

	missing, err := st.FindFilmByExternalID(ctx, "999")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown film, got %#v, %v", missing, err)
	}
}

func TestCreateFilmConflict(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := st.CreateFilm(ctx, &store.Film{ExternalID: "550", Title: "Fight Club"}); err != nil {
		t.Fatalf("CreateFilm failed: %v", err)
	}
	err := st.CreateFilm(ctx, &store.Film{ExternalID: "550", Title: "Fight Club again"})
	if !errors.Is(err, store.ErrFilmExists) {
		t.Fatalf("expected ErrFilmExists, got %v", err)
	}
	films, err := st.ListFilms(ctx)
	if err != nil {
		t.Fatalf("ListFilms failed: %v", err)
	}
	if len(films) != 1 || films[0].Title != "Fight Club" {
		t.Fatalf("expected original film only, got %#v", films)
	}
}

func TestAppendFilmCreditDeduplicatesPersonDepartment(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := st.CreateFilm(ctx, &store.Film{ExternalID: "550", Title: "Fight Club"}); err != nil {
		t.Fatalf("CreateFilm failed: %v", err)
	}
	film, _ := st.FindFilmByExternalID(ctx, "550")

	credit := store.Credit{PersonID: "p1", PersonExternalID: "7467", Role: "Director", Department: "Directing"}
	added, err := st.AppendFilmCredit(ctx, film.ID, credit)
	if err != nil || !added {
		t.Fatalf("first append: added=%v err=%v", added, err)
	}
	added, err = st.AppendFilmCredit(ctx, film.ID, credit)
	if err != nil || added {
		t.Fatalf("second append: added=%v err=%v", added, err)
	}
	writing := credit
	writing.Role = "Screenplay"
	writing.Department = "Writing"
	added, err = st.AppendFilmCredit(ctx, film.ID, writing)
	if err != nil || !added {
		t.Fatalf("other department append: added=%v err=%v", added, err)
	}

	film, _ = st.GetFilm(ctx, film.ID)
	if len(film.Credits) != 2 {
		t.Fatalf("expected 2 credits, got %#v", film.Credits)
	}
	if _, err := uuid.Parse(film.Credits[0].Key); err != nil {
		t.Fatalf("expected generated uuid credit key, got %q", film.Credits[0].Key)
	}
}

func TestCreatePersonConflictReturnsExisting(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first, created, err := st.CreatePerson(ctx, &store.Person{ExternalID: "287", Name: "Brad Pitt"})
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	if first.Gender != store.GenderNotSpecified {
		t.Fatalf("expected default gender, got %q", first.Gender)
	}
	if first.Professions == nil || first.SEOKeywords == nil || first.Credits == nil {
		t.Fatalf("expected empty lists rather than nil, got %#v", first)
	}

	second, created, err := st.CreatePerson(ctx, &store.Person{ExternalID: "287", Name: "Someone Else"})
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if created {
		t.Fatal("expected conflict to report created=false")
	}
	if second.ID != first.ID || second.Name != "Brad Pitt" {
		t.Fatalf("expected existing person, got %#v", second)
	}
}

func TestCreatePersonConcurrentSameExternalID(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			person, _, err := st.CreatePerson(ctx, &store.Person{ExternalID: "819", Name: fmt.Sprintf("Edward Norton %d", i)})
			errs[i] = err
			if person != nil {
				ids[i] = person.ID
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("expected one person id, got %v", ids)
		}
	}
}

func TestPatchPersonPreservesBiography(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	person, _, err := st.CreatePerson(ctx, &store.Person{
		ExternalID: "287",
		Name:       "Brad Pitt",
		PersonAttributes: store.PersonAttributes{
			Country:   "United States",
			Biography: "Original long-form biography.",
			Deceased:  false,
		},
	})
	if err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}

	err = st.PatchPerson(ctx, person.ID, store.PersonAttributes{
		Biography:   "Replacement biography.",
		EyeColor:    "Blue",
		Professions: []string{"Actor", "Producer"},
	}, &store.AssetRef{AssetID: "img"})
	if err != nil {
		t.Fatalf("PatchPerson failed: %v", err)
	}

	patched, _ := st.GetPerson(ctx, person.ID)
	if patched.Biography != "Original long-form biography." {
		t.Fatalf("biography was overwritten: %q", patched.Biography)
	}
	if patched.Country != "United States" {
		t.Fatalf("empty patch value cleared country: %q", patched.Country)
	}
	if patched.EyeColor != "Blue" || len(patched.Professions) != 2 {
		t.Fatalf("patch not applied: %#v", patched.PersonAttributes)
	}
	if patched.ProfileImage == nil || patched.ProfileImage.AssetID != "img" {
		t.Fatalf("expected profile image, got %#v", patched.ProfileImage)
	}
}

func TestPatchPersonBackfillsEmptyBiography(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	person, _, _ := st.CreatePerson(ctx, &store.Person{ExternalID: "1", Name: "Meat Loaf"})
	if err := st.PatchPerson(ctx, person.ID, store.PersonAttributes{Biography: "Generated.", Deceased: true}, nil); err != nil {
		t.Fatalf("PatchPerson failed: %v", err)
	}
	if err := st.PatchPerson(ctx, person.ID, store.PersonAttributes{Deceased: false}, nil); err != nil {
		t.Fatalf("PatchPerson failed: %v", err)
	}
	patched, _ := st.GetPerson(ctx, person.ID)
	if patched.Biography != "Generated." {
		t.Fatalf("expected backfilled biography, got %q", patched.Biography)
	}
	if !patched.Deceased {
		t.Fatal("deceased flag must not be cleared by a later patch")
	}
}

func TestAppendPersonCreditIdempotent(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	person, _, _ := st.CreatePerson(ctx, &store.Person{ExternalID: "287", Name: "Brad Pitt"})
	credit := store.PersonCredit{FilmID: "f1", FilmExternalID: "550", FilmTitle: "Fight Club", Role: "Tyler Durden", Department: "Acting"}

	added, err := st.AppendPersonCredit(ctx, person.ID, credit)
	if err != nil || !added {
		t.Fatalf("first append: added=%v err=%v", added, err)
	}
	added, err = st.AppendPersonCredit(ctx, person.ID, credit)
	if err != nil || added {
		t.Fatalf("second append: added=%v err=%v", added, err)
	}

	reloaded, _ := st.GetPerson(ctx, person.ID)
	if len(reloaded.Credits) != 1 || !reloaded.HasCreditFor("f1") {
		t.Fatalf("expected exactly one back-reference, got %#v", reloaded.Credits)
	}

	added, err = st.AppendPersonCredit(ctx, "no-such-person", credit)
	if !errors.Is(err, store.ErrPersonNotFound) || added {
		t.Fatalf("expected ErrPersonNotFound for unknown person, got added=%v err=%v", added, err)
	}
}

func TestUpsertAssetDeduplicatesBySHA(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first, err := st.UpsertAsset(ctx, store.Asset{SHA256: "ABC", SourceURL: "https://a", ContentType: "image/png", SizeBytes: 3, Path: "/tmp/abc.png"})
	if err != nil {
		t.Fatalf("UpsertAsset failed: %v", err)
	}
	second, err := st.UpsertAsset(ctx, store.Asset{SHA256: "abc", SourceURL: "https://b", ContentType: "image/png", SizeBytes: 3, Path: "/tmp/abc.png"})
	if err != nil {
		t.Fatalf("UpsertAsset failed: %v", err)
	}
	if first.ID != second.ID || second.SourceURL != "https://a" {
		t.Fatalf("expected first row to win, got %#v and %#v", first, second)
	}
	ref := second.Ref()
	if ref.AssetID != first.ID || ref.ContentType != "image/png" {
		t.Fatalf("unexpected ref %#v", ref)
	}
	fetched, err := st.GetAsset(ctx, first.ID)
	if err != nil || fetched == nil {
		t.Fatalf("GetAsset returned %#v, %v", fetched, err)
	}
}

func TestGapsLifecycle(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for _, gap := range []store.Gap{
		{FilmExternalID: "550", PersonExternalID: "1", Name: "A", Department: "Acting"},
		{FilmExternalID: "550", PersonExternalID: "2", Name: "B", Department: "Acting"},
		{FilmExternalID: "603", PersonExternalID: "3", Name: "C", Department: "Directing"},
		{FilmExternalID: "550", PersonExternalID: "1", Name: "A", Department: "Acting"},
		{FilmExternalID: "550", PersonExternalID: "3", Name: "C", Department: "Directing", Role: "Director"},
		{FilmExternalID: "550", PersonExternalID: "3", Name: "C", Department: "Writing", Role: "Screenplay"},
	} {
		if err := st.RecordGap(ctx, gap); err != nil {
			t.Fatalf("RecordGap failed: %v", err)
		}
	}

	all, err := st.ListGaps(ctx, "")
	if err != nil || len(all) != 5 {
		t.Fatalf("expected 5 gaps, got %d (%v)", len(all), err)
	}
	forFilm, _ := st.ListGaps(ctx, "550")
	if len(forFilm) != 4 {
		t.Fatalf("expected 4 gaps for 550, got %d", len(forFilm))
	}
	if forFilm[2].Department != "Directing" || forFilm[3].Department != "Writing" {
		t.Fatalf("expected one gap per department for person 3, got %+v", forFilm[2:])
	}

	cleared, err := st.ClearGap(ctx, "550", "1", "Acting")
	if err != nil || !cleared {
		t.Fatalf("ClearGap: cleared=%v err=%v", cleared, err)
	}
	cleared, _ = st.ClearGap(ctx, "550", "1", "Acting")
	if cleared {
		t.Fatal("expected second clear to be a no-op")
	}

	cleared, _ = st.ClearGap(ctx, "550", "3", "Writing")
	if !cleared {
		t.Fatal("expected writing gap to clear")
	}
	forFilm, _ = st.ListGaps(ctx, "550")
	if len(forFilm) != 2 || forFilm[1].PersonExternalID != "3" || forFilm[1].Department != "Directing" {
		t.Fatalf("expected directing gap to survive, got %+v", forFilm)
	}
}
