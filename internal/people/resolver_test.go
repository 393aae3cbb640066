package people_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/enrichment"
	"marquee/internal/people"
	"marquee/internal/store"
	"marquee/internal/testsupport"
)

type countingEnricher struct {
	calls   atomic.Int32
	delay   time.Duration
	fail    map[string]bool
	bio     string
	lastBio string
	mu      sync.Mutex
}

func (e *countingEnricher) Enrich(_ context.Context, hint enrichment.PersonHint, existing *store.Person) (store.PersonAttributes, error) {
	e.calls.Add(1)
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	if e.fail[hint.ExternalID] {
		return store.PersonAttributes{}, errors.New("enrichment unavailable")
	}
	attrs := store.PersonAttributes{
		Country:     "United States",
		Gender:      store.GenderMale,
		Professions: []string{"Actor"},
		SEOKeywords: []string{},
		EyeColor:    "Green",
	}
	if existing == nil || existing.Biography == "" {
		attrs.Biography = e.bio
	}
	e.mu.Lock()
	e.lastBio = attrs.Biography
	e.mu.Unlock()
	return attrs, nil
}

type missingSet struct {
	mu  sync.Mutex
	ids []string
}

func (m *missingSet) Add(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, id)
}

func TestResolveCreatesThenReuses(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	enricher := &countingEnricher{bio: "Generated biography."}
	resolver := people.NewResolver(st, enricher, nil, nil)
	missing := &missingSet{}
	ctx := context.Background()

	hint := enrichment.PersonHint{ExternalID: "287", Name: "Brad Pitt", Popularity: 12.5}
	firstID, ok := resolver.Resolve(ctx, hint, missing)
	if !ok || firstID == "" {
		t.Fatalf("first resolve failed: id=%q ok=%v", firstID, ok)
	}
	// Same person credited on a second film, in a different department.
	hint.Department = "Writing"
	secondID, ok := resolver.Resolve(ctx, hint, missing)
	if !ok || secondID != firstID {
		t.Fatalf("expected reuse of %s, got %q ok=%v", firstID, secondID, ok)
	}
	if got := enricher.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one enrichment, got %d", got)
	}
	if len(missing.ids) != 0 {
		t.Fatalf("unexpected missing ids %v", missing.ids)
	}

	person, _ := st.GetPerson(ctx, firstID)
	if person.Slug != "brad-pitt-287" || person.Country != "United States" || person.Popularity != 12.5 {
		t.Fatalf("unexpected stored person %#v", person)
	}
}

func TestResolveConcurrentSameIDSharesEnrichment(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	enricher := &countingEnricher{delay: 50 * time.Millisecond}
	resolver := people.NewResolver(st, enricher, nil, nil)
	missing := &missingSet{}

	const workers = 6
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], _ = resolver.Resolve(context.Background(), enrichment.PersonHint{ExternalID: "819", Name: "Edward Norton"}, missing)
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id == "" || id != ids[0] {
			t.Fatalf("expected one shared id, got %v", ids)
		}
	}
	if got := enricher.calls.Load(); got != 1 {
		t.Fatalf("expected one enrichment for concurrent callers, got %d", got)
	}
}

// ownerBoundEnricher blocks its first call until the caller's context ends,
// and answers later calls immediately.
type ownerBoundEnricher struct {
	started chan struct{}
	calls   atomic.Int32
}

func (e *ownerBoundEnricher) Enrich(ctx context.Context, hint enrichment.PersonHint, _ *store.Person) (store.PersonAttributes, error) {
	if e.calls.Add(1) == 1 {
		close(e.started)
		<-ctx.Done()
		return store.PersonAttributes{}, ctx.Err()
	}
	return store.PersonAttributes{Gender: store.GenderMale, Professions: []string{"Actor"}, SEOKeywords: []string{}}, nil
}

func TestResolveSurvivesCancellationOfSharedCaller(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	enricher := &ownerBoundEnricher{started: make(chan struct{})}
	resolver := people.NewResolver(st, enricher, nil, nil)
	hint := enrichment.PersonHint{ExternalID: "287", Name: "Brad Pitt"}

	cancelledCtx, cancel := context.WithCancel(context.Background())
	cancelledMissing := &missingSet{}
	cancelledDone := make(chan bool, 1)
	go func() {
		_, ok := resolver.Resolve(cancelledCtx, hint, cancelledMissing)
		cancelledDone <- ok
	}()
	<-enricher.started

	liveMissing := &missingSet{}
	type outcome struct {
		id string
		ok bool
	}
	liveDone := make(chan outcome, 1)
	go func() {
		id, ok := resolver.Resolve(context.Background(), hint, liveMissing)
		liveDone <- outcome{id, ok}
	}()
	// Give the second caller time to join the in-flight resolution.
	time.Sleep(50 * time.Millisecond)
	cancel()

	if ok := <-cancelledDone; ok {
		t.Fatal("expected cancelled caller to fail")
	}
	live := <-liveDone
	if !live.ok || live.id == "" {
		t.Fatalf("expected live caller to resolve, got %+v", live)
	}
	if len(liveMissing.ids) != 0 {
		t.Fatalf("expected nothing reported missing for live caller, got %v", liveMissing.ids)
	}
	person, _ := st.FindPersonByExternalID(context.Background(), "287")
	if person == nil || person.ID != live.id {
		t.Fatalf("expected stored person %s, got %#v", live.id, person)
	}
}

func TestResolveFailureReportsMissing(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	enricher := &countingEnricher{fail: map[string]bool{"404": true}}
	resolver := people.NewResolver(st, enricher, nil, nil)
	missing := &missingSet{}

	id, ok := resolver.Resolve(context.Background(), enrichment.PersonHint{ExternalID: "404", Name: "Ghost"}, missing)
	if ok || id != "" {
		t.Fatalf("expected failure, got id=%q ok=%v", id, ok)
	}
	if len(missing.ids) != 1 || missing.ids[0] != "404" {
		t.Fatalf("expected 404 reported missing, got %v", missing.ids)
	}
	person, _ := st.FindPersonByExternalID(context.Background(), "404")
	if person != nil {
		t.Fatalf("expected no stored person, got %#v", person)
	}
}

func TestResolveBlankExternalIDSkipped(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	enricher := &countingEnricher{}
	resolver := people.NewResolver(st, enricher, nil, nil)

	if _, ok := resolver.Resolve(context.Background(), enrichment.PersonHint{Name: "No Id"}, &missingSet{}); ok {
		t.Fatal("expected blank external id to fail")
	}
	if enricher.calls.Load() != 0 {
		t.Fatal("expected no enrichment for blank id")
	}
}

type recordingAssets struct {
	mu   sync.Mutex
	urls []string
}

func (a *recordingAssets) ImportAsset(_ context.Context, url string) *store.AssetRef {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.urls = append(a.urls, url)
	if url == "" {
		return nil
	}
	return &store.AssetRef{AssetID: "profile-1", URL: "/assets/profile.jpg", ContentType: "image/jpeg"}
}

func TestResolveImportsProfileImage(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	assets := &recordingAssets{}
	resolver := people.NewResolver(st, &countingEnricher{}, assets, nil)

	id, ok := resolver.Resolve(context.Background(), enrichment.PersonHint{ExternalID: "1", Name: "A", ProfileURL: "https://img/a.jpg"}, &missingSet{})
	if !ok {
		t.Fatal("resolve failed")
	}
	person, _ := st.GetPerson(context.Background(), id)
	if person.ProfileImage == nil || person.ProfileImage.AssetID != "profile-1" {
		t.Fatalf("expected profile image, got %#v", person.ProfileImage)
	}
	sort.Strings(assets.urls)
	if len(assets.urls) != 1 || assets.urls[0] != "https://img/a.jpg" {
		t.Fatalf("unexpected asset imports %v", assets.urls)
	}
}

func TestRefreshPreservesExistingBiography(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	person, _, err := st.CreatePerson(ctx, &store.Person{
		ExternalID:       "287",
		Name:             "Brad Pitt",
		PersonAttributes: store.PersonAttributes{Biography: "Hand-edited biography."},
	})
	if err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}
	enricher := &countingEnricher{bio: "Regenerated biography."}
	resolver := people.NewResolver(st, enricher, nil, nil)

	refreshed, err := resolver.Refresh(ctx, person.ID)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if refreshed.Biography != "Hand-edited biography." {
		t.Fatalf("biography overwritten: %q", refreshed.Biography)
	}
	if refreshed.EyeColor != "Green" {
		t.Fatalf("expected refreshed attributes, got %#v", refreshed.PersonAttributes)
	}
	if enricher.lastBio != "" {
		t.Fatal("expected enrichment to skip biography for a person that has one")
	}
}

func TestRefreshBackfillsEmptyBiography(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	person, _, _ := st.CreatePerson(ctx, &store.Person{ExternalID: "1", Name: "A"})
	resolver := people.NewResolver(st, &countingEnricher{bio: "Fresh biography."}, nil, nil)

	refreshed, err := resolver.Refresh(ctx, person.ID)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if refreshed.Biography != "Fresh biography." {
		t.Fatalf("expected backfilled biography, got %q", refreshed.Biography)
	}
}

func TestRefreshUnknownPerson(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	resolver := people.NewResolver(st, &countingEnricher{}, nil, nil)
	if _, err := resolver.Refresh(context.Background(), "nope"); !errors.Is(err, people.ErrPersonNotFound) {
		t.Fatalf("expected ErrPersonNotFound, got %v", err)
	}
}
