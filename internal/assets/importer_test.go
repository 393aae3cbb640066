package assets_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"marquee/internal/assets"
	"marquee/internal/store"
	"marquee/internal/testsupport"
)

func newImporter(t *testing.T, maxBytes int64) (*assets.Importer, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	return assets.NewImporter(cfg.Paths.AssetDir, 2*time.Second, maxBytes, st), st
}

func TestImportAssetStoresImage(t *testing.T) {
	body := testsupport.PNG(t, 1)
	server := testsupport.NewImageServer(t, body, "image/png")
	imp, st := newImporter(t, 1<<20)

	ref := imp.ImportAsset(context.Background(), server.URL+"/poster.png")
	if ref == nil {
		t.Fatal("expected asset reference")
	}
	if ref.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", ref.ContentType)
	}
	asset, err := st.GetAsset(context.Background(), ref.AssetID)
	if err != nil || asset == nil {
		t.Fatalf("GetAsset returned %#v, %v", asset, err)
	}
	data, err := os.ReadFile(asset.Path)
	if err != nil {
		t.Fatalf("read stored asset: %v", err)
	}
	if len(data) != len(body) || asset.SizeBytes != int64(len(body)) {
		t.Fatalf("stored %d bytes, want %d", len(data), len(body))
	}
}

func TestImportAssetSameContentSameReference(t *testing.T) {
	server := testsupport.NewImageServer(t, testsupport.PNG(t, 2), "image/png")
	imp, _ := newImporter(t, 1<<20)

	first := imp.ImportAsset(context.Background(), server.URL+"/a.png")
	second := imp.ImportAsset(context.Background(), server.URL+"/b.png")
	if first == nil || second == nil {
		t.Fatal("expected both imports to succeed")
	}
	if first.AssetID != second.AssetID {
		t.Fatalf("expected deduplicated asset, got %s and %s", first.AssetID, second.AssetID)
	}
}

func TestImportAssetFailuresReturnNil(t *testing.T) {
	image := testsupport.NewImageServer(t, testsupport.PNG(t, 3), "image/png")
	html := testsupport.NewImageServer(t, []byte("<html></html>"), "text/html")
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	imp := assets.NewImporter(cfg.Paths.AssetDir, 100*time.Millisecond, 16, st)

	cases := map[string]string{
		"not found":   image.URL + "/missing.png",
		"not image":   html.URL + "/page",
		"too large":   image.URL + "/poster.png",
		"timeout":     slow.URL + "/slow.png",
		"empty url":   "",
		"unreachable": "http://127.0.0.1:1/x.png",
	}
	for name, url := range cases {
		if ref := imp.ImportAsset(context.Background(), url); ref != nil {
			t.Fatalf("%s: expected nil reference, got %#v", name, ref)
		}
	}
}

type failingStore struct{}

func (failingStore) UpsertAsset(context.Context, store.Asset) (*store.Asset, error) {
	return nil, errors.New("disk full")
}

func TestImportAssetMetadataFailureReturnsNil(t *testing.T) {
	server := testsupport.NewImageServer(t, testsupport.PNG(t, 4), "image/png")
	imp := assets.NewImporter(t.TempDir(), time.Second, 1<<20, failingStore{})
	if ref := imp.ImportAsset(context.Background(), server.URL+"/p.png"); ref != nil {
		t.Fatalf("expected nil reference, got %#v", ref)
	}
}
