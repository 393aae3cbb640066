package testsupport

import (
	"testing"

	"marquee/internal/config"
	"marquee/internal/store"
)

// MustOpenStore opens the catalog store for cfg and closes it when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}
