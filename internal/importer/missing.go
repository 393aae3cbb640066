package importer

import (
	"slices"
	"strings"
	"sync"
)

// MissingSet accumulates the external person ids that could not be resolved
// during one film import. It is safe for concurrent use.
type MissingSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMissingSet returns an empty set.
func NewMissingSet() *MissingSet {
	return &MissingSet{ids: make(map[string]struct{})}
}

// Add records externalID. Blank ids are ignored.
func (m *MissingSet) Add(externalID string) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids == nil {
		m.ids = make(map[string]struct{})
	}
	m.ids[externalID] = struct{}{}
}

// Contains reports whether externalID was recorded.
func (m *MissingSet) Contains(externalID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[strings.TrimSpace(externalID)]
	return ok
}

// IDs returns the recorded ids in sorted order.
func (m *MissingSet) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of recorded ids.
func (m *MissingSet) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids)
}
