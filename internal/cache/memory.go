package cache

import (
	"context"
	"sync"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// MemoryCache is a process-local AssessmentCache used in tests and in
// deployments without Redis. Entries never expire.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.AssessmentSet
}

// NewMemoryCache builds an empty in-memory assessment cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]models.AssessmentSet)}
}

// Get returns the stored assessment for the pair, or ErrMiss.
func (m *MemoryCache) Get(ctx context.Context, referenceFingerprint, responseFingerprint string) (models.AssessmentSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.entries[cacheKey(referenceFingerprint, responseFingerprint)]
	if !ok {
		return nil, ErrMiss
	}

	return copySet(stored), nil
}

// Put stores the assessment under the pair's key.
func (m *MemoryCache) Put(ctx context.Context, referenceFingerprint, responseFingerprint string, assessments models.AssessmentSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[cacheKey(referenceFingerprint, responseFingerprint)] = copySet(assessments)
	return nil
}

// Len reports the number of stored entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func copySet(set models.AssessmentSet) models.AssessmentSet {
	copied := make(models.AssessmentSet, len(set))
	for criterion, assessment := range set {
		copied[criterion] = assessment
	}
	return copied
}
