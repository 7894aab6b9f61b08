// Package cache stores previously computed assessments keyed by the
// fingerprints of the reference answer and the student response. The cache
// outlives individual grading runs; identical inputs grade to identical
// results, so entries are written once and then reused verbatim.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// ErrMiss indicates no assessment is stored for the requested pair.
var ErrMiss = errors.New("assessment cache miss")

// AssessmentCache maps (referenceFingerprint, responseFingerprint) pairs to
// previously computed assessment results. The same response against a
// different reference is a distinct key: caching is always reference-scoped.
type AssessmentCache interface {
	Get(ctx context.Context, referenceFingerprint, responseFingerprint string) (models.AssessmentSet, error)
	Put(ctx context.Context, referenceFingerprint, responseFingerprint string, assessments models.AssessmentSet) error
}

func cacheKey(referenceFingerprint, responseFingerprint string) string {
	return fmt.Sprintf("assessment:%s:%s", referenceFingerprint, responseFingerprint)
}
