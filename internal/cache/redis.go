package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader-api/internal/models"
)

// RedisCache persists assessments in Redis as JSON payloads so they survive
// service restarts and are shared between grader instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisCache wraps the provided Redis client. A TTL of zero keeps
// entries indefinitely; retention is otherwise an operational choice.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "assessment_cache").Logger(),
	}
}

// Get returns the stored assessment for the pair, or ErrMiss.
func (r *RedisCache) Get(ctx context.Context, referenceFingerprint, responseFingerprint string) (models.AssessmentSet, error) {
	payload, err := r.client.Get(ctx, cacheKey(referenceFingerprint, responseFingerprint)).Result()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read assessment cache: %w", err)
	}

	var assessments models.AssessmentSet
	if err := json.Unmarshal([]byte(payload), &assessments); err != nil {
		// A corrupt entry is treated as a miss so the unit is re-dispatched
		// instead of propagating garbage into submissions.
		r.logger.Warn().Err(err).Msg("discarding malformed cache entry")
		return nil, ErrMiss
	}

	return assessments, nil
}

// Put stores the assessment under the pair's key.
func (r *RedisCache) Put(ctx context.Context, referenceFingerprint, responseFingerprint string, assessments models.AssessmentSet) error {
	payload, err := json.Marshal(assessments)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey(referenceFingerprint, responseFingerprint), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("write assessment cache: %w", err)
	}

	return nil
}
