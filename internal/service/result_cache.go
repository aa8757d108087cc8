package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bandwise/bandwise-go-api/internal/dto"
)

const cacheKeyPrefix = "score:"

// ResultCache is the content-addressed cache for scoring responses. It is an
// optional collaborator: when the backing store is down every lookup misses
// and every write is dropped with a warning, so scoring degrades to
// always-compute instead of failing.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewResultCache builds a cache with the given TTL. A nil client yields a
// cache that never hits.
func NewResultCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "result_cache").Logger(),
	}
}

// Fingerprint derives the deterministic cache key from normalized request
// content. Feature-analysis and feedback toggles are deliberately excluded:
// they shape response presentation, not the scoring outcome.
func Fingerprint(text, taskType, language, prompt string) string {
	normalizedText := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	normalizedPrompt := strings.Join(strings.Fields(strings.ToLower(prompt)), " ")

	h := sha256.New()
	h.Write([]byte(normalizedText))
	h.Write([]byte{0x1f})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(taskType))))
	h.Write([]byte{0x1f})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(language))))
	h.Write([]byte{0x1f})
	h.Write([]byte(normalizedPrompt))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached response for a fingerprint, if present and fresh.
func (c *ResultCache) Get(ctx context.Context, fingerprint string) (*dto.ScoringResponse, bool) {
	if c.client == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, cacheKeyPrefix+fingerprint).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("result cache read failed, degrading to compute")
		}
		return nil, false
	}

	var response dto.ScoringResponse
	if err := json.Unmarshal([]byte(payload), &response); err != nil {
		c.logger.Warn().Err(err).Msg("discarding unreadable cache entry")
		return nil, false
	}
	return &response, true
}

// Set stores a freshly computed response under its fingerprint. Feature
// analysis is stripped before storage because it is recomputed per request
// and may have been disabled by the request that produced this entry.
func (c *ResultCache) Set(ctx context.Context, fingerprint string, response dto.ScoringResponse) {
	if c.client == nil {
		return
	}

	response.FeatureAnalysis = nil
	response.Cached = false

	payload, err := json.Marshal(response)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to serialize scoring response for cache")
		return
	}

	if err := c.client.Set(ctx, cacheKeyPrefix+fingerprint, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("result cache write failed")
	}
}
