// Package cache keeps short-lived snapshots of the duplicate-check corpus in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/hostel-issues/internal/domain"
	"github.com/spec-kit/hostel-issues/internal/repository"
)

const (
	generationKey = "intake:corpus:gen"
	snapshotKey   = "intake:corpus:%d:%s"
)

// CorpusSource loads the corpus from the system of record.
type CorpusSource interface {
	ListCorpus(ctx context.Context, scope repository.CorpusScope) ([]domain.Issue, error)
}

// corpusEntry is the cached projection of an issue; only what scoring and
// candidate rendering read is kept.
type corpusEntry struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      domain.IssueStatus `json:"status"`
	IsPublic    bool               `json:"is_public"`
	CreatedBy   string             `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CorpusCache serves corpus snapshots from Redis and falls back to the
// source whenever Redis is missing or failing. Writes bump a generation
// counter so stale snapshots are never read again.
type CorpusCache struct {
	client *redis.Client
	source CorpusSource
	ttl    time.Duration
	logger *zap.Logger
}

// NewCorpusCache wraps source. A nil client or non-positive ttl disables caching.
func NewCorpusCache(client *redis.Client, source CorpusSource, ttl time.Duration, logger *zap.Logger) *CorpusCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CorpusCache{client: client, source: source, ttl: ttl, logger: logger}
}

func (c *CorpusCache) enabled() bool {
	return c.client != nil && c.ttl > 0
}

// ListCorpus returns the corpus for scope, from cache when possible.
func (c *CorpusCache) ListCorpus(ctx context.Context, scope repository.CorpusScope) ([]domain.Issue, error) {
	if !c.enabled() {
		return c.source.ListCorpus(ctx, scope)
	}

	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("corpus cache unavailable", zap.Error(err))
		return c.source.ListCorpus(ctx, scope)
	}
	key := fmt.Sprintf(snapshotKey, gen, scopeKey(scope))

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entries []corpusEntry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return toIssues(entries), nil
		}
		c.logger.Warn("discarding unreadable corpus snapshot", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("corpus cache read failed", zap.String("key", key), zap.Error(err))
		return c.source.ListCorpus(ctx, scope)
	}

	issues, err := c.source.ListCorpus(ctx, scope)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(toEntries(issues))
	if err != nil {
		return issues, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("corpus cache write failed", zap.String("key", key), zap.Error(err))
	}
	return issues, nil
}

// Invalidate retires every cached snapshot.
func (c *CorpusCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, generationKey).Err()
}

func scopeKey(scope repository.CorpusScope) string {
	if scope.IncludePrivate {
		return fmt.Sprintf("all:%d", scope.Limit)
	}
	return fmt.Sprintf("viewer:%s:%d", scope.ViewerID, scope.Limit)
}

func toEntries(issues []domain.Issue) []corpusEntry {
	entries := make([]corpusEntry, len(issues))
	for i, issue := range issues {
		entries[i] = corpusEntry{
			ID:          issue.ID,
			Title:       issue.Title,
			Description: issue.Description,
			Status:      issue.Status,
			IsPublic:    issue.IsPublic,
			CreatedBy:   issue.CreatedBy,
			CreatedAt:   issue.CreatedAt,
		}
	}
	return entries
}

func toIssues(entries []corpusEntry) []domain.Issue {
	issues := make([]domain.Issue, len(entries))
	for i, e := range entries {
		issues[i] = domain.Issue{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Status:      e.Status,
			IsPublic:    e.IsPublic,
			CreatedBy:   e.CreatedBy,
			CreatedAt:   e.CreatedAt,
		}
	}
	return issues
}
