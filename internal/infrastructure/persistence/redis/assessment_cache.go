package redis

import (
	"context"
	"errors"
	"time"

	"github.com/edusignal/student-risk-hub/internal/domain/risk"
	"github.com/edusignal/student-risk-hub/pkg/circuitbreaker"
	"github.com/edusignal/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT CACHE
// Write-through for the latest assessment per student, cache-aside for
// the cohort summary. Every operation is best-effort: a broken cache
// must never break an assessment, so all calls run behind a circuit
// breaker and reads report an open circuit as a miss.
// ══════════════════════════════════════════════════════════════════════════════

// AssessmentCache caches risk assessments in Redis.
type AssessmentCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
}

// NewAssessmentCache creates an AssessmentCache with the given TTL for
// latest-assessment entries. The summary entry uses the same TTL.
func NewAssessmentCache(cache *Cache, ttl time.Duration, log *logger.Logger) *AssessmentCache {
	if ttl <= 0 {
		ttl = time.Hour
	}

	onStateChange := func(name string, from, to circuitbreaker.State) {
		if log != nil {
			log.Warn("cache circuit state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		}
	}

	return &AssessmentCache{
		cache:   cache,
		breaker: circuitbreaker.CacheBreaker(onStateChange),
		ttl:     ttl,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Write side
// ─────────────────────────────────────────────────────────────────────────────

// SetLatest stores a student's latest assessment.
func (c *AssessmentCache) SetLatest(ctx context.Context, a *risk.Assessment) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Set(ctx, LatestAssessmentKey(a.StudentID), a, c.ttl)
	})
}

// InvalidateSummary drops the cached cohort summary so the next read
// recomputes it from Postgres.
func (c *AssessmentCache) InvalidateSummary(ctx context.Context) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Delete(ctx, PrefixSummary)
	})
}

// InvalidateStudent drops a student's cached latest assessment.
func (c *AssessmentCache) InvalidateStudent(ctx context.Context, studentID string) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Delete(ctx, LatestAssessmentKey(studentID))
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Read side
// ─────────────────────────────────────────────────────────────────────────────

// GetLatest returns a student's cached latest assessment, or (nil, nil)
// on a miss. An open circuit counts as a miss.
func (c *AssessmentCache) GetLatest(ctx context.Context, studentID string) (*risk.Assessment, error) {
	var a risk.Assessment

	err := c.execRead(ctx, func(ctx context.Context) error {
		return c.cache.Get(ctx, LatestAssessmentKey(studentID), &a)
	})
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetSummary returns the cached cohort summary, or (nil, nil) on a miss.
func (c *AssessmentCache) GetSummary(ctx context.Context) (*risk.Summary, error) {
	var s risk.Summary

	err := c.execRead(ctx, func(ctx context.Context) error {
		return c.cache.Get(ctx, PrefixSummary, &s)
	})
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// SetSummary stores the cohort summary.
func (c *AssessmentCache) SetSummary(ctx context.Context, s *risk.Summary) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Set(ctx, PrefixSummary, s, c.ttl)
	})
}

// execRead runs a read through the breaker, translating an open
// circuit into a cache miss so query handlers fall back to Postgres.
func (c *AssessmentCache) execRead(ctx context.Context, fn func(context.Context) error) error {
	return c.breaker.ExecuteWithFallback(ctx, fn, func(error) error {
		return ErrCacheMiss
	})
}
