package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ellarun/ellarun/internal/errors"
	"github.com/ellarun/ellarun/internal/sqlite"
)

// sweepBatchSize bounds how many expired entries a single sweep removes so
// that a put never stalls behind a large backlog.
const sweepBatchSize = 10

// sqliteCacheRepository stores generated plans keyed by profile fingerprint.
//
// The cache is a pure optimization: every failure here degrades to a cache
// miss and is logged, never propagated. Callers must not treat a miss as an
// error.
type sqliteCacheRepository struct {
	baseRepository
	ttl time.Duration
	now func() time.Time
}

func newSQLiteCacheRepository(db *sqlite.Database, logger *slog.Logger, ttl time.Duration) *sqliteCacheRepository {
	return &sqliteCacheRepository{
		baseRepository: newBaseRepository(db, logger),
		ttl:            ttl,
		now:            time.Now,
	}
}

// Get returns the cached plan for the profile if present and fresh.
//
// Expired entries are deleted as a side effect of the lookup. On a hit the
// entry's access count and last-accessed timestamp are updated and the
// returned plan is annotated with the cache source.
func (r *sqliteCacheRepository) Get(ctx context.Context, profile Profile) (Plan, bool) {
	key := cacheKeyOf(profile)

	var (
		planJSON   string
		expiresStr string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT plan, expires_at
		FROM plan_cache
		WHERE cache_key = ?`, key).Scan(&planJSON, &expiresStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, false
	}
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "plan cache lookup failed", errors.SlogError(err))
		return Plan{}, false
	}

	expiresAt, err := parseTimestamp(expiresStr)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "plan cache entry has invalid expiry", errors.SlogError(err))
		r.delete(ctx, key)
		return Plan{}, false
	}
	if r.now().After(expiresAt) {
		r.delete(ctx, key)
		return Plan{}, false
	}

	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		UPDATE plan_cache
		SET access_count = access_count + 1, last_accessed = ?
		WHERE cache_key = ?`, formatTimestamp(r.now()), key); err != nil {
		// The hit still counts even if the bookkeeping write fails.
		r.logger.LogAttrs(ctx, slog.LevelWarn, "plan cache hit bookkeeping failed", errors.SlogError(err))
	}

	var cached Plan
	if err = json.Unmarshal([]byte(planJSON), &cached); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "plan cache entry is corrupt", errors.SlogError(err))
		r.delete(ctx, key)
		return Plan{}, false
	}
	cached.Source = SourceCache

	return cached, true
}

// Put upserts the plan for the profile with a fresh TTL window and sweeps a
// bounded batch of expired entries afterwards.
func (r *sqliteCacheRepository) Put(ctx context.Context, profile Profile, p Plan, source Source) error {
	planJSON, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal plan")
	}

	now := r.now()
	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO plan_cache (cache_key, plan, source, cached_at, expires_at, access_count, last_accessed)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			plan = excluded.plan,
			source = excluded.source,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at,
			access_count = 1,
			last_accessed = excluded.last_accessed`,
		cacheKeyOf(profile),
		string(planJSON),
		string(source),
		formatTimestamp(now),
		formatTimestamp(now.Add(r.ttl)),
		formatTimestamp(now),
	); err != nil {
		return errors.Wrap(err, "upsert plan cache entry")
	}

	r.SweepExpired(ctx, sweepBatchSize)

	return nil
}

// SweepExpired deletes up to maxBatch expired entries. Side-effect only.
func (r *sqliteCacheRepository) SweepExpired(ctx context.Context, maxBatch int) {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM plan_cache
		WHERE cache_key IN (
			SELECT cache_key FROM plan_cache WHERE expires_at < ? LIMIT ?
		)`, formatTimestamp(r.now()), maxBatch); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "plan cache sweep failed", errors.SlogError(err))
	}
}

// Stats aggregates cache usage for diagnostics.
func (r *sqliteCacheRepository) Stats(ctx context.Context) (CacheStats, error) {
	var (
		stats     CacheStats
		totalHits sql.NullInt64
	)
	nowStr := formatTimestamp(r.now())
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE expires_at >= ?),
		       COUNT(*) FILTER (WHERE expires_at < ?),
		       SUM(access_count)
		FROM plan_cache`, nowStr, nowStr).
		Scan(&stats.TotalCached, &stats.ValidCache, &stats.ExpiredCache, &totalHits)
	if err != nil {
		return CacheStats{}, errors.Wrap(err, "query plan cache stats")
	}

	stats.TotalHits = int(totalHits.Int64)
	if stats.TotalCached > 0 {
		stats.AverageHitsPerWorkout = float64(stats.TotalHits) / float64(stats.TotalCached)
	}

	return stats, nil
}

func (r *sqliteCacheRepository) delete(ctx context.Context, key string) {
	if _, err := r.db.ReadWrite.ExecContext(ctx,
		"DELETE FROM plan_cache WHERE cache_key = ?", key); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "plan cache delete failed", errors.SlogError(err))
	}
}
