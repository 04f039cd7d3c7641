package reports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/clinic_backend/config"
	"github.com/mmdatafocus/clinic_backend/models"
	"github.com/mmdatafocus/clinic_backend/utils"
	"github.com/redis/go-redis/v9"
)

// ReportCache is an explicitly constructed instance, not a module-level
// singleton, so tests run with independent isolated caches. A nil client is
// a permanent miss: every operation degrades to a no-op.
//
// Nothing is written until the report object is fully assembled, so a
// concurrent reader sees either the complete old value or a miss, never a
// partial report.
type ReportCache struct {
	client redis.UniversalClient
	locker *redislock.Client
	ttl    time.Duration
}

func NewReportCache(client redis.UniversalClient, ttl time.Duration) *ReportCache {
	rc := &ReportCache{client: client, ttl: ttl}
	if client != nil {
		rc.locker = redislock.New(client)
	}
	return rc
}

// DefaultReportCache wires the process-wide Redis client and lock client, or a
// disabled cache when caching is off or Redis is not connected.
func DefaultReportCache() *ReportCache {
	if !config.ReportCacheEnabled() {
		return NewReportCache(nil, 0)
	}
	rc := NewReportCache(config.GetRedisDB(), config.ReportCacheTTL())
	if l := config.GetRedisLock(); l != nil {
		rc.locker = l
	}
	return rc
}

// GenerateKey derives a deterministic cache key from the report type, tenant
// and content-shaping parameters: canonicalize params (json.Marshal sorts map
// keys), hash, and keep the first 16 hex chars.
//
// Format: report:<type>:<tenant>:<hash16>. Segments are colon-delimited and
// the tenant segment is escaped, so tenant- and type-scoped invalidation
// patterns cannot cross-match.
func GenerateKey(reportType models.ReportType, tenantId string, params map[string]any) string {
	canonical, err := json.Marshal(params)
	if err != nil {
		canonical = []byte(fmt.Sprintf("%v", params))
	}
	digest := sha256.Sum256(canonical)
	return models.ReportCacheKey(reportType, tenantId, hex.EncodeToString(digest[:])[:16])
}

// Get loads a cached report into dest. (false, nil) is a miss.
func (rc *ReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if rc == nil || rc.client == nil {
		return false, nil
	}
	val, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, &utils.CacheError{Op: "get", Err: err}
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, &utils.CacheError{Op: "get", Err: err}
	}
	return true, nil
}

// Set stores a fully assembled report. It never fails the caller: the return
// value reports whether the write happened.
func (rc *ReportCache) Set(ctx context.Context, key string, value any) bool {
	if rc == nil || rc.client == nil {
		return false
	}
	payload, err := json.Marshal(value)
	if err != nil {
		config.LogError(config.GetLogger(), "reports", "ReportCache.Set", key, nil, err)
		return false
	}
	if err := rc.client.Set(ctx, key, payload, rc.ttl).Err(); err != nil {
		config.LogError(config.GetLogger(), "reports", "ReportCache.Set", key, nil, err)
		return false
	}
	return true
}

// InvalidateTenant removes every cached report of one tenant. Other tenants'
// entries are untouched: the tenant occupies a fixed colon-delimited segment.
func (rc *ReportCache) InvalidateTenant(ctx context.Context, tenantId string) (int, error) {
	return rc.deleteByPattern(ctx, models.ReportCacheTenantPattern(tenantId))
}

// InvalidateTenantByType removes one tenant's entries for a single report
// type, leaving the tenant's other report types alone.
func (rc *ReportCache) InvalidateTenantByType(ctx context.Context, tenantId string, reportType models.ReportType) (int, error) {
	return rc.deleteByPattern(ctx, models.ReportCacheTenantTypePattern(reportType, tenantId))
}

func (rc *ReportCache) deleteByPattern(ctx context.Context, pattern string) (int, error) {
	if rc == nil || rc.client == nil {
		return 0, nil
	}
	var removed int
	iter := rc.client.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := rc.client.Del(ctx, batch...).Err(); err != nil {
			return err
		}
		removed += len(batch)
		batch = batch[:0]
		return nil
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := flush(); err != nil {
				return removed, &utils.CacheError{Op: "invalidate", Err: err}
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, &utils.CacheError{Op: "invalidate", Err: err}
	}
	if err := flush(); err != nil {
		return removed, &utils.CacheError{Op: "invalidate", Err: err}
	}
	return removed, nil
}

// withComputeLock serializes cold-cache computation per key so N identical
// concurrent requests hit the source tables once. Lock acquisition is
// best-effort: if the lock cannot be obtained the caller computes anyway.
func (rc *ReportCache) withComputeLock(ctx context.Context, key string, fn func() error) error {
	if rc == nil || rc.locker == nil {
		return fn()
	}
	lock, err := rc.locker.Obtain(ctx, "lock:"+key, 10*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if err != nil {
		return fn()
	}
	defer lock.Release(ctx)
	return fn()
}

// slow-report logging, threshold tuned by REPORT_SLOW_MS.
func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < config.ReportSlowMs() {
		return
	}
	tenant, _ := utils.GetTenantIdFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	log.Printf("slow_report name=%s ms=%d tenant_id=%s correlation_id=%s extra=%v", name, d.Milliseconds(), tenant, cid, extra)
}
