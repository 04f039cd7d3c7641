package reports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mmdatafocus/clinic_backend/models"
	"github.com/redis/go-redis/v9"
)

func TestGenerateKey_Deterministic(t *testing.T) {
	params := map[string]any{
		"start_date": "2024-01-01",
		"end_date":   "2024-12-31",
	}
	a := GenerateKey(models.ReportTypeProfitLoss, "tenant-a", params)
	b := GenerateKey(models.ReportTypeProfitLoss, "tenant-a", map[string]any{
		"end_date":   "2024-12-31",
		"start_date": "2024-01-01",
	})
	if a != b {
		t.Fatalf("same params should hash identically: %s vs %s", a, b)
	}
}

func TestGenerateKey_Format(t *testing.T) {
	key := GenerateKey(models.ReportTypeBalanceSheet, "tenant-a", map[string]any{"as_of_date": "2024-06-30"})
	parts := strings.Split(key, ":")
	if len(parts) != 4 {
		t.Fatalf("expected 4 colon-delimited segments, got %q", key)
	}
	if parts[0] != "report" || parts[1] != "balance-sheet" || parts[2] != "tenant-a" {
		t.Fatalf("unexpected key prefix: %q", key)
	}
	if len(parts[3]) != 16 {
		t.Fatalf("expected 16-char hash suffix, got %q", parts[3])
	}
}

func TestGenerateKey_Sensitivity(t *testing.T) {
	base := GenerateKey(models.ReportTypeProfitLoss, "tenant-a", map[string]any{"start_date": "2024-01-01"})
	cases := []struct {
		name string
		key  string
	}{
		{"different params", GenerateKey(models.ReportTypeProfitLoss, "tenant-a", map[string]any{"start_date": "2024-01-02"})},
		{"different tenant", GenerateKey(models.ReportTypeProfitLoss, "tenant-b", map[string]any{"start_date": "2024-01-01"})},
		{"different type", GenerateKey(models.ReportTypeCashFlow, "tenant-a", map[string]any{"start_date": "2024-01-01"})},
	}
	for _, tc := range cases {
		if tc.key == base {
			t.Fatalf("%s should produce a different key", tc.name)
		}
	}
}

func TestGenerateKey_SharedAcrossNonContentParams(t *testing.T) {
	// generated_by and save_to_audit never change report content, so requests
	// differing only in them share one cache entry via cacheParams.
	p1 := &PeriodReportParams{StartDate: "2024-01-01", EndDate: "2024-03-31", GeneratedBy: "alice", SaveToAudit: true}
	p2 := &PeriodReportParams{StartDate: "2024-01-01", EndDate: "2024-03-31", GeneratedBy: "bob", SaveToAudit: false}
	k1 := GenerateKey(models.ReportTypeProfitLoss, "tenant-a", p1.cacheParams())
	k2 := GenerateKey(models.ReportTypeProfitLoss, "tenant-a", p2.cacheParams())
	if k1 != k2 {
		t.Fatalf("cache key must not depend on generated_by/save_to_audit: %s vs %s", k1, k2)
	}
}

func TestReportCache_DisabledIsNoOp(t *testing.T) {
	ctx := context.Background()
	cache := NewReportCache(nil, 0)

	var dest ProfitLossReport
	hit, err := cache.Get(ctx, "report:profit-loss:tenant-a:abc", &dest)
	if err != nil || hit {
		t.Fatalf("disabled cache Get expected (false, nil), got (%v, %v)", hit, err)
	}
	if cache.Set(ctx, "report:profit-loss:tenant-a:abc", &ProfitLossReport{}) {
		t.Fatal("disabled cache Set should report no write")
	}
	if removed, err := cache.InvalidateTenant(ctx, "tenant-a"); err != nil || removed != 0 {
		t.Fatalf("disabled cache invalidation expected (0, nil), got (%d, %v)", removed, err)
	}

	// The compute path still runs without a locker.
	ran := false
	if err := cache.withComputeLock(ctx, "report:x", func() error { ran = true; return nil }); err != nil {
		t.Fatalf("withComputeLock: %v", err)
	}
	if !ran {
		t.Fatal("compute fn did not run")
	}
}

func newMiniredisCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewReportCache(client, time.Minute), mr
}

func TestInvalidateTenant_IsolatesTenants(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()

	types := []models.ReportType{
		models.ReportTypeProfitLoss,
		models.ReportTypeBalanceSheet,
		models.ReportTypeCashFlow,
	}
	params := map[string]any{"start_date": "2024-01-01", "end_date": "2024-03-31"}
	var keysA, keysB []string
	for _, rt := range types {
		ka := GenerateKey(rt, "tenant-a", params)
		kb := GenerateKey(rt, "tenant-b", params)
		if !cache.Set(ctx, ka, &ProfitLossReport{}) || !cache.Set(ctx, kb, &ProfitLossReport{}) {
			t.Fatal("failed to seed cache entries")
		}
		keysA = append(keysA, ka)
		keysB = append(keysB, kb)
	}

	removed, err := cache.InvalidateTenant(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("InvalidateTenant: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 keys removed, got %d", removed)
	}
	for _, k := range keysA {
		if mr.Exists(k) {
			t.Fatalf("tenant-a key survived invalidation: %s", k)
		}
	}
	for _, k := range keysB {
		if !mr.Exists(k) {
			t.Fatalf("tenant-b key was deleted by tenant-a invalidation: %s", k)
		}
	}
}

func TestInvalidateTenantByType_LeavesOtherTypes(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()
	params := map[string]any{"start_date": "2024-01-01", "end_date": "2024-03-31"}

	profitLoss := GenerateKey(models.ReportTypeProfitLoss, "tenant-a", params)
	balanceSheet := GenerateKey(models.ReportTypeBalanceSheet, "tenant-a", params)
	cashFlow := GenerateKey(models.ReportTypeCashFlow, "tenant-a", params)
	otherTenant := GenerateKey(models.ReportTypeProfitLoss, "tenant-b", params)
	for _, k := range []string{profitLoss, balanceSheet, cashFlow, otherTenant} {
		if !cache.Set(ctx, k, &ProfitLossReport{}) {
			t.Fatalf("failed to seed %s", k)
		}
	}

	removed, err := cache.InvalidateTenantByType(ctx, "tenant-a", models.ReportTypeProfitLoss)
	if err != nil {
		t.Fatalf("InvalidateTenantByType: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 key removed, got %d", removed)
	}
	if mr.Exists(profitLoss) {
		t.Fatal("profit-loss entry survived type-scoped invalidation")
	}
	for _, k := range []string{balanceSheet, cashFlow, otherTenant} {
		if !mr.Exists(k) {
			t.Fatalf("unrelated key was deleted: %s", k)
		}
	}
}

func TestInvalidateTenant_EscapesDelimiterInTenantId(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()
	params := map[string]any{"start_date": "2024-01-01"}

	plain := GenerateKey(models.ReportTypeProfitLoss, "a", params)
	colons := GenerateKey(models.ReportTypeProfitLoss, "x:a", params)
	glob := GenerateKey(models.ReportTypeProfitLoss, "*", params)
	if strings.Count(colons, ":") != 3 {
		t.Fatalf("tenant delimiter must be escaped in keys: %q", colons)
	}
	for _, k := range []string{plain, colons, glob} {
		if !cache.Set(ctx, k, &ProfitLossReport{}) {
			t.Fatalf("failed to seed %s", k)
		}
	}

	removed, err := cache.InvalidateTenant(ctx, "a")
	if err != nil {
		t.Fatalf("InvalidateTenant: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected exactly the plain tenant's key removed, got %d", removed)
	}
	if mr.Exists(plain) {
		t.Fatal("tenant a's key survived")
	}
	if !mr.Exists(colons) || !mr.Exists(glob) {
		t.Fatal("a tenant id containing reserved characters leaked into another tenant's invalidation")
	}

	// A hostile tenant id must only ever match itself.
	removed, err = cache.InvalidateTenant(ctx, "*")
	if err != nil {
		t.Fatalf("InvalidateTenant: %v", err)
	}
	if removed != 1 || mr.Exists(glob) || !mr.Exists(colons) {
		t.Fatalf("glob tenant id matched beyond its own keys (removed=%d)", removed)
	}
}

func TestReportCache_NilReceiverIsSafe(t *testing.T) {
	var cache *ReportCache
	var dest ProfitLossReport
	if hit, err := cache.Get(context.Background(), "k", &dest); err != nil || hit {
		t.Fatalf("nil cache Get expected (false, nil), got (%v, %v)", hit, err)
	}
	if cache.Set(context.Background(), "k", &dest) {
		t.Fatal("nil cache Set should report no write")
	}
}
