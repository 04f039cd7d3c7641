package models_test

import (
	"testing"

	"github.com/mmdatafocus/clinic_backend/models"
)

func TestEscapeCacheKeySegment(t *testing.T) {
	cases := []struct{ in, want string }{
		{"tenant-a", "tenant-a"},
		{"x:a", "x%3Aa"},
		{"*", "%2A"},
		{"a?b", "a%3Fb"},
		{"[set]", "%5Bset%5D"},
		{"50%", "50%25"},
		{`back\slash`, `back%5Cslash`},
	}
	for _, tc := range cases {
		if got := models.EscapeCacheKeySegment(tc.in); got != tc.want {
			t.Fatalf("EscapeCacheKeySegment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReportCacheKeyLayout(t *testing.T) {
	if got := models.ReportCacheKey(models.ReportTypeCashFlow, "tenant-a", "abcd1234abcd1234"); got != "report:cash-flow:tenant-a:abcd1234abcd1234" {
		t.Fatalf("key: %q", got)
	}
	if got := models.ReportCacheTenantPattern("x:a"); got != "report:*:x%3Aa:*" {
		t.Fatalf("tenant pattern: %q", got)
	}
	if got := models.ReportCacheTenantTypePattern(models.ReportTypeProfitLoss, "tenant-a"); got != "report:profit-loss:tenant-a:*" {
		t.Fatalf("tenant+type pattern: %q", got)
	}
}
