package models

import (
	"fmt"
	"strings"
)

// Report cache keys follow report:<type>:<tenant>:<hash>. The tenant segment
// is escaped so a tenant id containing ":" or a glob metacharacter can neither
// shift segment boundaries nor widen an invalidation pattern into another
// tenant's keys. Report types are internal enum constants and need no escaping.
//
// Both the cache and the model hooks build keys and patterns through these
// helpers so the layouts cannot drift apart.

var cacheKeySegmentEscaper = strings.NewReplacer(
	"%", "%25",
	":", "%3A",
	"*", "%2A",
	"?", "%3F",
	"[", "%5B",
	"]", "%5D",
	"\\", "%5C",
)

func EscapeCacheKeySegment(s string) string {
	return cacheKeySegmentEscaper.Replace(s)
}

func ReportCacheKey(reportType ReportType, tenantId, digest string) string {
	return fmt.Sprintf("report:%s:%s:%s", reportType, EscapeCacheKeySegment(tenantId), digest)
}

// ReportCacheTenantPattern matches every cached report of one tenant.
func ReportCacheTenantPattern(tenantId string) string {
	return fmt.Sprintf("report:*:%s:*", EscapeCacheKeySegment(tenantId))
}

// ReportCacheTenantTypePattern matches one tenant's entries for a single
// report type.
func ReportCacheTenantTypePattern(reportType ReportType, tenantId string) string {
	return fmt.Sprintf("report:%s:%s:*", reportType, EscapeCacheKeySegment(tenantId))
}
