package reports

import (
	"time"

	"github.com/mmdatafocus/clinic_backend/utils"
	"github.com/shopspring/decimal"
)

// Comparison period math and variance metrics. Pure functions, no I/O.

type ComparisonType string

const (
	ComparisonTypePreviousPeriod ComparisonType = "previous-period"
	ComparisonTypeYearOverYear   ComparisonType = "year-over-year"
)

// DateRange is an inclusive calendar range; both boundaries are dates at
// midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// PreviousPeriod returns the range immediately preceding r: it ends the day
// before r starts and spans end-start days back from there. For
// 2024-03-01..2024-05-31 the previous period is 2023-12-01..2024-02-29.
func PreviousPeriod(r DateRange) DateRange {
	duration := utils.DaysInclusive(r.Start, r.End)
	return DateRange{
		Start: r.Start.AddDate(0, 0, -duration+1),
		End:   r.Start.AddDate(0, 0, -1),
	}
}

// YearOverYearPeriod shifts both boundaries back exactly one calendar year,
// preserving month and day. A Feb-29 boundary normalizes to Mar-1 in non-leap
// target years (Go AddDate semantics).
func YearOverYearPeriod(r DateRange) DateRange {
	return DateRange{
		Start: r.Start.AddDate(-1, 0, 0),
		End:   r.End.AddDate(-1, 0, 0),
	}
}

// ComparisonPeriod dispatches on the requested comparison type.
func ComparisonPeriod(r DateRange, compType ComparisonType) DateRange {
	if compType == ComparisonTypeYearOverYear {
		return YearOverYearPeriod(r)
	}
	return PreviousPeriod(r)
}

// Compare builds the variance metric for one headline value pair.
// variance% is 100 when the previous value is zero and the current is not,
// and 0 when both are zero.
func Compare(current, previous decimal.Decimal) ComparisonMetric {
	variance := current.Sub(previous)

	var variancePercent decimal.Decimal
	switch {
	case previous.IsZero() && current.IsZero():
		variancePercent = decimal.Zero
	case previous.IsZero():
		variancePercent = decimal.NewFromInt(100)
	default:
		variancePercent = variance.Div(previous.Abs()).Mul(decimal.NewFromInt(100))
	}

	return ComparisonMetric{
		Current:         current,
		Previous:        previous,
		Variance:        variance,
		VariancePercent: variancePercent,
	}
}

var defaultVarianceThreshold = decimal.NewFromInt(20)

// ExceedsThreshold flags metrics whose absolute variance% crosses thresholdPct
// (nil means 20). UI highlighting helper, not a correctness invariant.
func ExceedsThreshold(metric ComparisonMetric, thresholdPct *decimal.Decimal) bool {
	threshold := defaultVarianceThreshold
	if thresholdPct != nil {
		threshold = *thresholdPct
	}
	return metric.VariancePercent.Abs().GreaterThan(threshold)
}
