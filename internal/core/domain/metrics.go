package domain

import "time"

// MetricsSnapshot is one observation of a campaign's performance. Each
// ingest replaces the campaign's previous snapshot; the core keeps no
// history. All fields are non-negative; cost ratios such as ACOS and
// TACOS can exceed 1 when spend outruns revenue.
type MetricsSnapshot struct {
	ACOS           float64
	TACOS          float64
	Margin         float64
	CPC            float64
	CTR            float64
	ConversionRate float64
	Impressions    int64
	Clicks         int64
	Conversions    int64
	SpendCents     int64
	RevenueCents   int64
	ObservedAt     time.Time
}

// Value returns the snapshot field addressed by the metric type and
// whether the metric type is known.
func (s MetricsSnapshot) Value(m MetricType) (float64, bool) {
	switch m {
	case MetricACOS:
		return s.ACOS, true
	case MetricTACOS:
		return s.TACOS, true
	case MetricMargin:
		return s.Margin, true
	case MetricCPC:
		return s.CPC, true
	case MetricCTR:
		return s.CTR, true
	case MetricConversionRate:
		return s.ConversionRate, true
	}
	return 0, false
}
