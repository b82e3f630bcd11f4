package domain

import "time"

// MetricType identifies which field of a MetricsSnapshot a rule watches.
type MetricType string

const (
	MetricACOS           MetricType = "acos"
	MetricTACOS          MetricType = "tacos"
	MetricMargin         MetricType = "margin"
	MetricCPC            MetricType = "cpc"
	MetricCTR            MetricType = "ctr"
	MetricConversionRate MetricType = "conversion_rate"
)

// Direction is the triggering comparison for a metric.
type Direction string

const (
	// Exceeds triggers when the observed value is strictly above the threshold.
	Exceeds Direction = "exceeds"
	// FallsBelow triggers when the observed value is strictly below the threshold.
	FallsBelow Direction = "falls_below"
)

// metricPolicy fixes the comparison direction per metric type. Cost
// metrics trigger on exceeding the threshold, performance metrics on
// falling below it. The direction is a property of the metric, not of
// the rule.
var metricPolicy = map[MetricType]Direction{
	MetricACOS:           Exceeds,
	MetricTACOS:          Exceeds,
	MetricCPC:            Exceeds,
	MetricMargin:         FallsBelow,
	MetricCTR:            FallsBelow,
	MetricConversionRate: FallsBelow,
}

// DirectionFor returns the triggering direction for a metric type and
// whether the metric type is known.
func DirectionFor(m MetricType) (Direction, bool) {
	d, ok := metricPolicy[m]
	return d, ok
}

// RatioMetric reports whether the metric is a ratio whose thresholds
// must lie in [0, 1]. Margin and CPC are unrestricted non-negative values.
func RatioMetric(m MetricType) bool {
	switch m {
	case MetricACOS, MetricTACOS, MetricCTR, MetricConversionRate:
		return true
	}
	return false
}

// ActionType is the mutation a triggered rule or schedule entry proposes.
type ActionType string

const (
	ActionPause        ActionType = "pause"
	ActionActivate     ActionType = "activate"
	ActionAdjustBudget ActionType = "adjust_budget"
	ActionNotify       ActionType = "notify"
)

// ValidActionType reports whether a is a known action type.
func ValidActionType(a ActionType) bool {
	switch a {
	case ActionPause, ActionActivate, ActionAdjustBudget, ActionNotify:
		return true
	}
	return false
}

// AutomationRule watches one metric of one campaign and proposes an
// action when the metric crosses the threshold in the metric's fixed
// direction. Rules are immutable after creation; the only lifecycle
// operation is deletion.
type AutomationRule struct {
	ID         string
	CampaignID string
	Metric     MetricType
	Threshold  float64
	Action     ActionType
	// BudgetFactor is the multiplier applied to the campaign budget when
	// Action is adjust_budget (e.g. 0.8 cuts the budget by 20%). Ignored
	// for other action types.
	BudgetFactor float64
	CreatedAt    time.Time
}
