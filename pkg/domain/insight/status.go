// Package insight provides the pure scoring calculators that turn raw
// project records into health, workload, bottleneck, milestone-risk, and
// velocity reports. All functions are side-effect free and safe to fan out
// concurrently from the caller.
package insight

// HealthStatus categorizes an overall project health score.
type HealthStatus string

const (
	// HealthExcellent indicates a score of 80 or above.
	HealthExcellent HealthStatus = "EXCELLENT"
	// HealthGood indicates a score of 60 to 79.
	HealthGood HealthStatus = "GOOD"
	// HealthAtRisk indicates a score of 40 to 59.
	HealthAtRisk HealthStatus = "AT_RISK"
	// HealthCritical indicates a score below 40.
	HealthCritical HealthStatus = "CRITICAL"
	// HealthNoData indicates the project has no tasks to score.
	HealthNoData HealthStatus = "NO_DATA"
)

// HealthStatusFor maps a 0-100 score to its categorical status.
func HealthStatusFor(score int) HealthStatus {
	switch {
	case score >= 80:
		return HealthExcellent
	case score >= 60:
		return HealthGood
	case score >= 40:
		return HealthAtRisk
	default:
		return HealthCritical
	}
}

// Color returns the display color for the status. Display metadata only;
// decision logic keys off the status value itself.
func (s HealthStatus) Color() string {
	switch s {
	case HealthExcellent:
		return "#22c55e"
	case HealthGood:
		return "#84cc16"
	case HealthAtRisk:
		return "#f59e0b"
	case HealthCritical:
		return "#ef4444"
	default:
		return "#9ca3af"
	}
}

// Glyph returns the display glyph for the status.
func (s HealthStatus) Glyph() string {
	switch s {
	case HealthExcellent:
		return "🟢"
	case HealthGood:
		return "🟡"
	case HealthAtRisk:
		return "🟠"
	case HealthCritical:
		return "🔴"
	default:
		return "⚪"
	}
}

// Severity buckets a bottleneck severity score.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// SeverityFor maps a weighted bottleneck score to its bucket.
func SeverityFor(score int) Severity {
	switch {
	case score >= 15:
		return SeverityCritical
	case score >= 8:
		return SeverityHigh
	case score >= 3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// IsElevated reports whether the severity warrants attention.
func (s Severity) IsElevated() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// RiskLevel categorizes a milestone's completion risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// riskOrder sorts risk levels most severe first.
var riskOrder = map[RiskLevel]int{
	RiskCritical: 0,
	RiskHigh:     1,
	RiskMedium:   2,
	RiskLow:      3,
}

// Order returns the sort position of the risk level, most severe first.
func (r RiskLevel) Order() int {
	if o, ok := riskOrder[r]; ok {
		return o
	}
	return 4
}

// IsElevated reports whether the risk level warrants attention.
func (r RiskLevel) IsElevated() bool {
	return r == RiskHigh || r == RiskCritical
}

// Trend indicates the direction of velocity change over a window.
type Trend string

const (
	TrendAccelerating Trend = "ACCELERATING"
	TrendSlowing      Trend = "SLOWING"
	TrendSteady       Trend = "STEADY"
)

// TrendFor maps a first-half vs second-half percent change to a trend.
func TrendFor(pct float64) Trend {
	switch {
	case pct > 20:
		return TrendAccelerating
	case pct < -20:
		return TrendSlowing
	default:
		return TrendSteady
	}
}

// Glyph returns the display glyph for the trend.
func (t Trend) Glyph() string {
	switch t {
	case TrendAccelerating:
		return "📈"
	case TrendSlowing:
		return "📉"
	default:
		return "➡️"
	}
}

// BalanceStatus categorizes the distribution of work across a team.
type BalanceStatus string

const (
	BalanceBalanced      BalanceStatus = "BALANCED"
	BalanceImbalanced    BalanceStatus = "IMBALANCED"
	BalanceUnderutilized BalanceStatus = "UNDERUTILIZED"
)

// Color returns the display color for the balance status.
func (b BalanceStatus) Color() string {
	switch b {
	case BalanceImbalanced:
		return "#f59e0b"
	case BalanceUnderutilized:
		return "#3b82f6"
	default:
		return "#22c55e"
	}
}
