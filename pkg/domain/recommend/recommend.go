// Package recommend derives ranked, actionable suggestions from scoring
// engine outputs, either through a deterministic rule battery or through an
// AI strategy sharing the same output contract.
package recommend

import "sort"

// Priority orders recommendations by urgency.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

var priorityOrder = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Order returns the sort position of the priority, most urgent first.
func (p Priority) Order() int {
	if o, ok := priorityOrder[p]; ok {
		return o
	}
	return 3
}

// IsValid reports whether the priority is a recognized value.
func (p Priority) IsValid() bool {
	_, ok := priorityOrder[p]
	return ok
}

// Category groups a recommendation by the concern it addresses.
type Category string

const (
	CategoryWorkload Category = "WORKLOAD"
	CategoryTimeline Category = "TIMELINE"
	CategoryQuality  Category = "QUALITY"
	CategoryTeam     Category = "TEAM"
	CategoryProcess  Category = "PROCESS"
)

// Effort estimates the cost of acting on a recommendation.
type Effort string

const (
	EffortLow    Effort = "LOW"
	EffortMedium Effort = "MEDIUM"
	EffortHigh   Effort = "HIGH"
)

// Recommendation is one actionable suggestion.
type Recommendation struct {
	Priority       Priority `json:"priority"`
	Category       Category `json:"category"`
	Action         string   `json:"action"`
	Reason         string   `json:"reason"`
	ExpectedImpact string   `json:"expected_impact"`
	Effort         Effort   `json:"effort"`
}

// Method identifies which strategy produced a recommendation list.
type Method string

const (
	MethodRules Method = "rules"
	MethodAI    Method = "ai"
)

// List is the shared output contract of both strategies.
type List struct {
	Method          Method           `json:"method"`
	Recommendations []Recommendation `json:"recommendations"`
	Total           int              `json:"total"`
}

// SortByPriority orders recommendations HIGH, MEDIUM, LOW, keeping the rule
// order stable within a priority.
func SortByPriority(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Order() < recs[j].Priority.Order()
	})
}
