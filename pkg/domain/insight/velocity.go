package insight

import (
	"math"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// VelocityReport captures completed-tasks-per-day over a trailing window and
// the trend derived from splitting that window at its midpoint.
type VelocityReport struct {
	PeriodDays      int     `json:"period_days"`
	TasksCompleted  int     `json:"tasks_completed"`
	PerDay          float64 `json:"velocity_per_day"`
	PerPersonPerDay float64 `json:"velocity_per_person_per_day"`
	TeamSize        int     `json:"team_size"`
	Trend           Trend   `json:"trend"`
	TrendPct        float64 `json:"trend_percentage"`
	FirstHalf       int     `json:"first_half"`
	SecondHalf      int     `json:"second_half"`
}

// ComputeVelocity counts tasks finished within the trailing window and
// derives the per-day and per-person rates. The trend compares completions
// in the window's first half against its second half: more than +20% change
// is ACCELERATING, less than -20% is SLOWING, otherwise STEADY. A first half
// with zero completions yields a 0% change.
func ComputeVelocity(tasks []record.Task, teamSize, windowDays int, now time.Time) VelocityReport {
	if windowDays <= 0 {
		windowDays = VelocityWindowDays
	}
	cutoff := now.AddDate(0, 0, -windowDays)
	midpoint := cutoff.Add(time.Duration(float64(windowDays) * 12 * float64(time.Hour)))

	completed := 0
	firstHalf := 0
	for _, t := range tasks {
		if !t.Finished || t.UpdatedAt.Before(cutoff) {
			continue
		}
		completed++
		if t.UpdatedAt.Before(midpoint) {
			firstHalf++
		}
	}
	secondHalf := completed - firstHalf

	perDay := float64(completed) / float64(windowDays)
	perPerson := float64(0)
	if teamSize > 0 {
		perPerson = perDay / float64(teamSize)
	}

	trendPct := float64(0)
	if firstHalf > 0 {
		trendPct = float64(secondHalf-firstHalf) / float64(firstHalf) * 100
	}

	return VelocityReport{
		PeriodDays:      windowDays,
		TasksCompleted:  completed,
		PerDay:          math.Round(perDay*100) / 100,
		PerPersonPerDay: math.Round(perPerson*100) / 100,
		TeamSize:        teamSize,
		Trend:           TrendFor(trendPct),
		TrendPct:        math.Round(trendPct*10) / 10,
		FirstHalf:       firstHalf,
		SecondHalf:      secondHalf,
	}
}
