package insight_test

import (
	"testing"

	"github.com/felixgeelhaar/pulse/pkg/domain/insight"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

func finishedAt(t record.Task, daysAgo int) record.Task {
	t.Finished = true
	t.UpdatedAt = now.AddDate(0, 0, -daysAgo)
	return t
}

func TestComputeVelocity_Accelerating(t *testing.T) {
	tasks := []record.Task{
		finishedAt(record.Task{ID: "t1"}, 1),
		finishedAt(record.Task{ID: "t2"}, 1),
		finishedAt(record.Task{ID: "t3"}, 1),
		finishedAt(record.Task{ID: "t4"}, 6),
		// Finished before the window opened.
		finishedAt(record.Task{ID: "t5"}, 10),
		// Touched recently but still open.
		{ID: "t6", UpdatedAt: now.AddDate(0, 0, -1)},
	}

	report := insight.ComputeVelocity(tasks, 2, 7, now)

	if report.TasksCompleted != 4 {
		t.Errorf("TasksCompleted = %d, want 4", report.TasksCompleted)
	}
	if report.FirstHalf != 1 || report.SecondHalf != 3 {
		t.Errorf("halves = %d/%d, want 1/3", report.FirstHalf, report.SecondHalf)
	}
	if report.PerDay != 0.57 {
		t.Errorf("PerDay = %v, want 0.57", report.PerDay)
	}
	if report.PerPersonPerDay != 0.29 {
		t.Errorf("PerPersonPerDay = %v, want 0.29", report.PerPersonPerDay)
	}
	if report.Trend != insight.TrendAccelerating {
		t.Errorf("Trend = %s, want %s", report.Trend, insight.TrendAccelerating)
	}
	if report.TrendPct != 200 {
		t.Errorf("TrendPct = %v, want 200", report.TrendPct)
	}
}

func TestComputeVelocity_Slowing(t *testing.T) {
	tasks := []record.Task{
		finishedAt(record.Task{ID: "t1"}, 5),
		finishedAt(record.Task{ID: "t2"}, 5),
		finishedAt(record.Task{ID: "t3"}, 5),
		finishedAt(record.Task{ID: "t4"}, 1),
	}

	report := insight.ComputeVelocity(tasks, 3, 7, now)

	if report.Trend != insight.TrendSlowing {
		t.Errorf("Trend = %s, want %s", report.Trend, insight.TrendSlowing)
	}
	if report.TrendPct != -66.7 {
		t.Errorf("TrendPct = %v, want -66.7", report.TrendPct)
	}
}

func TestComputeVelocity_EmptyFirstHalfIsSteady(t *testing.T) {
	tasks := []record.Task{
		finishedAt(record.Task{ID: "t1"}, 1),
		finishedAt(record.Task{ID: "t2"}, 2),
	}

	report := insight.ComputeVelocity(tasks, 1, 7, now)

	if report.Trend != insight.TrendSteady {
		t.Errorf("Trend = %s, want %s", report.Trend, insight.TrendSteady)
	}
	if report.TrendPct != 0 {
		t.Errorf("TrendPct = %v, want 0", report.TrendPct)
	}
}

func TestComputeVelocity_Defaults(t *testing.T) {
	report := insight.ComputeVelocity(nil, 0, 0, now)

	if report.PeriodDays != insight.VelocityWindowDays {
		t.Errorf("PeriodDays = %d, want %d", report.PeriodDays, insight.VelocityWindowDays)
	}
	if report.PerDay != 0 || report.PerPersonPerDay != 0 {
		t.Errorf("rates = %v/%v, want zero", report.PerDay, report.PerPersonPerDay)
	}
	if report.Trend != insight.TrendSteady {
		t.Errorf("Trend = %s, want %s", report.Trend, insight.TrendSteady)
	}
}

func TestTrendFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want insight.Trend
	}{
		{25, insight.TrendAccelerating},
		{20, insight.TrendSteady},
		{0, insight.TrendSteady},
		{-20, insight.TrendSteady},
		{-25, insight.TrendSlowing},
	}

	for _, tt := range tests {
		if got := insight.TrendFor(tt.pct); got != tt.want {
			t.Errorf("TrendFor(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}
