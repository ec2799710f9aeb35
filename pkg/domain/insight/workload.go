package insight

import (
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// Workload classification thresholds relative to the mean task count.
const (
	OverloadFactor    = 1.5
	UnderutilFactor   = 0.5
	ImbalanceFraction = 0.3

	// taskPreviewLimit bounds the per-member task preview list.
	taskPreviewLimit = 5
)

// TaskPreview is a short view of one assigned task in a member's load.
type TaskPreview struct {
	Name     string `json:"task_name"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Overdue  bool   `json:"is_overdue"`
}

// MemberLoad is the workload of one active team member.
type MemberLoad struct {
	UserID         string        `json:"user_id"`
	Name           string        `json:"user_name"`
	Email          string        `json:"email,omitempty"`
	Designation    string        `json:"designation,omitempty"`
	TotalTasks     int           `json:"total_tasks"`
	OverdueTasks   int           `json:"overdue_tasks"`
	EstimatedHours float64       `json:"estimated_hours"`
	Tasks          []TaskPreview `json:"task_list,omitempty"`
}

// WorkloadStats summarizes the distribution of task counts.
type WorkloadStats struct {
	AverageTasks     float64 `json:"average_tasks_per_person"`
	MaxTasks         int     `json:"max_tasks"`
	MinTasks         int     `json:"min_tasks"`
	TotalActiveTasks int     `json:"total_active_tasks"`
}

// WorkloadReport partitions the active team into overloaded, balanced, and
// underutilized members.
type WorkloadReport struct {
	Status        BalanceStatus `json:"balance_status"`
	TeamSize      int           `json:"team_size"`
	Stats         WorkloadStats `json:"statistics"`
	Overloaded    []MemberLoad  `json:"overloaded_members"`
	Balanced      []MemberLoad  `json:"balanced_members"`
	Underutilized []MemberLoad  `json:"underutilized_members"`
	All           []MemberLoad  `json:"all_members"`
}

// ComputeWorkload derives per-member loads from the active team and the
// project's incomplete tasks, then classifies each member against the mean
// task count: above 1.5x is overloaded, below 0.5x is underutilized.
// Unparsable estimates contribute zero hours.
func ComputeWorkload(members []record.User, activeTasks []record.Task, now time.Time) WorkloadReport {
	loads := make([]MemberLoad, 0, len(members))

	for _, member := range members {
		load := MemberLoad{
			UserID:      member.ID,
			Name:        member.DisplayName(),
			Email:       member.Email,
			Designation: member.Designation,
		}

		for _, t := range activeTasks {
			if !t.AssignedToUser(member.ID) {
				continue
			}
			load.TotalTasks++
			overdue := t.EndDate != nil && t.EndDate.Before(now)
			if overdue {
				load.OverdueTasks++
			}
			if hours, ok := record.ParseEstimateHours(t.Estimate); ok {
				load.EstimatedHours += hours
			}
			if len(load.Tasks) < taskPreviewLimit {
				load.Tasks = append(load.Tasks, TaskPreview{
					Name:     t.Name,
					Status:   t.Status,
					Priority: t.Priority,
					Overdue:  overdue,
				})
			}
		}

		load.EstimatedHours = math.Round(load.EstimatedHours*10) / 10
		loads = append(loads, load)
	}

	// Heaviest load first.
	sort.SliceStable(loads, func(i, j int) bool {
		return loads[i].TotalTasks > loads[j].TotalTasks
	})

	stats := WorkloadStats{TotalActiveTasks: len(activeTasks)}
	if len(loads) > 0 {
		sum := 0
		stats.MinTasks = loads[len(loads)-1].TotalTasks
		stats.MaxTasks = loads[0].TotalTasks
		for _, l := range loads {
			sum += l.TotalTasks
		}
		stats.AverageTasks = math.Round(float64(sum)/float64(len(loads))*10) / 10
	}

	report := WorkloadReport{
		TeamSize: len(members),
		Stats:    stats,
		All:      loads,
	}

	avg := float64(0)
	if len(loads) > 0 {
		sum := 0
		for _, l := range loads {
			sum += l.TotalTasks
		}
		avg = float64(sum) / float64(len(loads))
	}

	for _, l := range loads {
		switch {
		case float64(l.TotalTasks) > avg*OverloadFactor:
			report.Overloaded = append(report.Overloaded, l)
		case float64(l.TotalTasks) < avg*UnderutilFactor:
			report.Underutilized = append(report.Underutilized, l)
		default:
			report.Balanced = append(report.Balanced, l)
		}
	}

	switch {
	case float64(len(report.Overloaded)) > float64(len(members))*ImbalanceFraction:
		report.Status = BalanceImbalanced
	case float64(len(report.Underutilized)) > float64(len(members))*ImbalanceFraction:
		report.Status = BalanceUnderutilized
	default:
		report.Status = BalanceBalanced
	}

	return report
}
