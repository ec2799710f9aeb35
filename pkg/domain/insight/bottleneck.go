package insight

import (
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// Bottleneck thresholds and severity weights.
const (
	CriticalUserOverdueMin = 3
	LongOverdueDays        = 14
	MilestoneRiskDays      = 7
	MilestoneRiskPctMax    = 30

	criticalUserWeight  = 3
	longOverdueWeight   = 2
	blockedWeight       = 2
	milestoneRiskWeight = 4
)

// Priority and status tokens matched by the high-priority-blocked scan.
// Matching is deliberately literal and case-sensitive: upstream data entry is
// inconsistent and these are the exact tokens observed in production. Known
// fragility, preserved for compatibility.
var (
	blockedPriorityTokens = map[string]bool{
		"High": true, "HIGH": true, "Critical": true, "CRITICAL": true,
	}
	blockedStatusTokens = map[string]bool{
		"BLOCKED": true, "Blocked": true, "On Hold": true,
	}
)

// OverdueTaskRef is a short reference to one overdue task of a critical user.
type OverdueTaskRef struct {
	Name        string `json:"task_name"`
	DaysOverdue int    `json:"days_overdue"`
	Priority    string `json:"priority,omitempty"`
}

// CriticalUser is an assignee holding three or more overdue tasks.
type CriticalUser struct {
	UserID       string           `json:"user_id"`
	Name         string           `json:"user_name"`
	OverdueCount int              `json:"overdue_count"`
	OverdueTasks []OverdueTaskRef `json:"overdue_tasks"`
}

// LongOverdueTask is an incomplete task more than 14 days past its end date.
type LongOverdueTask struct {
	TaskID      string   `json:"task_id"`
	Name        string   `json:"task_name"`
	DaysOverdue int      `json:"days_overdue"`
	AssignedTo  []string `json:"assigned_to"`
	Priority    string   `json:"priority,omitempty"`
}

// BlockedTask is a high-priority task sitting in a blocked status.
type BlockedTask struct {
	TaskID     string   `json:"task_id"`
	Name       string   `json:"task_name"`
	Priority   string   `json:"priority"`
	Status     string   `json:"status"`
	AssignedTo []string `json:"assigned_to"`
}

// MilestoneRiskCandidate is an active milestone in danger of missing its
// deadline.
type MilestoneRiskCandidate struct {
	MilestoneID    string    `json:"milestone_id"`
	Title          string    `json:"milestone_title"`
	DaysUntil      int       `json:"days_until_deadline"`
	CompletionPct  float64   `json:"completion_percentage"`
	TotalTasks     int       `json:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	RiskLevel      RiskLevel `json:"risk_level"`
}

// BottleneckSummary carries the per-scan counts.
type BottleneckSummary struct {
	CriticalUsers       int `json:"critical_users_count"`
	LongOverdue         int `json:"long_overdue_count"`
	BlockedHighPriority int `json:"blocked_high_priority"`
	AtRiskMilestones    int `json:"at_risk_milestones"`
}

// BottleneckReport is the result of the four bottleneck scans plus a
// weighted severity score.
type BottleneckReport struct {
	Severity            Severity                 `json:"severity"`
	SeverityScore       int                      `json:"severity_score"`
	CriticalUsers       []CriticalUser           `json:"critical_users"`
	LongOverdue         []LongOverdueTask        `json:"long_overdue_tasks"`
	HighPriorityBlocked []BlockedTask            `json:"high_priority_blocked"`
	MilestoneRisks      []MilestoneRiskCandidate `json:"milestone_risks"`
	Summary             BottleneckSummary        `json:"summary"`
}

// ComputeBottlenecks runs four independent scans over the project's
// incomplete tasks: overloaded assignees, long-overdue tasks, blocked
// high-priority work, and deadline-threatened active milestones. The name
// resolver maps user IDs to display names; unresolvable IDs are skipped.
func ComputeBottlenecks(activeTasks []record.Task, milestones []record.Milestone, names map[string]string, now time.Time) BottleneckReport {
	report := BottleneckReport{
		CriticalUsers:       []CriticalUser{},
		LongOverdue:         []LongOverdueTask{},
		HighPriorityBlocked: []BlockedTask{},
		MilestoneRisks:      []MilestoneRiskCandidate{},
	}

	// Scan 1: assignees accumulating overdue tasks.
	overdueByUser := map[string][]OverdueTaskRef{}
	for _, t := range activeTasks {
		if t.EndDate == nil || !t.EndDate.Before(now) {
			continue
		}
		for _, userID := range t.AssignedTo {
			if _, ok := names[userID]; !ok {
				continue
			}
			overdueByUser[userID] = append(overdueByUser[userID], OverdueTaskRef{
				Name:        t.Name,
				DaysOverdue: t.DaysOverdue(now),
				Priority:    t.Priority,
			})
		}
	}
	userIDs := make([]string, 0, len(overdueByUser))
	for id := range overdueByUser {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)
	for _, id := range userIDs {
		refs := overdueByUser[id]
		if len(refs) < CriticalUserOverdueMin {
			continue
		}
		report.CriticalUsers = append(report.CriticalUsers, CriticalUser{
			UserID:       id,
			Name:         names[id],
			OverdueCount: len(refs),
			OverdueTasks: refs,
		})
	}

	// Scan 2: tasks overdue beyond the long-overdue threshold.
	for _, t := range activeTasks {
		if t.EndDate == nil || t.DaysOverdue(now) <= LongOverdueDays {
			continue
		}
		report.LongOverdue = append(report.LongOverdue, LongOverdueTask{
			TaskID:      t.ID,
			Name:        t.Name,
			DaysOverdue: t.DaysOverdue(now),
			AssignedTo:  resolveNames(t.AssignedTo, names),
			Priority:    t.Priority,
		})
	}
	sort.SliceStable(report.LongOverdue, func(i, j int) bool {
		return report.LongOverdue[i].DaysOverdue > report.LongOverdue[j].DaysOverdue
	})

	// Scan 3: high-priority tasks stuck in a blocked status.
	for _, t := range activeTasks {
		if !blockedPriorityTokens[t.Priority] || !blockedStatusTokens[t.Status] {
			continue
		}
		report.HighPriorityBlocked = append(report.HighPriorityBlocked, BlockedTask{
			TaskID:     t.ID,
			Name:       t.Name,
			Priority:   t.Priority,
			Status:     t.Status,
			AssignedTo: resolveNames(t.AssignedTo, names),
		})
	}

	// Scan 4: active milestones with little progress and little runway.
	for _, m := range milestones {
		if !m.Active {
			continue
		}
		var milestoneTasks []record.Task
		for _, t := range activeTasks {
			if t.MilestoneID == m.ID {
				milestoneTasks = append(milestoneTasks, t)
			}
		}
		if len(milestoneTasks) == 0 {
			continue
		}
		total := len(milestoneTasks)
		completed := 0
		for _, t := range milestoneTasks {
			if t.Finished {
				completed++
			}
		}
		pct := float64(completed) / float64(total) * 100

		daysUntil, ok := m.DaysRemaining(now)
		if !ok {
			continue
		}
		if daysUntil > MilestoneRiskDays || pct >= MilestoneRiskPctMax {
			continue
		}
		level := RiskMedium
		if daysUntil <= 3 {
			level = RiskHigh
		}
		report.MilestoneRisks = append(report.MilestoneRisks, MilestoneRiskCandidate{
			MilestoneID:    m.ID,
			Title:          m.Title,
			DaysUntil:      daysUntil,
			CompletionPct:  math.Round(pct*10) / 10,
			TotalTasks:     total,
			CompletedTasks: completed,
			RiskLevel:      level,
		})
	}

	report.SeverityScore = criticalUserWeight*len(report.CriticalUsers) +
		longOverdueWeight*len(report.LongOverdue) +
		blockedWeight*len(report.HighPriorityBlocked) +
		milestoneRiskWeight*len(report.MilestoneRisks)
	report.Severity = SeverityFor(report.SeverityScore)
	report.Summary = BottleneckSummary{
		CriticalUsers:       len(report.CriticalUsers),
		LongOverdue:         len(report.LongOverdue),
		BlockedHighPriority: len(report.HighPriorityBlocked),
		AtRiskMilestones:    len(report.MilestoneRisks),
	}
	return report
}

func resolveNames(ids []string, names map[string]string) []string {
	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			resolved = append(resolved, name)
		}
	}
	return resolved
}
