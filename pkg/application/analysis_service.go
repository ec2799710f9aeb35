// Package application wires store fetches to the pure domain computations:
// the scoring engine, the recommendation strategies, the conversational
// agent, and the portfolio aggregator.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain"
	"github.com/felixgeelhaar/pulse/pkg/domain/insight"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// AnalysisService runs the deterministic scoring operations. Each call
// fetches a fresh snapshot from the store; nothing is cached between calls.
type AnalysisService struct {
	store record.Store
	now   func() time.Time
}

func NewAnalysisService(store record.Store) *AnalysisService {
	return &AnalysisService{store: store, now: time.Now}
}

// WithClock overrides the time source. Tests use this to pin "now".
func (s *AnalysisService) WithClock(now func() time.Time) *AnalysisService {
	s.now = now
	return s
}

// ProjectHealth computes the weighted health score of one project.
func (s *AnalysisService) ProjectHealth(ctx context.Context, projectID string) (insight.HealthScore, error) {
	id, err := domain.NewProjectID(projectID)
	if err != nil {
		return insight.HealthScore{}, err
	}

	project, err := s.store.Project(ctx, id)
	if err != nil {
		return insight.HealthScore{}, fmt.Errorf("health analysis: %w", err)
	}

	tasks, err := s.store.TasksByProject(ctx, id)
	if err != nil {
		return insight.HealthScore{}, fmt.Errorf("health analysis: %w", err)
	}

	members, err := s.activeMemberIDs(ctx, id)
	if err != nil {
		return insight.HealthScore{}, fmt.Errorf("health analysis: %w", err)
	}

	score := insight.ComputeHealth(tasks, len(members), s.now())
	score.ProjectName = project.Name
	score.ProjectStatus = project.Status
	return score, nil
}

// TeamWorkload classifies the active team of one project by task load.
// Returns ErrNoTeamMembers when the project has no active memberships.
func (s *AnalysisService) TeamWorkload(ctx context.Context, projectID string) (insight.WorkloadReport, error) {
	id, err := domain.NewProjectID(projectID)
	if err != nil {
		return insight.WorkloadReport{}, err
	}

	memberIDs, err := s.activeMemberIDs(ctx, id)
	if err != nil {
		return insight.WorkloadReport{}, fmt.Errorf("workload analysis: %w", err)
	}
	if len(memberIDs) == 0 {
		return insight.WorkloadReport{}, ErrNoTeamMembers
	}

	members, err := s.store.Users(ctx, memberIDs)
	if err != nil {
		return insight.WorkloadReport{}, fmt.Errorf("workload analysis: %w", err)
	}

	active, err := s.openTasks(ctx, id)
	if err != nil {
		return insight.WorkloadReport{}, fmt.Errorf("workload analysis: %w", err)
	}

	return insight.ComputeWorkload(members, active, s.now()), nil
}

// Bottlenecks runs the four bottleneck scans over the project's open tasks
// and active milestones.
func (s *AnalysisService) Bottlenecks(ctx context.Context, projectID string) (insight.BottleneckReport, error) {
	id, err := domain.NewProjectID(projectID)
	if err != nil {
		return insight.BottleneckReport{}, err
	}

	active, err := s.openTasks(ctx, id)
	if err != nil {
		return insight.BottleneckReport{}, fmt.Errorf("bottleneck analysis: %w", err)
	}

	milestones, err := s.store.ActiveMilestones(ctx, id)
	if err != nil {
		return insight.BottleneckReport{}, fmt.Errorf("bottleneck analysis: %w", err)
	}

	names, err := s.assigneeNames(ctx, active)
	if err != nil {
		return insight.BottleneckReport{}, fmt.Errorf("bottleneck analysis: %w", err)
	}

	return insight.ComputeBottlenecks(active, milestones, names, s.now()), nil
}

// MilestoneRisks assesses every active milestone of the project.
func (s *AnalysisService) MilestoneRisks(ctx context.Context, projectID string) (insight.MilestoneRiskReport, error) {
	id, err := domain.NewProjectID(projectID)
	if err != nil {
		return insight.MilestoneRiskReport{}, err
	}

	milestones, err := s.store.ActiveMilestones(ctx, id)
	if err != nil {
		return insight.MilestoneRiskReport{}, fmt.Errorf("milestone analysis: %w", err)
	}

	tasksByMilestone := make(map[string][]record.Task, len(milestones))
	for _, m := range milestones {
		mid, err := domain.NewMilestoneID(m.ID)
		if err != nil {
			continue
		}
		tasks, err := s.store.TasksByMilestone(ctx, mid)
		if err != nil {
			return insight.MilestoneRiskReport{}, fmt.Errorf("milestone analysis: %w", err)
		}
		tasksByMilestone[m.ID] = tasks
	}

	return insight.ComputeMilestoneRisks(milestones, tasksByMilestone, s.now()), nil
}

// Velocity computes the completion rate over a trailing window. A
// non-positive windowDays falls back to the default seven-day window.
func (s *AnalysisService) Velocity(ctx context.Context, projectID string, windowDays int) (insight.VelocityReport, error) {
	id, err := domain.NewProjectID(projectID)
	if err != nil {
		return insight.VelocityReport{}, err
	}

	tasks, err := s.store.TasksByProject(ctx, id)
	if err != nil {
		return insight.VelocityReport{}, fmt.Errorf("velocity analysis: %w", err)
	}

	members, err := s.activeMemberIDs(ctx, id)
	if err != nil {
		return insight.VelocityReport{}, fmt.Errorf("velocity analysis: %w", err)
	}

	return insight.ComputeVelocity(tasks, len(members), windowDays, s.now()), nil
}

// activeMemberIDs returns the user IDs of the project's active memberships.
func (s *AnalysisService) activeMemberIDs(ctx context.Context, id domain.ProjectID) ([]domain.UserID, error) {
	memberships, err := s.store.Memberships(ctx, id)
	if err != nil {
		return nil, err
	}
	var ids []domain.UserID
	for _, m := range memberships {
		if !m.Active() {
			continue
		}
		uid, err := domain.NewUserID(m.UserID)
		if err != nil {
			continue
		}
		ids = append(ids, uid)
	}
	return ids, nil
}

// openTasks returns the project's incomplete tasks.
func (s *AnalysisService) openTasks(ctx context.Context, id domain.ProjectID) ([]record.Task, error) {
	tasks, err := s.store.TasksByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	var open []record.Task
	for _, t := range tasks {
		if !t.Finished {
			open = append(open, t)
		}
	}
	return open, nil
}

// assigneeNames maps every assignee of the given tasks to a display name.
func (s *AnalysisService) assigneeNames(ctx context.Context, tasks []record.Task) (map[string]string, error) {
	seen := map[string]bool{}
	var ids []domain.UserID
	for _, t := range tasks {
		for _, userID := range t.AssignedTo {
			if seen[userID] {
				continue
			}
			seen[userID] = true
			uid, err := domain.NewUserID(userID)
			if err != nil {
				continue
			}
			ids = append(ids, uid)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	users, err := s.store.Users(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	return names, nil
}
