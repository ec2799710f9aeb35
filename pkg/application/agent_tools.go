package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/pulse/pkg/domain"
	"github.com/felixgeelhaar/pulse/pkg/domain/agent"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// toolError is the observation returned for domain-level lookup failures.
// The model sees the reason and can correct itself; only store failures
// surface as Go errors.
func toolError(format string, args ...any) map[string]string {
	return map[string]string{"error": fmt.Sprintf(format, args...)}
}

// NewProjectToolset builds the read-only capability table of one project's
// agent. Every tool is scoped to the bound project; tools that accept a user
// reference take an ID or a display name.
func NewProjectToolset(store record.Store, analysis *AnalysisService, projectID domain.ProjectID) *agent.Toolset {
	return agent.NewToolset(
		projectDetailsTool(store, projectID),
		projectTasksTool(store, projectID),
		userDetailsTool(store, projectID),
		userAvailabilityTool(store, projectID),
		milestonesTool(store, projectID),
		teamMembersTool(store, projectID),
		healthReportTool(analysis, projectID),
	)
}

func projectDetailsTool(store record.Store, projectID domain.ProjectID) agent.Tool {
	return agent.Tool{
		Name:        "GetProjectDetails",
		Description: "Use this tool to get all details for a specific project, including its client and technologies. The input must be a single project ID string.",
		Run: func(ctx context.Context, input string) (any, error) {
			id, ok := boundProjectID(input, projectID)
			if !ok {
				return toolError("Invalid Project ID format: %s", input), nil
			}
			project, err := store.Project(ctx, id)
			if errors.Is(err, record.ErrNotFound) {
				return toolError("Project not found"), nil
			}
			if err != nil {
				return nil, err
			}
			if project.ClientID != "" {
				// Unresolvable clients fall back to the raw reference.
				if name, err := store.ClientName(ctx, project.ClientID); err == nil {
					project.ClientName = name
				} else {
					project.ClientName = project.ClientID
				}
			}
			return project, nil
		},
	}
}

func projectTasksTool(store record.Store, projectID domain.ProjectID) agent.Tool {
	return agent.Tool{
		Name:        "GetProjectTasks",
		Description: "Use this tool to get all tasks of the project, including assignees, status, and due dates. The input must be a single project ID string.",
		Run: func(ctx context.Context, input string) (any, error) {
			id, ok := boundProjectID(input, projectID)
			if !ok {
				return toolError("Invalid Project ID format: %s", input), nil
			}
			tasks, err := store.TasksByProject(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]any{"tasks": tasks}, nil
		},
	}
}

func userDetailsTool(store record.Store, projectID domain.ProjectID) agent.Tool {
	return agent.Tool{
		Name:        "GetUserDetails",
		Description: "Use this tool to get details about one team member. The input must be a user ID or the member's name. Only members of the project can be looked up.",
		Run: func(ctx context.Context, input string) (any, error) {
			userID, failure, err := resolveUser(ctx, store, projectID, input)
			if err != nil {
				return nil, err
			}
			if failure != nil {
				return failure, nil
			}
			if member, err := isMember(ctx, store, projectID, userID); err != nil {
				return nil, err
			} else if !member {
				return toolError("User is not a member of this project"), nil
			}
			user, err := store.User(ctx, userID)
			if errors.Is(err, record.ErrNotFound) {
				return toolError("User not found"), nil
			}
			if err != nil {
				return nil, err
			}
			return user, nil
		},
	}
}

func userAvailabilityTool(store record.Store, projectID domain.ProjectID) agent.Tool {
	return agent.Tool{
		Name:        "GetUserAvailability",
		Description: "Use this tool to get the availability calendar of one team member. The input must be a user ID or the member's name. Only members of the project can be looked up.",
		Run: func(ctx context.Context, input string) (any, error) {
			userID, failure, err := resolveUser(ctx, store, projectID, input)
			if err != nil {
				return nil, err
			}
			if failure != nil {
				return failure, nil
			}
			if member, err := isMember(ctx, store, projectID, userID); err != nil {
				return nil, err
			} else if !member {
				return toolError("User is not a member of this project"), nil
			}
			availability, err := store.Availability(ctx, userID)
			if err != nil {
				return nil, err
			}
			return map[string]any{"availability": availability}, nil
		},
	}
}

func milestonesTool(store record.Store, projectID domain.ProjectID) agent.Tool {
	return agent.Tool{
		Name:        "GetMilestones",
		Description: "Use this tool to get all milestones of the project with their dates and status. The input must be a single project ID string.",
		Run: func(ctx context.Context, input string) (any, error) {
			id, ok := boundProjectID(input, projectID)
			if !ok {
				return toolError("Invalid Project ID format: %s", input), nil
			}
			milestones, err := store.Milestones(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]any{"milestones": milestones}, nil
		},
	}
}

func teamMembersTool(store record.Store, projectID domain.ProjectID) agent.Tool {
	return agent.Tool{
		Name:        "GetTeamMembers",
		Description: "Use this tool to get every team member of the project. The input must be a single project ID string.",
		Run: func(ctx context.Context, input string) (any, error) {
			id, ok := boundProjectID(input, projectID)
			if !ok {
				return toolError("Invalid Project ID format: %s", input), nil
			}
			members, err := teamMembers(ctx, store, id)
			if err != nil {
				return nil, err
			}
			return map[string]any{"team_members": members}, nil
		},
	}
}

func healthReportTool(analysis *AnalysisService, projectID domain.ProjectID) agent.Tool {
	return agent.Tool{
		Name:        "GetHealthReport",
		Description: "Use this tool to get the computed health score of the project with its completion, timeline, balance, and velocity breakdown. The input must be a single project ID string.",
		Run: func(ctx context.Context, input string) (any, error) {
			id, ok := boundProjectID(input, projectID)
			if !ok {
				return toolError("Invalid Project ID format: %s", input), nil
			}
			health, err := analysis.ProjectHealth(ctx, id.String())
			if errors.Is(err, record.ErrNotFound) {
				return toolError("Project not found"), nil
			}
			if err != nil {
				return nil, err
			}
			return health, nil
		},
	}
}

// boundProjectID parses the tool input as a project ID, falling back to the
// agent's bound project when the input is empty.
func boundProjectID(input string, bound domain.ProjectID) (domain.ProjectID, bool) {
	trimmed := strings.Trim(strings.TrimSpace(input), `"'`)
	if trimmed == "" {
		return bound, true
	}
	id, err := domain.NewProjectID(trimmed)
	if err != nil {
		return domain.ProjectID{}, false
	}
	return id, true
}

// resolveUser turns a tool input into a user ID. Inputs that look like IDs
// are validated as such; anything else is matched case-insensitively against
// the team's first, last, and full names. Zero or multiple name matches are
// lookup failures the model has to recover from.
func resolveUser(ctx context.Context, store record.Store, projectID domain.ProjectID, input string) (domain.UserID, map[string]string, error) {
	ref := strings.Trim(strings.TrimSpace(input), `"'`)
	if ref == "" {
		return domain.UserID{}, toolError("Invalid ID format: empty input"), nil
	}

	if id, err := domain.NewUserID(ref); err == nil {
		return id, nil, nil
	}

	members, err := teamMembers(ctx, store, projectID)
	if err != nil {
		return domain.UserID{}, nil, err
	}
	var matches []record.User
	for _, u := range members {
		if u.MatchesName(ref) {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 1:
		id, err := domain.NewUserID(matches[0].ID)
		if err != nil {
			return domain.UserID{}, toolError("Invalid ID format: %s", matches[0].ID), nil
		}
		return id, nil, nil
	case 0:
		return domain.UserID{}, toolError("No team member named %q", ref), nil
	default:
		var names []string
		for _, u := range matches {
			names = append(names, u.DisplayName())
		}
		return domain.UserID{}, toolError("Ambiguous name %q matches: %s", ref, strings.Join(names, ", ")), nil
	}
}

// isMember reports whether the user holds any membership in the project.
func isMember(ctx context.Context, store record.Store, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	memberships, err := store.Memberships(ctx, projectID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.UserID == userID.String() {
			return true, nil
		}
	}
	return false, nil
}

// teamMembers fetches the user records behind every membership.
func teamMembers(ctx context.Context, store record.Store, projectID domain.ProjectID) ([]record.User, error) {
	memberships, err := store.Memberships(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var ids []domain.UserID
	for _, m := range memberships {
		if id, err := domain.NewUserID(m.UserID); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return store.Users(ctx, ids)
}
