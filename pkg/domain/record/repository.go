package record

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/pulse/pkg/domain"
)

// ErrNotFound is returned by Store implementations when a requested entity
// does not exist.
var ErrNotFound = errors.New("not found")

// Store is the read-only query interface over the external document store.
// Implementations must be safe for concurrent use; the analytics engine
// issues independent fetches per analysis call and never writes.
type Store interface {
	// Project returns the project with the given ID, or ErrNotFound.
	Project(ctx context.Context, id domain.ProjectID) (*Project, error)

	// ActiveProjects returns all projects whose status marks them as
	// currently running (ongoing, active, in_progress).
	ActiveProjects(ctx context.Context) ([]Project, error)

	// TasksByProject returns every task belonging to the project.
	TasksByProject(ctx context.Context, id domain.ProjectID) ([]Task, error)

	// TasksByMilestone returns every task attached to the milestone.
	TasksByMilestone(ctx context.Context, id domain.MilestoneID) ([]Task, error)

	// User returns the user with the given ID, or ErrNotFound.
	User(ctx context.Context, id domain.UserID) (*User, error)

	// Users returns the users for the given IDs; missing IDs are skipped.
	Users(ctx context.Context, ids []domain.UserID) ([]User, error)

	// Milestones returns all milestones of the project.
	Milestones(ctx context.Context, id domain.ProjectID) ([]Milestone, error)

	// ActiveMilestones returns the project's milestones still marked active.
	ActiveMilestones(ctx context.Context, id domain.ProjectID) ([]Milestone, error)

	// Memberships returns all team memberships of the project, active or not.
	Memberships(ctx context.Context, id domain.ProjectID) ([]Membership, error)

	// Availability returns the user's calendar entries.
	Availability(ctx context.Context, id domain.UserID) ([]Availability, error)

	// ClientName resolves a client reference to its display name.
	ClientName(ctx context.Context, clientID string) (string, error)
}
