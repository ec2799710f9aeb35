// Package record holds the read-only entities fetched from the document
// store. The analytics engine never mutates these; it derives insight
// structures from snapshots taken per analysis call.
package record

import (
	"strings"
	"time"
)

// Technology describes one entry of a project's technology list.
type Technology struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Note    string `json:"note,omitempty"`
	Active  bool   `json:"active"`
}

// Project is a snapshot of a project document.
type Project struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Description        string       `json:"description,omitempty"`
	Status             string       `json:"status"`
	ClientID           string       `json:"client_id,omitempty"`
	ClientName         string       `json:"client_name,omitempty"`
	StartDate          *time.Time   `json:"start_date,omitempty"`
	EndDate            *time.Time   `json:"end_date,omitempty"`
	ServerTechnologies []Technology `json:"server_technologies,omitempty"`
	ClientTechnologies []Technology `json:"client_technologies,omitempty"`
}

// Task is a snapshot of a task document. A task belongs to exactly one
// project; overdue is derived, never stored.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Name        string     `json:"name"`
	AssignedTo  []string   `json:"assigned_to,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Finished    bool       `json:"finished"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Estimate    string     `json:"estimate,omitempty"`
	MilestoneID string     `json:"milestone_id,omitempty"`
	GroupID     string     `json:"group_id,omitempty"`
	LoggedTime  string     `json:"logged_time,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Overdue reports whether the task's end date has passed and the task is
// not finished.
func (t Task) Overdue(now time.Time) bool {
	return t.EndDate != nil && t.EndDate.Before(now) && !t.Finished
}

// DaysOverdue returns the number of whole days the task is past its end
// date, or 0 if it has no end date.
func (t Task) DaysOverdue(now time.Time) int {
	if t.EndDate == nil {
		return 0
	}
	return DaysBetween(*t.EndDate, now)
}

// AssignedToUser reports whether the given user appears in the task's
// assignee list.
func (t Task) AssignedToUser(userID string) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// Milestone is a snapshot of a milestone document.
type Milestone struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Title     string     `json:"title"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Active    bool       `json:"active"`
}

// DaysRemaining returns the number of whole days until the milestone's end
// date. Negative values mean the milestone is past its deadline. The second
// return is false when the milestone has no end date.
func (m Milestone) DaysRemaining(now time.Time) (int, bool) {
	if m.EndDate == nil {
		return 0, false
	}
	return DaysBetween(now, *m.EndDate), true
}

// User is a snapshot of a user document. Designation, skills, and roles
// carry display names already resolved from their reference IDs.
type User struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email,omitempty"`
	Designation string   `json:"designation,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// DisplayName returns the user's full name, trimmed.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// MatchesName reports whether the given free-text name matches the user's
// first name, last name, or full name, case-insensitively.
func (u User) MatchesName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	return name == strings.ToLower(u.FirstName) ||
		name == strings.ToLower(u.LastName) ||
		name == strings.ToLower(u.DisplayName())
}

// Membership is a (project, user) pair defining the workload population of
// a project.
type Membership struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
}

// Active reports whether the membership is currently active.
func (m Membership) Active() bool {
	return m.Status == "active"
}

// Session is one availability slot within a calendar day.
type Session struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Availability is a per-user calendar entry keyed by date.
type Availability struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Date     time.Time `json:"date"`
	Sessions []Session `json:"sessions,omitempty"`
}

// DaysBetween returns the number of whole days from a to b, flooring toward
// negative infinity so that a deadline missed by an hour already counts as
// one day overdue.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a).Hours() / 24
	if d < 0 && d != float64(int(d)) {
		return int(d) - 1
	}
	return int(d)
}
