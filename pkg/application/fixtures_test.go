package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/ai"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// Fixture IDs. Hex strings of the right shape so the ID constructors accept
// them.
const (
	projectID   = "64b000000000000000000001"
	emptyProjID = "64b000000000000000000002"
	aliceID     = "64a000000000000000000001"
	bobID       = "64a000000000000000000002"
	milestoneID = "64c000000000000000000001"
	clientID    = "64d000000000000000000001"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func datePtr(t time.Time) *time.Time { return &t }

// newFixtureStore builds the canonical test project: two active members,
// two finished tasks completed this week, one open task on schedule, and
// one open task two days overdue attached to an active milestone five days
// from its deadline.
func newFixtureStore() *storage.MemoryStore {
	store := storage.NewMemoryStore()

	store.AddProject(record.Project{
		ID:       projectID,
		Name:     "Apollo",
		Status:   "active",
		ClientID: clientID,
	})
	store.AddClient(clientID, "Acme Corp")

	store.AddUser(record.User{ID: aliceID, FirstName: "Alice", LastName: "Smith", Designation: "Engineer"})
	store.AddUser(record.User{ID: bobID, FirstName: "Bob", LastName: "Jones", Designation: "Designer"})
	store.AddMembership(record.Membership{ProjectID: projectID, UserID: aliceID, Status: "active"})
	store.AddMembership(record.Membership{ProjectID: projectID, UserID: bobID, Status: "active"})

	store.AddTask(record.Task{
		ID: "t1", ProjectID: projectID, Name: "Design schema",
		Finished: true, UpdatedAt: now.AddDate(0, 0, -1),
	})
	store.AddTask(record.Task{
		ID: "t2", ProjectID: projectID, Name: "Write migrations",
		Finished: true, UpdatedAt: now.AddDate(0, 0, -2), MilestoneID: milestoneID,
	})
	store.AddTask(record.Task{
		ID: "t3", ProjectID: projectID, Name: "Build API",
		AssignedTo: []string{aliceID}, EndDate: datePtr(now.AddDate(0, 0, 5)),
		Status: "IN_PROGRESS", UpdatedAt: now.AddDate(0, 0, -1),
	})
	store.AddTask(record.Task{
		ID: "t4", ProjectID: projectID, Name: "Ship frontend",
		AssignedTo: []string{bobID}, EndDate: datePtr(now.AddDate(0, 0, -2)),
		Status: "IN_PROGRESS", Estimate: "2", MilestoneID: milestoneID,
		UpdatedAt: now.AddDate(0, 0, -1),
	})

	store.AddMilestone(record.Milestone{
		ID: milestoneID, ProjectID: projectID, Title: "Beta",
		Active: true, EndDate: datePtr(now.AddDate(0, 0, 5)),
	})

	return store
}

// scriptedProvider replays queued completions in order and records every
// prompt it was given. An exhausted queue answers with empty text.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []scriptedReply
	prompts []string
}

type scriptedReply struct {
	text string
	err  error
}

func (p *scriptedProvider) reply(text string) *scriptedProvider {
	p.replies = append(p.replies, scriptedReply{text: text})
	return p
}

func (p *scriptedProvider) failWith(err error) *scriptedProvider {
	p.replies = append(p.replies, scriptedReply{err: err})
	return p
}

func (p *scriptedProvider) promptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

func (p *scriptedProvider) prompt(i int) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts[i]
}

func (p *scriptedProvider) ID() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, req.Prompt)
	if len(p.replies) == 0 {
		return &ai.CompletionResponse{Model: "scripted"}, nil
	}
	next := p.replies[0]
	p.replies = p.replies[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &ai.CompletionResponse{Text: next.text, Model: "scripted"}, nil
}
