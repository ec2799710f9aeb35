package storage

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/pulse/pkg/domain"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// MemoryStore is an in-memory Store used by tests and the demo fixtures. All
// lookups copy slices so callers cannot mutate shared state.
type MemoryStore struct {
	mu sync.RWMutex

	ProjectsByID map[string]record.Project
	Tasks        []record.Task
	UsersByID    map[string]record.User
	MilestoneSet []record.Milestone
	Members      []record.Membership
	Calendar     []record.Availability
	Clients      map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ProjectsByID: map[string]record.Project{},
		UsersByID:    map[string]record.User{},
		Clients:      map[string]string{},
	}
}

func (s *MemoryStore) AddProject(p record.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProjectsByID[p.ID] = p
}

func (s *MemoryStore) AddTask(t record.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tasks = append(s.Tasks, t)
}

func (s *MemoryStore) AddUser(u record.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UsersByID[u.ID] = u
}

func (s *MemoryStore) AddMilestone(m record.Milestone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MilestoneSet = append(s.MilestoneSet, m)
}

func (s *MemoryStore) AddMembership(m record.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Members = append(s.Members, m)
}

func (s *MemoryStore) AddAvailability(a record.Availability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calendar = append(s.Calendar, a)
}

func (s *MemoryStore) AddClient(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clients[id] = name
}

func (s *MemoryStore) Project(ctx context.Context, id domain.ProjectID) (*record.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.ProjectsByID[id.String()]
	if !ok {
		return nil, record.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (s *MemoryStore) ActiveProjects(ctx context.Context) ([]record.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Project
	for _, p := range s.ProjectsByID {
		for _, status := range activeProjectStatuses {
			if p.Status == status {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) TasksByProject(ctx context.Context, id domain.ProjectID) ([]record.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Task
	for _, t := range s.Tasks {
		if t.ProjectID == id.String() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) TasksByMilestone(ctx context.Context, id domain.MilestoneID) ([]record.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Task
	for _, t := range s.Tasks {
		if t.MilestoneID == id.String() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) User(ctx context.Context, id domain.UserID) (*record.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.UsersByID[id.String()]
	if !ok {
		return nil, record.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (s *MemoryStore) Users(ctx context.Context, ids []domain.UserID) ([]record.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.User
	for _, id := range ids {
		if u, ok := s.UsersByID[id.String()]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *MemoryStore) Milestones(ctx context.Context, id domain.ProjectID) ([]record.Milestone, error) {
	return s.milestones(id, false)
}

func (s *MemoryStore) ActiveMilestones(ctx context.Context, id domain.ProjectID) ([]record.Milestone, error) {
	return s.milestones(id, true)
}

func (s *MemoryStore) milestones(id domain.ProjectID, activeOnly bool) ([]record.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Milestone
	for _, m := range s.MilestoneSet {
		if m.ProjectID != id.String() {
			continue
		}
		if activeOnly && !m.Active {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *MemoryStore) Memberships(ctx context.Context, id domain.ProjectID) ([]record.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Membership
	for _, m := range s.Members {
		if m.ProjectID == id.String() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) Availability(ctx context.Context, id domain.UserID) ([]record.Availability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Availability
	for _, a := range s.Calendar {
		if a.UserID == id.String() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) ClientName(ctx context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.Clients[clientID]
	if !ok {
		return "", record.ErrNotFound
	}
	return name, nil
}
