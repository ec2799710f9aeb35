package application_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/pulse/pkg/application"
	"github.com/felixgeelhaar/pulse/pkg/domain"
	"github.com/felixgeelhaar/pulse/pkg/domain/agent"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

func newToolset(t *testing.T, store *storage.MemoryStore) *agent.Toolset {
	t.Helper()
	id, err := domain.NewProjectID(projectID)
	if err != nil {
		t.Fatal(err)
	}
	analysis := application.NewAnalysisService(store).WithClock(fixedClock)
	return application.NewProjectToolset(store, analysis, id)
}

func runTool(t *testing.T, ts *agent.Toolset, name, input string) any {
	t.Helper()
	tool, ok := ts.Lookup(name)
	if !ok {
		t.Fatalf("tool %s not registered", name)
	}
	result, err := tool.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("%s error = %v", name, err)
	}
	return result
}

func toolErrorText(t *testing.T, result any) string {
	t.Helper()
	m, ok := result.(map[string]string)
	if !ok {
		t.Fatalf("result = %T %v, want an error map", result, result)
	}
	return m["error"]
}

func TestToolset_RegistersAllTools(t *testing.T) {
	ts := newToolset(t, newFixtureStore())

	want := []string{
		"GetHealthReport", "GetMilestones", "GetProjectDetails",
		"GetProjectTasks", "GetTeamMembers", "GetUserAvailability",
		"GetUserDetails",
	}
	got := ts.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestProjectDetailsTool(t *testing.T) {
	ts := newToolset(t, newFixtureStore())

	result := runTool(t, ts, "GetProjectDetails", projectID)
	project, ok := result.(*record.Project)
	if !ok {
		t.Fatalf("result = %T, want *record.Project", result)
	}
	if project.Name != "Apollo" {
		t.Errorf("Name = %q, want Apollo", project.Name)
	}
	if project.ClientName != "Acme Corp" {
		t.Errorf("ClientName = %q, want the resolved client", project.ClientName)
	}
}

func TestProjectDetailsTool_EmptyInputUsesBoundProject(t *testing.T) {
	ts := newToolset(t, newFixtureStore())

	result := runTool(t, ts, "GetProjectDetails", "")
	if project, ok := result.(*record.Project); !ok || project.ID != projectID {
		t.Errorf("result = %v, want the bound project", result)
	}
}

func TestProjectDetailsTool_BadInput(t *testing.T) {
	ts := newToolset(t, newFixtureStore())

	got := toolErrorText(t, runTool(t, ts, "GetProjectDetails", "garbage"))
	if got != "Invalid Project ID format: garbage" {
		t.Errorf("error = %q", got)
	}

	got = toolErrorText(t, runTool(t, ts, "GetProjectDetails", "64b0000000000000000000ff"))
	if got != "Project not found" {
		t.Errorf("error = %q", got)
	}
}

func TestUserDetailsTool_ResolvesByName(t *testing.T) {
	ts := newToolset(t, newFixtureStore())

	result := runTool(t, ts, "GetUserDetails", "alice")
	user, ok := result.(*record.User)
	if !ok {
		t.Fatalf("result = %T, want *record.User", result)
	}
	if user.ID != aliceID {
		t.Errorf("ID = %s, want %s", user.ID, aliceID)
	}
}

func TestUserDetailsTool_UnknownName(t *testing.T) {
	ts := newToolset(t, newFixtureStore())

	got := toolErrorText(t, runTool(t, ts, "GetUserDetails", "zelda"))
	if got != `No team member named "zelda"` {
		t.Errorf("error = %q", got)
	}
}

func TestUserDetailsTool_AmbiguousName(t *testing.T) {
	store := newFixtureStore()
	// A second Alice makes the first name ambiguous.
	otherID := "64a000000000000000000003"
	store.AddUser(record.User{ID: otherID, FirstName: "Alice", LastName: "Wong"})
	store.AddMembership(record.Membership{ProjectID: projectID, UserID: otherID, Status: "active"})

	ts := newToolset(t, store)

	got := toolErrorText(t, runTool(t, ts, "GetUserDetails", "alice"))
	if got != `Ambiguous name "alice" matches: Alice Smith, Alice Wong` {
		t.Errorf("error = %q", got)
	}
}

func TestUserDetailsTool_NonMember(t *testing.T) {
	store := newFixtureStore()
	outsiderID := "64a000000000000000000009"
	store.AddUser(record.User{ID: outsiderID, FirstName: "Oscar", LastName: "Out"})

	ts := newToolset(t, store)

	got := toolErrorText(t, runTool(t, ts, "GetUserDetails", outsiderID))
	if got != "User is not a member of this project" {
		t.Errorf("error = %q", got)
	}
}

func TestProjectTasksTool_WrapsTasks(t *testing.T) {
	ts := newToolset(t, newFixtureStore())

	result := runTool(t, ts, "GetProjectTasks", projectID)
	wrapped, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("result = %T, want a wrapping map", result)
	}
	tasks, ok := wrapped["tasks"].([]record.Task)
	if !ok || len(tasks) != 4 {
		t.Errorf(`result["tasks"] = %v, want the four fixture tasks`, wrapped["tasks"])
	}
}

func TestTeamMembersTool(t *testing.T) {
	ts := newToolset(t, newFixtureStore())

	result := runTool(t, ts, "GetTeamMembers", "")
	wrapped, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("result = %T, want a wrapping map", result)
	}
	members, ok := wrapped["team_members"].([]record.User)
	if !ok || len(members) != 2 {
		t.Errorf(`result["team_members"] = %v, want both members`, wrapped["team_members"])
	}
}

func TestHealthReportTool(t *testing.T) {
	ts := newToolset(t, newFixtureStore())

	result := runTool(t, ts, "GetHealthReport", projectID)
	score, ok := result.(interface{ HasData() bool })
	if !ok {
		t.Fatalf("result = %T, want a health score", result)
	}
	if !score.HasData() {
		t.Error("health report has no data for a project with tasks")
	}
}
