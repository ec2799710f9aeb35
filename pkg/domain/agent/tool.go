package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Tool is a pure, read-only, named capability the loop may invoke. Run
// returns a JSON-serializable record or an error; implementations must not
// mutate state.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, input string) (any, error)
}

// Toolset is the fixed capability table available to one agent. It is
// injected into the loop at construction; there is no global registry.
type Toolset struct {
	tools map[string]Tool
	names []string
}

// NewToolset builds a capability table from the given tools. Later tools
// with a duplicate name replace earlier ones.
func NewToolset(tools ...Tool) *Toolset {
	ts := &Toolset{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := ts.tools[t.Name]; !exists {
			ts.names = append(ts.names, t.Name)
		}
		ts.tools[t.Name] = t
	}
	sort.Strings(ts.names)
	return ts
}

// Lookup returns the named tool.
func (ts *Toolset) Lookup(name string) (Tool, bool) {
	t, ok := ts.tools[name]
	return t, ok
}

// Names returns the valid tool names, sorted.
func (ts *Toolset) Names() []string {
	return ts.names
}

// Describe renders the one-line-per-tool description block used in the
// agent prompt.
func (ts *Toolset) Describe() string {
	var b strings.Builder
	for _, name := range ts.names {
		fmt.Fprintf(&b, "- %s: %s\n", name, ts.tools[name].Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
