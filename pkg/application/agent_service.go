package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/pulse/pkg/domain"
	"github.com/felixgeelhaar/pulse/pkg/domain/agent"
	"github.com/felixgeelhaar/pulse/pkg/domain/ai"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// Conversation loop states and events.
const (
	stateThinking = "thinking"
	stateActing   = "acting"
	stateFinished = "finished"

	eventPropose = "propose"
	eventObserve = "observe"
	eventFinish  = "finish"
)

// defaultMaxSteps bounds the think-act loop. Exceeding it forces a finish
// with whatever answer the conversation has produced so far.
const defaultMaxSteps = 5

// noAnswer is the terminal response when the loop ends without the model
// ever declaring a final answer.
const noAnswer = "No answer generated"

// defaultThought is used when the model's output could not be parsed and the
// loop forces a grounding tool call instead of failing.
const defaultThought = "I need to get project details"

// Agent drives the think-act loop of one project's conversational
// assistant. An Agent is immutable after construction and safe to reuse
// across conversations; each Run threads its own State.
type Agent struct {
	projectID domain.ProjectID
	provider  ai.Provider
	tools     *agent.Toolset
	maxSteps  int
}

func NewAgent(projectID domain.ProjectID, provider ai.Provider, tools *agent.Toolset, maxSteps int) (*Agent, error) {
	if provider == nil {
		return nil, fmt.Errorf("agent for project %s: no AI provider", projectID)
	}
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Agent{
		projectID: projectID,
		provider:  provider,
		tools:     tools,
		maxSteps:  maxSteps,
	}, nil
}

// loopContext is the statekit machine context. The machine only tracks
// phase; the conversation data lives in agent.State.
type loopContext struct {
	ProjectID string
}

func (a *Agent) newInterpreter() (*statekit.Interpreter[loopContext], error) {
	builder := statekit.NewMachine[loopContext]("conversation").
		WithInitial(statekit.StateID(stateThinking)).
		WithContext(loopContext{ProjectID: a.projectID.String()})

	builder.State(stateThinking).
		On(eventPropose).Target(stateActing).
		On(eventFinish).Target(stateFinished).
		Done()

	builder.State(stateActing).
		On(eventObserve).Target(stateThinking).
		On(eventFinish).Target(stateFinished).
		Done()

	builder.State(stateFinished).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build conversation machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return interpreter, nil
}

// Run executes one full conversation turn: think, act, observe, until the
// model declares a final answer or the step bound is hit. Model failures
// mid-loop degrade to a forced grounding call; only context cancellation
// aborts the run.
func (a *Agent) Run(ctx context.Context, query string) (*agent.State, error) {
	state := &agent.State{Query: query}

	interp, err := a.newInterpreter()
	if err != nil {
		return nil, err
	}

	var pending agent.Outcome
	for {
		switch current := string(interp.State().Value); current {
		case stateThinking:
			outcome, err := a.think(ctx, state)
			if err != nil {
				return state, err
			}
			if outcome.Kind == agent.OutcomeFinish {
				state.Finish(outcome.Answer)
				interp.Send(statekit.Event{Type: statekit.EventType(eventFinish)})
				continue
			}
			pending = outcome
			interp.Send(statekit.Event{Type: statekit.EventType(eventPropose)})

		case stateActing:
			a.act(ctx, state, pending)
			if len(state.Steps) >= a.maxSteps {
				state.Finished = true
				interp.Send(statekit.Event{Type: statekit.EventType(eventFinish)})
				continue
			}
			interp.Send(statekit.Event{Type: statekit.EventType(eventObserve)})

		case stateFinished:
			return state, nil

		default:
			return state, fmt.Errorf("conversation machine in unknown state %q", current)
		}
	}
}

// think asks the model for the next move and parses its output. An
// unparsable output or a transient model failure yields a forced default
// tool call; the loop never dies on a single bad completion.
func (a *Agent) think(ctx context.Context, state *agent.State) (agent.Outcome, error) {
	resp, err := a.provider.Complete(ctx, ai.CompletionRequest{
		Prompt:      a.prompt(state),
		Temperature: 0,
	})
	if err != nil {
		if ctx.Err() != nil {
			return agent.Outcome{}, ctx.Err()
		}
		return a.defaultAction(), nil
	}

	state.RawOutcome = resp.Text
	outcome := agent.Parse(resp.Text)
	if outcome.Kind == agent.OutcomeAmbiguous {
		return a.defaultAction(), nil
	}
	return outcome, nil
}

func (a *Agent) defaultAction() agent.Outcome {
	return agent.Outcome{
		Kind:    agent.OutcomeContinue,
		Thought: defaultThought,
		Tool:    "GetProjectDetails",
		Input:   a.projectID.String(),
	}
}

// act executes the proposed tool call and records the observation. Unknown
// tools and tool failures become textual observations the model can react
// to; a panicking tool is contained the same way.
func (a *Agent) act(ctx context.Context, state *agent.State, outcome agent.Outcome) {
	observation := a.invoke(ctx, outcome.Tool, outcome.Input)
	state.Record(agent.Step{
		Thought:     outcome.Thought,
		Tool:        outcome.Tool,
		Input:       outcome.Input,
		Observation: observation,
	})
}

func (a *Agent) invoke(ctx context.Context, name, input string) (observation string) {
	tool, ok := a.tools.Lookup(name)
	if !ok {
		return fmt.Sprintf("Unknown tool: %s. Available tools: %s", name, strings.Join(a.tools.Names(), ", "))
	}

	defer func() {
		if r := recover(); r != nil {
			observation = fmt.Sprintf("Error executing tool: panic: %v", r)
		}
	}()

	result, err := tool.Run(ctx, input)
	if err != nil {
		return fmt.Sprintf("Error executing tool: %v", err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("Error executing tool: %v", err)
	}
	return string(encoded)
}

// prompt renders the full conversation prompt: instructions, tool table,
// query, and the scratchpad of prior steps.
func (a *Agent) prompt(state *agent.State) string {
	return fmt.Sprintf(`You are an AI assistant helping with project management.
You must answer questions about the project with the ID: %s

You have access to the following tools:
%s

CRITICAL RULES:
1. You MUST use the correct tool based on the tool description FIRST before answering ANY question about the project
2. Do NOT make up or assume ANY information
3. Do NOT write "Observation:" yourself - the system will provide it after running the tool
4. After writing "Action Input:", STOP immediately and wait for the Observation
5. Only write "Final Answer:" after you have received an Observation with real data

Use the following format EXACTLY:
Question: the input question you must answer
Thought: think about what to do
Action: call the tool you want to use
Action Input: the input for the tool
[STOP HERE - System will provide Observation]

After receiving the Observation, then:
Thought: analyze the observation
Final Answer: provide the answer based on the observation

Current conversation:
Question: %s
%s
Now begin! Remember: STOP after "Action Input:" and wait for the Observation.`,
		a.projectID, a.tools.Describe(), state.Query, scratchpad(state.Steps))
}

// scratchpad formats prior steps for the prompt.
func scratchpad(steps []agent.Step) string {
	if len(steps) == 0 {
		return ""
	}
	var b strings.Builder
	for _, step := range steps {
		fmt.Fprintf(&b, "Thought: %s\n", step.Thought)
		fmt.Fprintf(&b, "Action: %s\n", step.Tool)
		fmt.Fprintf(&b, "Action Input: %s\n", step.Input)
		fmt.Fprintf(&b, "Observation: %s\n", step.Observation)
	}
	return b.String()
}

// ChatResult is the outcome of one conversation turn.
type ChatResult struct {
	Response string `json:"response"`
	ThreadID string `json:"thread_id"`
	Steps    int    `json:"steps"`
}

// AgentService owns one agent per project, constructed on first use and
// cached for the life of the process. Construction failures (typically a
// missing credential) are cached too so every caller sees the same error.
type AgentService struct {
	store    record.Store
	analysis *AnalysisService
	provider ai.Provider
	maxSteps int

	agents sync.Map // project ID string -> *agentEntry
}

type agentEntry struct {
	once  sync.Once
	agent *Agent
	err   error
}

func NewAgentService(store record.Store, analysis *AnalysisService, provider ai.Provider) *AgentService {
	return &AgentService{
		store:    store,
		analysis: analysis,
		provider: provider,
		maxSteps: defaultMaxSteps,
	}
}

// WithMaxSteps overrides the loop bound.
func (s *AgentService) WithMaxSteps(n int) *AgentService {
	if n > 0 {
		s.maxSteps = n
	}
	return s
}

// Chat runs one conversation turn against the project's agent. Every turn
// gets a fresh thread ID.
func (s *AgentService) Chat(ctx context.Context, projectID, query string) (*ChatResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	id, err := domain.NewProjectID(projectID)
	if err != nil {
		return nil, err
	}

	a, err := s.agentFor(id)
	if err != nil {
		return nil, err
	}

	state, err := a.Run(ctx, query)
	if err != nil {
		return nil, err
	}

	answer := state.FinalAnswer
	if answer == "" {
		answer = noAnswer
	}
	return &ChatResult{
		Response: answer,
		ThreadID: uuid.NewString(),
		Steps:    len(state.Steps),
	}, nil
}

// agentFor returns the project's cached agent, constructing it exactly once
// even under concurrent first calls.
func (s *AgentService) agentFor(id domain.ProjectID) (*Agent, error) {
	v, _ := s.agents.LoadOrStore(id.String(), &agentEntry{})
	entry := v.(*agentEntry)
	entry.once.Do(func() {
		tools := NewProjectToolset(s.store, s.analysis, id)
		entry.agent, entry.err = NewAgent(id, s.provider, tools, s.maxSteps)
	})
	return entry.agent, entry.err
}
