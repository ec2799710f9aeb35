// Package agent holds the domain model of the conversational agent: the
// shared conversation state, the output parser, and the tool contract. The
// loop driving these lives in the application layer.
package agent

// Step is one recorded tool invocation: the model's reasoning, the tool it
// chose, the raw input it supplied, and the observation fed back to it.
type Step struct {
	Thought     string `json:"thought"`
	Tool        string `json:"tool"`
	Input       string `json:"input"`
	Observation string `json:"observation"`
}

// State is the mutable conversation state threaded through one agent run.
// Two conversations never share a State.
type State struct {
	Query       string `json:"query"`
	RawOutcome  string `json:"-"`
	Steps       []Step `json:"steps"`
	FinalAnswer string `json:"final_answer"`
	Finished    bool   `json:"finished"`
}

// Record appends one completed step to the history.
func (s *State) Record(step Step) {
	s.Steps = append(s.Steps, step)
}

// Finish stores the terminal answer and marks the conversation done.
func (s *State) Finish(answer string) {
	s.FinalAnswer = answer
	s.Finished = true
}
