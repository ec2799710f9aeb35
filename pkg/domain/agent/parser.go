package agent

import (
	"strings"
)

// Markers the model emits in the ReAct text protocol.
const (
	ThoughtMarker     = "Thought:"
	ActionMarker      = "Action:"
	ActionInputMarker = "Action Input:"
	ObservationMarker = "Observation:"
	FinalAnswerMarker = "Final Answer:"
)

// OutcomeKind tags the result of parsing one raw model output.
type OutcomeKind int

const (
	// OutcomeFinish means the model declared a final answer.
	OutcomeFinish OutcomeKind = iota
	// OutcomeContinue means the model requested a tool invocation.
	OutcomeContinue
	// OutcomeAmbiguous means the output matched neither pattern; the loop
	// must force a default action rather than fail.
	OutcomeAmbiguous
)

// Outcome is the tagged result of parsing a model output.
type Outcome struct {
	Kind    OutcomeKind
	Answer  string // set for Finish
	Thought string // set for Continue
	Tool    string // set for Continue
	Input   string // set for Continue
}

// parserState names the phases of the output scan.
type parserState int

const (
	stateScanning parserState = iota
	stateFinalAnswer
)

// Parse scans one raw model output line by line and extracts either a final
// answer or a tool request.
//
// The scan first truncates at any "Observation:" line the model authored
// itself; the model must never fabricate tool results, so everything from
// that marker onward is discarded. A "Final Answer:" marker then takes
// precedence over any "Action:"; the answer runs from the marker to the end
// of the truncated output. Otherwise the first "Action:" and "Action Input:"
// pair is extracted together with the most recent "Thought:" line as
// provenance. Output matching neither pattern is Ambiguous, never an error.
func Parse(raw string) Outcome {
	lines := strings.Split(raw, "\n")

	// Discard everything from a model-authored Observation onward.
	cut := len(lines)
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), ObservationMarker) {
			cut = i
			break
		}
	}
	lines = lines[:cut]

	state := stateScanning
	var answerLines []string
	var tool, input string
	var inputFound bool
	var lastThought string

	for _, line := range lines {
		switch state {
		case stateScanning:
			if idx := indexFold(line, FinalAnswerMarker); idx >= 0 {
				state = stateFinalAnswer
				answerLines = append(answerLines, strings.TrimSpace(line[idx+len(FinalAnswerMarker):]))
				continue
			}
			if v, ok := markerValue(line, ThoughtMarker); ok {
				lastThought = v
				continue
			}
			if v, ok := markerValue(line, ActionInputMarker); ok {
				if !inputFound {
					input = cleanupValue(v)
					inputFound = true
				}
				continue
			}
			if v, ok := markerValue(line, ActionMarker); ok {
				if tool == "" {
					tool = firstWord(v)
				}
			}
		case stateFinalAnswer:
			answerLines = append(answerLines, line)
		}
	}

	if state == stateFinalAnswer {
		return Outcome{
			Kind:   OutcomeFinish,
			Answer: cleanupValue(strings.TrimSpace(strings.Join(answerLines, "\n"))),
		}
	}

	if tool != "" && inputFound {
		return Outcome{
			Kind:    OutcomeContinue,
			Thought: lastThought,
			Tool:    tool,
			Input:   input,
		}
	}

	return Outcome{Kind: OutcomeAmbiguous}
}

// markerValue returns the text following the marker if the line contains it.
func markerValue(line, marker string) (string, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(line[idx+len(marker):]), true
}

// indexFold is a case-insensitive strings.Index.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

// cleanupValue cuts trailing fabricated markers off an extracted value.
func cleanupValue(v string) string {
	for _, marker := range []string{
		"\n" + ObservationMarker,
		"\n" + ThoughtMarker,
		"\n" + FinalAnswerMarker,
	} {
		if idx := strings.Index(v, marker); idx >= 0 {
			v = v[:idx]
		}
	}
	return strings.TrimSpace(v)
}

// firstWord returns the leading run of word characters in v.
func firstWord(v string) string {
	for i, r := range v {
		if !isWordRune(r) {
			return v[:i]
		}
	}
	return v
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
