package application

import "errors"

// ErrNoTeamMembers is returned when a project has no active memberships, so
// workload analysis has nothing to classify.
var ErrNoTeamMembers = errors.New("no team members found")

// ErrNoActiveProjects is returned by the portfolio aggregator when the store
// holds no running projects.
var ErrNoActiveProjects = errors.New("no active projects found")

// ErrMalformedAIResponse is returned when the model's recommendation output
// still violates the JSON contract after all retries. Callers fall back to
// the rule-based strategy.
var ErrMalformedAIResponse = errors.New("AI response did not match the recommendation contract")

// ErrEmptyQuery is returned when a conversation is started with a blank
// query.
var ErrEmptyQuery = errors.New("query cannot be empty")
