// Package agentic runs the plan/execute/review retrieval loop: an LLM
// splits the user question into retrieval tasks, each task is searched
// against the statute corpus, and the LLM reviews results to reshape the
// remaining queue until it drains or the iteration cap is hit.
package agentic

import (
	"context"

	"github.com/lexrag/lexrag/statute"
)

// Phase labels one stage of the loop for progress events.
type Phase string

const (
	PhasePlanning  Phase = "planning"
	PhaseExecuting Phase = "executing"
	PhaseThinking  Phase = "thinking"
	PhaseFinished  Phase = "finished"
)

// CompletedTask records one finished retrieval task and the reviewer's
// verdict on it.
type CompletedTask struct {
	Task    string `json:"task"`
	Thought string `json:"thought"`
}

// ProgressEvent is a full snapshot of loop state. Consumers render each
// event standalone; no diffing against earlier events is needed.
type ProgressEvent struct {
	Phase        Phase           `json:"step_type"`
	TodoList     []string        `json:"todo_list"`
	CompletedLog []CompletedTask `json:"completed_log"`
	CurrentTask  string          `json:"current_task,omitempty"`
	Thought      string          `json:"thought,omitempty"`
}

// Completer produces one assistant response for a prompt. Both the planner
// and the reviewer go through it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever finds statute fragments for one retrieval task.
type Retriever interface {
	Retrieve(ctx context.Context, query, regionFilter string, topK int) ([]statute.Fragment, error)
}
