package agentic

import (
	"context"
	"strings"
)

// plan asks the LLM to split the question into retrieval tasks. Planning is
// best-effort: any call or parse failure degrades to searching the raw
// question as a single task, so the loop always has work.
func (l *Loop) plan(ctx context.Context, query string) []string {
	prompt := strings.ReplaceAll(l.cfg.PlannerPrompt, "{user_query}", query)

	raw, err := l.llm.Complete(ctx, prompt)
	if err != nil {
		l.logger.Warn("planning call failed, falling back to raw query", "error", err)
		return []string{query}
	}

	// JSON null decodes to a nil slice without error; only a real array
	// counts as a plan. An explicit [] stays empty.
	tasks, ok := decodeJSON[[]string](raw)
	if !ok || tasks == nil {
		l.logger.Warn("planning output unparseable, falling back to raw query")
		return []string{query}
	}
	return tasks
}
