package agentic

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
)

const (
	thoughtParseFailed = "解析思考结果失败，继续执行原计划。"
	thoughtCallFailed  = "LLM 调用失败，跳过此步分析。"
)

// review is the reviewer's verdict on one executed task.
type review struct {
	Thought     string
	NewTodoList []string
}

// reviewResponse requires both fields; a payload missing either is treated
// as unparseable so a half-formed answer cannot silently wipe the queue.
type reviewResponse struct {
	Thought     *string   `json:"thought"`
	NewTodoList *[]string `json:"new_todo_list"`
}

// reviewTask asks the LLM to evaluate the task's evidence and rewrite the
// remaining queue. Failures keep the queue unchanged with a fixed thought,
// so one bad review cannot derail the plan.
func (l *Loop) reviewTask(ctx context.Context, query, task, evidence string, remaining []string) review {
	remainingJSON := "[]"
	if len(remaining) > 0 {
		if encoded, err := json.Marshal(remaining); err == nil {
			remainingJSON = string(encoded)
		}
	}

	replacer := strings.NewReplacer(
		"{user_query}", query,
		"{current_task}", task,
		"{search_results}", evidence,
		"{remaining_todo_list}", remainingJSON,
	)
	prompt := replacer.Replace(l.cfg.ReviewerPrompt)

	raw, err := l.llm.Complete(ctx, prompt)
	if err != nil {
		l.logger.Warn("review call failed, keeping queue", "task", task, "error", err)
		return review{Thought: thoughtCallFailed, NewTodoList: slices.Clone(remaining)}
	}

	parsed, ok := decodeJSON[reviewResponse](raw)
	if !ok || parsed.Thought == nil || parsed.NewTodoList == nil {
		l.logger.Warn("review output unparseable, keeping queue", "task", task)
		return review{Thought: thoughtParseFailed, NewTodoList: slices.Clone(remaining)}
	}
	return review{Thought: *parsed.Thought, NewTodoList: *parsed.NewTodoList}
}
