package agentic

import (
	"context"
	"strings"
	"testing"
)

func TestPlanSubstitutesQuery(t *testing.T) {
	llm := &stubLLM{responses: []string{`["任务1", "任务2"]`}}
	l := newTestLoop(llm)

	got := l.plan(context.Background(), "房屋买卖合同纠纷如何处理")
	if len(got) != 2 {
		t.Fatalf("tasks = %v", got)
	}
	if !strings.Contains(llm.prompts[0], `用户问题："房屋买卖合同纠纷如何处理"`) {
		t.Errorf("prompt missing query:\n%s", llm.prompts[0])
	}
	if strings.Contains(llm.prompts[0], "{user_query}") {
		t.Error("placeholder left unsubstituted")
	}
}

func TestPlanFencedOutput(t *testing.T) {
	llm := &stubLLM{responses: []string{"```json\n[\"民事诉讼时效期间\"]\n```"}}
	l := newTestLoop(llm)

	got := l.plan(context.Background(), "诉讼时效是多久")
	if len(got) != 1 || got[0] != "民事诉讼时效期间" {
		t.Errorf("tasks = %v", got)
	}
}

func TestPlanNullFallsBackToQuery(t *testing.T) {
	llm := &stubLLM{responses: []string{`null`}}
	l := newTestLoop(llm)

	got := l.plan(context.Background(), "原始问题")
	if len(got) != 1 || got[0] != "原始问题" {
		t.Errorf("tasks = %v, want fallback to the raw query", got)
	}
}

func TestPlanEmptyArrayStaysEmpty(t *testing.T) {
	llm := &stubLLM{responses: []string{`[]`}}
	l := newTestLoop(llm)

	if got := l.plan(context.Background(), "问题"); len(got) != 0 {
		t.Errorf("tasks = %v", got)
	}
}
