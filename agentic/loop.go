package agentic

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/lexrag/lexrag/errors"
	"github.com/lexrag/lexrag/pkg/logging"
	"github.com/lexrag/lexrag/pkg/telemetry"
	"github.com/lexrag/lexrag/statute"
)

const (
	// hardLoopLimit bounds runs configured with a non-positive cap.
	hardLoopLimit = 20

	thoughtPlanning = "正在拆解法律问题..."
	thoughtThinking = "正在评估检索结果..."
	thoughtFinished = "所有任务执行完毕，正在生成最终回答..."

	noEvidence = "未找到直接相关法条。"
)

// Loop orchestrates agentic retrieval over a Completer and a Retriever.
type Loop struct {
	llm       Completer
	retriever Retriever
	cfg       Config
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New builds a Loop. Options override the defaults (5 iterations, top-50
// retrieval, distance threshold 1.2).
func New(llm Completer, retriever Retriever, opts ...Option) *Loop {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loop{
		llm:       llm,
		retriever: retriever,
		cfg:       cfg,
		logger:    logging.WithComponent("agentic"),
		tracer:    otel.Tracer("lexrag/agentic"),
	}
}

// Run executes the full loop for one user question and returns the
// accumulated relevant fragments in first-seen order. onEvent, when
// non-nil, receives a state snapshot at each phase transition; every
// snapshot owns its slices, so consumers may retain them.
//
// Run fails only on an empty query or context cancellation; degraded LLM
// calls and failed searches are absorbed into the loop state instead.
func (l *Loop) Run(ctx context.Context, query string, onEvent func(ProgressEvent)) ([]statute.Fragment, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("agentic: empty query: %w", apperrors.ErrInvalidInput)
	}

	ctx, span := l.tracer.Start(ctx, "agentic.Run",
		trace.WithAttributes(attribute.Int("max_loops", l.cfg.MaxLoops)))
	var runErr error
	defer func() { telemetry.End(span, runErr) }()

	emit := func(ev ProgressEvent) {
		if onEvent != nil {
			onEvent(ev)
		}
	}

	var (
		completed []CompletedTask
		collected []statute.Fragment
		seen      = make(map[string]struct{})
	)

	emit(ProgressEvent{
		Phase:        PhasePlanning,
		TodoList:     []string{},
		CompletedLog: []CompletedTask{},
		Thought:      thoughtPlanning,
	})

	todo := l.plan(ctx, query)
	l.logger.Info("plan ready", "tasks", len(todo))

	limit := l.cfg.MaxLoops
	if limit <= 0 {
		limit = hardLoopLimit
	}

	iterations := 0
	for len(todo) > 0 && iterations < limit {
		if err := ctx.Err(); err != nil {
			runErr = err
			return nil, err
		}
		iterations++
		task := todo[0]
		todo = todo[1:]

		emit(ProgressEvent{
			Phase:        PhaseExecuting,
			TodoList:     slices.Clone(todo),
			CompletedLog: slices.Clone(completed),
			CurrentTask:  task,
		})

		evidence := l.executeTask(ctx, task, seen, &collected)

		emit(ProgressEvent{
			Phase:        PhaseThinking,
			TodoList:     slices.Clone(todo),
			CompletedLog: slices.Clone(completed),
			CurrentTask:  task,
			Thought:      thoughtThinking,
		})

		verdict := l.reviewTask(ctx, query, task, evidence, todo)
		todo = verdict.NewTodoList
		completed = append(completed, CompletedTask{Task: task, Thought: verdict.Thought})
	}

	if err := ctx.Err(); err != nil {
		runErr = err
		return nil, err
	}

	emit(ProgressEvent{
		Phase:        PhaseFinished,
		TodoList:     []string{},
		CompletedLog: slices.Clone(completed),
		Thought:      thoughtFinished,
	})

	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Int("fragments", len(collected)),
	)
	l.logger.Info("run complete", "iterations", iterations, "fragments", len(collected))
	return collected, nil
}

// executeTask searches one task, folds relevant fragments into the shared
// collection, and renders the evidence text shown to the reviewer.
func (l *Loop) executeTask(ctx context.Context, task string, seen map[string]struct{}, collected *[]statute.Fragment) string {
	ctx, span := l.tracer.Start(ctx, "agentic.executeTask")
	defer telemetry.End(span, nil)

	var evidence strings.Builder
	fragments, err := l.retriever.Retrieve(ctx, task, "", l.cfg.TopK)
	if err != nil {
		l.logger.Warn("retrieval failed", "task", task, "error", err)
		return fmt.Sprintf("搜索出错: %v", err)
	}

	for _, f := range fragments {
		if f.Distance >= l.cfg.RelevanceThreshold {
			continue
		}
		fmt.Fprintf(&evidence, "法规：《%s》%s\n内容：%s\n\n", f.LawName, f.ArticleNumber, f.Content)
		if _, dup := seen[f.ID]; !dup {
			seen[f.ID] = struct{}{}
			*collected = append(*collected, f)
		}
	}

	if strings.TrimSpace(evidence.String()) == "" {
		return noEvidence
	}
	return evidence.String()
}
