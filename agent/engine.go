package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/charlabot/charla/llm"
	"github.com/charlabot/charla/tools"
)

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

type Config struct {
	MaxSteps     int
	ParseRetries int
}

// Engine drives the loop. The step budget is the only cancellation
// mechanism besides the caller's context; there is no external interrupt.
type Engine struct {
	client   llm.Client
	registry *tools.Registry
	config   Config
	log      *slog.Logger
}

func New(client llm.Client, registry *tools.Registry, cfg Config, opts ...Option) *Engine {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 3
	}
	if cfg.ParseRetries < 0 {
		cfg.ParseRetries = 0
	}
	e := &Engine{
		client:   client,
		registry: registry,
		config:   cfg,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func newRunID() string { return fmt.Sprintf("%x", rand.Uint64()) }

// Run executes the loop for one task and returns the model's final output.
func (e *Engine) Run(ctx context.Context, task string, opts RunOptions) (string, *Context, error) {
	agentCtx := NewContext(task, e.config.MaxSteps)

	runID := newRunID()
	log := e.log.With("run_id", runID, "model", opts.Model)
	log.Info("run_start", "task_len", len(task))

	messages := []llm.Message{{Role: llm.RoleSystem, Content: BuildSystemPrompt(e.registry)}}
	for _, m := range opts.History {
		if strings.EqualFold(strings.TrimSpace(m.Role), llm.RoleSystem) {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: task})

	parseFailures := 0
	for step := 0; step < agentCtx.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			log.Warn("run_cancelled", "step", step, "error", err.Error())
			return "", agentCtx, fmt.Errorf("context cancelled at step %d: %w", step, err)
		}

		start := time.Now()
		result, err := e.client.Chat(ctx, llm.Request{
			Model:     opts.Model,
			Messages:  messages,
			ForceJSON: true,
		})
		if err != nil {
			log.Error("llm_call_error", "step", step, "error", err.Error())
			return "", agentCtx, fmt.Errorf("LLM call failed at step %d: %w", step, err)
		}
		agentCtx.AddUsage(result.Usage, time.Since(start))

		resp, parseErr := ParseResponse(result.Text)
		if parseErr != nil {
			parseFailures++
			agentCtx.Metrics.ParseRetries = parseFailures
			log.Warn("parse_error", "step", step, "retries", parseFailures, "error", parseErr.Error())
			if parseFailures > e.config.ParseRetries {
				break
			}
			messages = append(messages,
				llm.Message{Role: llm.RoleAssistant, Content: result.Text},
				llm.Message{Role: llm.RoleUser, Content: "Your response was not valid JSON. You MUST respond with a JSON object with \"type\" set to \"tool_call\" or \"final\". Try again."},
			)
			continue
		}
		parseFailures = 0

		switch resp.Type {
		case TypeFinal:
			log.Info("final", "step", step, "output_len", len(resp.Final.Output))
			return resp.Final.Output, agentCtx, nil

		case TypeToolCall:
			tc := resp.ToolCall
			stepStart := time.Now()
			log.Info("tool_call", "step", step, "tool", tc.Name)

			observation, toolErr := e.executeTool(ctx, tc)
			agentCtx.RecordStep(Step{
				StepNumber:  step,
				Thought:     tc.Thought,
				Action:      tc.Name,
				ActionInput: tc.Params,
				Observation: observation,
				Err:         toolErr,
				Duration:    time.Since(stepStart),
			})
			if toolErr != nil {
				log.Warn("tool_done", "step", step, "tool", tc.Name, "duration_ms", time.Since(stepStart).Milliseconds(), "error", toolErr.Error())
			} else {
				log.Info("tool_done", "step", step, "tool", tc.Name, "duration_ms", time.Since(stepStart).Milliseconds(), "observation_len", len(observation))
			}

			messages = append(messages,
				llm.Message{Role: llm.RoleAssistant, Content: result.Text},
				llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("Tool Result (%s):\n%s", tc.Name, observation)},
			)

		default:
			log.Error("unexpected_response_type", "step", step, "type", resp.Type)
			return "", agentCtx, ErrParseFailure
		}
	}

	return e.forceConclusion(ctx, messages, opts.Model, agentCtx, log)
}

func (e *Engine) executeTool(ctx context.Context, tc *ToolCall) (string, error) {
	tool, found := e.registry.Get(tc.Name)
	if !found {
		return fmt.Sprintf("Error: tool '%s' not found. Available tools: %s", tc.Name, e.registry.ToolNames()), fmt.Errorf("tool not found")
	}
	observation, err := tool.Execute(ctx, tc.Params)
	if err != nil && strings.TrimSpace(observation) == "" {
		observation = fmt.Sprintf("error: %s", err.Error())
	}
	return observation, err
}

// forceConclusion asks once more for a final answer when the step budget or
// the parse budget is exhausted.
func (e *Engine) forceConclusion(ctx context.Context, messages []llm.Message, model string, agentCtx *Context, log *slog.Logger) (string, *Context, error) {
	log.Warn("force_conclusion", "steps", len(agentCtx.Steps))
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: "Stop calling tools. Based on everything above, respond now with {\"type\":\"final\",\"final\":{\"output\":\"...\"}}.",
	})
	start := time.Now()
	result, err := e.client.Chat(ctx, llm.Request{Model: model, Messages: messages, ForceJSON: true})
	if err != nil {
		return "", agentCtx, fmt.Errorf("force conclusion failed: %w", err)
	}
	agentCtx.AddUsage(result.Usage, time.Since(start))

	resp, parseErr := ParseResponse(result.Text)
	if parseErr == nil && resp.Type == TypeFinal {
		return resp.Final.Output, agentCtx, nil
	}
	// Accept raw text as a last resort; the orchestrator length-checks it.
	if out := strings.TrimSpace(result.Text); out != "" {
		return out, agentCtx, nil
	}
	return "", agentCtx, ErrParseFailure
}
