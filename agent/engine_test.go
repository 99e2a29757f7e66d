package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/charlabot/charla/llm"
	"github.com/charlabot/charla/tools"
)

type scriptedClient struct {
	replies []string
	err     error
	calls   int
	lastReq llm.Request
}

func (c *scriptedClient) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	c.lastReq = req
	if c.err != nil {
		return llm.Result{}, c.err
	}
	if c.calls >= len(c.replies) {
		return llm.Result{}, errors.New("script exhausted")
	}
	reply := c.replies[c.calls]
	c.calls++
	return llm.Result{Text: reply, Usage: llm.Usage{TotalTokens: 10}}, nil
}

type fakeTool struct {
	name   string
	output string
	err    error
	calls  int
}

func (t *fakeTool) Name() string            { return t.name }
func (t *fakeTool) Description() string     { return "fake tool for tests" }
func (t *fakeTool) ParameterSchema() string { return `{"type":"object"}` }

func (t *fakeTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	t.calls++
	if t.err != nil {
		return "", t.err
	}
	return t.output, nil
}

func newTestRegistry(ts ...tools.Tool) *tools.Registry {
	r := tools.NewRegistry()
	for _, tool := range ts {
		r.Register(tool)
	}
	return r
}

func TestRunToolCallThenFinal(t *testing.T) {
	tool := &fakeTool{name: "echo", output: "observed!"}
	client := &scriptedClient{replies: []string{
		`{"type":"tool_call","tool_call":{"thought":"try the tool","tool_name":"echo","tool_params":{"x":1}}}`,
		`{"type":"final","final":{"output":"la respuesta final"}}`,
	}}

	e := New(client, newTestRegistry(tool), Config{MaxSteps: 3})
	out, runCtx, err := e.Run(context.Background(), "do something", RunOptions{Model: "test-model"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "la respuesta final" {
		t.Fatalf("output = %q", out)
	}
	if tool.calls != 1 {
		t.Fatalf("tool calls = %d, want 1", tool.calls)
	}
	if len(runCtx.Steps) != 1 {
		t.Fatalf("recorded steps = %d, want 1", len(runCtx.Steps))
	}
	if runCtx.Steps[0].Observation != "observed!" {
		t.Fatalf("observation = %q", runCtx.Steps[0].Observation)
	}
	if runCtx.Metrics.LLMCalls != 2 || runCtx.Metrics.TotalTokens != 20 {
		t.Fatalf("metrics = %+v", runCtx.Metrics)
	}
}

func TestRunImmediateFinal(t *testing.T) {
	client := &scriptedClient{replies: []string{
		`{"type":"final","final":{"output":"sin herramientas"}}`,
	}}

	e := New(client, newTestRegistry(), Config{MaxSteps: 3})
	out, runCtx, err := e.Run(context.Background(), "hola", RunOptions{Model: "m"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "sin herramientas" {
		t.Fatalf("output = %q", out)
	}
	if len(runCtx.Steps) != 0 {
		t.Fatalf("no steps expected, got %d", len(runCtx.Steps))
	}
}

func TestRunParseRetry(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"I think the answer is 42",
		`{"type":"final","final":{"output":"cuarenta y dos"}}`,
	}}

	e := New(client, newTestRegistry(), Config{MaxSteps: 3, ParseRetries: 1})
	out, runCtx, err := e.Run(context.Background(), "task", RunOptions{Model: "m"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "cuarenta y dos" {
		t.Fatalf("output = %q", out)
	}
	if runCtx.Metrics.ParseRetries != 1 {
		t.Fatalf("ParseRetries = %d, want 1", runCtx.Metrics.ParseRetries)
	}
}

func TestRunStepBudgetForcesConclusion(t *testing.T) {
	tool := &fakeTool{name: "echo", output: "more data"}
	toolCall := `{"type":"tool_call","tool_call":{"thought":"again","tool_name":"echo","tool_params":{}}}`
	client := &scriptedClient{replies: []string{
		toolCall, toolCall,
		`{"type":"final","final":{"output":"me quedé sin pasos"}}`,
	}}

	e := New(client, newTestRegistry(tool), Config{MaxSteps: 2})
	out, runCtx, err := e.Run(context.Background(), "task", RunOptions{Model: "m"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "me quedé sin pasos" {
		t.Fatalf("output = %q", out)
	}
	if tool.calls != 2 {
		t.Fatalf("tool calls = %d, want 2", tool.calls)
	}
	if len(runCtx.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(runCtx.Steps))
	}
}

func TestRunUnknownToolFeedsErrorBack(t *testing.T) {
	client := &scriptedClient{replies: []string{
		`{"type":"tool_call","tool_call":{"thought":"x","tool_name":"missing","tool_params":{}}}`,
		`{"type":"final","final":{"output":"esa herramienta no existe"}}`,
	}}

	e := New(client, newTestRegistry(), Config{MaxSteps: 3})
	out, runCtx, err := e.Run(context.Background(), "task", RunOptions{Model: "m"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "esa herramienta no existe" {
		t.Fatalf("output = %q", out)
	}
	if len(runCtx.Steps) != 1 || runCtx.Steps[0].Err == nil {
		t.Fatalf("expected one failed step, got %+v", runCtx.Steps)
	}
}

func TestRunLLMErrorPropagates(t *testing.T) {
	client := &scriptedClient{err: errors.New("http 500")}
	e := New(client, newTestRegistry(), Config{MaxSteps: 3})
	_, _, err := e.Run(context.Background(), "task", RunOptions{Model: "m"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunFiltersSystemHistory(t *testing.T) {
	client := &scriptedClient{replies: []string{
		`{"type":"final","final":{"output":"ok entonces"}}`,
	}}
	e := New(client, newTestRegistry(), Config{MaxSteps: 3})

	history := []llm.Message{
		{Role: llm.RoleSystem, Content: "should be dropped"},
		{Role: llm.RoleUser, Content: "hola"},
		{Role: llm.RoleAssistant, Content: "buenas"},
	}
	_, _, err := e.Run(context.Background(), "task", RunOptions{Model: "m", History: history})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	msgs := client.lastReq.Messages
	if len(msgs) != 4 {
		t.Fatalf("expected system prompt + 2 history + task, got %d messages", len(msgs))
	}
	for _, m := range msgs[1:] {
		if m.Role == llm.RoleSystem {
			t.Fatalf("history system message should be filtered out")
		}
	}
}
