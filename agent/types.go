// Package agent runs a bounded Think -> Act -> Observe loop: the model picks
// a tool, observes its output, and repeats until it returns a final answer
// or the step budget runs out.
package agent

import (
	"time"

	"github.com/charlabot/charla/llm"
)

const (
	TypeToolCall = "tool_call"
	TypeFinal    = "final"
)

type ToolCall struct {
	Thought string         `json:"thought"`
	Name    string         `json:"tool_name"`
	Params  map[string]any `json:"tool_params"`
}

type Final struct {
	Thought string `json:"thought,omitempty"`
	Output  string `json:"output"`
}

type Response struct {
	Type     string    `json:"type"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
	Final    *Final    `json:"final,omitempty"`
}

// Step is one executed action, kept for observability and tests.
type Step struct {
	StepNumber  int
	Thought     string
	Action      string
	ActionInput map[string]any
	Observation string
	Err         error
	Duration    time.Duration
}

type Metrics struct {
	TotalTokens  int
	ParseRetries int
	LLMCalls     int
	Duration     time.Duration
}

// Context accumulates the state of one run.
type Context struct {
	Task     string
	MaxSteps int
	Steps    []Step
	Metrics  Metrics
}

func NewContext(task string, maxSteps int) *Context {
	return &Context{Task: task, MaxSteps: maxSteps}
}

func (c *Context) RecordStep(s Step) {
	c.Steps = append(c.Steps, s)
}

func (c *Context) AddUsage(u llm.Usage, d time.Duration) {
	c.Metrics.TotalTokens += u.TotalTokens
	c.Metrics.LLMCalls++
	c.Metrics.Duration += d
}

type RunOptions struct {
	Model   string
	History []llm.Message
}
