package agent

import (
	"fmt"
	"strings"

	"github.com/charlabot/charla/tools"
)

// BuildSystemPrompt describes the JSON protocol and the registered tools.
func BuildSystemPrompt(registry *tools.Registry) string {
	var b strings.Builder
	b.WriteString("You are a tool-using assistant for a Telegram bot. ")
	b.WriteString("Answer in the user's language (usually Spanish).\n\n")
	b.WriteString("You MUST respond with a single JSON object, one of:\n\n")
	b.WriteString("To call a tool:\n")
	b.WriteString("{\"type\":\"tool_call\",\"tool_call\":{\"thought\":\"...\",\"tool_name\":\"...\",\"tool_params\":{...}}}\n\n")
	b.WriteString("To finish:\n")
	b.WriteString("{\"type\":\"final\",\"final\":{\"thought\":\"...\",\"output\":\"answer for the user\"}}\n\n")
	b.WriteString("Call at most one tool per response. After observing a tool result, ")
	b.WriteString("either call another tool or return the final answer. ")
	b.WriteString("If a tool fails, explain the failure to the user in the final output ")
	b.WriteString("instead of retrying the same call.\n\n")
	fmt.Fprintf(&b, "Available tools: %s\n\n", registry.ToolNames())
	b.WriteString(registry.FormatToolDescriptions())
	return b.String()
}
