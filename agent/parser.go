package agent

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrParseFailure    = errors.New("failed to parse agent response from LLM output")
	ErrInvalidToolCall = errors.New("tool_call response missing tool name")
	ErrInvalidFinal    = errors.New("final response missing payload")
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n\\s*```")

// ParseResponse tries, in order: the raw text as JSON, a fenced ```json
// block, and the first balanced JSON object inside the text. Models wrap
// their JSON in prose often enough that all three are needed.
func ParseResponse(text string) (*Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrParseFailure
	}

	var lastErr error
	if resp, err := unmarshalAndValidate([]byte(text)); err == nil {
		return resp, nil
	} else {
		lastErr = err
	}

	if jsonStr := extractFromCodeBlock(text); jsonStr != "" {
		resp, err := unmarshalAndValidate([]byte(jsonStr))
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	if jsonStr := extractJSONObject(text); jsonStr != "" {
		resp, err := unmarshalAndValidate([]byte(jsonStr))
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

func unmarshalAndValidate(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	switch resp.Type {
	case TypeToolCall:
		if resp.ToolCall == nil || resp.ToolCall.Name == "" {
			return nil, ErrInvalidToolCall
		}
	case TypeFinal:
		if resp.Final == nil {
			return nil, ErrInvalidFinal
		}
	default:
		return nil, ErrParseFailure
	}
	return &resp, nil
}

func extractFromCodeBlock(text string) string {
	matches := codeBlockRe.FindStringSubmatch(text)
	if len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}

func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
