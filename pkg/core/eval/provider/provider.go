// Package provider implements the three backend-specific tool-calling
// state machines behind one uniform interface, plus the process-wide
// registry that looks adapters up by ProviderID.
package provider

import (
	"context"
	"strings"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/model"
)

// ToolCall is one model-initiated function invocation.
type ToolCall struct {
	ID   string
	Name string
	Args jsonvalue.Value
}

// InvokeTool is supplied by the orchestrator; it executes a tool call
// through the sandbox runner and returns the handler's result.
type InvokeTool func(ctx context.Context, call ToolCall) (jsonvalue.Value, error)

// Request is the uniform request contract every adapter's loop consumes.
type Request struct {
	Model        string
	Prompt       string // system instruction
	Input        jsonvalue.Value
	Tools        []model.ToolDefinition
	MaxToolCalls int
	InvokeTool   InvokeTool
}

// Response is the uniform result of one tool-calling loop.
type Response struct {
	FinalOutput jsonvalue.Value
	Usage       *model.Usage
	ToolTrace   []model.ToolCallTrace
}

// Provider is implemented once per backend.
type Provider interface {
	InvokeWithTools(ctx context.Context, req Request) (Response, error)
}

// inputAsString renders req.Input the way every adapter's first user turn
// requires: verbatim if it is already a JSON string, else its compact JSON
// encoding.
func inputAsString(input jsonvalue.Value) string {
	if input.Kind() == jsonvalue.KindString {
		return input.String()
	}
	return string(jsonvalue.MustMarshal(input))
}

// parseMaybeJSON implements the final-output extraction rule shared by all
// three adapters: JSON if the text parses, else the trimmed string, else
// empty.
func parseMaybeJSON(text string) jsonvalue.Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return jsonvalue.String("")
	}
	if parsed, err := jsonvalue.Parse([]byte(trimmed)); err == nil {
		return parsed
	}
	return jsonvalue.String(trimmed)
}
