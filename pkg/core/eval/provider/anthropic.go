package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/model"
)

// AnthropicAdapter drives the second backend's tool-calling loop: a
// conversation is a list of role-tagged messages. The model's entire
// content array is appended as one assistant message, then a single user
// message carries one tool_result block per tool use.
type AnthropicAdapter struct {
	baseURL  string
	apiKeyFn func() (string, error)
	http     transport
}

// NewAnthropicAdapter constructs Adapter A.
func NewAnthropicAdapter(baseURL string, http transport) *AnthropicAdapter {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	return &AnthropicAdapter{
		baseURL: baseURL,
		http:    http,
		apiKeyFn: func() (string, error) {
			if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
				return v, nil
			}
			return "", fmt.Errorf("Missing Anthropic API key in ANTHROPIC_API_KEY")
		},
	}
}

type anthropicTool struct {
	Name        string          `json:"name"`
	InputSchema jsonvalue.Value `json:"input_schema,omitempty"`
	Description string          `json:"description,omitempty"`
}

type anthropicRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
	Messages  []jsonvalue.Value `json:"messages"`
	Tools     []anthropicTool   `json:"tools,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type anthropicResponse struct {
	Content []jsonvalue.Value `json:"content"`
	Usage   *anthropicUsage   `json:"usage"`
}

// InvokeWithTools implements Provider for the second backend.
func (a *AnthropicAdapter) InvokeWithTools(ctx context.Context, req Request) (Response, error) {
	apiKey, err := a.apiKeyFn()
	if err != nil {
		return Response{}, err
	}

	messages := []jsonvalue.Value{roleMessage("user", inputAsString(req.Input))}
	tools := toAnthropicTools(req.Tools)

	var trace []model.ToolCallTrace
	toolCallsUsed := 0

	for {
		reqBody := anthropicRequest{
			Model:     req.Model,
			MaxTokens: 2048,
			System:    req.Prompt,
			Messages:  messages,
			Tools:     tools,
		}
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return Response{}, fmt.Errorf("provider: failed to encode request: %w", err)
		}

		status, body, err := a.http.postJSON(ctx, a.baseURL+"/messages", map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": "2023-06-01",
		}, payload)
		if err != nil {
			return Response{}, err
		}
		if status < 200 || status >= 300 {
			return Response{}, fmt.Errorf("Provider request failed (%d): %s", status, headBytes(body, 400))
		}

		parsed, err := jsonvalue.Parse(body)
		if err != nil {
			return Response{}, fmt.Errorf("Provider returned invalid JSON: %s", headBytes(body, 400))
		}

		resp := decodeAnthropicResponse(parsed)

		newCalls := extractToolUses(resp.Content)
		if len(newCalls) == 0 {
			finalOutput := parseMaybeJSON(concatTextBlocks(resp.Content))
			return Response{
				FinalOutput: finalOutput,
				Usage:       convertAnthropicUsage(resp.Usage),
				ToolTrace:   trace,
			}, nil
		}

		if toolCallsUsed+len(newCalls) > req.MaxToolCalls {
			return Response{}, fmt.Errorf("exceeded maxToolCalls=%d", req.MaxToolCalls)
		}

		messages = append(messages, assistantMessage(resp.Content))

		var resultBlocks []jsonvalue.Value
		for _, call := range newCalls {
			start := time.Now()
			result, err := req.InvokeTool(ctx, ToolCall{ID: call.id, Name: call.name, Args: call.args})
			latency := time.Since(start).Milliseconds()
			if err != nil {
				trace = append(trace, model.ToolCallTrace{
					ID: call.id, Name: call.name, Args: call.args,
					LatencyMs: latency, Status: model.ToolCallError, ErrorMessage: err.Error(),
				})
				return Response{ToolTrace: trace}, err
			}
			trace = append(trace, model.ToolCallTrace{
				ID: call.id, Name: call.name, Args: call.args, Result: result,
				LatencyMs: latency, Status: model.ToolCallOK,
			})
			resultBlocks = append(resultBlocks, toolResultBlock(call.id, result))
		}
		messages = append(messages, userToolResultsMessage(resultBlocks))
		toolCallsUsed += len(newCalls)
	}
}

func roleMessage(role, content string) jsonvalue.Value {
	o := jsonvalue.NewObject()
	o.Set("role", jsonvalue.String(role))
	o.Set("content", jsonvalue.String(content))
	return jsonvalue.FromObject(o)
}

func assistantMessage(content []jsonvalue.Value) jsonvalue.Value {
	o := jsonvalue.NewObject()
	o.Set("role", jsonvalue.String("assistant"))
	o.Set("content", jsonvalue.Array(content))
	return jsonvalue.FromObject(o)
}

func userToolResultsMessage(blocks []jsonvalue.Value) jsonvalue.Value {
	o := jsonvalue.NewObject()
	o.Set("role", jsonvalue.String("user"))
	o.Set("content", jsonvalue.Array(blocks))
	return jsonvalue.FromObject(o)
}

func toolResultBlock(toolUseID string, result jsonvalue.Value) jsonvalue.Value {
	o := jsonvalue.NewObject()
	o.Set("type", jsonvalue.String("tool_result"))
	o.Set("tool_use_id", jsonvalue.String(toolUseID))
	var content string
	if result.Kind() == jsonvalue.KindString {
		content = result.String()
	} else {
		content = string(jsonvalue.MustMarshal(result))
	}
	o.Set("content", jsonvalue.String(content))
	return jsonvalue.FromObject(o)
}

func extractToolUses(content []jsonvalue.Value) []functionCall {
	var calls []functionCall
	for _, block := range content {
		if block.Kind() != jsonvalue.KindObject {
			continue
		}
		typ, _ := block.Object().Get("type")
		if typ.String() != "tool_use" {
			continue
		}
		idVal, _ := block.Object().Get("id")
		nameVal, _ := block.Object().Get("name")
		inputVal, _ := block.Object().Get("input")
		calls = append(calls, functionCall{id: idVal.String(), name: nameVal.String(), args: inputVal})
	}
	return calls
}

func concatTextBlocks(content []jsonvalue.Value) string {
	var out string
	for _, block := range content {
		if block.Kind() != jsonvalue.KindObject {
			continue
		}
		typ, _ := block.Object().Get("type")
		if typ.String() != "text" {
			continue
		}
		if textVal, ok := block.Object().Get("text"); ok {
			out += textVal.AsString()
		}
	}
	return out
}

func toAnthropicTools(defs []model.ToolDefinition) []anthropicTool {
	tools := make([]anthropicTool, 0, len(defs))
	for _, d := range defs {
		var schema jsonvalue.Value
		if d.InputSchema != nil {
			schema = *d.InputSchema
		}
		tools = append(tools, anthropicTool{Name: d.Name, InputSchema: schema, Description: d.Description})
	}
	return tools
}

func convertAnthropicUsage(u *anthropicUsage) *model.Usage {
	if u == nil {
		return nil
	}
	return &model.Usage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.InputTokens + u.OutputTokens,
	}
}

func decodeAnthropicResponse(v jsonvalue.Value) anthropicResponse {
	var resp anthropicResponse
	if v.Kind() != jsonvalue.KindObject {
		return resp
	}
	if cv, ok := v.Object().Get("content"); ok && cv.Kind() == jsonvalue.KindArray {
		resp.Content = cv.Array()
	}
	if uv, ok := v.Object().Get("usage"); ok && uv.Kind() == jsonvalue.KindObject {
		u := &anthropicUsage{}
		if iv, ok := uv.Object().Get("input_tokens"); ok {
			if f, ok := iv.Float64(); ok {
				u.InputTokens = int64(f)
			}
		}
		if ov, ok := uv.Object().Get("output_tokens"); ok {
			if f, ok := ov.Float64(); ok {
				u.OutputTokens = int64(f)
			}
		}
		resp.Usage = u
	}
	return resp
}
