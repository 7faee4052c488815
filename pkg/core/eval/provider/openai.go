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

// OpenAIAdapter drives the first backend's tool-calling loop: a running
// list of "input items", where each response's full output list (including
// non-functional items such as reasoning blocks) is appended back verbatim,
// in order.
type OpenAIAdapter struct {
	baseURL  string
	apiKeyFn func() (string, error)
	http     transport
}

// NewOpenAIAdapter constructs Adapter O. baseURL is the provider's API root
// (no trailing slash); if empty it defaults to the public OpenAI endpoint.
func NewOpenAIAdapter(baseURL string, http transport) *OpenAIAdapter {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIAdapter{
		baseURL: baseURL,
		http:    http,
		apiKeyFn: func() (string, error) {
			if v := os.Getenv("OPENAI_API_KEY"); v != "" {
				return v, nil
			}
			return "", fmt.Errorf("Missing OpenAI API key in OPENAI_API_KEY")
		},
	}
}

type openAITool struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Parameters  jsonvalue.Value `json:"parameters,omitempty"`
	Strict      bool            `json:"strict"`
	Description string          `json:"description,omitempty"`
}

type openAIRequest struct {
	Model             string            `json:"model"`
	Instructions      string            `json:"instructions,omitempty"`
	Input             []jsonvalue.Value `json:"input"`
	Tools             []openAITool      `json:"tools,omitempty"`
	ToolChoice        *jsonvalue.Value  `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool             `json:"parallel_tool_calls,omitempty"`
}

type openAIUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

type openAIResponse struct {
	Output     []jsonvalue.Value `json:"output"`
	OutputText string            `json:"output_text"`
	Usage      *openAIUsage      `json:"usage"`
}

// InvokeWithTools implements Provider for the first backend.
func (a *OpenAIAdapter) InvokeWithTools(ctx context.Context, req Request) (Response, error) {
	apiKey, err := a.apiKeyFn()
	if err != nil {
		return Response{}, err
	}

	conversation := []jsonvalue.Value{userMessageItem(inputAsString(req.Input))}
	tools := toOpenAITools(req.Tools)

	var trace []model.ToolCallTrace
	toolCallsUsed := 0

	for {
		reqBody := openAIRequest{
			Model:        req.Model,
			Instructions: req.Prompt,
			Input:        conversation,
			Tools:        tools,
		}
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return Response{}, fmt.Errorf("provider: failed to encode request: %w", err)
		}

		status, body, err := a.http.postJSON(ctx, a.baseURL+"/responses", map[string]string{
			"Authorization": "Bearer " + apiKey,
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

		resp := decodeOpenAIResponse(parsed)

		newCalls := extractFunctionCalls(resp.Output)
		if len(newCalls) == 0 {
			finalOutput := parseMaybeJSON(firstNonEmpty(resp.OutputText, concatOutputText(resp.Output)))
			return Response{
				FinalOutput: finalOutput,
				Usage:       convertOpenAIUsage(resp.Usage),
				ToolTrace:   trace,
			}, nil
		}

		if toolCallsUsed+len(newCalls) > req.MaxToolCalls {
			return Response{}, fmt.Errorf("exceeded maxToolCalls=%d", req.MaxToolCalls)
		}

		conversation = append(conversation, resp.Output...)

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
			conversation = append(conversation, functionCallOutputItem(call.id, result))
		}
		toolCallsUsed += len(newCalls)
	}
}

func userMessageItem(content string) jsonvalue.Value {
	o := jsonvalue.NewObject()
	o.Set("role", jsonvalue.String("user"))
	o.Set("content", jsonvalue.String(content))
	return jsonvalue.FromObject(o)
}

func functionCallOutputItem(callID string, result jsonvalue.Value) jsonvalue.Value {
	o := jsonvalue.NewObject()
	o.Set("type", jsonvalue.String("function_call_output"))
	o.Set("call_id", jsonvalue.String(callID))
	var output string
	if result.Kind() == jsonvalue.KindString {
		output = result.String()
	} else {
		output = string(jsonvalue.MustMarshal(result))
	}
	o.Set("output", jsonvalue.String(output))
	return jsonvalue.FromObject(o)
}

type functionCall struct {
	id   string
	name string
	args jsonvalue.Value
}

func extractFunctionCalls(items []jsonvalue.Value) []functionCall {
	var calls []functionCall
	for _, item := range items {
		if item.Kind() != jsonvalue.KindObject {
			continue
		}
		typ, _ := item.Object().Get("type")
		if typ.String() != "function_call" {
			continue
		}
		idVal, _ := item.Object().Get("call_id")
		nameVal, _ := item.Object().Get("name")
		argsVal, hasArgs := item.Object().Get("arguments")
		args := jsonvalue.Null()
		if hasArgs {
			if argsVal.Kind() == jsonvalue.KindString {
				if parsed, err := jsonvalue.Parse([]byte(argsVal.String())); err == nil {
					args = parsed
				}
			} else {
				args = argsVal
			}
		}
		calls = append(calls, functionCall{id: idVal.String(), name: nameVal.String(), args: args})
	}
	return calls
}

func concatOutputText(items []jsonvalue.Value) string {
	var out string
	for _, item := range items {
		if item.Kind() != jsonvalue.KindObject {
			continue
		}
		if textVal, ok := item.Object().Get("text"); ok && textVal.Kind() == jsonvalue.KindString {
			out += textVal.String()
		}
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func toOpenAITools(defs []model.ToolDefinition) []openAITool {
	tools := make([]openAITool, 0, len(defs))
	for _, d := range defs {
		strict := true
		if d.Strict != nil {
			strict = *d.Strict
		}
		var params jsonvalue.Value
		if d.InputSchema != nil {
			params = *d.InputSchema
		}
		tools = append(tools, openAITool{
			Type:        "function",
			Name:        d.Name,
			Parameters:  params,
			Strict:      strict,
			Description: d.Description,
		})
	}
	return tools
}

func convertOpenAIUsage(u *openAIUsage) *model.Usage {
	if u == nil {
		return nil
	}
	return &model.Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens, TotalTokens: u.TotalTokens}
}

func decodeOpenAIResponse(v jsonvalue.Value) openAIResponse {
	var resp openAIResponse
	if v.Kind() != jsonvalue.KindObject {
		return resp
	}
	if outVal, ok := v.Object().Get("output"); ok && outVal.Kind() == jsonvalue.KindArray {
		resp.Output = outVal.Array()
	}
	if textVal, ok := v.Object().Get("output_text"); ok {
		resp.OutputText = textVal.AsString()
	}
	if usageVal, ok := v.Object().Get("usage"); ok && usageVal.Kind() == jsonvalue.KindObject {
		u := &openAIUsage{}
		if iv, ok := usageVal.Object().Get("input_tokens"); ok {
			if f, ok := iv.Float64(); ok {
				u.InputTokens = int64(f)
			}
		}
		if ov, ok := usageVal.Object().Get("output_tokens"); ok {
			if f, ok := ov.Float64(); ok {
				u.OutputTokens = int64(f)
			}
		}
		if tv, ok := usageVal.Object().Get("total_tokens"); ok {
			if f, ok := tv.Float64(); ok {
				u.TotalTokens = int64(f)
			}
		}
		resp.Usage = u
	}
	return resp
}
