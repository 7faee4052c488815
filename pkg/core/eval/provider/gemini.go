package provider

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/model"
)

// geminiGenerateFunc is the seam Adapter G drives its round trips through:
// given an API key and one generateContent call's arguments, return the
// raw SDK response. The production implementation creates a genai.Client
// on each call and delegates to Models.GenerateContent; tests substitute a
// fake so the tool-calling loop can be driven without a live Gemini
// backend.
type geminiGenerateFunc func(ctx context.Context, apiKey, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiAdapter drives the third backend's tool-calling loop using the
// genai SDK, generalizing the reference Gemini client's role-conversion and
// system-instruction extraction from plain chat to function calling.
type GeminiAdapter struct {
	generate geminiGenerateFunc
	apiKeyFn func() (string, error)
}

// NewGeminiAdapter constructs Adapter G. apiKey fallback chain is
// GEMINI_API_KEY then GOOGLE_API_KEY, matching the documented convention.
func NewGeminiAdapter() *GeminiAdapter {
	return &GeminiAdapter{
		generate: defaultGeminiGenerate,
		apiKeyFn: func() (string, error) {
			if v := os.Getenv("GEMINI_API_KEY"); v != "" {
				return v, nil
			}
			if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
				return v, nil
			}
			return "", fmt.Errorf("Missing Gemini API key in GEMINI_API_KEY")
		},
	}
}

// defaultGeminiGenerate is the production geminiGenerateFunc: create a
// client for this call and issue one GenerateContent request.
func defaultGeminiGenerate(ctx context.Context, apiKey, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create Gemini client: %w", err)
	}
	return client.Models.GenerateContent(ctx, model, contents, config)
}

// InvokeWithTools implements Provider for the third backend.
func (a *GeminiAdapter) InvokeWithTools(ctx context.Context, req Request) (Response, error) {
	apiKey, err := a.apiKeyFn()
	if err != nil {
		return Response{}, err
	}

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{genai.NewPartFromText(inputAsString(req.Input))}},
	}

	var config *genai.GenerateContentConfig
	if len(req.Tools) > 0 || req.Prompt != "" {
		config = &genai.GenerateContentConfig{}
		if req.Prompt != "" {
			config.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(req.Prompt)}}
		}
		if len(req.Tools) > 0 {
			config.Tools = []*genai.Tool{{FunctionDeclarations: toGeminiFunctionDeclarations(req.Tools)}}
		}
	}

	var trace []model.ToolCallTrace
	toolCallsUsed := 0

	for {
		callCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
		response, err := a.generate(callCtx, apiKey, req.Model, contents, config)
		cancel()
		if err != nil {
			return Response{}, fmt.Errorf("Provider request failed: %w", err)
		}

		if len(response.Candidates) == 0 {
			return Response{FinalOutput: jsonvalue.String(""), ToolTrace: trace}, nil
		}
		parts := response.Candidates[0].Content.Parts

		newCalls := extractGeminiFunctionCalls(parts)
		if len(newCalls) == 0 {
			finalOutput := parseMaybeJSON(concatGeminiText(parts))
			return Response{FinalOutput: finalOutput, ToolTrace: trace}, nil
		}

		if toolCallsUsed+len(newCalls) > req.MaxToolCalls {
			return Response{}, fmt.Errorf("exceeded maxToolCalls=%d", req.MaxToolCalls)
		}

		for _, call := range newCalls {
			modelTurn := &genai.Content{
				Role: "model",
				Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{ID: call.id, Name: call.name, Args: toGenaiArgs(call.args)},
				}},
			}
			contents = append(contents, modelTurn)

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

			userTurn := &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     call.name,
						Response: map[string]any{"result": toGoValue(result)},
					},
				}},
			}
			contents = append(contents, userTurn)
		}
		toolCallsUsed += len(newCalls)
	}
}

func extractGeminiFunctionCalls(parts []*genai.Part) []functionCall {
	var calls []functionCall
	for _, p := range parts {
		if p == nil || p.FunctionCall == nil {
			continue
		}
		calls = append(calls, functionCall{
			id:   p.FunctionCall.ID,
			name: p.FunctionCall.Name,
			args: fromGenaiArgs(p.FunctionCall.Args),
		})
	}
	return calls
}

func concatGeminiText(parts []*genai.Part) string {
	var out string
	for _, p := range parts {
		if p != nil && p.Text != "" {
			out += p.Text
		}
	}
	return out
}

func toGeminiFunctionDeclarations(defs []model.ToolDefinition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, d := range defs {
		decl := &genai.FunctionDeclaration{Name: d.Name, Description: d.Description}
		if d.InputSchema != nil {
			decl.Parameters = toGeminiSchema(*d.InputSchema)
		}
		decls = append(decls, decl)
	}
	return decls
}

// toGeminiSchema converts a restricted JSON-Schema subset (object/array/
// string/number/integer/boolean, properties, required, items) into a
// genai.Schema. Unsupported keywords are dropped rather than rejected.
func toGeminiSchema(v jsonvalue.Value) *genai.Schema {
	if v.Kind() != jsonvalue.KindObject || v.Object() == nil {
		return nil
	}
	obj := v.Object()
	schema := &genai.Schema{}

	if typVal, ok := obj.Get("type"); ok {
		schema.Type = geminiTypeFromJSONSchemaType(typVal.String())
	}
	if descVal, ok := obj.Get("description"); ok {
		schema.Description = descVal.String()
	}
	if propsVal, ok := obj.Get("properties"); ok && propsVal.Kind() == jsonvalue.KindObject {
		props := make(map[string]*genai.Schema)
		for _, key := range propsVal.Object().Keys() {
			propVal, _ := propsVal.Object().Get(key)
			props[key] = toGeminiSchema(propVal)
		}
		schema.Properties = props
	}
	if reqVal, ok := obj.Get("required"); ok && reqVal.Kind() == jsonvalue.KindArray {
		for _, r := range reqVal.Array() {
			schema.Required = append(schema.Required, r.String())
		}
	}
	if itemsVal, ok := obj.Get("items"); ok {
		schema.Items = toGeminiSchema(itemsVal)
	}
	return schema
}

func geminiTypeFromJSONSchemaType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}

func toGenaiArgs(v jsonvalue.Value) map[string]any {
	m, _ := toGoValue(v).(map[string]any)
	return m
}

func fromGenaiArgs(m map[string]any) jsonvalue.Value {
	return fromGoValue(m)
}

func toGoValue(v jsonvalue.Value) any {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return nil
	case jsonvalue.KindBool:
		return v.Bool()
	case jsonvalue.KindNumber:
		f, _ := v.Float64()
		return f
	case jsonvalue.KindString:
		return v.String()
	case jsonvalue.KindArray:
		out := make([]any, len(v.Array()))
		for i, item := range v.Array() {
			out[i] = toGoValue(item)
		}
		return out
	case jsonvalue.KindObject:
		out := make(map[string]any)
		if v.Object() != nil {
			for _, key := range v.Object().Keys() {
				item, _ := v.Object().Get(key)
				out[key] = toGoValue(item)
			}
		}
		return out
	default:
		return nil
	}
}

func fromGoValue(v any) jsonvalue.Value {
	switch t := v.(type) {
	case nil:
		return jsonvalue.Null()
	case bool:
		return jsonvalue.Bool(t)
	case float64:
		return jsonvalue.NumberFromFloat(t)
	case string:
		return jsonvalue.String(t)
	case []any:
		items := make([]jsonvalue.Value, len(t))
		for i, item := range t {
			items[i] = fromGoValue(item)
		}
		return jsonvalue.Array(items)
	case map[string]any:
		obj := jsonvalue.NewObject()
		for k, item := range t {
			obj.Set(k, fromGoValue(item))
		}
		return jsonvalue.FromObject(obj)
	default:
		return jsonvalue.Null()
	}
}
