package orchestrator

import (
	"context"
	"fmt"
	"testing"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/hashing"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/model"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/provider"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/sandbox"
)

// fakeProvider returns a fixed output (or error) per case, keyed by the
// input's "caseId" string so individual cases can be made to fail.
type fakeProvider struct {
	outputByInput map[string]jsonvalue.Value
	errByInput    map[string]error
}

func (f *fakeProvider) InvokeWithTools(ctx context.Context, req provider.Request) (provider.Response, error) {
	key := req.Input.String()
	if err, ok := f.errByInput[key]; ok {
		return provider.Response{}, err
	}
	return provider.Response{FinalOutput: f.outputByInput[key]}, nil
}

type noopToolRunner struct{}

func (noopToolRunner) Execute(ctx context.Context, toolName, toolsModulePath string, args jsonvalue.Value, execCtx model.ToolExecutionContext) (jsonvalue.Value, error) {
	return jsonvalue.Null(), nil
}

func mustParse(t *testing.T, raw string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return v
}

func openSchema() jsonvalue.Value {
	v, _ := jsonvalue.Parse([]byte(`{"type":"object"}`))
	return v
}

func TestRunSuiteAllCasesPass(t *testing.T) {
	dataset := []model.EvalCase{
		{CaseID: "case-1", Input: jsonvalue.String("case-1"), Expected: mustParse(t, `{"answer":"yes"}`)},
		{CaseID: "case-2", Input: jsonvalue.String("case-2"), Expected: mustParse(t, `{"answer":"no"}`)},
	}
	fp := &fakeProvider{outputByInput: map[string]jsonvalue.Value{
		"case-1": mustParse(t, `{"answer":"yes"}`),
		"case-2": mustParse(t, `{"answer":"no"}`),
	}}
	spec := model.AssertionSpec{
		RequiredKeys: []string{"answer"},
		FieldMatchers: map[string][]model.FieldMatcher{
			"answer": {{Op: model.OpEquals}},
		},
	}

	report, err := RunSuite(context.Background(), RunConfig{
		SuiteID:      "suite-1",
		Provider:     model.ProviderOpenAI,
		Model:        "gpt-test",
		Dataset:      dataset,
		Schema:       openSchema(),
		Spec:         spec,
		ToolRunner:   noopToolRunner{},
		ProviderImpl: fp,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Summary.Total != 2 || report.Summary.Pass != 2 || report.Summary.Fail != 0 || report.Summary.Error != 0 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	for _, c := range report.Cases {
		if c.Status != model.StatusPass {
			t.Fatalf("expected pass, got %+v", c)
		}
		if c.RawCaseID != model.RedactedRawCaseID {
			t.Fatalf("expected redacted raw case id, got %q", c.RawCaseID)
		}
	}
}

func TestRunSuiteStatusInvariant(t *testing.T) {
	dataset := []model.EvalCase{
		{CaseID: "ok", Input: jsonvalue.String("ok"), Expected: mustParse(t, `{"answer":"yes"}`)},
		{CaseID: "wrong", Input: jsonvalue.String("wrong"), Expected: mustParse(t, `{"answer":"yes"}`)},
		{CaseID: "boom", Input: jsonvalue.String("boom"), Expected: mustParse(t, `{"answer":"yes"}`)},
	}
	fp := &fakeProvider{
		outputByInput: map[string]jsonvalue.Value{
			"ok":    mustParse(t, `{"answer":"yes"}`),
			"wrong": mustParse(t, `{"answer":"no"}`),
		},
		errByInput: map[string]error{
			"boom": &sandbox.RunnerError{Code: "TOOL_TIMEOUT", Message: "deadline exceeded"},
		},
	}
	spec := model.AssertionSpec{
		RequiredKeys: []string{"answer"},
		FieldMatchers: map[string][]model.FieldMatcher{
			"answer": {{Op: model.OpEquals}},
		},
	}

	report, err := RunSuite(context.Background(), RunConfig{
		SuiteID:      "suite-2",
		Provider:     model.ProviderAnthropic,
		Model:        "claude-test",
		Dataset:      dataset,
		Schema:       openSchema(),
		Spec:         spec,
		ToolRunner:   noopToolRunner{},
		ProviderImpl: fp,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Summary.Total != 3 || report.Summary.Pass != 1 || report.Summary.Fail != 1 || report.Summary.Error != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	for _, c := range report.Cases {
		wantPass := c.SchemaValid && c.AssertionsPassed
		if c.Status == model.StatusPass && !wantPass {
			t.Fatalf("case marked pass but schemaValid/assertionsPassed disagree: %+v", c)
		}
		if c.Status == model.StatusError {
			if len(c.Errors) != 1 || c.Errors[0] != "TOOL_TIMEOUT:deadline exceeded" {
				t.Fatalf("unexpected error-case errors: %v", c.Errors)
			}
		}
	}
}

func TestRunSuitePreservesInputOrder(t *testing.T) {
	n := 30
	dataset := make([]model.EvalCase, n)
	outputs := make(map[string]jsonvalue.Value, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("case-%d", i)
		dataset[i] = model.EvalCase{CaseID: id, Input: jsonvalue.String(id), Expected: jsonvalue.Null()}
		outputs[id] = jsonvalue.Null()
	}
	fp := &fakeProvider{outputByInput: outputs}

	report, err := RunSuite(context.Background(), RunConfig{
		SuiteID:      "suite-3",
		Provider:     model.ProviderGemini,
		Model:        "gemini-test",
		Dataset:      dataset,
		Schema:       openSchema(),
		Concurrency:  8,
		ToolRunner:   noopToolRunner{},
		ProviderImpl: fp,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range report.Cases {
		wantID := hashing.HashCaseID(dataset[i].CaseID)
		if c.HashedCaseID != wantID {
			t.Fatalf("case %d: hashed id %q, want %q", i, c.HashedCaseID, wantID)
		}
	}
	if len(report.Cases) != n {
		t.Fatalf("expected %d cases, got %d", n, len(report.Cases))
	}
}

func TestRunSuiteMissingModelIsFatal(t *testing.T) {
	_, err := RunSuite(context.Background(), RunConfig{
		SuiteID:    "suite-4",
		Provider:   model.ProviderOpenAI,
		ToolRunner: noopToolRunner{},
	})
	if err == nil {
		t.Fatal("expected fatal error for unresolved model")
	}
}

func TestRunSuitePrivacyWarnings(t *testing.T) {
	fp := &fakeProvider{outputByInput: map[string]jsonvalue.Value{}}
	report, err := RunSuite(context.Background(), RunConfig{
		SuiteID:      "suite-5",
		Provider:     model.ProviderOpenAI,
		Model:        "gpt-test",
		Schema:       openSchema(),
		ToolRunner:   noopToolRunner{},
		ProviderImpl: fp,
		Privacy:      Privacy{AllowRawProductionFixtures: true, RedactInReports: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", report.Warnings)
	}
}
