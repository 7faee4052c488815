// Package model holds the data types shared across the eval core: cases,
// suites, prompt records, assertion specs, and the report shapes the
// orchestrator and diff engine produce and consume.
package model

import "github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"

// ProviderID identifies one of the three supported backends. It is a closed
// set, not an open string namespace: unknown values are a configuration-time
// error at registry lookup.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGemini    ProviderID = "gemini"
)

// CaseStatus is the terminal verdict of one case.
type CaseStatus string

const (
	StatusPass  CaseStatus = "pass"
	StatusFail  CaseStatus = "fail"
	StatusError CaseStatus = "error"
)

// ToolCallStatus is the per-call outcome recorded in a ToolCallTrace.
type ToolCallStatus string

const (
	ToolCallOK    ToolCallStatus = "ok"
	ToolCallError ToolCallStatus = "error"
)

// AssertionOperator enumerates the supported field-matcher comparisons.
type AssertionOperator string

const (
	OpEquals       AssertionOperator = "equals"
	OpOneOf        AssertionOperator = "oneOf"
	OpContains     AssertionOperator = "contains"
	OpRegex        AssertionOperator = "regex"
	OpNumericRange AssertionOperator = "numericRange"
	OpExists       AssertionOperator = "exists"
	OpAbsent       AssertionOperator = "absent"
)

// EvalCase is one input/expected pair drawn from a suite's dataset. It is
// immutable for the lifetime of one orchestrator run.
type EvalCase struct {
	CaseID   string          `json:"caseId"`
	Input    jsonvalue.Value `json:"input"`
	Expected jsonvalue.Value `json:"expected"`
	Tags     []string        `json:"tags"`
}

// Suite describes a bundle of prompt, dataset, schema, assertions, and
// tools module. The core consumes a Suite already resolved by an external
// loader; it never reads suite configuration files itself.
type Suite struct {
	ID              string                    `json:"id"`
	PromptID        string                    `json:"promptId"`
	DatasetPath     string                    `json:"datasetPath"`
	SchemaPath      string                    `json:"schemaPath"`
	AssertionsPath  string                    `json:"assertionsPath"`
	ToolsModulePath string                    `json:"toolsModulePath"`
	ModelByProvider map[ProviderID]string     `json:"modelByProvider"`
}

// PromptRecord is the versioned system prompt body a suite points at.
type PromptRecord struct {
	PromptID string `json:"promptId"`
	Version  string `json:"version"`
	Body     string `json:"body"`
}

// ToolDefinition describes one callable tool surfaced to a provider.
type ToolDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	InputSchema *jsonvalue.Value `json:"inputSchema,omitempty"`
	Strict      *bool            `json:"strict,omitempty"`
}

// NumericRange bounds a numericRange field matcher. Either bound may be nil
// to leave that side unchecked.
type NumericRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// FieldMatcher is one comparison applied to a field resolved from a case's
// output. Exactly one of Value or ExpectedPath should be set; if neither is
// set, the matcher mirrors its own field path against the expected value.
type FieldMatcher struct {
	Op           AssertionOperator `json:"op"`
	Value        *jsonvalue.Value  `json:"value,omitempty"`
	Range        *NumericRange     `json:"range,omitempty"`
	ExpectedPath string            `json:"expectedPath,omitempty"`
}

// AssertionSpec describes the full field-level assertion contract for one
// suite's expected output shape.
type AssertionSpec struct {
	RequiredKeys        []string                  `json:"requiredKeys"`
	AllowAdditionalKeys bool                      `json:"allowAdditionalKeys"`
	VariableFields      []string                  `json:"variableFields"`
	FieldMatchers       map[string][]FieldMatcher `json:"fieldMatchers"`
}

// AssertionCheckResult is the record produced by evaluating one FieldMatcher.
type AssertionCheckResult struct {
	Field   string `json:"field"`
	Op      string `json:"op"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// AssertionResult is the outcome of evaluating an output against an
// AssertionSpec.
type AssertionResult struct {
	Passed         bool                   `json:"passed"`
	Checks         []AssertionCheckResult `json:"checks"`
	MissingKeys    []string               `json:"missingKeys"`
	UnexpectedKeys []string               `json:"unexpectedKeys"`
}

// ToolCallTrace records one tool invocation made during a case's provider
// loop, in the order the provider returned it.
type ToolCallTrace struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Args         jsonvalue.Value `json:"args"`
	Result       jsonvalue.Value `json:"result,omitempty"`
	LatencyMs    int64           `json:"latencyMs"`
	Status       ToolCallStatus  `json:"status"`
	ErrorCode    string          `json:"errorCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// Usage carries provider-reported token accounting, when available.
type Usage struct {
	InputTokens  int64 `json:"inputTokens,omitempty"`
	OutputTokens int64 `json:"outputTokens,omitempty"`
	TotalTokens  int64 `json:"totalTokens,omitempty"`
}

// CaseResult is the terminal record for one case within a RunReport.
type CaseResult struct {
	HashedCaseID      string          `json:"hashedCaseId"`
	RawCaseID         string          `json:"rawCaseId"`
	Status            CaseStatus      `json:"status"`
	SchemaValid       bool            `json:"schemaValid"`
	AssertionsPassed  bool            `json:"assertionsPassed"`
	AssertionResult   AssertionResult `json:"assertionResult"`
	Errors            []string        `json:"errors"`
	Output            jsonvalue.Value `json:"output"`
	RedactedOutput    jsonvalue.Value `json:"redactedOutput"`
	Expected          jsonvalue.Value `json:"expected"`
	LatencyMs         int64           `json:"latencyMs"`
	Provider          ProviderID      `json:"provider"`
	Model             string          `json:"model"`
	Usage             *Usage          `json:"usage,omitempty"`
	ToolTrace         []ToolCallTrace `json:"toolTrace"`
	Tags              []string        `json:"tags"`
}

// RedactedRawCaseID is the literal placeholder written in place of a case's
// raw identifier in any emitted report.
const RedactedRawCaseID = "[HASHED]"

// Summary aggregates per-status counts and total wall-clock duration for a
// RunReport.
type Summary struct {
	Total      int   `json:"total"`
	Pass       int   `json:"pass"`
	Fail       int   `json:"fail"`
	Error      int   `json:"error"`
	DurationMs int64 `json:"durationMs"`
}

// PromptRef identifies the prompt version a run was executed against.
type PromptRef struct {
	PromptID string `json:"promptId"`
	Version  string `json:"version"`
}

// RunReport is the JSON artifact produced by one orchestrator run.
type RunReport struct {
	Version   string       `json:"version"`
	SuiteID   string       `json:"suiteId"`
	Provider  ProviderID   `json:"provider"`
	Model     string       `json:"model"`
	StartedAt string       `json:"startedAt"`
	EndedAt   string       `json:"endedAt"`
	Summary   Summary      `json:"summary"`
	Warnings  []string     `json:"warnings"`
	Prompt    PromptRef    `json:"prompt"`
	Cases     []CaseResult `json:"cases"`
}

// RunReportVersion is the fixed report schema version.
const RunReportVersion = "1"

// ToolExecutionContext is the metadata handed to every tool invocation and
// threaded through to the worker subprocess.
type ToolExecutionContext struct {
	SuiteID      string     `json:"suiteId"`
	HashedCaseID string     `json:"hashedCaseId"`
	RawCaseID    string     `json:"rawCaseId"`
	Provider     ProviderID `json:"provider"`
	Model        string     `json:"model"`
}
