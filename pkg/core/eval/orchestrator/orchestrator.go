// Package orchestrator runs a suite's dataset through a provider adapter,
// scores each case against its schema and assertion spec, and assembles
// the resulting RunReport.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/assert"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/hashing"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/model"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/provider"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/sandbox"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/schema"
)

// timeNow is the sole wall-clock seam, overridable by tests.
var timeNow = time.Now

// Privacy controls the redaction and compliance-warning behavior for one
// run.
type Privacy struct {
	AllowRawProductionFixtures bool
	RedactInReports            bool
}

// Diag is the shared injectable, nil-safe diagnostic sink used across the
// eval core.
type Diag func(format string, args ...any)

// ToolRunner is the subset of *sandbox.Runner the orchestrator depends on.
// Declared as an interface so tests can supply a fake instead of spawning
// real child processes.
type ToolRunner interface {
	Execute(ctx context.Context, toolName, toolsModulePath string, args jsonvalue.Value, execCtx model.ToolExecutionContext) (jsonvalue.Value, error)
}

// RunConfig is the plain struct literal contract for one orchestrator run.
// Configuration and suite resolution are an external collaborator's
// responsibility; the orchestrator never reads files itself.
type RunConfig struct {
	SuiteID     string
	Provider    model.ProviderID
	Model       string
	Concurrency int

	Suite        model.Suite
	Prompt       model.PromptRecord
	Dataset      []model.EvalCase
	Schema       jsonvalue.Value
	Spec         model.AssertionSpec
	Tools        []model.ToolDefinition
	MaxToolCalls int
	Privacy      Privacy

	ToolRunner   ToolRunner
	ProviderImpl provider.Provider // optional override, bypasses the registry

	Registry *provider.Registry // defaults to provider.GlobalRegistry()
	Diag     Diag
}

// RunSuite resolves the model, looks the provider up in the registry
// (cfg.ProviderImpl bypasses the lookup), runs the bounded concurrency pool
// over the dataset, and synthesizes the RunReport. It does not register any
// adapters itself: if the registry has no adapter for cfg.Provider, the run
// fails before any case executes.
func RunSuite(ctx context.Context, cfg RunConfig) (model.RunReport, error) {
	startedAt := timeNow()

	diag := cfg.Diag
	if diag == nil {
		diag = func(string, ...any) {}
	}

	resolvedModel := cfg.Model
	if resolvedModel == "" {
		resolvedModel = cfg.Suite.ModelByProvider[cfg.Provider]
	}
	if resolvedModel == "" {
		return model.RunReport{}, fmt.Errorf("orchestrator: no model resolved for provider %q", cfg.Provider)
	}

	providerImpl := cfg.ProviderImpl
	if providerImpl == nil {
		reg := cfg.Registry
		if reg == nil {
			reg = provider.GlobalRegistry()
		}
		impl, err := reg.Lookup(cfg.Provider)
		if err != nil {
			return model.RunReport{}, fmt.Errorf("orchestrator: %w", err)
		}
		providerImpl = impl
	}

	if cfg.ToolRunner == nil {
		return model.RunReport{}, fmt.Errorf("orchestrator: no tool runner configured")
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	caseResults := Run(len(cfg.Dataset), concurrency, func(idx int) model.CaseResult {
		return runCase(ctx, cfg, providerImpl, resolvedModel, cfg.Dataset[idx])
	})

	summary := model.Summary{Total: len(caseResults)}
	for _, c := range caseResults {
		switch c.Status {
		case model.StatusPass:
			summary.Pass++
		case model.StatusFail:
			summary.Fail++
		case model.StatusError:
			summary.Error++
		}
	}

	endedAt := timeNow()
	summary.DurationMs = endedAt.Sub(startedAt).Milliseconds()

	var warnings []string
	if cfg.Privacy.AllowRawProductionFixtures {
		warnings = append(warnings, "privacy.allowRawProductionFixtures is enabled: raw production fixtures are in use; compliance with data-handling policy is the caller's responsibility")
		diag("orchestrator: privacy.allowRawProductionFixtures enabled for suite %q", cfg.SuiteID)
	}
	if cfg.Privacy.RedactInReports {
		warnings = append(warnings, "privacy.redactInReports is enabled: report output payloads are redacted by default")
	}

	return model.RunReport{
		Version:   model.RunReportVersion,
		SuiteID:   cfg.SuiteID,
		Provider:  cfg.Provider,
		Model:     resolvedModel,
		StartedAt: startedAt.UTC().Format(time.RFC3339),
		EndedAt:   endedAt.UTC().Format(time.RFC3339),
		Summary:   summary,
		Warnings:  warnings,
		Prompt:    model.PromptRef{PromptID: cfg.Prompt.PromptID, Version: cfg.Prompt.Version},
		Cases:     caseResults,
	}, nil
}

// runCase implements the per-case pipeline of spec §4.6.1.
func runCase(ctx context.Context, cfg RunConfig, impl provider.Provider, resolvedModel string, evalCase model.EvalCase) model.CaseResult {
	caseStart := timeNow()
	hashedCaseID := hashing.HashCaseID(evalCase.CaseID)

	execCtx := model.ToolExecutionContext{
		SuiteID:      cfg.SuiteID,
		HashedCaseID: hashedCaseID,
		RawCaseID:    evalCase.CaseID,
		Provider:     cfg.Provider,
		Model:        resolvedModel,
	}

	invokeTool := func(toolCtx context.Context, call provider.ToolCall) (jsonvalue.Value, error) {
		return cfg.ToolRunner.Execute(toolCtx, call.Name, cfg.Suite.ToolsModulePath, call.Args, execCtx)
	}

	maxToolCalls := cfg.MaxToolCalls
	if maxToolCalls <= 0 {
		maxToolCalls = 10
	}

	resp, err := impl.InvokeWithTools(ctx, provider.Request{
		Model:        resolvedModel,
		Prompt:       cfg.Prompt.Body,
		Input:        evalCase.Input,
		Tools:        cfg.Tools,
		MaxToolCalls: maxToolCalls,
		InvokeTool:   invokeTool,
	})

	result := model.CaseResult{
		HashedCaseID: hashedCaseID,
		RawCaseID:    model.RedactedRawCaseID,
		Provider:     cfg.Provider,
		Model:        resolvedModel,
		Tags:         evalCase.Tags,
	}

	if err != nil {
		result.Status = model.StatusError
		result.Errors = []string{errorCodeMessage(err)}
		result.Expected = evalCase.Expected
		result.ToolTrace = []model.ToolCallTrace{}
		caseEnd := timeNow()
		result.LatencyMs = caseEnd.Sub(caseStart).Milliseconds()
		return result
	}

	schemaResult, schemaErr := schema.Validate(cfg.Schema, resp.FinalOutput)
	if schemaErr != nil {
		schemaResult = schema.Result{Valid: false, Errors: []string{schemaErr.Error()}}
	}
	assertionResult := assert.Evaluate(resp.FinalOutput, evalCase.Expected, cfg.Spec)

	var errs []string
	errs = append(errs, schemaResult.Errors...)
	for _, check := range assertionResult.Checks {
		if !check.Passed {
			errs = append(errs, fmt.Sprintf("%s:%s:%s", check.Field, check.Op, check.Message))
		}
	}
	if len(assertionResult.MissingKeys) > 0 {
		errs = append(errs, fmt.Sprintf("missing keys: %v", assertionResult.MissingKeys))
	}
	if len(assertionResult.UnexpectedKeys) > 0 {
		errs = append(errs, fmt.Sprintf("unexpected keys: %v", assertionResult.UnexpectedKeys))
	}

	passed := schemaResult.Valid && assertionResult.Passed

	redactedOutput := resp.FinalOutput
	if cfg.Privacy.RedactInReports {
		redactedOutput = redact(resp.FinalOutput)
	}

	result.SchemaValid = schemaResult.Valid
	result.AssertionsPassed = assertionResult.Passed
	result.AssertionResult = assertionResult
	result.Errors = errs
	result.Output = resp.FinalOutput
	result.RedactedOutput = redactedOutput
	result.Expected = evalCase.Expected
	result.Usage = resp.Usage
	result.ToolTrace = resp.ToolTrace
	if result.ToolTrace == nil {
		result.ToolTrace = []model.ToolCallTrace{}
	}
	if passed {
		result.Status = model.StatusPass
	} else {
		result.Status = model.StatusFail
	}

	caseEnd := timeNow()
	result.LatencyMs = caseEnd.Sub(caseStart).Milliseconds()
	return result
}

// errorCodeMessage renders the "<errorCode>:<message>" form spec §4.6.1
// point 4 requires, falling back to "CASE_ERROR" for errors that are not a
// *sandbox.RunnerError.
func errorCodeMessage(err error) string {
	if runnerErr, ok := err.(*sandbox.RunnerError); ok {
		return fmt.Sprintf("%s:%s", runnerErr.Code, runnerErr.Message)
	}
	return fmt.Sprintf("CASE_ERROR:%s", err.Error())
}
