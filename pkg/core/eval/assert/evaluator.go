// Package assert implements the field-level assertion pipeline: given a
// case's output, its expected value, and an AssertionSpec, it produces a
// deterministic, side-effect-free AssertionResult.
package assert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
	"github.com/blackcoderx/promptmgr/pkg/core/eval/model"
)

// Evaluate runs the full assertion algorithm against output, grounded on
// expected and spec. It never returns an error; unsupported operators are
// recorded as failed checks instead.
func Evaluate(output, expected jsonvalue.Value, spec model.AssertionSpec) model.AssertionResult {
	topLevel := topLevelKeys(output)

	missingKeys := missing(spec.RequiredKeys, topLevel)

	var unexpectedKeys []string
	if !spec.AllowAdditionalKeys {
		allowed := allowedKeySet(spec)
		unexpectedKeys = extraKeys(topLevel, allowed)
	}

	var checks []model.AssertionCheckResult
	allChecksPassed := true

	fields := sortedFieldNames(spec.FieldMatchers)
	for _, field := range fields {
		actual, actualExists := jsonvalue.GetByPath(output, field)
		for _, matcher := range spec.FieldMatchers[field] {
			expectedValue, expectedExists := resolveExpected(matcher, field, expected)
			check := runOperator(field, matcher, actual, actualExists, expectedValue, expectedExists)
			if !check.Passed {
				allChecksPassed = false
			}
			checks = append(checks, check)
		}
	}

	passed := len(missingKeys) == 0 && len(unexpectedKeys) == 0 && allChecksPassed

	return model.AssertionResult{
		Passed:         passed,
		Checks:         checks,
		MissingKeys:    missingKeys,
		UnexpectedKeys: unexpectedKeys,
	}
}

func topLevelKeys(output jsonvalue.Value) map[string]bool {
	keys := make(map[string]bool)
	if output.Kind() != jsonvalue.KindObject || output.Object() == nil {
		return keys
	}
	for _, k := range output.Object().Keys() {
		keys[k] = true
	}
	return keys
}

func missing(required []string, present map[string]bool) []string {
	var out []string
	for _, k := range required {
		if !present[k] {
			out = append(out, k)
		}
	}
	return out
}

func allowedKeySet(spec model.AssertionSpec) map[string]bool {
	allowed := make(map[string]bool)
	for _, k := range spec.RequiredKeys {
		allowed[k] = true
	}
	for _, k := range spec.VariableFields {
		allowed[k] = true
	}
	for k := range spec.FieldMatchers {
		allowed[k] = true
	}
	return allowed
}

func extraKeys(present map[string]bool, allowed map[string]bool) []string {
	var out []string
	for k := range present {
		if !allowed[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedFieldNames(matchers map[string][]model.FieldMatcher) []string {
	names := make([]string, 0, len(matchers))
	for k := range matchers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

const expectedPathPrefix = "$expected."

// resolveExpected implements the matcher's expected-value resolution order:
// explicit value, then an expectedPath referencing the expected document,
// then a mirror-path default against expected.
func resolveExpected(matcher model.FieldMatcher, field string, expected jsonvalue.Value) (jsonvalue.Value, bool) {
	if matcher.Value != nil {
		return *matcher.Value, true
	}
	if len(matcher.ExpectedPath) > len(expectedPathPrefix) && matcher.ExpectedPath[:len(expectedPathPrefix)] == expectedPathPrefix {
		remainder := matcher.ExpectedPath[len(expectedPathPrefix):]
		return jsonvalue.GetByPath(expected, remainder)
	}
	return jsonvalue.GetByPath(expected, field)
}

func runOperator(field string, matcher model.FieldMatcher, actual jsonvalue.Value, actualExists bool, expected jsonvalue.Value, expectedExists bool) model.AssertionCheckResult {
	check := model.AssertionCheckResult{Field: field, Op: string(matcher.Op)}

	switch matcher.Op {
	case model.OpEquals:
		check.Passed = actualExists && expectedExists && jsonvalue.Equal(actual, expected)
		if !check.Passed {
			check.Message = fmt.Sprintf("expected %s to equal %s", describe(actual, actualExists), describe(expected, expectedExists))
		}
	case model.OpOneOf:
		check.Passed = opOneOf(actual, actualExists, expected, expectedExists)
		if !check.Passed {
			check.Message = "value is not one of the allowed options"
		}
	case model.OpContains:
		check.Passed = opContains(actual, actualExists, expected, expectedExists)
		if !check.Passed {
			check.Message = "value does not contain expected content"
		}
	case model.OpRegex:
		ok, err := opRegex(actual, expected, expectedExists)
		check.Passed = ok
		if err != nil {
			check.Message = err.Error()
		} else if !ok {
			check.Message = "value does not match regex"
		}
	case model.OpNumericRange:
		check.Passed = opNumericRange(actual, actualExists, matcher.Range)
		if !check.Passed {
			check.Message = "value is not within the numeric range"
		}
	case model.OpExists:
		check.Passed = actualExists && !actual.IsNull()
		if !check.Passed {
			check.Message = "value does not exist"
		}
	case model.OpAbsent:
		check.Passed = !actualExists || actual.IsNull()
		if !check.Passed {
			check.Message = "value should be absent"
		}
	default:
		check.Passed = false
		check.Message = "unsupported assertion operator"
	}

	return check
}

func describe(v jsonvalue.Value, exists bool) string {
	if !exists {
		return "<missing>"
	}
	return v.AsString()
}

func opOneOf(actual jsonvalue.Value, actualExists bool, expected jsonvalue.Value, expectedExists bool) bool {
	if !actualExists || !expectedExists || expected.Kind() != jsonvalue.KindArray {
		return false
	}
	for _, item := range expected.Array() {
		if jsonvalue.Equal(item, actual) {
			return true
		}
	}
	return false
}

func opContains(actual jsonvalue.Value, actualExists bool, expected jsonvalue.Value, expectedExists bool) bool {
	if !actualExists || !expectedExists {
		return false
	}
	if actual.Kind() == jsonvalue.KindString && expected.Kind() == jsonvalue.KindString {
		return strings.Contains(actual.String(), expected.String())
	}
	if actual.Kind() == jsonvalue.KindArray {
		for _, item := range actual.Array() {
			if jsonvalue.Equal(item, expected) {
				return true
			}
		}
		return false
	}
	return false
}

func opNumericRange(actual jsonvalue.Value, actualExists bool, r *model.NumericRange) bool {
	if !actualExists {
		return false
	}
	f, ok := actual.Float64()
	if !ok {
		return false
	}
	if r == nil {
		return true
	}
	if r.Min != nil && f < *r.Min {
		return false
	}
	if r.Max != nil && f > *r.Max {
		return false
	}
	return true
}
