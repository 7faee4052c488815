package assert

import (
	"regexp"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"
)

// opRegex matches String(actual ?? "") against the expected string pattern.
// An invalid pattern is a failed check carrying the compile error, not a
// panic.
func opRegex(actual jsonvalue.Value, expected jsonvalue.Value, expectedExists bool) (bool, error) {
	if !expectedExists || expected.Kind() != jsonvalue.KindString {
		return false, nil
	}
	re, err := regexp.Compile(expected.String())
	if err != nil {
		return false, err
	}
	return re.MatchString(actual.AsString()), nil
}
