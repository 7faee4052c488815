package orchestrator

import "github.com/blackcoderx/promptmgr/pkg/core/eval/jsonvalue"

// redact is the orchestrator's call-site for the privacy.redactInReports
// pipeline step (spec §4.6.1 point 3). The recursive walk and pattern
// table live in jsonvalue.Redact; this delegates rather than duplicating
// the traversal, since a CaseResult's Output is already a jsonvalue.Value.
func redact(v jsonvalue.Value) jsonvalue.Value {
	return jsonvalue.Redact(v)
}
