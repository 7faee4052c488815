// Package diff classifies status transitions between two RunReports,
// grounded on the reference comparison tool's load-two-sides,
// structural-walk, classify shape — generalized from a field-level
// structural diff of two JSON documents to a status-level diff of two
// case-indexed reports.
package diff

import (
	"time"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/model"
)

// timeNow is the sole wall-clock seam, overridable by tests.
var timeNow = time.Now

// Transition records one case's status moving from baseline to candidate.
type Transition struct {
	HashedCaseID    string          `json:"hashedCaseId"`
	BaselineStatus  model.CaseStatus `json:"baselineStatus"`
	CandidateStatus model.CaseStatus `json:"candidateStatus"`
}

// Report is the JSON artifact produced by one diff.
type Report struct {
	BaselineSuiteID  string       `json:"baselineSuiteId"`
	CandidateSuiteID string       `json:"candidateSuiteId"`
	ComparedAt       string       `json:"comparedAt"`
	TotalCompared    int          `json:"totalCompared"`
	Regressions      []Transition `json:"regressions"`
	Improvements     []Transition `json:"improvements"`
	Unchanged        int          `json:"unchanged"`
}

// rank orders statuses so a diff can tell regression from improvement:
// pass is best, error is worst.
func rank(status model.CaseStatus) int {
	switch status {
	case model.StatusPass:
		return 2
	case model.StatusFail:
		return 1
	default:
		return 0
	}
}

// indexByHashedCaseID builds a hashedCaseId -> CaseResult map; on duplicate
// keys the last entry in iteration order wins, per spec.
func indexByHashedCaseID(cases []model.CaseResult) map[string]model.CaseResult {
	out := make(map[string]model.CaseResult, len(cases))
	for _, c := range cases {
		out[c.HashedCaseID] = c
	}
	return out
}

// Diff indexes both reports by hashedCaseId and classifies every id present
// on both sides as unchanged, a regression, or an improvement. Ids present
// on only one side are ignored. totalCompared is the size of the union of
// ids across both sides, not just the intersection that was classified.
func Diff(baseline, candidate model.RunReport) Report {
	baseIndex := indexByHashedCaseID(baseline.Cases)
	candIndex := indexByHashedCaseID(candidate.Cases)

	union := make(map[string]struct{}, len(baseIndex)+len(candIndex))
	for id := range baseIndex {
		union[id] = struct{}{}
	}
	for id := range candIndex {
		union[id] = struct{}{}
	}

	report := Report{
		BaselineSuiteID:  baseline.SuiteID,
		CandidateSuiteID: candidate.SuiteID,
		ComparedAt:       timeNow().UTC().Format(time.RFC3339),
		TotalCompared:    len(union),
	}

	// Classify only the last occurrence of each baseline id, matching the
	// last-wins indexing above.
	lastBaseIdx := make(map[string]int, len(baseIndex))
	for i, c := range baseline.Cases {
		lastBaseIdx[c.HashedCaseID] = i
	}

	for i, baseCase := range baseline.Cases {
		if lastBaseIdx[baseCase.HashedCaseID] != i {
			continue
		}
		candCase, ok := candIndex[baseCase.HashedCaseID]
		if !ok {
			continue
		}
		if baseCase.Status == candCase.Status {
			report.Unchanged++
			continue
		}
		transition := Transition{
			HashedCaseID:    baseCase.HashedCaseID,
			BaselineStatus:  baseCase.Status,
			CandidateStatus: candCase.Status,
		}
		if rank(baseCase.Status) > rank(candCase.Status) {
			report.Regressions = append(report.Regressions, transition)
		} else {
			report.Improvements = append(report.Improvements, transition)
		}
	}

	return report
}
