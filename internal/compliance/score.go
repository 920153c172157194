// score.go implements the audit score calculator: pure counting over the
// flat checklist, safe to run on every edit.
package compliance

import "math"

// ScoreData holds the derived counts and percentage score for an audit.
// It is recomputed on every save and never independently mutable.
type ScoreData struct {
	TotalItems      int `json:"total_items"`
	YesCount        int `json:"yes_count"`
	NoCount         int `json:"no_count"`
	NACount         int `json:"na_count"`
	ApplicableItems int `json:"applicable_items"`
	Score           int `json:"score"`
}

// CalculateScore derives ScoreData from a checklist.
//
// NotApplicable items are excluded from the denominator so audits with
// differing applicability are not penalised. Unset responses are NOT
// excluded: an unanswered question lowers the score exactly as a "no"
// would, through the denominator. This is deliberate; a question nobody
// answered is treated as a failed question, not a skipped one.
//
// An empty or all-NA checklist scores 0; there is no division in either
// case.
func CalculateScore(items []ChecklistItem) ScoreData {
	s := ScoreData{TotalItems: len(items)}

	for _, it := range items {
		switch it.Response {
		case ResponseYes:
			s.YesCount++
		case ResponseNo:
			s.NoCount++
		case ResponseNA:
			s.NACount++
		}
	}

	s.ApplicableItems = s.TotalItems - s.NACount
	if s.ApplicableItems > 0 {
		s.Score = int(math.Round(float64(s.YesCount) / float64(s.ApplicableItems) * 100))
	}
	return s
}
