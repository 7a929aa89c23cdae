package health

import (
	"time"

	"github.com/joescharf/itlog/internal/models"
)

// HealthScore represents how consistent the issue stores are with each other.
type HealthScore struct {
	Total            int
	CountAgreement   int // 0-40
	ContentAgreement int // 0-30
	RecordValidity   int // 0-30

	CSVCount   int
	JSONCount  int
	Mismatches []int // 1-based positions where CSV and JSON entries differ
	Invalid    []int // 1-based CSV positions that would fail validation today
}

// InSync reports whether both stores hold exactly the same issues.
func (h *HealthScore) InSync() bool {
	return h.CSVCount == h.JSONCount && len(h.Mismatches) == 0
}

// Scorer computes health scores for the issue stores.
type Scorer struct{}

// NewScorer returns a new health Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score compares the CSV history with the JSON copy. CSV is the reference
// because queries are answered from it.
func (s *Scorer) Score(csvIssues, jsonIssues []*models.Issue) *HealthScore {
	h := &HealthScore{
		CSVCount:  len(csvIssues),
		JSONCount: len(jsonIssues),
	}

	// Count agreement (40 pts) - identical lengths = full points
	h.CountAgreement = scoreCounts(len(csvIssues), len(jsonIssues), 40)

	// Content agreement (30 pts) - position by position equality
	h.Mismatches = mismatches(csvIssues, jsonIssues)
	longest := max(len(csvIssues), len(jsonIssues))
	if longest == 0 {
		h.ContentAgreement = 30
	} else {
		h.ContentAgreement = int(float64(30) * float64(longest-len(h.Mismatches)) / float64(longest))
	}

	// Record validity (30 pts) - every row should still pass validation
	h.Invalid = invalidRecords(csvIssues)
	if len(csvIssues) == 0 {
		h.RecordValidity = 30
	} else {
		h.RecordValidity = int(float64(30) * float64(len(csvIssues)-len(h.Invalid)) / float64(len(csvIssues)))
	}

	h.Total = h.CountAgreement + h.ContentAgreement + h.RecordValidity
	return h
}

// scoreCounts scales maxPoints by how close the two counts are.
func scoreCounts(a, b, maxPoints int) int {
	if a == b {
		return maxPoints
	}
	lo, hi := min(a, b), max(a, b)
	return int(float64(maxPoints) * 0.5 * float64(lo) / float64(hi))
}

// mismatches lists positions where the stores disagree, including positions
// present in only one of them.
func mismatches(a, b []*models.Issue) []int {
	var out []int
	for i := 0; i < max(len(a), len(b)); i++ {
		if i >= len(a) || i >= len(b) || *a[i] != *b[i] {
			out = append(out, i+1)
		}
	}
	return out
}

// invalidRecords lists positions of issues with a bad timestamp, type, or description.
func invalidRecords(issues []*models.Issue) []int {
	var out []int
	for i, issue := range issues {
		if _, err := time.ParseInLocation(models.DatetimeLayout, issue.Datetime, time.Local); err != nil {
			out = append(out, i+1)
			continue
		}
		if err := models.Validate(models.NormalizeType(string(issue.Type)), issue.Description); err != nil {
			out = append(out, i+1)
		}
	}
	return out
}
