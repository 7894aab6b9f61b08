package models

// Criterion names used by the assessor wire contract.
const (
	CriterionCompleteness = "completeness"
	CriterionAccuracy     = "accuracy"
	CriterionSPAG         = "spag"
)

// Criteria lists every criterion a complete assessment must cover.
var Criteria = []string{CriterionCompleteness, CriterionAccuracy, CriterionSPAG}

// CriterionAssessment holds the score and reasoning for a single criterion.
type CriterionAssessment struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// AssessmentSet maps criterion name to its assessment.
type AssessmentSet map[string]CriterionAssessment

// Complete reports whether every required criterion is present.
func (a AssessmentSet) Complete() bool {
	for _, criterion := range Criteria {
		if _, ok := a[criterion]; !ok {
			return false
		}
	}
	return true
}

const (
	// NotAttemptedScore is the sentinel score assigned to template-identical responses.
	NotAttemptedScore = 0
	// NotAttemptedReasoning is the fixed reasoning attached to synthesized results.
	NotAttemptedReasoning = "Not attempted."
)

// NotAttemptedAssessments synthesizes the sentinel result for an unattempted unit.
func NotAttemptedAssessments() AssessmentSet {
	set := make(AssessmentSet, len(Criteria))
	for _, criterion := range Criteria {
		set[criterion] = CriterionAssessment{Score: NotAttemptedScore, Reasoning: NotAttemptedReasoning}
	}
	return set
}
