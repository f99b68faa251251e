// internal/models/result.go
package models

import "time"

// DirectionalScore is one user's one-way evaluation of a candidate partner.
// PerQuestion holds the evaluator's satisfaction term per question, before
// importance weighting. Produced twice per dyad; the two directions are not
// required to be equal.
type DirectionalScore struct {
	Evaluator   UserID
	Partner     UserID
	PerQuestion map[string]float64
	Sections    map[string]float64
	Total       float64 // 0-100
}

// QuestionDiagnostic annotates one question with a diagnostic value.
type QuestionDiagnostic struct {
	QuestionID string  `json:"questionId"`
	Value      float64 `json:"value"`
}

// PairScore merges the two directional scores of a dyad into one symmetric
// score with a mutuality penalty. Exists only within one matching run.
type PairScore struct {
	UserA            UserID
	UserB            UserID
	AToB             float64
	BToA             float64
	Combined         float64
	MutualityPenalty float64
	LowestQuestions  []QuestionDiagnostic
	MostAsymmetric   []QuestionDiagnostic
}

// MatchAssignment is one matched pair in the solver output.
type MatchAssignment struct {
	UserA UserID  `json:"userA"`
	UserB UserID  `json:"userB"`
	Score float64 `json:"score"`
}

// DyadError records a scoring failure isolated to a single dyad.
type DyadError struct {
	UserA  UserID `json:"userA"`
	UserB  UserID `json:"userB"`
	Reason string `json:"reason"`
}

// RunDiagnostics is the per-run diagnostics object exposed to external
// collaborators.
type RunDiagnostics struct {
	RunID              string                   `json:"runId"`
	ConfigVersion      string                   `json:"configVersion"`
	PopulationSize     int                      `json:"populationSize"`
	DyadsConsidered    int                      `json:"dyadsConsidered"`
	DyadsPrefiltered   int                      `json:"dyadsPrefiltered"`
	PairsScored        int                      `json:"pairsScored"`
	PairsEligible      int                      `json:"pairsEligible"`
	UsersMatched       int                      `json:"usersMatched"`
	UsersUnmatched     int                      `json:"usersUnmatched"`
	MalformedResponses int                      `json:"malformedResponses"`
	DyadErrors         []DyadError              `json:"dyadErrors,omitempty"`
	ScoreDistribution  [10]int                  `json:"scoreDistribution"`
	PhaseDurations     map[string]time.Duration `json:"phaseDurations"`
	StartedAt          time.Time                `json:"startedAt"`
	CompletedAt        time.Time                `json:"completedAt"`
}

// RunResult is the full output of one pipeline execution.
type RunResult struct {
	Assignments []MatchAssignment `json:"assignments"`
	Unmatched   []UserID          `json:"unmatched"`
	Diagnostics RunDiagnostics    `json:"diagnostics"`
}
