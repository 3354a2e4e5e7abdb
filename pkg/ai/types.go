package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEvaluation marks a failed or unparseable evaluation from the upstream model.
var ErrEvaluation = errors.New("evaluation failed")

// ErrUnknownCategory indicates the requested analysis category is not supported.
var ErrUnknownCategory = errors.New("unknown analysis category")

// Category selects which prompt and field set an evaluation uses.
type Category string

// Supported analysis categories.
const (
	CategorySynopsis   Category = "synopsis"
	CategoryLogic      Category = "logic"
	CategoryHypothesis Category = "hypothesis"
	CategoryBias       Category = "bias"
)

// ParseCategory normalises a raw category name.
func ParseCategory(raw string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch category {
	case CategorySynopsis, CategoryLogic, CategoryHypothesis, CategoryBias:
		return category, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
}

// IsAdvisory reports whether the category only produces informational feedback.
func (c Category) IsAdvisory() bool {
	return c == CategoryLogic || c == CategoryHypothesis || c == CategoryBias
}

// Rank is the model's medal for a synopsis.
type Rank string

// Known ranks. Anything else the model returns collapses to RankNone.
const (
	RankGold   Rank = "Gold"
	RankSilver Rank = "Silver"
	RankBronze Rank = "Bronze"
	RankNone   Rank = "None"
)

// ParseRank maps free text onto a known rank.
func ParseRank(raw string) Rank {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gold":
		return RankGold
	case "silver":
		return RankSilver
	case "bronze":
		return RankBronze
	default:
		return RankNone
	}
}

// EvaluationInput carries the texts sent to the model.
type EvaluationInput struct {
	CaseText string
	UserText string
	Category Category
}

// SynopsisScores holds the four synopsis sub-scores, each in [0,10].
type SynopsisScores struct {
	Clarity      int `json:"clarity"`
	Plausibility int `json:"plausibility"`
	Consistency  int `json:"consistency"`
	Relevance    int `json:"relevance"`
}

// Total returns the sum of the four sub-scores.
func (s SynopsisScores) Total() int {
	return s.Clarity + s.Plausibility + s.Consistency + s.Relevance
}

// SynopsisEvaluation is the gated evaluation of a theory.
type SynopsisEvaluation struct {
	SynopsisScores
	IsSafe  bool   `json:"is_safe"`
	Flag    string `json:"flag"`
	Summary string `json:"summary"`
	Rank    Rank   `json:"rank"`
}

// LogicEvaluation checks the timeline and reasoning of a theory.
type LogicEvaluation struct {
	Inconsistencies       []string `json:"inconsistencies"`
	MissingLinks          []string `json:"missing_links"`
	TimelineValidity      int      `json:"timeline_validity"`
	ConflictSummary       string   `json:"conflict_summary"`
	CorrectionSuggestions string   `json:"correction_suggestions"`
}

// HypothesisEvaluation critiques a hypothesis.
type HypothesisEvaluation struct {
	PlausibilityAssessment      int      `json:"plausibility_assessment"`
	Counterpoints               []string `json:"counterpoints"`
	EvidenceMatch               string   `json:"evidence_match"`
	SuggestFurtherInvestigation string   `json:"suggest_further_investigation"`
}

// BiasEvaluation lists biases found in a theory.
type BiasEvaluation struct {
	DetectedBiases    []string `json:"detected_biases"`
	ObjectivityScore  int      `json:"objectivity_score"`
	ChallengePoints   []string `json:"challenge_points"`
	BiasImpactSummary string   `json:"bias_impact_summary"`
}

// Evaluation is a tagged variant: exactly the field matching Category is set.
type Evaluation struct {
	Category   Category
	Synopsis   *SynopsisEvaluation
	Logic      *LogicEvaluation
	Hypothesis *HypothesisEvaluation
	Bias       *BiasEvaluation
}

// Evaluator describes a model capable of scoring case theories.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (Evaluation, error)
}
