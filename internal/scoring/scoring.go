// Package scoring turns model evaluations into acceptance, reward and
// anchoring decisions. Every function here is pure.
package scoring

import (
	"github.com/noah-isme/casechain-api/internal/ledger"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

const (
	// AcceptanceThreshold is the minimum total score for a valid synopsis.
	AcceptanceThreshold = 30
	// NFTSubScoreFloor is the minimum every sub-score needs for a reward token.
	NFTSubScoreFloor = 6
	// NFTBonus is added to the reputation award when a token was minted.
	NFTBonus = 5
)

// AcceptanceDecision is the outcome of assessing a synopsis.
type AcceptanceDecision struct {
	IsValid    bool
	TotalScore int
}

// AssessSynopsis applies the acceptance rule to a synopsis evaluation.
func AssessSynopsis(evaluation ai.SynopsisEvaluation) AcceptanceDecision {
	return AcceptanceDecision{
		IsValid:    isValid(evaluation.SynopsisScores, evaluation.IsSafe),
		TotalScore: evaluation.Total(),
	}
}

// ComputeDisplayValidity re-derives validity from a stored record.
func ComputeDisplayValidity(record ledger.Record) bool {
	return isValid(record.Scores, record.IsSafe)
}

func isValid(scores ai.SynopsisScores, isSafe bool) bool {
	return scores.Total() >= AcceptanceThreshold && isSafe
}

// DecideReputationAward returns the points earned by an accepted submission.
// Callers must only invoke it for valid submissions.
func DecideReputationAward(totalScore int, nftMinted bool) int {
	var points int
	switch {
	case totalScore >= 30:
		points = 10
	case totalScore >= 25:
		points = 5
	case totalScore >= 20:
		points = 2
	default:
		points = 1
	}

	if nftMinted {
		points += NFTBonus
	}
	return points
}

// DecideNftEligibility reports whether a submission earns a reward token. The
// per-field floor is stricter than validity and must be checked separately.
func DecideNftEligibility(scores ai.SynopsisScores, isSafe bool) bool {
	for _, score := range []int{scores.Clarity, scores.Plausibility, scores.Consistency, scores.Relevance} {
		if score < NFTSubScoreFloor {
			return false
		}
	}
	return scores.Total() >= AcceptanceThreshold && isSafe
}
