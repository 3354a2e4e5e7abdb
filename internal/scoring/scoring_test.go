package scoring

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/casechain-api/internal/ledger"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

func synopsis(clarity, plausibility, consistency, relevance int, safe bool) ai.SynopsisEvaluation {
	return ai.SynopsisEvaluation{
		SynopsisScores: ai.SynopsisScores{
			Clarity:      clarity,
			Plausibility: plausibility,
			Consistency:  consistency,
			Relevance:    relevance,
		},
		IsSafe:  safe,
		Summary: "summary",
		Rank:    ai.RankSilver,
	}
}

func TestAssessSynopsisBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		eval  ai.SynopsisEvaluation
		total int
		valid bool
	}{
		{"29 safe", synopsis(8, 7, 7, 7, true), 29, false},
		{"30 safe", synopsis(8, 8, 7, 7, true), 30, true},
		{"31 safe", synopsis(8, 8, 8, 7, true), 31, true},
		{"29 unsafe", synopsis(8, 7, 7, 7, false), 29, false},
		{"30 unsafe", synopsis(8, 8, 7, 7, false), 30, false},
		{"31 unsafe", synopsis(8, 8, 8, 7, false), 31, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := AssessSynopsis(tc.eval)
			require.Equal(t, tc.total, decision.TotalScore)
			require.Equal(t, tc.valid, decision.IsValid)
		})
	}
}

func TestDecideReputationAward(t *testing.T) {
	cases := []struct {
		total  int
		minted bool
		points int
	}{
		{30, false, 10},
		{29, false, 5},
		{25, false, 5},
		{24, false, 2},
		{20, false, 2},
		{19, false, 1},
		{0, false, 1},
		{30, true, 15},
		{40, true, 15},
	}

	for _, tc := range cases {
		require.Equal(t, tc.points, DecideReputationAward(tc.total, tc.minted), "total=%d minted=%v", tc.total, tc.minted)
	}
}

func TestDecideNftEligibility(t *testing.T) {
	cases := []struct {
		name     string
		scores   ai.SynopsisScores
		safe     bool
		eligible bool
	}{
		{"all at floor but sum below threshold", ai.SynopsisScores{Clarity: 6, Plausibility: 6, Consistency: 6, Relevance: 6}, true, false},
		{"per-field floor is not implied by the sum", ai.SynopsisScores{Clarity: 10, Plausibility: 10, Consistency: 10, Relevance: 0}, true, false},
		{"eligible", ai.SynopsisScores{Clarity: 8, Plausibility: 8, Consistency: 8, Relevance: 6}, true, true},
		{"unsafe", ai.SynopsisScores{Clarity: 10, Plausibility: 10, Consistency: 10, Relevance: 10}, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.eligible, DecideNftEligibility(tc.scores, tc.safe))
		})
	}
}

func TestComputeDisplayValidityMatchesAssessSynopsis(t *testing.T) {
	for _, eval := range []ai.SynopsisEvaluation{
		synopsis(8, 7, 7, 7, true),
		synopsis(8, 8, 7, 7, true),
		synopsis(10, 10, 10, 10, false),
		synopsis(0, 0, 0, 0, true),
	} {
		record := ledger.Record{Scores: eval.SynopsisScores, IsSafe: eval.IsSafe}
		require.Equal(t, AssessSynopsis(eval).IsValid, ComputeDisplayValidity(record))
	}
}

func TestComposeResultAnchored(t *testing.T) {
	submission := Submission{CaseID: 4, Author: "0xabc", Theory: "theory", Timestamp: 1700000000}
	outcome := LedgerOutcome{
		Receipt:      &ledger.AnchorReceipt{ID: 7, TxDigest: "0xtx"},
		MintTxDigest: "0xmint",
		NFTMinted:    true,
	}

	record := ComposeResult(submission, synopsis(9, 8, 7, 9, true), outcome, ReputationOutcome{Attempted: true, Points: 15})
	require.True(t, record.IsValid)
	require.Equal(t, 33, record.TotalScore)
	require.NotNil(t, record.SubmissionID)
	require.Equal(t, uint64(7), *record.SubmissionID)
	require.True(t, record.NFTMinted)
	require.True(t, record.ReputationUpdated)
	require.Equal(t, &BlockchainTx{SubmissionID: 7, TxDigest: "0xtx", MintTxDigest: "0xmint", Status: TxStatusSuccess, NFTMinted: true}, record.BlockchainTx)
	require.Equal(t, int64(1700000000), record.Timestamp)
}

func TestComposeResultDegradesOnLedgerFailure(t *testing.T) {
	submission := Submission{CaseID: 4, Author: "0xabc", Theory: "theory", Timestamp: 1700000000}
	outcome := LedgerOutcome{Err: errors.New("rpc unavailable"), NFTMinted: true}

	record := ComposeResult(submission, synopsis(9, 8, 7, 9, true), outcome, ReputationOutcome{Attempted: true})
	require.True(t, record.IsValid)
	require.Equal(t, 9, record.Clarity)
	require.Nil(t, record.SubmissionID)
	require.Nil(t, record.BlockchainTx)
	require.False(t, record.NFTMinted)
	require.False(t, record.ReputationUpdated)

	payload, err := json.Marshal(record)
	require.NoError(t, err)
	require.Contains(t, string(payload), `"submission_id":null`)
	require.Contains(t, string(payload), `"blockchain_tx":null`)
}

func TestComposeResultReputationFailure(t *testing.T) {
	outcome := LedgerOutcome{Receipt: &ledger.AnchorReceipt{ID: 0, TxDigest: "0xtx"}}

	record := ComposeResult(Submission{}, synopsis(9, 8, 7, 9, true), outcome, ReputationOutcome{Attempted: true, Err: errors.New("boom")})
	require.NotNil(t, record.SubmissionID)
	require.Equal(t, uint64(0), *record.SubmissionID)
	require.False(t, record.ReputationUpdated)
}

func TestViewRecordRecomputesValidity(t *testing.T) {
	view := ViewRecord(ledger.Record{
		ID:     2,
		Scores: ai.SynopsisScores{Clarity: 10, Plausibility: 10, Consistency: 10, Relevance: 10},
		IsSafe: false,
		Rank:   "gold",
	})
	require.False(t, view.IsValid)
	require.Equal(t, 40, view.TotalScore)
	require.Equal(t, ai.RankGold, view.Rank)
}

func TestAssessAdvisoryProjectsCategoryFields(t *testing.T) {
	result, err := AssessAdvisory("0xabc", ai.Evaluation{
		Category: ai.CategoryBias,
		Bias:     &ai.BiasEvaluation{ObjectivityScore: 6, DetectedBiases: []string{"anchoring"}},
	})
	require.NoError(t, err)

	payload, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Equal(t, "0xabc", decoded["author"])
	require.Equal(t, float64(6), decoded["objectivity_score"])
	require.Equal(t, []interface{}{}, decoded["challenge_points"])
	require.Equal(t, "", decoded["bias_impact_summary"])
	require.NotContains(t, decoded, "inconsistencies")
}

func TestAssessAdvisoryDefaultsMissingEvaluation(t *testing.T) {
	result, err := AssessAdvisory("0xabc", ai.Evaluation{Category: ai.CategoryLogic})
	require.NoError(t, err)
	require.Equal(t, []string{}, result.Inconsistencies)
	require.Equal(t, []string{}, result.MissingLinks)
	require.Equal(t, 0, result.TimelineValidity)

	_, err = AssessAdvisory("0xabc", ai.Evaluation{Category: ai.CategorySynopsis})
	require.True(t, errors.Is(err, ai.ErrUnknownCategory))
}
