package scoring

import (
	"github.com/noah-isme/casechain-api/internal/ledger"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

// TxStatusSuccess is the only status reported for a completed anchor.
const TxStatusSuccess = "success"

// Submission identifies what was submitted and when it was evaluated.
type Submission struct {
	CaseID    uint64
	Author    string
	Theory    string
	Timestamp int64
}

// LedgerOutcome captures what happened when anchoring was attempted. A nil
// Receipt means anchoring was skipped or failed.
type LedgerOutcome struct {
	Receipt      *ledger.AnchorReceipt
	MintTxDigest string
	NFTMinted    bool
	Err          error
}

// Anchored reports whether the submission reached the ledger.
func (o LedgerOutcome) Anchored() bool {
	return o.Err == nil && o.Receipt != nil
}

// ReputationOutcome captures the reputation update attempt.
type ReputationOutcome struct {
	Attempted bool
	Points    int
	Err       error
}

// Updated reports whether the store accepted the update.
func (o ReputationOutcome) Updated() bool {
	return o.Attempted && o.Err == nil
}

// BlockchainTx summarises the anchoring transaction for clients.
type BlockchainTx struct {
	SubmissionID uint64 `json:"submission_id"`
	TxDigest     string `json:"tx_digest"`
	MintTxDigest string `json:"mint_tx_digest,omitempty"`
	Status       string `json:"status"`
	NFTMinted    bool   `json:"nft_minted"`
}

// SubmissionRecord is the composed result of a synopsis submission.
type SubmissionRecord struct {
	CaseID            uint64        `json:"case_id"`
	Author            string        `json:"author"`
	Clarity           int           `json:"clarity"`
	Plausibility      int           `json:"plausibility"`
	Consistency       int           `json:"consistency"`
	Relevance         int           `json:"relevance"`
	TotalScore        int           `json:"total_score"`
	IsSafe            bool          `json:"is_safe"`
	Flag              string        `json:"flag"`
	Theory            string        `json:"theory"`
	Summary           string        `json:"summary"`
	Rank              ai.Rank       `json:"rank"`
	IsValid           bool          `json:"is_valid"`
	SubmissionID      *uint64       `json:"submission_id"`
	BlockchainTx      *BlockchainTx `json:"blockchain_tx"`
	NFTMinted         bool          `json:"nft_minted"`
	Timestamp         int64         `json:"timestamp"`
	ReputationUpdated bool          `json:"reputation_updated"`
}

// ComposeResult merges the evaluation with the ledger and reputation outcomes.
// Anchoring failure nulls every ledger dependent field but keeps the scores.
func ComposeResult(submission Submission, evaluation ai.SynopsisEvaluation, ledgerOutcome LedgerOutcome, reputationOutcome ReputationOutcome) SubmissionRecord {
	decision := AssessSynopsis(evaluation)
	record := SubmissionRecord{
		CaseID:       submission.CaseID,
		Author:       submission.Author,
		Clarity:      evaluation.Clarity,
		Plausibility: evaluation.Plausibility,
		Consistency:  evaluation.Consistency,
		Relevance:    evaluation.Relevance,
		TotalScore:   decision.TotalScore,
		IsSafe:       evaluation.IsSafe,
		Flag:         evaluation.Flag,
		Theory:       submission.Theory,
		Summary:      evaluation.Summary,
		Rank:         evaluation.Rank,
		IsValid:      decision.IsValid,
		Timestamp:    submission.Timestamp,
	}

	if !ledgerOutcome.Anchored() {
		return record
	}

	id := ledgerOutcome.Receipt.ID
	record.SubmissionID = &id
	record.NFTMinted = ledgerOutcome.NFTMinted
	record.BlockchainTx = &BlockchainTx{
		SubmissionID: id,
		TxDigest:     ledgerOutcome.Receipt.TxDigest,
		MintTxDigest: ledgerOutcome.MintTxDigest,
		Status:       TxStatusSuccess,
		NFTMinted:    ledgerOutcome.NFTMinted,
	}
	record.ReputationUpdated = reputationOutcome.Updated()
	return record
}

// SubmissionView is an anchored submission as served on read paths.
type SubmissionView struct {
	SubmissionID uint64  `json:"submission_id"`
	CaseID       uint64  `json:"case_id"`
	Author       string  `json:"author"`
	Clarity      int     `json:"clarity"`
	Plausibility int     `json:"plausibility"`
	Consistency  int     `json:"consistency"`
	Relevance    int     `json:"relevance"`
	TotalScore   int     `json:"total_score"`
	IsSafe       bool    `json:"is_safe"`
	Flag         string  `json:"flag"`
	Theory       string  `json:"theory"`
	Summary      string  `json:"summary"`
	Rank         ai.Rank `json:"rank"`
	IsValid      bool    `json:"is_valid"`
	Timestamp    int64   `json:"timestamp"`
}

// ViewRecord projects a stored record for display, recomputing validity.
func ViewRecord(record ledger.Record) SubmissionView {
	return SubmissionView{
		SubmissionID: record.ID,
		CaseID:       record.CaseID,
		Author:       record.Author,
		Clarity:      record.Scores.Clarity,
		Plausibility: record.Scores.Plausibility,
		Consistency:  record.Scores.Consistency,
		Relevance:    record.Scores.Relevance,
		TotalScore:   record.Scores.Total(),
		IsSafe:       record.IsSafe,
		Flag:         record.Flag,
		Theory:       record.Theory,
		Summary:      record.Summary,
		Rank:         ai.ParseRank(record.Rank),
		IsValid:      ComputeDisplayValidity(record),
		Timestamp:    record.Timestamp,
	}
}

// AdvisoryResult is the informational feedback for logic, hypothesis and bias
// analyses. Only the embedded category fields are serialised.
type AdvisoryResult struct {
	Author   string      `json:"author"`
	Category ai.Category `json:"category"`
	*ai.LogicEvaluation
	*ai.HypothesisEvaluation
	*ai.BiasEvaluation
}

// AssessAdvisory projects an advisory evaluation. Missing fields were already
// defaulted when the evaluation was parsed.
func AssessAdvisory(author string, evaluation ai.Evaluation) (AdvisoryResult, error) {
	result := AdvisoryResult{Author: author, Category: evaluation.Category}

	switch evaluation.Category {
	case ai.CategoryLogic:
		logic := ai.LogicEvaluation{}
		if evaluation.Logic != nil {
			logic = *evaluation.Logic
		}
		logic.Inconsistencies = nonNil(logic.Inconsistencies)
		logic.MissingLinks = nonNil(logic.MissingLinks)
		result.LogicEvaluation = &logic
	case ai.CategoryHypothesis:
		hypothesis := ai.HypothesisEvaluation{}
		if evaluation.Hypothesis != nil {
			hypothesis = *evaluation.Hypothesis
		}
		hypothesis.Counterpoints = nonNil(hypothesis.Counterpoints)
		result.HypothesisEvaluation = &hypothesis
	case ai.CategoryBias:
		bias := ai.BiasEvaluation{}
		if evaluation.Bias != nil {
			bias = *evaluation.Bias
		}
		bias.DetectedBiases = nonNil(bias.DetectedBiases)
		bias.ChallengePoints = nonNil(bias.ChallengePoints)
		result.BiasEvaluation = &bias
	default:
		return AdvisoryResult{}, ai.ErrUnknownCategory
	}

	return result, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
