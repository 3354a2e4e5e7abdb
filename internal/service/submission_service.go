package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/casechain-api/internal/dto"
	"github.com/noah-isme/casechain-api/internal/events"
	"github.com/noah-isme/casechain-api/internal/ledger"
	"github.com/noah-isme/casechain-api/internal/observability"
	"github.com/noah-isme/casechain-api/internal/reputation"
	"github.com/noah-isme/casechain-api/internal/scoring"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

// ErrSubmissionNotFound indicates no anchored submission matched the request.
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionService evaluates theories and serves anchored submissions.
type SubmissionService interface {
	SubmitSynopsis(ctx context.Context, author string, payload dto.SubmissionRequest) (scoring.SubmissionRecord, error)
	SubmitAdvisory(ctx context.Context, author string, category ai.Category, payload dto.SubmissionRequest) (scoring.AdvisoryResult, error)
	Get(ctx context.Context, id uint64) (scoring.SubmissionView, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]scoring.SubmissionView, error)
}

type submissionService struct {
	evaluator  ai.Evaluator
	ledger     ledger.Ledger
	reputation reputation.Store
	events     events.Publisher
	validator  *validator.Validate
	tracer     trace.Tracer
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSubmissionService constructs the submission pipeline. publisher may be nil.
func NewSubmissionService(evaluator ai.Evaluator, ledgerClient ledger.Ledger, store reputation.Store, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		evaluator:  evaluator,
		ledger:     ledgerClient,
		reputation: store,
		events:     publisher,
		validator:  validate,
		tracer:     otel.Tracer("github.com/noah-isme/casechain-api/internal/service/submission"),
		logger:     logger.With().Str("component", "submission_service").Logger(),
		now:        time.Now,
	}
}

// SubmitSynopsis evaluates a theory and, when accepted, anchors it, mints a
// reward if eligible and credits reputation. Ledger and reputation failures
// are reflected in the result instead of failing the request.
func (s *submissionService) SubmitSynopsis(ctx context.Context, author string, payload dto.SubmissionRequest) (scoring.SubmissionRecord, error) {
	ctx, span := s.tracer.Start(ctx, "submission.synopsis")
	defer span.End()

	input, err := s.prepare(payload, ai.CategorySynopsis)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return scoring.SubmissionRecord{}, err
	}
	caseID := *payload.CaseID
	span.SetAttributes(attribute.Int64("submission.case_id", int64(caseID)))

	evaluation, err := s.evaluator.Evaluate(ctx, input)
	if err == nil && evaluation.Synopsis == nil {
		err = fmt.Errorf("%w: synopsis fields missing", ai.ErrEvaluation)
	}
	if err != nil {
		observability.RecordSubmission(string(ai.CategorySynopsis), observability.OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_failed")
		return scoring.SubmissionRecord{}, err
	}

	synopsis := *evaluation.Synopsis
	submission := scoring.Submission{
		CaseID:    caseID,
		Author:    author,
		Theory:    input.UserText,
		Timestamp: s.now().Unix(),
	}
	decision := scoring.AssessSynopsis(synopsis)
	span.SetAttributes(
		attribute.Int("submission.total_score", decision.TotalScore),
		attribute.Bool("submission.is_valid", decision.IsValid),
	)

	var (
		ledgerOutcome     scoring.LedgerOutcome
		reputationOutcome scoring.ReputationOutcome
	)
	if decision.IsValid {
		ledgerOutcome = s.anchor(ctx, submission, synopsis)
		if ledgerOutcome.Anchored() {
			reputationOutcome = s.award(ctx, author, decision.TotalScore, ledgerOutcome.NFTMinted)
		}
	}

	record := scoring.ComposeResult(submission, synopsis, ledgerOutcome, reputationOutcome)

	outcome := observability.OutcomeRejected
	if decision.IsValid {
		outcome = observability.OutcomeAccepted
	}
	observability.RecordSubmission(string(ai.CategorySynopsis), outcome)

	if record.SubmissionID != nil {
		s.publishAccepted(ctx, record, reputationOutcome.Points)
	}

	s.logger.Info().
		Str("author", author).
		Uint64("case_id", caseID).
		Int("total_score", record.TotalScore).
		Bool("is_valid", record.IsValid).
		Bool("nft_minted", record.NFTMinted).
		Bool("reputation_updated", record.ReputationUpdated).
		Msg("synopsis evaluated")

	return record, nil
}

func (s *submissionService) anchor(ctx context.Context, submission scoring.Submission, synopsis ai.SynopsisEvaluation) scoring.LedgerOutcome {
	receipt, err := s.ledger.Anchor(ctx, ledger.AnchorRequest{
		CaseID:    submission.CaseID,
		Author:    submission.Author,
		Scores:    synopsis.SynopsisScores,
		IsSafe:    synopsis.IsSafe,
		Flag:      synopsis.Flag,
		Theory:    submission.Theory,
		Summary:   synopsis.Summary,
		Rank:      string(synopsis.Rank),
		Timestamp: submission.Timestamp,
	})
	observability.RecordLedgerOperation("anchor", err)
	if err != nil {
		s.logger.Error().Err(err).Str("author", submission.Author).Uint64("case_id", submission.CaseID).Msg("anchoring submission failed")
		return scoring.LedgerOutcome{Err: err}
	}

	outcome := scoring.LedgerOutcome{Receipt: &receipt}
	if !scoring.DecideNftEligibility(synopsis.SynopsisScores, synopsis.IsSafe) {
		return outcome
	}

	mint, err := s.ledger.Mint(ctx, ledger.MintRequest{
		CaseID:    submission.CaseID,
		Author:    submission.Author,
		Score:     synopsis.Total(),
		Summary:   synopsis.Summary,
		Rank:      string(synopsis.Rank),
		Timestamp: submission.Timestamp,
	})
	observability.RecordLedgerOperation("mint", err)
	if err != nil {
		s.logger.Warn().Err(err).Uint64("submission_id", receipt.ID).Msg("minting reward token failed")
		return outcome
	}

	outcome.NFTMinted = true
	outcome.MintTxDigest = mint.TxDigest
	return outcome
}

func (s *submissionService) award(ctx context.Context, author string, totalScore int, nftMinted bool) scoring.ReputationOutcome {
	points := scoring.DecideReputationAward(totalScore, nftMinted)
	err := s.reputation.Apply(ctx, author, points, nftMinted)
	observability.RecordReputationUpdate(err)
	if err != nil {
		s.logger.Warn().Err(err).Str("author", author).Int("points", points).Msg("reputation update failed")
	}
	return scoring.ReputationOutcome{Attempted: true, Points: points, Err: err}
}

func (s *submissionService) publishAccepted(ctx context.Context, record scoring.SubmissionRecord, points int) {
	if s.events == nil {
		return
	}

	err := s.events.SubmissionAccepted(ctx, events.SubmissionAccepted{
		SubmissionID:      *record.SubmissionID,
		CaseID:            record.CaseID,
		Author:            record.Author,
		TotalScore:        record.TotalScore,
		Rank:              string(record.Rank),
		TxDigest:          record.BlockchainTx.TxDigest,
		NFTMinted:         record.NFTMinted,
		ReputationPoints:  points,
		ReputationUpdated: record.ReputationUpdated,
		Timestamp:         record.Timestamp,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint64("submission_id", *record.SubmissionID).Msg("failed to publish submission event")
	}
}

// SubmitAdvisory runs a logic, hypothesis or bias analysis. Advisory results
// never touch the ledger or reputation.
func (s *submissionService) SubmitAdvisory(ctx context.Context, author string, category ai.Category, payload dto.SubmissionRequest) (scoring.AdvisoryResult, error) {
	if !category.IsAdvisory() {
		return scoring.AdvisoryResult{}, fmt.Errorf("%w: %q is not advisory", ai.ErrUnknownCategory, category)
	}

	ctx, span := s.tracer.Start(ctx, "submission.advisory", trace.WithAttributes(attribute.String("submission.category", string(category))))
	defer span.End()

	input, err := s.prepare(payload, category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return scoring.AdvisoryResult{}, err
	}

	evaluation, err := s.evaluator.Evaluate(ctx, input)
	if err != nil {
		observability.RecordSubmission(string(category), observability.OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_failed")
		return scoring.AdvisoryResult{}, err
	}

	result, err := scoring.AssessAdvisory(author, evaluation)
	if err != nil {
		return scoring.AdvisoryResult{}, err
	}

	observability.RecordSubmission(string(category), observability.OutcomeAdvisory)
	return result, nil
}

func (s *submissionService) Get(ctx context.Context, id uint64) (scoring.SubmissionView, error) {
	record, err := s.ledger.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return scoring.SubmissionView{}, ErrSubmissionNotFound
		}
		return scoring.SubmissionView{}, err
	}
	return scoring.ViewRecord(record), nil
}

// List returns anchored submissions in id order. An empty result is reported
// as ErrSubmissionNotFound.
func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]scoring.SubmissionView, error) {
	records, err := s.ledger.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]scoring.SubmissionView, 0, len(records))
	for _, record := range records {
		if filter.CaseID != nil && record.CaseID != *filter.CaseID {
			continue
		}
		if filter.Author != "" && !strings.EqualFold(record.Author, filter.Author) {
			continue
		}
		views = append(views, scoring.ViewRecord(record))
	}

	if len(views) == 0 {
		return nil, ErrSubmissionNotFound
	}
	return views, nil
}

func (s *submissionService) prepare(payload dto.SubmissionRequest, category ai.Category) (ai.EvaluationInput, error) {
	// Case and theory are plain text and are anchored verbatim apart from
	// surrounding whitespace.
	payload.Case = strings.TrimSpace(payload.Case)
	payload.Theory = strings.TrimSpace(payload.Theory)
	if err := s.validator.Struct(payload); err != nil {
		return ai.EvaluationInput{}, err
	}

	return ai.EvaluationInput{
		CaseText: payload.Case,
		UserText: payload.Theory,
		Category: category,
	}, nil
}
