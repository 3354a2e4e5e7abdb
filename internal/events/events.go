package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SubjectSubmissionAccepted carries accepted and anchored synopsis submissions.
const SubjectSubmissionAccepted = "submission.accepted"

// SubmissionAccepted is emitted after a submission has been anchored.
type SubmissionAccepted struct {
	SubmissionID      uint64 `json:"submission_id"`
	CaseID            uint64 `json:"case_id"`
	Author            string `json:"author"`
	TotalScore        int    `json:"total_score"`
	Rank              string `json:"rank"`
	TxDigest          string `json:"tx_digest"`
	NFTMinted         bool   `json:"nft_minted"`
	ReputationPoints  int    `json:"reputation_points"`
	ReputationUpdated bool   `json:"reputation_updated"`
	Timestamp         int64  `json:"timestamp"`
}

// Envelope wraps every published event.
type Envelope struct {
	ID      string             `json:"id"`
	Subject string             `json:"subject"`
	SentAt  time.Time          `json:"sent_at"`
	Data    SubmissionAccepted `json:"data"`
}

// Publisher announces domain events to interested consumers.
type Publisher interface {
	SubmissionAccepted(ctx context.Context, event SubmissionAccepted) error
}

// Bus publishes to NATS and Redis pub/sub. Either transport may be nil.
type Bus struct {
	nats   *nats.Conn
	redis  *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewBus constructs a publisher. Subjects are prefixed with prefix when set.
func NewBus(natsConn *nats.Conn, redisClient *redis.Client, prefix string, logger zerolog.Logger) *Bus {
	return &Bus{
		nats:   natsConn,
		redis:  redisClient,
		prefix: prefix,
		logger: logger.With().Str("component", "event_bus").Logger(),
	}
}

func (b *Bus) SubmissionAccepted(ctx context.Context, event SubmissionAccepted) error {
	subject := b.subject(SubjectSubmissionAccepted)
	payload, err := json.Marshal(Envelope{
		ID:      uuid.NewString(),
		Subject: subject,
		SentAt:  time.Now().UTC(),
		Data:    event,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if b.redis != nil {
		if err := b.redis.Publish(ctx, subject, payload).Err(); err != nil {
			return fmt.Errorf("publish to redis: %w", err)
		}
	}

	if b.nats != nil {
		if err := b.nats.Publish(subject, payload); err != nil {
			return fmt.Errorf("publish to nats: %w", err)
		}
	}

	b.logger.Debug().Str("subject", subject).Uint64("submission_id", event.SubmissionID).Msg("event published")
	return nil
}

func (b *Bus) subject(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + "." + name
}
