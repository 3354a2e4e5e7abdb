package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "casechain",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of AI evaluation requests",
	}, []string{"model", "category"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casechain",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of AI evaluation failures",
	}, []string{"model", "category"})
)

// OpenAIConfig defines configuration options for the OpenAI evaluator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	// JSONMode requests the json_object response format. Older models such as
	// gpt-4 reject it, so it is opt-in.
	JSONMode bool
	Logger   zerolog.Logger
}

// OpenAIEvaluator implements Evaluator against the OpenAI chat completion API.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new evaluator using the provided configuration.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = openai.GPT4
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 800
	}

	tracer := otel.Tracer("github.com/noah-isme/casechain-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	client := openai.NewClientWithConfig(config)

	return &OpenAIEvaluator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger.With().Str("component", "openai_evaluator").Logger(),
	}, nil
}

// Evaluate sends the category prompt to OpenAI and parses the structured answer.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, input EvaluationInput) (Evaluation, error) {
	prompt, err := buildUserPrompt(input)
	if err != nil {
		return Evaluation{}, err
	}

	category := string(input.Category)
	ctx, span := e.tracer.Start(parent, "openai.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.String("category", category),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: evaluatorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}
	if e.cfg.JSONMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	aiDuration.WithLabelValues(e.cfg.Model, category).Observe(duration.Seconds())
	if err != nil {
		return Evaluation{}, e.fail(span, category, fmt.Errorf("%w: openai evaluate: %v", ErrEvaluation, err))
	}

	if len(resp.Choices) == 0 {
		return Evaluation{}, e.fail(span, category, fmt.Errorf("%w: no choices returned from openai", ErrEvaluation))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	evaluation, err := ParseEvaluation(input.Category, content)
	if err != nil {
		e.logger.Warn().Err(err).Str("category", category).Msg("unparseable evaluation content")
		return Evaluation{}, e.fail(span, category, err)
	}

	e.logger.Debug().
		Str("category", category).
		Int("total_tokens", resp.Usage.TotalTokens).
		Dur("duration", duration).
		Msg("evaluation completed")

	return evaluation, nil
}

func (e *OpenAIEvaluator) fail(span trace.Span, category string, err error) error {
	aiFailures.WithLabelValues(e.cfg.Model, category).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
