package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
	"github.com/voyago/voyago/internal/app/observability/metrics"
)

const (
	systemInstruction = "You are a meticulous travel planning assistant. You always answer with valid JSON when asked to."
	maxPlanTokens     = 4000
)

// CredentialSource resolves the LLM credentials to use for a given user.
type CredentialSource interface {
	LLMCredentials(ctx context.Context, userID uuid.UUID) (apiKey, baseURL, model string, err error)
}

// ChatClient issues chat completions against an OpenAI-compatible endpoint
// with per-user credentials.
type ChatClient struct {
	logger *zap.Logger
	creds  CredentialSource
	opts   []option.RequestOption // extra options, used by tests to stub transport
}

func NewChatClient(creds CredentialSource, logger *zap.Logger, opts ...option.RequestOption) *ChatClient {
	return &ChatClient{logger: logger, creds: creds, opts: opts}
}

// Complete sends one prompt and returns the raw reply text.
func (c *ChatClient) Complete(ctx context.Context, userID uuid.UUID, prompt string, temperature float64) (string, error) {
	l := c.logger.With(zap.String("method", "Complete"), zap.String("userID", userID.String()))

	apiKey, baseURL, model, err := c.creds.LLMCredentials(ctx, userID)
	if err != nil {
		return "", err
	}

	opts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}, c.opts...)
	client := openai.NewClient(opts...)

	start := time.Now()
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxPlanTokens),
	})
	metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		l.Error("Chat completion failed", zap.String("model", model), zap.Error(err))
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues("malformed").Inc()
		return "", fmt.Errorf("%w: empty completion", models.ErrMalformedPlan)
	}
	metrics.LLMRequestsTotal.WithLabelValues("ok").Inc()

	l.Debug("Chat completion succeeded",
		zap.String("model", model),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
