package threadwriter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"news-thread/internal/observability/metrics"
	"news-thread/internal/resilience/circuitbreaker"
	"news-thread/internal/resilience/retry"
	"news-thread/internal/utils/text"
)

// OpenAIWriter implements Writer using OpenAI's chat completion API.
// It includes circuit breaker and retry logic for reliability, plus a
// client-side rate limiter to stay inside provider quotas.
type OpenAIWriter struct {
	client      *openai.Client
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	limiter     *rate.Limiter
	config      Config
}

// NewOpenAI creates an OpenAI thread writer with the given API key.
func NewOpenAI(apiKey string, cfg Config) *OpenAIWriter {
	slog.Info("initialized openai thread writer",
		slog.String("model", cfg.Model),
		slog.Int("max_output_tokens", cfg.MaxOutputTokens),
		slog.Int("requests_per_minute", cfg.RequestsPerMinute))

	return &OpenAIWriter{
		client:      openai.NewClient(apiKey),
		breaker:     circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig: retry.AIAPIConfig(),
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute),
		config:      cfg,
	}
}

// Outline plans the thread from article text.
func (o *OpenAIWriter) Outline(ctx context.Context, articleText string, opts Options) (Outline, error) {
	clamped := clampInput(articleText, o.config.MaxInputChars)
	user := "Article text (use only this for the outline):\n\n" + clamped

	var outline Outline
	err := o.call(ctx, "outline", func(ctx context.Context) error {
		raw, err := o.complete(ctx, buildOutlineSystemPrompt(opts), user)
		if err != nil {
			return err
		}

		var parsed struct {
			Tweets []OutlineItem `json:"tweets"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return fmt.Errorf("%w: %v", errBadResponse, err)
		}
		if len(parsed.Tweets) == 0 {
			return fmt.Errorf("%w: empty tweets array", errBadResponse)
		}

		outline = parsed.Tweets
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outline, nil
}

// Render turns an outline into final post copy. Posts over the limit
// are shortened at a word boundary rather than rejected.
func (o *OpenAIWriter) Render(ctx context.Context, outline Outline, opts Options) ([]string, error) {
	outlineJSON, err := json.MarshalIndent(outline, "", "  ")
	if err != nil {
		return nil, classifyLLMError(err)
	}
	user := "Outline:\n" + string(outlineJSON)

	var posts []string
	err = o.call(ctx, "render", func(ctx context.Context) error {
		raw, err := o.complete(ctx, buildRenderSystemPrompt(opts), user)
		if err != nil {
			return err
		}

		var parsed struct {
			Tweets []string `json:"tweets"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return fmt.Errorf("%w: %v", errBadResponse, err)
		}
		if len(parsed.Tweets) == 0 {
			return fmt.Errorf("%w: empty tweets array", errBadResponse)
		}

		posts = text.EnforceCharLimitBatch(parsed.Tweets, MaxPostChars)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// call runs one staged API call through the rate limiter, retry logic
// and circuit breaker, recording its duration. The returned error is
// already classified.
func (o *OpenAIWriter) call(ctx context.Context, stage string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	if err := o.limiter.Wait(ctx); err != nil {
		return classifyLLMError(err)
	}

	start := time.Now()
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		_, err := o.breaker.Execute(func() (interface{}, error) {
			return nil, fn(ctx)
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("openai api circuit breaker open, request rejected",
				slog.String("stage", stage),
				slog.String("state", o.breaker.State().String()))
		}
		return err
	})
	metrics.RecordThreadWriterCall(ProviderOpenAI, stage, time.Since(start))

	if retryErr != nil {
		slog.ErrorContext(ctx, "thread writer stage failed",
			slog.String("provider", ProviderOpenAI),
			slog.String("stage", stage),
			slog.String("error", retryErr.Error()))
		return classifyLLMError(retryErr)
	}
	return nil
}

// complete performs one chat completion in JSON mode. Provider HTTP
// failures are surfaced as retry.HTTPError so transient 429/5xx
// responses get retried.
func (o *OpenAIWriter) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens: o.config.MaxOutputTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
			return "", &retry.HTTPError{
				StatusCode: apiErr.HTTPStatusCode,
				Message:    "openai api error",
			}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
			return "", &retry.HTTPError{
				StatusCode: reqErr.HTTPStatusCode,
				Message:    "openai api error",
			}
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", errBadResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
