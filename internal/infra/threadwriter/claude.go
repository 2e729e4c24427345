package threadwriter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"news-thread/internal/observability/metrics"
	"news-thread/internal/resilience/circuitbreaker"
	"news-thread/internal/resilience/retry"
	"news-thread/internal/utils/text"
)

// ClaudeWriter implements Writer using Anthropic's Claude API.
// It mirrors the OpenAI writer's reliability wrapping: circuit breaker,
// retry with backoff, and a client-side rate limiter.
type ClaudeWriter struct {
	client      anthropic.Client
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	limiter     *rate.Limiter
	config      Config
}

// NewClaude creates a Claude thread writer with the given API key.
// An empty model in cfg falls back to the current Sonnet release.
func NewClaude(apiKey string, cfg Config) *ClaudeWriter {
	if cfg.Model == "" || cfg.Model == DefaultConfig().Model {
		cfg.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}

	slog.Info("initialized claude thread writer",
		slog.String("model", cfg.Model),
		slog.Int("max_output_tokens", cfg.MaxOutputTokens),
		slog.Int("requests_per_minute", cfg.RequestsPerMinute))

	return &ClaudeWriter{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		breaker:     circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig: retry.AIAPIConfig(),
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute),
		config:      cfg,
	}
}

// Outline plans the thread from article text.
func (c *ClaudeWriter) Outline(ctx context.Context, articleText string, opts Options) (Outline, error) {
	clamped := clampInput(articleText, c.config.MaxInputChars)
	user := "Article text (use only this for the outline):\n\n" + clamped

	var outline Outline
	err := c.call(ctx, "outline", func(ctx context.Context) error {
		raw, err := c.complete(ctx, buildOutlineSystemPrompt(opts), user)
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

// Render turns an outline into final post copy.
func (c *ClaudeWriter) Render(ctx context.Context, outline Outline, opts Options) ([]string, error) {
	outlineJSON, err := json.MarshalIndent(outline, "", "  ")
	if err != nil {
		return nil, classifyLLMError(err)
	}
	user := "Outline:\n" + string(outlineJSON)

	var posts []string
	err = c.call(ctx, "render", func(ctx context.Context) error {
		raw, err := c.complete(ctx, buildRenderSystemPrompt(opts), user)
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

func (c *ClaudeWriter) call(ctx context.Context, stage string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return classifyLLMError(err)
	}

	start := time.Now()
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, fn(ctx)
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("claude api circuit breaker open, request rejected",
				slog.String("stage", stage),
				slog.String("state", c.breaker.State().String()))
		}
		return err
	})
	metrics.RecordThreadWriterCall(ProviderClaude, stage, time.Since(start))

	if retryErr != nil {
		slog.ErrorContext(ctx, "thread writer stage failed",
			slog.String("provider", ProviderClaude),
			slog.String("stage", stage),
			slog.String("error", retryErr.Error()))
		return classifyLLMError(retryErr)
	}
	return nil
}

// complete performs one message call. Claude has no JSON response mode,
// so the system prompt demands JSON-only output and the reply text is
// parsed as-is.
func (c *ClaudeWriter) complete(ctx context.Context, system, user string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxOutputTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(user),
			),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
			return "", &retry.HTTPError{
				StatusCode: apiErr.StatusCode,
				Message:    "claude api error",
			}
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("%w: empty completion", errBadResponse)
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("%w: unexpected content block type", errBadResponse)
	}
	return textBlock.Text, nil
}
