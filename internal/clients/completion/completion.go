// internal/clients/completion/completion.go
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"smartborrow/internal/common/logger"
)

var (
	ErrServiceUnavailable = errors.New("SERVICE_UNAVAILABLE")
	ErrRateLimited        = errors.New("RATE_LIMITED")
)

// Service is the contract the completion collaborator must satisfy; any
// backend producing a text completion for a prompt can be substituted.
type Service interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	BaseURL     string
	Model       string
	Token       string
	MaxTokens   int
	Temperature float64
}

// Client implements Service on top of an OpenAI-compatible chat API.
type Client struct {
	llm    llms.Model
	config *Config
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) (*Client, error) {
	opts := []openai.Option{
		openai.WithModel(config.Model),
		openai.WithToken(config.Token),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("completion client init: %w", err)
	}

	return &Client{
		llm:    llm,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "completion"}),
	}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithMaxTokens(c.config.MaxTokens),
		llms.WithTemperature(c.config.Temperature),
	)
	if err != nil {
		return "", mapError(err)
	}

	c.logger.Debug("completion produced", map[string]interface{}{
		"promptChars":   len(prompt),
		"responseChars": len(text),
	})

	return strings.TrimSpace(text), nil
}

// mapError folds provider errors into the two failure modes callers handle.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}
