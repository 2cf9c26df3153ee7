package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
)

// ClaudeSummarizer implements interfaces.Summarizer using the Anthropic
// Claude API
type ClaudeSummarizer struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	client  anthropic.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// Compile-time assertion
var _ interfaces.Summarizer = (*ClaudeSummarizer)(nil)

// NewClaudeSummarizer creates a Claude-backed summarizer
func NewClaudeSummarizer(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeSummarizer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is not configured (set ANTHROPIC_API_KEY or claude.api_key)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 60 * time.Second
	}
	interval, err := time.ParseDuration(config.RateLimit)
	if err != nil || interval <= 0 {
		interval = time.Second
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Claude summarizer initialized")

	return &ClaudeSummarizer{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: timeout,
	}, nil
}

// Name returns the provider name
func (s *ClaudeSummarizer) Name() string {
	return "claude"
}

// Summarize makes one bounded remote call with the digest embedded in
// the fixed instruction template
func (s *ClaudeSummarizer) Summarize(ctx context.Context, digest string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(timeoutCtx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	maxTokens := s.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(digest))),
		},
	}

	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("Claude call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("Claude returned no text")
	}

	return strings.TrimSpace(text.String()), nil
}
