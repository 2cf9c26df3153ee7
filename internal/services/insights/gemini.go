package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
)

// GeminiSummarizer implements interfaces.Summarizer using the Google
// Gemini API
type GeminiSummarizer struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// Compile-time assertion
var _ interfaces.Summarizer = (*GeminiSummarizer)(nil)

// NewGeminiSummarizer creates a Gemini-backed summarizer. Fails when no
// API key is configured; the caller falls back to the deterministic
// narrative in that case.
func NewGeminiSummarizer(config *common.GeminiConfig, logger arbor.ILogger) (*GeminiSummarizer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is not configured (set GEMINI_API_KEY or gemini.api_key)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 60 * time.Second
	}
	interval, err := time.ParseDuration(config.RateLimit)
	if err != nil || interval <= 0 {
		interval = 4 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Gemini summarizer initialized")

	return &GeminiSummarizer{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		timeout: timeout,
	}, nil
}

// Name returns the provider name
func (s *GeminiSummarizer) Name() string {
	return "gemini"
}

// Summarize makes one bounded remote call with the digest embedded in
// the fixed instruction template
func (s *GeminiSummarizer) Summarize(ctx context.Context, digest string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(timeoutCtx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	maxTokens := int32(s.config.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 512
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(digest), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini call failed: %w", err)
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				break
			}
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("Gemini returned no text")
	}

	return strings.TrimSpace(text.String()), nil
}
