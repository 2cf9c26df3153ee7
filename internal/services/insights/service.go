// -----------------------------------------------------------------------
// Insight Step - narrative generation with deterministic fallback
// -----------------------------------------------------------------------

package insights

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/models"
)

// Service implements interfaces.InsightGenerator. One remote attempt per
// job; any failure substitutes the deterministic fallback. Generate
// never returns an error, the fallback is the guaranteed terminal branch.
type Service struct {
	summarizer interfaces.Summarizer // nil when no provider is configured
	logger     arbor.ILogger
}

// Compile-time assertion
var _ interfaces.InsightGenerator = (*Service)(nil)

// NewService creates the insight service for the configured provider.
// A missing or unusable provider is not an error: the service runs in
// fallback-only mode.
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	summarizer, err := newSummarizer(config, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("No remote insight provider available, using fallback narratives")
		summarizer = nil
	}
	return &Service{
		summarizer: summarizer,
		logger:     logger,
	}
}

// NewServiceWithSummarizer wires an explicit summarizer (tests and
// custom providers)
func NewServiceWithSummarizer(summarizer interfaces.Summarizer, logger arbor.ILogger) *Service {
	return &Service{
		summarizer: summarizer,
		logger:     logger,
	}
}

// newSummarizer builds the provider selected by llm.default_provider
func newSummarizer(config *common.Config, logger arbor.ILogger) (interfaces.Summarizer, error) {
	switch config.LLM.DefaultProvider {
	case common.LLMProviderClaude:
		return NewClaudeSummarizer(&config.Claude, logger)
	default:
		return NewGeminiSummarizer(&config.Gemini, logger)
	}
}

// Generate produces the narrative for the given metadata. The result
// always carries a source tag of remote or fallback.
func (s *Service) Generate(ctx context.Context, meta *models.Metadata) *models.InsightResult {
	digest := buildDigest(meta)

	if s.summarizer != nil {
		text, err := s.summarizer.Summarize(ctx, digest)
		if err == nil && text != "" {
			s.logger.Info().
				Str("provider", s.summarizer.Name()).
				Int("digest_len", len(digest)).
				Msg("Remote insight generation succeeded")
			return &models.InsightResult{
				Text:   text,
				Source: models.InsightSourceRemote,
			}
		}
		s.logger.Warn().
			Err(err).
			Str("provider", s.summarizer.Name()).
			Msg("Remote insight generation failed, substituting fallback")
	}

	return &models.InsightResult{
		Text:   fallbackNarrative(meta),
		Source: models.InsightSourceFallback,
	}
}
