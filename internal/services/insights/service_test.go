package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/models"
)

// stubSummarizer is a canned remote provider for tests
type stubSummarizer struct {
	text string
	err  error
}

func (s *stubSummarizer) Summarize(ctx context.Context, digest string) (string, error) {
	return s.text, s.err
}

func (s *stubSummarizer) Name() string { return "stub" }

func testMetadata() *models.Metadata {
	return &models.Metadata{
		TotalRows:          100,
		TotalColumns:       4,
		Columns:            []string{"Date", "Campaign", "Spend", "Revenue"},
		NumericColumns:     []string{"Spend", "Revenue"},
		CategoricalColumns: []string{"Campaign"},
		NumericStats: map[string]models.NumericStats{
			"Spend":   {Mean: 100, Min: 80, Max: 120},
			"Revenue": {Mean: 240, Min: 160, Max: 300},
		},
		ValueCounts: map[string][]models.ValueCount{
			"Campaign": {{Value: "Brand Awareness", Count: 60}, {Value: "Retargeting", Count: 40}},
		},
	}
}

func TestGenerate_RemoteSuccess(t *testing.T) {
	svc := NewServiceWithSummarizer(&stubSummarizer{text: "**Insights:**\n1. Remote insight."}, arbor.NewLogger())

	result := svc.Generate(context.Background(), testMetadata())

	require.NotNil(t, result)
	assert.Equal(t, models.InsightSourceRemote, result.Source)
	assert.Contains(t, result.Text, "Remote insight")
}

func TestGenerate_RemoteFailureFallsBack(t *testing.T) {
	svc := NewServiceWithSummarizer(&stubSummarizer{err: errors.New("quota exceeded")}, arbor.NewLogger())

	result := svc.Generate(context.Background(), testMetadata())

	require.NotNil(t, result)
	assert.Equal(t, models.InsightSourceFallback, result.Source)
	assert.Contains(t, result.Text, "**Insights:**")
	assert.Contains(t, result.Text, "**Recommendations:**")
	assert.Contains(t, result.Text, "**Executive Summary:**")
}

func TestGenerate_EmptyRemoteTextFallsBack(t *testing.T) {
	svc := NewServiceWithSummarizer(&stubSummarizer{text: ""}, arbor.NewLogger())

	result := svc.Generate(context.Background(), testMetadata())
	assert.Equal(t, models.InsightSourceFallback, result.Source)
}

func TestGenerate_NoProviderIsDeterministic(t *testing.T) {
	svc := NewServiceWithSummarizer(nil, arbor.NewLogger())
	meta := testMetadata()

	a := svc.Generate(context.Background(), meta)
	b := svc.Generate(context.Background(), meta)

	assert.Equal(t, models.InsightSourceFallback, a.Source)
	assert.Equal(t, a.Text, b.Text)
	assert.Contains(t, a.Text, "100 records across 4 columns")
}

func TestBuildDigest_Bounds(t *testing.T) {
	meta := testMetadata()
	meta.Columns = []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}

	digest := buildDigest(meta)

	assert.Contains(t, digest, "Total rows: 100")
	assert.Contains(t, digest, "c6")
	assert.NotContains(t, digest, "c7")
	assert.Contains(t, digest, "Spend: mean=100.00, min=80.00, max=120.00")
}

func TestBuildDigest_Deterministic(t *testing.T) {
	meta := testMetadata()
	assert.Equal(t, buildDigest(meta), buildDigest(meta))
}

func TestBuildPrompt_EmbedsDigest(t *testing.T) {
	prompt := buildPrompt("DIGEST-MARKER")

	assert.Contains(t, prompt, "DIGEST-MARKER")
	assert.Contains(t, prompt, "**Executive Summary:**")
	assert.True(t, strings.Contains(prompt, "Three short business insights"))
}
