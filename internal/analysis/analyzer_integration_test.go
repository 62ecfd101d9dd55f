//go:build integration
// +build integration

package analysis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const integrationResume = `Jane Doe
jane@example.com | Austin, TX

EXPERIENCE
Staff Engineer at Acme
Mar 2021 - Present
Built a Go and PostgreSQL billing platform serving 2M requests a day.

SKILLS
Go, PostgreSQL, Kubernetes, gRPC`

func TestAnalyzer_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	llmConfig, err := llm.ConfigFromEnv()
	require.NoError(t, err)
	client, err := llm.NewClient(ctx, llmConfig, apiKey)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	analyzer := NewAnalyzer(client, true)

	outcome, err := analyzer.Analyze(ctx, integrationResume, "Senior Go engineer with Kubernetes experience")
	require.NoError(t, err)
	if outcome.IsParsed() {
		assert.GreaterOrEqual(t, outcome.Parsed.ATSScore, 0)
		assert.LessOrEqual(t, outcome.Parsed.ATSScore, 100)
		assert.NotEmpty(t, outcome.Parsed.Strengths)
	} else {
		assert.NotEmpty(t, outcome.Raw)
	}

	match, err := analyzer.MatchJob(ctx, integrationResume, "Senior Go engineer with Kubernetes and Terraform")
	require.NoError(t, err)
	if match.IsParsed() {
		assert.NotEmpty(t, match.Parsed.OverallFit)
	}
}
