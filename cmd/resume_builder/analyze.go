package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/resume-builder/internal/analysis"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/spf13/cobra"
)

var (
	analyzeResume  string
	analyzeHTML    string
	analyzeJob     string
	analyzeJobURL  string
	analyzeBrowser bool
	analyzeMatch   bool
	analyzeAPIKey  string
	analyzeOutput  string
	analyzeVerbose bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume, or match it against a job description",
	Long: `Sends the resume text (from --resume, or extracted from a rendered page with --html)
to the language model and prints the analysis as JSON. With --match the resume is compared
against the job description instead, read from --job or fetched from a posting with --job-url.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeResume, "resume", "r", "", "Path to resume text file (mutually exclusive with --html)")
	analyzeCmd.Flags().StringVar(&analyzeHTML, "html", "", "Path to rendered resume HTML file (mutually exclusive with --resume)")
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to job description text file (mutually exclusive with --job-url)")
	analyzeCmd.Flags().StringVar(&analyzeJobURL, "job-url", "", "URL of a job posting to fetch the description from (mutually exclusive with --job)")
	analyzeCmd.Flags().BoolVar(&analyzeBrowser, "use-browser", false, "Render --job-url in headless Chrome when the static page has too little text")
	analyzeCmd.Flags().BoolVar(&analyzeMatch, "match", false, "Match against the job description instead of scoring")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	analyzeCmd.MarkFlagsMutuallyExclusive("resume", "html")
	analyzeCmd.MarkFlagsOneRequired("resume", "html")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-url")

	rootCmd.AddCommand(analyzeCmd)
}

// readResumeText returns the resume as plain text from either a text or an HTML file.
func readResumeText(textPath, htmlPath string) (string, error) {
	if textPath != "" {
		data, err := os.ReadFile(textPath)
		if err != nil {
			return "", fmt.Errorf("failed to read resume file: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(htmlPath)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML file: %w", err)
	}
	return analysis.ExtractText(string(data))
}

// readJobDescription reads the job description from a file or fetches it from a posting URL.
// Both empty yields an empty description.
func readJobDescription(ctx context.Context, path, jobURL string, useBrowser bool) (string, error) {
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read job file: %w", err)
		}
		return string(data), nil
	case jobURL != "":
		var renderer fetch.PageRenderer
		if useBrowser {
			chromeConfig, err := config.NewChromeConfig()
			if err != nil {
				return "", err
			}
			renderer = fetch.NewChromeRenderer(chromeConfig, analyzeVerbose)
		}
		posting, err := fetch.NewJobFetcher(nil, renderer, analyzeVerbose).Fetch(ctx, jobURL)
		if err != nil {
			return "", err
		}
		return posting.Description, nil
	default:
		return "", nil
	}
}

// writeJSON writes v indented to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	resumeText, err := readResumeText(analyzeResume, analyzeHTML)
	if err != nil {
		return err
	}

	jobDescription, err := readJobDescription(cmd.Context(), analyzeJob, analyzeJobURL, analyzeBrowser)
	if err != nil {
		return err
	}
	if analyzeMatch && strings.TrimSpace(jobDescription) == "" {
		return fmt.Errorf("--match requires a non-empty job description (--job or --job-url)")
	}

	apiKey := analyzeAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required (use --api-key or set GEMINI_API_KEY)")
	}

	ctx := cmd.Context()
	llmConfig, err := llm.ConfigFromEnv()
	if err != nil {
		return err
	}
	client, err := llm.NewClient(ctx, llmConfig, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	result, parsed, err := analyze(ctx, analysis.NewAnalyzer(client, analyzeVerbose), resumeText, jobDescription, analyzeMatch)
	if err != nil {
		return err
	}
	if !parsed {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: the model response could not be parsed, printing it raw")
	}

	return writeJSON(cmd.OutOrStdout(), analyzeOutput, result)
}

// analyze runs either a scoring or a matching pass.
func analyze(ctx context.Context, a *analysis.Analyzer, resumeText, jobDescription string, match bool) (any, bool, error) {
	if match {
		outcome, err := a.MatchJob(ctx, resumeText, jobDescription)
		if err != nil {
			return nil, false, err
		}
		return outcome, outcome.IsParsed(), nil
	}
	outcome, err := a.Analyze(ctx, resumeText, jobDescription)
	if err != nil {
		return nil, false, err
	}
	return outcome, outcome.IsParsed(), nil
}
