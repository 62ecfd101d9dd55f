package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/spf13/cobra"
)

var (
	renderInput    string
	renderTemplate string
	renderOutput   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume document to HTML",
	Long:  `Reads a resume document JSON file, validates it against the resume schema and writes the HTML page for the chosen template.`,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to resume document JSON file")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", string(rendering.DefaultTemplate), "Template: modern, classic or minimal")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Path to output HTML file")

	if err := renderCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := renderCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(renderCmd)
}

// readDocument loads a resume document file after checking it against the resume schema.
func readDocument(path string) (*types.ResumeDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.Resume, data); err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}

	var doc types.ResumeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return &doc, nil
}

func runRender(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(renderInput)
	if err != nil {
		return err
	}

	tmpl := rendering.ParseTemplate(renderTemplate)
	html, err := rendering.RenderHTML(doc, tmpl)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	if err := os.WriteFile(renderOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s template to %s\n", tmpl, renderOutput)
	return nil
}
