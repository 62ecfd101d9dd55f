package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	exportInput    string
	exportTemplate string
	exportFormats  []string
	exportOutDir   string
	exportVerbose  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a resume document to PDF and/or DOCX",
	Long: `Reads a resume document JSON file and writes one file per requested format into --out.
PDF export drives a headless Chrome (CHROME_PATH, EXPORT_TIMEOUT); DOCX export needs nothing external.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "in", "i", "", "Path to resume document JSON file")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", string(rendering.DefaultTemplate), "Template used for PDF: modern, classic or minimal")
	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", []string{string(export.FormatPDF)}, "Formats to produce (pdf, docx)")
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", ".", "Output directory")
	exportCmd.Flags().BoolVarP(&exportVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := exportCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

// documentExporter produces one artifact for a document.
type documentExporter func(ctx context.Context, doc *types.ResumeDocument) (*export.Artifact, error)

// parseFormats deduplicates and checks the requested formats.
func parseFormats(names []string) ([]export.Format, error) {
	seen := make(map[export.Format]bool)
	var formats []export.Format
	for _, name := range names {
		format := export.Format(name)
		switch format {
		case export.FormatPDF, export.FormatDOCX:
		default:
			return nil, fmt.Errorf("unsupported format %q (want pdf or docx)", name)
		}
		if !seen[format] {
			seen[format] = true
			formats = append(formats, format)
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("at least one format is required")
	}
	return formats, nil
}

// exportAll runs every exporter concurrently and writes the artifacts into outDir.
// Nothing is written if any exporter fails.
func exportAll(ctx context.Context, doc *types.ResumeDocument, exporters map[export.Format]documentExporter, formats []export.Format, outDir string) ([]string, error) {
	artifacts := make([]*export.Artifact, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		exporter, ok := exporters[format]
		if !ok {
			return nil, fmt.Errorf("no exporter for %s", format)
		}
		g.Go(func() error {
			artifact, err := exporter(gctx, doc)
			if err != nil {
				return fmt.Errorf("%s export failed: %w", format, err)
			}
			artifacts[i] = artifact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	paths := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		path := filepath.Join(outDir, artifact.Filename)
		if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	formats, err := parseFormats(exportFormats)
	if err != nil {
		return err
	}

	doc, err := readDocument(exportInput)
	if err != nil {
		return err
	}

	tmpl := rendering.ParseTemplate(exportTemplate)
	docx := export.NewDOCXExporter()
	exporters := map[export.Format]documentExporter{
		export.FormatDOCX: func(_ context.Context, doc *types.ResumeDocument) (*export.Artifact, error) {
			return docx.Export(doc)
		},
		export.FormatPDF: func(ctx context.Context, doc *types.ResumeDocument) (*export.Artifact, error) {
			chromeConfig, err := config.NewChromeConfig()
			if err != nil {
				return nil, err
			}
			pdf := export.NewPDFExporter(export.NewChromeBrowser(chromeConfig, exportVerbose), exportVerbose)
			return pdf.Export(ctx, doc, tmpl)
		},
	}

	paths, err := exportAll(cmd.Context(), doc, exporters, formats, exportOutDir)
	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}
