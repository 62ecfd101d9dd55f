package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command in-process with args and returns
// everything the command printed through cobra's writers.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, cmd := range rootCmd.Commands() {
		resetFlags(cmd)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag of cmd to its default so package-level
// flag variables do not leak between executions.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			var values []string
			if def := strings.Trim(f.DefValue, "[]"); def != "" {
				values = strings.Split(def, ",")
			}
			_ = sv.Replace(values)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func janeDocument() *types.ResumeDocument {
	return &types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Summary: "Builds things."},
		Experience: []types.ExperienceEntry{
			{ID: "e1", Company: "Acme", Position: "Engineer", StartDate: "2020-01", IsCurrent: true, Achievements: []string{"Shipped the editor"}},
		},
		Skills: []types.SkillEntry{{ID: "s1", Name: "Go", Level: types.SkillExpert}},
	}
}

// writeDocument writes doc as JSON into a temp dir and returns the path.
func writeDocument(t *testing.T, doc any) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "resume.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
