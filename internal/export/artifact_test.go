package export

import (
	"testing"

	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name   string
		info   types.PersonalInfo
		format Format
		want   string
	}{
		{"pdf", types.PersonalInfo{FirstName: "Jane", LastName: "Doe"}, FormatPDF, "Jane_Doe_Resume.pdf"},
		{"docx", types.PersonalInfo{FirstName: "Jane", LastName: "Doe"}, FormatDOCX, "Jane_Doe_Resume.docx"},
		{"empty names", types.PersonalInfo{}, FormatPDF, "__Resume.pdf"},
		{"path separators", types.PersonalInfo{FirstName: "../Jane", LastName: `Do\e`}, FormatPDF, ".._Jane_Do_e_Resume.pdf"},
		{"control characters", types.PersonalInfo{FirstName: "Ja\nne", LastName: "Doe"}, FormatDOCX, "Ja_ne_Doe_Resume.docx"},
		{"trimmed", types.PersonalInfo{FirstName: " Jane ", LastName: "Doe "}, FormatPDF, "Jane_Doe_Resume.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.info, tt.format))
		})
	}
}
