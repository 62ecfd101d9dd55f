package export

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-builder/internal/types"
)

// Content types of the produced artifacts.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Format is an export format.
type Format string

// Supported formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Artifact is a finished, downloadable export.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Filename derives "{firstName}_{lastName}_Resume.{ext}". Path separators and
// control characters in the names become underscores; empty names keep the skeleton.
func Filename(info types.PersonalInfo, format Format) string {
	return sanitize(info.FirstName) + "_" + sanitize(info.LastName) + "_Resume." + string(format)
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}
