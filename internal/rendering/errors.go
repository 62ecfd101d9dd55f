package rendering

import "fmt"

// Stage names the step of HTML production that failed.
type Stage string

const (
	StageParse   Stage = "parse"
	StageExecute Stage = "execute"
)

// LayoutError reports a failure parsing or executing a page layout.
type LayoutError struct {
	Stage    Stage
	Template Template
	Cause    error
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s layout %s failed: %v", e.Template, e.Stage, e.Cause)
}

func (e *LayoutError) Unwrap() error { return e.Cause }
