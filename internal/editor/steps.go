package editor

import "fmt"

// Step is one page of the editing wizard.
type Step int

// Wizard steps in order.
const (
	StepPersonal Step = iota
	StepEducation
	StepExperience
	StepSkills
	StepProjects
	StepCertifications
)

var stepNames = [...]string{"personal", "education", "experience", "skills", "projects", "certifications"}

var stepTitles = [...]string{"Personal Info", "Education", "Experience", "Skills", "Projects", "Certifications"}

// Steps lists the wizard steps in order.
func Steps() []Step {
	return []Step{StepPersonal, StepEducation, StepExperience, StepSkills, StepProjects, StepCertifications}
}

func (s Step) valid() bool {
	return s >= StepPersonal && s <= StepCertifications
}

func (s Step) String() string {
	if !s.valid() {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// Title is the heading shown for the step.
func (s Step) Title() string {
	if !s.valid() {
		return ""
	}
	return stepTitles[s]
}

// MarshalText encodes the step by name.
func (s Step) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid step %d", int(s))
	}
	return []byte(stepNames[s]), nil
}

// UnmarshalText decodes a step name.
func (s *Step) UnmarshalText(text []byte) error {
	step, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = step
	return nil
}

// ParseStep maps a step name to a Step.
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

// Step returns the current wizard step.
func (e *Editor) Step() Step {
	return e.step
}

// Next advances one step and stays on the last one. Validation never blocks navigation.
func (e *Editor) Next() Step {
	if e.step < StepCertifications {
		e.step++
	}
	return e.step
}

// Prev goes back one step and stays on the first one.
func (e *Editor) Prev() Step {
	if e.step > StepPersonal {
		e.step--
	}
	return e.step
}

// GoTo jumps to the given step.
func (e *Editor) GoTo(step Step) error {
	if !step.valid() {
		return fmt.Errorf("invalid step %d", int(step))
	}
	e.step = step
	return nil
}
