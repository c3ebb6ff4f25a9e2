// Package intake implements the user-driven flows that turn a photo or an
// audio recording into structured form data: the two OCR scan variants
// (medication, visit) and the voice recording flow.
package intake

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid flow transition")

	// ErrNoFile is the validation error raised before any network call when
	// the caller supplied an empty payload.
	ErrNoFile = errors.New("no file selected")

	// ErrEmptyOCRText marks the soft failure where the OCR step returned only
	// whitespace; the parse step is never attempted.
	ErrEmptyOCRText = errors.New("ocr text is empty")

	// ErrNoParsedItems marks the soft failure where parsing yielded zero
	// records with any populated field.
	ErrNoParsedItems = errors.New("no parsed records recognized")
)

// Step is the scan flow state. Transitions outside the table below are
// rejected with ErrInvalidTransition, so e.g. scanning can never start before
// a preview exists.
type Step int

const (
	StepIdle Step = iota
	StepSelectMethod
	StepPreview
	StepScanning
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepSelectMethod:
		return "selectMethod"
	case StepPreview:
		return "preview"
	case StepScanning:
		return "scanning"
	case StepComplete:
		return "complete"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var stepTransitions = map[Step][]Step{
	StepIdle:         {StepSelectMethod},
	StepSelectMethod: {StepPreview, StepIdle},
	StepPreview:      {StepScanning, StepSelectMethod, StepIdle},
	StepScanning:     {StepPreview, StepComplete, StepIdle},
	StepComplete:     {StepSelectMethod, StepIdle},
}

func (s Step) canMove(to Step) bool {
	for _, next := range stepTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// move validates and applies a transition.
func move(current *Step, to Step) error {
	if !current.canMove(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, *current, to)
	}
	*current = to
	return nil
}
