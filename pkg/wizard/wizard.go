// Package wizard sequences the fixed intake steps. State is just an index
// into the step list; there are no skips and no branching.
package wizard

// Steps is the fixed ordered step list. The first step carries the
// engagement-acceptance gate; the last step submits instead of advancing.
var Steps = []string{
	"Welcome",
	"Taxpayer Information",
	"Filing Status & Spouse",
	"Dependents",
	"Bank Information",
	"Identity & Prior Documents",
	"Income Documents",
	"Adjustments",
	"Credits & Deductions",
	"Review & Sign",
}

// LastStep is the index of the final (submission) step.
func LastStep() int {
	return len(Steps) - 1
}

// Clamp forces an index loaded from storage back into [0, last].
func Clamp(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx > LastStep() {
		return LastStep()
	}
	return idx
}

// Advance moves forward by one step. Leaving the first step requires the
// acceptance flag; the last step never advances (submission happens there).
func Advance(idx int, accepted bool) int {
	idx = Clamp(idx)
	if idx == 0 && !accepted {
		return idx
	}
	if idx >= LastStep() {
		return idx
	}
	return idx + 1
}

// Back moves backward by one step and stops at the first.
func Back(idx int) int {
	idx = Clamp(idx)
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// Name returns the display name for a step index.
func Name(idx int) string {
	return Steps[Clamp(idx)]
}
