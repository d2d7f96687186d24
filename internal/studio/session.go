package studio

import (
	"strings"

	"pegasusedge/internal/logging"
)

// Session is one run of the wizard. Inputs are set once up front; each
// completed step fills its output slot. Going back never clears outputs,
// so a user can review earlier results and move forward again without
// regenerating.
type Session struct {
	Niche string
	Topic string
	Style string

	Vision    *VisionOutput
	Signature *SignatureOutput
	Blueprint *BlueprintOutput
	Audio     *AudioOutput

	index int
}

// NewSession starts a wizard session with the given creator inputs.
func NewSession(niche, topic, style string) *Session {
	return &Session{
		Niche: strings.TrimSpace(niche),
		Topic: strings.TrimSpace(topic),
		Style: strings.TrimSpace(style),
	}
}

// Current returns the step the wizard is on.
func (s *Session) Current() StepID {
	return stepOrder[s.index].ID
}

// Index returns the 0-based step index.
func (s *Session) Index() int {
	return s.index
}

// AtEnd reports whether the wizard reached the final pack step.
func (s *Session) AtEnd() bool {
	return s.index == len(stepOrder)-1
}

// Back moves one step back. Outputs stay in place.
func (s *Session) Back() {
	if s.index > 0 {
		s.index--
		logging.Studio("Session: back to step %s", s.Current())
	}
}

// advance moves forward. Only called after a step action succeeds.
func (s *Session) advance() {
	if s.index < len(stepOrder)-1 {
		s.index++
		logging.Studio("Session: advanced to step %s", s.Current())
	}
}

// Clone returns a copy of the session. Output slots are shared; step
// actions assign fresh output values and never write through an existing
// pointer, so a clone can run a step on another goroutine while the
// original is still being read.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}

// Reset clears all outputs and inputs and returns to the first step.
// Used by Start New Pack.
func (s *Session) Reset() {
	*s = Session{}
	logging.Studio("Session: reset")
}
