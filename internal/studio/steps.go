// Package studio implements the Creator's Edge Studio wizard: a fixed
// sequence of generation steps that build a complete content pack.
package studio

import (
	"context"
	"fmt"
)

// StepID identifies a wizard step.
type StepID string

const (
	StepVision       StepID = "vision"
	StepSignature    StepID = "signature"
	StepBlueprint    StepID = "blueprint"
	StepAudioAlchemy StepID = "audio-alchemy"
	StepPack         StepID = "pack"
)

// stepDescriptor drives the generic step executor. One row per step:
// what it needs, what it runs and whether billing applies.
type stepDescriptor struct {
	ID       StepID
	Name     string
	Billable bool
	require  func(s *Session) error
	run      func(e *Engine, ctx context.Context, s *Session) error
}

// stepOrder is the fixed wizard sequence. The Audio Alchemy action is
// the finalize step: it is the only one billing gates, and its success
// lands the user on the pack.
var stepOrder = []stepDescriptor{
	{
		ID:      StepVision,
		Name:    "The Vision",
		require: requireNiche,
		run:     (*Engine).runVision,
	},
	{
		ID:      StepSignature,
		Name:    "Visual Signature",
		require: requireVision,
		run:     (*Engine).runSignature,
	},
	{
		ID:      StepBlueprint,
		Name:    "Content Blueprint",
		require: requireSignature,
		run:     (*Engine).runBlueprint,
	},
	{
		ID:       StepAudioAlchemy,
		Name:     "Audio Alchemy",
		Billable: true,
		require:  requireBlueprint,
		run:      (*Engine).runAudioAlchemy,
	},
	{
		ID:   StepPack,
		Name: "Creator's Pack",
		// Terminal step: nothing to generate, everything to show.
	},
}

// StepCount is the number of wizard steps.
const StepCount = 5

// StepName returns the display name for a step.
func StepName(id StepID) string {
	for _, d := range stepOrder {
		if d.ID == id {
			return d.Name
		}
	}
	return string(id)
}

func requireNiche(s *Session) error {
	if s.Niche == "" {
		return fmt.Errorf("channel niche is required")
	}
	return nil
}

func requireVision(s *Session) error {
	if s.Vision == nil {
		return fmt.Errorf("complete The Vision first")
	}
	return nil
}

func requireSignature(s *Session) error {
	if err := requireVision(s); err != nil {
		return err
	}
	if s.Signature == nil {
		return fmt.Errorf("complete Visual Signature first")
	}
	return nil
}

func requireBlueprint(s *Session) error {
	if s.Blueprint == nil {
		return fmt.Errorf("complete Content Blueprint first")
	}
	return nil
}
