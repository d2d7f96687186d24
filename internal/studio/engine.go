package studio

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"pegasusedge/internal/access"
	"pegasusedge/internal/audio"
	"pegasusedge/internal/gemini"
	"pegasusedge/internal/logging"
)

// TextGenerator produces text from a prompt. Satisfied by gemini.Client.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// AudioBackend renders audio assets. Satisfied by audio.Client.
type AudioBackend interface {
	GenerateMusic(ctx context.Context, prompt string, duration int) (*audio.MusicAsset, error)
	GenerateJingle(ctx context.Context, prompt string) (*audio.MusicAsset, error)
	GenerateSfx(ctx context.Context, prompt string) (*audio.SfxAsset, error)
	GenerateVoiceover(ctx context.Context, text, voiceStyle, emotion string) (*audio.VoiceoverAsset, error)
}

// Engine executes wizard steps. One engine serves all sessions; per-run
// state lives in the Session.
type Engine struct {
	text       TextGenerator
	audio      AudioBackend
	gatekeeper *access.Gatekeeper
}

// NewEngine wires the generation clients and the access policy together.
func NewEngine(text TextGenerator, audioBackend AudioBackend, gatekeeper *access.Gatekeeper) *Engine {
	return &Engine{
		text:       text,
		audio:      audioBackend,
		gatekeeper: gatekeeper,
	}
}

// Gatekeeper exposes the policy for the payment flow.
func (e *Engine) Gatekeeper() *access.Gatekeeper {
	return e.gatekeeper
}

// RunStep executes the current step's action under the access policy.
// On success the session advances. DecisionPaymentRequired means the
// action was parked behind the paywall and nothing ran yet; the session
// stays put until the payment flow confirms or cancels.
//
// A generation error leaves the session on the same step with inputs
// intact; the user retries explicitly.
func (e *Engine) RunStep(ctx context.Context, s *Session) (access.Decision, error) {
	desc := stepOrder[s.index]
	if desc.run == nil {
		return access.DecisionRan, fmt.Errorf("step %s has no action", desc.ID)
	}
	if desc.require != nil {
		if err := desc.require(s); err != nil {
			return access.DecisionRan, err
		}
	}

	timer := logging.StartTimer(logging.CategoryStudio, string(desc.ID))
	defer timer.Stop()

	action := func() error {
		if err := desc.run(e, ctx, s); err != nil {
			logging.StudioError("Step %s failed: %v", desc.ID, err)
			return err
		}
		s.advance()
		return nil
	}

	return e.gatekeeper.Evaluate(desc.Billable, action)
}

// StartNewPack resets the session for a fresh run. Non-subscribed users
// who never consumed their trial get it back.
func (e *Engine) StartNewPack(s *Session) error {
	s.Reset()
	return e.gatekeeper.ReinstateTrial()
}

func (e *Engine) runVision(ctx context.Context, s *Session) error {
	raw, err := e.text.GenerateText(ctx, visionSystem, visionPrompt(s))
	if err != nil {
		return err
	}
	out := gemini.Decode(raw, visionFallback())
	s.Vision = &out
	return nil
}

func (e *Engine) runSignature(ctx context.Context, s *Session) error {
	raw, err := e.text.GenerateText(ctx, signatureSystem, signaturePrompt(s))
	if err != nil {
		return err
	}
	out := gemini.Decode(raw, signatureFallback())
	s.Signature = &out
	return nil
}

func (e *Engine) runBlueprint(ctx context.Context, s *Session) error {
	raw, err := e.text.GenerateText(ctx, blueprintSystem, blueprintPrompt(s))
	if err != nil {
		return err
	}
	out := gemini.Decode(raw, blueprintFallback())
	s.Blueprint = &out
	return nil
}

// runAudioAlchemy generates textual audio concepts, then renders an asset
// per suggestion. Asset renders are independent and run concurrently; a
// failed render records its error on the asset and never blocks siblings
// or fails the step.
func (e *Engine) runAudioAlchemy(ctx context.Context, s *Session) error {
	raw, err := e.text.GenerateText(ctx, audioSystem, audioConceptsPrompt(s))
	if err != nil {
		return err
	}

	concepts := gemini.Decode(raw, AudioOutput{})
	parseFailed := len(concepts.MusicStyleSuggestions) == 0 && len(concepts.JingleIdeas) == 0 &&
		len(concepts.SfxConcepts) == 0 && len(concepts.VoiceOverTone) == 0
	if parseFailed {
		// Sentinels keep the pack renderable; nothing to send to the
		// audio backend.
		fallback := audioFallback()
		s.Audio = &fallback
		return nil
	}

	out := &AudioOutput{
		MusicStyleSuggestions: concepts.MusicStyleSuggestions,
		JingleIdeas:           concepts.JingleIdeas,
		SfxConcepts:           concepts.SfxConcepts,
		VoiceOverTone:         concepts.VoiceOverTone,
		GeneratedMusic:        make([]audio.MusicAsset, len(concepts.MusicStyleSuggestions)),
		GeneratedJingles:      make([]audio.MusicAsset, len(concepts.JingleIdeas)),
		GeneratedSfx:          make([]audio.SfxAsset, len(concepts.SfxConcepts)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for i, style := range concepts.MusicStyleSuggestions {
		g.Go(func() error {
			asset, err := e.audio.GenerateMusic(gctx, style, audio.DefaultDuration)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.GeneratedMusic[i] = audio.MusicAsset{
					Description: style,
					Type:        audio.TypeMusic,
					Err:         err.Error(),
				}
				return nil
			}
			out.GeneratedMusic[i] = *asset
			return nil
		})
	}

	for i, idea := range concepts.JingleIdeas {
		g.Go(func() error {
			asset, err := e.audio.GenerateJingle(gctx, idea)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.GeneratedJingles[i] = audio.MusicAsset{
					Description: idea,
					Type:        audio.TypeJingle,
					Err:         err.Error(),
				}
				return nil
			}
			out.GeneratedJingles[i] = *asset
			return nil
		})
	}

	for i, concept := range concepts.SfxConcepts {
		g.Go(func() error {
			asset, err := e.audio.GenerateSfx(gctx, concept)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.GeneratedSfx[i] = audio.SfxAsset{
					Description: concept,
					Type:        audio.TypeSfx,
					Err:         err.Error(),
				}
				return nil
			}
			out.GeneratedSfx[i] = *asset
			return nil
		})
	}

	// Voiceover placeholders from the intro hooks, in the suggested tone.
	tone := ""
	if len(concepts.VoiceOverTone) > 0 {
		tone = concepts.VoiceOverTone[0]
	}
	hooks := s.Blueprint.IntroHooks
	if len(hooks) > 2 {
		hooks = hooks[:2]
	}
	voiceovers := make([]audio.VoiceoverAsset, len(hooks))
	for i, hook := range hooks {
		g.Go(func() error {
			asset, err := e.audio.GenerateVoiceover(gctx, hook, "", tone)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				voiceovers[i] = audio.VoiceoverAsset{
					Description: hook,
					Type:        audio.TypeVoiceover,
					Err:         err.Error(),
				}
				return nil
			}
			voiceovers[i] = *asset
			return nil
		})
	}

	// Goroutines report per-asset failures in the assets themselves.
	_ = g.Wait()

	out.GeneratedVoiceovers = voiceovers

	failed := 0
	for _, a := range out.GeneratedMusic {
		if a.Err != "" {
			failed++
		}
	}
	for _, a := range out.GeneratedJingles {
		if a.Err != "" {
			failed++
		}
	}
	for _, a := range out.GeneratedSfx {
		if a.Err != "" {
			failed++
		}
	}
	logging.Studio("Audio Alchemy: %d music, %d jingles, %d sfx, %d voiceovers (%d failed)",
		len(out.GeneratedMusic), len(out.GeneratedJingles), len(out.GeneratedSfx),
		len(out.GeneratedVoiceovers), failed)

	s.Audio = out
	return nil
}
