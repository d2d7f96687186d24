package studio

import "pegasusedge/internal/audio"

// Step output shapes. JSON tags match the field names the generation
// prompts ask the model for, so a well-formed response decodes directly.

// VisionOutput is the result of The Vision step.
type VisionOutput struct {
	Titles          []string `json:"titles"`
	Angles          []string `json:"angles"`
	AudiencePersona string   `json:"audiencePersona"`
}

// ColorPalette is one palette option in the visual signature.
type ColorPalette struct {
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

// FontPairing is one heading/body font combination.
type FontPairing struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
	Vibe    string `json:"vibe"`
}

// SignatureOutput is the result of the Visual Signature step.
type SignatureOutput struct {
	ColorPalettes     []ColorPalette `json:"colorPalettes"`
	FontPairings      []FontPairing  `json:"fontPairings"`
	ThumbnailConcepts []string       `json:"thumbnailConcepts"`
}

// BlueprintOutput is the result of the Content Blueprint step.
type BlueprintOutput struct {
	TalkingPoints    []string `json:"talkingPoints"`
	IntroHooks       []string `json:"introHooks"`
	CTAPhrases       []string `json:"ctaPhrases"`
	InteractiveIdeas []string `json:"interactiveIdeas"`
}

// AudioOutput is the result of the Audio Alchemy step: textual concepts
// from the language model plus rendered assets from the audio backend.
// A failed asset carries its error in the asset itself; it never fails
// the step or its siblings.
type AudioOutput struct {
	MusicStyleSuggestions []string `json:"musicStyleSuggestions"`
	JingleIdeas           []string `json:"jingleIdeas"`
	SfxConcepts           []string `json:"sfxConcepts"`
	VoiceOverTone         []string `json:"voiceOverTone"`

	GeneratedMusic      []audio.MusicAsset     `json:"generatedMusic,omitempty"`
	GeneratedJingles    []audio.MusicAsset     `json:"generatedJingles,omitempty"`
	GeneratedSfx        []audio.SfxAsset       `json:"generatedSfx,omitempty"`
	GeneratedVoiceovers []audio.VoiceoverAsset `json:"generatedVoiceovers,omitempty"`
}

// Sentinel fallbacks keep every pane renderable when a model response
// does not parse. The wizard still advances; the user can go back and
// regenerate the step.

func visionFallback() VisionOutput {
	return VisionOutput{
		Titles:          []string{"Title generation failed"},
		Angles:          []string{"Angle generation failed"},
		AudiencePersona: "Persona generation failed",
	}
}

func signatureFallback() SignatureOutput {
	return SignatureOutput{
		ColorPalettes:     []ColorPalette{{Name: "Fallback Palette", Colors: []string{"#000000"}}},
		FontPairings:      []FontPairing{{Heading: "Fallback", Body: "Fallback", Vibe: "unavailable"}},
		ThumbnailConcepts: []string{"Thumbnail concept generation failed"},
	}
}

func blueprintFallback() BlueprintOutput {
	return BlueprintOutput{
		TalkingPoints:    []string{"Talking point generation failed"},
		IntroHooks:       []string{"Intro hook generation failed"},
		CTAPhrases:       []string{"CTA generation failed"},
		InteractiveIdeas: []string{"Interactive idea generation failed"},
	}
}

func audioFallback() AudioOutput {
	return AudioOutput{
		MusicStyleSuggestions: []string{"Music style suggestion failed"},
		JingleIdeas:           []string{"Jingle idea generation failed"},
		SfxConcepts:           []string{"SFX concept generation failed"},
		VoiceOverTone:         []string{"Voiceover tone suggestion failed"},
	}
}
