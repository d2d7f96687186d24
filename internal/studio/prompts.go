package studio

import (
	"fmt"
	"strings"
)

// System instructions per step.
const (
	visionSystem    = "You are an AI co-producer for viral content strategies."
	signatureSystem = "You are an AI branding expert for luxury and modern aesthetics."
	blueprintSystem = "You are an AI scriptwriter and engagement strategist."
	audioSystem     = "You are an AI audio director for digital content."
)

func visionPrompt(s *Session) string {
	topic := s.Topic
	if topic == "" {
		topic = "General channel content"
	}
	style := s.Style
	if style == "" {
		style = "Versatile"
	}
	return fmt.Sprintf(`For a content creator with this profile:
Niche: %s
Video Topic Idea (optional): %s
Desired Content Style: %s
Generate JSON for: titles (3), unique content angles (2-3), target audience persona.
{ "titles": [], "angles": [], "audiencePersona": "" }`, s.Niche, topic, style)
}

func signaturePrompt(s *Session) string {
	return fmt.Sprintf(`Based on vision (Titles: %s, Audience: %s), Niche: %s.
Suggest JSON for: color palettes (2 options, name & 3-4 hex), font pairings (2 options, heading/body/vibe), thumbnail concepts (2 text descriptions).
{ "colorPalettes": [], "fontPairings": [], "thumbnailConcepts": [] }`,
		strings.Join(s.Vision.Titles, ", "), s.Vision.AudiencePersona, s.Niche)
}

func blueprintPrompt(s *Session) string {
	topic := s.Topic
	if topic == "" {
		topic = s.Niche
	}
	palette := ""
	if len(s.Signature.ColorPalettes) > 0 {
		palette = s.Signature.ColorPalettes[0].Name
	}
	return fmt.Sprintf(`Vision (Titles: %s, Topic: %s), Branding (Palette: %s).
Generate JSON for content blueprint: key talking points (3-5), intro hooks (2-3), CTA phrases (2-3), interactive ideas (1-2).
{ "talkingPoints": [], "introHooks": [], "ctaPhrases": [], "interactiveIdeas": [] }`,
		strings.Join(s.Vision.Titles, ", "), topic, palette)
}

func audioConceptsPrompt(s *Session) string {
	return fmt.Sprintf(`Project (Niche: %s, Topic: %s, Style: %s, Points: %s).
Generate JSON for: music style suggestions (2 distinct styles, e.g. "Uplifting Electronic", "Chill Lo-fi Hip Hop"), jingle ideas (1-2 short concepts), SFX concepts (2-3 relevant sounds), voiceover tone (1-2 suggestions).
{ "musicStyleSuggestions": [], "jingleIdeas": [], "sfxConcepts": [], "voiceOverTone": [] }`,
		s.Niche, s.Topic, s.Style, strings.Join(s.Blueprint.TalkingPoints, "; "))
}
