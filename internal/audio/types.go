package audio

// AssetType classifies a generated audio asset.
type AssetType string

const (
	TypeMusic     AssetType = "music"
	TypeJingle    AssetType = "jingle"
	TypeSfx       AssetType = "sfx"
	TypeVoiceover AssetType = "voiceover"
)

// MusicAsset is a generated music or jingle snippet.
type MusicAsset struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Type        AssetType `json:"type"`
	AudioURL    string    `json:"audio_url,omitempty"`
	Duration    float64   `json:"duration"`
	Err         string    `json:"error,omitempty"`
}

// SfxAsset is a generated sound effect.
type SfxAsset struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Type        AssetType `json:"type"`
	AudioURL    string    `json:"audio_url,omitempty"`
	Category    string    `json:"category,omitempty"`
	Err         string    `json:"error,omitempty"`
}

// VoiceoverAsset is a synthesized voiceover snippet. The backend has no
// synthesis endpoint yet, so these are produced as local placeholders.
type VoiceoverAsset struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Type        AssetType `json:"type"`
	AudioURL    string    `json:"audio_url,omitempty"`
	Text        string    `json:"text"`
	VoiceUsed   string    `json:"voice_used,omitempty"`
	Emotion     string    `json:"emotion,omitempty"`
	Err         string    `json:"error,omitempty"`
}

// =============================================================================
// WIRE TYPES - AudioCraft backend
// =============================================================================

type generationRequest struct {
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration,omitempty"`
}

type generationResponse struct {
	AudioURL string  `json:"audio_url"`
	Filename string  `json:"filename"`
	Prompt   string  `json:"prompt"`
	Duration float64 `json:"duration"`
}
