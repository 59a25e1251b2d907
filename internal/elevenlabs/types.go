package elevenlabs

// Default voice settings, matching the provider's recommended starting point.
const (
	DefaultModelID         = "eleven_monolingual_v1"
	DefaultStability       = 0.5
	DefaultSimilarityBoost = 0.75
)

// Speaking rate bounds accepted by the provider.
const (
	MinSpeakingRate = 0.25
	MaxSpeakingRate = 4.0
)

// SpeechRequest describes one text-to-speech generation call.
type SpeechRequest struct {
	// VoiceID selects the provider voice. Required.
	VoiceID string
	// ModelID selects the synthesis model. Defaults to DefaultModelID.
	ModelID string
	// Stability controls delivery variance (0..1). Lower is more expressive.
	Stability float64
	// SimilarityBoost controls closeness to the original voice (0..1).
	SimilarityBoost float64
	// Style exaggerates delivery (0..1).
	Style float64
	// UseSpeakerBoost enables the provider's clarity boost.
	UseSpeakerBoost bool
	// SpeakingRate is the speed multiplier, clamped to [0.25, 4.0].
	SpeakingRate float64
}

// Voice is a provider voice available to the caller.
type Voice struct {
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	PreviewURL  string `json:"preview_url,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// Alignment is the provider's character-level timing data: characters[i]
// is spoken from CharacterStartTimesSeconds[i] to CharacterEndTimesSeconds[i].
type Alignment struct {
	Characters                 []string  `json:"characters"`
	CharacterStartTimesSeconds []float64 `json:"character_start_times_seconds"`
	CharacterEndTimesSeconds   []float64 `json:"character_end_times_seconds"`
}

// voiceSettings is the wire shape of voice tuning parameters.
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed,omitempty"`
}

// speechRequestBody is the wire shape of a text-to-speech request.
type speechRequestBody struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// voicesResponse is the wire shape of the voice listing response.
type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

// timestampsResponse is the wire shape of the with-timestamps synthesis
// response: base64 audio plus character alignment.
type timestampsResponse struct {
	AudioBase64 string     `json:"audio_base64"`
	Alignment   *Alignment `json:"alignment"`
}
