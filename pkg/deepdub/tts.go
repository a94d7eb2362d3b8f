package deepdub

import (
	"context"
	"net/http"
)

// TTSService provides one-shot text-to-speech synthesis over REST.
type TTSService struct {
	client *Client
}

func newTTSService(c *Client) *TTSService {
	return &TTSService{client: c}
}

// TTSRequest is a one-shot synthesis request. The response body is the
// complete encoded audio.
type TTSRequest struct {
	// Text to synthesize (required).
	Text string `json:"text" yaml:"text"`

	// Model identifier (default: dd-etts-2.5).
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Locale such as en-US (default: en-US).
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`

	// VoicePromptID selects a stored voice. One of VoicePromptID or
	// VoiceReference is required.
	VoicePromptID string `json:"voice_prompt_id,omitempty" yaml:"voice_prompt_id,omitempty"`

	// VoiceReference is reference audio for an ad-hoc voice.
	VoiceReference *AudioInput `json:"voice_reference,omitempty" yaml:"voice_reference,omitempty"`

	// Prosody controls. Tempo and Duration are mutually exclusive.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Variance    float64 `json:"variance,omitempty" yaml:"variance,omitempty"`
	Duration    float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	Tempo       float64 `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	Seed        int     `json:"seed,omitempty" yaml:"seed,omitempty"`
	PromptBoost bool    `json:"prompt_boost,omitempty" yaml:"prompt_boost,omitempty"`

	// Accent blends a target accent in. All-or-nothing triple.
	Accent *AccentControl `json:"accent,omitempty" yaml:"accent,omitempty"`

	// SampleRate in Hz, from {8000,16000,22050,24000,44100,48000}.
	SampleRate int `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`

	// Format of the returned audio (default: mp3). The REST endpoint has
	// no plain wav variant; headerless-wav returns wav data with the
	// 68-byte container header already absent.
	Format Format `json:"format,omitempty" yaml:"format,omitempty"`
}

var restFormats = []Format{FormatHeaderlessWAV, FormatMP3, FormatOpus, FormatMulaw}

func (r *TTSRequest) validate() error {
	if r.Text == "" {
		return contractErrorf("text is required")
	}
	if r.Tempo != 0 && r.Duration != 0 {
		return contractErrorf("tempo and duration are mutually exclusive")
	}
	if r.VoicePromptID == "" && !r.VoiceReference.isSet() {
		return contractErrorf("either voice_reference or voice_prompt_id must be provided")
	}
	if err := validateModel(r.Model); err != nil {
		return err
	}
	if err := validateFormat(r.Format, restFormats); err != nil {
		return err
	}
	if err := validateSampleRate(r.SampleRate); err != nil {
		return err
	}
	return validateAccent(r.Accent)
}

// Synthesize performs synchronous one-shot synthesis and returns the
// complete encoded audio.
func (s *TTSService) Synthesize(ctx context.Context, req *TTSRequest) ([]byte, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	locale := req.Locale
	if locale == "" {
		locale = "en-US"
	}
	format := req.Format
	if format == "" {
		format = FormatMP3
	}

	body := map[string]any{
		"targetText": req.Text,
		"model":      model,
		"locale":     locale,
		"format":     format,
	}
	if req.VoicePromptID != "" {
		body["voicePromptId"] = req.VoicePromptID
	}
	if req.VoiceReference.isSet() {
		data, _, err := req.VoiceReference.encode()
		if err != nil {
			return nil, err
		}
		body["voiceReference"] = data
	}
	if req.Temperature != 0 {
		body["temperature"] = req.Temperature
	}
	if req.Variance != 0 {
		body["variance"] = req.Variance
	}
	if req.Duration != 0 {
		body["duration"] = req.Duration
	}
	if req.Tempo != 0 {
		body["tempo"] = req.Tempo
	}
	if req.Seed != 0 {
		body["seed"] = req.Seed
	}
	if req.PromptBoost {
		body["promptBoost"] = true
	}
	if req.Accent != nil {
		body["accentControl"] = map[string]any{
			"accentBaseLocale": req.Accent.BaseLocale,
			"accentLocale":     req.Accent.Locale,
			"accentRatio":      req.Accent.Ratio,
		}
	}
	if req.SampleRate != 0 {
		body["sampleRate"] = req.SampleRate
	}

	audio, _, err := s.client.doRequest(ctx, http.MethodPost, "/tts", body)
	return audio, err
}

// TTSRetroRequest is a retroactive synthesis request against a stored
// voice prompt.
type TTSRetroRequest struct {
	Text          string `json:"text" yaml:"text"`
	VoicePromptID string `json:"voice_prompt_id" yaml:"voice_prompt_id"`
	Model         string `json:"model,omitempty" yaml:"model,omitempty"`
	Locale        string `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// SynthesizeRetro performs retroactive synthesis.
func (s *TTSService) SynthesizeRetro(ctx context.Context, req *TTSRetroRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, contractErrorf("text is required")
	}
	if req.VoicePromptID == "" {
		return nil, contractErrorf("voice_prompt_id is required")
	}
	if err := validateModel(req.Model); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	locale := req.Locale
	if locale == "" {
		locale = "en-US"
	}

	body := map[string]any{
		"targetText":    req.Text,
		"model":         model,
		"voicePromptId": req.VoicePromptID,
		"locale":        locale,
	}

	audio, _, err := s.client.doRequest(ctx, http.MethodPost, "/tts/retroactive", body)
	return audio, err
}
