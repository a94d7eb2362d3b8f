package deepdub

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// VoiceService provides voice asset management.
type VoiceService struct {
	client *Client
}

func newVoiceService(c *Client) *VoiceService {
	return &VoiceService{client: c}
}

// Voice is a voice asset.
type Voice struct {
	VoicePromptID string `json:"voicePromptId,omitempty"`
	SpeakerID     string `json:"speaker_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Title         string `json:"title,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Age           int    `json:"age,omitempty"`
	Locale        string `json:"locale,omitempty"`
	SpeakingStyle string `json:"speaking_style,omitempty"`
	Publish       bool   `json:"publish,omitempty"`
}

// List returns the voices available to the account.
func (s *VoiceService) List(ctx context.Context) ([]Voice, error) {
	var voices []Voice
	if err := s.client.Get(ctx, "/voice", &voices); err != nil {
		return nil, err
	}
	return voices, nil
}

// AddVoiceRequest adds a voice from reference audio.
type AddVoiceRequest struct {
	// Data is the reference audio (required).
	Data *AudioInput `json:"data" yaml:"data"`

	// Name of the voice (required).
	Name string `json:"name" yaml:"name"`

	// Gender must be "male" or "female" (required).
	Gender string `json:"gender" yaml:"gender"`

	// Locale of the voice (required).
	Locale string `json:"locale" yaml:"locale"`

	// Publish makes the voice publicly listed.
	Publish bool `json:"publish,omitempty" yaml:"publish,omitempty"`

	// SpeakingStyle of the voice (default: Neutral).
	SpeakingStyle string `json:"speaking_style,omitempty" yaml:"speaking_style,omitempty"`

	// Age of the voice.
	Age int `json:"age,omitempty" yaml:"age,omitempty"`
}

// Add creates a voice asset from reference audio.
func (s *VoiceService) Add(ctx context.Context, req *AddVoiceRequest) (*Voice, error) {
	if !req.Data.isSet() {
		return nil, contractErrorf("data is required")
	}
	if req.Name == "" {
		return nil, contractErrorf("name is required")
	}
	gender := strings.ToLower(req.Gender)
	if gender != "male" && gender != "female" {
		return nil, contractErrorf("gender must be male or female, got %q", req.Gender)
	}
	if req.Locale == "" {
		return nil, contractErrorf("locale is required")
	}

	data, filename, err := req.Data.encode()
	if err != nil {
		return nil, err
	}

	style := req.SpeakingStyle
	if style == "" {
		style = "Neutral"
	}

	body := map[string]any{
		"name":           req.Name,
		"gender":         gender,
		"age":            req.Age,
		"locale":         req.Locale,
		"publish":        req.Publish,
		"speaking_style": style,
		"speaker_id":     uuid.New().String(),
		"title":          strings.Join([]string{req.Name, gender, style, req.Locale}, "-"),
		"data":           data,
		"filename":       filename,
	}

	var voice Voice
	if err := s.client.Post(ctx, "/voice", body, &voice); err != nil {
		return nil, err
	}
	return &voice, nil
}
