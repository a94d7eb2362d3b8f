package deepdub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestVoiceService_List(t *testing.T) {
	client := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/voice" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"voicePromptId": "vp-1", "name": "Ada", "gender": "female", "locale": "en-US"},
			{"voicePromptId": "vp-2", "name": "Lin", "gender": "male", "locale": "zh-CN"},
		})
	})

	voices, err := client.Voice.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("got %d voices, want 2", len(voices))
	}
	if voices[0].VoicePromptID != "vp-1" || voices[0].Name != "Ada" {
		t.Errorf("voices[0] = %+v", voices[0])
	}
}

func TestVoiceService_Add(t *testing.T) {
	audio := []byte("reference recording")

	client := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/voice" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["data"] != base64.StdEncoding.EncodeToString(audio) {
			t.Error("audio data not base64-encoded")
		}
		if body["gender"] != "female" {
			t.Errorf("gender = %v, want normalized lowercase", body["gender"])
		}
		if body["speaking_style"] != "Neutral" {
			t.Errorf("speaking_style = %v, want default Neutral", body["speaking_style"])
		}
		if body["title"] != "Ada-female-Neutral-en-US" {
			t.Errorf("title = %v", body["title"])
		}
		speakerID, _ := body["speaker_id"].(string)
		if _, err := uuid.Parse(speakerID); err != nil {
			t.Errorf("speaker_id %q is not a UUID", speakerID)
		}
		json.NewEncoder(w).Encode(map[string]any{"voicePromptId": "vp-new", "name": "Ada"})
	})

	voice, err := client.Voice.Add(context.Background(), &AddVoiceRequest{
		Data:   &AudioInput{Bytes: audio},
		Name:   "Ada",
		Gender: "Female",
		Locale: "en-US",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if voice.VoicePromptID != "vp-new" {
		t.Errorf("VoicePromptID = %q", voice.VoicePromptID)
	}
}

func TestVoiceService_AddValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *AddVoiceRequest
	}{
		{"no data", &AddVoiceRequest{Name: "Ada", Gender: "female", Locale: "en-US"}},
		{"no name", &AddVoiceRequest{Data: &AudioInput{Bytes: []byte("x")}, Gender: "female", Locale: "en-US"}},
		{"bad gender", &AddVoiceRequest{Data: &AudioInput{Bytes: []byte("x")}, Name: "Ada", Gender: "robot", Locale: "en-US"}},
		{"no locale", &AddVoiceRequest{Data: &AudioInput{Bytes: []byte("x")}, Name: "Ada", Gender: "female"}},
	}

	client := newTestClient(t, WithBaseURL("http://127.0.0.1:1"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Voice.Add(context.Background(), tt.req)
			if e, ok := AsError(err); !ok || !e.IsContractViolation() {
				t.Errorf("expected contract violation, got %v", err)
			}
		})
	}
}
