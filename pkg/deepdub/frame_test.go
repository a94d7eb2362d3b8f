package deepdub

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestDecodeFrame_DataChunk(t *testing.T) {
	audio := []byte{0x01, 0x02, 0x03, 0x04}
	raw := []byte(`{"generationId":"gen-1","data":"` + base64.StdEncoding.EncodeToString(audio) + `","index":2}`)

	f, err := decodeFrame(raw)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if f.generationID != "gen-1" {
		t.Errorf("generationID = %q, want %q", f.generationID, "gen-1")
	}
	if !bytes.Equal(f.data, audio) {
		t.Errorf("data = %v, want %v", f.data, audio)
	}
	if f.index != 2 {
		t.Errorf("index = %d, want 2", f.index)
	}
	if f.isFinished || f.errMsg != "" {
		t.Errorf("unexpected terminal state: finished=%v err=%q", f.isFinished, f.errMsg)
	}
}

func TestDecodeFrame_TerminalAndError(t *testing.T) {
	f, err := decodeFrame([]byte(`{"generationId":"gen-1","isFinished":true}`))
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if !f.isFinished {
		t.Error("isFinished should be true")
	}

	f, err = decodeFrame([]byte(`{"error":"quota exceeded"}`))
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if f.errMsg != "quota exceeded" {
		t.Errorf("errMsg = %q, want %q", f.errMsg, "quota exceeded")
	}
	if f.generationID != "" {
		t.Errorf("generationID = %q, want empty", f.generationID)
	}
}

func TestDecodeFrame_MalformedJSON(t *testing.T) {
	_, err := decodeFrame([]byte(`{"generationId":`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	e, ok := AsError(err)
	if !ok || !e.IsProtocolViolation() {
		t.Errorf("expected protocol violation, got %v", err)
	}
}

func TestDecodeFrame_BadBase64(t *testing.T) {
	_, err := decodeFrame([]byte(`{"data":"not!!!base64"}`))
	if err == nil {
		t.Fatal("expected error for invalid base64 payload")
	}
	e, ok := AsError(err)
	if !ok || !e.IsProtocolViolation() {
		t.Errorf("expected protocol violation, got %v", err)
	}
}

func TestDecodeFrame_KeepsRaw(t *testing.T) {
	raw := []byte(`{"predicted_gender":"female","confidence":0.97}`)
	f, err := decodeFrame(raw)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if string(f.raw) != string(raw) {
		t.Errorf("raw = %s, want %s", f.raw, raw)
	}
}
