package deepdub

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func testStreamConfig() *StreamConfig {
	return &StreamConfig{
		Model:         ModelETTS25,
		Locale:        "en-US",
		VoicePromptID: "prompt-1",
		Format:        FormatMP3,
	}
}

// ackConfig reads the configuration message on the fake server side and
// acknowledges it.
func ackConfig(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	msg := readJSON(t, ws)
	if msg["action"] != actionStreamConfig {
		t.Errorf("action = %v, want %v", msg["action"], actionStreamConfig)
	}
	sendFrame(t, ws, map[string]any{})
	return msg
}

func TestConnectStream_ConfigExchange(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		msg := ackConfig(t, ws)
		cfg, _ := msg["config"].(map[string]any)
		if cfg == nil {
			t.Fatal("config payload missing")
		}
		if cfg["model"] != ModelETTS25 {
			t.Errorf("model = %v", cfg["model"])
		}
		if cfg["voicePromptId"] != "prompt-1" {
			t.Errorf("voicePromptId = %v", cfg["voicePromptId"])
		}
		if cfg["sampleRate"] != float64(16000) {
			t.Errorf("sampleRate = %v, want default 16000", cfg["sampleRate"])
		}
		closeCleanly(ws)
	})

	client := newTestClient(t, WithStreamingURL(url))
	stream, err := client.ConnectStream(context.Background(), testStreamConfig())
	if err != nil {
		t.Fatalf("ConnectStream: %v", err)
	}
	stream.Close()
}

func TestConnectStream_ConfigRejected(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		readJSON(t, ws)
		sendFrame(t, ws, map[string]any{"error": "unknown voice prompt"})
		closeCleanly(ws)
	})

	client := newTestClient(t, WithStreamingURL(url))
	_, err := client.ConnectStream(context.Background(), testStreamConfig())
	e, ok := AsError(err)
	if !ok || !e.IsApplicationError() {
		t.Fatalf("expected application error, got %v", err)
	}
	if e.Message != "unknown voice prompt" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestStreamConn_SendOrderAndChunks(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		ackConfig(t, ws)

		// Text fragments must arrive in send order.
		for i, want := range []string{"Hello, ", "world", "!"} {
			msg := readJSON(t, ws)
			if msg["action"] != actionStreamText {
				t.Errorf("action = %v", msg["action"])
			}
			data, _ := msg["data"].(map[string]any)
			if data["text"] != want {
				t.Errorf("fragment %d = %v, want %q", i, data["text"], want)
			}
		}

		sendFrame(t, ws, dataFrame("", []byte("audio-1")))
		sendFrame(t, ws, dataFrame("", []byte("audio-2")))
		closeCleanly(ws)
	})

	client := newTestClient(t, WithStreamingURL(url))
	stream, err := client.ConnectStream(context.Background(), testStreamConfig())
	if err != nil {
		t.Fatalf("ConnectStream: %v", err)
	}
	defer stream.Close()

	for _, fragment := range []string{"Hello, ", "world", "!"} {
		if err := stream.SendText(context.Background(), fragment); err != nil {
			t.Fatalf("SendText(%q): %v", fragment, err)
		}
	}

	var got [][]byte
	for chunk, err := range stream.Chunks(context.Background(), 0) {
		if err != nil {
			t.Fatalf("Chunks: %v", err)
		}
		got = append(got, chunk)
	}
	want := [][]byte{[]byte("audio-1"), []byte("audio-2")}
	if mustJSON(t, got) != mustJSON(t, want) {
		t.Errorf("chunks = %q, want %q", got, want)
	}
}

func TestStreamConn_StripsWavHeader(t *testing.T) {
	payload := []byte("pcm-samples")
	header := bytes.Repeat([]byte{0x11}, wavHeaderLen)
	streamBytes := append(append([]byte{}, header...), payload...)

	url := newWSServer(t, func(ws *websocket.Conn) {
		msg := ackConfig(t, ws)
		cfg, _ := msg["config"].(map[string]any)
		if cfg["format"] != string(FormatWAV) {
			t.Errorf("wire format = %v, want wav", cfg["format"])
		}
		readJSON(t, ws) // text
		// Header split across the first two chunks.
		sendFrame(t, ws, dataFrame("", streamBytes[:30]))
		sendFrame(t, ws, dataFrame("", streamBytes[30:]))
		closeCleanly(ws)
	})

	config := testStreamConfig()
	config.Format = FormatHeaderlessWAV
	client := newTestClient(t, WithStreamingURL(url))
	stream, err := client.ConnectStream(context.Background(), config)
	if err != nil {
		t.Fatalf("ConnectStream: %v", err)
	}
	defer stream.Close()

	if err := stream.SendText(context.Background(), "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}

	var audio []byte
	for chunk, err := range stream.Chunks(context.Background(), 0) {
		if err != nil {
			t.Fatalf("Chunks: %v", err)
		}
		audio = append(audio, chunk...)
	}
	if !bytes.Equal(audio, payload) {
		t.Errorf("audio = %q, want %q", audio, payload)
	}
}

func TestStreamConn_IdleIndicator(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		ackConfig(t, ws)
		sendFrame(t, ws, dataFrame("", []byte("before")))
		sendFrame(t, ws, map[string]any{"isFinished": true})
		sendFrame(t, ws, dataFrame("", []byte("after")))
		closeCleanly(ws)
	})

	client := newTestClient(t, WithStreamingURL(url))
	stream, err := client.ConnectStream(context.Background(), testStreamConfig())
	if err != nil {
		t.Fatalf("ConnectStream: %v", err)
	}
	defer stream.Close()

	ev, err := stream.Recv(context.Background())
	if err != nil || string(ev.Audio) != "before" {
		t.Fatalf("Recv 1 = %+v, %v", ev, err)
	}
	// The pause indicator does not end the stream.
	ev, err = stream.Recv(context.Background())
	if err != nil || !ev.Idle {
		t.Fatalf("Recv 2 = %+v, %v, want idle event", ev, err)
	}
	ev, err = stream.Recv(context.Background())
	if err != nil || string(ev.Audio) != "after" {
		t.Fatalf("Recv 3 = %+v, %v", ev, err)
	}
}

func TestStreamConn_IdleTimeoutEndsIterationOnly(t *testing.T) {
	release := make(chan struct{})
	url := newWSServer(t, func(ws *websocket.Conn) {
		ackConfig(t, ws)
		readJSON(t, ws) // first text
		sendFrame(t, ws, dataFrame("", []byte("first")))

		<-release // silence until the consumer times out

		readJSON(t, ws) // second text
		sendFrame(t, ws, dataFrame("", []byte("second")))
		closeCleanly(ws)
	})

	client := newTestClient(t, WithStreamingURL(url))
	stream, err := client.ConnectStream(context.Background(), testStreamConfig())
	if err != nil {
		t.Fatalf("ConnectStream: %v", err)
	}
	defer stream.Close()

	if err := stream.SendText(context.Background(), "one"); err != nil {
		t.Fatalf("SendText: %v", err)
	}

	var got [][]byte
	for chunk, err := range stream.Chunks(context.Background(), 100*time.Millisecond) {
		if err != nil {
			t.Fatalf("Chunks: %v", err)
		}
		got = append(got, chunk)
	}
	if len(got) != 1 || string(got[0]) != "first" {
		t.Fatalf("chunks = %q, want [first]", got)
	}

	// The timeout ended consumption, not the stream.
	close(release)
	if err := stream.SendText(context.Background(), "two"); err != nil {
		t.Fatalf("SendText after idle timeout: %v", err)
	}
	ev, err := stream.Recv(context.Background())
	if err != nil || string(ev.Audio) != "second" {
		t.Fatalf("Recv after idle timeout = %+v, %v", ev, err)
	}
}

func TestStreamConn_ErrorFrameIsFatal(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		ackConfig(t, ws)
		sendFrame(t, ws, map[string]any{"error": "synthesis backend unavailable"})
		closeCleanly(ws)
	})

	client := newTestClient(t, WithStreamingURL(url))
	stream, err := client.ConnectStream(context.Background(), testStreamConfig())
	if err != nil {
		t.Fatalf("ConnectStream: %v", err)
	}
	defer stream.Close()

	_, gotErr := stream.Recv(context.Background())
	e, ok := AsError(gotErr)
	if !ok || !e.IsApplicationError() {
		t.Fatalf("expected application error, got %v", gotErr)
	}

	// The whole session is down after a stream error.
	if err := stream.SendText(context.Background(), "more"); err == nil {
		t.Error("expected SendText to fail after stream error")
	} else if e, ok := AsError(err); !ok || !e.IsContractViolation() {
		t.Errorf("expected contract violation, got %v", err)
	}
}

func TestStreamConn_PeerCloseDrainsThenEOF(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		ackConfig(t, ws)
		sendFrame(t, ws, dataFrame("", []byte("tail")))
		closeCleanly(ws)
	})

	client := newTestClient(t, WithStreamingURL(url))
	stream, err := client.ConnectStream(context.Background(), testStreamConfig())
	if err != nil {
		t.Fatalf("ConnectStream: %v", err)
	}
	defer stream.Close()

	// Give the pump time to buffer the chunk and observe the close.
	time.Sleep(50 * time.Millisecond)

	ev, err := stream.Recv(context.Background())
	if err != nil || string(ev.Audio) != "tail" {
		t.Fatalf("Recv = %+v, %v, want buffered chunk before EOF", ev, err)
	}

	var count int
	for range stream.Chunks(context.Background(), 0) {
		count++
	}
	if count != 0 {
		t.Errorf("iterated %d events after close, want clean end", count)
	}
}

func TestStreamConfig_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StreamConfig)
	}{
		{"no model", func(c *StreamConfig) { c.Model = "" }},
		{"no locale", func(c *StreamConfig) { c.Locale = "" }},
		{"no voice prompt", func(c *StreamConfig) { c.VoicePromptID = "" }},
		{"bad sample rate", func(c *StreamConfig) { c.SampleRate = 12345 }},
		{"partial accent", func(c *StreamConfig) { c.Accent = &AccentControl{Locale: "fr-FR"} }},
	}

	client := newTestClient(t, WithStreamingURL("ws://127.0.0.1:1"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testStreamConfig()
			tt.mutate(config)
			_, err := client.ConnectStream(context.Background(), config)
			if e, ok := AsError(err); !ok || !e.IsContractViolation() {
				t.Errorf("expected contract violation, got %v", err)
			}
		})
	}
}
