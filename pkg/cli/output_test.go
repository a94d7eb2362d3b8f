package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := Output(map[string]any{"voice": "vp-1", "locale": "en-US"}, OutputOptions{
		Format: FormatJSON,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got["voice"] != "vp-1" {
		t.Errorf("voice = %v", got["voice"])
	}
}

func TestOutput_YAMLDefault(t *testing.T) {
	var buf bytes.Buffer
	err := Output(map[string]string{"name": "Ada"}, OutputOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !strings.Contains(buf.String(), "name: Ada") {
		t.Errorf("yaml output = %q", buf.String())
	}
}

func TestOutput_Raw(t *testing.T) {
	var buf bytes.Buffer
	err := Output([]byte{0x01, 0x02}, OutputOptions{Format: FormatRaw, Writer: &buf})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x01, 0x02}) {
		t.Errorf("raw output = %v", buf.Bytes())
	}
}

func TestOutput_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	err := Output(map[string]int{"n": 1}, OutputOptions{Format: FormatJSON, File: path})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if !strings.Contains(string(data), `"n": 1`) {
		t.Errorf("file content = %q", data)
	}
}

func TestOutput_UnsupportedFormat(t *testing.T) {
	err := Output("x", OutputOptions{Format: "xml", Writer: &bytes.Buffer{}})
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestOutputBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.mp3")
	if err := OutputBytes([]byte("mp3"), path); err != nil {
		t.Fatalf("OutputBytes: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "mp3" {
		t.Errorf("file content = %q", data)
	}

	if err := OutputBytes([]byte("x"), ""); err == nil {
		t.Error("expected error for empty path")
	}
}
