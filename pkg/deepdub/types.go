package deepdub

import (
	"encoding/base64"
	"os"
	"slices"

	"github.com/google/uuid"
)

// Format is an audio output format.
type Format string

const (
	FormatWAV           Format = "wav"
	FormatHeaderlessWAV Format = "headerless-wav"
	FormatMP3           Format = "mp3"
	FormatOpus          Format = "opus"
	FormatMulaw         Format = "mulaw"
	FormatS16LE         Format = "s16le"
)

// wavHeaderLen is the fixed container header (0x44 bytes) leading every
// wav-encoded audio stream. Headerless variants drop it from the head of
// the reconstructed stream.
const wavHeaderLen = 0x44

// Known model identifiers.
const (
	ModelETTS30 = "dd-etts-3.0"
	ModelETTS25 = "dd-etts-2.5"
	ModelETTS11 = "dd-etts-1.1"

	// DefaultModel is used when a request leaves Model empty.
	DefaultModel = ModelETTS25
)

var knownModels = []string{ModelETTS30, ModelETTS25, ModelETTS11}

// validSampleRates is the enumerated set accepted by the API.
var validSampleRates = []int{8000, 16000, 22050, 24000, 44100, 48000}

// AccentControl blends the accent of a target locale into synthesis.
// All three fields must be set; a partial triple is a contract violation.
type AccentControl struct {
	// BaseLocale is the locale the voice natively speaks.
	BaseLocale string `json:"accentBaseLocale" yaml:"base_locale"`

	// Locale is the locale whose accent to blend in.
	Locale string `json:"accentLocale" yaml:"locale"`

	// Ratio is the blend ratio, 0 < ratio <= 1.
	Ratio float64 `json:"accentRatio" yaml:"ratio"`
}

// AudioInput is audio supplied to a request as raw bytes, a base64-encoded
// string, or a path to a file on disk. Exactly one field should be set.
type AudioInput struct {
	// Bytes is raw audio data.
	Bytes []byte `json:"-" yaml:"-"`

	// Base64 is base64-encoded audio data.
	Base64 string `json:"base64,omitempty" yaml:"base64,omitempty"`

	// Path is a path to an audio file.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// encode normalizes the input to a base64 payload plus a filename.
// Inputs without an inherent name get a generated one.
func (a *AudioInput) encode() (data, filename string, err error) {
	switch {
	case a.Path != "":
		raw, err := os.ReadFile(a.Path)
		if err != nil {
			return "", "", wrapError(err, "read audio file")
		}
		return base64.StdEncoding.EncodeToString(raw), a.Path, nil
	case len(a.Bytes) > 0:
		return base64.StdEncoding.EncodeToString(a.Bytes), uuid.New().String(), nil
	case a.Base64 != "":
		if _, err := base64.StdEncoding.DecodeString(a.Base64); err != nil {
			return "", "", contractErrorf("string audio data must be base64 encoded")
		}
		return a.Base64, uuid.New().String(), nil
	}
	return "", "", contractErrorf("audio input is empty")
}

// isSet reports whether any input field is populated.
func (a *AudioInput) isSet() bool {
	return a != nil && (len(a.Bytes) > 0 || a.Base64 != "" || a.Path != "")
}

// validateModel accepts known dd- models and any custom model name.
func validateModel(model string) error {
	if model == "" || slices.Contains(knownModels, model) {
		return nil
	}
	if len(model) >= 3 && model[:3] == "dd-" {
		return contractErrorf("invalid model %q", model)
	}
	return nil
}

// validateSampleRate accepts zero (server default) or a rate from the
// enumerated set.
func validateSampleRate(rate int) error {
	if rate == 0 || slices.Contains(validSampleRates, rate) {
		return nil
	}
	return contractErrorf("invalid sample rate %d, must be one of %v", rate, validSampleRates)
}

// validateAccent enforces the all-or-nothing rule on the accent triple.
func validateAccent(accent *AccentControl) error {
	if accent == nil {
		return nil
	}
	if accent.BaseLocale == "" || accent.Locale == "" || accent.Ratio == 0 {
		return contractErrorf("accent control requires base locale, locale and ratio together")
	}
	return nil
}

// validateFormat checks the format against the allowed set for a surface.
func validateFormat(format Format, allowed []Format) error {
	if format == "" || slices.Contains(allowed, format) {
		return nil
	}
	return contractErrorf("invalid format %q", format)
}

// resolveGenerationID validates a caller-supplied generation ID or
// generates a fresh one. A malformed supplied ID is a contract violation.
func resolveGenerationID(id string) (string, error) {
	if id == "" {
		return uuid.New().String(), nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", contractErrorf("invalid UUID string for generation_id: %s", id)
	}
	return id, nil
}
