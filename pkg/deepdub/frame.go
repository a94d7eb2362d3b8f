package deepdub

import (
	"encoding/base64"
	"encoding/json"
)

// Wire action discriminators.
const (
	actionTTS            = "text-to-speech"
	actionGenderClassify = "gender-classify"
	actionStreamConfig   = "stream-config"
	actionStreamText     = "stream-text"
)

// wireFrame is the JSON shape of an inbound message. Every field is
// optional on the wire.
type wireFrame struct {
	GenerationID string `json:"generationId,omitempty"`
	Data         string `json:"data,omitempty"`
	Index        int    `json:"index,omitempty"`
	IsFinished   bool   `json:"isFinished,omitempty"`
	Error        string `json:"error,omitempty"`
}

// frame is a decoded inbound message: a data chunk, a terminal signal, an
// error signal, or any combination the server packs into one message.
// Audio payloads arrive base64-encoded and are decoded here, before
// routing.
type frame struct {
	generationID string
	data         []byte
	index        int
	isFinished   bool
	errMsg       string

	// raw keeps the full message for consumers that need fields beyond
	// the common set, such as classification results.
	raw json.RawMessage
}

// decodeFrame parses an inbound wire message. A malformed message is a
// protocol violation, fatal to the receive loop.
func decodeFrame(raw []byte) (*frame, error) {
	var wf wireFrame
	if err := json.Unmarshal(raw, &wf); err != nil {
		return nil, protocolError(err, "malformed inbound frame")
	}

	f := &frame{
		generationID: wf.GenerationID,
		index:        wf.Index,
		isFinished:   wf.IsFinished,
		errMsg:       wf.Error,
		raw:          json.RawMessage(raw),
	}

	if wf.Data != "" {
		data, err := base64.StdEncoding.DecodeString(wf.Data)
		if err != nil {
			return nil, protocolError(err, "malformed frame payload")
		}
		f.data = data
	}

	return f, nil
}
