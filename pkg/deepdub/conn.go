package deepdub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is a multiplexed WebSocket connection. Several generations and
// classification calls can run on it concurrently; a background receive
// loop demultiplexes inbound frames by generation ID.
//
// The send path is safe for concurrent use. A Conn cannot be reused after
// Close.
type Conn struct {
	client *Client
	ws     *websocket.Conn
	router *router

	writeMu sync.Mutex
	defMu   sync.Mutex // serializes default-mailbox waiters

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Connect opens a multiplexed WebSocket connection and starts its receive
// loop. The caller owns the connection and must Close it; Close waits for
// the loop to stop and surfaces any error it accumulated.
func (c *Client) Connect(ctx context.Context) (*Conn, error) {
	ws, err := c.dialWebSocket(ctx, c.config.wsURL)
	if err != nil {
		return nil, err
	}

	conn := &Conn{
		client: c,
		ws:     ws,
		router: newRouter(),
	}
	go conn.router.run(ws)

	return conn, nil
}

// dialWebSocket dials a WebSocket endpoint with auth headers.
func (c *Client) dialWebSocket(ctx context.Context, url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.timeout,
	}

	ws, resp, err := dialer.DialContext(ctx, url, c.authHeaders())
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			return nil, transportError(err,
				fmt.Sprintf("websocket connect failed: status=%s, body=%s", resp.Status, string(body)))
		}
		return nil, transportError(err, "websocket connect failed")
	}
	return ws, nil
}

// Close closes the connection, waits for the receive loop to observe the
// close, and returns any error the loop accumulated. A clean close
// returns nil. Close is idempotent.
func (conn *Conn) Close() error {
	conn.closeOnce.Do(func() {
		conn.closed.Store(true)
		conn.router.markLocalClose()

		// Close handshake first, so the peer sees a normal closure. A
		// hard close follows regardless of the handshake outcome.
		conn.writeMu.Lock()
		conn.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.writeMu.Unlock()

		select {
		case <-conn.router.done:
		case <-time.After(5 * time.Second):
		}
		conn.ws.Close()
		<-conn.router.done

		conn.closeErr = conn.router.terminalErr()
	})
	return conn.closeErr
}

// send writes one JSON message. Sends after Close fail without touching
// the network.
func (conn *Conn) send(v any) error {
	if conn.closed.Load() {
		return contractErrorf("connection is closed")
	}

	conn.writeMu.Lock()
	defer conn.writeMu.Unlock()

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		if raw, err := json.Marshal(v); err == nil {
			msg := string(raw)
			if len(msg) > 500 {
				msg = msg[:500] + "..."
			}
			slog.Debug("deepdub: sending message", "content", msg)
		}
	}

	if err := conn.ws.WriteJSON(v); err != nil {
		return transportError(err, "send request")
	}
	return nil
}

// SynthesizeRequest is a request for one TTS generation on a multiplexed
// connection.
type SynthesizeRequest struct {
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

	// Format of yielded chunks (default: wav). FormatHeaderlessWAV
	// requests wav on the wire and strips the 68-byte container header
	// from the head of the reconstructed stream.
	Format Format `json:"format,omitempty" yaml:"format,omitempty"`

	// TargetGender converts the voice gender ("male" or "female").
	TargetGender string `json:"target_gender,omitempty" yaml:"target_gender,omitempty"`

	// GenerationID correlates frames with this generation. Generated
	// when empty; a supplied value must be a valid UUID.
	GenerationID string `json:"generation_id,omitempty" yaml:"generation_id,omitempty"`

	// Extra fields are passed through on the wire unmodified.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

var synthesizeFormats = []Format{FormatWAV, FormatHeaderlessWAV, FormatMP3, FormatOpus, FormatMulaw}

func (r *SynthesizeRequest) validate() error {
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
	if err := validateFormat(r.Format, synthesizeFormats); err != nil {
		return err
	}
	if err := validateSampleRate(r.SampleRate); err != nil {
		return err
	}
	return validateAccent(r.Accent)
}

// Generation is one logical TTS exchange multiplexed on a Conn. It owns a
// read view of its mailbox; chunks are consumed through Chunks.
type Generation struct {
	id    string
	box   *mailbox
	strip int
}

// ID returns the generation's correlation identifier.
func (g *Generation) ID() string {
	return g.id
}

// Synthesize validates the request, registers a mailbox for its
// generation ID and sends exactly one request frame. The send happens
// here, not on first consumption, so ordering across concurrently opened
// generations matches call order.
func (conn *Conn) Synthesize(ctx context.Context, req *SynthesizeRequest) (*Generation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	generationID, err := resolveGenerationID(req.GenerationID)
	if err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = FormatWAV
	}
	strip := 0
	wireFormat := format
	if format == FormatHeaderlessWAV {
		wireFormat = FormatWAV
		strip = wavHeaderLen
	}

	msg, err := buildTTSMessage(req, generationID, wireFormat)
	if err != nil {
		return nil, err
	}

	// Register before sending so no response frame can slip past.
	box := conn.router.mailbox(generationID)

	if err := conn.send(msg); err != nil {
		return nil, err
	}

	return &Generation{id: generationID, box: box, strip: strip}, nil
}

// buildTTSMessage builds the text-to-speech wire message.
func buildTTSMessage(req *SynthesizeRequest, generationID string, wireFormat Format) (map[string]any, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	locale := req.Locale
	if locale == "" {
		locale = "en-US"
	}

	msg := map[string]any{
		"action":       actionTTS,
		"generationId": generationID,
		"targetText":   req.Text,
		"model":        model,
		"locale":       locale,
		"format":       wireFormat,
	}

	if req.VoicePromptID != "" {
		msg["voicePromptId"] = req.VoicePromptID
	}
	if req.VoiceReference.isSet() {
		data, _, err := req.VoiceReference.encode()
		if err != nil {
			return nil, err
		}
		msg["voiceReference"] = data
	}
	if req.Temperature != 0 {
		msg["temperature"] = req.Temperature
	}
	if req.Variance != 0 {
		msg["variance"] = req.Variance
	}
	if req.Duration != 0 {
		msg["duration"] = req.Duration
	}
	if req.Tempo != 0 {
		msg["tempo"] = req.Tempo
	}
	if req.Seed != 0 {
		msg["seed"] = req.Seed
	}
	if req.PromptBoost {
		msg["promptBoost"] = true
	}
	if req.Accent != nil {
		msg["accentControl"] = map[string]any{
			"accentBaseLocale": req.Accent.BaseLocale,
			"accentLocale":     req.Accent.Locale,
			"accentRatio":      req.Accent.Ratio,
		}
	}
	if req.SampleRate != 0 {
		msg["sampleRate"] = req.SampleRate
	}
	if req.TargetGender != "" {
		msg["targetGender"] = req.TargetGender
	}
	for k, v := range req.Extra {
		msg[k] = v
	}

	return msg, nil
}

// Chunks returns the generation's ordered, finite sequence of audio
// chunks. The sequence ends cleanly at the terminal signal, and with an
// error on a server-reported failure, a protocol violation or a
// disconnect. A frame carrying both a final chunk and the terminal signal
// yields the chunk first. The sequence is not restartable.
//
// Abandoning the sequence early (break, or ctx cancellation) leaves the
// connection usable for other generations.
func (g *Generation) Chunks(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			f, err := g.box.next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if f.errMsg != "" {
				yield(nil, applicationError(f.errMsg, g.id))
				return
			}
			if len(f.data) > 0 {
				data := f.data
				if g.strip > 0 {
					n := min(g.strip, len(data))
					data = data[n:]
					g.strip -= n
				}
				if len(data) > 0 && !yield(data, nil) {
					return
				}
			}
			if f.isFinished {
				return
			}
		}
	}
}

// Collect consumes the whole sequence into one buffer.
func (g *Generation) Collect(ctx context.Context) ([]byte, error) {
	var out []byte
	for chunk, err := range g.Chunks(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// GenderClassifyRequest is a request to classify the gender of a speaker
// from an audio sample. The API considers only the first second of audio;
// send short, 16 kHz wav input.
type GenderClassifyRequest struct {
	// Audio is the sample to classify (required).
	Audio *AudioInput `json:"audio" yaml:"audio"`

	// SampleRate of the audio data (default: 16000).
	SampleRate int `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`

	// GenerationID for request tracking. Generated when empty.
	GenerationID string `json:"generation_id,omitempty" yaml:"generation_id,omitempty"`

	// Timeout bounds the wait for the response (default: 5s).
	Timeout time.Duration `json:"-" yaml:"-"`
}

// GenderClassifyResult is a gender classification response.
type GenderClassifyResult struct {
	PredictedGender string  `json:"predicted_gender"`
	Confidence      float64 `json:"confidence"`

	// Raw is the full response frame.
	Raw json.RawMessage `json:"-"`
}

func (r *GenderClassifyRequest) build() (map[string]any, error) {
	if !r.Audio.isSet() {
		return nil, contractErrorf("audio is required")
	}
	generationID, err := resolveGenerationID(r.GenerationID)
	if err != nil {
		return nil, err
	}
	data, _, err := r.Audio.encode()
	if err != nil {
		return nil, err
	}
	sampleRate := r.SampleRate
	if sampleRate == 0 {
		sampleRate = 16000
	}
	return map[string]any{
		"action":       actionGenderClassify,
		"generationId": generationID,
		"audio":        data,
		"sample_rate":  sampleRate,
	}, nil
}

// ClassifyGender classifies a speaker's gender on the multiplexed
// connection. The response carries no generation ID, so it is read from
// the default mailbox; reads there are served to at most one outstanding
// waiter at a time, in arrival order.
func (conn *Conn) ClassifyGender(ctx context.Context, req *GenderClassifyRequest) (*GenderClassifyResult, error) {
	msg, err := req.build()
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	conn.defMu.Lock()
	defer conn.defMu.Unlock()

	if err := conn.send(msg); err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	f, err := conn.router.mailbox("").next(waitCtx)
	if err != nil {
		return nil, err
	}
	return parseClassifyFrame(f)
}

// ClassifyGender classifies a speaker's gender over a short-lived
// connection of its own. Use Conn.ClassifyGender to multiplex
// classification calls on an open connection instead.
func (c *Client) ClassifyGender(ctx context.Context, req *GenderClassifyRequest) (*GenderClassifyResult, error) {
	msg, err := req.build()
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	ws, err := c.dialWebSocket(ctx, c.config.wsURL)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	if err := ws.WriteJSON(msg); err != nil {
		return nil, transportError(err, "send classify request")
	}

	ws.SetReadDeadline(time.Now().Add(timeout))
	_, raw, err := ws.ReadMessage()
	if err != nil {
		return nil, transportError(err, "read classify response")
	}
	f, err := decodeFrame(raw)
	if err != nil {
		return nil, err
	}
	return parseClassifyFrame(f)
}

func parseClassifyFrame(f *frame) (*GenderClassifyResult, error) {
	if f.errMsg != "" {
		return nil, applicationError(f.errMsg, f.generationID)
	}
	var result GenderClassifyResult
	if err := json.Unmarshal(f.raw, &result); err != nil {
		return nil, protocolError(err, "malformed classify response")
	}
	result.Raw = f.raw
	return &result, nil
}
