package deepdub

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// streamState tracks the streaming session lifecycle:
// unconfigured -> configured -> streaming -> closed.
type streamState int32

const (
	streamUnconfigured streamState = iota
	streamConfigured
	streamStreaming
	streamClosed
)

// StreamConfig configures a streaming session. The configuration exchange
// is a single request/response pair with no correlation identifier.
type StreamConfig struct {
	// Model identifier (required).
	Model string `json:"model" yaml:"model"`

	// Locale such as en-US (required).
	Locale string `json:"locale" yaml:"locale"`

	// VoicePromptID selects the voice (required).
	VoicePromptID string `json:"voice_prompt_id" yaml:"voice_prompt_id"`

	// Format of the audio output (default: wav). Wav output carries the
	// 68-byte container header, stripped from the head of the stream.
	Format Format `json:"format,omitempty" yaml:"format,omitempty"`

	// SampleRate in Hz, from {8000,16000,22050,24000,44100,48000}
	// (default: 16000).
	SampleRate int `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`

	// Prosody controls.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Variance    float64 `json:"variance,omitempty" yaml:"variance,omitempty"`
	Tempo       float64 `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	PromptBoost bool    `json:"prompt_boost,omitempty" yaml:"prompt_boost,omitempty"`

	// Accent blends a target accent in. All-or-nothing triple.
	Accent *AccentControl `json:"accent,omitempty" yaml:"accent,omitempty"`
}

func (c *StreamConfig) validate() error {
	if c.Model == "" {
		return contractErrorf("model is required")
	}
	if c.Locale == "" {
		return contractErrorf("locale is required")
	}
	if c.VoicePromptID == "" {
		return contractErrorf("voice_prompt_id is required")
	}
	if err := validateModel(c.Model); err != nil {
		return err
	}
	if err := validateSampleRate(c.SampleRate); err != nil {
		return err
	}
	return validateAccent(c.Accent)
}

// StreamEvent is one observation from a streaming session: an audio chunk
// or a temporarily-idle indicator. Exactly one field is meaningful.
type StreamEvent struct {
	// Audio is a decoded audio chunk.
	Audio []byte

	// Idle reports that synthesis has temporarily stopped producing
	// audio. It does not end the stream; more chunks follow when more
	// text is pushed.
	Idle bool
}

// StreamConn is a streaming WebSocket session: one connection carrying
// exactly one ordered logical stream, with incremental text input and
// incremental audio output. There is no per-chunk correlation identifier.
//
// SendText may be interleaved freely with Recv. A StreamConn cannot be
// reused after Close.
type StreamConn struct {
	client *Client
	ws     *websocket.Conn
	config *StreamConfig

	writeMu sync.Mutex
	state   atomic.Int32
	strip   int

	frames     chan *frame
	loopErr    chan error
	closeCh    chan struct{}
	closeOnce  sync.Once
	localClose atomic.Bool
}

// ConnectStream opens a streaming connection and performs the
// configuration exchange, blocking until the server acknowledges the
// configuration. On success the session is ready for SendText and Recv.
func (c *Client) ConnectStream(ctx context.Context, config *StreamConfig) (*StreamConn, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	ws, err := c.dialWebSocket(ctx, c.config.streamingURL)
	if err != nil {
		return nil, err
	}

	s := &StreamConn{
		client:  c,
		ws:      ws,
		config:  config,
		frames:  make(chan *frame, 64),
		loopErr: make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	if config.Format == FormatWAV || config.Format == FormatHeaderlessWAV || config.Format == "" {
		s.strip = wavHeaderLen
	}

	if err := s.configure(ctx); err != nil {
		ws.Close()
		return nil, err
	}
	s.state.Store(int32(streamConfigured))

	go s.readLoop()

	return s, nil
}

// configure sends the stream-config message and waits for its response.
// The exchange happens before the read pump starts, so the response is
// read directly off the connection.
func (s *StreamConn) configure(ctx context.Context) error {
	format := s.config.Format
	if format == "" {
		format = FormatWAV
	}
	if format == FormatHeaderlessWAV {
		format = FormatWAV
	}
	sampleRate := s.config.SampleRate
	if sampleRate == 0 {
		sampleRate = 16000
	}

	cfg := map[string]any{
		"model":         s.config.Model,
		"locale":        s.config.Locale,
		"voicePromptId": s.config.VoicePromptID,
		"format":        format,
		"sampleRate":    sampleRate,
	}
	if s.config.Temperature != 0 {
		cfg["temperature"] = s.config.Temperature
	}
	if s.config.Variance != 0 {
		cfg["variance"] = s.config.Variance
	}
	if s.config.Tempo != 0 {
		cfg["tempo"] = s.config.Tempo
	}
	if s.config.PromptBoost {
		cfg["promptBoost"] = true
	}
	if s.config.Accent != nil {
		cfg["accentControl"] = map[string]any{
			"accentBaseLocale": s.config.Accent.BaseLocale,
			"accentLocale":     s.config.Accent.Locale,
			"accentRatio":      s.config.Accent.Ratio,
		}
	}

	msg := map[string]any{
		"action": actionStreamConfig,
		"config": cfg,
	}
	if err := s.ws.WriteJSON(msg); err != nil {
		return transportError(err, "send stream config")
	}

	if deadline, ok := ctx.Deadline(); ok {
		s.ws.SetReadDeadline(deadline)
	} else {
		s.ws.SetReadDeadline(time.Now().Add(s.client.config.timeout))
	}
	defer s.ws.SetReadDeadline(time.Time{})

	_, raw, err := s.ws.ReadMessage()
	if err != nil {
		return transportError(err, "read stream config response")
	}
	f, err := decodeFrame(raw)
	if err != nil {
		return err
	}
	if f.errMsg != "" {
		return applicationError(f.errMsg, "")
	}

	slog.Debug("deepdub: stream configured", "model", s.config.Model, "format", format, "sample_rate", sampleRate)
	return nil
}

// SendText pushes one text fragment. Pushes are fire-and-forget and the
// server concatenates fragments in send order; the write mutex keeps that
// order exact across goroutines. Sends after Close fail.
func (s *StreamConn) SendText(ctx context.Context, text string) error {
	if streamState(s.state.Load()) == streamClosed {
		return contractErrorf("stream is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := map[string]any{
		"action": actionStreamText,
		"data":   map[string]any{"text": text},
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.ws.WriteJSON(msg); err != nil {
		return transportError(err, "send stream text")
	}
	s.state.CompareAndSwap(int32(streamConfigured), int32(streamStreaming))
	return nil
}

// Recv returns the next stream event: an audio chunk (with the container
// header stripped from the head of the stream when the format carries
// one) or an idle indicator. A server-reported error ends the stream and
// is returned as an application error; a closed connection returns io.EOF
// once every buffered frame has been drained.
func (s *StreamConn) Recv(ctx context.Context) (*StreamEvent, error) {
	select {
	case f, ok := <-s.frames:
		if !ok {
			return nil, s.terminal()
		}
		return s.eventFromFrame(f)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *StreamConn) eventFromFrame(f *frame) (*StreamEvent, error) {
	if f.errMsg != "" {
		// A stream error is fatal: the single stream is the whole
		// connection in this mode.
		s.state.Store(int32(streamClosed))
		return nil, applicationError(f.errMsg, "")
	}
	if len(f.data) > 0 {
		data := f.data
		if s.strip > 0 {
			n := min(s.strip, len(data))
			data = data[n:]
			s.strip -= n
		}
		if len(data) > 0 {
			return &StreamEvent{Audio: data}, nil
		}
	}
	// isFinished marks a temporary pause, not end of stream. Stream end
	// is driven by connection close or the caller's idle-timeout policy.
	return &StreamEvent{Idle: true}, nil
}

// terminal reports how the read pump stopped.
func (s *StreamConn) terminal() error {
	select {
	case err := <-s.loopErr:
		return err
	default:
		return io.EOF
	}
}

// Chunks returns an iterator over audio chunks. Idle indicators are
// skipped. When idleTimeout is positive and no event arrives within it,
// the iteration ends without error; the connection stays open and usable.
func (s *StreamConn) Chunks(ctx context.Context, idleTimeout time.Duration) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			recvCtx := ctx
			cancel := context.CancelFunc(func() {})
			if idleTimeout > 0 {
				recvCtx, cancel = context.WithTimeout(ctx, idleTimeout)
			}
			ev, err := s.Recv(recvCtx)
			cancel()

			switch {
			case err == nil:
			case errors.Is(err, io.EOF):
				return
			case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
				// Idle timeout: consumption stops, the stream lives on.
				return
			default:
				yield(nil, err)
				return
			}

			if ev.Idle {
				continue
			}
			if !yield(ev.Audio, nil) {
				return
			}
		}
	}
}

// Close closes the streaming session. Frames already buffered remain
// readable through Recv until drained. Close is idempotent.
func (s *StreamConn) Close() error {
	s.closeOnce.Do(func() {
		s.state.Store(int32(streamClosed))
		s.localClose.Store(true)
		close(s.closeCh)

		s.writeMu.Lock()
		s.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		s.ws.Close()
	})
	return nil
}

// readLoop pumps inbound frames into the frames channel so receives are
// cancellable and buffered frames survive a peer close. All frames belong
// to the single active stream; there is nothing to demultiplex.
func (s *StreamConn) readLoop() {
	defer close(s.frames)

	for {
		_, raw, err := s.ws.ReadMessage()
		if err != nil {
			if s.localClose.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.fail(transportError(err, "stream connection lost"))
			return
		}

		f, err := decodeFrame(raw)
		if err != nil {
			s.fail(err)
			return
		}

		select {
		case s.frames <- f:
		case <-s.closeCh:
			return
		}
	}
}

func (s *StreamConn) fail(err error) {
	s.state.Store(int32(streamClosed))
	select {
	case s.loopErr <- err:
	default:
	}
}
