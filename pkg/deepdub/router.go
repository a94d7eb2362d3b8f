package deepdub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// mailbox is an unbounded FIFO of inbound frames for one generation ID
// (or the shared default for identifier-less exchanges). It buffers
// indefinitely, so a consumer attaching after frames arrived still
// observes every one of them. Single consumer.
type mailbox struct {
	mu     sync.Mutex
	queue  []*frame
	notify chan struct{}
	closed bool
	err    error
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (m *mailbox) push(f *frame) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.queue = append(m.queue, f)
	m.mu.Unlock()
	m.wake()
}

// close marks the mailbox terminal. err is nil on a clean peer close.
// Buffered frames remain readable; only the terminal state changes.
func (m *mailbox) close(err error) {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		m.err = err
	}
	m.mu.Unlock()
	m.wake()
}

func (m *mailbox) wake() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// next returns the oldest buffered frame, blocking until one is enqueued,
// the mailbox turns terminal, or ctx ends. Buffered frames drain before
// the terminal state is reported.
func (m *mailbox) next(ctx context.Context) (*frame, error) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			f := m.queue[0]
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return f, nil
		}
		if m.closed {
			err := m.err
			m.mu.Unlock()
			if err == nil {
				err = errConnClosed()
			}
			return nil, err
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.notify:
		}
	}
}

// router owns the receive loop of a multiplexed connection. It reads every
// inbound frame and routes it to the per-generation mailbox matching its
// generation ID, or to the default mailbox when the ID is absent.
//
// Mailboxes are created lazily, under one mutex, by whichever side needs
// them first (the loop on first frame, a consumer on registration); they
// persist for the life of the connection.
type router struct {
	mu    sync.Mutex
	boxes map[string]*mailbox
	def   *mailbox

	localClose atomic.Bool
	stopped    bool  // loop has terminated; guarded by mu
	err        error // terminal loop error; nil on clean close
	done       chan struct{}
}

func newRouter() *router {
	return &router{
		boxes: make(map[string]*mailbox),
		def:   newMailbox(),
		done:  make(chan struct{}),
	}
}

// mailbox returns the mailbox for a generation ID, creating it if absent.
// The empty ID addresses the default mailbox.
func (r *router) mailbox(generationID string) *mailbox {
	if generationID == "" {
		return r.def
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	box, ok := r.boxes[generationID]
	if !ok {
		box = newMailbox()
		r.boxes[generationID] = box
		if r.stopped {
			box.close(r.err)
		}
	}
	return box
}

// markLocalClose records that the local side initiated the close, so the
// resulting read error is not reported as a transport failure.
func (r *router) markLocalClose() {
	r.localClose.Store(true)
}

// terminalErr returns the error the loop stopped with, nil on clean close.
func (r *router) terminalErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// run is the single receive loop. It terminates cleanly when the peer (or
// the local side) closes the connection, and with an error on a malformed
// frame or an abnormal disconnect. Either way every mailbox turns
// terminal, waking any blocked reader.
func (r *router) run(ws *websocket.Conn) {
	defer close(r.done)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if r.localClose.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.shutdown(nil)
			} else {
				r.shutdown(transportError(err, "connection lost"))
			}
			return
		}

		f, err := decodeFrame(raw)
		if err != nil {
			slog.Debug("deepdub: dropping connection on undecodable frame", "err", err)
			r.shutdown(err)
			return
		}

		if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			slog.Debug("deepdub: frame received",
				"generation_id", f.generationID,
				"bytes", len(f.data),
				"finished", f.isFinished,
				"error", f.errMsg)
		}

		r.mailbox(f.generationID).push(f)
	}
}

// shutdown records the terminal error once and closes every mailbox with
// it, so protocol and transport failures reach each waiting consumer
// exactly once.
func (r *router) shutdown(err error) {
	r.mu.Lock()
	if !r.stopped {
		r.stopped = true
		r.err = err
	}
	boxes := make([]*mailbox, 0, len(r.boxes)+1)
	boxes = append(boxes, r.def)
	for _, box := range r.boxes {
		boxes = append(boxes, box)
	}
	r.mu.Unlock()

	for _, box := range boxes {
		box.close(err)
	}
}
