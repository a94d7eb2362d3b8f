package deepdub

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an *Error.
type ErrorKind int

const (
	// KindContract marks a client-side contract violation: the caller
	// supplied invalid or mutually exclusive parameters. Detected before
	// any network I/O and never retried.
	KindContract ErrorKind = iota + 1

	// KindProtocol marks a malformed inbound frame. Fatal to the
	// connection: the receive loop stops and every waiting consumer
	// observes the error.
	KindProtocol

	// KindApplication marks a server-reported error on an otherwise
	// well-formed frame. Terminates only the affected generation, except
	// in streaming mode where the single stream is the whole connection.
	KindApplication

	// KindTransport marks an abrupt disconnect or an HTTP transport
	// failure. Propagated to all pending consumers.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindContract:
		return "contract violation"
	case KindProtocol:
		return "protocol violation"
	case KindApplication:
		return "application error"
	case KindTransport:
		return "transport error"
	}
	return "unknown"
}

// Error is a Deepdub API error.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind

	// Message is the error message.
	Message string

	// GenerationID is the generation the error belongs to, when known.
	GenerationID string

	// HTTPStatus is the HTTP status code for REST errors.
	HTTPStatus int

	err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("deepdub: %s: %s", e.Kind, e.Message)
	if e.GenerationID != "" {
		msg += fmt.Sprintf(" (generation_id=%s)", e.GenerationID)
	}
	if e.HTTPStatus != 0 {
		msg += fmt.Sprintf(" (http_status=%d)", e.HTTPStatus)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// IsContractViolation reports whether the error is a client-side contract
// violation. The request never reached the network.
func (e *Error) IsContractViolation() bool {
	return e.Kind == KindContract
}

// IsProtocolViolation reports whether the error is a malformed inbound
// frame. The connection is no longer usable.
func (e *Error) IsProtocolViolation() bool {
	return e.Kind == KindProtocol
}

// IsApplicationError reports whether the error was reported by the server
// for a single generation or stream.
func (e *Error) IsApplicationError() bool {
	return e.Kind == KindApplication
}

// IsTransportError reports whether the connection failed.
func (e *Error) IsTransportError() bool {
	return e.Kind == KindTransport
}

// Retryable reports whether retrying the call on a fresh connection may
// succeed. Retry policy itself belongs to the caller.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport
}

// AsError attempts to convert an error to *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// contractErrorf creates a contract violation error.
func contractErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindContract, Message: fmt.Sprintf(format, args...)}
}

// protocolError wraps a decode failure as a protocol violation.
func protocolError(err error, message string) *Error {
	return &Error{Kind: KindProtocol, Message: message, err: err}
}

// applicationError creates a server-reported error.
func applicationError(message, generationID string) *Error {
	return &Error{Kind: KindApplication, Message: message, GenerationID: generationID}
}

// transportError wraps a connection failure.
func transportError(err error, message string) *Error {
	return &Error{Kind: KindTransport, Message: message, err: err}
}

// errConnClosed is delivered to readers still waiting when the connection
// closes before their generation finished.
func errConnClosed() *Error {
	return &Error{Kind: KindTransport, Message: "connection closed"}
}

// wrapError wraps an error with a message.
func wrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
