package httpd

import (
	"errors"
	"fmt"

	"github.com/favsoft/epdsetup/internal/logging"
	"go.uber.org/zap"
)

// Transport is one client connection as seen by an Exchange.
type Transport interface {
	// Write queues p for sending and returns how many bytes were accepted.
	Write(p []byte) (int, error)
	// SendBuffer returns how many bytes Write can accept right now.
	SendBuffer() int
	Close() error
}

// State is the lifecycle position of an Exchange.
type State int

const (
	StateReceiving State = iota
	StateSending
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReceiving:
		return "receiving"
	case StateSending:
		return "sending"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultMaxRequestSize bounds a request, header and body together.
const DefaultMaxRequestSize = 4096

// Exchange drives one request/response over a Transport. Receive feeds it
// inbound bytes; Sent reports bytes the transport has finished sending.
// It sends at most SendBuffer bytes at a time and resumes on Sent.
type Exchange struct {
	transport  Transport
	handler    Handler
	remote     string
	maxRequest int

	state    State
	request  []byte
	response Response
	queued   int // bytes handed to the transport
	acked    int // bytes the transport confirmed
	err      error

	// OnExitConfiguring runs after a response with ExitConfiguring set has
	// been fully sent.
	OnExitConfiguring func()
}

// NewExchange starts an exchange in the receiving state. A non-positive
// maxRequest selects DefaultMaxRequestSize.
func NewExchange(t Transport, h Handler, remote string, maxRequest int) *Exchange {
	if maxRequest <= 0 {
		maxRequest = DefaultMaxRequestSize
	}
	return &Exchange{
		transport:  t,
		handler:    h,
		remote:     remote,
		maxRequest: maxRequest,
	}
}

// State returns the current state.
func (e *Exchange) State() State {
	return e.state
}

// Err returns the error that ended the exchange, if any.
func (e *Exchange) Err() error {
	return e.err
}

// Response returns the response being sent.
func (e *Exchange) Response() Response {
	return e.response
}

// Receive handles a receive event. A nil data slice with a nil error means
// the peer closed its side.
func (e *Exchange) Receive(data []byte, err error) error {
	if e.state != StateReceiving {
		return nil
	}

	if err != nil {
		return e.teardown(&TransportError{Op: "receive", Err: err})
	}
	if data == nil {
		return e.teardown(ErrIncompleteRequest)
	}

	if len(e.request)+len(data) > e.maxRequest {
		logging.Warn("Request too large",
			zap.String("remote_addr", e.remote),
			zap.Int("size", len(e.request)+len(data)),
			zap.Int("max", e.maxRequest),
		)
		return e.teardown(ErrRequestTooLarge)
	}
	e.request = append(e.request, data...)

	n, complete, err := requestLength(e.request)
	if err != nil {
		return e.teardown(err)
	}
	if n > e.maxRequest {
		return e.teardown(ErrRequestTooLarge)
	}
	if !complete {
		return nil
	}

	raw := e.request[:n]
	logging.LogRawBytes("Request", raw)
	method := DecodeMethod(raw)
	logging.LogHTTPRequest(e.remote, method.String(), ExtractPath(raw, method), n)

	resp, err := e.handler.Route(raw)
	if err != nil {
		return e.teardown(err)
	}

	e.response = resp
	e.state = StateSending
	logging.LogHTTPResponse(e.remote, 200, resp.Page.String(), len(resp.Data))
	return e.send()
}

// Sent handles a send-complete event for n bytes.
func (e *Exchange) Sent(n int) error {
	if e.state != StateSending {
		return nil
	}

	e.acked += n
	if e.acked >= len(e.response.Data) {
		e.close()
		if e.response.ExitConfiguring && e.OnExitConfiguring != nil {
			e.OnExitConfiguring()
		}
		return nil
	}
	return e.send()
}

// send hands the transport as much of the unsent response as it accepts.
func (e *Exchange) send() error {
	for e.queued < len(e.response.Data) {
		room := e.transport.SendBuffer()
		if room <= 0 {
			return nil
		}

		chunk := e.response.Data[e.queued:]
		if len(chunk) > room {
			chunk = chunk[:room]
		}

		n, err := e.transport.Write(chunk)
		if err != nil {
			logging.LogErrorCode(logging.TCPWriteErr, zap.String("remote_addr", e.remote), zap.Error(err))
			return e.teardown(&TransportError{Op: "write", Err: err})
		}
		if n == 0 {
			return nil
		}
		e.queued += n
	}
	return nil
}

func (e *Exchange) teardown(err error) error {
	e.err = err
	if !errors.Is(err, ErrUnknownMethod) {
		logging.Warn("Exchange aborted", zap.String("remote_addr", e.remote), zap.Error(err))
	}
	e.close()
	return err
}

func (e *Exchange) close() {
	if e.state == StateClosed {
		return
	}
	e.state = StateClosed
	if err := e.transport.Close(); err != nil {
		logging.Debug("Close failed", zap.String("remote_addr", e.remote), zap.Error(err))
	}
	logging.LogConnection(e.remote, "connection_closed")
}
