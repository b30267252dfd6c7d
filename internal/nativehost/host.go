package nativehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/creachadair/jrpc2"
)

// Client is the part of syncclient.Client the host uses.
type Client interface {
	Raw(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error)
	AttachBrowser(ctx context.Context) error
	Close() error
}

// ErrHostClosed is returned to pending browser callbacks when the
// extension disconnects.
var ErrHostClosed = errors.New("nativehost: extension disconnected")

// Host relays between the extension on stdin/stdout and the daemon.
// Extension requests are forwarded as daemon calls; daemon callbacks and
// log notifications are forwarded to the extension.
type Host struct {
	log    logger.Logger
	stdin  io.Reader
	stdout io.Writer

	wmu sync.Mutex

	mu      sync.Mutex
	nextID  int
	pending map[int]chan *Request
	closed  bool

	inflight sync.WaitGroup
}

// NewHost creates a host on os.Stdin and os.Stdout. Stdout belongs to the
// protocol, so l should write to stderr or a file.
func NewHost(l logger.Logger) *Host {
	return &Host{
		log:     logger.Or(l),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		pending: make(map[int]chan *Request),
	}
}

// Run attaches to the daemon as the browser and relays messages until
// stdin is closed (EOF) or ctx is canceled.
func (h *Host) Run(ctx context.Context, client Client) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := client.AttachBrowser(ctx); err != nil {
		h.log.Warning("nativehost: attach as browser: %v", err)
	}

	defer h.closePending()
	for {
		data, err := ReadMessage(h.stdin)
		if err != nil {
			cancel()
			h.inflight.Wait()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		req, err := ParseRequest(data)
		if err != nil {
			if err := h.write(MakeErrorResponse(0, fmt.Errorf("invalid request: %w", err))); err != nil {
				return err
			}
			continue
		}
		switch req.Type {
		case TypeCallbackResult:
			h.deliver(req)
		case TypeRequest:
			h.inflight.Add(1)
			go func() {
				defer h.inflight.Done()
				if err := h.write(h.handleRequest(ctx, client, req)); err != nil {
					h.log.Warning("nativehost: write response %d: %v", req.ID, err)
				}
			}()
		default:
			if err := h.write(MakeErrorResponse(req.ID, fmt.Errorf("unknown message type: %s", req.Type))); err != nil {
				return err
			}
		}
	}
}

// handleRequest forwards one extension request to the daemon.
func (h *Host) handleRequest(ctx context.Context, client Client, req *Request) []byte {
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return MakeErrorResponse(req.ID, errors.New("method is required"))
	}
	if method == common.MethodBrowserAttach {
		return MakeErrorResponse(req.ID, errors.New("the host attaches itself"))
	}
	result, err := client.Raw(ctx, method, req.Message)
	if err != nil {
		return MakeErrorResponse(req.ID, err)
	}
	return MakeSuccessResponse(req.ID, result)
}

// Callback relays a browser call from the daemon to the extension and
// waits for its answer. It is the OnCallback of the daemon client.
func (h *Host) Callback(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHostClosed
	}
	h.nextID++
	id := h.nextID
	ch := make(chan *Request, 1)
	h.pending[id] = ch
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
	}()

	var params any
	if req.HasParams() {
		params = json.RawMessage(req.ParamString())
	}
	msg, _ := json.Marshal(Response{ID: id, Type: TypeCallback, Method: req.Method(), Ok: true, Result: params})
	if err := h.write(msg); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res, ok := <-ch:
		if !ok {
			return nil, ErrHostClosed
		}
		if !res.Ok {
			return nil, errors.New(res.Error)
		}
		return res.Message, nil
	}
}

// Log forwards a daemon log event to the extension. It is the OnLog of
// the daemon client.
func (h *Host) Log(ev common.LogEvent) {
	msg, _ := json.Marshal(Response{Type: TypeLog, Method: common.NotifyLog, Ok: true, Result: ev})
	if err := h.write(msg); err != nil {
		h.log.Warning("nativehost: forward log event: %v", err)
	}
}

func (h *Host) deliver(res *Request) {
	h.mu.Lock()
	ch, ok := h.pending[res.ID]
	h.mu.Unlock()
	if !ok {
		h.log.Warning("nativehost: callback result %d has no pending call", res.ID)
		return
	}
	select {
	case ch <- res:
	default:
		h.log.Warning("nativehost: duplicate callback result %d", res.ID)
	}
}

func (h *Host) closePending() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.pending {
		close(ch)
		delete(h.pending, id)
	}
}

func (h *Host) write(msg []byte) error {
	h.wmu.Lock()
	defer h.wmu.Unlock()
	return WriteMessage(h.stdout, msg)
}
