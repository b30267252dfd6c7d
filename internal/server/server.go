// Package server exposes the daemon's JSON-RPC methods over the local
// socket (a named pipe on Windows) for the CLI and the native messaging
// host, and over HTTP and WebSocket for the browser extension.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const codeNoBridge = jrpc2.Code(-32002)

// Config configures a Server.
type Config struct {
	// TCPPort is used when the local socket cannot be created.
	TCPPort int
	// RPCPort is the HTTP port of /jsonrpc, /jsonrpc/ws and /metrics.
	// Zero disables the HTTP endpoint.
	RPCPort int
	// Secret authenticates HTTP and WebSocket clients. Empty rejects all
	// of them; the local socket is not affected.
	Secret string
	// Bridge, when set, receives browser connections as the target of
	// browser callbacks.
	Bridge *browser.Bridge
}

// Server serves one jrpc2 server per connection.
type Server struct {
	log      logger.Logger
	cfg      Config
	methods  handler.Map
	notifier *RPCNotifier
	jbridge  jhttp.Bridge

	mu       sync.Mutex
	listener net.Listener
	http     *http.Server
	conns    sync.WaitGroup
	closed   bool
}

// New creates a Server for methods. The browser.attach method is added
// so a native messaging host can register itself as the browser.
func New(l logger.Logger, methods handler.Map, cfg *Config) *Server {
	l = logger.Or(l)
	s := &Server{
		log:      l,
		cfg:      *cfg,
		notifier: NewRPCNotifier(l),
	}
	s.methods = make(handler.Map, len(methods)+1)
	for name, h := range methods {
		s.methods[name] = h
	}
	s.methods[common.MethodBrowserAttach] = handler.New(s.browserAttach)
	s.jbridge = jhttp.NewBridge(methods, nil)
	return s
}

// Notifier returns the broadcaster of log events to connected clients.
func (s *Server) Notifier() *RPCNotifier {
	return s.notifier
}

func (s *Server) serverOptions() *jrpc2.ServerOptions {
	return &jrpc2.ServerOptions{AllowPush: true}
}

// Handler returns the HTTP handler of the extension endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(s.cfg.Secret, s.jbridge))
	mux.Handle("/jsonrpc/ws", requireToken(s.cfg.Secret, http.HandlerFunc(s.serveWS)))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start listens on the local socket and, if configured, on the HTTP port,
// and blocks until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	l, err := s.createListener()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = l
	if s.cfg.RPCPort > 0 {
		s.http = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", common.TCPHost, s.cfg.RPCPort),
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func(hs *http.Server) {
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("server: http endpoint: %v", err)
			}
		}(s.http)
	}
	s.mu.Unlock()
	s.log.Info("server: listening on %s", l.Addr())

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warning("server: accept: %v", err)
			continue
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.serveConn(conn)
		}()
	}
}

// serveConn runs a line framed jrpc2 server on a local connection.
func (s *Server) serveConn(conn net.Conn) {
	connections.WithLabelValues("local").Inc()
	defer connections.WithLabelValues("local").Dec()
	srv := jrpc2.NewServer(s.methods, s.serverOptions()).Start(channel.Line(conn, conn))
	s.notifier.Register(srv)
	if err := srv.Wait(); err != nil {
		s.log.Info("server: connection closed: %v", err)
	}
	s.notifier.Unregister(srv)
	if s.cfg.Bridge != nil {
		s.cfg.Bridge.Detach(srv)
	}
}

// browserAttach makes the calling connection the target of browser
// callbacks.
func (s *Server) browserAttach(ctx context.Context) (*common.Empty, error) {
	if s.cfg.Bridge == nil {
		return nil, &jrpc2.Error{Code: codeNoBridge, Message: "daemon is not using the extension browser backend"}
	}
	srv := jrpc2.ServerFromContext(ctx)
	if srv == nil {
		return nil, &jrpc2.Error{Code: codeNoBridge, Message: "no connection to attach"}
	}
	s.cfg.Bridge.Attach(srv)
	s.log.Info("server: browser attached over the local socket")
	return &common.Empty{}, nil
}

// Shutdown closes the listeners and removes the socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Warning("server: close listener: %v", err)
		}
		s.listener = nil
	}
	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(ctx); err != nil {
			s.log.Warning("server: shutdown http endpoint: %v", err)
		}
		s.http = nil
	}
	s.jbridge.Close()
	if err := cleanupSocket(); err != nil {
		s.log.Warning("server: remove socket file: %v", err)
	}
	return nil
}
