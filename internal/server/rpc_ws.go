package server

import (
	"context"
	"net/http"

	"github.com/creachadair/jrpc2"
	cws "github.com/coder/websocket"
)

// wsReadLimit bounds one inbound message. A full cookie map of a busy
// profile is well below it.
const wsReadLimit = 8 << 20

// wsChannel adapts a coder/websocket.Conn to the jrpc2 Channel interface.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

// Send writes a JSON-RPC message to the WebSocket connection.
func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

// Recv reads a JSON-RPC message from the WebSocket connection.
func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

// Close shuts down the WebSocket connection with a normal closure status.
func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// serveWS upgrades an authenticated request and serves the extension on
// it. The connection becomes the target of browser callbacks until it
// closes.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, &cws.AcceptOptions{
		// Extension origins are chrome-extension://<id>; the token is
		// the authentication.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warning("server: websocket upgrade: %v", err)
		return
	}
	conn.SetReadLimit(wsReadLimit)

	connections.WithLabelValues("ws").Inc()
	defer connections.WithLabelValues("ws").Dec()

	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.methods, s.serverOptions()).Start(ch)
	s.notifier.Register(srv)
	if s.cfg.Bridge != nil {
		s.cfg.Bridge.Attach(srv)
		s.log.Info("server: browser extension connected")
	}
	if err := srv.Wait(); err != nil {
		s.log.Info("server: websocket closed: %v", err)
	}
	s.notifier.Unregister(srv)
	if s.cfg.Bridge != nil {
		s.cfg.Bridge.Detach(srv)
	}
}
