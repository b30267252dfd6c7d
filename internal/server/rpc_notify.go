package server

import (
	"context"
	"slices"
	"sync"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/creachadair/jrpc2"
)

// RPCNotifier pushes notifications to every connected client. Log events
// handed to Notify are delivered in the order they were produced.
type RPCNotifier struct {
	log logger.Logger

	mu      sync.Mutex
	servers []*jrpc2.Server

	qmu      sync.Mutex
	queue    []common.LogEvent
	draining bool
}

func NewRPCNotifier(l logger.Logger) *RPCNotifier {
	return &RPCNotifier{log: logger.Or(l)}
}

// Register adds srv to the set of notified servers. It must have been
// created with AllowPush.
func (n *RPCNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !slices.Contains(n.servers, srv) {
		n.servers = append(n.servers, srv)
	}
}

func (n *RPCNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers = slices.DeleteFunc(n.servers, func(s *jrpc2.Server) bool { return s == srv })
}

// Count reports the number of registered servers.
func (n *RPCNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.servers)
}

// Broadcast pushes method to every registered server and drops the
// servers the push fails on.
func (n *RPCNotifier) Broadcast(method string, params any) {
	n.mu.Lock()
	targets := slices.Clone(n.servers)
	n.mu.Unlock()

	var dead []*jrpc2.Server
	for _, srv := range targets {
		if err := srv.Notify(context.Background(), method, params); err != nil {
			n.log.Warning("server: push %s failed: %v", method, err)
			dead = append(dead, srv)
			continue
		}
		notifications.WithLabelValues(method).Inc()
	}
	for _, srv := range dead {
		n.Unregister(srv)
	}
}

// Notify queues ev for broadcast and returns at once. A single goroutine
// drains the queue while it is non-empty.
func (n *RPCNotifier) Notify(ev common.LogEvent) {
	n.qmu.Lock()
	n.queue = append(n.queue, ev)
	start := !n.draining
	n.draining = true
	n.qmu.Unlock()
	if start {
		go n.drain()
	}
}

func (n *RPCNotifier) drain() {
	for {
		n.qmu.Lock()
		if len(n.queue) == 0 {
			n.draining = false
			n.qmu.Unlock()
			return
		}
		ev := n.queue[0]
		n.queue = n.queue[1:]
		n.qmu.Unlock()
		n.Broadcast(common.NotifyLog, ev)
	}
}
