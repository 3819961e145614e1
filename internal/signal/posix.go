//go:build !windows

package signal

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// socketGlob and socketPath implement spec section 6's domain-socket
// path pattern: <identifier.path>/<identifier.name><N>.sock, with N an
// opaque non-negative integer chosen by the server.
//
// Section 9's Open Questions flag the original implementation's
// wall-clock-tick-modulo-100000 suffix as collision-prone across
// concurrent startups; we generate N from a UUID instead (grounded on
// gcsfuse's use of github.com/google/uuid for identifiers).
func socketGlob(dir, name string) string {
	return filepath.Join(dir, name+"*.sock")
}

func socketPath(dir, name string, suffix int64) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d.sock", name, suffix))
}

func randomSuffix() int64 {
	id := uuid.New()
	var v int64
	for _, b := range id[:8] {
		v = v<<8 | int64(b)
	}
	if v < 0 {
		v = -v
	}
	return v
}

// Server listens on a unix domain socket and fans out Release() to
// every connected client. One Server runs per process that has a queue
// open, per spec section 4.6.
type Server struct {
	listener net.Listener
	path     string
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	clients map[net.Conn]struct{}
	closed  bool
}

// NewServer creates the per-run socket under dir named name<N>.sock.
func NewServer(dir, name string, logger *zap.SugaredLogger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("signal: creating socket directory: %w", err)
	}

	path := socketPath(dir, name, randomSuffix())
	_ = os.Remove(path) // best-effort: clear a stale inode from a prior run

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("signal: listening on %s: %w", path, err)
	}

	s := &Server{listener: l, path: path, logger: logger, clients: map[net.Conn]struct{}{}}
	go s.acceptLoop()
	return s, nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return // listener closed
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.clients[conn] = struct{}{}
		s.mu.Unlock()
		s.logger.Debugw("signal client connected", "socket", s.path)
	}
}

// Release sends a single byte to every connected client concurrently.
// Any send error drops that client; Release never fails, per spec
// section 4.6 and the IoError runtime policy in section 7.
func (s *Server) Release() {
	s.mu.Lock()
	conns := make([]net.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if len(conns) == 0 {
		return
	}

	var g errgroup.Group
	for _, c := range conns {
		c := c
		g.Go(func() error {
			_ = c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
			if _, err := c.Write([]byte{1}); err != nil {
				s.drop(c)
				s.logger.Warnw("dropping signal client after write error", "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Server) drop(c net.Conn) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.Close()
}

// Close shuts down the listener and every connected client.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	clients := s.clients
	s.clients = nil
	s.mu.Unlock()

	s.listener.Close()
	for c := range clients {
		c.Close()
	}
	_ = os.Remove(s.path)
	return nil
}

// Client connects to every discoverable server for a queue and blocks
// on read, per spec section 4.6. If no server is reachable, Wait
// degrades to an internal timer, still correct, only slower.
type Client struct {
	dir, name string
	logger    *zap.SugaredLogger

	mu     sync.Mutex
	conns  map[string]net.Conn
	woken  chan struct{}
	closed chan struct{}
}

// NewClient constructs a client for the queue identified by
// (dir, name); it lazily discovers and connects to servers on Wait.
func NewClient(dir, name string, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		dir:    dir,
		name:   name,
		logger: logger,
		conns:  map[string]net.Conn{},
		woken:  make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Release is a no-op on the client side: clients only ever wait. It
// exists so Client can satisfy Signal for symmetry in tests that treat
// publisher and subscriber sides uniformly; real code calls Release on
// the Server obtained from the same Queue.
func (c *Client) Release() {}

func (c *Client) discover() {
	matches, _ := filepath.Glob(socketGlob(c.dir, c.name))
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range matches {
		if _, ok := c.conns[m]; ok {
			continue
		}
		conn, err := net.DialTimeout("unix", m, 50*time.Millisecond)
		if err != nil {
			continue
		}
		c.conns[m] = conn
		go c.readLoop(m, conn)
	}
}

func (c *Client) readLoop(key string, conn net.Conn) {
	buf := make([]byte, 1)
	for {
		if _, err := conn.Read(buf); err != nil {
			c.mu.Lock()
			delete(c.conns, key)
			c.mu.Unlock()
			conn.Close()
			return
		}
		select {
		case c.woken <- struct{}{}:
		default:
		}
	}
}

// Wait blocks until a byte arrives from any connected server, timeout
// elapses, or ctx is canceled. Every call re-scans for newly available
// servers first (lazy reconnect, per spec section 4.6).
func (c *Client) Wait(ctx context.Context, timeout time.Duration) bool {
	c.discover()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.woken:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	case <-c.closed:
		return false
	}
}

// dualSignal combines a Server (so this process's Release calls reach
// every other process's Client) with a Client (so this process's Wait
// calls observe every other process's Server), since any process
// holding a queue open may both publish and subscribe, per spec
// section 4.6.
type dualSignal struct {
	server *Server
	client *Client
}

// NewForQueue builds the POSIX wake-up signal for a queue: a Server
// listening under dir/name<N>.sock, and a Client that discovers and
// connects to every such socket, including ones from other processes.
func NewForQueue(dir, name string, logger *zap.SugaredLogger) (Signal, error) {
	server, err := NewServer(dir, name, logger)
	if err != nil {
		return nil, err
	}
	client := NewClient(dir, name, logger)
	return &dualSignal{server: server, client: client}, nil
}

func (d *dualSignal) Release() { d.server.Release() }

func (d *dualSignal) Wait(ctx context.Context, timeout time.Duration) bool {
	return d.client.Wait(ctx, timeout)
}

func (d *dualSignal) Close() error {
	_ = d.client.Close()
	return d.server.Close()
}

// Close disconnects from every server.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	for _, conn := range c.conns {
		conn.Close()
	}
	c.conns = nil
	return nil
}
