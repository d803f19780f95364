package client

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tombx666-max/tele-clone-frontend/pkg/protocol"
)

// StateUpdate represents a connection state change
type StateUpdate struct {
	State    ConnState
	Resuming bool // a silent credential resume was issued on open
	Err      error
}

const (
	// defaultErrorDebounce is how long a disconnect must persist before a
	// connection-failure error is surfaced. Rapid reconnect cycles (page
	// remount, quick network blip) stay silent.
	defaultErrorDebounce = 100 * time.Millisecond

	defaultDialTimeout = 5 * time.Second

	// outgoingQueueSize bounds the send queue; a stale send during a
	// disconnect race is dropped, not blocked on.
	outgoingQueueSize = 100
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrNotConnected     = errors.New("not connected")
	ErrQueueFull        = errors.New("outgoing queue full")
)

// Connection owns the lifecycle of the single persistent websocket to the
// backend gateway. At most one socket is live at a time: connecting while one
// is open replaces it. There is no built-in retry loop; reconnection happens
// only through a fresh Connect call.
type Connection struct {
	addr  string
	creds CredentialStore

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	closed    bool
	connDone  chan struct{} // closed when the current socket dies

	// Channels for communication
	incoming    chan *protocol.Frame
	errors      chan error
	stateChange chan StateUpdate
	outgoing    chan []byte

	errorDebounce time.Duration
	dialTimeout   time.Duration

	// Traffic counters (bytes on the wire)
	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64

	// Logging
	logger *log.Logger

	// Shutdown
	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewConnection creates a connection manager for the given gateway URL.
// The credential store is consulted on every successful open: when a link
// credential is present, an init command is sent before anything else (the
// silent-resumption path).
func NewConnection(addr string, creds CredentialStore) (*Connection, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway address %q: %w", addr, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported gateway scheme %q (want ws or wss)", u.Scheme)
	}

	return &Connection{
		addr:          addr,
		creds:         creds,
		incoming:      make(chan *protocol.Frame, 100),
		outgoing:      make(chan []byte, outgoingQueueSize),
		errors:        make(chan error, 10),
		stateChange:   make(chan StateUpdate, 10),
		errorDebounce: defaultErrorDebounce,
		dialTimeout:   defaultDialTimeout,
		shutdown:      make(chan struct{}),
	}, nil
}

// SetLogger sets a logger for debugging connection events
func (c *Connection) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// logf logs a message if a logger is set
func (c *Connection) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// Connect establishes the websocket connection. A live socket, if any, is
// replaced: the old one is closed before the new dial so that two sockets are
// never open at once.
func (c *Connection) Connect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConnectionClosed
	}
	if c.connected {
		c.logf("Connect while live, replacing existing socket")
		c.dropSocketLocked()
	}
	c.mu.Unlock()

	c.logf("Connecting to %s...", c.addr)

	dialer := websocket.Dialer{HandshakeTimeout: c.dialTimeout}
	conn, _, err := dialer.Dial(c.addr, nil)
	if err != nil {
		c.logf("Dial failed: %v", err)
		c.surfaceDisconnect(fmt.Errorf("connect to %s: %w", c.addr, err))
		return fmt.Errorf("connect to %s: %w", c.addr, err)
	}

	conn.SetReadLimit(protocol.MaxFrameSize)

	// Silent resumption: replay the stored credential before any user
	// interaction so an authorized session re-links without the handshake.
	resuming := false
	if apiID, apiHash, ok := c.creds.Credential(); ok {
		data, err := protocol.EncodeCommand(protocol.InitCommand{APIID: apiID, APIHash: apiHash})
		if err == nil {
			if werr := conn.WriteMessage(websocket.TextMessage, data); werr != nil {
				conn.Close()
				c.surfaceDisconnect(fmt.Errorf("resume send failed: %w", werr))
				return fmt.Errorf("resume send failed: %w", werr)
			}
			c.bytesSent.Add(uint64(len(data)))
			resuming = true
			c.logf("Issued silent resume for saved credential")
		}
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.connDone = done
	c.mu.Unlock()

	c.logf("Connected to %s", c.addr)

	select {
	case c.stateChange <- StateUpdate{State: StateConnected, Resuming: resuming}:
	default:
		c.logf("Warning: stateChange channel full on connect")
	}

	c.wg.Add(2)
	go c.readLoop(conn)
	go c.writeLoop(conn, done)

	return nil
}

// Disconnect closes the socket without surfacing an error (user requested).
func (c *Connection) Disconnect() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.logf("Disconnecting from %s (user requested)", c.addr)
	c.dropSocketLocked()
	c.mu.Unlock()

	select {
	case c.stateChange <- StateUpdate{State: StateDisconnected}:
	default:
	}
}

// dropSocketLocked tears down the current socket. Caller holds c.mu.
func (c *Connection) dropSocketLocked() {
	c.connected = false
	if c.connDone != nil {
		close(c.connDone)
		c.connDone = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Close shuts the connection down permanently.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.dropSocketLocked()
	c.mu.Unlock()

	c.shutdownOnce.Do(func() { close(c.shutdown) })
	c.wg.Wait()
	// outgoing stays open: a Send racing Close may still write to it after
	// passing the closed check, and a send on a closed channel panics. The
	// loops are gone, so nothing drains it; the queue is garbage once the
	// Connection is dropped.
	close(c.incoming)
	close(c.errors)
	close(c.stateChange)
	c.logf("Connection fully closed")
}

// Send queues a raw frame for the gateway. A send while disconnected returns
// ErrNotConnected; callers gate on session state but a stale send during a
// disconnect race must not panic or block.
func (c *Connection) Send(data []byte) error {
	c.mu.RLock()
	connected := c.connected
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		return ErrConnectionClosed
	}
	if !connected {
		return ErrNotConnected
	}

	select {
	case c.outgoing <- data:
		return nil
	case <-c.shutdown:
		return ErrConnectionClosed
	default:
		return ErrQueueFull
	}
}

// SendCommand encodes and queues an outbound command.
func (c *Connection) SendCommand(cmd protocol.Command) error {
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	return c.Send(data)
}

// Incoming returns the channel of decoded frames from the gateway.
func (c *Connection) Incoming() <-chan *protocol.Frame {
	return c.incoming
}

// Errors returns the channel for connection errors
func (c *Connection) Errors() <-chan error {
	return c.errors
}

// StateChanges returns the channel for connection state updates
func (c *Connection) StateChanges() <-chan StateUpdate {
	return c.stateChange
}

// IsConnected returns whether the connection is active
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// GetAddress returns the gateway URL
func (c *Connection) GetAddress() string {
	return c.addr
}

// GetBytesSent returns the total bytes sent
func (c *Connection) GetBytesSent() uint64 {
	return c.bytesSent.Load()
}

// GetBytesReceived returns the total bytes received
func (c *Connection) GetBytesReceived() uint64 {
	return c.bytesReceived.Load()
}

// readLoop reads frames from the socket until it dies.
func (c *Connection) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDisconnect(conn, err)
			return
		}
		c.bytesReceived.Add(uint64(len(data)))

		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			// A malformed frame is logged and skipped, not fatal.
			c.logf("Frame decode error: %v", err)
			select {
			case c.errors <- fmt.Errorf("frame decode: %w", err):
			default:
			}
			continue
		}

		c.logf("← RECV: type=%s len=%d", frame.Type, len(data))

		select {
		case c.incoming <- frame:
		case <-c.shutdown:
			return
		}
	}
}

// writeLoop sends queued frames until the socket dies.
func (c *Connection) writeLoop(conn *websocket.Conn, done chan struct{}) {
	defer c.wg.Done()

	for {
		select {
		case data := <-c.outgoing:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logf("Write error: %v", err)
				c.handleDisconnect(conn, fmt.Errorf("write: %w", err))
				return
			}
			c.bytesSent.Add(uint64(len(data)))
			c.logf("→ SEND: len=%d", len(data))
		case <-done:
			return
		case <-c.shutdown:
			return
		}
	}
}

// handleDisconnect records an unexpected socket loss. Only the loop that
// owns the current socket acts; a loop whose socket was already replaced
// exits quietly.
func (c *Connection) handleDisconnect(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.logf("Disconnected from gateway: %v", cause)
	c.dropSocketLocked()
	c.mu.Unlock()

	c.surfaceDisconnect(fmt.Errorf("disconnected from gateway: %w", cause))
}

// surfaceDisconnect emits the disconnected state after the debounce window,
// unless a new socket came up in the meantime.
func (c *Connection) surfaceDisconnect(cause error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		select {
		case <-time.After(c.errorDebounce):
		case <-c.shutdown:
			return
		}

		c.mu.RLock()
		connected := c.connected
		closed := c.closed
		c.mu.RUnlock()
		if connected || closed {
			return
		}

		select {
		case c.errors <- cause:
		default:
		}
		select {
		case c.stateChange <- StateUpdate{State: StateDisconnected, Err: cause}:
		default:
			c.logf("Warning: stateChange channel full on disconnect")
		}
	}()
}
