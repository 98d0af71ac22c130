// Package network is a Socket.IO client for the game server.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-nav/internal/network/packets"
)

// Engine.IO protocol constants.
const (
	EngineVersion = 3
	DefaultPath   = "/socket.io/"
)

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrUnexpectedPacket = errors.New("unexpected packet")
	ErrClosed           = errors.New("connection closed")
)

// EventHandler receives the JSON arguments of an event.
type EventHandler func(args []json.RawMessage)

type listener struct {
	id   uint64
	fn   EventHandler
	once bool
}

// Client is a Socket.IO client over a websocket transport.
type Client struct {
	log    *zap.Logger
	dialer *websocket.Dialer

	writeMu sync.Mutex
	conn    *websocket.Conn

	handlersMu sync.Mutex
	handlers   map[string][]*listener
	nextID     uint64

	mu        sync.Mutex
	handshake packets.Handshake
	done      chan struct{}
	closing   bool
	err       error

	mapChanges int
}

// New creates a new client. A nil logger discards output.
func New(log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		log:      log,
		dialer:   &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		handlers: make(map[string][]*listener),
	}
}

// ConnectionURL returns the websocket endpoint for a server URL.
func ConnectionURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parsing server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + DefaultPath
	q := u.Query()
	q.Set("EIO", fmt.Sprint(EngineVersion))
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect dials the server and waits for the Engine.IO handshake.
// Incoming packets are processed on a background goroutine until Close.
func (c *Client) Connect(ctx context.Context, server string) error {
	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	endpoint, err := ConnectionURL(server)
	if err != nil {
		return err
	}

	c.log.Debug("connecting", zap.String("url", endpoint))
	conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", endpoint, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return fmt.Errorf("reading handshake: %w", err)
	}
	open, err := packets.ParseEngine(string(msg))
	if err != nil {
		conn.Close()
		return fmt.Errorf("reading handshake: %w", err)
	}
	if open.Type != packets.EngineOpen {
		conn.Close()
		return fmt.Errorf("%w: %s before OPEN", ErrUnexpectedPacket, open)
	}
	hs, err := packets.ParseHandshake(open.Data)
	if err != nil {
		conn.Close()
		return err
	}
	conn.SetReadDeadline(time.Time{})

	c.mu.Lock()
	c.conn = conn
	c.handshake = hs
	c.done = make(chan struct{})
	c.closing = false
	c.err = nil
	done := c.done
	c.mu.Unlock()

	c.log.Info("connected",
		zap.String("sid", hs.SID),
		zap.Duration("ping_interval", hs.Interval()),
		zap.Duration("ping_timeout", hs.Timeout()))

	go c.readLoop(conn, done)
	if hs.PingInterval > 0 {
		go c.pingLoop(hs.Interval(), done)
	}
	return nil
}

// SID returns the session id assigned by the server.
func (c *Client) SID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handshake.SID
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Err returns the error that ended the connection, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// On registers a handler for an event and returns a function removing it.
// The pseudo events "connect", "disconnect" and "error" report Socket.IO
// control packets.
func (c *Client) On(event string, h EventHandler) (off func()) {
	return c.listen(event, h, false)
}

// Once registers a handler that is removed after its first call.
func (c *Client) Once(event string, h EventHandler) (off func()) {
	return c.listen(event, h, true)
}

// Off removes every handler of an event.
func (c *Client) Off(event string) {
	c.handlersMu.Lock()
	delete(c.handlers, event)
	c.handlersMu.Unlock()
}

// NextEvent waits for the next occurrence of an event and returns its
// arguments. It fails when ctx ends or the connection goes down first.
func (c *Client) NextEvent(ctx context.Context, event string) ([]json.RawMessage, error) {
	done := c.Done()
	if done == nil {
		return nil, ErrNotConnected
	}

	got := make(chan []json.RawMessage, 1)
	off := c.Once(event, func(args []json.RawMessage) { got <- args })
	defer off()

	select {
	case args := <-got:
		return args, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	// "disconnect" is dispatched right after done closes.
	select {
	case args := <-got:
		return args, nil
	default:
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return nil, ErrClosed
}

func (c *Client) listen(event string, h EventHandler, once bool) func() {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.nextID++
	id := c.nextID
	c.handlers[event] = append(c.handlers[event], &listener{id: id, fn: h, once: once})
	return func() { c.remove(event, id) }
}

func (c *Client) remove(event string, id uint64) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	ls := c.handlers[event]
	for i, l := range ls {
		if l.id == id {
			c.handlers[event] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(c.handlers[event]) == 0 {
		delete(c.handlers, event)
	}
}

// Emit sends an event with JSON-encodable arguments.
func (c *Client) Emit(event string, args ...any) error {
	p, err := packets.NewEvent(event, args...)
	if err != nil {
		return err
	}
	c.log.Debug("emit", zap.String("event", event))
	return c.send(packets.EnginePacket{Type: packets.EngineMessage, Data: p.Encode()})
}

// Close ends the connection and waits for the read loop to stop.
func (c *Client) Close() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.closing = true
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	_ = c.send(packets.EnginePacket{Type: packets.EngineClose})
	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	err := conn.Close()
	<-done

	c.mu.Lock()
	c.conn = nil
	c.done = nil
	c.mu.Unlock()
	return err
}

func (c *Client) send(p packets.EnginePacket) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(p.Encode())); err != nil {
		return fmt.Errorf("sending %s: %w", p.Type, err)
	}
	return nil
}

func (c *Client) pingLoop(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.send(packets.EnginePacket{Type: packets.EnginePing}); err != nil {
				c.log.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	var err error
	defer func() {
		c.mu.Lock()
		if c.closing {
			err = nil
		}
		c.err = err
		c.mu.Unlock()
		close(done)
		c.dispatch("disconnect", nil)
		c.log.Debug("read loop stopped", zap.Error(err))
	}()

	for {
		var kind int
		var msg []byte
		kind, msg, err = conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, websocket.ErrCloseSent) {
				err = nil
			}
			return
		}
		if kind != websocket.TextMessage {
			c.log.Warn("unexpected websocket message type", zap.Int("type", kind))
			continue
		}

		p, perr := packets.ParseEngine(string(msg))
		if perr != nil {
			c.log.Warn("failed to parse packet", zap.Error(perr))
			continue
		}
		if stop := c.handleEngine(p); stop {
			return
		}
	}
}

// handleEngine processes one Engine.IO packet and reports whether the
// server closed the session.
func (c *Client) handleEngine(p packets.EnginePacket) bool {
	switch p.Type {
	case packets.EnginePing:
		if err := c.send(packets.EnginePacket{Type: packets.EnginePong, Data: p.Data}); err != nil {
			c.log.Debug("pong failed", zap.Error(err))
		}
	case packets.EnginePong, packets.EngineNoop:
	case packets.EngineClose:
		return true
	case packets.EngineMessage:
		c.handleSocket(p.Data)
	default:
		c.log.Warn("unhandled engine packet", zap.Stringer("type", p.Type))
	}
	return false
}

func (c *Client) handleSocket(data string) {
	p, err := packets.ParseSocket(data)
	if err != nil {
		c.log.Warn("failed to parse socket packet", zap.Error(err))
		return
	}

	switch p.Type {
	case packets.SocketConnect:
		c.dispatch("connect", nil)
	case packets.SocketDisconnect:
		c.dispatch("disconnect", nil)
	case packets.SocketEvent:
		name, args, err := p.Event()
		if err != nil {
			c.log.Warn("bad event", zap.Error(err))
			return
		}
		c.dispatch(name, args)
	case packets.SocketError:
		c.log.Error("server error", zap.ByteString("data", p.Data))
		c.dispatch("error", []json.RawMessage{p.Data})
	default:
		c.log.Warn("unsupported socket packet", zap.Stringer("type", p.Type))
	}
}

func (c *Client) dispatch(event string, args []json.RawMessage) {
	c.handlersMu.Lock()
	ls := c.handlers[event]
	calls := make([]EventHandler, 0, len(ls))
	kept := ls[:0:0]
	for _, l := range ls {
		calls = append(calls, l.fn)
		if !l.once {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(c.handlers, event)
	} else if len(kept) != len(ls) {
		c.handlers[event] = kept
	}
	c.handlersMu.Unlock()

	for _, h := range calls {
		c.call(event, h, args)
	}
}

// call runs one handler. A panicking handler is logged and does not stop
// the read loop.
func (c *Client) call(event string, h EventHandler, args []json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("event handler panicked", zap.String("event", event), zap.Any("panic", r))
		}
	}()
	h(args)
}
