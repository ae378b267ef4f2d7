package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"tracksel/internal/logging"
	"tracksel/internal/services"
)

const (
	defaultTimeout = 5 * time.Second
	maxLineBytes   = 4 << 20
	eventBuffer    = 64
)

// ErrClosed is returned for commands issued after the connection ended.
var ErrClosed = errors.New("mpv connection closed")

// Event is an asynchronous message emitted by mpv.
type Event struct {
	Name     string          `json:"event"`
	ID       int64           `json:"id,omitempty"`
	Property string          `json:"name,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type reply struct {
	Event     string          `json:"event"`
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger attaches a logger to the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "mpv")
	}
}

// WithTimeout bounds commands issued with a context that has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Client is a connection to one mpv instance.
type Client struct {
	conn    net.Conn
	socket  string
	logger  *slog.Logger
	timeout time.Duration

	nextID  atomic.Int64
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[int64]chan reply
	err     error

	events chan Event
	done   chan struct{}
}

// Dial connects to the mpv IPC socket at socketPath.
func Dial(ctx context.Context, socketPath string, opts ...Option) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "mpv", "dial", socketPath, err)
	}
	c := &Client{
		conn:    conn,
		socket:  socketPath,
		logger:  logging.NewComponentLogger(nil, "mpv"),
		timeout: defaultTimeout,
		pending: make(map[int64]chan reply),
		events:  make(chan Event, eventBuffer),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readLoop()
	return c, nil
}

// Socket returns the socket path the client is connected to.
func (c *Client) Socket() string {
	return c.socket
}

// Events delivers asynchronous player events. The channel closes when the
// connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Done is closed once the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close terminates the connection.
func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.done
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Command sends a raw IPC command and returns the reply data.
func (c *Client) Command(ctx context.Context, args ...any) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, services.Wrap(services.ErrValidation, "mpv", "command", "empty command", nil)
	}
	name := fmt.Sprint(args[0])
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := c.nextID.Add(1)
	ch := make(chan reply, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer c.forget(id)

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("encode mpv command %s: %w", name, err)
	}
	payload = append(payload, '\n')

	c.writeMu.Lock()
	_, err = c.conn.Write(payload)
	c.writeMu.Unlock()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "mpv", name, "write", err)
	}
	c.logger.Debug("mpv command sent", logging.String("command", name), logging.Int64("request_id", id))

	select {
	case resp := <-ch:
		if resp.Error != "" && resp.Error != "success" {
			return nil, services.Wrap(services.ErrExternalTool, "mpv", name, resp.Error, nil)
		}
		return resp.Data, nil
	case <-c.done:
		return nil, c.closedErr()
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "mpv", name, "no reply", ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// GetProperty reads a property value as raw JSON.
func (c *Client) GetProperty(ctx context.Context, name string) (json.RawMessage, error) {
	return c.Command(ctx, "get_property", name)
}

// SetProperty writes a property value.
func (c *Client) SetProperty(ctx context.Context, name string, value any) error {
	_, err := c.Command(ctx, "set_property", name, value)
	return err
}

// ObserveProperty asks mpv to emit property-change events for name under id.
func (c *Client) ObserveProperty(ctx context.Context, id int, name string) error {
	_, err := c.Command(ctx, "observe_property", id, name)
	return err
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	return ErrClosed
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg reply
		if err := json.Unmarshal(line, &msg); err != nil {
			c.logger.Debug("ignoring malformed mpv line", logging.Error(err))
			continue
		}
		if msg.Event != "" {
			c.dispatchEvent(line)
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		c.mu.Unlock()
		if ok {
			select {
			case ch <- msg:
			default:
			}
		}
	}

	err := scanner.Err()
	c.mu.Lock()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		c.err = services.Wrap(services.ErrExternalTool, "mpv", "read", "", err)
	} else {
		c.err = ErrClosed
	}
	c.mu.Unlock()
}

func (c *Client) dispatchEvent(line []byte) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return
	}
	select {
	case c.events <- ev:
	default:
		logging.WarnWithContext(c.logger, "mpv event dropped", "mpv_event_dropped",
			logging.String("event", ev.Name),
			logging.String(logging.FieldImpact, "a track change may be missed until the next event"),
		)
	}
}
