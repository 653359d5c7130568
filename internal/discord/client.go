// Package discord speaks the local Discord client's IPC protocol to set and clear rich presence.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/Belphemur/KodiPresence/internal/apperrors"
	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/google/uuid"
)

const (
	protocolVersion = 1
	defaultTimeout  = 5 * time.Second

	cmdSetActivity = "SET_ACTIVITY"
	evtReady       = "READY"
	evtError       = "ERROR"
)

// Dialer opens a raw connection to the Discord client
type Dialer func(ctx context.Context) (io.ReadWriteCloser, error)

type handshake struct {
	Version  int    `json:"v"`
	ClientID string `json:"client_id"`
}

type command struct {
	Cmd   string `json:"cmd"`
	Args  any    `json:"args"`
	Nonce string `json:"nonce"`
}

type activityArgs struct {
	PID      int       `json:"pid"`
	Activity *Activity `json:"activity"`
}

type response struct {
	Cmd   string          `json:"cmd"`
	Evt   *string         `json:"evt"`
	Nonce *string         `json:"nonce"`
	Data  json.RawMessage `json:"data"`
}

type errorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type readyData struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

// Option customises a Client
type Option func(*Client)

// WithDialer replaces the platform IPC dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dial = d }
}

// WithTimeout bounds each request/response exchange when the context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Client is a single IPC connection to Discord. It is safe for concurrent use.
type Client struct {
	clientID string
	pid      int
	dial     Dialer
	timeout  time.Duration
	newNonce func() string

	mu   sync.Mutex
	conn io.ReadWriteCloser
}

// New creates a disconnected client for the Discord application clientID.
func New(clientID string, opts ...Option) *Client {
	c := &Client{
		clientID: clientID,
		pid:      os.Getpid(),
		dial:     dialIPC,
		timeout:  defaultTimeout,
		newNonce: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connected reports whether a handshake succeeded and the connection has not been lost since.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Connect dials Discord and performs the handshake, replacing any previous connection.
func (c *Client) Connect(ctx context.Context) error {
	logger := config.GetLogger()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()

	conn, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("dial discord: %w", err)
	}
	c.applyDeadline(ctx, conn)

	payload, err := json.Marshal(handshake{Version: protocolVersion, ClientID: c.clientID})
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := writeFrame(conn, OpHandshake, payload); err != nil {
		_ = conn.Close()
		return fmt.Errorf("send handshake: %w", classify(err))
	}

	op, body, err := readFrame(conn)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("read handshake reply: %w", classify(err))
	}
	if op == OpClose {
		_ = conn.Close()
		return fmt.Errorf("handshake rejected: %w", decodeError(body))
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		_ = conn.Close()
		return fmt.Errorf("decode handshake reply: %w", err)
	}
	if resp.Evt == nil || *resp.Evt != evtReady {
		_ = conn.Close()
		return fmt.Errorf("unexpected handshake reply %s", body)
	}

	var ready readyData
	_ = json.Unmarshal(resp.Data, &ready)
	logger.Info().Str("user", ready.User.Username).Msg("Connected to Discord")

	c.conn = conn
	return nil
}

// SetActivity publishes activity; a nil activity clears the presence.
// A lost connection is reported as apperrors.ErrPipeClosed and drops the connection.
func (c *Client) SetActivity(ctx context.Context, activity *Activity) error {
	nonce := c.newNonce()
	payload, err := json.Marshal(command{
		Cmd:   cmdSetActivity,
		Args:  activityArgs{PID: c.pid, Activity: activity},
		Nonce: nonce,
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", cmdSetActivity, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return apperrors.ErrPipeClosed
	}
	c.applyDeadline(ctx, c.conn)

	if err := writeFrame(c.conn, OpFrame, payload); err != nil {
		return c.dropLocked(err)
	}

	for {
		op, body, err := readFrame(c.conn)
		if err != nil {
			return c.dropLocked(err)
		}

		switch op {
		case OpClose:
			c.closeLocked()
			return fmt.Errorf("%w: %w", apperrors.ErrPipeClosed, decodeError(body))
		case OpPing:
			if err := writeFrame(c.conn, OpPong, body); err != nil {
				return c.dropLocked(err)
			}
			continue
		case OpFrame:
		default:
			continue
		}

		var resp response
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode %s reply: %w", cmdSetActivity, err)
		}
		if resp.Nonce == nil || *resp.Nonce != nonce {
			continue
		}
		if resp.Evt != nil && *resp.Evt == evtError {
			return decodeError(resp.Data)
		}
		return nil
	}
}

// ClearActivity removes the presence.
func (c *Client) ClearActivity(ctx context.Context) error {
	return c.SetActivity(ctx, nil)
}

// Close sends a CLOSE frame when connected and releases the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = writeFrame(c.conn, OpClose, []byte("{}"))
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) closeLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// dropLocked forgets the connection when err means it is gone.
func (c *Client) dropLocked(err error) error {
	err = classify(err)
	if errors.Is(err, apperrors.ErrPipeClosed) {
		c.closeLocked()
	}
	return err
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

func (c *Client) applyDeadline(ctx context.Context, conn io.ReadWriteCloser) {
	d, ok := conn.(deadliner)
	if !ok {
		return
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	_ = d.SetDeadline(deadline)
}

// classify maps the ways a pipe or socket reports a lost peer to ErrPipeClosed.
func classify(err error) error {
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, os.ErrClosed),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET),
		isPlatformClosed(err):
		return fmt.Errorf("%w: %w", apperrors.ErrPipeClosed, err)
	default:
		return err
	}
}

func decodeError(body []byte) error {
	var data errorData
	if err := json.Unmarshal(body, &data); err != nil {
		return &apperrors.DiscordError{Message: string(body)}
	}
	return &apperrors.DiscordError{Code: data.Code, Message: data.Message}
}
