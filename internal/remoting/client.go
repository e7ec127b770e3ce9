package remoting

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/oriys/quasar/internal/logging"
)

var (
	// ErrClientShutdown is returned for calls issued after Shutdown.
	ErrClientShutdown = errors.New("remoting: client shut down")
	// ErrConnDead is returned for requests pending on a connection that died.
	ErrConnDead = errors.New("remoting: connection dead")
	// ErrTimeout is returned when the broker does not reply within the
	// request timeout.
	ErrTimeout = errors.New("remoting: request timed out")
)

// Result delivers the outcome of an asynchronous invocation: exactly one of
// Cmd or Err is set.
type Result struct {
	Cmd *Command
	Err error
}

// ReplyError carries a broker reply whose code is not success. Transient
// store conditions (flush timeouts, slave unavailable) surface through it
// unchanged; retry policy lives above the proxy.
type ReplyError struct {
	Code   int32
	Remark string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("remoting: broker replied code=%d remark=%q", e.Code, e.Remark)
}

// IsTransientStoreCode reports whether the code names a retriable store
// condition.
func IsTransientStoreCode(code int32) bool {
	switch code {
	case RespFlushDiskTimeout, RespFlushSlaveTimeout, RespSlaveNotAvailable:
		return true
	}
	return false
}

// Invoker issues commands to a broker address and resolves replies
// asynchronously. The TCP client below implements it for cluster mode; local
// mode substitutes an in-process adapter.
type Invoker interface {
	Start() error
	Shutdown()
	InvokeAsync(ctx context.Context, addr string, cmd *Command, timeout time.Duration) <-chan Result
	InvokeOneway(ctx context.Context, addr string, cmd *Command) error
}

// BackRequestHandler processes a broker-originated request arriving on a
// forward connection. A nil return suppresses the reply.
type BackRequestHandler func(addr string, cmd *Command) *Command

// Client multiplexes asynchronous requests over one long-lived connection per
// broker address. Replies are matched to callers through the command's
// opaque id.
type Client struct {
	dialTimeout time.Duration

	mu     sync.Mutex
	conns  map[string]*conn
	closed bool

	onBackRequest BackRequestHandler
}

// NewClient builds a client. handler may be nil when the caller never expects
// broker-originated requests (e.g. name-server connections).
func NewClient(dialTimeout time.Duration, handler BackRequestHandler) *Client {
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	return &Client{
		dialTimeout:   dialTimeout,
		conns:         make(map[string]*conn),
		onBackRequest: handler,
	}
}

// Start is a no-op for the TCP client; connections are dialed lazily.
func (c *Client) Start() error { return nil }

// Shutdown closes every connection and fails all pending requests.
func (c *Client) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conns := make([]*conn, 0, len(c.conns))
	for _, cn := range c.conns {
		conns = append(conns, cn)
	}
	c.conns = nil
	c.mu.Unlock()

	for _, cn := range conns {
		cn.die(ErrClientShutdown)
	}
}

// InvokeAsync sends cmd to addr and returns a channel that receives exactly
// one Result. The timeout bounds the broker round-trip; ctx cancellation is
// observed before the write.
func (c *Client) InvokeAsync(ctx context.Context, addr string, cmd *Command, timeout time.Duration) <-chan Result {
	ch := make(chan Result, 1)
	if err := ctx.Err(); err != nil {
		ch <- Result{Err: err}
		return ch
	}

	cn, err := c.connection(addr)
	if err != nil {
		ch <- Result{Err: err}
		return ch
	}
	cn.send(cmd, timeout, ch)
	return ch
}

// InvokeOneway sends cmd without expecting a reply.
func (c *Client) InvokeOneway(ctx context.Context, addr string, cmd *Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cn, err := c.connection(addr)
	if err != nil {
		return err
	}
	cmd.MarkOneway()
	return cn.write(cmd)
}

func (c *Client) connection(addr string) (*conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientShutdown
	}
	if cn, ok := c.conns[addr]; ok {
		return cn, nil
	}

	nc, err := net.DialTimeout("tcp", addr, c.dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("remoting: dial %s: %w", addr, err)
	}
	cn := &conn{
		addr:    addr,
		nc:      nc,
		client:  c,
		pending: make(map[int32]*pendingReq),
	}
	c.conns[addr] = cn
	go cn.readLoop()
	return cn, nil
}

func (c *Client) dropConn(cn *conn) {
	c.mu.Lock()
	if c.conns != nil && c.conns[cn.addr] == cn {
		delete(c.conns, cn.addr)
	}
	c.mu.Unlock()
}

// pendingReq couples an in-flight request's reply slot with its deadline
// timer.
type pendingReq struct {
	ch    chan Result
	timer *time.Timer
}

type conn struct {
	addr   string
	nc     net.Conn
	client *Client

	mu      sync.Mutex
	pending map[int32]*pendingReq
	dead    bool
}

// send registers the pending reply slot, then writes the frame. Failures and
// timeouts complete the slot exactly once.
func (cn *conn) send(cmd *Command, timeout time.Duration, ch chan Result) {
	opaque := cmd.Opaque

	cn.mu.Lock()
	if cn.dead {
		cn.mu.Unlock()
		ch <- Result{Err: ErrConnDead}
		return
	}
	pr := &pendingReq{ch: ch}
	pr.timer = time.AfterFunc(timeout, func() {
		if cn.take(opaque) != nil {
			ch <- Result{Err: fmt.Errorf("%w after %s (%s)", ErrTimeout, timeout, cn.addr)}
		}
	})
	cn.pending[opaque] = pr
	cn.mu.Unlock()

	if err := cn.write(cmd); err != nil {
		if cn.take(opaque) != nil {
			ch <- Result{Err: err}
		}
		cn.die(err)
	}
}

// take removes and returns a pending slot, stopping its timer. A nil return
// means the slot was already resolved.
func (cn *conn) take(opaque int32) *pendingReq {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	pr, ok := cn.pending[opaque]
	if !ok {
		return nil
	}
	delete(cn.pending, opaque)
	pr.timer.Stop()
	return pr
}

func (cn *conn) write(cmd *Command) error {
	frame, err := cmd.Encode()
	if err != nil {
		return err
	}
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.dead {
		return ErrConnDead
	}
	_, err = cn.nc.Write(frame)
	if err != nil {
		return fmt.Errorf("remoting: write %s: %w", cn.addr, err)
	}
	return nil
}

func (cn *conn) readLoop() {
	r := bufio.NewReader(cn.nc)
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			cn.die(fmt.Errorf("remoting: read %s: %w", cn.addr, err))
			return
		}
		total := binary.BigEndian.Uint32(lenBuf[:])
		if total == 0 || total > maxFrameLength {
			cn.die(fmt.Errorf("remoting: bad frame length %d from %s", total, cn.addr))
			return
		}
		frame := make([]byte, total)
		if _, err := io.ReadFull(r, frame); err != nil {
			cn.die(fmt.Errorf("remoting: read %s: %w", cn.addr, err))
			return
		}

		cmd, err := Decode(frame)
		if err != nil {
			logging.Op().Warn("dropping undecodable frame", "addr", cn.addr, "error", err)
			continue
		}

		if cmd.IsResponse() {
			if pr := cn.take(cmd.Opaque); pr != nil {
				pr.ch <- Result{Cmd: cmd}
			}
			continue
		}
		cn.handleBackRequest(cmd)
	}
}

// handleBackRequest dispatches a broker-originated command off the read loop
// so a slow handler cannot stall response matching.
func (cn *conn) handleBackRequest(cmd *Command) {
	handler := cn.client.onBackRequest
	if handler == nil {
		logging.Op().Warn("no handler for broker-originated request", "code", cmd.Code, "addr", cn.addr)
		return
	}
	go func() {
		reply := handler(cn.addr, cmd)
		if reply == nil || cmd.IsOneway() {
			return
		}
		reply.Opaque = cmd.Opaque
		reply.Flag |= flagResponse
		if err := cn.write(reply); err != nil {
			logging.Op().Warn("failed to answer broker request", "code", cmd.Code, "addr", cn.addr, "error", err)
		}
	}()
}

// die fails every pending request and removes the connection from the
// client so the next call redials.
func (cn *conn) die(cause error) {
	cn.mu.Lock()
	if cn.dead {
		cn.mu.Unlock()
		return
	}
	cn.dead = true
	pending := cn.pending
	cn.pending = nil
	cn.mu.Unlock()

	cn.nc.Close()
	cn.client.dropConn(cn)
	for _, pr := range pending {
		pr.timer.Stop()
		pr.ch <- Result{Err: fmt.Errorf("%w: %v", ErrConnDead, cause)}
	}
}
