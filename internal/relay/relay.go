// Package relay tunnels rare broker-originated commands (transaction checks,
// runtime inspection, direct consume) to a specific client. Each (group,
// client id) pair owns a virtual channel with an outbound mailbox the client
// drains through its poll stream; replies reference a nonce that resolves
// the pending response the broker side is awaiting.
package relay

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/quasar/internal/logging"
	"github.com/oriys/quasar/internal/remoting"
)

var (
	// ErrNoClient reports that no client of the target group is connected.
	ErrNoClient = errors.New("relay: no client for group")
	// ErrChannelClosed reports a poll on a removed channel.
	ErrChannelClosed = errors.New("relay: channel closed")
	// ErrUnknownNonce reports a client response with no pending entry.
	ErrUnknownNonce = errors.New("relay: unknown nonce")
	// ErrSystemBusy is the synthetic failure applied to pending responses
	// the client never answered.
	ErrSystemBusy = errors.New("relay: system busy")
)

// ChannelKey identifies one client's virtual channel.
type ChannelKey struct {
	Group    string
	ClientID string
}

// Command is one broker-originated request on its way to a client.
type Command struct {
	Nonce string
	Cmd   *remoting.Command
}

// Result resolves a dispatched command: exactly one of Cmd or Err is set.
type Result struct {
	Cmd *remoting.Command
	Err error
}

const mailboxCapacity = 16

// channel is open until closeChannel runs, either from the sweeper once the
// client has stopped polling past the expiry or from Remove. There is no
// separate expired state, and closing is one-way.
type channel struct {
	key     ChannelKey
	mailbox chan Command

	mu         sync.Mutex
	lastPollAt time.Time
	closed     bool
}

func (c *channel) touch(now time.Time) {
	c.mu.Lock()
	c.lastPollAt = now
	c.mu.Unlock()
}

func (c *channel) idleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastPollAt)
}

// trySend enqueues without blocking; false when the mailbox is full or the
// channel is closed.
func (c *channel) trySend(cmd Command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.mailbox <- cmd:
		return true
	default:
		return false
	}
}

type pendingResponse struct {
	ch        chan Result
	createdAt time.Time
}

// Config bounds channel and pending-response lifetimes.
type Config struct {
	ResponseTimeout time.Duration
	ChannelExpire   time.Duration
	SweepInterval   time.Duration
}

// Manager owns every relay channel and the nonce → pending-response table.
type Manager struct {
	cfg Config

	mu       sync.Mutex
	channels map[ChannelKey]*channel

	pendingMu sync.Mutex
	pending   map[string]*pendingResponse

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewManager builds the manager; call Start to launch the sweeper.
func NewManager(cfg Config) *Manager {
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = 20 * time.Second
	}
	if cfg.ChannelExpire <= 0 {
		cfg.ChannelExpire = 120 * time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Second
	}
	return &Manager{
		cfg:      cfg,
		channels: make(map[ChannelKey]*channel),
		pending:  make(map[string]*pendingResponse),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background sweeper.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.sweepLoop()
}

// Shutdown stops the sweeper and fails every pending response.
func (m *Manager) Shutdown() {
	m.once.Do(func() { close(m.stopCh) })
	m.wg.Wait()

	m.pendingMu.Lock()
	pending := m.pending
	m.pending = make(map[string]*pendingResponse)
	m.pendingMu.Unlock()
	for _, p := range pending {
		p.ch <- Result{Err: ErrSystemBusy}
	}
}

// Touch refreshes (or creates) the channel for a polling or heartbeating
// client.
func (m *Manager) Touch(key ChannelKey) {
	m.getOrCreate(key)
}

// Remove tears down a terminating client's channel immediately rather than
// waiting for the sweeper.
func (m *Manager) Remove(key ChannelKey) {
	m.mu.Lock()
	ch, ok := m.channels[key]
	if ok {
		delete(m.channels, key)
	}
	m.mu.Unlock()
	if ok {
		m.closeChannel(ch)
	}
}

func (m *Manager) getOrCreate(key ChannelKey) *channel {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[key]
	if !ok {
		ch = &channel{
			key:     key,
			mailbox: make(chan Command, mailboxCapacity),
		}
		m.channels[key] = ch
	}
	ch.touch(now)
	return ch
}

// Poll blocks until a command is available for the client or the context
// ends. Used by the server-streaming poll RPC.
func (m *Manager) Poll(ctx context.Context, key ChannelKey) (Command, error) {
	ch := m.getOrCreate(key)
	select {
	case cmd, ok := <-ch.mailbox:
		if !ok {
			return Command{}, ErrChannelClosed
		}
		ch.touch(time.Now())
		return cmd, nil
	case <-ctx.Done():
		return Command{}, ctx.Err()
	}
}

// Dispatch pushes a broker-originated command toward one client of the
// group, chosen uniformly at random when several are connected, and returns
// the channel on which the client's response (or the sweeper's synthetic
// SYSTEM_BUSY) arrives.
func (m *Manager) Dispatch(group string, cmd *remoting.Command) (<-chan Result, error) {
	m.mu.Lock()
	var candidates []*channel
	for key, ch := range m.channels {
		if key.Group == group {
			candidates = append(candidates, ch)
		}
	}
	m.mu.Unlock()
	if len(candidates) == 0 {
		return nil, ErrNoClient
	}
	target := candidates[rand.Intn(len(candidates))]

	nonce := uuid.NewString()
	p := &pendingResponse{ch: make(chan Result, 1), createdAt: time.Now()}
	m.pendingMu.Lock()
	m.pending[nonce] = p
	m.pendingMu.Unlock()

	if !target.trySend(Command{Nonce: nonce, Cmd: cmd}) {
		m.dropPending(nonce)
		return nil, ErrSystemBusy
	}
	return p.ch, nil
}

// Complete fulfils a pending response with the client's reply.
func (m *Manager) Complete(nonce string, reply *remoting.Command) error {
	p := m.dropPending(nonce)
	if p == nil {
		return ErrUnknownNonce
	}
	p.ch <- Result{Cmd: reply}
	return nil
}

func (m *Manager) dropPending(nonce string) *pendingResponse {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	p, ok := m.pending[nonce]
	if !ok {
		return nil
	}
	delete(m.pending, nonce)
	return p
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

// sweep fails pending responses older than the response timeout and removes
// channels whose client has stopped polling.
func (m *Manager) sweep(now time.Time) {
	var expired []*pendingResponse
	m.pendingMu.Lock()
	for nonce, p := range m.pending {
		if now.Sub(p.createdAt) >= m.cfg.ResponseTimeout {
			delete(m.pending, nonce)
			expired = append(expired, p)
		}
	}
	m.pendingMu.Unlock()
	for _, p := range expired {
		p.ch <- Result{Err: ErrSystemBusy}
	}

	var dead []*channel
	m.mu.Lock()
	for key, ch := range m.channels {
		if ch.idleSince(now) >= m.cfg.ChannelExpire {
			delete(m.channels, key)
			dead = append(dead, ch)
		}
	}
	m.mu.Unlock()
	for _, ch := range dead {
		m.closeChannel(ch)
		logging.Op().Info("relay channel expired", "group", ch.key.Group, "clientId", ch.key.ClientID)
	}
}

// closeChannel drains undelivered commands so their pending responses fail
// promptly instead of waiting out the sweeper.
func (m *Manager) closeChannel(ch *channel) {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true
	ch.mu.Unlock()

	close(ch.mailbox)
	for cmd := range ch.mailbox {
		if p := m.dropPending(cmd.Nonce); p != nil {
			p.ch <- Result{Err: ErrSystemBusy}
		}
	}
}
