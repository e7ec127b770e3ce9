// Package forwarder owns the pools of long-lived broker clients the engines
// relay through. Each role gets its own pool because retry, timeout, and
// concurrency policies differ per role: a read consumer holds connections
// through long-polling pops, a producer wants fast failure.
package forwarder

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oriys/quasar/internal/remoting"
)

// Role names one client pool with its own policy.
type Role string

const (
	RoleDefault             Role = "default"
	RoleProducer            Role = "producer"
	RoleReadConsumer        Role = "read-consumer"
	RoleWriteConsumer       Role = "write-consumer"
	RoleTransactionProducer Role = "transaction-producer"
)

// Roles lists every pool role in creation order.
var Roles = []Role{RoleDefault, RoleProducer, RoleReadConsumer, RoleWriteConsumer, RoleTransactionProducer}

// Policy bounds one role's broker calls.
type Policy struct {
	DialTimeout    time.Duration
	DefaultTimeout time.Duration
}

// DefaultPolicies returns the per-role policies. The read-consumer timeout
// leaves room for long-polling pops.
func DefaultPolicies() map[Role]Policy {
	return map[Role]Policy{
		RoleDefault:             {DialTimeout: 3 * time.Second, DefaultTimeout: 3 * time.Second},
		RoleProducer:            {DialTimeout: 3 * time.Second, DefaultTimeout: 3 * time.Second},
		RoleReadConsumer:        {DialTimeout: 3 * time.Second, DefaultTimeout: 35 * time.Second},
		RoleWriteConsumer:       {DialTimeout: 3 * time.Second, DefaultTimeout: 5 * time.Second},
		RoleTransactionProducer: {DialTimeout: 3 * time.Second, DefaultTimeout: 3 * time.Second},
	}
}

var (
	// ErrPoolShutdown is returned by Get after ShutdownAll.
	ErrPoolShutdown = errors.New("forwarder: pool shut down")
	// ErrBrokerUnavailable wraps client construction failures.
	ErrBrokerUnavailable = errors.New("forwarder: broker unavailable")
)

// Factory builds the invoker behind one instance name of one role. Cluster
// mode wires the TCP remoting client; local mode substitutes the in-process
// broker adapter.
type Factory func(role Role, policy Policy, instanceName string) (remoting.Invoker, error)

// clientFuture resolves to a started client exactly once; concurrent Get
// calls for the same key observe the identical instance.
type clientFuture struct {
	done   chan struct{}
	client remoting.Invoker
	err    error
}

// Pool keys started clients by instance name within one role.
type Pool struct {
	role    Role
	policy  Policy
	factory Factory

	mu      sync.Mutex
	clients map[string]*clientFuture
	order   []string
	closed  bool
}

func newPool(role Role, policy Policy, factory Factory) *Pool {
	return &Pool{
		role:    role,
		policy:  policy,
		factory: factory,
		clients: make(map[string]*clientFuture),
	}
}

// Get returns the started client for the instance name, creating it at most
// once per key. Construction happens outside the pool lock; concurrent
// callers for the same key await the same future.
func (p *Pool) Get(instanceName string) (remoting.Invoker, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolShutdown
	}
	f, ok := p.clients[instanceName]
	if !ok {
		f = &clientFuture{done: make(chan struct{})}
		p.clients[instanceName] = f
		p.order = append(p.order, instanceName)
		p.mu.Unlock()

		f.client, f.err = p.build(instanceName)
		if f.err != nil {
			p.mu.Lock()
			delete(p.clients, instanceName)
			if n := len(p.order); n > 0 && p.order[n-1] == instanceName {
				p.order = p.order[:n-1]
			}
			p.mu.Unlock()
		}
		close(f.done)
		return f.client, f.err
	}
	p.mu.Unlock()

	<-f.done
	return f.client, f.err
}

func (p *Pool) build(instanceName string) (remoting.Invoker, error) {
	client, err := p.factory(p.role, p.policy, instanceName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrBrokerUnavailable, p.role, instanceName, err)
	}
	if err := client.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrBrokerUnavailable, p.role, instanceName, err)
	}
	return client, nil
}

// shutdown closes every client in reverse-creation order.
func (p *Pool) shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	order := p.order
	clients := p.clients
	p.order = nil
	p.clients = nil
	p.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		f := clients[order[i]]
		<-f.done
		if f.client != nil {
			f.client.Shutdown()
		}
	}
}

// Manager groups the per-role pools.
type Manager struct {
	mu    sync.Mutex
	pools map[Role]*Pool
	order []Role
	open  bool
}

// NewManager builds one pool per role from the shared factory.
func NewManager(policies map[Role]Policy, factory Factory) *Manager {
	m := &Manager{pools: make(map[Role]*Pool, len(Roles))}
	for _, role := range Roles {
		policy, ok := policies[role]
		if !ok {
			policy = DefaultPolicies()[role]
		}
		m.pools[role] = newPool(role, policy, factory)
		m.order = append(m.order, role)
	}
	return m
}

// Get resolves a role's client for the instance name.
func (m *Manager) Get(role Role, instanceName string) (remoting.Invoker, error) {
	m.mu.Lock()
	pool, ok := m.pools[role]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("forwarder: unknown role %q", role)
	}
	return pool.Get(instanceName)
}

// Policy returns the role's configured policy.
func (m *Manager) Policy(role Role) Policy {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pools[role]; ok {
		return p.policy
	}
	return Policy{}
}

// StartAll marks the manager open. Idempotent; clients start lazily.
func (m *Manager) StartAll() {
	m.mu.Lock()
	m.open = true
	m.mu.Unlock()
}

// ShutdownAll drains every pool in reverse-creation order. Idempotent.
func (m *Manager) ShutdownAll() {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return
	}
	m.open = false
	order := append([]Role(nil), m.order...)
	m.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		m.pools[order[i]].shutdown()
	}
}
