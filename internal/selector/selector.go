// Package selector picks broker queues for reads and writes. Cursors are
// scoped per (group, topic) and advance monotonically; the starting point is
// randomized so a fleet of fresh producers does not stampede one queue.
package selector

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/oriys/quasar/internal/route"
)

var (
	// ErrNoWritableQueue reports a topic with no queue accepting sends.
	ErrNoWritableQueue = errors.New("selector: no writable queue")
	// ErrNoReadableQueue reports a topic with no queue accepting pops.
	ErrNoReadableQueue = errors.New("selector: no readable queue")
)

// WriteSelector rotates over a topic's writable queues for publishing.
type WriteSelector interface {
	SelectForWrite(group string, wrapper *route.TopicRouteWrapper) (route.SelectableMessageQueue, error)
}

// ReadSelector rotates over a topic's readable queues for popping.
type ReadSelector interface {
	SelectForRead(group string, wrapper *route.TopicRouteWrapper) (route.SelectableMessageQueue, error)
}

type cursorTable struct {
	mu      sync.Mutex
	cursors map[string]*atomic.Uint64
}

func newCursorTable() *cursorTable {
	return &cursorTable{cursors: make(map[string]*atomic.Uint64)}
}

// next returns the post-increment cursor for the key, seeding new keys with
// a random start.
func (t *cursorTable) next(key string) uint64 {
	t.mu.Lock()
	c, ok := t.cursors[key]
	if !ok {
		c = &atomic.Uint64{}
		c.Store(rand.Uint64() >> 1)
		t.cursors[key] = c
	}
	t.mu.Unlock()
	return c.Add(1) - 1
}

func cursorKey(group, topic string) string {
	return group + "%" + topic
}

// RoundRobinWriteSelector is the default write selector.
type RoundRobinWriteSelector struct {
	cursors *cursorTable
}

func NewWriteSelector() *RoundRobinWriteSelector {
	return &RoundRobinWriteSelector{cursors: newCursorTable()}
}

func (s *RoundRobinWriteSelector) SelectForWrite(group string, wrapper *route.TopicRouteWrapper) (route.SelectableMessageQueue, error) {
	queues := wrapper.WritableQueues()
	if len(queues) == 0 {
		return route.SelectableMessageQueue{}, ErrNoWritableQueue
	}
	n := s.cursors.next(cursorKey(group, wrapper.Topic))
	return queues[n%uint64(len(queues))], nil
}

// RoundRobinReadSelector is the default read selector.
type RoundRobinReadSelector struct {
	cursors *cursorTable
}

func NewReadSelector() *RoundRobinReadSelector {
	return &RoundRobinReadSelector{cursors: newCursorTable()}
}

func (s *RoundRobinReadSelector) SelectForRead(group string, wrapper *route.TopicRouteWrapper) (route.SelectableMessageQueue, error) {
	queues := wrapper.ReadableQueues()
	if len(queues) == 0 {
		return route.SelectableMessageQueue{}, ErrNoReadableQueue
	}
	n := s.cursors.next(cursorKey(group, wrapper.Topic))
	return queues[n%uint64(len(queues))], nil
}

// AssignmentQueueID is the placeholder queue id on assignment replies; the
// broker load-balances across its own queues at pop time.
const AssignmentQueueID int32 = -1

// Assignments returns one entry per readable broker, each mapped to the
// placeholder queue id.
func Assignments(wrapper *route.TopicRouteWrapper) []route.SelectableMessageQueue {
	seen := make(map[string]struct{})
	var out []route.SelectableMessageQueue
	for _, q := range wrapper.ReadableQueues() {
		if _, ok := seen[q.BrokerName]; ok {
			continue
		}
		seen[q.BrokerName] = struct{}{}
		q.QueueID = AssignmentQueueID
		out = append(out, q)
	}
	return out
}
