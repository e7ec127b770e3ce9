package selector

import (
	"testing"

	"github.com/oriys/quasar/internal/route"
)

func testWrapper() *route.TopicRouteWrapper {
	return route.NewTopicRouteWrapper("t", &route.TopicRouteData{
		QueueDatas: []route.QueueData{
			{BrokerName: "b1", ReadQueueNums: 2, WriteQueueNums: 4, Perm: route.PermRead | route.PermWrite},
			{BrokerName: "b2", ReadQueueNums: 2, WriteQueueNums: 2, Perm: route.PermRead},
		},
		BrokerDatas: []route.BrokerData{
			{Cluster: "c1", BrokerName: "b1", BrokerAddrs: map[int64]string{0: "10.0.0.1:10911"}},
			{Cluster: "c1", BrokerName: "b2", BrokerAddrs: map[int64]string{0: "10.0.0.2:10911"}},
		},
	})
}

func TestWriteSelectorRotates(t *testing.T) {
	s := NewWriteSelector()
	w := testWrapper()

	writable := w.WritableQueues()
	if len(writable) != 4 {
		t.Fatalf("got %d writable queues, want 4", len(writable))
	}

	seen := make(map[int32]int)
	for i := 0; i < 8; i++ {
		q, err := s.SelectForWrite("g", w)
		if err != nil {
			t.Fatalf("SelectForWrite: %v", err)
		}
		if !q.Writable() {
			t.Fatalf("selected non-writable queue %+v", q)
		}
		seen[q.QueueID]++
	}
	// Two full laps over four queues: every queue selected exactly twice.
	for id, count := range seen {
		if count != 2 {
			t.Errorf("queue %d selected %d times, want 2", id, count)
		}
	}
}

func TestWriteSelectorNoWritableQueue(t *testing.T) {
	s := NewWriteSelector()
	w := route.NewTopicRouteWrapper("t", &route.TopicRouteData{
		QueueDatas: []route.QueueData{
			{BrokerName: "b1", ReadQueueNums: 2, WriteQueueNums: 2, Perm: route.PermRead},
		},
		BrokerDatas: []route.BrokerData{
			{Cluster: "c1", BrokerName: "b1", BrokerAddrs: map[int64]string{0: "10.0.0.1:10911"}},
		},
	})
	if _, err := s.SelectForWrite("g", w); err != ErrNoWritableQueue {
		t.Fatalf("got %v, want ErrNoWritableQueue", err)
	}
}

func TestReadSelectorCoversAllBrokers(t *testing.T) {
	s := NewReadSelector()
	w := testWrapper()

	readable := w.ReadableQueues()
	if len(readable) != 4 { // 2 rw on b1 + 2 ro on b2
		t.Fatalf("got %d readable queues, want 4", len(readable))
	}

	brokers := make(map[string]bool)
	for i := 0; i < len(readable)*2; i++ {
		q, err := s.SelectForRead("g", w)
		if err != nil {
			t.Fatalf("SelectForRead: %v", err)
		}
		if !q.Readable() {
			t.Fatalf("selected non-readable queue %+v", q)
		}
		brokers[q.BrokerName] = true
	}
	if !brokers["b1"] || !brokers["b2"] {
		t.Fatalf("rotation did not cover all brokers: %v", brokers)
	}
}

func TestCursorsAreScopedPerGroupTopic(t *testing.T) {
	s := NewWriteSelector()
	w := testWrapper()

	// Exhaust one full lap for g1; g2's cursor must be independent, which
	// shows as each group still covering every queue on its own lap.
	countPerGroup := func(group string) map[int32]int {
		seen := make(map[int32]int)
		for i := 0; i < 4; i++ {
			q, err := s.SelectForWrite(group, w)
			if err != nil {
				t.Fatalf("SelectForWrite: %v", err)
			}
			seen[q.QueueID]++
		}
		return seen
	}
	for group, seen := range map[string]map[int32]int{"g1": countPerGroup("g1"), "g2": countPerGroup("g2")} {
		if len(seen) != 4 {
			t.Errorf("group %s covered %d queues in one lap, want 4", group, len(seen))
		}
	}
}

func TestAssignments(t *testing.T) {
	w := testWrapper()
	assignments := Assignments(w)
	if len(assignments) != 2 {
		t.Fatalf("got %d assignments, want one per readable broker", len(assignments))
	}
	for _, a := range assignments {
		if a.QueueID != AssignmentQueueID {
			t.Errorf("assignment queue id %d, want %d", a.QueueID, AssignmentQueueID)
		}
	}
}
