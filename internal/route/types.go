// Package route caches topic routing data fetched from the name service and
// derives selectable message queues from it.
package route

import (
	"fmt"
	"sort"
)

// Queue permission bits, matching the name-server's perm encoding.
const (
	PermRead  int32 = 0x4
	PermWrite int32 = 0x2
)

// MasterBrokerID is the broker id whose address serves reads and writes.
const MasterBrokerID int64 = 0

// QueueData describes one broker's queue allocation for a topic.
type QueueData struct {
	BrokerName     string `json:"brokerName"`
	ReadQueueNums  int32  `json:"readQueueNums"`
	WriteQueueNums int32  `json:"writeQueueNums"`
	Perm           int32  `json:"perm"`
	TopicSysFlag   int32  `json:"topicSysFlag"`
}

// BrokerData maps one broker name to its replica addresses.
type BrokerData struct {
	Cluster     string           `json:"cluster"`
	BrokerName  string           `json:"brokerName"`
	BrokerAddrs map[int64]string `json:"brokerAddrs"`
}

// MasterAddr returns the master replica's address, or "".
func (b BrokerData) MasterAddr() string {
	return b.BrokerAddrs[MasterBrokerID]
}

// TopicRouteData is the raw route record returned by the name service.
type TopicRouteData struct {
	OrderTopicConf string       `json:"orderTopicConf"`
	QueueDatas     []QueueData  `json:"queueDatas"`
	BrokerDatas    []BrokerData `json:"brokerDatas"`
}

// MessageQueue identifies one queue of a topic on a named broker.
type MessageQueue struct {
	Topic      string
	BrokerName string
	QueueID    int32
}

// SelectableMessageQueue is a message queue resolved to a broker address,
// annotated with its effective permission. Derived from a route on demand,
// never stored.
type SelectableMessageQueue struct {
	MessageQueue
	BrokerAddr string
	Perm       int32
}

// Readable reports whether the queue accepts pop/pull.
func (q SelectableMessageQueue) Readable() bool { return q.Perm&PermRead != 0 }

// Writable reports whether the queue accepts sends.
func (q SelectableMessageQueue) Writable() bool { return q.Perm&PermWrite != 0 }

// TopicRouteWrapper binds a route record to its topic and precomputes the
// selectable queue list clients observe. Queue ids are assigned contiguously
// per broker (read-only first, then write-only, then read-write) so ids
// remain stable across refreshes.
type TopicRouteWrapper struct {
	Topic  string
	Route  *TopicRouteData
	queues []SelectableMessageQueue
}

// NewTopicRouteWrapper resolves broker addresses and generates the queue
// list. Queue data referencing a broker with no master address is skipped.
func NewTopicRouteWrapper(topic string, data *TopicRouteData) *TopicRouteWrapper {
	w := &TopicRouteWrapper{Topic: topic, Route: data}

	addrs := make(map[string]string, len(data.BrokerDatas))
	for _, bd := range data.BrokerDatas {
		if addr := bd.MasterAddr(); addr != "" {
			addrs[bd.BrokerName] = addr
		}
	}

	qds := append([]QueueData(nil), data.QueueDatas...)
	sort.Slice(qds, func(i, j int) bool { return qds[i].BrokerName < qds[j].BrokerName })

	for _, qd := range qds {
		addr, ok := addrs[qd.BrokerName]
		if !ok {
			continue
		}
		w.queues = append(w.queues, genQueues(topic, qd, addr)...)
	}
	return w
}

// genQueues expands one QueueData into per-queue records. With both
// permission bits set, min(read, write) queues are read-write; the surplus
// on either side keeps the single permission.
func genQueues(topic string, qd QueueData, addr string) []SelectableMessageQueue {
	r, w := qd.ReadQueueNums, qd.WriteQueueNums
	var rwNums, roNums, woNums int32
	switch {
	case qd.Perm&PermRead != 0 && qd.Perm&PermWrite != 0:
		rwNums = min(r, w)
		roNums = r - rwNums
		woNums = w - rwNums
	case qd.Perm&PermRead != 0:
		roNums = r
	case qd.Perm&PermWrite != 0:
		woNums = w
	}

	total := roNums + woNums + rwNums
	queues := make([]SelectableMessageQueue, 0, total)
	next := int32(0)
	emit := func(n, perm int32) {
		for i := int32(0); i < n; i++ {
			queues = append(queues, SelectableMessageQueue{
				MessageQueue: MessageQueue{Topic: topic, BrokerName: qd.BrokerName, QueueID: next},
				BrokerAddr:   addr,
				Perm:         perm,
			})
			next++
		}
	}
	emit(roNums, PermRead)
	emit(woNums, PermWrite)
	emit(rwNums, PermRead|PermWrite)
	return queues
}

// Queues returns every generated queue in id order.
func (w *TopicRouteWrapper) Queues() []SelectableMessageQueue {
	return w.queues
}

// ReadableQueues returns the queues that accept pop/pull.
func (w *TopicRouteWrapper) ReadableQueues() []SelectableMessageQueue {
	return w.filter(SelectableMessageQueue.Readable)
}

// WritableQueues returns the queues that accept sends.
func (w *TopicRouteWrapper) WritableQueues() []SelectableMessageQueue {
	return w.filter(SelectableMessageQueue.Writable)
}

func (w *TopicRouteWrapper) filter(keep func(SelectableMessageQueue) bool) []SelectableMessageQueue {
	out := make([]SelectableMessageQueue, 0, len(w.queues))
	for _, q := range w.queues {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

// BrokerAddr resolves a broker name through the route's broker data.
func (w *TopicRouteWrapper) BrokerAddr(brokerName string) (string, error) {
	for _, bd := range w.Route.BrokerDatas {
		if bd.BrokerName == brokerName {
			if addr := bd.MasterAddr(); addr != "" {
				return addr, nil
			}
			break
		}
	}
	return "", fmt.Errorf("route: no master address for broker %q on topic %q", brokerName, w.Topic)
}

// Clusters returns the distinct cluster names hosting the topic.
func (w *TopicRouteWrapper) Clusters() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, bd := range w.Route.BrokerDatas {
		if _, ok := seen[bd.Cluster]; !ok {
			seen[bd.Cluster] = struct{}{}
			out = append(out, bd.Cluster)
		}
	}
	sort.Strings(out)
	return out
}
