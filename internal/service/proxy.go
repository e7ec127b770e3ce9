// Package service is the canonical engine façade behind both protocol
// revisions. The per-version activities translate their wire shapes to the
// types here and back; nothing in this package branches on protocol version.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/quasar/internal/config"
	"github.com/oriys/quasar/internal/consumer"
	"github.com/oriys/quasar/internal/endpoint"
	"github.com/oriys/quasar/internal/metrics"
	"github.com/oriys/quasar/internal/producer"
	"github.com/oriys/quasar/internal/relay"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/route"
	"github.com/oriys/quasar/internal/selector"
	"github.com/oriys/quasar/internal/transaction"
)

// Proxy binds the engines into one façade.
type Proxy struct {
	cfg *config.Config

	routes    *route.Cache
	producers *producer.Engine
	consumers *consumer.Engine
	relays    *relay.Manager
	txHearts  *transaction.HeartbeatService
	converter endpoint.Converter
}

// NewProxy wires the façade. converter may be nil (identity).
func NewProxy(cfg *config.Config, routes *route.Cache, producers *producer.Engine,
	consumers *consumer.Engine, relays *relay.Manager,
	txHearts *transaction.HeartbeatService, converter endpoint.Converter) *Proxy {
	if converter == nil {
		converter = endpoint.IdentityConverter{}
	}
	return &Proxy{
		cfg:       cfg,
		routes:    routes,
		producers: producers,
		consumers: consumers,
		relays:    relays,
		txHearts:  txHearts,
		converter: converter,
	}
}

// Config exposes the proxy configuration to the activities.
func (p *Proxy) Config() *config.Config { return p.cfg }

func (p *Proxy) brokerTimeout() time.Duration {
	return time.Duration(p.cfg.DefaultBrokerTimeoutMillis) * time.Millisecond
}

// QueueView is one queue as advertised to clients.
type QueueView struct {
	Topic      string
	QueueID    int32
	Perm       int32
	BrokerName string
	Endpoints  endpoint.Endpoints
}

// advertise resolves the endpoints a client should be told. Local mode
// advertises the co-located broker directly and skips conversion; cluster
// mode requires the caller-advertised endpoint set and rewrites it through
// the converter (e.g. to publish DNS names instead of raw IPs).
func (p *Proxy) advertise(clientEndpoints endpoint.Endpoints) (endpoint.Endpoints, error) {
	if p.cfg.Mode == config.ModeLocal {
		return endpoint.ParseEndpoints(p.cfg.LocalBrokerAddr)
	}
	if clientEndpoints.IsEmpty() {
		return endpoint.Endpoints{}, endpoint.ErrMissingEndpoints
	}

	out := endpoint.Endpoints{}
	for _, a := range clientEndpoints.Addresses {
		converted, err := endpoint.ParseAddress(p.converter.Convert(a.String()))
		if err != nil {
			return endpoint.Endpoints{}, err
		}
		if len(out.Addresses) == 0 {
			out.Scheme = endpoint.SchemeOf(converted.Host)
		}
		out.Addresses = append(out.Addresses, converted)
	}
	return out, nil
}

// QueryRoute resolves the topic's advertised queue list. In cluster mode the
// advertised endpoint set must be present on the request.
func (p *Proxy) QueryRoute(ctx context.Context, topic string, clientEndpoints endpoint.Endpoints) ([]QueueView, error) {
	wrapper, err := p.routes.GetMessageQueue(ctx, topic)
	if err != nil {
		return nil, err
	}

	eps, err := p.advertise(clientEndpoints)
	if err != nil {
		return nil, err
	}
	views := make([]QueueView, 0, len(wrapper.Queues()))
	for _, q := range wrapper.Queues() {
		views = append(views, QueueView{
			Topic:      q.Topic,
			QueueID:    q.QueueID,
			Perm:       q.Perm,
			BrokerName: q.BrokerName,
			Endpoints:  eps,
		})
	}
	return views, nil
}

// QueryAssignment returns one readable entry per broker with the placeholder
// queue id; the broker load-balances at pop time.
func (p *Proxy) QueryAssignment(ctx context.Context, topic, group string, clientEndpoints endpoint.Endpoints) ([]QueueView, error) {
	wrapper, err := p.routes.GetMessageQueue(ctx, topic)
	if err != nil {
		return nil, err
	}

	assignments := selector.Assignments(wrapper)
	if len(assignments) == 0 {
		return nil, selector.ErrNoReadableQueue
	}
	eps, err := p.advertise(clientEndpoints)
	if err != nil {
		return nil, err
	}
	views := make([]QueueView, 0, len(assignments))
	for _, q := range assignments {
		views = append(views, QueueView{
			Topic:      q.Topic,
			QueueID:    q.QueueID,
			Perm:       q.Perm,
			BrokerName: q.BrokerName,
			Endpoints:  eps,
		})
	}
	return views, nil
}

// SendInput is the canonical publish request.
type SendInput struct {
	Group         string
	Topic         string
	Messages      []*remoting.Message
	Transactional bool
	DelayLevel    int32
	FIFOGroup     string
}

// Send publishes the input to one selected writable queue.
func (p *Proxy) Send(ctx context.Context, in *SendInput) ([]producer.SendResult, error) {
	queue, err := p.producers.SelectWriteQueue(ctx, in.Group, in.Topic)
	if err != nil {
		return nil, err
	}

	var sysFlag int32
	if in.Transactional {
		sysFlag |= remoting.TransactionPreparedFlag
	}
	for _, m := range in.Messages {
		if m.Property(remoting.PropertyUniqClientID) == "" {
			m.SetProperty(remoting.PropertyUniqClientID, uuid.NewString())
		}
		if in.Transactional {
			m.SetProperty(remoting.PropertyTransactionFlag, "true")
			m.SetProperty(remoting.PropertyProducerGroup, in.Group)
		}
		if in.DelayLevel > 0 {
			m.SetProperty(remoting.PropertyDelayLevel, strconv.FormatInt(int64(in.DelayLevel), 10))
		}
		if in.FIFOGroup != "" {
			m.SetProperty(remoting.PropertyShardingKey, in.FIFOGroup)
		}
	}

	header := &remoting.SendMessageRequestHeader{
		ProducerGroup: in.Group,
		Topic:         in.Topic,
		QueueID:       queue.QueueID,
		SysFlag:       sysFlag,
		BornTimestamp: time.Now().UnixMilli(),
		Properties:    remoting.MarshalProperties(in.Messages[0].Properties),
	}

	results, err := p.producers.Send(ctx, queue, in.Messages, header, p.brokerTimeout())
	if err == nil {
		metrics.RecordForward("send", len(in.Messages))
	}
	return results, err
}

// Receive pops messages for the group. The engine subtracts the long-polling
// reserve from the caller's deadline.
func (p *Proxy) Receive(ctx context.Context, req *consumer.ReceiveRequest) ([]*remoting.MessageExt, error) {
	msgs, err := p.consumers.Receive(ctx, req)
	switch {
	case errors.Is(err, consumer.ErrPollingFull):
		metrics.RecordPop("throttled")
	case err != nil:
		metrics.RecordPop("error")
	case len(msgs) == 0:
		metrics.RecordPop("empty")
	default:
		metrics.RecordPop("found")
	}
	return msgs, err
}

// Ack settles one receipt handle.
func (p *Proxy) Ack(ctx context.Context, group, handle string) error {
	err := p.consumers.Ack(ctx, group, handle, p.brokerTimeout())
	if err == nil {
		metrics.RecordForward("ack", 1)
	}
	return err
}

// Nack records a failed delivery: dead-letter once the attempt reaches the
// limit, otherwise extend invisibility along the backoff curve.
func (p *Proxy) Nack(ctx context.Context, group, handle string, deliveryAttempt, maxAttempts int32) error {
	if maxAttempts <= 0 {
		maxAttempts = int32(p.cfg.MaxDeliveryAttempts)
	}
	err := p.consumers.Nack(ctx, group, handle, deliveryAttempt, maxAttempts, p.brokerTimeout())
	if err == nil {
		metrics.RecordForward("nack", 1)
	}
	return err
}

// ChangeInvisible applies a new invisibility and returns the replacement
// handle.
func (p *Proxy) ChangeInvisible(ctx context.Context, group, handle string, invisible time.Duration) (string, error) {
	return p.consumers.ChangeInvisible(ctx, group, handle, invisible, p.brokerTimeout())
}

// ForwardToDeadLetter redirects the handle's message to the group DLQ.
func (p *Proxy) ForwardToDeadLetter(ctx context.Context, group, handle, msgID string, maxAttempts int32) error {
	if maxAttempts <= 0 {
		maxAttempts = int32(p.cfg.MaxDeliveryAttempts)
	}
	err := p.consumers.ForwardToDeadLetter(ctx, group, handle, msgID, maxAttempts, p.brokerTimeout())
	if err == nil {
		metrics.RecordForward("dlq", 1)
	}
	return err
}

// EndTransaction resolves a half message.
func (p *Proxy) EndTransaction(ctx context.Context, topic, group, transactionID, msgID string,
	resolution producer.Resolution, fromCheck bool) error {
	return p.producers.EndTransaction(ctx, topic, group, transactionID, msgID, resolution, fromCheck)
}

// Pull fetches messages from an explicit queue.
func (p *Proxy) Pull(ctx context.Context, req *consumer.PullRequest) (*consumer.PullResult, error) {
	return p.consumers.Pull(ctx, req, p.brokerTimeout())
}

// ResolveQueue turns a client-addressed (topic, broker, queueId) triple into
// a selectable queue through the route cache.
func (p *Proxy) ResolveQueue(ctx context.Context, topic, brokerName string, queueID int32) (route.SelectableMessageQueue, error) {
	wrapper, err := p.routes.GetMessageQueue(ctx, topic)
	if err != nil {
		return route.SelectableMessageQueue{}, err
	}
	addr, err := wrapper.BrokerAddr(brokerName)
	if err != nil {
		return route.SelectableMessageQueue{}, fmt.Errorf("%w: %v", route.ErrTopicNotFound, err)
	}
	return route.SelectableMessageQueue{
		MessageQueue: route.MessageQueue{Topic: topic, BrokerName: brokerName, QueueID: queueID},
		BrokerAddr:   addr,
		Perm:         route.PermRead | route.PermWrite,
	}, nil
}

// QueryOffset resolves a queue offset per policy.
func (p *Proxy) QueryOffset(ctx context.Context, queue route.SelectableMessageQueue,
	policy consumer.OffsetPolicy, timePoint time.Time) (int64, error) {
	return p.consumers.QueryOffset(ctx, queue, policy, timePoint, p.brokerTimeout())
}

// Heartbeat refreshes the client's relay channel.
func (p *Proxy) Heartbeat(group, clientID string) {
	if group == "" || clientID == "" {
		return
	}
	p.relays.Touch(relay.ChannelKey{Group: group, ClientID: clientID})
}

// NotifyClientTermination tears the client's relay channel down immediately.
func (p *Proxy) NotifyClientTermination(group, clientID string) {
	p.relays.Remove(relay.ChannelKey{Group: group, ClientID: clientID})
}

// PollRelay blocks for the next broker-originated command destined for the
// client.
func (p *Proxy) PollRelay(ctx context.Context, group, clientID string) (relay.Command, error) {
	return p.relays.Poll(ctx, relay.ChannelKey{Group: group, ClientID: clientID})
}

// CompleteRelay fulfils a pending relay response by nonce.
func (p *Proxy) CompleteRelay(nonce string, reply *remoting.Command) error {
	return p.relays.Complete(nonce, reply)
}
