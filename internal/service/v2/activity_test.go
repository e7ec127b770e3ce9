package v2

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oriys/quasar/api/mqv2"
	"github.com/oriys/quasar/internal/config"
	"github.com/oriys/quasar/internal/consumer"
	"github.com/oriys/quasar/internal/endpoint"
	"github.com/oriys/quasar/internal/forwarder"
	"github.com/oriys/quasar/internal/producer"
	"github.com/oriys/quasar/internal/relay"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/retrypolicy"
	"github.com/oriys/quasar/internal/route"
	"github.com/oriys/quasar/internal/selector"
	"github.com/oriys/quasar/internal/service"
	"github.com/oriys/quasar/internal/transaction"
)

const brokerAddr = "10.0.0.1:10911"

type scriptedInvoker struct {
	mu       sync.Mutex
	handlers map[int32]func(cmd *remoting.Command) *remoting.Command
}

func (s *scriptedInvoker) Start() error { return nil }
func (s *scriptedInvoker) Shutdown()    {}

func (s *scriptedInvoker) InvokeAsync(ctx context.Context, addr string, cmd *remoting.Command, timeout time.Duration) <-chan remoting.Result {
	s.mu.Lock()
	handler := s.handlers[cmd.Code]
	s.mu.Unlock()

	ch := make(chan remoting.Result, 1)
	if handler == nil {
		ch <- remoting.Result{Cmd: remoting.NewResponse(remoting.RespSuccess, cmd.Opaque, "")}
		return ch
	}
	resp := handler(cmd)
	resp.Opaque = cmd.Opaque
	ch <- remoting.Result{Cmd: resp}
	return ch
}

func (s *scriptedInvoker) InvokeOneway(ctx context.Context, addr string, cmd *remoting.Command) error {
	return nil
}

type stubFetcher struct{}

func (stubFetcher) FetchTopicRoute(ctx context.Context, topic string) (*route.TopicRouteData, error) {
	if topic == "notExistTopic" {
		return nil, fmt.Errorf("%w: No topic route info in name server for the topic: notExistTopic",
			route.ErrTopicNotFound)
	}
	return &route.TopicRouteData{
		QueueDatas: []route.QueueData{
			{BrokerName: "b", ReadQueueNums: 4, WriteQueueNums: 8, Perm: route.PermRead | route.PermWrite},
		},
		BrokerDatas: []route.BrokerData{
			{Cluster: "c1", BrokerName: "b", BrokerAddrs: map[int64]string{0: brokerAddr}},
		},
	}, nil
}

func newActivity(t *testing.T, mode config.ProxyMode) (*Activity, *scriptedInvoker) {
	t.Helper()
	invoker := &scriptedInvoker{handlers: make(map[int32]func(cmd *remoting.Command) *remoting.Command)}
	clients := forwarder.NewManager(forwarder.DefaultPolicies(),
		func(role forwarder.Role, policy forwarder.Policy, instance string) (remoting.Invoker, error) {
			return invoker, nil
		})
	clients.StartAll()
	t.Cleanup(clients.ShutdownAll)

	cfg := config.DefaultConfig()
	cfg.Mode = mode
	cfg.LocalBrokerName = "b"
	cfg.LocalBrokerAddr = brokerAddr

	routes := route.NewCache(stubFetcher{}, route.CacheConfig{TTL: time.Minute})
	policy, err := retrypolicy.New(cfg.MessageDelayLevel, 0, 0, 0)
	if err != nil {
		t.Fatalf("retrypolicy: %v", err)
	}
	txHearts := transaction.NewHeartbeatService(transaction.HeartbeatConfig{}, routes, clients)
	producers := producer.NewEngine(routes, selector.NewWriteSelector(), clients, policy, txHearts)
	consumers := consumer.NewEngine(consumer.Config{DefaultTimeout: time.Second},
		routes, selector.NewReadSelector(), clients, policy, producers)
	relays := relay.NewManager(relay.Config{})
	relays.Start()
	t.Cleanup(relays.Shutdown)

	proxy := service.NewProxy(cfg, routes, producers, consumers, relays, txHearts, endpoint.IdentityConverter{})
	return NewActivity(proxy), invoker
}

func clientEndpoints() *mqv2.Endpoints {
	return &mqv2.Endpoints{
		Scheme:    mqv2.AddressSchemeIPv4,
		Addresses: []*mqv2.Address{{Host: "203.0.113.5", Port: 8081}},
	}
}

func TestQueryRouteClusterModeMissingEndpoints(t *testing.T) {
	a, _ := newActivity(t, config.ModeCluster)

	resp, err := a.QueryRoute(context.Background(), &mqv2.QueryRouteRequest{
		Topic: &mqv2.Resource{Name: "t"},
	})
	if err != nil {
		t.Fatalf("QueryRoute: %v", err)
	}
	if resp.Status.Code != mqv2.CodeInvalidArgument {
		t.Fatalf("status %v, want INVALID_ARGUMENT", resp.Status)
	}
	if len(resp.MessageQueues) != 0 {
		t.Fatalf("got %d queues, want none on invalid request", len(resp.MessageQueues))
	}
}

func TestQueryRouteUnknownTopic(t *testing.T) {
	a, _ := newActivity(t, config.ModeCluster)

	resp, err := a.QueryRoute(context.Background(), &mqv2.QueryRouteRequest{
		Topic:     &mqv2.Resource{Name: "notExistTopic"},
		Endpoints: clientEndpoints(),
	})
	if err != nil {
		t.Fatalf("QueryRoute: %v", err)
	}
	if resp.Status.Code != mqv2.CodeNotFound {
		t.Fatalf("status %v, want NOT_FOUND", resp.Status)
	}
	if !strings.Contains(resp.Status.Message, "No topic route info") {
		t.Fatalf("status message %q does not carry the broker remark", resp.Status.Message)
	}
}

func TestQueryRouteAdvertisesQueues(t *testing.T) {
	a, _ := newActivity(t, config.ModeCluster)

	resp, err := a.QueryRoute(context.Background(), &mqv2.QueryRouteRequest{
		Topic:     &mqv2.Resource{Name: "t"},
		Endpoints: clientEndpoints(),
	})
	if err != nil {
		t.Fatalf("QueryRoute: %v", err)
	}
	if resp.Status.Code != mqv2.CodeOK {
		t.Fatalf("status %v", resp.Status)
	}
	// read=4 write=8 rw: 8 queues, first 4 write-only, next 4 read-write.
	if len(resp.MessageQueues) != 8 {
		t.Fatalf("got %d queues, want 8", len(resp.MessageQueues))
	}
	for i, mq := range resp.MessageQueues {
		if mq.Id != int32(i) {
			t.Errorf("queue %d has id %d", i, mq.Id)
		}
		want := mqv2.PermissionWrite
		if i >= 4 {
			want = mqv2.PermissionReadWrite
		}
		if mq.Permission != want {
			t.Errorf("queue %d permission %d, want %d", i, mq.Permission, want)
		}
		if mq.Broker.Endpoints == nil || len(mq.Broker.Endpoints.Addresses) == 0 {
			t.Errorf("queue %d advertised without endpoints", i)
		}
	}
}

func TestQueryRouteLocalModeWithoutEndpoints(t *testing.T) {
	a, _ := newActivity(t, config.ModeLocal)

	resp, err := a.QueryRoute(context.Background(), &mqv2.QueryRouteRequest{
		Topic: &mqv2.Resource{Name: "t"},
	})
	if err != nil {
		t.Fatalf("QueryRoute: %v", err)
	}
	if resp.Status.Code != mqv2.CodeOK {
		t.Fatalf("status %v, want OK in local mode without client endpoints", resp.Status)
	}
	for _, mq := range resp.MessageQueues {
		eps := mq.Broker.Endpoints
		if len(eps.Addresses) != 1 || eps.Addresses[0].Host != "10.0.0.1" {
			t.Fatalf("local mode advertised %+v, want the co-located broker", eps)
		}
	}
}

func TestQueryAssignment(t *testing.T) {
	a, _ := newActivity(t, config.ModeCluster)

	resp, err := a.QueryAssignment(context.Background(), &mqv2.QueryAssignmentRequest{
		Topic:     &mqv2.Resource{Name: "t"},
		Group:     &mqv2.Resource{Name: "g"},
		ClientId:  "c1",
		Endpoints: clientEndpoints(),
	})
	if err != nil {
		t.Fatalf("QueryAssignment: %v", err)
	}
	if resp.Status.Code != mqv2.CodeOK {
		t.Fatalf("status %v", resp.Status)
	}
	if len(resp.Assignments) != 1 {
		t.Fatalf("got %d assignments, want one per readable broker", len(resp.Assignments))
	}
	if resp.Assignments[0].MessageQueue.Id != selector.AssignmentQueueID {
		t.Fatalf("assignment queue id %d, want placeholder", resp.Assignments[0].MessageQueue.Id)
	}
}

func TestSendMessage(t *testing.T) {
	a, invoker := newActivity(t, config.ModeCluster)
	invoker.handlers[remoting.CodeSendMessage] = func(cmd *remoting.Command) *remoting.Command {
		return &remoting.Command{Code: remoting.RespSuccess, ExtFields: map[string]string{
			"msgId": "MID1", "queueId": "1", "queueOffset": "9",
		}}
	}

	resp, err := a.SendMessage(context.Background(), &mqv2.SendMessageRequest{
		Group: &mqv2.Resource{Name: "g"},
		Messages: []*mqv2.Message{{
			Topic:            &mqv2.Resource{Name: "t"},
			SystemProperties: &mqv2.SystemProperties{Tag: "tagA"},
			Body:             []byte("hello"),
		}},
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if resp.Status.Code != mqv2.CodeOK {
		t.Fatalf("status %v", resp.Status)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].MessageId != "MID1" || resp.Entries[0].Offset != 9 {
		t.Fatalf("entries %+v", resp.Entries)
	}
}

func TestReceiveThenAckThroughActivity(t *testing.T) {
	a, invoker := newActivity(t, config.ModeCluster)
	invoker.handlers[remoting.CodePopMessage] = func(cmd *remoting.Command) *remoting.Command {
		msg := &remoting.MessageExt{QueueID: 3, QueueOffset: 42}
		msg.Topic = "t"
		msg.SetProperty(remoting.PropertyUniqClientID, "MID1")
		body, _ := remoting.EncodeMessageExt(msg)
		resp := &remoting.Command{Code: remoting.RespSuccess, ExtFields: map[string]string{
			"popTime": "1700000000000", "invisibleTime": "30000", "reviveQid": "2",
			"startOffsetInfo": "t 3 42", "msgOffsetInfo": "t 3 42",
		}}
		resp.Body = body
		return resp
	}

	recv, err := a.ReceiveMessage(context.Background(), &mqv2.ReceiveMessageRequest{
		Group:     &mqv2.Resource{Name: "g"},
		Topic:     &mqv2.Resource{Name: "t"},
		BatchSize: 16,
	})
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	if recv.Status.Code != mqv2.CodeOK || len(recv.Messages) != 1 {
		t.Fatalf("receive %+v", recv)
	}
	handle := recv.Messages[0].SystemProperties.ReceiptHandle
	if handle == "" {
		t.Fatal("message carries no receipt handle")
	}

	ack, err := a.AckMessage(context.Background(), &mqv2.AckMessageRequest{
		Group:   &mqv2.Resource{Name: "g"},
		Topic:   &mqv2.Resource{Name: "t"},
		Entries: []*mqv2.AckMessageEntry{{MessageId: "MID1", ReceiptHandle: handle}},
	})
	if err != nil {
		t.Fatalf("AckMessage: %v", err)
	}
	if ack.Status.Code != mqv2.CodeOK || len(ack.Entries) != 1 {
		t.Fatalf("ack %+v", ack)
	}
}

func TestHealthCheck(t *testing.T) {
	a, _ := newActivity(t, config.ModeCluster)
	resp, err := a.HealthCheck(context.Background(), &mqv2.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if resp.Status.Code != mqv2.CodeOK {
		t.Fatalf("status %v", resp.Status)
	}
}
