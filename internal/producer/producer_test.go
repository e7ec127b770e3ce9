package producer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oriys/quasar/internal/forwarder"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/retrypolicy"
	"github.com/oriys/quasar/internal/route"
	"github.com/oriys/quasar/internal/selector"
	"github.com/oriys/quasar/internal/transaction"
)

const brokerAddr = "10.0.0.1:10911"

type sentCommand struct {
	addr   string
	cmd    *remoting.Command
	oneway bool
}

type scriptedInvoker struct {
	mu       sync.Mutex
	sent     []sentCommand
	handlers map[int32]func(cmd *remoting.Command) *remoting.Command
}

func newScriptedInvoker() *scriptedInvoker {
	return &scriptedInvoker{handlers: make(map[int32]func(cmd *remoting.Command) *remoting.Command)}
}

func (s *scriptedInvoker) on(code int32, h func(cmd *remoting.Command) *remoting.Command) {
	s.handlers[code] = h
}

func (s *scriptedInvoker) Start() error { return nil }
func (s *scriptedInvoker) Shutdown()    {}

func (s *scriptedInvoker) InvokeAsync(ctx context.Context, addr string, cmd *remoting.Command, timeout time.Duration) <-chan remoting.Result {
	s.mu.Lock()
	s.sent = append(s.sent, sentCommand{addr: addr, cmd: cmd})
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
	s.mu.Lock()
	s.sent = append(s.sent, sentCommand{addr: addr, cmd: cmd, oneway: true})
	s.mu.Unlock()
	return nil
}

func (s *scriptedInvoker) commandsWithCode(code int32) []sentCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentCommand
	for _, sc := range s.sent {
		if sc.cmd.Code == code {
			out = append(out, sc)
		}
	}
	return out
}

type stubFetcher struct {
	data *route.TopicRouteData
}

func (s *stubFetcher) FetchTopicRoute(ctx context.Context, topic string) (*route.TopicRouteData, error) {
	return s.data, nil
}

func newFixture(t *testing.T) (*Engine, *scriptedInvoker, *transaction.HeartbeatService) {
	t.Helper()
	invoker := newScriptedInvoker()
	clients := forwarder.NewManager(forwarder.DefaultPolicies(),
		func(role forwarder.Role, policy forwarder.Policy, instance string) (remoting.Invoker, error) {
			return invoker, nil
		})
	clients.StartAll()
	t.Cleanup(clients.ShutdownAll)

	routes := route.NewCache(&stubFetcher{data: &route.TopicRouteData{
		QueueDatas: []route.QueueData{
			{BrokerName: "b", ReadQueueNums: 4, WriteQueueNums: 4, Perm: route.PermRead | route.PermWrite},
		},
		BrokerDatas: []route.BrokerData{
			{Cluster: "c1", BrokerName: "b", BrokerAddrs: map[int64]string{0: brokerAddr}},
		},
	}}, route.CacheConfig{TTL: time.Minute})

	policy, err := retrypolicy.New("1s 5s 10s", 0, 0, 0)
	if err != nil {
		t.Fatalf("retrypolicy: %v", err)
	}
	txHearts := transaction.NewHeartbeatService(transaction.HeartbeatConfig{}, routes, clients)
	return NewEngine(routes, selector.NewWriteSelector(), clients, policy, txHearts), invoker, txHearts
}

func sendHeader(group, topic string, queue route.SelectableMessageQueue) *remoting.SendMessageRequestHeader {
	return &remoting.SendMessageRequestHeader{
		ProducerGroup: group,
		Topic:         topic,
		QueueID:       queue.QueueID,
		BornTimestamp: time.Now().UnixMilli(),
	}
}

func TestSendSingle(t *testing.T) {
	engine, invoker, _ := newFixture(t)
	invoker.on(remoting.CodeSendMessage, func(cmd *remoting.Command) *remoting.Command {
		return &remoting.Command{Code: remoting.RespSuccess, ExtFields: map[string]string{
			"msgId": "MID1", "queueId": "2", "queueOffset": "7",
		}}
	})

	queue, err := engine.SelectWriteQueue(context.Background(), "g", "t")
	if err != nil {
		t.Fatalf("SelectWriteQueue: %v", err)
	}
	msg := &remoting.Message{Topic: "t", Body: []byte("x")}
	results, err := engine.Send(context.Background(), queue, []*remoting.Message{msg},
		sendHeader("g", "t", queue), time.Second)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Status != SendOK || r.MsgID != "MID1" || r.QueueOffset != 7 || r.Queue.QueueID != 2 {
		t.Fatalf("result %+v", r)
	}

	sent := invoker.commandsWithCode(remoting.CodeSendMessage)
	if len(sent) != 1 || sent[0].addr != brokerAddr {
		t.Fatalf("send not relayed to the selected broker: %+v", sent)
	}
}

func TestSendBatchPreservesOrder(t *testing.T) {
	engine, invoker, _ := newFixture(t)
	invoker.on(remoting.CodeSendBatchMessage, func(cmd *remoting.Command) *remoting.Command {
		return &remoting.Command{Code: remoting.RespSuccess, ExtFields: map[string]string{
			"msgId": "MID", "queueId": "1", "queueOffset": "100",
		}}
	})

	queue, err := engine.SelectWriteQueue(context.Background(), "g", "t")
	if err != nil {
		t.Fatalf("SelectWriteQueue: %v", err)
	}
	msgs := []*remoting.Message{
		{Topic: "t", Body: []byte("a")},
		{Topic: "t", Body: []byte("b")},
		{Topic: "t", Body: []byte("c")},
	}
	results, err := engine.Send(context.Background(), queue, msgs, sendHeader("g", "t", queue), time.Second)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want one per message", len(results))
	}
	for i, r := range results {
		if r.QueueOffset != int64(100+i) {
			t.Errorf("result %d offset %d, want %d (broker order)", i, r.QueueOffset, 100+i)
		}
	}

	// Every batch member shares the synthesized unique id.
	id := msgs[0].Property(remoting.PropertyUniqClientID)
	if id == "" {
		t.Fatal("batch id not synthesized")
	}
	for _, m := range msgs[1:] {
		if m.Property(remoting.PropertyUniqClientID) != id {
			t.Fatal("batch members carry different unique ids")
		}
	}
}

func TestSendTransientStatusPassedThrough(t *testing.T) {
	engine, invoker, _ := newFixture(t)
	invoker.on(remoting.CodeSendMessage, func(cmd *remoting.Command) *remoting.Command {
		return &remoting.Command{Code: remoting.RespFlushDiskTimeout, ExtFields: map[string]string{
			"msgId": "MID1", "queueId": "0", "queueOffset": "0",
		}}
	})

	queue, err := engine.SelectWriteQueue(context.Background(), "g", "t")
	if err != nil {
		t.Fatalf("SelectWriteQueue: %v", err)
	}
	results, err := engine.Send(context.Background(), queue,
		[]*remoting.Message{{Topic: "t", Body: []byte("x")}}, sendHeader("g", "t", queue), time.Second)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if results[0].Status != SendFlushDiskTimeout {
		t.Fatalf("status %v, want SendFlushDiskTimeout surfaced unchanged", results[0].Status)
	}
}

func TestSendBrokerErrorSurfaces(t *testing.T) {
	engine, invoker, _ := newFixture(t)
	invoker.on(remoting.CodeSendMessage, func(cmd *remoting.Command) *remoting.Command {
		return &remoting.Command{Code: remoting.RespSystemError, Remark: "store down"}
	})

	queue, err := engine.SelectWriteQueue(context.Background(), "g", "t")
	if err != nil {
		t.Fatalf("SelectWriteQueue: %v", err)
	}
	_, err = engine.Send(context.Background(), queue,
		[]*remoting.Message{{Topic: "t", Body: []byte("x")}}, sendHeader("g", "t", queue), time.Second)
	var reply *remoting.ReplyError
	if !errors.As(err, &reply) || reply.Code != remoting.RespSystemError {
		t.Fatalf("got %v, want ReplyError with the broker code", err)
	}
	if Retriable(err) {
		t.Fatal("system error wrongly retriable")
	}
}

func TestTransactionalSendMintsID(t *testing.T) {
	engine, invoker, _ := newFixture(t)
	invoker.on(remoting.CodeSendMessage, func(cmd *remoting.Command) *remoting.Command {
		return &remoting.Command{Code: remoting.RespSuccess, ExtFields: map[string]string{
			"msgId": "MID1", "queueId": "0", "queueOffset": "5", "transactionId": "btx-1",
		}}
	})

	queue, err := engine.SelectWriteQueue(context.Background(), "g", "t")
	if err != nil {
		t.Fatalf("SelectWriteQueue: %v", err)
	}
	header := sendHeader("g", "t", queue)
	header.SysFlag |= remoting.TransactionPreparedFlag
	results, err := engine.Send(context.Background(), queue,
		[]*remoting.Message{{Topic: "t", Body: []byte("x")}}, header, time.Second)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if results[0].TransactionID == "" {
		t.Fatal("transactional send minted no transaction id")
	}
	id, err := transaction.DecodeID(results[0].TransactionID)
	if err != nil {
		t.Fatalf("decode minted id: %v", err)
	}
	if id.BrokerName != "b" || id.BrokerTransactionID != "btx-1" || id.QueueOffset != 5 {
		t.Fatalf("minted id %+v", id)
	}
}

func TestEndTransactionOnewayToOwningBroker(t *testing.T) {
	engine, invoker, _ := newFixture(t)

	id := transaction.NewID("b", "btx-9", 9000, 41)
	err := engine.EndTransaction(context.Background(), "t", "g", id.Encode(), "MID9", ResolutionCommit, false)
	if err != nil {
		t.Fatalf("EndTransaction: %v", err)
	}

	ends := invoker.commandsWithCode(remoting.CodeEndTransaction)
	if len(ends) != 1 {
		t.Fatalf("got %d end-transaction commands, want 1", len(ends))
	}
	end := ends[0]
	if !end.oneway {
		t.Error("end transaction must be one-way")
	}
	if end.addr != brokerAddr {
		t.Errorf("sent to %q, want the owning broker %q", end.addr, brokerAddr)
	}
	if end.cmd.Ext("commitOrRollback") != "8" {
		t.Errorf("commitOrRollback %s, want commit flag", end.cmd.Ext("commitOrRollback"))
	}
	if end.cmd.Ext("transactionId") != "btx-9" {
		t.Errorf("broker transaction id %s", end.cmd.Ext("transactionId"))
	}
}

func TestEndTransactionMalformedID(t *testing.T) {
	engine, _, _ := newFixture(t)
	err := engine.EndTransaction(context.Background(), "t", "g", "garbage", "", ResolutionCommit, false)
	if !errors.Is(err, transaction.ErrMalformedTransactionID) {
		t.Fatalf("got %v, want ErrMalformedTransactionID", err)
	}
}

func TestRetriable(t *testing.T) {
	if !Retriable(&remoting.ReplyError{Code: remoting.RespSlaveNotAvailable}) {
		t.Fatal("slave-not-available should be retriable")
	}
	if Retriable(errors.New("plain")) {
		t.Fatal("plain errors are not retriable")
	}
}
