package nameserv

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/route"
)

// stubInvoker answers per-address; addresses without a script are
// unreachable.
type stubInvoker struct {
	mu      sync.Mutex
	scripts map[string]func(cmd *remoting.Command) *remoting.Command
	calls   map[string]int
}

func (s *stubInvoker) Start() error { return nil }
func (s *stubInvoker) Shutdown()    {}

func (s *stubInvoker) InvokeAsync(ctx context.Context, addr string, cmd *remoting.Command, timeout time.Duration) <-chan remoting.Result {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[addr]++
	script := s.scripts[addr]
	s.mu.Unlock()

	ch := make(chan remoting.Result, 1)
	if script == nil {
		ch <- remoting.Result{Err: remoting.ErrConnDead}
		return ch
	}
	resp := script(cmd)
	resp.Opaque = cmd.Opaque
	ch <- remoting.Result{Cmd: resp}
	return ch
}

func (s *stubInvoker) InvokeOneway(ctx context.Context, addr string, cmd *remoting.Command) error {
	return nil
}

func routeResponse(t *testing.T) *remoting.Command {
	t.Helper()
	body, err := json.Marshal(&route.TopicRouteData{
		QueueDatas: []route.QueueData{{BrokerName: "b", ReadQueueNums: 4, WriteQueueNums: 4, Perm: 6}},
		BrokerDatas: []route.BrokerData{
			{Cluster: "c1", BrokerName: "b", BrokerAddrs: map[int64]string{0: "10.0.0.1:10911"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp := &remoting.Command{Code: remoting.RespSuccess}
	resp.Body = body
	return resp
}

func TestFetchTopicRoute(t *testing.T) {
	invoker := &stubInvoker{scripts: map[string]func(cmd *remoting.Command) *remoting.Command{
		"ns1:9876": func(cmd *remoting.Command) *remoting.Command {
			if cmd.Ext("topic") != "t" {
				t.Errorf("request topic %q", cmd.Ext("topic"))
			}
			return routeResponse(t)
		},
	}}
	client, err := NewClient([]string{"ns1:9876"}, invoker, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	data, err := client.FetchTopicRoute(context.Background(), "t")
	if err != nil {
		t.Fatalf("FetchTopicRoute: %v", err)
	}
	if len(data.BrokerDatas) != 1 || data.BrokerDatas[0].BrokerName != "b" {
		t.Fatalf("route %+v", data)
	}
}

func TestFetchTopicRouteNotFound(t *testing.T) {
	invoker := &stubInvoker{scripts: map[string]func(cmd *remoting.Command) *remoting.Command{
		"ns1:9876": func(cmd *remoting.Command) *remoting.Command {
			return &remoting.Command{Code: remoting.RespTopicNotExist, Remark: "no route"}
		},
	}}
	client, err := NewClient([]string{"ns1:9876"}, invoker, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.FetchTopicRoute(context.Background(), "missing")
	if !errors.Is(err, route.ErrTopicNotFound) {
		t.Fatalf("got %v, want ErrTopicNotFound", err)
	}
}

func TestFetchTopicRouteFailsOver(t *testing.T) {
	invoker := &stubInvoker{scripts: map[string]func(cmd *remoting.Command) *remoting.Command{
		"ns2:9876": func(cmd *remoting.Command) *remoting.Command { return routeResponse(t) },
	}}
	client, err := NewClient([]string{"ns1:9876", "ns2:9876"}, invoker, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	// Regardless of which address the round-robin starts on, the reachable
	// one must eventually answer.
	if _, err := client.FetchTopicRoute(context.Background(), "t"); err != nil {
		t.Fatalf("FetchTopicRoute with one dead address: %v", err)
	}
}

func TestFetchTopicRouteAllDead(t *testing.T) {
	invoker := &stubInvoker{scripts: map[string]func(cmd *remoting.Command) *remoting.Command{}}
	client, err := NewClient([]string{"ns1:9876", "ns2:9876"}, invoker, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.FetchTopicRoute(context.Background(), "t"); err == nil {
		t.Fatal("expected error when every address is unreachable")
	}
}

func TestNewClientRequiresAddresses(t *testing.T) {
	if _, err := NewClient(nil, &stubInvoker{}, time.Second); err == nil {
		t.Fatal("expected error for empty address list")
	}
}
