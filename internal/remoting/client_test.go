package remoting

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// fakeBroker accepts connections and answers every inbound frame through
// respond. push writes a broker-originated request back down the same
// connection.
type fakeBroker struct {
	ln      net.Listener
	respond func(req *Command, push func(*Command)) *Command
}

func newFakeBroker(t *testing.T, respond func(req *Command, push func(*Command)) *Command) *fakeBroker {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	b := &fakeBroker{ln: ln, respond: respond}
	go b.serve()
	t.Cleanup(func() { ln.Close() })
	return b
}

func (b *fakeBroker) addr() string { return b.ln.Addr().String() }

func (b *fakeBroker) serve() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		go b.handle(conn)
	}
}

func (b *fakeBroker) handle(conn net.Conn) {
	defer conn.Close()
	write := func(cmd *Command) {
		out, err := cmd.Encode()
		if err == nil {
			conn.Write(out)
		}
	}
	r := bufio.NewReader(conn)
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return
		}
		frame := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(r, frame); err != nil {
			return
		}
		req, err := Decode(frame)
		if err != nil {
			return
		}
		resp := b.respond(req, write)
		if resp == nil {
			continue
		}
		resp.Opaque = req.Opaque
		resp.Flag |= flagResponse
		write(resp)
	}
}

func TestClientInvokeAsync(t *testing.T) {
	broker := newFakeBroker(t, func(req *Command, push func(*Command)) *Command {
		return &Command{Code: RespSuccess, Remark: "pong", ExtFields: map[string]string{"echo": req.Ext("ping")}}
	})

	client := NewClient(time.Second, nil)
	defer client.Shutdown()

	cmd := NewCommand(CodeHeartbeat, map[string]string{"ping": "hello"})
	res := <-client.InvokeAsync(context.Background(), broker.addr(), cmd, 2*time.Second)
	if res.Err != nil {
		t.Fatalf("InvokeAsync: %v", res.Err)
	}
	if res.Cmd.Code != RespSuccess || res.Cmd.Ext("echo") != "hello" {
		t.Fatalf("got %+v", res.Cmd)
	}
}

func TestClientConcurrentRequestsMatchByOpaque(t *testing.T) {
	broker := newFakeBroker(t, func(req *Command, push func(*Command)) *Command {
		return &Command{Code: RespSuccess, ExtFields: map[string]string{"echo": req.Ext("n")}}
	})

	client := NewClient(time.Second, nil)
	defer client.Shutdown()

	const n = 16
	chans := make([]<-chan Result, n)
	wants := make([]string, n)
	for i := 0; i < n; i++ {
		wants[i] = string(rune('a' + i))
		cmd := NewCommand(CodeHeartbeat, map[string]string{"n": wants[i]})
		chans[i] = client.InvokeAsync(context.Background(), broker.addr(), cmd, 2*time.Second)
	}
	for i, ch := range chans {
		res := <-ch
		if res.Err != nil {
			t.Fatalf("request %d: %v", i, res.Err)
		}
		if res.Cmd.Ext("echo") != wants[i] {
			t.Fatalf("request %d matched wrong reply: got %q want %q", i, res.Cmd.Ext("echo"), wants[i])
		}
	}
}

func TestClientRequestTimeout(t *testing.T) {
	broker := newFakeBroker(t, func(req *Command, push func(*Command)) *Command { return nil })

	client := NewClient(time.Second, nil)
	defer client.Shutdown()

	cmd := NewCommand(CodeHeartbeat, nil)
	res := <-client.InvokeAsync(context.Background(), broker.addr(), cmd, 50*time.Millisecond)
	if !errors.Is(res.Err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", res.Err)
	}
}

func TestClientDialFailure(t *testing.T) {
	client := NewClient(100*time.Millisecond, nil)
	defer client.Shutdown()

	cmd := NewCommand(CodeHeartbeat, nil)
	res := <-client.InvokeAsync(context.Background(), "127.0.0.1:1", cmd, time.Second)
	if res.Err == nil {
		t.Fatal("expected dial error")
	}
}

func TestClientShutdownFailsPending(t *testing.T) {
	broker := newFakeBroker(t, func(req *Command, push func(*Command)) *Command { return nil })

	client := NewClient(time.Second, nil)
	cmd := NewCommand(CodeHeartbeat, nil)
	ch := client.InvokeAsync(context.Background(), broker.addr(), cmd, 10*time.Second)

	client.Shutdown()
	select {
	case res := <-ch:
		if res.Err == nil {
			t.Fatal("pending request should fail on shutdown")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending request not completed on shutdown")
	}

	// Calls after shutdown fail fast.
	res := <-client.InvokeAsync(context.Background(), broker.addr(), NewCommand(CodeHeartbeat, nil), time.Second)
	if !errors.Is(res.Err, ErrClientShutdown) {
		t.Fatalf("got %v, want ErrClientShutdown", res.Err)
	}
}

func TestClientAnswersBackRequest(t *testing.T) {
	// The broker answers the heartbeat and fires a back-request over the
	// same connection; the client's handler reply must come back to the
	// broker referencing the back-request's opaque id.
	clientReplies := make(chan *Command, 1)
	backReq := NewCommand(CodeGetConsumerRunningInfo, map[string]string{"consumerGroup": "g"})

	broker := newFakeBroker(t, func(req *Command, push func(*Command)) *Command {
		if req.IsResponse() {
			clientReplies <- req
			return nil
		}
		go push(backReq)
		return &Command{Code: RespSuccess}
	})

	handled := make(chan *Command, 1)
	client := NewClient(time.Second, func(addr string, cmd *Command) *Command {
		handled <- cmd
		return NewResponse(RespSuccess, cmd.Opaque, "handled")
	})
	defer client.Shutdown()

	res := <-client.InvokeAsync(context.Background(), broker.addr(), NewCommand(CodeHeartbeat, nil), 2*time.Second)
	if res.Err != nil {
		t.Fatalf("InvokeAsync: %v", res.Err)
	}

	select {
	case cmd := <-handled:
		if cmd.Code != CodeGetConsumerRunningInfo {
			t.Fatalf("handler saw code %d", cmd.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("back-request never reached the handler")
	}

	select {
	case reply := <-clientReplies:
		if reply.Opaque != backReq.Opaque {
			t.Fatalf("reply opaque %d, want %d", reply.Opaque, backReq.Opaque)
		}
		if reply.Remark != "handled" {
			t.Fatalf("reply remark %q", reply.Remark)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client reply never reached the broker")
	}
}
