package remoting

import (
	"context"
	"time"
)

// EmbeddedBroker is the in-process request surface of a co-located broker.
// Local deployments relay through it directly, bypassing the network.
type EmbeddedBroker interface {
	AsyncProcessRequest(ctx context.Context, cmd *Command) <-chan Result
}

// LocalInvoker adapts an embedded broker to the Invoker interface. The
// broker address is ignored; every call lands on the co-located broker.
type LocalInvoker struct {
	broker EmbeddedBroker
}

// NewLocalInvoker wraps the embedded broker.
func NewLocalInvoker(broker EmbeddedBroker) *LocalInvoker {
	return &LocalInvoker{broker: broker}
}

func (l *LocalInvoker) Start() error { return nil }

func (l *LocalInvoker) Shutdown() {}

// InvokeAsync forwards to the embedded broker, bounding the wait with the
// request timeout.
func (l *LocalInvoker) InvokeAsync(ctx context.Context, addr string, cmd *Command, timeout time.Duration) <-chan Result {
	out := make(chan Result, 1)
	inner := l.broker.AsyncProcessRequest(ctx, cmd)
	go func() {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case res := <-inner:
			out <- res
		case <-timer.C:
			out <- Result{Err: ErrTimeout}
		case <-ctx.Done():
			out <- Result{Err: ctx.Err()}
		}
	}()
	return out
}

// InvokeOneway forwards without awaiting the broker's result.
func (l *LocalInvoker) InvokeOneway(ctx context.Context, addr string, cmd *Command) error {
	cmd.MarkOneway()
	l.broker.AsyncProcessRequest(ctx, cmd)
	return nil
}
