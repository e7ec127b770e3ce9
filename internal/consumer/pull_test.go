package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/route"
)

func pullQueue() route.SelectableMessageQueue {
	return route.SelectableMessageQueue{
		MessageQueue: route.MessageQueue{Topic: "t", BrokerName: "b", QueueID: 3},
		BrokerAddr:   brokerAddr,
		Perm:         route.PermRead | route.PermWrite,
	}
}

func TestPullReturnsMessagesAndOffsets(t *testing.T) {
	f := newFixture(t)
	f.invoker.on(remoting.CodePullMessage, func(cmd *remoting.Command) *remoting.Command {
		if cmd.Ext("queueOffset") != "40" {
			t.Errorf("pull offset %s, want 40", cmd.Ext("queueOffset"))
		}
		body, err := remoting.EncodeMessageExt(popMessage("tagA", 40))
		if err != nil {
			t.Fatalf("EncodeMessageExt: %v", err)
		}
		resp := &remoting.Command{Code: remoting.RespSuccess, ExtFields: map[string]string{
			"nextBeginOffset": "41", "minOffset": "0", "maxOffset": "100",
		}}
		resp.Body = body
		return resp
	})

	result, err := f.engine.Pull(context.Background(), &PullRequest{
		Group: "g", Queue: pullQueue(), Offset: 40, MaxMessages: 16, Expression: "*",
	}, time.Second)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if len(result.Messages) != 1 || result.NextBeginOffset != 41 || result.MaxOffset != 100 {
		t.Fatalf("result %+v", result)
	}
}

func TestPullNotFoundReturnsEmpty(t *testing.T) {
	f := newFixture(t)
	f.invoker.on(remoting.CodePullMessage, func(cmd *remoting.Command) *remoting.Command {
		return &remoting.Command{Code: remoting.RespPullNotFound, ExtFields: map[string]string{
			"nextBeginOffset": "40",
		}}
	})

	result, err := f.engine.Pull(context.Background(), &PullRequest{
		Group: "g", Queue: pullQueue(), Offset: 40, MaxMessages: 16,
	}, time.Second)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if len(result.Messages) != 0 || result.NextBeginOffset != 40 {
		t.Fatalf("result %+v", result)
	}
}

func TestQueryOffsetPolicies(t *testing.T) {
	f := newFixture(t)
	f.invoker.on(remoting.CodeGetMaxOffset, func(cmd *remoting.Command) *remoting.Command {
		return &remoting.Command{Code: remoting.RespSuccess, ExtFields: map[string]string{"offset": "100"}}
	})
	f.invoker.on(remoting.CodeSearchOffsetByTime, func(cmd *remoting.Command) *remoting.Command {
		return &remoting.Command{Code: remoting.RespSuccess, ExtFields: map[string]string{"offset": "55"}}
	})

	ctx := context.Background()
	queue := pullQueue()

	if got, err := f.engine.QueryOffset(ctx, queue, OffsetBeginning, time.Time{}, time.Second); err != nil || got != 0 {
		t.Fatalf("beginning = %d, %v", got, err)
	}
	if got, err := f.engine.QueryOffset(ctx, queue, OffsetEnd, time.Time{}, time.Second); err != nil || got != 100 {
		t.Fatalf("end = %d, %v", got, err)
	}
	if got, err := f.engine.QueryOffset(ctx, queue, OffsetTimePoint, time.UnixMilli(1700000000000), time.Second); err != nil || got != 55 {
		t.Fatalf("time point = %d, %v", got, err)
	}

	// Beginning never touches the broker.
	if calls := f.invoker.commandsWithCode(remoting.CodeGetMaxOffset); len(calls) != 1 {
		t.Fatalf("max-offset calls %d, want 1", len(calls))
	}
}

func TestUpdateOffset(t *testing.T) {
	f := newFixture(t)

	if err := f.engine.UpdateOffset(context.Background(), "g", pullQueue(), 77, time.Second); err != nil {
		t.Fatalf("UpdateOffset: %v", err)
	}
	updates := f.invoker.commandsWithCode(remoting.CodeUpdateConsumerOffset)
	if len(updates) != 1 {
		t.Fatalf("got %d update commands, want 1", len(updates))
	}
	if updates[0].cmd.Ext("commitOffset") != "77" {
		t.Fatalf("commit offset %s", updates[0].cmd.Ext("commitOffset"))
	}
}
