package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/oriys/quasar/internal/forwarder"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/route"
)

// PullRequest describes one classic pull attempt against a specific queue.
type PullRequest struct {
	Group          string
	Queue          route.SelectableMessageQueue
	Offset         int64
	MaxMessages    int32
	Expression     string
	ExpressionType string
	SuspendTime    time.Duration
}

// PullResult carries the pulled messages and the broker's offset hints.
type PullResult struct {
	Messages        []*remoting.MessageExt
	NextBeginOffset int64
	MinOffset       int64
	MaxOffset       int64
}

// Pull fetches messages from an explicit queue and offset. An empty result
// with a nil error means nothing was available at the offset.
func (e *Engine) Pull(ctx context.Context, req *PullRequest, timeout time.Duration) (*PullResult, error) {
	header := &remoting.PullMessageRequestHeader{
		ConsumerGroup:        req.Group,
		Topic:                req.Queue.Topic,
		QueueID:              req.Queue.QueueID,
		QueueOffset:          req.Offset,
		MaxMsgNums:           req.MaxMessages,
		SuspendTimeoutMillis: req.SuspendTime.Milliseconds(),
		Subscription:         req.Expression,
		ExpressionType:       req.ExpressionType,
	}
	client, err := e.clients.Get(forwarder.RoleReadConsumer, req.Queue.BrokerName)
	if err != nil {
		return nil, err
	}
	cmd := remoting.NewCommand(remoting.CodePullMessage, header.ToExt())
	res := <-client.InvokeAsync(ctx, req.Queue.BrokerAddr, cmd, timeout)
	if res.Err != nil {
		return nil, res.Err
	}

	respHeader := remoting.ParsePullMessageResponseHeader(res.Cmd.ExtFields)
	result := &PullResult{
		NextBeginOffset: respHeader.NextBeginOffset,
		MinOffset:       respHeader.MinOffset,
		MaxOffset:       respHeader.MaxOffset,
	}
	switch res.Cmd.Code {
	case remoting.RespSuccess:
		msgs, err := remoting.DecodeMessageList(res.Cmd.Body)
		if err != nil {
			return nil, err
		}
		result.Messages = msgs
		return result, nil
	case remoting.RespPullNotFound:
		return result, nil
	default:
		return nil, &remoting.ReplyError{Code: res.Cmd.Code, Remark: res.Cmd.Remark}
	}
}

// OffsetPolicy selects how QueryOffset resolves a starting offset.
type OffsetPolicy int

const (
	OffsetBeginning OffsetPolicy = iota
	OffsetEnd
	OffsetTimePoint
)

// QueryOffset resolves a queue's offset according to the policy. Each broker
// round-trip resolves to success or failure, never both.
func (e *Engine) QueryOffset(ctx context.Context, queue route.SelectableMessageQueue,
	policy OffsetPolicy, timePoint time.Time, timeout time.Duration) (int64, error) {

	switch policy {
	case OffsetBeginning:
		return 0, nil
	case OffsetEnd:
		return e.maxOffset(ctx, queue, timeout)
	case OffsetTimePoint:
		return e.searchOffset(ctx, queue, timePoint, timeout)
	default:
		return 0, fmt.Errorf("consumer: unknown offset policy %d", policy)
	}
}

func (e *Engine) maxOffset(ctx context.Context, queue route.SelectableMessageQueue, timeout time.Duration) (int64, error) {
	header := &remoting.GetMaxOffsetRequestHeader{Topic: queue.Topic, QueueID: queue.QueueID}
	cmd := remoting.NewCommand(remoting.CodeGetMaxOffset, header.ToExt())
	return e.offsetCall(ctx, queue, cmd, timeout)
}

func (e *Engine) searchOffset(ctx context.Context, queue route.SelectableMessageQueue,
	timePoint time.Time, timeout time.Duration) (int64, error) {

	header := &remoting.SearchOffsetRequestHeader{
		Topic:     queue.Topic,
		QueueID:   queue.QueueID,
		Timestamp: timePoint.UnixMilli(),
	}
	cmd := remoting.NewCommand(remoting.CodeSearchOffsetByTime, header.ToExt())
	return e.offsetCall(ctx, queue, cmd, timeout)
}

func (e *Engine) offsetCall(ctx context.Context, queue route.SelectableMessageQueue,
	cmd *remoting.Command, timeout time.Duration) (int64, error) {

	client, err := e.clients.Get(forwarder.RoleDefault, queue.BrokerName)
	if err != nil {
		return 0, err
	}
	res := <-client.InvokeAsync(ctx, queue.BrokerAddr, cmd, timeout)
	if res.Err != nil {
		return 0, res.Err
	}
	if res.Cmd.Code != remoting.RespSuccess {
		return 0, &remoting.ReplyError{Code: res.Cmd.Code, Remark: res.Cmd.Remark}
	}
	return remoting.ParseOffsetResponseHeader(res.Cmd.ExtFields).Offset, nil
}

// UpdateOffset persists a group's consume progress on the queue's broker.
func (e *Engine) UpdateOffset(ctx context.Context, group string,
	queue route.SelectableMessageQueue, offset int64, timeout time.Duration) error {

	header := &remoting.UpdateConsumerOffsetRequestHeader{
		ConsumerGroup: group,
		Topic:         queue.Topic,
		QueueID:       queue.QueueID,
		CommitOffset:  offset,
	}
	client, err := e.clients.Get(forwarder.RoleDefault, queue.BrokerName)
	if err != nil {
		return err
	}
	cmd := remoting.NewCommand(remoting.CodeUpdateConsumerOffset, header.ToExt())
	res := <-client.InvokeAsync(ctx, queue.BrokerAddr, cmd, timeout)
	if res.Err != nil {
		return res.Err
	}
	if res.Cmd.Code != remoting.RespSuccess {
		return &remoting.ReplyError{Code: res.Cmd.Code, Remark: res.Cmd.Remark}
	}
	return nil
}
