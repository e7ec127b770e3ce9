// Package consumer relays the server-assisted receive pipeline: pop with
// receipt-handle synthesis and tag filtering, ack, invisibility changes,
// nack with dead-letter redirection, plus the classic pull/offset path.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oriys/quasar/internal/forwarder"
	"github.com/oriys/quasar/internal/logging"
	"github.com/oriys/quasar/internal/receipt"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/retrypolicy"
	"github.com/oriys/quasar/internal/route"
	"github.com/oriys/quasar/internal/selector"
)

var (
	// ErrPollingFull reports that the broker's pop admission is saturated.
	ErrPollingFull = errors.New("consumer: polling full")
	// ErrAckRejected reports a non-OK ack status from the broker.
	ErrAckRejected = errors.New("consumer: ack rejected")
)

// MessageBacker redirects a message to its retry or dead-letter topic.
// Satisfied by the producer engine.
type MessageBacker interface {
	SendMessageBack(ctx context.Context, brokerName, brokerAddr string,
		header *remoting.ConsumerSendMsgBackRequestHeader, timeout time.Duration) error
}

// Config bounds the receive pipeline.
type Config struct {
	LongPollingReserve time.Duration
	DefaultTimeout     time.Duration
}

// Engine relays consume operations to the brokers.
type Engine struct {
	cfg     Config
	routes  *route.Cache
	readSel selector.ReadSelector
	clients *forwarder.Manager
	policy  *retrypolicy.Policy
	backer  MessageBacker
}

// NewEngine wires the consumer engine.
func NewEngine(cfg Config, routes *route.Cache, readSel selector.ReadSelector,
	clients *forwarder.Manager, policy *retrypolicy.Policy, backer MessageBacker) *Engine {
	if cfg.LongPollingReserve <= 0 {
		cfg.LongPollingReserve = 100 * time.Millisecond
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 3 * time.Second
	}
	return &Engine{
		cfg:     cfg,
		routes:  routes,
		readSel: readSel,
		clients: clients,
		policy:  policy,
		backer:  backer,
	}
}

// ReceiveRequest describes one pop attempt.
type ReceiveRequest struct {
	Group          string
	Topic          string
	MaxMessages    int32
	InvisibleTime  time.Duration
	PollingTime    time.Duration
	InitMode       int32
	ExpressionType string
	Expression     string
	FIFO           bool
}

// Receive pops up to MaxMessages from a readable queue. Returned messages
// carry their receipt handle in the POP_CK property, in pop order; messages
// filtered out by the subscription are acked best-effort and dropped. An
// empty result with a nil error means no new message.
func (e *Engine) Receive(ctx context.Context, req *ReceiveRequest) ([]*remoting.MessageExt, error) {
	filter, err := NewTagFilter(req.ExpressionType, req.Expression)
	if err != nil {
		return nil, err
	}

	wrapper, err := e.routes.GetMessageQueue(ctx, req.Topic)
	if err != nil {
		return nil, err
	}
	queue, err := e.readSel.SelectForRead(req.Group, wrapper)
	if err != nil {
		return nil, err
	}

	// The broker call must return early enough to answer the outer deadline.
	pollTime := req.PollingTime
	if deadline, ok := ctx.Deadline(); ok {
		budget := time.Until(deadline) - e.cfg.LongPollingReserve
		if budget <= 0 {
			return nil, context.DeadlineExceeded
		}
		if pollTime <= 0 || pollTime > budget {
			pollTime = budget
		}
	}
	if pollTime <= 0 {
		pollTime = e.cfg.DefaultTimeout
	}

	header := &remoting.PopMessageRequestHeader{
		ConsumerGroup: req.Group,
		Topic:         req.Topic,
		QueueID:       queue.QueueID,
		MaxMsgNums:    req.MaxMessages,
		InvisibleTime: req.InvisibleTime.Milliseconds(),
		PollTime:      pollTime.Milliseconds(),
		BornTime:      time.Now().UnixMilli(),
		InitMode:      req.InitMode,
		ExpType:       req.ExpressionType,
		Exp:           req.Expression,
		Order:         req.FIFO,
	}
	if header.ExpType == "" {
		header.ExpType = ExpressionTypeTag
	}

	client, err := e.clients.Get(forwarder.RoleReadConsumer, queue.BrokerName)
	if err != nil {
		return nil, err
	}
	cmd := remoting.NewCommand(remoting.CodePopMessage, header.ToExt())
	res := <-client.InvokeAsync(ctx, queue.BrokerAddr, cmd, pollTime+e.cfg.LongPollingReserve)
	if res.Err != nil {
		return nil, res.Err
	}

	switch res.Cmd.Code {
	case remoting.RespSuccess:
	case remoting.RespPollingFull:
		return nil, fmt.Errorf("%w: %s", ErrPollingFull, res.Cmd.Remark)
	case remoting.RespPullNotFound, remoting.RespPollingTimeout, remoting.RespNoMessage:
		return nil, nil
	default:
		return nil, &remoting.ReplyError{Code: res.Cmd.Code, Remark: res.Cmd.Remark}
	}

	msgs, err := remoting.DecodeMessageList(res.Cmd.Body)
	if err != nil {
		return nil, err
	}
	respHeader := remoting.ParsePopMessageResponseHeader(res.Cmd.ExtFields)
	annotated, err := e.annotate(msgs, queue.BrokerName, respHeader, req.FIFO)
	if err != nil {
		return nil, err
	}

	kept := annotated[:0]
	for _, msg := range annotated {
		if filter.Match(msg) {
			kept = append(kept, msg)
			continue
		}
		e.ackFiltered(req.Group, msg)
	}
	return kept, nil
}

// annotate synthesizes a receipt handle per message from the pop reply's
// offset bookkeeping, preserving pop order. For FIFO subscriptions the
// broker-reported order count overrides the stored reconsume count.
func (e *Engine) annotate(msgs []*remoting.MessageExt, brokerName string,
	h *remoting.PopMessageResponseHeader, fifo bool) ([]*remoting.MessageExt, error) {

	startOffsets, err := receipt.ParseStartOffsetInfo(h.StartOffsetInfo)
	if err != nil {
		return nil, err
	}
	msgOffsets, err := receipt.ParseMsgOffsetInfo(h.MsgOffsetInfo)
	if err != nil {
		return nil, err
	}
	orderCounts, err := receipt.ParseOrderCountInfo(h.OrderCountInfo)
	if err != nil {
		return nil, err
	}

	// Per-queue cursor over the reported offset lists, advanced in arrival
	// order so each message binds to its own queue offset.
	cursors := make(map[receipt.QueueKey]int)
	out := make([]*remoting.MessageExt, 0, len(msgs))
	for _, msg := range msgs {
		key := receipt.QueueKey{Topic: msg.Topic, QueueID: msg.QueueID}

		handle := receipt.Handle{
			PopTime:       h.PopTime,
			InvisibleTime: h.InvisibleTime,
			ReviveQueueID: h.ReviveQid,
			Topic:         msg.Topic,
			BrokerName:    brokerName,
			QueueID:       msg.QueueID,
		}
		if start, ok := startOffsets[key]; ok {
			handle.StartOffset = start
		}
		if offsets, ok := msgOffsets[key]; ok {
			i := cursors[key]
			if i < len(offsets) {
				handle.QueueOffset = offsets[i]
				handle.HasQueueOffset = true
				cursors[key] = i + 1
			}
		}
		if !handle.HasQueueOffset {
			handle.QueueOffset = msg.QueueOffset
			handle.HasQueueOffset = true
		}

		msg.SetProperty(remoting.PropertyPopCK, handle.Encode())
		if fifo {
			if count, ok := orderCounts[key]; ok && count > 0 {
				msg.ReconsumeTimes = count
			}
		}
		out = append(out, msg)
	}
	return out, nil
}

// ackFiltered releases a message the subscription filtered out. Best-effort
// and not awaited; the invisibility timeout is the fallback.
func (e *Engine) ackFiltered(group string, msg *remoting.MessageExt) {
	handleStr := msg.Property(remoting.PropertyPopCK)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.DefaultTimeout)
		defer cancel()
		if err := e.Ack(ctx, group, handleStr, e.cfg.DefaultTimeout); err != nil {
			logging.Op().Debug("ack of filtered message failed", "group", group, "error", err)
		}
	}()
}

// resolveHandle decodes a receipt handle and resolves its broker address
// through the route cache.
func (e *Engine) resolveHandle(ctx context.Context, handleStr string) (receipt.Handle, string, error) {
	handle, err := receipt.Decode(handleStr)
	if err != nil {
		return receipt.Handle{}, "", err
	}
	wrapper, err := e.routes.GetMessageQueue(ctx, handle.Topic)
	if err != nil {
		return receipt.Handle{}, "", err
	}
	addr, err := wrapper.BrokerAddr(handle.BrokerName)
	if err != nil {
		return receipt.Handle{}, "", err
	}
	return handle, addr, nil
}

// Ack settles a popped message. OK only when the broker accepts the ack.
func (e *Engine) Ack(ctx context.Context, group, handleStr string, timeout time.Duration) error {
	handle, addr, err := e.resolveHandle(ctx, handleStr)
	if err != nil {
		return err
	}

	header := &remoting.AckMessageRequestHeader{
		ConsumerGroup: group,
		Topic:         handle.Topic,
		QueueID:       handle.QueueID,
		ExtraInfo:     handleStr,
		Offset:        handle.QueueOffset,
	}
	client, err := e.clients.Get(forwarder.RoleWriteConsumer, handle.BrokerName)
	if err != nil {
		return err
	}
	cmd := remoting.NewCommand(remoting.CodeAckMessage, header.ToExt())
	res := <-client.InvokeAsync(ctx, addr, cmd, timeout)
	if res.Err != nil {
		return res.Err
	}
	if res.Cmd.Code != remoting.RespSuccess {
		return fmt.Errorf("%w: code=%d remark=%q", ErrAckRejected, res.Cmd.Code, res.Cmd.Remark)
	}
	return nil
}

// ChangeInvisible extends or shortens a message's invisibility and returns
// the replacement receipt handle; the old handle is invalid the moment the
// broker accepts the change.
func (e *Engine) ChangeInvisible(ctx context.Context, group, handleStr string,
	invisible time.Duration, timeout time.Duration) (string, error) {

	handle, addr, err := e.resolveHandle(ctx, handleStr)
	if err != nil {
		return "", err
	}

	header := &remoting.ChangeInvisibleTimeRequestHeader{
		ConsumerGroup: group,
		Topic:         handle.Topic,
		QueueID:       handle.QueueID,
		ExtraInfo:     handleStr,
		Offset:        handle.QueueOffset,
		InvisibleTime: invisible.Milliseconds(),
	}
	client, err := e.clients.Get(forwarder.RoleWriteConsumer, handle.BrokerName)
	if err != nil {
		return "", err
	}
	cmd := remoting.NewCommand(remoting.CodeChangeInvisibleTime, header.ToExt())
	res := <-client.InvokeAsync(ctx, addr, cmd, timeout)
	if res.Err != nil {
		return "", res.Err
	}
	if res.Cmd.Code != remoting.RespSuccess {
		return "", &remoting.ReplyError{Code: res.Cmd.Code, Remark: res.Cmd.Remark}
	}

	respHeader := remoting.ParseChangeInvisibleTimeResponseHeader(res.Cmd.ExtFields)
	renewed := handle
	renewed.PopTime = respHeader.PopTime
	renewed.InvisibleTime = respHeader.InvisibleTime
	renewed.ReviveQueueID = respHeader.ReviveQid
	return renewed.Encode(), nil
}

// Nack handles a negative acknowledgement. Once the delivery attempt reaches
// the group's maximum the message is redirected to the dead-letter queue and
// the handle acked to free broker resources; otherwise invisibility is
// extended along the retry backoff curve.
func (e *Engine) Nack(ctx context.Context, group, handleStr string,
	deliveryAttempt, maxDeliveryAttempts int32, timeout time.Duration) error {

	if deliveryAttempt >= maxDeliveryAttempts {
		return e.ForwardToDeadLetter(ctx, group, handleStr, "", maxDeliveryAttempts, timeout)
	}
	invisible := e.policy.NackInvisible(deliveryAttempt)
	_, err := e.ChangeInvisible(ctx, group, handleStr, invisible, timeout)
	return err
}

// dlqDelayLevel asks the broker to route the message straight to the
// dead-letter topic.
const dlqDelayLevel int32 = -1

// ForwardToDeadLetter sends the message behind the handle to the group's
// dead-letter topic. The handle is acked only after the redirect succeeds;
// on failure the invisibility timeout returns the message to the queue.
func (e *Engine) ForwardToDeadLetter(ctx context.Context, group, handleStr, msgID string,
	maxDeliveryAttempts int32, timeout time.Duration) error {

	handle, addr, err := e.resolveHandle(ctx, handleStr)
	if err != nil {
		return err
	}

	header := &remoting.ConsumerSendMsgBackRequestHeader{
		Group:             group,
		Offset:            handle.QueueOffset,
		OriginTopic:       handle.Topic,
		OriginMsgID:       msgID,
		DelayLevel:        dlqDelayLevel,
		MaxReconsumeTimes: maxDeliveryAttempts,
	}
	if err := e.backer.SendMessageBack(ctx, handle.BrokerName, addr, header, timeout); err != nil {
		return err
	}
	return e.Ack(ctx, group, handleStr, timeout)
}
