// Package producer relays publish traffic: single and batched sends,
// send-back to retry or dead-letter topics, and transaction resolution.
package producer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/quasar/internal/forwarder"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/retrypolicy"
	"github.com/oriys/quasar/internal/route"
	"github.com/oriys/quasar/internal/selector"
	"github.com/oriys/quasar/internal/transaction"
)

// SendStatus classifies a broker's accept reply.
type SendStatus int

const (
	SendOK SendStatus = iota
	SendFlushDiskTimeout
	SendFlushSlaveTimeout
	SendSlaveNotAvailable
)

// SendResult is the outcome of one accepted message.
type SendResult struct {
	Status        SendStatus
	MsgID         string
	Queue         route.MessageQueue
	QueueOffset   int64
	TransactionID string
}

// Engine relays publish operations to the brokers.
type Engine struct {
	routes   *route.Cache
	writeSel selector.WriteSelector
	clients  *forwarder.Manager
	policy   *retrypolicy.Policy
	txHearts *transaction.HeartbeatService
}

// NewEngine wires the producer engine.
func NewEngine(routes *route.Cache, writeSel selector.WriteSelector, clients *forwarder.Manager,
	policy *retrypolicy.Policy, txHearts *transaction.HeartbeatService) *Engine {
	return &Engine{
		routes:   routes,
		writeSel: writeSel,
		clients:  clients,
		policy:   policy,
		txHearts: txHearts,
	}
}

// SelectWriteQueue picks a writable queue for the group and topic.
func (e *Engine) SelectWriteQueue(ctx context.Context, group, topic string) (route.SelectableMessageQueue, error) {
	wrapper, err := e.routes.GetMessageQueue(ctx, topic)
	if err != nil {
		return route.SelectableMessageQueue{}, err
	}
	return e.writeSel.SelectForWrite(group, wrapper)
}

// Send publishes one or more messages to the selected queue. Batches are
// serialized into a single body under a synthesized unique batch id; the
// result list preserves broker response order, which for a batch is the
// message-list order.
func (e *Engine) Send(ctx context.Context, queue route.SelectableMessageQueue,
	msgs []*remoting.Message, header *remoting.SendMessageRequestHeader,
	timeout time.Duration) ([]SendResult, error) {

	if len(msgs) == 0 {
		return nil, fmt.Errorf("producer: empty message list")
	}

	var cmd *remoting.Command
	if len(msgs) == 1 {
		header.Batch = false
		cmd = remoting.NewCommand(remoting.CodeSendMessage, header.ToExt())
		cmd.Body = msgs[0].Body
	} else {
		header.Batch = true
		batchID := uuid.NewString()
		for _, m := range msgs {
			if m.Property(remoting.PropertyUniqClientID) == "" {
				m.SetProperty(remoting.PropertyUniqClientID, batchID)
			}
		}
		body, err := remoting.EncodeBatchBody(msgs)
		if err != nil {
			return nil, err
		}
		cmd = remoting.NewCommand(remoting.CodeSendBatchMessage, header.ToExt())
		cmd.Body = body
	}

	client, err := e.clients.Get(forwarder.RoleProducer, queue.BrokerName)
	if err != nil {
		return nil, err
	}

	res := <-client.InvokeAsync(ctx, queue.BrokerAddr, cmd, timeout)
	if res.Err != nil {
		return nil, res.Err
	}

	status, err := sendStatusOf(res.Cmd)
	if err != nil {
		return nil, err
	}
	respHeader := remoting.ParseSendMessageResponseHeader(res.Cmd.ExtFields)

	results := make([]SendResult, 0, len(msgs))
	transactional := header.SysFlag&remoting.TransactionPreparedFlag != 0
	for i := range msgs {
		result := SendResult{
			Status: status,
			MsgID:  respHeader.MsgID,
			Queue: route.MessageQueue{
				Topic:      queue.Topic,
				BrokerName: queue.BrokerName,
				QueueID:    respHeader.QueueID,
			},
			QueueOffset: respHeader.QueueOffset + int64(i),
		}
		if transactional {
			id := transaction.NewID(queue.BrokerName, respHeader.TransactionID, 0, result.QueueOffset)
			result.TransactionID = id.Encode()
		}
		results = append(results, result)
	}

	if transactional {
		if err := e.txHearts.AddProducerGroup(ctx, header.ProducerGroup, queue.Topic); err != nil {
			// The broker holds the half message either way; the next tick
			// or send re-registers the group.
			return results, nil
		}
	}
	return results, nil
}

func sendStatusOf(cmd *remoting.Command) (SendStatus, error) {
	switch cmd.Code {
	case remoting.RespSuccess:
		return SendOK, nil
	case remoting.RespFlushDiskTimeout:
		return SendFlushDiskTimeout, nil
	case remoting.RespFlushSlaveTimeout:
		return SendFlushSlaveTimeout, nil
	case remoting.RespSlaveNotAvailable:
		return SendSlaveNotAvailable, nil
	default:
		return 0, &remoting.ReplyError{Code: cmd.Code, Remark: cmd.Remark}
	}
}

// SendMessageBack routes a consumed message to its group's retry topic, or
// to the dead-letter topic once the delay level exceeds the group policy
// (the broker performs the final DLQ decision from the header).
func (e *Engine) SendMessageBack(ctx context.Context, brokerName, brokerAddr string,
	header *remoting.ConsumerSendMsgBackRequestHeader, timeout time.Duration) error {

	client, err := e.clients.Get(forwarder.RoleProducer, brokerName)
	if err != nil {
		return err
	}
	cmd := remoting.NewCommand(remoting.CodeConsumerSendMsgBack, header.ToExt())
	res := <-client.InvokeAsync(ctx, brokerAddr, cmd, timeout)
	if res.Err != nil {
		return res.Err
	}
	if res.Cmd.Code != remoting.RespSuccess {
		return &remoting.ReplyError{Code: res.Cmd.Code, Remark: res.Cmd.Remark}
	}
	return nil
}

// Resolution is the client's verdict on a half message.
type Resolution int

const (
	ResolutionUnknown Resolution = iota
	ResolutionCommit
	ResolutionRollback
)

// EndTransaction resolves a half message one-way against the broker that
// accepted it, located through the transaction id.
func (e *Engine) EndTransaction(ctx context.Context, topic, group, transactionID, msgID string,
	resolution Resolution, fromCheck bool) error {

	id, err := transaction.DecodeID(transactionID)
	if err != nil {
		return err
	}

	wrapper, err := e.routes.GetMessageQueue(ctx, topic)
	if err != nil {
		return err
	}
	addr, err := wrapper.BrokerAddr(id.BrokerName)
	if err != nil {
		return err
	}

	header := &remoting.EndTransactionRequestHeader{
		ProducerGroup:        group,
		TranStateTableOffset: id.QueueOffset,
		CommitLogOffset:      id.CommitLogOffset,
		FromTransactionCheck: fromCheck,
		MsgID:                msgID,
		TransactionID:        id.BrokerTransactionID,
	}
	switch resolution {
	case ResolutionCommit:
		header.CommitOrRollback = remoting.TransactionCommit
	case ResolutionRollback:
		header.CommitOrRollback = remoting.TransactionRollback
	default:
		header.CommitOrRollback = remoting.TransactionNotType
	}

	client, err := e.clients.Get(forwarder.RoleTransactionProducer, id.BrokerName)
	if err != nil {
		return err
	}
	cmd := remoting.NewCommand(remoting.CodeEndTransaction, header.ToExt())
	return client.InvokeOneway(ctx, addr, cmd)
}

// Retriable reports whether the send error names a transient broker store
// condition the caller may retry.
func Retriable(err error) bool {
	var reply *remoting.ReplyError
	if errors.As(err, &reply) {
		return remoting.IsTransientStoreCode(reply.Code)
	}
	return false
}
