// Package v2 translates the second-revision RPC surface onto the canonical
// proxy engine. Translation only; no engine logic lives here.
package v2

import (
	"context"
	"strings"
	"time"

	"github.com/oriys/quasar/api/mqv2"
	"github.com/oriys/quasar/internal/consumer"
	"github.com/oriys/quasar/internal/endpoint"
	"github.com/oriys/quasar/internal/producer"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/route"
	"github.com/oriys/quasar/internal/service"
	"github.com/oriys/quasar/internal/transaction"
)

// Activity serves the v2 messaging service.
type Activity struct {
	mqv2.UnimplementedMessagingServiceServer
	proxy *service.Proxy
}

// NewActivity binds the activity to the proxy façade.
func NewActivity(p *service.Proxy) *Activity {
	return &Activity{proxy: p}
}

func okStatus() *mqv2.Status {
	return &mqv2.Status{Code: mqv2.CodeOK, Message: "ok"}
}

func errStatus(err error) *mqv2.Status {
	code := mqv2.CodeInternal
	switch service.Classify(err) {
	case service.KindInvalidArgument:
		code = mqv2.CodeInvalidArgument
	case service.KindNotFound:
		code = mqv2.CodeNotFound
	case service.KindForbidden:
		code = mqv2.CodeForbidden
	case service.KindThrottled:
		code = mqv2.CodeTooManyRequests
	case service.KindUnavailable:
		code = mqv2.CodeUnavailable
	case service.KindUnimplemented:
		code = mqv2.CodeUnimplemented
	}
	return &mqv2.Status{Code: code, Message: err.Error()}
}

func badRequest(msg string) *mqv2.Status {
	return &mqv2.Status{Code: mqv2.CodeInvalidArgument, Message: msg}
}

func resourceName(r *mqv2.Resource) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func toEndpoints(e *mqv2.Endpoints) endpoint.Endpoints {
	if e == nil {
		return endpoint.Endpoints{}
	}
	out := endpoint.Endpoints{Scheme: endpoint.Scheme(e.Scheme)}
	for _, a := range e.Addresses {
		if a == nil || a.Host == "" {
			continue
		}
		out.Addresses = append(out.Addresses, endpoint.Address{Host: a.Host, Port: int(a.Port)})
	}
	return out
}

func fromEndpoints(e endpoint.Endpoints) *mqv2.Endpoints {
	out := &mqv2.Endpoints{Scheme: mqv2.AddressScheme(e.Scheme)}
	for _, a := range e.Addresses {
		out.Addresses = append(out.Addresses, &mqv2.Address{Host: a.Host, Port: int32(a.Port)})
	}
	return out
}

func toPermission(perm int32) mqv2.Permission {
	switch {
	case perm&route.PermRead != 0 && perm&route.PermWrite != 0:
		return mqv2.PermissionReadWrite
	case perm&route.PermRead != 0:
		return mqv2.PermissionRead
	case perm&route.PermWrite != 0:
		return mqv2.PermissionWrite
	default:
		return mqv2.PermissionNone
	}
}

func queueViews(views []service.QueueView) []*mqv2.MessageQueue {
	out := make([]*mqv2.MessageQueue, 0, len(views))
	for _, v := range views {
		out = append(out, &mqv2.MessageQueue{
			Topic:      &mqv2.Resource{Name: v.Topic},
			Id:         v.QueueID,
			Permission: toPermission(v.Perm),
			Broker: &mqv2.Broker{
				Name:      v.BrokerName,
				Endpoints: fromEndpoints(v.Endpoints),
			},
		})
	}
	return out
}

// QueryRoute resolves and advertises the topic's queue list.
func (a *Activity) QueryRoute(ctx context.Context, req *mqv2.QueryRouteRequest) (*mqv2.QueryRouteResponse, error) {
	topic := resourceName(req.Topic)
	if topic == "" {
		return &mqv2.QueryRouteResponse{Status: badRequest("topic is required")}, nil
	}
	views, err := a.proxy.QueryRoute(ctx, topic, toEndpoints(req.Endpoints))
	if err != nil {
		return &mqv2.QueryRouteResponse{Status: errStatus(err)}, nil
	}
	return &mqv2.QueryRouteResponse{Status: okStatus(), MessageQueues: queueViews(views)}, nil
}

// QueryAssignment returns the readable broker set for pop load balancing.
func (a *Activity) QueryAssignment(ctx context.Context, req *mqv2.QueryAssignmentRequest) (*mqv2.QueryAssignmentResponse, error) {
	topic, group := resourceName(req.Topic), resourceName(req.Group)
	if topic == "" || group == "" {
		return &mqv2.QueryAssignmentResponse{Status: badRequest("topic and group are required")}, nil
	}
	views, err := a.proxy.QueryAssignment(ctx, topic, group, toEndpoints(req.Endpoints))
	if err != nil {
		return &mqv2.QueryAssignmentResponse{Status: errStatus(err)}, nil
	}
	resp := &mqv2.QueryAssignmentResponse{Status: okStatus()}
	for _, mq := range queueViews(views) {
		resp.Assignments = append(resp.Assignments, &mqv2.Assignment{MessageQueue: mq})
	}
	return resp, nil
}

// SendMessage publishes the request's messages as one unit.
func (a *Activity) SendMessage(ctx context.Context, req *mqv2.SendMessageRequest) (*mqv2.SendMessageResponse, error) {
	if len(req.Messages) == 0 {
		return &mqv2.SendMessageResponse{Status: badRequest("at least one message is required")}, nil
	}
	topic := resourceName(req.Messages[0].Topic)
	if topic == "" {
		return &mqv2.SendMessageResponse{Status: badRequest("topic is required")}, nil
	}

	in := &service.SendInput{
		Group: resourceName(req.Group),
		Topic: topic,
	}
	for _, m := range req.Messages {
		if resourceName(m.Topic) != topic {
			return &mqv2.SendMessageResponse{Status: badRequest("all messages in a batch must share a topic")}, nil
		}
		msg := &remoting.Message{Topic: topic, Body: m.Body}
		for k, v := range m.UserProperties {
			msg.SetProperty(k, v)
		}
		if sp := m.SystemProperties; sp != nil {
			if sp.Tag != "" {
				msg.SetProperty(remoting.PropertyTags, sp.Tag)
			}
			if len(sp.Keys) > 0 {
				msg.SetProperty(remoting.PropertyKeys, strings.Join(sp.Keys, " "))
			}
			if sp.MessageId != "" {
				msg.SetProperty(remoting.PropertyUniqClientID, sp.MessageId)
			}
			if sp.MessageType == mqv2.MessageTypeTransaction {
				in.Transactional = true
			}
			if sp.DelayLevel > in.DelayLevel {
				in.DelayLevel = sp.DelayLevel
			}
			if sp.MessageGroup != "" {
				in.FIFOGroup = sp.MessageGroup
			}
		}
		in.Messages = append(in.Messages, msg)
	}

	results, err := a.proxy.Send(ctx, in)
	if err != nil {
		return &mqv2.SendMessageResponse{Status: errStatus(err)}, nil
	}

	resp := &mqv2.SendMessageResponse{Status: okStatus()}
	for _, r := range results {
		entry := &mqv2.SendResultEntry{
			Status:        okStatus(),
			MessageId:     r.MsgID,
			TransactionId: r.TransactionID,
			Offset:        r.QueueOffset,
		}
		if r.Status != producer.SendOK {
			entry.Status = &mqv2.Status{Code: mqv2.CodeInternal, Message: sendStatusName(r.Status)}
		}
		resp.Entries = append(resp.Entries, entry)
	}
	return resp, nil
}

func sendStatusName(s producer.SendStatus) string {
	switch s {
	case producer.SendFlushDiskTimeout:
		return "FLUSH_DISK_TIMEOUT"
	case producer.SendFlushSlaveTimeout:
		return "FLUSH_SLAVE_TIMEOUT"
	case producer.SendSlaveNotAvailable:
		return "SLAVE_NOT_AVAILABLE"
	default:
		return "OK"
	}
}

func toFilter(f *mqv2.FilterExpression) (string, string) {
	if f == nil {
		return consumer.ExpressionTypeTag, consumer.SubscriptionAll
	}
	expType := consumer.ExpressionTypeTag
	if f.Type == mqv2.FilterTypeSQL {
		expType = consumer.ExpressionTypeSQL92
	}
	return expType, f.Expression
}

// ReceiveMessage pops a batch for the group.
func (a *Activity) ReceiveMessage(ctx context.Context, req *mqv2.ReceiveMessageRequest) (*mqv2.ReceiveMessageResponse, error) {
	group, topic := resourceName(req.Group), resourceName(req.Topic)
	if group == "" || topic == "" {
		return &mqv2.ReceiveMessageResponse{Status: badRequest("group and topic are required")}, nil
	}

	expType, exp := toFilter(req.FilterExpression)
	msgs, err := a.proxy.Receive(ctx, &consumer.ReceiveRequest{
		Group:          group,
		Topic:          topic,
		MaxMessages:    req.BatchSize,
		InvisibleTime:  time.Duration(req.InvisibleDuration) * time.Millisecond,
		PollingTime:    time.Duration(req.LongPollingMs) * time.Millisecond,
		InitMode:       req.InitMode,
		ExpressionType: expType,
		Expression:     exp,
		FIFO:           req.Fifo,
	})
	if err != nil {
		return &mqv2.ReceiveMessageResponse{Status: errStatus(err)}, nil
	}

	resp := &mqv2.ReceiveMessageResponse{Status: okStatus()}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toWireMessage(m))
	}
	return resp, nil
}

func toWireMessage(m *remoting.MessageExt) *mqv2.Message {
	sp := &mqv2.SystemProperties{
		Tag:             m.Property(remoting.PropertyTags),
		MessageId:       m.MsgID,
		BornTimestampMs: m.BornTimestamp,
		BornHost:        m.BornHost,
		DeliveryAttempt: m.ReconsumeTimes + 1,
		ReceiptHandle:   m.Property(remoting.PropertyPopCK),
		QueueId:         m.QueueID,
		QueueOffset:     m.QueueOffset,
	}
	if keys := m.Property(remoting.PropertyKeys); keys != "" {
		sp.Keys = strings.Fields(keys)
	}

	user := make(map[string]string)
	for k, v := range m.Properties {
		switch k {
		case remoting.PropertyTags, remoting.PropertyKeys, remoting.PropertyPopCK,
			remoting.PropertyUniqClientID, remoting.PropertyFirstPopTime:
			continue
		}
		user[k] = v
	}

	return &mqv2.Message{
		Topic:            &mqv2.Resource{Name: m.Topic},
		SystemProperties: sp,
		UserProperties:   user,
		Body:             m.Body,
	}
}

// AckMessage settles each entry's receipt handle independently.
func (a *Activity) AckMessage(ctx context.Context, req *mqv2.AckMessageRequest) (*mqv2.AckMessageResponse, error) {
	group := resourceName(req.Group)
	if group == "" || len(req.Entries) == 0 {
		return &mqv2.AckMessageResponse{Status: badRequest("group and entries are required")}, nil
	}

	resp := &mqv2.AckMessageResponse{Status: okStatus()}
	for _, entry := range req.Entries {
		entryStatus := okStatus()
		if err := a.proxy.Ack(ctx, group, entry.ReceiptHandle); err != nil {
			entryStatus = errStatus(err)
			resp.Status = entryStatus
		}
		resp.Entries = append(resp.Entries, &mqv2.AckMessageResultEntry{
			Status:        entryStatus,
			MessageId:     entry.MessageId,
			ReceiptHandle: entry.ReceiptHandle,
		})
	}
	return resp, nil
}

// ChangeInvisibleDuration renews a handle's invisibility; the returned
// handle replaces the old one.
func (a *Activity) ChangeInvisibleDuration(ctx context.Context, req *mqv2.ChangeInvisibleDurationRequest) (*mqv2.ChangeInvisibleDurationResponse, error) {
	group := resourceName(req.Group)
	if group == "" || req.ReceiptHandle == "" {
		return &mqv2.ChangeInvisibleDurationResponse{Status: badRequest("group and receipt handle are required")}, nil
	}
	renewed, err := a.proxy.ChangeInvisible(ctx, group, req.ReceiptHandle,
		time.Duration(req.InvisibleDuration)*time.Millisecond)
	if err != nil {
		return &mqv2.ChangeInvisibleDurationResponse{Status: errStatus(err)}, nil
	}
	return &mqv2.ChangeInvisibleDurationResponse{Status: okStatus(), ReceiptHandle: renewed}, nil
}

// ForwardMessageToDeadLetterQueue redirects the handle's message to the DLQ.
func (a *Activity) ForwardMessageToDeadLetterQueue(ctx context.Context, req *mqv2.ForwardMessageToDeadLetterQueueRequest) (*mqv2.ForwardMessageToDeadLetterQueueResponse, error) {
	group := resourceName(req.Group)
	if group == "" || req.ReceiptHandle == "" {
		return &mqv2.ForwardMessageToDeadLetterQueueResponse{Status: badRequest("group and receipt handle are required")}, nil
	}
	err := a.proxy.ForwardToDeadLetter(ctx, group, req.ReceiptHandle, req.MessageId, req.MaxDeliveryAttempts)
	if err != nil {
		return &mqv2.ForwardMessageToDeadLetterQueueResponse{Status: errStatus(err)}, nil
	}
	return &mqv2.ForwardMessageToDeadLetterQueueResponse{Status: okStatus()}, nil
}

// Heartbeat refreshes relay liveness for the client.
func (a *Activity) Heartbeat(ctx context.Context, req *mqv2.HeartbeatRequest) (*mqv2.HeartbeatResponse, error) {
	a.proxy.Heartbeat(resourceName(req.Group), req.ClientId)
	return &mqv2.HeartbeatResponse{Status: okStatus()}, nil
}

// HealthCheck reports liveness.
func (a *Activity) HealthCheck(ctx context.Context, req *mqv2.HealthCheckRequest) (*mqv2.HealthCheckResponse, error) {
	return &mqv2.HealthCheckResponse{Status: okStatus()}, nil
}

// NotifyClientTermination removes the client's relay channel.
func (a *Activity) NotifyClientTermination(ctx context.Context, req *mqv2.NotifyClientTerminationRequest) (*mqv2.NotifyClientTerminationResponse, error) {
	a.proxy.NotifyClientTermination(resourceName(req.Group), req.ClientId)
	return &mqv2.NotifyClientTerminationResponse{Status: okStatus()}, nil
}

// EndTransaction resolves a half message.
func (a *Activity) EndTransaction(ctx context.Context, req *mqv2.EndTransactionRequest) (*mqv2.EndTransactionResponse, error) {
	group, topic := resourceName(req.Group), resourceName(req.Topic)
	if group == "" || topic == "" || req.TransactionId == "" {
		return &mqv2.EndTransactionResponse{Status: badRequest("group, topic, and transaction id are required")}, nil
	}

	resolution := producer.ResolutionUnknown
	switch req.Resolution {
	case mqv2.TransactionResolutionCommit:
		resolution = producer.ResolutionCommit
	case mqv2.TransactionResolutionRollback:
		resolution = producer.ResolutionRollback
	}
	fromCheck := req.Source == mqv2.TransactionSourceServerCheck

	err := a.proxy.EndTransaction(ctx, topic, group, req.TransactionId, req.MessageId, resolution, fromCheck)
	if err != nil {
		return &mqv2.EndTransactionResponse{Status: errStatus(err)}, nil
	}
	return &mqv2.EndTransactionResponse{Status: okStatus()}, nil
}

// PullMessage fetches from an explicitly addressed queue.
func (a *Activity) PullMessage(ctx context.Context, req *mqv2.PullMessageRequest) (*mqv2.PullMessageResponse, error) {
	group := resourceName(req.Group)
	mq := req.MessageQueue
	if group == "" || mq == nil || mq.Broker == nil || resourceName(mq.Topic) == "" {
		return &mqv2.PullMessageResponse{Status: badRequest("group and message queue are required")}, nil
	}

	queue, err := a.proxy.ResolveQueue(ctx, resourceName(mq.Topic), mq.Broker.Name, mq.Id)
	if err != nil {
		return &mqv2.PullMessageResponse{Status: errStatus(err)}, nil
	}
	expType, exp := toFilter(req.FilterExpression)
	result, err := a.proxy.Pull(ctx, &consumer.PullRequest{
		Group:          group,
		Queue:          queue,
		Offset:         req.Offset,
		MaxMessages:    req.BatchSize,
		Expression:     exp,
		ExpressionType: expType,
	})
	if err != nil {
		return &mqv2.PullMessageResponse{Status: errStatus(err)}, nil
	}

	resp := &mqv2.PullMessageResponse{
		Status:     okStatus(),
		NextOffset: result.NextBeginOffset,
		MinOffset:  result.MinOffset,
		MaxOffset:  result.MaxOffset,
	}
	for _, m := range result.Messages {
		resp.Messages = append(resp.Messages, toWireMessage(m))
	}
	return resp, nil
}

// QueryOffset resolves a queue offset per policy.
func (a *Activity) QueryOffset(ctx context.Context, req *mqv2.QueryOffsetRequest) (*mqv2.QueryOffsetResponse, error) {
	mq := req.MessageQueue
	if mq == nil || mq.Broker == nil || resourceName(mq.Topic) == "" {
		return &mqv2.QueryOffsetResponse{Status: badRequest("message queue is required")}, nil
	}
	queue, err := a.proxy.ResolveQueue(ctx, resourceName(mq.Topic), mq.Broker.Name, mq.Id)
	if err != nil {
		return &mqv2.QueryOffsetResponse{Status: errStatus(err)}, nil
	}

	var policy consumer.OffsetPolicy
	switch req.Policy {
	case mqv2.QueryOffsetPolicyEnd:
		policy = consumer.OffsetEnd
	case mqv2.QueryOffsetPolicyTimePoint:
		policy = consumer.OffsetTimePoint
	default:
		policy = consumer.OffsetBeginning
	}

	offset, err := a.proxy.QueryOffset(ctx, queue, policy, time.UnixMilli(req.TimestampMs))
	if err != nil {
		return &mqv2.QueryOffsetResponse{Status: errStatus(err)}, nil
	}
	return &mqv2.QueryOffsetResponse{Status: okStatus(), Offset: offset}, nil
}

// ReportThreadStackTrace answers a pending consumer-running-info request.
func (a *Activity) ReportThreadStackTrace(ctx context.Context, req *mqv2.ReportThreadStackTraceRequest) (*mqv2.ReportThreadStackTraceResponse, error) {
	if req.Nonce == "" {
		return &mqv2.ReportThreadStackTraceResponse{Status: badRequest("nonce is required")}, nil
	}
	reply := remoting.NewResponse(remoting.RespSuccess, 0, "")
	reply.Body = []byte(req.ThreadStackTrace)
	if err := a.proxy.CompleteRelay(req.Nonce, reply); err != nil {
		return &mqv2.ReportThreadStackTraceResponse{Status: errStatus(err)}, nil
	}
	return &mqv2.ReportThreadStackTraceResponse{Status: okStatus()}, nil
}

// ReportMessageConsumptionResult answers a pending consume-directly request.
func (a *Activity) ReportMessageConsumptionResult(ctx context.Context, req *mqv2.ReportMessageConsumptionResultRequest) (*mqv2.ReportMessageConsumptionResultResponse, error) {
	if req.Nonce == "" {
		return &mqv2.ReportMessageConsumptionResultResponse{Status: badRequest("nonce is required")}, nil
	}
	code := remoting.RespSuccess
	if !req.Success {
		code = remoting.RespSystemError
	}
	reply := remoting.NewResponse(code, 0, req.ErrorMessage)
	if err := a.proxy.CompleteRelay(req.Nonce, reply); err != nil {
		return &mqv2.ReportMessageConsumptionResultResponse{Status: errStatus(err)}, nil
	}
	return &mqv2.ReportMessageConsumptionResultResponse{Status: okStatus()}, nil
}

// PollCommand streams broker-originated commands to the client until the
// stream context ends.
func (a *Activity) PollCommand(req *mqv2.PollCommandRequest, stream mqv2.MessagingService_PollCommandServer) error {
	group := resourceName(req.Group)
	if group == "" || req.ClientId == "" {
		return nil
	}
	ctx := stream.Context()
	for {
		cmd, err := a.proxy.PollRelay(ctx, group, req.ClientId)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return nil
		}
		polled := translatePolled(cmd.Nonce, cmd.Cmd)
		if polled == nil {
			continue
		}
		if err := stream.Send(polled); err != nil {
			return err
		}
	}
}

func translatePolled(nonce string, cmd *remoting.Command) *mqv2.PolledCommand {
	switch cmd.Code {
	case remoting.CodeCheckTransactionState:
		header := remoting.ParseCheckTransactionStateRequestHeader(cmd.ExtFields)
		id := transaction.ID{
			BrokerName:          cmd.Ext("brokerName"),
			BrokerTransactionID: header.TransactionID,
			CommitLogOffset:     header.CommitLogOffset,
			QueueOffset:         header.TranStateTableOffset,
		}
		return &mqv2.PolledCommand{
			Nonce: nonce,
			Type:  mqv2.PolledCommandTypeCheckTransaction,
			CheckTransaction: &mqv2.CheckTransactionCommand{
				TransactionId: id.Encode(),
				MessageId:     header.MsgID,
				Topic:         cmd.Ext("topic"),
			},
		}
	case remoting.CodeGetConsumerRunningInfo:
		header := remoting.ParseGetConsumerRunningInfoRequestHeader(cmd.ExtFields)
		return &mqv2.PolledCommand{
			Nonce: nonce,
			Type:  mqv2.PolledCommandTypeConsumerRunningInfo,
			ConsumerRunningInfo: &mqv2.ConsumerRunningInfoCommand{
				JstackEnable: header.JstackEnable,
			},
		}
	case remoting.CodeConsumeMessageDirectly:
		header := remoting.ParseConsumeMessageDirectlyRequestHeader(cmd.ExtFields)
		return &mqv2.PolledCommand{
			Nonce: nonce,
			Type:  mqv2.PolledCommandTypeConsumeMessageDirectly,
			ConsumeMessageDirectly: &mqv2.ConsumeMessageDirectlyCommand{
				MessageId:  header.MsgID,
				BrokerName: header.BrokerName,
			},
		}
	default:
		return nil
	}
}
