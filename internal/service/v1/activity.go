// Package v1 translates the original RPC surface onto the canonical proxy
// engine. Translation only; no engine logic lives here.
package v1

import (
	"context"
	"time"

	"github.com/oriys/quasar/api/mqv1"
	"github.com/oriys/quasar/internal/consumer"
	"github.com/oriys/quasar/internal/endpoint"
	"github.com/oriys/quasar/internal/producer"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/route"
	"github.com/oriys/quasar/internal/service"
	"github.com/oriys/quasar/internal/transaction"
)

// Activity serves the v1 messaging service.
type Activity struct {
	mqv1.UnimplementedMessagingServiceServer
	proxy *service.Proxy
}

// NewActivity binds the activity to the proxy façade.
func NewActivity(p *service.Proxy) *Activity {
	return &Activity{proxy: p}
}

func okStatus() *mqv1.Status {
	return &mqv1.Status{Code: mqv1.CodeOK, Message: "ok"}
}

func errStatus(err error) *mqv1.Status {
	code := mqv1.CodeInternal
	switch service.Classify(err) {
	case service.KindInvalidArgument:
		code = mqv1.CodeInvalidArgument
	case service.KindNotFound:
		code = mqv1.CodeNotFound
	case service.KindForbidden:
		code = mqv1.CodeForbidden
	case service.KindThrottled:
		code = mqv1.CodeTooManyRequests
	case service.KindUnavailable:
		code = mqv1.CodeUnavailable
	case service.KindUnimplemented:
		code = mqv1.CodeUnimplemented
	}
	return &mqv1.Status{Code: code, Message: err.Error()}
}

func badRequest(msg string) *mqv1.Status {
	return &mqv1.Status{Code: mqv1.CodeInvalidArgument, Message: msg}
}

func parseEndpoints(s string) (endpoint.Endpoints, error) {
	if s == "" {
		return endpoint.Endpoints{}, nil
	}
	return endpoint.ParseEndpoints(s)
}

func toPermission(perm int32) mqv1.Permission {
	switch {
	case perm&route.PermRead != 0 && perm&route.PermWrite != 0:
		return mqv1.PermissionReadWrite
	case perm&route.PermRead != 0:
		return mqv1.PermissionRead
	case perm&route.PermWrite != 0:
		return mqv1.PermissionWrite
	default:
		return mqv1.PermissionNone
	}
}

func partitions(views []service.QueueView) []*mqv1.Partition {
	out := make([]*mqv1.Partition, 0, len(views))
	for _, v := range views {
		out = append(out, &mqv1.Partition{
			Topic:      v.Topic,
			Id:         v.QueueID,
			Permission: toPermission(v.Perm),
			Broker: &mqv1.Broker{
				Name:      v.BrokerName,
				Endpoints: v.Endpoints.String(),
			},
		})
	}
	return out
}

// QueryRoute resolves and advertises the topic's partition list.
func (a *Activity) QueryRoute(ctx context.Context, req *mqv1.QueryRouteRequest) (*mqv1.QueryRouteResponse, error) {
	if req.Topic == "" {
		return &mqv1.QueryRouteResponse{Status: badRequest("topic is required")}, nil
	}
	eps, err := parseEndpoints(req.Endpoints)
	if err != nil {
		return &mqv1.QueryRouteResponse{Status: errStatus(err)}, nil
	}
	views, err := a.proxy.QueryRoute(ctx, req.Topic, eps)
	if err != nil {
		return &mqv1.QueryRouteResponse{Status: errStatus(err)}, nil
	}
	return &mqv1.QueryRouteResponse{Status: okStatus(), Partitions: partitions(views)}, nil
}

// QueryAssignment returns the readable broker set for pop load balancing.
func (a *Activity) QueryAssignment(ctx context.Context, req *mqv1.QueryAssignmentRequest) (*mqv1.QueryAssignmentResponse, error) {
	if req.Topic == "" || req.Group == "" {
		return &mqv1.QueryAssignmentResponse{Status: badRequest("topic and group are required")}, nil
	}
	eps, err := parseEndpoints(req.Endpoints)
	if err != nil {
		return &mqv1.QueryAssignmentResponse{Status: errStatus(err)}, nil
	}
	views, err := a.proxy.QueryAssignment(ctx, req.Topic, req.Group, eps)
	if err != nil {
		return &mqv1.QueryAssignmentResponse{Status: errStatus(err)}, nil
	}
	return &mqv1.QueryAssignmentResponse{Status: okStatus(), Partitions: partitions(views)}, nil
}

// SendMessage publishes the request's messages as one unit.
func (a *Activity) SendMessage(ctx context.Context, req *mqv1.SendMessageRequest) (*mqv1.SendMessageResponse, error) {
	if len(req.Messages) == 0 {
		return &mqv1.SendMessageResponse{Status: badRequest("at least one message is required")}, nil
	}
	topic := req.Messages[0].Topic
	if topic == "" {
		return &mqv1.SendMessageResponse{Status: badRequest("topic is required")}, nil
	}

	in := &service.SendInput{Group: req.Group, Topic: topic}
	for _, m := range req.Messages {
		if m.Topic != topic {
			return &mqv1.SendMessageResponse{Status: badRequest("all messages in a batch must share a topic")}, nil
		}
		msg := &remoting.Message{Topic: topic, Body: m.Body}
		for k, v := range m.UserProperties {
			msg.SetProperty(k, v)
		}
		if m.Tag != "" {
			msg.SetProperty(remoting.PropertyTags, m.Tag)
		}
		if m.Keys != "" {
			msg.SetProperty(remoting.PropertyKeys, m.Keys)
		}
		if m.MessageId != "" {
			msg.SetProperty(remoting.PropertyUniqClientID, m.MessageId)
		}
		if m.Transactional {
			in.Transactional = true
		}
		if m.DelayLevel > in.DelayLevel {
			in.DelayLevel = m.DelayLevel
		}
		in.Messages = append(in.Messages, msg)
	}

	results, err := a.proxy.Send(ctx, in)
	if err != nil {
		return &mqv1.SendMessageResponse{Status: errStatus(err)}, nil
	}

	resp := &mqv1.SendMessageResponse{Status: okStatus()}
	if len(results) > 0 {
		first := results[0]
		resp.MessageId = first.MsgID
		resp.TransactionId = first.TransactionID
		if first.Status != producer.SendOK {
			resp.Status = &mqv1.Status{Code: mqv1.CodeInternal, Message: sendStatusName(first.Status)}
		}
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

func filterType(t int32) string {
	if t == 2 {
		return consumer.ExpressionTypeSQL92
	}
	return consumer.ExpressionTypeTag
}

// ReceiveMessage pops a batch for the group.
func (a *Activity) ReceiveMessage(ctx context.Context, req *mqv1.ReceiveMessageRequest) (*mqv1.ReceiveMessageResponse, error) {
	if req.Group == "" || req.Topic == "" {
		return &mqv1.ReceiveMessageResponse{Status: badRequest("group and topic are required")}, nil
	}

	expression := req.FilterExpression
	if expression == "" {
		expression = consumer.SubscriptionAll
	}
	msgs, err := a.proxy.Receive(ctx, &consumer.ReceiveRequest{
		Group:          req.Group,
		Topic:          req.Topic,
		MaxMessages:    req.BatchSize,
		InvisibleTime:  time.Duration(req.InvisibleDuration) * time.Millisecond,
		PollingTime:    time.Duration(req.AwaitTimeMs) * time.Millisecond,
		ExpressionType: filterType(req.FilterType),
		Expression:     expression,
		FIFO:           req.Fifo,
	})
	if err != nil {
		return &mqv1.ReceiveMessageResponse{Status: errStatus(err)}, nil
	}

	resp := &mqv1.ReceiveMessageResponse{Status: okStatus()}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toWireMessage(m))
	}
	return resp, nil
}

func toWireMessage(m *remoting.MessageExt) *mqv1.Message {
	user := make(map[string]string)
	for k, v := range m.Properties {
		switch k {
		case remoting.PropertyTags, remoting.PropertyKeys, remoting.PropertyPopCK,
			remoting.PropertyUniqClientID, remoting.PropertyFirstPopTime:
			continue
		}
		user[k] = v
	}

	return &mqv1.Message{
		Topic:           m.Topic,
		Tag:             m.Property(remoting.PropertyTags),
		Keys:            m.Property(remoting.PropertyKeys),
		MessageId:       m.MsgID,
		ReceiptHandle:   m.Property(remoting.PropertyPopCK),
		DeliveryAttempt: m.ReconsumeTimes + 1,
		BornTimestampMs: m.BornTimestamp,
		QueueId:         m.QueueID,
		QueueOffset:     m.QueueOffset,
		UserProperties:  user,
		Body:            m.Body,
	}
}

// AckMessage settles one receipt handle.
func (a *Activity) AckMessage(ctx context.Context, req *mqv1.AckMessageRequest) (*mqv1.AckMessageResponse, error) {
	if req.Group == "" || req.ReceiptHandle == "" {
		return &mqv1.AckMessageResponse{Status: badRequest("group and receipt handle are required")}, nil
	}
	if err := a.proxy.Ack(ctx, req.Group, req.ReceiptHandle); err != nil {
		return &mqv1.AckMessageResponse{Status: errStatus(err)}, nil
	}
	return &mqv1.AckMessageResponse{Status: okStatus()}, nil
}

// NackMessage records a failed delivery; once the attempt reaches the limit
// the message moves to the dead-letter queue.
func (a *Activity) NackMessage(ctx context.Context, req *mqv1.NackMessageRequest) (*mqv1.NackMessageResponse, error) {
	if req.Group == "" || req.ReceiptHandle == "" {
		return &mqv1.NackMessageResponse{Status: badRequest("group and receipt handle are required")}, nil
	}
	err := a.proxy.Nack(ctx, req.Group, req.ReceiptHandle, req.DeliveryAttempt, req.MaxDeliveryAttempts)
	if err != nil {
		return &mqv1.NackMessageResponse{Status: errStatus(err)}, nil
	}
	return &mqv1.NackMessageResponse{Status: okStatus()}, nil
}

// Heartbeat refreshes relay liveness for the client.
func (a *Activity) Heartbeat(ctx context.Context, req *mqv1.HeartbeatRequest) (*mqv1.HeartbeatResponse, error) {
	a.proxy.Heartbeat(req.Group, req.ClientId)
	return &mqv1.HeartbeatResponse{Status: okStatus()}, nil
}

// HealthCheck reports liveness.
func (a *Activity) HealthCheck(ctx context.Context, req *mqv1.HealthCheckRequest) (*mqv1.HealthCheckResponse, error) {
	return &mqv1.HealthCheckResponse{Status: okStatus()}, nil
}

// NotifyClientTermination removes the client's relay channel.
func (a *Activity) NotifyClientTermination(ctx context.Context, req *mqv1.NotifyClientTerminationRequest) (*mqv1.NotifyClientTerminationResponse, error) {
	a.proxy.NotifyClientTermination(req.Group, req.ClientId)
	return &mqv1.NotifyClientTerminationResponse{Status: okStatus()}, nil
}

// EndTransaction resolves a half message.
func (a *Activity) EndTransaction(ctx context.Context, req *mqv1.EndTransactionRequest) (*mqv1.EndTransactionResponse, error) {
	if req.Group == "" || req.Topic == "" || req.TransactionId == "" {
		return &mqv1.EndTransactionResponse{Status: badRequest("group, topic, and transaction id are required")}, nil
	}

	resolution := producer.ResolutionUnknown
	switch req.Resolution {
	case mqv1.ResolutionCommit:
		resolution = producer.ResolutionCommit
	case mqv1.ResolutionRollback:
		resolution = producer.ResolutionRollback
	}

	err := a.proxy.EndTransaction(ctx, req.Topic, req.Group, req.TransactionId, req.MessageId, resolution, req.FromCheck)
	if err != nil {
		return &mqv1.EndTransactionResponse{Status: errStatus(err)}, nil
	}
	return &mqv1.EndTransactionResponse{Status: okStatus()}, nil
}

// PullMessage fetches from an explicitly addressed partition.
func (a *Activity) PullMessage(ctx context.Context, req *mqv1.PullMessageRequest) (*mqv1.PullMessageResponse, error) {
	part := req.Partition
	if req.Group == "" || part == nil || part.Broker == nil || part.Topic == "" {
		return &mqv1.PullMessageResponse{Status: badRequest("group and partition are required")}, nil
	}

	queue, err := a.proxy.ResolveQueue(ctx, part.Topic, part.Broker.Name, part.Id)
	if err != nil {
		return &mqv1.PullMessageResponse{Status: errStatus(err)}, nil
	}
	result, err := a.proxy.Pull(ctx, &consumer.PullRequest{
		Group:          req.Group,
		Queue:          queue,
		Offset:         req.Offset,
		MaxMessages:    req.BatchSize,
		Expression:     req.FilterExpression,
		ExpressionType: filterType(req.FilterType),
	})
	if err != nil {
		return &mqv1.PullMessageResponse{Status: errStatus(err)}, nil
	}

	resp := &mqv1.PullMessageResponse{
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

// QueryOffset resolves a partition offset per policy.
func (a *Activity) QueryOffset(ctx context.Context, req *mqv1.QueryOffsetRequest) (*mqv1.QueryOffsetResponse, error) {
	part := req.Partition
	if part == nil || part.Broker == nil || part.Topic == "" {
		return &mqv1.QueryOffsetResponse{Status: badRequest("partition is required")}, nil
	}
	queue, err := a.proxy.ResolveQueue(ctx, part.Topic, part.Broker.Name, part.Id)
	if err != nil {
		return &mqv1.QueryOffsetResponse{Status: errStatus(err)}, nil
	}

	var policy consumer.OffsetPolicy
	switch req.Policy {
	case mqv1.PolicyEnd:
		policy = consumer.OffsetEnd
	case mqv1.PolicyTimePoint:
		policy = consumer.OffsetTimePoint
	default:
		policy = consumer.OffsetBeginning
	}

	offset, err := a.proxy.QueryOffset(ctx, queue, policy, time.UnixMilli(req.TimestampMs))
	if err != nil {
		return &mqv1.QueryOffsetResponse{Status: errStatus(err)}, nil
	}
	return &mqv1.QueryOffsetResponse{Status: okStatus(), Offset: offset}, nil
}

// ReportThreadStackTrace answers a pending consumer-running-info request.
func (a *Activity) ReportThreadStackTrace(ctx context.Context, req *mqv1.ReportThreadStackTraceRequest) (*mqv1.ReportThreadStackTraceResponse, error) {
	if req.Nonce == "" {
		return &mqv1.ReportThreadStackTraceResponse{Status: badRequest("nonce is required")}, nil
	}
	reply := remoting.NewResponse(remoting.RespSuccess, 0, "")
	reply.Body = []byte(req.ThreadStackTrace)
	if err := a.proxy.CompleteRelay(req.Nonce, reply); err != nil {
		return &mqv1.ReportThreadStackTraceResponse{Status: errStatus(err)}, nil
	}
	return &mqv1.ReportThreadStackTraceResponse{Status: okStatus()}, nil
}

// ReportMessageConsumptionResult answers a pending consume-directly request.
func (a *Activity) ReportMessageConsumptionResult(ctx context.Context, req *mqv1.ReportMessageConsumptionResultRequest) (*mqv1.ReportMessageConsumptionResultResponse, error) {
	if req.Nonce == "" {
		return &mqv1.ReportMessageConsumptionResultResponse{Status: badRequest("nonce is required")}, nil
	}
	code := remoting.RespSuccess
	if !req.Success {
		code = remoting.RespSystemError
	}
	reply := remoting.NewResponse(code, 0, req.ErrorMessage)
	if err := a.proxy.CompleteRelay(req.Nonce, reply); err != nil {
		return &mqv1.ReportMessageConsumptionResultResponse{Status: errStatus(err)}, nil
	}
	return &mqv1.ReportMessageConsumptionResultResponse{Status: okStatus()}, nil
}

// PollCommand streams broker-originated commands to the client until the
// stream context ends.
func (a *Activity) PollCommand(req *mqv1.PollCommandRequest, stream mqv1.MessagingService_PollCommandServer) error {
	if req.Group == "" || req.ClientId == "" {
		return nil
	}
	ctx := stream.Context()
	for {
		cmd, err := a.proxy.PollRelay(ctx, req.Group, req.ClientId)
		if err != nil {
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

func translatePolled(nonce string, cmd *remoting.Command) *mqv1.PolledCommand {
	switch cmd.Code {
	case remoting.CodeCheckTransactionState:
		header := remoting.ParseCheckTransactionStateRequestHeader(cmd.ExtFields)
		id := transaction.ID{
			BrokerName:          cmd.Ext("brokerName"),
			BrokerTransactionID: header.TransactionID,
			CommitLogOffset:     header.CommitLogOffset,
			QueueOffset:         header.TranStateTableOffset,
		}
		return &mqv1.PolledCommand{
			Nonce:         nonce,
			Type:          mqv1.CommandCheckTransaction,
			TransactionId: id.Encode(),
			MessageId:     header.MsgID,
			Topic:         cmd.Ext("topic"),
		}
	case remoting.CodeGetConsumerRunningInfo:
		header := remoting.ParseGetConsumerRunningInfoRequestHeader(cmd.ExtFields)
		return &mqv1.PolledCommand{
			Nonce:        nonce,
			Type:         mqv1.CommandConsumerRunningInfo,
			JstackEnable: header.JstackEnable,
		}
	case remoting.CodeConsumeMessageDirectly:
		header := remoting.ParseConsumeMessageDirectlyRequestHeader(cmd.ExtFields)
		return &mqv1.PolledCommand{
			Nonce:      nonce,
			Type:       mqv1.CommandConsumeMessageDirectly,
			MessageId:  header.MsgID,
			BrokerName: header.BrokerName,
		}
	default:
		return nil
	}
}
