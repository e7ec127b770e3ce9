// Package mqv1 defines the first-revision messaging RPC surface. The shapes
// predate the v2 redesign: topics and groups are plain strings, queues are
// called partitions, and negative acknowledgement is a single NackMessage
// call. The message types are hand-maintained with protobuf struct tags and
// the legacy message interface; see service.proto for the canonical schema.
package mqv1

import "fmt"

// Code is the status code set carried on every response.
type Code int32

const (
	CodeOK              Code = 0
	CodeInvalidArgument Code = 1
	CodeNotFound        Code = 2
	CodeForbidden       Code = 3
	CodeTooManyRequests Code = 4
	CodeInternal        Code = 5
	CodeUnavailable     Code = 6
	CodeUnimplemented   Code = 7
)

// Status carries the outcome of an operation.
type Status struct {
	Code    Code   `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Status) Reset()         { *m = Status{} }
func (m *Status) String() string { return fmt.Sprintf("%+v", *m) }
func (*Status) ProtoMessage()    {}

// Broker names one broker and its advertised address list in
// "host:port[;host:port...]" form.
type Broker struct {
	Name      string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Endpoints string `protobuf:"bytes,2,opt,name=endpoints,proto3" json:"endpoints,omitempty"`
}

func (m *Broker) Reset()         { *m = Broker{} }
func (m *Broker) String() string { return fmt.Sprintf("%+v", *m) }
func (*Broker) ProtoMessage()    {}

// Permission encodes partition read/write capability.
type Permission int32

const (
	PermissionNone      Permission = 0
	PermissionRead      Permission = 1
	PermissionWrite     Permission = 2
	PermissionReadWrite Permission = 3
)

// Partition is one addressable queue of a topic.
type Partition struct {
	Topic      string     `protobuf:"bytes,1,opt,name=topic,proto3" json:"topic,omitempty"`
	Id         int32      `protobuf:"varint,2,opt,name=id,proto3" json:"id,omitempty"`
	Permission Permission `protobuf:"varint,3,opt,name=permission,proto3" json:"permission,omitempty"`
	Broker     *Broker    `protobuf:"bytes,4,opt,name=broker,proto3" json:"broker,omitempty"`
}

func (m *Partition) Reset()         { *m = Partition{} }
func (m *Partition) String() string { return fmt.Sprintf("%+v", *m) }
func (*Partition) ProtoMessage()    {}

// Message is the wire form of one message, flattened.
type Message struct {
	Topic           string            `protobuf:"bytes,1,opt,name=topic,proto3" json:"topic,omitempty"`
	Tag             string            `protobuf:"bytes,2,opt,name=tag,proto3" json:"tag,omitempty"`
	Keys            string            `protobuf:"bytes,3,opt,name=keys,proto3" json:"keys,omitempty"`
	MessageId       string            `protobuf:"bytes,4,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	ReceiptHandle   string            `protobuf:"bytes,5,opt,name=receipt_handle,json=receiptHandle,proto3" json:"receipt_handle,omitempty"`
	DeliveryAttempt int32             `protobuf:"varint,6,opt,name=delivery_attempt,json=deliveryAttempt,proto3" json:"delivery_attempt,omitempty"`
	BornTimestampMs int64             `protobuf:"varint,7,opt,name=born_timestamp_ms,json=bornTimestampMs,proto3" json:"born_timestamp_ms,omitempty"`
	QueueId         int32             `protobuf:"varint,8,opt,name=queue_id,json=queueId,proto3" json:"queue_id,omitempty"`
	QueueOffset     int64             `protobuf:"varint,9,opt,name=queue_offset,json=queueOffset,proto3" json:"queue_offset,omitempty"`
	Transactional   bool              `protobuf:"varint,10,opt,name=transactional,proto3" json:"transactional,omitempty"`
	TransactionId   string            `protobuf:"bytes,11,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
	DelayLevel      int32             `protobuf:"varint,12,opt,name=delay_level,json=delayLevel,proto3" json:"delay_level,omitempty"`
	UserProperties  map[string]string `protobuf:"bytes,13,rep,name=user_properties,json=userProperties,proto3" json:"user_properties,omitempty" protobuf_key:"bytes,1,opt,name=key,proto3" protobuf_val:"bytes,2,opt,name=value,proto3"`
	Body            []byte            `protobuf:"bytes,14,opt,name=body,proto3" json:"body,omitempty"`
}

func (m *Message) Reset()         { *m = Message{} }
func (m *Message) String() string { return fmt.Sprintf("%+v", *m) }
func (*Message) ProtoMessage()    {}

type QueryRouteRequest struct {
	Topic     string `protobuf:"bytes,1,opt,name=topic,proto3" json:"topic,omitempty"`
	Endpoints string `protobuf:"bytes,2,opt,name=endpoints,proto3" json:"endpoints,omitempty"`
}

func (m *QueryRouteRequest) Reset()         { *m = QueryRouteRequest{} }
func (m *QueryRouteRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryRouteRequest) ProtoMessage()    {}

type QueryRouteResponse struct {
	Status     *Status      `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	Partitions []*Partition `protobuf:"bytes,2,rep,name=partitions,proto3" json:"partitions,omitempty"`
}

func (m *QueryRouteResponse) Reset()         { *m = QueryRouteResponse{} }
func (m *QueryRouteResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryRouteResponse) ProtoMessage()    {}

type QueryAssignmentRequest struct {
	Topic     string `protobuf:"bytes,1,opt,name=topic,proto3" json:"topic,omitempty"`
	Group     string `protobuf:"bytes,2,opt,name=group,proto3" json:"group,omitempty"`
	ClientId  string `protobuf:"bytes,3,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
	Endpoints string `protobuf:"bytes,4,opt,name=endpoints,proto3" json:"endpoints,omitempty"`
}

func (m *QueryAssignmentRequest) Reset()         { *m = QueryAssignmentRequest{} }
func (m *QueryAssignmentRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryAssignmentRequest) ProtoMessage()    {}

type QueryAssignmentResponse struct {
	Status     *Status      `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	Partitions []*Partition `protobuf:"bytes,2,rep,name=partitions,proto3" json:"partitions,omitempty"`
}

func (m *QueryAssignmentResponse) Reset()         { *m = QueryAssignmentResponse{} }
func (m *QueryAssignmentResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryAssignmentResponse) ProtoMessage()    {}

type SendMessageRequest struct {
	Group    string     `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Messages []*Message `protobuf:"bytes,2,rep,name=messages,proto3" json:"messages,omitempty"`
}

func (m *SendMessageRequest) Reset()         { *m = SendMessageRequest{} }
func (m *SendMessageRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*SendMessageRequest) ProtoMessage()    {}

type SendMessageResponse struct {
	Status        *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	MessageId     string  `protobuf:"bytes,2,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	TransactionId string  `protobuf:"bytes,3,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
}

func (m *SendMessageResponse) Reset()         { *m = SendMessageResponse{} }
func (m *SendMessageResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*SendMessageResponse) ProtoMessage()    {}

type ReceiveMessageRequest struct {
	Group             string `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Topic             string `protobuf:"bytes,2,opt,name=topic,proto3" json:"topic,omitempty"`
	FilterType        int32  `protobuf:"varint,3,opt,name=filter_type,json=filterType,proto3" json:"filter_type,omitempty"`
	FilterExpression  string `protobuf:"bytes,4,opt,name=filter_expression,json=filterExpression,proto3" json:"filter_expression,omitempty"`
	BatchSize         int32  `protobuf:"varint,5,opt,name=batch_size,json=batchSize,proto3" json:"batch_size,omitempty"`
	InvisibleDuration int64  `protobuf:"varint,6,opt,name=invisible_duration,json=invisibleDuration,proto3" json:"invisible_duration,omitempty"`
	AwaitTimeMs       int64  `protobuf:"varint,7,opt,name=await_time_ms,json=awaitTimeMs,proto3" json:"await_time_ms,omitempty"`
	Fifo              bool   `protobuf:"varint,8,opt,name=fifo,proto3" json:"fifo,omitempty"`
}

func (m *ReceiveMessageRequest) Reset()         { *m = ReceiveMessageRequest{} }
func (m *ReceiveMessageRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ReceiveMessageRequest) ProtoMessage()    {}

type ReceiveMessageResponse struct {
	Status   *Status    `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	Messages []*Message `protobuf:"bytes,2,rep,name=messages,proto3" json:"messages,omitempty"`
}

func (m *ReceiveMessageResponse) Reset()         { *m = ReceiveMessageResponse{} }
func (m *ReceiveMessageResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*ReceiveMessageResponse) ProtoMessage()    {}

type AckMessageRequest struct {
	Group         string `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Topic         string `protobuf:"bytes,2,opt,name=topic,proto3" json:"topic,omitempty"`
	MessageId     string `protobuf:"bytes,3,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	ReceiptHandle string `protobuf:"bytes,4,opt,name=receipt_handle,json=receiptHandle,proto3" json:"receipt_handle,omitempty"`
}

func (m *AckMessageRequest) Reset()         { *m = AckMessageRequest{} }
func (m *AckMessageRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*AckMessageRequest) ProtoMessage()    {}

type AckMessageResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *AckMessageResponse) Reset()         { *m = AckMessageResponse{} }
func (m *AckMessageResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*AckMessageResponse) ProtoMessage()    {}

type NackMessageRequest struct {
	Group               string `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Topic               string `protobuf:"bytes,2,opt,name=topic,proto3" json:"topic,omitempty"`
	MessageId           string `protobuf:"bytes,3,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	ReceiptHandle       string `protobuf:"bytes,4,opt,name=receipt_handle,json=receiptHandle,proto3" json:"receipt_handle,omitempty"`
	DeliveryAttempt     int32  `protobuf:"varint,5,opt,name=delivery_attempt,json=deliveryAttempt,proto3" json:"delivery_attempt,omitempty"`
	MaxDeliveryAttempts int32  `protobuf:"varint,6,opt,name=max_delivery_attempts,json=maxDeliveryAttempts,proto3" json:"max_delivery_attempts,omitempty"`
}

func (m *NackMessageRequest) Reset()         { *m = NackMessageRequest{} }
func (m *NackMessageRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*NackMessageRequest) ProtoMessage()    {}

type NackMessageResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *NackMessageResponse) Reset()         { *m = NackMessageResponse{} }
func (m *NackMessageResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*NackMessageResponse) ProtoMessage()    {}

type HeartbeatRequest struct {
	Group    string `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	ClientId string `protobuf:"bytes,2,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
}

func (m *HeartbeatRequest) Reset()         { *m = HeartbeatRequest{} }
func (m *HeartbeatRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*HeartbeatRequest) ProtoMessage()    {}

type HeartbeatResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *HeartbeatResponse) Reset()         { *m = HeartbeatResponse{} }
func (m *HeartbeatResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*HeartbeatResponse) ProtoMessage()    {}

type HealthCheckRequest struct {
	ClientId string `protobuf:"bytes,1,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
}

func (m *HealthCheckRequest) Reset()         { *m = HealthCheckRequest{} }
func (m *HealthCheckRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*HealthCheckRequest) ProtoMessage()    {}

type HealthCheckResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *HealthCheckResponse) Reset()         { *m = HealthCheckResponse{} }
func (m *HealthCheckResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*HealthCheckResponse) ProtoMessage()    {}

type NotifyClientTerminationRequest struct {
	Group    string `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	ClientId string `protobuf:"bytes,2,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
}

func (m *NotifyClientTerminationRequest) Reset()         { *m = NotifyClientTerminationRequest{} }
func (m *NotifyClientTerminationRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*NotifyClientTerminationRequest) ProtoMessage()    {}

type NotifyClientTerminationResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *NotifyClientTerminationResponse) Reset()         { *m = NotifyClientTerminationResponse{} }
func (m *NotifyClientTerminationResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*NotifyClientTerminationResponse) ProtoMessage()    {}

// Transaction resolution values.
const (
	ResolutionUnknown  int32 = 0
	ResolutionCommit   int32 = 1
	ResolutionRollback int32 = 2
)

type EndTransactionRequest struct {
	Group         string `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Topic         string `protobuf:"bytes,2,opt,name=topic,proto3" json:"topic,omitempty"`
	MessageId     string `protobuf:"bytes,3,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	TransactionId string `protobuf:"bytes,4,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
	Resolution    int32  `protobuf:"varint,5,opt,name=resolution,proto3" json:"resolution,omitempty"`
	FromCheck     bool   `protobuf:"varint,6,opt,name=from_check,json=fromCheck,proto3" json:"from_check,omitempty"`
}

func (m *EndTransactionRequest) Reset()         { *m = EndTransactionRequest{} }
func (m *EndTransactionRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*EndTransactionRequest) ProtoMessage()    {}

type EndTransactionResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *EndTransactionResponse) Reset()         { *m = EndTransactionResponse{} }
func (m *EndTransactionResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*EndTransactionResponse) ProtoMessage()    {}

type PullMessageRequest struct {
	Group            string     `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Partition        *Partition `protobuf:"bytes,2,opt,name=partition,proto3" json:"partition,omitempty"`
	Offset           int64      `protobuf:"varint,3,opt,name=offset,proto3" json:"offset,omitempty"`
	BatchSize        int32      `protobuf:"varint,4,opt,name=batch_size,json=batchSize,proto3" json:"batch_size,omitempty"`
	FilterType       int32      `protobuf:"varint,5,opt,name=filter_type,json=filterType,proto3" json:"filter_type,omitempty"`
	FilterExpression string     `protobuf:"bytes,6,opt,name=filter_expression,json=filterExpression,proto3" json:"filter_expression,omitempty"`
}

func (m *PullMessageRequest) Reset()         { *m = PullMessageRequest{} }
func (m *PullMessageRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*PullMessageRequest) ProtoMessage()    {}

type PullMessageResponse struct {
	Status     *Status    `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	Messages   []*Message `protobuf:"bytes,2,rep,name=messages,proto3" json:"messages,omitempty"`
	NextOffset int64      `protobuf:"varint,3,opt,name=next_offset,json=nextOffset,proto3" json:"next_offset,omitempty"`
	MinOffset  int64      `protobuf:"varint,4,opt,name=min_offset,json=minOffset,proto3" json:"min_offset,omitempty"`
	MaxOffset  int64      `protobuf:"varint,5,opt,name=max_offset,json=maxOffset,proto3" json:"max_offset,omitempty"`
}

func (m *PullMessageResponse) Reset()         { *m = PullMessageResponse{} }
func (m *PullMessageResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*PullMessageResponse) ProtoMessage()    {}

// Query offset policies.
const (
	PolicyBeginning int32 = 0
	PolicyEnd       int32 = 1
	PolicyTimePoint int32 = 2
)

type QueryOffsetRequest struct {
	Partition   *Partition `protobuf:"bytes,1,opt,name=partition,proto3" json:"partition,omitempty"`
	Policy      int32      `protobuf:"varint,2,opt,name=policy,proto3" json:"policy,omitempty"`
	TimestampMs int64      `protobuf:"varint,3,opt,name=timestamp_ms,json=timestampMs,proto3" json:"timestamp_ms,omitempty"`
}

func (m *QueryOffsetRequest) Reset()         { *m = QueryOffsetRequest{} }
func (m *QueryOffsetRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryOffsetRequest) ProtoMessage()    {}

type QueryOffsetResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	Offset int64   `protobuf:"varint,2,opt,name=offset,proto3" json:"offset,omitempty"`
}

func (m *QueryOffsetResponse) Reset()         { *m = QueryOffsetResponse{} }
func (m *QueryOffsetResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryOffsetResponse) ProtoMessage()    {}

type ReportThreadStackTraceRequest struct {
	Nonce            string `protobuf:"bytes,1,opt,name=nonce,proto3" json:"nonce,omitempty"`
	ThreadStackTrace string `protobuf:"bytes,2,opt,name=thread_stack_trace,json=threadStackTrace,proto3" json:"thread_stack_trace,omitempty"`
}

func (m *ReportThreadStackTraceRequest) Reset()         { *m = ReportThreadStackTraceRequest{} }
func (m *ReportThreadStackTraceRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ReportThreadStackTraceRequest) ProtoMessage()    {}

type ReportThreadStackTraceResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *ReportThreadStackTraceResponse) Reset()         { *m = ReportThreadStackTraceResponse{} }
func (m *ReportThreadStackTraceResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*ReportThreadStackTraceResponse) ProtoMessage()    {}

type ReportMessageConsumptionResultRequest struct {
	Nonce        string `protobuf:"bytes,1,opt,name=nonce,proto3" json:"nonce,omitempty"`
	Success      bool   `protobuf:"varint,2,opt,name=success,proto3" json:"success,omitempty"`
	ErrorMessage string `protobuf:"bytes,3,opt,name=error_message,json=errorMessage,proto3" json:"error_message,omitempty"`
}

func (m *ReportMessageConsumptionResultRequest) Reset() {
	*m = ReportMessageConsumptionResultRequest{}
}
func (m *ReportMessageConsumptionResultRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ReportMessageConsumptionResultRequest) ProtoMessage()    {}

type ReportMessageConsumptionResultResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *ReportMessageConsumptionResultResponse) Reset() {
	*m = ReportMessageConsumptionResultResponse{}
}
func (m *ReportMessageConsumptionResultResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*ReportMessageConsumptionResultResponse) ProtoMessage()    {}

type PollCommandRequest struct {
	Group    string `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	ClientId string `protobuf:"bytes,2,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
}

func (m *PollCommandRequest) Reset()         { *m = PollCommandRequest{} }
func (m *PollCommandRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*PollCommandRequest) ProtoMessage()    {}

// Polled command types.
const (
	CommandNone                   int32 = 0
	CommandCheckTransaction       int32 = 1
	CommandConsumerRunningInfo    int32 = 2
	CommandConsumeMessageDirectly int32 = 3
)

type PolledCommand struct {
	Nonce         string `protobuf:"bytes,1,opt,name=nonce,proto3" json:"nonce,omitempty"`
	Type          int32  `protobuf:"varint,2,opt,name=type,proto3" json:"type,omitempty"`
	TransactionId string `protobuf:"bytes,3,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
	MessageId     string `protobuf:"bytes,4,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	Topic         string `protobuf:"bytes,5,opt,name=topic,proto3" json:"topic,omitempty"`
	JstackEnable  bool   `protobuf:"varint,6,opt,name=jstack_enable,json=jstackEnable,proto3" json:"jstack_enable,omitempty"`
	BrokerName    string `protobuf:"bytes,7,opt,name=broker_name,json=brokerName,proto3" json:"broker_name,omitempty"`
}

func (m *PolledCommand) Reset()         { *m = PolledCommand{} }
func (m *PolledCommand) String() string { return fmt.Sprintf("%+v", *m) }
func (*PolledCommand) ProtoMessage()    {}
