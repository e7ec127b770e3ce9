// Package mqv2 defines the second-revision messaging RPC surface. The
// message types are hand-maintained with protobuf struct tags and the
// legacy message interface; service.go carries the matching service
// descriptor. See service.proto for the canonical schema.
package mqv2

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

// Resource names a topic or group, optionally namespaced.
type Resource struct {
	ResourceNamespace string `protobuf:"bytes,1,opt,name=resource_namespace,json=resourceNamespace,proto3" json:"resource_namespace,omitempty"`
	Name              string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
}

func (m *Resource) Reset()         { *m = Resource{} }
func (m *Resource) String() string { return fmt.Sprintf("%+v", *m) }
func (*Resource) ProtoMessage()    {}

// AddressScheme classifies advertised hosts.
type AddressScheme int32

const (
	AddressSchemeUnspecified AddressScheme = 0
	AddressSchemeIPv4        AddressScheme = 1
	AddressSchemeIPv6        AddressScheme = 2
	AddressSchemeDomainName  AddressScheme = 3
)

// Address is one advertised host:port.
type Address struct {
	Host string `protobuf:"bytes,1,opt,name=host,proto3" json:"host,omitempty"`
	Port int32  `protobuf:"varint,2,opt,name=port,proto3" json:"port,omitempty"`
}

func (m *Address) Reset()         { *m = Address{} }
func (m *Address) String() string { return fmt.Sprintf("%+v", *m) }
func (*Address) ProtoMessage()    {}

// Endpoints is the advertised address set for a broker or the proxy.
type Endpoints struct {
	Scheme    AddressScheme `protobuf:"varint,1,opt,name=scheme,proto3" json:"scheme,omitempty"`
	Addresses []*Address    `protobuf:"bytes,2,rep,name=addresses,proto3" json:"addresses,omitempty"`
}

func (m *Endpoints) Reset()         { *m = Endpoints{} }
func (m *Endpoints) String() string { return fmt.Sprintf("%+v", *m) }
func (*Endpoints) ProtoMessage()    {}

// Broker identifies one broker replica set behind a queue.
type Broker struct {
	Name      string     `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Id        int32      `protobuf:"varint,2,opt,name=id,proto3" json:"id,omitempty"`
	Endpoints *Endpoints `protobuf:"bytes,3,opt,name=endpoints,proto3" json:"endpoints,omitempty"`
}

func (m *Broker) Reset()         { *m = Broker{} }
func (m *Broker) String() string { return fmt.Sprintf("%+v", *m) }
func (*Broker) ProtoMessage()    {}

// Permission encodes queue read/write capability.
type Permission int32

const (
	PermissionNone      Permission = 0
	PermissionRead      Permission = 1
	PermissionWrite     Permission = 2
	PermissionReadWrite Permission = 3
)

// MessageQueue is one addressable queue of a topic.
type MessageQueue struct {
	Topic      *Resource  `protobuf:"bytes,1,opt,name=topic,proto3" json:"topic,omitempty"`
	Id         int32      `protobuf:"varint,2,opt,name=id,proto3" json:"id,omitempty"`
	Permission Permission `protobuf:"varint,3,opt,name=permission,proto3" json:"permission,omitempty"`
	Broker     *Broker    `protobuf:"bytes,4,opt,name=broker,proto3" json:"broker,omitempty"`
}

func (m *MessageQueue) Reset()         { *m = MessageQueue{} }
func (m *MessageQueue) String() string { return fmt.Sprintf("%+v", *m) }
func (*MessageQueue) ProtoMessage()    {}

// MessageType classifies a published message.
type MessageType int32

const (
	MessageTypeUnspecified MessageType = 0
	MessageTypeNormal      MessageType = 1
	MessageTypeFifo        MessageType = 2
	MessageTypeDelay       MessageType = 3
	MessageTypeTransaction MessageType = 4
)

// SystemProperties carries the broker-interpreted message attributes.
type SystemProperties struct {
	Tag               string      `protobuf:"bytes,1,opt,name=tag,proto3" json:"tag,omitempty"`
	Keys              []string    `protobuf:"bytes,2,rep,name=keys,proto3" json:"keys,omitempty"`
	MessageId         string      `protobuf:"bytes,3,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	MessageType       MessageType `protobuf:"varint,4,opt,name=message_type,json=messageType,proto3" json:"message_type,omitempty"`
	BornTimestampMs   int64       `protobuf:"varint,5,opt,name=born_timestamp_ms,json=bornTimestampMs,proto3" json:"born_timestamp_ms,omitempty"`
	BornHost          string      `protobuf:"bytes,6,opt,name=born_host,json=bornHost,proto3" json:"born_host,omitempty"`
	DeliveryAttempt   int32       `protobuf:"varint,7,opt,name=delivery_attempt,json=deliveryAttempt,proto3" json:"delivery_attempt,omitempty"`
	ReceiptHandle     string      `protobuf:"bytes,8,opt,name=receipt_handle,json=receiptHandle,proto3" json:"receipt_handle,omitempty"`
	MessageGroup      string      `protobuf:"bytes,9,opt,name=message_group,json=messageGroup,proto3" json:"message_group,omitempty"`
	QueueId           int32       `protobuf:"varint,10,opt,name=queue_id,json=queueId,proto3" json:"queue_id,omitempty"`
	QueueOffset       int64       `protobuf:"varint,11,opt,name=queue_offset,json=queueOffset,proto3" json:"queue_offset,omitempty"`
	InvisiblePeriodMs int64       `protobuf:"varint,12,opt,name=invisible_period_ms,json=invisiblePeriodMs,proto3" json:"invisible_period_ms,omitempty"`
	DelayLevel        int32       `protobuf:"varint,13,opt,name=delay_level,json=delayLevel,proto3" json:"delay_level,omitempty"`
	TransactionId     string      `protobuf:"bytes,14,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
}

func (m *SystemProperties) Reset()         { *m = SystemProperties{} }
func (m *SystemProperties) String() string { return fmt.Sprintf("%+v", *m) }
func (*SystemProperties) ProtoMessage()    {}

// Message is the wire form of one message.
type Message struct {
	Topic            *Resource         `protobuf:"bytes,1,opt,name=topic,proto3" json:"topic,omitempty"`
	SystemProperties *SystemProperties `protobuf:"bytes,2,opt,name=system_properties,json=systemProperties,proto3" json:"system_properties,omitempty"`
	UserProperties   map[string]string `protobuf:"bytes,3,rep,name=user_properties,json=userProperties,proto3" json:"user_properties,omitempty" protobuf_key:"bytes,1,opt,name=key,proto3" protobuf_val:"bytes,2,opt,name=value,proto3"`
	Body             []byte            `protobuf:"bytes,4,opt,name=body,proto3" json:"body,omitempty"`
}

func (m *Message) Reset()         { *m = Message{} }
func (m *Message) String() string { return fmt.Sprintf("%+v", *m) }
func (*Message) ProtoMessage()    {}

// FilterType selects the subscription expression language.
type FilterType int32

const (
	FilterTypeUnspecified FilterType = 0
	FilterTypeTag         FilterType = 1
	FilterTypeSQL         FilterType = 2
)

// FilterExpression is a subscription filter.
type FilterExpression struct {
	Type       FilterType `protobuf:"varint,1,opt,name=type,proto3" json:"type,omitempty"`
	Expression string     `protobuf:"bytes,2,opt,name=expression,proto3" json:"expression,omitempty"`
}

func (m *FilterExpression) Reset()         { *m = FilterExpression{} }
func (m *FilterExpression) String() string { return fmt.Sprintf("%+v", *m) }
func (*FilterExpression) ProtoMessage()    {}

// ─── request/response pairs ─────────────────────────────────────────────────

type QueryRouteRequest struct {
	Topic     *Resource  `protobuf:"bytes,1,opt,name=topic,proto3" json:"topic,omitempty"`
	Endpoints *Endpoints `protobuf:"bytes,2,opt,name=endpoints,proto3" json:"endpoints,omitempty"`
}

func (m *QueryRouteRequest) Reset()         { *m = QueryRouteRequest{} }
func (m *QueryRouteRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryRouteRequest) ProtoMessage()    {}

type QueryRouteResponse struct {
	Status        *Status         `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	MessageQueues []*MessageQueue `protobuf:"bytes,2,rep,name=message_queues,json=messageQueues,proto3" json:"message_queues,omitempty"`
}

func (m *QueryRouteResponse) Reset()         { *m = QueryRouteResponse{} }
func (m *QueryRouteResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryRouteResponse) ProtoMessage()    {}

type QueryAssignmentRequest struct {
	Topic     *Resource  `protobuf:"bytes,1,opt,name=topic,proto3" json:"topic,omitempty"`
	Group     *Resource  `protobuf:"bytes,2,opt,name=group,proto3" json:"group,omitempty"`
	ClientId  string     `protobuf:"bytes,3,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
	Endpoints *Endpoints `protobuf:"bytes,4,opt,name=endpoints,proto3" json:"endpoints,omitempty"`
}

func (m *QueryAssignmentRequest) Reset()         { *m = QueryAssignmentRequest{} }
func (m *QueryAssignmentRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryAssignmentRequest) ProtoMessage()    {}

type Assignment struct {
	MessageQueue *MessageQueue `protobuf:"bytes,1,opt,name=message_queue,json=messageQueue,proto3" json:"message_queue,omitempty"`
}

func (m *Assignment) Reset()         { *m = Assignment{} }
func (m *Assignment) String() string { return fmt.Sprintf("%+v", *m) }
func (*Assignment) ProtoMessage()    {}

type QueryAssignmentResponse struct {
	Status      *Status       `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	Assignments []*Assignment `protobuf:"bytes,2,rep,name=assignments,proto3" json:"assignments,omitempty"`
}

func (m *QueryAssignmentResponse) Reset()         { *m = QueryAssignmentResponse{} }
func (m *QueryAssignmentResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*QueryAssignmentResponse) ProtoMessage()    {}

type SendMessageRequest struct {
	Group    *Resource  `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Messages []*Message `protobuf:"bytes,2,rep,name=messages,proto3" json:"messages,omitempty"`
}

func (m *SendMessageRequest) Reset()         { *m = SendMessageRequest{} }
func (m *SendMessageRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*SendMessageRequest) ProtoMessage()    {}

type SendResultEntry struct {
	Status        *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	MessageId     string  `protobuf:"bytes,2,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	TransactionId string  `protobuf:"bytes,3,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
	Offset        int64   `protobuf:"varint,4,opt,name=offset,proto3" json:"offset,omitempty"`
}

func (m *SendResultEntry) Reset()         { *m = SendResultEntry{} }
func (m *SendResultEntry) String() string { return fmt.Sprintf("%+v", *m) }
func (*SendResultEntry) ProtoMessage()    {}

type SendMessageResponse struct {
	Status  *Status            `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	Entries []*SendResultEntry `protobuf:"bytes,2,rep,name=entries,proto3" json:"entries,omitempty"`
}

func (m *SendMessageResponse) Reset()         { *m = SendMessageResponse{} }
func (m *SendMessageResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*SendMessageResponse) ProtoMessage()    {}

type ReceiveMessageRequest struct {
	Group             *Resource         `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Topic             *Resource         `protobuf:"bytes,2,opt,name=topic,proto3" json:"topic,omitempty"`
	FilterExpression  *FilterExpression `protobuf:"bytes,3,opt,name=filter_expression,json=filterExpression,proto3" json:"filter_expression,omitempty"`
	BatchSize         int32             `protobuf:"varint,4,opt,name=batch_size,json=batchSize,proto3" json:"batch_size,omitempty"`
	InvisibleDuration int64             `protobuf:"varint,5,opt,name=invisible_duration,json=invisibleDuration,proto3" json:"invisible_duration,omitempty"`
	LongPollingMs     int64             `protobuf:"varint,6,opt,name=long_polling_ms,json=longPollingMs,proto3" json:"long_polling_ms,omitempty"`
	InitMode          int32             `protobuf:"varint,7,opt,name=init_mode,json=initMode,proto3" json:"init_mode,omitempty"`
	Fifo              bool              `protobuf:"varint,8,opt,name=fifo,proto3" json:"fifo,omitempty"`
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

type AckMessageEntry struct {
	MessageId     string `protobuf:"bytes,1,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	ReceiptHandle string `protobuf:"bytes,2,opt,name=receipt_handle,json=receiptHandle,proto3" json:"receipt_handle,omitempty"`
}

func (m *AckMessageEntry) Reset()         { *m = AckMessageEntry{} }
func (m *AckMessageEntry) String() string { return fmt.Sprintf("%+v", *m) }
func (*AckMessageEntry) ProtoMessage()    {}

type AckMessageRequest struct {
	Group   *Resource          `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Topic   *Resource          `protobuf:"bytes,2,opt,name=topic,proto3" json:"topic,omitempty"`
	Entries []*AckMessageEntry `protobuf:"bytes,3,rep,name=entries,proto3" json:"entries,omitempty"`
}

func (m *AckMessageRequest) Reset()         { *m = AckMessageRequest{} }
func (m *AckMessageRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*AckMessageRequest) ProtoMessage()    {}

type AckMessageResultEntry struct {
	Status        *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	MessageId     string  `protobuf:"bytes,2,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	ReceiptHandle string  `protobuf:"bytes,3,opt,name=receipt_handle,json=receiptHandle,proto3" json:"receipt_handle,omitempty"`
}

func (m *AckMessageResultEntry) Reset()         { *m = AckMessageResultEntry{} }
func (m *AckMessageResultEntry) String() string { return fmt.Sprintf("%+v", *m) }
func (*AckMessageResultEntry) ProtoMessage()    {}

type AckMessageResponse struct {
	Status  *Status                  `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	Entries []*AckMessageResultEntry `protobuf:"bytes,2,rep,name=entries,proto3" json:"entries,omitempty"`
}

func (m *AckMessageResponse) Reset()         { *m = AckMessageResponse{} }
func (m *AckMessageResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*AckMessageResponse) ProtoMessage()    {}

type ChangeInvisibleDurationRequest struct {
	Group             *Resource `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Topic             *Resource `protobuf:"bytes,2,opt,name=topic,proto3" json:"topic,omitempty"`
	ReceiptHandle     string    `protobuf:"bytes,3,opt,name=receipt_handle,json=receiptHandle,proto3" json:"receipt_handle,omitempty"`
	MessageId         string    `protobuf:"bytes,4,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	InvisibleDuration int64     `protobuf:"varint,5,opt,name=invisible_duration,json=invisibleDuration,proto3" json:"invisible_duration,omitempty"`
}

func (m *ChangeInvisibleDurationRequest) Reset()         { *m = ChangeInvisibleDurationRequest{} }
func (m *ChangeInvisibleDurationRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ChangeInvisibleDurationRequest) ProtoMessage()    {}

type ChangeInvisibleDurationResponse struct {
	Status        *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	ReceiptHandle string  `protobuf:"bytes,2,opt,name=receipt_handle,json=receiptHandle,proto3" json:"receipt_handle,omitempty"`
}

func (m *ChangeInvisibleDurationResponse) Reset()         { *m = ChangeInvisibleDurationResponse{} }
func (m *ChangeInvisibleDurationResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*ChangeInvisibleDurationResponse) ProtoMessage()    {}

type ForwardMessageToDeadLetterQueueRequest struct {
	Group               *Resource `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Topic               *Resource `protobuf:"bytes,2,opt,name=topic,proto3" json:"topic,omitempty"`
	ReceiptHandle       string    `protobuf:"bytes,3,opt,name=receipt_handle,json=receiptHandle,proto3" json:"receipt_handle,omitempty"`
	MessageId           string    `protobuf:"bytes,4,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	DeliveryAttempt     int32     `protobuf:"varint,5,opt,name=delivery_attempt,json=deliveryAttempt,proto3" json:"delivery_attempt,omitempty"`
	MaxDeliveryAttempts int32     `protobuf:"varint,6,opt,name=max_delivery_attempts,json=maxDeliveryAttempts,proto3" json:"max_delivery_attempts,omitempty"`
}

func (m *ForwardMessageToDeadLetterQueueRequest) Reset() {
	*m = ForwardMessageToDeadLetterQueueRequest{}
}
func (m *ForwardMessageToDeadLetterQueueRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ForwardMessageToDeadLetterQueueRequest) ProtoMessage()    {}

type ForwardMessageToDeadLetterQueueResponse struct {
	Status *Status `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

func (m *ForwardMessageToDeadLetterQueueResponse) Reset() {
	*m = ForwardMessageToDeadLetterQueueResponse{}
}
func (m *ForwardMessageToDeadLetterQueueResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*ForwardMessageToDeadLetterQueueResponse) ProtoMessage()    {}

type HeartbeatRequest struct {
	Group    *Resource `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	ClientId string    `protobuf:"bytes,2,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
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
	Group    *Resource `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	ClientId string    `protobuf:"bytes,2,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
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

// TransactionResolution is the client's verdict on a half message.
type TransactionResolution int32

const (
	TransactionResolutionUnspecified TransactionResolution = 0
	TransactionResolutionCommit      TransactionResolution = 1
	TransactionResolutionRollback    TransactionResolution = 2
)

// TransactionSource distinguishes client-initiated resolution from answers
// to a server-side orphan check.
type TransactionSource int32

const (
	TransactionSourceClient      TransactionSource = 0
	TransactionSourceServerCheck TransactionSource = 1
)

type EndTransactionRequest struct {
	Group         *Resource             `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	Topic         *Resource             `protobuf:"bytes,2,opt,name=topic,proto3" json:"topic,omitempty"`
	MessageId     string                `protobuf:"bytes,3,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	TransactionId string                `protobuf:"bytes,4,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
	Resolution    TransactionResolution `protobuf:"varint,5,opt,name=resolution,proto3" json:"resolution,omitempty"`
	Source        TransactionSource     `protobuf:"varint,6,opt,name=source,proto3" json:"source,omitempty"`
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
	Group            *Resource         `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	MessageQueue     *MessageQueue     `protobuf:"bytes,2,opt,name=message_queue,json=messageQueue,proto3" json:"message_queue,omitempty"`
	Offset           int64             `protobuf:"varint,3,opt,name=offset,proto3" json:"offset,omitempty"`
	BatchSize        int32             `protobuf:"varint,4,opt,name=batch_size,json=batchSize,proto3" json:"batch_size,omitempty"`
	FilterExpression *FilterExpression `protobuf:"bytes,5,opt,name=filter_expression,json=filterExpression,proto3" json:"filter_expression,omitempty"`
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

// QueryOffsetPolicy selects how a starting offset resolves.
type QueryOffsetPolicy int32

const (
	QueryOffsetPolicyBeginning QueryOffsetPolicy = 0
	QueryOffsetPolicyEnd       QueryOffsetPolicy = 1
	QueryOffsetPolicyTimePoint QueryOffsetPolicy = 2
)

type QueryOffsetRequest struct {
	MessageQueue *MessageQueue     `protobuf:"bytes,1,opt,name=message_queue,json=messageQueue,proto3" json:"message_queue,omitempty"`
	Policy       QueryOffsetPolicy `protobuf:"varint,2,opt,name=policy,proto3" json:"policy,omitempty"`
	TimestampMs  int64             `protobuf:"varint,3,opt,name=timestamp_ms,json=timestampMs,proto3" json:"timestamp_ms,omitempty"`
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
	Group    *Resource `protobuf:"bytes,1,opt,name=group,proto3" json:"group,omitempty"`
	ClientId string    `protobuf:"bytes,2,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
}

func (m *PollCommandRequest) Reset()         { *m = PollCommandRequest{} }
func (m *PollCommandRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*PollCommandRequest) ProtoMessage()    {}

// PolledCommandType names a broker-originated back-request.
type PolledCommandType int32

const (
	PolledCommandTypeUnspecified            PolledCommandType = 0
	PolledCommandTypeCheckTransaction       PolledCommandType = 1
	PolledCommandTypeConsumerRunningInfo    PolledCommandType = 2
	PolledCommandTypeConsumeMessageDirectly PolledCommandType = 3
)

type CheckTransactionCommand struct {
	TransactionId string `protobuf:"bytes,1,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
	MessageId     string `protobuf:"bytes,2,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	Topic         string `protobuf:"bytes,3,opt,name=topic,proto3" json:"topic,omitempty"`
}

func (m *CheckTransactionCommand) Reset()         { *m = CheckTransactionCommand{} }
func (m *CheckTransactionCommand) String() string { return fmt.Sprintf("%+v", *m) }
func (*CheckTransactionCommand) ProtoMessage()    {}

type ConsumerRunningInfoCommand struct {
	JstackEnable bool `protobuf:"varint,1,opt,name=jstack_enable,json=jstackEnable,proto3" json:"jstack_enable,omitempty"`
}

func (m *ConsumerRunningInfoCommand) Reset()         { *m = ConsumerRunningInfoCommand{} }
func (m *ConsumerRunningInfoCommand) String() string { return fmt.Sprintf("%+v", *m) }
func (*ConsumerRunningInfoCommand) ProtoMessage()    {}

type ConsumeMessageDirectlyCommand struct {
	MessageId  string `protobuf:"bytes,1,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	BrokerName string `protobuf:"bytes,2,opt,name=broker_name,json=brokerName,proto3" json:"broker_name,omitempty"`
}

func (m *ConsumeMessageDirectlyCommand) Reset()         { *m = ConsumeMessageDirectlyCommand{} }
func (m *ConsumeMessageDirectlyCommand) String() string { return fmt.Sprintf("%+v", *m) }
func (*ConsumeMessageDirectlyCommand) ProtoMessage()    {}

type PolledCommand struct {
	Nonce                  string                         `protobuf:"bytes,1,opt,name=nonce,proto3" json:"nonce,omitempty"`
	Type                   PolledCommandType              `protobuf:"varint,2,opt,name=type,proto3" json:"type,omitempty"`
	CheckTransaction       *CheckTransactionCommand       `protobuf:"bytes,3,opt,name=check_transaction,json=checkTransaction,proto3" json:"check_transaction,omitempty"`
	ConsumerRunningInfo    *ConsumerRunningInfoCommand    `protobuf:"bytes,4,opt,name=consumer_running_info,json=consumerRunningInfo,proto3" json:"consumer_running_info,omitempty"`
	ConsumeMessageDirectly *ConsumeMessageDirectlyCommand `protobuf:"bytes,5,opt,name=consume_message_directly,json=consumeMessageDirectly,proto3" json:"consume_message_directly,omitempty"`
}

func (m *PolledCommand) Reset()         { *m = PolledCommand{} }
func (m *PolledCommand) String() string { return fmt.Sprintf("%+v", *m) }
func (*PolledCommand) ProtoMessage()    {}
