package remoting

import (
	"strconv"
)

// Custom headers travel in Command.ExtFields as flat string pairs. Each
// header type knows how to render itself to and parse itself from that map.

func extInt32(ext map[string]string, key string) int32 {
	v, _ := strconv.ParseInt(ext[key], 10, 32)
	return int32(v)
}

func extInt64(ext map[string]string, key string) int64 {
	v, _ := strconv.ParseInt(ext[key], 10, 64)
	return v
}

func extBool(ext map[string]string, key string) bool {
	v, _ := strconv.ParseBool(ext[key])
	return v
}

func putInt32(ext map[string]string, key string, v int32) {
	ext[key] = strconv.FormatInt(int64(v), 10)
}

func putInt64(ext map[string]string, key string, v int64) {
	ext[key] = strconv.FormatInt(v, 10)
}

func putBool(ext map[string]string, key string, v bool) {
	ext[key] = strconv.FormatBool(v)
}

// SendMessageRequestHeader accompanies SEND_MESSAGE(_V2/_BATCH).
type SendMessageRequestHeader struct {
	ProducerGroup  string
	Topic          string
	QueueID        int32
	SysFlag        int32
	BornTimestamp  int64
	Flag           int32
	Properties     string
	ReconsumeTimes int32
	Batch          bool
}

func (h *SendMessageRequestHeader) ToExt() map[string]string {
	ext := map[string]string{
		"producerGroup": h.ProducerGroup,
		"topic":         h.Topic,
		"properties":    h.Properties,
	}
	putInt32(ext, "queueId", h.QueueID)
	putInt32(ext, "sysFlag", h.SysFlag)
	putInt64(ext, "bornTimestamp", h.BornTimestamp)
	putInt32(ext, "flag", h.Flag)
	putInt32(ext, "reconsumeTimes", h.ReconsumeTimes)
	putBool(ext, "batch", h.Batch)
	return ext
}

// SendMessageResponseHeader is returned on successful sends.
type SendMessageResponseHeader struct {
	MsgID         string
	QueueID       int32
	QueueOffset   int64
	TransactionID string
}

func ParseSendMessageResponseHeader(ext map[string]string) *SendMessageResponseHeader {
	return &SendMessageResponseHeader{
		MsgID:         ext["msgId"],
		QueueID:       extInt32(ext, "queueId"),
		QueueOffset:   extInt64(ext, "queueOffset"),
		TransactionID: ext["transactionId"],
	}
}

// PopMessageRequestHeader accompanies POP_MESSAGE.
type PopMessageRequestHeader struct {
	ConsumerGroup    string
	Topic            string
	QueueID          int32
	MaxMsgNums       int32
	InvisibleTime    int64
	PollTime         int64
	BornTime         int64
	InitMode         int32
	ExpType          string
	Exp              string
	Order            bool
}

func (h *PopMessageRequestHeader) ToExt() map[string]string {
	ext := map[string]string{
		"consumerGroup": h.ConsumerGroup,
		"topic":         h.Topic,
		"expType":       h.ExpType,
		"exp":           h.Exp,
	}
	putInt32(ext, "queueId", h.QueueID)
	putInt32(ext, "maxMsgNums", h.MaxMsgNums)
	putInt64(ext, "invisibleTime", h.InvisibleTime)
	putInt64(ext, "pollTime", h.PollTime)
	putInt64(ext, "bornTime", h.BornTime)
	putInt32(ext, "initMode", h.InitMode)
	putBool(ext, "order", h.Order)
	return ext
}

// PopMessageResponseHeader carries the offset bookkeeping needed to build
// receipt handles.
type PopMessageResponseHeader struct {
	PopTime         int64
	InvisibleTime   int64
	ReviveQid       int32
	RestNum         int64
	StartOffsetInfo string
	MsgOffsetInfo   string
	OrderCountInfo  string
}

func ParsePopMessageResponseHeader(ext map[string]string) *PopMessageResponseHeader {
	return &PopMessageResponseHeader{
		PopTime:         extInt64(ext, "popTime"),
		InvisibleTime:   extInt64(ext, "invisibleTime"),
		ReviveQid:       extInt32(ext, "reviveQid"),
		RestNum:         extInt64(ext, "restNum"),
		StartOffsetInfo: ext["startOffsetInfo"],
		MsgOffsetInfo:   ext["msgOffsetInfo"],
		OrderCountInfo:  ext["orderCountInfo"],
	}
}

// AckMessageRequestHeader accompanies ACK_MESSAGE.
type AckMessageRequestHeader struct {
	ConsumerGroup string
	Topic         string
	QueueID       int32
	ExtraInfo     string
	Offset        int64
}

func (h *AckMessageRequestHeader) ToExt() map[string]string {
	ext := map[string]string{
		"consumerGroup": h.ConsumerGroup,
		"topic":         h.Topic,
		"extraInfo":     h.ExtraInfo,
	}
	putInt32(ext, "queueId", h.QueueID)
	putInt64(ext, "offset", h.Offset)
	return ext
}

// ChangeInvisibleTimeRequestHeader accompanies CHANGE_INVISIBLE_TIME.
type ChangeInvisibleTimeRequestHeader struct {
	ConsumerGroup string
	Topic         string
	QueueID       int32
	ExtraInfo     string
	Offset        int64
	InvisibleTime int64
}

func (h *ChangeInvisibleTimeRequestHeader) ToExt() map[string]string {
	ext := map[string]string{
		"consumerGroup": h.ConsumerGroup,
		"topic":         h.Topic,
		"extraInfo":     h.ExtraInfo,
	}
	putInt32(ext, "queueId", h.QueueID)
	putInt64(ext, "offset", h.Offset)
	putInt64(ext, "invisibleTime", h.InvisibleTime)
	return ext
}

// ChangeInvisibleTimeResponseHeader returns the fields from which the
// replacement receipt handle is synthesized.
type ChangeInvisibleTimeResponseHeader struct {
	PopTime       int64
	InvisibleTime int64
	ReviveQid     int32
}

func ParseChangeInvisibleTimeResponseHeader(ext map[string]string) *ChangeInvisibleTimeResponseHeader {
	return &ChangeInvisibleTimeResponseHeader{
		PopTime:       extInt64(ext, "popTime"),
		InvisibleTime: extInt64(ext, "invisibleTime"),
		ReviveQid:     extInt32(ext, "reviveQid"),
	}
}

// ConsumerSendMsgBackRequestHeader accompanies CONSUMER_SEND_MSG_BACK.
type ConsumerSendMsgBackRequestHeader struct {
	Group             string
	Offset            int64
	OriginTopic       string
	OriginMsgID       string
	DelayLevel        int32
	MaxReconsumeTimes int32
}

func (h *ConsumerSendMsgBackRequestHeader) ToExt() map[string]string {
	ext := map[string]string{
		"group":       h.Group,
		"originTopic": h.OriginTopic,
		"originMsgId": h.OriginMsgID,
	}
	putInt64(ext, "offset", h.Offset)
	putInt32(ext, "delayLevel", h.DelayLevel)
	putInt32(ext, "maxReconsumeTimes", h.MaxReconsumeTimes)
	return ext
}

// EndTransactionRequestHeader accompanies END_TRANSACTION. The call is
// one-way; the broker never replies.
type EndTransactionRequestHeader struct {
	ProducerGroup        string
	TranStateTableOffset int64
	CommitLogOffset      int64
	CommitOrRollback     int32
	FromTransactionCheck bool
	MsgID                string
	TransactionID        string
}

// Transaction resolution values for CommitOrRollback, matching the broker's
// message system flags.
const (
	TransactionCommit   int32 = 0x8
	TransactionRollback int32 = 0xC
	TransactionNotType  int32 = 0
)

func (h *EndTransactionRequestHeader) ToExt() map[string]string {
	ext := map[string]string{
		"producerGroup": h.ProducerGroup,
		"msgId":         h.MsgID,
		"transactionId": h.TransactionID,
	}
	putInt64(ext, "tranStateTableOffset", h.TranStateTableOffset)
	putInt64(ext, "commitLogOffset", h.CommitLogOffset)
	putInt32(ext, "commitOrRollback", h.CommitOrRollback)
	putBool(ext, "fromTransactionCheck", h.FromTransactionCheck)
	return ext
}

// PullMessageRequestHeader accompanies PULL_MESSAGE.
type PullMessageRequestHeader struct {
	ConsumerGroup        string
	Topic                string
	QueueID              int32
	QueueOffset          int64
	MaxMsgNums           int32
	SysFlag              int32
	CommitOffset         int64
	SuspendTimeoutMillis int64
	Subscription         string
	SubVersion           int64
	ExpressionType       string
}

func (h *PullMessageRequestHeader) ToExt() map[string]string {
	ext := map[string]string{
		"consumerGroup":  h.ConsumerGroup,
		"topic":          h.Topic,
		"subscription":   h.Subscription,
		"expressionType": h.ExpressionType,
	}
	putInt32(ext, "queueId", h.QueueID)
	putInt64(ext, "queueOffset", h.QueueOffset)
	putInt32(ext, "maxMsgNums", h.MaxMsgNums)
	putInt32(ext, "sysFlag", h.SysFlag)
	putInt64(ext, "commitOffset", h.CommitOffset)
	putInt64(ext, "suspendTimeoutMillis", h.SuspendTimeoutMillis)
	putInt64(ext, "subVersion", h.SubVersion)
	return ext
}

// PullMessageResponseHeader is returned on pull replies.
type PullMessageResponseHeader struct {
	SuggestWhichBrokerID int64
	NextBeginOffset      int64
	MinOffset            int64
	MaxOffset            int64
}

func ParsePullMessageResponseHeader(ext map[string]string) *PullMessageResponseHeader {
	return &PullMessageResponseHeader{
		SuggestWhichBrokerID: extInt64(ext, "suggestWhichBrokerId"),
		NextBeginOffset:      extInt64(ext, "nextBeginOffset"),
		MinOffset:            extInt64(ext, "minOffset"),
		MaxOffset:            extInt64(ext, "maxOffset"),
	}
}

// GetMaxOffsetRequestHeader accompanies GET_MAX_OFFSET.
type GetMaxOffsetRequestHeader struct {
	Topic   string
	QueueID int32
}

func (h *GetMaxOffsetRequestHeader) ToExt() map[string]string {
	ext := map[string]string{"topic": h.Topic}
	putInt32(ext, "queueId", h.QueueID)
	return ext
}

// SearchOffsetRequestHeader accompanies SEARCH_OFFSET_BY_TIMESTAMP.
type SearchOffsetRequestHeader struct {
	Topic     string
	QueueID   int32
	Timestamp int64
}

func (h *SearchOffsetRequestHeader) ToExt() map[string]string {
	ext := map[string]string{"topic": h.Topic}
	putInt32(ext, "queueId", h.QueueID)
	putInt64(ext, "timestamp", h.Timestamp)
	return ext
}

// OffsetResponseHeader is shared by GET_MAX_OFFSET and
// SEARCH_OFFSET_BY_TIMESTAMP replies.
type OffsetResponseHeader struct {
	Offset int64
}

func ParseOffsetResponseHeader(ext map[string]string) *OffsetResponseHeader {
	return &OffsetResponseHeader{Offset: extInt64(ext, "offset")}
}

// UpdateConsumerOffsetRequestHeader accompanies UPDATE_CONSUMER_OFFSET.
type UpdateConsumerOffsetRequestHeader struct {
	ConsumerGroup string
	Topic         string
	QueueID       int32
	CommitOffset  int64
}

func (h *UpdateConsumerOffsetRequestHeader) ToExt() map[string]string {
	ext := map[string]string{
		"consumerGroup": h.ConsumerGroup,
		"topic":         h.Topic,
	}
	putInt32(ext, "queueId", h.QueueID)
	putInt64(ext, "commitOffset", h.CommitOffset)
	return ext
}

// GetRouteInfoRequestHeader accompanies GET_ROUTEINFO_BY_TOPIC toward a name
// server.
type GetRouteInfoRequestHeader struct {
	Topic string
}

func (h *GetRouteInfoRequestHeader) ToExt() map[string]string {
	return map[string]string{"topic": h.Topic}
}

// CheckTransactionStateRequestHeader arrives on broker-originated
// CHECK_TRANSACTION_STATE back-requests.
type CheckTransactionStateRequestHeader struct {
	TranStateTableOffset int64
	CommitLogOffset      int64
	MsgID                string
	TransactionID        string
	OffsetMsgID          string
}

func ParseCheckTransactionStateRequestHeader(ext map[string]string) *CheckTransactionStateRequestHeader {
	return &CheckTransactionStateRequestHeader{
		TranStateTableOffset: extInt64(ext, "tranStateTableOffset"),
		CommitLogOffset:      extInt64(ext, "commitLogOffset"),
		MsgID:                ext["msgId"],
		TransactionID:        ext["transactionId"],
		OffsetMsgID:          ext["offsetMsgId"],
	}
}

// GetConsumerRunningInfoRequestHeader arrives on GET_CONSUMER_RUNNING_INFO
// back-requests.
type GetConsumerRunningInfoRequestHeader struct {
	ConsumerGroup string
	ClientID      string
	JstackEnable  bool
}

func ParseGetConsumerRunningInfoRequestHeader(ext map[string]string) *GetConsumerRunningInfoRequestHeader {
	return &GetConsumerRunningInfoRequestHeader{
		ConsumerGroup: ext["consumerGroup"],
		ClientID:      ext["clientId"],
		JstackEnable:  extBool(ext, "jstackEnable"),
	}
}

// ConsumeMessageDirectlyRequestHeader arrives on CONSUME_MESSAGE_DIRECTLY
// back-requests.
type ConsumeMessageDirectlyRequestHeader struct {
	ConsumerGroup string
	ClientID      string
	MsgID         string
	BrokerName    string
}

func ParseConsumeMessageDirectlyRequestHeader(ext map[string]string) *ConsumeMessageDirectlyRequestHeader {
	return &ConsumeMessageDirectlyRequestHeader{
		ConsumerGroup: ext["consumerGroup"],
		ClientID:      ext["clientId"],
		MsgID:         ext["msgId"],
		BrokerName:    ext["brokerName"],
	}
}
