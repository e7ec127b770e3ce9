package remoting

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Message property keys with protocol-level meaning.
const (
	PropertyKeys           = "KEYS"
	PropertyTags           = "TAGS"
	PropertyDelayLevel     = "DELAY"
	PropertyRetryTopic     = "RETRY_TOPIC"
	PropertyTransactionFlag = "TRAN_MSG"
	PropertyProducerGroup  = "PGROUP"
	PropertyMsgRegion      = "MSG_REGION"
	PropertyUniqClientID   = "UNIQ_KEY"
	PropertyPopCK          = "POP_CK"
	PropertyShardingKey    = "__SHARDINGKEY"
	PropertyFirstPopTime   = "1ST_POP_TIME"
	PropertyTransactionID  = "__transactionId__"
)

// Property string separators: key\x01value\x02key\x01value...
const (
	nameValueSeparator = "\x01"
	propertySeparator  = "\x02"
)

// Message is a client-supplied message on its way to a broker.
type Message struct {
	Topic      string
	Flag       int32
	Properties map[string]string
	Body       []byte
}

// Property returns the named property, or "" when absent.
func (m *Message) Property(key string) string {
	if m.Properties == nil {
		return ""
	}
	return m.Properties[key]
}

// SetProperty stores a property, allocating the map on first use.
func (m *Message) SetProperty(key, value string) {
	if m.Properties == nil {
		m.Properties = make(map[string]string)
	}
	m.Properties[key] = value
}

// MessageExt is a message as stored by a broker, with placement metadata.
type MessageExt struct {
	Message
	MsgID                     string
	QueueID                   int32
	StoreSize                 int32
	QueueOffset               int64
	SysFlag                   int32
	BornTimestamp             int64
	BornHost                  string
	StoreTimestamp            int64
	StoreHost                 string
	CommitLogOffset           int64
	BodyCRC                   int32
	ReconsumeTimes            int32
	PreparedTransactionOffset int64
}

// MarshalProperties renders a property map in wire form.
func MarshalProperties(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	var b strings.Builder
	for k, v := range props {
		b.WriteString(k)
		b.WriteString(nameValueSeparator)
		b.WriteString(v)
		b.WriteString(propertySeparator)
	}
	return b.String()
}

// UnmarshalProperties parses a wire-form property string.
func UnmarshalProperties(s string) map[string]string {
	props := make(map[string]string)
	for _, pair := range strings.Split(s, propertySeparator) {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, nameValueSeparator, 2)
		if len(kv) == 2 {
			props[kv[0]] = kv[1]
		}
	}
	return props
}

// Message system flags.
const (
	CompressedFlag          int32 = 0x1
	MultiTagsFlag           int32 = 0x2
	TransactionPreparedFlag int32 = 0x4

	sysFlagBornHostV6  int32 = 1 << 4
	sysFlagStoreHostV6 int32 = 1 << 5
)

const messageMagicCode int32 = -626843481

// DecodeMessageList parses the concatenated store-format messages carried in
// pop and pull response bodies.
func DecodeMessageList(body []byte) ([]*MessageExt, error) {
	var msgs []*MessageExt
	r := bytes.NewReader(body)
	for r.Len() > 0 {
		msg, err := decodeMessage(r)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func decodeMessage(r *bytes.Reader) (*MessageExt, error) {
	var fixed struct {
		StoreSize     int32
		MagicCode     int32
		BodyCRC       int32
		QueueID       int32
		Flag          int32
		QueueOffset   int64
		PhysicOffset  int64
		SysFlag       int32
		BornTimestamp int64
	}
	if err := binary.Read(r, binary.BigEndian, &fixed); err != nil {
		return nil, fmt.Errorf("remoting: decode message header: %w", err)
	}
	if fixed.MagicCode != messageMagicCode {
		return nil, fmt.Errorf("remoting: bad message magic %#x", fixed.MagicCode)
	}

	msg := &MessageExt{
		StoreSize:       fixed.StoreSize,
		BodyCRC:         fixed.BodyCRC,
		QueueID:         fixed.QueueID,
		QueueOffset:     fixed.QueueOffset,
		CommitLogOffset: fixed.PhysicOffset,
		SysFlag:         fixed.SysFlag,
		BornTimestamp:   fixed.BornTimestamp,
	}
	msg.Flag = fixed.Flag

	var err error
	if msg.BornHost, err = decodeHost(r, fixed.SysFlag&sysFlagBornHostV6 != 0); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &msg.StoreTimestamp); err != nil {
		return nil, fmt.Errorf("remoting: decode store timestamp: %w", err)
	}
	if msg.StoreHost, err = decodeHost(r, fixed.SysFlag&sysFlagStoreHostV6 != 0); err != nil {
		return nil, err
	}

	var tail struct {
		ReconsumeTimes            int32
		PreparedTransactionOffset int64
		BodyLen                   int32
	}
	if err := binary.Read(r, binary.BigEndian, &tail); err != nil {
		return nil, fmt.Errorf("remoting: decode message tail: %w", err)
	}
	msg.ReconsumeTimes = tail.ReconsumeTimes
	msg.PreparedTransactionOffset = tail.PreparedTransactionOffset

	if tail.BodyLen > 0 {
		body := make([]byte, tail.BodyLen)
		if _, err := r.Read(body); err != nil {
			return nil, fmt.Errorf("remoting: decode body: %w", err)
		}
		msg.Body = body
	}

	var topicLen byte
	if topicLen, err = r.ReadByte(); err != nil {
		return nil, fmt.Errorf("remoting: decode topic length: %w", err)
	}
	topic := make([]byte, topicLen)
	if _, err := r.Read(topic); err != nil {
		return nil, fmt.Errorf("remoting: decode topic: %w", err)
	}
	msg.Topic = string(topic)

	var propsLen int16
	if err := binary.Read(r, binary.BigEndian, &propsLen); err != nil {
		return nil, fmt.Errorf("remoting: decode properties length: %w", err)
	}
	if propsLen > 0 {
		props := make([]byte, propsLen)
		if _, err := r.Read(props); err != nil {
			return nil, fmt.Errorf("remoting: decode properties: %w", err)
		}
		msg.Properties = UnmarshalProperties(string(props))
	}

	msg.MsgID = msg.Property(PropertyUniqClientID)
	return msg, nil
}

func decodeHost(r *bytes.Reader, v6 bool) (string, error) {
	ipLen := 4
	if v6 {
		ipLen = 16
	}
	buf := make([]byte, ipLen+4)
	if _, err := r.Read(buf); err != nil {
		return "", fmt.Errorf("remoting: decode host: %w", err)
	}
	ip := net.IP(buf[:ipLen])
	port := binary.BigEndian.Uint32(buf[ipLen:])
	return fmt.Sprintf("%s:%d", ip.String(), port), nil
}

// EncodeMessageExt renders one message in broker store format, the inverse
// of decodeMessage. Used by the embedded broker adapter and test fixtures.
func EncodeMessageExt(msg *MessageExt) ([]byte, error) {
	props := MarshalProperties(msg.Properties)
	if len(props) > 0x7FFF {
		return nil, fmt.Errorf("remoting: properties too large: %d", len(props))
	}
	if len(msg.Topic) > 0xFF {
		return nil, fmt.Errorf("remoting: topic too long: %d", len(msg.Topic))
	}

	bornHost, err := encodeHost(msg.BornHost)
	if err != nil {
		return nil, err
	}
	storeHost, err := encodeHost(msg.StoreHost)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	storeSize := 4 + 4 + 4 + 4 + 4 + 8 + 8 + 4 + 8 + len(bornHost) + 8 + len(storeHost) +
		4 + 8 + 4 + len(msg.Body) + 1 + len(msg.Topic) + 2 + len(props)

	binary.Write(&buf, binary.BigEndian, int32(storeSize))
	binary.Write(&buf, binary.BigEndian, messageMagicCode)
	binary.Write(&buf, binary.BigEndian, msg.BodyCRC)
	binary.Write(&buf, binary.BigEndian, msg.QueueID)
	binary.Write(&buf, binary.BigEndian, msg.Flag)
	binary.Write(&buf, binary.BigEndian, msg.QueueOffset)
	binary.Write(&buf, binary.BigEndian, msg.CommitLogOffset)
	binary.Write(&buf, binary.BigEndian, msg.SysFlag&^(sysFlagBornHostV6|sysFlagStoreHostV6))
	binary.Write(&buf, binary.BigEndian, msg.BornTimestamp)
	buf.Write(bornHost)
	binary.Write(&buf, binary.BigEndian, msg.StoreTimestamp)
	buf.Write(storeHost)
	binary.Write(&buf, binary.BigEndian, msg.ReconsumeTimes)
	binary.Write(&buf, binary.BigEndian, msg.PreparedTransactionOffset)
	binary.Write(&buf, binary.BigEndian, int32(len(msg.Body)))
	buf.Write(msg.Body)
	buf.WriteByte(byte(len(msg.Topic)))
	buf.WriteString(msg.Topic)
	binary.Write(&buf, binary.BigEndian, int16(len(props)))
	buf.WriteString(props)
	return buf.Bytes(), nil
}

// encodeHost renders "ip:port" as 4-byte IPv4 + 4-byte port; empty hosts
// encode as the zero address.
func encodeHost(host string) ([]byte, error) {
	out := make([]byte, 8)
	if host == "" {
		return out, nil
	}
	ipStr, portStr, err := net.SplitHostPort(host)
	if err != nil {
		return nil, fmt.Errorf("remoting: encode host %q: %w", host, err)
	}
	ip := net.ParseIP(ipStr)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("remoting: encode host %q: not an IPv4 address", host)
	}
	copy(out[:4], ip.To4())
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("remoting: encode host %q: %w", host, err)
	}
	binary.BigEndian.PutUint32(out[4:], uint32(port))
	return out, nil
}

// EncodeBatchBody serializes a message list into the SEND_BATCH_MESSAGE body
// format. Every message in a batch must target the same topic.
func EncodeBatchBody(msgs []*Message) ([]byte, error) {
	var buf bytes.Buffer
	for _, m := range msgs {
		props := MarshalProperties(m.Properties)
		total := 4 + 4 + 4 + 4 + 4 + len(m.Body) + 2 + len(props)
		binary.Write(&buf, binary.BigEndian, int32(total))
		binary.Write(&buf, binary.BigEndian, int32(0)) // magic, reserved in batch
		binary.Write(&buf, binary.BigEndian, int32(0)) // bodyCRC
		binary.Write(&buf, binary.BigEndian, m.Flag)
		binary.Write(&buf, binary.BigEndian, int32(len(m.Body)))
		buf.Write(m.Body)
		if len(props) > 0xFFFF {
			return nil, fmt.Errorf("remoting: batch message properties too large: %d", len(props))
		}
		binary.Write(&buf, binary.BigEndian, int16(len(props)))
		buf.WriteString(props)
	}
	return buf.Bytes(), nil
}

// ProducerData identifies one producer group in a heartbeat.
type ProducerData struct {
	GroupName string `json:"groupName"`
}

// ConsumerData identifies one consumer group and its subscriptions in a
// heartbeat.
type ConsumerData struct {
	GroupName        string             `json:"groupName"`
	ConsumeType      string             `json:"consumeType"`
	MessageModel     string             `json:"messageModel"`
	ConsumeFromWhere string             `json:"consumeFromWhere"`
	SubscriptionData []SubscriptionData `json:"subscriptionDataSet"`
}

// SubscriptionData is one topic subscription within a ConsumerData.
type SubscriptionData struct {
	Topic          string   `json:"topic"`
	SubString      string   `json:"subString"`
	ExpressionType string   `json:"expressionType"`
	TagsSet        []string `json:"tagsSet"`
	SubVersion     int64    `json:"subVersion"`
}

// HeartbeatData is the JSON body of a HEART_BEAT request.
type HeartbeatData struct {
	ClientID        string         `json:"clientID"`
	ProducerDataSet []ProducerData `json:"producerDataSet,omitempty"`
	ConsumerDataSet []ConsumerData `json:"consumerDataSet,omitempty"`
}
