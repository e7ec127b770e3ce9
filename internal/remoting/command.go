// Package remoting implements the framed binary protocol spoken by the
// backend brokers and name servers: a RemotingCommand envelope serialized as
// a length-prefixed JSON header followed by an opaque body, carried over
// long-lived TCP connections with asynchronous request/response matching.
package remoting

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// Request codes understood by the brokers and name servers.
const (
	CodeSendMessage            int32 = 10
	CodePullMessage            int32 = 11
	CodeUpdateConsumerOffset   int32 = 15
	CodeSearchOffsetByTime     int32 = 29
	CodeGetMaxOffset           int32 = 30
	CodeHeartbeat              int32 = 34
	CodeUnregisterClient       int32 = 35
	CodeConsumerSendMsgBack    int32 = 36
	CodeEndTransaction         int32 = 37
	CodeGetConsumerListByGroup int32 = 38
	CodeGetRouteInfoByTopic    int32 = 105
	CodeSendMessageV2          int32 = 310
	CodeSendBatchMessage       int32 = 320
	CodePopMessage             int32 = 200050
	CodeAckMessage             int32 = 200051
	CodeChangeInvisibleTime    int32 = 200052
)

// Back-request codes the broker issues toward clients through the proxy.
const (
	CodeCheckTransactionState  int32 = 39
	CodeGetConsumerRunningInfo int32 = 307
	CodeConsumeMessageDirectly int32 = 309
)

// Response codes.
const (
	RespSuccess            int32 = 0
	RespSystemError        int32 = 1
	RespSystemBusy         int32 = 2
	RespFlushDiskTimeout   int32 = 10
	RespSlaveNotAvailable  int32 = 11
	RespFlushSlaveTimeout  int32 = 12
	RespTopicNotExist      int32 = 17
	RespPullNotFound       int32 = 19
	RespPollingTimeout     int32 = 208
	RespPollingFull        int32 = 209
	RespNoMessage          int32 = 210
)

// Command flag bits.
const (
	flagResponse int32 = 1 << 0
	flagOneway   int32 = 1 << 1
)

// protocol version advertised in every header.
const protocolVersion int32 = 401

var opaqueCounter atomic.Int32

// Command is the wire envelope exchanged with brokers. ExtFields carries the
// request- or response-specific header as flat string pairs.
type Command struct {
	Code      int32             `json:"code"`
	Language  string            `json:"language"`
	Version   int32             `json:"version"`
	Opaque    int32             `json:"opaque"`
	Flag      int32             `json:"flag"`
	Remark    string            `json:"remark,omitempty"`
	ExtFields map[string]string `json:"extFields,omitempty"`

	Body []byte `json:"-"`
}

// NewCommand builds a request command with a fresh opaque id.
func NewCommand(code int32, ext map[string]string) *Command {
	return &Command{
		Code:      code,
		Language:  "GO",
		Version:   protocolVersion,
		Opaque:    opaqueCounter.Add(1),
		ExtFields: ext,
	}
}

// NewResponse builds a response command mirroring the request's opaque id.
func NewResponse(code int32, opaque int32, remark string) *Command {
	return &Command{
		Code:     code,
		Language: "GO",
		Version:  protocolVersion,
		Opaque:   opaque,
		Flag:     flagResponse,
		Remark:   remark,
	}
}

// IsResponse reports whether the command is a reply rather than a request.
func (c *Command) IsResponse() bool {
	return c.Flag&flagResponse != 0
}

// IsOneway reports whether the sender expects no reply.
func (c *Command) IsOneway() bool {
	return c.Flag&flagOneway != 0
}

// MarkOneway flags the command as fire-and-forget.
func (c *Command) MarkOneway() {
	c.Flag |= flagOneway
}

// Ext returns the named ext field, or "" when absent.
func (c *Command) Ext(key string) string {
	if c.ExtFields == nil {
		return ""
	}
	return c.ExtFields[key]
}

// Frame layout:
//
//	4 bytes  total length (header length field + header + body)
//	4 bytes  serialize type (high byte) | header length (low 3 bytes)
//	N bytes  JSON header
//	M bytes  body
const (
	serializeJSON  byte = 0
	maxFrameLength      = 16 * 1024 * 1024
)

// Encode renders the command into a single frame.
func (c *Command) Encode() ([]byte, error) {
	header, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("remoting: encode header: %w", err)
	}
	if len(header) > 0xFFFFFF {
		return nil, fmt.Errorf("remoting: header too large: %d", len(header))
	}

	total := 4 + len(header) + len(c.Body)
	buf := make([]byte, 4+total)
	binary.BigEndian.PutUint32(buf[0:4], uint32(total))
	binary.BigEndian.PutUint32(buf[4:8], uint32(serializeJSON)<<24|uint32(len(header)))
	copy(buf[8:], header)
	copy(buf[8+len(header):], c.Body)
	return buf, nil
}

// Decode parses one frame payload (everything after the 4-byte total length).
func Decode(frame []byte) (*Command, error) {
	if len(frame) < 4 {
		return nil, fmt.Errorf("remoting: frame too short: %d", len(frame))
	}
	mark := binary.BigEndian.Uint32(frame[0:4])
	serial := byte(mark >> 24)
	headerLen := int(mark & 0xFFFFFF)
	if serial != serializeJSON {
		return nil, fmt.Errorf("remoting: unsupported header serialization %d", serial)
	}
	if 4+headerLen > len(frame) {
		return nil, fmt.Errorf("remoting: header length %d exceeds frame %d", headerLen, len(frame))
	}

	cmd := &Command{}
	if err := json.Unmarshal(frame[4:4+headerLen], cmd); err != nil {
		return nil, fmt.Errorf("remoting: decode header: %w", err)
	}
	if body := frame[4+headerLen:]; len(body) > 0 {
		cmd.Body = append([]byte(nil), body...)
	}
	return cmd, nil
}
