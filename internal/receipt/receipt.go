// Package receipt encodes the opaque receipt handle attached to every popped
// message. The handle round-trips through the client untouched and is the
// only state that lets a stateless proxy target the exact broker and queue
// that own the message on ack, nack, and invisibility changes.
package receipt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedHandle reports a handle string that does not decode.
var ErrMalformedHandle = errors.New("receipt: malformed handle")

const fieldSeparator = " "

// Handle is the parsed form of a receipt handle.
type Handle struct {
	StartOffset   int64
	PopTime       int64
	InvisibleTime int64
	ReviveQueueID int32
	Topic         string
	BrokerName    string
	QueueID       int32

	// QueueOffset is present on handles minted per message; handles covering
	// a whole pop batch omit it.
	QueueOffset    int64
	HasQueueOffset bool
}

// Encode renders the handle in wire form.
func (h Handle) Encode() string {
	fields := []string{
		strconv.FormatInt(h.StartOffset, 10),
		strconv.FormatInt(h.PopTime, 10),
		strconv.FormatInt(h.InvisibleTime, 10),
		strconv.FormatInt(int64(h.ReviveQueueID), 10),
		h.Topic,
		h.BrokerName,
		strconv.FormatInt(int64(h.QueueID), 10),
	}
	if h.HasQueueOffset {
		fields = append(fields, strconv.FormatInt(h.QueueOffset, 10))
	}
	return strings.Join(fields, fieldSeparator)
}

// Decode parses a wire-form handle.
func Decode(s string) (Handle, error) {
	fields := strings.Split(s, fieldSeparator)
	if len(fields) != 7 && len(fields) != 8 {
		return Handle{}, fmt.Errorf("%w: %d fields", ErrMalformedHandle, len(fields))
	}

	var h Handle
	var err error
	if h.StartOffset, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return Handle{}, fmt.Errorf("%w: start offset: %v", ErrMalformedHandle, err)
	}
	if h.PopTime, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
		return Handle{}, fmt.Errorf("%w: pop time: %v", ErrMalformedHandle, err)
	}
	if h.InvisibleTime, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
		return Handle{}, fmt.Errorf("%w: invisible time: %v", ErrMalformedHandle, err)
	}
	reviveQid, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: revive queue: %v", ErrMalformedHandle, err)
	}
	h.ReviveQueueID = int32(reviveQid)
	h.Topic = fields[4]
	h.BrokerName = fields[5]
	if h.Topic == "" || h.BrokerName == "" {
		return Handle{}, fmt.Errorf("%w: empty topic or broker", ErrMalformedHandle)
	}
	queueID, err := strconv.ParseInt(fields[6], 10, 32)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: queue id: %v", ErrMalformedHandle, err)
	}
	h.QueueID = int32(queueID)

	if len(fields) == 8 {
		if h.QueueOffset, err = strconv.ParseInt(fields[7], 10, 64); err != nil {
			return Handle{}, fmt.Errorf("%w: queue offset: %v", ErrMalformedHandle, err)
		}
		h.HasQueueOffset = true
	}
	return h, nil
}

// QueueKey identifies a (topic, queueId) group inside a pop reply's offset
// bookkeeping headers.
type QueueKey struct {
	Topic   string
	QueueID int32
}

// The pop reply's startOffsetInfo/msgOffsetInfo/orderCountInfo headers use
// semicolon-separated records of space-separated fields:
//
//	startOffsetInfo: "topic queueId startOffset;..."
//	msgOffsetInfo:   "topic queueId offset1,offset2,...;..."
//	orderCountInfo:  "topic queueId count;..."

// ParseStartOffsetInfo parses the per-queue pop start offsets.
func ParseStartOffsetInfo(s string) (map[QueueKey]int64, error) {
	out := make(map[QueueKey]int64)
	err := parseQueueRecords(s, func(key QueueKey, value string) error {
		off, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		out[key] = off
		return nil
	})
	return out, err
}

// ParseMsgOffsetInfo parses the per-queue message offset lists, in pop order.
func ParseMsgOffsetInfo(s string) (map[QueueKey][]int64, error) {
	out := make(map[QueueKey][]int64)
	err := parseQueueRecords(s, func(key QueueKey, value string) error {
		for _, part := range strings.Split(value, ",") {
			off, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return err
			}
			out[key] = append(out[key], off)
		}
		return nil
	})
	return out, err
}

// ParseOrderCountInfo parses the per-queue FIFO delivery counts.
func ParseOrderCountInfo(s string) (map[QueueKey]int32, error) {
	out := make(map[QueueKey]int32)
	err := parseQueueRecords(s, func(key QueueKey, value string) error {
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return err
		}
		out[key] = int32(n)
		return nil
	})
	return out, err
}

func parseQueueRecords(s string, visit func(QueueKey, string) error) error {
	if s == "" {
		return nil
	}
	for _, record := range strings.Split(s, ";") {
		if record == "" {
			continue
		}
		fields := strings.Split(record, " ")
		if len(fields) != 3 {
			return fmt.Errorf("%w: queue record %q", ErrMalformedHandle, record)
		}
		queueID, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: queue record %q: %v", ErrMalformedHandle, record, err)
		}
		key := QueueKey{Topic: fields[0], QueueID: int32(queueID)}
		if err := visit(key, fields[2]); err != nil {
			return fmt.Errorf("%w: queue record %q: %v", ErrMalformedHandle, record, err)
		}
	}
	return nil
}
