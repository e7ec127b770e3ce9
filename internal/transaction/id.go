// Package transaction carries the transactional-producer support: the
// transaction id codec and the per-cluster producer-group heartbeat loop
// that keeps brokers able to resolve orphaned half messages.
package transaction

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedTransactionID reports an id string that does not decode.
var ErrMalformedTransactionID = errors.New("transaction: malformed transaction id")

// ID binds the proxy-visible transaction id to the broker-side coordinates
// needed to commit or roll back the half message.
type ID struct {
	ProxyTransactionID  string
	BrokerName          string
	BrokerTransactionID string
	CommitLogOffset     int64
	QueueOffset         int64
}

// NewID mints an ID for a fresh half message.
func NewID(brokerName, brokerTransactionID string, commitLogOffset, queueOffset int64) ID {
	return ID{
		ProxyTransactionID:  uuid.NewString(),
		BrokerName:          brokerName,
		BrokerTransactionID: brokerTransactionID,
		CommitLogOffset:     commitLogOffset,
		QueueOffset:         queueOffset,
	}
}

const idSeparator = "\x01"

// Encode renders the id as an opaque URL-safe token.
func (id ID) Encode() string {
	raw := strings.Join([]string{
		id.ProxyTransactionID,
		id.BrokerName,
		id.BrokerTransactionID,
		strconv.FormatInt(id.CommitLogOffset, 10),
		strconv.FormatInt(id.QueueOffset, 10),
	}, idSeparator)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeID parses a token produced by Encode.
func DecodeID(s string) (ID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrMalformedTransactionID, err)
	}
	fields := strings.Split(string(raw), idSeparator)
	if len(fields) != 5 {
		return ID{}, fmt.Errorf("%w: %d fields", ErrMalformedTransactionID, len(fields))
	}
	commitLogOffset, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("%w: commit log offset: %v", ErrMalformedTransactionID, err)
	}
	queueOffset, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("%w: queue offset: %v", ErrMalformedTransactionID, err)
	}
	if fields[1] == "" {
		return ID{}, fmt.Errorf("%w: empty broker name", ErrMalformedTransactionID)
	}
	return ID{
		ProxyTransactionID:  fields[0],
		BrokerName:          fields[1],
		BrokerTransactionID: fields[2],
		CommitLogOffset:     commitLogOffset,
		QueueOffset:         queueOffset,
	}, nil
}
