package service

import (
	"context"
	"errors"

	"github.com/oriys/quasar/internal/consumer"
	"github.com/oriys/quasar/internal/endpoint"
	"github.com/oriys/quasar/internal/forwarder"
	"github.com/oriys/quasar/internal/receipt"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/route"
	"github.com/oriys/quasar/internal/selector"
	"github.com/oriys/quasar/internal/transaction"
)

// Kind classifies an engine error for translation to a response status.
// The per-version activities map kinds onto their own status codes; engines
// never see RPC status types.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindNotFound
	KindForbidden
	KindThrottled
	KindUnavailable
	KindBrokerReply
	KindUnimplemented
)

// ErrNotSupportedInLocalMode marks operations the local deployment does not
// serve.
var ErrNotSupportedInLocalMode = errors.New("service: not supported in local mode")

// Classify maps an engine error to its status kind. Any other broker reply
// error (*remoting.ReplyError) classifies as KindBrokerReply; the activities
// report it as an internal status whose message carries the broker's code.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, route.ErrTopicNotFound):
		return KindNotFound
	case errors.Is(err, selector.ErrNoWritableQueue),
		errors.Is(err, selector.ErrNoReadableQueue):
		return KindForbidden
	case errors.Is(err, consumer.ErrPollingFull):
		return KindThrottled
	case errors.Is(err, consumer.ErrBadExpression),
		errors.Is(err, receipt.ErrMalformedHandle),
		errors.Is(err, transaction.ErrMalformedTransactionID),
		errors.Is(err, endpoint.ErrInvalidAddress),
		errors.Is(err, endpoint.ErrMissingEndpoints):
		return KindInvalidArgument
	case errors.Is(err, remoting.ErrConnDead),
		errors.Is(err, remoting.ErrTimeout),
		errors.Is(err, remoting.ErrClientShutdown),
		errors.Is(err, forwarder.ErrBrokerUnavailable),
		errors.Is(err, forwarder.ErrPoolShutdown),
		errors.Is(err, context.DeadlineExceeded):
		return KindUnavailable
	case errors.Is(err, ErrNotSupportedInLocalMode):
		return KindUnimplemented
	default:
		var reply *remoting.ReplyError
		if errors.As(err, &reply) {
			return KindBrokerReply
		}
		return KindInternal
	}
}
