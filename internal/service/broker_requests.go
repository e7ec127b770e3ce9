package service

import (
	"strconv"

	"github.com/oriys/quasar/internal/logging"
	"github.com/oriys/quasar/internal/metrics"
	"github.com/oriys/quasar/internal/remoting"
)

// HandleBrokerRequest is the back-request handler installed on every forward
// connection. Broker-originated commands are relayed to one client of the
// target group; for request/response commands the client's answer (or the
// sweeper's synthetic SYSTEM_BUSY) becomes the reply to the broker.
func (p *Proxy) HandleBrokerRequest(addr string, cmd *remoting.Command) *remoting.Command {
	metrics.RecordRelayDispatch(strconv.FormatInt(int64(cmd.Code), 10))

	switch cmd.Code {
	case remoting.CodeCheckTransactionState:
		// One-way from the broker; the client answers later through
		// EndTransaction with the server-check source.
		group := cmd.Ext("producerGroup")
		if group == "" {
			logging.Op().Warn("transaction check without producer group", "addr", addr)
			return nil
		}
		if _, err := p.relays.Dispatch(group, cmd); err != nil {
			logging.Op().Warn("transaction check not relayed", "group", group, "error", err)
		}
		return nil

	case remoting.CodeGetConsumerRunningInfo:
		header := remoting.ParseGetConsumerRunningInfoRequestHeader(cmd.ExtFields)
		return p.relayAndAwait(header.ConsumerGroup, cmd)

	case remoting.CodeConsumeMessageDirectly:
		header := remoting.ParseConsumeMessageDirectlyRequestHeader(cmd.ExtFields)
		return p.relayAndAwait(header.ConsumerGroup, cmd)

	default:
		logging.Op().Warn("unexpected broker-originated request", "code", cmd.Code, "addr", addr)
		return remoting.NewResponse(remoting.RespSystemError, cmd.Opaque, "request code not supported")
	}
}

func (p *Proxy) relayAndAwait(group string, cmd *remoting.Command) *remoting.Command {
	if group == "" {
		return remoting.NewResponse(remoting.RespSystemError, cmd.Opaque, "missing consumer group")
	}
	resultCh, err := p.relays.Dispatch(group, cmd)
	if err != nil {
		return remoting.NewResponse(remoting.RespSystemBusy, cmd.Opaque, err.Error())
	}

	res := <-resultCh
	if res.Err != nil {
		metrics.RecordRelayExpired()
		return remoting.NewResponse(remoting.RespSystemBusy, cmd.Opaque, res.Err.Error())
	}
	reply := res.Cmd
	reply.Opaque = cmd.Opaque
	return reply
}
