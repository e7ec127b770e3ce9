// Package nameserv queries the name-service directory for topic routes.
// Addresses are tried round-robin with failover; the proxy never registers
// with or manages the name service.
package nameserv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/route"
)

// Client resolves topic routes against a fixed name-server address list.
type Client struct {
	addrs   []string
	invoker remoting.Invoker
	timeout time.Duration

	cursor atomic.Uint32
}

// NewClient builds a name-service client. addrs must be non-empty.
func NewClient(addrs []string, invoker remoting.Invoker, timeout time.Duration) (*Client, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("nameserv: no addresses configured")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{addrs: addrs, invoker: invoker, timeout: timeout}, nil
}

// FetchTopicRoute implements route.Fetcher. Each call starts from the next
// address in the list; connection-level failures fail over to the remaining
// addresses before giving up.
func (c *Client) FetchTopicRoute(ctx context.Context, topic string) (*route.TopicRouteData, error) {
	header := remoting.GetRouteInfoRequestHeader{Topic: topic}
	start := c.cursor.Add(1)

	var lastErr error
	for i := 0; i < len(c.addrs); i++ {
		addr := c.addrs[(int(start)+i)%len(c.addrs)]
		cmd := remoting.NewCommand(remoting.CodeGetRouteInfoByTopic, header.ToExt())

		res := <-c.invoker.InvokeAsync(ctx, addr, cmd, c.timeout)
		if res.Err != nil {
			lastErr = res.Err
			continue
		}

		switch res.Cmd.Code {
		case remoting.RespSuccess:
			data := &route.TopicRouteData{}
			if err := json.Unmarshal(res.Cmd.Body, data); err != nil {
				return nil, fmt.Errorf("nameserv: decode route for %q: %w", topic, err)
			}
			return data, nil
		case remoting.RespTopicNotExist:
			return nil, fmt.Errorf("%w: %s", route.ErrTopicNotFound, res.Cmd.Remark)
		default:
			return nil, fmt.Errorf("nameserv: query route for %q failed: code=%d remark=%s",
				topic, res.Cmd.Code, res.Cmd.Remark)
		}
	}
	return nil, fmt.Errorf("nameserv: all addresses unreachable: %w", lastErr)
}
