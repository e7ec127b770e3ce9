package consumer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oriys/quasar/internal/remoting"
)

// Subscription expression types.
const (
	ExpressionTypeTag   = "TAG"
	ExpressionTypeSQL92 = "SQL92"
)

// ErrBadExpression reports a subscription filter the proxy cannot evaluate.
var ErrBadExpression = errors.New("consumer: bad subscription expression")

// SubscriptionAll matches every message.
const SubscriptionAll = "*"

// TagFilter evaluates a TAG-type subscription expression: "*" matches all,
// otherwise a "||"-separated tag set.
type TagFilter struct {
	matchAll bool
	tags     map[string]struct{}
}

// NewTagFilter parses and validates a subscription expression. SQL92
// filtering happens broker-side; the proxy only validates it is non-empty
// and skips local evaluation.
func NewTagFilter(expressionType, expression string) (*TagFilter, error) {
	switch expressionType {
	case ExpressionTypeTag, "":
	case ExpressionTypeSQL92:
		if strings.TrimSpace(expression) == "" {
			return nil, fmt.Errorf("%w: empty SQL92 expression", ErrBadExpression)
		}
		return &TagFilter{matchAll: true}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrBadExpression, expressionType)
	}

	expression = strings.TrimSpace(expression)
	if expression == "" || expression == SubscriptionAll {
		return &TagFilter{matchAll: true}, nil
	}

	tags := make(map[string]struct{})
	for _, tag := range strings.Split(expression, "||") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil, fmt.Errorf("%w: empty tag in %q", ErrBadExpression, expression)
		}
		tags[tag] = struct{}{}
	}
	return &TagFilter{tags: tags}, nil
}

// Match reports whether the message's tag passes the filter.
func (f *TagFilter) Match(msg *remoting.MessageExt) bool {
	if f.matchAll {
		return true
	}
	tag := msg.Property(remoting.PropertyTags)
	if tag == "" {
		return false
	}
	_, ok := f.tags[tag]
	return ok
}
