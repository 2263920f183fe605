package orchestrator

import (
	"github.com/funcall-ai/funcall/pkg/llms"
	"github.com/funcall-ai/funcall/store"
	"github.com/funcall-ai/funcall/tools"
)

// DefaultMaxToolRounds bounds the number of tool-calling rounds in one turn.
const DefaultMaxToolRounds = 10

type config struct {
	maxToolRounds int
	store         store.MessageStore
	callback      tools.Callback
	callOptions   []llms.CallOption
}

// Option configures an Orchestrator.
type Option func(*config)

// WithMaxToolRounds overrides the tool-calling round limit for a single turn.
func WithMaxToolRounds(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxToolRounds = n
		}
	}
}

// WithMessageStore persists each turn's messages after a successful cycle,
// keyed by the chat ID carried in the context.
func WithMessageStore(s store.MessageStore) Option {
	return func(c *config) {
		c.store = s
	}
}

// WithCallback observes tool execution.
func WithCallback(cb tools.Callback) Option {
	return func(c *config) {
		c.callback = cb
	}
}

// WithCallOptions adds call options to every generate call, such as
// temperature or max tokens.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(c *config) {
		c.callOptions = append(c.callOptions, opts...)
	}
}
