package kchan

// OverflowPolicy controls what a Tap does when its channel is full.
type OverflowPolicy uint8

const (
	// DropNewest drops the item that does not fit. It never blocks the
	// graph.
	DropNewest OverflowPolicy = iota

	// DropOldest drops one buffered item to make room for the newest one.
	DropOldest

	// Block blocks the graph until the consumer receives.
	Block
)

const defaultBufferSize = 64

// Option configures a Tap.
type Option func(*config)

type config struct {
	buffer int
	policy OverflowPolicy
}

// WithBuffer sets the channel buffer size.
func WithBuffer(n int) Option {
	return func(c *config) {
		c.buffer = n
	}
}

// WithOverflowPolicy sets the overflow policy.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// FeedOption configures Feed.
type FeedOption func(*feedConfig)

type feedConfig struct {
	endOnClose bool
}

// WithEndOnClose ends the target once the input channel is closed.
func WithEndOnClose() FeedOption {
	return func(c *feedConfig) {
		c.endOnClose = true
	}
}
