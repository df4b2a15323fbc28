package ui

import "context"

// Channel is a UiChannel: a buffered event stream with one consumer and any
// number of producers. Each AgentExecutor holds its own Sender cloned from a
// parent Channel (per spec.md §4.6's "own UiChannel sender cloned from a
// parent"); all Senders funnel into the same underlying Go channel, so a
// single consumer drains every task's events.
type Channel struct {
	events chan Event
}

// NewChannel allocates a Channel with the given buffer depth. A depth of 0
// makes sends block until the consumer is actively draining, which is fine
// for tests but risks head-of-line blocking a producer goroutine in
// production; callers should size the buffer to their expected fan-out.
func NewChannel(buffer int) *Channel {
	return &Channel{events: make(chan Event, buffer)}
}

// Sender returns a handle producers use to emit events. Because Go channels
// are already safe for concurrent send, Sender is just the Channel itself
// under a narrower interface — "cloning" costs nothing and shares the same
// underlying queue.
func (c *Channel) Sender() Sender { return c }

// Events returns the receive-only stream for the single consumer to drain.
func (c *Channel) Events() <-chan Event { return c.events }

// Close signals no more events will be sent. Only the owner that created the
// Channel (never an individual Sender clone) should call this.
func (c *Channel) Close() { close(c.events) }

// Send delivers ev, blocking if the buffer is full, or returning early if
// ctx is done first — used at every suspension point so a cancelled task's
// executor doesn't wedge on a full channel.
func (c *Channel) Send(ctx context.Context, ev Event) error {
	select {
	case c.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sender is the producer-side view of a Channel: everything an
// AgentExecutor needs, nothing a consumer would misuse (no Close, no
// Events).
type Sender interface {
	Send(ctx context.Context, ev Event) error
}
