package apphandler

import (
	"context"
	"sync"
)

type result[T any] struct {
	value T
	err   error
}

// Reply is a one-shot answer path from the controller to one caller.
// The controller never blocks on it: the channel holds exactly one result.
// All methods are safe on a nil *Reply, which is how fire-and-forget
// commands are expressed.
type Reply[T any] struct {
	ch   chan result[T]
	once sync.Once
}

// NewReply creates an unanswered reply
func NewReply[T any]() *Reply[T] {
	return &Reply[T]{ch: make(chan result[T], 1)}
}

// Send delivers a value. Only the first Send, Fail or Close has an effect.
func (r *Reply[T]) Send(value T) {
	r.deliver(result[T]{value: value})
}

// Fail delivers an error
func (r *Reply[T]) Fail(err error) {
	r.deliver(result[T]{err: err})
}

// Close closes the reply without a value; the waiter observes ErrCancelled
func (r *Reply[T]) Close() {
	if r == nil {
		return
	}
	r.once.Do(func() { close(r.ch) })
}

func (r *Reply[T]) deliver(res result[T]) {
	if r == nil {
		return
	}
	r.once.Do(func() {
		r.ch <- res
		close(r.ch)
	})
}

// Wait blocks until the reply is answered, closed, or ctx is done.
// Giving up through ctx has no effect on the controller.
func (r *Reply[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	select {
	case res, ok := <-r.ch:
		if !ok {
			return zero, ErrCancelled
		}
		return res.value, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
