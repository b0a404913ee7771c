// Package chanlatest implements a thread-safe, bounded-to-one,
// latest-value rendezvous between exactly one producer and one consumer.
// Publishing overwrites any value the consumer has not yet collected;
// consumers block until a fresh value arrives or the channel is closed.
//
// The shape mirrors a single-slot mailbox guarded by a condition variable,
// the same kind of primitive manelmontilla/goracler's oracleWorker pool uses
// to hand a result back to its caller, specialized here to coalesce instead
// of collect.
package chanlatest

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned by GetTimeout when no value arrives and the channel
// is not closed before the deadline. It is distinct from a closed channel,
// per the single-slot channel's contract.
var ErrTimeout = errors.New("chanlatest: get timed out")

// Chan is a single-slot, latest-wins channel of T. The zero value is not
// usable; construct one with New.
type Chan[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	value    T
	hasValue bool
	closed   bool
}

// New returns a ready-to-use Chan.
func New[T any]() *Chan[T] {
	c := &Chan[T]{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Publish replaces any pending value with v and wakes a waiting consumer.
// Publish never blocks. Its boolean result reports whether the channel was
// still open at the moment of publishing; on a closed channel v is discarded
// and false is returned. A caller
// that wants to observe cancellation cooperatively (see package solver)
// should stop work when Publish returns false.
func (c *Chan[T]) Publish(v T) (open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	c.value = v
	c.hasValue = true
	c.cond.Signal()
	return true
}

// Close marks the channel closed and wakes every waiter. Close is
// idempotent: closing an already-closed channel is a no-op.
func (c *Chan[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (c *Chan[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Get blocks until a value is published or the channel is closed. It returns
// the value and true, or the zero value and false once the channel is closed
// and no value remains pending. If ctx is cancelled before either happens, it
// returns the zero value, false, and ctx.Err().
func (c *Chan[T]) Get(ctx context.Context) (T, bool, error) {
	var woken bool
	var stop func() bool
	if ctx != nil {
		stop = context.AfterFunc(ctx, func() {
			c.mu.Lock()
			woken = true
			c.cond.Broadcast()
			c.mu.Unlock()
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for !c.hasValue && !c.closed {
		if ctx != nil && ctx.Err() != nil {
			if stop != nil {
				stop()
			}
			var zero T
			return zero, false, ctx.Err()
		}
		c.cond.Wait()
		if woken && !c.hasValue && !c.closed {
			if stop != nil {
				stop()
			}
			var zero T
			return zero, false, ctx.Err()
		}
	}

	if stop != nil {
		stop()
	}
	return c.take()
}

// GetTimeout blocks until a value is published, the channel is closed, or
// timeout elapses, whichever happens first. A timeout returns ErrTimeout,
// which is distinct from channel closure (which returns ok=false, err=nil).
func (c *Chan[T]) GetTimeout(timeout time.Duration) (T, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	v, ok, err := c.Get(ctx)
	if err != nil {
		var zero T
		return zero, false, ErrTimeout
	}
	return v, ok, nil
}

// take assumes c.mu is held and removes any pending value, returning it.
func (c *Chan[T]) take() (T, bool, error) {
	if c.hasValue {
		v := c.value
		var zero T
		c.value = zero
		c.hasValue = false
		return v, true, nil
	}
	var zero T
	return zero, false, nil
}
