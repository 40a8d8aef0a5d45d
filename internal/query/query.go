// Package query implements a keyed, fetch-once cache with explicit invalidation.
//
// Each key moves through absent -> pending -> resolved|failed. Resolved and failed
// entries are served without calling the fetch function again until the key is
// invalidated. Concurrent callers of a pending key share one in-flight call, which is
// bound to the context of the caller that started it. If that context is cancelled the
// entry goes back to absent.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusAbsent Status = iota
	StatusPending
	StatusResolved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	case StatusFailed:
		return "failed"
	default:
		return "absent"
	}
}

// Snapshot is a point-in-time view of a cache entry.
type Snapshot[T any] struct {
	Status    Status
	Data      T
	Err       error
	UpdatedAt time.Time
}

// Store persists resolved values between runs.
type Store[T any] interface {
	Load(key string) (T, time.Time, error)
	Save(key string, data T) error
}

// FetchFunc produces the value for a key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type Options[T any] struct {
	Retries    int           // extra attempts after the first failure
	RetryDelay time.Duration // initial backoff delay, doubled per attempt
	Store      Store[T]      // optional
	StaleTime  time.Duration // stored values younger than this skip the fetch; 0 never reads the store
}

type entry[T any] struct {
	gen  uint64
	snap Snapshot[T]
}

type Client[T any] struct {
	opts    Options[T]
	group   singleflight.Group
	mu      sync.Mutex
	seq     uint64
	entries map[string]*entry[T]
}

func New[T any](opts Options[T]) *Client[T] {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Client[T]{opts: opts, entries: make(map[string]*entry[T])}
}

// Fetch returns the value for key, calling fn only when the key is absent.
func (c *Client[T]) Fetch(ctx context.Context, key string, fn FetchFunc[T]) (T, error) {
	var zero T

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		switch e.snap.Status {
		case StatusResolved:
			data := e.snap.Data
			c.mu.Unlock()
			return data, nil
		case StatusFailed:
			err := e.snap.Err
			c.mu.Unlock()
			return zero, err
		}
	} else {
		c.seq++
		e = &entry[T]{gen: c.seq, snap: Snapshot[T]{Status: StatusPending}}
		c.entries[key] = e
	}
	gen := e.gen
	c.mu.Unlock()

	ch := c.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		return c.run(ctx, key, gen, fn)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Client[T]) run(ctx context.Context, key string, gen uint64, fn FetchFunc[T]) (any, error) {
	if data, at, ok := c.loadStored(key); ok {
		lgr.Printf("[DEBUG] query %s resolved from store, saved %s", key, at.Format(time.RFC3339))
		c.settle(key, gen, Snapshot[T]{Status: StatusResolved, Data: data, UpdatedAt: at})
		return data, nil
	}

	var data T
	retrier := repeater.NewBackoff(c.opts.Retries+1, c.opts.RetryDelay, repeater.WithMaxDelay(30*time.Second))
	attempt := 0
	err := retrier.Do(ctx, func() error {
		attempt++
		d, err := fn(ctx)
		if err != nil {
			lgr.Printf("[DEBUG] query %s attempt %d failed: %v", key, attempt, err)
			return err
		}
		data = d
		return nil
	}, context.Canceled)

	if err != nil {
		if ctx.Err() != nil {
			// caller went away, leave nothing behind
			c.drop(key, gen)
			return nil, err
		}
		lgr.Printf("[WARN] query %s failed after %d attempt(s): %v", key, attempt, err)
		c.settle(key, gen, Snapshot[T]{Status: StatusFailed, Err: err, UpdatedAt: time.Now()})
		return nil, err
	}

	if c.opts.Store != nil {
		if err := c.opts.Store.Save(key, data); err != nil {
			lgr.Printf("[WARN] query %s: saving to store: %v", key, err)
		}
	}
	c.settle(key, gen, Snapshot[T]{Status: StatusResolved, Data: data, UpdatedAt: time.Now()})
	return data, nil
}

func (c *Client[T]) loadStored(key string) (T, time.Time, bool) {
	var zero T
	if c.opts.Store == nil || c.opts.StaleTime <= 0 {
		return zero, time.Time{}, false
	}
	data, at, err := c.opts.Store.Load(key)
	if err != nil {
		lgr.Printf("[DEBUG] query %s: no stored value: %v", key, err)
		return zero, time.Time{}, false
	}
	if time.Since(at) >= c.opts.StaleTime {
		return zero, time.Time{}, false
	}
	return data, at, true
}

// settle records the outcome unless the entry was invalidated meanwhile.
func (c *Client[T]) settle(key string, gen uint64, snap Snapshot[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.gen == gen {
		e.snap = snap
	}
}

func (c *Client[T]) drop(key string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.gen == gen {
		delete(c.entries, key)
	}
}

// Peek returns the current state of key without triggering a fetch.
func (c *Client[T]) Peek(key string) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Snapshot[T]{Status: StatusAbsent}
	}
	return e.snap
}

// Invalidate drops key so the next Fetch calls the fetch function again.
// An in-flight call for the old entry finishes but its result is discarded.
func (c *Client[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
