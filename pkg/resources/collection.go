package resources

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "loading"
	}
}

// FetchFunc loads the full contents of a collection.
type FetchFunc func(ctx context.Context) ([]*ConfigMap, error)

// Collection is the shared, asynchronously populated list of config maps for one
// system project. Items are handed out by pointer and must not be mutated once
// added; a change swaps a new record into the old one's slot with Replace.
type Collection struct {
	mu          sync.Mutex
	items       []*ConfigMap
	state       State
	err         error
	loaded      chan struct{}
	generation  int
	subscribers map[chan struct{}]struct{}
}

func NewCollection() *Collection {
	return &Collection{
		loaded:      make(chan struct{}),
		subscribers: map[chan struct{}]struct{}{},
	}
}

// NewLoadedCollection returns a collection that is already ready with items.
func NewLoadedCollection(items ...*ConfigMap) *Collection {
	c := NewCollection()
	c.items = append(c.items, items...)
	c.state = StateReady
	close(c.loaded)
	return c
}

// Load fetches the collection in the background. Calling Load again while a
// previous fetch is in flight supersedes it; only the latest result is kept.
func (c *Collection) Load(ctx context.Context, fetch FetchFunc) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.state != StateLoading {
		c.loaded = make(chan struct{})
	}
	c.state = StateLoading
	c.err = nil
	c.mu.Unlock()

	go func() {
		items, err := fetch(ctx)
		c.finishLoad(gen, items, err)
	}()
}

func (c *Collection) finishLoad(gen int, items []*ConfigMap, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		logrus.Debugf("[configmap-collection] discarding superseded load %d", gen)
		return
	}
	if err != nil {
		c.state = StateFailed
		c.err = err
		logrus.Debugf("[configmap-collection] load failed: %v", err)
	} else {
		c.state = StateReady
		c.items = items
	}
	close(c.loaded)
	c.mu.Unlock()
	c.notify()
}

// Wait blocks until the collection has loaded and returns a snapshot of its items.
func (c *Collection) Wait(ctx context.Context) ([]*ConfigMap, error) {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()

	select {
	case <-loaded:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateFailed {
		return nil, c.err
	}
	return c.snapshot(), nil
}

func (c *Collection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns the current items without waiting for a load to finish.
func (c *Collection) Items() []*ConfigMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Find returns the first item with the given id.
func (c *Collection) Find(id string) *ConfigMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Append adds an item to the end of the collection. There is no dedup check.
func (c *Collection) Append(item *ConfigMap) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()
	c.notify()
}

// Remove drops the given record (matched by pointer) and reports whether it was present.
func (c *Collection) Remove(item *ConfigMap) bool {
	c.mu.Lock()
	removed := false
	for i, existing := range c.items {
		if existing == item {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			removed = true
			break
		}
	}
	c.mu.Unlock()
	if removed {
		c.notify()
	}
	return removed
}

// Replace swaps next into the slot held by old (matched by pointer) and reports
// whether old was present.
func (c *Collection) Replace(old, next *ConfigMap) bool {
	c.mu.Lock()
	replaced := false
	for i, existing := range c.items {
		if existing == old {
			c.items[i] = next
			replaced = true
			break
		}
	}
	c.mu.Unlock()
	if replaced {
		c.notify()
	}
	return replaced
}

// Subscribe returns a channel that receives a signal after every change. Signals
// coalesce: a slow reader sees one pending signal, not one per change. The channel
// is closed once ctx is done.
func (c *Collection) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.subscribers, ch)
		close(ch)
		c.mu.Unlock()
	}()
	return ch
}

func (c *Collection) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (c *Collection) snapshot() []*ConfigMap {
	out := make([]*ConfigMap, len(c.items))
	copy(out, c.items)
	return out
}
