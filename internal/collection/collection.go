package collection

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"hub/internal/logs"
)

var (
	// ErrDetached is returned when a result arrives after Detach.
	ErrDetached = errors.New("collection detached")

	// ErrStale is returned by Reload when the query changed while the
	// request was in flight.
	ErrStale = errors.New("reload superseded by a newer query")
)

// Resource is the REST surface a collection needs.
type Resource[T any] interface {
	List(ctx context.Context, query url.Values) ([]T, error)
	Create(ctx context.Context, payload any) (T, error)
	Update(ctx context.Context, id int64, patch any) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Options tune how a collection reconciles after mutations.
type Options struct {
	// ReloadOnCreate refetches the whole list after a create so a
	// server-side sort is reapplied; otherwise the new item is appended.
	ReloadOnCreate bool

	// Query is sent with every List.
	Query url.Values

	// Name labels log lines.
	Name string
}

// Collection caches the last-fetched list of one domain and applies
// successful mutations to it. Cache writes always happen against the
// current list under the lock, after the request returns. A failed
// request leaves the cache untouched.
type Collection[T any] struct {
	res  Resource[T]
	id   func(T) int64
	opts Options

	mu       sync.Mutex
	items    []T
	query    url.Values
	queryGen uint64
	loaded   bool
	detached bool
}

// New returns an empty collection over res.
func New[T any](res Resource[T], id func(T) int64, opts Options) *Collection[T] {
	return &Collection[T]{
		res:   res,
		id:    id,
		opts:  opts,
		query: cloneQuery(opts.Query),
	}
}

func cloneQuery(q url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = slices.Clone(v)
	}
	return out
}

func (c *Collection[T]) log() *logrus.Entry {
	return logs.Logger.WithField("collection", c.opts.Name)
}

// Items returns a copy of the cached list.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Loaded reports whether a fetch has ever succeeded.
func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Len returns the number of cached items.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// SetQuery changes the list filter sent to the server. Reloads already in
// flight for the old query are discarded when they return.
func (c *Collection[T]) SetQuery(q url.Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = cloneQuery(q)
	c.queryGen++
}

// Query returns the current list filter.
func (c *Collection[T]) Query() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneQuery(c.query)
}

// Detach marks the collection's owner as gone. Results arriving later
// are dropped.
func (c *Collection[T]) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
}

// Reload replaces the cache with a fresh list.
func (c *Collection[T]) Reload(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	query := cloneQuery(c.query)
	gen := c.queryGen
	c.mu.Unlock()

	items, err := c.res.List(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return nil, ErrDetached
	}
	if gen != c.queryGen {
		return nil, ErrStale
	}
	c.items = items
	c.loaded = true
	return slices.Clone(items), nil
}

// Create posts payload and adds the stored item to the cache.
func (c *Collection[T]) Create(ctx context.Context, payload any) (T, error) {
	item, err := c.res.Create(ctx, payload)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return item, ErrDetached
	}
	c.items = append(slices.Clone(c.items), item)
	c.mu.Unlock()

	if c.opts.ReloadOnCreate {
		if _, err := c.Reload(ctx); err != nil && !errors.Is(err, ErrDetached) {
			c.log().WithError(err).Warn("Reload after create failed; keeping appended item")
		}
	}
	return item, nil
}

// Update patches one item and replaces it in place. Other items keep their
// identity and position. An id that is not cached leaves the cache as is.
func (c *Collection[T]) Update(ctx context.Context, id int64, patch any) (T, error) {
	item, err := c.res.Update(ctx, id, patch)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return item, ErrDetached
	}
	for i, existing := range c.items {
		if c.id(existing) == id {
			next := slices.Clone(c.items)
			next[i] = item
			c.items = next
			break
		}
	}
	return item, nil
}

// Delete removes one item on the server and from the cache.
func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	if err := c.res.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return ErrDetached
	}
	c.items = slices.DeleteFunc(slices.Clone(c.items), func(it T) bool {
		return c.id(it) == id
	})
	return nil
}

// Clear empties the cache, for example after a logout. Reloads already in
// flight are discarded.
func (c *Collection[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.loaded = false
	c.queryGen++
}

// Put adds or replaces items that were created elsewhere (for example by
// an analysis endpoint) without a request.
func (c *Collection[T]) Put(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return
	}
	next := slices.Clone(c.items)
	for _, item := range items {
		id := c.id(item)
		idx := slices.IndexFunc(next, func(it T) bool { return c.id(it) == id })
		if idx >= 0 {
			next[idx] = item
		} else {
			next = append(next, item)
		}
	}
	c.items = next
}
