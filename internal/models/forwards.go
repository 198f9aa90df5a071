// ABOUTME: Ordered collection of forwards with a memoized flat view
// ABOUTME: Answers attachment queries across the whole forward tree

package models

import (
	"slices"
	"sync"

	"github.com/harper/vkattach/internal/attachment"
)

// ForwardsCollection holds top-level forwards. All methods accept a nil
// receiver, which behaves as an empty collection.
type ForwardsCollection struct {
	mu    sync.Mutex
	items []*Forward
	flat  []*Forward
}

// NewForwardsCollection creates a collection from top-level forwards.
func NewForwardsCollection(items ...*Forward) *ForwardsCollection {
	return &ForwardsCollection{items: items}
}

// Len returns the number of top-level forwards.
func (c *ForwardsCollection) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Items returns the top-level forwards.
func (c *ForwardsCollection) Items() []*Forward {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Forward(nil), c.items...)
}

// Append adds top-level forwards and drops the cached flat view.
func (c *ForwardsCollection) Append(items ...*Forward) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, items...)
	c.flat = nil
}

// Flatten returns every forward in pre-order: each forward followed by its
// own flattened forwards. The order is computed once and cached until the
// next Append. Forwards appended to a nested collection after the first
// call are not seen. The returned slice belongs to the caller.
func (c *ForwardsCollection) Flatten() []*Forward {
	return slices.Clone(c.cached())
}

// cached returns the shared flat view. Callers must not modify it.
func (c *ForwardsCollection) cached() []*Forward {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flat == nil {
		c.flat = flatten(c.items)
	}
	return c.flat
}

func flatten(items []*Forward) []*Forward {
	flat := make([]*Forward, 0, len(items))
	for _, f := range items {
		flat = append(flat, f)
		flat = append(flat, f.Forwards.cached()...)
	}
	return flat
}

// HasAttachments reports whether any forward in the tree carries a
// matching attachment.
func (c *ForwardsCollection) HasAttachments(kinds ...attachment.Kind) bool {
	return attachment.AnyHas(c.cached(), kinds...)
}

// GetAttachments returns matching attachments in flattened order.
func (c *ForwardsCollection) GetAttachments(kinds ...attachment.Kind) []attachment.Attachment {
	return attachment.Collect(c.cached(), kinds...)
}
