// ABOUTME: Generic lazy payload holder used by every attachment kind
// ABOUTME: Shares in-flight fetches and swaps the payload atomically

package attachment

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// lazy pairs identity with a kind-specific payload that is replaced exactly
// once, when a fetch succeeds.
type lazy[P any] struct {
	Base

	api     API
	payload *P
	loads   singleflight.Group
}

// snapshot returns the current payload and fill flag as one consistent view.
func (l *lazy[P]) snapshot() (*P, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.payload, l.filled
}

// fill runs fetch unless the payload is already full. Concurrent callers
// wait on the same fetch, which is not cancelled when one of them gives up.
// A failed fetch leaves the state untouched so the next call tries again.
func (l *lazy[P]) fill(ctx context.Context, fetch func(ctx context.Context) (*P, string, error)) error {
	if l.IsFilled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	shared := context.WithoutCancel(ctx)
	ch := l.loads.DoChan("payload", func() (any, error) {
		if l.IsFilled() {
			return nil, nil
		}
		if l.api == nil {
			return nil, ErrNoAPI
		}

		payload, accessKey, err := fetch(shared)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.payload = payload
		if accessKey != "" {
			l.accessKey = accessKey
		}
		l.filled = true
		l.mu.Unlock()
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// first returns the first record or a not-found error for the attachment.
func first[T any](b *Base, items []T) (*T, error) {
	if len(items) == 0 {
		return nil, b.notFound()
	}
	item := items[0]
	return &item, nil
}
