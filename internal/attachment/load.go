// ABOUTME: Bounded concurrent filling of many attachments
// ABOUTME: Each attachment still fills independently

package attachment

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// LoadAll fills every partial attachment with at most limit fetches in
// flight. limit <= 0 means no bound. The first error is returned after all
// started fetches finish.
func LoadAll(ctx context.Context, items []Attachment, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, a := range items {
		if a.IsFilled() {
			continue
		}
		g.Go(func() error {
			return a.LoadAttachmentPayload(ctx)
		})
	}
	return g.Wait()
}
