// ABOUTME: Graffiti attachment, a hand-drawn image stored as a document
// ABOUTME: Filled when the payload carries a direct url

package attachment

import (
	"context"

	"github.com/harper/vkattach/internal/identity"
)

// GraffitiPayload is the graffiti document as returned by the API.
type GraffitiPayload struct {
	ID        uint64 `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	AccessKey string `json:"access_key,omitempty"`

	Height *int    `json:"height,omitempty"`
	Width  *int    `json:"width,omitempty"`
	URL    *string `json:"url,omitempty"`
}

// Graffiti is a lazily filled graffiti reference.
type Graffiti struct {
	lazy[GraffitiPayload]
}

// NewGraffiti wraps a partial or full payload.
func NewGraffiti(payload GraffitiPayload, api API) *Graffiti {
	g := &Graffiti{}
	g.init(KindGraffiti, payload.OwnerID, payload.ID, payload.AccessKey)
	g.api = api
	g.payload = &payload
	g.filled = payload.URL != nil
	return g
}

// LoadAttachmentPayload fetches the document via docs.getById.
func (g *Graffiti) LoadAttachmentPayload(ctx context.Context) error {
	return g.fill(ctx, func(ctx context.Context) (*GraffitiPayload, string, error) {
		docs, err := g.api.DocsGetByID(ctx, DocsGetByIDParams{
			Docs: identity.Composite(g.OwnerID(), g.ID(), g.AccessKey()),
		})
		if err != nil {
			return nil, "", err
		}
		doc, err := first(&g.Base, docs)
		if err != nil {
			return nil, "", err
		}
		return doc, doc.AccessKey, nil
	})
}

// Payload returns a copy of the current raw payload.
func (g *Graffiti) Payload() GraffitiPayload {
	payload, _ := g.snapshot()
	return *payload
}

func (g *Graffiti) Height() (int, bool) {
	payload, _ := g.snapshot()
	return deref(payload.Height)
}

func (g *Graffiti) Width() (int, bool) {
	payload, _ := g.snapshot()
	return deref(payload.Width)
}

// URL returns the direct link to the image.
func (g *Graffiti) URL() (string, bool) {
	payload, _ := g.snapshot()
	return deref(payload.URL)
}

// Serialize returns the derived graffiti view.
func (g *Graffiti) Serialize() Fields {
	return Fields{
		{Name: "height", Value: opt(g.Height())},
		{Name: "width", Value: opt(g.Width())},
		{Name: "url", Value: opt(g.URL())},
	}
}

func (g *Graffiti) MarshalJSON() ([]byte, error) { return marshalAttachment(g) }
