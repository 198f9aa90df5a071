// ABOUTME: Photo attachment with size-class URL resolution
// ABOUTME: Filled when the payload carries both album_id and date

package attachment

import (
	"context"
	"encoding/json"

	"github.com/harper/vkattach/internal/identity"
)

// Size classes, most preferred code first.
var (
	smallSizes  = []string{"m", "s"}
	mediumSizes = append([]string{"y", "r", "q", "p"}, smallSizes...)
	largeSizes  = append([]string{"w", "z"}, mediumSizes...)
)

// PhotoSize is one stored rendition of a photo.
type PhotoSize struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PhotoPayload is the photo object as returned by the API.
type PhotoPayload struct {
	ID        uint64 `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	AccessKey string `json:"access_key,omitempty"`

	AlbumID *int64      `json:"album_id,omitempty"`
	UserID  *int64      `json:"user_id,omitempty"`
	Text    *string     `json:"text,omitempty"`
	Date    *int64      `json:"date,omitempty"`
	Sizes   []PhotoSize `json:"sizes,omitempty"`
	Width   *int        `json:"width,omitempty"`
	Height  *int        `json:"height,omitempty"`

	// set by UnmarshalJSON when the key is present, even as null
	hasAlbumID bool
	hasDate    bool
}

// UnmarshalJSON records whether album_id and date were sent at all.
func (p *PhotoPayload) UnmarshalJSON(data []byte) error {
	type plain PhotoPayload
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, v.hasAlbumID = keys["album_id"]
	_, v.hasDate = keys["date"]
	*p = PhotoPayload(v)
	return nil
}

func (p *PhotoPayload) full() bool {
	return (p.AlbumID != nil || p.hasAlbumID) && (p.Date != nil || p.hasDate)
}

// Photo is a lazily filled photo reference.
type Photo struct {
	lazy[PhotoPayload]
}

// NewPhoto wraps a partial or full payload. api may be nil for payloads
// that never need filling.
func NewPhoto(payload PhotoPayload, api API) *Photo {
	p := &Photo{}
	p.init(KindPhoto, payload.OwnerID, payload.ID, payload.AccessKey)
	p.api = api
	p.payload = &payload
	p.filled = payload.full()
	return p
}

// LoadAttachmentPayload fetches the photo via photos.getById.
func (p *Photo) LoadAttachmentPayload(ctx context.Context) error {
	return p.fill(ctx, func(ctx context.Context) (*PhotoPayload, string, error) {
		photos, err := p.api.PhotosGetByID(ctx, PhotosGetByIDParams{
			Photos: identity.Composite(p.OwnerID(), p.ID(), p.AccessKey()),
		})
		if err != nil {
			return nil, "", err
		}
		photo, err := first(&p.Base, photos)
		if err != nil {
			return nil, "", err
		}
		return photo, photo.AccessKey, nil
	})
}

// Payload returns a copy of the current raw payload.
func (p *Photo) Payload() PhotoPayload {
	payload, _ := p.snapshot()
	return *payload
}

// UserID returns the ID of the user who uploaded the photo.
func (p *Photo) UserID() (int64, bool) {
	payload, _ := p.snapshot()
	return deref(payload.UserID)
}

// AlbumID returns the ID of the album.
func (p *Photo) AlbumID() (int64, bool) {
	payload, _ := p.snapshot()
	return deref(payload.AlbumID)
}

func (p *Photo) Text() (string, bool) {
	payload, _ := p.snapshot()
	return deref(payload.Text)
}

// CreatedAt returns the upload time as unix seconds.
func (p *Photo) CreatedAt() (int64, bool) {
	payload, _ := p.snapshot()
	return deref(payload.Date)
}

func (p *Photo) Height() (int, bool) {
	payload, _ := p.snapshot()
	return deref(payload.Height)
}

func (p *Photo) Width() (int, bool) {
	payload, _ := p.snapshot()
	return deref(payload.Width)
}

// Sizes returns every stored rendition.
func (p *Photo) Sizes() ([]PhotoSize, bool) {
	payload, _ := p.snapshot()
	if payload.Sizes == nil {
		return nil, false
	}
	return payload.Sizes, true
}

// SizesOf returns the stored renditions for codes, in the order of codes.
// Codes without a stored rendition are skipped.
func (p *Photo) SizesOf(codes ...string) []PhotoSize {
	sizes, _ := p.Sizes()
	if len(sizes) == 0 {
		return nil
	}

	var found []PhotoSize
	for _, code := range codes {
		for _, size := range sizes {
			if size.Type == code {
				found = append(found, size)
				break
			}
		}
	}
	return found
}

// SmallSizeURL returns the URL of a small photo (130 or 75).
func (p *Photo) SmallSizeURL() (string, bool) { return p.sizeURL(smallSizes) }

// MediumSizeURL returns the URL of a medium photo (807 or 604 or less).
func (p *Photo) MediumSizeURL() (string, bool) { return p.sizeURL(mediumSizes) }

// LargeSizeURL returns the URL of a large photo (2560 or 1280 or less).
func (p *Photo) LargeSizeURL() (string, bool) { return p.sizeURL(largeSizes) }

func (p *Photo) sizeURL(codes []string) (string, bool) {
	if !p.IsFilled() {
		return "", false
	}
	sizes := p.SizesOf(codes...)
	if len(sizes) == 0 {
		return "", false
	}
	return sizes[0].URL, true
}

// Serialize returns the derived photo view.
func (p *Photo) Serialize() Fields {
	return Fields{
		{Name: "userId", Value: opt(p.UserID())},
		{Name: "albumId", Value: opt(p.AlbumID())},
		{Name: "text", Value: opt(p.Text())},
		{Name: "createdAt", Value: opt(p.CreatedAt())},
		{Name: "height", Value: opt(p.Height())},
		{Name: "width", Value: opt(p.Width())},
		{Name: "smallSizeUrl", Value: opt(p.SmallSizeURL())},
		{Name: "mediumSizeUrl", Value: opt(p.MediumSizeURL())},
		{Name: "largeSizeUrl", Value: opt(p.LargeSizeURL())},
		{Name: "sizes", Value: opt(p.Sizes())},
	}
}

func (p *Photo) MarshalJSON() ([]byte, error) { return marshalAttachment(p) }

func deref[T any](v *T) (T, bool) {
	if v == nil {
		var zero T
		return zero, false
	}
	return *v, true
}
