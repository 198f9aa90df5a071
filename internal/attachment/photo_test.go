// ABOUTME: Tests for photo attachments
// ABOUTME: Covers fill heuristic, size resolution and concurrent loads

package attachment

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullPhoto() PhotoPayload {
	return PhotoPayload{
		ID:      2,
		OwnerID: 1,
		AlbumID: ptr(int64(-7)),
		UserID:  ptr(int64(100)),
		Text:    ptr("sunset"),
		Date:    ptr(int64(1700000000)),
		Width:   ptr(1280),
		Height:  ptr(720),
		Sizes: []PhotoSize{
			{Type: "s", URL: "S", Width: 75, Height: 42},
			{Type: "m", URL: "M", Width: 130, Height: 73},
			{Type: "w", URL: "W", Width: 2560, Height: 1440},
		},
	}
}

func TestPhotoFilledFromFullPayload(t *testing.T) {
	api := &fakeAPI{}
	p := NewPhoto(fullPhoto(), api)

	assert.True(t, p.IsFilled())
	require.NoError(t, p.LoadAttachmentPayload(context.Background()))
	assert.Equal(t, int32(0), api.calls.Load(), "full payload must not fetch")
}

func TestPhotoFilledNeedsAlbumAndDate(t *testing.T) {
	onlyAlbum := NewPhoto(PhotoPayload{ID: 1, OwnerID: 1, AlbumID: ptr(int64(3))}, nil)
	onlyDate := NewPhoto(PhotoPayload{ID: 1, OwnerID: 1, Date: ptr(int64(3))}, nil)

	assert.False(t, onlyAlbum.IsFilled())
	assert.False(t, onlyDate.IsFilled())
}

func TestPhotoNullFieldsCountAsPresent(t *testing.T) {
	for raw, want := range map[string]bool{
		`{"id":1,"owner_id":1,"album_id":null,"date":null}`: true,
		`{"id":1,"owner_id":1,"album_id":3,"date":null}`:    true,
		`{"id":1,"owner_id":1,"album_id":null}`:             false,
		`{"id":1,"owner_id":1}`:                             false,
	} {
		a, err := FromPayload(KindPhoto, json.RawMessage(raw), nil)
		require.NoError(t, err)
		assert.Equal(t, want, a.IsFilled(), raw)
	}
}

func TestPhotoSizeResolution(t *testing.T) {
	p := NewPhoto(fullPhoto(), nil)

	small, ok := p.SmallSizeURL()
	require.True(t, ok)
	assert.Equal(t, "M", small, "small prefers m over s")

	medium, ok := p.MediumSizeURL()
	require.True(t, ok)
	assert.Equal(t, "M", medium)

	large, ok := p.LargeSizeURL()
	require.True(t, ok)
	assert.Equal(t, "W", large)
}

func TestPhotoSizeResolutionWithoutMatches(t *testing.T) {
	payload := fullPhoto()
	payload.Sizes = nil
	p := NewPhoto(payload, nil)

	for name, get := range map[string]func() (string, bool){
		"small":  p.SmallSizeURL,
		"medium": p.MediumSizeURL,
		"large":  p.LargeSizeURL,
	} {
		url, ok := get()
		assert.False(t, ok, name)
		assert.Empty(t, url, name)
	}

	payload.Sizes = []PhotoSize{{Type: "o", URL: "O"}}
	p = NewPhoto(payload, nil)
	_, ok := p.LargeSizeURL()
	assert.False(t, ok, "unknown codes never match")
}

func TestPhotoSizesOfKeepsCodeOrder(t *testing.T) {
	p := NewPhoto(fullPhoto(), nil)

	sizes := p.SizesOf("w", "x", "s")
	require.Len(t, sizes, 2)
	assert.Equal(t, "W", sizes[0].URL)
	assert.Equal(t, "S", sizes[1].URL)
}

func TestPhotoPartialAccessorsUnknown(t *testing.T) {
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: 1, AccessKey: "k"}, &fakeAPI{})

	assert.False(t, p.IsFilled())
	_, ok := p.AlbumID()
	assert.False(t, ok)
	_, ok = p.CreatedAt()
	assert.False(t, ok)
	_, ok = p.SmallSizeURL()
	assert.False(t, ok)
	_, ok = p.Sizes()
	assert.False(t, ok)

	assert.Equal(t, "k", p.AccessKey(), "identity metadata is known while partial")
	assert.Equal(t, "photo1_2_k", p.String())
}

func TestPhotoLoadFillsOnce(t *testing.T) {
	full := fullPhoto()
	full.AccessKey = "fresh"
	api := &fakeAPI{photos: []PhotoPayload{full}}
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: 1, AccessKey: "old"}, api)

	require.NoError(t, p.LoadAttachmentPayload(context.Background()))
	require.NoError(t, p.LoadAttachmentPayload(context.Background()))

	assert.Equal(t, int32(1), api.calls.Load())
	assert.Equal(t, "1_2_old", api.photoArgs[0].Photos, "access key is forwarded")
	assert.False(t, api.photoArgs[0].Extended)
	assert.True(t, p.IsFilled())
	assert.Equal(t, "fresh", p.AccessKey())

	large, ok := p.LargeSizeURL()
	require.True(t, ok)
	assert.Equal(t, "W", large)
}

func TestPhotoLoadNotFound(t *testing.T) {
	api := &fakeAPI{}
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: -1}, api)

	err := p.LoadAttachmentPayload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "photo-1_2", nf.Ref)
	assert.False(t, p.IsFilled())
}

func TestPhotoLoadPropagatesTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	api := &fakeAPI{err: boom}
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: 1}, api)

	err := p.LoadAttachmentPayload(context.Background())
	assert.Same(t, boom, err)
	assert.False(t, p.IsFilled())

	api.err = nil
	api.photos = []PhotoPayload{fullPhoto()}
	require.NoError(t, p.LoadAttachmentPayload(context.Background()), "a failed fill can be retried")
	assert.True(t, p.IsFilled())
}

func TestPhotoLoadWithoutAPI(t *testing.T) {
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: 1}, nil)
	assert.ErrorIs(t, p.LoadAttachmentPayload(context.Background()), ErrNoAPI)
}

func TestPhotoConcurrentLoadSharesFetch(t *testing.T) {
	api := &fakeAPI{photos: []PhotoPayload{fullPhoto()}, release: make(chan struct{})}
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: 1}, api)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- p.LoadAttachmentPayload(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(api.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestPhotoLoadSurvivesCancelledCaller(t *testing.T) {
	api := &fakeAPI{photos: []PhotoPayload{fullPhoto()}, release: make(chan struct{})}
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: 1}, api)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() { errA <- p.LoadAttachmentPayload(ctxA) }()
	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)

	errB := make(chan error, 1)
	go func() { errB <- p.LoadAttachmentPayload(context.Background()) }()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(api.release)
	assert.NoError(t, <-errB)
	assert.True(t, p.IsFilled())
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestPhotoLoadCompletesAfterEveryCallerLeaves(t *testing.T) {
	api := &fakeAPI{photos: []PhotoPayload{fullPhoto()}, release: make(chan struct{})}
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: 1}, api)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- p.LoadAttachmentPayload(ctx) }()
	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)

	close(api.release)
	require.Eventually(t, p.IsFilled, time.Second, time.Millisecond)
	assert.NoError(t, p.LoadAttachmentPayload(context.Background()))
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestPhotoLoadWithCancelledContext(t *testing.T) {
	api := &fakeAPI{photos: []PhotoPayload{fullPhoto()}}
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: 1}, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.LoadAttachmentPayload(ctx), context.Canceled)
	assert.False(t, p.IsFilled())
	assert.Equal(t, int32(0), api.calls.Load())
}

func TestPhotoSerialize(t *testing.T) {
	p := NewPhoto(fullPhoto(), nil)
	fields := p.Serialize()

	assert.Equal(t, []string{
		"userId", "albumId", "text", "createdAt", "height", "width",
		"smallSizeUrl", "mediumSizeUrl", "largeSizeUrl", "sizes",
	}, fields.Keys())

	v, ok := fields.Get("largeSizeUrl")
	require.True(t, ok)
	assert.Equal(t, "W", v)
}

func TestPhotoMarshalJSON(t *testing.T) {
	p := NewPhoto(PhotoPayload{ID: 2, OwnerID: 1}, nil)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "photo", "ownerId": 1, "id": 2, "accessKey": null, "filled": false,
		"userId": null, "albumId": null, "text": null, "createdAt": null,
		"height": null, "width": null, "smallSizeUrl": null,
		"mediumSizeUrl": null, "largeSizeUrl": null, "sizes": null
	}`, string(data))
}
