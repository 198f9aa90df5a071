// ABOUTME: In-memory fetch collaborator for attachment tests
// ABOUTME: Counts calls and can block fetches to exercise concurrency

package attachment

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeAPI struct {
	photos []PhotoPayload
	docs   []GraffitiPayload
	polls  []PollPayload
	err    error

	// release, when set, blocks every fetch until closed.
	release chan struct{}

	calls atomic.Int32

	mu        sync.Mutex
	photoArgs []PhotosGetByIDParams
	docArgs   []DocsGetByIDParams
	pollArgs  []PollsGetByIDParams
}

func (f *fakeAPI) wait(ctx context.Context) error {
	f.calls.Add(1)
	if f.release == nil {
		return f.err
	}
	select {
	case <-f.release:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) PhotosGetByID(ctx context.Context, params PhotosGetByIDParams) ([]PhotoPayload, error) {
	f.mu.Lock()
	f.photoArgs = append(f.photoArgs, params)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.photos, nil
}

func (f *fakeAPI) DocsGetByID(ctx context.Context, params DocsGetByIDParams) ([]GraffitiPayload, error) {
	f.mu.Lock()
	f.docArgs = append(f.docArgs, params)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.docs, nil
}

func (f *fakeAPI) PollsGetByID(ctx context.Context, params PollsGetByIDParams) ([]PollPayload, error) {
	f.mu.Lock()
	f.pollArgs = append(f.pollArgs, params)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.polls, nil
}

func ptr[T any](v T) *T { return &v }
