// ABOUTME: Fetch collaborator consumed by lazy fills
// ABOUTME: One getById method per namespace, each returning zero or more records

package attachment

import "context"

// PhotosGetByIDParams mirrors photos.getById.
type PhotosGetByIDParams struct {
	// Photos is "{owner_id}_{id}[_{access_key}]".
	Photos   string
	Extended bool
}

// DocsGetByIDParams mirrors docs.getById.
type DocsGetByIDParams struct {
	// Docs is "{owner_id}_{id}[_{access_key}]".
	Docs string
}

// PollsGetByIDParams mirrors polls.getById.
type PollsGetByIDParams struct {
	PollID    uint64
	OwnerID   int64
	AccessKey string
}

// API fetches full payloads. Transport, retries and rate limiting belong to
// the implementation; errors are passed through to LoadAttachmentPayload
// callers unchanged.
type API interface {
	PhotosGetByID(ctx context.Context, params PhotosGetByIDParams) ([]PhotoPayload, error)
	DocsGetByID(ctx context.Context, params DocsGetByIDParams) ([]GraffitiPayload, error)
	PollsGetByID(ctx context.Context, params PollsGetByIDParams) ([]PollPayload, error)
}
