// ABOUTME: Attachment interface, shared identity and fill state
// ABOUTME: Every kind embeds Base and is filled lazily through the API

package attachment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/harper/vkattach/internal/identity"
)

var (
	// ErrNotFound is matched by errors returned when a fetch yields no record.
	ErrNotFound = errors.New("attachment not found")

	// ErrNoAPI is returned when a partial attachment has no API to fill from.
	ErrNoAPI = errors.New("attachment has no api to load payload")

	// ErrUnsupportedKind is returned for attachment types outside Kinds().
	ErrUnsupportedKind = errors.New("unsupported attachment kind")
)

// NotFoundError reports an empty fetch result for a reference.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s: %s", ErrNotFound, e.Ref) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Attachment is a typed reference to a remote object.
type Attachment interface {
	Kind() Kind
	OwnerID() int64
	ID() uint64
	AccessKey() string
	IsFilled() bool

	// LoadAttachmentPayload fetches the full payload unless already filled.
	LoadAttachmentPayload(ctx context.Context) error

	// Serialize returns the derived public view of the attachment.
	Serialize() Fields

	String() string
}

// Base holds the identity and fill state shared by all kinds.
type Base struct {
	kind    Kind
	ownerID int64
	id      uint64

	mu        sync.RWMutex
	accessKey string
	filled    bool
}

func (b *Base) init(kind Kind, ownerID int64, id uint64, accessKey string) {
	b.kind = kind
	b.ownerID = ownerID
	b.id = id
	b.accessKey = accessKey
}

func (b *Base) Kind() Kind { return b.kind }

// OwnerID is negative for communities.
func (b *Base) OwnerID() int64 { return b.ownerID }

func (b *Base) ID() uint64 { return b.id }

// AccessKey returns "" when the object needs no key.
func (b *Base) AccessKey() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.accessKey
}

// IsFilled reports whether the full payload is present.
func (b *Base) IsFilled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filled
}

// String renders the attachment reference, e.g. photo-1_2_key.
func (b *Base) String() string {
	return identity.Format(string(b.kind), b.ownerID, b.id, b.AccessKey())
}

func (b *Base) notFound() error {
	return &NotFoundError{Ref: b.String()}
}

// Equal reports whether a and b name the same remote object.
func Equal(a, b Attachment) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind() == b.Kind() && a.OwnerID() == b.OwnerID() && a.ID() == b.ID()
}
