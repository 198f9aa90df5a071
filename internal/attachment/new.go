// ABOUTME: Constructors from raw payloads and reference strings
// ABOUTME: Picks the variant by kind without touching the network

package attachment

import (
	"encoding/json"
	"fmt"

	"github.com/harper/vkattach/internal/identity"
)

// FromPayload builds the variant for kind from a raw payload object.
func FromPayload(kind Kind, raw json.RawMessage, api API) (Attachment, error) {
	switch kind {
	case KindPhoto:
		var p PhotoPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode photo payload: %w", err)
		}
		return NewPhoto(p, api), nil
	case KindPoll:
		var p PollPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode poll payload: %w", err)
		}
		return NewPoll(p, api), nil
	case KindGraffiti:
		var p GraffitiPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode graffiti payload: %w", err)
		}
		return NewGraffiti(p, api), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}

// FromReference builds a partial attachment from a string such as
// "photo-1_2_key".
func FromReference(ref string, api API) (Attachment, error) {
	r, err := identity.Parse(ref)
	if err != nil {
		return nil, err
	}
	kind, err := ParseKind(r.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindPhoto:
		return NewPhoto(PhotoPayload{ID: r.ID, OwnerID: r.OwnerID, AccessKey: r.AccessKey}, api), nil
	case KindPoll:
		return NewPoll(PollPayload{ID: r.ID, OwnerID: r.OwnerID, AccessKey: r.AccessKey}, api), nil
	default:
		return NewGraffiti(GraffitiPayload{ID: r.ID, OwnerID: r.OwnerID, AccessKey: r.AccessKey}, api), nil
	}
}
