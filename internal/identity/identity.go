// ABOUTME: Attachment reference strings such as photo-1_456239017_ab12cd
// ABOUTME: Handles {kind}{owner}_{id}[_{access_key}] parsing and formatting

package identity

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidReference is returned when a reference string cannot be parsed.
var ErrInvalidReference = errors.New("invalid attachment reference")

var referencePattern = regexp.MustCompile(`^([a-z_]+)(-?\d+)_(\d+)(?:_([A-Za-z0-9]+))?$`)

// Reference names a remote object by kind, owner and id.
type Reference struct {
	Kind      string
	OwnerID   int64
	ID        uint64
	AccessKey string
}

// String renders the reference in its canonical form.
func (r Reference) String() string {
	return Format(r.Kind, r.OwnerID, r.ID, r.AccessKey)
}

// Format renders kind, owner, id and optional access key as a reference.
func Format(kind string, ownerID int64, id uint64, accessKey string) string {
	return kind + Composite(ownerID, id, accessKey)
}

// Composite renders the "{owner}_{id}[_{key}]" form used by getById methods.
func Composite(ownerID int64, id uint64, accessKey string) string {
	s := strconv.FormatInt(ownerID, 10) + "_" + strconv.FormatUint(id, 10)
	if accessKey != "" {
		s += "_" + accessKey
	}
	return s
}

// Parse splits a reference string into its parts.
func Parse(ref string) (Reference, error) {
	m := referencePattern.FindStringSubmatch(ref)
	if m == nil {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}

	ownerID, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: owner id: %v", ErrInvalidReference, err)
	}
	id, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: id: %v", ErrInvalidReference, err)
	}

	return Reference{
		Kind:      m[1],
		OwnerID:   ownerID,
		ID:        id,
		AccessKey: m[4],
	}, nil
}
