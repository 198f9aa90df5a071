// ABOUTME: Closed set of attachment kinds
// ABOUTME: Kind strings match the API's attachment type names

package attachment

import "fmt"

// Kind identifies the remote object type behind an attachment.
type Kind string

const (
	KindPhoto    Kind = "photo"
	KindPoll     Kind = "poll"
	KindGraffiti Kind = "graffiti"
)

// Kinds returns every supported kind.
func Kinds() []Kind {
	return []Kind{KindPhoto, KindPoll, KindGraffiti}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// ParseKinds validates a list of kind names. Empty names are ignored.
func ParseKinds(names []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// matches reports whether k is one of kinds; an empty filter matches all.
func (k Kind) matches(kinds []Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
