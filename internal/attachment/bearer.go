// ABOUTME: Attachment querying shared by every attachment-bearing container
// ABOUTME: Aggregates over any ordered sequence of bearers

package attachment

// Bearer is anything that carries attachments. With no kinds every kind
// matches; with several, any of them does.
type Bearer interface {
	HasAttachments(kinds ...Kind) bool
	GetAttachments(kinds ...Kind) []Attachment
}

// List is the ordered attachments of a single node.
type List []Attachment

func (l List) HasAttachments(kinds ...Kind) bool {
	for _, a := range l {
		if a.Kind().matches(kinds) {
			return true
		}
	}
	return false
}

func (l List) GetAttachments(kinds ...Kind) []Attachment {
	var out []Attachment
	for _, a := range l {
		if a.Kind().matches(kinds) {
			out = append(out, a)
		}
	}
	return out
}

// AnyHas reports whether any node carries a matching attachment.
func AnyHas[B Bearer](nodes []B, kinds ...Kind) bool {
	for _, node := range nodes {
		if node.HasAttachments(kinds...) {
			return true
		}
	}
	return false
}

// Collect concatenates each node's matching attachments in node order,
// keeping every node's own attachment order.
func Collect[B Bearer](nodes []B, kinds ...Kind) []Attachment {
	var out []Attachment
	for _, node := range nodes {
		out = append(out, node.GetAttachments(kinds...)...)
	}
	return out
}

// OfType narrows attachments to one concrete kind, e.g. OfType[*Photo].
func OfType[T Attachment](items []Attachment) []T {
	var out []T
	for _, a := range items {
		if t, ok := a.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
