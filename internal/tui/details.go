// ABOUTME: Details pane component
// ABOUTME: Shows the serialized fields of the selected attachment

package tui

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/harper/vkattach/internal/attachment"
)

// RenderDetails formats an attachment's fields one per line. Unknown values
// are shown as "?".
func RenderDetails(a attachment.Attachment) string {
	if a == nil {
		return lipgloss.NewStyle().Faint(true).Render("Select an attachment")
	}

	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	unknownStyle := lipgloss.NewStyle().Faint(true)

	var s string
	s += lipgloss.NewStyle().Bold(true).Render(a.String()) + "\n\n"

	state := "partial"
	if a.IsFilled() {
		state = "full"
	}
	s += keyStyle.Render("state") + ": " + state + "\n"

	for _, field := range a.Serialize() {
		value := unknownStyle.Render("?")
		if field.Value != nil {
			value = formatValue(field.Value)
		}
		s += keyStyle.Render(field.Name) + ": " + value + "\n"
	}
	return s
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	if len(data) > 120 {
		return string(data[:120]) + "..."
	}
	return string(data)
}
