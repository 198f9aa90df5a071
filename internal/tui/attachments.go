// ABOUTME: Attachments pane component
// ABOUTME: Lists the selected node's attachments with their fill state

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/harper/vkattach/internal/attachment"
)

type AttachmentsModel struct {
	items  []attachment.Attachment
	cursor int
}

func (m *AttachmentsModel) SetAttachments(items []attachment.Attachment) {
	m.items = items
	m.cursor = 0
}

func (m *AttachmentsModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *AttachmentsModel) MoveDown() {
	if m.cursor < len(m.items)-1 {
		m.cursor++
	}
}

func (m *AttachmentsModel) Selected() attachment.Attachment {
	if m.cursor >= 0 && m.cursor < len(m.items) {
		return m.items[m.cursor]
	}
	return nil
}

func (m AttachmentsModel) View() string {
	if len(m.items) == 0 {
		return lipgloss.NewStyle().Faint(true).Render("No attachments")
	}

	var s string
	s += lipgloss.NewStyle().Bold(true).Render("Attachments") + "\n\n"

	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	filledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	partialStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	for i, a := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		state := partialStyle.Render("○")
		if a.IsFilled() {
			state = filledStyle.Render("●")
		}
		name := a.String()
		if i == m.cursor {
			name = selectedStyle.Render(name)
		}
		s += cursor + state + " " + name + "\n"
	}

	return s
}
