// ABOUTME: Nodes pane component
// ABOUTME: Lists a message, its reply and its forward tree in flattened order

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/models"
)

// Node is one attachment bearer in the tree.
type Node struct {
	Label  string
	Depth  int
	Bearer attachment.Bearer
}

// BuildNodes lists the message, its reply and every forward depth-first.
func BuildNodes(msg *models.Message) []Node {
	nodes := []Node{{Label: label("message", msg.SenderID, msg.Text), Bearer: msg}}
	if msg.ReplyMessage != nil {
		nodes = append(nodes, Node{
			Label:  label("reply", msg.ReplyMessage.SenderID, msg.ReplyMessage.Text),
			Depth:  1,
			Bearer: msg.ReplyMessage,
		})
	}
	return appendForwards(nodes, msg.Forwards.Items(), 1)
}

func appendForwards(nodes []Node, forwards []*models.Forward, depth int) []Node {
	for _, f := range forwards {
		nodes = append(nodes, Node{Label: label("fwd", f.SenderID, f.Text), Depth: depth, Bearer: f})
		nodes = appendForwards(nodes, f.Forwards.Items(), depth+1)
	}
	return nodes
}

func label(role string, senderID int64, text string) string {
	if len(text) > 24 {
		text = text[:24] + "..."
	}
	return fmt.Sprintf("%s %d: %s", role, senderID, strings.ReplaceAll(text, "\n", " "))
}

type NodesModel struct {
	nodes  []Node
	cursor int
}

func NewNodesModel(msg *models.Message) NodesModel {
	return NodesModel{nodes: BuildNodes(msg)}
}

func (m *NodesModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *NodesModel) MoveDown() {
	if m.cursor < len(m.nodes)-1 {
		m.cursor++
	}
}

func (m *NodesModel) Selected() *Node {
	if m.cursor >= 0 && m.cursor < len(m.nodes) {
		return &m.nodes[m.cursor]
	}
	return nil
}

func (m NodesModel) View() string {
	var s string
	s += lipgloss.NewStyle().Bold(true).Render("Messages") + "\n\n"

	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	countStyle := lipgloss.NewStyle().Faint(true)

	for i, node := range m.nodes {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := strings.Repeat("  ", node.Depth) + node.Label
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		count := len(node.Bearer.GetAttachments())
		s += cursor + line + countStyle.Render(fmt.Sprintf(" [%d]", count)) + "\n"
	}

	return s
}
