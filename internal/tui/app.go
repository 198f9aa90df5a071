// ABOUTME: Main Bubble Tea application model
// ABOUTME: Coordinates the nodes, attachments and details panes

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/models"
)

// Pane represents which pane is focused
type Pane int

const (
	NodesPane Pane = iota
	AttachmentsPane
	DetailsPane
)

// AttachmentLoadedMsg reports the end of a fill started with "l".
type AttachmentLoadedMsg struct {
	Attachment attachment.Attachment
	Err        error
}

// Model is the main application state
type Model struct {
	ctx         context.Context
	message     *models.Message
	activePane  Pane
	width       int
	height      int
	nodes       NodesModel
	attachments AttachmentsModel
	loading     int
	err         error
}

// NewModel creates a browser for msg. Fills run with ctx.
func NewModel(ctx context.Context, msg *models.Message) Model {
	m := Model{
		ctx:        ctx,
		message:    msg,
		activePane: NodesPane,
		nodes:      NewNodesModel(msg),
	}
	m.syncAttachments()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) syncAttachments() {
	if node := m.nodes.Selected(); node != nil {
		m.attachments.SetAttachments(node.Bearer.GetAttachments())
	}
}

// loadSelected fills the selected attachment in the background.
func (m Model) loadSelected() tea.Cmd {
	a := m.attachments.Selected()
	if a == nil || a.IsFilled() {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return AttachmentLoadedMsg{Attachment: a, Err: a.LoadAttachmentPayload(ctx)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateNavigation(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case AttachmentLoadedMsg:
		m.loading--
		if attachment.Equal(msg.Attachment, m.attachments.Selected()) {
			m.err = msg.Err
		}
		return m, nil

	case error:
		m.err = msg
		return m, nil
	}

	return m, nil
}

func (m Model) updateNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.activePane = (m.activePane + 1) % 3
		return m, nil

	case "shift+tab":
		m.activePane = (m.activePane + 2) % 3
		return m, nil

	case "j", "down":
		switch m.activePane {
		case NodesPane:
			m.nodes.MoveDown()
			m.syncAttachments()
		case AttachmentsPane:
			m.attachments.MoveDown()
		}
		return m, nil

	case "k", "up":
		switch m.activePane {
		case NodesPane:
			m.nodes.MoveUp()
			m.syncAttachments()
		case AttachmentsPane:
			m.attachments.MoveUp()
		}
		return m, nil

	case "enter":
		switch m.activePane {
		case NodesPane:
			m.activePane = AttachmentsPane
		case AttachmentsPane:
			m.activePane = DetailsPane
		}
		return m, nil

	case "l":
		cmd := m.loadSelected()
		if cmd != nil {
			m.loading++
			m.err = nil
		}
		return m, cmd
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	nodesWidth := m.width / 3
	attachmentsWidth := m.width / 4
	detailsWidth := m.width - nodesWidth - attachmentsWidth

	activeStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86"))

	inactiveStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240"))

	nodesStyle := inactiveStyle
	attachmentsStyle := inactiveStyle
	detailsStyle := inactiveStyle

	switch m.activePane {
	case NodesPane:
		nodesStyle = activeStyle
	case AttachmentsPane:
		attachmentsStyle = activeStyle
	case DetailsPane:
		detailsStyle = activeStyle
	}

	nodesView := nodesStyle.Width(nodesWidth - 2).Height(m.height - 4).Render(m.nodes.View())
	attachmentsView := attachmentsStyle.Width(attachmentsWidth - 2).Height(m.height - 4).Render(m.attachments.View())
	detailsView := detailsStyle.Width(detailsWidth - 2).Height(m.height - 4).Render(RenderDetails(m.attachments.Selected()))

	main := lipgloss.JoinHorizontal(lipgloss.Top, nodesView, attachmentsView, detailsView)

	status := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("[tab] switch pane  [j/k] navigate  [enter] select  [l] load  [q] quit")

	switch {
	case m.loading > 0:
		status = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Render("Loading attachment...")
	case m.err != nil:
		status = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("Error: " + m.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, status)
}

// Run starts the TUI
func Run(ctx context.Context, msg *models.Message) error {
	p := tea.NewProgram(NewModel(ctx, msg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
