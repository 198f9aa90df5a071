// ABOUTME: Tests for TUI components
// ABOUTME: Verifies node building, navigation and background loading

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/models"
)

type docsAPI struct {
	calls int
}

func (a *docsAPI) PhotosGetByID(context.Context, attachment.PhotosGetByIDParams) ([]attachment.PhotoPayload, error) {
	return nil, nil
}

func (a *docsAPI) DocsGetByID(context.Context, attachment.DocsGetByIDParams) ([]attachment.GraffitiPayload, error) {
	a.calls++
	url := "http://g"
	height := 10
	return []attachment.GraffitiPayload{{ID: 2, OwnerID: 1, URL: &url, Height: &height}}, nil
}

func (a *docsAPI) PollsGetByID(context.Context, attachment.PollsGetByIDParams) ([]attachment.PollPayload, error) {
	return nil, nil
}

func testMessage(api attachment.API) *models.Message {
	nested := models.NewForward(3, "nested", attachment.List{
		attachment.NewGraffiti(attachment.GraffitiPayload{ID: 2, OwnerID: 1}, api),
	})
	first := models.NewForward(2, "first", nil, nested)

	msg := models.NewMessage(100, 1, "root")
	msg.Forwards.Append(first)
	msg.ReplyMessage = models.NewForward(4, "reply", nil)
	return msg
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBuildNodes(t *testing.T) {
	nodes := BuildNodes(testMessage(nil))
	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(nodes))
	}

	wantDepth := []int{0, 1, 1, 2}
	wantPrefix := []string{"message 1", "reply 4", "fwd 2", "fwd 3"}
	for i, node := range nodes {
		if node.Depth != wantDepth[i] {
			t.Errorf("node %d: expected depth %d, got %d", i, wantDepth[i], node.Depth)
		}
		if !strings.HasPrefix(node.Label, wantPrefix[i]) {
			t.Errorf("node %d: expected label %q, got %q", i, wantPrefix[i], node.Label)
		}
	}
}

func TestNavigationSyncsAttachments(t *testing.T) {
	model := NewModel(context.Background(), testMessage(nil))
	if model.attachments.Selected() != nil {
		t.Error("root message has no attachments")
	}

	var m tea.Model = model
	for i := 0; i < 3; i++ {
		m, _ = m.Update(key("j"))
	}

	got := m.(Model)
	a := got.attachments.Selected()
	if a == nil || a.Kind() != attachment.KindGraffiti {
		t.Fatalf("expected nested graffiti selected, got %v", a)
	}

	m, _ = m.Update(key("j"))
	if m.(Model).nodes.cursor != 3 {
		t.Error("cursor should stop at the last node")
	}
}

func TestPaneSwitching(t *testing.T) {
	var m tea.Model = NewModel(context.Background(), testMessage(nil))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(Model).activePane != AttachmentsPane {
		t.Error("tab should focus attachments")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.(Model).activePane != NodesPane {
		t.Error("shift+tab should focus nodes")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(Model).activePane != AttachmentsPane {
		t.Error("enter on nodes should focus attachments")
	}
}

func TestLoadSelected(t *testing.T) {
	api := &docsAPI{}
	var m tea.Model = NewModel(context.Background(), testMessage(api))
	for i := 0; i < 3; i++ {
		m, _ = m.Update(key("j"))
	}

	m, cmd := m.Update(key("l"))
	if cmd == nil {
		t.Fatal("expected load command for partial attachment")
	}
	if m.(Model).loading != 1 {
		t.Error("expected loading indicator")
	}

	loaded, ok := cmd().(AttachmentLoadedMsg)
	if !ok {
		t.Fatal("expected AttachmentLoadedMsg")
	}
	if loaded.Err != nil {
		t.Fatalf("load failed: %v", loaded.Err)
	}

	m, _ = m.Update(loaded)
	got := m.(Model)
	if got.loading != 0 {
		t.Error("loading should be cleared")
	}
	if !got.attachments.Selected().IsFilled() {
		t.Error("selected attachment should be filled")
	}

	if _, cmd := m.Update(key("l")); cmd != nil {
		t.Error("filled attachment should not load again")
	}
	if api.calls != 1 {
		t.Errorf("expected 1 fetch, got %d", api.calls)
	}
}

func TestRenderDetails(t *testing.T) {
	g := attachment.NewGraffiti(attachment.GraffitiPayload{ID: 2, OwnerID: 1}, nil)

	partial := RenderDetails(g)
	if !strings.Contains(partial, "partial") || !strings.Contains(partial, "url") {
		t.Errorf("unexpected partial details:\n%s", partial)
	}

	url := "http://g"
	full := RenderDetails(attachment.NewGraffiti(attachment.GraffitiPayload{ID: 2, OwnerID: 1, URL: &url}, nil))
	if !strings.Contains(full, "http://g") || !strings.Contains(full, "full") {
		t.Errorf("unexpected full details:\n%s", full)
	}
}

func TestViewBeforeResize(t *testing.T) {
	model := NewModel(context.Background(), testMessage(nil))
	if model.View() != "Loading..." {
		t.Error("view should wait for window size")
	}

	m, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if !strings.Contains(m.View(), "[l] load") {
		t.Error("status bar should list the load key")
	}
}

func TestLoadResultForOtherAttachmentIgnored(t *testing.T) {
	var m tea.Model = NewModel(context.Background(), testMessage(&docsAPI{}))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	for i := 0; i < 3; i++ {
		m, _ = m.Update(key("j"))
	}
	selected := m.(Model)
	graffiti := selected.attachments.Selected()

	m, _ = m.Update(key("l"))
	m, _ = m.Update(key("k"))
	m, _ = m.Update(AttachmentLoadedMsg{Attachment: graffiti, Err: errors.New("boom")})
	if got := m.(Model); got.err != nil || got.loading != 0 {
		t.Errorf("expected no error and no loading, got err=%v loading=%d", got.err, got.loading)
	}

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("l"))
	m, _ = m.Update(AttachmentLoadedMsg{Attachment: graffiti, Err: errors.New("boom")})
	if !strings.Contains(m.View(), "Error: boom") {
		t.Errorf("expected error for the selected attachment:\n%s", m.View())
	}
}
