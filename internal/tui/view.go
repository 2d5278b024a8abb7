package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"privatenotes/internal/editor"
	"privatenotes/internal/notelist"
)

func (m Model) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), m.editorView())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.footerView())
}

func (m Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(m.style.header.Render("My Notes"))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	visible := m.store.Visible()
	if len(visible) == 0 {
		if m.store.Query() != "" {
			b.WriteString(m.style.faint.Render("No notes match your search"))
		} else {
			b.WriteString(m.style.faint.Render("No notes yet. Press n to create one."))
		}
	}

	now := m.clock.Now()
	openID := m.editingID()
	fit := lipgloss.NewStyle().MaxWidth(sidebarWidth - 6)
	for i, n := range visible {
		title := n.Title
		if strings.TrimSpace(title) == "" {
			title = "Untitled"
		}
		marker := "  "
		if n.ID == openID {
			marker = "▸ "
		}
		line := fit.Render(marker + title)
		if i == m.cursor && m.focus == focusList {
			line = m.style.selected.Render(line)
		} else {
			line = m.style.item.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(m.style.faint.Render("  " + notelist.FormatDate(n.CreatedAt, now)))
		b.WriteString("\n")
	}

	return m.style.pane.Width(sidebarWidth).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) editorView() string {
	width := m.width - sidebarWidth - 4
	if width < 20 {
		width = 20
	}
	pane := m.style.pane.Width(width)

	if m.editor == nil {
		return pane.Render(m.style.faint.Render("Select a note or press n to create a new one"))
	}

	heading := "Edit note"
	if m.editor.Note() == nil {
		heading = "New note"
	}
	parts := []string{
		m.style.header.Render(heading),
		m.title.View(),
		"",
		m.content.View(),
		m.statusView(),
	}
	return pane.Render(strings.Join(parts, "\n"))
}

// statusView shows save progress for the open note.
func (m Model) statusView() string {
	if m.editor == nil {
		return ""
	}
	switch m.editor.State() {
	case editor.AutoSaving, editor.ManualSaving:
		return m.style.faint.Render("Saving...")
	}
	if label := m.editor.LastSavedLabel(m.clock.Now()); label != "" {
		return m.style.saved.Render("Saved " + label)
	}
	return ""
}

func (m Model) footerView() string {
	switch {
	case m.errMsg != "":
		return m.style.errLine.Render(m.errMsg + "  (press any key)")
	case m.focus == focusConfirm:
		return m.style.errLine.Render(fmt.Sprintf("Delete %q? (y/n)", m.confirmTitle()))
	}

	var bindings []string
	switch m.focus {
	case focusTitle, focusContent:
		bindings = helpFor(m.keys.Save, m.keys.NextField, m.keys.Close)
	case focusSearch:
		bindings = []string{"enter done", "esc clear"}
	default:
		bindings = helpFor(m.keys.Up, m.keys.Down, m.keys.Open, m.keys.New, m.keys.Delete, m.keys.Search, m.keys.Reload, m.keys.Quit)
	}
	return m.style.help.Render(strings.Join(bindings, " • "))
}

func (m Model) confirmTitle() string {
	for _, n := range m.store.Visible() {
		if n.ID == m.confirmID {
			return n.Title
		}
	}
	return m.confirmID
}

func helpFor(bindings ...key.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, h.Key+" "+h.Desc)
	}
	return out
}
