// Package tui is the terminal notes client: a searchable sidebar of the
// signed-in user's notes next to an editor that autosaves.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"privatenotes/internal/editor"
	"privatenotes/internal/note/model"
	"privatenotes/internal/notelist"
	"privatenotes/pkg/apperr"
	"privatenotes/pkg/clock"
	"privatenotes/pkg/logger"
)

const (
	sidebarWidth   = 34
	feedRetryDelay = 5 * time.Second
	tickInterval   = time.Second
)

// API is what the client needs from the notes gateway.
type API interface {
	notelist.API
	editor.Saver
}

// Feed streams change events until ctx ends or the connection drops.
type Feed func(ctx context.Context, fn func(model.NoteEvent)) error

type focus int

const (
	focusList focus = iota
	focusSearch
	focusTitle
	focusContent
	focusConfirm
)

type notesLoadedMsg struct{ err error }

type feedEventMsg struct{ event model.NoteEvent }

type feedClosedMsg struct{ err error }

type feedRetryMsg struct{}

// autosavedMsg carries a note the open editor persisted in the
// background.
type autosavedMsg struct{ note model.Note }

type saveResultMsg struct {
	note    *model.Note
	created bool
	err     error
}

type deleteResultMsg struct {
	id  string
	err error
}

type tickMsg struct{}

type Model struct {
	ctx   context.Context
	api   API
	feed  Feed
	clock clock.Clock
	keys  KeyMap
	style styles

	store      *notelist.Store
	editor     *editor.Editor
	editorOpts []editor.Option

	search  textinput.Model
	title   textinput.Model
	content textarea.Model

	focus     focus
	cursor    int
	confirmID string
	errMsg    string

	events chan model.NoteEvent
	saved  chan model.Note

	width  int
	height int
}

type Option func(*Model)

// WithFeed enables live refresh from the change feed.
func WithFeed(feed Feed) Option {
	return func(m *Model) { m.feed = feed }
}

// WithClock sets the clock used for labels and for the autosave timer.
func WithClock(c clock.Clock) Option {
	return func(m *Model) { m.clock = c }
}

func WithTheme(theme Theme) Option {
	return func(m *Model) { m.style = newStyles(theme) }
}

func New(ctx context.Context, api API, opts ...Option) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search notes..."

	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Note title"

	content := textarea.New()
	content.Placeholder = "Start writing..."
	content.ShowLineNumbers = false

	m := Model{
		ctx:     ctx,
		api:     api,
		clock:   clock.Real(),
		keys:    DefaultKeyMap,
		style:   newStyles(DefaultTheme),
		store:   notelist.New(),
		search:  search,
		title:   title,
		content: content,
		events:  make(chan model.NoteEvent, 32),
		saved:   make(chan model.Note, 16),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.editorOpts = []editor.Option{editor.WithClock(m.clock), editor.OnSaved(m.notifySaved)}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadNotes(), m.listenForSave(), scheduleTick()}
	if m.feed != nil {
		cmds = append(cmds, m.runFeed(), m.listenForEvent())
	}
	return tea.Batch(cmds...)
}

func (m Model) loadNotes() tea.Cmd {
	return func() tea.Msg {
		return notesLoadedMsg{err: m.store.Load(m.ctx, m.api)}
	}
}

// runFeed blocks for the life of one feed connection.
func (m Model) runFeed() tea.Cmd {
	return func() tea.Msg {
		err := m.feed(m.ctx, func(ev model.NoteEvent) {
			select {
			case m.events <- ev:
			case <-m.ctx.Done():
			}
		})
		return feedClosedMsg{err: err}
	}
}

func (m Model) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return feedEventMsg{event: ev}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) listenForSave() tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-m.saved:
			return autosavedMsg{note: n}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) notifySaved(n model.Note) {
	select {
	case m.saved <- n:
	default:
		logger.Sugar.Warnf("Dropping save notification for note %s", n.ID)
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) saveNote() tea.Cmd {
	ed := m.editor
	return func() tea.Msg {
		created := ed.Note() == nil
		n, err := ed.Save(m.ctx)
		return saveResultMsg{note: n, created: created, err: err}
	}
}

func (m Model) deleteNote(id string) tea.Cmd {
	return func() tea.Msg {
		return deleteResultMsg{id: id, err: m.store.Delete(m.ctx, m.api, id)}
	}
}

func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.resize()

	case tea.KeyMsg:
		return m.handleKey(message)

	case notesLoadedMsg:
		m.clampCursor()

	case feedEventMsg:
		m.store.Apply(message.event)
		if message.event.Type == model.NoteDeletedType && m.editingID() == message.event.NoteID {
			m.closeEditor()
		}
		m.clampCursor()
		return m, m.listenForEvent()

	case feedClosedMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}
		logger.Sugar.Warnf("Change feed disconnected, retrying in %s: %v", feedRetryDelay, message.err)
		return m, tea.Tick(feedRetryDelay, func(time.Time) tea.Msg { return feedRetryMsg{} })

	case feedRetryMsg:
		// Events missed while disconnected are recovered by a reload.
		return m, tea.Batch(m.runFeed(), m.loadNotes())

	case autosavedMsg:
		n := message.note
		m.store.Apply(model.NoteEvent{Type: model.NoteUpdatedType, NoteID: n.ID, Note: &n})
		return m, m.listenForSave()

	case saveResultMsg:
		if message.err != nil {
			m.errMsg = saveFailure(message.err)
			return m, nil
		}
		if message.created {
			m.store.Created(*message.note)
			m.cursor = 0
		} else {
			m.store.Updated(*message.note)
		}

	case deleteResultMsg:
		if message.err == nil && m.editingID() == message.id {
			m.closeEditor()
		}
		m.clampCursor()

	case tickMsg:
		return m, scheduleTick()
	}
	return m, nil
}

func (m Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, m.keys.ForceQuit) {
		m.closeEditor()
		return m, tea.Quit
	}
	// An error blocks until it is acknowledged.
	if m.errMsg != "" {
		m.errMsg = ""
		return m, nil
	}

	switch m.focus {
	case focusConfirm:
		return m.handleConfirmKeys(message)
	case focusSearch:
		return m.handleSearchKeys(message)
	case focusTitle, focusContent:
		return m.handleEditorKeys(message)
	default:
		return m.handleListKeys(message)
	}
}

func (m Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.store.Visible()
	switch {
	case key.Matches(message, m.keys.Quit):
		m.closeEditor()
		return m, tea.Quit

	case key.Matches(message, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(message, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}

	case key.Matches(message, m.keys.Open):
		if len(visible) > 0 {
			n := visible[m.cursor]
			return m, m.openEditor(&n)
		}

	case key.Matches(message, m.keys.New):
		return m, m.openEditor(nil)

	case key.Matches(message, m.keys.Delete):
		if len(visible) > 0 {
			m.confirmID = visible[m.cursor].ID
			m.focus = focusConfirm
		}

	case key.Matches(message, m.keys.Search):
		m.focus = focusSearch
		return m, m.search.Focus()

	case key.Matches(message, m.keys.Reload):
		return m, m.loadNotes()
	}
	return m, nil
}

func (m Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Confirm):
		id := m.confirmID
		m.confirmID = ""
		m.focus = focusList
		return m, m.deleteNote(id)
	case key.Matches(message, m.keys.Cancel):
		m.confirmID = ""
		m.focus = focusList
	}
	return m, nil
}

func (m Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.ClearQuery):
		m.search.SetValue("")
		m.store.SetQuery("")
		m.search.Blur()
		m.focus = focusList
		m.clampCursor()
		return m, nil
	case message.Type == tea.KeyEnter:
		m.search.Blur()
		m.focus = focusList
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(message)
	if m.search.Value() != m.store.Query() {
		m.store.SetQuery(m.search.Value())
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) handleEditorKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Save):
		return m, m.saveNote()

	case key.Matches(message, m.keys.Close):
		m.closeEditor()
		return m, nil

	case key.Matches(message, m.keys.NextField):
		return m, m.toggleField()

	case m.focus == focusTitle && message.Type == tea.KeyEnter:
		return m, m.toggleField()
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(message)
		m.editor.SetTitle(m.title.Value())
	} else {
		m.content, cmd = m.content.Update(message)
		m.editor.SetContent(m.content.Value())
	}
	return m, cmd
}

func (m *Model) toggleField() tea.Cmd {
	if m.focus == focusTitle {
		m.title.Blur()
		m.focus = focusContent
		return m.content.Focus()
	}
	m.content.Blur()
	m.focus = focusTitle
	return m.title.Focus()
}

// openEditor starts editing n, or a new note when n is nil.
func (m *Model) openEditor(n *model.Note) tea.Cmd {
	m.closeEditor()
	if n == nil {
		m.store.StartCreating()
	} else {
		m.store.Select(n.ID)
	}
	m.editor = editor.New(m.ctx, m.api, n, m.editorOpts...)
	m.title.SetValue(m.editor.Title())
	m.content.SetValue(m.editor.Content())
	m.content.Blur()
	m.focus = focusTitle
	return m.title.Focus()
}

func (m *Model) closeEditor() {
	if m.editor == nil {
		return
	}
	m.editor.Close()
	m.editor = nil
	m.store.CancelEditing()
	m.title.Blur()
	m.content.Blur()
	m.focus = focusList
}

func (m Model) editingID() string {
	if m.editor == nil {
		return ""
	}
	if n := m.editor.Note(); n != nil {
		return n.ID
	}
	return ""
}

func (m *Model) clampCursor() {
	n := len(m.store.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) resize() {
	editorWidth := m.width - sidebarWidth - 4
	if editorWidth < 20 {
		editorWidth = 20
	}
	m.search.Width = sidebarWidth - 6
	m.title.Width = editorWidth - 4
	m.content.SetWidth(editorWidth - 2)
	if h := m.height - 9; h > 3 {
		m.content.SetHeight(h)
	}
}

func saveFailure(err error) string {
	if apperr.KindOf(err) == apperr.InvalidInput {
		return apperr.MessageOf(err)
	}
	return "Failed to save note: " + err.Error()
}
