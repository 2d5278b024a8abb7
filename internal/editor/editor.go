// Package editor holds an in-progress note and persists it, either on an
// explicit save or after a quiet period following the last edit.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"privatenotes/internal/note/model"
	"privatenotes/pkg/apperr"
	"privatenotes/pkg/clock"
	"privatenotes/pkg/logger"
)

// AutosaveDelay is the quiet period after the last edit before an
// existing note is saved.
const AutosaveDelay = 2 * time.Second

const msgFieldsRequired = "Please fill in both title and content"

// ErrClosed is returned by Save once the editor has been closed.
var ErrClosed = errors.New("editor: closed")

type State int

const (
	Idle State = iota
	Editing
	AutoSaving
	ManualSaving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case AutoSaving:
		return "autosaving"
	case ManualSaving:
		return "saving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Saver is the part of the notes API the editor writes through.
type Saver interface {
	Create(ctx context.Context, in model.NoteInput) (*model.Note, error)
	Update(ctx context.Context, id string, in model.NoteInput) (*model.Note, error)
}

type Editor struct {
	ctx   context.Context
	api   Saver
	clock clock.Clock
	delay time.Duration

	mu          sync.Mutex
	state       State
	note        *model.Note
	title       string
	content     string
	lastSavedAt time.Time
	timer       clock.Timer
	generation  uint64
	onSaved     func(model.Note)

	// saving is held for the duration of a network write.
	saving sync.Mutex
}

type Option func(*Editor)

func WithClock(c clock.Clock) Option {
	return func(e *Editor) { e.clock = c }
}

func WithDelay(d time.Duration) Option {
	return func(e *Editor) { e.delay = d }
}

// OnSaved registers a callback run after every successful save, outside
// the editor's lock.
func OnSaved(fn func(model.Note)) Option {
	return func(e *Editor) { e.onSaved = fn }
}

// New opens an editor for note, or for a new note when note is nil. ctx
// scopes the autosave requests.
func New(ctx context.Context, api Saver, note *model.Note, opts ...Option) *Editor {
	e := &Editor{
		ctx:   ctx,
		api:   api,
		clock: clock.Real(),
		delay: AutosaveDelay,
		state: Editing,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.delay <= 0 {
		e.delay = AutosaveDelay
	}
	if note != nil {
		n := *note
		e.note = &n
		e.title = n.Title
		e.content = n.Content
		e.lastSavedAt = n.UpdatedAt
	}
	return e
}

func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Idle || title == e.title {
		return
	}
	e.title = title
	e.scheduleLocked()
}

func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Idle || content == e.content {
		return
	}
	e.content = content
	e.scheduleLocked()
}

// scheduleLocked restarts the debounce timer. New notes are never
// autosaved, so nothing is armed for them.
func (e *Editor) scheduleLocked() {
	e.stopTimerLocked()
	if e.note == nil {
		return
	}
	gen := e.generation
	e.timer = e.clock.AfterFunc(e.delay, func() { e.autosave(gen) })
}

func (e *Editor) stopTimerLocked() {
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Editor) autosave(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || e.state == Idle || e.note == nil {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	id := e.note.ID
	in := model.NoteInput{Title: e.title, Content: e.content}
	unchanged := in.Title == e.note.Title && in.Content == e.note.Content
	e.mu.Unlock()

	if blank(in.Title) || blank(in.Content) || unchanged {
		return
	}
	if !e.saving.TryLock() {
		logger.Sugar.Debugf("Autosave for note %s skipped: a save is already in flight", id)
		return
	}
	defer e.saving.Unlock()

	e.setState(AutoSaving)
	saved, err := e.api.Update(e.ctx, id, in)
	if err != nil {
		e.setState(Editing)
		logger.Sugar.Errorf("Autosave failed for note %s: %v", id, err)
		return
	}
	e.finish(saved)
}

// Save persists the current fields immediately, creating the note if it
// does not exist yet. It waits for an autosave already in flight. On
// error the fields are left untouched.
func (e *Editor) Save(ctx context.Context) (*model.Note, error) {
	e.mu.Lock()
	if e.state == Idle {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	in := model.NoteInput{Title: e.title, Content: e.content}
	if blank(in.Title) || blank(in.Content) {
		e.mu.Unlock()
		return nil, apperr.New(apperr.InvalidInput, msgFieldsRequired)
	}
	e.stopTimerLocked()
	e.mu.Unlock()

	e.saving.Lock()
	defer e.saving.Unlock()

	e.mu.Lock()
	if e.state == Idle {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	e.state = ManualSaving
	var id string
	if e.note != nil {
		id = e.note.ID
	}
	e.mu.Unlock()

	var (
		saved *model.Note
		err   error
	)
	if id == "" {
		saved, err = e.api.Create(ctx, in)
	} else {
		saved, err = e.api.Update(ctx, id, in)
	}
	if err != nil {
		e.setState(Editing)
		return nil, err
	}
	e.finish(saved)
	n := *saved
	return &n, nil
}

// finish adopts the stored note and re-arms the debounce if the fields
// moved on while the request was in flight.
func (e *Editor) finish(saved *model.Note) {
	e.mu.Lock()
	if e.state == Idle {
		e.mu.Unlock()
		return
	}
	n := *saved
	e.note = &n
	e.lastSavedAt = e.clock.Now()
	e.state = Editing
	if e.title != n.Title || e.content != n.Content {
		e.scheduleLocked()
	}
	cb := e.onSaved
	e.mu.Unlock()

	if cb != nil {
		cb(n)
	}
}

func (e *Editor) setState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle {
		e.state = s
	}
}

// Close cancels a pending autosave. A request already in flight is not
// interrupted, but its result is no longer adopted.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.state = Idle
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// Note returns the last persisted version, nil for a note never saved.
func (e *Editor) Note() *model.Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note == nil {
		return nil
	}
	n := *e.note
	return &n
}

// Dirty reports whether the fields differ from the persisted note.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note == nil {
		return e.title != "" || e.content != ""
	}
	return e.title != e.note.Title || e.content != e.note.Content
}

func (e *Editor) LastSavedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSavedAt
}

// LastSavedLabel renders how long ago the note was saved.
func (e *Editor) LastSavedLabel(now time.Time) string {
	return savedLabel(e.LastSavedAt(), now)
}

func savedLabel(at, now time.Time) string {
	if at.IsZero() {
		return ""
	}
	secs := int(now.Sub(at) / time.Second)
	switch {
	case secs < 10:
		return "just now"
	case secs < 60:
		return fmt.Sprintf("%ds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	default:
		return at.Format("3:04 PM")
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
