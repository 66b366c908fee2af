// Package authoring edits a lesson's block sequence in memory and submits
// it for persistence.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/examprep/internal/block"
	"github.com/abhisek/examprep/internal/lesson"
)

// DefaultSubject is the task-bank subject used when Deps.Subject is empty.
const DefaultSubject = "math"

// ErrBusy is returned by Submit while an earlier Submit is in flight.
var ErrBusy = errors.New("save already in progress")

// Deps are the collaborators an Editor talks to.
type Deps struct {
	Reader  lesson.Reader
	Writer  lesson.Writer
	Tasks   lesson.TaskBank
	Subject string
}

func (d Deps) subject() string {
	if d.Subject == "" {
		return DefaultSubject
	}
	return d.Subject
}

// Key identifies a block for the lifetime of one editing session. Keys
// are never persisted and do not follow position.
type Key uint64

// Entry is a block together with its session key.
type Entry struct {
	Key   Key
	Block block.Block
}

// Direction is a MoveBlock direction.
type Direction int

const (
	Up Direction = iota
	Down
)

// Editor holds one authoring session.
type Editor struct {
	deps Deps

	mu       sync.Mutex
	lessonID string
	groupID  string
	title    string
	entries  []Entry
	catalog  lesson.Catalog
	nextKey  Key
	saving   bool
}

// Load opens an existing lesson for editing. THEORY content is rendered
// without sanitization, so only teachers may author.
func Load(ctx context.Context, deps Deps, lessonID string) (*Editor, error) {
	if err := requireTeacher(ctx); err != nil {
		return nil, err
	}

	l, err := deps.Reader.Get(ctx, lessonID)
	if err != nil {
		return nil, loadErr("lesson "+lessonID, err)
	}
	catalog, err := deps.Tasks.Catalog(ctx, deps.subject())
	if err != nil {
		return nil, loadErr("task catalog", err)
	}

	e := &Editor{
		deps:     deps,
		lessonID: l.ID,
		groupID:  l.GroupID,
		title:    l.Title,
		catalog:  catalog,
	}
	e.replaceLocked(l.Blocks)
	return e, nil
}

// New starts an empty lesson for a group. Submit creates it.
func New(ctx context.Context, deps Deps, groupID string) (*Editor, error) {
	if err := requireTeacher(ctx); err != nil {
		return nil, err
	}
	catalog, err := deps.Tasks.Catalog(ctx, deps.subject())
	if err != nil {
		return nil, loadErr("task catalog", err)
	}
	return &Editor{deps: deps, groupID: groupID, catalog: catalog}, nil
}

func requireTeacher(ctx context.Context) error {
	id, ok := lesson.IdentityFrom(ctx)
	if !ok || id.Role != lesson.RoleTeacher {
		return fmt.Errorf("authoring requires a teacher: %w", lesson.ErrUnauthorized)
	}
	return nil
}

func loadErr(op string, err error) error {
	return &lesson.LoadError{Op: op, Err: err}
}

// LessonID returns the id being edited, or "" for a lesson not yet created.
func (e *Editor) LessonID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lessonID
}

// GroupID returns the owning group.
func (e *Editor) GroupID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.groupID
}

// Title returns the current title.
func (e *Editor) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

// SetTitle changes the title.
func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.title = title
}

// Catalog returns the task listing offered for TASK blocks.
func (e *Editor) Catalog() lesson.Catalog {
	return e.catalog
}

// Len returns the number of blocks.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// Entries returns a copy of the blocks with their keys.
func (e *Editor) Entries() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Blocks returns a copy of the blocks in order.
func (e *Editor) Blocks() []block.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]block.Block, len(e.entries))
	for i, en := range e.entries {
		out[i] = en.Block
	}
	return out
}

// IndexOf returns the current position of key, or -1.
func (e *Editor) IndexOf(key Key) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, en := range e.entries {
		if en.Key == key {
			return i
		}
	}
	return -1
}

// AddBlock appends a block of kind t with default content.
func (e *Editor) AddBlock(t block.Tag) Key {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := e.newKeyLocked()
	e.entries = append(e.entries, Entry{
		Key:   key,
		Block: block.Block{Content: block.Default(t, e.catalog.FirstRef())},
	})
	return key
}

// UpdateBlockContent edits one field of the block at index. It panics if
// index is out of range.
func (e *Editor) UpdateBlockContent(index int, field block.Field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkIndexLocked(index)

	updated, err := block.Update(e.entries[index].Block.Content, field, value)
	if err != nil {
		return err
	}
	e.entries[index].Block.Content = updated
	return nil
}

// RemoveBlock deletes the block at index. Later blocks shift down and
// keep their keys. It panics if index is out of range.
func (e *Editor) RemoveBlock(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkIndexLocked(index)
	e.entries = append(e.entries[:index:index], e.entries[index+1:]...)
}

// MoveBlock swaps the block at index with its neighbour. Moving the first
// block up or the last block down does nothing and reports false.
func (e *Editor) MoveBlock(index int, dir Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkIndexLocked(index)

	other := index + 1
	if dir == Up {
		other = index - 1
	}
	if other < 0 || other >= len(e.entries) {
		return false
	}
	e.entries[index], e.entries[other] = e.entries[other], e.entries[index]
	return true
}

// Replace discards the current blocks and title, e.g. after an import.
// Every block gets a fresh key.
func (e *Editor) Replace(title string, blocks []block.Block) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.title = title
	e.replaceLocked(blocks)
}

func (e *Editor) replaceLocked(blocks []block.Block) {
	e.entries = make([]Entry, len(blocks))
	for i, b := range blocks {
		e.entries[i] = Entry{Key: e.newKeyLocked(), Block: b}
	}
}

func (e *Editor) newKeyLocked() Key {
	e.nextKey++
	return e.nextKey
}

func (e *Editor) checkIndexLocked(index int) {
	if index < 0 || index >= len(e.entries) {
		panic(fmt.Sprintf("authoring: block index %d out of range [0, %d)", index, len(e.entries)))
	}
}

// Validate checks the lesson as Submit would, without saving.
func (e *Editor) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.draftLocked()
	return err
}

func (e *Editor) draftLocked() (lesson.Draft, error) {
	title := strings.TrimSpace(e.title)
	if title == "" {
		return lesson.Draft{}, &block.ValidationError{Index: -1, Reason: "lesson title is required"}
	}
	if len(e.entries) == 0 {
		return lesson.Draft{}, &block.ValidationError{Index: -1, Reason: "lesson needs at least one block"}
	}

	d := lesson.Draft{Title: title, Blocks: make([]block.Wire, len(e.entries))}
	for i, en := range e.entries {
		if err := block.Validate(en.Block); err != nil {
			var verr *block.ValidationError
			if errors.As(err, &verr) {
				return lesson.Draft{}, &block.ValidationError{Index: i, Reason: verr.Reason}
			}
			return lesson.Draft{}, err
		}
		d.Blocks[i] = block.Encode(en.Block)
	}
	return d, nil
}

// Submit validates the lesson and sends it to the Writer: Save for a
// loaded lesson, Create for a new one. On any error the editor is left
// as it was.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return ErrBusy
	}
	d, err := e.draftLocked()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.saving = true
	lessonID, groupID := e.lessonID, e.groupID
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
	}()

	if lessonID != "" {
		if err := e.deps.Writer.Save(ctx, lessonID, d); err != nil {
			return fmt.Errorf("save lesson %s: %w", lessonID, err)
		}
		return nil
	}

	id, err := e.deps.Writer.Create(ctx, groupID, d)
	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	e.mu.Lock()
	e.lessonID = id
	e.mu.Unlock()
	return nil
}
