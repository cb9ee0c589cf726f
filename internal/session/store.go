// Package session holds the canonical client-side state: documents, the
// vision selection set, the active learning mode, chat messages, and the
// transient UI flags. Every mutator computes the next state from the state
// under the lock, never from a caller-captured copy, so interleaved async
// completions cannot clobber each other.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"edumentor/internal/model"
)

// State is a point-in-time snapshot of the store. Slices are copies; mutating
// a snapshot never affects the store.
type State struct {
	Documents      []model.Document
	ActiveDocument *model.Document
	SelectedDocIDs []string
	ActiveMode     model.Mode
	VisionActive   bool
	Messages       []model.Message
	Processing     bool
	ShowSelector   bool
}

// HasDocuments reports whether at least one document is registered.
func (s State) HasDocuments() bool { return len(s.Documents) > 0 }

// Listener receives the new snapshot after every mutation.
type Listener func(State)

type Store struct {
	mu sync.Mutex

	documents    []model.Document
	activeDoc    *model.Document
	selected     []string
	activeMode   model.Mode
	visionActive bool
	messages     []model.Message
	messageIDs   map[string]bool
	processing   bool
	showSelector bool

	listeners []Listener
}

func NewStore() *Store {
	return &Store{messageIDs: map[string]bool{}}
}

// Subscribe registers a listener invoked after each mutation with the new
// snapshot. Listeners run outside the store lock.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := State{
		Documents:      append([]model.Document(nil), s.documents...),
		SelectedDocIDs: append([]string(nil), s.selected...),
		ActiveMode:     s.activeMode,
		VisionActive:   s.visionActive,
		Messages:       append([]model.Message(nil), s.messages...),
		Processing:     s.processing,
		ShowSelector:   s.showSelector,
	}
	if s.activeDoc != nil {
		doc := *s.activeDoc
		st.ActiveDocument = &doc
	}
	return st
}

func (s *Store) notify(st State) {
	for _, fn := range s.listeners {
		fn(st)
	}
}

func (s *Store) findLocked(id string) (model.Document, bool) {
	for _, d := range s.documents {
		if d.ID == id {
			return d, true
		}
	}
	return model.Document{}, false
}

// AddDocument appends a document. A duplicate id is rejected so the
// backend-issued identifier stays authoritative.
func (s *Store) AddDocument(doc model.Document) error {
	s.mu.Lock()
	if _, ok := s.findLocked(doc.ID); ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", model.ErrDuplicateDocument, doc.ID)
	}
	s.documents = append(s.documents, doc)
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
	return nil
}

// RemoveDocument removes the document and cascades: the active document is
// cleared if it was the one removed, and the id leaves the selection set in
// the same update.
func (s *Store) RemoveDocument(id string) {
	s.mu.Lock()
	kept := s.documents[:0]
	for _, d := range s.documents {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	s.documents = kept
	if s.activeDoc != nil && s.activeDoc.ID == id {
		s.activeDoc = nil
	}
	selected := s.selected[:0]
	for _, sid := range s.selected {
		if sid != id {
			selected = append(selected, sid)
		}
	}
	s.selected = selected
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
}

// SetActiveDocument sets or clears the active document. A non-nil document
// must already be registered; the invariant that activeDocument always refers
// to a registry entry is enforced here, not merely documented.
func (s *Store) SetActiveDocument(doc *model.Document) error {
	s.mu.Lock()
	if doc == nil {
		s.activeDoc = nil
	} else {
		current, ok := s.findLocked(doc.ID)
		if !ok {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", model.ErrUnknownDocument, doc.ID)
		}
		s.activeDoc = &current
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
	return nil
}

// ToggleSelected flips the id's membership in the vision selection set.
// Unknown ids are ignored.
func (s *Store) ToggleSelected(id string) {
	s.mu.Lock()
	if _, ok := s.findLocked(id); !ok {
		s.mu.Unlock()
		return
	}
	found := false
	selected := s.selected[:0]
	for _, sid := range s.selected {
		if sid == id {
			found = true
			continue
		}
		selected = append(selected, sid)
	}
	s.selected = selected
	if !found {
		s.selected = append(s.selected, id)
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
}

// ClearSelected empties the vision selection set.
func (s *Store) ClearSelected() {
	s.mu.Lock()
	s.selected = nil
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
}

// SetActiveMode activates a learning mode (or clears it with ""). Activating
// a mode deactivates vision mode; the two are mutually exclusive.
func (s *Store) SetActiveMode(mode model.Mode) {
	s.mu.Lock()
	s.activeMode = mode
	if mode != "" {
		s.visionActive = false
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
}

// SetVisionActive toggles Vision Tutor mode. Activating it clears the active
// learning mode.
func (s *Store) SetVisionActive(active bool) {
	s.mu.Lock()
	s.visionActive = active
	if active {
		s.activeMode = ""
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
}

// AppendMessage appends a chat message. An empty id is assigned; a duplicate
// id is rejected since message ids are unique and immutable once appended.
func (s *Store) AppendMessage(msg model.Message) error {
	s.mu.Lock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if s.messageIDs[msg.ID] {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", model.ErrDuplicateMessage, msg.ID)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.messageIDs[msg.ID] = true
	s.messages = append(s.messages, msg)
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
	return nil
}

// BeginProcessing attempts to set the global busy flag. It returns false if a
// mode-processing call is already in flight; callers must not queue.
func (s *Store) BeginProcessing() bool {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return false
	}
	s.processing = true
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
	return true
}

// EndProcessing clears the busy flag. Safe to call from deferred paths.
func (s *Store) EndProcessing() {
	s.mu.Lock()
	s.processing = false
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
}

// SetShowSelector shows or hides the document-selector overlay.
func (s *Store) SetShowSelector(show bool) {
	s.mu.Lock()
	s.showSelector = show
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
}
