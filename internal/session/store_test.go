package session

import (
	"errors"
	"sync"
	"testing"

	"edumentor/internal/model"
)

func docFixture(id string) model.Document {
	return model.Document{ID: id, Name: id + ".pdf", Kind: model.KindPDF, PageCount: 3}
}

func TestAddDocumentRejectsDuplicateID(t *testing.T) {
	s := NewStore()
	if err := s.AddDocument(docFixture("d1")); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	err := s.AddDocument(docFixture("d1"))
	if !errors.Is(err, model.ErrDuplicateDocument) {
		t.Fatalf("duplicate AddDocument error = %v, want ErrDuplicateDocument", err)
	}
	if got := len(s.Snapshot().Documents); got != 1 {
		t.Fatalf("document count = %d, want 1", got)
	}
}

func TestRemoveDocumentCascades(t *testing.T) {
	s := NewStore()
	d1, d2 := docFixture("d1"), docFixture("d2")
	if err := s.AddDocument(d1); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if err := s.AddDocument(d2); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if err := s.SetActiveDocument(&d1); err != nil {
		t.Fatalf("SetActiveDocument failed: %v", err)
	}
	s.ToggleSelected("d1")
	s.ToggleSelected("d2")

	s.RemoveDocument("d1")

	st := s.Snapshot()
	if st.ActiveDocument != nil {
		t.Errorf("active document = %v, want nil after removing it", st.ActiveDocument)
	}
	if len(st.SelectedDocIDs) != 1 || st.SelectedDocIDs[0] != "d2" {
		t.Errorf("selected = %v, want [d2]", st.SelectedDocIDs)
	}
	if len(st.Documents) != 1 || st.Documents[0].ID != "d2" {
		t.Errorf("documents = %v, want only d2", st.Documents)
	}
}

func TestRemoveDocumentKeepsUnrelatedState(t *testing.T) {
	s := NewStore()
	d1, d2 := docFixture("d1"), docFixture("d2")
	_ = s.AddDocument(d1)
	_ = s.AddDocument(d2)
	if err := s.SetActiveDocument(&d2); err != nil {
		t.Fatalf("SetActiveDocument failed: %v", err)
	}

	s.RemoveDocument("d1")

	st := s.Snapshot()
	if st.ActiveDocument == nil || st.ActiveDocument.ID != "d2" {
		t.Fatalf("active document = %v, want d2 untouched", st.ActiveDocument)
	}
}

func TestSetActiveDocumentRequiresRegisteredDoc(t *testing.T) {
	s := NewStore()
	unknown := docFixture("ghost")
	err := s.SetActiveDocument(&unknown)
	if !errors.Is(err, model.ErrUnknownDocument) {
		t.Fatalf("SetActiveDocument error = %v, want ErrUnknownDocument", err)
	}
	if err := s.SetActiveDocument(nil); err != nil {
		t.Fatalf("clearing active document failed: %v", err)
	}
}

func TestSetActiveDocumentIsIdempotent(t *testing.T) {
	s := NewStore()
	d1 := docFixture("d1")
	if err := s.AddDocument(d1); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.SetActiveDocument(&d1); err != nil {
			t.Fatalf("SetActiveDocument call %d failed: %v", i+1, err)
		}
		st := s.Snapshot()
		if st.ActiveDocument == nil || st.ActiveDocument.ID != "d1" {
			t.Fatalf("active document = %v after call %d, want d1", st.ActiveDocument, i+1)
		}
	}
}

func TestToggleSelectedFlipsMembershipAndIgnoresUnknown(t *testing.T) {
	s := NewStore()
	_ = s.AddDocument(docFixture("d1"))

	s.ToggleSelected("d1")
	if got := s.Snapshot().SelectedDocIDs; len(got) != 1 {
		t.Fatalf("selected = %v, want [d1]", got)
	}
	s.ToggleSelected("d1")
	if got := s.Snapshot().SelectedDocIDs; len(got) != 0 {
		t.Fatalf("selected = %v, want empty after second toggle", got)
	}
	s.ToggleSelected("ghost")
	if got := s.Snapshot().SelectedDocIDs; len(got) != 0 {
		t.Fatalf("selected = %v, unknown id should be ignored", got)
	}
}

func TestModeAndVisionAreMutuallyExclusive(t *testing.T) {
	s := NewStore()

	s.SetActiveMode(model.ModeExam)
	s.SetVisionActive(true)
	st := s.Snapshot()
	if st.ActiveMode != "" {
		t.Errorf("active mode = %q, want cleared when vision activates", st.ActiveMode)
	}
	if !st.VisionActive {
		t.Error("vision should be active")
	}

	s.SetActiveMode(model.ModeRevision)
	st = s.Snapshot()
	if st.VisionActive {
		t.Error("vision should deactivate when a mode activates")
	}
	if st.ActiveMode != model.ModeRevision {
		t.Errorf("active mode = %q, want revision", st.ActiveMode)
	}
}

func TestAppendMessageAssignsIDAndRejectsDuplicates(t *testing.T) {
	s := NewStore()
	if err := s.AppendMessage(model.Message{Role: model.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	st := s.Snapshot()
	if len(st.Messages) != 1 || st.Messages[0].ID == "" {
		t.Fatalf("message id not assigned: %+v", st.Messages)
	}
	if st.Messages[0].Timestamp.IsZero() {
		t.Fatal("message timestamp not assigned")
	}

	err := s.AppendMessage(model.Message{ID: st.Messages[0].ID, Role: model.RoleUser, Content: "again"})
	if !errors.Is(err, model.ErrDuplicateMessage) {
		t.Fatalf("duplicate AppendMessage error = %v, want ErrDuplicateMessage", err)
	}
	if got := len(s.Snapshot().Messages); got != 1 {
		t.Fatalf("message count = %d, want 1", got)
	}
}

func TestBeginProcessingIsExclusive(t *testing.T) {
	s := NewStore()
	if !s.BeginProcessing() {
		t.Fatal("first BeginProcessing should succeed")
	}
	if s.BeginProcessing() {
		t.Fatal("second BeginProcessing should fail while busy")
	}
	s.EndProcessing()
	if !s.BeginProcessing() {
		t.Fatal("BeginProcessing should succeed after EndProcessing")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	_ = s.AddDocument(docFixture("d1"))
	st := s.Snapshot()
	st.Documents[0].Name = "mutated"
	if got := s.Snapshot().Documents[0].Name; got != "d1.pdf" {
		t.Fatalf("store document name = %q, snapshot mutation leaked", got)
	}
}

func TestListenersReceiveEveryMutation(t *testing.T) {
	s := NewStore()
	var mu sync.Mutex
	var seen []State
	s.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	_ = s.AddDocument(docFixture("d1"))
	s.ToggleSelected("d1")
	s.SetShowSelector(true)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("listener called %d times, want 3", len(seen))
	}
	last := seen[len(seen)-1]
	if !last.ShowSelector || len(last.SelectedDocIDs) != 1 {
		t.Fatalf("final snapshot = %+v, want selector shown and one selection", last)
	}
}

func TestListenerMayReadStoreWithoutDeadlock(t *testing.T) {
	s := NewStore()
	s.Subscribe(func(State) {
		_ = s.Snapshot()
	})
	_ = s.AddDocument(docFixture("d1"))
}
