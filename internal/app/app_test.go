package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edumentor/internal/config"
	"edumentor/internal/gateway"
	"edumentor/internal/model"
)

func testConfig(t *testing.T, backendURL string) config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	cfg := config.Default()
	cfg.Backend.URL = backendURL
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		_ = a.Close()
	})
	return a
}

func uploadServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/documents") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"documents":[
			{"doc_id":"a","filename":"first.pdf","doc_type":"pdf","page_count":2},
			{"doc_id":"b","filename":"second.png","doc_type":"png","page_count":1}
		]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeLocalFiles(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, 2)
	for _, name := range []string{"first.pdf", "second.png"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("content"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestUploadAutoSelectsLastDocument(t *testing.T) {
	srv := uploadServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))

	added, err := a.Upload(context.Background(), writeLocalFiles(t))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added = %d, want 2", len(added))
	}

	st := a.Store.Snapshot()
	if st.ActiveDocument == nil || st.ActiveDocument.ID != "b" {
		t.Fatalf("active document = %+v, want the last upload", st.ActiveDocument)
	}
	if len(st.SelectedDocIDs) != 1 || st.SelectedDocIDs[0] != "b" {
		t.Fatalf("selected = %v, want [b]", st.SelectedDocIDs)
	}
	if st.ShowSelector {
		t.Fatal("selector should be closed after an upload")
	}
	if st.Documents[1].Kind != model.KindImage {
		t.Fatalf("kind = %q, want png normalized to image", st.Documents[1].Kind)
	}
	if st.Documents[0].SizeLabel == "" {
		t.Fatal("size label should be derived from the local file")
	}
}

func TestDocumentsRestoredOnNextStart(t *testing.T) {
	srv := uploadServer(t)
	cfg := testConfig(t, srv.URL)

	a := newTestApp(t, cfg)
	if _, err := a.Upload(context.Background(), writeLocalFiles(t)); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	sessionID := a.SessionID
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	b := newTestApp(t, cfg)
	if b.SessionID != sessionID {
		t.Fatalf("session id = %q, want the persisted %q", b.SessionID, sessionID)
	}
	st := b.Store.Snapshot()
	if len(st.Documents) != 2 {
		t.Fatalf("restored documents = %d, want 2", len(st.Documents))
	}
	if st.Documents[0].ID != "a" || st.Documents[1].ID != "b" {
		t.Fatalf("restored order = %+v", st.Documents)
	}
}

func TestRemoveDropsDocumentEverywhere(t *testing.T) {
	srv := uploadServer(t)
	cfg := testConfig(t, srv.URL)

	a := newTestApp(t, cfg)
	if _, err := a.Upload(context.Background(), writeLocalFiles(t)); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if err := a.Remove(context.Background(), "b"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	st := a.Store.Snapshot()
	if len(st.Documents) != 1 || st.Documents[0].ID != "a" {
		t.Fatalf("documents = %+v, want only a", st.Documents)
	}
	if st.ActiveDocument != nil {
		t.Fatal("removing the active document must clear the focus")
	}

	docs, err := a.Registry.Documents(context.Background(), a.SessionID)
	if err != nil {
		t.Fatalf("Registry.Documents failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("journal documents = %d, want 1", len(docs))
	}
}

func TestVisionToggleOpensSelectorWithDocuments(t *testing.T) {
	srv := uploadServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))
	if _, err := a.Upload(context.Background(), writeLocalFiles(t)); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	a.ToggleVision()
	st := a.Store.Snapshot()
	if !st.VisionActive || !st.ShowSelector {
		t.Fatalf("state = %+v, want vision active with selector open", st)
	}

	a.ToggleVision()
	st = a.Store.Snapshot()
	if st.VisionActive {
		t.Fatal("second toggle should leave vision mode")
	}
	if st.ActiveDocument != nil {
		t.Fatal("leaving vision mode resets the document focus")
	}
}

func TestAskFailureSurfacesBackendBodyInChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	t.Cleanup(srv.Close)
	a := newTestApp(t, testConfig(t, srv.URL))

	a.AskQuestion(context.Background(), "why is the sky blue?")

	st := a.Store.Snapshot()
	if len(st.Messages) != 2 {
		t.Fatalf("messages = %d, want the question and a reply", len(st.Messages))
	}
	reply := st.Messages[1]
	if reply.Role != model.RoleAssistant || !strings.Contains(reply.Content, "internal error") {
		t.Fatalf("reply = %+v, want the backend body surfaced", reply)
	}
	if st.Processing {
		t.Fatal("a failed question must not leave the busy flag set")
	}
}

func TestAskAttachesSourceFromFirstHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"Rayleigh scattering.","hits":[
			{"filename":"physics.pdf","page_index":3},
			{"filename":"other.pdf","page_index":0}
		]}`))
	}))
	t.Cleanup(srv.Close)
	a := newTestApp(t, testConfig(t, srv.URL))

	a.AskQuestion(context.Background(), "why is the sky blue?")

	st := a.Store.Snapshot()
	if len(st.Messages) != 2 {
		t.Fatalf("messages = %d, want the question and a reply", len(st.Messages))
	}
	reply := st.Messages[1]
	if reply.Content != "Rayleigh scattering." {
		t.Fatalf("reply content = %q", reply.Content)
	}
	if reply.SourceRef == nil || reply.SourceRef.DocumentName != "physics.pdf" || reply.SourceRef.PageNumber != 4 {
		t.Fatalf("source = %+v, want physics.pdf page 4 from the first hit", reply.SourceRef)
	}
}

func TestUploadRollsBackStoreWhenJournalFails(t *testing.T) {
	srv := uploadServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))

	// Replace the journal file with a directory so the next write cannot
	// reopen it.
	dbPath := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "edumentor", "session.db")
	if err := a.Registry.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := os.RemoveAll(dbPath); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if err := os.MkdirAll(dbPath, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	if _, err := a.Upload(context.Background(), writeLocalFiles(t)); err == nil {
		t.Fatal("Upload should fail when the journal cannot record the document")
	}
	if docs := a.Store.Snapshot().Documents; len(docs) != 0 {
		t.Fatalf("documents = %+v, want the store add rolled back", docs)
	}
}

func TestFormatAskResult(t *testing.T) {
	if got := formatAskResult(nil); got != "No answer." {
		t.Fatalf("nil result = %q", got)
	}
	if got := formatAskResult(&gateway.AskResult{Answer: "plain"}); got != "plain" {
		t.Fatalf("plain result = %q", got)
	}
	structured := &gateway.AskResult{Sections: []gateway.AskSection{
		{Filename: "notes.pdf", PageIndex: 0, Bullets: []string{"first", "second"}},
	}}
	got := formatAskResult(structured)
	if !strings.Contains(got, "notes.pdf (page 1):") || !strings.Contains(got, "- first") {
		t.Fatalf("structured result = %q", got)
	}
}
