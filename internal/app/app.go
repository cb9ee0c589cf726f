// Package app wires the client together: config, session journal, the
// session store, the backend gateway, the mode processor, and the voice
// pipeline. The TUI and the one-shot CLI commands both run on top of it.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"edumentor/internal/capture"
	"edumentor/internal/config"
	"edumentor/internal/elevenlabs"
	"edumentor/internal/gateway"
	"edumentor/internal/model"
	"edumentor/internal/modes"
	"edumentor/internal/registry"
	"edumentor/internal/session"
	"edumentor/internal/speech"
	"edumentor/internal/voice"
)

type App struct {
	Cfg       config.Config
	Store     *session.Store
	Gateway   *gateway.Client
	Registry  *registry.Registry
	Processor *modes.Processor
	Pipeline  *voice.Pipeline
	SessionID string
}

// New builds the application. The session token is created lazily on first
// run and reused afterwards; documents recorded for it are restored into
// the store.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	stateDir, err := config.StateDir()
	if err != nil {
		return nil, err
	}
	reg := registry.Open(filepath.Join(stateDir, "session.db"))
	if err := reg.Init(ctx); err != nil {
		return nil, err
	}
	sessionID, err := reg.SessionID(ctx)
	if err != nil {
		_ = reg.Close()
		return nil, err
	}

	store := session.NewStore()
	gw := gateway.NewClient(cfg.Backend.URL)
	if cfg.Backend.TimeoutSeconds > 0 {
		gw.HTTPClient.Timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	}

	docs, err := reg.Documents(ctx, sessionID)
	if err != nil {
		_ = reg.Close()
		return nil, err
	}
	for _, doc := range docs {
		if err := store.AddDocument(doc); err != nil && !errors.Is(err, model.ErrDuplicateDocument) {
			_ = reg.Close()
			return nil, err
		}
	}

	processor := modes.NewProcessor(store, gw, sessionID)
	processor.Timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second

	eleven := elevenlabs.NewClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabs.Voice)
	if cfg.ElevenLabs.BaseURL != "" {
		eleven.BaseURL = cfg.ElevenLabs.BaseURL
	}

	var recognizer voice.Recognizer
	if speech.RecognizerAvailable(cfg.ElevenLabsAPIKey) {
		recognizer = &speech.MicRecognizer{
			Client:        eleven,
			Device:        cfg.Mic.Device,
			RecordSeconds: cfg.Mic.RecordSeconds,
		}
	}
	var synth voice.Synthesizer
	if !cfg.Mute && speech.SynthesizerAvailable(cfg.ElevenLabsAPIKey) {
		synth = &speech.Speaker{Client: eleven}
	}

	pipeline := voice.NewPipeline(store, gw, sessionID, recognizer, capture.Screen{}, synth)
	if cfg.Backend.TimeoutSeconds > 0 {
		pipeline.AskTimeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	}

	return &App{
		Cfg:       cfg,
		Store:     store,
		Gateway:   gw,
		Registry:  reg,
		Processor: processor,
		Pipeline:  pipeline,
		SessionID: sessionID,
	}, nil
}

func (a *App) Close() error {
	a.Pipeline.Stop()
	return a.Registry.Close()
}

// Upload sends the files to the backend, registers the returned documents,
// and auto-selects the last one: active, in the vision selection set, with
// the selector closed.
func (a *App) Upload(ctx context.Context, paths []string) ([]model.Document, error) {
	result, err := a.Gateway.UploadDocuments(ctx, a.SessionID, paths)
	if err != nil {
		return nil, err
	}

	localByName := map[string]string{}
	for _, p := range paths {
		localByName[filepath.Base(p)] = p
	}

	var added []model.Document
	for _, d := range result.Documents {
		doc := model.Document{
			ID:               d.DocID,
			Name:             d.Filename,
			Kind:             d.Kind(),
			PageCount:        d.PageCount,
			HasVisualContent: true,
			LocalPath:        localByName[d.Filename],
		}
		if doc.LocalPath != "" {
			if info, statErr := os.Stat(doc.LocalPath); statErr == nil {
				doc.SizeLabel = humanize.Bytes(uint64(info.Size()))
			}
		}
		if err := a.Store.AddDocument(doc); err != nil {
			if errors.Is(err, model.ErrDuplicateDocument) {
				continue
			}
			return added, err
		}
		if err := a.Registry.RecordDocument(ctx, a.SessionID, doc); err != nil {
			a.Store.RemoveDocument(doc.ID)
			return added, err
		}
		added = append(added, doc)
	}

	if len(added) > 0 {
		last := added[len(added)-1]
		if err := a.Store.SetActiveDocument(&last); err != nil {
			return added, err
		}
		if !containsID(a.Store.Snapshot().SelectedDocIDs, last.ID) {
			a.Store.ToggleSelected(last.ID)
		}
		a.Store.SetShowSelector(false)
	}
	return added, nil
}

// Remove drops a document from the store (with its cascades) and from the
// session journal.
func (a *App) Remove(ctx context.Context, docID string) error {
	a.Store.RemoveDocument(docID)
	return a.Registry.DeleteDocument(ctx, docID)
}

// SelectMode handles a learning-mode selection. Picking the active mode
// again clears it; picking a new one activates it and runs mode processing.
// All outcomes, including the no-documents precondition, land in the chat.
func (a *App) SelectMode(ctx context.Context, mode model.Mode) error {
	if !model.ValidMode(mode) {
		return fmt.Errorf("unknown mode %q", mode)
	}
	if a.Store.Snapshot().ActiveMode == mode {
		a.Store.SetActiveMode("")
		return nil
	}
	a.Store.SetActiveMode(mode)
	return a.Processor.Process(ctx, mode)
}

// ToggleVision flips Vision Tutor mode. Activating it with documents on
// hand opens the selector so the user picks the query context.
func (a *App) ToggleVision() {
	st := a.Store.Snapshot()
	if st.VisionActive {
		a.CloseVision()
		return
	}
	a.Store.SetVisionActive(true)
	if st.HasDocuments() {
		a.Store.SetShowSelector(true)
	}
}

// CloseVision stops any in-flight voice query and leaves vision mode.
func (a *App) CloseVision() {
	a.Pipeline.Stop()
	a.Store.SetVisionActive(false)
	a.Store.SetShowSelector(false)
	_ = a.Store.SetActiveDocument(nil)
}

// AskQuestion sends a free-text question scoped to the active document and
// mode. The answer, or the failure reason, is appended as an assistant
// message; errors never propagate past this call.
func (a *App) AskQuestion(ctx context.Context, question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		return
	}
	_ = a.Store.AppendMessage(model.Message{Role: model.RoleUser, Content: question})

	st := a.Store.Snapshot()
	req := gateway.AskRequest{
		SessionID: a.SessionID,
		Question:  question,
		Mode:      st.ActiveMode,
	}
	if st.ActiveDocument != nil {
		req.DocID = st.ActiveDocument.ID
	}

	result, err := a.Gateway.Ask(ctx, req)
	if err != nil {
		_ = a.Store.AppendMessage(model.Message{
			Role:    model.RoleAssistant,
			Content: "I couldn't answer that: " + err.Error(),
		})
		return
	}

	msg := model.Message{Role: model.RoleAssistant, Content: formatAskResult(result)}
	if len(result.Hits) > 0 {
		msg.SourceRef = &model.SourceRef{
			DocumentName: result.Hits[0].Filename,
			PageNumber:   result.Hits[0].PageIndex + 1,
		}
	}
	_ = a.Store.AppendMessage(msg)
}

// Summaries fetches session-scoped bullet summaries and appends them as one
// assistant message.
func (a *App) Summaries(ctx context.Context, maxItems int) {
	if maxItems <= 0 {
		maxItems = 6
	}
	st := a.Store.Snapshot()
	if !st.HasDocuments() {
		_ = a.Store.AppendMessage(model.Message{
			Role:    model.RoleAssistant,
			Content: "Please upload a document first - there is nothing to summarize yet.",
		})
		return
	}

	docID := ""
	if st.ActiveDocument != nil {
		docID = st.ActiveDocument.ID
	}
	result, err := a.Gateway.ChatMode(ctx, a.SessionID, maxItems, docID)
	if err != nil {
		_ = a.Store.AppendMessage(model.Message{
			Role:    model.RoleAssistant,
			Content: "Summaries failed: " + err.Error(),
		})
		return
	}

	var b strings.Builder
	for i, s := range result.Summaries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("## " + s.Filename)
		for _, bullet := range s.Bullets {
			b.WriteString("\n- " + bullet)
		}
	}
	content := b.String()
	if content == "" {
		content = "No summaries available."
	}
	_ = a.Store.AppendMessage(model.Message{Role: model.RoleAssistant, Content: content})
}

func formatAskResult(result *gateway.AskResult) string {
	if result == nil {
		return "No answer."
	}
	if result.Answer != "" {
		return result.Answer
	}
	if len(result.Sections) == 0 {
		return "No answer."
	}
	var b strings.Builder
	for i, sec := range result.Sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if sec.Filename != "" {
			fmt.Fprintf(&b, "%s (page %d):", sec.Filename, sec.PageIndex+1)
		}
		for _, bullet := range sec.Bullets {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- " + bullet)
		}
	}
	return b.String()
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
