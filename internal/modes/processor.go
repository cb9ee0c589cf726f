// Package modes orchestrates mode-processing calls: one user message
// announcing the action, one backend round trip over every session document,
// one assistant message with the formatted result or the failure reason.
package modes

import (
	"context"
	"time"

	"edumentor/internal/gateway"
	"edumentor/internal/model"
	"edumentor/internal/session"
)

// Gateway is the slice of the backend client the processor needs.
type Gateway interface {
	ProcessMode(ctx context.Context, mode model.Mode, sessionID string) (*gateway.ProcessModeResult, error)
}

type Processor struct {
	store     *session.Store
	gw        Gateway
	sessionID string
	// Timeout bounds one processing call; zero means the context alone
	// decides.
	Timeout time.Duration
}

func NewProcessor(store *session.Store, gw Gateway, sessionID string) *Processor {
	return &Processor{store: store, gw: gw, sessionID: sessionID}
}

const uploadFirstNotice = "Please upload a document first - learning modes need material to work with."

// Process runs one mode-processing interaction end to end. Failures never
// escape: every outcome lands in the chat as an assistant message, and the
// busy flag is cleared on every exit path. A call made while another is in
// flight returns model.ErrBusy and appends nothing.
func (p *Processor) Process(ctx context.Context, mode model.Mode) error {
	if !p.store.BeginProcessing() {
		return model.ErrBusy
	}
	defer p.store.EndProcessing()

	if !p.store.Snapshot().HasDocuments() {
		_ = p.store.AppendMessage(model.Message{
			Role:    model.RoleAssistant,
			Content: uploadFirstNotice,
		})
		return nil
	}

	_ = p.store.AppendMessage(model.Message{
		Role:    model.RoleUser,
		Content: "Start " + mode.Label(),
	})

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	result, err := p.gw.ProcessMode(ctx, mode, p.sessionID)
	if err != nil {
		_ = p.store.AppendMessage(model.Message{
			Role:    model.RoleAssistant,
			Content: mode.Label() + " failed: " + err.Error(),
		})
		return nil
	}

	_ = p.store.AppendMessage(model.Message{
		Role:       model.RoleAssistant,
		Content:    FormatResult(mode, result),
		ModeResult: result,
	})
	return nil
}
