// Package voice coordinates one end-to-end "ask about what's on screen"
// interaction: speech capture, a visual snapshot, one backend round trip,
// and spoken playback. The pipeline is a singleton four-phase machine
// (idle, listening, processing, speaking) that owns at most one of its
// three external resources at any moment.
package voice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"edumentor/internal/model"
	"edumentor/internal/session"
)

// Recognizer captures one spoken utterance and returns its final transcript.
// Listen must not return before the microphone is released; cancelling the
// context aborts the capture.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Capturer produces a PNG snapshot of the designated on-screen region.
type Capturer interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Synthesizer speaks the text audibly. Speak must not return before playback
// finishes; cancelling the context stops the audio immediately.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Asker is the slice of the backend gateway the pipeline needs.
type Asker interface {
	VisionAsk(ctx context.Context, sessionID, query string, imagePNG []byte, selectedDocIDs []string) (string, error)
}

// Snapshot is the externally visible pipeline state.
type Snapshot struct {
	Phase      model.VoicePhase
	Transcript string
	Answer     string
	Err        string
}

var errEmptyCapture = errors.New("snapshot capture produced an empty image")

type Pipeline struct {
	store     *session.Store
	gw        Asker
	sessionID string

	// Recognizer and Synthesizer may be nil when the host environment lacks
	// the capability; the pipeline degrades per phase rules instead of
	// failing hard.
	recognizer Recognizer
	capturer   Capturer
	synth      Synthesizer

	// AskTimeout bounds the backend round trip. The call itself is never
	// user-cancelled; a cancelled query just records the answer silently.
	AskTimeout time.Duration

	mu         sync.Mutex
	phase      model.VoicePhase
	transcript string
	answer     string
	errText    string
	gen        int
	discarded  bool // user backed out of the current query's processing
	stageStop  context.CancelFunc

	updates chan Snapshot
}

func NewPipeline(store *session.Store, gw Asker, sessionID string, rec Recognizer, capt Capturer, synth Synthesizer) *Pipeline {
	return &Pipeline{
		store:      store,
		gw:         gw,
		sessionID:  sessionID,
		recognizer: rec,
		capturer:   capt,
		synth:      synth,
		AskTimeout: 60 * time.Second,
		updates:    make(chan Snapshot, 32),
	}
}

// Updates delivers a snapshot after every phase or text change. Old entries
// are dropped under backpressure; the latest state always gets through.
func (p *Pipeline) Updates() <-chan Snapshot { return p.updates }

// Snapshot returns the current pipeline state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Pipeline) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:      p.phase,
		Transcript: p.transcript,
		Answer:     p.answer,
		Err:        p.errText,
	}
}

func (p *Pipeline) notifyLocked() {
	snap := p.snapshotLocked()
	for {
		select {
		case p.updates <- snap:
			return
		default:
		}
		select {
		case <-p.updates:
		default:
		}
	}
}

// Toggle is the single phase-overloaded control: idle starts a query,
// listening and processing cancel it, speaking stops the audio. It never
// queues a second query while one is in flight.
func (p *Pipeline) Toggle(ctx context.Context) {
	p.mu.Lock()
	switch p.phase {
	case model.VoiceIdle:
		p.startLocked(ctx)
	case model.VoiceListening:
		stop := p.stageStop
		p.stageStop = nil
		p.gen++ // discard the recognizer completion outright
		p.phase = model.VoiceIdle
		p.notifyLocked()
		p.mu.Unlock()
		if stop != nil {
			stop()
		}
		return
	case model.VoiceProcessing:
		// The network call is allowed to complete; its answer is recorded
		// but not spoken.
		p.discarded = true
		p.phase = model.VoiceIdle
		p.notifyLocked()
	case model.VoiceSpeaking:
		stop := p.stageStop
		p.stageStop = nil
		p.gen++
		p.phase = model.VoiceIdle
		p.notifyLocked()
		p.mu.Unlock()
		if stop != nil {
			stop()
		}
		return
	}
	p.mu.Unlock()
}

// Stop aborts whatever the pipeline is doing and returns it to idle. Used
// when the Vision Tutor view closes.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.phase == model.VoiceIdle {
		p.mu.Unlock()
		return
	}
	stop := p.stageStop
	p.stageStop = nil
	p.gen++
	p.phase = model.VoiceIdle
	p.notifyLocked()
	p.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// startLocked begins a new query. Preconditions: a non-empty selection set
// (otherwise the selector opens and the pipeline stays idle) and a speech
// recognition capability.
func (p *Pipeline) startLocked(ctx context.Context) {
	selected := p.store.Snapshot().SelectedDocIDs
	if len(selected) == 0 {
		p.mu.Unlock()
		p.store.SetShowSelector(true)
		p.mu.Lock()
		return
	}
	if p.recognizer == nil {
		p.errText = "speech recognition is not available on this system"
		p.notifyLocked()
		return
	}

	p.gen++
	gen := p.gen
	p.discarded = false
	p.phase = model.VoiceListening
	p.transcript = ""
	p.answer = ""
	p.errText = ""

	listenCtx, stop := context.WithCancel(ctx)
	p.stageStop = stop
	p.notifyLocked()

	go p.run(ctx, listenCtx, gen, selected)
}

// run drives one query through its stages. Each stage returns its resource
// before the next begins, so the pipeline never holds two at once.
func (p *Pipeline) run(ctx, listenCtx context.Context, gen int, selected []string) {
	transcript, err := p.recognizer.Listen(listenCtx)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.stageStop = nil
	if err != nil || strings.TrimSpace(transcript) == "" {
		if err != nil && !errors.Is(err, context.Canceled) {
			p.errText = err.Error()
		}
		p.phase = model.VoiceIdle
		p.notifyLocked()
		p.mu.Unlock()
		return
	}
	p.transcript = transcript
	p.phase = model.VoiceProcessing
	p.notifyLocked()
	p.mu.Unlock()

	answer, err := p.captureAndAsk(ctx, transcript, selected)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.errText = err.Error()
		p.phase = model.VoiceIdle
		p.notifyLocked()
		p.mu.Unlock()
		return
	}
	p.answer = answer
	if p.discarded || strings.TrimSpace(answer) == "" || p.synth == nil {
		// Recorded for display; nothing to speak.
		p.phase = model.VoiceIdle
		p.notifyLocked()
		p.mu.Unlock()
		return
	}
	speakCtx, stop := context.WithCancel(ctx)
	p.stageStop = stop
	p.phase = model.VoiceSpeaking
	p.notifyLocked()
	p.mu.Unlock()

	speakErr := p.synth.Speak(speakCtx, answer)
	stop()

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.stageStop = nil
	if speakErr != nil && !errors.Is(speakErr, context.Canceled) {
		p.errText = speakErr.Error()
	}
	p.phase = model.VoiceIdle
	p.notifyLocked()
	p.mu.Unlock()
}

func (p *Pipeline) captureAndAsk(ctx context.Context, transcript string, selected []string) (string, error) {
	image, err := p.capturer.Capture(ctx)
	if err != nil {
		return "", err
	}
	if len(image) == 0 {
		return "", errEmptyCapture
	}

	askCtx := ctx
	if p.AskTimeout > 0 {
		var cancel context.CancelFunc
		askCtx, cancel = context.WithTimeout(ctx, p.AskTimeout)
		defer cancel()
	}
	return p.gw.VisionAsk(askCtx, p.sessionID, transcript, image, selected)
}
