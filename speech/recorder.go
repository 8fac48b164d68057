package speech

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/varun-cu-unv/MedAssist/log"
)

// State of the capture session.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateFinalizing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Update is one state transition of a capture session. Transcript is set
// only when State is StateSucceeded, Err only when StateFailed.
type Update struct {
	Session    string
	State      State
	Transcript Transcript
	Err        *CaptureError
}

// Recorder serializes capture attempts through one backend. At most one
// session is active at a time; transitions for it are published on Updates
// in order. Stop is advisory: terminal transitions fire only on the
// backend's own result, error, or end event, never optimistically.
type Recorder struct {
	backend Backend
	updates chan Update

	mu        sync.Mutex
	state     State
	session   string
	startedAt time.Time
	endedAt   time.Time
}

func NewRecorder(backend Backend) *Recorder {
	return &Recorder{
		backend: backend,
		updates: make(chan Update, 16),
		state:   StateIdle,
	}
}

// Updates publishes every transition of the active session.
func (r *Recorder) Updates() <-chan Update { return r.updates }

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Active reports whether a capture session is in flight.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != ""
}

// Start opens a new capture session and returns its id. A call while a
// session is active is a no-op and returns the empty string; terminal
// states reset to idle here, on the next start.
func (r *Recorder) Start(ctx context.Context, lang string) string {
	r.mu.Lock()
	if r.session != "" {
		r.mu.Unlock()
		return ""
	}
	id := uuid.NewString()
	r.session = id
	r.state = StateIdle
	r.startedAt = time.Time{}
	r.endedAt = time.Time{}
	r.mu.Unlock()

	log.SessionStart(id, r.backend.Name(), lang)
	events := r.backend.Start(ctx, lang)
	go r.pump(id, events)
	return id
}

// Stop asks the backend to finish the active session. From Recording this
// moves the session to Finalizing; the terminal transition still waits for
// the backend's own event.
func (r *Recorder) Stop() {
	r.mu.Lock()
	id := r.session
	if id == "" {
		r.mu.Unlock()
		return
	}
	if r.state == StateRecording {
		r.state = StateFinalizing
		r.updates <- Update{Session: id, State: StateFinalizing}
	}
	r.mu.Unlock()
	r.backend.Stop()
}

// pump applies one session's backend events to the state machine. Events
// for a superseded session are dropped.
func (r *Recorder) pump(id string, events <-chan Event) {
	terminal := false
	for ev := range events {
		switch ev.Kind {
		case EventStarted:
			r.mu.Lock()
			if r.session == id && r.state == StateIdle {
				r.state = StateRecording
				r.startedAt = time.Now()
				r.updates <- Update{Session: id, State: StateRecording}
			}
			r.mu.Unlock()

		case EventResult:
			if terminal {
				break
			}
			terminal = true
			r.succeed(id, ev.Transcript)

		case EventError:
			if terminal {
				break
			}
			terminal = true
			r.fail(id, ev.Err)

		case EventEnded:
			// An end with no prior result or error means the attempt
			// produced nothing; Recording must not be a dead end.
			if !terminal {
				terminal = true
				r.fail(id, &CaptureError{Code: CodeEmptyCapture, Message: "capture ended without input"})
			}
		}
	}
	if !terminal {
		r.fail(id, &CaptureError{Code: CodeEmptyCapture, Message: "capture ended without input"})
	}

	r.mu.Lock()
	final := r.state
	if r.session == id {
		r.session = ""
	}
	r.mu.Unlock()
	log.SessionEnd(id, final.String())
}

func (r *Recorder) succeed(id string, tx Transcript) {
	r.mu.Lock()
	if r.session != id {
		r.mu.Unlock()
		return
	}
	if r.state != StateFinalizing {
		r.state = StateFinalizing
		r.updates <- Update{Session: id, State: StateFinalizing}
	}
	r.state = StateSucceeded
	r.endedAt = time.Now()
	r.updates <- Update{Session: id, State: StateSucceeded, Transcript: tx}
	r.mu.Unlock()

	log.Transcript(tx.Text)
	log.Confidence(tx.Confidence)
}

func (r *Recorder) fail(id string, cerr *CaptureError) {
	if cerr == nil {
		cerr = &CaptureError{Code: CodeCaptureFailed, Message: "capture failed"}
	}
	r.mu.Lock()
	if r.session != id {
		r.mu.Unlock()
		return
	}
	r.state = StateFailed
	r.endedAt = time.Now()
	r.updates <- Update{Session: id, State: StateFailed, Err: cerr}
	r.mu.Unlock()

	log.Errorf("capture session %s failed: %v", id, cerr)
}
