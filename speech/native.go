package speech

import (
	"context"
	"errors"
	"time"

	"github.com/varun-cu-unv/MedAssist/locale"
	"github.com/varun-cu-unv/MedAssist/recognizer"
)

// busyRetryDelay is how long to wait before the single retry after the
// engine reported itself busy.
const busyRetryDelay = 250 * time.Millisecond

// NativeBackend captures through a platform speech engine that opens the
// microphone itself and reports its own confidence.
type NativeBackend struct {
	rec        recognizer.Recognizer
	retryDelay time.Duration
}

func NewNative(rec recognizer.Recognizer) *NativeBackend {
	return &NativeBackend{rec: rec, retryDelay: busyRetryDelay}
}

func (b *NativeBackend) Name() string { return string(StrategyNative) }

func (b *NativeBackend) Stop() { b.rec.Stop() }

// Start opens one single-utterance listening window. lang is the UI
// language code; the engine receives the full speech locale.
func (b *NativeBackend) Start(ctx context.Context, lang string) <-chan Event {
	events := make(chan Event, 4)
	go func() {
		defer close(events)
		events <- Event{Kind: EventStarted}

		opts := recognizer.Options{
			Language:        locale.SpeechLocale(lang),
			SingleUtterance: true,
		}

		utt, err := b.rec.Listen(ctx, opts)
		if errors.Is(err, recognizer.ErrBusy) {
			// The engine is still winding down a previous window. Stop it
			// and retry exactly once after a short delay.
			b.rec.Stop()
			if !sleepCtx(ctx, b.retryDelay) {
				events <- Event{Kind: EventEnded}
				return
			}
			utt, err = b.rec.Listen(ctx, opts)
		}

		switch {
		case errors.Is(err, recognizer.ErrBusy):
			events <- Event{Kind: EventError, Err: &CaptureError{
				Code: CodeRecognizerBusy, Message: "speech engine busy", Err: err,
			}}
		case errors.Is(err, recognizer.ErrNoSpeech):
			events <- Event{Kind: EventError, Err: &CaptureError{
				Code: CodeNoSpeech, Message: "no speech detected", Err: err,
			}}
		case err != nil:
			events <- Event{Kind: EventError, Err: &CaptureError{
				Code: CodeCaptureFailed, Message: "speech engine failed", Err: err,
			}}
		case utt.Text != "":
			events <- Event{Kind: EventResult, Transcript: Transcript{
				Text:       utt.Text,
				Confidence: utt.Confidence,
				Source:     StrategyNative,
			}}
		}
		// An empty utterance with no error means the window was interrupted
		// before the engine heard anything; the bare end event lets the
		// recorder classify it.
		events <- Event{Kind: EventEnded}
	}()
	return events
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
