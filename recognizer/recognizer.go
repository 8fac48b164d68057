// Package recognizer runs an external speech engine that captures the
// microphone itself and prints one recognized utterance as JSON on stdout.
package recognizer

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a single listening window when the caller sets none.
const DefaultTimeout = 30 * time.Second

// Options tune one listening window.
type Options struct {
	// Language is the BCP-47 tag handed to the engine, e.g. "en-US".
	Language string
	// SingleUtterance asks the engine to stop after the first final result.
	SingleUtterance bool
	// Timeout bounds the window; zero means DefaultTimeout.
	Timeout time.Duration
}

// Utterance is one recognized result. Confidence is whatever the engine
// reported, untouched.
type Utterance struct {
	Text       string
	Confidence float64
}

var (
	// ErrBusy means a listening window is already open.
	ErrBusy = errors.New("recognizer busy")
	// ErrNoSpeech means the window closed without the engine hearing anything.
	ErrNoSpeech = errors.New("no speech detected")
)

// Recognizer abstracts the speech engine. Listen blocks for the whole
// window; Stop interrupts it early and lets the engine flush a final result.
type Recognizer interface {
	Listen(ctx context.Context, opts Options) (Utterance, error)
	Stop()
}
