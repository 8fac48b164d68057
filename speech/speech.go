// Package speech turns a spoken query into text. Two capture strategies
// exist: a native speech engine that listens on the microphone itself, and
// raw audio capture that records, encodes, and ships the audio to the
// MedAssist service for transcription. A Recorder drives whichever backend
// was selected through one session state machine and publishes every
// transition on a single update channel.
package speech

import "context"

// Strategy identifies which capture path produced a transcript.
type Strategy string

const (
	StrategyNative   Strategy = "native"
	StrategyRawAudio Strategy = "rawaudio"
)

// Capabilities describes what the running host offers for voice input.
type Capabilities struct {
	// NativeRecognizer is true when a speech engine command is configured.
	NativeRecognizer bool
	// Microphone is true when a capture device can be opened.
	Microphone bool
}

// SelectStrategy is deterministic: the native engine when one is configured,
// else raw capture. Raw capture is always attemptable; without a microphone
// the session fails at start with a classified DeviceNotFound, and typed
// queries keep working.
func SelectStrategy(c Capabilities) Strategy {
	if c.NativeRecognizer {
		return StrategyNative
	}
	return StrategyRawAudio
}

// Transcript is one finished recognition, normalized across strategies.
// Remote transcriptions always carry confidence 1.0 because the service
// reports none; native confidence is the engine's own estimate, unmodified.
type Transcript struct {
	Text       string
	Confidence float64
	Source     Strategy
}

// Backend runs one capture attempt per Start call. Start never fails
// synchronously: every outcome, including immediate acquisition failures,
// arrives as events on the returned channel, which the backend closes after
// EventEnded. Stop is advisory and safe to call at any time.
type Backend interface {
	Name() string
	Start(ctx context.Context, lang string) <-chan Event
	Stop()
}
