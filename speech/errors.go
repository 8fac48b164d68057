package speech

import (
	"errors"
	"fmt"

	"github.com/varun-cu-unv/MedAssist/audio"
	"github.com/varun-cu-unv/MedAssist/transcribe"
)

// Code classifies a capture failure. Codes double as message-catalog keys
// so the UI can show every failure in the user's language.
type Code string

const (
	CodePermissionDenied Code = "permission_denied"
	CodeDeviceNotFound   Code = "device_not_found"
	CodeCaptureFailed    Code = "capture_failed"
	CodeNoSpeech         Code = "no_speech"
	CodeNetworkFailure   Code = "network_failure"
	CodeRecognizerBusy   Code = "recognizer_busy"
	CodeEmptyCapture     Code = "empty_capture"
	CodeTranscription    Code = "transcription_failed"
)

// CaptureError is a classified capture failure. Message is the English
// diagnostic for logs; the UI localizes via LocaleKey.
type CaptureError struct {
	Code    Code
	Message string
	Err     error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// LocaleKey returns the message-catalog key for this failure.
func (e *CaptureError) LocaleKey() string { return "err." + string(e.Code) }

// classifyAcquire sorts microphone acquisition failures into the codes the
// UI distinguishes.
func classifyAcquire(err error) *CaptureError {
	switch {
	case errors.Is(err, audio.ErrAccessDenied):
		return &CaptureError{Code: CodePermissionDenied, Message: "microphone access denied", Err: err}
	case errors.Is(err, audio.ErrNoDevice):
		return &CaptureError{Code: CodeDeviceNotFound, Message: "no microphone found", Err: err}
	default:
		return &CaptureError{Code: CodeCaptureFailed, Message: "microphone capture failed", Err: err}
	}
}

// classifyTranscribe keeps the service's own message when it reported the
// failure; anything else is a transport problem.
func classifyTranscribe(err error) *CaptureError {
	var serr *transcribe.ServerError
	if errors.As(err, &serr) {
		return &CaptureError{Code: CodeTranscription, Message: serr.Message, Err: err}
	}
	return &CaptureError{Code: CodeNetworkFailure, Message: "transcription service unreachable", Err: err}
}
