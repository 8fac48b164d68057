package speech

import (
	"errors"
	"fmt"
	"testing"

	"github.com/varun-cu-unv/MedAssist/audio"
	"github.com/varun-cu-unv/MedAssist/locale"
	"github.com/varun-cu-unv/MedAssist/transcribe"
)

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		want Strategy
	}{
		{"engine and mic", Capabilities{NativeRecognizer: true, Microphone: true}, StrategyNative},
		{"engine only", Capabilities{NativeRecognizer: true}, StrategyNative},
		{"mic only", Capabilities{Microphone: true}, StrategyRawAudio},
		{"nothing", Capabilities{}, StrategyRawAudio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectStrategy(tt.caps); got != tt.want {
				t.Errorf("strategy = %q, want %q", got, tt.want)
			}
		})
	}
}

// Every failure code must resolve to a real localized message, not fall
// through to a raw key.
func TestCaptureErrorLocaleKeys(t *testing.T) {
	codes := []Code{
		CodePermissionDenied,
		CodeDeviceNotFound,
		CodeCaptureFailed,
		CodeNoSpeech,
		CodeNetworkFailure,
		CodeRecognizerBusy,
		CodeEmptyCapture,
		CodeTranscription,
	}
	for _, code := range codes {
		cerr := &CaptureError{Code: code, Message: "x"}
		key := cerr.LocaleKey()
		if locale.Text("en", key) == key {
			t.Errorf("code %q has no English message for key %q", code, key)
		}
	}

	cerr := &CaptureError{Code: CodePermissionDenied}
	if cerr.LocaleKey() != locale.ErrPermissionDenied {
		t.Errorf("LocaleKey = %q, want %q", cerr.LocaleKey(), locale.ErrPermissionDenied)
	}
}

func TestCaptureErrorUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("pulse: %w", audio.ErrAccessDenied)
	cerr := classifyAcquire(wrapped)
	if !errors.Is(cerr, audio.ErrAccessDenied) {
		t.Error("CaptureError should unwrap to the cause")
	}
}

func TestClassifyAcquire(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"permission", fmt.Errorf("open: %w", audio.ErrAccessDenied), CodePermissionDenied},
		{"no device", audio.ErrNoDevice, CodeDeviceNotFound},
		{"anything else", errors.New("stream died"), CodeCaptureFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyAcquire(tt.err); got.Code != tt.want {
				t.Errorf("code = %q, want %q", got.Code, tt.want)
			}
		})
	}
}

func TestClassifyTranscribe(t *testing.T) {
	serr := &transcribe.ServerError{StatusCode: 422, Message: "could not decode audio"}
	got := classifyTranscribe(fmt.Errorf("post voice: %w", serr))
	if got.Code != CodeTranscription {
		t.Errorf("code = %q, want %q", got.Code, CodeTranscription)
	}
	if got.Message != "could not decode audio" {
		t.Errorf("message = %q, want the server's own", got.Message)
	}

	got = classifyTranscribe(errors.New("dial tcp: connection refused"))
	if got.Code != CodeNetworkFailure {
		t.Errorf("code = %q, want %q", got.Code, CodeNetworkFailure)
	}
}
