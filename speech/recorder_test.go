package speech

import (
	"context"
	"testing"
	"time"
)

func nextUpdate(t *testing.T, r *Recorder) Update {
	t.Helper()
	select {
	case up := <-r.Updates():
		return up
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func expectStates(t *testing.T, r *Recorder, want ...State) []Update {
	t.Helper()
	ups := make([]Update, 0, len(want))
	for _, w := range want {
		up := nextUpdate(t, r)
		if up.State != w {
			t.Fatalf("state = %v, want %v (update %+v)", up.State, w, up)
		}
		ups = append(ups, up)
	}
	return ups
}

func expectNoUpdate(t *testing.T, r *Recorder) {
	t.Helper()
	select {
	case up := <-r.Updates():
		t.Fatalf("unexpected update %+v", up)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitReleased(t *testing.T, r *Recorder) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.Active() {
		if time.Now().After(deadline) {
			t.Fatal("session never released")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRecorderSuccess(t *testing.T) {
	tx := Transcript{Text: "paracetamol dosage", Confidence: 0.9, Source: StrategyNative}
	fake := NewFakeBackend(
		Event{Kind: EventStarted},
		Event{Kind: EventResult, Transcript: tx},
		Event{Kind: EventEnded},
	)
	r := NewRecorder(fake)

	id := r.Start(context.Background(), "en")
	if id == "" {
		t.Fatal("Start returned no session id")
	}
	if fake.LastLang() != "en" {
		t.Errorf("backend lang = %q", fake.LastLang())
	}

	ups := expectStates(t, r, StateRecording, StateFinalizing, StateSucceeded)
	for _, up := range ups {
		if up.Session != id {
			t.Errorf("update session = %q, want %q", up.Session, id)
		}
	}
	if got := ups[2].Transcript; got != tx {
		t.Errorf("transcript = %+v, want %+v", got, tx)
	}

	waitReleased(t, r)
	if r.State() != StateSucceeded {
		t.Errorf("state = %v, want succeeded", r.State())
	}
}

func TestRecorderFailure(t *testing.T) {
	fake := NewFakeBackend(
		Event{Kind: EventStarted},
		Event{Kind: EventError, Err: &CaptureError{Code: CodePermissionDenied, Message: "denied"}},
		Event{Kind: EventEnded},
	)
	r := NewRecorder(fake)
	r.Start(context.Background(), "en")

	ups := expectStates(t, r, StateRecording, StateFailed)
	if ups[1].Err == nil || ups[1].Err.Code != CodePermissionDenied {
		t.Errorf("err = %+v, want permission_denied", ups[1].Err)
	}
	// The trailing end event must not produce another transition.
	expectNoUpdate(t, r)
}

func TestRecorderEndWithoutResult(t *testing.T) {
	fake := NewFakeBackend(
		Event{Kind: EventStarted},
		Event{Kind: EventEnded},
	)
	r := NewRecorder(fake)
	r.Start(context.Background(), "en")

	ups := expectStates(t, r, StateRecording, StateFailed)
	if ups[1].Err == nil || ups[1].Err.Code != CodeEmptyCapture {
		t.Errorf("err = %+v, want empty_capture", ups[1].Err)
	}
}

func TestRecorderStartWhileActiveIsNoOp(t *testing.T) {
	tx := Transcript{Text: "aspirin", Confidence: 1.0, Source: StrategyRawAudio}
	fake := NewFakeBackend(
		Event{Kind: EventStarted},
		Event{Kind: EventResult, Transcript: tx},
		Event{Kind: EventEnded},
	)
	fake.HoldBefore(1) // wait for Stop before delivering the result
	r := NewRecorder(fake)

	id := r.Start(context.Background(), "en")
	expectStates(t, r, StateRecording)

	if second := r.Start(context.Background(), "en"); second != "" {
		t.Errorf("second Start returned %q, want empty", second)
	}
	if fake.Starts() != 1 {
		t.Errorf("backend starts = %d, want 1", fake.Starts())
	}

	r.Stop()
	ups := expectStates(t, r, StateFinalizing, StateSucceeded)
	if ups[1].Session != id {
		t.Errorf("session = %q, want %q", ups[1].Session, id)
	}
	if fake.Stops() != 1 {
		t.Errorf("backend stops = %d, want 1", fake.Stops())
	}
}

func TestRecorderStopOnIdleIsNoOp(t *testing.T) {
	fake := NewFakeBackend()
	r := NewRecorder(fake)
	r.Stop()
	expectNoUpdate(t, r)
	if fake.Stops() != 0 {
		t.Errorf("backend stops = %d, want 0", fake.Stops())
	}
}

func TestRecorderRepeatedStopSingleFinalizing(t *testing.T) {
	fake := NewFakeBackend(
		Event{Kind: EventStarted},
		Event{Kind: EventResult, Transcript: Transcript{Text: "x", Confidence: 1.0}},
		Event{Kind: EventEnded},
	)
	fake.HoldBefore(1)
	r := NewRecorder(fake)
	r.Start(context.Background(), "en")
	expectStates(t, r, StateRecording)

	r.Stop()
	r.Stop()
	// Exactly one Finalizing despite two stop requests.
	expectStates(t, r, StateFinalizing, StateSucceeded)
}

func TestRecorderRestartAfterTerminal(t *testing.T) {
	fake := NewFakeBackend(
		Event{Kind: EventStarted},
		Event{Kind: EventError, Err: &CaptureError{Code: CodeNoSpeech, Message: "silence"}},
		Event{Kind: EventEnded},
	)
	r := NewRecorder(fake)

	first := r.Start(context.Background(), "en")
	expectStates(t, r, StateRecording, StateFailed)
	waitReleased(t, r)

	second := r.Start(context.Background(), "en")
	if second == "" {
		t.Fatal("restart after terminal state was rejected")
	}
	if second == first {
		t.Error("restart reused the session id")
	}
	expectStates(t, r, StateRecording, StateFailed)
	if fake.Starts() != 2 {
		t.Errorf("backend starts = %d, want 2", fake.Starts())
	}
}

func TestRecorderIgnoresEventsAfterTerminal(t *testing.T) {
	fake := NewFakeBackend(
		Event{Kind: EventStarted},
		Event{Kind: EventError, Err: &CaptureError{Code: CodeNetworkFailure, Message: "down"}},
		Event{Kind: EventResult, Transcript: Transcript{Text: "ghost", Confidence: 1.0}},
		Event{Kind: EventEnded},
	)
	r := NewRecorder(fake)
	r.Start(context.Background(), "en")

	expectStates(t, r, StateRecording, StateFailed)
	expectNoUpdate(t, r)
	if r.State() != StateFailed {
		t.Errorf("state = %v, want failed", r.State())
	}
}

func TestRecorderBackendClosesWithoutEnd(t *testing.T) {
	fake := NewFakeBackend(
		Event{Kind: EventStarted},
	)
	r := NewRecorder(fake)
	r.Start(context.Background(), "en")

	ups := expectStates(t, r, StateRecording, StateFailed)
	if ups[1].Err == nil || ups[1].Err.Code != CodeEmptyCapture {
		t.Errorf("err = %+v, want empty_capture", ups[1].Err)
	}
	waitReleased(t, r)
}
