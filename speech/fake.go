package speech

import (
	"context"
	"sync"
)

// FakeBackend replays a scripted event sequence. Tests use it to drive the
// recorder without a microphone or speech engine.
type FakeBackend struct {
	mu       sync.Mutex
	script   []Event
	hold     int
	starts   int
	stops    int
	stopCh   chan struct{}
	lastLang string
}

func NewFakeBackend(script ...Event) *FakeBackend {
	return &FakeBackend{script: script, hold: -1}
}

// HoldBefore pauses replay before the i-th scripted event until Stop is
// called, mimicking a backend waiting on the user.
func (f *FakeBackend) HoldBefore(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = i
}

func (f *FakeBackend) Name() string { return "fake" }

func (f *FakeBackend) Start(ctx context.Context, lang string) <-chan Event {
	f.mu.Lock()
	f.starts++
	f.lastLang = lang
	stopCh := make(chan struct{})
	f.stopCh = stopCh
	script := append([]Event(nil), f.script...)
	hold := f.hold
	f.mu.Unlock()

	events := make(chan Event, len(script)+1)
	go func() {
		defer close(events)
		for i, ev := range script {
			if i == hold {
				select {
				case <-stopCh:
				case <-ctx.Done():
					return
				}
			}
			events <- ev
		}
	}()
	return events
}

func (f *FakeBackend) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if f.stopCh != nil {
		close(f.stopCh)
		f.stopCh = nil
	}
}

func (f *FakeBackend) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *FakeBackend) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *FakeBackend) LastLang() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLang
}
