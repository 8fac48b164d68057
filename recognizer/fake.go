package recognizer

import (
	"context"
	"sync"
)

// Result is one scripted Listen outcome for the Fake.
type Result struct {
	Utterance Utterance
	Err       error
}

// Fake is a scripted Recognizer for tests and the fake-audio mode. Each
// Listen call consumes the next Result; past the script it returns empty.
type Fake struct {
	mu       sync.Mutex
	script   []Result
	calls    int
	stops    int
	hold     chan struct{}
	lastOpts Options
}

func NewFake(script ...Result) *Fake {
	return &Fake{script: script}
}

// HoldUntilStop makes subsequent Listen calls block until Stop or context
// cancellation, mimicking an engine that waits for speech.
func (f *Fake) HoldUntilStop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = make(chan struct{})
}

func (f *Fake) Listen(ctx context.Context, opts Options) (Utterance, error) {
	f.mu.Lock()
	f.calls++
	f.lastOpts = opts
	var res Result
	if len(f.script) > 0 {
		res = f.script[0]
		f.script = f.script[1:]
	}
	hold := f.hold
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return Utterance{}, ctx.Err()
		}
	}
	return res.Utterance, res.Err
}

func (f *Fake) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if f.hold != nil {
		close(f.hold)
		f.hold = nil
	}
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *Fake) LastOptions() Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}
