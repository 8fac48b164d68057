package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"
)

// ExecRecognizer shells out to a speech engine binary. The engine opens the
// microphone on its own; we only manage the process and read its stdout.
type ExecRecognizer struct {
	cmd []string

	mu      sync.Mutex
	proc    *os.Process
	busy    bool
	stopped bool
}

type wireUtterance struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
}

// NewExec parses the engine command line. Quoting follows shell rules, so
// commands like `whisper-cli --model "/path with spaces/small.bin"` work.
func NewExec(command string) (*ExecRecognizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse recognizer command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("recognizer command is empty")
	}
	return &ExecRecognizer{cmd: args}, nil
}

func buildArgs(cmd []string, opts Options) []string {
	args := append([]string{}, cmd[1:]...)
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	if opts.SingleUtterance {
		args = append(args, "--single-utterance")
	}
	return args
}

// Listen runs the engine for one window and returns its final utterance.
// A second Listen while one is in flight fails with ErrBusy. A window
// interrupted by Stop before the engine produced anything returns an empty
// Utterance and no error; a window that ran its course silent returns
// ErrNoSpeech.
func (r *ExecRecognizer) Listen(ctx context.Context, opts Options) (Utterance, error) {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return Utterance{}, ErrBusy
	}
	r.busy = true
	r.stopped = false
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.busy = false
		r.proc = nil
		r.mu.Unlock()
	}()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.cmd[0], buildArgs(r.cmd, opts)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Engines flush their final hypothesis on SIGINT; hard-kill only after
	// the grace period.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 3 * time.Second

	if err := cmd.Start(); err != nil {
		return Utterance{}, fmt.Errorf("start recognizer: %w", err)
	}
	r.mu.Lock()
	r.proc = cmd.Process
	r.mu.Unlock()

	err := cmd.Wait()

	r.mu.Lock()
	interrupted := r.stopped
	r.mu.Unlock()

	out := bytes.TrimSpace(stdout.Bytes())
	switch {
	case err != nil && !interrupted && ctx.Err() == nil:
		return Utterance{}, fmt.Errorf("recognizer failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	case len(out) > 0:
		return parseUtterance(out)
	case interrupted:
		return Utterance{}, nil
	default:
		return Utterance{}, ErrNoSpeech
	}
}

// Stop interrupts the running window. Safe to call when idle.
func (r *ExecRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.busy || r.proc == nil {
		return
	}
	r.stopped = true
	if err := r.proc.Signal(os.Interrupt); err != nil {
		r.proc.Kill()
	}
}

// parseUtterance decodes the engine's result. Engines may print progress
// lines first; the last non-empty line carries the JSON result.
func parseUtterance(out []byte) (Utterance, error) {
	lines := bytes.Split(out, []byte("\n"))
	last := bytes.TrimSpace(lines[len(lines)-1])

	var w wireUtterance
	if err := json.Unmarshal(last, &w); err != nil {
		return Utterance{}, fmt.Errorf("decode recognizer output: %w", err)
	}

	conf := 1.0 // engines that never score report full confidence
	if w.Confidence != nil {
		conf = *w.Confidence
	}
	if conf < 0 || conf > 1 {
		return Utterance{}, fmt.Errorf("recognizer confidence %v out of range", conf)
	}
	return Utterance{Text: strings.TrimSpace(w.Text), Confidence: conf}, nil
}
