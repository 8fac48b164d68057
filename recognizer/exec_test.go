package recognizer

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestNewExec(t *testing.T) {
	rec, err := NewExec(`whisper-cli --model "/opt/models/small en.bin" --device default`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"whisper-cli", "--model", "/opt/models/small en.bin", "--device", "default"}
	if len(rec.cmd) != len(want) {
		t.Fatalf("parsed %d args, want %d: %v", len(rec.cmd), len(want), rec.cmd)
	}
	for i := range want {
		if rec.cmd[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, rec.cmd[i], want[i])
		}
	}
}

func TestNewExecEmpty(t *testing.T) {
	if _, err := NewExec(""); err == nil {
		t.Error("expected error for empty command")
	}
	if _, err := NewExec(`"unterminated`); err == nil {
		t.Error("expected error for bad quoting")
	}
}

func TestBuildArgs(t *testing.T) {
	cmd := []string{"engine", "--model", "small"}
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"bare", Options{}, []string{"--model", "small"}},
		{"language", Options{Language: "es-ES"}, []string{"--model", "small", "--language", "es-ES"}},
		{
			"single utterance",
			Options{Language: "en-US", SingleUtterance: true},
			[]string{"--model", "small", "--language", "en-US", "--single-utterance"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildArgs(cmd, tt.opts)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("arg %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseUtterance(t *testing.T) {
	tests := []struct {
		name     string
		out      string
		wantText string
		wantConf float64
		wantErr  bool
	}{
		{
			name:     "plain result",
			out:      `{"text":"paracetamol dosage","confidence":0.93}`,
			wantText: "paracetamol dosage",
			wantConf: 0.93,
		},
		{
			name:     "progress lines before result",
			out:      "loading model\nlistening...\n{\"text\":\"aspirin\",\"confidence\":0.5}",
			wantText: "aspirin",
			wantConf: 0.5,
		},
		{
			name:     "missing confidence defaults to full",
			out:      `{"text":"ibuprofen"}`,
			wantText: "ibuprofen",
			wantConf: 1.0,
		},
		{
			name:     "whitespace trimmed",
			out:      `{"text":"  metformin  ","confidence":1}`,
			wantText: "metformin",
			wantConf: 1.0,
		},
		{name: "not json", out: "segfault at 0x0", wantErr: true},
		{name: "confidence above one", out: `{"text":"x","confidence":1.5}`, wantErr: true},
		{name: "negative confidence", out: `{"text":"x","confidence":-0.1}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseUtterance([]byte(tt.out))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.Text != tt.wantText {
				t.Errorf("text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestListenParsesEngineOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	rec, err := NewExec(`sh -c 'printf %s "{\"text\":\"take two aspirin\",\"confidence\":0.92}"'`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := rec.Listen(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "take two aspirin" || got.Confidence != 0.92 {
		t.Errorf("got %+v", got)
	}
}

func TestListenBusyAndStop(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	rec, err := NewExec("sleep 5")
	if err != nil {
		t.Fatal(err)
	}

	type result struct {
		utt Utterance
		err error
	}
	done := make(chan result, 1)
	go func() {
		utt, err := rec.Listen(context.Background(), Options{})
		done <- result{utt, err}
	}()

	time.Sleep(200 * time.Millisecond)
	if _, err := rec.Listen(context.Background(), Options{}); !errors.Is(err, ErrBusy) {
		t.Errorf("second Listen err = %v, want ErrBusy", err)
	}

	rec.Stop()
	select {
	case res := <-done:
		// Interrupted before any output: empty result, no error.
		if res.err != nil {
			t.Errorf("interrupted Listen err = %v", res.err)
		}
		if res.utt.Text != "" {
			t.Errorf("interrupted Listen text = %q, want empty", res.utt.Text)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not interrupt the engine")
	}
}

func TestListenTimeoutMeansNoSpeech(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	rec, err := NewExec("sleep 5")
	if err != nil {
		t.Fatal(err)
	}
	_, err = rec.Listen(context.Background(), Options{Timeout: 150 * time.Millisecond})
	if !errors.Is(err, ErrNoSpeech) {
		t.Errorf("err = %v, want ErrNoSpeech", err)
	}
}

func TestListenCommandFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	rec, err := NewExec(`sh -c 'echo "model not found" >&2; exit 3'`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = rec.Listen(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error should carry stderr, got: %v", err)
	}
}

func TestFakeScript(t *testing.T) {
	fake := NewFake(
		Result{Err: ErrBusy},
		Result{Utterance: Utterance{Text: "omeprazole", Confidence: 0.8}},
	)

	if _, err := fake.Listen(context.Background(), Options{Language: "en-US"}); !errors.Is(err, ErrBusy) {
		t.Errorf("first call err = %v, want ErrBusy", err)
	}
	utt, err := fake.Listen(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if utt.Text != "omeprazole" {
		t.Errorf("text = %q", utt.Text)
	}
	if fake.Calls() != 2 {
		t.Errorf("calls = %d, want 2", fake.Calls())
	}
	if fake.LastOptions().Language != "" {
		t.Errorf("last options = %+v", fake.LastOptions())
	}
}

func TestFakeHoldUntilStop(t *testing.T) {
	fake := NewFake(Result{Utterance: Utterance{Text: "late"}})
	fake.HoldUntilStop()

	done := make(chan Utterance, 1)
	go func() {
		utt, _ := fake.Listen(context.Background(), Options{})
		done <- utt
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Listen returned before Stop")
	default:
	}

	fake.Stop()
	select {
	case utt := <-done:
		if utt.Text != "late" {
			t.Errorf("text = %q", utt.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after Stop")
	}
	if fake.Stops() != 1 {
		t.Errorf("stops = %d, want 1", fake.Stops())
	}
}
