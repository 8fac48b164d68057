// Package doctor runs interactive environment checks: microphone capture
// and encoding, the configured speech engine, the MedAssist service, and
// the clipboard.
package doctor

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/varun-cu-unv/MedAssist/audio"
	"github.com/varun-cu-unv/MedAssist/clipboard"
	"github.com/varun-cu-unv/MedAssist/encoder"
	"github.com/varun-cu-unv/MedAssist/recognizer"
)

const recordSeconds = 3

// Run executes the checks against the given service URL and optional
// speech engine command. Exit code: 0 when every check passes, else 1.
func Run(serverURL, recognizerCmd string) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("medassist doctor - environment checks")
	fmt.Println("=====================================")

	allPass := checkMicrophone()
	if !checkRecognizer(recognizerCmd) {
		allPass = false
	}
	if !checkServer(serverURL) {
		allPass = false
	}
	if !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

// checkMicrophone records a few seconds from the default device and runs
// the take through the negotiated encoder.
func checkMicrophone() bool {
	fmt.Println()
	fmt.Println("[1/4] Microphone capture and encoding")

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	devices, err := actx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}
	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, d.Name)
	}

	format, factory := encoder.Negotiate()
	enc, err := factory()
	if err != nil {
		fmt.Printf("  FAIL: encoder %s: %v\n", format, err)
		return false
	}

	fmt.Printf("  Recording %d seconds (%s)", recordSeconds, format)
	pcm, err := record(actx, recordSeconds*time.Second)
	if err != nil {
		fmt.Printf("\n  FAIL: recording error: %v\n", err)
		return false
	}
	if len(pcm) == 0 {
		fmt.Println("\n  FAIL: no audio captured")
		return false
	}

	samples := make([]int16, 0, len(pcm)/2)
	for i := 0; i+1 < len(pcm); i += 2 {
		samples = append(samples, int16(binary.LittleEndian.Uint16(pcm[i:])))
	}
	for len(samples) > 0 {
		n := min(len(samples), encoder.BlockSize)
		if err := enc.EncodeBlock(samples[:n]); err != nil {
			fmt.Printf("\n  FAIL: encode error: %v\n", err)
			return false
		}
		samples = samples[n:]
	}
	if err := enc.Close(); err != nil {
		fmt.Printf("\n  FAIL: encoder close: %v\n", err)
		return false
	}

	fmt.Printf("\n  PASS: captured %.1f KB raw, %.1f KB %s\n",
		float64(len(pcm))/1024, float64(len(enc.Bytes()))/1024, format)
	return true
}

func record(actx audio.Context, d time.Duration) ([]byte, error) {
	dev, err := actx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	var mu sync.Mutex
	var buf []byte
	dev.SetCallback(func(data []byte, _ uint32) {
		mu.Lock()
		buf = append(buf, data...)
		mu.Unlock()
	})

	if err := dev.Start(); err != nil {
		return nil, err
	}

	deadline := time.After(d)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Print(".")
		case <-deadline:
			dev.Stop()
			dev.ClearCallback()
			mu.Lock()
			out := buf
			mu.Unlock()
			return out, nil
		}
	}
}

// checkRecognizer opens one listening window on the configured speech
// engine. Skipped when no engine is configured; raw capture covers voice
// input then.
func checkRecognizer(command string) bool {
	fmt.Println()
	fmt.Println("[2/4] Speech engine")

	if command == "" {
		fmt.Println("  SKIP: no engine configured (raw audio capture will be used)")
		return true
	}

	rec, err := recognizer.NewExec(command)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	fmt.Println("  Speak one sentence...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	utt, err := rec.Listen(ctx, recognizer.Options{Language: "en-US", SingleUtterance: true})
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	text := strings.TrimSpace(utt.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("  PASS: heard %q (confidence %.2f)\n", text, utt.Confidence)
	return true
}

func checkServer(serverURL string) bool {
	fmt.Println()
	fmt.Println("[3/4] MedAssist service")

	url := strings.TrimRight(serverURL, "/") + "/healthz"
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  FAIL: %s answered %d\n", url, resp.StatusCode)
		return false
	}
	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil || health.Status != "ok" {
		fmt.Println("  FAIL: unexpected health response")
		return false
	}

	fmt.Printf("  PASS: %s is healthy\n", serverURL)
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[4/4] Clipboard")

	probe := fmt.Sprintf("medassist-doctor-%d", time.Now().UnixNano())
	if err := clipboard.Copy(probe); err != nil {
		fmt.Printf("  FAIL: copy: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: read: %v\n", err)
		return false
	}
	if got != probe {
		fmt.Println("  FAIL: clipboard round trip returned different text")
		return false
	}

	fmt.Println("  PASS: clipboard round trip")
	return true
}
