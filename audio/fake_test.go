package audio

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/varun-cu-unv/MedAssist/encoder"
)

func writeTestWAV(t *testing.T, samples []int16) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, encoder.SampleRate, encoder.BitsPerSample, encoder.Channels, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &gaudio.IntBuffer{
		Data:           data,
		Format:         &gaudio.Format{NumChannels: encoder.Channels, SampleRate: encoder.SampleRate},
		SourceBitDepth: encoder.BitsPerSample,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func testTone(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(9000 * math.Sin(2*math.Pi*330*float64(i)/encoder.SampleRate))
	}
	return samples
}

func TestFakeContextReplaysWAV(t *testing.T) {
	samples := testTone(4 * fakeFrameSize)
	path := writeTestWAV(t, samples)

	ctx, err := NewFakeContext(path, false)
	if err != nil {
		t.Fatalf("NewFakeContext: %v", err)
	}
	defer ctx.Close()

	dev, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: encoder.SampleRate, Channels: encoder.Channels})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}

	var mu sync.Mutex
	var got []byte
	dev.SetCallback(func(data []byte, _ uint32) {
		mu.Lock()
		got = append(got, data...)
		mu.Unlock()
	})

	if err := dev.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	fake := dev.(*FakeCapture)
	select {
	case <-fake.AudioDone():
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not finish")
	}
	dev.Stop()

	mu.Lock()
	defer mu.Unlock()
	want := len(samples) * fakeBytesPerFrame
	if len(got) < want {
		t.Fatalf("replayed %d bytes, want at least %d", len(got), want)
	}
}

func TestFakeContextDefaultDevice(t *testing.T) {
	path := writeTestWAV(t, testTone(fakeFrameSize))
	ctx, err := NewFakeContext(path, false)
	if err != nil {
		t.Fatal(err)
	}
	dev, err := Default(ctx)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if !dev.IsDefault {
		t.Error("fake device should be flagged default")
	}
}
