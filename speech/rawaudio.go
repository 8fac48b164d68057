package speech

import (
	"context"
	"encoding/binary"
	"strings"
	"sync"
	"time"

	"github.com/varun-cu-unv/MedAssist/audio"
	"github.com/varun-cu-unv/MedAssist/encoder"
	"github.com/varun-cu-unv/MedAssist/log"
	"github.com/varun-cu-unv/MedAssist/transcribe"
)

const (
	// chunkInterval is how often buffered PCM is committed to the chunk
	// sequence while recording.
	chunkInterval = 250 * time.Millisecond
	// transcribeTimeout bounds the remote transcription round trip.
	transcribeTimeout = 30 * time.Second
)

// Transcriber is the remote client surface the raw backend needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, lang string) (*transcribe.Result, error)
}

// RawAudioBackend records the microphone, encodes the take, and sends it to
// the MedAssist service for transcription. The microphone is released the
// moment recording ends, before the network round trip begins.
type RawAudioBackend struct {
	actx     audio.Context
	device   *audio.DeviceInfo // nil means platform default
	client   Transcriber
	format   string
	factory  encoder.Factory
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func NewRawAudio(actx audio.Context, device *audio.DeviceInfo, client Transcriber) *RawAudioBackend {
	format, factory := encoder.Negotiate()
	return &RawAudioBackend{
		actx:     actx,
		device:   device,
		client:   client,
		format:   format,
		factory:  factory,
		interval: chunkInterval,
	}
}

func (b *RawAudioBackend) Name() string { return string(StrategyRawAudio) }

// Format reports the negotiated audio encoding.
func (b *RawAudioBackend) Format() string { return b.format }

func (b *RawAudioBackend) Stop() {
	b.mu.Lock()
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	b.mu.Unlock()
}

func (b *RawAudioBackend) Start(ctx context.Context, lang string) <-chan Event {
	events := make(chan Event, 4)
	stop := make(chan struct{})
	b.mu.Lock()
	b.stop = stop
	b.mu.Unlock()

	go b.capture(ctx, lang, stop, events)
	return events
}

func (b *RawAudioBackend) capture(ctx context.Context, lang string, stop chan struct{}, events chan Event) {
	defer close(events)
	defer func() {
		b.mu.Lock()
		if b.stop == stop {
			b.stop = nil
		}
		b.mu.Unlock()
	}()

	events <- Event{Kind: EventStarted}

	fail := func(cerr *CaptureError) {
		events <- Event{Kind: EventError, Err: cerr}
		events <- Event{Kind: EventEnded}
	}

	if b.actx == nil {
		fail(&CaptureError{Code: CodeDeviceNotFound, Message: "no audio capture available"})
		return
	}

	enc, err := b.factory()
	if err != nil {
		fail(&CaptureError{Code: CodeCaptureFailed, Message: "audio encoder unavailable", Err: err})
		return
	}

	dev, err := b.actx.NewCapture(b.device, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		fail(classifyAcquire(err))
		return
	}

	var pend struct {
		sync.Mutex
		buf []byte
	}
	dev.SetCallback(func(data []byte, _ uint32) {
		pend.Lock()
		pend.buf = append(pend.buf, data...)
		pend.Unlock()
	})

	if err := dev.Start(); err != nil {
		dev.ClearCallback()
		dev.Close()
		fail(classifyAcquire(err))
		return
	}

	// Encoding runs off the capture path so a slow block never delays the
	// microphone callback.
	blockChan := make(chan []int16, 64)
	encodeDone := make(chan struct{})
	var encodeErr error
	go func() {
		defer close(encodeDone)
		for block := range blockChan {
			if err := enc.EncodeBlock(block); err != nil && encodeErr == nil {
				encodeErr = err
			}
		}
	}()

	var sampleBuf []int16
	chunks := 0
	commit := func() {
		pend.Lock()
		data := pend.buf
		pend.buf = nil
		pend.Unlock()
		if len(data) == 0 {
			return
		}
		chunks++
		for i := 0; i+1 < len(data); i += 2 {
			sampleBuf = append(sampleBuf, int16(binary.LittleEndian.Uint16(data[i:])))
		}
		for len(sampleBuf) >= encoder.BlockSize {
			block := make([]int16, encoder.BlockSize)
			copy(block, sampleBuf[:encoder.BlockSize])
			sampleBuf = sampleBuf[encoder.BlockSize:]
			blockChan <- block
		}
	}

	ticker := time.NewTicker(b.interval)
loop:
	for {
		select {
		case <-ticker.C:
			commit()
		case <-stop:
			break loop
		case <-ctx.Done():
			break loop
		}
	}
	ticker.Stop()
	commit()

	// Release the microphone before the network round trip; the user is
	// done speaking and the capture must not stay open while we wait.
	dev.ClearCallback()
	dev.Stop()
	dev.Close()

	if len(sampleBuf) > 0 {
		partial := make([]int16, len(sampleBuf))
		copy(partial, sampleBuf)
		blockChan <- partial
	}
	close(blockChan)
	<-encodeDone

	if ctx.Err() != nil {
		events <- Event{Kind: EventEnded}
		return
	}
	if encodeErr != nil {
		fail(&CaptureError{Code: CodeCaptureFailed, Message: "audio encoding failed", Err: encodeErr})
		return
	}
	if err := enc.Close(); err != nil {
		fail(&CaptureError{Code: CodeCaptureFailed, Message: "audio encoding failed", Err: err})
		return
	}

	if chunks == 0 {
		fail(&CaptureError{Code: CodeEmptyCapture, Message: "no audio captured"})
		return
	}

	payload := enc.Bytes()
	tctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()
	res, err := b.client.Transcribe(tctx, payload, lang)
	if err != nil {
		fail(classifyTranscribe(err))
		return
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		fail(&CaptureError{Code: CodeNoSpeech, Message: "no speech detected"})
		return
	}

	logCaptureMetrics(b.format, enc.TotalFrames(), len(payload), res.Metrics)

	// The service reports no confidence of its own.
	events <- Event{Kind: EventResult, Transcript: Transcript{
		Text:       text,
		Confidence: 1.0,
		Source:     StrategyRawAudio,
	}}
	events <- Event{Kind: EventEnded}
}

func logCaptureMetrics(format string, frames uint64, encodedSize int, nm *transcribe.NetworkMetrics) {
	m := log.Metrics{
		AudioLengthS:  float64(frames) / float64(encoder.SampleRate),
		RawSizeKB:     float64(frames*2) / 1024,
		EncodedSizeKB: float64(encodedSize) / 1024,
	}
	if frames > 0 {
		m.CompressionPct = (1.0 - float64(encodedSize)/float64(frames*2)) * 100
	}
	connReused := false
	tlsProto := ""
	if nm != nil {
		m.DNSTimeMs = float64(nm.DNS.Milliseconds())
		m.TLSTimeMs = float64(nm.TLS.Milliseconds())
		m.TTFBMs = float64(nm.TTFB.Milliseconds())
		m.TotalTimeMs = float64(nm.Sum().Milliseconds())
		connReused = nm.ConnReused
		tlsProto = nm.TLSProtocol
	}
	log.TranscriptionMetrics(m, string(StrategyRawAudio), format, connReused, tlsProto)
}
