package encoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
)

// HeaderSize is the fixed RIFF/PCM header length WAVEncoder emits.
const HeaderSize = 44

// WAVEncoder buffers PCM and renders a RIFF container at Close. It cannot
// fail to construct, which makes wav the negotiation default.
type WAVEncoder struct {
	mu          sync.Mutex
	pcm         bytes.Buffer
	out         []byte
	totalFrames uint64
	closed      bool
}

func NewWAV() (*WAVEncoder, error) {
	return &WAVEncoder{}, nil
}

func (e *WAVEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New("wav: encode after close")
	}
	raw := make([]byte, len(block)*2)
	for i, s := range block {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	e.pcm.Write(raw)
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WAVEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.out = renderWAV(e.pcm.Bytes())
	return nil
}

func (e *WAVEncoder) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out
}

func (e *WAVEncoder) TotalFrames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFrames
}

func (e *WAVEncoder) Name() string { return "wav" }

func renderWAV(pcm []byte) []byte {
	const (
		byteRate   = SampleRate * Channels * BitsPerSample / 8
		blockAlign = Channels * BitsPerSample / 8
	)
	buf := make([]byte, HeaderSize+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16)
	binary.LittleEndian.PutUint16(buf[20:], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:], Channels)
	binary.LittleEndian.PutUint32(buf[24:], SampleRate)
	binary.LittleEndian.PutUint32(buf[28:], byteRate)
	binary.LittleEndian.PutUint16(buf[32:], blockAlign)
	binary.LittleEndian.PutUint16(buf[34:], BitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:], uint32(len(pcm)))
	copy(buf[HeaderSize:], pcm)
	return buf
}
