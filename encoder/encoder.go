// Package encoder turns captured PCM into a transport-ready audio object.
// All encoders share the fixed capture format below; the final container is
// whatever Negotiate settles on for this runtime.
package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type Encoder interface {
	EncodeBlock(block []int16) error
	// Close finalizes the stream. Bytes is only complete after Close.
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	Name() string
}

// Factory builds one fresh encoder per capture session.
type Factory func() (Encoder, error)
