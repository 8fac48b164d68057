package server

import (
	"bytes"
	"context"
	"encoding/base64"

	"github.com/gofiber/fiber/v2"
)

// maxAudioBytes caps the decoded upload. A 16 kHz mono FLAC take runs
// well under a megabyte per minute; anything near the cap is not speech.
const maxAudioBytes = 10 << 20

// Transcriber turns one encoded audio take into text. filename carries
// the container extension the engine uses to pick a decoder.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error)
}

type voiceRequest struct {
	AudioData string `json:"audio_data"`
	Language  string `json:"language"`
}

type voiceResponse struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (s *Server) handleVoice(c *fiber.Ctx) error {
	if s.stt == nil {
		return c.Status(fiber.StatusServiceUnavailable).
			JSON(voiceResponse{Error: "transcription is not configured on this server"})
	}

	var req voiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(voiceResponse{Error: "invalid request body"})
	}
	if req.AudioData == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(voiceResponse{Error: "no audio data provided"})
	}
	if base64.StdEncoding.DecodedLen(len(req.AudioData)) > maxAudioBytes {
		return c.Status(fiber.StatusBadRequest).
			JSON(voiceResponse{Error: "audio payload too large"})
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(voiceResponse{Error: "audio data is not valid base64"})
	}
	if len(audio) == 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(voiceResponse{Error: "no audio data provided"})
	}

	text, err := s.stt.Transcribe(c.Context(), audio, sniffFilename(audio), req.Language)
	if err != nil {
		s.log.Error().Err(err).Msg("transcription failed")
		return c.Status(fiber.StatusInternalServerError).
			JSON(voiceResponse{Error: "transcription failed"})
	}

	return c.JSON(voiceResponse{Success: true, Transcript: text})
}

// sniffFilename names the upload after its container magic so the speech
// engine picks the right decoder. The client negotiates flac or wav; wav
// is the answer for anything unrecognized.
func sniffFilename(audio []byte) string {
	switch {
	case bytes.HasPrefix(audio, []byte("fLaC")):
		return "voice.flac"
	case bytes.HasPrefix(audio, []byte("RIFF")):
		return "voice.wav"
	default:
		return "voice.wav"
	}
}
