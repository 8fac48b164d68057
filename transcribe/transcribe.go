// Package transcribe sends captured audio to the MedAssist service for
// speech-to-text and returns the recognized transcript.
package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

// ServerError is a failure the service itself reported, as opposed to a
// transport failure reaching it.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("transcription service error %d: %s", e.StatusCode, e.Message)
}

// Result is one successful transcription.
type Result struct {
	Text    string
	Metrics *NetworkMetrics
}

// Client talks to the service's voice endpoint.
type Client struct {
	http    *TracedClient
	baseURL string
}

func New(baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		http:    NewTracedClient(baseURL + "/healthz"),
		baseURL: baseURL,
	}
}

type voiceRequest struct {
	AudioData string `json:"audio_data"`
	Language  string `json:"language"`
}

type voiceResponse struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
}

// Transcribe posts one encoded audio payload and returns the transcript.
// The payload is base64-wrapped here; callers hand over raw encoder output.
// It never retries: the caller decides what a failure means.
func (c *Client) Transcribe(ctx context.Context, audio []byte, lang string) (*Result, error) {
	payload, err := json.Marshal(voiceRequest{
		AudioData: base64.StdEncoding.EncodeToString(audio),
		Language:  lang,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-voice", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post voice: %w", err)
	}

	var vResp voiceResponse
	if err := json.Unmarshal(resp.Body, &vResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &ServerError{StatusCode: resp.StatusCode, Message: "transcription failed"}
		}
		return nil, fmt.Errorf("parse voice response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !vResp.Success {
		msg := vResp.Error
		if msg == "" {
			msg = "transcription failed"
		}
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &Result{Text: vResp.Transcript, Metrics: resp.Metrics}, nil
}

// Warm opens a connection to the service ahead of the first capture so the
// TLS handshake does not land inside a user's recording.
func (c *Client) Warm() time.Duration {
	return c.http.Warm()
}
