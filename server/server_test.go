package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/varun-cu-unv/MedAssist/drugdb"
)

type stubTranscriber struct {
	calls    atomic.Int32
	text     string
	err      error
	lastFile string
	lastLang string
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ []byte, filename, language string) (string, error) {
	s.calls.Add(1)
	s.lastFile = filename
	s.lastLang = language
	return s.text, s.err
}

func newTestServer(t *testing.T, stt Transcriber, fdaURL string) *Server {
	t.Helper()
	cfg := &Config{
		Port:       "0",
		DBPath:     filepath.Join(t.TempDir(), "cache.db"),
		OpenFDA:    fdaURL != "",
		OpenFDAURL: fdaURL,
	}
	store, err := drugdb.OpenStore(context.Background(), cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(cfg, zerolog.Nop(), stt, store)
}

func postJSON(t *testing.T, s *Server, path string, body any) (*http.Response, []byte) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil, "")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestProcessVoice(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString([]byte("RIFFxxxxWAVEfake-pcm"))

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCalls  int32
	}{
		{"valid", voiceRequest{AudioData: audio, Language: "en"}, http.StatusOK, 1},
		{"missing audio", voiceRequest{Language: "en"}, http.StatusBadRequest, 0},
		{"bad base64", voiceRequest{AudioData: "not-base64!!", Language: "en"}, http.StatusBadRequest, 0},
		{"oversized", voiceRequest{AudioData: strings.Repeat("A", (maxAudioBytes/3+1)*4), Language: "en"}, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stt := &stubTranscriber{text: "paracetamol"}
			s := newTestServer(t, stt, "")
			resp, body := postJSON(t, s, "/process-voice", tt.body)

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
			if got := stt.calls.Load(); got != tt.wantCalls {
				t.Fatalf("transcriber calls = %d, want %d", got, tt.wantCalls)
			}

			var out voiceResponse
			if err := json.Unmarshal(body, &out); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if tt.wantStatus == http.StatusOK {
				if !out.Success || out.Transcript != "paracetamol" {
					t.Fatalf("response = %+v, want success with transcript", out)
				}
				if stt.lastFile != "voice.wav" {
					t.Fatalf("sniffed filename = %q, want voice.wav", stt.lastFile)
				}
			} else if out.Success || out.Error == "" {
				t.Fatalf("response = %+v, want failure with error", out)
			}
		})
	}
}

func TestProcessVoiceUnconfigured(t *testing.T) {
	s := newTestServer(t, nil, "")
	resp, _ := postJSON(t, s, "/process-voice", voiceRequest{AudioData: "aGk=", Language: "en"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestProcessVoiceEngineFailure(t *testing.T) {
	stt := &stubTranscriber{err: errors.New("whisper down")}
	s := newTestServer(t, stt, "")
	resp, body := postJSON(t, s, "/process-voice", voiceRequest{AudioData: "aGVsbG8=", Language: "en"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var out voiceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Success || out.Error == "" {
		t.Fatalf("response = %+v, want failure with error", out)
	}
}

func TestGetDrugInfoLocal(t *testing.T) {
	s := newTestServer(t, nil, "")
	resp, body := postJSON(t, s, "/get-drug-info", drugRequest{DrugName: "paracetamol", Language: "en"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out drugResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.DrugInfo == nil || out.Source != "local" {
		t.Fatalf("response = %+v, want local hit", out)
	}
	if !strings.HasPrefix(out.Message, "Here's information about") {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestGetDrugInfoCorrected(t *testing.T) {
	s := newTestServer(t, nil, "")
	_, body := postJSON(t, s, "/get-drug-info", drugRequest{DrugName: "panadol", Language: "en"})
	var out drugResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || !strings.HasPrefix(out.Message, "Did you mean 'paracetamol'?") {
		t.Fatalf("response = %+v, want correction prefix", out)
	}
}

func TestGetDrugInfoMiss(t *testing.T) {
	s := newTestServer(t, nil, "")
	resp, body := postJSON(t, s, "/get-drug-info", drugRequest{DrugName: "zzzzplaceboid", Language: "en"})
	// A miss is an application answer, not a transport failure.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out drugResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Success || out.DrugInfo != nil {
		t.Fatalf("response = %+v, want miss", out)
	}
	if !strings.Contains(out.Message, "couldn't find information about 'zzzzplaceboid'") {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestGetDrugInfoEmptyName(t *testing.T) {
	s := newTestServer(t, nil, "")
	resp, _ := postJSON(t, s, "/get-drug-info", drugRequest{DrugName: "   ", Language: "en"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetDrugInfoFDACached(t *testing.T) {
	var upstream atomic.Int32
	fda := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{
			"openfda":{
				"generic_name":["Naproxen"],
				"brand_name":["Aleve"],
				"manufacturer_name":["Bayer"],
				"substance_name":["NAPROXEN"]
			},
			"indications_and_usage":["Temporary relief of minor aches."],
			"dosage_and_administration":["One tablet every 8 to 12 hours."],
			"warnings":["NSAID warning."],
			"adverse_reactions":["Stomach upset."]
		}]}`))
	}))
	defer fda.Close()

	s := newTestServer(t, nil, fda.URL)

	_, body := postJSON(t, s, "/get-drug-info", drugRequest{DrugName: "naproxen", Language: "en"})
	var out drugResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.Source != "openfda" || out.DrugInfo.GenericName != "Naproxen" {
		t.Fatalf("first response = %+v, want openfda hit", out)
	}
	first := upstream.Load()
	if first == 0 {
		t.Fatal("upstream was never called")
	}

	_, body = postJSON(t, s, "/get-drug-info", drugRequest{DrugName: "naproxen", Language: "en"})
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode second response: %v", err)
	}
	if !out.Success || out.Source != "cache" {
		t.Fatalf("second response = %+v, want cache hit", out)
	}
	if upstream.Load() != first {
		t.Fatalf("upstream called again: %d -> %d", first, upstream.Load())
	}
}
