package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/torflstudy/torfl/pkg/audio"
)

func transcribeServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranscribeEmptyResult(t *testing.T) {
	srv := transcribeServer(t, "")
	c := NewOpenAI("test-key", srv.URL)

	buf := audio.Buffer{MIMEType: audio.MIMEWAV, Data: []byte{1, 2, 3}}
	_, err := c.Transcribe(context.Background(), buf, "ru")
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("blank transcription: got %v, want ErrEmptyResult", err)
	}
}

func TestTranscribeReturnsText(t *testing.T) {
	srv := transcribeServer(t, "Привет, как дела?")
	c := NewOpenAI("test-key", srv.URL)

	buf := audio.Buffer{MIMEType: audio.MIMEWAV, Data: []byte{1, 2, 3}}
	text, err := c.Transcribe(context.Background(), buf, "ru")
	if err != nil {
		t.Fatal(err)
	}
	if text != "Привет, как дела?" {
		t.Errorf("text = %q", text)
	}
}

func TestTranscribeEmptyBufferSkipsRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"text":"x"}`))
	}))
	t.Cleanup(srv.Close)
	c := NewOpenAI("test-key", srv.URL)

	_, err := c.Transcribe(context.Background(), audio.Buffer{}, "ru")
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("empty buffer: got %v, want ErrEmptyResult", err)
	}
	if requests != 0 {
		t.Errorf("empty buffer made %d requests, want 0", requests)
	}
}
