package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestVendorFor(t *testing.T) {
	tests := []struct {
		model string
		want  Vendor
	}{
		{"gpt-5-mini", VendorOpenAI},
		{"gpt-5", VendorOpenAI},
		{"gpt-5.2", VendorOpenAI},
		{"o4-mini", VendorOpenAI},
		{"gemini-3-flash-preview", VendorGoogle},
		{"gemini-3.1-pro-preview", VendorGoogle},
		{"gemini-2.0-flash", VendorGoogle},
	}
	for _, tt := range tests {
		got, err := VendorFor(tt.model)
		if err != nil {
			t.Errorf("VendorFor(%q): %v", tt.model, err)
			continue
		}
		if got != tt.want {
			t.Errorf("VendorFor(%q) = %s, want %s", tt.model, got, tt.want)
		}
	}
}

func TestVendorForUnknown(t *testing.T) {
	_, err := VendorFor("claude-sonnet")
	var ume *UnknownModelError
	if !errors.As(err, &ume) {
		t.Fatalf("want *UnknownModelError, got %v", err)
	}
	if ume.Model != "claude-sonnet" {
		t.Errorf("Model = %q, want claude-sonnet", ume.Model)
	}
}

func TestChatModelsSortedAndComplete(t *testing.T) {
	models := ChatModels()
	if len(models) != len(chatModels) {
		t.Fatalf("got %d models, table has %d", len(models), len(chatModels))
	}
	for i := 1; i < len(models); i++ {
		if models[i-1] >= models[i] {
			t.Fatalf("models not sorted: %q before %q", models[i-1], models[i])
		}
	}
	for _, m := range models {
		if !KnownModel(m) {
			t.Errorf("KnownModel(%q) = false", m)
		}
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		auth      bool
		rate      bool
		retryable bool
	}{
		{401, true, false, false},
		{403, true, false, false},
		{429, false, true, true},
		{500, false, false, true},
		{503, false, false, true},
		{400, false, false, false},
	}
	for _, tt := range tests {
		e := &Error{Provider: "openai", Op: "chat", HTTPStatus: tt.status}
		if e.IsAuth() != tt.auth {
			t.Errorf("status %d: IsAuth = %v, want %v", tt.status, e.IsAuth(), tt.auth)
		}
		if e.IsRateLimit() != tt.rate {
			t.Errorf("status %d: IsRateLimit = %v, want %v", tt.status, e.IsRateLimit(), tt.rate)
		}
		if e.Retryable() != tt.retryable {
			t.Errorf("status %d: Retryable = %v, want %v", tt.status, e.Retryable(), tt.retryable)
		}
	}
}

func TestAsError(t *testing.T) {
	base := &Error{Provider: "google", Op: "chat", HTTPStatus: 429, Message: "slow down"}
	wrapped := fmt.Errorf("turn failed: %w", base)

	e, ok := AsError(wrapped)
	if !ok {
		t.Fatal("AsError did not find *Error in wrapped chain")
	}
	if e.HTTPStatus != 429 {
		t.Errorf("HTTPStatus = %d, want 429", e.HTTPStatus)
	}
	if _, ok := AsError(errors.New("plain")); ok {
		t.Error("AsError matched a plain error")
	}
}

func TestOpenAITestConnectionWithoutKey(t *testing.T) {
	c := NewOpenAI("", "")
	st := c.TestConnection(context.Background())
	if st.OK {
		t.Fatal("empty key should not report OK")
	}
	if st.Detail != "api key not set" {
		t.Errorf("Detail = %q", st.Detail)
	}
}

func TestRegistryRouting(t *testing.T) {
	r, err := NewRegistry(context.Background(), Config{OpenAIKey: "sk-test"})
	if err != nil {
		t.Fatal(err)
	}

	c, err := r.ChatClient("gpt-5-mini")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "openai" {
		t.Errorf("gpt-5-mini resolved to %s", c.Name())
	}

	if _, err := r.ChatClient("gemini-2.5-flash"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("missing google key: got %v, want ErrNoAPIKey", err)
	}

	var ume *UnknownModelError
	if _, err := r.ChatClient("mistral-large"); !errors.As(err, &ume) {
		t.Errorf("unknown model: got %v, want *UnknownModelError", err)
	}

	if r.Speech().Name() != "openai" {
		t.Error("speech client must be openai")
	}
}
