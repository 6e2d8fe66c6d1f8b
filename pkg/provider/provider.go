// Package provider wraps the OpenAI and Google model APIs behind a
// single client interface for chat, transcription, and speech
// synthesis. Model ids are routed to vendors through a fixed table;
// unknown ids are rejected rather than guessed at.
package provider

import (
	"context"

	"github.com/torflstudy/torfl/pkg/audio"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of conversation history, vendor neutral.
// Order matters: clients translate the slice into the vendor wire
// shape without reordering.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SpeechRequest describes a synthesis call.
type SpeechRequest struct {
	Model string
	Voice string
	Text  string
}

// Status is the outcome of a connectivity probe.
type Status struct {
	Provider string
	OK       bool
	Detail   string
}

// Default generation parameters, applied by every chat client.
const (
	defaultTemperature = 0.8
	defaultMaxTokens   = 1024
)

// Client is a single vendor. Operations a vendor does not offer
// return ErrSynthesisUnsupported or ErrTranscriptionUnsupported.
type Client interface {
	// Name returns the vendor id, e.g. "openai".
	Name() string

	// Chat sends the full history and returns the assistant reply text.
	Chat(ctx context.Context, model string, msgs []Message) (string, error)

	// Transcribe converts recorded speech to text. lang is a BCP-47
	// primary tag such as "ru".
	Transcribe(ctx context.Context, buf audio.Buffer, lang string) (string, error)

	// Synthesize renders text to playable audio.
	Synthesize(ctx context.Context, req SpeechRequest) (audio.Buffer, error)

	// TestConnection probes the vendor with a cheap list call. It
	// never returns an error: failures are reported in the Status.
	// A missing API key short-circuits without touching the network.
	TestConnection(ctx context.Context) Status
}
