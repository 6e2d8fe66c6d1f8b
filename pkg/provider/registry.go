package provider

import (
	"context"
	"fmt"
)

// Config carries the credentials for every vendor.
type Config struct {
	OpenAIKey     string
	OpenAIBaseURL string
	GoogleKey     string
}

// Registry holds one constructed client per vendor and resolves the
// right one for a chat model. Speech operations are pinned to OpenAI
// regardless of the chat vendor.
type Registry struct {
	openai *OpenAIClient
	google *GoogleClient
}

// NewRegistry builds clients for every vendor with a credential. The
// OpenAI client is always built so speech calls have a target; its
// requests fail cleanly when the key is missing.
func NewRegistry(ctx context.Context, cfg Config) (*Registry, error) {
	r := &Registry{
		openai: NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL),
	}
	if cfg.GoogleKey != "" {
		g, err := NewGoogle(ctx, cfg.GoogleKey)
		if err != nil {
			return nil, fmt.Errorf("google client: %w", err)
		}
		r.google = g
	}
	return r, nil
}

// ChatClient resolves the client for a chat model id.
func (r *Registry) ChatClient(model string) (Client, error) {
	vendor, err := VendorFor(model)
	if err != nil {
		return nil, err
	}
	switch vendor {
	case VendorGoogle:
		if r.google == nil {
			return nil, fmt.Errorf("%w (google)", ErrNoAPIKey)
		}
		return r.google, nil
	default:
		return r.openai, nil
	}
}

// Speech returns the client used for transcription and synthesis.
func (r *Registry) Speech() Client {
	return r.openai
}

// Clients returns every constructed client, for connectivity checks.
func (r *Registry) Clients() []Client {
	out := []Client{r.openai}
	if r.google != nil {
		out = append(out, r.google)
	}
	return out
}
