package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"

	"github.com/torflstudy/torfl/pkg/audio"
)

var _ Client = (*GoogleClient)(nil)

// GoogleClient talks to the Gemini API. It handles chat only: the
// Gemini generateContent surface has no transcription or speech
// endpoint in this application's flow, those always go through
// OpenAI.
type GoogleClient struct {
	client *genai.Client
	apiKey string
}

// NewGoogle builds a Gemini client.
func NewGoogle(ctx context.Context, apiKey string) (*GoogleClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GoogleClient{client: client, apiKey: apiKey}, nil
}

func (c *GoogleClient) Name() string { return string(VendorGoogle) }

func (c *GoogleClient) Chat(ctx context.Context, model string, msgs []Message) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](defaultTemperature),
		MaxOutputTokens: defaultMaxTokens,
	}

	system, contents := convHistory(msgs)
	cfg.SystemInstruction = system
	if len(contents) == 0 {
		return "", ErrEmptyResult
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", c.convError("chat", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResult
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResult
	}
	return sb.String(), nil
}

func (c *GoogleClient) Transcribe(ctx context.Context, buf audio.Buffer, lang string) (string, error) {
	return "", ErrTranscriptionUnsupported
}

func (c *GoogleClient) Synthesize(ctx context.Context, req SpeechRequest) (audio.Buffer, error) {
	return audio.Buffer{}, ErrSynthesisUnsupported
}

func (c *GoogleClient) TestConnection(ctx context.Context) Status {
	if c.apiKey == "" {
		return Status{Provider: c.Name(), OK: false, Detail: "api key not set"}
	}
	_, err := c.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1})
	if err != nil {
		return Status{Provider: c.Name(), OK: false, Detail: c.convError("test", err).Error()}
	}
	return Status{Provider: c.Name(), OK: true, Detail: "reachable"}
}

func (c *GoogleClient) convError(op string, err error) error {
	var ae *apierror.APIError
	if errors.As(err, &ae) {
		return &Error{
			Provider:   c.Name(),
			Op:         op,
			HTTPStatus: ae.HTTPCode(),
			Message:    ae.Unwrap().Error(),
		}
	}
	return err
}

// convHistory translates vendor-neutral history into the Gemini wire
// shape. System messages merge into one system instruction (nil when
// there are none); the rest keep their order with assistant mapped to
// the model role and consecutive same-role messages merged into one
// content, as the API requires alternating roles.
func convHistory(msgs []Message) (system *genai.Content, contents []*genai.Content) {
	var sys []string
	for _, m := range msgs {
		if m.Role == RoleSystem {
			sys = append(sys, m.Content)
			continue
		}
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		part := genai.NewPartFromText(m.Content)
		if last := lastContent(contents); last != nil && last.Role == role {
			last.Parts = append(last.Parts, part)
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{part}})
	}
	if len(sys) > 0 {
		system = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(strings.Join(sys, "\n\n"))},
		}
	}
	return system, contents
}

func lastContent(cs []*genai.Content) *genai.Content {
	if len(cs) == 0 {
		return nil
	}
	return cs[len(cs)-1]
}
