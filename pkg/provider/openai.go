package provider

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/torflstudy/torfl/pkg/audio"
)

var _ Client = (*OpenAIClient)(nil)

// TranscribeModel is the fixed speech-to-text model.
const TranscribeModel = openai.AudioModelGPT4oMiniTranscribe

// OpenAIClient talks to the OpenAI API for chat, transcription, and
// speech synthesis.
type OpenAIClient struct {
	client openai.Client
	apiKey string
}

// NewOpenAI builds a client. baseURL overrides the API endpoint when
// non-empty.
func NewOpenAI(apiKey, baseURL string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		apiKey: apiKey,
	}
}

func (c *OpenAIClient) Name() string { return string(VendorOpenAI) }

func (c *OpenAIClient) Chat(ctx context.Context, model string, msgs []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               model,
		Messages:            make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)),
		Temperature:         param.NewOpt(float64(defaultTemperature)),
		MaxCompletionTokens: param.NewOpt(int64(defaultMaxTokens)),
	}
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.convError("chat", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResult
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}

func (c *OpenAIClient) Transcribe(ctx context.Context, buf audio.Buffer, lang string) (string, error) {
	if buf.Empty() {
		return "", ErrEmptyResult
	}
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:    TranscribeModel,
		File:     openai.File(bytes.NewReader(buf.Data), "recording.wav", buf.MIMEType),
		Language: param.NewOpt(lang),
	})
	if err != nil {
		return "", c.convError("transcribe", err)
	}
	if resp.Text == "" {
		return "", ErrEmptyResult
	}
	return resp.Text, nil
}

func (c *OpenAIClient) Synthesize(ctx context.Context, req SpeechRequest) (audio.Buffer, error) {
	resp, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(req.Model),
		Voice:          openai.AudioSpeechNewParamsVoice(req.Voice),
		Input:          req.Text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return audio.Buffer{}, c.convError("synthesize", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return audio.Buffer{}, c.convError("synthesize", err)
	}
	if len(data) == 0 {
		return audio.Buffer{}, ErrEmptyResult
	}
	return audio.Buffer{MIMEType: audio.MIMEWAV, Data: data}, nil
}

func (c *OpenAIClient) TestConnection(ctx context.Context) Status {
	if c.apiKey == "" {
		return Status{Provider: c.Name(), OK: false, Detail: "api key not set"}
	}
	if _, err := c.client.Models.List(ctx); err != nil {
		return Status{Provider: c.Name(), OK: false, Detail: c.convError("test", err).Error()}
	}
	return Status{Provider: c.Name(), OK: true, Detail: "reachable"}
}

func (c *OpenAIClient) convError(op string, err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &Error{
			Provider:   c.Name(),
			Op:         op,
			HTTPStatus: apierr.StatusCode,
			Message:    apierr.Message,
		}
	}
	return err
}
