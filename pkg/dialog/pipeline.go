// Package dialog drives the voice practice loop: record, transcribe,
// generate, synthesize, play. One pipeline instance runs at most one
// turn at a time.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/torflstudy/torfl/pkg/audio"
	"github.com/torflstudy/torfl/pkg/provider"
	"github.com/torflstudy/torfl/pkg/settings"
)

// State is the pipeline position within a turn.
type State int

const (
	Idle State = iota
	Listening
	Transcribing
	Generating
	Speaking
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Transcribing:
		return "transcribing"
	case Generating:
		return "generating"
	case Speaking:
		return "speaking"
	case Errored:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// transcribeLanguage is the BCP-47 hint passed to the STT endpoint.
const transcribeLanguage = "ru"

// evaluation requires at least system + user + assistant.
const minEvaluationHistory = 3

// DefaultCallTimeout bounds each provider call within a turn.
const DefaultCallTimeout = 60 * time.Second

// ErrBusy is returned when an operation arrives while a turn is in
// flight.
var ErrBusy = errors.New("dialog: turn in progress")

// ErrTooShort is returned when an evaluation is requested before the
// conversation has enough turns to judge.
var ErrTooShort = errors.New("dialog: conversation too short to evaluate")

// Clients resolves provider clients. *provider.Registry satisfies it.
type Clients interface {
	ChatClient(model string) (provider.Client, error)
	Speech() provider.Client
}

// Sink receives pipeline progress. It is the UI collaborator: the
// pipeline never renders anything itself.
type Sink interface {
	// AppendUser shows a recognized user utterance.
	AppendUser(text string)

	// AppendAssistant shows a parsed assistant reply.
	AppendAssistant(reply ParsedReply)

	// AppendEvaluation shows the end-of-session feedback.
	AppendEvaluation(text string)

	// SetState reports every state transition.
	SetState(State)

	// Notify surfaces one failure with the stage that caused it.
	Notify(stage string, err error)
}

// Options configures a pipeline session.
type Options struct {
	ChatModel string
	TTSModel  string
	Voice     string

	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string

	// Scenario selects an optional topic, ScenarioFree for none.
	Scenario string

	// CallTimeout bounds each provider call. DefaultCallTimeout when
	// zero.
	CallTimeout time.Duration

	Logger *slog.Logger
}

// Pipeline is the conversation state machine.
type Pipeline struct {
	clients Clients
	rec     audio.Recorder
	player  audio.Player
	store   *settings.Store // optional, nil disables stat recording
	sink    Sink
	opts    Options
	log     *slog.Logger

	mu         sync.Mutex
	state      State
	processing bool
	history    []provider.Message
	sessionID  string
	startedAt  time.Time
	cancelTurn context.CancelFunc
}

// New builds an idle pipeline. store may be nil; then EndConversation
// skips stat recording.
func New(clients Clients, rec audio.Recorder, player audio.Player, store *settings.Store, sink Sink, opts Options) *Pipeline {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		clients:   clients,
		rec:       rec,
		player:    player,
		store:     store,
		sink:      sink,
		opts:      opts,
		log:       log,
		state:     Idle,
		sessionID: uuid.NewString(),
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// History returns a copy of the message history.
func (p *Pipeline) History() []provider.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]provider.Message, len(p.history))
	copy(out, p.history)
	return out
}

// Reset clears the session: history, timing, and session id. The next
// turn starts a fresh conversation.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = nil
	p.startedAt = time.Time{}
	p.sessionID = uuid.NewString()
}

// StartRecording opens the microphone. Only valid from Idle.
func (p *Pipeline) StartRecording(ctx context.Context) error {
	p.mu.Lock()
	if p.processing || p.state != Idle {
		p.mu.Unlock()
		return ErrBusy
	}
	p.mu.Unlock()

	if err := p.rec.Start(ctx); err != nil {
		p.fail("record", err)
		return err
	}
	p.setState(Listening)
	return nil
}

// StopRecording closes the microphone and runs the whole turn:
// transcribe, generate, synthesize, play. It blocks until the turn
// finishes; CancelTurn from another goroutine aborts the in-flight
// provider call.
func (p *Pipeline) StopRecording(ctx context.Context) error {
	p.mu.Lock()
	if p.processing {
		p.mu.Unlock()
		return ErrBusy
	}
	p.processing = true
	turnCtx, cancel := context.WithCancel(ctx)
	p.cancelTurn = cancel
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		p.processing = false
		p.cancelTurn = nil
		p.mu.Unlock()
	}()

	buf, err := p.rec.Stop()
	if err != nil {
		p.fail("record", err)
		return err
	}
	// Silence costs nothing: no provider call for an empty capture.
	if buf.Empty() {
		p.setState(Idle)
		return nil
	}

	p.mu.Lock()
	if p.startedAt.IsZero() {
		p.startedAt = time.Now()
	}
	p.mu.Unlock()

	return p.runTurn(turnCtx, buf)
}

func (p *Pipeline) runTurn(ctx context.Context, buf audio.Buffer) error {
	p.setState(Transcribing)
	text, err := p.call(ctx, func(cctx context.Context) (string, error) {
		return p.clients.Speech().Transcribe(cctx, buf, transcribeLanguage)
	})
	if err != nil {
		p.fail("transcribe", err)
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		p.fail("transcribe", provider.ErrEmptyResult)
		return provider.ErrEmptyResult
	}

	p.mu.Lock()
	if len(p.history) == 0 {
		p.history = append(p.history, provider.Message{
			Role:    provider.RoleSystem,
			Content: SystemPrompt(p.opts.SystemPrompt, p.opts.Scenario),
		})
	}
	p.history = append(p.history, provider.Message{Role: provider.RoleUser, Content: text})
	msgs := make([]provider.Message, len(p.history))
	copy(msgs, p.history)
	p.mu.Unlock()
	p.sink.AppendUser(text)

	p.setState(Generating)
	chat, err := p.clients.ChatClient(p.opts.ChatModel)
	if err != nil {
		p.fail("chat", err)
		return err
	}
	raw, err := p.call(ctx, func(cctx context.Context) (string, error) {
		return chat.Chat(cctx, p.opts.ChatModel, msgs)
	})
	if err != nil {
		p.fail("chat", err)
		return err
	}

	// The raw reply goes into history so the model's own markers stay
	// part of its context on the next turn.
	p.mu.Lock()
	p.history = append(p.history, provider.Message{Role: provider.RoleAssistant, Content: raw})
	p.mu.Unlock()
	parsed := Parse(raw)
	p.sink.AppendAssistant(parsed)

	p.setState(Speaking)
	p.speak(ctx, parsed.Response)
	p.setState(Idle)
	return nil
}

// speak synthesizes and plays the dialogue part. Failures here never
// fail the turn: the text already reached the user.
func (p *Pipeline) speak(ctx context.Context, text string) {
	if text == "" {
		return
	}
	buf, err := func() (audio.Buffer, error) {
		cctx, cancel := context.WithTimeout(ctx, p.opts.CallTimeout)
		defer cancel()
		return p.clients.Speech().Synthesize(cctx, provider.SpeechRequest{
			Model: p.opts.TTSModel,
			Voice: p.opts.Voice,
			Text:  text,
		})
	}()
	if err != nil {
		p.log.Warn("speech synthesis failed, keeping text only", "error", err)
		return
	}
	if err := p.player.Play(ctx, buf); err != nil {
		p.log.Warn("playback failed", "error", err)
	}
}

// CancelTurn aborts the in-flight provider call, if any. The turn
// surfaces the cancellation through its normal error path.
func (p *Pipeline) CancelTurn() {
	p.mu.Lock()
	cancel := p.cancelTurn
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.player.Stop()
}

// EndConversation requests the session evaluation with one extra chat
// call, records study time, and stores the transcript. The evaluation
// turn itself is not added to history.
func (p *Pipeline) EndConversation(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.processing {
		p.mu.Unlock()
		return "", ErrBusy
	}
	if len(p.history) < minEvaluationHistory {
		p.mu.Unlock()
		return "", ErrTooShort
	}
	p.processing = true
	msgs := make([]provider.Message, len(p.history), len(p.history)+1)
	copy(msgs, p.history)
	startedAt := p.startedAt
	sessionID := p.sessionID
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.processing = false
		p.mu.Unlock()
	}()

	msgs = append(msgs, provider.Message{Role: provider.RoleUser, Content: evaluationPrompt})

	chat, err := p.clients.ChatClient(p.opts.ChatModel)
	if err != nil {
		p.fail("evaluate", err)
		return "", err
	}
	evaluation, err := p.call(ctx, func(cctx context.Context) (string, error) {
		return chat.Chat(cctx, p.opts.ChatModel, msgs)
	})
	if err != nil {
		p.fail("evaluate", err)
		return "", err
	}
	p.sink.AppendEvaluation(evaluation)

	if p.store != nil {
		p.record(sessionID, startedAt, evaluation)
	}
	return evaluation, nil
}

func (p *Pipeline) record(sessionID string, startedAt time.Time, evaluation string) {
	if !startedAt.IsZero() {
		minutes := int(time.Since(startedAt).Round(time.Minute) / time.Minute)
		if _, err := p.store.AddStudyTime(minutes); err != nil {
			p.log.Warn("recording study time failed", "error", err)
		}
		if _, err := p.store.AddConversation(); err != nil {
			p.log.Warn("recording conversation count failed", "error", err)
		}
	}

	conv := settings.Conversation{
		ID:         sessionID,
		StartedAt:  startedAt,
		Scenario:   p.opts.Scenario,
		Model:      p.opts.ChatModel,
		Evaluation: evaluation,
	}
	for _, m := range p.History() {
		conv.Messages = append(conv.Messages, settings.ConversationMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	if err := p.store.SaveConversation(conv); err != nil {
		p.log.Warn("saving conversation failed", "error", err)
	}
}

// call runs one provider call under the per-call timeout.
func (p *Pipeline) call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, p.opts.CallTimeout)
	defer cancel()
	return fn(cctx)
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	p.sink.SetState(s)
}

// fail surfaces one error and drains back to Idle. No state is ever
// stuck in Errored.
func (p *Pipeline) fail(stage string, err error) {
	p.log.Error("turn failed", "stage", stage, "error", err)
	p.setState(Errored)
	p.sink.Notify(stage, err)
	p.setState(Idle)
}
