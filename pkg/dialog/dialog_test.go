package dialog_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/torflstudy/torfl/pkg/audio"
	"github.com/torflstudy/torfl/pkg/dialog"
	"github.com/torflstudy/torfl/pkg/provider"
	"github.com/torflstudy/torfl/pkg/settings"
)

// fakeClient scripts one vendor for pipeline tests.
type fakeClient struct {
	name string

	transcript    string
	transcribeErr error
	reply         string
	chatErr       error
	synthErr      error

	// chatStarted, when set, is closed on the first Chat call;
	// chatWaitCtx makes Chat block until its context ends.
	chatStarted chan struct{}
	chatWaitCtx bool

	transcribeCalls int
	chatCalls       [][]provider.Message
	synthTexts      []string
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Transcribe(_ context.Context, buf audio.Buffer, lang string) (string, error) {
	f.transcribeCalls++
	if f.transcribeErr != nil {
		return "", f.transcribeErr
	}
	return f.transcript, nil
}

func (f *fakeClient) Chat(ctx context.Context, model string, msgs []provider.Message) (string, error) {
	cp := make([]provider.Message, len(msgs))
	copy(cp, msgs)
	f.chatCalls = append(f.chatCalls, cp)
	if f.chatStarted != nil {
		close(f.chatStarted)
		f.chatStarted = nil
	}
	if f.chatWaitCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.reply, nil
}

func (f *fakeClient) Synthesize(_ context.Context, req provider.SpeechRequest) (audio.Buffer, error) {
	f.synthTexts = append(f.synthTexts, req.Text)
	if f.synthErr != nil {
		return audio.Buffer{}, f.synthErr
	}
	return audio.Buffer{MIMEType: audio.MIMEWAV, Data: []byte{1, 2, 3}}, nil
}

func (f *fakeClient) TestConnection(context.Context) provider.Status {
	return provider.Status{Provider: f.name, OK: true}
}

type fakeClients struct {
	speech *fakeClient
}

func (f *fakeClients) ChatClient(model string) (provider.Client, error) { return f.speech, nil }
func (f *fakeClients) Speech() provider.Client                          { return f.speech }

type fakeRecorder struct {
	buf      audio.Buffer
	startErr error
}

func (r *fakeRecorder) Start(context.Context) error { return r.startErr }
func (r *fakeRecorder) Stop() (audio.Buffer, error) { return r.buf, nil }

type fakePlayer struct {
	plays int
	stops int
}

func (p *fakePlayer) Play(context.Context, audio.Buffer) error { p.plays++; return nil }
func (p *fakePlayer) Stop()                                    { p.stops++ }

// recordingSink captures everything the pipeline surfaces.
type recordingSink struct {
	users       []string
	assistants  []dialog.ParsedReply
	evaluations []string
	states      []dialog.State
	notices     []string
}

func (s *recordingSink) AppendUser(text string)               { s.users = append(s.users, text) }
func (s *recordingSink) AppendAssistant(r dialog.ParsedReply) { s.assistants = append(s.assistants, r) }
func (s *recordingSink) AppendEvaluation(text string)         { s.evaluations = append(s.evaluations, text) }
func (s *recordingSink) SetState(st dialog.State)             { s.states = append(s.states, st) }
func (s *recordingSink) Notify(stage string, err error)       { s.notices = append(s.notices, stage) }

func wavBuf() audio.Buffer {
	return audio.Buffer{MIMEType: audio.MIMEWAV, Data: audio.EncodeWAV([]byte{0, 0, 1, 0}, 16000, 1)}
}

func newTestPipeline(client *fakeClient, rec *fakeRecorder, player *fakePlayer, sink *recordingSink) *dialog.Pipeline {
	return dialog.New(&fakeClients{speech: client}, rec, player, nil, sink, dialog.Options{
		ChatModel: "gpt-5-mini",
		TTSModel:  "tts-1",
		Voice:     "nova",
		Scenario:  dialog.ScenarioFree,
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		response string
		feedback string
	}{
		{
			name:     "both markers",
			in:       "[RESPONSE]\nПривет! Как дела?\n\n[FEEDBACK]\nОшибок нет. 잘했어요!",
			response: "Привет! Как дела?",
			feedback: "Ошибок нет. 잘했어요!",
		},
		{
			name:     "no markers",
			in:       "Просто текст без секций",
			response: "Просто текст без секций",
		},
		{
			name:     "response only",
			in:       "[RESPONSE] Добрый день!",
			response: "Добрый день!",
		},
		{
			name:     "feedback only",
			in:       "Хорошо.\n[FEEDBACK]\nСлово падеж: ошибка.",
			response: "Хорошо.",
			feedback: "Слово падеж: ошибка.",
		},
		{
			name:     "lowercase markers",
			in:       "[response]Да.[feedback]Верно.",
			response: "Да.",
			feedback: "Верно.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dialog.Parse(tt.in)
			if got.Response != tt.response {
				t.Errorf("Response = %q, want %q", got.Response, tt.response)
			}
			if got.Feedback != tt.feedback {
				t.Errorf("Feedback = %q, want %q", got.Feedback, tt.feedback)
			}
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	free := dialog.SystemPrompt("", dialog.ScenarioFree)
	if free != dialog.DefaultSystemPrompt {
		t.Error("free scenario must not alter the default prompt")
	}
	cafe := dialog.SystemPrompt("", "daily-cafe")
	if !strings.Contains(cafe, "СЦЕНАРИЙ:") || !strings.Contains(cafe, "бариста") {
		t.Errorf("cafe prompt missing scenario text: %q", cafe)
	}
	custom := dialog.SystemPrompt("Говори кратко.", dialog.ScenarioFree)
	if custom != "Говори кратко." {
		t.Errorf("override ignored: %q", custom)
	}
}

func TestEmptyCaptureSkipsProviders(t *testing.T) {
	client := &fakeClient{name: "openai"}
	sink := &recordingSink{}
	p := newTestPipeline(client, &fakeRecorder{}, &fakePlayer{}, sink)

	if err := p.StopRecording(context.Background()); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if client.transcribeCalls != 0 {
		t.Error("transcribe called for empty capture")
	}
	if p.State() != dialog.Idle {
		t.Errorf("state = %v, want Idle", p.State())
	}
	if len(p.History()) != 0 {
		t.Error("history changed by empty capture")
	}
}

func TestFailedTranscribeLeavesHistoryUnchanged(t *testing.T) {
	client := &fakeClient{
		name:          "openai",
		transcribeErr: &provider.Error{Provider: "openai", Op: "transcribe", HTTPStatus: 500, Message: "boom"},
	}
	sink := &recordingSink{}
	p := newTestPipeline(client, &fakeRecorder{buf: wavBuf()}, &fakePlayer{}, sink)

	if err := p.StopRecording(context.Background()); err == nil {
		t.Fatal("expected transcribe error")
	}
	if len(p.History()) != 0 {
		t.Fatalf("history = %d messages, want 0", len(p.History()))
	}
	if len(sink.notices) != 1 || sink.notices[0] != "transcribe" {
		t.Errorf("notices = %v", sink.notices)
	}
	if p.State() != dialog.Idle {
		t.Errorf("state = %v, want Idle", p.State())
	}
	if len(client.chatCalls) != 0 {
		t.Error("chat called after failed transcribe")
	}
}

func TestFirstTurn(t *testing.T) {
	raw := "[RESPONSE]\nПривет! Рад тебя видеть.\n\n[FEEDBACK]\nВсё правильно."
	client := &fakeClient{name: "openai", transcript: "Привет", reply: raw}
	player := &fakePlayer{}
	sink := &recordingSink{}
	p := newTestPipeline(client, &fakeRecorder{buf: wavBuf()}, player, sink)

	if err := p.StopRecording(context.Background()); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}

	hist := p.History()
	if len(hist) != 3 {
		t.Fatalf("history = %d messages, want 3", len(hist))
	}
	if hist[0].Role != provider.RoleSystem {
		t.Errorf("hist[0].Role = %s, want system", hist[0].Role)
	}
	if hist[1].Role != provider.RoleUser || hist[1].Content != "Привет" {
		t.Errorf("hist[1] = %+v", hist[1])
	}
	if hist[2].Role != provider.RoleAssistant || hist[2].Content != raw {
		t.Errorf("hist[2] must hold the raw reply, got %q", hist[2].Content)
	}

	// Chat received the history in append order, system prompt first.
	if len(client.chatCalls) != 1 {
		t.Fatalf("chat calls = %d, want 1", len(client.chatCalls))
	}
	sent := client.chatCalls[0]
	if len(sent) != 2 || sent[0].Role != provider.RoleSystem || sent[1].Content != "Привет" {
		t.Errorf("chat messages = %+v", sent)
	}

	// Exactly one synthesis, on the response portion only.
	if len(client.synthTexts) != 1 || client.synthTexts[0] != "Привет! Рад тебя видеть." {
		t.Errorf("synthesized %v", client.synthTexts)
	}
	if player.plays != 1 {
		t.Errorf("plays = %d, want 1", player.plays)
	}
	if p.State() != dialog.Idle {
		t.Errorf("state = %v, want Idle", p.State())
	}
	if len(sink.users) != 1 || len(sink.assistants) != 1 {
		t.Errorf("sink: users=%v assistants=%v", sink.users, sink.assistants)
	}
}

func TestSecondTurnAppendsExactlyTwo(t *testing.T) {
	client := &fakeClient{name: "openai", transcript: "Да", reply: "Хорошо."}
	p := newTestPipeline(client, &fakeRecorder{buf: wavBuf()}, &fakePlayer{}, &recordingSink{})

	if err := p.StopRecording(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := len(p.History())

	client.transcript = "Нет"
	if err := p.StopRecording(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(p.History()) - before; got != 2 {
		t.Fatalf("second turn appended %d messages, want 2", got)
	}
}

func TestFailedChatKeepsUserTurn(t *testing.T) {
	client := &fakeClient{
		name:       "openai",
		transcript: "Привет",
		chatErr:    &provider.Error{Provider: "openai", Op: "chat", HTTPStatus: 429, Message: "slow"},
	}
	sink := &recordingSink{}
	p := newTestPipeline(client, &fakeRecorder{buf: wavBuf()}, &fakePlayer{}, sink)

	if err := p.StopRecording(context.Background()); err == nil {
		t.Fatal("expected chat error")
	}
	hist := p.History()
	if len(hist) != 2 {
		t.Fatalf("history = %d messages, want system+user", len(hist))
	}
	if hist[1].Role != provider.RoleUser {
		t.Errorf("hist[1].Role = %s", hist[1].Role)
	}
	if len(sink.notices) != 1 || sink.notices[0] != "chat" {
		t.Errorf("notices = %v", sink.notices)
	}
	if len(client.synthTexts) != 0 {
		t.Error("synthesize called after failed chat")
	}
}

func TestSynthesisFailureDoesNotFailTurn(t *testing.T) {
	client := &fakeClient{name: "openai", transcript: "Привет", reply: "Здравствуй!", synthErr: errors.New("tts down")}
	sink := &recordingSink{}
	p := newTestPipeline(client, &fakeRecorder{buf: wavBuf()}, &fakePlayer{}, sink)

	if err := p.StopRecording(context.Background()); err != nil {
		t.Fatalf("turn must survive synthesis failure: %v", err)
	}
	if len(sink.notices) != 0 {
		t.Errorf("notices = %v, want none", sink.notices)
	}
	if len(p.History()) != 3 {
		t.Errorf("history = %d messages, want 3", len(p.History()))
	}
}

func TestEndConversation(t *testing.T) {
	store, err := settings.Open(settings.Options{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	client := &fakeClient{name: "openai", transcript: "Привет", reply: "Здравствуй!"}
	sink := &recordingSink{}
	p := dialog.New(&fakeClients{speech: client}, &fakeRecorder{buf: wavBuf()}, &fakePlayer{}, store, sink, dialog.Options{
		ChatModel: "gpt-5-mini",
		TTSModel:  "tts-1",
		Voice:     "nova",
		Scenario:  "daily-cafe",
	})

	if _, err := p.EndConversation(context.Background()); !errors.Is(err, dialog.ErrTooShort) {
		t.Fatalf("short conversation: got %v, want ErrTooShort", err)
	}

	if err := p.StopRecording(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := len(p.History())

	client.reply = "평가: A등급입니다."
	eval, err := p.EndConversation(context.Background())
	if err != nil {
		t.Fatalf("EndConversation: %v", err)
	}
	if eval != "평가: A등급입니다." {
		t.Errorf("evaluation = %q", eval)
	}
	if len(sink.evaluations) != 1 {
		t.Errorf("sink evaluations = %v", sink.evaluations)
	}
	if len(p.History()) != before {
		t.Error("evaluation turn leaked into history")
	}

	// The extra chat call carries history plus one evaluation request.
	last := client.chatCalls[len(client.chatCalls)-1]
	if len(last) != before+1 {
		t.Fatalf("evaluation call had %d messages, want %d", len(last), before+1)
	}
	if last[len(last)-1].Role != provider.RoleUser {
		t.Error("evaluation request must be a user message")
	}

	st, _ := store.Stats()
	if st.TotalConversations != 1 {
		t.Errorf("TotalConversations = %d, want 1", st.TotalConversations)
	}
	ids, _ := store.ConversationIDs()
	if len(ids) != 1 {
		t.Fatalf("stored conversations = %d, want 1", len(ids))
	}
	conv, ok, _ := store.Conversation(ids[0])
	if !ok || conv.Evaluation == "" || conv.Scenario != "daily-cafe" {
		t.Errorf("stored conversation: ok=%v %+v", ok, conv)
	}
}

func TestStartRecordingFailure(t *testing.T) {
	sink := &recordingSink{}
	rec := &fakeRecorder{startErr: &audio.DeviceError{Err: errors.New("mic denied")}}
	p := newTestPipeline(&fakeClient{name: "openai"}, rec, &fakePlayer{}, sink)

	if err := p.StartRecording(context.Background()); err == nil {
		t.Fatal("expected device error")
	}
	if p.State() != dialog.Idle {
		t.Errorf("state = %v, want Idle", p.State())
	}
	if len(sink.notices) != 1 || sink.notices[0] != "record" {
		t.Errorf("notices = %v", sink.notices)
	}
}

func TestCancelTurnAbortsGeneration(t *testing.T) {
	client := &fakeClient{
		name:        "openai",
		transcript:  "Привет",
		chatStarted: make(chan struct{}),
		chatWaitCtx: true,
	}
	player := &fakePlayer{}
	sink := &recordingSink{}
	p := newTestPipeline(client, &fakeRecorder{buf: wavBuf()}, player, sink)

	if err := p.StartRecording(context.Background()); err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- p.StopRecording(context.Background()) }()

	<-client.chatStarted
	p.CancelTurn()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("StopRecording after cancel: got %v, want context.Canceled", err)
	}
	if p.State() != dialog.Idle {
		t.Errorf("state = %v, want Idle after cancel drains", p.State())
	}
	if player.stops == 0 {
		t.Error("cancel must stop the player")
	}
	if len(sink.notices) != 1 || sink.notices[0] != "chat" {
		t.Errorf("notices = %v, want one chat failure", sink.notices)
	}
	hist := p.History()
	if len(hist) != 2 {
		t.Fatalf("history length = %d, want system+user kept after canceled reply", len(hist))
	}
	if hist[1].Content != "Привет" {
		t.Errorf("user turn = %q", hist[1].Content)
	}
}
