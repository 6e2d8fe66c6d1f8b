package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/torflstudy/torfl/pkg/audio"
	"github.com/torflstudy/torfl/pkg/cli"
	"github.com/torflstudy/torfl/pkg/dialog"
)

var (
	talkScenario string
	talkModel    string
	talkVoice    string
)

var talkCmd = &cobra.Command{
	Use:   "talk",
	Short: "Voice conversation with the AI teacher",
	Long: `Voice conversation practice with an AI Russian teacher.

Press Enter to start recording, Enter again to stop. The recording is
transcribed, the teacher answers in Russian with corrections, and the
reply is spoken back through the speakers.

Session commands:
  <Enter>  start/stop recording
  end      finish and get a session evaluation (needs a few turns)
  reset    discard history and start over
  quit     leave without evaluation

Scenarios pick a conversation topic:
  torfl talk --scenario daily-cafe
  torfl talk --scenario free`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := getContext()
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		registry, err := buildRegistry(cmd.Context(), cctx, store)
		if err != nil {
			return err
		}

		opts := dialog.Options{
			Scenario:    talkScenario,
			CallTimeout: callTimeout(cctx),
			Logger:      slog.Default(),
		}
		opts.ChatModel = talkModel
		if opts.ChatModel == "" {
			if opts.ChatModel, err = store.ChatModel(); err != nil {
				return err
			}
		}
		opts.Voice = talkVoice
		if opts.Voice == "" {
			if opts.Voice, err = store.Voice(); err != nil {
				return err
			}
		}
		if opts.TTSModel, err = store.TTSModel(); err != nil {
			return err
		}

		styles := cli.NewStyles(cli.DefaultTheme)
		sink := &consoleSink{styles: styles}
		pipe := dialog.New(registry, audio.NewMic(), audio.NewSpeaker(), store, sink, opts)

		fmt.Println(styles.Title.Render("Разговорная практика — " + opts.ChatModel))
		fmt.Println(styles.Help.Render("Enter: запись начать/остановить · end: оценка · reset · quit"))
		fmt.Println()

		return talkLoop(cmd.Context(), pipe, sink, os.Stdin)
	},
}

func init() {
	talkCmd.Flags().StringVar(&talkScenario, "scenario", dialog.ScenarioFree,
		fmt.Sprintf("conversation scenario (%s)", strings.Join(dialog.Scenarios(), ", ")))
	talkCmd.Flags().StringVar(&talkModel, "model", "", "chat model (default from settings)")
	talkCmd.Flags().StringVar(&talkVoice, "voice", "", "TTS voice (default from settings)")
}

// talkLoop runs the interactive session until quit, end, or EOF.
func talkLoop(ctx context.Context, pipe *dialog.Pipeline, sink *consoleSink, in *os.File) error {
	scanner := bufio.NewScanner(in)
	recording := false

	for {
		if recording {
			fmt.Print(sink.styles.Danger.Render("● запись... "))
		} else {
			fmt.Print(sink.styles.Help.Render("▷ "))
		}
		if !scanner.Scan() {
			pipe.CancelTurn()
			return scanner.Err()
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "":
			if !recording {
				if err := pipe.StartRecording(ctx); err != nil {
					cli.PrintError("Microphone: %v", err)
					continue
				}
				recording = true
				continue
			}
			recording = false
			if err := pipe.StopRecording(ctx); err != nil {
				cli.PrintError("Turn failed: %v", err)
			}

		case "end":
			if recording {
				recording = false
				if err := pipe.StopRecording(ctx); err != nil {
					cli.PrintError("Turn failed: %v", err)
				}
			}
			if _, err := pipe.EndConversation(ctx); err != nil {
				if err == dialog.ErrTooShort {
					cli.PrintWarning("Поговорите ещё немного, прежде чем просить оценку")
					continue
				}
				return fmt.Errorf("evaluation failed: %w", err)
			}
			return nil

		case "reset":
			pipe.Reset()
			recording = false
			cli.PrintInfo("История очищена")

		case "quit", "q", "exit":
			pipe.CancelTurn()
			return nil

		default:
			cli.PrintInfo("Команды: Enter, end, reset, quit")
		}
	}
}

// consoleSink renders pipeline progress to the terminal.
type consoleSink struct {
	styles cli.Styles
}

func (c *consoleSink) AppendUser(text string) {
	fmt.Println(c.styles.UserLine(text))
}

func (c *consoleSink) AppendAssistant(reply dialog.ParsedReply) {
	fmt.Println(c.styles.AssistantLine(reply.Response, reply.Feedback))
	fmt.Println()
}

func (c *consoleSink) AppendEvaluation(text string) {
	fmt.Println()
	fmt.Println(c.styles.Title.Render("── 세션 평가 ──"))
	fmt.Println(text)
}

func (c *consoleSink) SetState(s dialog.State) {
	switch s {
	case dialog.Transcribing:
		fmt.Println(c.styles.Help.Render("… распознавание"))
	case dialog.Generating:
		fmt.Println(c.styles.Help.Render("… ответ"))
	}
}

func (c *consoleSink) Notify(stage string, err error) {
	cli.PrintError("%s: %v", stage, err)
}
