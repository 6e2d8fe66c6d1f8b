package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/torflstudy/torfl/pkg/audio"
	"github.com/torflstudy/torfl/pkg/cli"
	"github.com/torflstudy/torfl/pkg/provider"
)

var (
	sayVoice  string
	sayModel  string
	sayOutput string
)

var sayCmd = &cobra.Command{
	Use:   "say <text>",
	Short: "Speak Russian text aloud",
	Long: `Synthesize Russian text and play it through the speakers.

Useful for checking the pronunciation of a word or phrase without a
full conversation session.

Examples:
  torfl say "Здравствуйте, как дела?"
  torfl say --voice shimmer "Добро пожаловать"
  torfl say -o hello.wav "Привет"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

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

		model := sayModel
		if model == "" {
			if model, err = store.TTSModel(); err != nil {
				return err
			}
		}
		voice := sayVoice
		if voice == "" {
			if voice, err = store.Voice(); err != nil {
				return err
			}
		}

		reqCtx, cancel := context.WithTimeout(cmd.Context(), callTimeout(cctx))
		defer cancel()

		buf, err := registry.Speech().Synthesize(reqCtx, provider.SpeechRequest{
			Model: model,
			Voice: voice,
			Text:  text,
		})
		if err != nil {
			return fmt.Errorf("synthesis failed: %w", err)
		}

		if sayOutput != "" {
			if err := cli.OutputBytes(buf.Data, sayOutput); err != nil {
				return err
			}
			cli.PrintSuccess("Saved %s to %s", cli.FormatBytes(int64(len(buf.Data))), sayOutput)
			return nil
		}

		speaker := audio.NewSpeaker()
		if err := speaker.Play(cmd.Context(), buf); err != nil {
			return fmt.Errorf("playback failed: %w", err)
		}
		return nil
	},
}

func init() {
	sayCmd.Flags().StringVar(&sayVoice, "voice", "", "TTS voice (default from settings)")
	sayCmd.Flags().StringVar(&sayModel, "model", "", "TTS model (default from settings)")
	sayCmd.Flags().StringVarP(&sayOutput, "output", "o", "", "write WAV to file instead of playing")
}
