package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/torflstudy/torfl/pkg/audio"
	"github.com/torflstudy/torfl/pkg/cli"
	"github.com/torflstudy/torfl/pkg/provider"
	"github.com/torflstudy/torfl/pkg/settings"
	"github.com/torflstudy/torfl/pkg/vocab"
)

var (
	vocabUnit string
	vocabMode string
	vocabList bool
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Vocabulary quiz",
	Long: `Quiz yourself on a vocabulary unit.

Units are JSON files under ~/.torfl/content/vocab. Four modes are
available: multiple-choice (Russian word, pick the Korean gloss),
matching (Korean gloss, pick the Russian word), fill-blank (type the
Russian word into an example sentence), and listening (type what you
hear; needs an OpenAI key for synthesis).

Answers update per-word progress; a word is mastered after three
correct answers.

Examples:
  torfl vocab --list
  torfl vocab --unit unit-01
  torfl vocab --unit unit-02 --mode listening`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalPaths.EnsureContentDirs(); err != nil {
			return err
		}
		fsys := os.DirFS(globalPaths.VocabDir())

		if vocabList {
			units, err := vocab.Units(fsys)
			if err != nil {
				return err
			}
			if len(units) == 0 {
				cli.PrintInfo("No units found in %s", globalPaths.VocabDir())
				return nil
			}
			return cli.Output(map[string]any{"units": units}, cli.OutputOptions{Format: outputFormat()})
		}

		words, err := vocab.LoadUnit(fsys, vocabUnit)
		if err != nil {
			return err
		}
		session, err := vocab.NewSession(words, vocab.Mode(vocabMode), time.Now().UnixNano())
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		// Listening mode needs a speech client; other modes run offline.
		var speak func(text string)
		if vocab.Mode(vocabMode) == vocab.ModeListening {
			cctx, err := getContext()
			if err != nil {
				return err
			}
			registry, err := buildRegistry(cmd.Context(), cctx, store)
			if err != nil {
				return err
			}
			ttsModel, err := store.TTSModel()
			if err != nil {
				return err
			}
			voice, err := store.Voice()
			if err != nil {
				return err
			}
			speaker := audio.NewSpeaker()
			timeout := callTimeout(cctx)
			speak = func(text string) {
				reqCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()
				buf, err := registry.Speech().Synthesize(reqCtx, provider.SpeechRequest{
					Model: ttsModel,
					Voice: voice,
					Text:  text,
				})
				if err != nil {
					cli.PrintError("Synthesis failed: %v", err)
					return
				}
				if err := speaker.Play(cmd.Context(), buf); err != nil {
					cli.PrintError("Playback failed: %v", err)
				}
			}
		}

		return runQuiz(session, store, speak, os.Stdin)
	},
}

func init() {
	modes := make([]string, 0, len(vocab.Modes()))
	for _, m := range vocab.Modes() {
		modes = append(modes, string(m))
	}
	vocabCmd.Flags().StringVarP(&vocabUnit, "unit", "u", "unit-01", "vocabulary unit id")
	vocabCmd.Flags().StringVarP(&vocabMode, "mode", "m", string(vocab.ModeMultipleChoice),
		fmt.Sprintf("quiz mode (%s)", strings.Join(modes, ", ")))
	vocabCmd.Flags().BoolVar(&vocabList, "list", false, "list available units and exit")
}

// runQuiz asks every question, records per-word progress, and reports
// the final score.
func runQuiz(session *vocab.Session, store *settings.Store, speak func(string), in *os.File) error {
	styles := cli.NewStyles(cli.DefaultTheme)
	scanner := bufio.NewScanner(in)

	for !session.Finished() {
		q, err := session.Current()
		if err != nil {
			return err
		}

		fmt.Println(styles.Help.Render(fmt.Sprintf("[%d/%d]", session.Asked()+1, session.Total())))
		fmt.Println(styles.Title.Render(q.Prompt))
		if q.Speak != "" && speak != nil {
			speak(q.Speak)
		}
		for i, opt := range q.Options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		given := strings.TrimSpace(scanner.Text())
		if given == "q" || given == "quit" {
			break
		}
		if len(q.Options) > 0 {
			n, err := strconv.Atoi(given)
			if err != nil || n < 1 || n > len(q.Options) {
				cli.PrintWarning("Enter a number 1-%d", len(q.Options))
				continue
			}
			given = q.Options[n-1]
		}

		ok, err := session.Answer(given)
		if err != nil {
			return err
		}
		if ok {
			fmt.Println(styles.Success.Render("✓ правильно"))
		} else {
			fmt.Println(styles.Danger.Render("✗ " + q.Answer))
		}
		fmt.Println()

		if _, err := store.UpdateWordProgress(q.Word.ID, ok); err != nil {
			return err
		}
	}

	if session.Asked() == 0 {
		return nil
	}
	return finishQuiz(session, store, styles)
}

func finishQuiz(session *vocab.Session, store *settings.Store, styles cli.Styles) error {
	correct, wrong := session.Score()
	fmt.Println(styles.Title.Render(fmt.Sprintf("Результат: %d/%d (%d%%)",
		correct, correct+wrong, session.Percent())))

	if _, err := store.AddQuizScore(session.Percent()); err != nil {
		return err
	}
	if _, err := store.AddStudyTime(session.StudyMinutes()); err != nil {
		return err
	}

	progress, err := store.VocabProgress()
	if err != nil {
		return err
	}
	mastered := 0
	for _, p := range progress {
		if p.Mastered {
			mastered++
		}
	}
	if err := store.SetWordsMastered(mastered); err != nil {
		return err
	}
	fmt.Println(styles.Help.Render(fmt.Sprintf("освоено слов всего: %d", mastered)))
	return nil
}
