package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/torflstudy/torfl/pkg/cli"
	"github.com/torflstudy/torfl/pkg/exam"
	"github.com/torflstudy/torfl/pkg/settings"
)

var (
	examType    string
	examExplain bool
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Mock exam",
	Long: `Take a TORFL-style mock exam.

Question sets are JSON files under ~/.torfl/content/exams, one set per
exam type. With --explain, wrong answers are sent to the chat model
after the exam and explained in Korean with Russian examples.

Examples:
  torfl exam --type grammar
  torfl exam --type reading --explain`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalPaths.EnsureContentDirs(); err != nil {
			return err
		}
		questions, err := exam.LoadSet(os.DirFS(globalPaths.ExamDir()), examType)
		if err != nil {
			return err
		}
		session, err := exam.NewSession(questions)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := runExam(session, os.Stdin); err != nil {
			return err
		}
		if session.Asked() == 0 {
			return nil
		}
		if err := recordExam(session, store); err != nil {
			return err
		}
		if examExplain {
			return explainExam(cmd.Context(), session, store)
		}
		return nil
	},
}

func init() {
	examCmd.Flags().StringVarP(&examType, "type", "t", "grammar", "exam type (grammar, reading)")
	examCmd.Flags().BoolVar(&examExplain, "explain", false, "explain wrong answers with the chat model")
}

func runExam(session *exam.Session, in *os.File) error {
	styles := cli.NewStyles(cli.DefaultTheme)
	scanner := bufio.NewScanner(in)

	for !session.Finished() {
		q, err := session.Current()
		if err != nil {
			return err
		}

		fmt.Println(styles.Help.Render(fmt.Sprintf("[%d/%d]", session.Asked()+1, session.Total())))
		if q.Passage != "" {
			fmt.Println(styles.User.Render(q.Passage))
			fmt.Println()
		}
		fmt.Println(styles.Title.Render(q.Question))
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
		n, err := strconv.Atoi(given)
		if err != nil || n < 1 || n > len(q.Options) {
			cli.PrintWarning("Enter a number 1-%d", len(q.Options))
			continue
		}

		ok, err := session.Answer(n - 1)
		if err != nil {
			return err
		}
		if ok {
			fmt.Println(styles.Success.Render("✓ правильно"))
		} else {
			fmt.Println(styles.Danger.Render("✗ правильный ответ: " + q.Options[q.CorrectIndex]))
		}
		fmt.Println()
	}

	correct, total := session.Score()
	fmt.Println(styles.Title.Render(fmt.Sprintf("Результат: %d/%d (%d%%)",
		correct, total, session.Percent())))
	return nil
}

func recordExam(session *exam.Session, store *settings.Store) error {
	if _, err := store.AddQuizScore(session.Percent()); err != nil {
		return err
	}
	_, err := store.AddStudyTime(session.StudyMinutes())
	return err
}

// explainExam sends the wrong answers to the chat model and prints
// the Korean explanation. A perfect score skips the network call.
func explainExam(ctx context.Context, session *exam.Session, store *settings.Store) error {
	styles := cli.NewStyles(cli.DefaultTheme)

	msgs, err := session.ExplanationMessages()
	if errors.Is(err, exam.ErrAllCorrect) {
		fmt.Println(styles.Success.Render("🎉 전부 맞았습니다! Отлично!"))
		return nil
	}
	if err != nil {
		return err
	}

	cctx, err := getContext()
	if err != nil {
		return err
	}
	registry, err := buildRegistry(ctx, cctx, store)
	if err != nil {
		return err
	}
	model, err := store.ChatModel()
	if err != nil {
		return err
	}
	client, err := registry.ChatClient(model)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, callTimeout(cctx))
	defer cancel()

	reply, err := client.Chat(reqCtx, model, msgs)
	if err != nil {
		return fmt.Errorf("explanation failed: %w", err)
	}

	fmt.Println()
	fmt.Println(styles.Title.Render("── 오답 해설 ──"))
	fmt.Println(reply)
	return nil
}
