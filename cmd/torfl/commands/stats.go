package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/torflstudy/torfl/pkg/cli"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Study statistics dashboard",
	Long: `Show accumulated study statistics.

Tracks the daily streak, minutes studied today, total conversation
sessions, mastered vocabulary, and the average quiz score.

Examples:
  torfl stats
  torfl stats --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Stats()
		if err != nil {
			return err
		}

		if outputJSON {
			return cli.Output(st, cli.OutputOptions{Format: cli.FormatJSON})
		}

		avg := "—"
		if len(st.QuizScores) > 0 {
			sum := 0
			for _, p := range st.QuizScores {
				sum += p
			}
			avg = strconv.Itoa(sum/len(st.QuizScores)) + "%"
		}

		styles := cli.NewStyles(cli.DefaultTheme)
		fmt.Println(styles.Dashboard("학습 현황", []cli.Stat{
			{Label: "연속 학습", Value: fmt.Sprintf("%d일", st.Streak)},
			{Label: "오늘", Value: cli.FormatMinutes(st.TodayMinutes)},
			{Label: "대화 세션", Value: strconv.Itoa(st.TotalConversations)},
			{Label: "암기한 단어", Value: strconv.Itoa(st.WordsMastered)},
			{Label: "평균 점수", Value: avg},
		}))
		return nil
	},
}
