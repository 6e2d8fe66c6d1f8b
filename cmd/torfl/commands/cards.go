package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/torflstudy/torfl/pkg/cli"
	"github.com/torflstudy/torfl/pkg/vocab"
)

var cardsUnit string

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Flashcard review",
	Long: `Review a vocabulary unit as flashcards.

The front shows the Russian word, the back shows the Korean gloss and
the example sentence. The deck wraps around.

Keys:
  <Enter> / f   flip the card
  n             next card
  p             previous card
  q             quit

Example:
  torfl cards --unit unit-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalPaths.EnsureContentDirs(); err != nil {
			return err
		}
		words, err := vocab.LoadUnit(os.DirFS(globalPaths.VocabDir()), cardsUnit)
		if err != nil {
			return err
		}
		deck, err := vocab.NewDeck(words)
		if err != nil {
			return err
		}
		return runCards(deck, os.Stdin)
	},
}

func init() {
	cardsCmd.Flags().StringVarP(&cardsUnit, "unit", "u", "unit-01", "vocabulary unit id")
}

func runCards(deck *vocab.Deck, in *os.File) error {
	styles := cli.NewStyles(cli.DefaultTheme)
	scanner := bufio.NewScanner(in)

	for {
		w := deck.Current()
		back := w.Ko
		if w.ExampleRu != "" {
			back += "\n" + w.ExampleRu
		}
		fmt.Println(styles.Flashcard(w.Ru, back, deck.Flipped(), deck.Position()+1, deck.Size()))
		fmt.Print(styles.Help.Render("f: перевернуть · n: дальше · p: назад · q: выход") + " ")

		if !scanner.Scan() {
			return scanner.Err()
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "", "f":
			deck.Flip()
		case "n":
			deck.Next()
		case "p":
			deck.Prev()
		case "q", "quit":
			return nil
		}
		fmt.Println()
	}
}
