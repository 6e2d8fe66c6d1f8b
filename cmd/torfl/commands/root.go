package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/torflstudy/torfl/pkg/cli"
	"github.com/torflstudy/torfl/pkg/provider"
	"github.com/torflstudy/torfl/pkg/settings"
)

var (
	// Global flags
	cfgFile     string
	contextName string
	outputJSON  bool
	verbose     bool

	globalConfig *cli.Config
	globalPaths  *cli.Paths
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "torfl",
	Short: "TORFL study aid for Korean speakers",
	Long: `torfl - подготовка к ТРКИ from the terminal.

Practice spoken Russian with an AI teacher, drill vocabulary, review
flashcards, and take mock exams with AI explanations of your mistakes.

Voice practice records from the microphone, transcribes your speech,
lets the model answer with corrections, and speaks the reply back.

Configuration lives in ~/.torfl/ and supports multiple credential
contexts, similar to kubectl's context management.

Examples:
  # Store your API keys
  torfl config set-key openai sk-...
  torfl config set-key google AIza...

  # Talk with the AI teacher about ordering coffee
  torfl talk --scenario daily-cafe

  # Drill unit 1 as a listening quiz
  torfl vocab --unit unit-01 --mode listening

  # Take the grammar mock exam and get explanations
  torfl exam --type grammar --explain
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.torfl/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "credential context to use")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(talkCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(vocabCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	globalPaths, err = cli.NewPaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving home directory: %v\n", err)
		os.Exit(1)
	}
	path := cfgFile
	if path == "" {
		path = globalPaths.ConfigFile()
	}
	globalConfig, err = cli.LoadConfigWithPath(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getContext returns the credential context to use.
func getContext() (*cli.Context, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig.ResolveContext(contextName)
}

// openStore opens the settings database under ~/.torfl/data.
func openStore() (*settings.Store, error) {
	if err := globalPaths.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return settings.Open(settings.Options{Dir: globalPaths.DataDir()})
}

// buildRegistry constructs provider clients. Context credentials win
// over stored ones; either source alone is enough.
func buildRegistry(ctx context.Context, cctx *cli.Context, store *settings.Store) (*provider.Registry, error) {
	openaiKey := cctx.OpenAIKey
	if openaiKey == "" {
		key, err := store.APIKey("openai")
		if err != nil {
			return nil, err
		}
		openaiKey = key
	}
	googleKey := cctx.GoogleKey
	if googleKey == "" {
		key, err := store.APIKey("google")
		if err != nil {
			return nil, err
		}
		googleKey = key
	}
	return provider.NewRegistry(ctx, provider.Config{
		OpenAIKey:     openaiKey,
		OpenAIBaseURL: cctx.OpenAIBaseURL,
		GoogleKey:     googleKey,
	})
}

// callTimeout returns the per-call timeout from the context, default
// 60 seconds.
func callTimeout(cctx *cli.Context) time.Duration {
	if cctx.Timeout > 0 {
		return time.Duration(cctx.Timeout) * time.Second
	}
	return 60 * time.Second
}

// outputFormat maps the --json flag to an output format.
func outputFormat() cli.OutputFormat {
	if outputJSON {
		return cli.FormatJSON
	}
	return cli.FormatYAML
}
