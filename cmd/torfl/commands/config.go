package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/torflstudy/torfl/pkg/cli"
	"github.com/torflstudy/torfl/pkg/provider"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration and credentials",
	Long: `Manage API keys, model preferences, and credential contexts.

API keys and model preferences live in the local database under
~/.torfl/data. Contexts in ~/.torfl/config.yaml can override the
stored keys per invocation, similar to kubectl's context management.`,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <vendor> <key>",
	Short: "Store an API key",
	Long: `Store an API key for a vendor in the local database.

Vendors: openai, google

Examples:
  torfl config set-key openai sk-...
  torfl config set-key google AIza...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vendor, key := args[0], args[1]
		if vendor != string(provider.VendorOpenAI) && vendor != string(provider.VendorGoogle) {
			return fmt.Errorf("unknown vendor %q (openai, google)", vendor)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetAPIKey(vendor, key); err != nil {
			return err
		}
		cli.PrintSuccess("Stored %s key %s", vendor, cli.MaskAPIKey(key))
		return nil
	},
}

var configTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test provider connections",
	Long: `Probe each configured provider with a cheap list call.

Vendors without a stored key are reported as not configured, no
network call is made for them.`,
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

		styles := cli.NewStyles(cli.DefaultTheme)
		for _, client := range registry.Clients() {
			reqCtx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			status := client.TestConnection(reqCtx)
			cancel()
			if status.OK {
				fmt.Printf("%s %s\n", styles.Success.Render("✓"), status.Provider)
			} else {
				fmt.Printf("%s %s: %s\n", styles.Danger.Render("✗"), status.Provider, status.Detail)
			}
		}
		return nil
	},
}

var configUseModelCmd = &cobra.Command{
	Use:   "use-model <model>",
	Short: "Set the default chat model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := args[0]
		if !provider.KnownModel(model) {
			return fmt.Errorf("unknown model %q, choose one of: %s",
				model, strings.Join(provider.ChatModels(), ", "))
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetChatModel(model); err != nil {
			return err
		}
		cli.PrintSuccess("Chat model set to %s", model)
		return nil
	},
}

var configUseVoiceCmd = &cobra.Command{
	Use:   "use-voice <voice>",
	Short: "Set the default TTS voice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetVoice(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Voice set to %s", args[0])
		return nil
	},
}

var configUseTTSCmd = &cobra.Command{
	Use:   "use-tts <model>",
	Short: "Set the default TTS model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetTTSModel(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("TTS model set to %s", args[0])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		chatModel, err := store.ChatModel()
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
		openaiKey, err := store.APIKey("openai")
		if err != nil {
			return err
		}
		googleKey, err := store.APIKey("google")
		if err != nil {
			return err
		}

		return cli.Output(map[string]any{
			"chat_model": chatModel,
			"tts_model":  ttsModel,
			"voice":      voice,
			"openai_key": cli.MaskAPIKey(openaiKey),
			"google_key": cli.MaskAPIKey(googleKey),
		}, cli.OutputOptions{Format: outputFormat()})
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export settings and study data",
	Long: `Export everything except conversation audio: settings, study
statistics, and vocabulary progress. Conversation history is exported
as a count only.

Example:
  torfl config export -o backup.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		data, err := store.ExportAll()
		if err != nil {
			return err
		}
		format := outputFormat()
		if outPath != "" {
			format = cli.FormatJSON
		}
		return cli.Output(data, cli.OutputOptions{Format: format, File: outPath})
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset study data",
	Long: `Reset study data: statistics, vocabulary progress, and saved
conversations. API keys and model preferences are kept.

With --all, everything is deleted, keys included.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return err
		}
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}
		if !force {
			return fmt.Errorf("refusing to reset without --force")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if all {
			if err := store.ResetAll(); err != nil {
				return err
			}
			cli.PrintSuccess("All data deleted")
			return nil
		}
		if err := store.ResetStudyData(); err != nil {
			return err
		}
		cli.PrintSuccess("Study data reset, credentials kept")
		return nil
	},
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a credential context",
	Long: `Add a named credential context to ~/.torfl/config.yaml.

Context keys override the stored ones when the context is selected
with -c. Keys left empty fall back to the database.

Example:
  torfl config add-context work --openai-key sk-... --timeout 120`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		openaiKey, err := cmd.Flags().GetString("openai-key")
		if err != nil {
			return err
		}
		googleKey, err := cmd.Flags().GetString("google-key")
		if err != nil {
			return err
		}
		baseURL, err := cmd.Flags().GetString("base-url")
		if err != nil {
			return err
		}
		timeout, err := cmd.Flags().GetInt("timeout")
		if err != nil {
			return err
		}
		if openaiKey == "" && googleKey == "" {
			return fmt.Errorf("at least one of --openai-key or --google-key is required")
		}

		if err := globalConfig.AddContext(name, &cli.Context{
			OpenAIKey:     openaiKey,
			GoogleKey:     googleKey,
			OpenAIBaseURL: baseURL,
			Timeout:       timeout,
		}); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q added", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a credential context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"ls"},
	Short:   "List credential contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := globalConfig.ListContexts()
		sort.Strings(names)
		if len(names) == 0 {
			cli.PrintInfo("No contexts configured, using stored keys")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tOPENAI\tGOOGLE\tTIMEOUT")
		for _, name := range names {
			ctx, err := globalConfig.GetContext(name)
			if err != nil {
				continue
			}
			current := ""
			if name == globalConfig.CurrentContext {
				current = "*"
			}
			timeout := ""
			if ctx.Timeout > 0 {
				timeout = fmt.Sprintf("%ds", ctx.Timeout)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name,
				cli.MaskAPIKey(ctx.OpenAIKey), cli.MaskAPIKey(ctx.GoogleKey), timeout)
		}
		return w.Flush()
	},
}

func init() {
	configExportCmd.Flags().StringP("output", "o", "", "write export to file as JSON")

	configResetCmd.Flags().Bool("all", false, "delete everything, credentials included")
	configResetCmd.Flags().Bool("force", false, "confirm the reset")

	configAddContextCmd.Flags().String("openai-key", "", "OpenAI API key")
	configAddContextCmd.Flags().String("google-key", "", "Google API key")
	configAddContextCmd.Flags().String("base-url", "", "OpenAI-compatible base URL")
	configAddContextCmd.Flags().Int("timeout", 0, "per-call timeout in seconds")

	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configUseModelCmd)
	configCmd.AddCommand(configUseVoiceCmd)
	configCmd.AddCommand(configUseTTSCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configExportCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configListContextsCmd)
}
