// Package cli provides shared plumbing for the torfl command-line
// tool: configuration contexts, the ~/.torfl directory layout, output
// formatting, and terminal styles.
//
// Configuration is stored in ~/.torfl/config.yaml, supporting
// multiple credential contexts similar to kubectl. Preferences and
// study data live in the settings database under ~/.torfl/data.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//	ctx, err := cfg.ResolveContext("")
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	})
package cli
