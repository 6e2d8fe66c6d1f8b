// Package main provides the torfl CLI, a TORFL (ТРКИ) study aid for
// Korean-speaking learners of Russian.
//
// Usage:
//
//	torfl <command> [flags]
//
// Commands:
//
//	talk     - Voice conversation practice (record, transcribe, reply, speak)
//	say      - Synthesize Russian text to speech
//	vocab    - Vocabulary quiz over a unit
//	cards    - Flashcard review
//	exam     - Mock exam with AI explanations
//	stats    - Study statistics dashboard
//	config   - Credentials, models, and data management
//
// Configuration:
//
//	The CLI stores configuration in ~/.torfl/
//	Use 'torfl config' commands to manage credentials and preferences.
package main

import (
	"fmt"
	"os"

	"github.com/torflstudy/torfl/cmd/torfl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
