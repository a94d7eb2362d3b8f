// Package main provides the Deepdub CLI tool.
//
// Usage:
//
//	deepdub [flags] <service> <command> [args]
//
// Services:
//
//	tts      - Text-to-speech synthesis (REST, WebSocket, streaming)
//	voice    - Voice asset management
//	classify - Speaker gender classification
//	config   - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.deepdub/deepdub/
//	Use 'deepdub config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/deepdub-ai/deepdub-go/cmd/deepdub/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
