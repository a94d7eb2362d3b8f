package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepdub-ai/deepdub-go/pkg/deepdub"
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Voice asset management",
	Long: `Voice asset management.

List the voices available to your account, or add a new voice from
reference audio.

Example request file (voice-add.yaml):
  data:
    path: reference.wav
  name: Ada
  gender: female
  locale: en-US`,
}

var voiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available voices",
	Long: `List the voices available to the account.

Examples:
  deepdub -c myctx voice list
  deepdub -c myctx voice list --json | jq '.[].voicePromptId'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}
		client, err := createClient(cliCtx)
		if err != nil {
			return err
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		voices, err := client.Voice.List(reqCtx)
		if err != nil {
			return fmt.Errorf("failed to list voices: %w", err)
		}

		printVerbose("Found %d voices", len(voices))
		return outputResult(voices, getOutputFile(), isJSONOutput())
	},
}

var voiceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a voice from reference audio",
	Long: `Add a voice asset from reference audio.

Example request file (voice-add.yaml):
  data:
    path: reference.wav
  name: Ada
  gender: female
  locale: en-US
  speaking_style: Neutral

Examples:
  deepdub -c myctx voice add -f voice-add.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}

		cliCtx, err := getContext()
		if err != nil {
			return err
		}
		client, err := createClient(cliCtx)
		if err != nil {
			return err
		}

		var req deepdub.AddVoiceRequest
		if err := loadRequest(getInputFile(), &req); err != nil {
			return err
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		voice, err := client.Voice.Add(reqCtx, &req)
		if err != nil {
			return fmt.Errorf("failed to add voice: %w", err)
		}

		printSuccess("Voice %q added", req.Name)
		return outputResult(voice, getOutputFile(), isJSONOutput())
	},
}

func init() {
	voiceCmd.AddCommand(voiceListCmd)
	voiceCmd.AddCommand(voiceAddCmd)
}
