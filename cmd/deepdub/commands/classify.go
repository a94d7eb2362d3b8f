package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepdub-ai/deepdub-go/pkg/deepdub"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <audio-file>",
	Short: "Classify speaker gender from an audio sample",
	Long: `Classify the gender of a speaker from an audio sample.

Only the first second of audio is considered; a short 16 kHz wav
recording is enough.

Examples:
  deepdub -c myctx classify sample.wav
  deepdub -c myctx classify sample.wav --sample-rate 16000 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		audioPath := args[0]

		sampleRate, err := cmd.Flags().GetInt("sample-rate")
		if err != nil {
			return fmt.Errorf("failed to read 'sample-rate' flag: %w", err)
		}

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

		result, err := client.ClassifyGender(reqCtx, &deepdub.GenderClassifyRequest{
			Audio:      &deepdub.AudioInput{Path: audioPath},
			SampleRate: sampleRate,
		})
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}

		printVerbose("Predicted %s with confidence %.2f", result.PredictedGender, result.Confidence)
		return outputResult(result, getOutputFile(), isJSONOutput())
	},
}

func init() {
	classifyCmd.Flags().Int("sample-rate", 0, "sample rate of the audio (default: 16000)")
}
