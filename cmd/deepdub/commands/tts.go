package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepdub-ai/deepdub-go/pkg/cli"
	"github.com/deepdub-ai/deepdub-go/pkg/deepdub"
)

// ttsCmd is the root command for TTS services
var ttsCmd = &cobra.Command{
	Use:   "tts",
	Short: "Text-to-speech synthesis service",
	Long: `Text-to-speech synthesis service.

Three transports are available:
  tts synthesize - One-shot synthesis over REST
  tts generate   - Low-latency synthesis over the multiplexed WebSocket
  tts stream     - Incremental streaming synthesis (text in, audio out)
  tts retro      - Retroactive synthesis against a stored voice prompt

Example request file (tts.yaml):
  text: Hello from Deepdub.
  voice_prompt_id: my_voice_prompt
  locale: en-US
  format: mp3
  sample_rate: 24000`,
}

var ttsSynthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "One-shot synthesis over REST",
	Long: `Synthesize speech with a single REST call. The complete encoded
audio is written to the output file.

Example:
  deepdub -c myctx tts synthesize -f tts.yaml -o output.mp3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}
		if err := requireOutputFile(); err != nil {
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

		var req deepdub.TTSRequest
		if err := loadRequest(getInputFile(), &req); err != nil {
			return err
		}
		applyDefaultVoice(cliCtx, &req.VoicePromptID)

		printVerbose("Using context: %s", cliCtx.Name)

		reqCtx, cancel := context.WithTimeout(context.Background(), 300*time.Second)
		defer cancel()

		start := time.Now()
		audio, err := client.TTS.Synthesize(reqCtx, &req)
		if err != nil {
			return fmt.Errorf("synthesis failed: %w", err)
		}

		if err := outputBytes(audio, getOutputFile()); err != nil {
			return err
		}

		printSuccess("Synthesis complete in %s", time.Since(start).Round(time.Millisecond))
		printInfo("Wrote %s to %s", formatBytes(len(audio)), getOutputFile())
		return nil
	},
}

var ttsRetroCmd = &cobra.Command{
	Use:   "retro",
	Short: "Retroactive synthesis",
	Long: `Retroactively synthesize text against a stored voice prompt.

Example:
  deepdub -c myctx tts retro -f retro.yaml -o output.mp3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}
		if err := requireOutputFile(); err != nil {
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

		var req deepdub.TTSRetroRequest
		if err := loadRequest(getInputFile(), &req); err != nil {
			return err
		}
		applyDefaultVoice(cliCtx, &req.VoicePromptID)

		reqCtx, cancel := context.WithTimeout(context.Background(), 300*time.Second)
		defer cancel()

		audio, err := client.TTS.SynthesizeRetro(reqCtx, &req)
		if err != nil {
			return fmt.Errorf("retroactive synthesis failed: %w", err)
		}

		if err := outputBytes(audio, getOutputFile()); err != nil {
			return err
		}

		printSuccess("Wrote %s to %s", formatBytes(len(audio)), getOutputFile())
		return nil
	},
}

var ttsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Synthesis over the multiplexed WebSocket",
	Long: `Synthesize speech over the multiplexed WebSocket connection,
receiving audio chunks as they are produced.

Example:
  deepdub -c myctx tts generate -f tts.yaml -o output.wav`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}
		if err := requireOutputFile(); err != nil {
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

		var req deepdub.SynthesizeRequest
		if err := loadRequest(getInputFile(), &req); err != nil {
			return err
		}
		applyDefaultVoice(cliCtx, &req.VoicePromptID)

		reqCtx, cancel := context.WithTimeout(context.Background(), 300*time.Second)
		defer cancel()

		conn, err := client.Connect(reqCtx)
		if err != nil {
			return err
		}
		defer conn.Close()

		gen, err := conn.Synthesize(reqCtx, &req)
		if err != nil {
			return err
		}
		printVerbose("Generation ID: %s", gen.ID())

		out, err := os.Create(getOutputFile())
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer out.Close()

		start := time.Now()
		var total, chunks int
		for chunk, err := range gen.Chunks(reqCtx) {
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			if _, err := out.Write(chunk); err != nil {
				return err
			}
			total += len(chunk)
			chunks++
			fmt.Fprint(os.Stderr, "\r"+cli.StatusLine("generating",
				fmt.Sprintf("chunks=%d", chunks),
				fmt.Sprintf("bytes=%s", formatBytes(total)),
				fmt.Sprintf("elapsed=%s", time.Since(start).Round(time.Millisecond))))
		}
		fmt.Fprintln(os.Stderr)

		printSuccess("Received %d chunks (%s) in %s", chunks, formatBytes(total), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// ttsStreamRequest is the request file schema for 'tts stream'.
type ttsStreamRequest struct {
	deepdub.StreamConfig `yaml:",inline"`

	// Texts are the fragments to push, in order.
	Texts []string `json:"texts" yaml:"texts"`

	// IdleSeconds ends consumption after this much silence (default: 3).
	IdleSeconds int `json:"idle_seconds,omitempty" yaml:"idle_seconds,omitempty"`
}

var ttsStreamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Incremental streaming synthesis",
	Long: `Stream text fragments to the synthesis engine and collect audio
incrementally. Consumption ends after the configured idle period.

Example request file (stream.yaml):
  model: dd-etts-2.5
  locale: en-US
  voice_prompt_id: my_voice_prompt
  texts:
    - "Hello, "
    - "this text arrives "
    - "in pieces."
  idle_seconds: 3

Example:
  deepdub -c myctx tts stream -f stream.yaml -o output.wav`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireInputFile(); err != nil {
			return err
		}
		if err := requireOutputFile(); err != nil {
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

		var req ttsStreamRequest
		if err := loadRequest(getInputFile(), &req); err != nil {
			return err
		}
		applyDefaultVoice(cliCtx, &req.VoicePromptID)
		if len(req.Texts) == 0 {
			return fmt.Errorf("request file must list at least one text fragment")
		}
		idle := time.Duration(req.IdleSeconds) * time.Second
		if idle == 0 {
			idle = 3 * time.Second
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 600*time.Second)
		defer cancel()

		stream, err := client.ConnectStream(reqCtx, &req.StreamConfig)
		if err != nil {
			return err
		}
		defer stream.Close()

		for _, text := range req.Texts {
			if err := stream.SendText(reqCtx, text); err != nil {
				return fmt.Errorf("failed to push text: %w", err)
			}
		}

		out, err := os.Create(getOutputFile())
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer out.Close()

		start := time.Now()
		var total int
		for chunk, err := range stream.Chunks(reqCtx, idle) {
			if err != nil {
				return fmt.Errorf("stream failed: %w", err)
			}
			if _, err := out.Write(chunk); err != nil {
				return err
			}
			total += len(chunk)
			fmt.Fprint(os.Stderr, "\r"+cli.StatusLine("streaming",
				fmt.Sprintf("bytes=%s", formatBytes(total)),
				fmt.Sprintf("elapsed=%s", time.Since(start).Round(time.Millisecond))))
		}
		fmt.Fprintln(os.Stderr)

		printSuccess("Streamed %s in %s", formatBytes(total), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	ttsCmd.AddCommand(ttsSynthesizeCmd)
	ttsCmd.AddCommand(ttsRetroCmd)
	ttsCmd.AddCommand(ttsGenerateCmd)
	ttsCmd.AddCommand(ttsStreamCmd)
}
