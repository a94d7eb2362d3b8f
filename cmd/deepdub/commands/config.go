package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deepdub-ai/deepdub-go/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple API configurations,
similar to kubectl's context management.

Configuration is stored in ~/.deepdub/deepdub/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

The Deepdub API requires an API key (sent as the x-api-key header).

Example:
  # Add a context
  deepdub config add-context myctx --api-key YOUR_API_KEY

  # Add an EU-region context with a default voice
  deepdub config add-context prod --api-key YOUR_API_KEY --eu \
    --default-voice-prompt my_voice_prompt_id`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		apiKey, err := cmd.Flags().GetString("api-key")
		if err != nil {
			return fmt.Errorf("failed to read 'api-key' flag: %w", err)
		}
		if apiKey == "" {
			return fmt.Errorf("--api-key is required")
		}

		eu, err := cmd.Flags().GetBool("eu")
		if err != nil {
			return fmt.Errorf("failed to read 'eu' flag: %w", err)
		}

		baseURL, err := cmd.Flags().GetString("base-url")
		if err != nil {
			return fmt.Errorf("failed to read 'base-url' flag: %w", err)
		}
		wsURL, err := cmd.Flags().GetString("websocket-url")
		if err != nil {
			return fmt.Errorf("failed to read 'websocket-url' flag: %w", err)
		}
		streamingURL, err := cmd.Flags().GetString("streaming-url")
		if err != nil {
			return fmt.Errorf("failed to read 'streaming-url' flag: %w", err)
		}

		timeout, err := cmd.Flags().GetInt("timeout")
		if err != nil {
			return fmt.Errorf("failed to read 'timeout' flag: %w", err)
		}

		defaultVoice, err := cmd.Flags().GetString("default-voice-prompt")
		if err != nil {
			return fmt.Errorf("failed to read 'default-voice-prompt' flag: %w", err)
		}

		ctx := &cli.Context{
			APIKey:               apiKey,
			EU:                   eu,
			BaseURL:              baseURL,
			WebSocketURL:         wsURL,
			StreamingURL:         streamingURL,
			Timeout:              timeout,
			DefaultVoicePromptID: defaultVoice,
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q added successfully", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.UseContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}

		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tREGION\tDEFAULT_VOICE")

		for name, ctx := range cfg.Contexts {
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			region := "default"
			if ctx.EU {
				region = "eu"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, region, ctx.DefaultVoicePromptID)
		}

		w.Flush()
		return nil
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		fmt.Printf("Config file: %s\n", cfg.Path())
		fmt.Printf("Current context: %s\n", cfg.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(cfg.Contexts))

		if len(cfg.Contexts) > 0 {
			fmt.Println("\nContext details:")
			for name, ctx := range cfg.Contexts {
				fmt.Printf("\n  %s:\n", name)
				fmt.Printf("    API Key: %s\n", cli.MaskAPIKey(ctx.APIKey))
				if ctx.EU {
					fmt.Println("    Region: eu")
				}
				if ctx.BaseURL != "" {
					fmt.Printf("    Base URL: %s\n", ctx.BaseURL)
				}
				if ctx.WebSocketURL != "" {
					fmt.Printf("    WebSocket URL: %s\n", ctx.WebSocketURL)
				}
				if ctx.StreamingURL != "" {
					fmt.Printf("    Streaming URL: %s\n", ctx.StreamingURL)
				}
				if ctx.Timeout > 0 {
					fmt.Printf("    Timeout: %ds\n", ctx.Timeout)
				}
				if ctx.DefaultVoicePromptID != "" {
					fmt.Printf("    Default Voice Prompt: %s\n", ctx.DefaultVoicePromptID)
				}
			}
		}

		return nil
	},
}

func init() {
	configAddContextCmd.Flags().String("api-key", "", "API key (required)")
	configAddContextCmd.Flags().Bool("eu", false, "use EU region endpoints")
	configAddContextCmd.Flags().String("base-url", "", "REST API base URL")
	configAddContextCmd.Flags().String("websocket-url", "", "multiplexed WebSocket URL")
	configAddContextCmd.Flags().String("streaming-url", "", "streaming WebSocket URL")
	configAddContextCmd.Flags().Int("timeout", 0, "request timeout in seconds")
	configAddContextCmd.Flags().String("default-voice-prompt", "", "default voice prompt ID")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
