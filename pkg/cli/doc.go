// Package cli provides common utilities for deepdub command-line tools.
//
// This package includes:
//   - Configuration management (contexts, similar to kubectl)
//   - Output formatting (JSON, YAML, raw)
//   - Request file loading (YAML/JSON)
//   - Terminal styling helpers
//
// Configuration is stored in the ~/.deepdub/<app>/ directory, supporting
// multiple named contexts.
//
// Example usage:
//
//	// Initialize config for your app
//	cfg, err := cli.LoadConfig("deepdub")
//
//	// Resolve the active context
//	ctx, err := cfg.ResolveContext("")
//
//	// Output result
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
