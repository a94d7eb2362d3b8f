package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func tempConfig(t *testing.T) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfigWithPath("deepdub", path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath: %v", err)
	}
	return cfg
}

func TestLoadConfig_CreatesEmptyConfig(t *testing.T) {
	cfg := tempConfig(t)

	if cfg.AppName != "deepdub" {
		t.Errorf("AppName = %q", cfg.AppName)
	}
	if len(cfg.Contexts) != 0 {
		t.Errorf("new config has %d contexts", len(cfg.Contexts))
	}
	if _, err := os.Stat(cfg.Path()); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestConfig_AddAndResolveContext(t *testing.T) {
	cfg := tempConfig(t)

	err := cfg.AddContext("prod", &Context{
		APIKey:               "dd-key-123",
		EU:                   true,
		DefaultVoicePromptID: "vp-1",
	})
	if err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.UseContext("prod"); err != nil {
		t.Fatalf("UseContext: %v", err)
	}

	// Empty name resolves the current context.
	ctx, err := cfg.ResolveContext("")
	if err != nil {
		t.Fatalf("ResolveContext: %v", err)
	}
	if ctx.Name != "prod" || ctx.APIKey != "dd-key-123" || !ctx.EU {
		t.Errorf("context = %+v", ctx)
	}
}

func TestConfig_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfigWithPath("deepdub", path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath: %v", err)
	}
	err = cfg.AddContext("staging", &Context{
		APIKey:       "dd-key-staging",
		BaseURL:      "http://staging.local",
		WebSocketURL: "ws://staging.local/open",
		Timeout:      60,
		Extra:        map[string]string{"team": "dubbing"},
	})
	if err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.UseContext("staging"); err != nil {
		t.Fatalf("UseContext: %v", err)
	}

	// Reload from disk.
	cfg2, err := LoadConfigWithPath("deepdub", path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg2.CurrentContext != "staging" {
		t.Errorf("CurrentContext = %q", cfg2.CurrentContext)
	}
	ctx, err := cfg2.GetContext("staging")
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if ctx.BaseURL != "http://staging.local" || ctx.Timeout != 60 {
		t.Errorf("context = %+v", ctx)
	}
	if ctx.GetExtra("team") != "dubbing" {
		t.Errorf("extra team = %q", ctx.GetExtra("team"))
	}
}

func TestConfig_DeleteContext(t *testing.T) {
	cfg := tempConfig(t)

	cfg.AddContext("a", &Context{APIKey: "k"})
	cfg.UseContext("a")

	if err := cfg.DeleteContext("a"); err != nil {
		t.Fatalf("DeleteContext: %v", err)
	}
	if cfg.CurrentContext != "" {
		t.Error("deleting the current context must clear the selection")
	}
	if err := cfg.DeleteContext("missing"); err == nil {
		t.Error("expected error deleting unknown context")
	}
}

func TestConfig_ResolveWithoutCurrent(t *testing.T) {
	cfg := tempConfig(t)
	if _, err := cfg.ResolveContext(""); err == nil {
		t.Error("expected error when no current context set")
	}
	if _, err := cfg.ResolveContext("nope"); err == nil {
		t.Error("expected error for unknown context name")
	}
}
