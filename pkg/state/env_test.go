package state

import (
	"context"
	"testing"

	"cluehtml/pkg/config"
)

func TestEnvFromContext(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil || env != EnvFromContext(ctx) {
		t.Fatal("expected the same environment back")
	}
	if env.Uptime() < 0 {
		t.Error("expected a non-negative uptime")
	}
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic without an environment")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_PrepareAndClose(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Logging.ConsoleLogger.Level = "none"

	env := EnvFromContext(ContextWithEnv(context.Background()))
	if err := env.Prepare(cfg, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Log == nil || env.Fonts == nil || env.Images == nil {
		t.Fatal("expected logger and caches")
	}
	env.RedirectStdLog()
	if err := env.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLocalEnv_PageOptions(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	if got := env.PageOptions(); got.Charset != "windows-1252" {
		t.Errorf("expected defaults without configuration, got %+v", got)
	}

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Document.Charset = "koi8-r"
	cfg.Document.Indent = 12
	cfg.Tokenizer.MaxQueued = 10
	env.Cfg = cfg
	o := env.PageOptions()
	if o.Charset != "koi8-r" || o.Document.IndentSize != 12 || o.MaxQueued != 10 {
		t.Errorf("expected configured values, got %+v", o)
	}
	if env.Loader() == nil {
		t.Error("expected a loader")
	}
}
