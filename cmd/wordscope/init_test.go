package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/4thel00z/wordscope/internal"
)

func TestInitCmdWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordscope", "config.yaml")
	cfg := internal.DefaultConfig()
	cfg.Query.TopK = 7

	newCmd := func(args ...string) (*bytes.Buffer, error) {
		cmd := NewInitCmd(func() *internal.Config { return cfg }, func() string { return path })
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return &out, cmd.Execute()
	}

	out, err := newCmd()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("unexpected output %q", out.String())
	}

	loaded, err := internal.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Query.TopK != 7 {
		t.Errorf("expected top_k 7, got %d", loaded.Query.TopK)
	}

	if _, err := newCmd(); err == nil {
		t.Error("expected an error for an existing config")
	}
	if _, err := newCmd("--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}
