package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckCommand(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"check", "--num-train", "8", "--dim", "4", "--num-classes", "3", "--trials", "2", "--num-checks", "3", "--reg", "0.2"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestBenchCommandWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	body := "num_train: 6\ndim: 3\nnum_classes: 2\nbench_repeats: 2\nlog_every: 1\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cmd := newRootCmd()
	cmd.SetArgs([]string{"bench", "--config", path})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("bench: %v", err)
	}
}

func TestInvalidOverrideFails(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"check", "--reg", "-1"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("expected negative reg to be rejected")
	}
}
