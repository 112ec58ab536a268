package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestRunExitCodes(t *testing.T) {
	dir := isolate(t)
	model := filepath.Join(dir, "root.xml")
	if err := os.WriteFile(model, []byte(`<System><Block BlockType="Gain" Name="K" SID="1"/></System>`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr string
	}{
		{"ok", []string{"find", model, "--type", "Gain"}, exitOK, ""},
		{"missing file", []string{"tree", filepath.Join(dir, "nope.xml")}, exitFailure, "FILE_NOT_FOUND"},
		{"bad format", []string{"render", model, "--format", "png"}, exitInvalidArgs, "INVALID_FORMAT"},
		{"unknown command", []string{"frobnicate"}, exitFailure, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := run(context.Background(), tt.args, &stderr); got != tt.want {
				t.Errorf("run(%v) = %d, want %d; stderr:\n%s", tt.args, got, tt.want, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr %q should contain %q", stderr.String(), tt.wantErr)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	dir := isolate(t)
	model := filepath.Join(dir, "root.xml")
	if err := os.WriteFile(model, []byte(`<System/>`), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stderr bytes.Buffer
	if got := run(ctx, []string{"tree", model, "--no-cache"}, &stderr); got != exitInterrupted {
		t.Errorf("run() with cancelled context = %d, want %d; stderr:\n%s", got, exitInterrupted, stderr.String())
	}
}

func TestRunReportsBuildErrorDetails(t *testing.T) {
	dir := isolate(t)
	files := map[string]string{
		"root.xml":  `<System><Block BlockType="SubSystem" Name="S" SID="1"><System Ref="sub"/></Block></System>`,
		"sub.xml":   `<System><Block BlockType="Gain" Name="NoSid"/></System>`,
		"dup.xml":   `<System><Block Name="A" SID="4"/><Block Name="B" SID="4"/></System>`,
		"count.xml": `<System><Block Name="C" SID="3"><PortCounts in="x"/></Block></System>`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		file string
		want []string
	}{
		{"root.xml", []string{"Error [SCHEMA_VIOLATION]", "sub.xml", `"NoSid" has no SID`}},
		{"dup.xml", []string{"Error [DUPLICATE_ID]", `duplicate block SID "4"`}},
		{"count.xml", []string{"Error [SCHEMA_VIOLATION]", "block 3", `in="x" is not a count`}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := run(context.Background(), []string{"tree", filepath.Join(dir, tt.file), "--no-cache"}, &stderr); got != exitFailure {
				t.Errorf("run(tree %s) = %d, want %d", tt.file, got, exitFailure)
			}
			for _, w := range tt.want {
				if !strings.Contains(stderr.String(), w) {
					t.Errorf("stderr %q should contain %q", stderr.String(), w)
				}
			}
		})
	}
}
