package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/graph"
)

const pairJSON = `{
  "top": {
    "name": "top",
    "kind": "top",
    "cells": [
      {"name": "a", "kind": "instance", "statements": 1, "ports": [{"name": "o", "dir": "output"}]},
      {"name": "b", "kind": "instance", "statements": 1, "ports": [{"name": "i", "dir": "input"}]}
    ],
    "connections": [{"from": "a.o", "to": "b.i"}]
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	sort.Strings(got)
	want := []string{"cache", "completion", "dot", "layout", "serve", "version", "view"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("subcommands mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "commit:") {
		t.Errorf("version output = %q, want build info", out)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"json"}},
		{"svg", []string{"svg"}},
		{"json, svg,text", []string{"json", "svg", "text"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, parseFormats(tt.in)); diff != "" {
			t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		output  string
		want    map[string]string
	}{
		{"default json", []string{"json"}, "", map[string]string{"json": "d/top.layout.json"}},
		{"explicit single", []string{"svg"}, "out.svg", map[string]string{"svg": "out.svg"}},
		{"base name", []string{"json", "dot"}, "x/run", map[string]string{"json": "x/run.layout.json", "dot": "x/run.dot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.formats, "d/top.json", tt.output)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outputPaths() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigFlagsResolve(t *testing.T) {
	path := writeFile(t, "engine.toml", "border = 4\nport_pitch = 3\n")

	var f configFlags
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--config", path, "--port-pitch", "5"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := f.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve() error: %v", err)
	}
	want := config.Default()
	want.Border = 4
	want.PortPitch = 5
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFlagsRejectInvalid(t *testing.T) {
	var f configFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--port-pitch", "0"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.resolve(cmd); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("resolve() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestLayoutCommand(t *testing.T) {
	input := writeFile(t, "pair.json", pairJSON)
	base := filepath.Join(filepath.Dir(input), "out")

	if _, err := execute(t, "layout", input, "--no-cache", "-f", "json,text,dot", "-o", base); err != nil {
		t.Fatalf("layout: %v", err)
	}

	l, err := graph.ReadLayoutFile(base + ".layout.json")
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if len(l.Frames) != 1 || len(l.Frames[0].Routes) != 1 {
		t.Errorf("layout = %+v, want one frame with one route", l.Frames)
	}
	txt, err := os.ReadFile(base + ".txt")
	if err != nil {
		t.Fatalf("read text: %v", err)
	}
	if !strings.Contains(string(txt), "o") {
		t.Errorf("text rendering %q has no pins", txt)
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("dot output starts with %.20q, want digraph", dot)
	}
}

func TestLayoutCommandFailure(t *testing.T) {
	input := writeFile(t, "pair.json", pairJSON)
	_, err := execute(t, "layout", input, "--no-cache", "--border", "0", "--cell-border", "0", "--max-escalations", "0")
	if !errors.IsFatal(err) {
		t.Errorf("layout error = %v, want a fatal layout error", err)
	}
	if _, statErr := os.Stat(strings.TrimSuffix(input, ".json") + ".layout.json"); !os.IsNotExist(statErr) {
		t.Error("a failed layout should not write output")
	}
}

func TestViewAndDotCommands(t *testing.T) {
	input := writeFile(t, "pair.json", pairJSON)
	if _, err := execute(t, "layout", input, "--no-cache"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	layoutPath := strings.TrimSuffix(input, ".json") + ".layout.json"

	out, err := execute(t, "view", layoutPath, "--plain", "--no-color")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !strings.ContainsRune(out, '─') {
		t.Errorf("view output %q has no wire", out)
	}

	if _, err := execute(t, "view", layoutPath, "--plain", "--frame", "top/nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("view unknown frame error = %v, want %s", err, errors.ErrCodeNotFound)
	}

	dotPath := filepath.Join(t.TempDir(), "top.dot")
	if _, err := execute(t, "dot", layoutPath, "-o", dotPath, "--detailed"); err != nil {
		t.Fatalf("dot: %v", err)
	}
	data, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "->") {
		t.Errorf("dot output %q has no edge", data)
	}
}

func TestCompleteFormats(t *testing.T) {
	got, _ := completeFormats(nil, nil, "json,s")
	for _, s := range got {
		if !strings.HasPrefix(s, "json,") {
			t.Errorf("completion %q lost the typed prefix", s)
		}
	}
	if len(got) != 6 {
		t.Errorf("completions = %d, want 6", len(got))
	}
}
