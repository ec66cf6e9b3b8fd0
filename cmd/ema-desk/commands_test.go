package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/koscakluka/ema-desk/core/segmenter"
)

func TestRuneChunks(t *testing.T) {
	tests := []struct {
		text string
		size int
		want []string
	}{
		{text: "abc", size: 1, want: []string{"a", "b", "c"}},
		{text: "abcde", size: 2, want: []string{"ab", "cd", "e"}},
		{text: "héllo", size: 2, want: []string{"hé", "ll", "o"}},
		{text: "", size: 3, want: nil},
	}

	for _, tt := range tests {
		got := slices.Collect(runeChunks(tt.text, tt.size))
		if !slices.Equal(got, tt.want) {
			t.Fatalf("runeChunks(%q, %d) = %q, want %q", tt.text, tt.size, got, tt.want)
		}
	}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	replyPath := filepath.Join(dir, "reply.txt")
	reply := "Sure thing. -CLIPSTART-hello world-CLIPEND- Done!"
	if err := os.WriteFile(replyPath, []byte(reply), 0o644); err != nil {
		t.Fatalf("failed to write reply: %v", err)
	}
	missingEnv := filepath.Join(dir, "missing.env")

	out, err := runCommand(t, "replay", replyPath, "--json", "--chunk-size", "3", "--env-file", missingEnv)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	var events []segmenter.Event
	decoder := json.NewDecoder(strings.NewReader(out))
	for decoder.More() {
		var event segmenter.Event
		if err := decoder.Decode(&event); err != nil {
			t.Fatalf("failed to decode %q: %v", out, err)
		}
		events = append(events, event)
	}

	want := []segmenter.Event{
		{Kind: segmenter.KindSentence, Text: "Sure thing."},
		{Kind: segmenter.KindClipboardText, Text: "hello world"},
		{Kind: segmenter.KindSentence, Text: "Done!"},
		{Kind: segmenter.KindFullResponse, Text: reply},
	}
	if !slices.Equal(events, want) {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestReplayCommandRejectsChunkSize(t *testing.T) {
	if _, err := runCommand(t, "replay", "whatever.txt", "--chunk-size", "0"); err == nil {
		t.Fatal("expected error for zero chunk size")
	}
}

func TestSchemaCommand(t *testing.T) {
	out, err := runCommand(t, "schema")
	if err != nil {
		t.Fatalf("schema failed: %v", err)
	}

	var schema struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal([]byte(out), &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	for _, section := range []string{"completions", "segmenter", "assistant", "logging"} {
		if _, ok := schema.Properties[section]; !ok {
			t.Fatalf("schema is missing %q: %s", section, out)
		}
	}
	if !strings.Contains(out, "start_seq") {
		t.Fatalf("expected yaml field names in schema: %s", out)
	}
}

func TestChatModelKeys(t *testing.T) {
	a, err := newAssistant(testConfig(t))
	if err != nil {
		t.Fatalf("failed to create assistant: %v", err)
	}
	m := newChatModel(t.Context(), a)

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = model.(chatModel)
	if !a.ClipboardAttached() {
		t.Fatal("expected ctrl+b to attach the clipboard")
	}

	model, _ = m.Update(sentenceMsg("Hello there."))
	m = model.(chatModel)
	model, _ = m.Update(clipboardMsg("ls -la"))
	m = model.(chatModel)

	view := m.View()
	for _, want := range []string{"Hello there.", "ls -la", "[clipboard attached]"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, view)
		}
	}

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = model.(chatModel)
	if len(m.lines) != 1 || m.lines[0].kind != lineNotice {
		t.Fatalf("expected ctrl+l to clear the transcript, got %+v", m.lines)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected esc to quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected esc to return tea.Quit")
	}
}
