package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("--help: %v", err)
	}
	for _, want := range []string{"migrate", "prompts", "version"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "descadmin dev\n" {
		t.Fatalf("version output = %q", out)
	}
}

func TestPromptsDefaultsIsValidYAML(t *testing.T) {
	out, err := run(t, "prompts", "defaults")
	if err != nil {
		t.Fatalf("prompts defaults: %v", err)
	}
	var doc struct {
		Prompts []promptDoc `yaml:"prompts"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not yaml: %v\n%s", err, out)
	}
	if len(doc.Prompts) != 2 || doc.Prompts[0].Name != "description_system" || doc.Prompts[1].Type != "user" {
		t.Fatalf("defaults = %+v", doc.Prompts)
	}
}

func TestPromptText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	writeFile(t, path, "from file {subject}")

	tests := []struct {
		name    string
		stdin   string
		text    string
		file    string
		want    string
		wantErr string
	}{
		{name: "inline", text: "hello", want: "hello"},
		{name: "file", file: path, want: "from file {subject}"},
		{name: "stdin", file: "-", stdin: "piped", want: "piped"},
		{name: "blank", text: "  \n", wantErr: "cannot be empty"},
		{name: "too long", text: strings.Repeat("x", maxPromptLength+1), wantErr: "too long"},
		{name: "missing file", file: filepath.Join(dir, "nope.txt"), wantErr: "read prompt text"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := promptText(strings.NewReader(tc.stdin), tc.text, tc.file)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("promptText: %v", err)
			}
			if got != tc.want {
				t.Fatalf("promptText = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPromptsSetRequiresSource(t *testing.T) {
	if _, err := run(t, "prompts", "set", "full_description"); err == nil {
		t.Fatalf("expected error without --text or --file")
	}
	if _, err := run(t, "prompts", "set", "full_description", "--text", "a", "--file", "b"); err == nil {
		t.Fatalf("expected error with both --text and --file")
	}
}
