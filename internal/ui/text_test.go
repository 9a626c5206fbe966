package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatterWithColor(t *testing.T) {
	os.Unsetenv("NO_COLOR")
	color.NoColor = false
	defer func() { color.NoColor = true }()

	result := Code.Sprint("lazywarden paths")
	if strings.Contains(result, "`") {
		t.Errorf("Code.Sprint should not contain backticks when color is enabled, got: %s", result)
	}
	if !strings.Contains(result, "\x1b[") {
		t.Errorf("Code.Sprint should contain ANSI escape codes when color is enabled, got: %s", result)
	}
}

func TestFormatterWithNoColor(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Code adds backticks", Code, "lazywarden decrypt", "`lazywarden decrypt`"},
		{"Path has no decoration", Path, "/backup/bw-backup_1.zip", "/backup/bw-backup_1.zip"},
		{"Success has no decoration", Success, "✓", "✓"},
		{"Error has no decoration", Error, "✗", "✗"},
		{"Skipped adds brackets", Skipped, "skipped", "[skipped]"},
		{"Highlight adds quotes", Highlight, "588b0643", "'588b0643'"},
		{"Muted adds parentheses", Muted, "optional", "(optional)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.formatter.Sprint(tt.input)
			if got != tt.want {
				t.Errorf("%s.Sprint(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
			}
		})
	}
}

func TestEnsureNewline(t *testing.T) {
	tests := map[string]string{
		"":       "\n",
		"done":   "done\n",
		"done\n": "done\n",
	}
	for in, want := range tests {
		if got := EnsureNewline(in); got != want {
			t.Errorf("EnsureNewline(%q) = %q, want %q", in, got, want)
		}
	}
}
