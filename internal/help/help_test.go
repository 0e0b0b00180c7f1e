package help

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixedDate = "2026-02-27"

func row(name string, width int, desc string) string {
	return fmt.Sprintf("  %-*s%s\n", width, name, desc)
}

func TestFormatTerminal_Exact(t *testing.T) {
	expected := map[string]string{
		"init": "xh init - write the default configuration file\n" +
			"\n" +
			"Usage: xh init [--force]\n" +
			"\n" +
			"Flags:\n" +
			row("--force", 10, "Overwrite an existing config file") +
			"\n" +
			"Writes ~/.config/x-heatmap/config.toml (or the same path under\n" +
			"$XDG_CONFIG_HOME) with every setting at its default value. An existing\n" +
			"file is left untouched unless --force is given.\n" +
			"\n" +
			"Files:\n" +
			"  ~/.config/x-heatmap/config.toml\n" +
			"      Configuration, or $XDG_CONFIG_HOME/x-heatmap/config.toml when set\n",

		"show": "xh show - summarize a previously exported snapshot or database\n" +
			"\n" +
			"Usage: xh show <file> [--year <N>] [--years] [--json]\n" +
			"\n" +
			"Arguments:\n" +
			row("file", 13, "Snapshot (.json.zst) or SQLite database (.db) from xh export") +
			"\n" +
			"Flags:\n" +
			row("--year <N>", 13, "Summarize this year instead of the most recent one") +
			row("--years", 13, "Print a one-line overview per year") +
			row("--json", 13, "Print the decompressed data as JSON") +
			"\n" +
			"Files ending in .db, .sqlite, or .sqlite3 are read as SQLite exports.\n" +
			"Those hold daily counts and yearly stats but no post bodies, so the\n" +
			"daily \"tweets\" lists are empty in --json output.\n" +
			"\n" +
			"Exit status: 0 on success, 1 when the file cannot be read or the year is not in it.\n",

		"version": "xh version - print version\n" +
			"\n" +
			"Usage: xh version\n",
	}

	for name, want := range expected {
		t.Run(name, func(t *testing.T) {
			cmd, ok := Lookup(name)
			require.True(t, ok, "Lookup(%q)", name)
			assert.Equal(t, want, FormatTerminal(cmd))
		})
	}
}

func TestFormatTerminal_AllCommands(t *testing.T) {
	for _, cmd := range Subcommands {
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatTerminal(cmd)
			assert.True(t, strings.HasPrefix(out, fmt.Sprintf("xh %s - %s\n", cmd.Name, cmd.Synopsis)), "header")
			assert.Contains(t, out, "Usage: "+cmd.Usage)
			if cmd.Description != "" {
				assert.Contains(t, out, cmd.Description)
			}
			for _, f := range cmd.Flags {
				assert.Contains(t, out, "  "+f.Name)
			}
			for _, f := range cmd.Files {
				assert.Contains(t, out, "  "+f.Path+"\n")
			}
			if cmd.ExitStatus != "" {
				assert.Contains(t, out, "Exit status: "+cmd.ExitStatus)
			}
		})
	}
}

func TestFormatTerminal_OptionalArg(t *testing.T) {
	out := FormatTerminal(CmdCheck)
	assert.Contains(t, out, row("[archive.zip]", 18, "Archive or extracted tweets.js to inspect"))
	assert.Contains(t, out, row("--config <file>", 18, "Read configuration from file instead of the default path"))
}

func TestFormatUsage(t *testing.T) {
	got := FormatUsage(TopLevel, Subcommands)

	header := fmt.Sprintf("xh %s - activity heatmaps from X/Twitter archives\n", Version)
	assert.True(t, strings.HasPrefix(got, header), "header: %q", got)

	width := len("xh help [command]")
	for _, c := range Subcommands {
		width = max(width, len(c.tableUsage()))
	}
	for _, c := range Subcommands {
		assert.Contains(t, got, fmt.Sprintf("  %-*s%s\n", width+3, c.tableUsage(), c.Brief))
	}
	assert.Contains(t, got, "Configuration: ~/.config/x-heatmap/config.toml\n")
}

func TestRegistryCompleteness(t *testing.T) {
	expectedNames := []string{"init", "process", "export", "show", "check", "watch", "version"}
	require.Len(t, Subcommands, len(expectedNames))
	for i, name := range expectedNames {
		c := Subcommands[i]
		assert.Equal(t, name, c.Name, "Subcommands[%d]", i)
		assert.NotEmpty(t, c.Synopsis, name)
		assert.NotEmpty(t, c.Usage, name)
		assert.NotEmpty(t, c.Brief, name)
	}
	_, ok := Lookup("hook")
	assert.False(t, ok)
}

func TestFlagNames(t *testing.T) {
	assert.Equal(t, []string{"--snapshot", "--sqlite", "--tz", "--config"}, CmdExport.FlagNames())
}

func TestManName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "xh"},
		{"init", "xh-init"},
		{"export", "xh-export"},
		{"cache clear", "xh-cache-clear"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Command{Name: tt.name}.ManName(), "Command{Name: %q}", tt.name)
	}
}

func TestEscapeRoff(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`simple text`, `simple text`},
		{`back\slash`, `back\\slash`},
		{`.leading dot`, `\&.leading dot`},
		{"line1\n.line2", "line1\n\\&.line2"},
		{`--flag`, `\-\-flag`},
		{`a-b`, `a\-b`},
		{`.config/x-heatmap/`, `\&.config/x\-heatmap/`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeRoff(tt.input), "escapeRoff(%q)", tt.input)
	}
}

func TestFormatRoffStructure(t *testing.T) {
	for _, cmd := range Subcommands {
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatRoff(cmd, fixedDate)

			assert.Contains(t, out, ".TH "+strings.ToUpper(cmd.ManName())+" 1")
			assert.Contains(t, out, "X-Heatmap Manual")
			assert.Contains(t, out, ".SH NAME")
			assert.Contains(t, out, ".SH SYNOPSIS")

			sections := map[string]bool{
				".SH DESCRIPTION": cmd.Description != "",
				".SH OPTIONS":     len(cmd.Args) > 0 || len(cmd.Flags) > 0,
				".SH EXAMPLES":    len(cmd.Examples) > 0,
				".SH EXIT STATUS": cmd.ExitStatus != "",
				".SH FILES":       len(cmd.Files) > 0,
				".SH SEE ALSO":    len(cmd.SeeAlso) > 0,
			}
			for section, want := range sections {
				assert.Equal(t, want, strings.Contains(out, section), "%s present", section)
			}
		})
	}
}

func TestFormatRoff_Args(t *testing.T) {
	assert.Contains(t, FormatRoff(CmdCheck, fixedDate), ".TP\n.RI [ archive.zip ]\n")
	assert.Contains(t, FormatRoff(CmdProcess, fixedDate), ".TP\n.I archive.zip\n")
}

func TestFormatRoff_FilesAndExitStatus(t *testing.T) {
	out := FormatRoff(CmdExport, fixedDate)
	assert.Contains(t, out, ".SH EXIT STATUS\n0 when every requested output was written, 1 otherwise.\n")
	assert.Contains(t, out, ".SH FILES\n.TP\n.I ~/.config/x\\-heatmap/config.toml\n")
	assert.Contains(t, out, ".I ~/.local/share/x\\-heatmap/\n")
	assert.Contains(t, out, ".BR sqlite3 (1)")

	assert.NotContains(t, FormatRoff(CmdVersion, fixedDate), ".SH FILES")
}

func TestFormatRoffTopLevelStructure(t *testing.T) {
	out := FormatRoffTopLevel(TopLevel, Subcommands, fixedDate)

	for _, section := range []string{
		".TH XH 1",
		".SH NAME",
		".SH SYNOPSIS",
		".SH DESCRIPTION",
		".SH COMMANDS",
		".SH ENVIRONMENT",
		".SH FILES",
		".SH SEE ALSO",
	} {
		assert.Contains(t, out, section)
	}
	for _, cmd := range Subcommands {
		assert.Contains(t, out, escapeRoff(cmd.Brief))
	}

	// each file listed once even though several commands read it
	assert.Equal(t, 1, strings.Count(out, ".I ~/.config/x\\-heatmap/config.toml\n"))
	assert.Contains(t, out, ".B XDG_CONFIG_HOME")
}

func TestFormatRoffEscapesDescription(t *testing.T) {
	out := FormatRoff(CmdExport, fixedDate)
	assert.NotContains(t, out, "Without\n--snapshot")
	assert.Contains(t, out, `\-\-snapshot`)
}
