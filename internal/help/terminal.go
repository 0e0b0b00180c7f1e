package help

import (
	"fmt"
	"strings"
)

// FormatTerminal renders a subcommand's help text for terminal --help output.
func FormatTerminal(c Command) string {
	var sections []string

	sections = append(sections, fmt.Sprintf("xh %s - %s", c.Name, c.Synopsis))

	// Usage line
	sections = append(sections, fmt.Sprintf("Usage: %s", c.Usage))

	// Args and flags share one description column.
	maxNameLen := 0
	for _, a := range c.Args {
		maxNameLen = max(maxNameLen, len(argLabel(a)))
	}
	for _, f := range c.Flags {
		maxNameLen = max(maxNameLen, len(f.Name))
	}
	col := 2 + maxNameLen + 3
	if len(c.Args) > 0 && len(c.Flags) > 0 && col < 13 {
		col = 13
	}

	if len(c.Args) > 0 {
		rows := make([][2]string, len(c.Args))
		for i, a := range c.Args {
			rows[i] = [2]string{argLabel(a), a.Desc}
		}
		sections = append(sections, table("Arguments:", rows, col))
	}

	if len(c.Flags) > 0 {
		rows := make([][2]string, len(c.Flags))
		for i, f := range c.Flags {
			rows[i] = [2]string{f.Name, f.Desc}
		}
		sections = append(sections, table("Flags:", rows, col))
	}

	// Description
	if c.Description != "" {
		sections = append(sections, c.Description)
	}

	// Examples
	if len(c.Examples) > 0 {
		s := "Examples:\n"
		for _, e := range c.Examples {
			s += "  " + e + "\n"
		}
		// Trim final newline: Join adds \n\n between sections,
		// and we add a trailing \n after Join.
		s = strings.TrimRight(s, "\n")
		sections = append(sections, s)
	}

	if len(c.Files) > 0 {
		s := "Files:\n"
		for _, f := range c.Files {
			s += "  " + f.Path + "\n      " + f.Desc + "\n"
		}
		sections = append(sections, strings.TrimRight(s, "\n"))
	}

	if c.ExitStatus != "" {
		sections = append(sections, "Exit status: "+c.ExitStatus)
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// argLabel brackets optional positional arguments, as in the usage line.
func argLabel(a Arg) string {
	if a.Optional {
		return "[" + a.Name + "]"
	}
	return a.Name
}

// table renders a titled two-column block with descriptions starting at col.
func table(title string, rows [][2]string, col int) string {
	var b strings.Builder
	b.WriteString(title)
	for _, r := range rows {
		fmt.Fprintf(&b, "\n  %-*s%s", col-2, r[0], r[1])
	}
	return b.String()
}

// FormatUsage renders the top-level usage text (for xh --help / xh help).
func FormatUsage(top Command, subs []Command) string {
	var b strings.Builder

	// Header
	fmt.Fprintf(&b, "xh %s - %s\n", Version, top.Synopsis)

	// Subcommand table
	b.WriteString("\nUsage:\n")

	// Collect table entries: usage → brief
	type entry struct {
		usage string
		brief string
	}
	entries := make([]entry, 0, len(subs)+1)
	for _, s := range subs {
		entries = append(entries, entry{s.tableUsage(), s.Brief})
	}
	entries = append(entries, entry{"xh help [command]", "Show help"})

	maxWidth := 0
	for _, e := range entries {
		maxWidth = max(maxWidth, len(e.usage))
	}

	for _, e := range entries {
		gap := maxWidth - len(e.usage) + 3
		fmt.Fprintf(&b, "  %s%s%s\n", e.usage, strings.Repeat(" ", gap), e.brief)
	}

	b.WriteString(`
Run "xh <command> --help" for command details.

Configuration: ~/.config/x-heatmap/config.toml
`)
	return b.String()
}
