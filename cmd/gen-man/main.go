package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/suykerbuyk/x-heatmap/internal/help"
)

func main() {
	dir := "man"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fail(err)
	}

	date := buildDate().Format("2006-01-02")

	pages := map[string]string{
		"xh.1": help.FormatRoffTopLevel(help.TopLevel, help.Subcommands, date),
	}
	for _, cmd := range help.Subcommands {
		pages[cmd.ManName()+".1"] = help.FormatRoff(cmd, date)
	}

	// top-level page first, then subcommands in registry order
	if err := write(dir, "xh.1", pages["xh.1"]); err != nil {
		fail(err)
	}
	for _, cmd := range help.Subcommands {
		name := cmd.ManName() + ".1"
		if err := write(dir, name, pages[name]); err != nil {
			fail(err)
		}
	}
}

// buildDate honors SOURCE_DATE_EPOCH so packaged man pages are reproducible.
func buildDate() time.Time {
	if v := os.Getenv("SOURCE_DATE_EPOCH"); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(sec, 0).UTC()
		}
	}
	return time.Now()
}

func write(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  %s\n", path)
	return nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "gen-man: %v\n", err)
	os.Exit(1)
}
