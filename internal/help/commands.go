package help

import "strings"

// Version is the xh release version, set at build time via -ldflags.
// Defaults to "dev" when built without version injection (e.g. `go run`).
var Version = "dev"

// Flag describes a command-line flag.
type Flag struct {
	Name string // e.g. "--json" or "--year <N>"
	Desc string
}

// Arg describes a positional argument.
type Arg struct {
	Name     string // e.g. "archive.zip"
	Desc     string
	Optional bool
}

// File is a path a command reads or writes, listed under FILES.
type File struct {
	Path string
	Desc string
}

// Command describes an xh subcommand (or the top-level binary when Name is "").
type Command struct {
	Name        string // "process", "export", etc; "" for top-level
	Synopsis    string // one-line description (lowercase, for --help header)
	Brief       string // short description for usage table (capitalized)
	Usage       string // full usage line, e.g. "xh process <archive.zip> [--json]"
	TableUsage  string // shortened usage for the top-level table (if different from Usage)
	Args        []Arg
	Flags       []Flag
	Description string   // multi-line prose (stored verbatim)
	Examples    []string // one per line, without leading 2-space indent
	Files       []File
	ExitStatus  string   // omitted when the command always exits 0
	SeeAlso     []string // man page cross-refs, e.g. "xh(1)"
}

// tableUsage returns TableUsage if set, otherwise Usage.
func (c Command) tableUsage() string {
	if c.TableUsage != "" {
		return c.TableUsage
	}
	return c.Usage
}

// ManName returns the man page name: "xh" for top-level, "xh-<name>" for subs.
func (c Command) ManName() string {
	if c.Name == "" {
		return "xh"
	}
	return "xh-" + strings.ReplaceAll(c.Name, " ", "-")
}

// FlagNames returns the bare flag names of c, e.g. "--year".
func (c Command) FlagNames() []string {
	names := make([]string, len(c.Flags))
	for i, f := range c.Flags {
		names[i], _, _ = strings.Cut(f.Name, " ")
	}
	return names
}

// TopLevel is the top-level xh command (used by FormatUsage).
var TopLevel = Command{
	Name:     "",
	Synopsis: "activity heatmaps from X/Twitter archives",
}

var configFlag = Flag{Name: "--config <file>", Desc: "Read configuration from file instead of the default path"}

var configFile = File{Path: "~/.config/x-heatmap/config.toml", Desc: "Configuration, or $XDG_CONFIG_HOME/x-heatmap/config.toml when set"}

const processExit = "0 on success, 1 when the archive cannot be processed or the year is not in it."

var tzFlag = Flag{Name: "--tz <zone>", Desc: "Bucket posts into days in this IANA zone (overrides config)"}

var CmdInit = Command{
	Name:     "init",
	Synopsis: "write the default configuration file",
	Brief:    "Write default config",
	Usage:    "xh init [--force]",
	Flags: []Flag{
		{Name: "--force", Desc: "Overwrite an existing config file"},
	},
	Description: `Writes ~/.config/x-heatmap/config.toml (or the same path under
$XDG_CONFIG_HOME) with every setting at its default value. An existing
file is left untouched unless --force is given.`,
	Files:   []File{configFile},
	SeeAlso: []string{"xh(1)", "xh-check(1)"},
}

var CmdProcess = Command{
	Name:       "process",
	Synopsis:   "summarize posting activity in an archive",
	Brief:      "Summarize activity in an archive",
	Usage:      "xh process <archive.zip> [--year <N>] [--years] [--json] [--tz <zone>] [--config <file>]",
	TableUsage: "xh process <archive.zip>",
	Args: []Arg{
		{Name: "archive.zip", Desc: "Data export downloaded from X/Twitter"},
	},
	Flags: []Flag{
		{Name: "--year <N>", Desc: "Summarize this year instead of the most recent one"},
		{Name: "--years", Desc: "Print a one-line overview per year"},
		{Name: "--json", Desc: "Print the full result as JSON"},
		tzFlag,
		configFlag,
	},
	Description: `Reads the archive, locates data/tweets.js (or a legacy equivalent),
buckets every post into a calendar day, and prints per-year statistics:
totals, active days, streaks, the busiest day and weekday, and a
monthly breakdown.

With --json the output is the result object consumed by heatmap
renderers: {"success": true, "data": {...}} on success or
{"success": false, "error": "..."} on failure. The exit status is 1
whenever success is false.`,
	Examples: []string{
		"xh process twitter-2024.zip                Most recent year",
		"xh process twitter-2024.zip --year 2019    A specific year",
		"xh process twitter-2024.zip --json > heatmap.json",
	},
	Files:      []File{configFile},
	ExitStatus: processExit,
	SeeAlso:    []string{"xh(1)", "xh-export(1)", "xh-check(1)"},
}

var CmdExport = Command{
	Name:       "export",
	Synopsis:   "export heatmap data to a snapshot or SQLite file",
	Brief:      "Export data to snapshot/SQLite",
	Usage:      "xh export <archive.zip> [--snapshot <file>] [--sqlite <file>] [--tz <zone>] [--config <file>]",
	TableUsage: "xh export <archive.zip>",
	Args: []Arg{
		{Name: "archive.zip", Desc: "Data export downloaded from X/Twitter"},
	},
	Flags: []Flag{
		{Name: "--snapshot <file>", Desc: "Write a zstd-compressed JSON snapshot (.json.zst)"},
		{Name: "--sqlite <file>", Desc: "Write daily counts, yearly stats, and posts to SQLite"},
		tzFlag,
		configFlag,
	},
	Description: `Processes the archive and writes the resulting data model. Without
--snapshot or --sqlite a snapshot named after the archive is written
to the export directory from the config.

Snapshots can be summarized later with xh show without the original
archive. SQLite exports replace rows for dates, years, and posts that
already exist, so re-exporting a newer archive updates the file.`,
	Examples: []string{
		"xh export twitter-2024.zip",
		"xh export twitter-2024.zip --sqlite ~/heatmap.db",
	},
	Files: []File{
		configFile,
		{Path: "~/.local/share/x-heatmap/", Desc: "Default snapshot directory (export.dir)"},
	},
	ExitStatus: "0 when every requested output was written, 1 otherwise.",
	SeeAlso:    []string{"xh(1)", "xh-show(1)", "xh-process(1)", "sqlite3(1)"},
}

var CmdShow = Command{
	Name:       "show",
	Synopsis:   "summarize a previously exported snapshot or database",
	Brief:      "Summarize an export",
	Usage:      "xh show <file> [--year <N>] [--years] [--json]",
	TableUsage: "xh show <file>",
	Args: []Arg{
		{Name: "file", Desc: "Snapshot (.json.zst) or SQLite database (.db) from xh export"},
	},
	Flags: []Flag{
		{Name: "--year <N>", Desc: "Summarize this year instead of the most recent one"},
		{Name: "--years", Desc: "Print a one-line overview per year"},
		{Name: "--json", Desc: "Print the decompressed data as JSON"},
	},
	Description: `Files ending in .db, .sqlite, or .sqlite3 are read as SQLite exports.
Those hold daily counts and yearly stats but no post bodies, so the
daily "tweets" lists are empty in --json output.`,
	ExitStatus: "0 on success, 1 when the file cannot be read or the year is not in it.",
	SeeAlso:    []string{"xh(1)", "xh-export(1)"},
}

var CmdCheck = Command{
	Name:     "check",
	Synopsis: "validate configuration and an archive",
	Brief:    "Validate config (and an archive)",
	Usage:    "xh check [archive.zip | tweets.js] [--config <file>]",
	Args: []Arg{
		{Name: "archive.zip", Desc: "Archive or extracted tweets.js to inspect", Optional: true},
	},
	Flags: []Flag{
		configFlag,
	},
	Description: `Reports pass/warn/FAIL for the configuration, timezone, export
directory, cache, and metrics settings. Given an archive, also checks
that it opens, contains a record file, uses a known wrapper prefix,
decodes to a non-empty record list, and that every timestamp parses.`,
	Files:      []File{configFile},
	ExitStatus: "0 when no check fails, 1 otherwise.",
	SeeAlso:    []string{"xh(1)", "xh-init(1)"},
}

var CmdWatch = Command{
	Name:       "watch",
	Synopsis:   "reprocess an archive whenever it changes",
	Brief:      "Reprocess on file change",
	Usage:      "xh watch <archive.zip> [--year <N>] [--debounce <duration>] [--tz <zone>] [--config <file>]",
	TableUsage: "xh watch <archive.zip>",
	Args: []Arg{
		{Name: "archive.zip", Desc: "Archive file to watch"},
	},
	Flags: []Flag{
		{Name: "--year <N>", Desc: "Summarize this year instead of the most recent one"},
		{Name: "--debounce <duration>", Desc: "Quiet period before reprocessing (default 500ms)"},
		tzFlag,
		configFlag,
	},
	Description: `Processes the archive once, then again after each change to the file
until interrupted. Useful while a new export is being downloaded or
copied into place.`,
	Files:   []File{configFile},
	SeeAlso: []string{"xh(1)", "xh-process(1)"},
}

var CmdVersion = Command{
	Name:     "version",
	Synopsis: "print version",
	Brief:    "Print version",
	Usage:    "xh version",
	SeeAlso:  []string{"xh(1)"},
}

// Subcommands is the ordered list of all subcommands.
var Subcommands = []Command{
	CmdInit,
	CmdProcess,
	CmdExport,
	CmdShow,
	CmdCheck,
	CmdWatch,
	CmdVersion,
}

// Lookup returns the subcommand named name.
func Lookup(name string) (Command, bool) {
	for _, c := range Subcommands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}
