package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the x-heatmap config directory path.
// Uses $XDG_CONFIG_HOME/x-heatmap if set, otherwise ~/.config/x-heatmap.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "x-heatmap")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "x-heatmap")
}

// WriteDefault writes a default config.toml and returns its path and the
// action taken: "created", "exists", or "overwritten" (with force).
func WriteDefault(force bool) (string, string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	action := "created"
	if _, err := os.Stat(path); err == nil {
		if !force {
			return path, "exists", nil
		}
		action = "overwritten"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(DefaultTOML()), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}

	return path, action, nil
}

// DefaultTOML renders DefaultConfig as a commented config file.
func DefaultTOML() string {
	d := DefaultConfig()
	return fmt.Sprintf(`# IANA zone used to bucket posts into calendar days ("Local" = host zone)
timezone = %q

[archive]
candidate_paths = %s
record_prefixes = %s
max_size_mb = %d

[aggregation]
# 0 = one worker per CPU
workers = %d

[logging]
level = %q
format = %q

[cache]
enabled = %t
size_mb = %d
ttl_seconds = %d

[metrics]
enabled = %t
textfile = %q

[export]
dir = %q
`,
		d.Timezone,
		tomlList(d.Archive.CandidatePaths),
		tomlList(d.Archive.RecordPrefixes),
		d.Archive.MaxSizeMB,
		d.Aggregation.Workers,
		d.Logging.Level, d.Logging.Format,
		d.Cache.Enabled, d.Cache.SizeMB, d.Cache.TTLSeconds,
		d.Metrics.Enabled, d.Metrics.Textfile,
		CompressHome(d.Export.Dir),
	)
}

func tomlList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
