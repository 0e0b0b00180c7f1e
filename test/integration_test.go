package test

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// xhBinary is the path to the compiled xh binary, set by TestMain.
var xhBinary string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	tmpDir, err := os.MkdirTemp("", "xh-integration-build-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}

	xhBinary = filepath.Join(tmpDir, "xh")
	cmd := exec.Command("go", "build", "-o", xhBinary, "./cmd/xh")
	// Test working dir is test/, so go up one level to project root
	cmd.Dir = filepath.Join("..")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "build xh binary: %v\n", err)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// --- Fixtures ---

// fixtureTweets: two posts on 2023-03-15 (Wednesday), one on 2023-03-16,
// one on 2022-12-31.
const fixtureTweets = `window.YTD.tweets.part0 = [
  {"tweet": {"id_str": "1", "full_text": "first", "created_at": "Wed Mar 15 10:30:00 +0000 2023", "retweet_count": "2", "favorite_count": "5"}},
  {"tweet": {"id_str": "2", "full_text": "second", "created_at": "Wed Mar 15 18:00:00 +0000 2023", "retweet_count": "0", "favorite_count": "1"}},
  {"tweet": {"id_str": "3", "full_text": "third", "created_at": "Thu Mar 16 09:00:00 +0000 2023", "retweet_count": "0", "favorite_count": "0"}},
  {"tweet": {"id_str": "4", "full_text": "old", "created_at": "Sat Dec 31 12:00:00 +0000 2022", "retweet_count": "0", "favorite_count": "0"}}
];`

// --- Helpers ---

type testEnv struct {
	home string
	env  []string
}

func newEnv(t *testing.T) testEnv {
	t.Helper()
	home := t.TempDir()
	return testEnv{
		home: home,
		env: []string{
			"PATH=" + os.Getenv("PATH"),
			"HOME=" + home,
			"XDG_CONFIG_HOME=" + filepath.Join(home, ".config"),
		},
	}
}

func (e testEnv) run(args ...string) (stdout, stderr string, code int) {
	cmd := exec.Command(xhBinary, args...)
	cmd.Env = e.env
	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	default:
		code = -1
	}
	return outBuf.String(), errBuf.String(), code
}

func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, code := e.run(args...)
	require.Zero(t, code, "xh %s\nstdout: %s\nstderr: %s", strings.Join(args, " "), stdout, stderr)
	return stdout
}

func writeArchive(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "twitter-archive.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func fixtureArchive(t *testing.T, dir string) string {
	t.Helper()
	return writeArchive(t, dir, map[string]string{
		"data/tweets.js":  fixtureTweets,
		"data/account.js": "window.YTD.account.part0 = []",
	})
}

type jsonResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    *struct {
		Year           int   `json:"year"`
		AvailableYears []int `json:"availableYears"`
		Stats          struct {
			TotalTweets         int    `json:"totalTweets"`
			ActiveDays          int    `json:"activeDays"`
			TotalDays           int    `json:"totalDays"`
			MostActiveDay       string `json:"mostActiveDay"`
			MostActiveDayOfWeek string `json:"mostActiveDayOfWeek"`
		} `json:"stats"`
		Activities []struct {
			Date  string `json:"date"`
			Count int    `json:"count"`
		} `json:"activities"`
	} `json:"data"`
}

func decodeResult(t *testing.T, out string) jsonResult {
	t.Helper()
	var r jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &r), out)
	return r
}

// --- Tests ---

func TestVersionAndHelp(t *testing.T) {
	e := newEnv(t)

	assert.Contains(t, e.mustRun(t, "version"), "xh ")

	out := e.mustRun(t, "help")
	for _, name := range []string{"init", "process", "export", "show", "check", "watch"} {
		assert.Contains(t, out, "xh "+name, "usage table")
	}

	assert.Contains(t, e.mustRun(t, "process", "--help"), "Usage: xh process <archive.zip>")

	_, stderr, code := e.run("bogus")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown command: bogus")
}

func TestProcess_Text(t *testing.T) {
	e := newEnv(t)
	path := fixtureArchive(t, e.home)

	out := e.mustRun(t, "process", path, "--tz", "UTC")
	assert.True(t, strings.HasPrefix(out, "Year 2023\n"), "header:\n%s", out)
	assert.Contains(t, out, "Wed Mar 15, 2023 (2 posts)")
	assert.Contains(t, out, "Wednesday")
	assert.Contains(t, out, "Other years: 2022")

	out = e.mustRun(t, "process", path, "--tz", "UTC", "--year", "2022")
	assert.True(t, strings.HasPrefix(out, "Year 2022\n"), "header:\n%s", out)

	out = e.mustRun(t, "process", path, "--tz", "UTC", "--years")
	assert.True(t, strings.HasPrefix(out, "Years\n"))
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "2022")

	_, stderr, code := e.run("process", path, "--tz", "UTC", "--year", "2019")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "year 2019 not in archive")
}

func TestProcess_JSON(t *testing.T) {
	e := newEnv(t)
	path := fixtureArchive(t, e.home)

	r := decodeResult(t, e.mustRun(t, "process", path, "--tz", "UTC", "--json"))
	require.True(t, r.Success)
	require.NotNil(t, r.Data)

	assert.Equal(t, 2023, r.Data.Year)
	assert.Equal(t, []int{2023, 2022}, r.Data.AvailableYears)
	assert.Len(t, r.Data.Activities, 365)
	assert.Equal(t, 3, r.Data.Stats.TotalTweets)
	assert.Equal(t, 2, r.Data.Stats.ActiveDays)
	assert.Equal(t, "2023-03-15", r.Data.Stats.MostActiveDay)
}

func TestProcess_Failures(t *testing.T) {
	e := newEnv(t)

	cases := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"missing source", map[string]string{"data/like.js": "[]"}, "tweets.js file not found in the archive"},
		{"empty", map[string]string{"data/tweets.js": "window.YTD.tweets.part0 = []"}, "No tweets found in the archive."},
		{"malformed", map[string]string{"data/tweets.js": "window.YTD.tweets.part0 = [{"}, "Failed to parse tweets.js file."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeArchive(t, t.TempDir(), tc.files)

			out, _, code := e.run("process", path, "--json")
			assert.Equal(t, 1, code)
			r := decodeResult(t, out)
			assert.False(t, r.Success)
			assert.Nil(t, r.Data)
			assert.Contains(t, r.Error, tc.want)
		})
	}

	notZip := filepath.Join(e.home, "notes.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0o644))
	out, _, code := e.run("process", notZip, "--json")
	assert.Equal(t, 1, code)
	assert.Contains(t, decodeResult(t, out).Error, "Failed to parse archive:")
}

func TestInitAndCheck(t *testing.T) {
	e := newEnv(t)
	path := fixtureArchive(t, e.home)

	assert.Contains(t, e.mustRun(t, "init"), "created:")
	assert.FileExists(t, filepath.Join(e.home, ".config", "x-heatmap", "config.toml"))
	assert.Contains(t, e.mustRun(t, "init"), "exists:")

	out := e.mustRun(t, "check", path)
	assert.Contains(t, out, "xh check")
	assert.Contains(t, out, "data/tweets.js")
	assert.Contains(t, out, "0 failure")

	bad := writeArchive(t, t.TempDir(), map[string]string{"data/like.js": "[]"})
	out, _, code := e.run("check", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "FAIL")
}

func TestExportAndShow(t *testing.T) {
	e := newEnv(t)
	path := fixtureArchive(t, e.home)

	// default snapshot location comes from the export dir
	assert.Contains(t, e.mustRun(t, "export", path, "--tz", "UTC"), "snapshot:")
	assert.FileExists(t, filepath.Join(e.home, ".local", "share", "x-heatmap", "twitter-archive.json.zst"))

	snap := filepath.Join(e.home, "out", "heatmap.json.zst")
	db := filepath.Join(e.home, "out", "heatmap.db")
	out := e.mustRun(t, "export", path, "--tz", "UTC", "--snapshot", snap, "--sqlite", db)
	assert.Contains(t, out, "(4 posts, 0 replies)")
	assert.FileExists(t, db)

	fromArchive := e.mustRun(t, "process", path, "--tz", "UTC")
	assert.Equal(t, fromArchive, e.mustRun(t, "show", snap), "snapshot summary")
	assert.Equal(t, fromArchive, e.mustRun(t, "show", db), "database summary")

	out = e.mustRun(t, "show", snap, "--year", "2022")
	assert.True(t, strings.HasPrefix(out, "Year 2022\n"), "header:\n%s", out)
	out = e.mustRun(t, "show", db, "--years")
	assert.Contains(t, out, "2022")
}

func TestShow_Failures(t *testing.T) {
	e := newEnv(t)

	missing := filepath.Join(e.home, "missing.db")
	_, stderr, code := e.run("show", missing)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "open database")
	assert.NoFileExists(t, missing, "show does not create databases")

	snap := filepath.Join(e.home, "bad.json.zst")
	require.NoError(t, os.WriteFile(snap, []byte("not zstd"), 0o644))
	_, stderr, code = e.run("show", snap)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr, "xh: "), stderr)
}
