package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"codeberg.org/mutker/ryzenctl/internal/history"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/table"
)

const sampleDump = `RyzenAdj dump
Table Version: 0x370005
| Offset | Data | Value |
| 0x0144 | 0x1c2 | 450 |
| 0x0018 | 0x20 | 25.5 |
| 0x02a4 | 0x4b | 61.25 |
`

// fakeTool writes a ryzenadj stand-in that prints sampleDump for
// --dump-table and records any other arguments in <dir>/applied.
func fakeTool(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ryzenadj is a shell script")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "ryzenadj")
	script := "#!/bin/sh\n" +
		"if [ \"$1\" = \"--dump-table\" ]; then\ncat <<'EOF'\n" + sampleDump + "EOF\nexit 0\nfi\n" +
		"echo \"$@\" > \"$(dirname \"$0\")/applied\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

func failingTool(t *testing.T, stderr string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ryzenadj is a shell script")
	}

	path := filepath.Join(t.TempDir(), "ryzenadj")
	script := "#!/bin/sh\necho '" + stderr + "' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}

type result struct {
	out    string
	errOut string
	err    error
}

// run executes the command tree against a settings file in a temp dir.
func run(t *testing.T, cfgPath string, args ...string) result {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append(args, "--config", cfgPath))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func tempConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ryzenctl.toml")
}

func TestVersionShort(t *testing.T) {
	r := run(t, tempConfig(t), "version", "--short")
	require.NoError(t, r.err)
	assert.Equal(t, "dev\n", r.out)
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "v1.2.3", formatVersion("1.2.3"))
	assert.Equal(t, "v1.2.3", formatVersion("v1.2.3"))
}

func TestParams(t *testing.T) {
	r := run(t, tempConfig(t), "params")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Power Limits")
	assert.Contains(t, r.out, "stapm")
	assert.Contains(t, r.out, "dgpu-skin-temp")
}

func TestDumpTable(t *testing.T) {
	cfg := tempConfig(t)
	r := run(t, cfg, "dump", "--ra-path", fakeTool(t))
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "stapm-value")
	assert.Contains(t, r.out, "45.00 W")
	assert.Contains(t, r.out, "0x0144")
	assert.Contains(t, r.out, "61.25 °C")

	_, err := os.Stat(cfg)
	assert.NoError(t, err, "settings file is created on first run")
}

func TestDumpJSON(t *testing.T) {
	r := run(t, tempConfig(t), "dump", "-o", "json", "--ra-path", fakeTool(t))
	require.NoError(t, r.err)

	var doc struct {
		ID      string `json:"id"`
		Records []struct {
			Name   string   `json:"name"`
			Offset string   `json:"offset"`
			Value  *float64 `json:"value"`
			Unit   string   `json:"unit"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.out), &doc))
	assert.NotEmpty(t, doc.ID)
	require.Len(t, doc.Records, 3)
	assert.Equal(t, "stapm-value", doc.Records[0].Name)
	require.NotNil(t, doc.Records[0].Value)
	assert.InDelta(t, 45.0, *doc.Records[0].Value, 1e-9)
	assert.Equal(t, "W", doc.Records[0].Unit)
}

func TestDumpYAML(t *testing.T) {
	r := run(t, tempConfig(t), "dump", "-o", "yaml", "--ra-path", fakeTool(t))
	require.NoError(t, r.err)

	var doc struct {
		Records []map[string]any `yaml:"records"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(r.out), &doc))
	require.Len(t, doc.Records, 3)
	assert.Equal(t, "ppt-apu", doc.Records[1]["name"])
	assert.Equal(t, "0x0018", doc.Records[1]["offset"])
}

func TestDumpRejectsUnknownFormat(t *testing.T) {
	r := run(t, tempConfig(t), "dump", "-o", "xml")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "xml")
}

func TestDumpToolFailure(t *testing.T) {
	r := run(t, tempConfig(t), "dump", "--ra-path", failingTool(t, "Unable to get memory access"))
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "Unable to get memory access")
}

func TestExecutePrintsElevationHint(t *testing.T) {
	tool := failingTool(t, "Permission denied")

	var out, errOut bytes.Buffer
	code := Execute(context.Background(),
		[]string{"dump", "--config", tempConfig(t), "--ra-path", tool}, &out, &errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "Permission denied")
	assert.Contains(t, errOut.String(), "Hint:")
}

func TestApply(t *testing.T) {
	tool := fakeTool(t)

	r := run(t, tempConfig(t), "apply", "--stapm=45000", "fast=50000", "--ra-path", tool)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Applied 2 parameter(s)")

	applied, err := os.ReadFile(filepath.Join(filepath.Dir(tool), "applied"))
	require.NoError(t, err)
	assert.Equal(t, "--stapm=45000 --fast=50000", strings.TrimSpace(string(applied)))
}

func TestApplyDoesNotLeaveACancelledPoll(t *testing.T) {
	tool := fakeTool(t)

	r := run(t, tempConfig(t), "apply", "--stapm=45000", "--ra-path", tool)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Applied 1 parameter(s)")
	assert.NotContains(t, r.errOut, "Poll failed")
	assert.NotContains(t, r.errOut, "context canceled")
}

func TestApplyPassesUnknownKeysThrough(t *testing.T) {
	tool := fakeTool(t)

	r := run(t, tempConfig(t), "apply", "zz-custom=1", "--tctl-temp=90", "--ra-path", tool)
	require.NoError(t, r.err)

	applied, err := os.ReadFile(filepath.Join(filepath.Dir(tool), "applied"))
	require.NoError(t, err)
	assert.Equal(t, "--tctl-temp=90 --zz-custom=1", strings.TrimSpace(string(applied)))
}

func TestApplyDryRun(t *testing.T) {
	tool := fakeTool(t)

	r := run(t, tempConfig(t), "apply", "--stapm=45000", "--dry-run", "--ra-path", tool)
	require.NoError(t, r.err)
	assert.Equal(t, tool+" --stapm=45000\n", r.out)

	_, err := os.Stat(filepath.Join(filepath.Dir(tool), "applied"))
	assert.True(t, os.IsNotExist(err))
}

func TestApplyWithoutParameters(t *testing.T) {
	r := run(t, tempConfig(t), "apply", "--ra-path", fakeTool(t))
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "no parameters given")
}

func TestApplyInvalidPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "ryzenadj")

	r := run(t, tempConfig(t), "apply", "--stapm=45000", "--ra-path", missing)
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "Invalid RyzenAdj path: "+missing)
}

func TestApplyRejectsMalformedArgument(t *testing.T) {
	r := run(t, tempConfig(t), "apply", "stapm")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "expected key=value")
}

func TestSettingsSetAndShow(t *testing.T) {
	cfg := tempConfig(t)

	r := run(t, cfg, "settings", "set", "theme", "Light")
	require.NoError(t, r.err)
	assert.Equal(t, "theme = Light\n", r.out)

	r = run(t, cfg, "settings", "set", "refresh_interval", "7")
	require.NoError(t, r.err)

	r = run(t, cfg, "settings")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "# "+cfg)
	assert.Contains(t, r.out, "theme = Light\n")
	assert.Contains(t, r.out, "refresh_interval = 7\n")
	assert.Contains(t, r.out, "language = English\n")
}

func TestSettingsSetRejectsBadValues(t *testing.T) {
	cfg := tempConfig(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown key", []string{"nope", "1"}, "unknown setting"},
		{"not a number", []string{"refresh_interval", "soon"}, "refresh_interval"},
		{"out of range", []string{"refresh_interval", "0"}, "interval"},
		{"unknown theme", []string{"theme", "Neon"}, "expected one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, cfg, append([]string{"settings", "set"}, tt.args...)...)
			require.Error(t, r.err)
			assert.Contains(t, strings.ToLower(r.err.Error()), strings.ToLower(tt.want))
		})
	}
}

func TestHistoryDisabled(t *testing.T) {
	r := run(t, tempConfig(t), "history")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "History is disabled")
}

func TestHistoryShowsRecordedSnapshots(t *testing.T) {
	cfg := tempConfig(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	require.NoError(t, run(t, cfg, "settings", "set", "history.enabled", "true").err)
	require.NoError(t, run(t, cfg, "settings", "set", "history.db_path", dbPath).err)

	hc := history.DefaultConfig()
	hc.Enabled = true
	hc.DBPath = dbPath
	store, err := history.NewService(hc, logger.Nop())
	require.NoError(t, err)
	snap := table.Parse(sampleDump).Stamp("poll-1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local))
	require.NoError(t, store.Record(context.Background(), snap))
	require.NoError(t, store.Close())

	r := run(t, cfg, "history")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "2026-01-02 03:04:05")
	assert.Contains(t, r.out, "poll-1")
	assert.Contains(t, r.out, "stapm-value")

	r = run(t, cfg, "history", "--metric", "stapm-value")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "45.00 W")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	tool := fakeTool(t)
	pidPath := filepath.Join(t.TempDir(), "ryzenctl.pid")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := NewRootCmd()
	root.SetArgs([]string{
		"serve", "--config", tempConfig(t), "--ra-path", tool,
		"--listen", "127.0.0.1:0", "--pid-file", pidPath,
	})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	done := make(chan error, 1)
	go func() {
		done <- root.ExecuteContext(ctx)
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(pidPath)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}

	_, err := os.Stat(pidPath)
	assert.True(t, os.IsNotExist(err), "PID file is removed on exit")
}

func TestCollectEdits(t *testing.T) {
	cmd := newApplyCmd(&rootFlags{})
	require.NoError(t, cmd.ParseFlags([]string{"--stapm=1", "--vrm= 2 "}))

	edits, err := collectEdits(cmd.Flags(), []string{"fast=3", "--slow=4", "stapm=5"})
	require.NoError(t, err)

	var got []string
	for _, e := range edits {
		got = append(got, e.Arg())
	}
	assert.Equal(t, []string{"--stapm=1", "--vrm=2", "--fast=3", "--slow=4", "--stapm=5"}, got)
}
