package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-extension-audit/internal/browsers"
	"go-extension-audit/internal/heuristics"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fakeHome lays out one Chrome profile with a single risky extension
func fakeHome(t *testing.T) string {
	t.Helper()
	var chrome []string
	switch runtime.GOOS {
	case "windows":
		chrome = browsers.DefaultConfigs()[0].WindowsPath
	case "darwin":
		chrome = browsers.DefaultConfigs()[0].MacOSPath
	default:
		chrome = browsers.DefaultConfigs()[0].LinuxPath
	}
	home := t.TempDir()
	ext := filepath.Join(home, filepath.Join(chrome...), "Default", "Extensions", "abcdefgh", "1.2.0")
	writeFile(t, filepath.Join(ext, "manifest.json"),
		`{"name": "Helper", "version": "1.2.0", "permissions": ["tabs", "storage", "cookies"]}`)
	writeFile(t, filepath.Join(ext, "bg.js"), `eval(atob(x));`)
	return home
}

func TestScanWritesReports(t *testing.T) {
	home := fakeHome(t)
	out := filepath.Join(t.TempDir(), "analysis")

	stdout, err := execute(t, "scan", "--home", home, "--out", out, "--browser", "chrome", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Scan complete. Outputs in "+out)

	data, err := os.ReadFile(filepath.Join(out, "report.json"))
	require.NoError(t, err)
	var findings []map[string]any
	require.NoError(t, json.Unmarshal(data, &findings))
	require.Len(t, findings, 1)
	assert.Equal(t, "abcdefgh", findings[0]["ext_id"])
	assert.Equal(t, []any{"cookies"}, findings[0]["flagged_permissions"], "tabs is not on the watch-list")

	md, err := os.ReadFile(filepath.Join(out, "findings.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# Extension scan findings"))
	assert.NoFileExists(t, filepath.Join(out, "findings.sarif"))
}

func TestRootCommandScans(t *testing.T) {
	home := fakeHome(t)
	out := t.TempDir()

	_, err := execute(t, "--home", home, "--out", out, "--browser", "chrome", "--sarif", "--quiet")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "findings.sarif"))
}

func TestScanUnknownBrowser(t *testing.T) {
	_, err := execute(t, "scan", "--home", t.TempDir(), "--out", t.TempDir(), "--browser", "netscape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown browser "netscape"`)
}

func TestScanWithConfigFile(t *testing.T) {
	home := fakeHome(t)
	out := filepath.Join(t.TempDir(), "from-config")
	cfgPath := filepath.Join(t.TempDir(), "audit.yaml")
	writeFile(t, cfgPath, "output_dir: "+out+"\nbrowsers: [chrome]\nworkers: 2\n")

	_, err := execute(t, "scan", "--config", cfgPath, "--home", home, "--quiet")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "report.json"))
}

func TestScanRecordsHistory(t *testing.T) {
	home := fakeHome(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	_, err := execute(t, "scan", "--home", home, "--out", t.TempDir(), "--browser", "chrome", "--db", dbPath, "--quiet")
	require.NoError(t, err)

	listing, err := execute(t, "history", "--db", dbPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(listing), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))

	runID := strings.Fields(lines[1])[0]
	detail, err := execute(t, "history", "--db", dbPath, "--run", runID)
	require.NoError(t, err)
	assert.Contains(t, detail, "abcdefgh")
	assert.Contains(t, detail, "cookies")
	assert.NotContains(t, detail, "tabs")
}

func TestScanSameExtensionUnderTwoRoots(t *testing.T) {
	rootA, rootB := t.TempDir(), t.TempDir()
	for _, root := range []string{rootA, rootB} {
		writeFile(t, filepath.Join(root, "Default", "Extensions", "abcdefgh", "1.0", "manifest.json"),
			`{"name": "Twin", "permissions": ["cookies"]}`)
	}
	out := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	_, err := execute(t, "scan", "--home", t.TempDir(), "--out", out, "--db", dbPath, "--quiet",
		"--root", rootA, "--root", rootB, "--root", rootA)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "report.json"))
	require.NoError(t, err)
	var findings []struct {
		Manifest struct {
			Path string `json:"path"`
		} `json:"manifest"`
	}
	require.NoError(t, json.Unmarshal(data, &findings))
	require.Len(t, findings, 2)
	assert.NotEqual(t, findings[0].Manifest.Path, findings[1].Manifest.Path)

	listing, err := execute(t, "history", "--db", dbPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(listing), "\n"), 2)
}

func TestHistoryRequiresDatabase(t *testing.T) {
	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no history database")
}

func TestRulesListsWatchList(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "nativeMessaging")
	assert.Contains(t, out, "long_base64_blob")
	assert.Contains(t, out, "chrome.management")
	assert.Contains(t, out, heuristics.LongBase64Expr())
}
