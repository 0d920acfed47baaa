package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-extension-audit/internal/audit"
	"go-extension-audit/internal/browsers"
	"go-extension-audit/internal/manifest"
)

type fakeSource struct {
	candidates []browsers.Candidate
	manifests  map[string]string
	files      map[string][]audit.File
	listErr    error
}

func (f *fakeSource) Candidates([]string) ([]browsers.Candidate, error) {
	return f.candidates, f.listErr
}

func (f *fakeSource) Load(c browsers.Candidate) (*browsers.Extension, audit.SkipReason, error) {
	data, ok := f.manifests[c.Dir]
	if !ok {
		return nil, audit.SkipManifestMissing, browsers.ErrNoManifest
	}
	m, err := manifest.Parse([]byte(data))
	if err != nil {
		return nil, audit.SkipManifestInvalid, err
	}
	return &browsers.Extension{
		Source: audit.Source{
			Browser:     c.Browser,
			Profile:     c.Profile,
			ExtensionID: c.ExtensionID,
			Version:     c.Version,
		},
		Manifest: m,
		Files:    f.files[c.Dir],
	}, audit.SkipNone, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		candidates: []browsers.Candidate{
			{Browser: "Edge", Profile: "Default", ExtensionID: "zzz", Version: "1", Dir: "edge/zzz/1"},
			{Browser: "Chrome", Profile: "Profile 2", ExtensionID: "aaa", Version: "1", Dir: "chrome/p2/aaa/1"},
			{Browser: "Chrome", Profile: "Default", ExtensionID: "bbb", Version: "2", Dir: "chrome/bbb/2"},
			{Browser: "Chrome", Profile: "Default", ExtensionID: "bbb", Version: "1", Dir: "chrome/bbb/1"},
			{Browser: "Chrome", Profile: "Default", ExtensionID: "ccc", Version: "1", Dir: "chrome/ccc/1"},
			{Browser: "Chrome", Profile: "Default", ExtensionID: "ddd", Version: "1", Dir: "chrome/ddd/1"},
		},
		manifests: map[string]string{
			"edge/zzz/1":      `{"name":"Z","permissions":["management"]}`,
			"chrome/p2/aaa/1": `{"name":"A"}`,
			"chrome/bbb/2":    `{"name":"B","permissions":["cookies","storage"]}`,
			"chrome/bbb/1":    `{"name":"B"}`,
			"chrome/ddd/1":    `{"name":`,
		},
		files: map[string][]audit.File{
			"chrome/bbb/2": {{Path: "bg.js", Text: "eval(userInput)"}},
		},
	}
}

func keys(findings []audit.Finding) []string {
	var out []string
	for _, f := range findings {
		out = append(out, strings.Join([]string{f.Browser, f.Profile, f.ExtensionID, f.Version}, "/"))
	}
	return out
}

func TestRunSortsAndSkips(t *testing.T) {
	result, err := New(newFakeSource(), nil, 1, nil).Run(context.Background())
	require.NoError(t, err)

	want := []string{
		"Chrome/Default/bbb/1",
		"Chrome/Default/bbb/2",
		"Chrome/Profile 2/aaa/1",
		"Edge/Default/zzz/1",
	}
	if diff := cmp.Diff(want, keys(result.Findings)); diff != "" {
		t.Errorf("Run() findings diff (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, result.Skipped())
	assert.Len(t, result.Outcomes, 6)

	assert.Equal(t, audit.SkipManifestMissing, result.Outcomes[4].Skip)
	assert.Equal(t, audit.SkipManifestInvalid, result.Outcomes[5].Skip)

	b2 := result.Findings[1]
	assert.Equal(t, []string{"cookies"}, b2.FlaggedPermissions)
	assert.Equal(t, []audit.Hit{{File: "bg.js", Pattern: "eval("}}, b2.Hits)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	sequential, err := New(newFakeSource(), nil, 1, nil).Run(context.Background())
	require.NoError(t, err)
	parallel, err := New(newFakeSource(), nil, 8, nil).Run(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(sequential.Findings, parallel.Findings); diff != "" {
		t.Errorf("parallel findings differ (-sequential +parallel):\n%s", diff)
	}
}

func TestRunListError(t *testing.T) {
	src := newFakeSource()
	src.listErr = errors.New("boom")
	_, err := New(src, nil, 2, nil).Run(context.Background())
	assert.EqualError(t, err, "boom")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(newFakeSource(), nil, 2, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmpty(t *testing.T) {
	result, err := New(&fakeSource{}, nil, 0, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Findings)
	assert.Zero(t, result.Skipped())
}

func TestRunOnDisk(t *testing.T) {
	home := t.TempDir()
	ext := filepath.Join(home, ".config", "chromium", "Default", "Extensions", "cccccccccccccccccccccccccccccccc")
	write := func(path, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	blob := strings.Repeat("ZXZhbA", 22)
	write(filepath.Join(ext, "3.0_0", "manifest.json"), `{"name":"Wallet","permissions":["storage"],"host_permissions":["<all_urls>"]}`)
	write(filepath.Join(ext, "3.0_0", "content.js"), "eval(userInput);\nvar p = '"+blob+"';")
	require.NoError(t, os.MkdirAll(filepath.Join(ext, "2.9_0"), 0o755))

	inventory := browsers.NewBrowserInventory(nil).WithHome(home).WithOS("linux")
	result, err := New(inventory, []string{"chromium"}, 4, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Findings, 1)
	assert.Equal(t, 1, result.Skipped())
	f := result.Findings[0]
	assert.Equal(t, "Chromium", f.Browser)
	assert.Equal(t, "Wallet", f.Name)
	assert.Equal(t, []string{"<all_urls>"}, f.FlaggedPermissions)
	assert.Equal(t, []audit.Hit{
		{File: "content.js", Pattern: "eval("},
		{File: "content.js", Pattern: "long_base64_blob"},
	}, f.Hits)
}
