package browsers

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"go-extension-audit/internal/audit"
	"go-extension-audit/internal/heuristics"
	"go-extension-audit/internal/manifest"
)

// ErrNoManifest is returned when a candidate has no manifest.json
var ErrNoManifest = errors.New("no manifest.json")

// Extension is a candidate with its manifest and content loaded
type Extension struct {
	Source   audit.Source
	Manifest *manifest.Manifest
	Files    []audit.File
}

// Load reads a candidate's manifest and its script and HTML files. A missing,
// unreadable or invalid manifest is reported as a skip reason with its error;
// unreadable content files are left out.
func (bi *BrowserInventory) Load(c Candidate) (*Extension, audit.SkipReason, error) {
	var (
		fsys         fs.FS
		manifestPath string
	)
	if c.Archive {
		zr, err := zip.OpenReader(c.Dir)
		if err != nil {
			return nil, audit.SkipManifestUnreadable, fmt.Errorf("failed to open %s: %w", c.Dir, err)
		}
		defer zr.Close()
		fsys = zr
		manifestPath = c.Dir + "!/" + manifest.FileName
	} else {
		fsys = os.DirFS(c.Dir)
		manifestPath = filepath.Join(c.Dir, manifest.FileName)
	}

	data, err := fs.ReadFile(fsys, manifest.FileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, audit.SkipManifestMissing, ErrNoManifest
		}
		return nil, audit.SkipManifestUnreadable, fmt.Errorf("failed to read manifest %s: %w", manifestPath, err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, audit.SkipManifestInvalid, fmt.Errorf("failed to parse manifest %s: %w", manifestPath, err)
	}

	version := c.Version
	if version == "" {
		version = m.Version()
	}

	ext := &Extension{
		Source: audit.Source{
			Browser:      c.Browser,
			Profile:      c.Profile,
			ProfileLabel: c.ProfileLabel,
			ExtensionID:  c.ExtensionID,
			Version:      version,
			ManifestPath: manifestPath,
			DisplayName:  manifest.DisplayName(fsys, m),
		},
		Manifest: m,
		Files:    bi.readContent(fsys, manifestPath),
	}
	return ext, audit.SkipNone, nil
}

// readContent returns the scannable files of fsys in lexical walk order
func (bi *BrowserInventory) readContent(fsys fs.FS, origin string) []audit.File {
	var files []audit.File
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			bi.logger.Debug("skipping unreadable path", "origin", origin, "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !heuristics.ScannableFile(d.Name()) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			bi.logger.Debug("skipping unreadable file", "origin", origin, "path", path, "error", err)
			return nil
		}
		files = append(files, audit.File{Path: path, Text: decodeText(data)})
		return nil
	})
	if err != nil {
		bi.logger.Debug("walk stopped early", "origin", origin, "error", err)
	}
	return files
}

// decodeText decodes file content on a best-effort basis: a UTF-8 or UTF-16
// byte order mark selects the encoding, and bytes that are not valid UTF-8
// are dropped.
func decodeText(data []byte) string {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		out = data
	}
	return strings.ToValidUTF8(string(out), "")
}
