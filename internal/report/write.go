package report

import (
	"fmt"
	"os"
	"path/filepath"

	"go-extension-audit/internal/audit"
)

const (
	JSONFile     = "report.json"
	MarkdownFile = "findings.md"
	SARIFFile    = "findings.sarif"
)

// Options selects optional artifacts
type Options struct {
	SARIF bool
}

// WriteArtifacts renders findings into dir, creating it if needed, and returns
// the paths written. Any failure is returned; there is no partial success.
func WriteArtifacts(dir string, findings []audit.Finding, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	structured, human, err := Render(findings)
	if err != nil {
		return nil, err
	}
	docs := []struct {
		name string
		data []byte
	}{
		{JSONFile, structured},
		{MarkdownFile, human},
	}
	if opts.SARIF {
		data, err := RenderSARIF(findings)
		if err != nil {
			return nil, err
		}
		docs = append(docs, struct {
			name string
			data []byte
		}{SARIFFile, data})
	}

	var written []string
	for _, doc := range docs {
		path := filepath.Join(dir, doc.name)
		if err := os.WriteFile(path, doc.data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// CompletionMessage is printed once every artifact is written
func CompletionMessage(dir string) string {
	return fmt.Sprintf("Scan complete. Outputs in %s (%s, %s)", dir, MarkdownFile, JSONFile)
}
