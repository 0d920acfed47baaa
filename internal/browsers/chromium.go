package browsers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

const (
	extensionsDir  = "Extensions"
	localStateFile = "Local State"
)

// profileLabels reads profile display names from the root's Local State file,
// keyed by profile directory name
func (bi *BrowserInventory) profileLabels(root string) map[string]string {
	labels := map[string]string{}
	localStatePath := filepath.Join(root, localStateFile)
	data, err := os.ReadFile(localStatePath)
	if err != nil {
		bi.logger.Debug("Local State not found, using directory names", "path", localStatePath)
		return labels
	}
	if !gjson.ValidBytes(data) {
		bi.logger.Debug("failed to parse Local State", "path", localStatePath)
		return labels
	}
	gjson.GetBytes(data, "profile.info_cache").ForEach(func(dir, info gjson.Result) bool {
		if name := info.Get("name").String(); name != "" {
			labels[dir.String()] = name
		}
		return true
	})
	return labels
}

// chromiumCandidates walks <root>/<profile>/Extensions/<id>/<version>.
// Any profile directory holding an Extensions directory is included.
func (bi *BrowserInventory) chromiumCandidates(root Root) ([]Candidate, error) {
	entries, err := os.ReadDir(root.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile directory: %w", err)
	}
	labels := bi.profileLabels(root.Path)

	var candidates []Candidate
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		profileDir := entry.Name()
		extensionsPath := filepath.Join(root.Path, profileDir, extensionsDir)
		ids, err := os.ReadDir(extensionsPath)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				bi.logger.Warn("failed to read extensions directory", "path", extensionsPath, "error", err)
			}
			continue
		}

		for _, id := range ids {
			if !id.IsDir() {
				continue
			}
			versions, err := os.ReadDir(filepath.Join(extensionsPath, id.Name()))
			if err != nil {
				bi.logger.Debug("failed to read version directory", "extension", id.Name(), "error", err)
				continue
			}
			for _, ver := range versions {
				if !ver.IsDir() {
					continue
				}
				candidates = append(candidates, Candidate{
					Browser:      root.Browser,
					Profile:      profileDir,
					ProfileLabel: labels[profileDir],
					ExtensionID:  id.Name(),
					Version:      ver.Name(),
					Dir:          filepath.Join(extensionsPath, id.Name(), ver.Name()),
				})
			}
		}
	}
	return candidates, nil
}
