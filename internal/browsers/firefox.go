package browsers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	profilesIni         = "profiles.ini"
	firefoxExtensionDir = "extensions"
	xpiSuffix           = ".xpi"
)

type firefoxProfile struct {
	dir   string
	label string
}

// firefoxProfiles reads the profile list from profiles.ini
func firefoxProfiles(root string) ([]firefoxProfile, error) {
	cfg, err := ini.Load(filepath.Join(root, profilesIni))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", profilesIni, err)
	}

	var profiles []firefoxProfile
	for _, section := range cfg.Sections() {
		if !strings.HasPrefix(section.Name(), "Profile") || !section.HasKey("Path") {
			continue
		}
		path := filepath.FromSlash(section.Key("Path").String())
		if section.Key("IsRelative").MustInt(1) == 1 && !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		profiles = append(profiles, firefoxProfile{dir: path, label: section.Key("Name").String()})
	}
	return profiles, nil
}

// firefoxCandidates lists packed (.xpi) and unpacked extensions of every profile
func (bi *BrowserInventory) firefoxCandidates(root Root) ([]Candidate, error) {
	profiles, err := firefoxProfiles(root.Path)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, profile := range profiles {
		extensionsPath := filepath.Join(profile.dir, firefoxExtensionDir)
		entries, err := os.ReadDir(extensionsPath)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				bi.logger.Warn("failed to read extensions directory", "path", extensionsPath, "error", err)
			} else {
				bi.logger.Debug("no extensions directory, skipping profile", "profile", profile.dir)
			}
			continue
		}

		for _, entry := range entries {
			c := Candidate{
				Browser:      root.Browser,
				Profile:      filepath.Base(profile.dir),
				ProfileLabel: profile.label,
				Dir:          filepath.Join(extensionsPath, entry.Name()),
			}
			switch {
			case entry.IsDir():
				c.ExtensionID = entry.Name()
			case strings.HasSuffix(entry.Name(), xpiSuffix):
				c.ExtensionID = strings.TrimSuffix(entry.Name(), xpiSuffix)
				c.Archive = true
			default:
				continue
			}
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}
