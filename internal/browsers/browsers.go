// Package browsers finds installed browser extensions on disk and loads their
// manifest and content files.
package browsers

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// CustomBrowser names candidates found under user-supplied roots
const CustomBrowser = "Custom"

// BrowserConfig describes where a browser keeps its user data, relative to the home directory
type BrowserConfig struct {
	Name        string
	WindowsPath []string
	MacOSPath   []string
	LinuxPath   []string
	IsFirefox   bool
}

// Root is a browser user-data directory that exists on this machine
type Root struct {
	Browser   string
	Path      string
	IsFirefox bool
}

// Candidate is one extension version directory, or one Firefox .xpi archive
type Candidate struct {
	Browser      string
	Profile      string
	ProfileLabel string
	ExtensionID  string
	// Version is the version directory name. Empty for Firefox, whose
	// version comes from the manifest.
	Version string
	Dir     string
	Archive bool
}

// BrowserInventory locates browser extensions
type BrowserInventory struct {
	configs    []BrowserConfig
	home       string
	goos       string
	extraRoots []string
	logger     hclog.Logger
}

// DefaultConfigs returns the browsers searched by default
func DefaultConfigs() []BrowserConfig {
	return []BrowserConfig{
		{
			Name:        "Chrome",
			WindowsPath: []string{"AppData", "Local", "Google", "Chrome", "User Data"},
			MacOSPath:   []string{"Library", "Application Support", "Google", "Chrome"},
			LinuxPath:   []string{".config", "google-chrome"},
		},
		{
			Name:        "Chromium",
			WindowsPath: []string{"AppData", "Local", "Chromium", "User Data"},
			MacOSPath:   []string{"Library", "Application Support", "Chromium"},
			LinuxPath:   []string{".config", "chromium"},
		},
		{
			Name:        "Edge",
			WindowsPath: []string{"AppData", "Local", "Microsoft", "Edge", "User Data"},
			MacOSPath:   []string{"Library", "Application Support", "Microsoft Edge"},
			LinuxPath:   []string{".config", "microsoft-edge"},
		},
		{
			Name:        "Brave",
			WindowsPath: []string{"AppData", "Local", "BraveSoftware", "Brave-Browser", "User Data"},
			MacOSPath:   []string{"Library", "Application Support", "BraveSoftware", "Brave-Browser"},
			LinuxPath:   []string{".config", "BraveSoftware", "Brave-Browser"},
		},
		{
			Name:        "Firefox",
			WindowsPath: []string{"AppData", "Roaming", "Mozilla", "Firefox"},
			MacOSPath:   []string{"Library", "Application Support", "Firefox"},
			LinuxPath:   []string{".mozilla", "firefox"},
			IsFirefox:   true,
		},
	}
}

// NewBrowserInventory creates a new inventory instance for the current user and OS
func NewBrowserInventory(logger hclog.Logger) *BrowserInventory {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &BrowserInventory{
		configs: DefaultConfigs(),
		goos:    runtime.GOOS,
		logger:  logger,
	}
}

// WithHome overrides the home directory browser paths are resolved against
func (bi *BrowserInventory) WithHome(home string) *BrowserInventory {
	bi.home = home
	return bi
}

// WithOS overrides the operating system used to pick browser paths
func (bi *BrowserInventory) WithOS(goos string) *BrowserInventory {
	bi.goos = goos
	return bi
}

// WithExtraRoots adds Chromium-style user-data directories to search. Paths
// already added, after cleaning, are ignored.
func (bi *BrowserInventory) WithExtraRoots(roots ...string) *BrowserInventory {
	for _, root := range roots {
		root = filepath.Clean(root)
		if slices.Contains(bi.extraRoots, root) {
			continue
		}
		bi.extraRoots = append(bi.extraRoots, root)
	}
	return bi
}

// ValidateBrowsers returns an error naming the first unknown browser
func (bi *BrowserInventory) ValidateBrowsers(selected []string) error {
	for _, s := range selected {
		known := strings.EqualFold(s, CustomBrowser)
		for _, config := range bi.configs {
			if strings.EqualFold(config.Name, s) {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown browser %q", s)
		}
	}
	return nil
}

func wanted(selected []string, name string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// Roots returns the existing user-data directories of the selected browsers.
// An empty selection means every browser.
func (bi *BrowserInventory) Roots(selected []string) ([]Root, error) {
	home := bi.home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
	}

	var roots []Root
	for _, config := range bi.configs {
		if !wanted(selected, config.Name) {
			continue
		}

		var parts []string
		switch bi.goos {
		case "windows":
			parts = config.WindowsPath
		case "darwin":
			parts = config.MacOSPath
		case "linux":
			parts = config.LinuxPath
		default:
			bi.logger.Warn("unsupported OS", "os", bi.goos, "browser", config.Name)
			continue
		}

		path := filepath.Join(home, filepath.Join(parts...))
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			bi.logger.Debug("browser data directory not found", "browser", config.Name, "path", path)
			continue
		}
		roots = append(roots, Root{Browser: config.Name, Path: path, IsFirefox: config.IsFirefox})
	}

	if !wanted(selected, CustomBrowser) {
		if len(bi.extraRoots) > 0 {
			bi.logger.Warn("extra roots ignored, browser selection excludes custom", "roots", bi.extraRoots, "browsers", selected)
		}
	} else {
		for _, path := range bi.extraRoots {
			if info, err := os.Stat(path); err != nil || !info.IsDir() {
				bi.logger.Warn("extra root not found", "path", path)
				continue
			}
			roots = append(roots, Root{Browser: CustomBrowser, Path: path})
		}
	}
	return roots, nil
}

// Candidates lists every extension version under the selected browsers
func (bi *BrowserInventory) Candidates(selected []string) ([]Candidate, error) {
	roots, err := bi.Roots(selected)
	if err != nil {
		return nil, err
	}

	var all []Candidate
	for _, root := range roots {
		var found []Candidate
		if root.IsFirefox {
			found, err = bi.firefoxCandidates(root)
		} else {
			found, err = bi.chromiumCandidates(root)
		}
		if err != nil {
			bi.logger.Warn("failed to list extensions", "browser", root.Browser, "root", root.Path, "error", err)
			continue
		}
		bi.logger.Debug("listed extensions", "browser", root.Browser, "root", root.Path, "count", len(found))
		all = append(all, found...)
	}
	return all, nil
}
