package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-extension-audit/internal/audit"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// Totals are the headline numbers of a scan
type Totals struct {
	Extensions  int
	Flagged     int
	WithHits    int
	Hits        int
	Skipped     int
	Permissions map[string]int
}

// Tally counts findings
func Tally(findings []audit.Finding, skipped int) Totals {
	t := Totals{Extensions: len(findings), Skipped: skipped, Permissions: map[string]int{}}
	for _, f := range findings {
		if len(f.FlaggedPermissions) > 0 {
			t.Flagged++
		}
		if len(f.Hits) > 0 {
			t.WithHits++
		}
		t.Hits += len(f.Hits)
		for _, p := range f.FlaggedPermissions {
			t.Permissions[p]++
		}
	}
	return t
}

// Summary prints a short console overview of a scan
func Summary(w io.Writer, t Totals) {
	field := func(label string, value int, style lipgloss.Style) {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-28s", label)), style.Render(fmt.Sprint(value)))
	}
	pick := func(n int) lipgloss.Style {
		if n > 0 {
			return warnStyle
		}
		return okStyle
	}

	fmt.Fprintln(w, titleStyle.Render("Extension audit summary"))
	field("Extensions scanned:", t.Extensions, lipgloss.NewStyle())
	field("With flagged permissions:", t.Flagged, pick(t.Flagged))
	field("With suspicious content:", t.WithHits, pick(t.WithHits))
	field("Suspicious hits:", t.Hits, pick(t.Hits))
	if t.Skipped > 0 {
		field("Skipped (no valid manifest):", t.Skipped, labelStyle)
	}
	if len(t.Permissions) > 0 {
		var parts []string
		for _, p := range sortedKeys(t.Permissions) {
			parts = append(parts, fmt.Sprintf("%s×%d", p, t.Permissions[p]))
		}
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-28s", "Permissions:")), strings.Join(parts, " "))
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
