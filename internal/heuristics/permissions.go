package heuristics

import (
	"bitbucket.org/creachadair/stringset"
)

// suspiciousPermissions is the watch-list of manifest permissions that grant
// access to browsing data, other extensions, native hosts or the network layer.
var suspiciousPermissions = stringset.New(
	"cookies",
	"history",
	"management",
	"nativeMessaging",
	"webRequest",
	"<all_urls>",
	"downloads",
	"browsingData",
	"sockets",
	"clipboardWrite",
)

// SuspiciousPermissions returns the watch-list in sorted order
func SuspiciousPermissions() []string {
	return suspiciousPermissions.Elements()
}

// IsSuspiciousPermission reports whether p is on the watch-list
func IsSuspiciousPermission(p string) bool {
	return suspiciousPermissions.Contains(p)
}

// Classify returns the declared permissions that are on the watch-list
func Classify(declared stringset.Set) stringset.Set {
	flagged := stringset.New()
	for p := range declared {
		if suspiciousPermissions.Contains(p) {
			flagged.Add(p)
		}
	}
	return flagged
}
