package manifest

import (
	"bytes"
	"io/fs"
	"path"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

const (
	msgPrefix  = "__MSG_"
	msgSuffix  = "__"
	localesDir = "_locales"
)

// IsPlaceholder reports whether s is a __MSG_key__ reference
func IsPlaceholder(s string) bool {
	return len(s) > len(msgPrefix)+len(msgSuffix) &&
		strings.HasPrefix(s, msgPrefix) && strings.HasSuffix(s, msgSuffix)
}

// DisplayName resolves a __MSG_ placeholder name against the extension's
// _locales/<locale>/messages.json files in fsys, rooted at the version
// directory. It returns "" when the name is not a placeholder or no locale
// defines it. default_locale is tried first, then en and en_US, then the rest.
func DisplayName(fsys fs.FS, m *Manifest) string {
	name := m.Name()
	if !IsPlaceholder(name) {
		return ""
	}
	key := strings.TrimSuffix(strings.TrimPrefix(name, msgPrefix), msgSuffix)

	tried := map[string]bool{}
	for _, locale := range []string{m.DefaultLocale(), "en", "en_US"} {
		if locale == "" || tried[locale] {
			continue
		}
		tried[locale] = true
		if msg, ok := lookupMessage(fsys, locale, key); ok {
			return msg
		}
	}

	dirs, err := fs.ReadDir(fsys, localesDir)
	if err != nil {
		return ""
	}
	for _, dir := range dirs {
		if !dir.IsDir() || tried[dir.Name()] {
			continue
		}
		if msg, ok := lookupMessage(fsys, dir.Name(), key); ok {
			return msg
		}
	}
	return ""
}

// lookupMessage finds key in one locale's messages.json. Message keys are
// case-insensitive.
func lookupMessage(fsys fs.FS, locale, key string) (string, bool) {
	data, err := fs.ReadFile(fsys, path.Join(localesDir, locale, "messages.json"))
	if err != nil {
		return "", false
	}
	data = jsonc.ToJSON(bytes.TrimPrefix(data, utf8BOM))
	if !gjson.ValidBytes(data) {
		return "", false
	}

	var msg string
	found := false
	gjson.ParseBytes(data).ForEach(func(k, v gjson.Result) bool {
		if strings.EqualFold(k.String(), key) {
			msg = v.Get("message").String()
			found = msg != ""
			return !found
		}
		return true
	})
	return msg, found
}
