// Package manifest reads WebExtension manifest.json documents.
//
// Manifests are loosely typed: keys may be missing and arrays may mix strings
// with objects. Accessors never fail, they fall back to an empty value when a
// key is absent or holds an unexpected type.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"bitbucket.org/creachadair/stringset"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// FileName is the manifest file expected at the root of an extension version
const FileName = "manifest.json"

// ErrNotObject is returned when a manifest parses but is not a JSON object
var ErrNotObject = errors.New("manifest is not a JSON object")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Manifest is a parsed, read-only manifest document
type Manifest struct {
	raw []byte
	doc gjson.Result
}

// Parse parses manifest bytes. Comments and trailing commas, which Chromium
// accepts in manifest.json, are tolerated. Invalid UTF-8 bytes are dropped.
func Parse(data []byte) (*Manifest, error) {
	data = bytes.ToValidUTF8(bytes.TrimPrefix(data, utf8BOM), nil)
	clean := jsonc.ToJSON(data)
	if !gjson.ValidBytes(clean) {
		return nil, fmt.Errorf("invalid manifest JSON")
	}
	doc := gjson.ParseBytes(clean)
	if !doc.IsObject() {
		return nil, ErrNotObject
	}
	return &Manifest{raw: clean, doc: doc}, nil
}

// String returns the string value of key, or "" if it is missing or not a string
func (m *Manifest) String(key string) string {
	v := m.doc.Get(gjson.Escape(key))
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// Text returns the value at key as text and whether the key is present.
// Non-string values are returned in their JSON form, null as "".
func (m *Manifest) Text(key string) (string, bool) {
	v := m.doc.Get(gjson.Escape(key))
	if !v.Exists() {
		return "", false
	}
	return v.String(), true
}

// Strings returns the string entries of the array at key. Non-string entries
// are skipped and a missing or non-array key yields nil.
func (m *Manifest) Strings(key string) []string {
	v := m.doc.Get(gjson.Escape(key))
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if item.Type == gjson.String {
			out = append(out, item.Str)
		}
	}
	return out
}

// Name returns the declared name, possibly a __MSG_ placeholder
func (m *Manifest) Name() string { return m.String("name") }

// Version returns the declared version
func (m *Manifest) Version() string { return m.String("version") }

// DefaultLocale returns the declared default_locale
func (m *Manifest) DefaultLocale() string { return m.String("default_locale") }

// ManifestVersion returns manifest_version, 0 when absent
func (m *Manifest) ManifestVersion() int {
	v := m.doc.Get("manifest_version")
	if v.Type != gjson.Number {
		return 0
	}
	return int(v.Int())
}

// Permissions returns the union of "permissions" and "host_permissions"
func (m *Manifest) Permissions() stringset.Set {
	perms := stringset.New(m.Strings("permissions")...)
	perms.Add(m.Strings("host_permissions")...)
	return perms
}

// Raw returns the manifest as JSON, with any comments stripped
func (m *Manifest) Raw() json.RawMessage {
	raw := make(json.RawMessage, len(m.raw))
	copy(raw, m.raw)
	return raw
}
