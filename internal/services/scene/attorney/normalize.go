package attorney

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DocumentKind classifies a raw JSON document before decoding.
type DocumentKind string

const (
	DocumentUnknown DocumentKind = "unknown"
	DocumentScene   DocumentKind = "scene"
	DocumentRoster  DocumentKind = "roster"
)

// Option defaults applied to imported documents that omit them.
const (
	DefaultChatbox           = "0"
	DefaultTextSpeed         = 28
	DefaultTextBlipFrequency = 56
	DefaultAutoplaySpeed     = 500
)

var optionDefaults = []struct {
	path  string
	value any
}{
	{"options.chatbox", DefaultChatbox},
	{"options.textSpeed", DefaultTextSpeed},
	{"options.textBlipFrequency", DefaultTextBlipFrequency},
	{"options.autoplaySpeed", DefaultAutoplaySpeed},
}

var emptyListPaths = []string{"groups", "courtRecord.evidence", "courtRecord.profiles"}

// DetectDocument reports whether data looks like a scene, a roster array, or neither.
func DetectDocument(data []byte) DocumentKind {
	if !gjson.ValidBytes(data) {
		return DocumentUnknown
	}
	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		first := root.Get("0")
		if !first.Exists() || (first.Get("name").Exists() && first.Get("id").Exists()) {
			return DocumentRoster
		}
	case root.IsObject():
		if root.Get("scene").IsObject() {
			return DocumentScene
		}
		if kind := root.Get("type"); kind.Exists() && kind.Type != gjson.Null {
			if kind.String() == SceneType {
				return DocumentScene
			}
			return DocumentUnknown
		}
		if root.Get("groups").IsArray() {
			return DocumentScene
		}
	}
	return DocumentUnknown
}

// NormalizeScene rewrites a raw scene document into the shape DecodeScene
// expects: it unwraps {"scene": {...}} envelopes, sets a missing type,
// stringifies numeric chatbox ids, fills missing options with defaults and
// adds missing list fields. Keys it does not know are left untouched, and so
// are present values of the wrong type.
func NormalizeScene(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("normalize scene: invalid json")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("normalize scene: document must be an object")
	}
	out := bytes.Clone(data)
	if inner := root.Get("scene"); inner.IsObject() {
		out = []byte(inner.Raw)
	}

	var err error
	kind := gjson.GetBytes(out, "type")
	switch {
	case !kind.Exists() || kind.Type == gjson.Null:
		if out, err = sjson.SetBytes(out, "type", SceneType); err != nil {
			return nil, fmt.Errorf("normalize scene: set type: %w", err)
		}
	case kind.String() != SceneType:
		return nil, fmt.Errorf("normalize scene: type %q: %w", kind.String(), ErrNotScene)
	}

	if chatbox := gjson.GetBytes(out, "options.chatbox"); chatbox.Type == gjson.Number {
		if out, err = sjson.SetBytes(out, "options.chatbox", chatbox.Raw); err != nil {
			return nil, fmt.Errorf("normalize scene: set chatbox: %w", err)
		}
	}
	for _, def := range optionDefaults {
		if !fillable(out, def.path) {
			continue
		}
		if out, err = prepareParent(out, def.path); err != nil {
			return nil, fmt.Errorf("normalize scene: set %s: %w", def.path, err)
		}
		if out, err = sjson.SetBytes(out, def.path, def.value); err != nil {
			return nil, fmt.Errorf("normalize scene: set %s: %w", def.path, err)
		}
	}
	for _, path := range emptyListPaths {
		if !fillable(out, path) {
			continue
		}
		if out, err = prepareParent(out, path); err != nil {
			return nil, fmt.Errorf("normalize scene: set %s: %w", path, err)
		}
		if out, err = sjson.SetRawBytes(out, path, []byte("[]")); err != nil {
			return nil, fmt.Errorf("normalize scene: set %s: %w", path, err)
		}
	}
	return out, nil
}

// fillable reports whether path is missing or null and its parent, if any,
// is missing, null or an object. Wrong-typed values are left for the decoder
// to reject.
func fillable(data []byte, path string) bool {
	if value := gjson.GetBytes(data, path); value.Exists() && value.Type != gjson.Null {
		return false
	}
	parent, ok := parentPath(path)
	if !ok {
		return true
	}
	value := gjson.GetBytes(data, parent)
	return !value.Exists() || value.Type == gjson.Null || value.IsObject()
}

// prepareParent replaces a null parent of path with an empty object.
func prepareParent(data []byte, path string) ([]byte, error) {
	parent, ok := parentPath(path)
	if !ok {
		return data, nil
	}
	if value := gjson.GetBytes(data, parent); value.Exists() && value.Type == gjson.Null {
		return sjson.SetRawBytes(data, parent, []byte("{}"))
	}
	return data, nil
}

func parentPath(path string) (string, bool) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return "", false
	}
	return path[:idx], true
}

// ImportScene normalizes and decodes a raw scene document.
func ImportScene(data []byte) (Scene, error) {
	normalized, err := NormalizeScene(data)
	if err != nil {
		return Scene{}, err
	}
	return DecodeScene(normalized)
}
