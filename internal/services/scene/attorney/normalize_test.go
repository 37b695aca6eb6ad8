package attorney

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"
)

func TestNormalizeSceneFillsDefaults(t *testing.T) {
	out, err := NormalizeScene([]byte(`{"scene":{"options":{"chatbox":3},"groups":[{"iid":1,"name":"A","frames":[]}],"editor":true}}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	checks := map[string]string{
		"type":                      "scene",
		"options.chatbox":           "3",
		"options.textSpeed":         "28",
		"options.textBlipFrequency": "56",
		"options.autoplaySpeed":     "500",
		"groups.0.name":             "A",
		"editor":                    "true",
	}
	for path, want := range checks {
		if got := gjson.GetBytes(out, path).String(); got != want {
			t.Fatalf("%s = %q, want %q", path, got, want)
		}
	}
	if gjson.GetBytes(out, "options.chatbox").Type != gjson.String {
		t.Fatal("expected chatbox to be a string")
	}
	for _, path := range []string{"courtRecord.evidence", "courtRecord.profiles"} {
		if !gjson.GetBytes(out, path).IsArray() {
			t.Fatalf("%s missing", path)
		}
	}
}

func TestNormalizeSceneKeepsExistingOptions(t *testing.T) {
	out, err := NormalizeScene([]byte(`{"type":"scene","options":{"chatbox":"2","textSpeed":10,"textBlipFrequency":0,"autoplaySpeed":0},"groups":[]}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := gjson.GetBytes(out, "options.textSpeed").Int(); got != 10 {
		t.Fatalf("textSpeed = %d, want 10", got)
	}
	if got := gjson.GetBytes(out, "options.textBlipFrequency").Int(); got != 0 {
		t.Fatalf("textBlipFrequency = %d, want 0", got)
	}
	if got := gjson.GetBytes(out, "options.chatbox").String(); got != "2" {
		t.Fatalf("chatbox = %q, want 2", got)
	}
}

func TestNormalizeSceneErrors(t *testing.T) {
	if _, err := NormalizeScene([]byte(`{`)); err == nil {
		t.Fatal("expected invalid json error")
	}
	if _, err := NormalizeScene([]byte(`[]`)); err == nil {
		t.Fatal("expected non-object error")
	}
	if _, err := NormalizeScene([]byte(`{"type":"case"}`)); !errors.Is(err, ErrNotScene) {
		t.Fatalf("error = %v, want ErrNotScene", err)
	}

	wrongTypes := []struct {
		name string
		doc  string
		path string
		raw  string
	}{
		{"options number", `{"options":5,"groups":[]}`, "options", `5`},
		{"court record string", `{"courtRecord":"x","groups":[]}`, "courtRecord", `"x"`},
		{"evidence object", `{"courtRecord":{"evidence":{"iid":1}},"groups":[]}`, "courtRecord.evidence", `{"iid":1}`},
		{"groups object", `{"groups":{"iid":1}}`, "groups", `{"iid":1}`},
		{"text speed string", `{"options":{"textSpeed":"fast"},"groups":[]}`, "options.textSpeed", `"fast"`},
	}
	for _, tc := range wrongTypes {
		t.Run(tc.name, func(t *testing.T) {
			out, err := NormalizeScene([]byte(tc.doc))
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if got := gjson.GetBytes(out, tc.path).Raw; got != tc.raw {
				t.Fatalf("%s = %s, want %s", tc.path, got, tc.raw)
			}
			if _, err := ImportScene([]byte(tc.doc)); err == nil {
				t.Fatal("expected import to reject wrong-typed value")
			}
		})
	}
}

func TestNormalizeSceneFillsNullParents(t *testing.T) {
	out, err := NormalizeScene([]byte(`{"options":null,"courtRecord":null,"groups":null}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := gjson.GetBytes(out, "options.textSpeed").Int(); got != DefaultTextSpeed {
		t.Fatalf("textSpeed = %d, want %d", got, DefaultTextSpeed)
	}
	for _, path := range []string{"groups", "courtRecord.evidence", "courtRecord.profiles"} {
		if !gjson.GetBytes(out, path).IsArray() {
			t.Fatalf("%s = %s, want array", path, gjson.GetBytes(out, path).Raw)
		}
	}
}

func TestImportScene(t *testing.T) {
	scene, err := ImportScene([]byte(`{"groups":[{"iid":1,"name":"Only","frames":[{"iid":1,"poseId":1,"text":"Hold it!","characterId":1}]}]}`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if scene.Options.TextSpeed != DefaultTextSpeed || scene.Options.Chatbox != DefaultChatbox {
		t.Fatalf("options = %+v", scene.Options)
	}
	if scene.CourtRecord.Evidence == nil || scene.CourtRecord.Profiles == nil {
		t.Fatal("expected empty court record lists")
	}
	if err := ValidateScene(scene, DefaultRoster()); err != nil {
		t.Fatalf("validate imported scene: %v", err)
	}
}

func TestDetectDocument(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  DocumentKind
	}{
		{"scene", `{"type":"scene","groups":[]}`, DocumentScene},
		{"untyped scene", `{"groups":[]}`, DocumentScene},
		{"envelope", `{"scene":{"groups":[]}}`, DocumentScene},
		{"other type", `{"type":"case","groups":[]}`, DocumentUnknown},
		{"roster", `[{"name":"Phoenix Wright","id":1,"pose":1}]`, DocumentRoster},
		{"empty roster", `[]`, DocumentRoster},
		{"number array", `[1,2]`, DocumentUnknown},
		{"invalid", `{`, DocumentUnknown},
		{"plain object", `{"hello":"world"}`, DocumentUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectDocument([]byte(tc.input)); got != tc.want {
				t.Fatalf("DetectDocument = %q, want %q", got, tc.want)
			}
		})
	}
}
