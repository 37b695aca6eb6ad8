package scene

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/louisbranch/courtroom.space/internal/platform/branding"
	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	"github.com/louisbranch/courtroom.space/internal/services/scene/storage"
)

func TestTranscriptPageEscapesAndNamesSpeakers(t *testing.T) {
	record := storage.SceneRecord{
		Name:       "<Trial>",
		FrameCount: 3,
		GroupCount: 1,
		Scene: attorney.Scene{
			Groups: []attorney.SceneGroup{{
				IID:  1,
				Name: "Opening",
				Frames: []attorney.Entry{
					{IID: 1, Text: "Hold it!", CharacterID: attorney.IntPtr(1)},
					{IID: 2, Text: "a < b"},
					{IID: 3, Text: "who?", CharacterID: attorney.IntPtr(999)},
				},
			}},
			CourtRecord: attorney.CourtRecord{Evidence: []attorney.Evidence{{IID: 1, Name: "Attorney's Badge"}}},
		},
	}

	var buf bytes.Buffer
	if err := TranscriptPage(record, attorney.DefaultRoster()).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := buf.String()
	for _, want := range []string{
		"<h1>&lt;Trial&gt;</h1>",
		"<strong>Phoenix Wright</strong> Hold it!",
		"<strong>Narrator</strong> a &lt; b",
		"<strong>Character 999</strong>",
		"3 frames in 1 groups",
		`<section id="evidence">`,
		"<title>&lt;Trial&gt; | " + branding.AppName + "</title>",
		`<section id="group-1"><h2>Opening</h2><ol>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestEvidenceSectionOmittedWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := evidenceSection(nil).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("body = %q, want empty", buf.String())
	}
}

func TestGroupSectionRendersFramesInOrder(t *testing.T) {
	group := attorney.SceneGroup{IID: 7, Name: "Cross", Frames: []attorney.Entry{
		{IID: 2, Text: "first", CharacterID: attorney.IntPtr(2)},
		{IID: 1, Text: "second"},
	}}
	var buf bytes.Buffer
	if err := groupSection(group, attorney.DefaultRoster()).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<section id="group-7"><h2>Cross</h2><ol>` +
		`<li id="frame-2"><strong>Miles Edgeworth</strong> first</li>` +
		`<li id="frame-1"><strong>Narrator</strong> second</li>` +
		`</ol></section>`
	if got := buf.String(); got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestTranscriptLayoutWrapsChildren(t *testing.T) {
	child := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>child</p>")
		return err
	})
	var buf bytes.Buffer
	if err := transcriptLayout("Case").Render(templ.WithChildren(context.Background(), child), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := buf.String()
	if !strings.Contains(body, "<body><p>child</p></body>") {
		t.Fatalf("body = %q", body)
	}
}
