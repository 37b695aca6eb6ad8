package scene

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/louisbranch/courtroom.space/internal/platform/branding"
	"github.com/louisbranch/courtroom.space/internal/platform/httpx"
	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	"github.com/louisbranch/courtroom.space/internal/services/scene/storage"
)

// narratorName labels frames without a character.
const narratorName = "Narrator"

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.GetScene(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	templ.Handler(TranscriptPage(record, h.svc.Roster())).ServeHTTP(w, r)
}

// TranscriptPage renders a read-only script of a stored scene inside the
// transcript layout.
func TranscriptPage(record storage.SceneRecord, roster *attorney.Roster) templ.Component {
	body := transcriptBody(record, roster)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return transcriptLayout(record.Name).Render(templ.WithChildren(ctx, body), w)
	})
}

// transcriptLayout wraps its children in the HTML document shell.
func transcriptLayout(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeStrings(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>`,
			templ.EscapeString(title), " | ", templ.EscapeString(branding.AppName),
			`</title></head><body>`,
		); err != nil {
			return err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		return writeStrings(w, `</body></html>`)
	})
}

func transcriptBody(record storage.SceneRecord, roster *attorney.Roster) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeStrings(w,
			`<main class="transcript"><h1>`, templ.EscapeString(record.Name), `</h1>`,
			`<p class="counts">`, fmt.Sprintf("%d frames in %d groups", record.FrameCount, record.GroupCount), `</p>`,
		); err != nil {
			return err
		}
		for _, group := range record.Scene.Groups {
			if err := groupSection(group, roster).Render(ctx, w); err != nil {
				return err
			}
		}
		if err := evidenceSection(record.Scene.CourtRecord.Evidence).Render(ctx, w); err != nil {
			return err
		}
		return writeStrings(w, `</main>`)
	})
}

// groupSection renders one group as an ordered list of frames.
func groupSection(group attorney.SceneGroup, roster *attorney.Roster) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeStrings(w,
			`<section id="group-`, strconv.Itoa(group.IID), `"><h2>`, templ.EscapeString(group.Name), `</h2><ol>`,
		); err != nil {
			return err
		}
		for _, frame := range group.Frames {
			if err := frameLine(frame, speakerName(frame, roster)).Render(ctx, w); err != nil {
				return err
			}
		}
		return writeStrings(w, `</ol></section>`)
	})
}

func frameLine(frame attorney.Entry, speaker string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return writeStrings(w,
			`<li id="frame-`, strconv.Itoa(frame.IID), `"><strong>`, templ.EscapeString(speaker), `</strong> `,
			templ.EscapeString(frame.Text), `</li>`,
		)
	})
}

// evidenceSection renders nothing when the court record has no evidence.
func evidenceSection(items []attorney.Evidence) templ.Component {
	if len(items) == 0 {
		return templ.NopComponent
	}
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := writeStrings(w, `<section id="evidence"><h2>Evidence</h2><ul>`); err != nil {
			return err
		}
		for _, item := range items {
			if err := writeStrings(w, `<li>`, templ.EscapeString(item.Name), `</li>`); err != nil {
				return err
			}
		}
		return writeStrings(w, `</ul></section>`)
	})
}

func speakerName(frame attorney.Entry, roster *attorney.Roster) string {
	if frame.CharacterID == nil {
		return narratorName
	}
	if character, ok := roster.Lookup(*frame.CharacterID); ok {
		return character.Name
	}
	return fmt.Sprintf("Character %d", *frame.CharacterID)
}

func writeStrings(w io.Writer, parts ...string) error {
	for _, part := range parts {
		if _, err := io.WriteString(w, part); err != nil {
			return err
		}
	}
	return nil
}
