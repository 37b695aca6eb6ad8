package attorney

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSceneAcceptsFixture(t *testing.T) {
	if err := ValidateScene(loadFixture(t), DefaultRoster()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateSceneReportsIssues(t *testing.T) {
	scene := loadFixture(t)
	scene.Options.TextSpeed = 0
	scene.Groups[1].Name = " "
	scene.Groups[1].IID = 1
	scene.Groups[1].Frames[0].IID = 2
	scene.Groups[1].Frames[0].PoseID = 0
	scene.Groups[1].Frames[0].CharacterID = IntPtr(404)
	scene.Groups[1].Frames[0].Transition = []byte(`{"duration":`)
	scene.CourtRecord.Evidence = append(scene.CourtRecord.Evidence, Evidence{IID: 1})

	err := ValidateScene(scene, DefaultRoster())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}

	want := []struct {
		path string
		code IssueCode
	}{
		{"options.textSpeed", IssueOutOfRange},
		{"groups[1].name", IssueRequired},
		{"groups[1].iid", IssueDuplicate},
		{"groups[1].frames[0].iid", IssueDuplicate},
		{"groups[1].frames[0].poseId", IssueOutOfRange},
		{"groups[1].frames[0].characterId", IssueUnknownCharacter},
		{"groups[1].frames[0].transition", IssueInvalidJSON},
		{"courtRecord.evidence[1].iid", IssueDuplicate},
		{"courtRecord.evidence[1].name", IssueRequired},
	}
	if len(verr.Issues) != len(want) {
		t.Fatalf("issues = %v, want %d issues", verr.Issues, len(want))
	}
	for i, w := range want {
		got := verr.Issues[i]
		if got.Path != w.path || got.Code != w.code {
			t.Fatalf("issue %d = %s (%s), want %s (%s)", i, got.Path, got.Code, w.path, w.code)
		}
	}
	if !strings.Contains(err.Error(), "(and 8 more)") {
		t.Fatalf("error = %q", err.Error())
	}
}

func TestValidateSceneWithoutRosterSkipsCharacters(t *testing.T) {
	scene := loadFixture(t)
	scene.Groups[0].Frames[0].CharacterID = IntPtr(404)
	if err := ValidateScene(scene, nil); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := ValidateScene(scene, DefaultRoster()); err == nil {
		t.Fatal("expected unknown character with roster")
	}
}

func TestValidateSceneRequiresGroupsAndType(t *testing.T) {
	err := ValidateScene(Scene{Type: "case", Options: SceneOptions{TextSpeed: 1}}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.Issues) != 2 {
		t.Fatalf("issues = %v, want 2", verr.Issues)
	}
	if verr.Issues[0].Code != IssueInvalidType || verr.Issues[1].Path != "groups" {
		t.Fatalf("issues = %v", verr.Issues)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Issues: []Issue{{Path: "groups", Code: IssueRequired, Message: "at least one group is required"}}}
	if got, want := err.Error(), "scene is invalid: groups: at least one group is required"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func minimalScene() Scene {
	return Scene{
		Type:    SceneType,
		Options: SceneOptions{Chatbox: DefaultChatbox, TextSpeed: DefaultTextSpeed},
		Groups: []SceneGroup{{
			IID:  1,
			Name: "Opening",
			Frames: []Entry{
				{IID: 1, PoseID: 1, CharacterID: IntPtr(1)},
				{IID: 2, PoseID: 1},
			},
		}},
		CourtRecord: CourtRecord{
			Evidence: []Evidence{{IID: 1, Name: "Attorney's Badge"}},
			Profiles: []Profile{{IID: 1, Name: "Phoenix Wright"}},
		},
	}
}

func TestValidateSceneRules(t *testing.T) {
	if err := ValidateScene(minimalScene(), DefaultRoster()); err != nil {
		t.Fatalf("validate minimal scene: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Scene)
		path   string
		code   IssueCode
	}{
		{"negative blip frequency", func(s *Scene) { s.Options.TextBlipFrequency = -1 }, "options.textBlipFrequency", IssueOutOfRange},
		{"negative autoplay speed", func(s *Scene) { s.Options.AutoplaySpeed = -1 }, "options.autoplaySpeed", IssueOutOfRange},
		{"zero group iid", func(s *Scene) { s.Groups[0].IID = 0 }, "groups[0].iid", IssueOutOfRange},
		{"negative group iid", func(s *Scene) { s.Groups[0].IID = -3 }, "groups[0].iid", IssueOutOfRange},
		{"zero frame iid", func(s *Scene) { s.Groups[0].Frames[1].IID = 0 }, "groups[0].frames[1].iid", IssueOutOfRange},
		{"negative bubble id", func(s *Scene) { s.Groups[0].Frames[0].BubbleID = -1 }, "groups[0].frames[0].bubbleId", IssueOutOfRange},
		{"invalid frame actions", func(s *Scene) { s.Groups[0].Frames[0].FrameActions = []byte(`[`) }, "groups[0].frames[0].frameActions", IssueInvalidJSON},
		{"invalid popup id", func(s *Scene) { s.Groups[0].Frames[0].PopupID = []byte(`nope`) }, "groups[0].frames[0].popupId", IssueInvalidJSON},
		{"zero evidence iid", func(s *Scene) { s.CourtRecord.Evidence[0].IID = 0 }, "courtRecord.evidence[0].iid", IssueOutOfRange},
		{"zero profile iid", func(s *Scene) { s.CourtRecord.Profiles[0].IID = 0 }, "courtRecord.profiles[0].iid", IssueOutOfRange},
		{"duplicate profile iid", func(s *Scene) {
			s.CourtRecord.Profiles = append(s.CourtRecord.Profiles, Profile{IID: 1, Name: "Maya Fey"})
		}, "courtRecord.profiles[1].iid", IssueDuplicate},
		{"blank profile name", func(s *Scene) { s.CourtRecord.Profiles[0].Name = "  " }, "courtRecord.profiles[0].name", IssueRequired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scene := minimalScene()
			tc.mutate(&scene)
			err := ValidateScene(scene, DefaultRoster())
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if len(verr.Issues) != 1 {
				t.Fatalf("issues = %v, want 1", verr.Issues)
			}
			if got := verr.Issues[0]; got.Path != tc.path || got.Code != tc.code {
				t.Fatalf("issue = %s (%s), want %s (%s)", got.Path, got.Code, tc.path, tc.code)
			}
		})
	}
}

func TestValidateSceneAllowsZeroOptionsAndBubble(t *testing.T) {
	scene := minimalScene()
	scene.Options.TextBlipFrequency = 0
	scene.Options.AutoplaySpeed = 0
	scene.Groups[0].Frames[0].BubbleID = 0
	if err := ValidateScene(scene, DefaultRoster()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
