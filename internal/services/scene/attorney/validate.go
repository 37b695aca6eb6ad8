package attorney

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IssueCode classifies a validation issue.
type IssueCode string

const (
	IssueRequired         IssueCode = "required"
	IssueOutOfRange       IssueCode = "out_of_range"
	IssueDuplicate        IssueCode = "duplicate"
	IssueUnknownCharacter IssueCode = "unknown_character"
	IssueInvalidJSON      IssueCode = "invalid_json"
	IssueInvalidType      IssueCode = "invalid_type"
)

// Issue is one structural problem found in a scene.
type Issue struct {
	Path    string    `json:"path"`
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return i.Path + ": " + i.Message
}

// ValidationError carries every issue found in a scene.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "scene is invalid"
	case 1:
		return "scene is invalid: " + e.Issues[0].String()
	default:
		return fmt.Sprintf("scene is invalid: %s (and %d more)", e.Issues[0].String(), len(e.Issues)-1)
	}
}

// CharacterLookup resolves character ids; *Roster implements it.
type CharacterLookup interface {
	Lookup(id int) (Character, bool)
}

// ValidateScene checks the structure of scene. Character references are
// checked only when characters is non-nil. It returns nil or a
// *ValidationError listing every issue in document order.
func ValidateScene(scene Scene, characters CharacterLookup) error {
	v := validator{characters: characters}
	v.scene(scene)
	if len(v.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: v.issues}
}

type validator struct {
	characters CharacterLookup
	issues     []Issue
}

func (v *validator) add(path string, code IssueCode, format string, args ...any) {
	v.issues = append(v.issues, Issue{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) scene(scene Scene) {
	if scene.Type != SceneType {
		v.add("type", IssueInvalidType, "must be %q, got %q", SceneType, scene.Type)
	}
	v.options(scene.Options)

	if len(scene.Groups) == 0 {
		v.add("groups", IssueRequired, "at least one group is required")
	}
	groupIIDs := map[int]string{}
	frameIIDs := map[int]string{}
	for i, group := range scene.Groups {
		path := fmt.Sprintf("groups[%d]", i)
		if strings.TrimSpace(group.Name) == "" {
			v.add(path+".name", IssueRequired, "group name is required")
		}
		v.uniqueIID(path, group.IID, groupIIDs)
		for j, frame := range group.Frames {
			v.frame(fmt.Sprintf("%s.frames[%d]", path, j), frame, frameIIDs)
		}
	}

	v.courtRecord(scene.CourtRecord)
}

func (v *validator) options(options SceneOptions) {
	if options.TextSpeed <= 0 {
		v.add("options.textSpeed", IssueOutOfRange, "must be greater than zero, got %d", options.TextSpeed)
	}
	if options.TextBlipFrequency < 0 {
		v.add("options.textBlipFrequency", IssueOutOfRange, "must not be negative, got %d", options.TextBlipFrequency)
	}
	if options.AutoplaySpeed < 0 {
		v.add("options.autoplaySpeed", IssueOutOfRange, "must not be negative, got %d", options.AutoplaySpeed)
	}
}

func (v *validator) frame(path string, frame Entry, seen map[int]string) {
	v.uniqueIID(path, frame.IID, seen)
	if frame.PoseID <= 0 {
		v.add(path+".poseId", IssueOutOfRange, "must be greater than zero, got %d", frame.PoseID)
	}
	if frame.BubbleID < 0 {
		v.add(path+".bubbleId", IssueOutOfRange, "must not be negative, got %d", frame.BubbleID)
	}
	if frame.CharacterID != nil && v.characters != nil {
		if _, ok := v.characters.Lookup(*frame.CharacterID); !ok {
			v.add(path+".characterId", IssueUnknownCharacter, "character %d is not in the roster", *frame.CharacterID)
		}
	}
	v.opaque(path+".frameActions", frame.FrameActions)
	v.opaque(path+".frameFades", frame.FrameFades)
	v.opaque(path+".transition", frame.Transition)
	v.opaque(path+".popupId", frame.PopupID)
}

func (v *validator) opaque(path string, value json.RawMessage) {
	if len(value) > 0 && !json.Valid(value) {
		v.add(path, IssueInvalidJSON, "must be valid JSON")
	}
}

func (v *validator) courtRecord(record CourtRecord) {
	evidenceIIDs := map[int]string{}
	for i, item := range record.Evidence {
		path := fmt.Sprintf("courtRecord.evidence[%d]", i)
		v.uniqueIID(path, item.IID, evidenceIIDs)
		if strings.TrimSpace(item.Name) == "" {
			v.add(path+".name", IssueRequired, "evidence name is required")
		}
	}
	profileIIDs := map[int]string{}
	for i, item := range record.Profiles {
		path := fmt.Sprintf("courtRecord.profiles[%d]", i)
		v.uniqueIID(path, item.IID, profileIIDs)
		if strings.TrimSpace(item.Name) == "" {
			v.add(path+".name", IssueRequired, "profile name is required")
		}
	}
}

// uniqueIID records iid under path in seen, reporting non-positive and repeated values.
func (v *validator) uniqueIID(path string, iid int, seen map[int]string) {
	if iid <= 0 {
		v.add(path+".iid", IssueOutOfRange, "must be greater than zero, got %d", iid)
		return
	}
	if first, dup := seen[iid]; dup {
		v.add(path+".iid", IssueDuplicate, "iid %d already used by %s", iid, first)
		return
	}
	seen[iid] = path
}
