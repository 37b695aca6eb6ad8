// Package attorney models courtroom-drama scene documents: the character
// roster, dialogue frames, frame groups, playback options and the court record.
//
// The package describes and checks the shape of scenes only. Values whose
// meaning belongs to a player (frame actions, fades, transitions, popups) are
// carried as opaque JSON and never interpreted here.
package attorney

import (
	"bytes"
	"encoding/json"
	"sort"
)

// SceneType is the only accepted value of Scene.Type.
const SceneType = "scene"

// Scene is a full scene document.
type Scene struct {
	Type        string       `json:"type"`
	Version     int          `json:"version,omitempty"`
	Options     SceneOptions `json:"options"`
	Groups      []SceneGroup `json:"groups"`
	CourtRecord CourtRecord  `json:"courtRecord"`
}

// SceneOptions are the playback options stored with a scene.
type SceneOptions struct {
	Chatbox           string `json:"chatbox"`
	TextSpeed         int    `json:"textSpeed"`
	TextBlipFrequency int    `json:"textBlipFrequency"`
	AutoplaySpeed     int    `json:"autoplaySpeed"`
	ContinueSoundURL  string `json:"continueSoundUrl,omitempty"`
}

// SceneGroup is a named, ordered run of frames.
type SceneGroup struct {
	IID    int     `json:"iid"`
	Name   string  `json:"name"`
	Frames []Entry `json:"frames"`
}

// Entry is one dialogue frame.
type Entry struct {
	ID            int    `json:"id"`
	IID           int    `json:"iid"`
	Text          string `json:"text"`
	PoseID        int    `json:"poseId"`
	BubbleID      int    `json:"bubbleId"`
	CharacterID   *int   `json:"characterId"`
	PairPoseID    *int   `json:"pairPoseId"`
	MergeNext     bool   `json:"mergeNext"`
	GoNext        bool   `json:"goNext"`
	DoNotTalk     bool   `json:"doNotTalk"`
	PoseAnimation bool   `json:"poseAnimation"`
	Flipped       *bool  `json:"flipped"`

	// Opaque player data, kept verbatim.
	FrameActions json.RawMessage `json:"frameActions"`
	FrameFades   json.RawMessage `json:"frameFades"`
	Transition   json.RawMessage `json:"transition"`
	PopupID      json.RawMessage `json:"popupId"`
}

// CourtRecord is the evidence and profile inventory attached to a scene.
type CourtRecord struct {
	Evidence []Evidence `json:"evidence"`
	Profiles []Profile  `json:"profiles"`
}

// Evidence is one court-record evidence item.
type Evidence struct {
	IID         int    `json:"iid"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	URL         string `json:"url,omitempty"`
}

// Profile is one court-record person profile.
type Profile struct {
	IID         int    `json:"iid"`
	Name        string `json:"name"`
	Age         string `json:"age,omitempty"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
}

// FrameCount returns the number of frames across all groups.
func (s Scene) FrameCount() int {
	total := 0
	for _, group := range s.Groups {
		total += len(group.Frames)
	}
	return total
}

// Frame finds a frame by iid.
func (s Scene) Frame(iid int) (Entry, bool) {
	for _, group := range s.Groups {
		for _, frame := range group.Frames {
			if frame.IID == iid {
				return frame, true
			}
		}
	}
	return Entry{}, false
}

// Group finds a group by iid.
func (s Scene) Group(iid int) (SceneGroup, bool) {
	for _, group := range s.Groups {
		if group.IID == iid {
			return group, true
		}
	}
	return SceneGroup{}, false
}

// CharacterIDs returns the sorted distinct character ids named by frames.
func (s Scene) CharacterIDs() []int {
	seen := map[int]struct{}{}
	for _, group := range s.Groups {
		for _, frame := range group.Frames {
			if frame.CharacterID != nil {
				seen[*frame.CharacterID] = struct{}{}
			}
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone returns a deep copy of s.
func (s Scene) Clone() Scene {
	out := s
	if s.Groups != nil {
		out.Groups = make([]SceneGroup, len(s.Groups))
		for i, group := range s.Groups {
			out.Groups[i] = group.clone()
		}
	}
	if s.CourtRecord.Evidence != nil {
		out.CourtRecord.Evidence = append([]Evidence(nil), s.CourtRecord.Evidence...)
	}
	if s.CourtRecord.Profiles != nil {
		out.CourtRecord.Profiles = append([]Profile(nil), s.CourtRecord.Profiles...)
	}
	return out
}

func (g SceneGroup) clone() SceneGroup {
	out := g
	if g.Frames != nil {
		out.Frames = make([]Entry, len(g.Frames))
		for i, frame := range g.Frames {
			out.Frames[i] = frame.clone()
		}
	}
	return out
}

func (e Entry) clone() Entry {
	out := e
	out.CharacterID = cloneInt(e.CharacterID)
	out.PairPoseID = cloneInt(e.PairPoseID)
	if e.Flipped != nil {
		flipped := *e.Flipped
		out.Flipped = &flipped
	}
	out.FrameActions = cloneRaw(e.FrameActions)
	out.FrameFades = cloneRaw(e.FrameFades)
	out.Transition = cloneRaw(e.Transition)
	out.PopupID = cloneRaw(e.PopupID)
	return out
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func cloneRaw(value json.RawMessage) json.RawMessage {
	if value == nil {
		return nil
	}
	return bytes.Clone(value)
}

// IntPtr returns a pointer to value, for building frames in code.
func IntPtr(value int) *int {
	return &value
}
