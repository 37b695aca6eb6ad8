package attorney

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotScene indicates a document whose type is set to something other than "scene".
var ErrNotScene = errors.New("document is not a scene")

// DecodeScene decodes one scene document. A missing type is treated as
// "scene"; keys the model does not know are dropped.
func DecodeScene(data []byte) (Scene, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Scene{}, fmt.Errorf("decode scene: empty document")
	}
	var scene Scene
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&scene); err != nil {
		return Scene{}, fmt.Errorf("decode scene: %w", err)
	}
	if dec.More() {
		return Scene{}, fmt.Errorf("decode scene: unexpected data after document")
	}
	switch scene.Type {
	case "":
		scene.Type = SceneType
	case SceneType:
	default:
		return Scene{}, fmt.Errorf("decode scene: type %q: %w", scene.Type, ErrNotScene)
	}
	return scene, nil
}

// EncodeScene encodes scene as compact JSON.
func EncodeScene(scene Scene) ([]byte, error) {
	data, err := json.Marshal(prepareForEncode(scene))
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return data, nil
}

// EncodeSceneIndent encodes scene as two-space indented JSON.
func EncodeSceneIndent(scene Scene) ([]byte, error) {
	data, err := json.MarshalIndent(prepareForEncode(scene), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return data, nil
}

// prepareForEncode fills the type and replaces nil lists with empty ones so
// encoded documents always carry arrays, never null, for list fields.
func prepareForEncode(scene Scene) Scene {
	if scene.Type == "" {
		scene.Type = SceneType
	}
	if scene.Groups == nil {
		scene.Groups = []SceneGroup{}
	}
	groups := make([]SceneGroup, len(scene.Groups))
	for i, group := range scene.Groups {
		if group.Frames == nil {
			group.Frames = []Entry{}
		}
		groups[i] = group
	}
	scene.Groups = groups
	if scene.CourtRecord.Evidence == nil {
		scene.CourtRecord.Evidence = []Evidence{}
	}
	if scene.CourtRecord.Profiles == nil {
		scene.CourtRecord.Profiles = []Profile{}
	}
	return scene
}
