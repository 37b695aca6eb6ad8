package attorney

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Character is one entry of the character roster.
type Character struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
	// Pose is the default pose index used when a frame names no pose.
	Pose int `json:"pose"`
}

// Roster is an immutable, id-indexed set of characters in file order.
type Roster struct {
	characters []Character
	byID       map[int]int
}

//go:embed characters.json
var embeddedCharacters []byte

var defaultRoster = mustLoadEmbedded()

func mustLoadEmbedded() *Roster {
	roster, err := LoadRoster(bytes.NewReader(embeddedCharacters))
	if err != nil {
		panic(fmt.Sprintf("load embedded roster: %v", err))
	}
	return roster
}

// DefaultRoster returns the roster shipped with the binary.
func DefaultRoster() *Roster {
	return defaultRoster
}

// Characters returns a copy of the shipped roster in file order.
func Characters() []Character {
	return defaultRoster.Characters()
}

// LookupCharacter finds a character of the shipped roster by id.
func LookupCharacter(id int) (Character, bool) {
	return defaultRoster.Lookup(id)
}

// LoadRoster decodes a JSON array of characters.
func LoadRoster(r io.Reader) (*Roster, error) {
	if r == nil {
		return nil, fmt.Errorf("roster reader is required")
	}
	var characters []Character
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&characters); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode roster: unexpected data after array")
	}
	return NewRoster(characters)
}

// NewRoster builds a roster, rejecting blank names, non-positive ids,
// negative poses and duplicate ids.
func NewRoster(characters []Character) (*Roster, error) {
	roster := &Roster{
		characters: make([]Character, 0, len(characters)),
		byID:       make(map[int]int, len(characters)),
	}
	for i, character := range characters {
		if strings.TrimSpace(character.Name) == "" {
			return nil, fmt.Errorf("character %d: name is required", i)
		}
		if character.ID <= 0 {
			return nil, fmt.Errorf("character %q: id must be positive", character.Name)
		}
		if character.Pose < 0 {
			return nil, fmt.Errorf("character %q: pose must not be negative", character.Name)
		}
		if _, dup := roster.byID[character.ID]; dup {
			return nil, fmt.Errorf("character %q: duplicate id %d", character.Name, character.ID)
		}
		roster.byID[character.ID] = len(roster.characters)
		roster.characters = append(roster.characters, character)
	}
	return roster, nil
}

// Len returns the number of characters.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.characters)
}

// Characters returns a copy of the roster in file order.
func (r *Roster) Characters() []Character {
	if r == nil {
		return nil
	}
	out := make([]Character, len(r.characters))
	copy(out, r.characters)
	return out
}

// Lookup finds a character by id.
func (r *Roster) Lookup(id int) (Character, bool) {
	if r == nil {
		return Character{}, false
	}
	idx, ok := r.byID[id]
	if !ok {
		return Character{}, false
	}
	return r.characters[idx], true
}

// FindByName finds a character by case-insensitive exact name.
func (r *Roster) FindByName(name string) (Character, bool) {
	if r == nil {
		return Character{}, false
	}
	name = strings.TrimSpace(name)
	for _, character := range r.characters {
		if strings.EqualFold(character.Name, name) {
			return character, true
		}
	}
	return Character{}, false
}
