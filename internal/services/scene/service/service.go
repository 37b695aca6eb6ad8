// Package service implements scene and roster operations on top of scene
// storage, returning platform errors that carry codes for every transport.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/courtroom.space/internal/platform/errors"
	"github.com/louisbranch/courtroom.space/internal/platform/id"
	"github.com/louisbranch/courtroom.space/internal/platform/pagination"
	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	"github.com/louisbranch/courtroom.space/internal/services/scene/filter"
	"github.com/louisbranch/courtroom.space/internal/services/scene/storage"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Service exposes scene and character operations.
type Service struct {
	store  storage.SceneStore
	roster *attorney.Roster
	clock  func() time.Time
	newID  func() (string, error)
}

// NewService creates a scene service. A nil roster selects the shipped one.
func NewService(store storage.SceneStore, roster *attorney.Roster) *Service {
	if roster == nil {
		roster = attorney.DefaultRoster()
	}
	return &Service{
		store:  store,
		roster: roster,
		clock:  time.Now,
		newID:  id.NewID,
	}
}

// ListRequest selects one page of scenes.
type ListRequest struct {
	PageSize  int
	PageToken string
	Filter    string
}

// Roster returns the active character roster.
func (s *Service) Roster() *attorney.Roster {
	return s.roster
}

// ListCharacters returns the active roster in file order.
func (s *Service) ListCharacters() []attorney.Character {
	return s.roster.Characters()
}

// GetCharacter returns one character by id.
func (s *Service) GetCharacter(characterID int) (attorney.Character, error) {
	if characterID <= 0 {
		return attorney.Character{}, apperrors.WithMetadata(
			apperrors.CodeCharacterInvalidID,
			fmt.Sprintf("invalid character id %d", characterID),
			map[string]string{"ID": strconv.Itoa(characterID)},
		)
	}
	character, ok := s.roster.Lookup(characterID)
	if !ok {
		return attorney.Character{}, apperrors.WithMetadata(
			apperrors.CodeCharacterNotFound,
			fmt.Sprintf("character %d not found", characterID),
			map[string]string{"ID": strconv.Itoa(characterID)},
		)
	}
	return character, nil
}

// ParseCharacterID parses a character id path value.
func ParseCharacterID(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0, apperrors.WrapWithMetadata(
			apperrors.CodeCharacterInvalidID,
			fmt.Sprintf("invalid character id %q", raw),
			map[string]string{"ID": raw},
			err,
		)
	}
	return value, nil
}

// DecodeScene reads a raw scene document, upgrading older shapes first.
func (s *Service) DecodeScene(data []byte) (attorney.Scene, error) {
	scene, err := attorney.ImportScene(data)
	if err != nil {
		return attorney.Scene{}, apperrors.WrapWithMetadata(
			apperrors.CodeSceneMalformed,
			"decode scene",
			map[string]string{"Reason": err.Error()},
			err,
		)
	}
	return scene, nil
}

// ValidateScene checks scene against the active roster without storing it.
// The returned error wraps the *attorney.ValidationError.
func (s *Service) ValidateScene(scene attorney.Scene) error {
	err := attorney.ValidateScene(scene, s.roster)
	if err == nil {
		return nil
	}
	var verr *attorney.ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) == 0 {
		return apperrors.Wrap(apperrors.CodeSceneInvalid, err.Error(), err)
	}
	return apperrors.WrapWithMetadata(
		apperrors.CodeSceneInvalid,
		err.Error(),
		map[string]string{
			"Count": strconv.Itoa(len(verr.Issues)),
			"First": verr.Issues[0].String(),
		},
		err,
	)
}

// CreateScene validates and stores a new scene under a generated id.
func (s *Service) CreateScene(ctx context.Context, name string, scene attorney.Scene) (storage.SceneRecord, error) {
	if err := s.ready(); err != nil {
		return storage.SceneRecord{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.SceneRecord{}, apperrors.New(apperrors.CodeSceneNameEmpty, "scene name is required")
	}
	if err := s.ValidateScene(scene); err != nil {
		return storage.SceneRecord{}, err
	}
	sceneID, err := s.newID()
	if err != nil {
		return storage.SceneRecord{}, fmt.Errorf("generate scene id: %w", err)
	}

	now := s.clock().UTC()
	record, err := storage.PrepareRecord(storage.SceneRecord{
		ID:        sceneID,
		Name:      name,
		Scene:     scene,
		CreatedAt: now,
		UpdatedAt: now,
	}, now)
	if err != nil {
		return storage.SceneRecord{}, err
	}
	if err := s.store.CreateScene(ctx, record); err != nil {
		return storage.SceneRecord{}, mapStoreError(err, "create scene")
	}
	return record, nil
}

// GetScene returns one stored scene.
func (s *Service) GetScene(ctx context.Context, sceneID string) (storage.SceneRecord, error) {
	if err := s.ready(); err != nil {
		return storage.SceneRecord{}, err
	}
	sceneID = strings.TrimSpace(sceneID)
	if sceneID == "" {
		return storage.SceneRecord{}, apperrors.New(apperrors.CodeSceneIDEmpty, "scene id is required")
	}
	record, err := s.store.GetScene(ctx, sceneID)
	if err != nil {
		return storage.SceneRecord{}, mapStoreError(err, "get scene")
	}
	return record, nil
}

// UpdateScene validates and replaces a stored scene, keeping its creation
// time. An empty name keeps the stored name.
func (s *Service) UpdateScene(ctx context.Context, sceneID, name string, scene attorney.Scene) (storage.SceneRecord, error) {
	existing, err := s.GetScene(ctx, sceneID)
	if err != nil {
		return storage.SceneRecord{}, err
	}
	if err := s.ValidateScene(scene); err != nil {
		return storage.SceneRecord{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = existing.Name
	}

	now := s.clock().UTC()
	record, err := storage.PrepareRecord(storage.SceneRecord{
		ID:        existing.ID,
		Name:      name,
		Scene:     scene,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: now,
	}, now)
	if err != nil {
		return storage.SceneRecord{}, err
	}
	if err := s.store.PutScene(ctx, record); err != nil {
		return storage.SceneRecord{}, mapStoreError(err, "update scene")
	}
	return record, nil
}

// DeleteScene removes a stored scene.
func (s *Service) DeleteScene(ctx context.Context, sceneID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	sceneID = strings.TrimSpace(sceneID)
	if sceneID == "" {
		return apperrors.New(apperrors.CodeSceneIDEmpty, "scene id is required")
	}
	if err := s.store.DeleteScene(ctx, sceneID); err != nil {
		return mapStoreError(err, "delete scene")
	}
	return nil
}

// ListScenes returns one page of stored scenes ordered by id.
func (s *Service) ListScenes(ctx context.Context, req ListRequest) (storage.ScenePage, error) {
	if err := s.ready(); err != nil {
		return storage.ScenePage{}, err
	}
	pageSize := pagination.ClampPageSize(req.PageSize, pagination.PageSizeConfig{
		Default: DefaultPageSize,
		Max:     MaxPageSize,
	})
	pageToken := strings.TrimSpace(req.PageToken)
	if pageToken != "" && !id.Valid(pageToken) {
		return storage.ScenePage{}, apperrors.New(apperrors.CodePageTokenInvalid, "invalid page token")
	}
	if _, err := filter.Parse(req.Filter); err != nil {
		return storage.ScenePage{}, apperrors.WrapWithMetadata(
			apperrors.CodeFilterInvalid,
			"invalid filter",
			map[string]string{"Reason": err.Error()},
			err,
		)
	}

	page, err := s.store.ListScenes(ctx, storage.ListOptions{
		PageSize:  pageSize,
		PageToken: pageToken,
		Filter:    req.Filter,
	})
	if err != nil {
		return storage.ScenePage{}, mapStoreError(err, "list scenes")
	}
	return page, nil
}

func (s *Service) ready() error {
	if s == nil || s.store == nil {
		return errors.New("scene store is not configured")
	}
	return nil
}

func mapStoreError(err error, op string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.WrapWithMetadata(apperrors.CodeNotFound, op+": scene not found", map[string]string{"Resource": "scene"}, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.WrapWithMetadata(apperrors.CodeAlreadyExists, op+": scene already exists", map[string]string{"Resource": "scene"}, err)
	case errors.Is(err, filter.ErrInvalidFilter):
		return apperrors.WrapWithMetadata(apperrors.CodeFilterInvalid, op+": invalid filter", map[string]string{"Reason": err.Error()}, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
