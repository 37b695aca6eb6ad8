// Package storage defines persistence contracts for scene documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	"github.com/louisbranch/courtroom.space/internal/services/scene/filter"
)

var (
	// ErrNotFound indicates a requested scene record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a scene with the same id already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// SceneRecord stores one named scene document with listing metadata.
type SceneRecord struct {
	ID         string
	Name       string
	Scene      attorney.Scene
	FrameCount int
	GroupCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Field resolves filterable fields for in-memory filter evaluation.
func (r SceneRecord) Field(name string) (any, bool) {
	switch name {
	case filter.FieldName:
		return r.Name, true
	case filter.FieldFrameCount:
		return r.FrameCount, true
	case filter.FieldGroupCount:
		return r.GroupCount, true
	case filter.FieldCreatedAt:
		return r.CreatedAt, true
	case filter.FieldUpdatedAt:
		return r.UpdatedAt, true
	default:
		return nil, false
	}
}

// ListOptions selects one page of scene records.
type ListOptions struct {
	PageSize int
	// PageToken is the id of the last record of the previous page.
	PageToken string
	// Filter is an AIP-160 expression over name, frame_count, group_count,
	// created_at and updated_at.
	Filter string
}

// ScenePage stores one page of scene records ordered by id.
type ScenePage struct {
	Scenes        []SceneRecord
	NextPageToken string
}

// SceneStore persists scene records.
type SceneStore interface {
	// CreateScene inserts a new record, failing with ErrAlreadyExists.
	CreateScene(ctx context.Context, record SceneRecord) error
	// PutScene inserts or replaces a record. Replacing keeps the stored
	// CreatedAt.
	PutScene(ctx context.Context, record SceneRecord) error
	GetScene(ctx context.Context, id string) (SceneRecord, error)
	DeleteScene(ctx context.Context, id string) error
	ListScenes(ctx context.Context, opts ListOptions) (ScenePage, error)
}

// PrepareRecord normalizes a record before it is written: it trims id and
// name, derives the frame and group counts from the scene and fills missing
// timestamps from now. Timestamps are truncated to milliseconds, the
// precision every backend stores.
func PrepareRecord(record SceneRecord, now time.Time) (SceneRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.Name = strings.TrimSpace(record.Name)
	if record.ID == "" {
		return SceneRecord{}, fmt.Errorf("scene id is required")
	}
	if record.Name == "" {
		return SceneRecord{}, fmt.Errorf("scene name is required")
	}
	record.FrameCount = record.Scene.FrameCount()
	record.GroupCount = len(record.Scene.Groups)

	createdAt := record.CreatedAt.UTC()
	updatedAt := record.UpdatedAt.UTC()
	if createdAt.IsZero() && updatedAt.IsZero() {
		createdAt = now.UTC()
		updatedAt = createdAt
	} else {
		if createdAt.IsZero() {
			createdAt = updatedAt
		}
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}
	}
	record.CreatedAt = createdAt.Truncate(time.Millisecond)
	record.UpdatedAt = updatedAt.Truncate(time.Millisecond)
	return record, nil
}

// ValidatePageSize rejects non-positive page sizes.
func ValidatePageSize(pageSize int) error {
	if pageSize <= 0 {
		return fmt.Errorf("page size must be greater than zero")
	}
	return nil
}
