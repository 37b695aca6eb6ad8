package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
)

// recordDocument is the self-contained JSON form of a SceneRecord used by
// key-value backends and caches.
type recordDocument struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Scene      json.RawMessage `json:"scene"`
	FrameCount int             `json:"frame_count"`
	GroupCount int             `json:"group_count"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// EncodeRecord marshals a record, scene included, as one JSON document.
func EncodeRecord(record SceneRecord) ([]byte, error) {
	scene, err := attorney.EncodeScene(record.Scene)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(recordDocument{
		ID:         record.ID,
		Name:       record.Name,
		Scene:      scene,
		FrameCount: record.FrameCount,
		GroupCount: record.GroupCount,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal scene record: %w", err)
	}
	return payload, nil
}

// DecodeRecord reverses EncodeRecord.
func DecodeRecord(payload []byte) (SceneRecord, error) {
	var doc recordDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return SceneRecord{}, fmt.Errorf("unmarshal scene record: %w", err)
	}
	scene, err := attorney.DecodeScene(doc.Scene)
	if err != nil {
		return SceneRecord{}, fmt.Errorf("scene %s: %w", doc.ID, err)
	}
	return SceneRecord{
		ID:         doc.ID,
		Name:       doc.Name,
		Scene:      scene,
		FrameCount: doc.FrameCount,
		GroupCount: doc.GroupCount,
		CreatedAt:  doc.CreatedAt.UTC(),
		UpdatedAt:  doc.UpdatedAt.UTC(),
	}, nil
}
