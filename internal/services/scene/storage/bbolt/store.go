// Package bbolt provides a BoltDB-backed scene storage implementation.
package bbolt

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/courtroom.space/internal/services/scene/filter"
	"github.com/louisbranch/courtroom.space/internal/services/scene/storage"
	"go.etcd.io/bbolt"
)

const sceneBucket = "scenes"

// Store provides a BoltDB-backed scene store. Keys are scene ids, so a
// cursor walks records in id order.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string, timeout time.Duration) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if timeout <= 0 {
		timeout = time.Second
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateScene inserts one scene record.
func (s *Store) CreateScene(ctx context.Context, record storage.SceneRecord) error {
	return s.write(ctx, record, false)
}

// PutScene inserts or replaces one scene record, keeping the stored CreatedAt.
func (s *Store) PutScene(ctx context.Context, record storage.SceneRecord) error {
	return s.write(ctx, record, true)
}

func (s *Store) write(ctx context.Context, record storage.SceneRecord, replace bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	record, err := storage.PrepareRecord(record, s.now())
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sceneBucket))
		if bucket == nil {
			return fmt.Errorf("scene bucket is missing")
		}
		key := sceneKey(record.ID)
		if existing := bucket.Get(key); existing != nil {
			if !replace {
				return storage.ErrAlreadyExists
			}
			stored, err := storage.DecodeRecord(existing)
			if err != nil {
				return err
			}
			// The first write owns the creation time.
			record.CreatedAt = stored.CreatedAt
		}
		payload, err := storage.EncodeRecord(record)
		if err != nil {
			return err
		}
		return bucket.Put(key, payload)
	})
}

// GetScene fetches a scene record by id.
func (s *Store) GetScene(ctx context.Context, id string) (storage.SceneRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.SceneRecord{}, err
	}
	if s == nil || s.db == nil {
		return storage.SceneRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.SceneRecord{}, fmt.Errorf("scene id is required")
	}

	var record storage.SceneRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sceneBucket))
		if bucket == nil {
			return fmt.Errorf("scene bucket is missing")
		}
		payload := bucket.Get(sceneKey(id))
		if payload == nil {
			return storage.ErrNotFound
		}
		var err error
		record, err = storage.DecodeRecord(payload)
		return err
	})
	if err != nil {
		return storage.SceneRecord{}, err
	}
	return record, nil
}

// DeleteScene removes a scene record by id.
func (s *Store) DeleteScene(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("scene id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sceneBucket))
		if bucket == nil {
			return fmt.Errorf("scene bucket is missing")
		}
		key := sceneKey(id)
		if bucket.Get(key) == nil {
			return storage.ErrNotFound
		}
		return bucket.Delete(key)
	})
}

// ListScenes walks the bucket in key order, evaluating the filter in memory.
func (s *Store) ListScenes(ctx context.Context, opts storage.ListOptions) (storage.ScenePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.ScenePage{}, err
	}
	if s == nil || s.db == nil {
		return storage.ScenePage{}, fmt.Errorf("storage is not configured")
	}
	if err := storage.ValidatePageSize(opts.PageSize); err != nil {
		return storage.ScenePage{}, err
	}
	cond, err := filter.Parse(opts.Filter)
	if err != nil {
		return storage.ScenePage{}, err
	}
	token := strings.TrimSpace(opts.PageToken)

	page := storage.ScenePage{Scenes: make([]storage.SceneRecord, 0, opts.PageSize)}
	err = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sceneBucket))
		if bucket == nil {
			return fmt.Errorf("scene bucket is missing")
		}
		cursor := bucket.Cursor()
		key, value := cursor.First()
		if token != "" {
			key, value = cursor.Seek(sceneKey(token))
			if key != nil && bytes.Equal(key, sceneKey(token)) {
				key, value = cursor.Next()
			}
		}
		for ; key != nil; key, value = cursor.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := storage.DecodeRecord(value)
			if err != nil {
				return err
			}
			ok, err := cond.Match(record.Field)
			if err != nil {
				return fmt.Errorf("list scenes: %w", err)
			}
			if !ok {
				continue
			}
			page.Scenes = append(page.Scenes, record)
			if len(page.Scenes) > opts.PageSize {
				break
			}
		}
		return nil
	})
	if err != nil {
		return storage.ScenePage{}, err
	}
	if len(page.Scenes) > opts.PageSize {
		page.NextPageToken = page.Scenes[opts.PageSize-1].ID
		page.Scenes = page.Scenes[:opts.PageSize]
	}
	return page, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sceneBucket))
		if err != nil {
			return fmt.Errorf("create scene bucket: %w", err)
		}
		return nil
	})
}

func sceneKey(id string) []byte {
	return []byte(id)
}

var _ storage.SceneStore = (*Store)(nil)
