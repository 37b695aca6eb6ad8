// Package sqlite provides a SQLite-backed scene storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/courtroom.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	"github.com/louisbranch/courtroom.space/internal/services/scene/filter"
	"github.com/louisbranch/courtroom.space/internal/services/scene/storage"
	"github.com/louisbranch/courtroom.space/internal/services/scene/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const sceneColumns = `id, name, payload, frame_count, group_count, created_at, updated_at`

// Store persists scene records in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite scene store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
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
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record, err := storage.PrepareRecord(record, s.now())
	if err != nil {
		return err
	}
	payload, err := attorney.EncodeScene(record.Scene)
	if err != nil {
		return err
	}

	query := `INSERT INTO scenes (` + sceneColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if replace {
		query += ` ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   payload = excluded.payload,
		   frame_count = excluded.frame_count,
		   group_count = excluded.group_count,
		   updated_at = excluded.updated_at`
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		query,
		record.ID,
		record.Name,
		string(payload),
		record.FrameCount,
		record.GroupCount,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isSceneUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put scene: %w", err)
	}
	return nil
}

// GetScene returns one scene record by id.
func (s *Store) GetScene(ctx context.Context, id string) (storage.SceneRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.SceneRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SceneRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.SceneRecord{}, fmt.Errorf("scene id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE id = ?`, id)
	record, err := scanScene(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SceneRecord{}, storage.ErrNotFound
		}
		return storage.SceneRecord{}, fmt.Errorf("get scene: %w", err)
	}
	return record, nil
}

// DeleteScene removes one scene record by id.
func (s *Store) DeleteScene(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("scene id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM scenes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListScenes returns one page of scene records ordered by id.
func (s *Store) ListScenes(ctx context.Context, opts storage.ListOptions) (storage.ScenePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.ScenePage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ScenePage{}, fmt.Errorf("storage is not configured")
	}
	if err := storage.ValidatePageSize(opts.PageSize); err != nil {
		return storage.ScenePage{}, err
	}
	cond, err := filter.Parse(opts.Filter)
	if err != nil {
		return storage.ScenePage{}, err
	}
	where, err := cond.SQL(filter.SceneColumns)
	if err != nil {
		return storage.ScenePage{}, err
	}

	var clauses []string
	var params []any
	if token := strings.TrimSpace(opts.PageToken); token != "" {
		clauses = append(clauses, "id > ?")
		params = append(params, token)
	}
	if where.Clause != "" {
		clauses = append(clauses, where.Clause)
		params = append(params, where.Params...)
	}
	query := `SELECT ` + sceneColumns + ` FROM scenes`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY id ASC LIMIT ?`
	params = append(params, opts.PageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.ScenePage{}, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	page := storage.ScenePage{Scenes: make([]storage.SceneRecord, 0, opts.PageSize)}
	for rows.Next() {
		record, err := scanScene(rows)
		if err != nil {
			return storage.ScenePage{}, fmt.Errorf("list scenes: %w", err)
		}
		page.Scenes = append(page.Scenes, record)
	}
	if err := rows.Err(); err != nil {
		return storage.ScenePage{}, fmt.Errorf("list scenes: %w", err)
	}
	if len(page.Scenes) > opts.PageSize {
		page.NextPageToken = page.Scenes[opts.PageSize-1].ID
		page.Scenes = page.Scenes[:opts.PageSize]
	}
	return page, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScene(row rowScanner) (storage.SceneRecord, error) {
	var (
		record    storage.SceneRecord
		payload   string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&record.ID,
		&record.Name,
		&payload,
		&record.FrameCount,
		&record.GroupCount,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.SceneRecord{}, err
	}
	scene, err := attorney.DecodeScene([]byte(payload))
	if err != nil {
		return storage.SceneRecord{}, fmt.Errorf("scene %s: %w", record.ID, err)
	}
	record.Scene = scene
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func isSceneUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "scenes.id")
}

var _ storage.SceneStore = (*Store)(nil)
