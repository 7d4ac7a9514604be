package client

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"clipsync/internal/domain/clip"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS clips (
			sync_id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			source_app TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			last_copied_at INTEGER NOT NULL,
			copy_count INTEGER NOT NULL DEFAULT 1,
			pinned BOOLEAN NOT NULL DEFAULT 0,
			digest TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL,
			deleted BOOLEAN NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS clip_contents (
			clip_sync_id TEXT NOT NULL REFERENCES clips(sync_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			content_type TEXT NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (clip_sync_id, position)
		);

		CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_clips_updated ON clips(updated_at);
		CREATE INDEX IF NOT EXISTS idx_clips_digest ON clips(digest);
		CREATE INDEX IF NOT EXISTS idx_clips_deleted ON clips(deleted);
	`)

	return err
}

func (s *SQLiteStorage) SaveClip(c *StoredClip) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRow("SELECT 1 FROM clips WHERE sync_id = ?", c.Clip.SyncID).Scan(&one)
	if err == nil {
		return ErrClipExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ошибка проверки записи: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO clips (sync_id, device_id, title, source_app, created_at,
		                   last_copied_at, copy_count, pinned, digest, updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Clip.SyncID, c.Clip.DeviceID, c.Clip.Title, c.Clip.SourceApp, c.Clip.CreatedAt,
		c.Clip.LastCopiedAt, c.Clip.CopyCount, c.Clip.Pinned, c.Digest, c.UpdatedAt, c.Deleted)
	if err != nil {
		return fmt.Errorf("ошибка сохранения записи: %w", err)
	}

	if err := insertContents(tx, c.Clip.SyncID, c.Clip.Contents); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) UpdateClip(c *StoredClip) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE clips
		SET device_id = ?, title = ?, source_app = ?, created_at = ?, last_copied_at = ?,
		    copy_count = ?, pinned = ?, digest = ?, updated_at = ?, deleted = ?
		WHERE sync_id = ?
	`, c.Clip.DeviceID, c.Clip.Title, c.Clip.SourceApp, c.Clip.CreatedAt, c.Clip.LastCopiedAt,
		c.Clip.CopyCount, c.Clip.Pinned, c.Digest, c.UpdatedAt, c.Deleted, c.Clip.SyncID)
	if err != nil {
		return fmt.Errorf("ошибка обновления записи: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка обновления записи: %w", err)
	}
	if affected == 0 {
		return ErrClipNotFound
	}

	if _, err := tx.Exec("DELETE FROM clip_contents WHERE clip_sync_id = ?", c.Clip.SyncID); err != nil {
		return fmt.Errorf("ошибка очистки содержимого: %w", err)
	}

	if err := insertContents(tx, c.Clip.SyncID, c.Clip.Contents); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return nil
}

func insertContents(tx *sql.Tx, syncID string, contents []clip.Content) error {
	for i, content := range contents {
		_, err := tx.Exec(`
			INSERT INTO clip_contents (clip_sync_id, position, content_type, data)
			VALUES (?, ?, ?, ?)
		`, syncID, i, string(content.Type), content.Data)
		if err != nil {
			return fmt.Errorf("ошибка сохранения содержимого: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStorage) GetClip(syncID string) (*StoredClip, error) {
	c, err := s.scanClip(s.db.QueryRow(`
		SELECT sync_id, device_id, title, source_app, created_at, last_copied_at,
		       copy_count, pinned, digest, updated_at, deleted
		FROM clips
		WHERE sync_id = ?
	`, syncID))
	if err != nil {
		return nil, err
	}

	if c.Clip.Contents, err = s.loadContents(syncID); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *SQLiteStorage) ListClips(includeDeleted bool) ([]*StoredClip, error) {
	query := `
		SELECT sync_id, device_id, title, source_app, created_at, last_copied_at,
		       copy_count, pinned, digest, updated_at, deleted
		FROM clips`
	if !includeDeleted {
		query += " WHERE deleted = 0"
	}
	query += " ORDER BY last_copied_at DESC"

	return s.queryClips(query)
}

func (s *SQLiteStorage) ListModifiedSince(ms int64) ([]*StoredClip, error) {
	// Удаленные записи включаются: их идентификаторы уходят на сервер
	// отдельным запросом удаления.
	return s.queryClips(`
		SELECT sync_id, device_id, title, source_app, created_at, last_copied_at,
		       copy_count, pinned, digest, updated_at, deleted
		FROM clips
		WHERE updated_at > ?
		ORDER BY updated_at ASC
	`, ms)
}

func (s *SQLiteStorage) queryClips(query string, args ...interface{}) ([]*StoredClip, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	var clips []*StoredClip
	for rows.Next() {
		c, err := s.scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения записей: %w", err)
	}

	for _, c := range clips {
		if c.Clip.Contents, err = s.loadContents(c.Clip.SyncID); err != nil {
			return nil, err
		}
	}

	return clips, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *SQLiteStorage) scanClip(row rowScanner) (*StoredClip, error) {
	var c StoredClip
	err := row.Scan(&c.Clip.SyncID, &c.Clip.DeviceID, &c.Clip.Title, &c.Clip.SourceApp,
		&c.Clip.CreatedAt, &c.Clip.LastCopiedAt, &c.Clip.CopyCount, &c.Clip.Pinned,
		&c.Digest, &c.UpdatedAt, &c.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStorage) loadContents(syncID string) ([]clip.Content, error) {
	rows, err := s.db.Query(`
		SELECT content_type, data
		FROM clip_contents
		WHERE clip_sync_id = ?
		ORDER BY position ASC
	`, syncID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения содержимого: %w", err)
	}
	defer rows.Close()

	var contents []clip.Content
	for rows.Next() {
		var contentType string
		var data []byte
		if err := rows.Scan(&contentType, &data); err != nil {
			return nil, fmt.Errorf("ошибка сканирования содержимого: %w", err)
		}
		contents = append(contents, clip.Content{Type: clip.ContentType(contentType), Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения содержимого: %w", err)
	}

	return contents, nil
}

// MarkDeleted помечает запись удаленной. Уже удаленные и неизвестные
// идентификаторы не считаются ошибкой.
func (s *SQLiteStorage) MarkDeleted(syncID string, updatedAt int64) error {
	_, err := s.db.Exec(`
		UPDATE clips SET deleted = 1, updated_at = ?
		WHERE sync_id = ? AND deleted = 0
	`, updatedAt, syncID)
	if err != nil {
		return fmt.Errorf("ошибка удаления записи: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) FindByDigest(digest string) (*StoredClip, error) {
	if digest == "" {
		return nil, ErrClipNotFound
	}

	c, err := s.scanClip(s.db.QueryRow(`
		SELECT sync_id, device_id, title, source_app, created_at, last_copied_at,
		       copy_count, pinned, digest, updated_at, deleted
		FROM clips
		WHERE digest = ? AND deleted = 0
		LIMIT 1
	`, digest))
	if err != nil {
		return nil, err
	}

	if c.Clip.Contents, err = s.loadContents(c.Clip.SyncID); err != nil {
		return nil, err
	}

	return c, nil
}

// GetState возвращает значение ключа состояния синхронизации,
// отсутствующий ключ дает пустую строку.
func (s *SQLiteStorage) GetState(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM sync_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения состояния: %w", err)
	}

	return value, nil
}

func (s *SQLiteStorage) SetState(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("ошибка сохранения состояния: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) CountClips() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM clips WHERE deleted = 0").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	return count, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
