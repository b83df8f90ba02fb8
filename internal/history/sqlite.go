package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Brownie44l1/dermascan-api/internal/apperr"
)

const DefaultListLimit = 50

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(connectionString string) (*SQLiteStore, error) {
	if connectionString == "" {
		connectionString = ":memory:"
	}
	if dir := databaseDir(connectionString); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "history.open", "failed to create history directory", err)
		}
	}
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "history.open", "failed to open history database", err)
	}
	// an in-memory database exists per connection
	if connectionString == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return &SQLiteStore{db: db}, nil
}

// databaseDir returns the directory holding a file database, or "" for
// in-memory databases and files in the working directory.
func databaseDir(connectionString string) string {
	path := strings.TrimPrefix(connectionString, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return ""
	}
	if dir := filepath.Dir(path); dir != "." {
		return dir
	}
	return ""
}

func (s *SQLiteStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		diagnosis TEXT NOT NULL,
		confidence REAL NOT NULL,
		urgency TEXT NOT NULL,
		image_sha256 TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "history.schema", "failed to create predictions table", err)
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at)`)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "history.schema", "failed to create predictions index", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, r Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO predictions (id, diagnosis, confidence, urgency, image_sha256, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.Diagnosis, r.Confidence, r.Urgency, r.ImageSHA256, r.CreatedAt.UnixNano())
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "history.save", "failed to save prediction", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, diagnosis, confidence, urgency, image_sha256, created_at FROM predictions WHERE id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "history.get", "prediction not found: "+id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "history.get", "failed to read prediction", err)
	}
	return r, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, diagnosis, confidence, urgency, image_sha256, created_at FROM predictions ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "history.list", "failed to list predictions", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "history.list", "failed to read prediction", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "history.list", "failed to list predictions", err)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var r Record
	var created int64
	if err := row.Scan(&r.ID, &r.Diagnosis, &r.Confidence, &r.Urgency, &r.ImageSHA256, &created); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return &r, nil
}
