package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when no snippet has the requested name
var ErrNotFound = errors.New("snippet not found")

// Snippet is one saved prompt document
type Snippet struct {
	ID        string
	Name      string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists snippets in a SQLite database. All methods are safe for
// concurrent use; SQLite serializes writers underneath.
type Store struct {
	db *sql.DB
}

// Open opens the snippet database at path, creating it if necessary, and
// runs pending migrations. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Put saves source under name, creating the snippet or updating it in
// place, and returns the stored row.
func (s *Store) Put(ctx context.Context, name, source string) (*Snippet, error) {
	if name == "" {
		return nil, fmt.Errorf("snippet name required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE snippets SET source = ?, updated_at = ? WHERE name = ?`,
		source, now, name)
	if err != nil {
		return nil, fmt.Errorf("failed to update snippet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO snippets (id, name, source, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), name, source, now, now); err != nil {
			return nil, fmt.Errorf("failed to insert snippet: %w", err)
		}
	}
	return s.Get(ctx, name)
}

// Get returns the snippet stored under name
func (s *Store) Get(ctx context.Context, name string) (*Snippet, error) {
	var sn Snippet
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, source, created_at, updated_at FROM snippets WHERE name = ?`,
		name).Scan(&sn.ID, &sn.Name, &sn.Source, &sn.CreatedAt, &sn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snippet: %w", err)
	}
	return &sn, nil
}

// List returns every snippet ordered by name
func (s *Store) List(ctx context.Context) ([]*Snippet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, created_at, updated_at FROM snippets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snippets: %w", err)
	}
	defer rows.Close()

	var out []*Snippet
	for rows.Next() {
		var sn Snippet
		if err := rows.Scan(&sn.ID, &sn.Name, &sn.Source, &sn.CreatedAt, &sn.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snippet: %w", err)
		}
		out = append(out, &sn)
	}
	return out, rows.Err()
}

// Delete removes the snippet stored under name
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snippets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete snippet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
