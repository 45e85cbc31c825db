package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS owners (
		id         TEXT PRIMARY KEY,
		owner_key  TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_at      BIGINT NOT NULL,
		completed   BOOLEAN NOT NULL DEFAULT FALSE,
		owner_key   TEXT NOT NULL REFERENCES owners(owner_key),
		created_at  BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_due ON tasks(owner_key, due_at)`,
}

const taskColumns = "id, name, description, due_at, completed, owner_key, created_at"

// SQLStore is a Backend over database/sql. Timestamps are stored as unix
// milliseconds so ordering is identical on SQLite and Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(path string) (*SQLStore, error) {
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc serialises writers per connection; a single one avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return newSQLStore(db, DialectSQLite)
}

// OpenPostgres connects to Postgres using a lib/pq DSN.
func OpenPostgres(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newSQLStore(db, DialectPostgres)
}

func newSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect, now: time.Now}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) Close(context.Context) error { return s.db.Close() }

// rebind rewrites "?" placeholders to "$n" for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) AddOwner(ctx context.Context, key, name string) (Owner, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Owner{}, persistenceErr("add owner", errEmptyKey)
	}
	if o, err := s.ownerByKey(ctx, key); err == nil {
		return o, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Owner{}, persistenceErr("lookup owner", err)
	}

	o := Owner{ID: uuid.NewString(), Key: key, Name: name, CreatedAt: s.now().Truncate(time.Millisecond)}
	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO owners (id, owner_key, name, created_at) VALUES (?, ?, ?, ?)"),
		o.ID, o.Key, o.Name, o.CreatedAt.UnixMilli())
	if err != nil {
		return Owner{}, persistenceErr("insert owner", err)
	}
	return o, nil
}

func (s *SQLStore) ListOwners(ctx context.Context) ([]Owner, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, owner_key, name, created_at FROM owners ORDER BY owner_key")
	if err != nil {
		return nil, persistenceErr("list owners", err)
	}
	defer rows.Close()

	out := make([]Owner, 0)
	for rows.Next() {
		var o Owner
		var created int64
		if err := rows.Scan(&o.ID, &o.Key, &o.Name, &created); err != nil {
			return nil, persistenceErr("scan owner", err)
		}
		o.CreatedAt = time.UnixMilli(created)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("list owners", err)
	}
	return out, nil
}

func (s *SQLStore) ownerByKey(ctx context.Context, key string) (Owner, error) {
	var o Owner
	var created int64
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id, owner_key, name, created_at FROM owners WHERE owner_key = ?"), key).
		Scan(&o.ID, &o.Key, &o.Name, &created)
	if err != nil {
		return Owner{}, err
	}
	o.CreatedAt = time.UnixMilli(created)
	return o, nil
}

func (s *SQLStore) CreateTask(ctx context.Context, name, description string, dueAt time.Time, ownerKey string) (Task, error) {
	if _, err := s.ownerByKey(ctx, ownerKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrUnknownOwner
		}
		return Task{}, persistenceErr("lookup owner", err)
	}

	t := Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		DueAt:       dueAt.Truncate(time.Millisecond),
		OwnerKey:    ownerKey,
		CreatedAt:   s.now().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"),
		t.ID, t.Name, t.Description, t.DueAt.UnixMilli(), false, t.OwnerKey, t.CreatedAt.UnixMilli())
	if err != nil {
		return Task{}, persistenceErr("insert task", err)
	}
	return t, nil
}

func (s *SQLStore) ListOpenTasks(ctx context.Context, ownerKey string) ([]Task, error) {
	return s.queryTasks(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE owner_key = ? ORDER BY due_at ASC, created_at ASC",
		ownerKey)
}

func (s *SQLStore) ListTasksInRange(ctx context.Context, ownerKey string, start, end time.Time) ([]Task, error) {
	return s.queryTasks(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE owner_key = ? AND due_at >= ? AND due_at <= ? ORDER BY due_at ASC, created_at ASC",
		ownerKey, start.UnixMilli(), end.UnixMilli())
}

func (s *SQLStore) CompleteTask(ctx context.Context, taskID string) (Task, error) {
	res, err := s.db.ExecContext(ctx, s.rebind("UPDATE tasks SET completed = ? WHERE id = ?"), true, taskID)
	if err != nil {
		return Task{}, persistenceErr("complete task", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Task{}, ErrNotFound
	}

	list, err := s.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", taskID)
	if err != nil {
		return Task{}, err
	}
	if len(list) == 0 {
		return Task{}, ErrNotFound
	}
	return list[0], nil
}

func (s *SQLStore) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, persistenceErr("query tasks", err)
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		var t Task
		var due, created int64
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &due, &t.Completed, &t.OwnerKey, &created); err != nil {
			return nil, persistenceErr("scan task", err)
		}
		t.DueAt = time.UnixMilli(due)
		t.CreatedAt = time.UnixMilli(created)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("query tasks", err)
	}
	return out, nil
}
