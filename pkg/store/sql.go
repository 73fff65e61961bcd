package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/mitchellh/go-homedir"
	_ "modernc.org/sqlite"

	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/task"
)

const (
	kindTask  = "task"
	kindState = "state"
)

// pollInterval is how often Watch checks the documents table for changes.
var pollInterval = time.Second

// OpenSQL creates a Persistence backed by a documents table. Every row is a
// JSON document addressed by (kind, owner, id).
func OpenSQL(driver, dsn, owner string) (Persistence, error) {
	if dsn == "" {
		return nil, errors.New("store: dsn is empty")
	}
	if driver == DriverSQLite {
		var err error
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	s := &sqlPersistence{db: db, driver: driver, owner: owner}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

type sqlPersistence struct {
	db     *sql.DB
	driver string
	owner  string
}

func (s *sqlPersistence) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	kind TEXT NOT NULL,
	owner TEXT NOT NULL,
	id TEXT NOT NULL,
	body TEXT NOT NULL,
	updated_at BIGINT NOT NULL,
	PRIMARY KEY (kind, owner, id)
);`
	_, err := s.db.Exec(ddl)
	return err
}

// rebind rewrites ? placeholders into $n for postgres.
func (s *sqlPersistence) rebind(query string) string {
	if s.driver != DriverPostgres {
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

func (s *sqlPersistence) put(kind, id string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(s.rebind(`INSERT INTO documents (kind, owner, id, body, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (kind, owner, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at;`),
		kind, s.owner, id, string(body), time.Now().UnixNano())
	return err
}

func (s *sqlPersistence) get(ctx context.Context, kind, id string, v any) error {
	var body string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT body FROM documents WHERE kind = ? AND owner = ? AND id = ?;`),
		kind, s.owner, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), v)
}

func (s *sqlPersistence) ListAll(ctx context.Context) []*task.Task {
	all := make([]*task.Task, 0)
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, body FROM documents WHERE kind = ? AND owner = ?;`), kindTask, s.owner)
	if err != nil {
		slog.Warn("store: list tasks", "err", err)
		return all
	}
	defer rows.Close()
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			slog.Warn("store: scan task", "err", err)
			continue
		}
		t := &task.Task{}
		if err := json.Unmarshal([]byte(body), t); err != nil {
			slog.Warn("store: skipping unreadable task", "id", id, "err", err)
			continue
		}
		if t.ID == "" {
			t.ID = id
		}
		all = append(all, t)
	}
	if err := rows.Err(); err != nil {
		slog.Warn("store: list tasks", "err", err)
	}
	sortTasks(all)
	return all
}

func (s *sqlPersistence) Get(ctx context.Context, id string) (*task.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	t := &task.Task{}
	if err := s.get(ctx, kindTask, id, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *sqlPersistence) Store(t *task.Task) error {
	if t == nil {
		return errors.New("store: task required")
	}
	if err := checkID(t.ID); err != nil {
		return err
	}
	return s.put(kindTask, t.ID, t)
}

func (s *sqlPersistence) Delete(t *task.Task) error {
	if t == nil {
		return ErrNotFound
	}
	if err := checkID(t.ID); err != nil {
		return err
	}
	res, err := s.db.Exec(s.rebind(`DELETE FROM documents WHERE kind = ? AND owner = ? AND id = ?;`), kindTask, s.owner, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlPersistence) Settings() (Settings, error) {
	st := DefaultSettings()
	if err := s.get(context.Background(), kindState, settingsKey, &st); err != nil && !errors.Is(err, ErrNotFound) {
		return DefaultSettings(), err
	}
	return normalizeSettings(st), nil
}

func (s *sqlPersistence) StoreSettings(st Settings) error {
	return s.put(kindState, settingsKey, normalizeSettings(st))
}

func (s *sqlPersistence) Order() (bucket.Order, error) {
	o := bucket.Order{}
	if err := s.get(context.Background(), kindState, orderKey, &o); err != nil && !errors.Is(err, ErrNotFound) {
		return bucket.Order{}, err
	}
	return o, nil
}

func (s *sqlPersistence) StoreOrder(o bucket.Order) error {
	if o == nil {
		o = bucket.Order{}
	}
	return s.put(kindState, orderKey, o)
}

// Watch polls the owner's row count and newest update time and emits an
// invalidation whenever either moves.
func (s *sqlPersistence) Watch(ctx context.Context) (<-chan Event, error) {
	last, err := s.revision(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: watch: %w", err)
	}
	events := make(chan Event, 1)
	go func() {
		defer close(events)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rev, err := s.revision(ctx)
				if err != nil {
					slog.Debug("store: poll", "err", err)
					continue
				}
				if rev == last {
					continue
				}
				last = rev
				select {
				case events <- Event{Type: EventInvalidated}:
				default:
				}
			}
		}
	}()
	return events, nil
}

func (s *sqlPersistence) revision(ctx context.Context) (string, error) {
	var count, newest int64
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*), COALESCE(MAX(updated_at), 0) FROM documents WHERE owner = ?;`), s.owner).
		Scan(&count, &newest)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d/%d", count, newest), nil
}

func sqliteDSN(path string) (string, error) {
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	if abs, err := filepath.Abs(expanded); err == nil {
		expanded = abs
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: expanded}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
