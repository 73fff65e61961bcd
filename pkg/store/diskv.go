// Package store persists task documents for a single owner, either in a local
// diskv tree or in a SQL document table, and streams change notifications.
package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/task"
)

// Backend driver names.
const (
	DriverDiskv    = "diskv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	tasksDir    = "tasks"
	settingsKey = "settings"
	orderKey    = "order"
)

// OpenDiskv creates a Persistence rooted at basePath. Each owner gets its own
// directory holding one file per task plus the settings and order documents.
func OpenDiskv(basePath, owner string) (Persistence, error) {
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	expanded, err := homedir.Expand(basePath)
	if err != nil {
		return nil, fmt.Errorf("store: expand base path: %w", err)
	}
	ownerKey := encodeOwner(owner)
	if err := os.MkdirAll(filepath.Join(expanded, ownerKey, tasksDir), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          expanded,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// Other processes write the same tree, so reads always hit disk.
			CacheSizeMax: 0,
		}),
		basePath: expanded,
		owner:    ownerKey,
	}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	owner    string
}

func (p *persistence) taskKey(id string) string {
	return strings.Join([]string{p.owner, tasksDir, id}, "/")
}

func (p *persistence) docKey(name string) string {
	return p.owner + "/" + name
}

func (p *persistence) read(key string) (*task.Task, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return nil, err
	}
	t := &task.Task{}
	if err := json.Unmarshal(val, t); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = keyToPathTransform(key).FileName
	}
	return t, nil
}

func (p *persistence) ListAll(ctx context.Context) []*task.Task {
	all := make([]*task.Task, 0)
	prefix := p.taskKey("")
	for key := range p.d.KeysPrefix(prefix, ctx.Done()) {
		t, err := p.read(key)
		if err != nil {
			slog.Warn("store: skipping unreadable task", "key", key, "err", err)
			continue
		}
		all = append(all, t)
	}
	sortTasks(all)
	return all
}

// checkID rejects ids that can not name a task file.
func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return nil
}

func (p *persistence) Get(_ context.Context, id string) (*task.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	t, err := p.read(p.taskKey(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return t, err
}

func (p *persistence) Store(t *task.Task) error {
	if t == nil {
		return errors.New("store: task required")
	}
	if err := checkID(t.ID); err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return p.d.Write(p.taskKey(t.ID), data)
}

func (p *persistence) Delete(t *task.Task) error {
	if t == nil {
		return ErrNotFound
	}
	if err := checkID(t.ID); err != nil {
		return err
	}
	err := p.d.Erase(p.taskKey(t.ID))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (p *persistence) Settings() (Settings, error) {
	s := DefaultSettings()
	if err := p.readDoc(settingsKey, &s); err != nil {
		return DefaultSettings(), err
	}
	return normalizeSettings(s), nil
}

func (p *persistence) StoreSettings(s Settings) error {
	return p.writeDoc(settingsKey, normalizeSettings(s))
}

func (p *persistence) Order() (bucket.Order, error) {
	o := bucket.Order{}
	if err := p.readDoc(orderKey, &o); err != nil {
		return bucket.Order{}, err
	}
	return o, nil
}

func (p *persistence) StoreOrder(o bucket.Order) error {
	if o == nil {
		o = bucket.Order{}
	}
	return p.writeDoc(orderKey, o)
}

func (p *persistence) readDoc(name string, v any) error {
	data, err := p.d.Read(p.docKey(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (p *persistence) writeDoc(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.d.Write(p.docKey(name), data)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), "/")
}

func encodeOwner(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
