// Package manager persists named snapshots and hands back the most recently
// written one per label. Storage is one JSON file per label with a metadata
// sidecar; decoded snapshots are kept in a small LRU cache.
package manager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	apperrors "github.com/duynguyendang/codescape/pkg/common/errors"
	"github.com/duynguyendang/codescape/pkg/model"
)

// MaxCachedSnapshots bounds how many decoded snapshots stay in memory.
const MaxCachedSnapshots = 10

// SnapshotMeta identifies one stored snapshot.
type SnapshotMeta struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotStore saves and loads snapshots under a base directory. Saving the
// same label again replaces the previous snapshot; Load always returns the
// most recently written one.
type SnapshotStore struct {
	baseDir string
	cache   *lru.Cache[string, *model.Snapshot]
	mu      sync.RWMutex
}

// NewSnapshotStore creates the base directory if needed.
func NewSnapshotStore(baseDir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	cache, _ := lru.New[string, *model.Snapshot](MaxCachedSnapshots)
	return &SnapshotStore{baseDir: baseDir, cache: cache}, nil
}

// Save writes the snapshot under label and returns its metadata. The JSON
// file is written to a temp name first so a crashed save never leaves a
// half-written snapshot behind.
func (st *SnapshotStore) Save(label string, snap *model.Snapshot) (SnapshotMeta, error) {
	label = sanitizeLabel(label)
	if label == "" {
		return SnapshotMeta{}, fmt.Errorf("%w: empty snapshot label", apperrors.ErrInvalidInput)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	meta := SnapshotMeta{
		ID:        uuid.NewString(),
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}

	if err := writeJSON(st.snapshotPath(label), snap); err != nil {
		return SnapshotMeta{}, fmt.Errorf("failed to write snapshot %s: %w", label, err)
	}
	if err := writeJSON(st.metaPath(label), meta); err != nil {
		return SnapshotMeta{}, fmt.Errorf("failed to write snapshot metadata %s: %w", label, err)
	}

	st.cache.Add(label, snap)
	return meta, nil
}

// Load returns the most recently saved snapshot for label, or ErrNotFound.
func (st *SnapshotStore) Load(label string) (*model.Snapshot, SnapshotMeta, error) {
	label = sanitizeLabel(label)

	st.mu.RLock()
	cached, ok := st.cache.Get(label)
	st.mu.RUnlock()

	meta, err := st.readMeta(label)
	if err != nil {
		return nil, SnapshotMeta{}, err
	}
	if ok {
		return cached, meta, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check under the write lock.
	if cached, ok := st.cache.Get(label); ok {
		return cached, meta, nil
	}

	data, err := os.ReadFile(st.snapshotPath(label))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, SnapshotMeta{}, fmt.Errorf("%w: snapshot %s", apperrors.ErrNotFound, label)
		}
		return nil, SnapshotMeta{}, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, SnapshotMeta{}, fmt.Errorf("failed to decode snapshot %s: %w", label, err)
	}

	st.cache.Add(label, &snap)
	return &snap, meta, nil
}

// List returns metadata for every stored snapshot, newest first.
func (st *SnapshotStore) List() ([]SnapshotMeta, error) {
	entries, err := os.ReadDir(st.baseDir)
	if err != nil {
		return nil, err
	}

	var metas []SnapshotMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(st.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var meta SnapshotMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].CreatedAt.After(metas[j].CreatedAt) })
	return metas, nil
}

func (st *SnapshotStore) readMeta(label string) (SnapshotMeta, error) {
	data, err := os.ReadFile(st.metaPath(label))
	if err != nil {
		if os.IsNotExist(err) {
			return SnapshotMeta{}, fmt.Errorf("%w: snapshot %s", apperrors.ErrNotFound, label)
		}
		return SnapshotMeta{}, err
	}
	var meta SnapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return SnapshotMeta{}, fmt.Errorf("failed to decode snapshot metadata %s: %w", label, err)
	}
	return meta, nil
}

func (st *SnapshotStore) snapshotPath(label string) string {
	return filepath.Join(st.baseDir, label+".json")
}

func (st *SnapshotStore) metaPath(label string) string {
	return filepath.Join(st.baseDir, label+".meta.json")
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// sanitizeLabel keeps labels filesystem-safe.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, label)
}
