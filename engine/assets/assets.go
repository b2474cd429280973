package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/h2non/filetype"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
)

// AssetInfo describes one data file found under the assets directory.
type AssetInfo struct {
	// Path is relative to the assets directory, <type>/<uuid>/<file>.
	Path      string
	Type      definition.AssetType
	UUID      string
	File      string
	MIME      string
	Size      int64
	IndexedAt time.Time
}

type AssetOp int

const (
	AssetIndexed AssetOp = iota
	AssetRemoved
)

func (op AssetOp) String() string {
	if op == AssetRemoved {
		return "removed"
	}
	return "indexed"
}

type AssetEvent struct {
	Op   AssetOp
	Info AssetInfo
}

// assetIndex keeps track of the asset data files of a project and, once
// watching, keeps itself current from filesystem notifications.
type assetIndex struct {
	dir    string
	assets map[string]AssetInfo

	mutex sync.RWMutex

	fsnotify *fsnotify.Watcher
	isClosed bool
}

func newAssetIndex(dir string) *assetIndex {
	return &assetIndex{
		dir:    dir,
		assets: make(map[string]AssetInfo),
	}
}

// Lookup returns the entry for a path relative to the assets directory.
func (ai *assetIndex) Lookup(path string) (AssetInfo, bool) {
	ai.mutex.RLock()
	defer ai.mutex.RUnlock()
	info, ok := ai.assets[filepath.ToSlash(path)]
	return info, ok
}

// Entries returns the index sorted by path.
func (ai *assetIndex) Entries() []AssetInfo {
	ai.mutex.RLock()
	out := make([]AssetInfo, 0, len(ai.assets))
	for _, info := range ai.assets {
		out = append(out, info)
	}
	ai.mutex.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// EntriesFor returns the indexed files belonging to the asset with uuid.
func (ai *assetIndex) EntriesFor(uuid string) []AssetInfo {
	var out []AssetInfo
	for _, info := range ai.Entries() {
		if info.UUID == uuid {
			out = append(out, info)
		}
	}
	return out
}

// Rescan rebuilds the index from disk.
func (ai *assetIndex) Rescan() error {
	ai.mutex.Lock()
	clear(ai.assets)
	ai.mutex.Unlock()
	if _, err := os.Stat(ai.dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return ai.walk(ai.dir, false)
}

// Watch indexes the assets directory and keeps the index current until ctx
// is cancelled. Every change is also published on the returned channel, which
// the caller must drain.
func (ai *assetIndex) Watch(ctx context.Context) (<-chan AssetEvent, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(ai.dir, 0o755); err != nil {
		fsWatch.Close()
		return nil, err
	}

	ai.mutex.Lock()
	ai.fsnotify = fsWatch
	ai.isClosed = false
	ai.mutex.Unlock()

	if err := ai.walk(ai.dir, true); err != nil {
		fsWatch.Close()
		return nil, err
	}

	events := make(chan AssetEvent, 64)
	go ai.start(ctx, events)
	return events, nil
}

func (ai *assetIndex) start(ctx context.Context, events chan<- AssetEvent) {
	defer func() {
		ai.mutex.Lock()
		ai.isClosed = true
		ai.fsnotify.Close()
		ai.mutex.Unlock()
		close(events)
	}()

	publish := func(ev AssetEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case e, ok := <-ai.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					// files may land before the watch is added, the walk picks them up
					if err := ai.walk(e.Name, true); err != nil {
						core.LogWarn("could not watch %s: %s", e.Name, err)
					}
					for _, info := range ai.entriesUnder(e.Name) {
						if !publish(AssetEvent{Op: AssetIndexed, Info: info}) {
							return
						}
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if info, ok := ai.handleFileEvent(e.Name); ok {
					if !publish(AssetEvent{Op: AssetIndexed, Info: info}) {
						return
					}
				}
			}
			// a removed path can no longer be stat'ed, so drop it from the
			// index and from the watch list whatever it was
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				for _, info := range ai.removeAsset(e.Name) {
					if !publish(AssetEvent{Op: AssetRemoved, Info: info}) {
						return
					}
				}
				_ = ai.fsnotify.Remove(e.Name)
			}

		case err, ok := <-ai.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-ctx.Done():
			return
		}
	}
}

// walk indexes every file under path, adding directories to the watch list
// when watch is set.
func (ai *assetIndex) walk(path string, watch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if !watch {
				return nil
			}
			ai.mutex.RLock()
			closed := ai.isClosed
			ai.mutex.RUnlock()
			if closed {
				return errors.New("asset watcher already closed")
			}
			return ai.fsnotify.Add(walkPath)
		}
		ai.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent indexes the file at path when it sits where asset data lives.
func (ai *assetIndex) handleFileEvent(path string) (AssetInfo, bool) {
	info, ok := ai.classify(path)
	if !ok {
		return AssetInfo{}, false
	}
	ai.mutex.Lock()
	ai.assets[info.Path] = info
	ai.mutex.Unlock()
	return info, true
}

func (ai *assetIndex) classify(path string) (AssetInfo, bool) {
	rel, err := filepath.Rel(ai.dir, path)
	if err != nil {
		return AssetInfo{}, false
	}
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	if len(parts) != 3 {
		return AssetInfo{}, false
	}
	typ := definition.ParseAssetType(parts[0])
	if !typ.Valid() {
		return AssetInfo{}, false
	}
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return AssetInfo{}, false
	}

	info := AssetInfo{
		Path:      rel,
		Type:      typ,
		UUID:      parts[1],
		File:      parts[2],
		Size:      fi.Size(),
		IndexedAt: time.Now(),
	}
	if kind, err := filetype.MatchFile(path); err == nil && kind != filetype.Unknown {
		info.MIME = kind.MIME.Value
	}
	return info, true
}

// removeAsset drops path, and everything below it when it was a directory.
func (ai *assetIndex) removeAsset(path string) []AssetInfo {
	rel, err := filepath.Rel(ai.dir, path)
	if err != nil {
		return nil
	}
	rel = filepath.ToSlash(rel)

	ai.mutex.Lock()
	defer ai.mutex.Unlock()
	var removed []AssetInfo
	for key, info := range ai.assets {
		if key == rel || strings.HasPrefix(key, rel+"/") {
			removed = append(removed, info)
			delete(ai.assets, key)
		}
	}
	return removed
}

func (ai *assetIndex) entriesUnder(path string) []AssetInfo {
	rel, err := filepath.Rel(ai.dir, path)
	if err != nil {
		return nil
	}
	prefix := filepath.ToSlash(rel) + "/"
	var out []AssetInfo
	for _, info := range ai.Entries() {
		if strings.HasPrefix(info.Path, prefix) {
			out = append(out, info)
		}
	}
	return out
}
