// Package store persists the image state collection as a keyed JSON file.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

// FileStore keeps image states in a single JSON document keyed by
// (imagePath, tag). All access is serialized behind one mutex: the engine's
// read-modify-write pattern is only safe with a single writer.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// stateFile is the on-disk document.
type stateFile struct {
	States map[string]types.ImageState `json:"states"`
}

// NewFileStore creates a store backed by the given path. The file is created
// lazily on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the whole collection. A missing file is an empty collection.
func (f *FileStore) Load() ([]types.ImageState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	return sortedStates(doc.States), nil
}

// Save replaces the whole collection.
func (f *FileStore) Save(states []types.ImageState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := stateFile{States: make(map[string]types.ImageState, len(states))}
	for _, s := range states {
		doc.States[s.Key()] = s
	}
	return f.write(doc)
}

// Get returns the state for one (image, tag) pair.
func (f *FileStore) Get(image, tag string) (types.ImageState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return types.ImageState{}, false, err
	}
	s, ok := doc.States[types.StateKey(image, tag)]
	return s, ok, nil
}

// Upsert inserts or replaces a single row.
func (f *FileStore) Upsert(state types.ImageState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	if doc.States == nil {
		doc.States = make(map[string]types.ImageState)
	}
	doc.States[state.Key()] = state
	return f.write(doc)
}

// Remove deletes a single row. Removing an absent row is not an error.
func (f *FileStore) Remove(image, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	delete(doc.States, types.StateKey(image, tag))
	return f.write(doc)
}

func (f *FileStore) read() (stateFile, error) {
	var doc stateFile
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return stateFile{States: map[string]types.ImageState{}}, nil
		}
		return doc, errors.Wrapf("store.read", err, "reading state file %s", f.path)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, errors.Wrapf("store.read", err, "parsing state file %s", f.path)
	}
	if doc.States == nil {
		doc.States = map[string]types.ImageState{}
	}
	return doc, nil
}

// write persists via temp file plus rename so a crash never leaves a
// half-written document.
func (f *FileStore) write(doc stateFile) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap("store.write", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.Wrapf("store.write", err, "creating state directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return errors.Wrap("store.write", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap("store.write", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap("store.write", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf("store.write", err, "replacing state file %s", f.path)
	}
	return nil
}

func sortedStates(m map[string]types.ImageState) []types.ImageState {
	states := make([]types.ImageState, 0, len(m))
	for _, s := range m {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].Key() < states[j].Key()
	})
	return states
}
