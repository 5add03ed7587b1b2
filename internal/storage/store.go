package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Collection names backed by the store.
const (
	Users     = "users"
	Schedules = "schedules"
)

// ErrIO marks a storage read/write/decode failure. Callers match it with errors.Is.
var ErrIO = errors.New("storage failure")

// Store persists each collection as a flat JSON array in <dir>/<name>.json,
// rewritten wholesale on every save. Ids come from a sibling <name>.seq file
// so they keep increasing after deletions. One mutex per collection
// serializes read-modify-write cycles within the process.
type Store struct {
	dir   string
	locks map[string]*sync.Mutex
}

// NewStore creates the data directory if needed and returns a store for the
// users and schedules collections.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrIO, dir, err)
	}
	return &Store{
		dir: dir,
		locks: map[string]*sync.Mutex{
			Users:     {},
			Schedules: {},
		},
	}, nil
}

// Update runs fn while holding the collection's lock. Load, Save and NextID
// calls for that collection must happen inside fn.
func (s *Store) Update(collection string, fn func() error) error {
	mu, ok := s.locks[collection]
	if !ok {
		return fmt.Errorf("%w: unknown collection %q", ErrIO, collection)
	}
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

// Load reads the collection file into out, which must be a pointer to a
// slice. A missing file leaves out as the empty slice.
func (s *Store) Load(collection string, out any) error {
	data, err := os.ReadFile(s.collectionPath(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: read %s: %v", ErrIO, collection, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrIO, collection, err)
	}
	return nil
}

// Save replaces the collection file's entire contents with records encoded
// as a JSON array.
func (s *Store) Save(collection string, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrIO, collection, err)
	}
	if err := os.WriteFile(s.collectionPath(collection), data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, collection, err)
	}
	return nil
}

// NextID increments and returns the collection's persistent sequence.
func (s *Store) NextID(collection string) (int, error) {
	path := filepath.Join(s.dir, collection+".seq")
	last := 0
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("%w: read %s sequence: %v", ErrIO, collection, err)
	}
	if err == nil {
		last, err = strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return 0, fmt.Errorf("%w: decode %s sequence: %v", ErrIO, collection, err)
		}
	}
	next := last + 1
	if err := os.WriteFile(path, []byte(strconv.Itoa(next)), 0o644); err != nil {
		return 0, fmt.Errorf("%w: write %s sequence: %v", ErrIO, collection, err)
	}
	return next, nil
}

func (s *Store) collectionPath(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}
