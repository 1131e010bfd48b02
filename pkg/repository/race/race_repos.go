// Package race provides the JSON file backed store for race records.
package race

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/mpapenbr/racedb/log"
	"github.com/mpapenbr/racedb/pkg/model"
)

// DefaultFilename is used below the users home directory if no path is given.
const DefaultFilename = ".race_db.json"

var (
	ErrInvalidDocument = errors.New("invalid race document")
	ErrInvalidQuery    = errors.New("invalid query")
	ErrReadOnly        = errors.New("store is read-only")
	ErrSameFile        = errors.New("destination is the data file")
)

// Store keeps all race records of a single data file in memory.
// Every mutation is written back to the file before the call returns.
// A Store is not safe for concurrent use.
type Store struct {
	path     string
	fs       afero.Fs
	log      *log.Logger
	readOnly bool
	races    []model.Record
}

type Option func(s *Store)

func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithReadOnly opens the store without ever writing to disk. A missing or
// corrupted file is reported as error and all mutations fail with ErrReadOnly.
func WithReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultFilename), nil
}

// New loads the store from path. A missing file is created with an empty
// race list. A file which is not valid JSON is moved to <path>.old and
// replaced by an empty store.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, fmt.Errorf("resolve default path: %w", err)
		}
	}
	s := &Store{
		path: path,
		fs:   afero.NewOsFs(),
		log:  log.Default().Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// ExistingIDs returns the ids of all stored races.
func (s *Store) ExistingIDs() map[int]struct{} {
	return lo.SliceToMap(s.races, func(r model.Record) (int, struct{}) {
		id, _ := r.ID()
		return id, struct{}{}
	})
}

// allocateID returns the smallest non-negative id not in use.
func (s *Store) allocateID() int {
	ids := s.ExistingIDs()
	id := 0
	for {
		if _, ok := ids[id]; !ok {
			return id
		}
		id++
	}
}

// Add stores a copy of r under a newly allocated id and returns that id.
// An id contained in r is ignored.
func (s *Store) Add(r model.Record) (int, error) {
	id := s.allocateID()
	rec := r.Clone()
	rec[model.KeyID] = int64(id)
	rec, err := s.normalize(rec)
	if err != nil {
		return 0, err
	}
	s.races = append(s.races, rec)
	if err := s.save(); err != nil {
		s.races = s.races[:len(s.races)-1]
		return 0, err
	}
	s.log.Debug("race added", log.Int("id", id))
	return id, nil
}

// Read returns a copy of the race with the given id.
// If there is no such race an empty record is returned.
func (s *Store) Read(id int) model.Record {
	if idx := s.indexOf(id); idx >= 0 {
		return s.races[idx].Clone()
	}
	return model.Record{}
}

// Update merges all keys of patch into the race with the given id (shallow,
// non-declared keys included) and returns the updated race.
// The id itself cannot be changed.
// If there is no such race an empty record is returned and nothing is written.
func (s *Store) Update(id int, patch model.Record) (model.Record, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Record{}, nil
	}
	merged := s.races[idx].Clone()
	for k, v := range patch {
		if k == model.KeyID {
			continue
		}
		merged[k] = v
	}
	merged, err := s.normalize(merged)
	if err != nil {
		return model.Record{}, err
	}
	prev := s.races[idx]
	s.races[idx] = merged
	if err := s.save(); err != nil {
		s.races[idx] = prev
		return model.Record{}, err
	}
	s.log.Debug("race updated", log.Int("id", id), log.Strings("keys", lo.Keys(patch)))
	return merged.Clone(), nil
}

// Delete removes all races with the given ids. Unknown ids are ignored.
func (s *Store) Delete(ids ...int) error {
	toDelete := lo.SliceToMap(ids, func(id int) (int, struct{}) {
		return id, struct{}{}
	})
	prev := s.races
	s.races = lo.Reject(s.races, func(r model.Record, _ int) bool {
		id, _ := r.ID()
		_, found := toDelete[id]
		return found
	})
	if err := s.save(); err != nil {
		s.races = prev
		return err
	}
	s.log.Debug("races deleted",
		log.Ints("ids", ids),
		log.Int("removed", len(prev)-len(s.races)))
	return nil
}

// List returns copies of all races sorted by date. If search is not empty
// only races containing search (case-insensitive) in any of their values
// are returned.
func (s *Store) List(search string) []model.Record {
	needle := strings.ToLower(search)
	ret := lo.FilterMap(s.races, func(r model.Record, _ int) (model.Record, bool) {
		if needle != "" && !strings.Contains(r.SearchText(), needle) {
			return nil, false
		}
		return r.Clone(), true
	})
	sortRecords(ret)
	return ret
}

// Query evaluates a JSONPath expression against the document
// ({"races": [...]}) and returns the matched races sorted by date.
// Matches which are not race objects are dropped.
func (s *Store) Query(expr string) ([]model.Record, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	matches := lo.FilterMap(x.Get(s.document()), func(v any, _ int) (model.Record, bool) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		r := model.Record(m)
		if _, ok := r.ID(); !ok {
			return nil, false
		}
		return r.Clone(), true
	})
	ret := lo.UniqBy(matches, func(r model.Record) int {
		id, _ := r.ID()
		return id
	})
	sortRecords(ret)
	return ret, nil
}

// Copy duplicates the data file byte by byte. If dest is an existing
// directory the file is copied into it keeping its name.
// Copying onto the data file itself fails with ErrSameFile.
func (s *Store) Copy(dest string) (err error) {
	if isDir, _ := afero.IsDir(s.fs, dest); isDir {
		dest = filepath.Join(dest, filepath.Base(s.path))
	}
	if s.isDataFile(dest) {
		return fmt.Errorf("copy: %w: %s", ErrSameFile, dest)
	}
	src, err := s.fs.Open(s.path)
	if err != nil {
		return fmt.Errorf("copy: open source: %w", err)
	}
	defer src.Close()

	dst, err := s.fs.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("copy: open destination: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("copy: close destination: %w", closeErr)
		}
	}()
	n, err := io.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	s.log.Debug("data file copied",
		log.String("from", s.path),
		log.String("to", dest),
		log.Int64("bytes", n))
	return nil
}

// isDataFile reports whether path names the backing file, either by path or
// (on the OS filesystem) as the same file behind a link.
func (s *Store) isDataFile(path string) bool {
	a, errA := filepath.Abs(path)
	b, errB := filepath.Abs(s.path)
	if errA == nil && errB == nil && a == b {
		return true
	}
	srcInfo, err := s.fs.Stat(s.path)
	if err != nil {
		return false
	}
	dstInfo, err := s.fs.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(srcInfo, dstInfo)
}

func (s *Store) indexOf(id int) int {
	_, idx, found := lo.FindIndexOf(s.races, func(r model.Record) bool {
		rid, ok := r.ID()
		return ok && rid == id
	})
	if !found {
		return -1
	}
	return idx
}

// sortRecords orders by date (missing dates first), then by id.
func sortRecords(races []model.Record) {
	slices.SortStableFunc(races, func(a, b model.Record) int {
		if c := cmp.Compare(a.String(model.KeyDate), b.String(model.KeyDate)); c != 0 {
			return c
		}
		idA, _ := a.ID()
		idB, _ := b.ID()
		return cmp.Compare(idA, idB)
	})
}
