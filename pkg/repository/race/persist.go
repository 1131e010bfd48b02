package race

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/mpapenbr/racedb/log"
	"github.com/mpapenbr/racedb/pkg/model"
)

const (
	racesKey         = "races"
	quarantineSuffix = ".old"
)

var writeOptions = func() oj.Options {
	o := oj.DefaultOptions
	o.Sort = true
	o.Indent = 0
	return o
}()

func (s *Store) load() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) && !s.readOnly {
		s.log.Info("data file not found, creating empty one", log.String("file", s.path))
		s.races = []model.Record{}
		return s.save()
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s.quarantine(errors.New("empty file"))
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return s.quarantine(err)
	}
	races, err := decodeDocument(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}
	s.races = races
	s.log.Debug("data file loaded",
		log.String("file", s.path),
		log.Int("races", len(races)))
	return nil
}

// quarantine moves an unparsable data file to <path>.old (replacing an
// existing one) and starts with an empty store.
func (s *Store) quarantine(cause error) error {
	if s.readOnly {
		return fmt.Errorf("%w: %s is corrupted: %w", ErrReadOnly, s.path, cause)
	}
	old := s.path + quarantineSuffix
	if err := s.fs.Remove(old); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", old, err)
	}
	if err := s.fs.Rename(s.path, old); err != nil {
		return fmt.Errorf("move corrupted file to %s: %w", old, err)
	}
	s.log.Warn("json was corrupted! Moved remains of old database and started a new one",
		log.String("file", s.path),
		log.String("quarantine", old),
		log.ErrorField(cause))
	s.races = []model.Record{}
	return s.save()
}

//nolint:cyclop // validation steps
func decodeDocument(doc any) ([]model.Record, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T, not an object", ErrInvalidDocument, doc)
	}
	raw, ok := root[racesKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing key %q", ErrInvalidDocument, racesKey)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, not an array", ErrInvalidDocument, racesKey, raw)
	}
	seen := make(map[int]struct{}, len(list))
	ret := make([]model.Record, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: race #%d is %T, not an object", ErrInvalidDocument, i, item)
		}
		r := model.Record(m)
		id, ok := r.ID()
		if !ok || id < 0 {
			return nil, fmt.Errorf("%w: race #%d has invalid id %v", ErrInvalidDocument, i, m[model.KeyID])
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidDocument, id)
		}
		seen[id] = struct{}{}
		r.RestoreFloats()
		ret = append(ret, r)
	}
	return ret, nil
}

func (s *Store) document() map[string]any {
	return map[string]any{
		racesKey: lo.Map(s.races, func(r model.Record, _ int) any {
			return map[string]any(r)
		}),
	}
}

func (s *Store) save() error {
	if s.readOnly {
		return ErrReadOnly
	}
	data, err := oj.Marshal(s.document(), &writeOptions)
	if err != nil {
		return fmt.Errorf("encode races: %w", err)
	}
	if err := writeAtomic(s.fs, s.path, data); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// normalize passes r through the JSON codec so the in-memory record looks
// exactly like the one read back from disk (e.g. numbers become int64/float64,
// declared float fields stay float64).
func (s *Store) normalize(r model.Record) (model.Record, error) {
	data, err := oj.Marshal(map[string]any(r), &writeOptions)
	if err != nil {
		return nil, fmt.Errorf("encode race: %w", err)
	}
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decode race: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: race encodes to %T", ErrInvalidDocument, v)
	}
	r = model.Record(m)
	r.RestoreFloats()
	return r, nil
}

// writeAtomic writes data to a temp file next to path and renames it to path.
func writeAtomic(fsys afero.Fs, path string, data []byte) (err error) {
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fsys.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return fsys.Rename(tmp.Name(), path)
}
