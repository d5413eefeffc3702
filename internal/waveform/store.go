package waveform

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/golang/groupcache"
	"github.com/pkg/errors"
)

var (
	ErrNotFound    = errors.New("waveform file not found")
	ErrInvalidName = errors.New("invalid waveform file name")
)

var fileName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*\.(mseed|miniseed|ms)$`)

// Store provides a RAM cache for miniSEED files that are stored on disk.
type Store struct {
	dir   string
	files *groupcache.Group
}

// NewStore returns a Store ready for use.  name must be unique within the process.
// cacheBytes is the max size of the RAM cache for file contents.
func NewStore(name, dir string, cacheBytes int64) *Store {
	s := &Store{dir: dir}
	s.files = groupcache.NewGroup(name, cacheBytes, groupcache.GetterFunc(s.fileGetter))
	return s
}

// ValidName returns true if file is a bare miniSEED file name.
func ValidName(file string) bool {
	return fileName.MatchString(file)
}

// Trace reads file through the cache and decodes it.
func (s *Store) Trace(ctx context.Context, file string) (Trace, error) {
	if !ValidName(file) {
		return Trace{}, errors.Wrap(ErrInvalidName, file)
	}

	var b []byte

	err := s.files.Get(ctx, file, groupcache.AllocatingByteSliceSink(&b))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Trace{}, errors.Wrap(ErrNotFound, file)
	case err != nil:
		return Trace{}, err
	}

	t, err := ReadMiniSEED(bytes.NewReader(b))
	if err != nil {
		return Trace{}, errors.Wrap(err, file)
	}

	return t, nil
}

// Files lists the miniSEED files available in the store.
func (s *Store) Files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	files := []string{}

	for _, e := range entries {
		if e.Type().IsRegular() && ValidName(e.Name()) {
			files = append(files, e.Name())
		}
	}

	sort.Strings(files)

	return files, nil
}

func (s *Store) fileGetter(ctx context.Context, key string, dest groupcache.Sink) error {
	b, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return err
	}

	return dest.SetBytes(b)
}
