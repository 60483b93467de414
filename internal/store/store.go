// Package store persists named snapshots as XML documents in one directory.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/placekeeper/internal/snapshot"
)

const extension = ".xml"

// ErrNotFound is returned when a named snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Info describes a stored snapshot.
type Info struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
}

// Store reads and writes snapshots under Dir.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// ValidateName rejects names that are empty or would escape the directory.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("snapshot name is required")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	return nil
}

// Path returns the file a snapshot name maps to.
func (s *Store) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, strings.TrimSpace(name)+extension), nil
}

// Save writes snap under name, replacing any previous snapshot atomically.
func (s *Store) Save(name string, snap *snapshot.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	var buf bytes.Buffer
	if err := snapshot.Write(&buf, snap); err != nil {
		return fmt.Errorf("failed to encode snapshot %q: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", name, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot %q: %w", name, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", name, err)
	}
	return nil
}

// Load reads the snapshot stored under name. A missing snapshot returns an
// error wrapping ErrNotFound.
func (s *Store) Load(name string) (*snapshot.Snapshot, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a snapshot document from an arbitrary path.
func LoadFile(path string) (*snapshot.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	defer f.Close()

	snap, err := snapshot.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

// Delete removes the snapshot stored under name.
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete snapshot %q: %w", name, err)
	}
	return nil
}

// List returns stored snapshots sorted by name. A missing directory yields an
// empty list.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var out []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		file := entry.Name()
		if strings.HasPrefix(file, ".") || !strings.HasSuffix(file, extension) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:    strings.TrimSuffix(file, extension),
			Path:    filepath.Join(s.Dir, file),
			ModTime: fi.ModTime(),
			Size:    fi.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
