package story

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrInvalidPath is returned for paths that are absolute, use
// backslashes or climb out of the story root.
var ErrInvalidPath = errors.New("story: invalid path")

// ErrReadOnly is returned when writing to a story that is not on disk.
var ErrReadOnly = errors.New("story: files are read-only")

// VFS gives access to the files of a story. Paths are forward-slash
// separated and relative to the story root.
type VFS struct {
	fsys fs.FS
	root string // empty for read-only stories
}

// NewVFS serves the story files below root on disk.
func NewVFS(root string) *VFS {
	return &VFS{fsys: os.DirFS(root), root: root}
}

// NewReadOnlyVFS serves story files from fsys, typically an embedded
// file system.
func NewReadOnlyVFS(fsys fs.FS) *VFS {
	return &VFS{fsys: fsys}
}

// Root returns the directory on disk, or "" when read-only.
func (v *VFS) Root() string { return v.root }

func validPath(rel string) (string, error) {
	if rel == "" || strings.Contains(rel, `\`) || strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	clean := path.Clean(rel)
	if !fs.ValidPath(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return clean, nil
}

// LoadBytes returns the contents of rel.
func (v *VFS) LoadBytes(rel string) ([]byte, error) {
	p, err := validPath(rel)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(v.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", rel, err)
	}
	return data, nil
}

// LoadText returns the contents of rel as text with Windows line endings
// normalized.
func (v *VFS) LoadText(rel string) (string, error) {
	data, err := v.LoadBytes(rel)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// WriteText writes s to rel, creating directories as needed.
func (v *VFS) WriteText(rel, s string) error {
	p, err := v.diskPath(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := os.WriteFile(p, []byte(s), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

// Delete removes rel.
func (v *VFS) Delete(rel string) error {
	p, err := v.diskPath(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("deleting %s: %w", rel, err)
	}
	return nil
}

// Mtime returns the modification time of rel.
func (v *VFS) Mtime(rel string) (time.Time, error) {
	p, err := validPath(rel)
	if err != nil {
		return time.Time{}, err
	}
	info, err := fs.Stat(v.fsys, p)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", rel, err)
	}
	return info.ModTime(), nil
}

// Glob returns the sorted paths in dir whose base name matches pattern.
func (v *VFS) Glob(dir, pattern string) ([]string, error) {
	d, err := validPath(dir)
	if err != nil {
		return nil, err
	}
	matches, err := fs.Glob(v.fsys, path.Join(d, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (v *VFS) diskPath(rel string) (string, error) {
	p, err := validPath(rel)
	if err != nil {
		return "", err
	}
	if v.root == "" {
		return "", ErrReadOnly
	}
	return filepath.Join(v.root, filepath.FromSlash(p)), nil
}
