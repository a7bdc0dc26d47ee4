package fsops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FS is an abstract filesystem used across the app and tests.
type FS interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Stat(name string) (fs.FileInfo, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
	MkdirAll(path string, perm os.FileMode) error

	Join(elem ...string) string
	Base(name string) string
	Dir(name string) string
	Ext(name string) string
	Clean(name string) string
}

// ---------- OS-backed implementation ----------

type OS struct{}

func NewOS() OS { return OS{} }

func (OS) ReadFile(name string) ([]byte, error) { return os.ReadFile(filepath.Clean(name)) }
func (OS) WriteFile(name string, b []byte, p os.FileMode) error {
	return os.WriteFile(filepath.Clean(name), b, p)
}
func (OS) Stat(name string) (fs.FileInfo, error)     { return os.Stat(filepath.Clean(name)) }
func (OS) Rename(a, b string) error                  { return os.Rename(a, b) }
func (OS) Remove(name string) error                  { return os.Remove(filepath.Clean(name)) }
func (OS) MkdirAll(path string, p os.FileMode) error { return os.MkdirAll(filepath.Clean(path), p) }
func (OS) Join(elem ...string) string                { return filepath.Join(elem...) }
func (OS) Base(name string) string                   { return filepath.Base(name) }
func (OS) Dir(name string) string                    { return filepath.Dir(name) }
func (OS) Ext(name string) string                    { return filepath.Ext(name) }
func (OS) Clean(name string) string                  { return filepath.Clean(name) }

// ---------- In-memory implementation (for tests) ----------

type Mem struct{ Fs afero.Fs }

func NewMem() Mem { return Mem{Fs: afero.NewMemMapFs()} }

func (m Mem) ReadFile(name string) ([]byte, error) { return afero.ReadFile(m.Fs, filepath.Clean(name)) }
func (m Mem) WriteFile(name string, b []byte, p os.FileMode) error {
	return afero.WriteFile(m.Fs, filepath.Clean(name), b, p)
}
func (m Mem) Stat(name string) (fs.FileInfo, error) { return m.Fs.Stat(filepath.Clean(name)) }
func (m Mem) Rename(a, b string) error              { return m.Fs.Rename(a, b) }
func (m Mem) Remove(name string) error              { return m.Fs.Remove(filepath.Clean(name)) }
func (m Mem) MkdirAll(path string, p os.FileMode) error {
	return m.Fs.MkdirAll(filepath.Clean(path), p)
}
func (m Mem) Join(elem ...string) string { return filepath.Join(elem...) }
func (m Mem) Base(name string) string    { return filepath.Base(name) }
func (m Mem) Dir(name string) string     { return filepath.Dir(name) }
func (m Mem) Ext(name string) string     { return filepath.Ext(name) }
func (m Mem) Clean(name string) string   { return filepath.Clean(name) }

// WriteFileAtomic writes data to a sibling temp file and renames it over name,
// so a failed write never leaves a partially written artifact behind.
func WriteFileAtomic(fileSystem FS, name string, data []byte, perm os.FileMode) error {
	tempName := name + ".tmp"
	if err := fileSystem.WriteFile(tempName, data, perm); err != nil {
		return fmt.Errorf("write temp artifact %s: %w", tempName, err)
	}
	if err := fileSystem.Rename(tempName, name); err != nil {
		_ = fileSystem.Remove(tempName)
		return fmt.Errorf("rename artifact %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name is present on the filesystem.
func Exists(fileSystem FS, name string) bool {
	_, statErr := fileSystem.Stat(name)
	return statErr == nil
}
