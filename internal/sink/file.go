package sink

import (
	"fmt"
	"os"
	"path/filepath"
)

// atomicFile is a temp file in the destination directory that is renamed over path on commit.
type atomicFile struct {
	path string
	f    *os.File
	done bool
}

func createAtomic(path string) (*atomicFile, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &atomicFile{path: path, f: f}, nil
}

func (a *atomicFile) Write(p []byte) (int, error) {
	return a.f.Write(p)
}

func (a *atomicFile) commit() error {
	if a.done {
		return ErrClosed
	}
	a.done = true

	if err := a.f.Sync(); err != nil {
		a.discard()
		return fmt.Errorf("sync %s: %w", a.path, err)
	}
	if err := a.f.Close(); err != nil {
		os.Remove(a.f.Name())
		return fmt.Errorf("close %s: %w", a.path, err)
	}
	if err := os.Chmod(a.f.Name(), 0o644); err != nil {
		os.Remove(a.f.Name())
		return fmt.Errorf("chmod %s: %w", a.path, err)
	}
	if err := os.Rename(a.f.Name(), a.path); err != nil {
		os.Remove(a.f.Name())
		return fmt.Errorf("rename %s: %w", a.path, err)
	}
	return nil
}

func (a *atomicFile) abort() error {
	if a.done {
		return nil
	}
	a.done = true
	return a.discard()
}

func (a *atomicFile) discard() error {
	a.f.Close()
	if err := os.Remove(a.f.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove temp file for %s: %w", a.path, err)
	}
	return nil
}
