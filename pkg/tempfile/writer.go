package tempfile

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// ErrHandleOpen is returned by Remove while the owning handle has not been
// released. It models the file lock that platforms with mandatory locking
// raise as an I/O error, in an explicit and test-observable form.
var ErrHandleOpen = errors.New("file handle is still open")

// Writer exclusively owns one temporary text file. The handle must be
// released before the file can be deleted; a collector-invoked notice fires
// at some unspecified later time if the owner forgets, but it never touches
// the handle itself.
type Writer struct {
	path    string
	file    *os.File
	open    atomic.Bool
	cleanup runtime.Cleanup
}

// Create opens the file in create mode and arms the reclaim notice.
func Create(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{path: path, file: file}
	w.open.Store(true)
	w.cleanup = runtime.AddCleanup(w, notifyReclaimed, path)

	log.Info().Msgf("[tempfile] created %q", path)
	return w, nil
}

// notifyReclaimed runs when the collector finds an unreleased writer
// unreachable. Cleanup order across objects is unspecified, so it only
// prints the notice.
func notifyReclaimed(path string) {
	log.Info().Msgf("[tempfile] reclaim notice for %q (handle was never explicitly released)", path)
}

func (w *Writer) WriteString(s string) error {
	if !w.open.Load() {
		return os.ErrClosed
	}
	_, err := w.file.WriteString(s)
	return err
}

// Release closes the handle and cancels the pending reclaim notice. Safe to
// call repeatedly; only the first call does work.
func (w *Writer) Release() bool {
	if !w.open.CompareAndSwap(true, false) {
		return false
	}
	w.cleanup.Stop()
	if err := w.file.Close(); err != nil {
		log.Warn().Msgf("[tempfile] closing %q: %v", w.path, err)
	}
	log.Info().Msgf("[tempfile] released handle %q", w.path)
	return true
}

func (w *Writer) Released() bool {
	return !w.open.Load()
}

// Remove deletes the file. While the owning handle is still open it fails
// with ErrHandleOpen wrapped in a *fs.PathError, the one anticipated error
// of the whole demo.
func (w *Writer) Remove() error {
	if w.open.Load() {
		return &fs.PathError{Op: "remove", Path: w.path, Err: ErrHandleOpen}
	}
	return os.Remove(w.path)
}

func (w *Writer) Path() string { return w.path }
