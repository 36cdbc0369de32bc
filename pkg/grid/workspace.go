package grid

import (
	"errors"
	"fmt"
	"slices"
)

// FieldStore is the part of a mesh a [Workspace] needs to save and restore
// fields. [*Raster] implements it.
type FieldStore interface {
	HasField(name string) bool
	CloneField(name string) (Field, error)
	RestoreField(name string, f Field) error
	DeleteField(name string) error
}

// Workspace is a scoped claim on a set of fields of a FieldStore.
//
// Acquire records which fields exist and copies their values. Release puts
// every claimed field back the way it was: fields created after Acquire are
// deleted and pre-existing fields get their saved values. Release is meant
// to be deferred so restoration happens on every exit path.
type Workspace struct {
	store     FieldStore
	saved     map[string]Field
	scratch   []string
	committed map[string]bool
	released  bool
}

// Acquire claims names on store. Duplicate names are ignored.
func Acquire(store FieldStore, names ...string) (*Workspace, error) {
	w := &Workspace{
		store:     store,
		saved:     make(map[string]Field),
		committed: make(map[string]bool),
	}
	for _, name := range names {
		if _, ok := w.saved[name]; ok || slices.Contains(w.scratch, name) {
			continue
		}
		if !store.HasField(name) {
			w.scratch = append(w.scratch, name)
			continue
		}
		f, err := store.CloneField(name)
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", name, err)
		}
		w.saved[name] = f
	}
	return w, nil
}

// Scratch returns the claimed names that did not exist at Acquire time.
func (w *Workspace) Scratch() []string { return slices.Clone(w.scratch) }

// Preexisting reports whether name existed when the workspace was acquired.
func (w *Workspace) Preexisting(name string) bool {
	_, ok := w.saved[name]
	return ok
}

// Commit keeps the current value of name when the workspace is released,
// whether or not it existed at Acquire time.
func (w *Workspace) Commit(name string) { w.committed[name] = true }

// Release deletes scratch fields and restores saved ones, skipping committed
// names. It is safe to call more than once; only the first call acts.
func (w *Workspace) Release() error {
	if w.released {
		return nil
	}
	w.released = true

	var errs []error
	for _, name := range w.scratch {
		if w.committed[name] || !w.store.HasField(name) {
			continue
		}
		if err := w.store.DeleteField(name); err != nil {
			errs = append(errs, err)
		}
	}
	for name, f := range w.saved {
		if w.committed[name] {
			continue
		}
		if err := w.store.RestoreField(name, f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
