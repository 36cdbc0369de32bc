package grid

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNoField is returned when a named field does not exist.
	ErrNoField = errors.New("no such field")

	// ErrFieldExists is returned when adding a field whose name is taken.
	ErrFieldExists = errors.New("field already exists")

	// ErrFieldSize is returned when a field's length differs from the node count.
	ErrFieldSize = errors.New("field length does not match node count")
)

// Field is a detached copy of a float or int field, used to snapshot and
// restore grid state. Exactly one of Floats and Ints is non-nil.
type Field struct {
	Floats []float64
	Ints   []int
}

// HasField reports whether a float or int field called name exists.
func (r *Raster) HasField(name string) bool {
	if _, ok := r.floats[name]; ok {
		return true
	}
	_, ok := r.ints[name]
	return ok
}

// FieldNames returns the names of all fields, sorted.
func (r *Raster) FieldNames() []string {
	names := make([]string, 0, len(r.floats)+len(r.ints))
	for name := range r.floats {
		names = append(names, name)
	}
	for name := range r.ints {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Floats returns the float field called name.
func (r *Raster) Floats(name string) ([]float64, error) {
	v, ok := r.floats[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoField, name)
	}
	return v, nil
}

// Ints returns the int field called name.
func (r *Raster) Ints(name string) ([]int, error) {
	v, ok := r.ints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoField, name)
	}
	return v, nil
}

// AddFloats stores values as a new float field. The raster keeps values
// itself, not a copy.
func (r *Raster) AddFloats(name string, values []float64) error {
	if r.HasField(name) {
		return fmt.Errorf("%w: %s", ErrFieldExists, name)
	}
	if len(values) != r.NodeCount() {
		return fmt.Errorf("%w: %s has %d values, want %d", ErrFieldSize, name, len(values), r.NodeCount())
	}
	r.floats[name] = values
	return nil
}

// AddInts stores values as a new int field.
func (r *Raster) AddInts(name string, values []int) error {
	if r.HasField(name) {
		return fmt.Errorf("%w: %s", ErrFieldExists, name)
	}
	if len(values) != r.NodeCount() {
		return fmt.Errorf("%w: %s has %d values, want %d", ErrFieldSize, name, len(values), r.NodeCount())
	}
	r.ints[name] = values
	return nil
}

// AddZeros creates a zero-filled float field and returns it.
func (r *Raster) AddZeros(name string) ([]float64, error) {
	v := make([]float64, r.NodeCount())
	if err := r.AddFloats(name, v); err != nil {
		return nil, err
	}
	return v, nil
}

// EnsureFloats returns the float field called name, creating it zero-filled
// if it does not exist.
func (r *Raster) EnsureFloats(name string) ([]float64, error) {
	if v, ok := r.floats[name]; ok {
		return v, nil
	}
	return r.AddZeros(name)
}

// EnsureInts returns the int field called name, creating it filled with
// fill if it does not exist.
func (r *Raster) EnsureInts(name string, fill int) ([]int, error) {
	if v, ok := r.ints[name]; ok {
		return v, nil
	}
	v := make([]int, r.NodeCount())
	for i := range v {
		v[i] = fill
	}
	if err := r.AddInts(name, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DeleteField removes the field called name.
func (r *Raster) DeleteField(name string) error {
	if _, ok := r.floats[name]; ok {
		delete(r.floats, name)
		return nil
	}
	if _, ok := r.ints[name]; ok {
		delete(r.ints, name)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNoField, name)
}

// CloneField returns a detached copy of the field called name.
func (r *Raster) CloneField(name string) (Field, error) {
	if v, ok := r.floats[name]; ok {
		return Field{Floats: slices.Clone(v)}, nil
	}
	if v, ok := r.ints[name]; ok {
		return Field{Ints: slices.Clone(v)}, nil
	}
	return Field{}, fmt.Errorf("%w: %s", ErrNoField, name)
}

// RestoreField writes f back under name. If a field of the same kind and
// length exists, values are copied into it in place so existing holders of
// the slice observe the restored values; otherwise the field is replaced.
func (r *Raster) RestoreField(name string, f Field) error {
	switch {
	case f.Floats != nil:
		if len(f.Floats) != r.NodeCount() {
			return fmt.Errorf("%w: %s", ErrFieldSize, name)
		}
		if cur, ok := r.floats[name]; ok {
			copy(cur, f.Floats)
			return nil
		}
		delete(r.ints, name)
		r.floats[name] = slices.Clone(f.Floats)
	case f.Ints != nil:
		if len(f.Ints) != r.NodeCount() {
			return fmt.Errorf("%w: %s", ErrFieldSize, name)
		}
		if cur, ok := r.ints[name]; ok {
			copy(cur, f.Ints)
			return nil
		}
		delete(r.floats, name)
		r.ints[name] = slices.Clone(f.Ints)
	default:
		return fmt.Errorf("restore %s: empty field", name)
	}
	return nil
}
