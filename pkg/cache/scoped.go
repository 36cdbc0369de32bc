package cache

// ScopedKeyer wraps a Keyer with a prefix so that separate namespaces can
// share one cache directory.
//
// Example usage:
//
//	// Results from different releases never mix
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FillKey generates a prefixed fill result key.
func (k *ScopedKeyer) FillKey(demHash string, opts FillKeyOpts) string {
	return k.prefix + k.inner.FillKey(demHash, opts)
}

// PitsKey generates a prefixed depression table key.
func (k *ScopedKeyer) PitsKey(demHash string, field string) string {
	return k.prefix + k.inner.PitsKey(demHash, field)
}
