package cache

// ScopedKeyer wraps a Keyer with a prefix so multiple documents or users
// can share one cache backend without key collisions.
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

// ExportKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ExportKey(fingerprint string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(fingerprint, opts)
}
