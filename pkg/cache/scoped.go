package cache

// ScopedKeyer wraps a Keyer with a prefix so several documentation projects
// can share one cache backend without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ehive-docs:")
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

// ImageKey generates a prefixed key for image caching.
func (k *ScopedKeyer) ImageKey(dot string, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(dot, opts)
}
