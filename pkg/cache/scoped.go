package cache

// ScopedKeyer wraps a Keyer with a prefix so that several workspaces or
// users can share one Redis or MongoDB backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ci:")
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

// GraphKey generates a prefixed key for snapshot caching.
func (k *ScopedKeyer) GraphKey(rootPath string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(rootPath, opts)
}
