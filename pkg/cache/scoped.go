package cache

// ScopedKeyer wraps a Keyer with a prefix so multiple projects can share
// one cache backend without key collisions. The CLI scopes keys by
// workspace when a Redis backend is configured.
//
// Example usage:
//
//	// Workspace-specific keys against a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ws:myapp:")
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

// GraphKey generates a prefixed key for serialized rule graphs.
func (k *ScopedKeyer) GraphKey(buildFileHash string) string {
	return k.prefix + k.inner.GraphKey(buildFileHash)
}

// RenderKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(graphHash, opts)
}
