package cache

// ScopedKeyer wraps a Keyer with a prefix so several datasets or server
// instances can share one backend without colliding.
//
// Example usage:
//
//	// Keys for one served dataset
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ghgmap:emissions:")
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

func (k *ScopedKeyer) TreeKey(inputHash string) string {
	return k.prefix + k.inner.TreeKey(inputHash)
}

func (k *ScopedKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(treeHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

func (k *ScopedKeyer) ViewKey(id string) string {
	return k.prefix + k.inner.ViewKey(id)
}
