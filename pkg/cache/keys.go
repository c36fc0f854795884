package cache

// Keyer builds cache keys.
type Keyer interface {
	// SuggestionKey identifies the text a model returned for a prompt.
	SuggestionKey(model, prompt string) string
	// ResultKey identifies a stored analysis result.
	ResultKey(id string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SuggestionKey(model, prompt string) string {
	return hashKey("suggestion", model, prompt)
}

func (DefaultKeyer) ResultKey(id string) string {
	return "result:" + id
}

// ScopedKeyer prefixes every key of an inner keyer, so several deployments
// can share one Redis database:
//
//	k := cache.NewScopedKeyer(nil, "critpath:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer if inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SuggestionKey(model, prompt string) string {
	return k.prefix + k.inner.SuggestionKey(model, prompt)
}

func (k *ScopedKeyer) ResultKey(id string) string {
	return k.prefix + k.inner.ResultKey(id)
}
