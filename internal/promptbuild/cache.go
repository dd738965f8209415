package promptbuild

// renderCache memoizes rendered text per encoding. A single dirty flag
// covers every encoding: sections are shared, so any mutation drops all
// entries at once.
type renderCache struct {
	entries map[Encoding]string
	dirty   bool
}

// CacheStats describes the render cache for debugging.
type CacheStats struct {
	Dirty     bool       `json:"dirty" yaml:"dirty"`
	Encodings []Encoding `json:"encodings" yaml:"encodings"`
	Size      int        `json:"size" yaml:"size"`
}

func newRenderCache() renderCache {
	return renderCache{entries: make(map[Encoding]string), dirty: true}
}

func (c *renderCache) invalidate() {
	clear(c.entries)
	c.dirty = true
}

func (c *renderCache) get(enc Encoding) (string, bool) {
	text, ok := c.entries[enc]
	return text, ok
}

func (c *renderCache) put(enc Encoding, text string) {
	c.entries[enc] = text
	c.dirty = false
}

func (c *renderCache) stats() CacheStats {
	s := CacheStats{Dirty: c.dirty}
	for _, enc := range Encodings {
		if text, ok := c.entries[enc]; ok {
			s.Encodings = append(s.Encodings, enc)
			s.Size += len(text)
		}
	}
	return s
}
