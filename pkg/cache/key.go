package cache

import "strings"

// Key is a strongly-typed composite cache key. Entries are always
// invalidated by the exact key, never by pattern scans.
type Key struct {
	Namespace string
	Parts     []string
}

// NewKey builds a key under a namespace from its composite parts.
func NewKey(namespace string, parts ...string) Key {
	return Key{Namespace: namespace, Parts: parts}
}

// String renders the key in the canonical "namespace:part:part" form.
// Empty parts collapse to "-" so distinct composites never collide.
func (k Key) String() string {
	if len(k.Parts) == 0 {
		return k.Namespace
	}
	rendered := make([]string, 0, len(k.Parts)+1)
	rendered = append(rendered, k.Namespace)
	for _, part := range k.Parts {
		part = strings.TrimSpace(part)
		if part == "" {
			part = "-"
		}
		rendered = append(rendered, part)
	}
	return strings.Join(rendered, ":")
}
