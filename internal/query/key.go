package query

import (
	"strings"
)

const storagePrefix = "query:"

var (
	globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	// partEscaper keeps the part and scope separators unambiguous.
	partEscaper = strings.NewReplacer("%", "%25", "|", "%7C", "#", "%23")
)

// Key identifies a cached resource: an ordered tuple of parts, usually the
// resource path followed by ids or parameters, plus an optional scope that
// separates the copies seen by different users.
type Key struct {
	parts []string
	scope string
}

// NewKey builds an unscoped key.
func NewKey(parts ...string) Key {
	cp := make([]string, len(parts))
	copy(cp, parts)
	return Key{parts: cp}
}

// Scoped returns a copy of k bound to scope.
func (k Key) Scoped(scope string) Key {
	return Key{parts: k.parts, scope: scope}
}

// With appends parts, returning a new key.
func (k Key) With(parts ...string) Key {
	cp := make([]string, 0, len(k.parts)+len(parts))
	cp = append(cp, k.parts...)
	cp = append(cp, parts...)
	return Key{parts: cp, scope: k.scope}
}

// Parts returns a copy of the tuple.
func (k Key) Parts() []string {
	cp := make([]string, len(k.parts))
	copy(cp, k.parts)
	return cp
}

// Scope returns the key's scope, empty when unscoped.
func (k Key) Scope() string {
	return k.scope
}

// Resource is the first part, used as a low-cardinality metrics label.
func (k Key) Resource() string {
	if len(k.parts) == 0 {
		return ""
	}
	return k.parts[0]
}

// String is the canonical identifier of the key.
func (k Key) String() string {
	joined := k.joined()
	if k.scope == "" {
		return joined
	}
	return joined + "#" + partEscaper.Replace(k.scope)
}

func (k Key) joined() string {
	escaped := make([]string, len(k.parts))
	for i, p := range k.parts {
		escaped[i] = partEscaper.Replace(p)
	}
	return strings.Join(escaped, "|")
}

// IsZero reports whether the key has no parts.
func (k Key) IsZero() bool {
	return len(k.parts) == 0
}

// HasPrefix reports whether prefix's parts lead k's parts. An unscoped prefix
// matches every scope.
func (k Key) HasPrefix(prefix Key) bool {
	if prefix.scope != "" && prefix.scope != k.scope {
		return false
	}
	if len(prefix.parts) > len(k.parts) {
		return false
	}
	for i, p := range prefix.parts {
		if k.parts[i] != p {
			return false
		}
	}
	return true
}

// storageKey always carries the scope separator so that prefix patterns
// match unscoped entries too.
func (k Key) storageKey() string {
	return storagePrefix + k.joined() + "#" + partEscaper.Replace(k.scope)
}

// storagePatterns returns the glob patterns matching every stored key that
// has k as a prefix.
func (k Key) storagePatterns() []string {
	if len(k.parts) == 0 {
		if k.scope == "" {
			return []string{storagePrefix + "*"}
		}
		return []string{storagePrefix + "*#" + globEscaper.Replace(partEscaper.Replace(k.scope))}
	}
	base := storagePrefix + globEscaper.Replace(k.joined())
	scope := "*"
	if k.scope != "" {
		scope = globEscaper.Replace(partEscaper.Replace(k.scope))
	}
	return []string{base + "#" + scope, base + "|*#" + scope}
}

// Dedupe drops repeated keys, keeping first occurrences in order.
func Dedupe(keys []Key) []Key {
	seen := make(map[string]struct{}, len(keys))
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		id := k.String()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, k)
	}
	return out
}
