// Package namer turns arbitrary playlist names into filesystem-safe,
// collision-free file names. One Resolver covers one naming scope (the
// set of siblings under a single parent folder); scopes never share state.
package namer

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// illegal lists the runes deleted by SanitizeName. Path separators are
// deleted rather than substituted so word boundaries around them survive
// as whatever whitespace surrounded the separator.
const illegal = `<>:"|?*\/`

// reserved device names rejected on the target filesystem, compared
// case-insensitively against the part before the first dot.
var reserved = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeName strips characters that are illegal in file names and
// trims leading/trailing spaces and trailing dots. Reserved device names
// sanitize to "" so callers fall back to a generated name. Everything
// else, including non-ASCII, passes through untouched.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(illegal, r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimRight(strings.TrimSpace(b.String()), ". ")

	base := out
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if _, ok := reserved[strings.ToUpper(base)]; ok {
		return ""
	}
	return out
}

// Resolver maps original names to unique sanitized names within one scope.
type Resolver struct {
	mapping map[string]string
	used    map[string]struct{}
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		mapping: make(map[string]string),
		used:    make(map[string]struct{}),
	}
}

// UniqueName returns a sanitized name unique within this resolver.
// Repeat calls with the same original return the cached result and never
// claim a second slot. Collisions get " (1)", " (2)", ... suffixes in
// claim order; suffix slots are never reused.
func (r *Resolver) UniqueName(original string) string {
	if name, ok := r.mapping[original]; ok {
		return name
	}

	base := SanitizeName(original)
	if strings.TrimSpace(base) == "" {
		base = fallbackName(original)
	}

	if _, taken := r.used[base]; !taken {
		r.claim(original, base)
		return base
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		if _, taken := r.used[candidate]; !taken {
			r.claim(original, candidate)
			return candidate
		}
	}
}

func (r *Resolver) claim(original, name string) {
	r.mapping[original] = name
	r.used[name] = struct{}{}
}

// fallbackName derives a stable substitute for names that sanitize away
// entirely. The hash keeps it deterministic across runs; any residual
// collision is handled by the normal suffix probing.
func fallbackName(original string) string {
	h := fnv.New32a()
	h.Write([]byte(original))
	return fmt.Sprintf("playlist_%d", h.Sum32()%10000)
}
