package promptml

import (
	"sort"
	"strings"
)

// Reserved structural tag names with parser-level special behavior. Every
// registry recognizes them regardless of how it was assembled.
const (
	TagText = "text"
	TagMeta = "meta"
)

// Registry is the set of tag names the tree builder treats as structural,
// plus aliases mapping to their canonical names. It is immutable: the
// With* methods return modified copies, and lookups never mutate state,
// so a single Registry can back any number of concurrent parses.
type Registry struct {
	names map[string]string // lower-cased name or alias -> canonical name
}

// NewRegistry builds a registry from canonical component names. The
// reserved names "text" and "meta" are always included. Names are
// lower-cased; empty strings are ignored.
func NewRegistry(names ...string) *Registry {
	r := &Registry{names: make(map[string]string, len(names)+2)}
	r.names[TagText] = TagText
	r.names[TagMeta] = TagMeta
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		r.names[name] = name
	}
	return r
}

// WithNames returns a copy of r that additionally recognizes the given
// canonical names.
func (r *Registry) WithNames(names ...string) *Registry {
	out := r.clone(len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out.names[name] = name
	}
	return out
}

// WithAliases returns a copy of r that additionally recognizes each alias
// as its canonical target. Aliases whose target is not already recognized
// are ignored; an alias never shadows an existing canonical name.
func (r *Registry) WithAliases(aliases map[string]string) *Registry {
	out := r.clone(len(aliases))
	for alias, target := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		target = strings.ToLower(strings.TrimSpace(target))
		if alias == "" || target == "" {
			continue
		}
		if _, taken := out.names[alias]; taken {
			continue
		}
		canonical, ok := out.names[target]
		if !ok {
			continue
		}
		out.names[alias] = canonical
	}
	return out
}

// IsRecognized reports whether name (case-insensitive) is a recognized
// component name or alias. This is the single predicate the tree builder
// consults per candidate tag.
func (r *Registry) IsRecognized(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.names[strings.ToLower(name)]
	return ok
}

// Canonical resolves name or alias (case-insensitive) to its canonical
// component name.
func (r *Registry) Canonical(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	canonical, ok := r.names[strings.ToLower(name)]
	return canonical, ok
}

// Names returns the sorted set of canonical names, aliases excluded.
// The slice is a copy; callers may modify it freely.
func (r *Registry) Names() []string {
	seen := make(map[string]bool, len(r.names))
	for _, canonical := range r.names {
		seen[canonical] = true
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) clone(extra int) *Registry {
	out := &Registry{names: make(map[string]string, len(r.names)+extra)}
	for k, v := range r.names {
		out.names[k] = v
	}
	return out
}

// ComponentInfo describes one component a provider contributes to a
// registry: its canonical name and any aliases.
type ComponentInfo struct {
	Name    string
	Aliases []string
}

// ComponentProvider is implemented by sources of recognized component
// names: the static catalog, a renderer's registered component functions,
// or any live component system.
type ComponentProvider interface {
	Components() []ComponentInfo
}

// BuildRegistry assembles a registry from the built-in structural names
// unioned with every provider's components and aliases.
func BuildRegistry(providers ...ComponentProvider) *Registry {
	var names []string
	aliases := make(map[string]string)
	for _, p := range providers {
		if p == nil {
			continue
		}
		for _, info := range p.Components() {
			names = append(names, info.Name)
			for _, alias := range info.Aliases {
				aliases[alias] = info.Name
			}
		}
	}
	reg := NewRegistry(names...)
	if len(aliases) > 0 {
		reg = reg.WithAliases(aliases)
	}
	return reg
}
