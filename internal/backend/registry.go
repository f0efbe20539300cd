package backend

import "fmt"

// entry is a (name, factory) pair; multiple entries may share one
// factory to express aliases.
type entry struct {
	name    string
	factory Factory
}

// Registry is a statically-ordered sequence of entries, looked up by
// exact string match. It is immutable once built.
type Registry struct {
	entries []entry
}

// NewRegistry returns an empty registry; entries are appended in order
// with Add. HelpText/VersionText's primary-entry filter (name ==
// descriptor's own Name) skips aliases whatever order they were added
// in.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a registry entry under name, backed by factory.
func (r *Registry) Add(name string, factory Factory) {
	r.entries = append(r.entries, entry{name: name, factory: factory})
}

// Get performs a linear scan for the first exact name match and
// returns the factory's result, or nil if no entry matches.
func (r *Registry) Get(name string) *Descriptor {
	for _, e := range r.entries {
		if e.name == name {
			return e.factory()
		}
	}
	return nil
}

// HelpText concatenates, for each primary entry (registry name equals
// the descriptor's own reported name), its name/description/help
// block. Aliases are skipped so a backend's text appears exactly once.
func (r *Registry) HelpText() string {
	var out string
	for _, e := range r.entries {
		d := e.factory()
		if e.name != d.Name {
			continue
		}
		help := d.Help
		if help == "" {
			help = "(no backend-specific help available)"
		}
		out += fmt.Sprintf("%s - %s\n\n%s\n\n", d.Name, d.Description, help)
	}
	return out
}

// VersionText concatenates "Backend <name> version <version>\n" for
// each primary entry.
func (r *Registry) VersionText() string {
	var out string
	for _, e := range r.entries {
		d := e.factory()
		if e.name != d.Name {
			continue
		}
		out += fmt.Sprintf("Backend %s version %s\n", d.Name, d.Version)
	}
	return out
}
