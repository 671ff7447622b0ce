package scraper

import "strings"

// aliases maps a virtual source name to concrete adapter names in
// preference order. An alias with more than one concrete name is a chain:
// the later entries are legacy fallbacks only attempted when the earlier
// ones return nothing.
var aliases = map[string][]string{
	"dmm": {"dmmweb", "dmm"},
	"r18": {"r18dev"},
	"jav": {"javlibrary"},
}

// Aliases returns a copy of the alias table.
func Aliases() map[string][]string {
	out := make(map[string][]string, len(aliases))
	for name, concrete := range aliases {
		c := make([]string, len(concrete))
		copy(c, concrete)
		out[name] = c
	}
	return out
}

// Expand resolves a single source name through the alias table. Concrete
// names pass through unchanged.
func Expand(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if concrete, ok := aliases[name]; ok {
		out := make([]string, len(concrete))
		copy(out, concrete)
		return out
	}
	return []string{name}
}

// ExpandSources expands every requested name through the alias table,
// preserving request order and dropping duplicates keeping the first
// occurrence. Expansion is pure: same input, same output.
func ExpandSources(requested []string) []string {
	var expanded []string
	seen := make(map[string]bool)
	for _, name := range requested {
		for _, concrete := range Expand(name) {
			if concrete == "" || seen[concrete] {
				continue
			}
			seen[concrete] = true
			expanded = append(expanded, concrete)
		}
	}
	return expanded
}

// ChainGroups partitions an alias-expanded source list into logical task
// groups. Sources belonging to the same chain (preferred implementation
// plus its legacy fallback) form one group ordered by chain preference,
// positioned at the first member's place in the request; everything else
// is its own group. Each group occupies a single concurrency slot.
func ChainGroups(expanded []string) [][]string {
	chainOf := make(map[string][]string)
	for _, concrete := range aliases {
		if len(concrete) < 2 {
			continue
		}
		for _, name := range concrete {
			chainOf[name] = concrete
		}
	}

	var groups [][]string
	grouped := make(map[string]bool)
	for _, name := range expanded {
		if grouped[name] {
			continue
		}
		chain, ok := chainOf[name]
		if !ok {
			groups = append(groups, []string{name})
			continue
		}
		requested := make(map[string]bool, len(expanded))
		for _, n := range expanded {
			requested[n] = true
		}
		var group []string
		for _, member := range chain {
			if requested[member] {
				group = append(group, member)
				grouped[member] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}
