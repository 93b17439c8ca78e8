package show

// ResolveCache memoizes group resolution within a single layout pass.
// Entries are permanent for the life of the cache; build a fresh cache
// whenever groups change.
type ResolveCache map[string]map[string]struct{}

// ResolveGroup returns the set of fixture IDs a group expands to, following
// nested group members transitively. visited guards against cycles: a group
// reached again on the same branch contributes nothing. Pass nil for visited
// at the top level. Unknown group IDs resolve to the empty set.
func ResolveGroup(groupID string, groups []FixtureGroup, cache ResolveCache, visited map[string]struct{}) map[string]struct{} {
	if cached, ok := cache[groupID]; ok {
		return cached
	}
	if visited == nil {
		visited = make(map[string]struct{})
	}
	if _, seen := visited[groupID]; seen {
		return map[string]struct{}{}
	}
	visited[groupID] = struct{}{}

	out := make(map[string]struct{})
	var grp *FixtureGroup
	for i := range groups {
		if groups[i].ID == groupID {
			grp = &groups[i]
			break
		}
	}
	if grp == nil {
		cache[groupID] = out
		return out
	}
	for _, m := range grp.Members {
		switch {
		case m.Fixture != "":
			out[m.Fixture] = struct{}{}
		case m.Group != "":
			for id := range ResolveGroup(m.Group, groups, cache, visited) {
				out[id] = struct{}{}
			}
		}
	}
	cache[groupID] = out
	return out
}
