package show

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixtureSet(ids ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func TestResolveGroup(t *testing.T) {
	groups := []FixtureGroup{
		{ID: "g-roof", Name: "Roof", Members: []GroupMember{
			{Fixture: "f-ridge"},
			{Fixture: "f-eaves"},
		}},
		{ID: "g-yard", Name: "Yard", Members: []GroupMember{
			{Fixture: "f-tree"},
			{Group: "g-roof"},
		}},
		{ID: "g-all", Name: "Everything", Members: []GroupMember{
			{Group: "g-yard"},
			{Fixture: "f-door"},
		}},
	}

	t.Run("flat group resolves its fixtures", func(t *testing.T) {
		got := ResolveGroup("g-roof", groups, ResolveCache{}, nil)
		assert.Equal(t, fixtureSet("f-ridge", "f-eaves"), got)
	})

	t.Run("nested groups resolve transitively", func(t *testing.T) {
		got := ResolveGroup("g-all", groups, ResolveCache{}, nil)
		assert.Equal(t, fixtureSet("f-tree", "f-ridge", "f-eaves", "f-door"), got)
	})

	t.Run("unknown group resolves to empty set", func(t *testing.T) {
		got := ResolveGroup("g-missing", groups, ResolveCache{}, nil)
		assert.Empty(t, got)
	})

	t.Run("duplicate membership collapses", func(t *testing.T) {
		dup := append([]FixtureGroup{}, groups...)
		dup = append(dup, FixtureGroup{ID: "g-dup", Members: []GroupMember{
			{Group: "g-roof"},
			{Group: "g-yard"}, // g-yard already contains g-roof
		}})
		got := ResolveGroup("g-dup", dup, ResolveCache{}, nil)
		assert.Equal(t, fixtureSet("f-ridge", "f-eaves", "f-tree"), got)
	})
}

func TestResolveGroupCycles(t *testing.T) {
	t.Run("self reference terminates", func(t *testing.T) {
		groups := []FixtureGroup{
			{ID: "g-loop", Members: []GroupMember{
				{Fixture: "f-a"},
				{Group: "g-loop"},
			}},
		}
		got := ResolveGroup("g-loop", groups, ResolveCache{}, nil)
		assert.Equal(t, fixtureSet("f-a"), got)
	})

	t.Run("mutual cycle terminates with fixtures from both", func(t *testing.T) {
		groups := []FixtureGroup{
			{ID: "g-a", Members: []GroupMember{{Fixture: "f-a"}, {Group: "g-b"}}},
			{ID: "g-b", Members: []GroupMember{{Fixture: "f-b"}, {Group: "g-a"}}},
		}
		got := ResolveGroup("g-a", groups, ResolveCache{}, nil)
		assert.Equal(t, fixtureSet("f-a", "f-b"), got)
	})
}

func TestResolveGroupCache(t *testing.T) {
	t.Run("cache hit skips re-resolution", func(t *testing.T) {
		groups := []FixtureGroup{
			{ID: "g-a", Members: []GroupMember{{Fixture: "f-a"}}},
		}
		cache := ResolveCache{}
		first := ResolveGroup("g-a", groups, cache, nil)

		// Mutating the group list must not affect cached results.
		groups[0].Members = append(groups[0].Members, GroupMember{Fixture: "f-extra"})
		second := ResolveGroup("g-a", groups, cache, nil)

		assert.Equal(t, first, second)
		assert.Len(t, second, 1)
	})

	t.Run("shared subgroup resolved once per cache", func(t *testing.T) {
		groups := []FixtureGroup{
			{ID: "g-shared", Members: []GroupMember{{Fixture: "f-s"}}},
			{ID: "g-left", Members: []GroupMember{{Group: "g-shared"}}},
			{ID: "g-right", Members: []GroupMember{{Group: "g-shared"}}},
		}
		cache := ResolveCache{}
		ResolveGroup("g-left", groups, cache, nil)
		ResolveGroup("g-right", groups, cache, nil)

		assert.Contains(t, cache, "g-shared")
		assert.Len(t, cache, 3)
	})
}
