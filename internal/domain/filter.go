package domain

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// CategoryFilterSet is an immutable set of category identifiers restricting a view.
// The empty set means no restriction.
type CategoryFilterSet struct {
	ids map[uuid.UUID]struct{}
}

// NewCategoryFilterSet builds a set from ids; duplicates collapse.
func NewCategoryFilterSet(ids ...uuid.UUID) CategoryFilterSet {
	if len(ids) == 0 {
		return CategoryFilterSet{}
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return CategoryFilterSet{ids: set}
}

// ParseCategoryFilterSet parses a comma separated list of ids. Blank input is the empty set.
func ParseCategoryFilterSet(s string) (CategoryFilterSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryFilterSet{}, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := uuid.Parse(p)
		if err != nil {
			return CategoryFilterSet{}, NewParseError("categories", p, err)
		}
		ids = append(ids, id)
	}
	return NewCategoryFilterSet(ids...), nil
}

func (f CategoryFilterSet) Len() int {
	return len(f.ids)
}

func (f CategoryFilterSet) IsEmpty() bool {
	return len(f.ids) == 0
}

func (f CategoryFilterSet) Contains(id uuid.UUID) bool {
	_, ok := f.ids[id]
	return ok
}

// Toggle returns a new set with id added if absent or removed if present.
func (f CategoryFilterSet) Toggle(id uuid.UUID) CategoryFilterSet {
	next := make(map[uuid.UUID]struct{}, len(f.ids)+1)
	for k := range f.ids {
		next[k] = struct{}{}
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	if len(next) == 0 {
		return CategoryFilterSet{}
	}
	return CategoryFilterSet{ids: next}
}

// Equal reports whether both sets hold the same ids.
func (f CategoryFilterSet) Equal(other CategoryFilterSet) bool {
	if len(f.ids) != len(other.ids) {
		return false
	}
	for id := range f.ids {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// IDs returns the members sorted by their string form.
func (f CategoryFilterSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (f CategoryFilterSet) String() string {
	ids := f.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
