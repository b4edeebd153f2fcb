package domain

import "sort"

// AnswerSet is a sorted, duplicate-free set of option ids. Build it with
// NewAnswerSet so that the validation happens once at the boundary.
type AnswerSet []string

// NewAnswerSet validates raw ids: at least one id, no duplicates.
func NewAnswerSet(ids []string) (AnswerSet, error) {
	if len(ids) == 0 {
		return nil, Errorf(ErrInvalidAnswerSet, "less than 1 answer id was submitted")
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, Errorf(ErrInvalidAnswerSet, "duplicate answer id %q", id)
		}
		seen[id] = struct{}{}
	}
	return newAnswerSetUnchecked(ids), nil
}

func newAnswerSetUnchecked(ids []string) AnswerSet {
	out := append(AnswerSet(nil), ids...)
	sort.Strings(out)
	return out
}

// Equal reports set equality. Sizes must match exactly.
func (s AnswerSet) Equal(other AnswerSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether id is a member of the set.
func (s AnswerSet) Contains(id string) bool {
	i := sort.SearchStrings(s, id)
	return i < len(s) && s[i] == id
}
