package domain

// LessonSet set of lesson identifiers, only membership carries meaning
type LessonSet map[string]struct{}

// NewLessonSet create a set from ids, empty ids are dropped
func NewLessonSet(ids ...string) LessonSet {
	set := make(LessonSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

// Has reports membership, a nil set contains nothing
func (ls LessonSet) Has(id string) bool {
	if id == "" {
		return false
	}
	_, ok := ls[id]
	return ok
}

// Add insert id into the set
func (ls LessonSet) Add(id string) {
	if id != "" {
		ls[id] = struct{}{}
	}
}

// Clone copy the set
func (ls LessonSet) Clone() LessonSet {
	set := make(LessonSet, len(ls)+1)
	for id := range ls {
		set[id] = struct{}{}
	}
	return set
}
