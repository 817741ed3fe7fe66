package player

import (
	"testing"

	"github.com/pot-code/course-player/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name       string
		milestones []*domain.Milestone
		want       []string
	}{
		{"nil milestones", nil, []string{}},
		{"empty milestones", []*domain.Milestone{}, []string{}},
		{"milestone without lessons", []*domain.Milestone{{ID: "m1"}, {ID: "m2", Lessons: []*domain.Lesson{}}}, []string{}},
		{"concatenates in source order", newCourse([]string{"b", "a"}, nil, []string{"d", "c"}).Milestones, []string{"b", "a", "d", "c"}},
		{"skips nil entries", []*domain.Milestone{
			nil,
			{ID: "m1", Lessons: []*domain.Lesson{nil, {ID: "a"}, nil, {ID: "b"}}},
		}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flatten(tt.milestones)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	course := newCourse([]string{"a", "b"}, []string{"c"}, []string{"d", "e", "f"})
	first := Flatten(course.Milestones)
	second := Flatten(course.Milestones)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, ids(first))
}

func TestIndexOf(t *testing.T) {
	seq := lessons("a", "b", "c")
	assert.Equal(t, 0, IndexOf(seq, "a"))
	assert.Equal(t, 2, IndexOf(seq, "c"))
	assert.Equal(t, -1, IndexOf(seq, "x"))
	assert.Equal(t, -1, IndexOf(seq, ""))
	assert.Equal(t, -1, IndexOf(lessons("", "a"), ""))
}
