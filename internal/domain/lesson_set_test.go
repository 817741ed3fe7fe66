package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLessonSet(t *testing.T) {
	set := NewLessonSet("a", "", "b", "a")
	assert.Len(t, set, 2)
	assert.True(t, set.Has("a"))
	assert.False(t, set.Has(""))
	assert.False(t, set.Has("c"))

	clone := set.Clone()
	clone.Add("c")
	assert.True(t, clone.Has("c"))
	assert.False(t, set.Has("c"))

	var empty LessonSet
	assert.False(t, empty.Has("a"))
	assert.NotNil(t, empty.Clone())
}
