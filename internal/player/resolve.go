package player

import "github.com/pot-code/course-player/internal/domain"

// ResolveStart choose the lesson a learner resumes at.
//
// It returns the first lesson not yet completed, or the last lesson when
// everything is complete. ok is false when the sequence has no addressable
// lesson.
func ResolveStart(sequence []*domain.Lesson, completed domain.LessonSet) (id string, ok bool) {
	last := ""
	for _, l := range sequence {
		if l.ID == "" {
			continue
		}
		if !completed.Has(l.ID) {
			return l.ID, true
		}
		last = l.ID
	}
	return last, last != ""
}
