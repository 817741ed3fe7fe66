package player

import "github.com/pot-code/course-player/internal/domain"

// Flatten concatenates the lessons of every milestone in source order.
//
// nil milestones, nil lesson lists and nil lessons contribute nothing. The
// returned slice is never nil.
func Flatten(milestones []*domain.Milestone) []*domain.Lesson {
	sequence := make([]*domain.Lesson, 0)
	for _, m := range milestones {
		if m == nil {
			continue
		}
		for _, l := range m.Lessons {
			if l != nil {
				sequence = append(sequence, l)
			}
		}
	}
	return sequence
}

// IndexOf position of id in sequence, -1 if absent
func IndexOf(sequence []*domain.Lesson, id string) int {
	if id == "" {
		return -1
	}
	for i, l := range sequence {
		if l.ID == id {
			return i
		}
	}
	return -1
}
