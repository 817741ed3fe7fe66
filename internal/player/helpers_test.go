package player

import (
	"fmt"

	"github.com/pot-code/course-player/internal/domain"
)

// newCourse build a course whose milestones hold the given lesson ids
func newCourse(milestones ...[]string) *domain.Course {
	course := &domain.Course{ID: "c1", Title: "Go in practice"}
	for i, lessonIDs := range milestones {
		m := &domain.Milestone{ID: fmt.Sprintf("m%d", i), Title: fmt.Sprintf("Milestone %d", i+1)}
		for _, id := range lessonIDs {
			m.Lessons = append(m.Lessons, &domain.Lesson{ID: id, Title: "Lesson " + id, Type: domain.ContentVideo, MilestoneID: m.ID})
		}
		course.Milestones = append(course.Milestones, m)
	}
	return course
}

func lessons(ids ...string) []*domain.Lesson {
	result := make([]*domain.Lesson, 0, len(ids))
	for _, id := range ids {
		result = append(result, &domain.Lesson{ID: id})
	}
	return result
}

func ids(sequence []*domain.Lesson) []string {
	result := make([]string, 0, len(sequence))
	for _, l := range sequence {
		result = append(result, l.ID)
	}
	return result
}

// initialized state pointing at current over course
func initialized(current string) State {
	return State{Phase: PhaseInitialized, Current: current}
}
