package domain

import "context"

// ContentType lesson content tag
type ContentType string

// lesson content types
const (
	ContentVideo      ContentType = "video"
	ContentDoc        ContentType = "doc"
	ContentQuiz       ContentType = "quiz"
	ContentAssignment ContentType = "assignment"
	ContentAudio      ContentType = "audio"
)

// Lesson a single playable unit of a milestone
type Lesson struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Type        ContentType `json:"type"`
	MilestoneID string      `json:"milestone,omitempty"`
}

// Milestone ordered group of lessons
type Milestone struct {
	ID      string    `json:"_id"`
	Title   string    `json:"title"`
	Lessons []*Lesson `json:"lessons"`
}

// Course root aggregate of the curriculum tree.
//
// Milestone and lesson order is the source order and is never re-sorted.
type Course struct {
	ID         string       `json:"_id"`
	Title      string       `json:"title"`
	Milestones []*Milestone `json:"milestones"`
}

// LearnerModel the learner on whose behalf the player runs
type LearnerModel struct {
	ID    string
	Token string // raw bearer token, forwarded to the course backend
}

// CourseRepository reads curriculum trees
type CourseRepository interface {
	GetCourse(ctx context.Context, learner *LearnerModel, courseID string) (*Course, error)
}

// ProgressRepository reads and records lesson completion
type ProgressRepository interface {
	GetCompletedLessons(ctx context.Context, learner *LearnerModel, courseID string) (LessonSet, error)
	MarkLessonComplete(ctx context.Context, learner *LearnerModel, courseID, lessonID string) error
}
