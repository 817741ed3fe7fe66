package player

import (
	"time"

	"github.com/pot-code/course-player/internal/domain"
)

// Phase lifecycle of a player session
type Phase string

// session phases, Uninitialized -> Initialized happens exactly once
const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseInitialized   Phase = "initialized"
)

// user facing notices
const (
	NoticeSaveFailed = "Could not save your progress, please try again"
)

// State mutable player state of one learner in one course
type State struct {
	Phase   Phase  `json:"phase"`
	Current string `json:"current,omitempty"`
	Pending string `json:"pending,omitempty"` // lesson with an outstanding completion request
	Notice  string `json:"notice,omitempty"`
}

// NewState fresh uninitialized state
func NewState() State {
	return State{Phase: PhaseUninitialized}
}

// Initialized whether the resume point has been chosen
func (s State) Initialized() bool {
	return s.Phase == PhaseInitialized
}

// Inputs data the reducer works on, fetched from the course and progress services
type Inputs struct {
	Course    *domain.Course
	Sequence  []*domain.Lesson
	Completed domain.LessonSet
}

// NewInputs flatten course into Inputs, either argument may be nil while loading
func NewInputs(course *domain.Course, completed domain.LessonSet) Inputs {
	in := Inputs{Course: course, Completed: completed}
	if course != nil {
		in.Sequence = Flatten(course.Milestones)
	}
	return in
}

// Ready both curriculum and progress are present
func (in Inputs) Ready() bool {
	return in.Course != nil && in.Completed != nil
}

// WithCompleted copy of in using another completed set
func (in Inputs) WithCompleted(completed domain.LessonSet) Inputs {
	in.Completed = completed
	return in
}

// Options tunes player behaviour
type Options struct {
	// GateNavigation makes prev/next refuse to move onto a locked lesson
	GateNavigation bool
	// WriteTimeout bounds a completion write shared by concurrent callers
	WriteTimeout time.Duration
}

// DefaultWriteTimeout used when Options.WriteTimeout is not set
const DefaultWriteTimeout = 10 * time.Second
