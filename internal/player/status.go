package player

import "github.com/pot-code/course-player/internal/domain"

// Status derived lesson state
type Status string

// lesson statuses
const (
	StatusCompleted  Status = "completed"
	StatusInProgress Status = "in-progress"
	StatusUnlocked   Status = "unlocked"
	StatusLocked     Status = "locked"
)

// Clickable whether a lesson row with this status accepts selection
func (s Status) Clickable() bool {
	return s != StatusLocked
}

// Classify return the status of sequence[index], first match wins:
// completed, in-progress, unlocked (first lesson or predecessor completed), locked.
func Classify(sequence []*domain.Lesson, index int, completed domain.LessonSet, current string) Status {
	if index < 0 || index >= len(sequence) {
		return StatusLocked
	}
	id := sequence[index].ID
	if id == "" {
		return StatusLocked
	}
	if completed.Has(id) {
		return StatusCompleted
	}
	if id == current {
		return StatusInProgress
	}
	if index == 0 || completed.Has(sequence[index-1].ID) {
		return StatusUnlocked
	}
	return StatusLocked
}

// Statuses classify every lesson of the sequence
func Statuses(sequence []*domain.Lesson, completed domain.LessonSet, current string) []Status {
	result := make([]Status, len(sequence))
	for i := range sequence {
		result[i] = Classify(sequence, i, completed, current)
	}
	return result
}
