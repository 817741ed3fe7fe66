package player

import (
	"context"

	"github.com/pot-code/course-player/internal/domain"
)

// StateRepository persists player state between requests
type StateRepository interface {
	LoadState(ctx context.Context, learnerID, courseID string) (State, error)
	SaveState(ctx context.Context, learnerID, courseID string, s State) error
}

// Notifier receives intermediate views, eg. the pending view before a completion request resolves
type Notifier func(view *View)

// PlayerUseCase course player operations
type PlayerUseCase interface {
	Open(ctx context.Context, learner *domain.LearnerModel, courseID string) (*View, error)
	Select(ctx context.Context, learner *domain.LearnerModel, courseID, lessonID string) (*View, error)
	Navigate(ctx context.Context, learner *domain.LearnerModel, courseID string, dir Direction) (*View, error)
	Complete(ctx context.Context, learner *domain.LearnerModel, courseID string, notify Notifier) (*View, error)
	DismissNotice(ctx context.Context, learner *domain.LearnerModel, courseID string) (*View, error)
}
