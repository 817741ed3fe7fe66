package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pot-code/course-player/internal/domain"
	"github.com/pot-code/course-player/internal/infrastructure/logging"
	"go.elastic.co/apm"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PlayerUseCaseImpl ...
type PlayerUseCaseImpl struct {
	CourseRepository   domain.CourseRepository
	ProgressRepository domain.ProgressRepository
	StateRepository    StateRepository
	Options            Options

	inflight singleflight.Group
}

var _ PlayerUseCase = &PlayerUseCaseImpl{}

// NewPlayerUseCase ...
func NewPlayerUseCase(
	CourseRepository domain.CourseRepository,
	ProgressRepository domain.ProgressRepository,
	StateRepository StateRepository,
	Options Options,
) *PlayerUseCaseImpl {
	return &PlayerUseCaseImpl{
		CourseRepository:   CourseRepository,
		ProgressRepository: ProgressRepository,
		StateRepository:    StateRepository,
		Options:            Options,
	}
}

// Open load the player, choosing the resume lesson on first visit
func (pu *PlayerUseCaseImpl) Open(ctx context.Context, learner *domain.LearnerModel, courseID string) (*View, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "PlayerUseCaseImpl.Open", "service")
	defer apmSpan.End()

	return pu.dispatch(ctx, learner, courseID, nil)
}

// Select move to a lesson picked from the sidebar, locked lessons are ignored
func (pu *PlayerUseCaseImpl) Select(ctx context.Context, learner *domain.LearnerModel, courseID, lessonID string) (*View, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "PlayerUseCaseImpl.Select", "service")
	defer apmSpan.End()

	return pu.dispatch(ctx, learner, courseID, &Action{Type: ActionSelectLesson, LessonID: lessonID})
}

// Navigate go to the previous or next lesson
func (pu *PlayerUseCaseImpl) Navigate(ctx context.Context, learner *domain.LearnerModel, courseID string, dir Direction) (*View, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "PlayerUseCaseImpl.Navigate", "service")
	defer apmSpan.End()

	return pu.dispatch(ctx, learner, courseID, &Action{Type: ActionNavigate, Direction: dir})
}

// DismissNotice clear the transient notice
func (pu *PlayerUseCaseImpl) DismissNotice(ctx context.Context, learner *domain.LearnerModel, courseID string) (*View, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "PlayerUseCaseImpl.DismissNotice", "service")
	defer apmSpan.End()

	return pu.dispatch(ctx, learner, courseID, &Action{Type: ActionDismissNotice})
}

// Complete mark the current lesson complete.
//
// A persistence failure is not returned as error: the view carries a notice
// and the pointer stays where it was.
func (pu *PlayerUseCaseImpl) Complete(ctx context.Context, learner *domain.LearnerModel, courseID string, notify Notifier) (*View, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "PlayerUseCaseImpl.Complete", "service")
	defer apmSpan.End()

	logger := logging.ExtractLoggerFromContext(ctx)
	in, s, err := pu.load(ctx, learner, courseID)
	if err != nil {
		return nil, err
	}

	started := Reduce(s, in, Action{Type: ActionCompleteStarted}, pu.Options)
	if started.Pending == "" {
		// nothing to complete, no request is issued
		return BuildView(started, in, pu.Options), pu.save(ctx, learner, courseID, started)
	}
	lessonID := started.Pending
	if notify != nil {
		notify(BuildView(started, in, pu.Options))
	}

	key := fmt.Sprintf("%s/%s/%s", learner.ID, courseID, lessonID)
	_, err, shared := pu.inflight.Do(key, func() (interface{}, error) {
		// the flight may be joined by other callers, it must outlive this request
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pu.writeTimeout())
		defer cancel()
		return nil, pu.ProgressRepository.MarkLessonComplete(writeCtx, learner, courseID, lessonID)
	})
	if err != nil {
		logger.Warn("Failed to mark lesson complete", zap.Error(err),
			zap.String("course.id", courseID),
			zap.String("lesson.id", lessonID),
		)
		return pu.settle(ctx, learner, courseID, in, Action{Type: ActionCompleteFailed, LessonID: lessonID})
	}
	if shared {
		logger.Debug("Joined in-flight completion", zap.String("lesson.id", lessonID))
	}

	completed, err := pu.ProgressRepository.GetCompletedLessons(ctx, learner, courseID)
	if err != nil || !completed.Has(lessonID) {
		// the write was acknowledged, keep it visible until the next read catches up
		if err != nil {
			logger.Warn("Failed to refresh progress after completion", zap.Error(err))
			completed = in.Completed
		}
		completed = completed.Clone()
		completed.Add(lessonID)
	}
	in = in.WithCompleted(completed)
	return pu.settle(ctx, learner, courseID, in, Action{Type: ActionCompleteSucceeded, LessonID: lessonID})
}

// settle apply the outcome of a completion to the stored state as it is now,
// the learner may have navigated while the write was in flight
func (pu *PlayerUseCaseImpl) settle(ctx context.Context, learner *domain.LearnerModel, courseID string, in Inputs, outcome Action) (*View, error) {
	s, err := pu.StateRepository.LoadState(ctx, learner.ID, courseID)
	if err != nil {
		return nil, err
	}
	s = Reduce(s, in, Action{Type: ActionInitialize}, pu.Options)
	s.Pending = outcome.LessonID
	next := Reduce(s, in, outcome, pu.Options)
	return BuildView(next, in, pu.Options), pu.save(ctx, learner, courseID, next)
}

func (pu *PlayerUseCaseImpl) writeTimeout() time.Duration {
	if pu.Options.WriteTimeout > 0 {
		return pu.Options.WriteTimeout
	}
	return DefaultWriteTimeout
}

func (pu *PlayerUseCaseImpl) dispatch(ctx context.Context, learner *domain.LearnerModel, courseID string, action *Action) (*View, error) {
	in, s, err := pu.load(ctx, learner, courseID)
	if err != nil {
		return nil, err
	}
	if action != nil {
		s = Reduce(s, in, *action, pu.Options)
	}
	return BuildView(s, in, pu.Options), pu.save(ctx, learner, courseID, s)
}

// load fetch inputs and state, initializing the session on first use.
// Data that is not ready yet leaves the inputs incomplete and the state deferred.
func (pu *PlayerUseCaseImpl) load(ctx context.Context, learner *domain.LearnerModel, courseID string) (Inputs, State, error) {
	course, err := pu.CourseRepository.GetCourse(ctx, learner, courseID)
	if err != nil && !errors.Is(err, domain.ErrDataNotReady) {
		return Inputs{}, State{}, err
	}
	completed, err := pu.ProgressRepository.GetCompletedLessons(ctx, learner, courseID)
	switch {
	case errors.Is(err, domain.ErrDataNotReady):
		completed = nil
	case err != nil:
		return Inputs{}, State{}, err
	case completed == nil:
		completed = domain.NewLessonSet()
	}
	s, err := pu.StateRepository.LoadState(ctx, learner.ID, courseID)
	if err != nil {
		return Inputs{}, State{}, err
	}

	in := NewInputs(course, completed)
	if !in.Ready() {
		logging.ExtractLoggerFromContext(ctx).Debug("Course data not ready", zap.String("course.id", courseID))
	}
	s = Reduce(s, in, Action{Type: ActionInitialize}, pu.Options)
	return in, s, nil
}

func (pu *PlayerUseCaseImpl) save(ctx context.Context, learner *domain.LearnerModel, courseID string, s State) error {
	// pending requests belong to this call only
	s.Pending = ""
	return pu.StateRepository.SaveState(ctx, learner.ID, courseID, s)
}
