package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/pot-code/course-player/internal/domain"
	"github.com/pot-code/course-player/internal/player"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubCourses struct {
	course *domain.Course
}

func (sc *stubCourses) GetCourse(ctx context.Context, learner *domain.LearnerModel, courseID string) (*domain.Course, error) {
	return sc.course, nil
}

// brokenProgress reads fine but refuses every write
type brokenProgress struct {
	completed domain.LessonSet
}

func (bp *brokenProgress) GetCompletedLessons(ctx context.Context, learner *domain.LearnerModel, courseID string) (domain.LessonSet, error) {
	return bp.completed.Clone(), nil
}

func (bp *brokenProgress) MarkLessonComplete(ctx context.Context, learner *domain.LearnerModel, courseID, lessonID string) error {
	return errors.New("progress store is down")
}

type stateMap struct {
	mu     sync.Mutex
	states map[string]player.State
}

func (sm *stateMap) LoadState(ctx context.Context, learnerID, courseID string) (player.State, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.states[learnerID+"/"+courseID]; ok {
		return s, nil
	}
	return player.NewState(), nil
}

func (sm *stateMap) SaveState(ctx context.Context, learnerID, courseID string, s player.State) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.states[learnerID+"/"+courseID] = s
	return nil
}

func TestPlayerHandler_CompletePersistenceFailure(t *testing.T) {
	course := &domain.Course{ID: "c1", Title: "Go", Milestones: []*domain.Milestone{
		{ID: "m1", Lessons: []*domain.Lesson{
			{ID: "a", MilestoneID: "m1", Type: domain.ContentVideo},
			{ID: "b", MilestoneID: "m1", Type: domain.ContentDoc},
		}},
	}}
	uc := player.NewPlayerUseCase(
		&stubCourses{course: course},
		&brokenProgress{completed: domain.NewLessonSet()},
		&stateMap{states: make(map[string]player.State)},
		player.Options{},
	)
	kv := &fakeKV{}
	app := NewServer(testConfig(), uc, kv, zap.NewNop(), kv.Ping)
	token := signToken(t, "u1")

	rec := doRequest(app, http.MethodGet, "/api/v1/player/c1", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(app, http.MethodPost, "/api/v1/player/c1/complete", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	view := new(player.View)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), view))
	assert.Equal(t, player.NoticeSaveFailed, view.Notice)
	assert.Equal(t, "a", view.Current)
	assert.True(t, view.CanComplete)
	assert.False(t, view.Pending)
	assert.Zero(t, view.Completed)
}
