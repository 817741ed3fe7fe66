package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pot-code/course-player/internal/domain"
	"github.com/pot-code/course-player/internal/infrastructure/logging"
	"github.com/pot-code/course-player/internal/progress"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// StatusError non-2xx answer of the backend
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (se *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s: %d %s", se.Method, se.Path, se.Code, se.Body)
}

// Unwrap map the status onto domain errors
func (se *StatusError) Unwrap() error {
	switch {
	case se.Code == http.StatusNotFound:
		return domain.ErrCourseNotFound
	case se.Code >= http.StatusInternalServerError:
		return domain.ErrBackendUnavailable
	}
	return nil
}

// Client talks to the course REST backend
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var (
	_ domain.CourseRepository   = &Client{}
	_ domain.ProgressRepository = &Client{}
)

// NewClient ...
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type progressPayload struct {
	CompletedLessons progress.CompletedLessons `json:"completedLessons"`
}

// GetCourse GET /courses/:id
func (bc *Client) GetCourse(ctx context.Context, learner *domain.LearnerModel, courseID string) (*domain.Course, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "Client.GetCourse", "external.http")
	defer apmSpan.End()

	course := new(domain.Course)
	if err := bc.do(ctx, learner, http.MethodGet, "/courses/"+url.PathEscape(courseID), course); err != nil {
		return nil, err
	}
	return course, nil
}

// GetCompletedLessons GET /courses/:id/progress
func (bc *Client) GetCompletedLessons(ctx context.Context, learner *domain.LearnerModel, courseID string) (domain.LessonSet, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "Client.GetCompletedLessons", "external.http")
	defer apmSpan.End()

	payload := new(progressPayload)
	if err := bc.do(ctx, learner, http.MethodGet, "/courses/"+url.PathEscape(courseID)+"/progress", payload); err != nil {
		return nil, err
	}
	if payload.CompletedLessons.Kind == progress.KindMalformed {
		logging.ExtractLoggerFromContext(ctx).Warn("Malformed completed lessons, treating as empty",
			zap.String("course.id", courseID))
	}
	return payload.CompletedLessons.Set(), nil
}

// MarkLessonComplete POST /courses/:id/lessons/:lesson_id/complete
func (bc *Client) MarkLessonComplete(ctx context.Context, learner *domain.LearnerModel, courseID, lessonID string) error {
	apmSpan, ctx := apm.StartSpan(ctx, "Client.MarkLessonComplete", "external.http")
	defer apmSpan.End()

	path := fmt.Sprintf("/courses/%s/lessons/%s/complete", url.PathEscape(courseID), url.PathEscape(lessonID))
	return bc.do(ctx, learner, http.MethodPost, path, nil)
}

// do send the request and decode a JSON answer into out when out is not nil
func (bc *Client) do(ctx context.Context, learner *domain.LearnerModel, method, path string, out interface{}) error {
	logger := logging.ExtractLoggerFromContext(ctx)
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, bc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if learner != nil && learner.Token != "" {
		req.Header.Set("Authorization", "Bearer "+learner.Token)
	}

	res, err := bc.HTTPClient.Do(req)
	if err != nil {
		logger.Error(err.Error(), zap.String("http.request.method", method), zap.String("url.path", path))
		return fmt.Errorf("%w: %s", domain.ErrBackendUnavailable, err.Error())
	}
	defer res.Body.Close()

	logger.Debug("Backend call",
		zap.String("http.request.method", method),
		zap.String("url.path", path),
		zap.Int("http.response.status_code", res.StatusCode),
		zap.Duration("event.duration", time.Since(startTime)),
	)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := ioutil.ReadAll(io.LimitReader(res.Body, 512))
		return &StatusError{Method: method, Path: path, Code: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if res.StatusCode == http.StatusNoContent {
		// backend knows the resource but has nothing to show yet
		return domain.ErrDataNotReady
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
