package domain

import "errors"

// ErrCourseNotFound no course with the given id
var ErrCourseNotFound = errors.New("Course not found")

// ErrDataNotReady curriculum or progress is not available yet
var ErrDataNotReady = errors.New("Course data is not ready")

// ErrBackendUnavailable the course/progress backend failed to answer
var ErrBackendUnavailable = errors.New("Course backend is unavailable")
