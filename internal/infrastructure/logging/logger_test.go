package logging

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewLogger_UnknownLevel(t *testing.T) {
	_, err := NewLogger(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLogger_ProductionWritesECS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(&Config{FilePath: path, Level: "info", Env: "production", AppID: "course-player"})
	if !assert.NoError(t, err) {
		return
	}
	logger.Debug("hidden")
	logger.Info("hello", zap.String("course.id", "c1"))
	assert.NoError(t, logger.Sync())

	content, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	out := string(content)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"log.level":"info"`)
	assert.Contains(t, out, `"service.id":"course-player"`)
	assert.Contains(t, out, `"course.id":"c1"`)
	assert.Contains(t, out, `"@timestamp"`)
}

func TestLoggerInContext(t *testing.T) {
	assert.NotNil(t, ExtractLoggerFromContext(context.Background()))

	logger := zap.NewExample()
	ctx := SetLoggerInContext(context.Background(), logger)
	assert.Same(t, logger, ExtractLoggerFromContext(ctx))
}
