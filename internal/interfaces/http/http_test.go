package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-player/internal/domain"
	infra "github.com/pot-code/course-player/internal/infrastructure"
	"github.com/pot-code/course-player/internal/infrastructure/auth"
	"github.com/pot-code/course-player/internal/player"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type call struct {
	method   string
	learner  *domain.LearnerModel
	courseID string
	lessonID string
	dir      player.Direction
}

type fakePlayer struct {
	calls []call
	view  *player.View
	err   error
	// pending is pushed through the notifier by Complete when set
	pending *player.View
}

func (fp *fakePlayer) record(c call) (*player.View, error) {
	fp.calls = append(fp.calls, c)
	if fp.err != nil {
		return nil, fp.err
	}
	return fp.view, nil
}

func (fp *fakePlayer) Open(ctx context.Context, learner *domain.LearnerModel, courseID string) (*player.View, error) {
	return fp.record(call{method: "Open", learner: learner, courseID: courseID})
}

func (fp *fakePlayer) Select(ctx context.Context, learner *domain.LearnerModel, courseID, lessonID string) (*player.View, error) {
	return fp.record(call{method: "Select", learner: learner, courseID: courseID, lessonID: lessonID})
}

func (fp *fakePlayer) Navigate(ctx context.Context, learner *domain.LearnerModel, courseID string, dir player.Direction) (*player.View, error) {
	return fp.record(call{method: "Navigate", learner: learner, courseID: courseID, dir: dir})
}

func (fp *fakePlayer) Complete(ctx context.Context, learner *domain.LearnerModel, courseID string, notify player.Notifier) (*player.View, error) {
	if fp.pending != nil && notify != nil {
		notify(fp.pending)
	}
	return fp.record(call{method: "Complete", learner: learner, courseID: courseID})
}

func (fp *fakePlayer) DismissNotice(ctx context.Context, learner *domain.LearnerModel, courseID string) (*player.View, error) {
	return fp.record(call{method: "DismissNotice", learner: learner, courseID: courseID})
}

type fakeKV struct {
	revoked map[string]bool
	pingErr error
}

func (kv *fakeKV) SetEX(ctx context.Context, key string, value string, expiration time.Duration) error {
	return nil
}

func (kv *fakeKV) Get(ctx context.Context, key string) (string, error) { return "", nil }

func (kv *fakeKV) Exists(ctx context.Context, key string) (bool, error) {
	return kv.revoked[key], nil
}

func (kv *fakeKV) Ping(ctx context.Context) error { return kv.pingErr }

func (kv *fakeKV) Close() error { return nil }

func testConfig() *infra.AppConfig {
	option := new(infra.AppConfig)
	option.AppID = "course-player"
	option.Env = infra.EnvProduction
	option.RequestTimeout = 5 * time.Second
	option.Security.IDLength = 12
	option.Security.JWTMethod = "HS256"
	option.Security.JWTSecret = testSecret
	option.Security.TokenName = "token"
	option.Security.TokenTTL = time.Hour
	return option
}

func newTestApp(fp *fakePlayer, kv *fakeKV) *echo.Echo {
	return NewServer(testConfig(), fp, kv, zap.NewNop(), kv.Ping)
}

func signToken(t *testing.T, uid string) string {
	ju := auth.NewJWTUtil("HS256", testSecret, "token", time.Hour)
	token, err := ju.GenerateTokenStr(uid, "Ada")
	assert.NoError(t, err)
	return token
}

func doRequest(app *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPlayerHandler_Unauthorized(t *testing.T) {
	app := newTestApp(&fakePlayer{}, &fakeKV{})

	rec := doRequest(app, http.MethodGet, "/api/v1/player/c1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.EqualValues(t, http.StatusUnauthorized, decodeError(t, rec)["code"])

	rec = doRequest(app, http.MethodGet, "/api/v1/player/c1", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlayerHandler_RevokedToken(t *testing.T) {
	token := signToken(t, "u1")
	kv := &fakeKV{revoked: map[string]bool{RevokedTokenPrefix + token: true}}
	app := newTestApp(&fakePlayer{}, kv)

	rec := doRequest(app, http.MethodGet, "/api/v1/player/c1", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlayerHandler_TokenFromCookie(t *testing.T) {
	fp := &fakePlayer{view: &player.View{CourseID: "c1"}}
	app := newTestApp(fp, &fakeKV{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/player/c1", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, "u1")})
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlayerHandler_Open(t *testing.T) {
	fp := &fakePlayer{view: &player.View{CourseID: "c1", Ready: true, Current: "l2"}}
	app := newTestApp(fp, &fakeKV{})
	token := signToken(t, "u1")

	rec := doRequest(app, http.MethodGet, "/api/v1/player/c1", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	var view player.View
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "l2", view.Current)

	if assert.Len(t, fp.calls, 1) {
		assert.Equal(t, "u1", fp.calls[0].learner.ID)
		assert.Equal(t, token, fp.calls[0].learner.Token)
		assert.Equal(t, "c1", fp.calls[0].courseID)
	}
}

func TestPlayerHandler_Commands(t *testing.T) {
	fp := &fakePlayer{view: &player.View{CourseID: "c1"}}
	app := newTestApp(fp, &fakeKV{})
	token := signToken(t, "u1")

	tests := []struct {
		method string
		path   string
		body   string
		want   call
	}{
		{http.MethodPost, "/api/v1/player/c1/select", `{"lesson_id":"l3"}`, call{method: "Select", courseID: "c1", lessonID: "l3"}},
		{http.MethodPost, "/api/v1/player/c1/prev", "", call{method: "Navigate", courseID: "c1", dir: player.DirectionPrev}},
		{http.MethodPost, "/api/v1/player/c1/next", "", call{method: "Navigate", courseID: "c1", dir: player.DirectionNext}},
		{http.MethodPost, "/api/v1/player/c1/complete", "", call{method: "Complete", courseID: "c1"}},
		{http.MethodDelete, "/api/v1/player/c1/notice", "", call{method: "DismissNotice", courseID: "c1"}},
	}
	for _, tt := range tests {
		t.Run(tt.want.method+" "+tt.path, func(t *testing.T) {
			fp.calls = nil
			rec := doRequest(app, tt.method, tt.path, token, tt.body)
			assert.Equal(t, http.StatusOK, rec.Code)
			if assert.Len(t, fp.calls, 1) {
				got := fp.calls[0]
				got.learner = nil
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPlayerHandler_SelectValidation(t *testing.T) {
	fp := &fakePlayer{view: &player.View{}}
	app := newTestApp(fp, &fakeKV{})
	token := signToken(t, "u1")

	rec := doRequest(app, http.MethodPost, "/api/v1/player/c1/select", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	if params, ok := body["invalid_params"].([]interface{}); assert.True(t, ok) && assert.Len(t, params, 1) {
		assert.Equal(t, "lesson_id", params[0].(map[string]interface{})["domain"])
	}
	assert.NotEmpty(t, body["trace_id"])

	rec = doRequest(app, http.MethodPost, "/api/v1/player/c1/select", token, `{"lesson_id":`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, fp.calls)
}

func TestPlayerHandler_ErrorMapping(t *testing.T) {
	token := signToken(t, "u1")
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrCourseNotFound, http.StatusNotFound},
		{domain.ErrBackendUnavailable, http.StatusBadGateway},
		{errors.New("kv down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			app := newTestApp(&fakePlayer{err: tt.err}, &fakeKV{})
			rec := doRequest(app, http.MethodGet, "/api/v1/player/c1", token, "")
			assert.Equal(t, tt.code, rec.Code)
			body := decodeError(t, rec)
			assert.EqualValues(t, tt.code, body["code"])
			assert.Equal(t, tt.err.Error(), body["detail"])
		})
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	app := newTestApp(&fakePlayer{}, &fakeKV{})
	rec := doRequest(app, http.MethodGet, "/api/v1/nothing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.EqualValues(t, http.StatusNotFound, decodeError(t, rec)["code"])
}

func TestServer_Liveness(t *testing.T) {
	kv := &fakeKV{}
	app := newTestApp(&fakePlayer{}, kv)

	rec := doRequest(app, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	kv.pingErr = errors.New("down")
	rec = doRequest(app, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_RecoversPanics(t *testing.T) {
	app := newTestApp(&fakePlayer{}, &fakeKV{})
	app.GET("/boom", func(c echo.Context) error {
		panic("boom")
	})

	rec := doRequest(app, http.MethodGet, "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", decodeError(t, rec)["detail"])
}
