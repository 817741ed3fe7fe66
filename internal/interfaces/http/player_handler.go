package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-player/internal/domain"
	"github.com/pot-code/course-player/internal/infrastructure/auth"
	"github.com/pot-code/course-player/internal/infrastructure/validate"
	"github.com/pot-code/course-player/internal/player"
)

// PlayerHandler course player endpoints
type PlayerHandler struct {
	PlayerUseCase player.PlayerUseCase
	JWTUtil       *auth.JWTUtil
	Validator     validate.Validator
}

type selectLessonBody struct {
	LessonID string `json:"lesson_id" validate:"required,max=64"`
}

// NewPlayerHandler ...
func NewPlayerHandler(PlayerUseCase player.PlayerUseCase, JWTUtil *auth.JWTUtil, Validator validate.Validator) *PlayerHandler {
	return &PlayerHandler{
		PlayerUseCase: PlayerUseCase,
		JWTUtil:       JWTUtil,
		Validator:     Validator,
	}
}

// HandleOpen GET /player/:course_id
func (ph *PlayerHandler) HandleOpen(c echo.Context) error {
	learner, courseID, err := ph.parseTarget(c)
	if err != nil {
		return err
	}
	view, err := ph.PlayerUseCase.Open(c.Request().Context(), learner, courseID)
	return respondView(c, view, err)
}

// HandleSelect POST /player/:course_id/select
func (ph *PlayerHandler) HandleSelect(c echo.Context) error {
	learner, courseID, err := ph.parseTarget(c)
	if err != nil {
		return err
	}

	body := new(selectLessonBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, "Failed to bind request body").SetTraceID(traceID(c)))
	}
	if errs := ph.Validator.Struct(body); errs != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", errs).SetTraceID(traceID(c)))
	}

	view, err := ph.PlayerUseCase.Select(c.Request().Context(), learner, courseID, body.LessonID)
	return respondView(c, view, err)
}

// HandlePrev POST /player/:course_id/prev
func (ph *PlayerHandler) HandlePrev(c echo.Context) error {
	return ph.navigate(c, player.DirectionPrev)
}

// HandleNext POST /player/:course_id/next
func (ph *PlayerHandler) HandleNext(c echo.Context) error {
	return ph.navigate(c, player.DirectionNext)
}

// HandleComplete POST /player/:course_id/complete
func (ph *PlayerHandler) HandleComplete(c echo.Context) error {
	learner, courseID, err := ph.parseTarget(c)
	if err != nil {
		return err
	}
	view, err := ph.PlayerUseCase.Complete(c.Request().Context(), learner, courseID, nil)
	return respondView(c, view, err)
}

// HandleDismissNotice DELETE /player/:course_id/notice
func (ph *PlayerHandler) HandleDismissNotice(c echo.Context) error {
	learner, courseID, err := ph.parseTarget(c)
	if err != nil {
		return err
	}
	view, err := ph.PlayerUseCase.DismissNotice(c.Request().Context(), learner, courseID)
	return respondView(c, view, err)
}

func (ph *PlayerHandler) navigate(c echo.Context, dir player.Direction) error {
	learner, courseID, err := ph.parseTarget(c)
	if err != nil {
		return err
	}
	view, err := ph.PlayerUseCase.Navigate(c.Request().Context(), learner, courseID, dir)
	return respondView(c, view, err)
}

// parseTarget read the learner and course of the request, invalid params come back as *RESTValidationError
func (ph *PlayerHandler) parseTarget(c echo.Context) (*domain.LearnerModel, string, error) {
	learner := ph.JWTUtil.GetLearner(c)
	if learner == nil {
		return nil, "", echo.NewHTTPError(http.StatusUnauthorized)
	}
	courseID := c.Param("course_id")
	if errs := ph.Validator.Var("course_id", courseID, "required,max=64"); errs != nil {
		return nil, "", NewRESTValidationError(http.StatusBadRequest, "Failed to validate params", errs)
	}
	return learner, courseID, nil
}

func respondView(c echo.Context, view *player.View, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func traceID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
