package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-player/internal/infrastructure/logging"
	"github.com/pot-code/course-player/internal/player"
	"go.uber.org/zap"
)

// player commands accepted over websocket
const (
	CommandOpen     = "open"
	CommandSelect   = "select"
	CommandPrev     = "prev"
	CommandNext     = "next"
	CommandComplete = "complete"
	CommandDismiss  = "dismiss"
)

type playerCommand struct {
	Type     string `json:"type"`
	LessonID string `json:"lesson_id"`
}

type playerMessage struct {
	Type  string       `json:"type"` // view or error
	View  *player.View `json:"view,omitempty"`
	Error interface{}  `json:"error,omitempty"`
}

// HandlePlayerSocket serve one command read from conn. Socket level errors end the session,
// command errors are answered and the session goes on.
func (ph *PlayerHandler) HandlePlayerSocket(c echo.Context, conn *websocket.Conn) error {
	ctx := c.Request().Context()
	logger := logging.ExtractLoggerFromContext(ctx)

	learner, courseID, err := ph.parseTarget(c)
	if err != nil {
		conn.WriteJSON(errorMessage(c, err))
		return err
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			logger.Warn("Player socket closed", zap.Error(err))
		}
		return err
	}
	cmd := new(playerCommand)
	if err := json.Unmarshal(data, cmd); err != nil {
		return conn.WriteJSON(errorMessage(c, echo.NewHTTPError(http.StatusUnprocessableEntity, "Malformed command")))
	}
	if errs := ph.validateCommand(cmd); errs != nil {
		return conn.WriteJSON(errorMessage(c, errs))
	}

	var view *player.View
	switch cmd.Type {
	case CommandOpen:
		view, err = ph.PlayerUseCase.Open(ctx, learner, courseID)
	case CommandSelect:
		view, err = ph.PlayerUseCase.Select(ctx, learner, courseID, cmd.LessonID)
	case CommandPrev:
		view, err = ph.PlayerUseCase.Navigate(ctx, learner, courseID, player.DirectionPrev)
	case CommandNext:
		view, err = ph.PlayerUseCase.Navigate(ctx, learner, courseID, player.DirectionNext)
	case CommandComplete:
		view, err = ph.PlayerUseCase.Complete(ctx, learner, courseID, func(pending *player.View) {
			if werr := conn.WriteJSON(&playerMessage{Type: "view", View: pending}); werr != nil {
				logger.Debug("Failed to push pending view", zap.Error(werr))
			}
		})
	case CommandDismiss:
		view, err = ph.PlayerUseCase.DismissNotice(ctx, learner, courseID)
	}
	if err != nil {
		logger.Warn("Player command failed", zap.String("command", cmd.Type), zap.Error(err))
		return conn.WriteJSON(errorMessage(c, err))
	}
	return conn.WriteJSON(&playerMessage{Type: "view", View: view})
}

func (ph *PlayerHandler) validateCommand(cmd *playerCommand) error {
	errs := ph.Validator.Var("type", cmd.Type, "required,oneof=open select prev next complete dismiss")
	if errs == nil && cmd.Type == CommandSelect {
		errs = ph.Validator.Var("lesson_id", cmd.LessonID, "required,max=64")
	}
	if errs != nil {
		return NewRESTValidationError(http.StatusBadRequest, "Failed to validate command", errs)
	}
	return nil
}

func errorMessage(c echo.Context, err error) *playerMessage {
	var rve *RESTValidationError
	if errors.As(err, &rve) {
		return &playerMessage{Type: "error", Error: rve.SetTraceID(traceID(c))}
	}
	return &playerMessage{Type: "error", Error: NewRESTErrorFromError(err).SetTraceID(traceID(c))}
}
