package http

import (
	"github.com/labstack/echo/v4"
	infra "github.com/pot-code/course-player/internal/infrastructure"
)

func v1Endpoint(
	websocket *infra.Websocket,
	PlayerHandler *PlayerHandler,
	jwtMiddleware echo.MiddlewareFunc,
	refreshMiddleware echo.MiddlewareFunc,
	traceLoggerMiddleware echo.MiddlewareFunc,
) *endpoint {
	return &endpoint{
		apiVersion:  "api/v1",
		middlewares: []echo.MiddlewareFunc{traceLoggerMiddleware},
		groups: []*apiGroup{
			{
				prefix:      "/player",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware, refreshMiddleware},
				routes: []*route{
					{"GET", "/:course_id", PlayerHandler.HandleOpen, nil},
					{"POST", "/:course_id/select", PlayerHandler.HandleSelect, nil},
					{"POST", "/:course_id/prev", PlayerHandler.HandlePrev, nil},
					{"POST", "/:course_id/next", PlayerHandler.HandleNext, nil},
					{"POST", "/:course_id/complete", PlayerHandler.HandleComplete, nil},
					{"DELETE", "/:course_id/notice", PlayerHandler.HandleDismissNotice, nil},
				},
			},
			{
				prefix:      "/ws",
				middlewares: []echo.MiddlewareFunc{jwtMiddleware},
				routes: []*route{
					{"GET", "/player/:course_id", websocket.WithHeartbeat(PlayerHandler.HandlePlayerSocket), nil},
				},
			},
		},
	}
}
