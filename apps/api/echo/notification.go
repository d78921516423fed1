package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/notification"
)

type notificationApi struct {
	svc      *notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, validate *validator.Validate) {
	api := notificationApi{svc: svc, validate: validate}

	mg := g.Group("/messages", jwt, staffMiddleware())
	mg.POST("", api.queue)
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)
	mg.POST("/:id/sent", api.markSent)
	mg.POST("/:id/failed", api.markFailed)
}

func (api *notificationApi) queue(ctx echo.Context) error {
	var data notification.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	m, err := api.svc.Queue(ctx.Request().Context(), claims.Actor(), data)
	if err != nil {
		return errors.Wrap(err, "queueing message")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *notificationApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := notification.QueryFilter{
		StudentID: ctx.QueryParam("student_id"),
		Channel:   ctx.QueryParam("channel"),
		Status:    ctx.QueryParam("status"),
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	msgs, err := api.svc.Filter(ctx.Request().Context(), claims.Actor(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	if msgs == nil {
		msgs = []notification.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *notificationApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	m, err := api.svc.Get(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding message by ID")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *notificationApi) markSent(ctx echo.Context) error {
	return api.setStatus(ctx, api.svc.MarkSent)
}

func (api *notificationApi) markFailed(ctx echo.Context) error {
	return api.setStatus(ctx, api.svc.MarkFailed)
}

func (api *notificationApi) setStatus(
	ctx echo.Context,
	set func(context.Context, core.Actor, string) (notification.Message, error),
) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	m, err := set(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting message status")
	}
	return ctx.JSON(http.StatusOK, m)
}
