package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AcaDesk/acadesk-server/core/billing"
)

type billingApi struct {
	svc      *billing.Service
	validate *validator.Validate
}

func registerBillingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *billing.Service, validate *validator.Validate) {
	api := billingApi{svc: svc, validate: validate}

	bg := g.Group("/billing", jwt, staffMiddleware())
	bg.POST("/invoices", api.issue)
	bg.GET("/invoices", api.query)
	bg.GET("/invoices/:id", api.retrieve)
	bg.PATCH("/invoices/:id/status", api.setStatus)
	bg.GET("/invoices/:id/payments", api.queryPayments)
	bg.POST("/payments", api.recordPayment)
	bg.GET("/revenue", api.revenue)
}

func (api *billingApi) issue(ctx echo.Context) error {
	var data billing.NewInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvoice")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	inv, err := api.svc.Issue(ctx.Request().Context(), claims.Actor(), data)
	if err != nil {
		return errors.Wrap(err, "issuing invoice")
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *billingApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := billing.QueryFilter{
		StudentID: ctx.QueryParam("student_id"),
		Period:    ctx.QueryParam("period"),
		Status:    ctx.QueryParam("status"),
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	invoices, err := api.svc.Filter(ctx.Request().Context(), claims.Actor(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	return ctx.JSON(http.StatusOK, invoices)
}

func (api *billingApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	inv, err := api.svc.Get(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == billing.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding invoice by ID")
	}
	return ctx.JSON(http.StatusOK, inv)
}

type invoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (api *billingApi) setStatus(ctx echo.Context) error {
	var data invoiceStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to invoiceStatusRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	inv, err := api.svc.SetStatus(ctx.Request().Context(), claims.Actor(), ctx.Param("id"), data.Status)
	if err != nil {
		if errors.Cause(err) == billing.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting invoice status")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *billingApi) queryPayments(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	payments, err := api.svc.Payments(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == billing.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []billing.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *billingApi) recordPayment(ctx echo.Context) error {
	var data billing.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, err := api.svc.RecordPayment(ctx.Request().Context(), claims.Actor(), data)
	if err != nil {
		if errors.Cause(err) == billing.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *billingApi) revenue(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sum, err := api.svc.Revenue(ctx.Request().Context(), claims.Actor(), ctx.QueryParam("period"))
	if err != nil {
		return errors.Wrap(err, "summarizing revenue")
	}
	return ctx.JSON(http.StatusOK, sum)
}
