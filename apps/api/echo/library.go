package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AcaDesk/acadesk-server/core/library"
)

type libraryApi struct {
	svc      *library.Service
	validate *validator.Validate
}

func registerLibraryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *library.Service, validate *validator.Validate) {
	api := libraryApi{svc: svc, validate: validate}

	lg := g.Group("/library", jwt)
	lg.POST("/books", api.addBook, staffMiddleware())
	lg.GET("/books", api.queryBooks)
	lg.GET("/books/:id", api.retrieveBook)
	lg.DELETE("/books/:id", api.removeBook, staffMiddleware())

	lg.POST("/loans", api.checkout, staffMiddleware())
	lg.POST("/loans/:id/return", api.returnLoan, staffMiddleware())
	lg.GET("/overdue", api.overdue)
}

func (api *libraryApi) addBook(ctx echo.Context) error {
	var data library.NewBook
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBook")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	book, err := api.svc.AddBook(ctx.Request().Context(), claims.Actor(), data)
	if err != nil {
		return errors.Wrap(err, "adding book")
	}
	return ctx.JSON(http.StatusCreated, book)
}

func (api *libraryApi) queryBooks(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := library.QueryFilter{Search: ctx.QueryParam("search")}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	books, err := api.svc.FilterBooks(ctx.Request().Context(), claims.Actor(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying books")
	}
	if books == nil {
		books = []library.Book{}
	}
	return ctx.JSON(http.StatusOK, books)
}

func (api *libraryApi) retrieveBook(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	book, err := api.svc.GetBook(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == library.ErrBookNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding book by ID")
	}
	return ctx.JSON(http.StatusOK, book)
}

func (api *libraryApi) removeBook(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.RemoveBook(ctx.Request().Context(), claims.Actor(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == library.ErrBookNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "removing book")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *libraryApi) checkout(ctx echo.Context) error {
	var data library.NewLoan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLoan")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	loan, err := api.svc.Checkout(ctx.Request().Context(), claims.Actor(), data)
	if err != nil {
		if errors.Cause(err) == library.ErrBookNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "checking out book")
	}
	return ctx.JSON(http.StatusCreated, loan)
}

func (api *libraryApi) returnLoan(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	loan, err := api.svc.Return(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == library.ErrLoanNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "returning loan")
	}
	return ctx.JSON(http.StatusOK, loan)
}

func (api *libraryApi) overdue(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	loans, err := api.svc.Overdue(ctx.Request().Context(), claims.Actor())
	if err != nil {
		return errors.Wrap(err, "querying overdue loans")
	}
	if loans == nil {
		loans = []library.Loan{}
	}
	return ctx.JSON(http.StatusOK, loans)
}
