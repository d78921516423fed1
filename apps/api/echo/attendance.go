package echoapi

import (
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/attendance"
	"github.com/AcaDesk/acadesk-server/core/class"
)

type attendanceApi struct {
	svc      *attendance.Service
	classSvc *class.Service
	validate *validator.Validate
	conf     *core.Config
	sched    core.Scheduler

	sheets sheetStore
}

// sheetStore holds the open attendance sheets keyed by sheet id. A sheet is
// visible only to the user that opened it.
type sheetStore struct {
	mu    sync.Mutex
	items map[string]*sheetItem
}

type sheetItem struct {
	owner string // user id
	sheet *attendance.Sheet
}

func (s *sheetStore) put(owner string, sheet *attendance.Sheet) string {
	id := uuid.New().String()
	s.mu.Lock()
	if s.items == nil {
		s.items = make(map[string]*sheetItem)
	}
	s.items[id] = &sheetItem{owner: owner, sheet: sheet}
	s.mu.Unlock()
	return id
}

func (s *sheetStore) get(id, owner string) (*attendance.Sheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.owner != owner {
		return nil, false
	}
	return item.sheet, true
}

func (s *sheetStore) remove(id, owner string) (*attendance.Sheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.owner != owner {
		return nil, false
	}
	delete(s.items, id)
	return item.sheet, true
}

func registerAttendanceAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *attendance.Service,
	classSvc *class.Service,
	validate *validator.Validate,
	conf *core.Config,
) {
	api := attendanceApi{
		svc:      svc,
		classSvc: classSvc,
		validate: validate,
		conf:     conf,
		sched:    core.NewScheduler(),
	}

	ag := g.Group("/attendance/sessions", jwt, teacherMiddleware())
	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.DELETE("/:id", api.destroy, adminMiddleware())
	ag.GET("/:id/records", api.records)
	ag.GET("/:id/summary", api.summary)
	ag.POST("/:id/sheet", api.openSheet)

	sg := g.Group("/attendance/sheet/:sid", jwt, teacherMiddleware())
	sg.GET("", api.sheetMarks)
	sg.PATCH("", api.sheetMark)
	sg.POST("/save", api.sheetSave)
	sg.GET("/summary", api.sheetSummary)
	sg.DELETE("", api.closeSheet)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sess, err := api.svc.CreateSession(ctx.Request().Context(), claims.Actor(), data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := attendance.QueryFilter{
		ClassID: ctx.QueryParam("class_id"),
		From:    queryTime(ctx, "from"),
		To:      queryTime(ctx, "to"),
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	sessions, err := api.svc.FilterSessions(ctx.Request().Context(), claims.Actor(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sess, err := api.svc.GetSession(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding session by ID")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.DeleteSession(ctx.Request().Context(), claims.Actor(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) records(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	records, err := api.svc.Records(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	actor := claims.Actor()

	rosterSize, err := api.rosterSize(ctx, actor, ctx.Param("id"))
	if err != nil {
		return err
	}

	sum, err := api.svc.Summary(ctx.Request().Context(), actor, ctx.Param("id"), rosterSize)
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "summarizing session")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *attendanceApi) rosterSize(ctx echo.Context, actor core.Actor, sessionID string) (int, error) {
	sess, err := api.svc.GetSession(ctx.Request().Context(), actor, sessionID)
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return 0, errHttpNotFound
		}
		return 0, errors.Wrap(err, "finding session by ID")
	}
	rosterIDs, err := api.classSvc.RosterIDs(ctx.Request().Context(), actor, sess.ClassID)
	if err != nil {
		return 0, errors.Wrap(err, "querying roster")
	}
	return len(rosterIDs), nil
}

// Sheets

type (
	sheetResponse struct {
		SheetID string                 `json:"sheet_id"`
		Session attendance.Session     `json:"session"`
		Marks   []attendance.MarkDraft `json:"marks"`
		Summary attendance.RateSummary `json:"summary"`
	}

	sheetMarkRequest struct {
		StudentID string `json:"student_id" validate:"required"`
		Status    string `json:"status"`
		Note      string `json:"note"`
	}

	sheetMarkResponse struct {
		Mark    attendance.MarkDraft   `json:"mark"`
		Dirty   bool                   `json:"dirty"`
		Summary attendance.RateSummary `json:"summary"`
	}
)

func (api *attendanceApi) openSheet(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	actor := claims.Actor()

	sess, err := api.svc.GetSession(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding session by ID")
	}
	rosterIDs, err := api.classSvc.RosterIDs(ctx.Request().Context(), actor, sess.ClassID)
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}

	sheet, err := api.svc.NewSheet(
		ctx.Request().Context(), actor, sess.ID, rosterIDs, api.sched, api.conf.Entry.AutosaveDelay)
	if err != nil {
		return errors.Wrap(err, "opening sheet")
	}
	id := api.sheets.put(claims.Subject, sheet)

	return ctx.JSON(http.StatusCreated, sheetResponse{
		SheetID: id,
		Session: sheet.Session(),
		Marks:   sheet.Marks(),
		Summary: sheet.Summary(),
	})
}

func (api *attendanceApi) sheetMarks(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sheet, ok := api.sheets.get(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}

	return ctx.JSON(http.StatusOK, sheetResponse{
		SheetID: ctx.Param("sid"),
		Session: sheet.Session(),
		Marks:   sheet.Marks(),
		Summary: sheet.Summary(),
	})
}

func (api *attendanceApi) sheetMark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sheet, ok := api.sheets.get(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}

	var data sheetMarkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to sheetMarkRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	mark, err := sheet.Mark(data.StudentID, data.Status, data.Note)
	if err != nil {
		if errors.Cause(err) == attendance.ErrInvalidStatus {
			return core.NewValidationError(err,
				core.FieldError{Field: "status", Error: attendance.ErrInvalidStatus.Error()})
		}
		return errors.Wrap(err, "marking student")
	}

	return ctx.JSON(http.StatusOK, sheetMarkResponse{
		Mark:    mark,
		Dirty:   sheet.Dirty(),
		Summary: sheet.Summary(),
	})
}

func (api *attendanceApi) sheetSave(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sheet, ok := api.sheets.get(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}

	res, err := sheet.Save()
	if err != nil {
		return errors.Wrap(err, "saving sheet")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) sheetSummary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sheet, ok := api.sheets.get(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, sheet.Summary())
}

func (api *attendanceApi) closeSheet(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sheet, ok := api.sheets.remove(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}
	sheet.Close()
	return ctx.NoContent(http.StatusNoContent)
}
