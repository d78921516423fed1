package echoapi

import (
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/class"
	"github.com/AcaDesk/acadesk-server/core/entry"
	"github.com/AcaDesk/acadesk-server/core/exam"
)

type gradebookApi struct {
	svc      *exam.Service
	classSvc *class.Service
	validate *validator.Validate
	conf     *core.Config
	sched    core.Scheduler

	sessions entrySessionStore
}

// entrySessionStore holds the open grade-entry sessions keyed by session id.
// A session is visible only to the user that opened it.
type entrySessionStore struct {
	mu    sync.Mutex
	items map[string]*entrySessionItem
}

type entrySessionItem struct {
	owner string // user id
	sess  *exam.EntrySession
}

func (s *entrySessionStore) put(owner string, sess *exam.EntrySession) string {
	id := uuid.New().String()
	s.mu.Lock()
	if s.items == nil {
		s.items = make(map[string]*entrySessionItem)
	}
	s.items[id] = &entrySessionItem{owner: owner, sess: sess}
	s.mu.Unlock()
	return id
}

func (s *entrySessionStore) get(id, owner string) (*exam.EntrySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.owner != owner {
		return nil, false
	}
	return item.sess, true
}

func (s *entrySessionStore) remove(id, owner string) (*exam.EntrySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.owner != owner {
		return nil, false
	}
	delete(s.items, id)
	return item.sess, true
}

func registerGradebookAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *exam.Service,
	classSvc *class.Service,
	validate *validator.Validate,
	conf *core.Config,
) {
	api := gradebookApi{
		svc:      svc,
		classSvc: classSvc,
		validate: validate,
		conf:     conf,
		sched:    core.NewScheduler(),
	}

	eg := g.Group("/gradebook/exams", jwt, teacherMiddleware())
	eg.POST("", api.create)
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy, adminMiddleware())
	eg.GET("/:id/scores", api.scores)
	eg.GET("/:id/summary", api.summary)
	eg.POST("/:id/entry", api.openEntry)

	ng := g.Group("/gradebook/entry/:sid", jwt, teacherMiddleware())
	ng.GET("", api.entryDrafts)
	ng.PATCH("", api.entryEdit)
	ng.POST("/save", api.entrySave)
	ng.GET("/summary", api.entrySummary)
	ng.DELETE("", api.closeEntry)
}

func (api *gradebookApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ex, err := api.svc.Create(ctx.Request().Context(), claims.Actor(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, ex)
}

func (api *gradebookApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := exam.QueryFilter{
		ClassID: ctx.QueryParam("class_id"),
		From:    queryTime(ctx, "from"),
		To:      queryTime(ctx, "to"),
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	exams, err := api.svc.Filter(ctx.Request().Context(), claims.Actor(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	if exams == nil {
		exams = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *gradebookApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ex, err := api.svc.Get(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding exam by ID")
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *gradebookApi) update(ctx echo.Context) error {
	var data exam.UpdateExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ex, err := api.svc.Update(ctx.Request().Context(), claims.Actor(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *gradebookApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.Actor(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradebookApi) scores(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	scores, err := api.svc.Scores(ctx.Request().Context(), claims.Actor(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying scores")
	}
	if scores == nil {
		scores = []exam.StudentScore{}
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *gradebookApi) summary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sum, err := api.svc.Summary(ctx.Request().Context(), claims.Actor(), ctx.Param("id"), api.summaryOpts())
	if err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "summarizing scores")
	}
	return ctx.JSON(http.StatusOK, sum)
}

// Entry sessions

type (
	// draftView is the wire shape of one in-flight score row.
	draftView struct {
		StudentID string `json:"student_id"`
		RawText   string `json:"raw_text"`
		Correct   *int   `json:"correct"`
		Total     int    `json:"total"`
		Percent   int    `json:"percent"`
		Feedback  string `json:"feedback"`
		Entered   bool   `json:"entered"`
	}

	entrySessionResponse struct {
		SessionID string        `json:"session_id"`
		Exam      exam.Exam     `json:"exam"`
		Drafts    []draftView   `json:"drafts"`
		Summary   entry.Summary `json:"summary"`
	}

	entryEditRequest struct {
		StudentID string  `json:"student_id" validate:"required"`
		ScoreText *string `json:"score_text"`
		Feedback  *string `json:"feedback"`
	}

	entryEditResponse struct {
		Draft   draftView     `json:"draft"`
		Dirty   bool          `json:"dirty"`
		Summary entry.Summary `json:"summary"`
	}
)

func draftViews(drafts []entry.ScoreDraft) []draftView {
	views := make([]draftView, 0, len(drafts))
	for _, d := range drafts {
		views = append(views, newDraftView(d))
	}
	return views
}

func newDraftView(d entry.ScoreDraft) draftView {
	return draftView{
		StudentID: d.StudentID,
		RawText:   d.RawText,
		Correct:   d.Correct,
		Total:     d.Total,
		Percent:   d.Percent,
		Feedback:  d.Feedback,
		Entered:   d.Entered(),
	}
}

func (api *gradebookApi) summaryOpts() entry.SummaryOpts {
	return entry.SummaryOpts{PassMark: api.conf.Entry.PassMark}
}

func (api *gradebookApi) openEntry(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	actor := claims.Actor()

	ex, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding exam by ID")
	}
	rosterIDs, err := api.classSvc.RosterIDs(ctx.Request().Context(), actor, ex.ClassID)
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}

	sess, err := api.svc.NewEntrySession(
		ctx.Request().Context(), actor, ex.ID, rosterIDs, api.sched, api.conf.Entry.AutosaveDelay)
	if err != nil {
		return errors.Wrap(err, "opening entry session")
	}
	id := api.sessions.put(claims.Subject, sess)

	return ctx.JSON(http.StatusCreated, entrySessionResponse{
		SessionID: id,
		Exam:      sess.Exam(),
		Drafts:    draftViews(sess.Drafts()),
		Summary:   sess.Summary(api.summaryOpts()),
	})
}

func (api *gradebookApi) entryDrafts(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sess, ok := api.sessions.get(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}

	return ctx.JSON(http.StatusOK, entrySessionResponse{
		SessionID: ctx.Param("sid"),
		Exam:      sess.Exam(),
		Drafts:    draftViews(sess.Drafts()),
		Summary:   sess.Summary(api.summaryOpts()),
	})
}

func (api *gradebookApi) entryEdit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sess, ok := api.sessions.get(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}

	var data entryEditRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to entryEditRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	var d entry.ScoreDraft
	if data.ScoreText != nil {
		d = sess.SetScoreText(data.StudentID, *data.ScoreText)
	}
	if data.Feedback != nil {
		d = sess.SetFeedback(data.StudentID, *data.Feedback)
	}
	if data.ScoreText == nil && data.Feedback == nil {
		return core.NewValidationError(nil,
			core.FieldError{Field: "score_text", Error: "one of score_text or feedback is required"})
	}

	return ctx.JSON(http.StatusOK, entryEditResponse{
		Draft:   newDraftView(d),
		Dirty:   sess.Dirty(),
		Summary: sess.Summary(api.summaryOpts()),
	})
}

func (api *gradebookApi) entrySave(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sess, ok := api.sessions.get(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}

	res, err := sess.Save()
	if err != nil {
		return errors.Wrap(err, "saving entry session")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *gradebookApi) entrySummary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sess, ok := api.sessions.get(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, sess.Summary(api.summaryOpts()))
}

func (api *gradebookApi) closeEntry(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	sess, ok := api.sessions.remove(ctx.Param("sid"), claims.Subject)
	if !ok {
		return errHttpNotFound
	}
	sess.Close()
	return ctx.NoContent(http.StatusNoContent)
}
