package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/class"
	"github.com/AcaDesk/acadesk-server/core/exam"
	"github.com/AcaDesk/acadesk-server/core/student"
	"github.com/AcaDesk/acadesk-server/core/user"
)

// gradebookFixture seeds a class of 3 students with one exam and returns the
// grading teacher's token.
func gradebookFixture(t *testing.T, env *testEnv) (token string, ex exam.Exam, studentIDs []string) {
	t.Helper()
	ctx := context.Background()

	teacher := env.createUser(t, org1, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	actor := core.Actor{UserID: teacher.ID, OrgID: teacher.OrgID}

	cl, err := env.clsSvc.Create(ctx, actor, class.NewClass{Name: "Math G5", Capacity: 12, Schedule: "Mon/Wed 16:00"})
	if err != nil {
		t.Fatalf("clsSvc.Create() failed: %v", err)
	}
	for _, name := range []string{"Ada Kim", "Ben Park", "Chloe Lee"} {
		std, err := env.stdSvc.Create(ctx, actor, student.NewStudent{Name: name, GradeLevel: "5"})
		if err != nil {
			t.Fatalf("stdSvc.Create() failed: %v", err)
		}
		if _, err := env.clsSvc.Enroll(ctx, actor, cl.ID, std.ID); err != nil {
			t.Fatalf("clsSvc.Enroll() failed: %v", err)
		}
		studentIDs = append(studentIDs, std.ID)
	}

	ex, err = env.exmSvc.Create(ctx, actor, exam.NewExam{
		ClassID: cl.ID, Name: "Week 3 Quiz", ExamDate: time.Now().UTC(), TotalQuestions: 20,
	})
	if err != nil {
		t.Fatalf("exmSvc.Create() failed: %v", err)
	}
	return getToken(t, teacher), ex, studentIDs
}

func Test_gradebookApi_examCRUD(t *testing.T) {
	env := newTestEnv(t)
	token, ex, _ := gradebookFixture(t, env)
	clerk := env.createUser(t, org1, "Front Desk", "clerk1", "clerk@test.cd", "", []string{user.RoleStaff}, true)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/v1/gradebook/exams",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Teacher required", method: http.MethodGet, path: "/v1/gradebook/exams", token: getToken(t, clerk),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", method: http.MethodPost, path: "/v1/gradebook/exams", token: token,
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"class_id": "this field is required", "name": "this field is required",
				"exam_date": "this field is required", "total_questions": "this field is required",
			}),
		},
		{
			name: "query by class", method: http.MethodGet, path: "/v1/gradebook/exams?class_id=" + ex.ClassID,
			token: token, wantCode: http.StatusOK, wantData: marchallList(t, ex),
		},
		{
			name: "query another class", method: http.MethodGet, path: "/v1/gradebook/exams?class_id=lol",
			token: token, wantCode: http.StatusOK, wantData: marchallList(t),
		},
		{
			name: "retrieve", method: http.MethodGet, path: "/v1/gradebook/exams/" + ex.ID,
			token: token, wantCode: http.StatusOK, wantData: marchallObj(t, ex),
		},
		{
			name: "retrieve unknown", method: http.MethodGet, path: "/v1/gradebook/exams/lol",
			token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "destroy needs admin", method: http.MethodDelete, path: "/v1/gradebook/exams/" + ex.ID,
			token: token, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_gradebookApi_entrySession(t *testing.T) {
	env := newTestEnv(t)
	token, ex, studentIDs := gradebookFixture(t, env)
	otherTeacher := env.createUser(t, org1, "Other", "teach2", "other@test.cd", "", []string{user.RoleTeacher}, true)

	// open a session over the roster
	req, rec := newAuthRequest(http.MethodPost, "/v1/gradebook/exams/"+ex.ID+"/entry", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("openEntry failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var opened entrySessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &opened); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if opened.SessionID == "" {
		t.Fatal("failed! empty session id")
	}
	if len(opened.Drafts) != 3 {
		t.Fatalf("failed! len(Drafts) = %d; want 3", len(opened.Drafts))
	}
	for _, d := range opened.Drafts {
		if d.Entered {
			t.Errorf("failed! draft %s entered before any input", d.StudentID)
		}
		if d.Total != ex.TotalQuestions {
			t.Errorf("failed! draft total = %d; want %d", d.Total, ex.TotalQuestions)
		}
	}
	if opened.Summary.TotalCount != 3 || opened.Summary.EnteredCount != 0 {
		t.Errorf("failed! summary = %+v; want 3 rows, none entered", opened.Summary)
	}

	sessPath := "/v1/gradebook/entry/" + opened.SessionID

	// the session is private to the teacher that opened it
	req, rec = newAuthRequest(http.MethodGet, sessPath, getToken(t, otherTeacher))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	edit := func(body interface{}) entryEditResponse {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPatch, sessPath, token, marchallObj(t, body))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("entryEdit failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp entryEditResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		return resp
	}
	sPtr := func(s string) *string { return &s }

	// "17/20" carries its own total
	resp := edit(entryEditRequest{StudentID: studentIDs[0], ScoreText: sPtr("17/20")})
	if !resp.Dirty {
		t.Error("failed! session not dirty after an edit")
	}
	if resp.Draft.Correct == nil || *resp.Draft.Correct != 17 || resp.Draft.Total != 20 || resp.Draft.Percent != 85 {
		t.Errorf("failed! draft = %+v; want 17/20 = 85%%", resp.Draft)
	}

	// a bare number falls back to the exam's question count
	resp = edit(entryEditRequest{StudentID: studentIDs[1], ScoreText: sPtr(" 15 ")})
	if resp.Draft.Correct == nil || *resp.Draft.Correct != 15 || resp.Draft.Total != 20 || resp.Draft.Percent != 75 {
		t.Errorf("failed! draft = %+v; want 15/20 = 75%%", resp.Draft)
	}

	// garbage keeps the raw text and stays un-entered
	resp = edit(entryEditRequest{StudentID: studentIDs[2], ScoreText: sPtr("absent")})
	if resp.Draft.Entered || resp.Draft.RawText != "absent" {
		t.Errorf("failed! draft = %+v; want raw text kept, not entered", resp.Draft)
	}

	// feedback alone does not mark the row entered
	resp = edit(entryEditRequest{StudentID: studentIDs[2], Feedback: sPtr("was sick")})
	if resp.Draft.Entered || resp.Draft.Feedback != "was sick" {
		t.Errorf("failed! draft = %+v; want feedback only", resp.Draft)
	}
	if resp.Summary.EnteredCount != 2 {
		t.Errorf("failed! EnteredCount = %d; want 2", resp.Summary.EnteredCount)
	}

	// one of score_text or feedback is required
	req, rec = newAuthRequest(http.MethodPatch, sessPath, token, marchallObj(t, entryEditRequest{StudentID: studentIDs[0]}))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// explicit save commits the 2 complete rows and skips the rest
	req, rec = newAuthRequest(http.MethodPost, sessPath+"/save", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("entrySave failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var saveRes exam.SaveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &saveRes); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if saveRes.Saved != 2 || saveRes.Skipped != 1 {
		t.Errorf("failed! SaveResult = %+v; want 2 saved, 1 skipped", saveRes)
	}

	// committed scores are visible on the exam
	req, rec = newAuthRequest(http.MethodGet, "/v1/gradebook/exams/"+ex.ID+"/scores", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("scores failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var scores []exam.StudentScore
	if err := json.Unmarshal(rec.Body.Bytes(), &scores); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("failed! len(scores) = %d; want 2", len(scores))
	}
	byStudent := make(map[string]exam.StudentScore, len(scores))
	for _, s := range scores {
		byStudent[s.StudentID] = s
	}
	if s := byStudent[studentIDs[0]]; s.Correct != 17 || s.Total != 20 || s.Percent != 85 {
		t.Errorf("failed! score = %+v; want 17/20 = 85%%", s)
	}
	if s := byStudent[studentIDs[1]]; s.Correct != 15 || s.Total != 20 || s.Percent != 75 {
		t.Errorf("failed! score = %+v; want 15/20 = 75%%", s)
	}

	// correcting a cell and saving again overwrites, never duplicates
	edit(entryEditRequest{StudentID: studentIDs[0], ScoreText: sPtr("18/20")})
	req, rec = newAuthRequest(http.MethodPost, sessPath+"/save", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("entrySave failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	req, rec = newAuthRequest(http.MethodGet, "/v1/gradebook/exams/"+ex.ID+"/scores", token)
	env.server.ServeHTTP(rec, req)
	scores = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &scores); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("failed! len(scores) = %d after re-save; want 2", len(scores))
	}
	for _, s := range scores {
		if s.StudentID == studentIDs[0] && (s.Correct != 18 || s.Percent != 90) {
			t.Errorf("failed! score = %+v; want 18/20 = 90%%", s)
		}
	}

	// exam summary over committed rows: both 85 and 90 clear the pass mark
	req, rec = newAuthRequest(http.MethodGet, "/v1/gradebook/exams/"+ex.ID+"/summary", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var sum struct {
		Average      float64 `json:"average"`
		PassCount    int     `json:"pass_count"`
		EnteredCount int     `json:"entered_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if sum.EnteredCount != 2 || sum.PassCount != 2 {
		t.Errorf("failed! summary = %+v; want 2 entered, 2 passed", sum)
	}

	// closing the session makes it unreachable
	req, rec = newAuthRequest(http.MethodDelete, sessPath, token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("closeEntry failed! code = %v", rec.Code)
	}
	req, rec = newAuthRequest(http.MethodGet, sessPath, token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusNotFound)
	}
}

func Test_gradebookApi_entrySeedsFromCommitted(t *testing.T) {
	env := newTestEnv(t)
	token, ex, studentIDs := gradebookFixture(t, env)

	open := func() entrySessionResponse {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/gradebook/exams/"+ex.ID+"/entry", token)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("openEntry failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp entrySessionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		return resp
	}
	sPtr := func(s string) *string { return &s }

	first := open()
	sessPath := "/v1/gradebook/entry/" + first.SessionID
	req, rec := newAuthRequest(http.MethodPatch, sessPath, token,
		marchallObj(t, entryEditRequest{StudentID: studentIDs[0], ScoreText: sPtr("19/20")}))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("entryEdit failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	req, rec = newAuthRequest(http.MethodPost, sessPath+"/save", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("entrySave failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	// a fresh session picks the committed row back up
	second := open()
	var seeded *draftView
	for i := range second.Drafts {
		if second.Drafts[i].StudentID == studentIDs[0] {
			seeded = &second.Drafts[i]
		}
	}
	if seeded == nil {
		t.Fatal("failed! committed student missing from the new session")
	}
	if !seeded.Entered || seeded.Correct == nil || *seeded.Correct != 19 || seeded.Percent != 95 {
		t.Errorf("failed! seeded draft = %+v; want 19/20 = 95%%", *seeded)
	}
	if second.Summary.EnteredCount != 1 {
		t.Errorf("failed! EnteredCount = %d; want 1", second.Summary.EnteredCount)
	}
}
