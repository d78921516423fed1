package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/attendance"
	"github.com/AcaDesk/acadesk-server/core/class"
	"github.com/AcaDesk/acadesk-server/core/student"
	"github.com/AcaDesk/acadesk-server/core/user"
)

// attendanceFixture seeds a class of 3 students with one session and returns
// the calling teacher's token.
func attendanceFixture(t *testing.T, env *testEnv) (token string, sess attendance.Session, studentIDs []string) {
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

	sess, err = env.attSvc.CreateSession(ctx, actor, attendance.NewSession{
		ClassID: cl.ID, SessionDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("attSvc.CreateSession() failed: %v", err)
	}
	return getToken(t, teacher), sess, studentIDs
}

func Test_attendanceApi_sessions(t *testing.T) {
	env := newTestEnv(t)
	token, sess, _ := attendanceFixture(t, env)
	clerk := env.createUser(t, org1, "Front Desk", "clerk1", "clerk@test.cd", "", []string{user.RoleStaff}, true)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/v1/attendance/sessions",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Teacher required", method: http.MethodGet, path: "/v1/attendance/sessions", token: getToken(t, clerk),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", method: http.MethodPost, path: "/v1/attendance/sessions", token: token,
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"class_id": "this field is required", "session_date": "this field is required",
			}),
		},
		{
			name: "query by class", method: http.MethodGet, path: "/v1/attendance/sessions?class_id=" + sess.ClassID,
			token: token, wantCode: http.StatusOK, wantData: marchallList(t, sess),
		},
		{
			name: "retrieve", method: http.MethodGet, path: "/v1/attendance/sessions/" + sess.ID,
			token: token, wantCode: http.StatusOK, wantData: marchallObj(t, sess),
		},
		{
			name: "retrieve unknown", method: http.MethodGet, path: "/v1/attendance/sessions/lol",
			token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "destroy needs admin", method: http.MethodDelete, path: "/v1/attendance/sessions/" + sess.ID,
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

func Test_attendanceApi_sheet(t *testing.T) {
	env := newTestEnv(t)
	token, sess, studentIDs := attendanceFixture(t, env)
	otherTeacher := env.createUser(t, org1, "Other", "teach2", "other@test.cd", "", []string{user.RoleTeacher}, true)

	// open a sheet over the roster
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/sessions/"+sess.ID+"/sheet", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("openSheet failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var opened sheetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &opened); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if opened.SheetID == "" {
		t.Fatal("failed! empty sheet id")
	}
	if len(opened.Marks) != 3 {
		t.Fatalf("failed! len(Marks) = %d; want 3", len(opened.Marks))
	}
	for _, m := range opened.Marks {
		if m.Marked() {
			t.Errorf("failed! mark %s set before any input", m.StudentID)
		}
	}
	if opened.Summary.Unmarked != 3 || opened.Summary.Marked != 0 {
		t.Errorf("failed! summary = %+v; want 3 unmarked", opened.Summary)
	}

	sheetPath := "/v1/attendance/sheet/" + opened.SheetID

	// the sheet is private to the teacher that opened it
	req, rec = newAuthRequest(http.MethodGet, sheetPath, getToken(t, otherTeacher))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	mark := func(studentID, status, note string) sheetMarkResponse {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPatch, sheetPath, token,
			marchallObj(t, sheetMarkRequest{StudentID: studentID, Status: status, Note: note}))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("sheetMark failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp sheetMarkResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		return resp
	}

	resp := mark(studentIDs[0], attendance.StatusPresent, "")
	if !resp.Dirty {
		t.Error("failed! sheet not dirty after a mark")
	}
	if resp.Mark.Status != attendance.StatusPresent {
		t.Errorf("failed! mark = %+v; want present", resp.Mark)
	}

	resp = mark(studentIDs[1], attendance.StatusLate, "missed the bus")
	if resp.Mark.Note != "missed the bus" {
		t.Errorf("failed! mark = %+v; want its note kept", resp.Mark)
	}
	// both marked rows count into the rate; the unmarked row does not
	if resp.Summary.Marked != 2 || resp.Summary.Unmarked != 1 || resp.Summary.Rate != 100 {
		t.Errorf("failed! summary = %+v; want 2 marked, rate 100", resp.Summary)
	}

	// unknown statuses are rejected before touching the draft
	req, rec = newAuthRequest(http.MethodPatch, sheetPath, token,
		marchallObj(t, sheetMarkRequest{StudentID: studentIDs[2], Status: "lol"}))
	env.server.ServeHTTP(rec, req)
	tt := httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"status": "invalid attendance status"}),
	}
	checkCodeAndData(t, tt, rec)

	// explicit save commits the marked rows and skips the rest
	req, rec = newAuthRequest(http.MethodPost, sheetPath+"/save", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sheetSave failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var saveRes attendance.SaveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &saveRes); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if saveRes.Saved != 2 || saveRes.Skipped != 1 {
		t.Errorf("failed! SaveResult = %+v; want 2 saved, 1 skipped", saveRes)
	}

	// correcting a mark and saving again overwrites, never duplicates
	mark(studentIDs[0], attendance.StatusAbsent, "")
	req, rec = newAuthRequest(http.MethodPost, sheetPath+"/save", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sheetSave failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/attendance/sessions/"+sess.ID+"/records", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("records failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var records []attendance.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("failed! len(records) = %d; want 2", len(records))
	}
	byStudent := make(map[string]attendance.Record, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r
	}
	if r := byStudent[studentIDs[0]]; r.Status != attendance.StatusAbsent {
		t.Errorf("failed! record = %+v; want absent", r)
	}
	if r := byStudent[studentIDs[1]]; r.Status != attendance.StatusLate || r.Note != "missed the bus" {
		t.Errorf("failed! record = %+v; want late with its note", r)
	}

	// session summary over committed records: late counts in, absent does not
	req, rec = newAuthRequest(http.MethodGet, "/v1/attendance/sessions/"+sess.ID+"/summary", token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var sum attendance.RateSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	want := attendance.RateSummary{Marked: 2, Unmarked: 1, Late: 1, Absent: 1, Rate: 50}
	if sum != want {
		t.Errorf("failed! summary = %+v; want %+v", sum, want)
	}

	// closing the sheet makes it unreachable
	req, rec = newAuthRequest(http.MethodDelete, sheetPath, token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("closeSheet failed! code = %v", rec.Code)
	}
	req, rec = newAuthRequest(http.MethodGet, sheetPath, token)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusNotFound)
	}
}
