package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/AcaDesk/acadesk-server/core/user"
	emailsvc "github.com/AcaDesk/acadesk-server/services/email"
)

const (
	org1 = "org1"
	org2 = "org2"
)

func Test_userApi_login(t *testing.T) {
	env := newTestEnv(t)

	env.createUser(t, org1, "Hero", "herooo", "hero@test.cd", "LolC@t123", nil, true)
	env.createUser(t, org1, "N Dog", "ndoggg", "ndog@test.cd", "LolC@t123", nil, false) // 😂

	reqMsg := "this field is required"
	invalidCreds := httpErr{Error: "invalid credentials"}
	tests := []httpTest{
		{
			name: "required fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, LoginRequest{Username: reqMsg, Password: reqMsg}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Username: "ghost", Password: "LolC@t123"}),
			wantData: marchallObj(t, invalidCreds),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Username: "herooo", Password: "nope"}),
			wantData: marchallObj(t, invalidCreds),
		},
		{
			name: "inactive user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Username: "ndoggg", Password: "LolC@t123"}),
			wantData: marchallObj(t, invalidCreds),
		},
		{
			name: "login by username", wantCode: http.StatusOK,
			body: marchallObj(t, LoginRequest{Username: "herooo", Password: "LolC@t123"}),
		},
		{
			name: "login by email", wantCode: http.StatusOK,
			body: marchallObj(t, LoginRequest{Username: "hero@test.cd", Password: "LolC@t123"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)

			// cannot guess the token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	env := newTestEnv(t)

	path := func(search string, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	admin := env.createUser(t, org1, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	owner := env.createUser(t, org1, "Owner", "owner1", "owner@test.cd", "", []string{user.RoleAdminOwner}, true)
	teacher := env.createUser(t, org1, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	clerk := env.createUser(t, org1, "Front Desk", "clerk1", "clerk@test.cd", "", []string{user.RoleStaff}, true)
	naughty := env.createUser(t, org1, "N Dog", "ndoggg", "ndog@test.cd", "", []string{user.RoleTeacher}, false) // 😂
	env.createUser(t, org2, "Stranger", "stranger", "stranger@test.cd", "", []string{user.RoleAdmin}, true)

	adminToken := getToken(t, admin)
	empty := marchallList(t)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, teacher), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			// the org2 user must not appear
			name: "Get all", token: adminToken,
			wantData: marchallList(t, admin, owner, teacher, clerk, naughty),
		},
		{name: "search (unknown)", path: path("lol", nil), token: adminToken, wantData: empty},
		{name: "search=DESK", path: path("DESK", nil), token: adminToken, wantData: marchallList(t, clerk)},
		{name: "role (unknown)", path: path("", nil, "lol"), token: adminToken, wantData: empty},
		{name: "role=admin:", path: path("", nil, user.RoleAdmin), token: adminToken, wantData: marchallList(t, admin, owner)},
		{name: "role=teacher:", path: path("", nil, user.RoleTeacher), token: adminToken, wantData: marchallList(t, teacher, naughty)},
		{
			name: "role=teacher:,staff:", path: path("", nil, user.RoleTeacher, user.RoleStaff),
			token: adminToken, wantData: marchallList(t, teacher, clerk, naughty),
		},
		{
			name: "is_active=true", path: path("", bPtr(true)),
			token: adminToken, wantData: marchallList(t, admin, owner, teacher, clerk),
		},
		{name: "is_active=false", path: path("", bPtr(false)), token: adminToken, wantData: marchallList(t, naughty)},
		{
			name: "combo", path: path("dog", bPtr(false), user.RoleTeacher),
			token: adminToken, wantData: marchallList(t, naughty),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.path == "" {
			tt.path = "/v1/users"
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser(t, org1, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := env.createUser(t, org1, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	adminToken := getToken(t, admin)

	reqMsg := "this field is required"
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, teacher), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: adminToken, body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name": reqMsg, "password": reqMsg, "password_confirm": reqMsg,
				"username": "one of username or email is required",
				"email":    "one of username or email is required",
			}),
		},
		{
			name: "username taken", token: adminToken, wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Copy Cat", Username: "teach1", Password: "LolC@t123", PasswordConfirm: "LolC@t123",
			}),
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
		{
			name: "cannot grant a higher role", token: adminToken, wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{
				Name: "Greedy", Username: "greedy1", Password: "LolC@t123", PasswordConfirm: "LolC@t123",
				Roles: []string{user.RoleAdminOwner},
			}),
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "created", token: adminToken, wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{
				Name: "New Clerk", Username: "clerk1", Email: "clerk@test.cd",
				Password: "LolC@t123", PasswordConfirm: "LolC@t123",
				Roles: []string{user.RoleStaff},
			}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				usr, err := env.usrRepo.GetUserByUsername(context.Background(), "clerk1")
				if err != nil {
					t.Fatalf("GetUserByUsername() failed: %v", err)
				}
				if usr.OrgID != org1 {
					t.Errorf("failed! OrgID = %v; want %v", usr.OrgID, org1)
				}
				if !usr.IsStaff() {
					t.Errorf("failed! Roles = %v; want staff", usr.Roles)
				}
				if err := usr.CheckPassword("LolC@t123"); err != nil {
					t.Error("failed! password not set")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser(t, org1, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := env.createUser(t, org1, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	clerk := env.createUser(t, org1, "Front Desk", "clerk1", "clerk@test.cd", "", []string{user.RoleStaff}, true)
	stranger := env.createUser(t, org2, "Stranger", "stranger", "stranger@test.cd", "", []string{user.RoleAdmin}, true)

	notFound := marchallObj(t, httpErr{Error: "not found"})
	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/users/" + teacher.ID,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "own profile", path: "/v1/users/" + teacher.ID, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallObj(t, teacher),
		},
		{
			name: "others are invisible to non-admins", path: "/v1/users/" + clerk.ID, token: getToken(t, teacher),
			wantCode: http.StatusNotFound, wantData: notFound,
		},
		{
			name: "admin sees all", path: "/v1/users/" + clerk.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, clerk),
		},
		{
			name: "users are invisible across orgs", path: "/v1/users/" + stranger.ID, token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: notFound,
		},
		{
			name: "unknown user", path: "/v1/users/lol", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: notFound,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_update(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser(t, org1, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := env.createUser(t, org1, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)

	bPtr := func(b bool) *bool { return &b }
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})
	tests := []httpTest{
		{
			name: "non-admin cannot change own roles", path: "/v1/users/" + teacher.ID, token: getToken(t, teacher),
			body:     marchallObj(t, user.UpdateUser{Roles: []string{user.RoleAdmin}}),
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "non-admin cannot deactivate themselves", path: "/v1/users/" + teacher.ID, token: getToken(t, teacher),
			body:     marchallObj(t, user.UpdateUser{IsActive: bPtr(false)}),
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "admin cannot grant a higher role", path: "/v1/users/" + teacher.ID, token: getToken(t, admin),
			body:     marchallObj(t, user.UpdateUser{Roles: []string{user.RoleAdminOwner}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "own name change", path: "/v1/users/" + teacher.ID, token: getToken(t, teacher),
			body: marchallObj(t, user.UpdateUser{Name: "Prof Teacher"}), wantCode: http.StatusOK,
		},
		{
			name: "admin promotes to staff", path: "/v1/users/" + teacher.ID, token: getToken(t, admin),
			body: marchallObj(t, user.UpdateUser{Roles: []string{user.RoleTeacher, user.RoleStaff}}), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.ID != teacher.ID {
					t.Errorf("failed! ID = %v; want %v", respData.ID, teacher.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_destroy(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser(t, org1, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := env.createUser(t, org1, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{
			name: "Admin required", path: "/v1/users/" + teacher.ID, token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "cannot delete self", path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "deleted", path: "/v1/users/" + teacher.ID, token: adminToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				if _, err := env.usrRepo.GetUserByID(context.Background(), teacher.ID); err != user.ErrNotFound {
					t.Errorf("failed! err = %v; want %v", err, user.ErrNotFound)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	env := newTestEnv(t)

	teacher := env.createUser(t, org1, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	naughty := env.createUser(t, org1, "N Dog", "ndoggg", "ndog@test.cd", "", nil, false) // 😂

	// craft a token whose original issue date is past the refresh threshold
	now := time.Now()
	unrefreshableClaims := GetUserClaims(teacher)
	unrefreshableClaims.OrigIssuedAt = now.Add(-2 * env.conf.Server.JWTRefreshExpirationDelta).Unix()
	unrefreshableToken, err := GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, teacher), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	env := newTestEnv(t)

	teacher := env.createUser(t, org1, "Teacher", "teach1", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	successData := marchallObj(t, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	pathRegex := regexp.MustCompile("/password-reset/.+/.+")

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{
			name: "required fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK,
			body:     marchallObj(t, PasswordResetRequest{Email: "lol@test.com"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK,
			body:     marchallObj(t, PasswordResetRequest{Email: teacher.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: teacher.EmailAddr()[0]},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if extra.emailSent {
					if len(emailsvc.SentMessages) != 1 {
						t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
					}
					msg := emailsvc.SentMessages[0]
					if msg.To[0] != extra.to {
						t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
					}
					if !strings.Contains(msg.TextContent, extra.to.Name) {
						t.Errorf("failed! text content does not contain recipient's name %q", extra.to.Name)
					}
					if !pathRegex.MatchString(msg.TextContent) {
						t.Errorf("failed! text content does not match pathRegex %v", pathRegex)
					}
				} else if len(emailsvc.SentMessages) > 0 {
					t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
				}
			}
		})
	}
}

func Test_userApi_confirmPasswordReset(t *testing.T) {
	env := newTestEnv(t)

	teacher := env.createUser(t, org1, "Teacher", "teach1", "teacher@test.cd", "lol", []string{user.RoleTeacher}, true)

	// request a reset and fish the uid & token out of the outbox
	emailsvc.SentMessages = nil
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset",
		marchallObj(t, PasswordResetRequest{Email: teacher.Email}))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password-reset failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
	}
	linkRegex := regexp.MustCompile("/password-reset/([^/\\s]+)/([^/\\s]+)")
	match := linkRegex.FindStringSubmatch(emailsvc.SentMessages[0].TextContent)
	if match == nil {
		t.Fatal("failed! no reset link in the mail text content")
	}
	validUID, validToken := match[1], match[2]

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, user.ResetUserPassword{Token: reqMsg, UID: reqMsg, Password: reqMsg, PasswordConfirm: reqMsg}),
		},
		{
			name: "PasswordConfirm must = Password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "LolC@t123", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, user.ResetUserPassword{PasswordConfirm: "password_confirm must be equal to Password"}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: "bG9s", Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, map[string]string{"uid": "invalid token"}),
		},
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "HE4TS-sigsigsig", UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, map[string]string{"token": "invalid token"}),
		},
		{
			name: "valid token", wantCode: http.StatusOK,
			body:     marchallObj(t, user.ResetUserPassword{Token: validToken, UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/password-reset-confirm"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				refreshed, err := env.usrRepo.GetUserByID(context.Background(), teacher.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed: %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, teacher.PasswordHash) {
					t.Fatal("failed to update new password")
				}
			}
		})
	}
}
