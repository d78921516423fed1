package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AcaDesk/acadesk-server/core/class"
	"github.com/AcaDesk/acadesk-server/core/student"
	"github.com/AcaDesk/acadesk-server/core/user"
	dummydb "github.com/AcaDesk/acadesk-server/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	require.NoError(t, err)

	return &commandLine{
		usrRepo: dummydb.NewUserRepository(db),
		stdRepo: dummydb.NewStudentRepository(db),
		clsRepo: dummydb.NewClassRepository(db),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCliTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			} else if tt.wantErrStr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no subcommand", args: nil, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
	}
	runCliTests(t, cli, tests)
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	origGooseRunFunc := gooseRunFunc
	defer func() { gooseRunFunc = origGooseRunFunc }()
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create requires a NAME argument")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create requires a NAME argument"},
		{name: "down-to: ok", args: []string{"migrate", "down-to", "2"}},
	}
	runCliTests(t, cli, tests)
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	origReadPasswordFunc := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = origReadPasswordFunc })
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
}

func Test_commandLine_addStaff(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()
	mockPassword(t, "LePassword007")

	tests := []cliTest{
		{name: "missing flags", args: []string{"addstaff"}, wantErr: errHelp},
		{name: "missing email", args: []string{"addstaff", "-org", "org1", "-name", "Jane Doe", "-username", "janedoe"}, wantErr: errHelp},
		{name: "ok", args: []string{"addstaff", "-org", "org1", "-name", "Jane Doe", "-username", "janedoe", "-email", "jane@doe.local"}},
	}
	runCliTests(t, cli, tests)

	usr, err := cli.usrRepo.GetUserByUsername(ctx, "janedoe")
	require.NoError(t, err)
	assert.Equal(t, "org1", usr.OrgID)
	assert.Equal(t, "Jane Doe", usr.Name)
	assert.Equal(t, user.StaffRoles, usr.Roles)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("LePassword007"))

	// running again with -admin upgrades the same user
	err = cli.run([]string{"admin", "addstaff", "-org", "org1", "-name", "Jane A. Doe", "-username", "janedoe", "-email", "jane@doe.local", "-admin"})
	require.NoError(t, err)

	usr2, err := cli.usrRepo.GetUserByUsername(ctx, "janedoe")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, usr2.ID)
	assert.Equal(t, "Jane A. Doe", usr2.Name)
	assert.Equal(t, user.AllRoles, usr2.Roles)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	usr := user.User{OrgID: "org1", Name: "John Doe", Username: "johndoe", Email: "john@doe.local", IsActive: true}
	require.NoError(t, usr.SetPassword("OldPassword007"))
	usr, err := cli.usrRepo.CreateUser(ctx, usr)
	require.NoError(t, err)

	mockPassword(t, "NewPassword007")

	tests := []cliTest{
		{name: "missing username", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "unknown user", args: []string{"resetpassword", "-username", "nobody"}, wantErr: user.ErrNotFound},
		{name: "by username", args: []string{"resetpassword", "-username", "johndoe"}},
	}
	runCliTests(t, cli, tests)

	usr, err = cli.usrRepo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Error(t, usr.CheckPassword("OldPassword007"))
	assert.NoError(t, usr.CheckPassword("NewPassword007"))
}

func Test_commandLine_seedDemo(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	var orgID string
	origCreateOrgFunc := createOrgFunc
	defer func() { createOrgFunc = origCreateOrgFunc }()
	createOrgFunc = func(db *sql.DB, id, name string) error {
		orgID = id
		return nil
	}

	tests := []cliTest{
		{name: "missing org", args: []string{"seeddemo"}, wantErr: errHelp},
		{name: "ok", args: []string{"seeddemo", "-org", "Demo Academy"}},
	}
	runCliTests(t, cli, tests)
	require.NotEmpty(t, orgID)

	students, err := cli.stdRepo.FilterStudents(ctx, orgID, student.QueryFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, students, 3)

	classes, err := cli.clsRepo.FilterClasses(ctx, orgID, class.QueryFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, classes, 1)

	roster, err := cli.clsRepo.QueryRoster(ctx, orgID, classes[0].ID)
	require.NoError(t, err)
	assert.Len(t, roster, 3)
}
