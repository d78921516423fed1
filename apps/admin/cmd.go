package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/AcaDesk/acadesk-server/core/class"
	"github.com/AcaDesk/acadesk-server/core/student"
	"github.com/AcaDesk/acadesk-server/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	usrRepo user.Repository
	stdRepo student.Repository
	clsRepo class.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run DB migrations (up, down, status, ...)")
	fmt.Println("  addstaff -org ORG -name NAME -username USERNAME -email EMAIL [-admin] - add or update a staff user")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset a user's password")
	fmt.Println("  seeddemo -org NAME - create a demo organization with sample data")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStaffCmd := flag.NewFlagSet("addstaff", flag.ExitOnError)
	addStaffOrg := addStaffCmd.String("org", "", "The organization ID the user belongs to.")
	addStaffName := addStaffCmd.String("name", "", "The user's full name.")
	addStaffUname := addStaffCmd.String("username", "", "The user's username.")
	addStaffEmail := addStaffCmd.String("email", "", "The user's email.")
	addStaffAdmin := addStaffCmd.Bool("admin", false, "Grant all roles. The password will be prompted next.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	seedDemoCmd := flag.NewFlagSet("seeddemo", flag.ExitOnError)
	seedDemoOrg := seedDemoCmd.String("org", "", "The demo organization's name.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addstaff":
		if err := addStaffCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStaffOrg == "" || *addStaffName == "" || *addStaffUname == "" || *addStaffEmail == "" {
			addStaffCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			if err == errHelp {
				addStaffCmd.Usage()
			}
			return err
		}
		return cli.addStaff(*addStaffOrg, *addStaffName, *addStaffUname, *addStaffEmail, pwd, *addStaffAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			if err == errHelp {
				resetPasswordCmd.Usage()
			}
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "seeddemo":
		if err := seedDemoCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedDemoOrg == "" {
			seedDemoCmd.Usage()
			return errHelp
		}
		return cli.seedDemo(*seedDemoOrg)
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}
