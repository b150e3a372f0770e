package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	usrSvc     *user.Service
	recordRepo progress.Repository
	validate   *validator.Validate
	logger     core.Logger
	contentDir string
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a migration command (up, up-to VERSION, down, status, ...)")
	_, _ = fmt.Fprintln(cli.out, "  adduser -name NAME -username USERNAME -email EMAIL [-admin] - create or update a user")
	_, _ = fmt.Fprintln(cli.out, "  resetpassword -username USERNAME|EMAIL - reset user's password")
	_, _ = fmt.Fprintln(cli.out, "  lint-content [-dir DIR] - load and validate the course content")
	_, _ = fmt.Fprintln(cli.out, "  report -course COURSE -level LEVEL -out FILE - export the progress of a course level to xlsx")
}

// promptPassword reads a password from the terminal, without echo.
func (cli *commandLine) promptPassword() (string, error) {
	_, _ = fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	return string(pwd), err
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant every role to the user.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	lintCmd := flag.NewFlagSet("lint-content", flag.ContinueOnError)
	lintDir := lintCmd.String("dir", cli.contentDir, "The content directory.")

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportCourse := reportCmd.String("course", "", "The course ID.")
	reportLevel := reportCmd.String("level", "", "The course level.")
	reportOut := reportCmd.String("out", "", "The xlsx file to write.")

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, lintCmd, reportCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserUname == "" && *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserUname, *addUserEmail, pwd, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "lint-content":
		if err := lintCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *lintDir == "" {
			lintCmd.Usage()
			return errHelp
		}
		return cli.lintContent(*lintDir)

	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *reportCourse == "" || *reportLevel == "" || *reportOut == "" {
			reportCmd.Usage()
			return errHelp
		}
		return cli.report(*reportCourse, content.Level(*reportLevel), *reportOut)

	default:
		cli.printUsage()
		return errHelp
	}
}
