package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/workplan/internal/common"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	RecordActivity(ctx context.Context)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Status(ctx context.Context) error
	Extend(ctx context.Context) error
	CreateAdmin(ctx context.Context) error

	Users(ctx context.Context, search string) error
	EditUser(ctx context.Context) error
	DeleteUser(ctx context.Context) error
	Storage(ctx context.Context) error
	Reset(ctx context.Context) error
}

func helpText(a execIface) string {
	switch {
	case a.isAdmin():
		return "Available commands: dashboard, users [search], edituser, deleteuser, storage, reset, status, extend, logout, exit"
	case a.isLoggedIn():
		return "Available commands: dashboard, status, extend, logout, exit"
	default:
		return "Available commands: register, login, createadmin, exit"
	}
}

// userMessage turns a command error into the line shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, common.ErrNoSession):
		return "Please log in first."
	case errors.Is(err, common.ErrForbidden):
		return "Access denied: administrators only. Redirecting to your dashboard."
	case errors.Is(err, common.ErrEmailTaken):
		return "An account with this email already exists"
	case errors.Is(err, common.ErrAdminExists):
		return "Admin user already exists!"
	case errors.Is(err, common.ErrorNotFound):
		return "User not found"
	case errors.Is(err, common.ErrorValidation):
		msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
		if msg == "" || msg == err.Error() {
			return "Invalid input"
		}
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
	return "Error: " + err.Error()
}

// runREPL starts a simple read-eval-print loop for the WorkPlan CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Every non-empty line is reported as user
// activity before dispatch. Errors returned by handlers are printed as user
// messages; a forbidden admin command falls through to the dashboard. The
// loop exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("workplan %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		a.RecordActivity(ctx)

		switch cmd {
		case "help":
			printlnFn(helpText(a))
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "dashboard":
			err = a.Dashboard(ctx)
		case "status":
			err = a.Status(ctx)
		case "extend":
			err = a.Extend(ctx)
		case "createadmin":
			err = a.CreateAdmin(ctx)
		case "users":
			err = a.Users(ctx, strings.Join(args, " "))
		case "edituser":
			err = a.EditUser(ctx)
		case "deleteuser":
			err = a.DeleteUser(ctx)
		case "storage":
			err = a.Storage(ctx)
		case "reset":
			err = a.Reset(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(errorStyle.Render(userMessage(err)))
			if errors.Is(err, common.ErrForbidden) {
				_ = a.Dashboard(ctx)
			}
		}
	}
}
