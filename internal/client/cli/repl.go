package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/citywatch/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Report(ctx context.Context) error
	List(ctx context.Context, category string) error
	Mine(ctx context.Context) error
	Categories(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
//	help                 show available commands
//	signup               create an account and sign in
//	login                sign in
//	logout               sign out
//	whoami               show the signed-in user
//	report               report an incident
//	list [category|all]  list incidents, most recent first
//	mine                 list your own reports
//	categories           show the category table
//	exit | quit          leave the program
//
// Handler errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("citywatch %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: report, list [category|all], mine, categories, whoami, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, list [category|all], categories, exit")
			}

		case "signup", "register":
			cmdErr = a.Signup(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "report":
			cmdErr = a.Report(ctx)

		case "l", "list":
			category := ""
			if len(args) > 0 {
				category = args[0]
			}
			cmdErr = a.List(ctx, category)

		case "mine":
			cmdErr = a.Mine(ctx)

		case "categories":
			cmdErr = a.Categories(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(userMessage(cmd, cmdErr))
		}
		if err != nil {
			return
		}
	}
}

// userMessage turns an error into the line shown to the user.
func userMessage(cmd string, err error) string {
	switch {
	case errors.Is(err, common.ErrValidation):
		return "Invalid input: " + err.Error()
	case errors.Is(err, common.ErrAuthentication):
		return "Not allowed: " + err.Error()
	case errors.Is(err, common.ErrConflict):
		return "That email is already registered"
	case errors.Is(err, common.ErrBackendUnavailable):
		if cmd == "report" || cmd == "signup" || cmd == "register" {
			// writes are never resubmitted automatically
			return "Storage unavailable, nothing was retried: " + err.Error()
		}
		return "Storage unavailable, run the command again to retry: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
