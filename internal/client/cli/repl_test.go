package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls    []string
	category string
	err      error
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Signup(context.Context) error {
	f.calls = append(f.calls, "signup")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) WhoAmI(context.Context) error { f.calls = append(f.calls, "whoami"); return nil }
func (f *fakeExec) Report(context.Context) error { f.calls = append(f.calls, "report"); return f.err }
func (f *fakeExec) List(_ context.Context, category string) error {
	f.calls = append(f.calls, "list")
	f.category = category
	return nil
}
func (f *fakeExec) Mine(context.Context) error       { f.calls = append(f.calls, "mine"); return nil }
func (f *fakeExec) Categories(context.Context) error { f.calls = append(f.calls, "categories"); return nil }

func capturePrintln(t *testing.T) *strings.Builder {
	t.Helper()
	var sb strings.Builder
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(&sb, a...) }
	t.Cleanup(func() { printlnFn = orig })
	return &sb
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"report",
		"list",
		"list noise",
		"mine",
		"categories",
		"whoami",
		"logout",
		"signup",
		"foobar",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"login", "report", "list", "list", "mine", "categories", "whoami", "logout", "signup"}, exec.calls)
	assert.Equal(t, "noise", exec.category)
	assert.Contains(t, out.String(), "Available commands: signup, login")
	assert.Contains(t, out.String(), "Available commands: report")
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "Bye!")
	assert.Contains(t, out.String(), "citywatch status > ")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("whoami\nmine")))

	assert.Equal(t, []string{"whoami", "mine"}, exec.calls)
}

func TestRunREPL_PrintsHandlerErrors(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{err: fmt.Errorf("%w: title is required", common.ErrValidation)}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("report\nquit\n")))

	assert.Contains(t, out.String(), "Invalid input: validation error: title is required")
}

func TestUserMessage(t *testing.T) {
	down := fmt.Errorf("%w: timeout", common.ErrBackendUnavailable)

	assert.Equal(t, "That email is already registered", userMessage("signup", common.ErrConflict))
	assert.True(t, strings.HasPrefix(userMessage("login", common.ErrAuthentication), "Not allowed: "))
	assert.True(t, strings.HasPrefix(userMessage("list", down), "Storage unavailable, run the command again"))
	assert.True(t, strings.HasPrefix(userMessage("report", down), "Storage unavailable, nothing was retried"))
	assert.Equal(t, "Error: boom", userMessage("list", errors.New("boom")))
}
