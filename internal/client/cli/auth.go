package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/citywatch/internal/common"
)

// getSimpleText, getMultiline and getPassword are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getMultiline  = GetMultiline
	getPassword   = GetPassword
)

func (a *App) prompt(text string) (string, error) {
	return getSimpleText(a.reader, text, a.out)
}

func (a *App) readSecret() (string, error) {
	secret, err := getPassword(a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(secret)
	return string(secret), nil
}

// Signup prompts for email, secret and name and creates an account.
// The new account is signed in straight away.
func (a *App) Signup(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	secret, err := a.readSecret()
	if err != nil {
		return err
	}
	name, err := a.prompt("Enter your name")
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.sessions.Signup(ctx, email, secret, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	secret, err := a.readSecret()
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.sessions.Login(ctx, email, secret)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", user.Name)
	return nil
}

// Logout clears the session pointer.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.sessions.CurrentUser(ctx)
	if !ok {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> id=%s\n", u.Name, u.Email, u.ID)
	return nil
}
