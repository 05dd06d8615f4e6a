package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/secretstore"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// report prints the user-facing text of err. Raw causes go to the log only.
func (a *App) report(ctx context.Context, op string, err error) error {
	a.logger.Debug(ctx, op+" failed", "error", err)
	printlnFn("Error:", common.Message(err))
	return err
}

func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := a.auth.Register(ctx, userName, email, string(pw)); err != nil {
		return a.report(ctx, "register", err)
	}

	a.userName = userName
	printlnFn("Registered and logged in as", userName)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := a.auth.Login(ctx, userName, string(pw)); err != nil {
		return a.report(ctx, "login", err)
	}

	a.userName = userName
	printlnFn("Logged in as", userName)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	p, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return a.report(ctx, "whoami", err)
	}
	if p == nil {
		a.userName = ""
		printlnFn("Not logged in")
		return nil
	}

	a.userName = p.UserName
	printlnFn(fmt.Sprintf("%s <%s>", p.UserName, p.Email))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.report(ctx, "logout", err)
	}
	a.userName = ""
	printlnFn("Logged out")
	return nil
}

// Status prints the session state and whether the backend answers.
func (a *App) Status(ctx context.Context) error {
	session := "logged out"
	if a.auth.IsAuthenticated(ctx) {
		session = "logged in"
		if a.userName != "" {
			session += " as " + a.userName
		}
	}
	printlnFn("Session:", session)

	if ts, ok := a.secrets.(secretstore.Timestamped); ok && a.isLoggedIn() {
		if at, err := ts.SavedAt(ctx); err == nil {
			printlnFn("Saved at:", at.Local().Format(time.RFC3339))
		}
	}

	backend := "remote " + a.config.ServerEndpointAddr
	if a.config.Embedded() {
		backend = "embedded " + a.config.EmbeddedUsersDB
	}
	if err := a.auth.Ping(ctx); err != nil {
		printlnFn("Backend:", backend, "(unreachable: "+common.Message(err)+")")
		return nil
	}
	printlnFn("Backend:", backend, "(ok)")
	return nil
}
