package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/services/accounts"
	"github.com/dmitrijs2005/workplan/internal/services/session"
)

// Register prompts for the registration form and creates a user account.
// Both password buffers are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	var in accounts.RegisterInput
	var err error

	if in.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if in.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if in.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	in.Password, in.ConfirmPassword = string(password), string(confirm)
	if _, err := a.accounts.Register(ctx, in); err != nil {
		return err
	}

	printlnFn(successStyle.Render("Registration successful! You can now log in."))
	return nil
}

// Login prompts for credentials and the remember-me choice. On success the
// role-appropriate dashboard is shown.
func (a *App) Login(ctx context.Context) error {
	if st := a.manager.State(); st.User != nil {
		printlnFn(fmt.Sprintf("Already signed in as %s. Use 'logout' first.", st.User.Email))
		return nil
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	rememberMe, err := getConfirmation(a.reader, "Remember me for 7 days?", a.out)
	if err != nil {
		return err
	}

	u, err := a.manager.Login(ctx, email, string(password), rememberMe)
	if err != nil {
		return err
	}

	printlnFn(successStyle.Render(fmt.Sprintf("Signed in as %s.", u.Email)))
	return a.Dashboard(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNoSession
	}
	a.manager.Logout(ctx)
	printlnFn("You have been logged out.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	st := a.manager.State()
	if st.User == nil {
		printlnFn("Not signed in.")
		return nil
	}

	line := fmt.Sprintf("Signed in as %s (%s). Session expires in %s.",
		st.User.Email, st.User.Role.Title(), session.FormatRemaining(st.SessionTimeRemaining))
	if st.Phase == session.PhaseWarning {
		line = warningStyle.Render(line)
	}
	printlnFn(line)
	return nil
}

// Extend refreshes the session window on explicit request.
func (a *App) Extend(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNoSession
	}
	a.manager.ExtendSession(ctx)

	st := a.manager.State()
	if st.User == nil {
		return common.ErrNoSession
	}
	printlnFn(successStyle.Render(fmt.Sprintf("Session extended. Expires in %s.",
		session.FormatRemaining(st.SessionTimeRemaining))))
	return nil
}
