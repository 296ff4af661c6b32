package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/workplan/internal/logging"
	"github.com/dmitrijs2005/workplan/internal/services/accounts"
	"github.com/dmitrijs2005/workplan/internal/services/profile"
	"github.com/dmitrijs2005/workplan/internal/services/session"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getConfirmation = GetConfirmation
)

type App struct {
	manager  *session.Manager
	accounts accounts.Service
	profile  *profile.Service
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(m *session.Manager, acc accounts.Service, prof *profile.Service, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{manager: m, accounts: acc, profile: prof, log: log, reader: bufio.NewReader(in), out: out}
}

// Run initializes the session, starts the countdown and blocks in the REPL
// until the user exits or input ends. The countdown goroutine is stopped
// before Run returns.
func (a *App) Run(ctx context.Context) {
	a.manager.Subscribe(a.onSessionEvent)
	a.manager.Initialize(ctx)

	tickCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.manager.Run(tickCtx)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	printlnFn(titleStyle.Render("Welcome to WorkPlan (type 'help' for commands)"))
	if st := a.manager.State(); st.User != nil {
		printlnFn(fmt.Sprintf("Signed in as %s.", st.User.Email))
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.manager.State().User != nil
}

func (a *App) isAdmin() bool {
	u := a.manager.State().User
	return u != nil && u.IsAdmin()
}

func (a *App) RecordActivity(ctx context.Context) {
	a.manager.RecordActivity(ctx)
}

// getStatus renders the prompt status: the signed-in email and the
// countdown, or nothing when signed out.
func (a *App) getStatus() string {
	st := a.manager.State()
	if st.User == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", st.User.Email, session.FormatRemaining(st.SessionTimeRemaining))
}

func (a *App) onSessionEvent(e session.Event) {
	switch e.Kind {
	case session.EventWarning:
		printlnFn(warningStyle.Render(fmt.Sprintf(
			"Your session will expire in %s. Type 'extend' to stay signed in or 'logout' to sign out now.",
			session.FormatRemaining(e.Remaining))))
	case session.EventExpired:
		printlnFn(warningStyle.Render("Your session has expired. Please log in again."))
	}
}
