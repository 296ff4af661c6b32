package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/cryptox"
	"github.com/dmitrijs2005/workplan/internal/dbx"
	"github.com/dmitrijs2005/workplan/internal/logging"
	"github.com/dmitrijs2005/workplan/internal/models"
	"github.com/dmitrijs2005/workplan/internal/repositories/sessions"
	"github.com/dmitrijs2005/workplan/internal/repositories/users"
	"github.com/dmitrijs2005/workplan/internal/services/accounts"
	"github.com/dmitrijs2005/workplan/internal/services/profile"
	"github.com/dmitrijs2005/workplan/internal/services/session"
	"github.com/dmitrijs2005/workplan/internal/storage"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// stubInput replaces the interactive prompts with queued answers.
func stubInput(t *testing.T, text, passwords []string, confirms []bool) {
	t.Helper()
	oldText, oldPw, oldConfirm := getSimpleText, getPassword, getConfirmation

	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		require.NotEmpty(t, text, "unexpected prompt %q", prompt)
		v := text[0]
		text = text[1:]
		return v, nil
	}
	getPassword = func(_ *bufio.Reader, prompt string, _ io.Writer) ([]byte, error) {
		require.NotEmpty(t, passwords, "unexpected password prompt %q", prompt)
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
	getConfirmation = func(_ *bufio.Reader, prompt string, _ io.Writer) (bool, error) {
		require.NotEmpty(t, confirms, "unexpected confirmation %q", prompt)
		v := confirms[0]
		confirms = confirms[1:]
		return v, nil
	}
	t.Cleanup(func() { getSimpleText, getPassword, getConfirmation = oldText, oldPw, oldConfirm })
}

type testEnv struct {
	app   *App
	clock *testClock
	store sessions.Store
	out   *[]string
}

func (e *testEnv) output() string {
	return strings.Join(*e.out, "\n")
}

func (e *testEnv) reset() {
	*e.out = (*e.out)[:0]
}

func newTestEnv(t *testing.T, in string) *testEnv {
	t.Helper()
	ctx := context.Background()

	st, err := storage.OpenSQL(ctx, "sqlite", ":memory:", dbx.DialectSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	policy := models.SessionPolicy{Session: common.SessionDuration, RememberMe: common.RememberMeDuration}
	clock := &testClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	dir := users.NewMetadataDirectory(st.Metadata, common.UsersKey, cryptox.Plain{})
	store := sessions.NewMetadataStore(st.Metadata, common.CurrentSessionKey, policy)
	m := session.NewManager(store, dir, session.Options{Policy: policy, Clock: clock.Now})
	acc := accounts.NewService(dir, cryptox.Plain{}, logging.Discard())
	prof := profile.NewService(st.Metadata, "", logging.Discard())

	return &testEnv{
		app:   NewApp(m, acc, prof, logging.Discard(), strings.NewReader(in), io.Discard),
		clock: clock,
		store: store,
		out:   captureOutput(t),
	}
}

func (e *testEnv) start(t *testing.T) {
	t.Helper()
	e.app.manager.Subscribe(e.app.onSessionEvent)
	e.app.manager.Initialize(context.Background())
}

func registerAlice(t *testing.T, e *testEnv) {
	t.Helper()
	stubInput(t, []string{"Alice", "Smith", "alice@x.com"}, []string{"password1", "password1"}, nil)
	require.NoError(t, e.app.Register(context.Background()))
}

func TestRegisterAndLogin_UserDashboard(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()

	registerAlice(t, e)
	assert.Contains(t, e.output(), "Registration successful!")
	assert.False(t, e.app.isLoggedIn())

	stubInput(t, []string{"alice@x.com"}, []string{"password1"}, []bool{false})
	require.NoError(t, e.app.Login(ctx))

	out := e.output()
	assert.Contains(t, out, "Welcome back, Alice Smith!")
	assert.Contains(t, out, "Employee Information")
	assert.NotContains(t, out, "Admin Dashboard")

	assert.True(t, e.app.isLoggedIn())
	assert.False(t, e.app.isAdmin())
	assert.Equal(t, "(alice@x.com 30:00)", e.app.getStatus())
}

func TestRegisterShortPasswordThenLogin(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()
	loginAt := e.clock.Now()

	stubInput(t, []string{"Alice", "Smith", "alice@x.com"}, []string{"pw1", "pw1"}, nil)
	require.NoError(t, e.app.Register(ctx))

	stubInput(t, []string{"alice@x.com"}, []string{"pw1"}, []bool{false})
	require.NoError(t, e.app.Login(ctx))

	rec, err := e.store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, rec.RememberMe)
	assert.True(t, loginAt.Add(30*time.Minute).Equal(rec.ExpiresAt), "expiresAt = %s", rec.ExpiresAt)

	out := e.output()
	assert.Contains(t, out, "Employee Information")
	assert.NotContains(t, out, "Admin Dashboard")
	assert.False(t, e.app.isAdmin())
}

func TestRegister_PasswordMismatch(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)

	stubInput(t, []string{"Alice", "Smith", "alice@x.com"}, []string{"password1", "password2"}, nil)
	err := e.app.Register(context.Background())
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	registerAlice(t, e)

	stubInput(t, []string{"alice@x.com"}, []string{"wrong-pass"}, []bool{true})
	err := e.app.Login(context.Background())
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.False(t, e.app.isLoggedIn())
	assert.Equal(t, "", e.app.getStatus())
}

func TestLogin_RememberMe(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	registerAlice(t, e)

	stubInput(t, []string{"alice@x.com"}, []string{"password1"}, []bool{true})
	require.NoError(t, e.app.Login(context.Background()))
	assert.Equal(t, "(alice@x.com 10080:00)", e.app.getStatus())
}

func TestSignedOutCommands(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.app.Logout(ctx), common.ErrNoSession)
	assert.ErrorIs(t, e.app.Extend(ctx), common.ErrNoSession)
	assert.ErrorIs(t, e.app.Dashboard(ctx), common.ErrNoSession)
	assert.ErrorIs(t, e.app.Users(ctx, ""), common.ErrNoSession)
	assert.ErrorIs(t, e.app.EditUser(ctx), common.ErrNoSession)
	assert.ErrorIs(t, e.app.DeleteUser(ctx), common.ErrNoSession)

	require.NoError(t, e.app.Status(ctx))
	assert.Contains(t, e.output(), "Not signed in.")
}

func TestAdminCommands_ForbiddenForUsers(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()
	registerAlice(t, e)
	stubInput(t, []string{"alice@x.com"}, []string{"password1"}, []bool{false})
	require.NoError(t, e.app.Login(ctx))

	assert.ErrorIs(t, e.app.Users(ctx, ""), common.ErrForbidden)
	assert.ErrorIs(t, e.app.EditUser(ctx), common.ErrForbidden)
	assert.ErrorIs(t, e.app.DeleteUser(ctx), common.ErrForbidden)
	assert.ErrorIs(t, e.app.Storage(ctx), common.ErrForbidden)
	assert.ErrorIs(t, e.app.Reset(ctx), common.ErrForbidden)
}

func TestAdminStorageAndReset(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()
	registerAlice(t, e)
	require.NoError(t, e.app.CreateAdmin(ctx))
	stubInput(t, []string{"admin@workplan.com"}, []string{"admin123"}, []bool{false})
	require.NoError(t, e.app.Login(ctx))

	e.reset()
	require.NoError(t, e.app.Storage(ctx))
	assert.Contains(t, e.output(), "current_session")
	assert.Contains(t, e.output(), "users")
	assert.Contains(t, e.output(), "2 key(s)")

	stubInput(t, nil, nil, []bool{false})
	require.NoError(t, e.app.Reset(ctx))
	assert.Contains(t, e.output(), "Cancelled.")
	assert.True(t, e.app.isLoggedIn())

	stubInput(t, nil, nil, []bool{true})
	require.NoError(t, e.app.Reset(ctx))
	assert.Contains(t, e.output(), "Removed 2 key(s). You have been logged out.")
	assert.False(t, e.app.isLoggedIn())

	list, err := e.app.accounts.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = e.store.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestAdminFlow(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()
	registerAlice(t, e)

	require.NoError(t, e.app.CreateAdmin(ctx))
	assert.Contains(t, e.output(), "Admin user created! Email: admin@workplan.com, Password: admin123")
	assert.ErrorIs(t, e.app.CreateAdmin(ctx), common.ErrAdminExists)

	stubInput(t, []string{"admin@workplan.com"}, []string{"admin123"}, []bool{false})
	require.NoError(t, e.app.Login(ctx))
	assert.True(t, e.app.isAdmin())
	assert.Contains(t, e.output(), "Admin Dashboard")
	assert.Contains(t, e.output(), "Total users: 2  Administrators: 1  Employees: 1")

	e.reset()
	require.NoError(t, e.app.Users(ctx, "ALICE"))
	assert.Contains(t, e.output(), "alice@x.com")
	assert.NotContains(t, e.output(), "admin@workplan.com")
	assert.Contains(t, e.output(), "1 user(s)")

	list, err := e.app.accounts.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	aliceID := list[0].ID

	stubInput(t, []string{aliceID, "", "Smyth", "", "admin"}, nil, nil)
	require.NoError(t, e.app.EditUser(ctx))
	assert.Contains(t, e.output(), "User updated successfully!")

	list, err = e.app.accounts.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].FirstName)
	assert.Equal(t, "Smyth", list[0].LastName)
	assert.Equal(t, models.RoleAdmin, list[0].Role)

	stubInput(t, []string{aliceID}, nil, []bool{false})
	require.NoError(t, e.app.DeleteUser(ctx))
	assert.Contains(t, e.output(), "Cancelled.")

	stubInput(t, []string{aliceID}, nil, []bool{true})
	require.NoError(t, e.app.DeleteUser(ctx))
	assert.Contains(t, e.output(), "User deleted successfully!")

	stubInput(t, []string{aliceID}, nil, nil)
	assert.ErrorIs(t, e.app.DeleteUser(ctx), common.ErrorNotFound)
}

func TestSessionWarningAndExpiry(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()
	registerAlice(t, e)
	stubInput(t, []string{"alice@x.com"}, []string{"password1"}, []bool{false})
	require.NoError(t, e.app.Login(ctx))
	e.reset()

	e.clock.Advance(25*time.Minute + time.Second)
	e.app.manager.Tick(ctx)
	assert.Contains(t, e.output(), "Your session will expire in 4:59")

	require.NoError(t, e.app.Extend(ctx))
	assert.Contains(t, e.output(), "Session extended. Expires in 30:00.")

	e.clock.Advance(30 * time.Minute)
	e.app.manager.Tick(ctx)
	assert.Contains(t, e.output(), "Your session has expired. Please log in again.")
	assert.False(t, e.app.isLoggedIn())
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t, "")
	e.start(t)
	ctx := context.Background()
	registerAlice(t, e)
	stubInput(t, []string{"alice@x.com"}, []string{"password1"}, []bool{false})
	require.NoError(t, e.app.Login(ctx))

	require.NoError(t, e.app.Logout(ctx))
	assert.Contains(t, e.output(), "You have been logged out.")
	assert.False(t, e.app.isLoggedIn())
}

func TestRun_ExitsOnInputEnd(t *testing.T) {
	e := newTestEnv(t, "help\nstatus\n")

	done := make(chan struct{})
	go func() {
		e.app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return at end of input")
	}
	assert.Contains(t, e.output(), "Welcome to WorkPlan")
	assert.Contains(t, e.output(), "Not signed in.")
}
