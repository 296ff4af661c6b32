package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/logging"
	"github.com/dmitrijs2005/workplan/internal/models"
	"github.com/dmitrijs2005/workplan/internal/repositories/sessions"
	"github.com/dmitrijs2005/workplan/internal/repositories/users"
)

// Options tunes a Manager. Zero values fall back to the package defaults.
type Options struct {
	Policy           models.SessionPolicy
	WarningThreshold time.Duration
	TickInterval     time.Duration
	ActivityThrottle time.Duration
	Clock            func() time.Time
	Logger           logging.Logger
}

func (o Options) withDefaults() Options {
	if o.Policy.Session <= 0 {
		o.Policy.Session = common.SessionDuration
	}
	if o.Policy.RememberMe <= 0 {
		o.Policy.RememberMe = common.RememberMeDuration
	}
	if o.WarningThreshold <= 0 {
		o.WarningThreshold = common.WarningThreshold
	}
	if o.TickInterval <= 0 {
		o.TickInterval = common.TickInterval
	}
	if o.ActivityThrottle <= 0 {
		o.ActivityThrottle = common.ActivityThrottle
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

type Manager struct {
	mu sync.Mutex

	store sessions.Store
	dir   users.Directory
	log   logging.Logger
	clock func() time.Time

	policy   models.SessionPolicy
	warnAt   time.Duration
	interval time.Duration
	limiter  *rate.Limiter

	record    *models.SessionRecord
	remaining time.Duration
	loading   bool
	phase     Phase
	listeners []Listener
}

// NewManager returns a Manager in the uninitialized phase.
func NewManager(store sessions.Store, dir users.Directory, opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		store:    store,
		dir:      dir,
		log:      opts.Logger,
		clock:    opts.Clock,
		policy:   opts.Policy,
		warnAt:   opts.WarningThreshold,
		interval: opts.TickInterval,
		limiter:  rate.NewLimiter(rate.Every(opts.ActivityThrottle), 1),
		loading:  true,
		phase:    PhaseUninitialized,
	}
}

// now is truncated to the millisecond precision of the persisted format.
func (m *Manager) now() time.Time {
	return m.clock().UTC().Truncate(time.Millisecond)
}

// Subscribe registers fn for all future events.
func (m *Manager) Subscribe(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{
		IsLoading:            m.loading,
		SessionTimeRemaining: m.remaining,
		Phase:                m.phase,
	}
	if m.record != nil {
		u := m.record.User
		st.User = &u
	}
	return st
}

// do runs fn under the lock and delivers the events it produced after
// unlocking.
func (m *Manager) do(fn func() []Event) {
	m.mu.Lock()
	events := fn()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, e := range events {
		for _, l := range listeners {
			l(e)
		}
	}
}

func (m *Manager) phaseFor(remaining time.Duration) Phase {
	if remaining > 0 && remaining <= m.warnAt {
		return PhaseWarning
	}
	return PhaseActive
}

func (m *Manager) clear() {
	m.record = nil
	m.remaining = 0
	m.phase = PhaseUnauthenticated
}

func (m *Manager) deleteRecord(ctx context.Context) {
	if err := m.store.Delete(ctx); err != nil {
		m.log.Error(ctx, "failed to delete session record", "error", err)
	}
}

// loadValid reads the persisted record. Absent, malformed and expired
// records all yield nil; the latter two are deleted.
func (m *Manager) loadValid(ctx context.Context, now time.Time) (*models.SessionRecord, bool) {
	rec, err := m.store.Load(ctx)
	switch {
	case errors.Is(err, common.ErrNoSession):
		return nil, false
	case errors.Is(err, common.ErrMalformedSession):
		m.log.Warn(ctx, "discarding malformed session record", "error", err)
		m.deleteRecord(ctx)
		return nil, false
	case err != nil:
		m.log.Error(ctx, "failed to read session record", "error", err)
		return nil, false
	case rec.Expired(now):
		return rec, true
	}
	return rec, false
}

// Initialize reads the persisted record once. A valid record is adopted and
// extended; anything else leaves the manager unauthenticated.
func (m *Manager) Initialize(ctx context.Context) {
	m.do(func() []Event {
		defer func() { m.loading = false }()

		now := m.now()
		rec, expired := m.loadValid(ctx, now)
		if rec == nil || expired {
			if expired {
				m.log.Info(ctx, "stored session has expired", "email", rec.Email)
				m.deleteRecord(ctx)
			}
			m.clear()
			return nil
		}

		m.record = rec
		m.remaining = rec.Remaining(now)
		m.phase = m.phaseFor(m.remaining)
		return m.extendLocked(ctx, now)
	})
}

// Login verifies the credentials and starts a new session. On failure
// nothing is persisted and the previous state is kept.
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) (models.User, error) {
	var (
		user models.User
		err  error
	)
	m.do(func() []Event {
		var acc *models.Account
		acc, err = m.dir.FindByCredentials(ctx, email, password)
		if err != nil {
			m.log.Info(ctx, "login failed", "email", email)
			return nil
		}

		now := m.now()
		rec := models.NewSessionRecord(*acc, now, rememberMe, m.policy)
		if err = m.store.Save(ctx, rec); err != nil {
			m.log.Error(ctx, "failed to persist session record", "error", err)
			return nil
		}

		m.record = &rec
		m.remaining = rec.Remaining(now)
		m.phase = PhaseActive
		m.loading = false
		m.limiter = rate.NewLimiter(m.limiter.Limit(), 1)
		user = rec.User

		m.log.Info(ctx, "login", "email", rec.Email, "remember_me", rememberMe)
		return []Event{{Kind: EventLogin, User: user, Remaining: m.remaining}}
	})
	return user, err
}

// ExtendSession restarts the activity window of the current session. It is a
// no-op when there is no valid session.
func (m *Manager) ExtendSession(ctx context.Context) {
	m.do(func() []Event {
		if m.record == nil {
			return nil
		}
		return m.extendLocked(ctx, m.now())
	})
}

// extendLocked re-reads the persisted record so that a newer write by
// another process is adopted instead of overwritten.
func (m *Manager) extendLocked(ctx context.Context, now time.Time) []Event {
	prev := m.record
	rec, expired := m.loadValid(ctx, now)
	if rec == nil || expired {
		return m.endLocked(ctx, prev, expired)
	}

	if rec.LastActivity.After(now) {
		m.log.Debug(ctx, "stored session is newer, not overwriting", "last_activity", rec.LastActivity)
		m.record = rec
		m.remaining = rec.Remaining(now)
		m.phase = m.phaseFor(m.remaining)
		return nil
	}

	next := rec.Touch(now, m.policy)
	if err := m.store.Save(ctx, next); err != nil {
		m.log.Error(ctx, "failed to extend session", "error", err)
		return nil
	}

	m.record = &next
	m.remaining = next.Remaining(now)
	m.phase = PhaseActive
	return []Event{{Kind: EventExtended, User: next.User, Remaining: m.remaining}}
}

// endLocked drops the in-memory session after the persisted one turned out
// to be gone or expired.
func (m *Manager) endLocked(ctx context.Context, prev *models.SessionRecord, expired bool) []Event {
	if expired {
		m.deleteRecord(ctx)
	}
	m.clear()
	if prev == nil {
		return nil
	}
	kind := EventLogout
	if expired {
		kind = EventExpired
		m.log.Info(ctx, "session expired", "email", prev.Email)
	}
	return []Event{{Kind: kind, User: prev.User}}
}

// Logout deletes the persisted record and forgets the user.
func (m *Manager) Logout(ctx context.Context) {
	m.do(func() []Event {
		prev := m.record
		m.deleteRecord(ctx)
		m.clear()
		m.loading = false
		if prev == nil {
			return nil
		}
		m.log.Info(ctx, "logout", "email", prev.Email)
		return []Event{{Kind: EventLogout, User: prev.User}}
	})
}

// Tick re-evaluates the persisted record: it refreshes the countdown,
// enters the warning window and ends the session at expiry. Apart from
// deleting an expired or malformed record it never writes.
func (m *Manager) Tick(ctx context.Context) {
	m.do(func() []Event {
		if m.phase == PhaseUninitialized {
			return nil
		}

		now := m.now()
		prev := m.record
		rec, expired := m.loadValid(ctx, now)
		if rec == nil || expired {
			return m.endLocked(ctx, prev, expired)
		}

		m.record = rec
		m.remaining = rec.Remaining(now)

		phase := m.phaseFor(m.remaining)
		if phase == m.phase {
			return nil
		}
		m.phase = phase
		if prev == nil {
			return []Event{{Kind: EventLogin, User: rec.User, Remaining: m.remaining}}
		}
		if phase == PhaseWarning {
			return []Event{{Kind: EventWarning, User: rec.User, Remaining: m.remaining}}
		}
		return []Event{{Kind: EventExtended, User: rec.User, Remaining: m.remaining}}
	})
}

// RecordActivity extends the session at most once per throttle interval.
func (m *Manager) RecordActivity(ctx context.Context) {
	m.do(func() []Event {
		if m.record == nil {
			return nil
		}
		now := m.now()
		if !m.limiter.AllowN(now, 1) {
			return nil
		}
		return m.extendLocked(ctx, now)
	})
}

// Run calls Tick every tick interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}
