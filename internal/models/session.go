package models

import "time"

// TimeLayout is the wire format of persisted timestamps: RFC 3339 with
// exactly three fractional digits, always written in UTC.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// SessionPolicy holds the two session lengths.
type SessionPolicy struct {
	Session    time.Duration
	RememberMe time.Duration
}

// Duration returns the session length selected by the remember-me flag.
func (p SessionPolicy) Duration(rememberMe bool) time.Duration {
	if rememberMe {
		return p.RememberMe
	}
	return p.Session
}

// SessionRecord is the durable record of the one active session.
//
// Invariant: ExpiresAt == LastActivity + policy.Duration(RememberMe).
type SessionRecord struct {
	User

	LoginTime    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
	RememberMe   bool
}

// NewSessionRecord starts a session for the account at now.
func NewSessionRecord(a Account, now time.Time, rememberMe bool, p SessionPolicy) SessionRecord {
	return SessionRecord{
		User:         a.User(),
		LoginTime:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(p.Duration(rememberMe)),
		RememberMe:   rememberMe,
	}
}

// Touch returns a copy whose activity window restarts at now. The
// remember-me flag is never changed.
func (s SessionRecord) Touch(now time.Time, p SessionPolicy) SessionRecord {
	s.LastActivity = now
	s.ExpiresAt = now.Add(p.Duration(s.RememberMe))
	return s
}

// Remaining is max(0, ExpiresAt-now).
func (s SessionRecord) Remaining(now time.Time) time.Duration {
	r := s.ExpiresAt.Sub(now)
	if r < 0 {
		return 0
	}
	return r
}

// Expired reports whether the record is no longer valid at now.
func (s SessionRecord) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
