package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/workplan/internal/models"
)

// Phase is the lifecycle state of the manager.
type Phase string

const (
	PhaseUninitialized   Phase = "uninitialized"
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseActive          Phase = "active"
	PhaseWarning         Phase = "warning"
	PhaseExpired         Phase = "expired"
)

// Authenticated reports whether p carries a signed-in user.
func (p Phase) Authenticated() bool {
	return p == PhaseActive || p == PhaseWarning
}

// State is the snapshot exposed to the presentation layer.
type State struct {
	User                 *models.User
	IsLoading            bool
	SessionTimeRemaining time.Duration
	Phase                Phase
}

type EventKind string

const (
	EventLogin    EventKind = "login"
	EventWarning  EventKind = "warning"
	EventExtended EventKind = "extended"
	EventExpired  EventKind = "expired"
	EventLogout   EventKind = "logout"
)

// Event describes a phase transition. User is the identity the transition
// applies to; for expired and logout it is the user that was signed in.
type Event struct {
	Kind      EventKind
	User      models.User
	Remaining time.Duration
}

// Listener receives events. It must not block.
type Listener func(Event)

// FormatRemaining renders d as m:ss, truncating to whole seconds.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
