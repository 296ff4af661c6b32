package common

import "time"

// Keys of the two logical records kept in the metadata medium.
const (
	CurrentSessionKey = "current_session"
	UsersKey          = "users"
)

// Session timing defaults.
const (
	SessionDuration    = 30 * time.Minute
	RememberMeDuration = 7 * 24 * time.Hour
	WarningThreshold   = 5 * time.Minute
	TickInterval       = time.Second
	ActivityThrottle   = time.Minute
)

// Bootstrap administrator created by the admin screen when no admin exists yet.
const (
	DefaultAdminEmail     = "admin@workplan.com"
	DefaultAdminPassword  = "admin123"
	DefaultAdminFirstName = "Admin"
	DefaultAdminLastName  = "User"
)
