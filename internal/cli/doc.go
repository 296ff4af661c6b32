// Package cli provides the interactive WorkPlan terminal front-end.
//
// It wires the session lifecycle manager and the account service into a
// read-eval-print loop. Every accepted command line counts as user
// activity. A background goroutine drives the session countdown and
// prints the expiry warning and the expiry notice.
//
// Commands:
//   - register, login, logout, exit
//   - dashboard: the role-appropriate landing view
//   - status, extend: inspect or refresh the session
//   - users [search], edituser, deleteuser: administrators only
//   - createadmin: bootstrap the default administrator
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
