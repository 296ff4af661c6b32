// Package session implements the session lifecycle: login, validation of
// the persisted record, activity extension, the periodic countdown and the
// warning window before expiry.
//
// A Manager is constructed explicitly, initialized once with Initialize and
// driven by Run until its context is cancelled. All operations are
// serialized by the Manager; listeners registered with Subscribe are called
// after the internal lock is released.
package session
