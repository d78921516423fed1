package core

import "errors"

// ErrMissingActor is returned when an operation that stamps ownership is
// called without an authenticated actor; it aborts before any storage call.
var ErrMissingActor = errors.New("no authenticated actor")

// Actor identifies who is performing an operation and which organization's
// data they may touch. It is threaded explicitly through service calls;
// there is no ambient/global current-user lookup.
type Actor struct {
	UserID string
	OrgID  string
}

func (a Actor) Valid() bool {
	return a.OrgID != ""
}
