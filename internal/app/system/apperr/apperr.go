// Package apperr defines the error taxonomy shared by the membership
// workflows and the HTTP handlers that expose them.
//
// Services classify failures with one of the classes below; handlers turn a
// classified error into a status code and a client-safe message. Anything
// unclassified is treated as Internal.
package apperr

import (
	"net/http"
	"strings"

	"github.com/zeebo/errs"
)

var (
	BadRequest   = errs.Class("bad request")
	Unauthorized = errs.Class("unauthorized")
	Forbidden    = errs.Class("forbidden")
	NotFound     = errs.Class("not found")
	Conflict     = errs.Class("conflict")
	TooLarge     = errs.Class("too large")
	Internal     = errs.Class("internal")
)

type entry struct {
	class  *errs.Class
	status int
}

var table = []entry{
	{&BadRequest, http.StatusBadRequest},
	{&Unauthorized, http.StatusUnauthorized},
	{&Forbidden, http.StatusForbidden},
	{&NotFound, http.StatusNotFound},
	{&Conflict, http.StatusConflict},
	{&TooLarge, http.StatusRequestEntityTooLarge},
	{&Internal, http.StatusInternalServerError},
}

func lookup(err error) (entry, bool) {
	for _, e := range table {
		if e.class.Has(err) {
			return e, true
		}
	}
	return entry{}, false
}

// Status maps err to an HTTP status code. Unclassified errors map to 500.
func Status(err error) int {
	if e, ok := lookup(err); ok {
		return e.status
	}
	return http.StatusInternalServerError
}

// Message returns the text that may be shown to a client. Internal and
// unclassified errors never leak their cause.
func Message(err error) string {
	e, ok := lookup(err)
	if !ok || e.status == http.StatusInternalServerError {
		return "Internal server error"
	}
	msg := err.Error()
	return strings.TrimPrefix(msg, string(*e.class)+": ")
}

// IsClient reports whether err is the caller's fault (4xx).
func IsClient(err error) bool {
	s := Status(err)
	return s >= 400 && s < 500
}
