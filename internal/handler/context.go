package handler

import "net/http"

type ContextKey string

// UserIDCtxKey carries the authenticated caller's owner id, set by the
// auth middleware from the token's subject claim.
var UserIDCtxKey ContextKey = "userID"

// ownerID resolves the caller's owner id off the request context. The
// second result is false when the middleware never ran or the claim was
// empty; callers must treat that as unauthorized before touching storage.
func ownerID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDCtxKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
