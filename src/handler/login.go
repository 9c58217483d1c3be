package handler

import "net/http"

// LoginHandler is a stub: token issuance is out of scope, the endpoint only
// reports reachability.
func LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"Login": true})
	}
}
