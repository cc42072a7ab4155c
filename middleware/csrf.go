package middleware

import (
	"net/http"

	authcore "github.com/FrancescoMain/korsvagen-web-sub000"
)

// CSRFHeader is the request header carrying the double-submit token.
const CSRFHeader = "X-CSRF-Token"

// CSRFCookie is the cookie the host sets from [authcore.Engine.GenerateCSRF].
const CSRFCookie = "csrf_token"

// CSRF returns middleware enforcing the double-submit check on
// state-changing methods. Safe methods (GET, HEAD, OPTIONS) pass through.
func CSRF(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if engine == nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			cookie, err := r.Cookie(CSRFCookie)
			if err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			if err := engine.ValidateCSRF(r.Header.Get(CSRFHeader), cookie.Value); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
