package app

import (
	"net/http"
	"time"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/utils"
)

func (a *App) sessionToken(r *http.Request) string {
	c, err := r.Cookie(a.config.CookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	return c.Value
}

// currentUser resolves the request's session cookie through the session
// cache. The bool is the route guards' authenticated flag.
func (a *App) currentUser(r *http.Request) (models.User, bool) {
	return a.sessions.User(r.Context(), a.sessionToken(r))
}

// requireAuth guards a route: it waits until the session cache has settled
// its startup check, then rejects requests without a live session. The SPA
// turns the 401 into a redirect to /login.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-a.sessions.Ready():
		case <-r.Context().Done():
			return
		}

		if _, ok := a.currentUser(r); !ok {
			utils.Unauthorized(w, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.config.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.config.CookieSecure,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func (a *App) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.config.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.config.CookieSecure,
		MaxAge:   -1,
	})
}
