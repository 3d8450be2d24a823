package authapi

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// setSessionCookie installs the browser-session credential. HttpOnly keeps
// it away from page scripts; expiry tracks the session row exactly.
func (h *Handler) setSessionCookie(w http.ResponseWriter, value string, exp time.Time) {
	if h == nil || w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.sameSite(),
	})
}

func (h *Handler) setStateCookie(w http.ResponseWriter, value string, now time.Time) {
	if h == nil || w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.StateCookieName,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  now.Add(h.cfg.StateTTL),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.sameSite(),
	})
}

func (h *Handler) clearStateCookie(w http.ResponseWriter) {
	h.expireCookie(w, h.cfg.StateCookieName)
}

func (h *Handler) expireCookie(w http.ResponseWriter, name string) {
	if h == nil || w == nil || strings.TrimSpace(name) == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.sameSite(),
	})
}

func (h *Handler) stateFromCookie(r *http.Request) (string, bool) {
	if h == nil || r == nil {
		return "", false
	}
	c, err := r.Cookie(h.cfg.StateCookieName)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}

func (h *Handler) sessionFromCookie(r *http.Request) (string, bool) {
	if h == nil || r == nil {
		return "", false
	}
	c, err := r.Cookie(h.cfg.SessionCookieName)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}

// redirectWithError sends the browser to the error page with a short,
// non-sensitive error code in the query string.
func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.cfg.ErrorURL+"?error="+url.QueryEscape(code), http.StatusFound)
}

func secureStringEqual(a, b string) bool {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
