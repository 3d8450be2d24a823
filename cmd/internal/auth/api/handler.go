// Package authapi is the HTTP surface of the mobile auth bridge: the OAuth
// initiate/callback pair, handoff-code redemption, and the device-token
// management API that sits behind the browser session.
package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"calldex/cmd/identity"
	"calldex/cmd/internal/auth/devicetoken"
	"calldex/cmd/internal/auth/provider"
	"calldex/cmd/internal/auth/session"
	"calldex/cmd/internal/handoff"
	"calldex/cmd/internal/metrics"
	"calldex/cmd/security/token"
)

const (
	stateBytes   = 16
	sweepTimeout = 5 * time.Second
)

type ctxKey int

const userIDKey ctxKey = iota

// Handler serves the auth bridge routes.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	provider provider.Provider
	users    identity.Store
	handoff  *handoff.Service
	sessions *session.Service
	tokens   *devicetoken.Service
}

// New constructs the Handler. All collaborators are required except the
// logger, which defaults to slog.Default().
func New(log *slog.Logger, cfg Config, p provider.Provider, users identity.Store, codes *handoff.Service, sessions *session.Service, tokens *devicetoken.Service) (*Handler, error) {
	if p == nil || users == nil || codes == nil || sessions == nil || tokens == nil {
		return nil, errors.New("authapi: all collaborators are required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		provider: p,
		users:    users,
		handoff:  codes,
		sessions: sessions,
		tokens:   tokens,
	}, nil
}

// Register mounts the auth bridge routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/mobile/initiate", h.handleInitiate)
	mux.HandleFunc("GET /auth/mobile/callback", h.handleCallback)
	mux.HandleFunc("GET /auth/mobile/session", h.handleSession)

	mux.Handle("POST /mobile/auth/token", h.requireSession(h.handleCreateToken))
	mux.Handle("GET /mobile/auth/token", h.requireSession(h.handleListTokens))
	mux.Handle("DELETE /mobile/auth/token", h.requireSession(h.handleRevokeToken))
}

// handleInitiate starts the provider consent flow. The random state lands in
// a short-lived cookie and rides along to the callback for CSRF protection.
func (h *Handler) handleInitiate(w http.ResponseWriter, r *http.Request) {
	state, err := token.NewOpaque(stateBytes)
	if err != nil {
		h.log.Error("auth.initiate.state.fail", "err", err)
		h.redirectWithError(w, r, "mobile_auth_failed")
		return
	}
	h.setStateCookie(w, state, time.Now().UTC())
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// handleCallback receives the provider redirect, verifies state, resolves
// the verified email to a known account, and hands the mobile client a
// single-use code via the custom URI scheme. Every failure collapses to the
// same opaque error code; the client learns nothing about which step broke.
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	cookieState, ok := h.stateFromCookie(r)
	h.clearStateCookie(w)
	if !ok || !secureStringEqual(cookieState, q.Get("state")) {
		h.log.Warn("auth.callback.state.mismatch")
		h.redirectWithError(w, r, "mobile_auth_failed")
		return
	}
	if e := q.Get("error"); e != "" {
		h.log.Warn("auth.callback.provider.denied", "provider_error", e)
		h.redirectWithError(w, r, "mobile_auth_failed")
		return
	}

	ident, err := h.provider.Identify(ctx, q.Get("code"))
	if err != nil {
		h.log.Error("auth.callback.identify.fail", "err", err)
		h.redirectWithError(w, r, "mobile_auth_failed")
		return
	}

	user, err := h.users.GetByEmail(ctx, identity.NormalizeEmail(ident.Email))
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			// The bridge signs in existing accounts only; signup lives in
			// the standard web flow.
			h.log.Warn("auth.callback.unknown_account")
		} else {
			h.log.Error("auth.callback.user.fail", "err", err)
		}
		h.redirectWithError(w, r, "mobile_auth_failed")
		return
	}

	code, err := h.handoff.Issue(ctx, handoff.IssueInput{UserID: user.ID, TTL: h.cfg.HandoffTTL})
	if err != nil {
		h.log.Error("auth.callback.handoff.fail", "err", err)
		h.redirectWithError(w, r, "mobile_auth_failed")
		return
	}

	h.log.Info("auth.callback.ok", "user_id", user.ID)
	http.Redirect(w, r, h.cfg.AppRedirectURI+"?code="+url.QueryEscape(code.Code), http.StatusFound)
}

// handleSession redeems a handoff code for a browser session inside the
// mobile web view. Redemption outcomes map to distinct error codes so the
// app can tell a replayed code from an expired one.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		h.redirectWithError(w, r, "missing_code")
		return
	}

	userID, err := h.handoff.Redeem(ctx, now, code)
	if err != nil {
		switch {
		case errors.Is(err, handoff.ErrCodeNotFound):
			metrics.HandoffRedeems.WithLabelValues("not_found").Inc()
			h.redirectWithError(w, r, "invalid_code")
		case errors.Is(err, handoff.ErrCodeUsed):
			metrics.HandoffRedeems.WithLabelValues("already_used").Inc()
			h.redirectWithError(w, r, "code_already_used")
		case errors.Is(err, handoff.ErrCodeExpired):
			metrics.HandoffRedeems.WithLabelValues("expired").Inc()
			h.redirectWithError(w, r, "code_expired")
		default:
			metrics.HandoffRedeems.WithLabelValues("error").Inc()
			h.log.Error("auth.session.redeem.fail", "err", err)
			h.redirectWithError(w, r, "invalid_code")
		}
		return
	}
	metrics.HandoffRedeems.WithLabelValues("ok").Inc()

	sess, err := h.sessions.Issue(ctx, now, userID)
	if err != nil {
		h.log.Error("auth.session.issue.fail", "err", err)
		h.redirectWithError(w, r, "invalid_code")
		return
	}

	h.sweepAsync(ctx, now, userID)

	h.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	h.log.Info("auth.session.ok", "user_id", userID)
	http.Redirect(w, r, h.cfg.LandingURL, http.StatusFound)
}

// sweepAsync clears the user's spent codes without blocking the redemption
// response. Failures are logged and forgotten.
func (h *Handler) sweepAsync(ctx context.Context, now time.Time, userID string) {
	sweepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sweepTimeout)
	go func() {
		defer cancel()
		if err := h.handoff.Sweep(sweepCtx, now, userID); err != nil {
			h.log.Warn("auth.session.sweep.fail", "user_id", userID, "err", err)
		}
	}()
}

// requireSession gates the device-token API behind the browser session.
func (h *Handler) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := h.sessionFromCookie(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "browser session required")
			return
		}
		userID, err := h.sessions.Validate(r.Context(), time.Now().UTC(), tok)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionExpired):
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "browser session required")
			default:
				h.log.Error("auth.session.validate.fail", "err", err)
				writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
			}
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func sessionUserID(r *http.Request) string {
	v, _ := r.Context().Value(userIDKey).(string)
	return v
}

func (h *Handler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req createTokenRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed JSON body")
		return
	}
	platform, err := devicetoken.ParsePlatform(req.Platform)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "platform must be android or ios")
		return
	}

	created, err := h.tokens.Create(r.Context(), devicetoken.CreateInput{
		UserID:     sessionUserID(r),
		DeviceName: req.DeviceName,
		Platform:   platform,
	})
	if err != nil {
		if errors.Is(err, devicetoken.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid token request")
			return
		}
		h.log.Error("auth.token.create.fail", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	h.log.Info("auth.token.create.ok", "user_id", created.Token.UserID, "token_id", created.Token.ID, "platform", created.Token.Platform)
	writeJSON(w, http.StatusCreated, createTokenResponse{
		Token:     created.Secret,
		TokenID:   created.Token.ID,
		ExpiresAt: created.Token.ExpiresAt,
	})
}

func (h *Handler) handleListTokens(w http.ResponseWriter, r *http.Request) {
	rows, err := h.tokens.List(r.Context(), sessionUserID(r))
	if err != nil {
		h.log.Error("auth.token.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	out := listTokensResponse{Tokens: make([]tokenMetadata, 0, len(rows))}
	for _, t := range rows {
		out.Tokens = append(out.Tokens, tokenMetadata{
			TokenID:    t.ID,
			DeviceName: t.DeviceName,
			Platform:   string(t.Platform),
			CreatedAt:  t.CreatedAt,
			LastUsedAt: t.LastUsedAt,
			ExpiresAt:  t.ExpiresAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	var req revokeTokenRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed JSON body")
		return
	}
	tokenID := strings.TrimSpace(req.TokenID)
	if tokenID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "tokenId is required")
		return
	}

	deleted, err := h.tokens.Revoke(r.Context(), sessionUserID(r), tokenID)
	if err != nil {
		h.log.Error("auth.token.revoke.fail", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}
	if !deleted {
		// Absent and not-owned read the same on purpose.
		writeError(w, http.StatusNotFound, codeNotFound, "token not found")
		return
	}

	h.log.Info("auth.token.revoke.ok", "user_id", sessionUserID(r), "token_id", tokenID)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
