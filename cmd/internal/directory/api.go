package directory

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"calldex/cmd/internal/auth/devicetoken"
	"calldex/cmd/internal/metrics"
)

// Handler serves the mobile caller-ID lookup endpoint.
type Handler struct {
	log      *slog.Logger
	resolver *Resolver
	tokens   *devicetoken.Service
}

// NewHandler constructs the lookup Handler.
func NewHandler(log *slog.Logger, resolver *Resolver, tokens *devicetoken.Service) (*Handler, error) {
	if resolver == nil || tokens == nil {
		return nil, ErrInvalidInput
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, resolver: resolver, tokens: tokens}, nil
}

// Register mounts the lookup route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /mobile/lookup", h.handleLookup)
}

type lookupContact struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Company     *string `json:"company,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

type lookupResponse struct {
	Found   bool           `json:"found"`
	Contact *lookupContact `json:"contact,omitempty"`
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := h.tokens.VerifyHeader(ctx, time.Now().UTC(), r.Header.Get("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, devicetoken.ErrMalformedCredential):
			metrics.TokenVerifies.WithLabelValues("malformed").Inc()
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "missing or malformed bearer token")
		case errors.Is(err, devicetoken.ErrInvalidToken):
			metrics.TokenVerifies.WithLabelValues("invalid").Inc()
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		case errors.Is(err, devicetoken.ErrExpired):
			metrics.TokenVerifies.WithLabelValues("expired").Inc()
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "token expired")
		default:
			metrics.TokenVerifies.WithLabelValues("error").Inc()
			h.log.Error("lookup.auth.fail", "err", err)
			h.writeError(w, http.StatusInternalServerError, "internal", "internal error")
		}
		return
	}
	metrics.TokenVerifies.WithLabelValues("ok").Inc()

	rawPhone := r.URL.Query().Get("phone")
	if rawPhone == "" {
		h.writeError(w, http.StatusBadRequest, "missing_phone", "phone query parameter is required")
		return
	}

	contact, found, err := h.resolver.Resolve(ctx, userID, rawPhone)
	if err != nil {
		metrics.Lookups.WithLabelValues("error").Inc()
		h.log.Error("lookup.resolve.fail", "err", err)
		h.writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	if !found {
		metrics.Lookups.WithLabelValues("miss").Inc()
		h.writeJSON(w, http.StatusOK, lookupResponse{Found: false})
		return
	}

	metrics.Lookups.WithLabelValues("hit").Inc()
	h.writeJSON(w, http.StatusOK, lookupResponse{
		Found: true,
		Contact: &lookupContact{
			ID:          contact.ID,
			DisplayName: contact.DisplayName,
			Company:     contact.Company,
			ImageURL:    contact.ImageURL,
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("lookup.write.fail", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	type errBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	h.writeJSON(w, status, struct {
		Error errBody `json:"error"`
	}{Error: errBody{Code: code, Message: message}})
}
