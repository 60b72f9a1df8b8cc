package cookieauth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	// AccessCookie is an exported constant or variable used by the session core.
	AccessCookie = "awqef_auth_token"
	// RefreshCookie is an exported constant or variable used by the session core.
	RefreshCookie = "awqef_refresh_token"
)

// Config defines a public type used by sessiongate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// AccessMaxAge and RefreshMaxAge default to the platform's token
	// lifetime conventions: one hour and seven days.
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
	Domain        string
	Secure        bool
}

type setRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Handler serves the cookie-mirroring endpoints.
//
// Handler instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Handler struct {
	cfg Config
}

// NewHandler describes the newhandler operation and its observable behavior.
func NewHandler(cfg Config) *Handler {
	if cfg.AccessMaxAge <= 0 {
		cfg.AccessMaxAge = time.Hour
	}
	if cfg.RefreshMaxAge <= 0 {
		cfg.RefreshMaxAge = 7 * 24 * time.Hour
	}
	return &Handler{cfg: cfg}
}

// Routes mounts the endpoints on a fresh chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/session", h.SetCookies)
	r.Delete("/session", h.ClearCookies)
	return r
}

// SetCookies describes the setcookies operation and its observable behavior.
func (h *Handler) SetCookies(w http.ResponseWriter, r *http.Request) {
	var in setRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if in.AccessToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "accessToken is required"})
		return
	}

	http.SetCookie(w, h.cookie(AccessCookie, in.AccessToken, h.cfg.AccessMaxAge))
	if in.RefreshToken != "" {
		http.SetCookie(w, h.cookie(RefreshCookie, in.RefreshToken, h.cfg.RefreshMaxAge))
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ClearCookies describes the clearcookies operation and its observable behavior.
func (h *Handler) ClearCookies(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.expired(AccessCookie))
	http.SetCookie(w, h.expired(RefreshCookie))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.cfg.Domain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (h *Handler) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
